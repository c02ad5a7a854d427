package app

import (
	"context"
	"net/http"

	"github.com/gocount/dashboard/internal/pkg/clock"
	"github.com/gocount/dashboard/internal/pkg/config"
	"github.com/gocount/dashboard/internal/pkg/goroutine"
	"github.com/gocount/dashboard/internal/pkg/hash"
	"github.com/gocount/dashboard/internal/pkg/idempotency"
	"github.com/gocount/dashboard/internal/pkg/instrument"
	"github.com/gocount/dashboard/internal/pkg/jwt"
	"github.com/gocount/dashboard/internal/pkg/mail"
	"github.com/gocount/dashboard/internal/pkg/otp"
	"github.com/gocount/dashboard/internal/pkg/router"
	"github.com/gocount/dashboard/internal/pkg/storage"
	"github.com/gocount/dashboard/internal/pkg/uid"
	"github.com/gocount/dashboard/internal/pkg/validator"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	hmac      *hash.HMACSHA256
	bcrypt    hash.Hash
	uid       uid.NumberID
	uuid      uid.StringID
	otp       otp.OTP
	session   jwt.JWT
	pending   jwt.JWT

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	idemp     idempotency.Idempotency
	mail      mail.Mail
	storage   storage.Storage

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initMigration()
	app.initCache()
	app.initMail()
	app.initStorage()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}

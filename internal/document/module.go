package document

import (
	"github.com/gocount/dashboard/internal/document/inbound"
	"github.com/gocount/dashboard/internal/document/outbound/cache"
	"github.com/gocount/dashboard/internal/document/outbound/db"
	"github.com/gocount/dashboard/internal/document/usecase"
	"github.com/gocount/dashboard/internal/pkg/clock"
	"github.com/gocount/dashboard/internal/pkg/config"
	"github.com/gocount/dashboard/internal/pkg/goroutine"
	"github.com/gocount/dashboard/internal/pkg/hash"
	"github.com/gocount/dashboard/internal/pkg/idempotency"
	"github.com/gocount/dashboard/internal/pkg/instrument"
	"github.com/gocount/dashboard/internal/pkg/router"
	"github.com/gocount/dashboard/internal/pkg/storage"
	"github.com/gocount/dashboard/internal/pkg/uid"
	"github.com/gocount/dashboard/internal/pkg/validator"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Dependency struct {
	DBConn      *pgxpool.Pool              `validate:"required"`
	CacheConn   redis.UniversalClient      `validate:"required"`
	Router      *router.Router             `validate:"required"`
	Idempotency idempotency.Idempotency    `validate:"required"`
	Storage     storage.Storage            `validate:"required"`
	HMAC        *hash.HMACSHA256           `validate:"required"`
	Goroutine   *goroutine.Manager         `validate:"required"`
	Config      config.Config              `validate:"required"`
	Instrument  instrument.Instrumentation `validate:"required"`
	UID         uid.NumberID               `validate:"required"`
	Clock       clock.Clocker              `validate:"required"`
	Validator   validator.Validator        `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		RepoDB:      db.NewDB(dep.DBConn, dep.Instrument),
		RepoCache:   cache.New(dep.CacheConn, dep.Instrument),
		Idempotency: dep.Idempotency,
		Storage:     dep.Storage,
		APIKey:      dep.HMAC,
		Validator:   dep.Validator,
		Config:      dep.Config,
		UID:         dep.UID,
		Clock:       dep.Clock,
		Goroutine:   dep.Goroutine,
		Instrument:  dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}

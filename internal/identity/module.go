package identity

import (
	"github.com/gocount/dashboard/internal/identity/inbound"
	"github.com/gocount/dashboard/internal/identity/outbound/db"
	"github.com/gocount/dashboard/internal/identity/outbound/notify"
	"github.com/gocount/dashboard/internal/identity/usecase"
	"github.com/gocount/dashboard/internal/pkg/clock"
	"github.com/gocount/dashboard/internal/pkg/config"
	"github.com/gocount/dashboard/internal/pkg/hash"
	"github.com/gocount/dashboard/internal/pkg/instrument"
	"github.com/gocount/dashboard/internal/pkg/jwt"
	"github.com/gocount/dashboard/internal/pkg/otp"
	"github.com/gocount/dashboard/internal/pkg/router"
	"github.com/gocount/dashboard/internal/pkg/uid"
	"github.com/gocount/dashboard/internal/pkg/validator"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Dependency struct {
	DBConn       *pgxpool.Pool              `validate:"required"`
	Router       *router.Router             `validate:"required"`
	Notification notify.Deliverer           `validate:"required"`
	Config       config.Config              `validate:"required"`
	Instrument   instrument.Instrumentation `validate:"required"`
	UID          uid.NumberID               `validate:"required"`
	Bcrypt       hash.Hash                  `validate:"required"`
	Clock        clock.Clocker              `validate:"required"`
	OTP          otp.OTP                    `validate:"required"`
	Validator    validator.Validator        `validate:"required"`
	SessionJWT   jwt.JWT                    `validate:"required"`
	PendingJWT   jwt.JWT                    `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		RepoDB:     db.NewDB(dep.DBConn, dep.Instrument),
		Notifier:   notify.New(dep.Notification, dep.Instrument),
		Validator:  dep.Validator,
		Config:     dep.Config,
		Bcrypt:     dep.Bcrypt,
		OTP:        dep.OTP,
		UID:        dep.UID,
		Clock:      dep.Clock,
		SessionJWT: dep.SessionJWT,
		PendingJWT: dep.PendingJWT,
		Instrument: dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, inbound.CookieConfig{
		Name:   dep.Config.GetString("app.session.cookie_name"),
		Secure: dep.Config.GetBool("app.session.cookie_secure"),
	})

	return nil
}

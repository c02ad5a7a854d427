package usecase

import (
	"context"
	"time"

	"github.com/gocount/dashboard/internal/identity/entity"
	"github.com/gocount/dashboard/internal/pkg/clock"
	"github.com/gocount/dashboard/internal/pkg/config"
	"github.com/gocount/dashboard/internal/pkg/goerror"
	"github.com/gocount/dashboard/internal/pkg/hash"
	"github.com/gocount/dashboard/internal/pkg/instrument"
	"github.com/gocount/dashboard/internal/pkg/jwt"
	"github.com/gocount/dashboard/internal/pkg/otp"
	"github.com/gocount/dashboard/internal/pkg/uid"
	"github.com/gocount/dashboard/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type repoDB interface {
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUserByID(ctx context.Context, id int64) (*entity.User, error)
	GetOrganizationByID(ctx context.Context, id int64) (*entity.Organization, error)
	GetOrganizationBySlug(ctx context.Context, slug string) (*entity.Organization, error)

	CreateOrganization(ctx context.Context, org entity.Organization) error
	CreateUser(ctx context.Context, user entity.User) error

	CreateOTP(ctx context.Context, o entity.OneTimePassword) error
	GetActiveOTP(ctx context.Context, userID int64, purpose entity.OTPPurpose, now time.Time) (*entity.OneTimePassword, error)
	ConsumeOTP(ctx context.Context, id int64, now time.Time) (bool, error)
}

type notifier interface {
	Deliver(ctx context.Context, userID int64, address, subject, body string) error
}

type Usecase struct {
	repoDB     repoDB
	notifier   notifier
	validator  validator.Validator
	cfg        config.Config
	bcrypt     hash.Hash
	otp        otp.OTP
	uid        uid.NumberID
	clock      clock.Clocker
	sessionJWT jwt.JWT
	pendingJWT jwt.JWT
	ins        instrument.Instrumentation
}

type Dependency struct {
	RepoDB     repoDB
	Notifier   notifier
	Validator  validator.Validator
	Config     config.Config
	Bcrypt     hash.Hash
	OTP        otp.OTP
	UID        uid.NumberID
	Clock      clock.Clocker
	SessionJWT jwt.JWT
	PendingJWT jwt.JWT
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:     dep.RepoDB,
		notifier:   dep.Notifier,
		validator:  dep.Validator,
		cfg:        dep.Config,
		bcrypt:     dep.Bcrypt,
		otp:        dep.OTP,
		uid:        dep.UID,
		clock:      dep.Clock,
		sessionJWT: dep.SessionJWT,
		pendingJWT: dep.PendingJWT,
		ins:        dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("identity.usecase").Start(ctx, name)
}

func (s *Usecase) otpTTL() time.Duration {
	if ttl := s.cfg.GetMinute("modules.identity.otp_ttl_minutes"); ttl > 0 {
		return ttl
	}
	return 10 * time.Minute
}

func (s *Usecase) otpLength() int {
	return s.cfg.GetInt("modules.identity.otp_length")
}

func errInvalidCredentials() error {
	return goerror.NewBusinessErr(entity.ErrInvalidCredentials, "invalid email or password", goerror.CodeUnauthorized)
}

func errChallengeExpired() error {
	return goerror.NewBusinessErr(entity.ErrNoActiveChallenge, "login challenge expired, please sign in again", goerror.CodeUnauthorized)
}

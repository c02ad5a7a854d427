package usecase

import (
	"context"
	"time"

	"github.com/gocount/dashboard/internal/document/entity"
	"github.com/gocount/dashboard/internal/pkg/clock"
	"github.com/gocount/dashboard/internal/pkg/config"
	"github.com/gocount/dashboard/internal/pkg/goerror"
	"github.com/gocount/dashboard/internal/pkg/goroutine"
	"github.com/gocount/dashboard/internal/pkg/idempotency"
	"github.com/gocount/dashboard/internal/pkg/instrument"
	"github.com/gocount/dashboard/internal/pkg/jwt"
	"github.com/gocount/dashboard/internal/pkg/storage"
	"github.com/gocount/dashboard/internal/pkg/uid"
	"github.com/gocount/dashboard/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type repoDB interface {
	GetOrganizationIDsBySlugs(ctx context.Context, slugs []string) (map[string]int64, error)
	InsertDocuments(ctx context.Context, docs []entity.Document) (int64, error)

	ListRecentDocuments(ctx context.Context, orgID int64, limit int32) ([]entity.Document, error)
	CountDocuments(ctx context.Context, orgID int64) (*entity.Stats, error)
	ListDocuments(ctx context.Context, f entity.DocumentFilter) ([]entity.Document, int64, error)
	GetDocumentByID(ctx context.Context, orgID, id int64) (*entity.Document, error)
}

type repoCache interface {
	GetStats(ctx context.Context, orgID int64) (*entity.Stats, error)
	SetStats(ctx context.Context, orgID int64, st entity.Stats, ttl time.Duration) error
	DeleteStats(ctx context.Context, orgIDs ...int64) error
}

type keyComparer interface {
	Equal(expected, provided string) bool
}

type Usecase struct {
	repoDB    repoDB
	repoCache repoCache
	idemp     idempotency.Idempotency
	storage   storage.Storage
	apiKey    keyComparer
	validator validator.Validator
	cfg       config.Config
	uid       uid.NumberID
	clock     clock.Clocker
	goroutine *goroutine.Manager
	ins       instrument.Instrumentation
}

type Dependency struct {
	RepoDB      repoDB
	RepoCache   repoCache
	Idempotency idempotency.Idempotency
	Storage     storage.Storage
	APIKey      keyComparer
	Validator   validator.Validator
	Config      config.Config
	UID         uid.NumberID
	Clock       clock.Clocker
	Goroutine   *goroutine.Manager
	Instrument  instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:    dep.RepoDB,
		repoCache: dep.RepoCache,
		idemp:     dep.Idempotency,
		storage:   dep.Storage,
		apiKey:    dep.APIKey,
		validator: dep.Validator,
		cfg:       dep.Config,
		uid:       dep.UID,
		clock:     dep.Clock,
		goroutine: dep.Goroutine,
		ins:       dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("document.usecase").Start(ctx, name)
}

func (s *Usecase) auth(ctx context.Context) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil || clm.OrgID == 0 {
		return nil, goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}
	return clm, nil
}

package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gocount/dashboard/internal/document/entity"
	"github.com/gocount/dashboard/internal/pkg/clock"
	"github.com/gocount/dashboard/internal/pkg/config"
	"github.com/gocount/dashboard/internal/pkg/goerror"
	"github.com/gocount/dashboard/internal/pkg/goroutine"
	"github.com/gocount/dashboard/internal/pkg/hash"
	"github.com/gocount/dashboard/internal/pkg/idempotency"
	"github.com/gocount/dashboard/internal/pkg/instrument"
	"github.com/gocount/dashboard/internal/pkg/jwt"
	"github.com/gocount/dashboard/internal/pkg/storage"
	"github.com/gocount/dashboard/internal/pkg/uid"
	"github.com/gocount/dashboard/internal/pkg/validator"
	"github.com/stretchr/testify/require"
)

const testConfig = `
ingest:
  api_key: secret-ingest-key
storage:
  driver: minio
  presign_seconds: 120
modules:
  document:
    recent_limit: 20
    stats_cache_seconds: 60
`

type memRepo struct {
	mu    sync.Mutex
	orgs  map[string]int64
	docs  []entity.Document
	fail  error
	count int
}

func (m *memRepo) GetOrganizationIDsBySlugs(_ context.Context, slugs []string) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	out := map[string]int64{}
	for _, s := range slugs {
		if id, ok := m.orgs[s]; ok {
			out[s] = id
		}
	}
	return out, nil
}

func (m *memRepo) InsertDocuments(_ context.Context, docs []entity.Document) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = append(m.docs, docs...)
	return int64(len(docs)), nil
}

func (m *memRepo) byOrg(orgID int64) []entity.Document {
	var out []entity.Document
	for _, d := range m.docs {
		if d.OrgID == orgID {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m *memRepo) ListRecentDocuments(_ context.Context, orgID int64, limit int32) ([]entity.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.byOrg(orgID)
	if len(out) > int(limit) {
		out = out[:limit]
	}
	return out, nil
}

func (m *memRepo) CountDocuments(_ context.Context, orgID int64) (*entity.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count++
	st := &entity.Stats{}
	for _, d := range m.byOrg(orgID) {
		st.Total++
		switch d.Type {
		case entity.DocumentTypeIncome:
			st.Income++
		case entity.DocumentTypeExpense:
			st.Expense++
		}
	}
	return st, nil
}

func (m *memRepo) ListDocuments(_ context.Context, f entity.DocumentFilter) ([]entity.Document, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []entity.Document
	for _, d := range m.byOrg(f.OrgID) {
		if f.Type == "" || d.Type == f.Type {
			all = append(all, d)
		}
	}
	total := int64(len(all))
	start := min(int(f.Offset), len(all))
	end := min(start+int(f.Limit), len(all))
	return all[start:end], total, nil
}

func (m *memRepo) GetDocumentByID(_ context.Context, orgID, id int64) (*entity.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.docs {
		if d.ID == id && d.OrgID == orgID {
			return &d, nil
		}
	}
	return nil, goerror.ErrNotFound
}

type memCache struct {
	mu      sync.Mutex
	stats   map[int64]entity.Stats
	deleted []int64
}

func (c *memCache) GetStats(_ context.Context, orgID int64) (*entity.Stats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.stats[orgID]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &st, nil
}

func (c *memCache) SetStats(_ context.Context, orgID int64, st entity.Stats, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats[orgID] = st
	return nil
}

func (c *memCache) DeleteStats(_ context.Context, orgIDs ...int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range orgIDs {
		delete(c.stats, id)
		c.deleted = append(c.deleted, id)
	}
	return nil
}

// memIdempotency completes a key on success and releases it on failure.
type memIdempotency struct {
	mu   sync.Mutex
	done map[string]bool
}

func (i *memIdempotency) Exec(ctx context.Context, key string, fn func(context.Context) error, _ ...idempotency.Option) error {
	i.mu.Lock()
	if i.done[key] {
		i.mu.Unlock()
		return idempotency.ErrAlreadyCompleted
	}
	i.mu.Unlock()

	if err := fn(ctx); err != nil {
		return err
	}

	i.mu.Lock()
	i.done[key] = true
	i.mu.Unlock()
	return nil
}

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (s *memStorage) PutObject(_ context.Context, key string, r io.Reader, _ storage.PutOptions) (storage.ObjectInfo, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return storage.ObjectInfo{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = buf.Bytes()
	return storage.ObjectInfo{Key: key, Size: int64(buf.Len())}, nil
}

func (s *memStorage) PresignGet(_ context.Context, key string, expiry time.Duration) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "https://files.test/" + key + "?expires=" + expiry.String(), nil
}

func (*memStorage) Close() error { return nil }

type fixture struct {
	uc      *Usecase
	repo    *memRepo
	cache   *memCache
	storage *memStorage
	clock   *clock.Fixed
	bg      *goroutine.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureConfig(t, testConfig)
}

func newFixtureConfig(t *testing.T, yaml string) *fixture {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	require.NoError(t, err)

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	sf, err := uid.NewSnowflake(1)
	require.NoError(t, err)

	f := &fixture{
		repo:    &memRepo{orgs: map[string]int64{"count": 1, "other": 2}},
		cache:   &memCache{stats: map[int64]entity.Stats{}},
		storage: &memStorage{objects: map[string][]byte{}},
		clock:   clock.NewFixed(time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC)),
		bg:      goroutine.NewManager(4),
	}

	f.uc = New(Dependency{
		RepoDB:      f.repo,
		RepoCache:   f.cache,
		Idempotency: &memIdempotency{done: map[string]bool{}},
		Storage:     f.storage,
		APIKey:      hash.NewHMACSHA256("test"),
		Validator:   v,
		Config:      cfg,
		UID:         sf,
		Clock:       f.clock,
		Goroutine:   f.bg,
		Instrument:  instrument.NewNoop(),
	})

	return f
}

func authed(orgID int64) context.Context {
	return jwt.SetAuth(context.Background(), jwt.Claims{UserID: 10, OrgID: orgID, UserEmail: "a@b.co"})
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	var gerr *goerror.Error
	require.True(t, errors.As(err, &gerr), "want *goerror.Error, got %v", err)
	require.Equal(t, status, gerr.StatusCode())
}

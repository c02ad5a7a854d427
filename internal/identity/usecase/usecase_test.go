package usecase

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"
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
	"github.com/stretchr/testify/require"
)

const testConfig = `
modules:
  identity:
    otp_ttl_minutes: 10
    otp_length: 6
`

// memRepo is an in-memory repoDB. ConsumeOTP is a compare-and-set under the
// mutex, the same guarantee the UPDATE ... WHERE consumed_at IS NULL gives.
type memRepo struct {
	mu    sync.Mutex
	orgs  map[int64]entity.Organization
	users map[int64]entity.User
	otps  map[int64]entity.OneTimePassword

	consumeErr error
}

func newMemRepo() *memRepo {
	return &memRepo{
		orgs:  map[int64]entity.Organization{},
		users: map[int64]entity.User{},
		otps:  map[int64]entity.OneTimePassword{},
	}
}

func (m *memRepo) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (m *memRepo) GetUserByID(_ context.Context, id int64) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &u, nil
}

func (m *memRepo) GetOrganizationByID(_ context.Context, id int64) (*entity.Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orgs[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &o, nil
}

func (m *memRepo) GetOrganizationBySlug(_ context.Context, slug string) (*entity.Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orgs {
		if o.Slug == slug {
			return &o, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (m *memRepo) CreateOrganization(_ context.Context, org entity.Organization) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orgs {
		if o.Slug == org.Slug || o.Name == org.Name {
			return goerror.ErrConflict
		}
	}
	m.orgs[org.ID] = org
	return nil
}

func (m *memRepo) CreateUser(_ context.Context, user entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return goerror.ErrConflict
		}
	}
	m.users[user.ID] = user
	return nil
}

func (m *memRepo) CreateOTP(_ context.Context, o entity.OneTimePassword) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.otps[o.ID] = o
	return nil
}

func (m *memRepo) GetActiveOTP(_ context.Context, userID int64, purpose entity.OTPPurpose, now time.Time) (*entity.OneTimePassword, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var (
		latest entity.OneTimePassword
		found  bool
	)
	for _, o := range m.otps {
		if o.UserID == userID && o.Purpose == purpose && (!found || o.ID > latest.ID) {
			latest, found = o, true
		}
	}
	if !found || !latest.Active(now) {
		return nil, goerror.ErrNotFound
	}

	return &latest, nil
}

func (m *memRepo) ConsumeOTP(_ context.Context, id int64, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.consumeErr != nil {
		return false, m.consumeErr
	}

	o, ok := m.otps[id]
	if !ok || o.ConsumedAt != nil {
		return false, nil
	}
	o.ConsumedAt = &now
	m.otps[id] = o
	return true, nil
}

func (m *memRepo) rows(userID int64) []entity.OneTimePassword {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.OneTimePassword
	for _, o := range m.otps {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out
}

type sentMail struct {
	userID  int64
	address string
	subject string
	body    string
}

type memNotifier struct {
	mu   sync.Mutex
	sent []sentMail
	fail error
}

func (n *memNotifier) Deliver(_ context.Context, userID int64, address, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail != nil {
		return n.fail
	}
	n.sent = append(n.sent, sentMail{userID: userID, address: address, subject: subject, body: body})
	return nil
}

var reCode = regexp.MustCompile(`one-time code is: ([0-9]+)`)

func (n *memNotifier) lastCode(t *testing.T) string {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.sent)
	m := reCode.FindStringSubmatch(n.sent[len(n.sent)-1].body)
	require.Len(t, m, 2)
	return m[1]
}

type fixture struct {
	uc       *Usecase
	repo     *memRepo
	notifier *memNotifier
	clock    *clock.Fixed
	session  jwt.JWT
	pending  jwt.JWT
	bcrypt   *hash.Bcrypt
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(testConfig))
	require.NoError(t, err)

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	sf, err := uid.NewSnowflake(1)
	require.NoError(t, err)

	clk := clock.NewFixed(time.Date(2025, 1, 8, 9, 0, 0, 0, time.UTC))
	secret := []byte(strings.Repeat("k", 64))

	session, err := jwt.NewHS512(jwt.Config{
		Secret: secret, Issuer: "gocount", Audience: jwt.AudienceSession,
		TTL: 12 * time.Hour, Clock: clk, UUID: uid.NewUUID(),
	})
	require.NoError(t, err)

	pending, err := jwt.NewHS512(jwt.Config{
		Secret: secret, Issuer: "gocount", Audience: jwt.AudienceOTPPending,
		TTL: 10 * time.Minute, Clock: clk, UUID: uid.NewUUID(),
	})
	require.NoError(t, err)

	f := &fixture{
		repo:     newMemRepo(),
		notifier: &memNotifier{},
		clock:    clk,
		session:  session,
		pending:  pending,
		bcrypt:   hash.NewBcrypt(4, ""),
	}

	f.uc = New(Dependency{
		RepoDB:     f.repo,
		Notifier:   f.notifier,
		Validator:  v,
		Config:     cfg,
		Bcrypt:     f.bcrypt,
		OTP:        otp.NewGenerator(),
		UID:        sf,
		Clock:      clk,
		SessionJWT: session,
		PendingJWT: pending,
		Instrument: instrument.NewNoop(),
	})

	return f
}

func (f *fixture) seedUser(t *testing.T, email, password string, active bool) entity.User {
	t.Helper()

	org, err := f.uc.CreateOrganization(context.Background(), CreateOrganizationInput{Name: "Count"})
	require.NoError(t, err)

	out, err := f.uc.ProvisionUser(context.Background(), ProvisionUserInput{
		OrgSlug: org.Slug, Email: email, Password: password,
	})
	require.NoError(t, err)

	if !active {
		f.repo.mu.Lock()
		u := f.repo.users[out.User.ID]
		u.IsActive = false
		f.repo.users[out.User.ID] = u
		f.repo.mu.Unlock()
	}

	return out.User
}

func wrongCode(code string) string {
	if code == "000000" {
		return "111111"
	}
	return "000000"
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	var gerr *goerror.Error
	require.True(t, errors.As(err, &gerr), "expected goerror, got %v", err)
	require.Equal(t, status, gerr.StatusCode())
}

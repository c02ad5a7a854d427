package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gocount/dashboard/internal/identity/entity"
	"github.com/gocount/dashboard/internal/pkg/goerror"
	"github.com/gocount/dashboard/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_InvalidCredentials(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "a@x.com", "hunter2", true)
	f.seedUser(t, "off@x.com", "hunter2", false)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "UnknownEmail", email: "nobody@x.com", password: "hunter2"},
		{name: "WrongPassword", email: "a@x.com", password: "hunter3"},
		{name: "InactiveUser", email: "off@x.com", password: "hunter2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := f.uc.Login(context.Background(), LoginInput{Email: tt.email, Password: tt.password})
			require.Nil(t, out)
			require.ErrorIs(t, err, entity.ErrInvalidCredentials)
			requireStatus(t, err, http.StatusUnauthorized)

			var gerr *goerror.Error
			require.True(t, errors.As(err, &gerr))
			assert.Equal(t, "invalid email or password", gerr.Msg())
		})
	}

	assert.Empty(t, f.notifier.sent)
}

func TestLogin_InvalidInput(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Login(context.Background(), LoginInput{Email: "not-an-email", Password: "x"})
	requireStatus(t, err, http.StatusUnprocessableEntity)
}

func TestLogin_NormalizesEmailAndIssuesCode(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, "a@x.com", "hunter2", true)

	out, err := f.uc.Login(context.Background(), LoginInput{Email: "  A@X.com ", Password: "hunter2"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.ChallengeToken)
	assert.Equal(t, int64(600), out.ExpiresIn)
	assert.False(t, out.DeliveryFailed)

	require.Len(t, f.notifier.sent, 1)
	sent := f.notifier.sent[0]
	assert.Equal(t, "a@x.com", sent.address)
	assert.Equal(t, user.ID, sent.userID)
	assert.Equal(t, "Your gocount.ai login code", sent.subject)
	assert.Contains(t, sent.body, "It expires in 10 minutes.")

	code := f.notifier.lastCode(t)
	assert.Len(t, code, 6)

	rows := f.repo.rows(user.ID)
	require.Len(t, rows, 1)
	assert.NotEqual(t, code, rows[0].CodeHash)
	assert.NotContains(t, rows[0].CodeHash, code)
	assert.Equal(t, entity.OTPPurposeLogin, rows[0].Purpose)
	assert.Equal(t, f.clock.Now().Add(10*time.Minute), rows[0].ExpiresAt)
	assert.Nil(t, rows[0].ConsumedAt)

	clm, err := f.pending.Verify(out.ChallengeToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, clm.UserID)
}

func TestLogin_DeliveryFailureStillReturnsChallenge(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, "a@x.com", "hunter2", true)
	f.notifier.fail = errors.New("smtp down")

	out, err := f.uc.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "hunter2"})
	require.NoError(t, err)
	assert.True(t, out.DeliveryFailed)
	assert.NotEmpty(t, out.ChallengeToken)
	assert.Len(t, f.repo.rows(user.ID), 1)
}

func TestLogin_EndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.seedUser(t, "a@x.com", "hunter2", true)

	login, err := f.uc.Login(ctx, LoginInput{Email: "a@x.com", Password: "hunter2"})
	require.NoError(t, err)
	code := f.notifier.lastCode(t)

	_, err = f.uc.LoginVerify(ctx, LoginVerifyInput{ChallengeToken: login.ChallengeToken, Code: wrongCode(code)})
	require.ErrorIs(t, err, entity.ErrCodeMismatch)
	requireStatus(t, err, http.StatusUnauthorized)

	f.clock.Advance(time.Minute)

	out, err := f.uc.LoginVerify(ctx, LoginVerifyInput{ChallengeToken: login.ChallengeToken, Code: " " + code + " "})
	require.NoError(t, err)
	assert.Equal(t, user.ID, out.User.ID)
	assert.Equal(t, int64(12*3600), out.ExpiresIn)

	clm, err := f.session.Verify(out.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, clm.UserID)
	assert.Equal(t, user.OrgID, clm.OrgID)

	rows := f.repo.rows(user.ID)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].ConsumedAt)
	assert.Equal(t, f.clock.Now(), *rows[0].ConsumedAt)

	_, err = f.uc.LoginVerify(ctx, LoginVerifyInput{ChallengeToken: login.ChallengeToken, Code: code})
	require.ErrorIs(t, err, entity.ErrNoActiveChallenge)

	me, err := f.uc.Me(jwt.SetAuth(ctx, clm))
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", me.User.Email)
	assert.Equal(t, "count", me.Organization.Slug)
}

func TestLoginVerify_RejectsWrongAudience(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, "a@x.com", "hunter2", true)

	sessionToken, err := f.session.Generate(jwt.Subject{UserID: user.ID, OrgID: user.OrgID, Email: user.Email})
	require.NoError(t, err)

	_, err = f.uc.LoginVerify(context.Background(), LoginVerifyInput{ChallengeToken: sessionToken, Code: "123456"})
	require.ErrorIs(t, err, entity.ErrNoActiveChallenge)
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestLoginVerify_ExpiredChallenge(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "a@x.com", "hunter2", true)

	login, err := f.uc.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "hunter2"})
	require.NoError(t, err)
	code := f.notifier.lastCode(t)

	f.clock.Advance(11 * time.Minute)

	_, err = f.uc.LoginVerify(context.Background(), LoginVerifyInput{ChallengeToken: login.ChallengeToken, Code: code})
	require.ErrorIs(t, err, entity.ErrNoActiveChallenge)
}

func TestLoginResend(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser(t, "a@x.com", "hunter2", true)

	login, err := f.uc.Login(ctx, LoginInput{Email: "a@x.com", Password: "hunter2"})
	require.NoError(t, err)
	first := f.notifier.lastCode(t)

	resent, err := f.uc.LoginResend(ctx, LoginResendInput{ChallengeToken: login.ChallengeToken})
	require.NoError(t, err)
	second := f.notifier.lastCode(t)

	if first != second {
		_, err = f.uc.LoginVerify(ctx, LoginVerifyInput{ChallengeToken: resent.ChallengeToken, Code: first})
		require.ErrorIs(t, err, entity.ErrCodeMismatch)
	}

	_, err = f.uc.LoginVerify(ctx, LoginVerifyInput{ChallengeToken: resent.ChallengeToken, Code: second})
	require.NoError(t, err)
}

func TestLoginResend_DeliveryFailure(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "a@x.com", "hunter2", true)

	login, err := f.uc.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "hunter2"})
	require.NoError(t, err)

	f.notifier.fail = errors.New("smtp down")

	_, err = f.uc.LoginResend(context.Background(), LoginResendInput{ChallengeToken: login.ChallengeToken})
	require.ErrorIs(t, err, entity.ErrDeliveryFailure)
	requireStatus(t, err, http.StatusBadGateway)
}

func TestLogoutAndMe_RequireSession(t *testing.T) {
	f := newFixture(t)

	err := f.uc.Logout(context.Background())
	requireStatus(t, err, http.StatusUnauthorized)

	_, err = f.uc.Me(context.Background())
	requireStatus(t, err, http.StatusUnauthorized)

	require.NoError(t, f.uc.Logout(jwt.SetAuth(context.Background(), jwt.Claims{UserID: 1})))
}

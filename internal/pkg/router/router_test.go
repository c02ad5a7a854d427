package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gocount/dashboard/internal/pkg/clock"
	"github.com/gocount/dashboard/internal/pkg/config"
	"github.com/gocount/dashboard/internal/pkg/goerror"
	"github.com/gocount/dashboard/internal/pkg/instrument"
	"github.com/gocount/dashboard/internal/pkg/jwt"
	"github.com/gocount/dashboard/internal/pkg/uid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const routerConfig = `
app:
  session:
    cookie_name: gc_session
  maintenance:
    enabled: %s
    endpoints: "/api/v1/down"
instrument:
  log_mask_fields: "secret"
`

type fixture struct {
	router *Router
	jwt    jwt.JWT
}

func newFixture(t *testing.T, maintenance bool) *fixture {
	t.Helper()

	enabled := "false"
	if maintenance {
		enabled = "true"
	}
	cfg, err := config.NewViperFromBytes("yaml", []byte(strings.Replace(routerConfig, "%s", enabled, 1)))
	require.NoError(t, err)

	session, err := jwt.NewHS512(jwt.Config{
		Secret:   []byte(strings.Repeat("k", 64)),
		Issuer:   "gocount",
		Audience: jwt.AudienceSession,
		TTL:      time.Hour,
		Clock:    clock.New(),
		UUID:     uid.NewUUID(),
	})
	require.NoError(t, err)

	r := NewRouter(Config{
		Config:     cfg,
		UUID:       uid.NewUUID(),
		JWT:        session,
		Instrument: instrument.NewNoop(),
	})

	r.GET("/health", func(*Request) (any, error) {
		return map[string]string{"status": "ok"}, nil
	})

	return &fixture{router: r, jwt: session}
}

func (f *fixture) token(t *testing.T) string {
	t.Helper()
	tok, err := f.jwt.Generate(jwt.Subject{UserID: 7, OrgID: 3, Email: "a@x.com"})
	require.NoError(t, err)
	return tok
}

func (f *fixture) do(req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

type listResponse struct {
	Items []string `json:"items"`
}

func (listResponse) Message() string { return "listed" }

func (listResponse) Meta() map[string]any { return map[string]any{"total": 2} }

type createdResponse struct {
	ID string `json:"id"`
}

func (createdResponse) StatusCode() int { return http.StatusCreated }

func (createdResponse) Cookies() []*http.Cookie {
	return []*http.Cookie{{Name: "gc_session", Value: "fresh", Path: "/", HttpOnly: true}}
}

type emptyResponse struct{}

func (emptyResponse) StatusCode() int { return http.StatusNoContent }

func TestRouter_PublicAndProtected(t *testing.T) {
	f := newFixture(t, false)
	var seen *jwt.Claims
	f.router.GET("/api/v1/things/:id", func(r *Request) (any, error) {
		seen = jwt.GetAuth(r.Context())
		return listResponse{Items: []string{r.GetParam("id")}}, nil
	})

	t.Run("root is public", func(t *testing.T) {
		rec, body := f.do(httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "gocount dashboard api", body["message"])
	})

	t.Run("missing token", func(t *testing.T) {
		rec, body := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/things/1", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Authentication required", body["message"])
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/things/1", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec, body := f.do(req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid or expired token", body["message"])
	})

	t.Run("bearer token", func(t *testing.T) {
		seen = nil
		req := httptest.NewRequest(http.MethodGet, "/api/v1/things/42", nil)
		req.Header.Set("Authorization", "Bearer "+f.token(t))
		rec, body := f.do(req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "listed", body["message"])
		assert.Equal(t, map[string]any{"items": []any{"42"}}, body["data"])
		assert.Equal(t, map[string]any{"total": float64(2)}, body["meta"])
		require.NotNil(t, seen)
		assert.Equal(t, int64(7), seen.UserID)
		assert.Equal(t, int64(3), seen.OrgID)
	})

	t.Run("session cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/things/9", nil)
		req.AddCookie(&http.Cookie{Name: "gc_session", Value: f.token(t)})
		rec, _ := f.do(req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown route", func(t *testing.T) {
		rec, body := f.do(httptest.NewRequest(http.MethodGet, "/nope/nope", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "endpoint not found", body["message"])
	})
}

func TestRouter_ResponseCodec(t *testing.T) {
	f := newFixture(t, false)
	f.router.POST("/api/v1/things", func(*Request) (any, error) {
		return createdResponse{ID: "1"}, nil
	})
	f.router.POST("/api/v1/things/empty", func(*Request) (any, error) {
		return emptyResponse{}, nil
	})
	f.router.GET("/api/v1/fail/:kind", func(r *Request) (any, error) {
		switch r.GetParam("kind") {
		case "business":
			return nil, goerror.NewBusiness("already there", goerror.CodeConflict)
		case "fields":
			return nil, goerror.NewInvalidInput(nil, "email", "email is required")
		default:
			return nil, assert.AnError
		}
	})

	auth := func(req *http.Request) *http.Request {
		req.Header.Set("Authorization", "Bearer "+f.token(t))
		return req
	}

	rec, body := f.do(auth(httptest.NewRequest(http.MethodPost, "/api/v1/things", nil)))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "request has been successfully", body["message"])
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "fresh", cookies[0].Value)

	rec, _ = f.do(auth(httptest.NewRequest(http.MethodPost, "/api/v1/things/empty", nil)))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec, body = f.do(auth(httptest.NewRequest(http.MethodGet, "/api/v1/fail/business", nil)))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already there", body["message"])

	rec, body = f.do(auth(httptest.NewRequest(http.MethodGet, "/api/v1/fail/fields", nil)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, map[string]any{"email": "email is required"}, body["error"])

	rec, body = f.do(auth(httptest.NewRequest(http.MethodGet, "/api/v1/fail/plain", nil)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", body["message"])
}

func TestRouter_PanicRecovered(t *testing.T) {
	f := newFixture(t, false)
	f.router.GET("/health/panic", func(*Request) (any, error) {
		panic("boom")
	})

	req := httptest.NewRequest(http.MethodGet, "/health/panic", nil)
	req.Header.Set("Authorization", "Bearer "+f.token(t))
	rec, body := f.do(req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", body["message"])
}

func TestRouter_Maintenance(t *testing.T) {
	t.Run("listed endpoint", func(t *testing.T) {
		f := newFixture(t, false)
		f.router.GET("/api/v1/down", func(*Request) (any, error) { return map[string]string{}, nil })
		f.router.GET("/api/v1/up", func(*Request) (any, error) { return map[string]string{}, nil })

		req := httptest.NewRequest(http.MethodGet, "/api/v1/down", nil)
		req.Header.Set("Authorization", "Bearer "+f.token(t))
		rec, _ := f.do(req)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "120", rec.Header().Get("Retry-After"))

		req = httptest.NewRequest(http.MethodGet, "/api/v1/up", nil)
		req.Header.Set("Authorization", "Bearer "+f.token(t))
		rec, _ = f.do(req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("global switch keeps health", func(t *testing.T) {
		f := newFixture(t, true)
		f.router.GET("/api/v1/up", func(*Request) (any, error) { return map[string]string{}, nil })

		req := httptest.NewRequest(http.MethodGet, "/api/v1/up", nil)
		req.Header.Set("Authorization", "Bearer "+f.token(t))
		rec, body := f.do(req)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "service is under maintenance", body["message"])

		rec, _ = f.do(httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRouter_CorrelationID(t *testing.T) {
	f := newFixture(t, false)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(HeaderCorrelationID, "abc-123")
	rec, _ := f.do(req)
	assert.Equal(t, "abc-123", rec.Header().Get(HeaderCorrelationID))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(HeaderRequestID, "from-proxy")
	rec, _ = f.do(req)
	assert.Equal(t, "from-proxy", rec.Header().Get(HeaderCorrelationID))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(HeaderCorrelationID, "bad id\nwith newline")
	rec, _ = f.do(req)
	got := rec.Header().Get(HeaderCorrelationID)
	assert.NotEmpty(t, got)
	assert.NotContains(t, got, " ")
}

func TestRouter_Metrics(t *testing.T) {
	f := newFixture(t, false)

	rec, _ := f.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/health",status="200"} 1`)
}

func TestRequest_Decode(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	newReq := func(body string) *Request {
		return &Request{Request: httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))}
	}

	var p payload
	require.NoError(t, newReq(`{"name":"a"}`).DecodeBody(&p))
	assert.Equal(t, "a", p.Name)

	assert.Error(t, newReq(`{"name":"a","extra":1}`).DecodeBody(&p))
	assert.NoError(t, newReq(`{"name":"b","extra":1}`).DecodeBodyLenient(&p))
	assert.Equal(t, "b", p.Name)

	assert.Error(t, newReq(`{"name":"a"} {"name":"b"}`).DecodeBodyLenient(&p))
	assert.Error(t, newReq(`not json`).DecodeBody(&p))
}

func TestMasker(t *testing.T) {
	m := newMasker(nil)

	h := http.Header{}
	h.Set("Authorization", "Bearer x")
	h.Set("X-Api-Key", "k")
	h.Set("Accept", "application/json")
	assert.Equal(t, map[string]string{
		"Authorization": masked,
		"X-Api-Key":     masked,
		"Accept":        "application/json",
	}, m.header(h))

	got := m.body([]byte(`{"email":"a@x.com","password":"p","nested":[{"code":"123456"}]}`), false)
	assert.Equal(t, map[string]any{
		"email":    "a@x.com",
		"password": masked,
		"nested":   []any{map[string]any{"code": masked}},
	}, got)

	assert.Equal(t, map[string]any{"bytes": 3, "json": false}, m.body([]byte("abc"), false))
	assert.Equal(t, map[string]any{"bytes": 3, "truncated": true}, m.body([]byte("abc"), true))
	assert.Nil(t, m.body(nil, false))
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "remote addr", remote: "10.0.0.1:5555", want: "10.0.0.1"},
		{name: "forwarded first hop", headers: map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"}, remote: "10.0.0.1:1", want: "203.0.113.9"},
		{name: "real ip wins over forwarded", headers: map[string]string{"X-Real-IP": "198.51.100.2", "X-Forwarded-For": "203.0.113.9"}, remote: "10.0.0.1:1", want: "198.51.100.2"},
		{name: "mapped v4", remote: "[::ffff:192.0.2.1]:80", want: "192.0.2.1"},
		{name: "bad header falls back", headers: map[string]string{"X-Real-IP": "nope"}, remote: "10.0.0.2:1", want: "10.0.0.2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			addr, ok := clientIP(req)
			require.True(t, ok)
			assert.Equal(t, tt.want, addr.String())
		})
	}
}

package inbound

import (
	"net/http"
	"time"

	"github.com/gocount/dashboard/internal/identity/entity"
	"github.com/gocount/dashboard/internal/identity/usecase"
	"github.com/gocount/dashboard/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for the email code login flow.
type HTTPEndpoint struct {
	uc     uc
	cookie CookieConfig
}

// Login checks the password and emails a one-time code.
// A stored but undelivered code answers 202 with delivery_failed set.
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Login(r.Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	return LoginResponse{
		ChallengeToken: resp.ChallengeToken,
		ExpiresIn:      resp.ExpiresIn,
		DeliveryFailed: resp.DeliveryFailed,
	}, nil
}

// LoginVerify exchanges the pending challenge and code for a session.
func (h *HTTPEndpoint) LoginVerify(r *router.Request) (any, error) {
	var req LoginVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.LoginVerify(r.Context(), usecase.LoginVerifyInput{
		ChallengeToken: req.ChallengeToken,
		Code:           req.Code,
	})
	if err != nil {
		return nil, err
	}

	return LoginVerifyResponse{
		SessionToken: resp.SessionToken,
		ExpiresIn:    resp.ExpiresIn,
		User:         toUserResponse(resp.User),
		cookie:       h.sessionCookie(resp.SessionToken, int(resp.ExpiresIn)),
	}, nil
}

func (h *HTTPEndpoint) LoginResend(r *router.Request) (any, error) {
	var req LoginResendRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.LoginResend(r.Context(), usecase.LoginResendInput{ChallengeToken: req.ChallengeToken})
	if err != nil {
		return nil, err
	}

	return LoginResendResponse{
		ChallengeToken: resp.ChallengeToken,
		ExpiresIn:      resp.ExpiresIn,
	}, nil
}

func (h *HTTPEndpoint) Logout(r *router.Request) (any, error) {
	if err := h.uc.Logout(r.Context()); err != nil {
		return nil, err
	}

	return LogoutResponse{cookie: h.sessionCookie("", -1)}, nil
}

func (h *HTTPEndpoint) Me(r *router.Request) (any, error) {
	resp, err := h.uc.Me(r.Context())
	if err != nil {
		return nil, err
	}

	return MeResponse{
		User: toUserResponse(resp.User),
		Organization: OrganizationResponse{
			ID:   formatID(resp.Organization.ID),
			Name: resp.Organization.Name,
			Slug: resp.Organization.Slug,
		},
	}, nil
}

// sessionCookie builds the session cookie; a negative maxAge deletes it.
func (h *HTTPEndpoint) sessionCookie(value string, maxAge int) *http.Cookie {
	c := &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge < 0 {
		c.Expires = time.Unix(0, 0)
	}
	return c
}

func toUserResponse(u entity.User) UserResponse {
	return UserResponse{
		ID:        formatID(u.ID),
		OrgID:     formatID(u.OrgID),
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

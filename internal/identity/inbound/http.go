package inbound

import (
	"context"

	"github.com/gocount/dashboard/internal/identity/usecase"
	"github.com/gocount/dashboard/internal/pkg/router"
)

type uc interface {
	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error)
	LoginVerify(ctx context.Context, in usecase.LoginVerifyInput) (*usecase.LoginVerifyOutput, error)
	LoginResend(ctx context.Context, in usecase.LoginResendInput) (*usecase.LoginResendOutput, error)

	Logout(ctx context.Context) error
	Me(ctx context.Context) (*usecase.MeOutput, error)
}

// CookieConfig describes the session cookie set after a verified login.
type CookieConfig struct {
	Name   string
	Secure bool
}

func RegisterHTTPEndpoint(r *router.Router, uc uc, cookie CookieConfig) {
	if cookie.Name == "" {
		cookie.Name = "session"
	}

	end := &HTTPEndpoint{uc: uc, cookie: cookie}

	r.POST("/api/v1/identity/login", end.Login)
	r.POST("/api/v1/identity/login/verify", end.LoginVerify)
	r.POST("/api/v1/identity/login/resend", end.LoginResend)
	//
	r.POST("/api/v1/identity/logout", end.Logout) // need authenticated
	r.GET("/api/v1/identity/me", end.Me)          // need authenticated
}

package app

import (
	"log/slog"
	"os"

	"github.com/gocount/dashboard/internal/document"
	"github.com/gocount/dashboard/internal/identity"
	"github.com/gocount/dashboard/internal/notification"
)

// initModules wires notification first: identity delivers login codes through it.
func (a *App) initModules() {
	notifier, err := notification.New(notification.Dependency{
		DBConn:     a.dbConn,
		Router:     a.router,
		Mail:       a.mail,
		Instrument: a.ins,
		UID:        a.uid,
		Clock:      a.clock,
		Validator:  a.validator,
	})
	if err != nil {
		slog.Error("failed to init module notification", "error", err)
		os.Exit(1)
	}

	if err := identity.New(identity.Dependency{
		DBConn:       a.dbConn,
		Router:       a.router,
		Notification: notifier,
		Config:       a.config,
		Instrument:   a.ins,
		UID:          a.uid,
		Bcrypt:       a.bcrypt,
		Clock:        a.clock,
		OTP:          a.otp,
		Validator:    a.validator,
		SessionJWT:   a.session,
		PendingJWT:   a.pending,
	}); err != nil {
		slog.Error("failed to init module identity", "error", err)
		os.Exit(1)
	}

	if err := document.New(document.Dependency{
		DBConn:      a.dbConn,
		CacheConn:   a.cacheConn,
		Router:      a.router,
		Idempotency: a.idemp,
		Storage:     a.storage,
		HMAC:        a.hmac,
		Goroutine:   a.goroutine,
		Config:      a.config,
		Instrument:  a.ins,
		UID:         a.uid,
		Clock:       a.clock,
		Validator:   a.validator,
	}); err != nil {
		slog.Error("failed to init module document", "error", err)
		os.Exit(1)
	}
}

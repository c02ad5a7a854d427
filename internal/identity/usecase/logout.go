package usecase

import (
	"context"
	"log/slog"

	"github.com/gocount/dashboard/internal/pkg/goerror"
	"github.com/gocount/dashboard/internal/pkg/jwt"
)

// Logout ends the session. Session tokens are stateless, so the only effect
// is the cleared cookie written by the inbound layer.
func (s *Usecase) Logout(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "Logout")
	defer span.End()

	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}

	slog.InfoContext(ctx, "user signed out", "user_id", clm.UserID)

	return nil
}

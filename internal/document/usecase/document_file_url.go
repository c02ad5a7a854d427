package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gocount/dashboard/internal/pkg/goerror"
	"github.com/gocount/dashboard/internal/pkg/storage"
)

type DocumentFileURLInput struct {
	ID int64 `validate:"required,gt=0"`
}

type DocumentFileURLOutput struct {
	URL       string
	ExpiresAt time.Time
}

// DocumentFileURL returns a presigned download link for the document's file
// key. Documents of other organizations are reported as not found.
func (s *Usecase) DocumentFileURL(ctx context.Context, in DocumentFileURLInput) (*DocumentFileURLOutput, error) {
	ctx, span := s.startSpan(ctx, "DocumentFileURL")
	defer span.End()

	clm, err := s.auth(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	doc, err := s.repoDB.GetDocumentByID(ctx, clm.OrgID, in.ID)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewBusiness("document not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get document", "org_id", clm.OrgID, "document_id", in.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if doc.File == "" {
		return nil, goerror.NewBusiness("document has no file", goerror.CodeNotFound)
	}

	expiry := s.cfg.GetSecond("storage.presign_seconds")
	if expiry <= 0 {
		expiry = 5 * time.Minute
	}

	url, err := s.storage.PresignGet(ctx, doc.File, expiry)
	if errors.Is(err, storage.ErrDisabled) {
		return nil, goerror.NewBusiness("file storage is not configured", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to presign document file", "document_id", doc.ID, "error", err)
		return nil, goerror.NewBusinessErr(err, "file storage unavailable", goerror.CodeBadGateway)
	}

	return &DocumentFileURLOutput{
		URL:       url,
		ExpiresAt: s.clock.Now().Add(expiry),
	}, nil
}

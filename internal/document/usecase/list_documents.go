package usecase

import (
	"context"
	"log/slog"

	"github.com/gocount/dashboard/internal/document/entity"
	"github.com/gocount/dashboard/internal/pkg/goerror"
)

type ListDocumentsInput struct {
	Type string `validate:"omitempty,oneof=income expense unknown"`
	Page int32  `validate:"gte=0"`
	Size int32  `validate:"gte=0,lte=100"`
}

type ListDocumentsOutput struct {
	Items []entity.Document
	Total int64
	Page  int32
	Size  int32
}

func (s *Usecase) ListDocuments(ctx context.Context, in ListDocumentsInput) (*ListDocumentsOutput, error) {
	ctx, span := s.startSpan(ctx, "ListDocuments")
	defer span.End()

	clm, err := s.auth(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	page := max(in.Page, 1)
	size := in.Size
	if size == 0 {
		size = defaultRecentLimit
	}

	f := entity.DocumentFilter{
		OrgID:  clm.OrgID,
		Limit:  size,
		Offset: (page - 1) * size,
	}
	if in.Type != "" {
		f.Type = entity.DocumentTypeFromString(in.Type)
	}

	items, total, err := s.repoDB.ListDocuments(ctx, f)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list documents", "org_id", clm.OrgID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &ListDocumentsOutput{
		Items: items,
		Total: total,
		Page:  page,
		Size:  size,
	}, nil
}

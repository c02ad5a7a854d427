package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gocount/dashboard/internal/document/entity"
	"github.com/gocount/dashboard/internal/pkg/goerror"
	"github.com/gocount/dashboard/internal/pkg/idempotency"
	"github.com/gocount/dashboard/internal/pkg/storage"
	"github.com/samber/lo"
)

type IngestDocument struct {
	OrgSlug  string  `json:"org_slug" validate:"required,max=100"`
	Date     string  `json:"date" validate:"max=32"`
	Name     string  `json:"name" validate:"max=300"`
	File     string  `json:"file" validate:"max=300"`
	Type     string  `json:"type" validate:"omitempty,oneof=income expense unknown"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency" validate:"max=8"`
	Status   string  `json:"status" validate:"max=64"`
}

type IngestInput struct {
	APIKey         string
	IdempotencyKey string           `validate:"omitempty,max=128"`
	Documents      []IngestDocument `validate:"max=1000,dive"`
}

type IngestOutput struct {
	Inserted int64
}

// Ingest stores a batch of extracted documents. Every document names its
// organization by slug; one unknown slug rejects the whole batch. An empty
// batch is accepted and inserts nothing.
func (s *Usecase) Ingest(ctx context.Context, in IngestInput) (*IngestOutput, error) {
	ctx, span := s.startSpan(ctx, "Ingest")
	defer span.End()

	expected := s.cfg.GetString("ingest.api_key")
	if expected == "" || !s.apiKey.Equal(expected, in.APIKey) {
		slog.WarnContext(ctx, "ingest rejected, bad api key")
		return nil, goerror.NewBusiness("bad api key", goerror.CodeUnauthorized)
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if len(in.Documents) == 0 {
		return &IngestOutput{}, nil
	}

	if in.IdempotencyKey == "" {
		return s.ingest(ctx, in.Documents)
	}

	var out *IngestOutput
	err := s.idemp.Exec(ctx, "ingest:"+in.IdempotencyKey, func(ctx context.Context) error {
		var err error
		out, err = s.ingest(ctx, in.Documents)
		return err
	})
	if errors.Is(err, idempotency.ErrAlreadyCompleted) || errors.Is(err, idempotency.ErrAlreadyInProgress) {
		slog.WarnContext(ctx, "ingest replayed", "idempotency_key", in.IdempotencyKey, "error", err)
		return nil, goerror.NewBusiness("batch with this Idempotency-Key was already submitted", goerror.CodeConflict)
	}
	if err != nil {
		var gerr *goerror.Error
		if errors.As(err, &gerr) {
			return nil, err
		}
		slog.ErrorContext(ctx, "failed to run idempotent ingest", "idempotency_key", in.IdempotencyKey, "error", err)
		return nil, goerror.NewServer(err)
	}

	return out, nil
}

func (s *Usecase) ingest(ctx context.Context, items []IngestDocument) (*IngestOutput, error) {
	slugs := lo.Uniq(lo.Map(items, func(d IngestDocument, _ int) string {
		return strings.TrimSpace(d.OrgSlug)
	}))

	orgIDs, err := s.repoDB.GetOrganizationIDsBySlugs(ctx, slugs)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo resolve org slugs", "error", err)
		return nil, goerror.NewServer(err)
	}

	for _, slug := range slugs {
		if _, ok := orgIDs[slug]; !ok {
			return nil, goerror.NewInvalidFormat("unknown org slug " + slug)
		}
	}

	now := s.clock.Now()
	docs := make([]entity.Document, 0, len(items))
	for _, it := range items {
		docs = append(docs, entity.Document{
			ID:        s.uid.Generate(),
			OrgID:     orgIDs[strings.TrimSpace(it.OrgSlug)],
			Date:      strings.TrimSpace(it.Date),
			Name:      it.Name,
			File:      it.File,
			Type:      entity.DocumentTypeFromString(it.Type),
			Amount:    it.Amount,
			Currency:  lo.Ternary(strings.TrimSpace(it.Currency) == "", entity.DefaultCurrency, strings.TrimSpace(it.Currency)),
			Status:    lo.Ternary(strings.TrimSpace(it.Status) == "", entity.DefaultStatus, strings.TrimSpace(it.Status)),
			CreatedAt: now,
		})
	}

	inserted, err := s.repoDB.InsertDocuments(ctx, docs)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, goerror.NewInvalidFormat("organization removed while ingesting, retry the batch")
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo insert documents", "count", len(docs), "error", err)
		return nil, goerror.NewServer(err)
	}

	affected := lo.Uniq(lo.Values(orgIDs))
	if err := s.repoCache.DeleteStats(ctx, affected...); err != nil {
		slog.WarnContext(ctx, "failed to invalidate document stats", "org_ids", affected, "error", err)
	}

	s.archive(ctx, docs)

	slog.InfoContext(ctx, "documents ingested", "inserted", inserted, "orgs", len(affected))

	return &IngestOutput{Inserted: inserted}, nil
}

// archive uploads the stored batch as JSON in the background.
func (s *Usecase) archive(ctx context.Context, docs []entity.Document) {
	driver := strings.ToLower(strings.TrimSpace(s.cfg.GetString("storage.driver")))
	if driver == "" || driver == storage.DriverNone {
		return
	}

	batchID := s.uid.Generate()
	key := fmt.Sprintf("ingest/%s/%d.json", s.clock.Now().Format("2006/01/02"), batchID)

	err := s.goroutine.Go(ctx, func(ctx context.Context) error {
		payload, err := json.Marshal(docs)
		if err != nil {
			return err
		}

		if _, err := s.storage.PutObject(ctx, key, bytes.NewReader(payload), storage.PutOptions{
			Size:        int64(len(payload)),
			ContentType: "application/json",
			Metadata:    map[string]string{"documents": fmt.Sprint(len(docs))},
		}); err != nil {
			return fmt.Errorf("archive ingest batch %s: %w", key, err)
		}

		slog.InfoContext(ctx, "ingest batch archived", "key", key)
		return nil
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to schedule ingest archive", "key", key, "error", err)
	}
}

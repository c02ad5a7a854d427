package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gocount/dashboard/internal/document/entity"
	"github.com/gocount/dashboard/internal/pkg/goerror"
	"golang.org/x/sync/errgroup"
)

const defaultRecentLimit = 20

type DashboardOutput struct {
	Recent          []entity.Document
	Stats           entity.Stats
	ThisMonthAmount float64
	Currency        string
}

// Dashboard summarizes the caller's organization. The this-month amount only
// covers the recent documents whose date parses, matching what the page lists.
func (s *Usecase) Dashboard(ctx context.Context) (*DashboardOutput, error) {
	ctx, span := s.startSpan(ctx, "Dashboard")
	defer span.End()

	clm, err := s.auth(ctx)
	if err != nil {
		return nil, err
	}

	limit := s.cfg.GetInt32("modules.document.recent_limit")
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	var (
		recent []entity.Document
		stats  *entity.Stats
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		recent, err = s.repoDB.ListRecentDocuments(gctx, clm.OrgID, limit)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = s.stats(gctx, clm.OrgID)
		return err
	})
	if err := g.Wait(); err != nil {
		slog.ErrorContext(ctx, "failed to load dashboard", "org_id", clm.OrgID, "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now().UTC()
	out := &DashboardOutput{
		Recent:   recent,
		Stats:    *stats,
		Currency: entity.DefaultCurrency,
	}

	for _, d := range recent {
		if d.IssuedIn(now) {
			out.ThisMonthAmount += d.Amount
		}
	}

	if len(recent) > 0 && recent[0].Currency != "" {
		out.Currency = recent[0].Currency
	}

	return out, nil
}

// stats reads through the redis cache. Cache failures fall back to the database.
func (s *Usecase) stats(ctx context.Context, orgID int64) (*entity.Stats, error) {
	st, err := s.repoCache.GetStats(ctx, orgID)
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "failed to read document stats cache", "org_id", orgID, "error", err)
	}

	st, err = s.repoDB.CountDocuments(ctx, orgID)
	if err != nil {
		return nil, err
	}

	ttl := s.cfg.GetSecond("modules.document.stats_cache_seconds")
	if ttl <= 0 {
		ttl = time.Minute
	}

	if err := s.repoCache.SetStats(ctx, orgID, *st, ttl); err != nil {
		slog.WarnContext(ctx, "failed to write document stats cache", "org_id", orgID, "error", err)
	}

	return st, nil
}

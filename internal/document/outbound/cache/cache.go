package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/gocount/dashboard/internal/document/entity"
	"github.com/gocount/dashboard/internal/pkg/goerror"
	"github.com/gocount/dashboard/internal/pkg/instrument"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const statsKeyPrefix = "document:stats:"

// Cache keeps per organization document stats in redis.
type Cache struct {
	client redis.UniversalClient
	ins    instrument.Instrumentation
}

func New(client redis.UniversalClient, ins instrument.Instrumentation) *Cache {
	return &Cache{client: client, ins: ins}
}

func statsKey(orgID int64) string {
	return statsKeyPrefix + strconv.FormatInt(orgID, 10)
}

func (c *Cache) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("document.outbound.cache").Start(ctx, name)
}

func (c *Cache) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// GetStats returns goerror.ErrNotFound on a cache miss.
func (c *Cache) GetStats(ctx context.Context, orgID int64) (_ *entity.Stats, err error) {
	ctx, span := c.startSpan(ctx, "GetStats")
	defer func() { c.endSpan(span, err) }()

	raw, err := c.client.Get(ctx, statsKey(orgID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, goerror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var st entity.Stats
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, err
	}

	return &st, nil
}

func (c *Cache) SetStats(ctx context.Context, orgID int64, st entity.Stats, ttl time.Duration) (err error) {
	ctx, span := c.startSpan(ctx, "SetStats")
	defer func() { c.endSpan(span, err) }()

	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, statsKey(orgID), raw, ttl).Err()
}

func (c *Cache) DeleteStats(ctx context.Context, orgIDs ...int64) (err error) {
	ctx, span := c.startSpan(ctx, "DeleteStats")
	defer func() { c.endSpan(span, err) }()

	if len(orgIDs) == 0 {
		return nil
	}

	keys := make([]string, 0, len(orgIDs))
	for _, id := range orgIDs {
		keys = append(keys, statsKey(id))
	}

	return c.client.Del(ctx, keys...).Err()
}

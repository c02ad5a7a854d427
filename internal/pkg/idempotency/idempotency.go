// Package idempotency tracks client supplied idempotency keys in redis so a
// retried request is not applied twice.
package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrAlreadyInProgress = errors.New("operation already in progress")
	ErrAlreadyCompleted  = errors.New("operation already completed")
	ErrInvalidState      = errors.New("invalid state")
)

// State is the value stored under a key.
type State string

const (
	StateNone       State = ""
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

// Idempotency guards an operation by key.
type Idempotency interface {
	// Exec runs fn unless key is already in progress or completed. A failed fn
	// releases the key so the client may retry.
	Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error
}

const (
	defaultLockDuration = time.Minute
	defaultStateTTL     = 24 * time.Hour
)

// claimScript stores in_progress with a PX expiry when the key is absent and
// returns the previous value, or "" when the claim succeeded. One round trip,
// no window between the check and the set.
var claimScript = redis.NewScript(`
local cur = redis.call("GET", KEYS[1])
if cur then
	return cur
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
return ""
`)

// StateTracker implements Idempotency on redis.
type StateTracker struct {
	client redis.UniversalClient
	prefix string
}

// New returns a StateTracker storing keys under prefix.
func New(client redis.UniversalClient, prefix string) *StateTracker {
	if prefix == "" {
		prefix = "idempotency:"
	}
	return &StateTracker{client: client, prefix: prefix}
}

type Option func(*execOptions)

type execOptions struct {
	lockDuration time.Duration
	stateTTL     time.Duration
}

// WithLockDuration bounds how long an in-progress marker survives a crash.
func WithLockDuration(d time.Duration) Option {
	return func(o *execOptions) { o.lockDuration = d }
}

// WithStateTTL sets how long a completed key is remembered.
func WithStateTTL(d time.Duration) Option {
	return func(o *execOptions) { o.stateTTL = d }
}

// Acquire claims key for lockDuration. It returns StateNone when the caller
// now owns the key, otherwise the state someone else left.
func (s *StateTracker) Acquire(ctx context.Context, key string, lockDuration time.Duration) (State, error) {
	prev, err := claimScript.Run(ctx, s.client, []string{s.prefix + key},
		string(StateInProgress), lockDuration.Milliseconds()).Text()
	if err != nil {
		return StateNone, err
	}

	switch st := State(prev); st {
	case StateNone, StateInProgress, StateCompleted:
		return st, nil
	default:
		return StateNone, ErrInvalidState
	}
}

// MarkCompleted records key as done for ttl.
func (s *StateTracker) MarkCompleted(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, string(StateCompleted), ttl).Err()
}

// Release forgets key.
func (s *StateTracker) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

// Exec implements Idempotency.
func (s *StateTracker) Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error {
	o := execOptions{lockDuration: defaultLockDuration, stateTTL: defaultStateTTL}
	for _, opt := range opts {
		opt(&o)
	}
	o.lockDuration = max(o.lockDuration, time.Millisecond)
	if o.stateTTL <= 0 {
		o.stateTTL = defaultStateTTL
	}

	state, err := s.Acquire(ctx, key, o.lockDuration)
	switch {
	case err != nil:
		return err
	case state == StateInProgress:
		return ErrAlreadyInProgress
	case state == StateCompleted:
		return ErrAlreadyCompleted
	}

	// the outcome is recorded even if the request context is gone by now
	bg := context.WithoutCancel(ctx)
	if err := fn(ctx); err != nil {
		return errors.Join(err, s.Release(bg, key))
	}
	return s.MarkCompleted(bg, key, o.stateTTL)
}

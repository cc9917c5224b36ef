package authcore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/reelgate/authcore/claims"
	internalaudit "github.com/reelgate/authcore/internal/audit"
	"github.com/reelgate/authcore/password"
	"github.com/reelgate/authcore/revocation"
	"github.com/reelgate/authcore/token"
)

// Dependencies are the external collaborators an Engine is wired to. Redis,
// Users, Roles, and Subscriptions are required. Hasher defaults to Argon2id
// with the configured cost parameters; AuditSink defaults to a no-op sink.
type Dependencies struct {
	Redis         redis.UniversalClient
	Users         UserDirectory
	Roles         RoleDirectory
	Subscriptions SubscriptionDirectory
	Hasher        PasswordHasher
	AuditSink     AuditSink
}

// Engine is the façade over account, token, and authorization operations.
// Configure it once with New and treat it as immutable; all methods are safe
// for concurrent use.
type Engine struct {
	config  Config
	users   UserDirectory
	roles   RoleDirectory
	subs    SubscriptionDirectory
	hasher  PasswordHasher
	tokens  *token.Service
	store   *revocation.Store
	audit   *internalaudit.Dispatcher
	metrics *Metrics

	now   func() time.Time
	newID func() string
}

// New validates the configuration and wires an Engine.
func New(cfg Config, deps Dependencies) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Redis == nil {
		return nil, errors.New("authcore: redis client is required")
	}
	if deps.Users == nil {
		return nil, errors.New("authcore: user directory is required")
	}
	if deps.Roles == nil {
		return nil, errors.New("authcore: role directory is required")
	}
	if deps.Subscriptions == nil {
		return nil, errors.New("authcore: subscription directory is required")
	}

	cfg = cloneConfig(cfg)

	hasher := deps.Hasher
	if hasher == nil {
		h, err := password.NewHasher(password.Params{
			Memory:      cfg.Password.Memory,
			Time:        cfg.Password.Time,
			Parallelism: cfg.Password.Parallelism,
			SaltLength:  cfg.Password.SaltLength,
			KeyLength:   cfg.Password.KeyLength,
		})
		if err != nil {
			return nil, err
		}
		hasher = h
	}

	e := &Engine{
		config:  cfg,
		users:   deps.Users,
		roles:   deps.Roles,
		subs:    deps.Subscriptions,
		hasher:  hasher,
		store:   revocation.NewStore(deps.Redis, cfg.Revocation.RedisPrefix),
		metrics: NewMetrics(cfg.Metrics),
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}

	tokens, err := token.NewService(token.Config{
		AccessSecret:  cfg.Tokens.AccessSecret,
		RefreshSecret: cfg.Tokens.RefreshSecret,
		Algorithm:     cfg.Tokens.Algorithm,
		AccessTTL:     cfg.Tokens.AccessTTL,
		RefreshTTL:    cfg.Tokens.RefreshTTL,
	}, e.store, e)
	if err != nil {
		return nil, err
	}
	e.tokens = tokens

	e.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, deps.AuditSink)

	return e, nil
}

// Close drains and stops the audit dispatcher. The engine must not be used
// after Close.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// AuditDropped reports how many audit events were discarded under
// backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all counters and
// histograms.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// ready guards every public operation against a zero or nil Engine.
func (e *Engine) ready() error {
	if e == nil || e.tokens == nil {
		return ErrEngineNotReady
	}
	return nil
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Snapshot resolves the principal's current roles and effective entitlements.
// The token service calls it at issuance and rotation so access tokens embed
// live directory state.
func (e *Engine) Snapshot(ctx context.Context, principalID string) (token.Snapshot, error) {
	rec, err := e.users.GetByID(ctx, principalID)
	if err != nil {
		return token.Snapshot{}, err
	}
	if !rec.Active {
		return token.Snapshot{}, ErrAccountDisabled
	}
	return e.snapshotFor(ctx, rec)
}

// AccessTTL returns the configured access token lifetime.
func (e *Engine) AccessTTL() time.Duration { return e.tokens.AccessTTL() }

// RefreshTTL returns the configured refresh token lifetime.
func (e *Engine) RefreshTTL() time.Duration { return e.tokens.RefreshTTL() }

// mapTokenError converts subpackage sentinels into the root vocabulary so
// integrators only match against authcore errors.
func (e *Engine) mapTokenError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, claims.ErrInvalidSignature):
		return ErrInvalidSignature
	case errors.Is(err, claims.ErrExpired):
		return ErrTokenExpired
	case errors.Is(err, claims.ErrMalformed):
		return ErrTokenMalformed
	case errors.Is(err, token.ErrInvalidToken):
		return ErrInvalidToken
	case errors.Is(err, token.ErrRevoked):
		return ErrTokenRevoked
	case errors.Is(err, token.ErrReplayDetected):
		return ErrReplayDetected
	case errors.Is(err, revocation.ErrNotFound):
		return ErrInvalidToken
	case errors.Is(err, revocation.ErrUnavailable):
		e.metricInc(MetricStoreUnavailable)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	default:
		return err
	}
}

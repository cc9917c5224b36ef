package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/reelgate/authcore/claims"
	"github.com/reelgate/authcore/revocation"
)

const (
	// DefaultAccessTTL is the access token lifetime when none is configured.
	DefaultAccessTTL = 15 * time.Minute
	// DefaultRefreshTTL is the refresh token lifetime when none is configured.
	DefaultRefreshTTL = 30 * 24 * time.Hour
)

var (
	// ErrInvalidToken is returned when a structurally sound, correctly signed
	// token is not acceptable for the operation: wrong kind, or a refresh
	// token with no live record.
	ErrInvalidToken = errors.New("token: not valid for this operation")
	// ErrRevoked is returned when the presented refresh token was explicitly
	// revoked.
	ErrRevoked = errors.New("token: refresh token revoked")
	// ErrReplayDetected is returned when an already-rotated refresh token is
	// presented again. By the time the caller sees it, the token's whole
	// rotation lineage has been revoked.
	ErrReplayDetected = errors.New("token: refresh token replayed")
)

// Snapshot is the authorization state minted into an access token. It is
// captured at issuance and goes stale until the next rotation.
type Snapshot struct {
	Roles        []string
	Entitlements []string
}

// SnapshotSource resolves the current authorization snapshot for a
// principal. Rotate consults it so each new access token reflects directory
// state at rotation time, not at original login.
type SnapshotSource interface {
	Snapshot(ctx context.Context, principalID string) (Snapshot, error)
}

// Pair is one issued access/refresh token pair.
type Pair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// Config carries the token service construction parameters. Access and
// refresh tokens are signed under distinct secrets so one class can never
// masquerade as the other.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	Algorithm     claims.Algorithm
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Service mints, verifies, rotates, and revokes token pairs. All shared
// mutable state lives in the revocation store; the service itself is
// stateless and safe for concurrent use.
type Service struct {
	access     *claims.Codec
	refresh    *claims.Codec
	store      *revocation.Store
	snapshots  SnapshotSource
	accessTTL  time.Duration
	refreshTTL time.Duration

	now   func() time.Time
	newID func() string
}

// NewService builds a Service from the config, revocation store, and
// snapshot source.
func NewService(cfg Config, store *revocation.Store, snapshots SnapshotSource) (*Service, error) {
	if store == nil {
		return nil, errors.New("token: revocation store is required")
	}
	if snapshots == nil {
		return nil, errors.New("token: snapshot source is required")
	}
	if string(cfg.AccessSecret) == string(cfg.RefreshSecret) {
		return nil, errors.New("token: access and refresh secrets must differ")
	}

	access, err := claims.NewCodec(cfg.AccessSecret, cfg.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("token: access codec: %w", err)
	}
	refresh, err := claims.NewCodec(cfg.RefreshSecret, cfg.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("token: refresh codec: %w", err)
	}

	accessTTL := cfg.AccessTTL
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	refreshTTL := cfg.RefreshTTL
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}
	if refreshTTL <= accessTTL {
		return nil, errors.New("token: refresh ttl must exceed access ttl")
	}

	return &Service{
		access:     access,
		refresh:    refresh,
		store:      store,
		snapshots:  snapshots,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
		newID:      func() string { return uuid.NewString() },
	}, nil
}

// IssuePair mints an access/refresh pair for the principal, embedding the
// given snapshot into the access token, and registers the refresh token as
// active. Refresh tokens carry identity only; authorization state is
// re-resolved at rotation.
func (s *Service) IssuePair(ctx context.Context, principalID string, snap Snapshot) (*Pair, error) {
	pair, _, err := s.issue(ctx, principalID, snap)
	return pair, err
}

func (s *Service) issue(ctx context.Context, principalID string, snap Snapshot) (*Pair, string, error) {
	if principalID == "" {
		return nil, "", errors.New("token: empty principal id")
	}

	now := s.now()
	accessExp := now.Add(s.accessTTL)
	refreshExp := now.Add(s.refreshTTL)
	refreshID := s.newID()

	accessToken, err := s.access.Encode(claims.ClaimSet{
		Subject:      principalID,
		IssuedAt:     now.Unix(),
		ExpiresAt:    accessExp.Unix(),
		TokenID:      s.newID(),
		Kind:         claims.KindAccess,
		Roles:        snap.Roles,
		Entitlements: snap.Entitlements,
	})
	if err != nil {
		return nil, "", err
	}

	refreshToken, err := s.refresh.Encode(claims.ClaimSet{
		Subject:   principalID,
		IssuedAt:  now.Unix(),
		ExpiresAt: refreshExp.Unix(),
		TokenID:   refreshID,
		Kind:      claims.KindRefresh,
	})
	if err != nil {
		return nil, "", err
	}

	record := &revocation.RefreshRecord{
		State:       revocation.StateActive,
		PrincipalID: principalID,
		CreatedAt:   now.Unix(),
		ExpiresAt:   refreshExp.Unix(),
	}
	if err := s.store.Put(ctx, refreshID, record, s.refreshTTL); err != nil {
		return nil, "", err
	}

	pair := &Pair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}
	return pair, refreshID, nil
}

// VerifyAccess validates an access token and returns its claims. The check
// is stateless: signature, structure, expiry, and kind only. Within its
// lifetime an access token survives even revocation of its whole family.
func (s *Service) VerifyAccess(tokenStr string) (*claims.ClaimSet, error) {
	cs, err := s.access.Decode(tokenStr)
	if err != nil {
		return nil, err
	}
	if cs.Kind != claims.KindAccess {
		return nil, ErrInvalidToken
	}
	return cs, nil
}

// Rotate exchanges a refresh token for a fresh pair. At most one rotation of
// any given refresh token ever succeeds; a second presentation is treated as
// replay and revokes the token's entire lineage before returning
// ErrReplayDetected.
func (s *Service) Rotate(ctx context.Context, refreshToken string) (*Pair, error) {
	cs, err := s.refresh.Decode(refreshToken)
	if err != nil {
		return nil, err
	}
	if cs.Kind != claims.KindRefresh {
		return nil, ErrInvalidToken
	}

	record, err := s.store.Get(ctx, cs.TokenID)
	if err != nil {
		if errors.Is(err, revocation.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	switch record.State {
	case revocation.StateRevoked:
		return nil, ErrRevoked
	case revocation.StateRotated:
		if err := s.store.RevokeLineage(ctx, cs.TokenID); err != nil {
			return nil, err
		}
		return nil, ErrReplayDetected
	}

	snap, err := s.snapshots.Snapshot(ctx, record.PrincipalID)
	if err != nil {
		return nil, err
	}

	pair, successorID, err := s.issue(ctx, record.PrincipalID, snap)
	if err != nil {
		return nil, err
	}

	err = s.store.MarkRotated(ctx, cs.TokenID, successorID)
	if err == nil {
		return pair, nil
	}

	// Lost the transition race or the record vanished: the fresh pair must
	// not survive, and a concurrent rotation means the token leaked.
	if delErr := s.store.Delete(ctx, successorID); delErr != nil {
		return nil, delErr
	}
	switch {
	case errors.Is(err, revocation.ErrAlreadyTerminal):
		if err := s.store.RevokeLineage(ctx, cs.TokenID); err != nil {
			return nil, err
		}
		return nil, ErrReplayDetected
	case errors.Is(err, revocation.ErrNotFound):
		return nil, ErrInvalidToken
	default:
		return nil, err
	}
}

// Revoke marks the presented refresh token revoked. The operation is
// idempotent: revoking an unknown or already-terminal token succeeds. An
// expired refresh token is still accepted so logout never fails on timing.
func (s *Service) Revoke(ctx context.Context, refreshToken string) error {
	cs, err := s.refresh.DecodeExpired(refreshToken)
	if err != nil {
		return err
	}
	if cs.Kind != claims.KindRefresh {
		return ErrInvalidToken
	}

	err = s.store.MarkRevoked(ctx, cs.TokenID)
	if err == nil ||
		errors.Is(err, revocation.ErrNotFound) ||
		errors.Is(err, revocation.ErrAlreadyTerminal) {
		return nil
	}
	return err
}

// RevokeAllForPrincipal revokes every tracked refresh token belonging to the
// principal.
func (s *Service) RevokeAllForPrincipal(ctx context.Context, principalID string) error {
	return s.store.RevokeAllForPrincipal(ctx, principalID)
}

// AccessTTL returns the configured access token lifetime.
func (s *Service) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (s *Service) RefreshTTL() time.Duration { return s.refreshTTL }

package authcore

import (
	"context"
	"errors"
	"time"

	"github.com/reelgate/authcore/token"
)

// VerifyAccess validates an access token and returns the identity minted
// into it. The check is stateless: within its lifetime an access token is
// accepted even after its refresh family was revoked.
func (e *Engine) VerifyAccess(ctx context.Context, accessToken string) (*AccessIdentity, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if e.metrics != nil && e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() { e.metrics.Observe(MetricVerifyLatency, time.Since(start)) }()
	}

	cs, err := e.tokens.VerifyAccess(accessToken)
	if err != nil {
		e.metricInc(MetricVerifyFailure)
		return nil, e.mapTokenError(err)
	}

	e.metricInc(MetricVerifySuccess)
	return &AccessIdentity{
		PrincipalID:  cs.Subject,
		TokenID:      cs.TokenID,
		Roles:        cs.Roles,
		Entitlements: cs.Entitlements,
		ExpiresAt:    time.Unix(cs.ExpiresAt, 0),
	}, nil
}

// Refresh exchanges a refresh token for a fresh pair. Each refresh token
// rotates at most once; presenting it again revokes its whole lineage and
// returns ErrReplayDetected.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	pair, err := e.tokens.Rotate(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, token.ErrReplayDetected) {
			e.metricInc(MetricReplayDetected)
			e.emitAudit(ctx, auditActionTokenReplay, false, "", "", err, nil)
		}
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditActionTokenRotate, false, "", "", err, nil)
		return nil, e.mapTokenError(err)
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditActionTokenRotate, true, "", "", nil, nil)
	return pair, nil
}

// Logout revokes the presented refresh token. The operation is idempotent
// and accepts expired tokens so logout never fails on timing.
func (e *Engine) Logout(ctx context.Context, refreshToken string) error {
	if err := e.ready(); err != nil {
		return err
	}

	if err := e.tokens.Revoke(ctx, refreshToken); err != nil {
		e.emitAudit(ctx, auditActionLogout, false, "", "", err, nil)
		return e.mapTokenError(err)
	}

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditActionLogout, true, "", "", nil, nil)
	return nil
}

// LogoutAll revokes every tracked refresh token belonging to the principal.
// Outstanding access tokens stay valid until they expire.
func (e *Engine) LogoutAll(ctx context.Context, principalID string) error {
	if err := e.ready(); err != nil {
		return err
	}

	if err := e.tokens.RevokeAllForPrincipal(ctx, principalID); err != nil {
		e.emitAudit(ctx, auditActionLogoutAll, false, principalID, "", err, nil)
		return e.mapTokenError(err)
	}

	e.metricInc(MetricLogoutAll)
	e.emitAudit(ctx, auditActionLogoutAll, true, principalID, "", nil, nil)
	return nil
}

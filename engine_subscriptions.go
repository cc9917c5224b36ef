package authcore

import (
	"context"
	"errors"
	"time"

	"github.com/reelgate/authcore/authz"
)

// GrantSubscription creates an active subscription for the principal. A
// duration of zero or less grants a subscription with no expiry. The new
// entitlements take effect in tokens at the next issuance or rotation.
func (e *Engine) GrantSubscription(ctx context.Context, principalID, name string, entitlements []string, duration time.Duration) (Subscription, error) {
	if err := e.ready(); err != nil {
		return Subscription{}, err
	}
	if name == "" {
		return Subscription{}, errors.New("authcore: empty subscription name")
	}
	if _, err := e.users.GetByID(ctx, principalID); err != nil {
		return Subscription{}, err
	}

	now := e.now().UTC()
	sub := Subscription{
		ID:           e.newID(),
		PrincipalID:  principalID,
		Name:         name,
		Status:       authz.SubscriptionActive,
		Entitlements: entitlements,
		StartedAt:    now,
	}
	if duration > 0 {
		sub.EndsAt = now.Add(duration)
	}

	if err := e.subs.Grant(ctx, sub); err != nil {
		e.emitAudit(ctx, auditActionSubscriptionGrant, false, principalID, "", err, func() map[string]string {
			return map[string]string{"subscription": name}
		})
		return Subscription{}, err
	}

	e.metricInc(MetricSubscriptionGranted)
	e.emitAudit(ctx, auditActionSubscriptionGrant, true, principalID, "", nil, func() map[string]string {
		return map[string]string{"subscription": name, "subscription_id": sub.ID}
	})
	return sub, nil
}

// ExtendSubscription pushes the subscription's end out by the given amount.
// An already-lapsed period extends from now, not from the stale end. An
// expired subscription comes back active; a cancelled one stays cancelled.
func (e *Engine) ExtendSubscription(ctx context.Context, subscriptionID string, extension time.Duration) (Subscription, error) {
	if err := e.ready(); err != nil {
		return Subscription{}, err
	}
	if extension <= 0 {
		return Subscription{}, errors.New("authcore: extension must be > 0")
	}

	sub, err := e.subs.Get(ctx, subscriptionID)
	if err != nil {
		return Subscription{}, err
	}

	now := e.now().UTC()
	base := sub.EndsAt
	if base.IsZero() || base.Before(now) {
		base = now
	}
	sub.EndsAt = base.Add(extension)
	if sub.Status == authz.SubscriptionExpired {
		sub.Status = authz.SubscriptionActive
	}

	if err := e.subs.Update(ctx, sub); err != nil {
		e.emitAudit(ctx, auditActionSubscriptionExtend, false, sub.PrincipalID, "", err, func() map[string]string {
			return map[string]string{"subscription_id": subscriptionID}
		})
		return Subscription{}, err
	}

	e.metricInc(MetricSubscriptionExtended)
	e.emitAudit(ctx, auditActionSubscriptionExtend, true, sub.PrincipalID, "", nil, func() map[string]string {
		return map[string]string{"subscription_id": subscriptionID}
	})
	return sub, nil
}

// CancelSubscription marks the subscription cancelled. Its entitlements stop
// contributing immediately; tokens minted earlier keep their snapshot until
// rotation. Cancelling twice is a no-op.
func (e *Engine) CancelSubscription(ctx context.Context, subscriptionID string) error {
	if err := e.ready(); err != nil {
		return err
	}

	sub, err := e.subs.Get(ctx, subscriptionID)
	if err != nil {
		return err
	}
	if sub.Status == authz.SubscriptionCancelled {
		return nil
	}

	sub.Status = authz.SubscriptionCancelled
	if err := e.subs.Update(ctx, sub); err != nil {
		e.emitAudit(ctx, auditActionSubscriptionCancel, false, sub.PrincipalID, "", err, func() map[string]string {
			return map[string]string{"subscription_id": subscriptionID}
		})
		return err
	}

	e.metricInc(MetricSubscriptionCancelled)
	e.emitAudit(ctx, auditActionSubscriptionCancel, true, sub.PrincipalID, "", nil, func() map[string]string {
		return map[string]string{"subscription_id": subscriptionID}
	})
	return nil
}

// Subscriptions lists the principal's subscriptions, all statuses included.
func (e *Engine) Subscriptions(ctx context.Context, principalID string) ([]Subscription, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	return e.subs.ListForPrincipal(ctx, principalID)
}

package authcore

import (
	"context"
	"errors"

	"github.com/reelgate/authcore/authz"
	"github.com/reelgate/authcore/token"
)

// snapshotFor resolves the authorization state embedded into access tokens:
// role names as stored, entitlements as the effective union over the
// principal's subscriptions at the current instant.
func (e *Engine) snapshotFor(ctx context.Context, rec PrincipalRecord) (token.Snapshot, error) {
	subs, err := e.subs.ListForPrincipal(ctx, rec.ID)
	if err != nil {
		return token.Snapshot{}, err
	}
	return token.Snapshot{
		Roles:        rec.Roles,
		Entitlements: authz.EffectiveEntitlements(subs, e.now()),
	}, nil
}

// resolveRoles maps role names to their current definitions. Names whose
// definition was removed after assignment resolve to nothing.
func (e *Engine) resolveRoles(ctx context.Context, names []string) ([]Role, error) {
	roles := make([]Role, 0, len(names))
	for _, name := range names {
		role, err := e.roles.GetRole(ctx, name)
		if err != nil {
			if errors.Is(err, ErrRoleNotFound) {
				continue
			}
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, nil
}

// CheckPermissions decides from live directory state whether the principal
// holds every required permission. Superusers are always allowed. A negative
// decision is an outcome, not an error.
func (e *Engine) CheckPermissions(ctx context.Context, principalID string, required ...Permission) (Decision, error) {
	if err := e.ready(); err != nil {
		return Decision{}, err
	}

	rec, err := e.users.GetByID(ctx, principalID)
	if err != nil {
		return Decision{}, err
	}

	roles, err := e.resolveRoles(ctx, rec.Roles)
	if err != nil {
		return Decision{}, err
	}

	decision := authz.CheckPermissions(Principal{
		ID:         rec.ID,
		Identifier: rec.Identifier,
		Active:     rec.Active,
		Superuser:  rec.Superuser,
		Roles:      rec.Roles,
	}, roles, required)

	if !decision.Allowed {
		e.metricInc(MetricPermissionDenied)
	}
	return decision, nil
}

// CheckTokenPermissions decides from an access token's embedded snapshot,
// without touching the user directory. Role names are resolved against
// current role definitions; the superuser bypass does not apply here, it is
// a live-directory property.
func (e *Engine) CheckTokenPermissions(ctx context.Context, accessToken string, required ...Permission) (Decision, error) {
	identity, err := e.VerifyAccess(ctx, accessToken)
	if err != nil {
		return Decision{}, err
	}

	roles, err := e.resolveRoles(ctx, identity.Roles)
	if err != nil {
		return Decision{}, err
	}

	decision := authz.HoldsPermissions(false, authz.EffectivePermissions(roles), required)
	if !decision.Allowed {
		e.metricInc(MetricPermissionDenied)
	}
	return decision, nil
}

// CheckEntitlement reports whether the principal currently holds the
// entitlement through an active, unexpired subscription.
func (e *Engine) CheckEntitlement(ctx context.Context, principalID, entitlement string) (bool, error) {
	if err := e.ready(); err != nil {
		return false, err
	}

	subs, err := e.subs.ListForPrincipal(ctx, principalID)
	if err != nil {
		return false, err
	}
	return authz.CheckEntitlement(subs, entitlement, e.now()), nil
}

// EffectivePermissions returns the principal's current permission union in
// registration order.
func (e *Engine) EffectivePermissions(ctx context.Context, principalID string) ([]Permission, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	rec, err := e.users.GetByID(ctx, principalID)
	if err != nil {
		return nil, err
	}
	if rec.Superuser {
		return authz.All(), nil
	}

	roles, err := e.resolveRoles(ctx, rec.Roles)
	if err != nil {
		return nil, err
	}
	return authz.EffectivePermissions(roles), nil
}

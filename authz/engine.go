package authz

import "time"

// EffectivePermissions returns the union of permissions across the given
// roles, in registration order. A principal with no roles has the empty set;
// nothing is implicit.
func EffectivePermissions(roles []Role) []Permission {
	have := make([]bool, len(allPermissions))
	for _, role := range roles {
		for _, p := range role.Permissions {
			if i, ok := permissionIndex[p]; ok {
				have[i] = true
			}
		}
	}

	out := make([]Permission, 0, len(allPermissions))
	for i, p := range allPermissions {
		if have[i] {
			out = append(out, p)
		}
	}
	return out
}

// EffectiveEntitlements returns the union of entitlements across the
// principal's subscriptions that are active and unexpired at now. Order is
// first-seen; duplicates across subscriptions collapse.
func EffectiveEntitlements(subs []Subscription, now time.Time) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, 4)

	for _, sub := range subs {
		if !sub.ContributesAt(now) {
			continue
		}
		for _, ent := range sub.Entitlements {
			if _, dup := seen[ent]; dup {
				continue
			}
			seen[ent] = struct{}{}
			out = append(out, ent)
		}
	}
	return out
}

// CheckPermissions decides whether the principal holds every required
// permission through the given roles. A superuser is allowed regardless of
// roles, with an empty Missing list. Lacking a permission is an ordinary
// decision outcome, not an error.
func CheckPermissions(principal Principal, roles []Role, required []Permission) Decision {
	if principal.Superuser {
		return Decision{Allowed: true}
	}

	have := make([]bool, len(allPermissions))
	for _, role := range roles {
		for _, p := range role.Permissions {
			if i, ok := permissionIndex[p]; ok {
				have[i] = true
			}
		}
	}

	missing := make([]Permission, 0)
	for _, p := range required {
		i, ok := permissionIndex[p]
		if !ok || !have[i] {
			missing = append(missing, p)
		}
	}

	return Decision{Allowed: len(missing) == 0, Missing: missing}
}

// HoldsPermissions is CheckPermissions over an already-computed permission
// set, used when deciding from a token snapshot instead of directory state.
func HoldsPermissions(superuser bool, held []Permission, required []Permission) Decision {
	if superuser {
		return Decision{Allowed: true}
	}

	have := make(map[Permission]struct{}, len(held))
	for _, p := range held {
		have[p] = struct{}{}
	}

	missing := make([]Permission, 0)
	for _, p := range required {
		if _, ok := have[p]; !ok {
			missing = append(missing, p)
		}
	}
	return Decision{Allowed: len(missing) == 0, Missing: missing}
}

// CheckEntitlement reports whether the required entitlement is present in
// the effective entitlement set of the given subscriptions at now.
func CheckEntitlement(subs []Subscription, required string, now time.Time) bool {
	for _, sub := range subs {
		if !sub.ContributesAt(now) {
			continue
		}
		for _, ent := range sub.Entitlements {
			if ent == required {
				return true
			}
		}
	}
	return false
}

package authz

import "time"

// RoleType classifies a role for lifecycle rules. System roles are seeded by
// the platform and are not subject to administrative deletion.
type RoleType string

const (
	RoleTypeDefault RoleType = "default"
	RoleTypeAdmin   RoleType = "admin"
	RoleTypeSystem  RoleType = "system"
)

// Role is a named bundle of permissions.
type Role struct {
	Name        string
	Description string
	Type        RoleType
	Permissions []Permission
}

// SubscriptionStatus is the billing state of a subscription. Only active
// subscriptions contribute entitlements.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionPastDue   SubscriptionStatus = "past_due"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
	SubscriptionExpired   SubscriptionStatus = "expired"
)

// Subscription grants a set of entitlements to a principal for a period.
// A zero EndsAt means the subscription does not expire on its own.
type Subscription struct {
	ID           string
	PrincipalID  string
	Name         string
	Status       SubscriptionStatus
	Entitlements []string
	StartedAt    time.Time
	EndsAt       time.Time
}

// ContributesAt reports whether the subscription's entitlements count at the
// given instant. The end instant itself is already outside the period.
func (s Subscription) ContributesAt(now time.Time) bool {
	if s.Status != SubscriptionActive {
		return false
	}
	if !s.EndsAt.IsZero() && !now.Before(s.EndsAt) {
		return false
	}
	return true
}

// Principal is the identity authorization decisions are made about. Roles
// and Subscriptions carry the names only; the caller resolves them through
// its directories before asking for a decision.
type Principal struct {
	ID            string
	Identifier    string
	Active        bool
	Superuser     bool
	Roles         []string
	Subscriptions []string
}

// Decision is the outcome of a permission check. Missing lists the required
// permissions the principal lacks, in registration order; it is empty iff
// Allowed is true.
type Decision struct {
	Allowed bool
	Missing []Permission
}

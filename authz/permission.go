package authz

import (
	"errors"
	"fmt"
)

// ErrUnknownPermission is returned when a permission name is not part of the
// closed platform set. Role definitions are validated against the set so a
// typo cannot silently create an unreachable permission.
var ErrUnknownPermission = errors.New("authz: unknown permission")

// Permission is one named capability from the closed platform set.
type Permission string

const (
	// PermReadPublicContent allows browsing the public catalogue.
	PermReadPublicContent Permission = "read:public_content"
	// PermWatchMovies allows playback of subscription content.
	PermWatchMovies Permission = "watch:movies"
	// PermManageUsers allows administrative user operations.
	PermManageUsers Permission = "manage:users"
	// PermManageRoles allows creating roles and changing assignments.
	PermManageRoles Permission = "manage:roles"
	// PermManageSubscriptions allows granting and cancelling subscriptions.
	PermManageSubscriptions Permission = "manage:subscriptions"
	// PermViewAdminPanel allows access to the administrative surface.
	PermViewAdminPanel Permission = "view:admin_panel"
)

// allPermissions is the registration order. Ordering is stable for the
// lifetime of the process; All and union results follow it.
var allPermissions = []Permission{
	PermReadPublicContent,
	PermWatchMovies,
	PermManageUsers,
	PermManageRoles,
	PermManageSubscriptions,
	PermViewAdminPanel,
}

var permissionIndex = func() map[Permission]int {
	index := make(map[Permission]int, len(allPermissions))
	for i, p := range allPermissions {
		index[p] = i
	}
	return index
}()

// Valid reports whether the permission belongs to the platform set.
func (p Permission) Valid() bool {
	_, ok := permissionIndex[p]
	return ok
}

// String returns the wire name of the permission.
func (p Permission) String() string {
	return string(p)
}

// All returns every platform permission in registration order. The returned
// slice is a copy.
func All() []Permission {
	out := make([]Permission, len(allPermissions))
	copy(out, allPermissions)
	return out
}

// Parse converts a wire name into a Permission, rejecting names outside the
// closed set.
func Parse(name string) (Permission, error) {
	p := Permission(name)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPermission, name)
	}
	return p, nil
}

// ParseAll converts a list of wire names, failing on the first unknown one.
func ParseAll(names []string) ([]Permission, error) {
	out := make([]Permission, 0, len(names))
	for _, name := range names {
		p, err := Parse(name)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

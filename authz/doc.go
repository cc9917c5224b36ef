// Package authz computes authorization decisions from roles, permissions,
// and subscription entitlements.
//
// # Model
//
// The permission set is closed: every permission the platform knows is
// declared here, and role definitions are validated against the set. Roles
// bundle permissions; subscriptions bundle entitlements for a period. A
// principal's effective sets are plain unions, with a superuser bypass on
// permission checks only.
//
// # Architecture boundaries
//
// This package is pure: decisions are functions of the values passed in and
// an explicit clock instant. Whether those values come from live directory
// state or from a token snapshot is the caller's concern.
//
// # What this package must NOT do
//
//   - Access Redis, databases, or the network.
//   - Read wall-clock time implicitly; callers pass now.
//   - Treat a failed permission check as an error.
package authz

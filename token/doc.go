// Package token owns the access/refresh token lifecycle: pair issuance,
// stateless access verification, single-use refresh rotation with replay
// detection, and idempotent revocation.
//
// # Lifecycle
//
// Access tokens are short-lived bearer credentials verified by signature,
// structure, and expiry alone; no per-request store round trip. Refresh
// tokens are single-use: Rotate exchanges one for a fresh pair and marks the
// old token rotated in the same compare-and-swap that links its successor.
// Presenting a rotated token again is replay, and the response is to revoke
// the token's entire rotation lineage before surfacing ErrReplayDetected.
//
// Access and refresh tokens are signed under distinct secrets. Refresh
// tokens carry identity only; roles and entitlements are re-resolved through
// the SnapshotSource at each rotation, which is what bounds the staleness of
// authorization data in access tokens.
//
// # Architecture boundaries
//
// This package composes the claims codec and the revocation store. It knows
// nothing about credentials, directories, or password hashing.
//
// # What this package must NOT do
//
//   - Accept a token of the wrong kind for any operation.
//   - Consult the store on access verification.
//   - Retry a failed signature or structural check.
package token

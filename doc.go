// Package authcore is an embeddable authentication and authorization core
// with JWT access tokens, single-use rotating refresh tokens, and a
// Redis-backed revocation store.
//
// The package is designed for concurrent server workloads: Engine methods
// are safe to call from multiple goroutines after initialization through
// [New].
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Engine], [Config], the
// directory interfaces, and value types (TokenPair, AccessIdentity,
// MetricsSnapshot). Token encoding, record storage, and audit dispatch live
// in sub-packages; audit dispatch is internal and never exported directly.
//
// # Validation model
//
// VerifyAccess is the hot path. It is purely computational: signature,
// structure, expiry, and kind, with no Redis round-trip. Refresh, Login, and
// Logout are the stateful operations and fail closed with
// ErrStoreUnavailable when Redis is unreachable. Within its lifetime an
// access token stays valid even after its refresh lineage was revoked;
// revocation takes effect at the access TTL horizon.
package authcore

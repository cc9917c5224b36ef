// Package middleware exposes HTTP middleware adapters over the authcore
// Engine.
//
// # Guards
//
//   - [Guard] — stateless access token verification.
//   - [RequirePermissions] — verification plus a permission check against
//     the token's embedded role snapshot.
//
// Each guard reads the Authorization bearer header, delegates to the Engine,
// and injects the verified identity into the request context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself; all decisions are delegated to the
// Engine.
package middleware

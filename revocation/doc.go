// Package revocation tracks refresh token identifiers and their lifecycle
// state in Redis.
//
// # Design
//
// One entry per token identifier, binary-encoded, with a store-native TTL
// equal to the token's remaining lifetime so storage self-cleans. State
// transitions (active to rotated, active to revoked) are optimistic
// WATCH/MULTI compare-and-swaps: under concurrency exactly one transition of
// a record succeeds and all others observe ErrAlreadyTerminal.
//
// A per-principal index set supports principal-wide revocation, and
// successor links between records support lineage revocation when replay is
// detected.
//
// # What this package must NOT do
//
//   - Interpret token wire formats or signatures; it deals in identifiers.
//   - Mask store unavailability as "record absent": ErrUnavailable and
//     ErrNotFound are distinct outcomes.
package revocation

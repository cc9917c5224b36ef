// Package claims implements the signed token wire format: three
// dot-separated base64url segments carrying a header, the claim payload, and
// an HMAC signature.
//
// # Architecture boundaries
//
// This package owns serialization, signing, and verification of claim sets.
// It holds no state beyond the signing secret and performs no I/O. Token
// lifecycle decisions (kind checks, revocation, rotation) live in the token
// package.
//
// # What this package must NOT do
//
//   - Read any payload field before the signature has verified.
//   - Consult Redis or any other external store.
//   - Apply leeway to expiry: the instant now == exp is already expired.
package claims

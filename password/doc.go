// Package password implements password hashing and verification with
// Argon2id.
//
// # Output format
//
// Hashes are PHC strings with unpadded standard base64 segments:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// Verification reads cost parameters from the stored hash, so raising the
// Hasher's parameters never invalidates existing hashes; [Hasher.NeedsRehash]
// tells the caller to re-hash on the next successful verification.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Credential lookup and
// the uniform invalid-credentials response live in the engine.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords; callers supply plaintext, receive hashes.
//   - Log plaintext passwords or derived keys.
//   - Normalize input; the raw bytes are the password.
package password

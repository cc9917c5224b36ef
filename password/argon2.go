package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	phcAlgorithm = "argon2id"

	minPasswordBytes = 10
	minMemoryKiB     = 8 * 1024
	minSaltBytes     = 16
	minKeyBytes      = 16
)

var (
	// ErrPasswordTooShort is returned for passwords under the 10 byte floor.
	// Length is counted in raw bytes exactly as supplied; no normalization.
	ErrPasswordTooShort = errors.New("password: below minimum length")
	// ErrHashMalformed is returned when a stored hash cannot be parsed as a
	// supported PHC string.
	ErrHashMalformed = errors.New("password: malformed hash")
)

// Params are the Argon2id cost parameters. Memory is in KiB.
type Params struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams returns interactive-login cost parameters (64 MiB, 3
// passes).
func DefaultParams() Params {
	return Params{
		Memory:      64 * 1024,
		Time:        3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Validate rejects parameter sets below the hardness floor.
func (p Params) Validate() error {
	if p.Memory < minMemoryKiB {
		return fmt.Errorf("password: memory must be >= %d KiB", minMemoryKiB)
	}
	if p.Time < 1 {
		return errors.New("password: time cost must be >= 1")
	}
	if p.Parallelism < 1 {
		return errors.New("password: parallelism must be >= 1")
	}
	if p.SaltLength < minSaltBytes {
		return fmt.Errorf("password: salt length must be >= %d", minSaltBytes)
	}
	if p.KeyLength < minKeyBytes {
		return fmt.Errorf("password: key length must be >= %d", minKeyBytes)
	}
	return nil
}

// Hasher hashes and verifies passwords with Argon2id, emitting PHC strings:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// Salt and hash segments use unpadded standard base64.
type Hasher struct {
	params Params
}

// NewHasher creates a Hasher with validated parameters.
func NewHasher(params Params) (*Hasher, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Hasher{params: params}, nil
}

// Hash derives an Argon2id hash of the password under a fresh random salt.
func (h *Hasher) Hash(password string) (string, error) {
	if len(password) < minPasswordBytes {
		return "", ErrPasswordTooShort
	}

	salt := make([]byte, h.params.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("password: salt generation failed: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt,
		h.params.Time, h.params.Memory, h.params.Parallelism, h.params.KeyLength)

	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		phcAlgorithm, argon2.Version,
		h.params.Memory, h.params.Time, h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether the password matches the stored hash. The
// comparison is constant-time over the derived keys. Verification uses the
// parameters embedded in the hash, not the Hasher's own, so old hashes stay
// verifiable after a cost bump.
func (h *Hasher) Verify(password, encoded string) (bool, error) {
	parsed, err := parsePHC(encoded)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(password), parsed.salt,
		parsed.time, parsed.memory, parsed.parallelism, uint32(len(parsed.key)))

	return subtle.ConstantTimeCompare(computed, parsed.key) == 1, nil
}

// NeedsRehash reports whether the stored hash was produced with parameters
// weaker than the Hasher's current ones. Callers re-hash on the next
// successful verification.
func (h *Hasher) NeedsRehash(encoded string) (bool, error) {
	parsed, err := parsePHC(encoded)
	if err != nil {
		return false, err
	}

	switch {
	case parsed.memory < h.params.Memory:
		return true, nil
	case parsed.time < h.params.Time:
		return true, nil
	case parsed.parallelism < h.params.Parallelism:
		return true, nil
	case uint32(len(parsed.key)) != h.params.KeyLength:
		return true, nil
	}
	return false, nil
}

type phcFields struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	key         []byte
}

func parsePHC(encoded string) (*phcFields, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, ErrHashMalformed
	}
	if parts[1] != phcAlgorithm {
		return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrHashMalformed, parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, fmt.Errorf("%w: unsupported version", ErrHashMalformed)
	}

	fields := &phcFields{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d",
		&fields.memory, &fields.time, &fields.parallelism); err != nil {
		return nil, fmt.Errorf("%w: bad cost parameters", ErrHashMalformed)
	}
	if fields.memory < 1 || fields.time < 1 || fields.parallelism < 1 {
		return nil, fmt.Errorf("%w: bad cost parameters", ErrHashMalformed)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) < minSaltBytes {
		return nil, fmt.Errorf("%w: bad salt", ErrHashMalformed)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) < minKeyBytes {
		return nil, fmt.Errorf("%w: bad key", ErrHashMalformed)
	}

	fields.salt = salt
	fields.key = key
	return fields, nil
}

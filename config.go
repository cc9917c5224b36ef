package authcore

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/reelgate/authcore/claims"
)

// Config is the engine's construction-time configuration. Values are read
// once by NewEngine and treated as immutable afterwards; there is no global
// settings state.
type Config struct {
	Tokens     TokenConfig
	Password   PasswordConfig
	Revocation RevocationConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

// TokenConfig controls signing and lifetimes. Access and refresh tokens use
// distinct secrets; both must be at least 32 bytes.
type TokenConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	Algorithm     claims.Algorithm
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// PasswordConfig carries Argon2id cost parameters. Memory is in KiB.
type PasswordConfig struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// RevocationConfig controls the Redis key namespace of the refresh token
// record store.
type RevocationConfig struct {
	RedisPrefix string
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counter set.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the recommended production preset: 15 minute access
// tokens, 30 day refresh tokens, HMAC-SHA256, interactive Argon2id costs.
// Secrets must still be supplied by the caller.
func DefaultConfig() Config {
	return Config{
		Tokens: TokenConfig{
			Algorithm:  claims.AlgHS256,
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 30 * 24 * time.Hour,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Revocation: RevocationConfig{
			RedisPrefix: "rr",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// Validate rejects configurations the engine must not run with.
func (c *Config) Validate() error {
	if len(c.Tokens.AccessSecret) < 32 {
		return errors.New("Tokens AccessSecret must be at least 32 bytes")
	}
	if len(c.Tokens.RefreshSecret) < 32 {
		return errors.New("Tokens RefreshSecret must be at least 32 bytes")
	}
	if len(c.Tokens.AccessSecret) == len(c.Tokens.RefreshSecret) &&
		subtle.ConstantTimeCompare(c.Tokens.AccessSecret, c.Tokens.RefreshSecret) == 1 {
		return errors.New("Tokens AccessSecret and RefreshSecret must differ")
	}
	switch c.Tokens.Algorithm {
	case "", claims.AlgHS256, claims.AlgHS384, claims.AlgHS512:
	default:
		return errors.New("unsupported Tokens Algorithm")
	}
	if c.Tokens.AccessTTL <= 0 {
		return errors.New("Tokens AccessTTL must be > 0")
	}
	if c.Tokens.RefreshTTL <= c.Tokens.AccessTTL {
		return errors.New("Tokens RefreshTTL must exceed AccessTTL")
	}

	if c.Password.Memory < 8*1024 {
		return errors.New("Password Memory must be >= 8192 KiB")
	}
	if c.Password.Time < 1 {
		return errors.New("Password Time must be >= 1")
	}
	if c.Password.Parallelism < 1 {
		return errors.New("Password Parallelism must be >= 1")
	}
	if c.Password.SaltLength < 16 {
		return errors.New("Password SaltLength must be >= 16")
	}
	if c.Password.KeyLength < 16 {
		return errors.New("Password KeyLength must be >= 16")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Tokens.AccessSecret = cloneBytes(cfg.Tokens.AccessSecret)
	out.Tokens.RefreshSecret = cloneBytes(cfg.Tokens.RefreshSecret)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

package authcore

import (
	"testing"
	"time"

	"github.com/reelgate/authcore/claims"
)

func validTestConfig() Config {
	cfg := DefaultConfig()
	cfg.Tokens.AccessSecret = []byte("test-access-secret-0123456789abc")
	cfg.Tokens.RefreshSecret = []byte("test-refresh-secret-0123456789ab")
	return cfg
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name:      "default with secrets valid",
			mutate:    func(*Config) {},
			wantValid: true,
		},
		{
			name: "short access secret invalid",
			mutate: func(c *Config) {
				c.Tokens.AccessSecret = []byte("short")
			},
			wantValid: false,
		},
		{
			name: "short refresh secret invalid",
			mutate: func(c *Config) {
				c.Tokens.RefreshSecret = []byte("short")
			},
			wantValid: false,
		},
		{
			name: "identical secrets invalid",
			mutate: func(c *Config) {
				c.Tokens.RefreshSecret = append([]byte(nil), c.Tokens.AccessSecret...)
			},
			wantValid: false,
		},
		{
			name: "unknown algorithm invalid",
			mutate: func(c *Config) {
				c.Tokens.Algorithm = "none"
			},
			wantValid: false,
		},
		{
			name: "hs512 valid",
			mutate: func(c *Config) {
				c.Tokens.Algorithm = claims.AlgHS512
			},
			wantValid: true,
		},
		{
			name: "zero access ttl invalid",
			mutate: func(c *Config) {
				c.Tokens.AccessTTL = 0
			},
			wantValid: false,
		},
		{
			name: "refresh ttl below access ttl invalid",
			mutate: func(c *Config) {
				c.Tokens.RefreshTTL = c.Tokens.AccessTTL - time.Minute
			},
			wantValid: false,
		},
		{
			name: "argon memory below floor invalid",
			mutate: func(c *Config) {
				c.Password.Memory = 1024
			},
			wantValid: false,
		},
		{
			name: "short salt invalid",
			mutate: func(c *Config) {
				c.Password.SaltLength = 8
			},
			wantValid: false,
		},
		{
			name: "audit enabled without buffer invalid",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 0
			},
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantValid && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tt.wantValid && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCloneConfigDetachesSecrets(t *testing.T) {
	cfg := validTestConfig()
	cloned := cloneConfig(cfg)

	cfg.Tokens.AccessSecret[0] ^= 0xff
	if cloned.Tokens.AccessSecret[0] == cfg.Tokens.AccessSecret[0] {
		t.Fatal("expected cloned secret to be independent")
	}
}

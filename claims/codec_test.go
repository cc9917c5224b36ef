package claims

import (
	"errors"
	"strings"
	"testing"
	"time"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestCodec(t *testing.T, at time.Time) *Codec {
	t.Helper()

	codec, err := NewCodec(testSecret, AlgHS256)
	if err != nil {
		t.Fatalf("new codec failed: %v", err)
	}
	codec.now = func() time.Time { return at }
	return codec
}

func sampleClaims(now time.Time, ttl time.Duration) ClaimSet {
	return ClaimSet{
		Subject:      "principal-1",
		IssuedAt:     now.Unix(),
		ExpiresAt:    now.Add(ttl).Unix(),
		TokenID:      "jti-1",
		Kind:         KindAccess,
		Roles:        []string{"viewer", "subscriber"},
		Entitlements: []string{"hd-stream"},
	}
}

func TestCodecRoundTrip(t *testing.T) {
	now := time.Now()
	codec := newTestCodec(t, now)
	in := sampleClaims(now, time.Minute)

	token, err := codec.Encode(in)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Fatalf("expected compact three-segment form, got %q", token)
	}

	out, err := codec.Decode(token)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if out.Subject != in.Subject || out.TokenID != in.TokenID || out.Kind != in.Kind {
		t.Fatalf("identity fields did not round-trip: %+v", out)
	}
	if out.IssuedAt != in.IssuedAt || out.ExpiresAt != in.ExpiresAt {
		t.Fatalf("timestamps did not round-trip: got iat=%d exp=%d", out.IssuedAt, out.ExpiresAt)
	}
	if len(out.Roles) != 2 || out.Roles[0] != "viewer" || out.Roles[1] != "subscriber" {
		t.Fatalf("roles did not round-trip: %v", out.Roles)
	}
	if len(out.Entitlements) != 1 || out.Entitlements[0] != "hd-stream" {
		t.Fatalf("entitlements did not round-trip: %v", out.Entitlements)
	}
}

func TestCodecRejectsWrongSecret(t *testing.T) {
	now := time.Now()
	codec := newTestCodec(t, now)

	token, err := codec.Encode(sampleClaims(now, time.Minute))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	other, err := NewCodec([]byte("ffffffffffffffffffffffffffffffff"), AlgHS256)
	if err != nil {
		t.Fatalf("new codec failed: %v", err)
	}

	if _, err := other.Decode(token); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestCodecRejectsGarbage(t *testing.T) {
	codec := newTestCodec(t, time.Now())

	for _, tokenStr := range []string{
		"",
		"not-a-token",
		"a.b",
		"a.b.c.d",
		"!!!.###.$$$",
	} {
		if _, err := codec.Decode(tokenStr); !errors.Is(err, ErrMalformed) {
			t.Fatalf("decode(%q): expected ErrMalformed, got %v", tokenStr, err)
		}
	}
}

func TestCodecRejectsTamperedPayload(t *testing.T) {
	now := time.Now()
	codec := newTestCodec(t, now)

	token, err := codec.Encode(sampleClaims(now, time.Minute))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	parts := strings.Split(token, ".")
	forged := parts[0] + "." + "eyJzdWIiOiJhdHRhY2tlciJ9" + "." + parts[2]

	if _, err := codec.Decode(forged); err == nil {
		t.Fatal("expected tampered payload to fail verification")
	}
}

func TestCodecEncodeValidatesShape(t *testing.T) {
	now := time.Now()
	codec := newTestCodec(t, now)

	cases := map[string]ClaimSet{
		"missing subject": {
			IssuedAt: now.Unix(), ExpiresAt: now.Add(time.Minute).Unix(),
			TokenID: "jti", Kind: KindAccess,
		},
		"missing jti": {
			Subject: "p1", IssuedAt: now.Unix(), ExpiresAt: now.Add(time.Minute).Unix(),
			Kind: KindAccess,
		},
		"unknown kind": {
			Subject: "p1", IssuedAt: now.Unix(), ExpiresAt: now.Add(time.Minute).Unix(),
			TokenID: "jti", Kind: Kind("session"),
		},
		"iat not before exp": {
			Subject: "p1", IssuedAt: now.Unix(), ExpiresAt: now.Unix(),
			TokenID: "jti", Kind: KindAccess,
		},
	}

	for name, cs := range cases {
		if _, err := codec.Encode(cs); !errors.Is(err, ErrMalformed) {
			t.Fatalf("%s: expected ErrMalformed, got %v", name, err)
		}
	}
}

func TestCodecExpiryBoundary(t *testing.T) {
	issued := time.Unix(1_700_000_000, 0)
	codec := newTestCodec(t, issued)

	token, err := codec.Encode(sampleClaims(issued, 10*time.Second))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	// One second before expiry the token is still valid.
	codec.now = func() time.Time { return issued.Add(9 * time.Second) }
	if _, err := codec.Decode(token); err != nil {
		t.Fatalf("expected valid token before expiry, got %v", err)
	}

	// The expiry instant itself is expired.
	codec.now = func() time.Time { return issued.Add(10 * time.Second) }
	if _, err := codec.Decode(token); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired at the boundary, got %v", err)
	}

	codec.now = func() time.Time { return issued.Add(time.Hour) }
	if _, err := codec.Decode(token); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired after the boundary, got %v", err)
	}
}

func TestDecodeExpiredToleratesElapsedExpiry(t *testing.T) {
	issued := time.Unix(1_700_000_000, 0)
	codec := newTestCodec(t, issued)

	token, err := codec.Encode(sampleClaims(issued, 10*time.Second))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	codec.now = func() time.Time { return issued.Add(time.Hour) }

	cs, err := codec.DecodeExpired(token)
	if err != nil {
		t.Fatalf("expected expired token to still decode, got %v", err)
	}
	if cs.Subject != "principal-1" {
		t.Fatalf("unexpected subject %q", cs.Subject)
	}

	// Signature verification is never relaxed.
	other, err := NewCodec([]byte("ffffffffffffffffffffffffffffffff"), AlgHS256)
	if err != nil {
		t.Fatalf("new codec failed: %v", err)
	}
	if _, err := other.DecodeExpired(token); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestCodecRejectsForeignAlgorithm(t *testing.T) {
	now := time.Now()

	hs512, err := NewCodec(testSecret, AlgHS512)
	if err != nil {
		t.Fatalf("new codec failed: %v", err)
	}
	token, err := hs512.Encode(sampleClaims(now, time.Minute))
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	hs256 := newTestCodec(t, now)
	if _, err := hs256.Decode(token); err == nil {
		t.Fatal("expected decode under a different algorithm to fail")
	}
}

func TestNewCodecValidation(t *testing.T) {
	if _, err := NewCodec([]byte("short"), AlgHS256); err == nil {
		t.Fatal("expected short secret to be rejected")
	}
	if _, err := NewCodec(testSecret, Algorithm("rs256")); err == nil {
		t.Fatal("expected unsupported algorithm to be rejected")
	}
}

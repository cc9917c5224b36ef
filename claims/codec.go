package claims

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Algorithm selects the HMAC family used to sign and verify tokens.
type Algorithm string

const (
	// AlgHS256 is an exported constant selecting HMAC-SHA256 signing.
	AlgHS256 Algorithm = "hs256"
	// AlgHS384 is an exported constant selecting HMAC-SHA384 signing.
	AlgHS384 Algorithm = "hs384"
	// AlgHS512 is an exported constant selecting HMAC-SHA512 signing.
	AlgHS512 Algorithm = "hs512"
)

const minSecretBytes = 32

var (
	// ErrInvalidSignature is returned when the token signature does not verify
	// under the codec's secret.
	ErrInvalidSignature = errors.New("claims: invalid signature")
	// ErrExpired is returned when now >= exp. The boundary instant itself is
	// expired.
	ErrExpired = errors.New("claims: token expired")
	// ErrMalformed is returned when the wire form cannot be parsed or the
	// payload violates structural invariants (missing sub/jti, iat >= exp,
	// unknown kind).
	ErrMalformed = errors.New("claims: malformed token")
)

// Codec encodes and decodes signed claim sets for a single secret and
// algorithm. Encode and Decode are pure CPU operations, safe for concurrent
// use, and never consult external state.
type Codec struct {
	secret []byte
	method jwt.SigningMethod

	// now is the clock used for expiry checks. Overridden in tests.
	now func() time.Time
}

// NewCodec creates a codec bound to the given secret and HMAC algorithm.
// The secret must be at least 32 bytes.
func NewCodec(secret []byte, alg Algorithm) (*Codec, error) {
	if len(secret) < minSecretBytes {
		return nil, errors.New("claims: signing secret must be at least 32 bytes")
	}

	var method jwt.SigningMethod
	switch alg {
	case AlgHS256, "":
		method = jwt.SigningMethodHS256
	case AlgHS384:
		method = jwt.SigningMethodHS384
	case AlgHS512:
		method = jwt.SigningMethodHS512
	default:
		return nil, errors.New("claims: unsupported signing algorithm")
	}

	return &Codec{
		secret: append([]byte(nil), secret...),
		method: method,
		now:    time.Now,
	}, nil
}

// Algorithm returns the JOSE algorithm identifier the codec signs with.
func (c *Codec) Algorithm() string {
	return c.method.Alg()
}

// Encode serializes and signs the claim set, returning the compact wire form.
// The claim set must already satisfy its structural invariants.
func (c *Codec) Encode(cs ClaimSet) (string, error) {
	if err := validateShape(&cs); err != nil {
		return "", err
	}

	token := jwt.NewWithClaims(c.method, &cs)
	return token.SignedString(c.secret)
}

// Decode verifies the signature and expiry of the compact wire form and
// returns the claim set. Verification happens before any payload field is
// trusted; an unverified payload is never partially decoded into results.
func (c *Codec) Decode(tokenStr string) (*ClaimSet, error) {
	return c.decode(tokenStr, true)
}

// DecodeExpired verifies the signature and structure but tolerates an
// elapsed expiry. Used to honor revocation requests carrying refresh tokens
// that have already expired.
func (c *Codec) DecodeExpired(tokenStr string) (*ClaimSet, error) {
	return c.decode(tokenStr, false)
}

func (c *Codec) decode(tokenStr string, enforceExpiry bool) (*ClaimSet, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	cs := &ClaimSet{}
	token, err := parser.ParseWithClaims(tokenStr, cs, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrMalformed
		}
	}
	if !token.Valid {
		return nil, ErrInvalidSignature
	}

	if err := validateShape(cs); err != nil {
		return nil, err
	}

	if enforceExpiry {
		if !c.now().Before(time.Unix(cs.ExpiresAt, 0)) {
			return nil, ErrExpired
		}
	}

	return cs, nil
}

func validateShape(cs *ClaimSet) error {
	if cs.Subject == "" || cs.TokenID == "" {
		return ErrMalformed
	}
	if !cs.Kind.Valid() {
		return ErrMalformed
	}
	if cs.ExpiresAt == 0 || cs.IssuedAt >= cs.ExpiresAt {
		return ErrMalformed
	}
	return nil
}

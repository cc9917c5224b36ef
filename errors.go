package authcore

import (
	"errors"

	"github.com/reelgate/authcore/revocation"
)

// ErrAlreadyTerminal is re-exported for callers driving the revocation store
// directly; the Engine itself surfaces CAS losses as ErrReplayDetected.
var ErrAlreadyTerminal = revocation.ErrAlreadyTerminal

var (
	// ErrInvalidCredentials is returned for any authentication failure that
	// must not reveal whether the account exists.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidSignature is returned when a token's HMAC does not verify.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrTokenMalformed is returned when a token cannot be parsed or is
	// missing required claims.
	ErrTokenMalformed = errors.New("malformed token")
	// ErrTokenExpired is returned when a token's expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrInvalidToken is returned when a token is structurally valid but not
	// usable, such as a refresh token with no server-side record.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenRevoked is returned when a refresh token's record is revoked.
	ErrTokenRevoked = errors.New("token revoked")
	// ErrReplayDetected is returned when an already-rotated refresh token is
	// presented again. The whole lineage is revoked before this is returned.
	ErrReplayDetected = errors.New("refresh token replay detected")
	// ErrStoreUnavailable is returned when the revocation backend cannot be
	// reached. Stateful operations fail closed.
	ErrStoreUnavailable = errors.New("revocation store unavailable")
	// ErrAccountExists is returned by Register when the identifier is taken.
	ErrAccountExists = errors.New("account already exists")
	// ErrPrincipalNotFound is returned by directories for unknown principals.
	// Authenticate maps it to ErrInvalidCredentials before it reaches callers.
	ErrPrincipalNotFound = errors.New("principal not found")
	// ErrAccountDisabled is returned when the principal is inactive.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrRoleAlreadyExists is returned by CreateRole for a duplicate name.
	ErrRoleAlreadyExists = errors.New("role already exists")
	// ErrRoleNotFound is returned when a named role is not registered.
	ErrRoleNotFound = errors.New("role not found")
	// ErrAssignmentNotFound is returned by RemoveRole when the principal does
	// not hold the role.
	ErrAssignmentNotFound = errors.New("role assignment not found")
	// ErrSubscriptionNotFound is returned when a subscription ID is unknown.
	ErrSubscriptionNotFound = errors.New("subscription not found")
	// ErrEngineNotReady is returned when the engine is used before New or
	// after Close.
	ErrEngineNotReady = errors.New("engine not initialized")
)

package authcore

import (
	"context"
	"io"
	"time"

	"github.com/reelgate/authcore/authz"
	internalaudit "github.com/reelgate/authcore/internal/audit"
	"github.com/reelgate/authcore/token"
)

// PrincipalRecord is the stored account representation the engine reads and
// writes through a UserDirectory. Roles carries role names; definitions live
// in the RoleDirectory.
type PrincipalRecord struct {
	ID           string
	Identifier   string
	PasswordHash string
	Active       bool
	Superuser    bool
	Roles        []string
	CreatedAt    time.Time
}

// UserDirectory is the account storage interface callers implement to plug
// the engine into their user database. Identifier lookups are exact-match;
// the engine does not normalize identifiers.
type UserDirectory interface {
	GetByIdentifier(ctx context.Context, identifier string) (PrincipalRecord, error)
	GetByID(ctx context.Context, id string) (PrincipalRecord, error)
	Create(ctx context.Context, record PrincipalRecord) error
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	SetRoles(ctx context.Context, id string, roles []string) error
}

// RoleDirectory stores role definitions. Registration order is significant:
// permission union and Missing sets follow it.
type RoleDirectory interface {
	CreateRole(ctx context.Context, role authz.Role) error
	GetRole(ctx context.Context, name string) (authz.Role, error)
	ListRoles(ctx context.Context) ([]authz.Role, error)
}

// SubscriptionDirectory stores subscription grants per principal.
type SubscriptionDirectory interface {
	Grant(ctx context.Context, sub authz.Subscription) error
	Get(ctx context.Context, id string) (authz.Subscription, error)
	Update(ctx context.Context, sub authz.Subscription) error
	ListForPrincipal(ctx context.Context, principalID string) ([]authz.Subscription, error)
}

// PasswordHasher abstracts password hashing so deployments can swap cost
// profiles or schemes. The default implementation is Argon2id.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
	NeedsRehash(encoded string) (bool, error)
}

// AccessIdentity is returned by Engine.VerifyAccess: the authenticated
// principal plus the authorization snapshot minted into the token.
type AccessIdentity struct {
	PrincipalID  string
	TokenID      string
	Roles        []string
	Entitlements []string
	ExpiresAt    time.Time
}

// TokenPair is the access/refresh pair returned by Login and Refresh.
type TokenPair = token.Pair

// Snapshot is the authorization state embedded in access tokens at issuance.
type Snapshot = token.Snapshot

// Re-exports so integrators only import the root package.
type (
	Permission         = authz.Permission
	Role               = authz.Role
	RoleType           = authz.RoleType
	Subscription       = authz.Subscription
	SubscriptionStatus = authz.SubscriptionStatus
	Principal          = authz.Principal
	Decision           = authz.Decision
)

// Audit re-exports.
type (
	AuditEvent     = internalaudit.Event
	AuditSink      = internalaudit.Sink
	NoOpSink       = internalaudit.NoOpSink
	ChannelSink    = internalaudit.ChannelSink
	JSONWriterSink = internalaudit.JSONWriterSink
)

// NewChannelSink returns a sink buffering events on a channel.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink returns a sink writing one JSON event per line.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

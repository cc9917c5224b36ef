// Package memdir provides in-memory implementations of the authcore
// directory interfaces. They are intended for tests, examples, and small
// single-process deployments; nothing is persisted.
package memdir

import (
	"context"
	"errors"
	"sync"

	authcore "github.com/reelgate/authcore"
	"github.com/reelgate/authcore/authz"
)

// Users is an in-memory UserDirectory. Safe for concurrent use.
type Users struct {
	mu           sync.RWMutex
	byID         map[string]authcore.PrincipalRecord
	byIdentifier map[string]string
}

// NewUsers returns an empty user directory.
func NewUsers() *Users {
	return &Users{
		byID:         make(map[string]authcore.PrincipalRecord),
		byIdentifier: make(map[string]string),
	}
}

func (u *Users) GetByIdentifier(_ context.Context, identifier string) (authcore.PrincipalRecord, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	id, ok := u.byIdentifier[identifier]
	if !ok {
		return authcore.PrincipalRecord{}, authcore.ErrPrincipalNotFound
	}
	return cloneRecord(u.byID[id]), nil
}

func (u *Users) GetByID(_ context.Context, id string) (authcore.PrincipalRecord, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()

	rec, ok := u.byID[id]
	if !ok {
		return authcore.PrincipalRecord{}, authcore.ErrPrincipalNotFound
	}
	return cloneRecord(rec), nil
}

func (u *Users) Create(_ context.Context, record authcore.PrincipalRecord) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if _, taken := u.byIdentifier[record.Identifier]; taken {
		return authcore.ErrAccountExists
	}
	if _, taken := u.byID[record.ID]; taken {
		return authcore.ErrAccountExists
	}

	u.byID[record.ID] = cloneRecord(record)
	u.byIdentifier[record.Identifier] = record.ID
	return nil
}

func (u *Users) UpdatePasswordHash(_ context.Context, id, hash string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	rec, ok := u.byID[id]
	if !ok {
		return authcore.ErrPrincipalNotFound
	}
	rec.PasswordHash = hash
	u.byID[id] = rec
	return nil
}

func (u *Users) SetRoles(_ context.Context, id string, roles []string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	rec, ok := u.byID[id]
	if !ok {
		return authcore.ErrPrincipalNotFound
	}
	rec.Roles = cloneStrings(roles)
	u.byID[id] = rec
	return nil
}

// SetActive flips the account's active flag. Not part of the directory
// interface; provided for administrative tooling and tests.
func (u *Users) SetActive(id string, active bool) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	rec, ok := u.byID[id]
	if !ok {
		return authcore.ErrPrincipalNotFound
	}
	rec.Active = active
	u.byID[id] = rec
	return nil
}

// SetSuperuser flips the account's superuser flag.
func (u *Users) SetSuperuser(id string, superuser bool) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	rec, ok := u.byID[id]
	if !ok {
		return authcore.ErrPrincipalNotFound
	}
	rec.Superuser = superuser
	u.byID[id] = rec
	return nil
}

// Roles is an in-memory RoleDirectory preserving registration order.
type Roles struct {
	mu     sync.RWMutex
	byName map[string]authcore.Role
	order  []string
}

// NewRoles returns an empty role directory.
func NewRoles() *Roles {
	return &Roles{byName: make(map[string]authcore.Role)}
}

func (r *Roles) CreateRole(_ context.Context, role authcore.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byName[role.Name]; taken {
		return authcore.ErrRoleAlreadyExists
	}
	r.byName[role.Name] = cloneRole(role)
	r.order = append(r.order, role.Name)
	return nil
}

func (r *Roles) GetRole(_ context.Context, name string) (authcore.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	role, ok := r.byName[name]
	if !ok {
		return authcore.Role{}, authcore.ErrRoleNotFound
	}
	return cloneRole(role), nil
}

func (r *Roles) ListRoles(_ context.Context) ([]authcore.Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]authcore.Role, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, cloneRole(r.byName[name]))
	}
	return out, nil
}

// Subscriptions is an in-memory SubscriptionDirectory.
type Subscriptions struct {
	mu          sync.RWMutex
	byID        map[string]authcore.Subscription
	byPrincipal map[string][]string
}

// NewSubscriptions returns an empty subscription directory.
func NewSubscriptions() *Subscriptions {
	return &Subscriptions{
		byID:        make(map[string]authcore.Subscription),
		byPrincipal: make(map[string][]string),
	}
}

func (s *Subscriptions) Grant(_ context.Context, sub authcore.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byID[sub.ID]; taken {
		return errors.New("memdir: duplicate subscription id")
	}
	s.byID[sub.ID] = cloneSubscription(sub)
	s.byPrincipal[sub.PrincipalID] = append(s.byPrincipal[sub.PrincipalID], sub.ID)
	return nil
}

func (s *Subscriptions) Get(_ context.Context, id string) (authcore.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.byID[id]
	if !ok {
		return authcore.Subscription{}, authcore.ErrSubscriptionNotFound
	}
	return cloneSubscription(sub), nil
}

func (s *Subscriptions) Update(_ context.Context, sub authcore.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[sub.ID]; !ok {
		return authcore.ErrSubscriptionNotFound
	}
	s.byID[sub.ID] = cloneSubscription(sub)
	return nil
}

func (s *Subscriptions) ListForPrincipal(_ context.Context, principalID string) ([]authcore.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byPrincipal[principalID]
	out := make([]authcore.Subscription, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneSubscription(s.byID[id]))
	}
	return out, nil
}

func cloneRecord(rec authcore.PrincipalRecord) authcore.PrincipalRecord {
	rec.Roles = cloneStrings(rec.Roles)
	return rec
}

func cloneRole(role authcore.Role) authcore.Role {
	if role.Permissions != nil {
		perms := make([]authz.Permission, len(role.Permissions))
		copy(perms, role.Permissions)
		role.Permissions = perms
	}
	return role
}

func cloneSubscription(sub authcore.Subscription) authcore.Subscription {
	sub.Entitlements = cloneStrings(sub.Entitlements)
	return sub
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

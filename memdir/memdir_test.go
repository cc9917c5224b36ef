package memdir

import (
	"context"
	"errors"
	"testing"
	"time"

	authcore "github.com/reelgate/authcore"
	"github.com/reelgate/authcore/authz"
)

func TestUsersCreateAndLookup(t *testing.T) {
	users := NewUsers()
	ctx := context.Background()

	rec := authcore.PrincipalRecord{
		ID:         "u1",
		Identifier: "alice@example.com",
		Active:     true,
	}
	if err := users.Create(ctx, rec); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := users.Create(ctx, rec); !errors.Is(err, authcore.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}

	got, err := users.GetByIdentifier(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if got.ID != "u1" {
		t.Fatalf("expected u1, got %s", got.ID)
	}

	if _, err := users.GetByID(ctx, "missing"); !errors.Is(err, authcore.ErrPrincipalNotFound) {
		t.Fatalf("expected ErrPrincipalNotFound, got %v", err)
	}
}

func TestUsersReturnedRecordsAreDetached(t *testing.T) {
	users := NewUsers()
	ctx := context.Background()

	if err := users.Create(ctx, authcore.PrincipalRecord{
		ID:         "u1",
		Identifier: "alice@example.com",
		Roles:      []string{"viewer"},
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := users.GetByID(ctx, "u1")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	got.Roles[0] = "mutated"

	again, err := users.GetByID(ctx, "u1")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if again.Roles[0] != "viewer" {
		t.Fatalf("expected stored record untouched, got %v", again.Roles)
	}
}

func TestUsersSetRolesAndFlags(t *testing.T) {
	users := NewUsers()
	ctx := context.Background()

	if err := users.Create(ctx, authcore.PrincipalRecord{ID: "u1", Identifier: "a", Active: true}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := users.SetRoles(ctx, "u1", []string{"viewer", "admin"}); err != nil {
		t.Fatalf("set roles failed: %v", err)
	}
	if err := users.SetActive("u1", false); err != nil {
		t.Fatalf("set active failed: %v", err)
	}
	if err := users.SetSuperuser("u1", true); err != nil {
		t.Fatalf("set superuser failed: %v", err)
	}

	got, err := users.GetByID(ctx, "u1")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if len(got.Roles) != 2 || got.Active || !got.Superuser {
		t.Fatalf("unexpected record: %+v", got)
	}

	if err := users.SetRoles(ctx, "missing", nil); !errors.Is(err, authcore.ErrPrincipalNotFound) {
		t.Fatalf("expected ErrPrincipalNotFound, got %v", err)
	}
}

func TestRolesRegistrationOrder(t *testing.T) {
	roles := NewRoles()
	ctx := context.Background()

	for _, name := range []string{"viewer", "editor", "admin"} {
		if err := roles.CreateRole(ctx, authcore.Role{Name: name}); err != nil {
			t.Fatalf("create %s failed: %v", name, err)
		}
	}
	if err := roles.CreateRole(ctx, authcore.Role{Name: "viewer"}); !errors.Is(err, authcore.ErrRoleAlreadyExists) {
		t.Fatalf("expected ErrRoleAlreadyExists, got %v", err)
	}

	list, err := roles.ListRoles(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	want := []string{"viewer", "editor", "admin"}
	if len(list) != len(want) {
		t.Fatalf("expected %d roles, got %d", len(want), len(list))
	}
	for i, role := range list {
		if role.Name != want[i] {
			t.Fatalf("expected %s at %d, got %s", want[i], i, role.Name)
		}
	}

	if _, err := roles.GetRole(ctx, "missing"); !errors.Is(err, authcore.ErrRoleNotFound) {
		t.Fatalf("expected ErrRoleNotFound, got %v", err)
	}
}

func TestSubscriptionsLifecycle(t *testing.T) {
	subs := NewSubscriptions()
	ctx := context.Background()

	sub := authcore.Subscription{
		ID:           "s1",
		PrincipalID:  "u1",
		Name:         "premium",
		Status:       authz.SubscriptionActive,
		Entitlements: []string{"hd"},
		StartedAt:    time.Now(),
	}
	if err := subs.Grant(ctx, sub); err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	if err := subs.Grant(ctx, sub); err == nil {
		t.Fatal("expected duplicate grant rejection")
	}

	sub.Status = authz.SubscriptionCancelled
	if err := subs.Update(ctx, sub); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, err := subs.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Status != authz.SubscriptionCancelled {
		t.Fatalf("expected cancelled, got %s", got.Status)
	}

	list, err := subs.ListForPrincipal(ctx, "u1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 subscription, got %d", len(list))
	}

	if _, err := subs.Get(ctx, "missing"); !errors.Is(err, authcore.ErrSubscriptionNotFound) {
		t.Fatalf("expected ErrSubscriptionNotFound, got %v", err)
	}
	if err := subs.Update(ctx, authcore.Subscription{ID: "missing"}); !errors.Is(err, authcore.ErrSubscriptionNotFound) {
		t.Fatalf("expected ErrSubscriptionNotFound, got %v", err)
	}
}

package authz

import (
	"errors"
	"testing"
	"time"
)

var (
	viewerRole = Role{
		Name:        "viewer",
		Type:        RoleTypeDefault,
		Permissions: []Permission{PermReadPublicContent},
	}
	subscriberRole = Role{
		Name:        "subscriber",
		Type:        RoleTypeDefault,
		Permissions: []Permission{PermReadPublicContent, PermWatchMovies},
	}
	moderatorRole = Role{
		Name:        "moderator",
		Type:        RoleTypeAdmin,
		Permissions: []Permission{PermManageUsers, PermViewAdminPanel},
	}
)

func TestParseRejectsUnknownPermission(t *testing.T) {
	if _, err := Parse("manage:everything"); !errors.Is(err, ErrUnknownPermission) {
		t.Fatalf("expected ErrUnknownPermission, got %v", err)
	}
	p, err := Parse("watch:movies")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if p != PermWatchMovies {
		t.Fatalf("unexpected permission %q", p)
	}
}

func TestParseAllFailsClosed(t *testing.T) {
	if _, err := ParseAll([]string{"watch:movies", "fly:rockets"}); !errors.Is(err, ErrUnknownPermission) {
		t.Fatalf("expected ErrUnknownPermission, got %v", err)
	}
}

func TestEffectivePermissionsUnion(t *testing.T) {
	got := EffectivePermissions([]Role{viewerRole, subscriberRole, moderatorRole})

	want := []Permission{
		PermReadPublicContent,
		PermWatchMovies,
		PermManageUsers,
		PermViewAdminPanel,
	}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestEffectivePermissionsEmptyForNoRoles(t *testing.T) {
	if got := EffectivePermissions(nil); len(got) != 0 {
		t.Fatalf("expected empty set, got %v", got)
	}
}

func TestCheckPermissionsReportsMissing(t *testing.T) {
	principal := Principal{ID: "p-1", Active: true}

	decision := CheckPermissions(principal, []Role{subscriberRole},
		[]Permission{PermWatchMovies, PermManageRoles, PermViewAdminPanel})

	if decision.Allowed {
		t.Fatal("expected denial")
	}
	if len(decision.Missing) != 2 ||
		decision.Missing[0] != PermManageRoles ||
		decision.Missing[1] != PermViewAdminPanel {
		t.Fatalf("unexpected missing set %v", decision.Missing)
	}
}

func TestCheckPermissionsAllowsWhenCovered(t *testing.T) {
	principal := Principal{ID: "p-1", Active: true}

	decision := CheckPermissions(principal, []Role{subscriberRole, moderatorRole},
		[]Permission{PermWatchMovies, PermManageUsers})

	if !decision.Allowed {
		t.Fatalf("expected approval, missing %v", decision.Missing)
	}
	if len(decision.Missing) != 0 {
		t.Fatalf("allowed decision must carry no missing permissions, got %v", decision.Missing)
	}
}

func TestSuperuserBypassesRoles(t *testing.T) {
	principal := Principal{ID: "p-root", Active: true, Superuser: true}

	decision := CheckPermissions(principal, nil, All())
	if !decision.Allowed || len(decision.Missing) != 0 {
		t.Fatalf("expected unconditional approval, got %+v", decision)
	}
}

func TestHoldsPermissionsFromSnapshot(t *testing.T) {
	held := []Permission{PermReadPublicContent, PermWatchMovies}

	decision := HoldsPermissions(false, held, []Permission{PermWatchMovies})
	if !decision.Allowed {
		t.Fatalf("expected approval, got %+v", decision)
	}

	decision = HoldsPermissions(false, held, []Permission{PermManageUsers})
	if decision.Allowed || len(decision.Missing) != 1 || decision.Missing[0] != PermManageUsers {
		t.Fatalf("unexpected decision %+v", decision)
	}

	if decision := HoldsPermissions(true, nil, All()); !decision.Allowed {
		t.Fatalf("expected superuser approval, got %+v", decision)
	}
}

func TestEffectiveEntitlementsSkipsInactive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	subs := []Subscription{
		{
			Name: "premium", Status: SubscriptionActive,
			Entitlements: []string{"hd-stream", "offline"},
			EndsAt:       now.Add(24 * time.Hour),
		},
		{
			Name: "trial", Status: SubscriptionActive,
			Entitlements: []string{"hd-stream"},
			EndsAt:       now.Add(-time.Hour),
		},
		{
			Name: "legacy", Status: SubscriptionCancelled,
			Entitlements: []string{"4k-stream"},
		},
		{
			Name: "lifetime", Status: SubscriptionActive,
			Entitlements: []string{"early-access"},
		},
	}

	got := EffectiveEntitlements(subs, now)
	want := []string{"hd-stream", "offline", "early-access"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestSubscriptionEndInstantIsOutside(t *testing.T) {
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	sub := Subscription{Status: SubscriptionActive, EndsAt: end, Entitlements: []string{"hd-stream"}}

	if !sub.ContributesAt(end.Add(-time.Second)) {
		t.Fatal("expected subscription to contribute just before its end")
	}
	if sub.ContributesAt(end) {
		t.Fatal("expected subscription to stop contributing at its end instant")
	}
}

func TestCheckEntitlement(t *testing.T) {
	now := time.Now()
	subs := []Subscription{
		{Status: SubscriptionActive, Entitlements: []string{"hd-stream"}},
		{Status: SubscriptionPastDue, Entitlements: []string{"4k-stream"}},
	}

	if !CheckEntitlement(subs, "hd-stream", now) {
		t.Fatal("expected hd-stream to be held")
	}
	if CheckEntitlement(subs, "4k-stream", now) {
		t.Fatal("past_due subscription must not grant entitlements")
	}
	if CheckEntitlement(nil, "hd-stream", now) {
		t.Fatal("empty subscription set must not grant entitlements")
	}
}

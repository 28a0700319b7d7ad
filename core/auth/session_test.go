package auth_test

import (
	"context"
	"testing"

	"github.com/trezcool/sanaa/core"
	"github.com/trezcool/sanaa/core/activity"
	"github.com/trezcool/sanaa/core/auth"
	"github.com/trezcool/sanaa/core/role"
	inmemdb "github.com/trezcool/sanaa/storage/database/inmem"
	testutil "github.com/trezcool/sanaa/tests"
)

func newTestBroker(t *testing.T, initialAdmin string) *auth.Broker {
	t.Helper()
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	conf := &core.Config{InitialAdminEmail: initialAdmin}
	roleSvc := role.NewService(
		inmemdb.NewRoleRepository(db),
		activity.NewService(inmemdb.NewActivityRepository(db)),
		testutil.NopLogger{},
		conf,
	)
	return auth.NewBroker(roleSvc, testutil.NopLogger{})
}

func TestBroker_SignIn(t *testing.T) {
	broker := newTestBroker(t, "owner@test.test")
	ctx := context.Background()

	var events []*auth.User
	unsub := broker.OnAuthChange(func(usr *auth.User) { events = append(events, usr) })
	defer unsub()

	// first sign-in by the configured owner bootstraps the admin role
	usr, err := broker.SignIn(ctx, auth.User{Email: "Owner@Test.Test", Name: "Owner"})
	if err != nil {
		t.Fatalf("SignIn() failed: %v", err)
	}
	if usr.Email != "owner@test.test" {
		t.Errorf("Email = %q, want lower-cased owner@test.test", usr.Email)
	}
	if !usr.IsAdmin {
		t.Error("IsAdmin = false for bootstrapped owner")
	}

	// other identities sign in without the admin capability
	usr, err = broker.SignIn(ctx, auth.User{Email: "parent@test.test"})
	if err != nil {
		t.Fatalf("SignIn() failed: %v", err)
	}
	if usr.IsAdmin {
		t.Error("IsAdmin = true for unknown email")
	}

	broker.SignOut()

	if len(events) != 3 {
		t.Fatalf("got %d auth events, want 3", len(events))
	}
	if events[0] == nil || !events[0].IsAdmin {
		t.Errorf("first event = %+v, want admin user", events[0])
	}
	if events[1] == nil || events[1].IsAdmin {
		t.Errorf("second event = %+v, want non-admin user", events[1])
	}
	if events[2] != nil {
		t.Errorf("third event = %+v, want nil (sign-out)", events[2])
	}
}

func TestBroker_SignIn_emptyEmail(t *testing.T) {
	broker := newTestBroker(t, "")
	if _, err := broker.SignIn(context.Background(), auth.User{}); err != auth.ErrAuthenticationFailed {
		t.Errorf("SignIn() error = %v, want ErrAuthenticationFailed", err)
	}
}

func TestBroker_Unsubscribe(t *testing.T) {
	broker := newTestBroker(t, "")

	var calls int
	unsub := broker.OnAuthChange(func(*auth.User) { calls++ })

	broker.SignOut()
	unsub()
	broker.SignOut()

	if calls != 1 {
		t.Errorf("got %d calls after unsubscribe, want 1", calls)
	}
}

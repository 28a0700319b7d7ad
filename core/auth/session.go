package auth

import (
	"context"
	"errors"
	"sync"

	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/sanaa/core"
	"github.com/trezcool/sanaa/core/role"
)

var ErrAuthenticationFailed = errors.New("authentication failed")

type (
	// User is the signed-in identity as seen by the app.
	User struct {
		Email   string `json:"email"`
		Name    string `json:"name,omitempty"`
		IsAdmin bool   `json:"is_admin"`
	}

	// TokenVerifier validates an upstream identity token (eg. a Google ID token
	// obtained by the frontend's OAuth popup) and extracts the identity.
	// The IsAdmin flag is left unset; it is resolved by the Broker.
	TokenVerifier interface {
		Verify(ctx context.Context, idToken string) (User, error)
	}

	// Unsubscribe releases an auth-change subscription. Callers must invoke it
	// exactly once on teardown.
	Unsubscribe func()

	// Broker tracks session state and notifies subscribers on every change.
	// The admin flag is resolved before each notification round.
	Broker struct {
		roleSvc *role.Service
		logger  core.Logger

		mu     sync.Mutex
		subs   map[int]func(*User)
		nextID int
	}
)

func NewBroker(roleSvc *role.Service, logger core.Logger) *Broker {
	return &Broker{
		roleSvc: roleSvc,
		logger:  logger,
		subs:    make(map[int]func(*User)),
	}
}

// OnAuthChange registers cb to be invoked with the signed-in user (or nil on
// sign-out) whenever session state changes.
func (b *Broker) OnAuthChange(cb func(*User)) Unsubscribe {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.subs[id] = cb
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// SignIn resolves the identity's admin capability (bootstrapping the first
// admin when applicable) and notifies subscribers.
func (b *Broker) SignIn(ctx context.Context, usr User) (User, error) {
	usr.Email = core.CleanString(usr.Email, true /* lower */)
	if usr.Email == "" {
		return User{}, ErrAuthenticationFailed
	}

	isAdmin, err := b.roleSvc.BootstrapFirstAdmin(ctx, usr.Email)
	if err != nil {
		return User{}, pkgerrors.Wrap(err, "resolving admin capability")
	}
	usr.IsAdmin = isAdmin

	b.notify(&usr)
	return usr, nil
}

// SignOut clears session state and notifies subscribers with nil.
func (b *Broker) SignOut() {
	b.notify(nil)
}

func (b *Broker) notify(usr *User) {
	b.mu.Lock()
	cbs := make([]func(*User), 0, len(b.subs))
	for _, cb := range b.subs {
		cbs = append(cbs, cb)
	}
	b.mu.Unlock()

	for _, cb := range cbs {
		cb(usr)
	}
}

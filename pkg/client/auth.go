package client

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// State is the authentication state of an Authenticator.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// Redirect targets returned by RequireRole.
const (
	RedirectLogin = "/login"
	RedirectHome  = "/"
)

// ErrAuthInProgress is returned when a login or registration is already
// running.
var ErrAuthInProgress = errors.New("authentication already in progress")

// Listener is called after every state change.
type Listener func(state State, user *User)

// Authenticator holds the session state of one client.
//
//	anonymous -> authenticating -> authenticated
//	authenticating -> anonymous   (rejected credentials)
//	authenticated -> anonymous    (Logout or any 401)
type Authenticator struct {
	client *Client
	logger *zap.Logger

	mu        sync.Mutex
	state     State
	user      *User
	listeners map[int]Listener
	nextID    int
}

// NewAuthenticator binds to c and takes over its 401 handling.
func NewAuthenticator(c *Client) *Authenticator {
	a := &Authenticator{client: c, logger: c.logger, listeners: map[int]Listener{}}
	c.onUnauthorized = a.handleUnauthorized
	return a
}

// Restore resumes a persisted session without contacting the server.
func (a *Authenticator) Restore(ctx context.Context) error {
	session, err := a.client.session.Load(ctx)
	if err != nil {
		return err
	}
	if session == nil || session.Token == "" {
		return nil
	}
	a.transition(StateAuthenticated, session.User)
	return nil
}

// Login authenticates with email and password.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*User, error) {
	return a.authenticate(ctx, func() (*AuthResult, error) {
		return a.client.Login(ctx, email, password)
	})
}

// Register creates an account and signs it in.
func (a *Authenticator) Register(ctx context.Context, name, email, password string) (*User, error) {
	return a.authenticate(ctx, func() (*AuthResult, error) {
		return a.client.Register(ctx, name, email, password)
	})
}

func (a *Authenticator) authenticate(ctx context.Context, call func() (*AuthResult, error)) (*User, error) {
	a.mu.Lock()
	if a.state == StateAuthenticating {
		a.mu.Unlock()
		return nil, ErrAuthInProgress
	}
	a.state = StateAuthenticating
	a.user = nil
	listeners := a.snapshot()
	a.mu.Unlock()
	for _, l := range listeners {
		l(StateAuthenticating, nil)
	}

	res, err := call()
	if err != nil {
		a.fail(ctx)
		return nil, err
	}
	user := res.User
	if err := a.client.session.Save(ctx, Session{Token: res.Token, User: &user}); err != nil {
		a.fail(ctx)
		return nil, err
	}
	a.transition(StateAuthenticated, &user)
	return &user, nil
}

// Logout revokes the token server-side and clears the session. The local
// session is cleared even if the server call fails.
func (a *Authenticator) Logout(ctx context.Context) error {
	remoteErr := a.client.Logout(ctx)
	if errors.Is(remoteErr, ErrUnauthorized) {
		// already torn down by the 401 handler
		return nil
	}
	if err := a.client.session.Clear(ctx); err != nil {
		return err
	}
	a.transition(StateAnonymous, nil)
	return remoteErr
}

// fail drops whatever session an aborted login left behind and returns
// to anonymous.
func (a *Authenticator) fail(ctx context.Context) {
	if err := a.client.session.Clear(ctx); err != nil {
		a.logger.Warn("clear session after failed login", zap.Error(err))
	}
	a.transition(StateAnonymous, nil)
}

// handleUnauthorized clears the persisted session on every 401. Listeners
// hear about it once per authenticated period.
func (a *Authenticator) handleUnauthorized(ctx context.Context) {
	if err := a.client.session.Clear(ctx); err != nil {
		a.logger.Warn("clear session after 401", zap.Error(err))
	}

	a.mu.Lock()
	if a.state != StateAuthenticated {
		a.mu.Unlock()
		return
	}
	a.state = StateAnonymous
	a.user = nil
	listeners := a.snapshot()
	a.mu.Unlock()

	for _, l := range listeners {
		l(StateAnonymous, nil)
	}
}

func (a *Authenticator) transition(state State, user *User) {
	a.mu.Lock()
	a.state = state
	a.user = user
	listeners := a.snapshot()
	a.mu.Unlock()

	for _, l := range listeners {
		l(state, user)
	}
}

func (a *Authenticator) snapshot() []Listener {
	out := make([]Listener, 0, len(a.listeners))
	for i := 0; i < a.nextID; i++ {
		if l, ok := a.listeners[i]; ok {
			out = append(out, l)
		}
	}
	return out
}

// State returns the current state.
func (a *Authenticator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// User returns the signed-in user, or nil.
func (a *Authenticator) User() *User {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.user == nil {
		return nil
	}
	u := *a.user
	return &u
}

// Subscribe registers l and returns a function that removes it.
func (a *Authenticator) Subscribe(l Listener) (unsubscribe func()) {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = l
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.listeners, id)
		a.mu.Unlock()
	}
}

// RequireRole reports whether the current user may access something that
// needs role. When not, it returns where to send the user instead: the
// login entry when signed out, home when the role does not match. An empty
// role only requires a session.
func (a *Authenticator) RequireRole(role string) (redirect string, allowed bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateAuthenticated {
		return RedirectLogin, false
	}
	if role == "" {
		return "", true
	}
	if a.user == nil || a.user.Role != role {
		return RedirectHome, false
	}
	return "", true
}

// Package auth owns the client's authentication lifecycle: the state
// machine over Unknown, Authenticating, Authenticated and
// Unauthenticated, and every transition that touches the session store.
package auth

import (
	"context"
	"sync"

	"quicknotes/internal/api"
	"quicknotes/internal/models"
	"quicknotes/internal/session"
)

type State int

const (
	StateUnknown State = iota
	StateAuthenticating
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	}
	return "invalid"
}

type Controller struct {
	api     *api.Client
	session *session.Store

	mu    sync.Mutex
	state State
	user  models.User
}

// NewController wires itself to the client's session-invalidated signal,
// so a 401 anywhere lands here rather than in the transport.
func NewController(client *api.Client, sess *session.Store) *Controller {
	c := &Controller{api: client, session: sess, state: StateUnknown}
	client.OnSessionInvalid = c.invalidate
	return c
}

// Bootstrap resolves the initial Unknown state and must complete before
// any authenticated operation runs. With no stored token it goes
// straight to Unauthenticated without a network call; with one it asks
// the server, and any failure clears the store.
func (c *Controller) Bootstrap(ctx context.Context) error {
	if _, ok := c.session.Get(); !ok {
		c.setState(StateUnauthenticated, models.User{})
		return nil
	}
	resp, err := c.api.ValidateSession(ctx)
	if err != nil {
		c.session.Clear()
		c.setState(StateUnauthenticated, models.User{})
		return err
	}
	if !resp.Authenticated {
		c.session.Clear()
		c.setState(StateUnauthenticated, models.User{})
		return nil
	}
	c.setState(StateAuthenticated, resp.User)
	return nil
}

// Login surfaces the server's failure message verbatim; on success the
// token and user are stored before the state flips to Authenticated.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	c.setState(StateAuthenticating, models.User{})
	resp, err := c.api.Login(ctx, models.Credentials{Email: email, Password: password})
	if err != nil {
		c.setState(StateUnauthenticated, models.User{})
		return err
	}
	if err := c.session.Set(resp.Token, resp.User); err != nil {
		c.setState(StateUnauthenticated, models.User{})
		return err
	}
	c.setState(StateAuthenticated, resp.User)
	return nil
}

// Logout calls the server best-effort: the local clear and transition
// happen regardless, so a network error can never strand the user in an
// authenticated-looking state. The remote failure, if any, is returned
// for the caller to report.
func (c *Controller) Logout(ctx context.Context) error {
	err := c.api.Logout(ctx)
	c.session.Clear()
	c.setState(StateUnauthenticated, models.User{})
	return err
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) User() models.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

// invalidate is the forced 401 path: same local effect as Logout
// without the outbound call. The transport has already cleared the
// stored token by the time this fires.
func (c *Controller) invalidate() {
	c.setState(StateUnauthenticated, models.User{})
}

func (c *Controller) setState(s State, u models.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
	c.user = u
}

// Package session owns the signed-in identity. There is exactly one
// Context per process; the TUI and the seat grid read the role from it.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"transpo-cli/model"
	"transpo-cli/store"
)

// ErrNoSession is returned by Restore when nothing was persisted.
var ErrNoSession = errors.New("no saved session")

// Session is the identity resolved from the backend's whoami endpoint.
type Session struct {
	Username          string
	Role              model.Role
	AssignedBusID     int64
	AssignedBusNumber string
	AssignedBusName   string
}

// Backend is the subset of the HTTP client the session needs.
type Backend interface {
	Login(ctx context.Context, username string, password string) (model.LoginResponse, error)
	Whoami(ctx context.Context) (model.Whoami, error)
	BaseURL() string
	ClearSession() error
	SessionCookies() []*http.Cookie
	RestoreSessionCookies(cookies []*http.Cookie) error
}

type Context struct {
	mu      sync.RWMutex
	backend Backend
	logger  *slog.Logger
	current *Session
	persist bool
}

// NewContext returns an empty Context. When persist is true a
// successful login is written to disk for the next start.
func NewContext(backend Backend, persist bool, logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Context{backend: backend, logger: logger, persist: persist}
}

// Current returns a copy of the session and whether one exists.
func (c *Context) Current() (Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return Session{}, false
	}
	return *c.current, true
}

// Role returns the current role, or "" when signed out.
func (c *Context) Role() model.Role {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return ""
	}
	return c.current.Role
}

func (c *Context) Login(ctx context.Context, username string, password string) (Session, error) {
	if _, err := c.backend.Login(ctx, username, password); err != nil {
		return Session{}, fmt.Errorf("login: %w", err)
	}
	s, err := c.resolve(ctx)
	if err != nil {
		return Session{}, err
	}
	c.logger.Info("signed in", "username", s.Username, "role", string(s.Role))

	if c.persist {
		record := store.SessionRecord{
			BaseURL:  c.backend.BaseURL(),
			Username: s.Username,
			Role:     string(s.Role),
			Cookies:  store.SavedCookies(c.backend.SessionCookies()),
		}
		if err := store.SaveSession(record); err != nil {
			c.logger.Warn("could not persist session", "error", err)
		}
	}
	return s, nil
}

// Restore resumes the session saved by an earlier run. A session the
// backend no longer accepts is deleted.
func (c *Context) Restore(ctx context.Context) (Session, error) {
	record, ok, err := store.LoadSession()
	if err != nil {
		return Session{}, err
	}
	if !ok {
		return Session{}, ErrNoSession
	}
	if !strings.EqualFold(strings.TrimRight(record.BaseURL, "/"), strings.TrimRight(c.backend.BaseURL(), "/")) {
		return Session{}, ErrNoSession
	}
	if err := c.backend.RestoreSessionCookies(record.HTTPCookies()); err != nil {
		return Session{}, err
	}

	s, err := c.resolve(ctx)
	if err != nil {
		c.logger.Info("saved session rejected", "username", record.Username, "error", err)
		_ = store.DeleteSession()
		_ = c.backend.ClearSession()
		return Session{}, err
	}
	return s, nil
}

// Logout drops the in-memory session, the saved session file and the
// client's cookies.
func (c *Context) Logout() error {
	c.mu.Lock()
	prev := c.current
	c.current = nil
	c.mu.Unlock()

	if prev != nil {
		c.logger.Info("signed out", "username", prev.Username)
	}
	var errs []error
	if err := store.DeleteSession(); err != nil {
		errs = append(errs, err)
	}
	if err := c.backend.ClearSession(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Context) resolve(ctx context.Context) (Session, error) {
	me, err := c.backend.Whoami(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("resolve session: %w", err)
	}
	s := Session{
		Username:          me.Username,
		Role:              model.ParseRole(me.Role),
		AssignedBusID:     me.AssignedBusId,
		AssignedBusNumber: me.AssignedBusNumber,
		AssignedBusName:   me.AssignedBusName,
	}
	c.mu.Lock()
	c.current = &s
	c.mu.Unlock()
	return s, nil
}

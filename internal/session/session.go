// Package session resolves the acting user for completion stamping. The
// provider is an injected dependency so tests can substitute a fake user
// without touching any global state.
package session

import (
	"context"
	"errors"
	"strings"
)

var ErrUnauthenticated = errors.New("session: no authenticated user")

type User struct {
	ID   string
	Name string
}

type UserProvider interface {
	CurrentUser(ctx context.Context) (User, error)
}

// StaticProvider always returns the same user, or ErrUnauthenticated when
// configured empty. The TUI wires it from config; tests construct it
// directly.
type StaticProvider struct {
	User User
}

func (p StaticProvider) CurrentUser(ctx context.Context) (User, error) {
	if strings.TrimSpace(p.User.ID) == "" {
		return User{}, ErrUnauthenticated
	}
	return p.User, nil
}

// NoneProvider never has a user.
type NoneProvider struct{}

func (NoneProvider) CurrentUser(ctx context.Context) (User, error) {
	return User{}, ErrUnauthenticated
}

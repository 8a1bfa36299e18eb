// Package store defines the interface for database implementations of the greeter service.
package store

import (
	"context"
	"errors"
)

// DB defines the methods required to persist wallet sessions.
type DB interface {
	SaveSession(ctx context.Context, s Session) error
	LoadSession(ctx context.Context, id string) (Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// Errors returned
var (
	ErrSessionNotFound = errors.New("session was not found in store")
	ErrNoID            = errors.New("session id is empty")
)

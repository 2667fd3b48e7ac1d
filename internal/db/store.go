package db

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrProfileNotFound is returned when no profile is stored for a login
var ErrProfileNotFound = errors.New("profile not found")

// Store persists one JSON profile document per GitHub login
type Store interface {
	GetProfile(ctx context.Context, login string) (json.RawMessage, error)
	SaveProfile(ctx context.Context, login string, document json.RawMessage) error
	DeleteProfile(ctx context.Context, login string) error
	Close() error
}

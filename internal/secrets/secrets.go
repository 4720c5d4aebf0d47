package secrets

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a named secret does not exist.
var ErrNotFound = errors.New("secrets: not found")

// Store is a versioned secret backend addressed by short name.
// Get reads the latest version; Set creates the secret if absent and
// appends a new version.
type Store interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Set(ctx context.Context, name string, payload []byte) error
}

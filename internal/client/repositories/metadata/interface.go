package metadata

import (
	"context"
)

// Repository is a string key/value store backing the local session.
// Get reports ok=false for a missing key instead of returning an error.
type Repository interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, keys ...string) error
}

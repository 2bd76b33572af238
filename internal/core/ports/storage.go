package ports

import "context"

// KeyValueStore is the client's durable key/value storage. It survives
// process restarts; it is not a database.
type KeyValueStore interface {
	// Load returns the values present for keys. Missing keys are absent from
	// the result rather than reported as errors.
	Load(ctx context.Context, keys ...string) (map[string]string, error)
	// Store writes all entries as one unit.
	Store(ctx context.Context, entries map[string]string) error
	// Remove deletes keys as one unit. Removing a missing key is not an error.
	Remove(ctx context.Context, keys ...string) error
	// Ping reports whether the storage is reachable.
	Ping(ctx context.Context) error
}

// Package kv provides the small key-value stores the engine uses for
// translation caching, directory snapshots, and recently-used language
// tracking.
package kv

// Store is the injected key-value capability.
type Store interface {
	// Get retrieves a value. Returns empty string and false if not found or expired.
	Get(key string) (string, bool)

	// Set stores a value.
	Set(key string, value string) error
}

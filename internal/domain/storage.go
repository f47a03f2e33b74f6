package domain

// KeyValueStore is durable string-keyed storage of string blobs.
// Values survive process restarts.
type KeyValueStore interface {
	// Get returns the stored value and whether the key exists
	Get(key string) (string, bool, error)

	// Set stores value under key, replacing any previous value
	Set(key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error

	Close() error
}

package ports

// CacheStorePort is a byte-blob cache keyed by archive query string.
// The archive adapter uses it to avoid re-downloading pixel files
// across runs and restarts.
type CacheStorePort interface {
	Get(key string) ([]byte, bool, error)
	Put(key string, value []byte) error
	Delete(key string) error
	Close() error
}

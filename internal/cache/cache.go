package cache

import (
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// Cache is a thin get/set wrapper over an embedded Badger store, used for
// hot catalog reads. Misses and store errors are indistinguishable to
// callers on purpose: a cache problem must never fail a request.
type Cache struct {
	db *badger.DB
}

// Open opens (or creates) the cache at dir. An empty dir opens an
// in-memory store, which is what tests use.
func Open(dir string) (*Cache, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached value and true on a hit.
func (c *Cache) Get(key string) ([]byte, bool) {
	var value []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, false
	}
	return value, true
}

// Set stores value under key with a TTL. Errors are swallowed; the next
// Get simply misses.
func (c *Cache) Set(key string, value []byte, ttl time.Duration) {
	_ = c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
}

// Delete invalidates a key. Deleting a missing key is a no-op.
func (c *Cache) Delete(key string) {
	_ = c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

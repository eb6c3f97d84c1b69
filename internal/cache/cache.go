package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/ogero/subtitle-shots/internal/common"
)

var (
	mu       sync.RWMutex
	badgerDB *badger.DB
)

// ErrNotOpen is returned by Memoize when neither Open nor OpenInMemory was called.
var ErrNotOpen = errors.New("cache not open")

// Open opens, or creates, the cache DB at path.
func Open(path string) error {
	return open(badger.DefaultOptions(path).
		WithNumVersionsToKeep(0).
		WithValueLogFileSize(1024 * 1024 * 100))
}

// OpenInMemory opens a cache DB that is never written to disk.
func OpenInMemory() error {
	return open(badger.DefaultOptions("").WithInMemory(true))
}

func open(opts badger.Options) error {
	mu.Lock()
	defer mu.Unlock()

	if badgerDB != nil {
		return errors.New("cache already open")
	}

	db, err := badger.Open(opts.WithLogger(&l{}))
	if err != nil {
		return fmt.Errorf("failed to badger.Open: %w", err)
	}
	badgerDB = db

	return nil
}

// Memoize retrieves a cached value for the specified cacheKey.
// If the value is present, it is returned. Otherwise, the provided function fn
// is called to compute the value, which is then stored in the cache
// with the specified expiration and returned. Values are stored as JSON.
func Memoize[V any](cacheKey string, ttl time.Duration, fn func() (*V, error)) (*V, error) {
	mu.RLock()
	defer mu.RUnlock()

	if badgerDB == nil {
		return nil, ErrNotOpen
	}

	value := new(V)

	err := badgerDB.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(cacheKey))
		if err != nil {
			return err
		}

		err = item.Value(func(val []byte) error {
			return json.Unmarshal(val, value)
		})
		if err != nil {
			return fmt.Errorf("failed to json.Unmarshal: %w", err)
		}

		return nil
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("failed to get from cache: %w", err)
	} else if err == nil {
		return value, nil
	}

	value, err = fn()
	if err != nil {
		return nil, err
	}

	err = badgerDB.Update(func(txn *badger.Txn) error {
		valueJSONBytes, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to json.Marshal: %w", err)
		}
		entry := badger.NewEntry([]byte(cacheKey), valueJSONBytes).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store on cache: %w", err)
	}

	return value, nil
}

// Close closes the cache DB. It's crucial to call it to ensure all the pending updates make their way to disk.
// Closing a cache that is not open is a no-op.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if badgerDB == nil {
		return nil
	}
	err := badgerDB.Close()
	badgerDB = nil
	return err
}

// l routes badger logs to the app logger.
type l struct{}

func (l *l) Errorf(s string, i ...interface{}) {
	common.Log.Error(strings.TrimSpace(fmt.Sprintf(s, i...)), "component", "badger")
}

func (l *l) Warningf(s string, i ...interface{}) {
	common.Log.Warn(strings.TrimSpace(fmt.Sprintf(s, i...)), "component", "badger")
}

func (l *l) Infof(s string, i ...interface{}) {
	common.Log.Info(strings.TrimSpace(fmt.Sprintf(s, i...)), "component", "badger")
}

func (l *l) Debugf(s string, i ...interface{}) {
	common.Log.Debug(strings.TrimSpace(fmt.Sprintf(s, i...)), "component", "badger")
}

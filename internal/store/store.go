package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/xcview/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketProfiles = []byte("profiles")
	bucketSettings = []byte("settings")
)

// globalNamespace is the memory cache namespace for settings keys. Profile
// names are stored with a "p/" prefix so the two never collide.
const globalNamespace = "g/"

// Store implements a profile-scoped key-value store on BoltDB. Every profile
// owns a nested bucket under "profiles", so two profiles never observe each
// other's values. Reads are promoted into an in-memory map.
type Store struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	cache map[string][]byte
}

// Open opens (or creates) the store under dir. An empty dir gives a
// memory-only store with no persistence.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return &Store{cache: make(map[string][]byte)}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}

	dbPath := filepath.Join(dir, "xcview.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open bolt db: %v", domain.ErrStorage, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketProfiles, bucketSettings} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}

	return &Store{db: db, cache: make(map[string][]byte)}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func cacheKey(profile, key string) string {
	return "p/" + profile + "\x00" + key
}

// Get returns a copy of the value stored under key for profile. A missing
// value is reported as (nil, nil).
func (s *Store) Get(profile, key string) ([]byte, error) {
	if profile == "" {
		return nil, fmt.Errorf("%w: empty profile", domain.ErrInvalidInput)
	}
	ck := cacheKey(profile, key)

	s.mu.RLock()
	if data, ok := s.cache[ck]; ok {
		s.mu.RUnlock()
		return bytes.Clone(data), nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return nil, nil
	}

	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		root := tx.Bucket(bucketProfiles)
		if root == nil {
			return errors.New("profiles bucket not found")
		}
		b := root.Bucket([]byte(profile))
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrStorage, key, err)
	}
	if data == nil {
		return nil, nil
	}

	s.mu.Lock()
	s.cache[ck] = data
	s.mu.Unlock()

	return bytes.Clone(data), nil
}

// Set replaces the value under key for profile in a single transaction.
// The memory cache is only updated once the write is durable.
func (s *Store) Set(profile, key string, value []byte) error {
	if profile == "" {
		return fmt.Errorf("%w: empty profile", domain.ErrInvalidInput)
	}

	data := make([]byte, len(value))
	copy(data, value)

	if s.db != nil {
		err := s.db.Update(func(tx *bolt.Tx) error {
			root := tx.Bucket(bucketProfiles)
			if root == nil {
				return errors.New("profiles bucket not found")
			}
			b, err := root.CreateBucketIfNotExists([]byte(profile))
			if err != nil {
				return err
			}
			return b.Put([]byte(key), data)
		})
		if err != nil {
			return fmt.Errorf("%w: write %s: %v", domain.ErrStorage, key, err)
		}
	}

	s.mu.Lock()
	s.cache[cacheKey(profile, key)] = data
	s.mu.Unlock()
	return nil
}

// Delete removes key for profile. Deleting a missing key is not an error.
func (s *Store) Delete(profile, key string) error {
	if s.db != nil {
		err := s.db.Update(func(tx *bolt.Tx) error {
			root := tx.Bucket(bucketProfiles)
			if root == nil {
				return nil
			}
			b := root.Bucket([]byte(profile))
			if b == nil {
				return nil
			}
			return b.Delete([]byte(key))
		})
		if err != nil {
			return fmt.Errorf("%w: delete %s: %v", domain.ErrStorage, key, err)
		}
	}

	s.mu.Lock()
	delete(s.cache, cacheKey(profile, key))
	s.mu.Unlock()
	return nil
}

// DeleteProfile drops every key stored for profile
func (s *Store) DeleteProfile(profile string) error {
	if s.db != nil {
		err := s.db.Update(func(tx *bolt.Tx) error {
			root := tx.Bucket(bucketProfiles)
			if root == nil || root.Bucket([]byte(profile)) == nil {
				return nil
			}
			return root.DeleteBucket([]byte(profile))
		})
		if err != nil {
			return fmt.Errorf("%w: delete profile %s: %v", domain.ErrStorage, profile, err)
		}
	}

	prefix := cacheKey(profile, "")
	s.mu.Lock()
	for k := range s.cache {
		if strings.HasPrefix(k, prefix) {
			delete(s.cache, k)
		}
	}
	s.mu.Unlock()
	return nil
}

// GetStrings decodes a JSON string list. Missing values decode to an empty
// list; a value that is not a string list is reported as a storage failure.
func (s *Store) GetStrings(profile, key string) ([]string, error) {
	data, err := s.Get(profile, key)
	if err != nil {
		return []string{}, err
	}
	return decodeStrings(key, data)
}

// SetStrings stores values as a JSON string list
func (s *Store) SetStrings(profile, key string, values []string) error {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return s.Set(profile, key, data)
}

// === Settings (not profile scoped) ===

// GetGlobal returns a settings value, or "" when unset
func (s *Store) GetGlobal(key string) (string, error) {
	ck := globalNamespace + key

	s.mu.RLock()
	if data, ok := s.cache[ck]; ok {
		s.mu.RUnlock()
		return string(data), nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return "", nil
	}

	var value string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSettings)
		if b == nil {
			return errors.New("settings bucket not found")
		}
		value = string(b.Get([]byte(key)))
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: read setting %s: %v", domain.ErrStorage, key, err)
	}

	s.mu.Lock()
	s.cache[ck] = []byte(value)
	s.mu.Unlock()
	return value, nil
}

// SetGlobal stores a settings value
func (s *Store) SetGlobal(key, value string) error {
	if s.db != nil {
		err := s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(bucketSettings).Put([]byte(key), []byte(value))
		})
		if err != nil {
			return fmt.Errorf("%w: write setting %s: %v", domain.ErrStorage, key, err)
		}
	}

	s.mu.Lock()
	s.cache[globalNamespace+key] = []byte(value)
	s.mu.Unlock()
	return nil
}

func decodeStrings(key string, data []byte) ([]string, error) {
	if len(data) == 0 {
		return []string{}, nil
	}
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return []string{}, fmt.Errorf("%w: decode %s: %v", domain.ErrStorage, key, err)
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}

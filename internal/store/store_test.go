package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/mmcdole/xcview/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// setupTestStore opens a BoltDB-backed store in a temporary directory.
func setupTestStore(t *testing.T) (*Store, string) {
	t.Helper()

	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, dir
}

func TestStore_GetMissingReturnsEmpty(t *testing.T) {
	s, _ := setupTestStore(t)

	data, err := s.Get("alice", KeyBucket)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if data != nil {
		t.Errorf("expected nil data, got %q", data)
	}

	list, err := s.GetStrings("alice", KeyBucket)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", list)
	}
}

func TestStore_ProfilesAreIsolated(t *testing.T) {
	s, _ := setupTestStore(t)

	if err := s.SetStrings("alice", KeyBucket, []string{"movie-1"}); err != nil {
		t.Fatalf("failed to set: %v", err)
	}
	if err := s.SetStrings("bob", KeyBucket, []string{"series-9"}); err != nil {
		t.Fatalf("failed to set: %v", err)
	}

	alice, _ := s.GetStrings("alice", KeyBucket)
	bob, _ := s.GetStrings("bob", KeyBucket)
	if len(alice) != 1 || alice[0] != "movie-1" {
		t.Errorf("alice = %v", alice)
	}
	if len(bob) != 1 || bob[0] != "series-9" {
		t.Errorf("bob = %v", bob)
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	key := HiddenCategoriesKey(domain.MediaTypeMovie)
	if err := s.SetStrings("alice", key, []string{"12", "40"}); err != nil {
		t.Fatalf("failed to set: %v", err)
	}
	if err := s.SetGlobal(SettingActiveProfile, "alice"); err != nil {
		t.Fatalf("failed to set setting: %v", err)
	}
	s.Close()

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetStrings("alice", key)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 2 || got[0] != "12" || got[1] != "40" {
		t.Errorf("got %v, want [12 40]", got)
	}

	active, err := reopened.GetGlobal(SettingActiveProfile)
	if err != nil || active != "alice" {
		t.Errorf("active profile = %q (err %v), want alice", active, err)
	}
}

func TestStore_WriteFailurePropagates(t *testing.T) {
	dir := t.TempDir()
	db, err := bolt.Open(filepath.Join(dir, "ro.db"), 0600, nil)
	if err != nil {
		t.Fatalf("failed to open bolt: %v", err)
	}
	db.Close()

	// A closed database makes every transaction fail.
	s := &Store{db: db, cache: make(map[string][]byte)}

	err = s.Set("alice", KeyBucket, []byte(`[]`))
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}

	// Failed writes must not leak into the memory cache.
	if _, ok := s.cache[cacheKey("alice", KeyBucket)]; ok {
		t.Error("failed write was cached")
	}

	if _, err := s.Get("alice", KeyBucket); !errors.Is(err, domain.ErrStorage) {
		t.Errorf("expected ErrStorage on read, got %v", err)
	}
}

func TestStore_CorruptListIsStorageError(t *testing.T) {
	s, _ := setupTestStore(t)

	if err := s.Set("alice", KeyBucket, []byte("not json")); err != nil {
		t.Fatalf("failed to set: %v", err)
	}
	list, err := s.GetStrings("alice", KeyBucket)
	if !errors.Is(err, domain.ErrStorage) {
		t.Errorf("expected ErrStorage, got %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty list, got %v", list)
	}
}

func TestStore_DeleteProfile(t *testing.T) {
	s, _ := setupTestStore(t)

	s.SetStrings("alice", KeyBucket, []string{"live-3"})
	s.SetStrings("bob", KeyBucket, []string{"live-4"})

	if err := s.DeleteProfile("alice"); err != nil {
		t.Fatalf("failed to delete profile: %v", err)
	}

	alice, _ := s.GetStrings("alice", KeyBucket)
	if len(alice) != 0 {
		t.Errorf("alice still has %v", alice)
	}
	bob, _ := s.GetStrings("bob", KeyBucket)
	if len(bob) != 1 {
		t.Errorf("bob lost data: %v", bob)
	}
}

func TestStore_MemoryOnly(t *testing.T) {
	s, err := Open("")
	if err != nil {
		t.Fatalf("failed to open memory store: %v", err)
	}

	if err := s.SetStrings("alice", KeyBucket, []string{"movie-5"}); err != nil {
		t.Fatalf("failed to set: %v", err)
	}
	got, _ := s.GetStrings("alice", KeyBucket)
	if len(got) != 1 || got[0] != "movie-5" {
		t.Errorf("got %v", got)
	}

	if _, err := s.Get("", KeyBucket); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty profile, got %v", err)
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s, _ := setupTestStore(t)

	if err := s.Set("alice", "note", []byte("hello")); err != nil {
		t.Fatalf("failed to set: %v", err)
	}
	data, err := s.Get("alice", "note")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	data[0] = 'J'

	again, _ := s.Get("alice", "note")
	if string(again) != "hello" {
		t.Errorf("expected cached value untouched, got %q", again)
	}
}

package research

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MemoryStore is a map-backed Store, useful on its own in tests and as a
// building block for tiering experiments.
type MemoryStore struct {
	mu sync.Mutex
	m  map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string][]byte)}
}

// Get returns the stored value for key.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok
}

// Put stores value under key.
func (s *MemoryStore) Put(_ context.Context, key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
}

// Clear drops all records.
func (s *MemoryStore) Clear(_ context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m = make(map[string][]byte)
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// FileStore persists one JSON record per cache key in a directory. Keys
// are made filesystem-safe by replacing non-alphanumeric bytes with '_'.
// Absence of a record is a normal miss; every I/O error is swallowed.
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed and returns the store.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the backing directory.
func (s *FileStore) Dir() string { return s.dir }

// Get reads the record for key, reporting a miss on any error.
func (s *FileStore) Get(_ context.Context, key string) ([]byte, bool) {
	payload, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, false
	}
	return payload, true
}

// Put writes the record for key, ignoring failures.
func (s *FileStore) Put(_ context.Context, key string, value []byte) {
	_ = os.WriteFile(s.path(key), value, 0o644)
}

// Clear removes all records, best-effort.
func (s *FileStore) Clear(_ context.Context) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return
	}
	for _, m := range matches {
		_ = os.Remove(m)
	}
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, safeKey(key)+".json")
}

func safeKey(key string) string {
	out := []byte(key)
	for i, b := range out {
		switch {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		default:
			out[i] = '_'
		}
	}
	return string(out)
}

// RedisStore persists cache records in redis with an optional TTL.
// Concurrent writers to the same key are not coordinated; last write
// wins, which is acceptable for an advisory cache.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisStore connects a RedisStore. TTL zero means no expiry.
func NewRedisStore(addr, password string, db int, ttl time.Duration) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisStore{client: client, ttl: ttl, prefix: "research:cache:"}
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, prefix: "research:cache:"}
}

// Get reads the record for key, reporting a miss on any error.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	payload, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	return payload, true
}

// Put writes the record for key, ignoring failures.
func (s *RedisStore) Put(ctx context.Context, key string, value []byte) {
	_ = s.client.Set(ctx, s.prefix+key, value, s.ttl).Err()
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

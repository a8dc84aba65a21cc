// Package cache keeps the last successful read of every view on disk so
// views render while offline or when the backend fails.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/peterbourgon/diskv/v3"
)

// ErrMiss is returned when a key has never been stored.
var ErrMiss = errors.New("no cached data")

// Store is a JSON key/value store on top of diskv. Keys are dash
// separated; every segment but the last becomes a directory.
type Store struct {
	d   *diskv.Diskv
	now func() time.Time
}

type record struct {
	StoredAt time.Time       `json:"stored_at"`
	Data     json.RawMessage `json:"data"`
}

// Open returns a store rooted at dir. The directory is created on first write.
func Open(dir string) *Store {
	return &Store{
		d: diskv.New(diskv.Options{
			BasePath:          dir,
			AdvancedTransform: keyToPathTransform,
			InverseTransform:  pathToKeyTransform,
			CacheSizeMax:      1024 * 1024, // 1MB
			FilePerm:          0600,
			PathPerm:          0700,
		}),
		now: time.Now,
	}
}

// Put stores v under key.
func (s *Store) Put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	b, err := json.Marshal(record{StoredAt: s.now(), Data: data})
	if err != nil {
		return err
	}
	return s.d.Write(key, b)
}

// Get decodes the value under key into v and returns when it was stored.
// Returns ErrMiss if the key is absent.
func (s *Store) Get(key string, v any) (time.Time, error) {
	if !s.d.Has(key) {
		return time.Time{}, fmt.Errorf("%s: %w", key, ErrMiss)
	}
	b, err := s.d.Read(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return time.Time{}, fmt.Errorf("%s: %w", key, ErrMiss)
		}
		return time.Time{}, err
	}
	var r record
	if err := json.Unmarshal(b, &r); err != nil {
		return time.Time{}, fmt.Errorf("decoding %s: %w", key, err)
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return time.Time{}, fmt.Errorf("decoding %s: %w", key, err)
	}
	return r.StoredAt, nil
}

// Delete removes key. A missing key is not an error.
func (s *Store) Delete(key string) error {
	if !s.d.Has(key) {
		return nil
	}
	return s.d.Erase(key)
}

// Keys returns every stored key in unspecified order.
func (s *Store) Keys(ctx context.Context) []string {
	var keys []string
	for k := range s.d.Keys(ctx.Done()) {
		keys = append(keys, k)
	}
	return keys
}

// Invalidate drops everything.
func (s *Store) Invalidate() error {
	return s.d.EraseAll()
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "-")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	if len(pathKey.Path) == 0 {
		return pathKey.FileName
	}
	return fmt.Sprintf("%s-%s", strings.Join(pathKey.Path, "-"), pathKey.FileName)
}

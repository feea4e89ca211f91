// Package store persists the two local documents sftpman owns: the
// per-server credential map and the network binding preference.
//
// Each document is loaded whole, mutated in memory and rewritten whole. All
// read-modify-write cycles are serialized by an in-process mutex and an
// advisory lock file so overlapping invocations cannot drop each other's
// writes. Missing or corrupt documents read as empty.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sync"

	"github.com/majorcontext/sftpman/internal/log"
)

// ErrPersistence marks a failure to write a document.
var ErrPersistence = errors.New("persisting local state")

// jsonFile is one JSON document on disk.
type jsonFile struct {
	path string
	mu   sync.Mutex
}

// errUnchanged lets an update callback skip the write.
var errUnchanged = errors.New("unchanged")

// update runs fn on the decoded document under both locks and writes the
// result back when fn returns nil.
func (f *jsonFile) update(v any, fn func() error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	unlock, err := f.lock()
	if err != nil {
		return err
	}
	defer unlock()

	f.loadLocked(v)
	if err := fn(); err != nil {
		if errors.Is(err, errUnchanged) {
			return nil
		}
		return err
	}
	return f.saveLocked(v)
}

// read decodes the document into v under the in-process lock.
func (f *jsonFile) read(v any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loadLocked(v)
}

// loadLocked decodes the document into v, a pointer to a map or struct.
// Anything unreadable leaves v empty (never a nil map).
func (f *jsonFile) loadLocked(v any) {
	defer ensureMap(v)

	data, err := os.ReadFile(f.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn("reading local state, treating as empty", "path", f.path, "error", err)
		}
		return
	}
	if len(data) == 0 {
		return
	}
	if err := json.Unmarshal(data, v); err != nil {
		log.Warn("local state is corrupt, treating as empty", "path", f.path, "error", err)
		rv := reflect.ValueOf(v).Elem()
		rv.Set(reflect.Zero(rv.Type()))
	}
}

func ensureMap(v any) {
	rv := reflect.ValueOf(v).Elem()
	if rv.Kind() == reflect.Map && rv.IsNil() {
		rv.Set(reflect.MakeMap(rv.Type()))
	}
}

func (f *jsonFile) saveLocked(v any) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("%w: creating %s: %w", ErrPersistence, filepath.Dir(f.path), err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %w", ErrPersistence, f.path, err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("%w: writing %s: %w", ErrPersistence, tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: replacing %s: %w", ErrPersistence, f.path, err)
	}
	return nil
}

// lock takes the cross-process lock next to the document.
func (f *jsonFile) lock() (func(), error) {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %w", ErrPersistence, filepath.Dir(f.path), err)
	}
	lf, err := os.OpenFile(f.path+".lock", os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("%w: opening lock file: %w", ErrPersistence, err)
	}
	unlock, err := lockFile(lf)
	if err != nil {
		lf.Close()
		return nil, fmt.Errorf("%w: acquiring lock: %w", ErrPersistence, err)
	}
	return func() {
		unlock()
		lf.Close()
	}, nil
}

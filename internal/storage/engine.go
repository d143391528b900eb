package storage

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// ErrCorruptShard is returned when a shard file's size is not a whole
// number of slots. The engine never attempts to repair or re-align a
// damaged file.
var ErrCorruptShard = errors.New("shard file size is not a multiple of the slot size")

// Predicate decides whether one serialized record (exactly one slot)
// matches. Predicates must not retain the window: the engine reuses its
// read buffer between slots.
type Predicate func(window []byte) bool

// Engine performs backward slot scans over shard files. All access to one
// file is serialized behind a mutex scoped to that file's path.
//
// The engine knows nothing about record kinds or field layouts; callers
// supply the slot size and a predicate built by the record codec.
type Engine struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEngine creates an engine with an empty lock table.
func NewEngine() *Engine {
	return &Engine{locks: make(map[string]*sync.Mutex)}
}

// pathLock returns the mutex guarding path, creating it on first use.
func (e *Engine) pathLock(path string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	l, ok := e.locks[path]
	if !ok {
		l = &sync.Mutex{}
		e.locks[path] = l
	}
	return l
}

// alignedSize returns the file's size after verifying it is a whole number
// of slots.
func alignedSize(f *os.File, slot int) (int64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	size := info.Size()
	if size%int64(slot) != 0 {
		return 0, fmt.Errorf("%w: %s is %d bytes, slot size %d", ErrCorruptShard, f.Name(), size, slot)
	}
	return size, nil
}

// FindFirst scans path backward one slot at a time and returns the offset,
// in bytes counted back from the end of the file, of the first slot the
// predicate accepts. Offsets are kept end-relative throughout so that read
// and write positioning for the same record never mix sign conventions.
//
// A scan that reaches offset zero without a match is not an error: found
// is false and err is nil.
func (e *Engine) FindFirst(path string, slot int, match Predicate) (offset int64, found bool, err error) {
	if slot <= 0 {
		return 0, false, fmt.Errorf("storage: slot size must be positive, got %d", slot)
	}
	l := e.pathLock(path)
	l.Lock()
	defer l.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return 0, false, err
	}
	defer f.Close()

	size, err := alignedSize(f, slot)
	if err != nil {
		return 0, false, err
	}

	window := make([]byte, slot)
	for pos := size - int64(slot); pos >= 0; pos -= int64(slot) {
		if _, err := f.ReadAt(window, pos); err != nil {
			return 0, false, fmt.Errorf("storage: reading %s at %d: %w", path, pos, err)
		}
		if match(window) {
			return size - pos, true, nil
		}
	}
	return 0, false, nil
}

// Collect scans path backward and returns copies of every slot the
// predicate accepts, in the order encountered (most recently appended
// first). A limit of zero or less means unbounded.
func (e *Engine) Collect(path string, slot int, match Predicate, limit int) ([][]byte, error) {
	if slot <= 0 {
		return nil, fmt.Errorf("storage: slot size must be positive, got %d", slot)
	}
	l := e.pathLock(path)
	l.Lock()
	defer l.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	size, err := alignedSize(f, slot)
	if err != nil {
		return nil, err
	}

	var matches [][]byte
	window := make([]byte, slot)
	for pos := size - int64(slot); pos >= 0; pos -= int64(slot) {
		if limit > 0 && len(matches) == limit {
			break
		}
		if _, err := f.ReadAt(window, pos); err != nil {
			return nil, fmt.Errorf("storage: reading %s at %d: %w", path, pos, err)
		}
		if match(window) {
			rec := make([]byte, slot)
			copy(rec, window)
			matches = append(matches, rec)
		}
	}
	return matches, nil
}

// FlipActive scans path backward and overwrites the leading active byte of
// every slot the predicate accepts, continuing to offset zero rather than
// stopping at the first match. It returns the number of slots modified;
// zero modifications is a no-op, not an error.
func (e *Engine) FlipActive(path string, slot int, match Predicate, active bool) (int, error) {
	if slot <= 0 {
		return 0, fmt.Errorf("storage: slot size must be positive, got %d", slot)
	}
	l := e.pathLock(path)
	l.Lock()
	defer l.Unlock()

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	size, err := alignedSize(f, slot)
	if err != nil {
		return 0, err
	}

	flag := []byte{'0'}
	if active {
		flag[0] = '1'
	}

	modified := 0
	window := make([]byte, slot)
	for pos := size - int64(slot); pos >= 0; pos -= int64(slot) {
		if _, err := f.ReadAt(window, pos); err != nil {
			return modified, fmt.Errorf("storage: reading %s at %d: %w", path, pos, err)
		}
		if !match(window) {
			continue
		}
		// Only the flag byte changes; the record keeps its length,
		// so slot alignment is preserved.
		if _, err := f.WriteAt(flag, pos); err != nil {
			return modified, fmt.Errorf("storage: flipping %s at %d: %w", path, pos, err)
		}
		modified++
	}
	return modified, nil
}

// Append writes rec, which must be exactly one slot, at the end of path.
// The file must already exist: shard files are pre-created empty before
// first use.
func (e *Engine) Append(path string, slot int, rec []byte) error {
	if slot <= 0 {
		return fmt.Errorf("storage: slot size must be positive, got %d", slot)
	}
	if len(rec) != slot {
		return fmt.Errorf("storage: record is %d bytes, slot size %d", len(rec), slot)
	}
	l := e.pathLock(path)
	l.Lock()
	defer l.Unlock()

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := alignedSize(f, slot); err != nil {
		return err
	}
	if _, err := f.Write(rec); err != nil {
		return fmt.Errorf("storage: appending to %s: %w", path, err)
	}
	return nil
}

// Size returns the current byte size of path after verifying slot
// alignment. Tests use it to assert that revive-instead-of-append keeps
// shard files from growing.
func (e *Engine) Size(path string, slot int) (int64, error) {
	l := e.pathLock(path)
	l.Lock()
	defer l.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return alignedSize(f, slot)
}

package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"glossolalia/debug"
	"glossolalia/sequencer"
)

var (
	ErrIndexOutOfRange = errors.New("sequence index out of range")
	ErrNotFound        = errors.New("sequence not found")
)

// Store is where saved sequences live. Indices follow save order.
type Store interface {
	LoadAll() ([]Record, error)
	Save(r Record) error
	Update(i int, r Record) error
	Delete(i int) error
	Clear() error
}

// IndexOf finds the first saved record whose sequence equals seq.
func IndexOf(s Store, seq sequencer.Sequence) (int, error) {
	recs, err := s.LoadAll()
	if err != nil {
		return -1, err
	}
	for i, r := range recs {
		if r.Sequence.Equal(seq) {
			return i, nil
		}
	}
	return -1, ErrNotFound
}

// Dir returns ~/.config/glossolalia
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "glossolalia"), nil
}

// DefaultPath returns the sequences file path.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sequences.json"), nil
}

// OpenDefault opens the file store, falling back to memory when the config
// directory is unusable. The error reports why the fallback was taken.
func OpenDefault() (Store, error) {
	path, err := DefaultPath()
	if err == nil {
		var fs *FileStore
		fs, err = OpenFile(path)
		if err == nil {
			return fs, nil
		}
	}
	debug.Warn("store", "using in-memory sequences: %v", err)
	return NewMemoryStore(), fmt.Errorf("open sequence file: %w", err)
}

// MemoryStore keeps records for the life of the process.
type MemoryStore struct {
	mu      sync.Mutex
	records []Record
}

func NewMemoryStore(recs ...Record) *MemoryStore {
	return &MemoryStore{records: cloneRecords(recs)}
}

func (m *MemoryStore) LoadAll() ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneRecords(m.records), nil
}

func (m *MemoryStore) Save(r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.normalize()
	m.records = append(m.records, cloneRecord(r))
	return nil
}

func (m *MemoryStore) Update(i int, r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= len(m.records) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	r.normalize()
	m.records[i] = cloneRecord(r)
	return nil
}

func (m *MemoryStore) Delete(i int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= len(m.records) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	m.records = append(m.records[:i], m.records[i+1:]...)
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = nil
	return nil
}

func cloneRecord(r Record) Record {
	r.Sequence = r.Sequence.Clone()
	return r
}

func cloneRecords(recs []Record) []Record {
	out := make([]Record, len(recs))
	for i, r := range recs {
		out[i] = cloneRecord(r)
	}
	return out
}

package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

type document struct {
	Sequences []Record `json:"sequences"`
}

// FileStore keeps records in one JSON document, rewritten on every change.
type FileStore struct {
	path string

	mu      sync.Mutex
	records []Record
}

// OpenFile loads path, creating its directory. A missing file is an empty
// store.
func OpenFile(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	fs := &FileStore{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fs, nil
		}
		return nil, err
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	fs.records = doc.Sequences
	return fs, nil
}

// Path of the backing file
func (fs *FileStore) Path() string {
	return fs.path
}

func (fs *FileStore) LoadAll() ([]Record, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return cloneRecords(fs.records), nil
}

func (fs *FileStore) Save(r Record) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	r.normalize()
	return fs.commit(append(cloneRecords(fs.records), cloneRecord(r)))
}

func (fs *FileStore) Update(i int, r Record) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if i < 0 || i >= len(fs.records) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	r.normalize()
	next := cloneRecords(fs.records)
	next[i] = cloneRecord(r)
	return fs.commit(next)
}

func (fs *FileStore) Delete(i int) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if i < 0 || i >= len(fs.records) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	next := cloneRecords(fs.records)
	next = append(next[:i], next[i+1:]...)
	return fs.commit(next)
}

func (fs *FileStore) Clear() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.commit(nil)
}

// commit writes next to disk and only then adopts it in memory.
func (fs *FileStore) commit(next []Record) error {
	if next == nil {
		next = []Record{}
	}
	data, err := json.MarshalIndent(document{Sequences: next}, "", "  ")
	if err != nil {
		return err
	}

	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		os.Remove(tmp)
		return err
	}
	fs.records = next
	return nil
}

package gallery

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/matzehuels/dailyart/pkg/errors"
)

// FileName is the gallery index written inside the output directory.
const FileName = "gallery.json"

// FileStore keeps the gallery as one JSON document next to the images.
type FileStore struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewFileStore opens (or lazily creates) <dir>/gallery.json.
func NewFileStore(dir string) (*FileStore, error) {
	if err := errors.ValidateOutputDir(dir); err != nil {
		return nil, err
	}
	return &FileStore{path: filepath.Join(dir, FileName), now: time.Now}, nil
}

// Path returns the location of the JSON index.
func (s *FileStore) Path() string { return s.path }

// Put inserts or replaces the entry for e.Date.
func (s *FileStore) Put(ctx context.Context, e Entry) error {
	e, err := prepare(e, s.now())
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	replaced := false
	for i := range entries {
		if entries[i].Date == e.Date {
			entries[i] = e
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, e)
	}
	return s.save(entries)
}

// Get returns the entry for date.
func (s *FileStore) Get(ctx context.Context, date string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return Entry{}, err
	}
	for _, e := range entries {
		if e.Date == date {
			return e, nil
		}
	}
	return Entry{}, notFound(date)
}

// List returns every entry ordered by date.
func (s *FileStore) List(ctx context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Close does nothing for file stores.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) load() ([]Entry, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "read %s", s.path)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "parse %s", s.path)
	}
	sortEntries(entries)
	return entries, nil
}

func (s *FileStore) save(entries []Entry) error {
	sortEntries(entries)
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode gallery")
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "create %s", dir)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write %s", tmp)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeStorage, err, "rename %s", tmp)
	}
	return nil
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)

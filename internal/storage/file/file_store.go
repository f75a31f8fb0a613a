package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// FileStore keeps all totals in a single JSON object on disk, the whole
// mapping rewritten on every mutation. Reads stat the file and re-parse
// it when another process has written it, which is what "sync" across
// devices amounts to: the next poll sees the new file. Last writer wins.
type FileStore struct {
	path string

	mu      sync.Mutex
	totals  map[string]decimal.Decimal
	modTime time.Time
	size    int64
}

// New creates a store backed by the JSON file at path. A missing or
// unparsable file is treated as an empty store, never an error.
func New(path string) *FileStore {
	s := &FileStore{
		path:   path,
		totals: make(map[string]decimal.Decimal),
	}
	s.mu.Lock()
	s.reload()
	s.mu.Unlock()
	return s
}

// reload re-reads the file if it changed on disk since the last read.
// Caller must hold s.mu.
func (s *FileStore) reload() {
	info, err := os.Stat(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logrus.WithError(err).WithField("file", s.path).Warn("totals file unreadable, treating as empty")
		}
		s.totals = make(map[string]decimal.Decimal)
		s.modTime = time.Time{}
		s.size = 0
		return
	}
	if info.ModTime().Equal(s.modTime) && info.Size() == s.size {
		return // unchanged since last read
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		logrus.WithError(err).WithField("file", s.path).Warn("totals file unreadable, treating as empty")
		s.totals = make(map[string]decimal.Decimal)
		return
	}
	totals := make(map[string]decimal.Decimal)
	if err := json.Unmarshal(data, &totals); err != nil {
		logrus.WithError(err).WithField("file", s.path).Warn("totals file unparsable, treating as empty")
		totals = make(map[string]decimal.Decimal)
	}
	s.totals = totals
	s.modTime = info.ModTime()
	s.size = info.Size()
}

// save writes the whole mapping to a temp file and renames it over the
// old one, so readers never observe a torn write. Caller must hold s.mu.
func (s *FileStore) save() error {
	data, err := json.Marshal(s.totals)
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if info, err := os.Stat(s.path); err == nil {
		s.modTime = info.ModTime()
		s.size = info.Size()
	}
	return nil
}

// GetTotal returns the total for username, zero if unseen.
func (s *FileStore) GetTotal(ctx context.Context, username string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reload()
	if total, ok := s.totals[username]; ok {
		return total, nil
	}
	return decimal.Zero, nil
}

// Add increments username's total by amount and persists the mapping.
func (s *FileStore) Add(ctx context.Context, username string, amount decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reload()
	total := s.totals[username].Add(amount)
	s.totals[username] = total
	if err := s.save(); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// Reset sets username's total to zero and persists the mapping.
func (s *FileStore) Reset(ctx context.Context, username string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reload()
	s.totals[username] = decimal.Zero
	if err := s.save(); err != nil {
		return decimal.Zero, err
	}
	return decimal.Zero, nil
}

// Ensure creates a zero record for username on first login.
func (s *FileStore) Ensure(ctx context.Context, username string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reload()
	if total, ok := s.totals[username]; ok {
		return total, nil
	}
	s.totals[username] = decimal.Zero
	if err := s.save(); err != nil {
		return decimal.Zero, err
	}
	return decimal.Zero, nil
}

// Totals returns a copy of the full username -> total mapping.
func (s *FileStore) Totals(ctx context.Context) (map[string]decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reload()
	out := make(map[string]decimal.Decimal, len(s.totals))
	for name, total := range s.totals {
		out[name] = total
	}
	return out, nil
}

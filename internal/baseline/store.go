package baseline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store reads and writes run records under <root>/<machine_id>/. Each
// benchmark gets its own directory named "<module>_<name>" holding one
// JSON file per run, named by timestamp.
type Store struct {
	root      string
	machineID string
}

// NewStore returns a Store rooted at root for the given machine. The
// directory tree is created lazily on first save.
func NewStore(root, machineID string) *Store {
	return &Store{root: root, machineID: machineID}
}

// Root returns the store's root directory.
func (s *Store) Root() string { return s.root }

// MachineID returns the machine the store reads and writes for.
func (s *Store) MachineID() string { return s.machineID }

func (s *Store) machineDir() string {
	return filepath.Join(s.root, s.machineID)
}

func (s *Store) benchDir(key string) string {
	return filepath.Join(s.machineDir(), key)
}

// legacyPath is the pre-directory layout: one JSON file per benchmark,
// holding only its most recent run. Still readable, never written.
func (s *Store) legacyPath(key string) string {
	return filepath.Join(s.machineDir(), key+".json")
}

// Save appends one record. The write goes to a temp file first and is
// renamed into place so a crash never leaves a half-written record behind.
func (s *Store) Save(rec RunRecord) error {
	dir := s.benchDir(rec.Key())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}

	path := filepath.Join(dir, rec.FileStamp()+".json")
	tmp, err := os.CreateTemp(dir, ".run-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write run record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to store run record: %w", err)
	}
	return nil
}

// ListRuns returns the timestamps of every stored run for the benchmark,
// oldest first. Timestamps are the filename stamps, not parsed times.
func (s *Store) ListRuns(key string) ([]string, error) {
	entries, err := os.ReadDir(s.benchDir(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list runs for %s: %w", key, err)
	}

	var stamps []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, ".") {
			continue
		}
		stamps = append(stamps, strings.TrimSuffix(name, ".json"))
	}
	// Filenames use a lexicographically sortable layout.
	sort.Strings(stamps)
	return stamps, nil
}

// LoadRun reads the record stored under the given timestamp stamp.
func (s *Store) LoadRun(key, stamp string) (*RunRecord, error) {
	return s.readRecord(filepath.Join(s.benchDir(key), stamp+".json"))
}

// LoadLatest returns the most recent record for the benchmark, regardless
// of its regression flag, or nil when none exists. Falls back to the legacy
// single-file layout.
func (s *Store) LoadLatest(key string) (*RunRecord, error) {
	stamps, err := s.ListRuns(key)
	if err != nil {
		return nil, err
	}
	if len(stamps) == 0 {
		return s.loadLegacy(key)
	}
	return s.LoadRun(key, stamps[len(stamps)-1])
}

// LoadRecent returns up to limit records for the benchmark, oldest first,
// skipping runs that were flagged as regressions so a bad commit does not
// poison the comparison window. Unreadable individual records are skipped.
func (s *Store) LoadRecent(key string, limit int) ([]RunRecord, error) {
	stamps, err := s.ListRuns(key)
	if err != nil {
		return nil, err
	}

	var recs []RunRecord
	for i := len(stamps) - 1; i >= 0 && len(recs) < limit; i-- {
		rec, err := s.LoadRun(key, stamps[i])
		if err != nil || rec == nil || rec.WasRegression {
			continue
		}
		recs = append(recs, *rec)
	}

	// The legacy single-file record only stands in when no per-run records
	// exist at all; an all-regression window must not resurrect a stale
	// pre-migration baseline.
	if len(stamps) == 0 {
		if rec, err := s.loadLegacy(key); err == nil && rec != nil && !rec.WasRegression {
			recs = append(recs, *rec)
		}
	}

	// Collected newest first, callers want chronological order.
	for i, j := 0, len(recs)-1; i < j; i, j = i+1, j-1 {
		recs[i], recs[j] = recs[j], recs[i]
	}
	return recs, nil
}

// HasBaseline reports whether any run is stored for the benchmark.
func (s *Store) HasBaseline(key string) bool {
	stamps, err := s.ListRuns(key)
	if err == nil && len(stamps) > 0 {
		return true
	}
	_, err = os.Stat(s.legacyPath(key))
	return err == nil
}

// ListBenchmarks returns the keys of every benchmark with stored data for
// this machine, sorted.
func (s *Store) ListBenchmarks() ([]string, error) {
	entries, err := os.ReadDir(s.machineDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list benchmarks: %w", err)
	}

	seen := make(map[string]bool)
	for _, e := range entries {
		name := e.Name()
		switch {
		case e.IsDir():
			seen[name] = true
		case strings.HasSuffix(name, ".json") && !strings.HasPrefix(name, "."):
			seen[strings.TrimSuffix(name, ".json")] = true
		}
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Clean removes all stored runs for this machine. Other machines' records
// are left untouched.
func (s *Store) Clean() error {
	if err := os.RemoveAll(s.machineDir()); err != nil {
		return fmt.Errorf("failed to clean store: %w", err)
	}
	return nil
}

func (s *Store) loadLegacy(key string) (*RunRecord, error) {
	rec, err := s.readRecord(s.legacyPath(key))
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Store) readRecord(path string) (*RunRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read run record %s: %w", path, err)
	}
	var rec RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run record %s: %w", path, err)
	}
	return &rec, nil
}

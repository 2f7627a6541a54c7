package overrides

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	sonic "github.com/bytedance/sonic"

	"github.com/fplkit/planner/internal/domain/fdr"
)

// fileEntry matches the persisted shape: team display name keys mapping to
// single-letter venue fields, e.g. {"Arsenal": {"H": 5, "A": 4}}.
type fileEntry struct {
	Home int `json:"H"`
	Away int `json:"A"`
}

// FileStore persists the custom difficulty override table as a JSON file.
// Reads clamp every value into [1,5]; writes are atomic via a temp file
// rename. Safe for concurrent use.
type FileStore struct {
	mu   sync.RWMutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the override table. A missing file is an empty table, not an
// error.
func (s *FileStore) Load(_ context.Context) (fdr.OverrideTable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fdr.OverrideTable{}, nil
		}
		return nil, fmt.Errorf("read override file %s: %w", s.path, err)
	}

	entries := make(map[string]fileEntry)
	if err := sonic.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode override file %s: %w", s.path, err)
	}

	table := make(fdr.OverrideTable, len(entries))
	for name, e := range entries {
		table[name] = fdr.Override{Home: e.Home, Away: e.Away}.Clamped()
	}
	return table, nil
}

// Save replaces the persisted table.
func (s *FileStore) Save(_ context.Context, table fdr.OverrideTable) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make(map[string]fileEntry, len(table))
	for name, o := range table {
		clamped := o.Clamped()
		entries[name] = fileEntry{Home: clamped.Home, Away: clamped.Away}
	}

	raw, err := sonic.MarshalIndent(entries, "", "    ")
	if err != nil {
		return fmt.Errorf("encode override table: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create override dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".custom_fdr-*.json")
	if err != nil {
		return fmt.Errorf("create override temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write override temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close override temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace override file %s: %w", s.path, err)
	}
	return nil
}

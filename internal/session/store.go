// Package session persists per-instance policy state between runs so an
// interrupted task can resume with its phase and counters intact.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ChamsBouzaiene/sweguard/internal/engine"
)

// Record is what the store writes for one instance.
type Record struct {
	InstanceID string          `json:"instance_id"`
	UpdatedAt  time.Time       `json:"updated_at"`
	State      engine.Snapshot `json:"state"`
}

// Store persists policy snapshots as one JSON file per instance.
type Store struct {
	basePath string
}

// NewStore creates a store rooted at basePath (typically ~/.sweguard).
func NewStore(basePath string) *Store {
	return &Store{basePath: filepath.Join(basePath, "instances")}
}

// fileFor sanitises the instance ID into a file name.
func (s *Store) fileFor(instanceID string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		}
		return '_'
	}, instanceID)
	return filepath.Join(s.basePath, name+".json")
}

// Save persists a snapshot for an instance.
func (s *Store) Save(instanceID string, snap engine.Snapshot) error {
	if err := os.MkdirAll(s.basePath, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	rec := Record{
		InstanceID: instanceID,
		UpdatedAt:  time.Now().UTC(),
		State:      snap,
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.WriteFile(s.fileFor(instanceID), data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	return nil
}

// Load retrieves the snapshot for an instance. A missing file yields a zero
// snapshot and found=false, not an error: a fresh task is the normal case.
func (s *Store) Load(instanceID string) (engine.Snapshot, bool, error) {
	data, err := os.ReadFile(s.fileFor(instanceID))
	if err != nil {
		if os.IsNotExist(err) {
			return engine.Snapshot{}, false, nil
		}
		return engine.Snapshot{}, false, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return engine.Snapshot{}, false, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return rec.State, true, nil
}

// Delete removes an instance's snapshot. Deleting a missing snapshot is not
// an error.
func (s *Store) Delete(instanceID string) error {
	err := os.Remove(s.fileFor(instanceID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete snapshot file: %w", err)
	}
	return nil
}

// List returns the stored instance IDs, newest first.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read store directory: %w", err)
	}

	type stamped struct {
		id string
		at time.Time
	}
	var records []stamped
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.basePath, e.Name()))
		if err != nil {
			continue
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		records = append(records, stamped{id: rec.InstanceID, at: rec.UpdatedAt})
	}

	sort.Slice(records, func(i, j int) bool { return records[i].at.After(records[j].at) })
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.id
	}
	return ids, nil
}

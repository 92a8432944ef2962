package split

import (
	"encoding/json"
	"os"
	"time"
)

// ManifestName is the file written next to the batch files after a clean run.
const ManifestName = "manifest.json"

// Manifest records what a split run produced, so downstream loaders and
// lk-verify can check the batches without rescanning the source dump.
type Manifest struct {
	RunID             string      `json:"run_id"`
	Input             string      `json:"input"`
	Started           time.Time   `json:"started"`
	Finished          time.Time   `json:"finished"`
	MaxEntriesPerFile int         `json:"max_entries_per_file"`
	TotalEntries      int64       `json:"total_entries"`
	Files             []FileEntry `json:"files"`
}

// WriteManifest writes m as indented JSON to path.
func WriteManifest(path string, m *Manifest) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0644)
}

// ReadManifest reads a manifest written by a previous run.
func ReadManifest(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

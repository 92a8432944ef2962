package split

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestManifestRoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), ManifestName)
	m := &Manifest{
		RunID:             "0d9c2f6a-9a44-4a58-a7f8-2f8b6f0c4a11",
		Input:             "extracted_data.json",
		Started:           time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		Finished:          time.Date(2026, 8, 1, 11, 30, 0, 0, time.UTC),
		MaxEntriesPerFile: 500000,
		TotalEntries:      1234567,
		Files: []FileEntry{
			{Name: "extracted_data_001.json", Entries: 500000, Bytes: 1 << 30, Checksum: "00000000deadbeef"},
			{Name: "extracted_data_002.json", Entries: 500000, Bytes: 1 << 30, Checksum: "00000000cafebabe"},
			{Name: "extracted_data_003.json", Entries: 234567, Bytes: 1 << 28, Checksum: "0000000012345678"},
		},
	}
	if err := WriteManifest(p, m); err != nil {
		t.Fatal(err)
	}
	got, err := ReadManifest(p)
	if err != nil {
		t.Fatal(err)
	}
	if got.RunID != m.RunID {
		t.Fatalf("run id: got %v, want %v", got.RunID, m.RunID)
	}
	if got.TotalEntries != m.TotalEntries {
		t.Fatalf("total entries: got %v, want %v", got.TotalEntries, m.TotalEntries)
	}
	if len(got.Files) != 3 {
		t.Fatalf("got %d files, want 3", len(got.Files))
	}
	if got.Files[2] != m.Files[2] {
		t.Fatalf("file entry: got %+v, want %+v", got.Files[2], m.Files[2])
	}
	if !got.Started.Equal(m.Started) {
		t.Fatalf("started: got %v, want %v", got.Started, m.Started)
	}
}

func TestReadManifestMissing(t *testing.T) {
	_, err := ReadManifest(filepath.Join(t.TempDir(), ManifestName))
	if !os.IsNotExist(err) {
		t.Fatalf("got %v, want not-exist", err)
	}
}

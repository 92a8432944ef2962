package split

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"

	"github.com/cespare/xxhash/v2"

	"github.com/openlit/litkit/fileio"
)

// FileEntry describes one finalized batch file for the run manifest.
type FileEntry struct {
	Name     string `json:"name"`
	Entries  int    `json:"entries"`
	Bytes    int64  `json:"bytes"`    // uncompressed content size
	Checksum string `json:"checksum"` // xxhash64 of the uncompressed content, hex
}

// batchWriter writes entries into sequentially numbered batch files and
// rotates when the per-file cap is reached. Files are opened lazily, so an
// input that divides evenly into whole batches leaves no empty trailing
// file. The checksum covers the JSON content before any output compression,
// which keeps it comparable across compression settings.
type batchWriter struct {
	dir        string
	prefix     string
	ext        string // ".json", ".json.zst", ...
	maxEntries int

	f    io.WriteCloser
	bw   *bufio.Writer
	hash *xxhash.Digest

	fileIndex   int // 1-based index of the current (or last) file
	fileEntries int
	fileBytes   int64
	total       int64
	files       []FileEntry

	onFile func(FileEntry) // invoked for every finalized file, may be nil
}

func newBatchWriter(dir, prefix, ext string, maxEntries int) *batchWriter {
	return &batchWriter{
		dir:        dir,
		prefix:     prefix,
		ext:        ext,
		maxEntries: maxEntries,
	}
}

func (w *batchWriter) filename(index int) string {
	return fmt.Sprintf("%s_%03d%s", w.prefix, index, w.ext)
}

// currentIndex returns the file index to report in progress output.
func (w *batchWriter) currentIndex() int {
	if w.fileIndex == 0 {
		return 1
	}
	return w.fileIndex
}

func (w *batchWriter) openNext() error {
	w.fileIndex++
	name := w.filename(w.fileIndex)
	f, err := fileio.CreateWriter(filepath.Join(w.dir, name))
	if err != nil {
		return fmt.Errorf("create batch file: %w", err)
	}
	w.f = f
	w.hash = xxhash.New()
	w.bw = bufio.NewWriter(io.MultiWriter(f, w.hash))
	w.fileEntries = 0
	w.fileBytes = 0
	return w.writeString("{\n")
}

func (w *batchWriter) writeString(s string) error {
	n, err := w.bw.WriteString(s)
	w.fileBytes += int64(n)
	return err
}

// WriteEntry appends one entry to the current batch file, opening and
// rotating files as needed. The entry bytes are written verbatim.
func (w *batchWriter) WriteEntry(entry []byte) error {
	if w.f == nil {
		if err := w.openNext(); err != nil {
			return err
		}
	}
	if w.fileEntries > 0 {
		if err := w.writeString(",\n"); err != nil {
			return err
		}
	}
	n, err := w.bw.Write(entry)
	w.fileBytes += int64(n)
	if err != nil {
		return err
	}
	w.fileEntries++
	w.total++
	if w.fileEntries >= w.maxEntries {
		return w.finalize()
	}
	return nil
}

// finalize closes the current batch file with its terminating brace and
// records it. A file is only valid JSON once finalize ran; an aborted run
// leaves the last file detectably unterminated.
func (w *batchWriter) finalize() error {
	if err := w.writeString("\n}"); err != nil {
		return err
	}
	if err := w.bw.Flush(); err != nil {
		return err
	}
	if err := w.f.Close(); err != nil {
		return err
	}
	fe := FileEntry{
		Name:     w.filename(w.fileIndex),
		Entries:  w.fileEntries,
		Bytes:    w.fileBytes,
		Checksum: fmt.Sprintf("%016x", w.hash.Sum64()),
	}
	w.files = append(w.files, fe)
	if w.onFile != nil {
		w.onFile(fe)
	}
	w.f = nil
	w.bw = nil
	w.hash = nil
	return nil
}

// Close finalizes the open batch file, if any. An input with zero entries
// still produces a single file holding an empty object, so downstream tools
// always find at least one parseable batch.
func (w *batchWriter) Close() error {
	if w.f == nil && w.fileIndex == 0 {
		if err := w.openNext(); err != nil {
			return err
		}
	}
	if w.f == nil {
		return nil
	}
	return w.finalize()
}

// abort flushes and closes the raw handle without the terminating brace.
// Used on scan errors: the partial file stays behind as detectably invalid
// JSON instead of masquerading as a complete batch.
func (w *batchWriter) abort() {
	if w.f == nil {
		return
	}
	w.bw.Flush()
	w.f.Close()
	w.f = nil
	w.bw = nil
	w.hash = nil
}

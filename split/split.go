package split

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/openlit/litkit/fileio"
)

const (
	// DefaultMaxEntriesPerFile matches the batch size the downstream
	// database loader expects.
	DefaultMaxEntriesPerFile = 500000
	// DefaultMaxEntrySize is the hard cap for a single entry, 64MB.
	DefaultMaxEntrySize = 1 << 26

	defaultBufferSize = 1 << 16
)

// Options configures a split run.
type Options struct {
	InputFile         string // file path or http(s) URL
	OutputDir         string // created if missing
	Prefix            string // batch file name prefix, derived from InputFile if empty
	MaxEntriesPerFile int
	Compression       string // "", "gz", "zst" or "lz4" for batch output
	MaxEntrySize      int
	Verbose           bool
	ProgressWriter    io.Writer // defaults to os.Stdout
}

// DefaultOptions returns the conventional working-directory setup.
func DefaultOptions() Options {
	return Options{
		InputFile:         "extracted_data.json",
		OutputDir:         "extracted_batches",
		MaxEntriesPerFile: DefaultMaxEntriesPerFile,
		MaxEntrySize:      DefaultMaxEntrySize,
	}
}

// Result summarizes a completed split run.
type Result struct {
	RunID        string
	TotalEntries int64
	Files        []FileEntry
	Elapsed      time.Duration
	ManifestPath string
}

// Split reads the input, re-chunks its top-level entries into batch files
// under OutputDir and writes a run manifest next to them. The input must be
// openable, otherwise the operation fails before any write happens. On a
// scan error (truncated input, oversized entry) the current batch file is
// left unterminated and no manifest is written.
func Split(opts Options) (*Result, error) {
	src, err := fileio.Open(opts.InputFile)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer src.Close()
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return splitSource(src, opts)
}

func splitSource(src *fileio.Source, opts Options) (*Result, error) {
	if opts.MaxEntriesPerFile <= 0 {
		opts.MaxEntriesPerFile = DefaultMaxEntriesPerFile
	}
	if opts.Prefix == "" {
		opts.Prefix = derivePrefix(opts.InputFile)
	}
	var (
		started = time.Now()
		ext     = ".json" + fileio.CompressExt(opts.Compression)
		bw      = newBatchWriter(opts.OutputDir, opts.Prefix, ext, opts.MaxEntriesPerFile)
		prog    = newProgress(opts.progressWriter(), src.Size, opts.Verbose)
		scanner = NewEntryScanner(src, opts.MaxEntrySize)
	)
	bw.onFile = prog.fileDone
	for scanner.Scan() {
		entry := scanner.Bytes()
		if len(entry) == 0 {
			continue
		}
		if err := bw.WriteEntry(entry); err != nil {
			bw.abort()
			return nil, fmt.Errorf("write entry: %w", err)
		}
		prog.update(src.BytesRead(), bw.total, bw.currentIndex())
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			err = ErrEntryTooLarge
		}
		bw.abort()
		return nil, fmt.Errorf("scan: %w", err)
	}
	if err := bw.Close(); err != nil {
		return nil, fmt.Errorf("finalize batch: %w", err)
	}
	res := &Result{
		RunID:        uuid.New().String(),
		TotalEntries: bw.total,
		Files:        bw.files,
		Elapsed:      time.Since(started),
	}
	m := &Manifest{
		RunID:             res.RunID,
		Input:             opts.InputFile,
		Started:           started,
		Finished:          time.Now(),
		MaxEntriesPerFile: opts.MaxEntriesPerFile,
		TotalEntries:      res.TotalEntries,
		Files:             res.Files,
	}
	res.ManifestPath = filepath.Join(opts.OutputDir, ManifestName)
	if err := WriteManifest(res.ManifestPath, m); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	prog.done(res.TotalEntries, len(res.Files))
	return res, nil
}

func (o Options) progressWriter() io.Writer {
	if o.ProgressWriter != nil {
		return o.ProgressWriter
	}
	return os.Stdout
}

// derivePrefix turns an input name into a batch file prefix, e.g.
// "dumps/extracted_data.json.zst" becomes "extracted_data".
func derivePrefix(name string) string {
	base := filepath.Base(name)
	if i := strings.IndexAny(base, "?#"); i >= 0 {
		base = base[:i]
	}
	for _, ext := range []string{".gz", ".zst", ".lz4"} {
		base = strings.TrimSuffix(base, ext)
	}
	base = strings.TrimSuffix(base, ".json")
	if base == "" || base == "." {
		base = "extracted_data"
	}
	return base
}

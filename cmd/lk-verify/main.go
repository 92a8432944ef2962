// lk-verify checks a directory of batch files produced by lk-split: every
// file must parse as a single JSON object, and when a manifest.json is
// present, entry counts and content checksums must match it. Entry values
// are never interpreted.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/segmentio/encoding/json"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/openlit/litkit"
	"github.com/openlit/litkit/fileio"
	"github.com/openlit/litkit/split"
)

var docs = strings.TrimLeft(`
# lk-verify - verify batch files against their manifest

  $ lk-verify -d extracted_batches

Without a manifest.json the files are only checked for syntactic validity.
Exit code is non-zero if any file fails.

## flags

`, "\n")

var (
	dir         = flag.String("d", "extracted_batches", "directory containing batch files and manifest.json")
	numWorkers  = flag.Int("w", runtime.NumCPU(), "number of workers")
	verbose     = flag.Bool("v", false, "log every file checked")
	showVersion = flag.Bool("version", false, "show version")
)

// check is one batch file to verify, with the manifest expectation if known.
type check struct {
	path string
	want *split.FileEntry
}

type result struct {
	name    string
	entries int
	err     error
}

func main() {
	flag.Usage = func() {
		io.WriteString(os.Stderr, docs)
		flag.PrintDefaults()
	}
	flag.Parse()
	if *showVersion {
		fmt.Println(litkit.Version)
		os.Exit(0)
	}
	checks, manifest, err := collectChecks(*dir)
	if err != nil {
		log.Fatal(err)
	}
	if len(checks) == 0 {
		log.Fatalf("no batch files found in %s", *dir)
	}
	results := make(chan result, len(checks))
	workChan := make(chan check)
	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		defer close(workChan)
		for _, c := range checks {
			select {
			case workChan <- c:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
	for i := 0; i < *numWorkers; i++ {
		g.Go(func() error {
			for c := range workChan {
				entries, err := verifyFile(c)
				results <- result{name: filepath.Base(c.path), entries: entries, err: err}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
	close(results)
	var (
		failed int
		total  int64
	)
	for r := range results {
		if r.err != nil {
			failed++
			log.Errorf("%s: %v", r.name, r.err)
			continue
		}
		total += int64(r.entries)
		if *verbose {
			log.Printf("%s ok (%d entries)", r.name, r.entries)
		}
	}
	if manifest != nil && total != manifest.TotalEntries {
		failed++
		log.Errorf("total entries: got %d, manifest says %d", total, manifest.TotalEntries)
	}
	if failed > 0 {
		log.Fatalf("%d of %d files failed verification", failed, len(checks))
	}
	log.Printf("verified %d files, %d entries", len(checks), total)
}

// collectChecks pairs the batch files in dir with manifest expectations. If
// no manifest exists, all numbered json files in dir are checked standalone.
func collectChecks(dir string) ([]check, *split.Manifest, error) {
	manifest, err := split.ReadManifest(filepath.Join(dir, split.ManifestName))
	if err == nil {
		var checks []check
		for i := range manifest.Files {
			fe := &manifest.Files[i]
			checks = append(checks, check{path: filepath.Join(dir, fe.Name), want: fe})
		}
		return checks, manifest, nil
	}
	if !os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("read manifest: %w", err)
	}
	var checks []check
	for _, pattern := range []string{"*_[0-9][0-9][0-9].json", "*_[0-9][0-9][0-9].json.*"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, nil, err
		}
		for _, m := range matches {
			checks = append(checks, check{path: m})
		}
	}
	sort.Slice(checks, func(i, j int) bool { return checks[i].path < checks[j].path })
	return checks, nil, nil
}

// verifyFile parses one batch file and compares it against the manifest
// expectation, if any. Returns the number of top-level entries.
func verifyFile(c check) (int, error) {
	src, err := fileio.Open(c.path)
	if err != nil {
		return 0, err
	}
	defer src.Close()
	b, err := io.ReadAll(src)
	if err != nil {
		return 0, err
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(b, &entries); err != nil {
		return 0, fmt.Errorf("not a valid JSON object: %w", err)
	}
	if c.want == nil {
		return len(entries), nil
	}
	if len(entries) != c.want.Entries {
		return len(entries), fmt.Errorf("entry count: got %d, want %d", len(entries), c.want.Entries)
	}
	if int64(len(b)) != c.want.Bytes {
		return len(entries), fmt.Errorf("content size: got %d, want %d", len(b), c.want.Bytes)
	}
	if sum := fmt.Sprintf("%016x", xxhash.Sum64(b)); sum != c.want.Checksum {
		return len(entries), fmt.Errorf("checksum: got %s, want %s", sum, c.want.Checksum)
	}
	return len(entries), nil
}

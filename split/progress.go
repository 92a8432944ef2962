package split

import (
	"fmt"
	"io"
)

// progress renders a single continuously overwritten status line, throttled
// to once per percent (or once per 32MB when the source size is unknown),
// plus one persisted line per finalized batch file and a final summary.
// Purely observational, never part of the functional contract.
type progress struct {
	w       io.Writer
	size    int64
	enabled bool
	last    int64 // last percent, or last 32MB step
	dirty   bool  // a transient line is on screen
}

func newProgress(w io.Writer, size int64, enabled bool) *progress {
	return &progress{w: w, size: size, enabled: enabled, last: -1}
}

func (p *progress) update(consumed, entries int64, fileIndex int) {
	if !p.enabled {
		return
	}
	if p.size > 0 {
		percent := consumed * 100 / p.size
		if percent == p.last {
			return
		}
		p.last = percent
		fmt.Fprintf(p.w, "\rprogress: %3d%% | entries: %d | file: %d   ", percent, entries, fileIndex)
	} else {
		step := consumed >> 25
		if step == p.last {
			return
		}
		p.last = step
		fmt.Fprintf(p.w, "\rprogress: %dM | entries: %d | file: %d   ", consumed>>20, entries, fileIndex)
	}
	p.dirty = true
}

func (p *progress) fileDone(fe FileEntry) {
	if !p.enabled {
		return
	}
	p.newline()
	fmt.Fprintf(p.w, "wrote %s (%d entries)\n", fe.Name, fe.Entries)
}

func (p *progress) done(entries int64, files int) {
	if !p.enabled {
		return
	}
	p.newline()
	fmt.Fprintf(p.w, "done: %d entries in %d files\n", entries, files)
}

func (p *progress) newline() {
	if p.dirty {
		fmt.Fprintln(p.w)
		p.dirty = false
	}
}

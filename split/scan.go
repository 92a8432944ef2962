// Package split turns one very large JSON object into a sequence of bounded,
// syntactically valid batch files, without loading the input into memory.
//
// The input is expected to be a single top-level mapping, the way Wikidata
// property extractions come out: {"Q42": {...}, "Q84": {...}, ...}. Each
// top-level key/value pair is one entry; entries are copied byte-for-byte
// into numbered output files, up to a configurable number of entries per
// file, each file wrapped in its own enclosing braces.
package split

import (
	"bufio"
	"errors"
	"io"
)

var (
	// ErrNoObject is returned when the input contains no top-level object.
	ErrNoObject = errors.New("no top-level object found")
	// ErrTruncated is returned when the input ends before the top-level
	// object is closed. Entries flushed before that point stay on disk.
	ErrTruncated = errors.New("input ended before top-level object closed")
	// ErrEntryTooLarge is returned when a single entry exceeds the
	// configured hard cap.
	ErrEntryTooLarge = errors.New("entry exceeds maximum size")
)

// entryScanner holds the scan state for boundary detection: brace depth,
// string mode, a pending-escape flag and the window offsets. Depth 1 means
// inside the outer object but outside any entry value; an entry is complete
// when a closing brace brings the depth back to 1. Braces and quotes inside
// string literals never touch the depth, escaped characters are passed
// through verbatim.
type entryScanner struct {
	started    bool // seen the opening brace of the outer object
	depth      int
	inString   bool
	escapeNext bool
	scanned    int // bytes of the current window already classified
	entryStart int // window offset of the current entry, -1 between entries
}

// EntrySplitter returns a bufio.SplitFunc that tokenizes a top-level JSON
// object into its entries. Each token is exactly the `"key": {...}` byte
// range from the source, starting at the key's opening quote; inter-entry
// commas and whitespace are consumed silently. Bytes before the first
// opening brace (stray whitespace, a BOM) are skipped, bytes after the outer
// object closes are ignored. Malformed input is not diagnosed beyond
// ErrNoObject and ErrTruncated; garbage in, garbage out.
func EntrySplitter() bufio.SplitFunc {
	s := &entryScanner{entryStart: -1}
	return s.split
}

func (s *entryScanner) split(data []byte, atEOF bool) (advance int, token []byte, err error) {
	for ; s.scanned < len(data); s.scanned++ {
		c := data[s.scanned]
		if !s.started {
			if c == '{' {
				s.started = true
				s.depth = 1
			}
			continue
		}
		switch {
		case s.escapeNext:
			s.escapeNext = false
		case c == '\\' && s.inString:
			s.escapeNext = true
		case c == '"':
			if !s.inString && s.depth == 1 && s.entryStart == -1 {
				// a key quote at depth 1 starts the next entry
				s.entryStart = s.scanned
			}
			s.inString = !s.inString
		case s.inString:
			// structural characters inside strings are just content
		case c == '{':
			s.depth++
		case c == '}':
			s.depth--
			switch {
			case s.depth == 1 && s.entryStart >= 0:
				token = data[s.entryStart : s.scanned+1]
				advance = s.scanned + 1
				s.entryStart = -1
				s.scanned = 0
				return advance, token, nil
			case s.depth == 0:
				// outer object closed, stop scanning
				advance = s.scanned + 1
				s.scanned = 0
				return advance, nil, bufio.ErrFinalToken
			}
		}
	}
	if atEOF {
		if !s.started {
			return 0, nil, ErrNoObject
		}
		return 0, nil, ErrTruncated
	}
	if s.entryStart == -1 {
		// nothing worth keeping in the window, let the scanner discard it
		advance, s.scanned = s.scanned, 0
		return advance, nil, nil
	}
	// mid-entry, request more data; offsets stay valid because the scanner
	// grows its buffer in place
	return 0, nil, nil
}

// NewEntryScanner wraps r in a bufio.Scanner configured for entry splitting.
// maxEntrySize is the hard cap for a single entry; values <= 0 fall back to
// DefaultMaxEntrySize.
func NewEntryScanner(r io.Reader, maxEntrySize int) *bufio.Scanner {
	if maxEntrySize <= 0 {
		maxEntrySize = DefaultMaxEntrySize
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, defaultBufferSize), maxEntrySize)
	scanner.Split(EntrySplitter())
	return scanner
}

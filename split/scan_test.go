package split

import (
	"bufio"
	"errors"
	"reflect"
	"strings"
	"testing"
	"testing/iotest"
)

func scanAll(t *testing.T, input string, bufSize, maxSize int) ([]string, error) {
	t.Helper()
	scanner := bufio.NewScanner(strings.NewReader(input))
	scanner.Buffer(make([]byte, 0, bufSize), maxSize)
	scanner.Split(EntrySplitter())
	var tokens []string
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		tokens = append(tokens, scanner.Text())
	}
	return tokens, scanner.Err()
}

func TestEntrySplitter(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr error
	}{
		{
			name:  "two entries",
			input: `{"a": {"x": 1}, "b": {"y": 2}}`,
			want:  []string{`"a": {"x": 1}`, `"b": {"y": 2}`},
		},
		{
			name:  "single entry",
			input: `{"Q42": {"label": "Douglas Adams"}}`,
			want:  []string{`"Q42": {"label": "Douglas Adams"}`},
		},
		{
			name:  "braces and quotes inside strings",
			input: `{"k1": {"title": "A {fake} brace and a \"quote\""}}`,
			want:  []string{`"k1": {"title": "A {fake} brace and a \"quote\""}`},
		},
		{
			name:  "escaped backslash before closing quote",
			input: `{"k": {"v": "x\\"}, "l": {}}`,
			want:  []string{`"k": {"v": "x\\"}`, `"l": {}`},
		},
		{
			name:  "nested objects",
			input: `{"a": {"b": {"c": {"d": {}}}}, "e": {"f": {}}}`,
			want:  []string{`"a": {"b": {"c": {"d": {}}}}`, `"e": {"f": {}}`},
		},
		{
			name:  "pretty printed",
			input: "{\n  \"Q1\": {\n    \"x\": 1\n  },\n  \"Q2\": {}\n}",
			want:  []string{"\"Q1\": {\n    \"x\": 1\n  }", "\"Q2\": {}"},
		},
		{
			name:  "multibyte and percent encoded content",
			input: `{"café": {"страница": "中文 🎭", "url": "https://example.org/%C3%A9t%C3%A9"}}`,
			want:  []string{`"café": {"страница": "中文 🎭", "url": "https://example.org/%C3%A9t%C3%A9"}`},
		},
		{
			name:  "leading bom and whitespace",
			input: "\uFEFF \n\t" + `{"a": {}}`,
			want:  []string{`"a": {}`},
		},
		{
			name:  "trailing bytes after outer close ignored",
			input: `{"a": {}}` + "\nleftover garbage",
			want:  []string{`"a": {}`},
		},
		{
			name:  "empty outer object",
			input: `{}`,
			want:  nil,
		},
		{
			name:    "no object at all",
			input:   "  \n ",
			wantErr: ErrNoObject,
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: ErrNoObject,
		},
		{
			name:    "truncated after complete entry",
			input:   `{"a": {"x": 1}`,
			want:    []string{`"a": {"x": 1}`},
			wantErr: ErrTruncated,
		},
		{
			name:    "truncated mid entry",
			input:   `{"a": {"x"`,
			wantErr: ErrTruncated,
		},
		{
			name:    "truncated inside string",
			input:   `{"a": {"x": "unterminated`,
			wantErr: ErrTruncated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scanAll(t, tt.input, 1<<16, 1<<20)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("tokens = %q, want %q", got, tt.want)
			}
		})
	}
}

// A tiny initial buffer forces the scanner through its refill and grow
// paths, so window offsets must survive partial reads.
func TestEntrySplitterSmallBuffer(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("{\n")
	for i := 0; i < 50; i++ {
		if i > 0 {
			sb.WriteString(",\n")
		}
		sb.WriteString(`  "Q`)
		sb.WriteString(strings.Repeat("9", i%7+1))
		sb.WriteString(`": {"text": "padding {not a brace} and \"quotes\" inside"}`)
	}
	sb.WriteString("\n}")
	got, err := scanAll(t, sb.String(), 16, 1<<20)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(got) != 50 {
		t.Fatalf("got %d entries, want 50", len(got))
	}
	for _, tok := range got {
		if !strings.HasPrefix(tok, `"Q`) || !strings.HasSuffix(tok, "}") {
			t.Fatalf("malformed token: %q", tok)
		}
	}
}

// One-byte reads make every window boundary a refill, including ones that
// land mid-escape, mid-string and between the BOM and the opening brace.
func TestEntrySplitterOneByteReads(t *testing.T) {
	input := "\uFEFF" + `{"k1": {"title": "A {fake} brace and a \"quote\""}, "k2": {"v": "x\\"}}`
	want := []string{`"k1": {"title": "A {fake} brace and a \"quote\""}`, `"k2": {"v": "x\\"}`}
	scanner := bufio.NewScanner(iotest.OneByteReader(strings.NewReader(input)))
	scanner.Buffer(make([]byte, 0, 16), 1<<20)
	scanner.Split(EntrySplitter())
	var got []string
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		got = append(got, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("tokens = %q, want %q", got, want)
	}
}

func TestEntrySplitterTooLong(t *testing.T) {
	input := `{"a": {"v": "` + strings.Repeat("x", 256) + `"}}`
	_, err := scanAll(t, input, 16, 64)
	if !errors.Is(err, bufio.ErrTooLong) {
		t.Fatalf("err = %v, want bufio.ErrTooLong", err)
	}
}

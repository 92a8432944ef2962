// Package fileio opens and creates data files with transparent compression,
// keyed off the name suffix. Sources can be local files or http(s) URLs, so
// a remote dump can be split without a separate download step.
package fileio

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	gzip "github.com/klauspost/pgzip"
	"github.com/pierrec/lz4/v4"
	"github.com/sethgrid/pester"
)

// Source is a readable byte stream with progress accounting. Size and
// BytesRead refer to the raw underlying source (file or HTTP body), before
// decompression, so percent-done stays meaningful for compressed dumps.
type Source struct {
	r     io.Reader // decompressed stream
	raw   *countReader
	layer io.Closer // decompression layer, nil for plain sources
	base  io.Closer // underlying file or response body
	// Size of the underlying source in bytes, -1 if unknown.
	Size int64
}

func (s *Source) Read(p []byte) (int, error) { return s.r.Read(p) }

// BytesRead reports raw bytes consumed from the underlying source so far.
func (s *Source) BytesRead() int64 { return s.raw.n }

// Close releases the decompression layer, if any, and then the underlying
// handle. Zstd decoders hold worker goroutines until closed.
func (s *Source) Close() error {
	var err error
	if s.layer != nil {
		err = s.layer.Close()
	}
	if cerr := s.base.Close(); err == nil {
		err = cerr
	}
	return err
}

type countReader struct {
	r io.Reader
	n int64
}

func (c *countReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// Open opens a local file or an http(s) URL for reading, decompressing .gz,
// .zst and .lz4 suffixes transparently.
func Open(name string) (*Source, error) {
	if strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://") {
		return openURL(name)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	src, err := newSource(f, f, fi.Size(), name)
	if err != nil {
		f.Close()
		return nil, err
	}
	return src, nil
}

func openURL(name string) (*Source, error) {
	client := pester.New()
	client.Backoff = pester.ExponentialBackoff
	client.MaxRetries = 3
	client.RetryOnHTTP429 = true
	resp, err := client.Get(name)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: %s", name, resp.Status)
	}
	src, err := newSource(resp.Body, resp.Body, resp.ContentLength, name)
	if err != nil {
		resp.Body.Close()
		return nil, err
	}
	return src, nil
}

func newSource(r io.Reader, base io.Closer, size int64, name string) (*Source, error) {
	cr := &countReader{r: r}
	dr, layer, err := wrapReader(cr, name)
	if err != nil {
		return nil, err
	}
	return &Source{r: dr, raw: cr, layer: layer, base: base, Size: size}, nil
}

// wrapReader layers a decompressor over r when the name calls for one. The
// returned closer releases the layer's own resources, not the underlying
// reader; it is nil when the layer holds none.
func wrapReader(r io.Reader, name string) (io.Reader, io.Closer, error) {
	switch {
	case strings.HasSuffix(name, ".gz"):
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr, nil
	case strings.HasSuffix(name, ".zst"):
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		rc := zr.IOReadCloser()
		return rc, rc, nil
	case strings.HasSuffix(name, ".lz4"):
		return lz4.NewReader(r), nil, nil
	default:
		return r, nil, nil
	}
}

// CreateWriter creates a file for writing, compressing by suffix. The
// returned writer closes both the compression layer and the file.
func CreateWriter(name string) (io.WriteCloser, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	switch {
	case strings.HasSuffix(name, ".gz"):
		return &compositeWriteCloser{writer: gzip.NewWriter(f), file: f}, nil
	case strings.HasSuffix(name, ".zst"):
		zw, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &compositeWriteCloser{writer: zw, file: f}, nil
	case strings.HasSuffix(name, ".lz4"):
		return &compositeWriteCloser{writer: lz4.NewWriter(f), file: f}, nil
	default:
		return f, nil
	}
}

// CompressExt maps a compression name to the file suffix appended after
// ".json". Unknown names map to no suffix.
func CompressExt(compression string) string {
	switch compression {
	case "gz", "gzip":
		return ".gz"
	case "zst", "zstd":
		return ".zst"
	case "lz4":
		return ".lz4"
	default:
		return ""
	}
}

// compositeWriteCloser ensures both the compression writer and the
// underlying file are closed properly.
type compositeWriteCloser struct {
	writer io.WriteCloser
	file   *os.File
}

func (c *compositeWriteCloser) Write(p []byte) (n int, err error) {
	return c.writer.Write(p)
}

func (c *compositeWriteCloser) Close() error {
	if err := c.writer.Close(); err != nil {
		c.file.Close()
		return err
	}
	return c.file.Close()
}

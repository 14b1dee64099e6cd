// Package eio defines the reader and writer interfaces for record streams
// and dispatches to the per-format packages.
package eio

import (
	"context"
	"io"
	"path/filepath"

	"github.com/exhibitdata/exhibit"
)

// Reader wraps the Read method.
//
// Read returns the next record and a nil error, a nil record and the next
// error, or a nil record and nil error to indicate that no records remain.
type Reader interface {
	Read() (*exhibit.Record, error)
}

// Writer wraps the Write method.  Implementations must not retain rec.
type Writer interface {
	Write(rec *exhibit.Record) error
}

type ReadCloser interface {
	Reader
	io.Closer
}

type WriteCloser interface {
	Writer
	io.Closer
}

func Extension(format string) string {
	switch format {
	case "csv":
		return ".csv"
	case "json":
		return ".json"
	case "parquet":
		return ".parquet"
	default:
		return ""
	}
}

func FormatFromPath(path string) string {
	switch filepath.Ext(path) {
	case ".csv":
		return "csv"
	case ".json", ".jsonl", ".ndjson":
		return "json"
	case ".parquet":
		return "parquet"
	default:
		return ""
	}
}

// Copy copies src to dst a la io.Copy.
func Copy(dst Writer, src Reader) error {
	return CopyWithContext(context.Background(), dst, src)
}

func CopyWithContext(ctx context.Context, dst Writer, src Reader) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := src.Read()
		if err != nil || rec == nil {
			return err
		}
		if err := dst.Write(rec); err != nil {
			return err
		}
	}
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// NopCloser returns a WriteCloser with a no-op Close method wrapping the
// provided Writer w.
func NopCloser(w io.Writer) io.WriteCloser {
	return nopCloser{w}
}

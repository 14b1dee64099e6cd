// Package anyio routes reader and writer construction to the per-format
// packages so callers can select a format by name.
package anyio

import (
	"fmt"
	"io"

	"github.com/exhibitdata/exhibit"
	"github.com/exhibitdata/exhibit/eio"
	"github.com/exhibitdata/exhibit/eio/csvio"
	"github.com/exhibitdata/exhibit/eio/jsonio"
	"github.com/exhibitdata/exhibit/eio/parquetio"
)

func NewReader(r io.ReadCloser, schema *exhibit.Schema, format string) (eio.ReadCloser, error) {
	switch format {
	case "json", "":
		return readCloser{jsonio.NewReader(r, schema), r}, nil
	}
	return nil, fmt.Errorf("unknown input format: %q", format)
}

func NewWriter(w io.WriteCloser, schema *exhibit.Schema, format string) (eio.WriteCloser, error) {
	switch format {
	case "json", "":
		return jsonio.NewWriter(w), nil
	case "csv":
		return csvio.NewWriter(w, csvio.WriterOpts{}), nil
	case "parquet":
		return parquetio.NewWriter(w, schema)
	}
	return nil, fmt.Errorf("unknown output format: %q", format)
}

type readCloser struct {
	eio.Reader
	io.Closer
}

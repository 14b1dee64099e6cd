// Package csvio writes records as CSV with a header row.
package csvio

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/exhibitdata/exhibit"
)

type Writer struct {
	writer  io.WriteCloser
	encoder *csv.Writer
	header  bool
	strings []string
}

type WriterOpts struct {
	Delim    rune
	NoHeader bool
}

func NewWriter(w io.WriteCloser, opts WriterOpts) *Writer {
	encoder := csv.NewWriter(w)
	if opts.Delim != 0 {
		encoder.Comma = opts.Delim
	}
	return &Writer{
		writer:  w,
		encoder: encoder,
		header:  !opts.NoHeader,
	}
}

func (w *Writer) Close() error {
	w.encoder.Flush()
	if err := w.encoder.Error(); err != nil {
		w.writer.Close()
		return err
	}
	return w.writer.Close()
}

func (w *Writer) Write(rec *exhibit.Record) error {
	if w.header {
		w.header = false
		var hdr []string
		for _, f := range rec.Schema.Fields() {
			hdr = append(hdr, f.Name)
		}
		if err := w.encoder.Write(hdr); err != nil {
			return err
		}
	}
	w.strings = w.strings[:0]
	for i := range rec.Schema.Fields() {
		w.strings = append(w.strings, format(rec.At(i)))
	}
	return w.encoder.Write(w.strings)
}

func format(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		return v
	}
	panic("csvio: unsupported value type")
}

package jsonio

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"

	"github.com/exhibitdata/exhibit"
)

type Writer struct {
	io.Closer
	writer *bufio.Writer

	// json.Encoder instead of json.Marshal so HTML escaping can be
	// turned off.
	enc *json.Encoder
	buf bytes.Buffer
}

func NewWriter(w io.WriteCloser) *Writer {
	writer := &Writer{
		Closer: w,
		writer: bufio.NewWriter(w),
	}
	writer.enc = json.NewEncoder(&writer.buf)
	writer.enc.SetEscapeHTML(false)
	return writer
}

// Write emits the record as one JSON object per line with fields in schema
// order.  Null fields are written as JSON null.
func (w *Writer) Write(rec *exhibit.Record) error {
	w.writer.WriteByte('{')
	for i, f := range rec.Schema.Fields() {
		if i > 0 {
			w.writer.WriteByte(',')
		}
		w.writer.Write(w.marshal(f.Name))
		w.writer.WriteByte(':')
		w.writer.Write(w.marshal(rec.At(i)))
	}
	w.writer.WriteString("}\n")
	return w.writer.Flush()
}

func (w *Writer) marshal(v any) []byte {
	w.buf.Reset()
	if err := w.enc.Encode(v); err != nil {
		panic(err)
	}
	return bytes.TrimSpace(w.buf.Bytes())
}

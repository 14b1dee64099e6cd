// Package parquetio writes records to the Parquet columnar format using
// the Arrow library.  The whole output schema is known before the first
// record is written, so the Arrow schema is fixed at construction.
package parquetio

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/exhibitdata/exhibit"
)

// batchSize is the number of rows buffered into one Arrow record batch.
const batchSize = 8192

type Writer struct {
	wc      io.WriteCloser
	fw      *pqarrow.FileWriter
	builder *array.RecordBuilder
	rows    int
}

func NewWriter(wc io.WriteCloser, schema *exhibit.Schema) (*Writer, error) {
	arrowSchema, err := newArrowSchema(schema)
	if err != nil {
		return nil, err
	}
	fw, err := pqarrow.NewFileWriter(arrowSchema, wc, nil, pqarrow.DefaultWriterProps())
	if err != nil {
		return nil, err
	}
	return &Writer{
		wc:      wc,
		fw:      fw,
		builder: array.NewRecordBuilder(memory.DefaultAllocator, arrowSchema),
	}, nil
}

func newArrowSchema(schema *exhibit.Schema) (*arrow.Schema, error) {
	var fields []arrow.Field
	for _, f := range schema.Fields() {
		typ, err := arrowType(f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		fields = append(fields, arrow.Field{Name: f.Name, Type: typ, Nullable: true})
	}
	return arrow.NewSchema(fields, nil), nil
}

func arrowType(typ exhibit.Type) (arrow.DataType, error) {
	switch typ {
	case exhibit.TypeBool:
		return arrow.FixedWidthTypes.Boolean, nil
	case exhibit.TypeInt64:
		return arrow.PrimitiveTypes.Int64, nil
	case exhibit.TypeFloat64:
		return arrow.PrimitiveTypes.Float64, nil
	case exhibit.TypeString:
		return arrow.BinaryTypes.String, nil
	}
	return nil, fmt.Errorf("unsupported type: %s", typ)
}

func (w *Writer) Write(rec *exhibit.Record) error {
	for i := range rec.Schema.Fields() {
		v := rec.At(i)
		if v == nil {
			w.builder.Field(i).AppendNull()
			continue
		}
		switch b := w.builder.Field(i).(type) {
		case *array.BooleanBuilder:
			b.Append(v.(bool))
		case *array.Int64Builder:
			b.Append(v.(int64))
		case *array.Float64Builder:
			b.Append(v.(float64))
		case *array.StringBuilder:
			b.Append(v.(string))
		default:
			return fmt.Errorf("parquetio: unsupported builder %T", b)
		}
	}
	w.rows++
	if w.rows >= batchSize {
		return w.flush()
	}
	return nil
}

func (w *Writer) flush() error {
	if w.rows == 0 {
		return nil
	}
	batch := w.builder.NewRecord()
	defer batch.Release()
	w.rows = 0
	return w.fw.Write(batch)
}

func (w *Writer) Close() error {
	err := w.flush()
	if closeErr := w.fw.Close(); err == nil {
		err = closeErr
	}
	if closeErr := w.wc.Close(); err == nil {
		err = closeErr
	}
	return err
}

package parquetio_test

import (
	"bytes"
	"testing"

	"github.com/exhibitdata/exhibit"
	"github.com/exhibitdata/exhibit/eio"
	"github.com/exhibitdata/exhibit/eio/parquetio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter(t *testing.T) {
	schema := exhibit.NewSchema("t", []exhibit.Field{
		exhibit.NewField("id", exhibit.TypeInt64),
		exhibit.NewField("score", exhibit.TypeFloat64),
		exhibit.NewField("name", exhibit.TypeString),
		exhibit.NewField("ok", exhibit.TypeBool),
	})
	var buf bytes.Buffer
	writer, err := parquetio.NewWriter(eio.NopCloser(&buf), schema)
	require.NoError(t, err)
	rec := exhibit.NewRecord(schema)
	rec.Values = []any{int64(1), 0.5, "ann", true}
	require.NoError(t, writer.Write(rec))
	require.NoError(t, writer.Write(exhibit.NewRecord(schema)))
	require.NoError(t, writer.Close())
	// Parquet files open and close with the PAR1 magic.
	require.Greater(t, buf.Len(), 8)
	assert.Equal(t, "PAR1", buf.String()[:4])
	assert.Equal(t, "PAR1", buf.String()[buf.Len()-4:])
}

package exhibit_test

import (
	"testing"

	"github.com/exhibitdata/exhibit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	for in, want := range map[string]exhibit.Type{
		"bool":    exhibit.TypeBool,
		"int64":   exhibit.TypeInt64,
		"int":     exhibit.TypeInt64,
		"float64": exhibit.TypeFloat64,
		"float":   exhibit.TypeFloat64,
		"string":  exhibit.TypeString,
	} {
		typ, err := exhibit.ParseType(in)
		require.NoError(t, err)
		assert.Equal(t, want, typ)
	}
	_, err := exhibit.ParseType("decimal")
	assert.Error(t, err)
}

func TestSchemaIndexOf(t *testing.T) {
	s := exhibit.NewSchema("t", []exhibit.Field{
		exhibit.NewField("a", exhibit.TypeInt64),
		exhibit.NewField("b", exhibit.TypeString),
	})
	assert.Equal(t, 0, s.IndexOf("a"))
	assert.Equal(t, 1, s.IndexOf("b"))
	assert.Equal(t, -1, s.IndexOf("c"))
	assert.Equal(t, 2, s.Len())
}

func TestSchemaEqualIgnoresName(t *testing.T) {
	fields := []exhibit.Field{exhibit.NewField("a", exhibit.TypeInt64)}
	a := exhibit.NewSchema("x", fields)
	b := exhibit.NewSchema("y", fields)
	c := exhibit.NewSchema("x", []exhibit.Field{exhibit.NewField("a", exhibit.TypeString)})
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
}

func TestSchemaString(t *testing.T) {
	s := exhibit.NewSchema("t", []exhibit.Field{
		exhibit.NewField("a", exhibit.TypeInt64),
		exhibit.NewField("b", exhibit.TypeString),
	})
	assert.Equal(t, "t{a:int64,b:string}", s.String())
}

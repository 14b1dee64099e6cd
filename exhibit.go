// Package exhibit defines the data model shared by every stage of the
// aggregation engine: scalar types, schemas with offsets resolved once,
// records, and exhibits.  An exhibit is a named collection of record frames
// representing one logical observation set flowing through the pipeline.
package exhibit

import "fmt"

// Frame is an ordered sequence of records sharing a schema.
type Frame struct {
	Schema  *Schema
	Records []*Record
}

// Descriptor carries the schema metadata of an exhibit: one schema per
// named frame.  Aggregates bind against a Descriptor before processing any
// exhibit of that shape.
type Descriptor map[string]*Schema

// Frame returns the schema of the named frame or an error if the
// descriptor has no such frame.
func (d Descriptor) Frame(name string) (*Schema, error) {
	s, ok := d[name]
	if !ok {
		return nil, fmt.Errorf("no frame %q in exhibit descriptor", name)
	}
	return s, nil
}

// Exhibit is one observation set: an immutable group of named frames.
type Exhibit map[string]*Frame

// Descriptor returns the schema metadata describing the exhibit's frames.
func (e Exhibit) Descriptor() Descriptor {
	d := make(Descriptor, len(e))
	for name, f := range e {
		d[name] = f.Schema
	}
	return d
}

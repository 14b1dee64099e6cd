// Package tbl defines the aggregate functions computed by output tables.
//
// A Tbl is a stateless aggregate spec constructed once from configuration.
// Before any exhibits are processed it must be bound to an exhibit
// descriptor; binding resolves the target frame and field to offsets and
// yields the intermediate and output schemas.  Bound aggregates carry no
// state across calls: Extract produces a partial state record from one
// exhibit, Merge associatively combines two partial states, and Finalize
// turns a partial state into output fields.
package tbl

import (
	"fmt"

	"github.com/exhibitdata/exhibit"
	"github.com/exhibitdata/exhibit/etl/config"
)

type Tbl interface {
	// ID is the aggregate's stable index within its output table.
	ID() int
	Bind(ed exhibit.Descriptor) (Bound, error)
}

type Bound interface {
	IntermediateSchema() *exhibit.Schema
	OutputSchema() *exhibit.Schema
	Extract(e exhibit.Exhibit) *exhibit.Record
	Merge(cur, next *exhibit.Record) *exhibit.Record
	Finalize(cur *exhibit.Record) *exhibit.Record
}

// New returns the Tbl described by cfg with the given table-relative id.
func New(cfg config.Aggregate, id int) (Tbl, error) {
	frame := cfg.Frame
	if frame == "" {
		frame = "main"
	}
	switch cfg.Kind {
	case "sum":
		return &sumTbl{id: id, frame: frame, field: cfg.Field, as: cfg.As}, nil
	case "count":
		return &countTbl{id: id, frame: frame, field: cfg.Field, as: cfg.As}, nil
	case "avg":
		return &avgTbl{id: id, frame: frame, field: cfg.Field, as: cfg.As}, nil
	case "min", "max":
		return newMathTbl(cfg.Kind, id, frame, cfg.Field, cfg.As), nil
	case "first":
		return &firstTbl{id: id, frame: frame, field: cfg.Field, as: cfg.As}, nil
	}
	return nil, fmt.Errorf("unknown aggregate kind: %q", cfg.Kind)
}

// resolveField returns the offset and type of the named field in the named
// frame of the descriptor.
func resolveField(ed exhibit.Descriptor, frame, field string) (int, exhibit.Type, error) {
	schema, err := ed.Frame(frame)
	if err != nil {
		return 0, 0, err
	}
	off := schema.IndexOf(field)
	if off < 0 {
		return 0, 0, fmt.Errorf("no field %q in frame %q", field, frame)
	}
	return off, schema.Field(off).Type, nil
}

package etl

import (
	"fmt"
	"slices"

	"github.com/exhibitdata/exhibit"
	"github.com/exhibitdata/exhibit/etl/config"
	"github.com/exhibitdata/exhibit/etl/tbl"
)

// SchemaConflictError reports two structurally different schemas declared
// under the same name, which would make a tagged union ambiguous.
type SchemaConflictError struct {
	Name string
	A, B *exhibit.Schema
}

func (e *SchemaConflictError) Error() string {
	return fmt.Sprintf("schema conflict: %q declared as both %s and %s", e.Name, e.A, e.B)
}

// UnionSchema is a tagged union over several record schemas, disambiguated
// by an accompanying index.  Structurally identical schemas are
// deduplicated; same-named schemas with different structure conflict.
type UnionSchema struct {
	Name     string
	Variants []*exhibit.Schema
	tags     map[string]int
}

func NewUnionSchema(name string, schemas []*exhibit.Schema) (*UnionSchema, error) {
	u := &UnionSchema{Name: name, tags: make(map[string]int)}
	for _, s := range schemas {
		if i, ok := u.tags[s.Name]; ok {
			if !u.Variants[i].Equal(s) {
				return nil, &SchemaConflictError{Name: s.Name, A: u.Variants[i], B: s}
			}
			continue
		}
		u.tags[s.Name] = len(u.Variants)
		u.Variants = append(u.Variants, s)
	}
	return u, nil
}

// Tag returns the union branch of the named schema, or -1.
func (u *UnionSchema) Tag(name string) int {
	if i, ok := u.tags[name]; ok {
		return i
	}
	return -1
}

// TablePlan is the resolved plan of one output table.
type TablePlan struct {
	Index        int
	Name         string
	Keys         []string
	KeySchema    *exhibit.Schema
	Tbls         []tbl.Tbl
	OutputSchema *exhibit.Schema
	Path         string
	Mode         string
	Format       string
}

// Plan is the immutable, run-scoped result of planning a compute config:
// per-table key and output schemas, aggregate specs, and the tagged union
// schemas shared by every stage.  It is computed once and passed explicitly
// to each stage constructor.
type Plan struct {
	Descriptor  exhibit.Descriptor
	Frame       string
	Tables      []*TablePlan
	KeyUnion    *UnionSchema
	InterUnion  *UnionSchema
	OutputUnion *UnionSchema
}

func NewPlan(cfg *config.Compute) (*Plan, error) {
	source, err := cfg.Source.Schema()
	if err != nil {
		return nil, err
	}
	frame := cfg.Source.FrameName()
	ed := exhibit.Descriptor{frame: source}
	plan := &Plan{Descriptor: ed, Frame: frame}
	var keySchemas, interSchemas, outputSchemas []*exhibit.Schema
	for i, out := range cfg.Outputs {
		tp, err := newTablePlan(i, out, ed, source)
		if err != nil {
			return nil, err
		}
		plan.Tables = append(plan.Tables, tp)
		keySchemas = append(keySchemas, tp.KeySchema)
		outputSchemas = append(outputSchemas, tp.OutputSchema)
		for _, t := range tp.Tbls {
			bound, err := t.Bind(ed)
			if err != nil {
				return nil, err
			}
			interSchemas = append(interSchemas, bound.IntermediateSchema())
		}
	}
	if plan.KeyUnion, err = NewUnionSchema("ExhibitKey", keySchemas); err != nil {
		return nil, err
	}
	if plan.InterUnion, err = NewUnionSchema("ExhibitInterValue", interSchemas); err != nil {
		return nil, err
	}
	if plan.OutputUnion, err = NewUnionSchema("ExhibitOutput", outputSchemas); err != nil {
		return nil, err
	}
	return plan, nil
}

func newTablePlan(index int, out config.Output, ed exhibit.Descriptor, source *exhibit.Schema) (*TablePlan, error) {
	var keyFields []exhibit.Field
	for _, name := range out.Keys {
		off := source.IndexOf(name)
		if off < 0 {
			return nil, fmt.Errorf("output %q: key field %q not in source schema", out.Name, name)
		}
		keyFields = append(keyFields, source.Field(off))
	}
	keySchema := exhibit.NewSchema(out.Name, keyFields)
	// The output record starts with the key fields; each aggregate then
	// contributes its output columns.  A duplicated output field name keeps
	// its first slot so later writers overwrite by name.
	outputFields := slices.Clone(keyFields)
	seen := make(map[string]bool)
	for _, f := range keyFields {
		seen[f.Name] = true
	}
	tp := &TablePlan{
		Index:     index,
		Name:      out.Name,
		Keys:      out.Keys,
		KeySchema: keySchema,
		Path:      out.Path,
		Mode:      out.Mode,
		Format:    out.Format,
	}
	for j, aggCfg := range out.Aggregates {
		t, err := tbl.New(aggCfg, j)
		if err != nil {
			return nil, fmt.Errorf("output %q: %w", out.Name, err)
		}
		bound, err := t.Bind(ed)
		if err != nil {
			return nil, fmt.Errorf("output %q: %w", out.Name, err)
		}
		for _, f := range bound.OutputSchema().Fields() {
			if !seen[f.Name] {
				seen[f.Name] = true
				outputFields = append(outputFields, f)
			}
		}
		tp.Tbls = append(tp.Tbls, t)
	}
	tp.OutputSchema = exhibit.NewSchema("out_"+out.Name, outputFields)
	return tp, nil
}

// Package config defines the YAML configuration consumed by the compute
// and build pipelines.  Loading validates the structure; the engine
// receives only validated configs.
package config

import (
	"fmt"
	"os"

	"github.com/exhibitdata/exhibit"
	"gopkg.in/yaml.v3"
)

// Write modes for output datasets.
const (
	ModeOverwrite = "overwrite"
	ModeAppend    = "append"
)

type Field struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Source names an input dataset and declares its schema.
type Source struct {
	URI    string  `yaml:"uri"`
	Frame  string  `yaml:"frame"`
	Format string  `yaml:"format"`
	Fields []Field `yaml:"fields"`
	// Keys is used by the build pipeline only.
	Keys []string `yaml:"keys"`
}

// Schema resolves the declared fields into a schema named after the frame.
func (s *Source) Schema() (*exhibit.Schema, error) {
	var fields []exhibit.Field
	for _, f := range s.Fields {
		typ, err := exhibit.ParseType(f.Type)
		if err != nil {
			return nil, fmt.Errorf("source %s: field %q: %w", s.URI, f.Name, err)
		}
		fields = append(fields, exhibit.NewField(f.Name, typ))
	}
	return exhibit.NewSchema(s.FrameName(), fields), nil
}

func (s *Source) FrameName() string {
	if s.Frame == "" {
		return "main"
	}
	return s.Frame
}

// Aggregate configures one aggregate of an output table.
type Aggregate struct {
	Kind  string `yaml:"kind"`
	Frame string `yaml:"frame"`
	Field string `yaml:"field"`
	As    string `yaml:"as"`
}

// Output configures one output table: its grouping key, its ordered
// aggregates, and its destination.
type Output struct {
	Name       string      `yaml:"name"`
	Keys       []string    `yaml:"keys"`
	Aggregates []Aggregate `yaml:"aggregates"`
	Path       string      `yaml:"path"`
	Mode       string      `yaml:"mode"`
	Format     string      `yaml:"format"`
}

type Compute struct {
	Source      Source   `yaml:"source"`
	Outputs     []Output `yaml:"outputs"`
	Parallelism int      `yaml:"parallelism"`
	// NoCombine disables the pre-shuffle combiner.  The finalized outputs
	// are identical either way; this exists for verification and debugging.
	NoCombine bool `yaml:"noCombine"`
}

type Build struct {
	Name        string   `yaml:"name"`
	Sources     []Source `yaml:"sources"`
	Keys        []string `yaml:"keys"`
	Path        string   `yaml:"path"`
	Mode        string   `yaml:"mode"`
	Format      string   `yaml:"format"`
	Parallelism int      `yaml:"parallelism"`
}

func LoadCompute(path string) (*Compute, error) {
	var c Compute
	if err := load(path, &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

func LoadBuild(path string) (*Build, error) {
	var b Build
	if err := load(path, &b); err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &b, nil
}

func load(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func (c *Compute) Validate() error {
	if err := validateSource(&c.Source); err != nil {
		return err
	}
	if len(c.Outputs) == 0 {
		return fmt.Errorf("no output tables configured")
	}
	for i := range c.Outputs {
		if err := validateOutput(&c.Outputs[i], i); err != nil {
			return err
		}
	}
	if c.Parallelism <= 0 {
		c.Parallelism = 1
	}
	return nil
}

func (b *Build) Validate() error {
	if b.Name == "" {
		return fmt.Errorf("build: name is required")
	}
	if len(b.Sources) == 0 {
		return fmt.Errorf("build: no sources configured")
	}
	for i := range b.Sources {
		if err := validateSource(&b.Sources[i]); err != nil {
			return err
		}
	}
	if len(b.Keys) == 0 {
		return fmt.Errorf("build: no key fields configured")
	}
	if b.Path == "" {
		return fmt.Errorf("build: path is required")
	}
	if err := validateMode(&b.Mode); err != nil {
		return fmt.Errorf("build: %w", err)
	}
	if b.Parallelism <= 0 {
		b.Parallelism = 1
	}
	return nil
}

func validateSource(s *Source) error {
	if s.URI == "" {
		return fmt.Errorf("source: uri is required")
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("source %s: no fields declared", s.URI)
	}
	if _, err := s.Schema(); err != nil {
		return err
	}
	return nil
}

func validateOutput(o *Output, i int) error {
	if o.Name == "" {
		o.Name = fmt.Sprintf("table%d", i)
	}
	if len(o.Keys) == 0 {
		return fmt.Errorf("output %q: no key fields configured", o.Name)
	}
	if o.Path == "" {
		return fmt.Errorf("output %q: path is required", o.Name)
	}
	if err := validateMode(&o.Mode); err != nil {
		return fmt.Errorf("output %q: %w", o.Name, err)
	}
	for j := range o.Aggregates {
		agg := &o.Aggregates[j]
		if agg.Kind == "" {
			return fmt.Errorf("output %q: aggregate %d: kind is required", o.Name, j)
		}
		if agg.As == "" {
			agg.As = agg.Kind + "_" + agg.Field
		}
	}
	return nil
}

func validateMode(mode *string) error {
	switch *mode {
	case "":
		*mode = ModeOverwrite
	case ModeOverwrite, ModeAppend:
	default:
		return fmt.Errorf("unknown write mode: %q", *mode)
	}
	return nil
}

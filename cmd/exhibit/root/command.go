package root

import (
	"flag"

	"github.com/exhibitdata/exhibit/pkg/charm"
	"go.uber.org/zap"
)

var Exhibit = &charm.Spec{
	Name:  "exhibit",
	Usage: "exhibit <command> [options]",
	Short: "compute aggregate output tables from observation datasets",
	Long: `
The exhibit command computes multiple, independently configured aggregate
output tables from observation datasets in one shared group-by pass.

A compute config enumerates the source dataset and, per output table, a
grouping key, an ordered list of aggregates, a destination, and a write
mode.  All tables travel through one grouped shuffle tagged by table index;
the finalized stream is split back into per-table outputs.

The build command instead unions several keyed datasets into one merged
record per key, with no aggregation.
`,
	New: New,
}

type Command struct {
	Quiet bool
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{}
	f.BoolVar(&c.Quiet, "q", false, "suppress logging")
	return c, nil
}

func (c *Command) Run(args []string) error {
	return charm.NoRun(args)
}

// Logger returns the process logger honoring -q.
func (c *Command) Logger() (*zap.Logger, error) {
	if c.Quiet {
		return zap.NewNop(), nil
	}
	return zap.NewProduction()
}

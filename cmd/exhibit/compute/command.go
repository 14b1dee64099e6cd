package compute

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/exhibitdata/exhibit/cmd/exhibit/root"
	"github.com/exhibitdata/exhibit/etl"
	"github.com/exhibitdata/exhibit/etl/config"
	"github.com/exhibitdata/exhibit/pkg/charm"
)

var spec = &charm.Spec{
	Name:  "compute",
	Usage: "compute [options] config.yaml",
	Short: "run the multi-table aggregation pipeline",
	Long: `
The compute command reads the configured source dataset and computes every
configured output table in one shared group-by pass, writing each table to
its own destination.  The process exits 0 only if the whole run succeeded.
`,
	New: New,
}

func init() {
	root.Exhibit.Add(spec)
}

type Command struct {
	*root.Command
	nocombine   bool
	parallelism int
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{Command: parent.(*root.Command)}
	f.BoolVar(&c.nocombine, "nocombine", false, "disable the pre-shuffle combiner")
	f.IntVar(&c.parallelism, "p", 0, "override configured parallelism")
	return c, nil
}

func (c *Command) Run(args []string) error {
	if len(args) != 1 {
		return charm.NeedHelp
	}
	cfg, err := config.LoadCompute(args[0])
	if err != nil {
		return err
	}
	if c.nocombine {
		cfg.NoCombine = true
	}
	if c.parallelism > 0 {
		cfg.Parallelism = c.parallelism
	}
	logger, err := c.Logger()
	if err != nil {
		return err
	}
	defer logger.Sync()
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	stats, err := etl.RunCompute(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if c.Quiet {
		return nil
	}
	for _, ts := range stats.Tables {
		fmt.Printf("%s: %d rows\n", ts.Table, ts.Rows)
	}
	if stats.KeysSkipped > 0 {
		fmt.Printf("skipped %d records with malformed keys\n", stats.KeysSkipped)
	}
	return nil
}

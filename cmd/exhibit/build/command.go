package build

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
	Name:  "build",
	Usage: "build [options] config.yaml",
	Short: "union keyed datasets into one merged record per key",
	Long: `
The build command reads the configured source datasets, groups their
records by the shared key fields, and writes one merged record per key
containing every source's columns.  No aggregation is performed.
`,
	New: New,
}

func init() {
	root.Exhibit.Add(spec)
}

type Command struct {
	*root.Command
	parallelism int
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{Command: parent.(*root.Command)}
	f.IntVar(&c.parallelism, "p", 0, "override configured parallelism")
	return c, nil
}

func (c *Command) Run(args []string) error {
	if len(args) != 1 {
		return charm.NeedHelp
	}
	cfg, err := config.LoadBuild(args[0])
	if err != nil {
		return err
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
	stats, err := etl.RunBuild(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if !c.Quiet {
		fmt.Printf("%s: %d rows\n", cfg.Name, stats.Tables[0].Rows)
	}
	return nil
}

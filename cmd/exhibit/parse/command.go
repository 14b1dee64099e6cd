package parse

import (
	"flag"
	"fmt"

	"github.com/exhibitdata/exhibit/cmd/exhibit/root"
	"github.com/exhibitdata/exhibit/etl"
	"github.com/exhibitdata/exhibit/etl/config"
	"github.com/exhibitdata/exhibit/pkg/charm"
)

var spec = &charm.Spec{
	Name:  "parse",
	Usage: "parse [-build] config.yaml",
	Short: "validate a config without running it",
	Long: `
The parse command loads a compute (or, with -build, a build) config,
validates it, and for compute configs plans the run, surfacing schema
conflicts and unresolvable fields before any data is read.
`,
	New: New,
}

func init() {
	root.Exhibit.Add(spec)
}

type Command struct {
	*root.Command
	build bool
}

func New(parent charm.Command, f *flag.FlagSet) (charm.Command, error) {
	c := &Command{Command: parent.(*root.Command)}
	f.BoolVar(&c.build, "build", false, "validate a build config")
	return c, nil
}

func (c *Command) Run(args []string) error {
	if len(args) != 1 {
		return charm.NeedHelp
	}
	if c.build {
		if _, err := config.LoadBuild(args[0]); err != nil {
			return err
		}
	} else {
		cfg, err := config.LoadCompute(args[0])
		if err != nil {
			return err
		}
		if _, err := etl.NewPlan(cfg); err != nil {
			return err
		}
	}
	fmt.Println("config parsed successfully")
	return nil
}

// Package charm is a minimalist CLI framework inspired by cobra and
// urfave/cli.  A command tree is declared as Specs; Exec resolves the
// argument list to a leaf command, building each command on the path from
// root to leaf so every level can register flags, then runs the leaf.
package charm

import (
	"errors"
	"flag"
	"fmt"
	"os"
)

var (
	NeedHelp = errors.New("help")
	ErrNoRun = errors.New("no run method")
)

type Constructor func(Command, *flag.FlagSet) (Command, error)

type Command interface {
	Run([]string) error
}

type Spec struct {
	Name     string
	Usage    string
	Short    string
	Long     string
	New      Constructor
	children []*Spec
	parent   *Spec
}

func (s *Spec) Add(child *Spec) {
	s.children = append(s.children, child)
	child.parent = s
}

func (s *Spec) lookupSub(name string) *Spec {
	for _, child := range s.children {
		if name == child.Name {
			return child
		}
	}
	return nil
}

func (s *Spec) Exec(args []string) error {
	flags := flag.NewFlagSet(s.Name, flag.ContinueOnError)
	flags.Usage = func() {}
	spec := s
	cmd, err := s.New(nil, flags)
	if err != nil {
		return err
	}
	for len(args) > 0 {
		child := spec.lookupSub(args[0])
		if child == nil {
			break
		}
		spec = child
		args = args[1:]
		if cmd, err = spec.New(cmd, flags); err != nil {
			return err
		}
	}
	if len(args) > 0 && args[0] == "help" {
		spec.displayHelp(flags)
		return nil
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			spec.displayHelp(flags)
			return nil
		}
		return err
	}
	err = cmd.Run(flags.Args())
	if errors.Is(err, NeedHelp) {
		spec.displayHelp(flags)
		return nil
	}
	return err
}

// NoRun is the Run method of interior commands that only dispatch to
// subcommands.
func NoRun(args []string) error {
	if len(args) == 0 {
		return NeedHelp
	}
	return ErrNoRun
}

func (s *Spec) displayHelp(flags *flag.FlagSet) {
	w := os.Stderr
	fmt.Fprintf(w, "usage: %s\n", s.Usage)
	if s.Long != "" {
		fmt.Fprintln(w, s.Long)
	} else if s.Short != "" {
		fmt.Fprintln(w, s.Short)
	}
	if len(s.children) > 0 {
		fmt.Fprintln(w, "commands:")
		for _, child := range s.children {
			fmt.Fprintf(w, "  %-10s %s\n", child.Name, child.Short)
		}
	}
	fmt.Fprintln(w, "flags:")
	flags.SetOutput(w)
	flags.PrintDefaults()
}

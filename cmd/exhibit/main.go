package main

import (
	"fmt"
	"os"

	_ "github.com/exhibitdata/exhibit/cmd/exhibit/build"
	_ "github.com/exhibitdata/exhibit/cmd/exhibit/compute"
	_ "github.com/exhibitdata/exhibit/cmd/exhibit/parse"
	"github.com/exhibitdata/exhibit/cmd/exhibit/root"
)

func main() {
	if err := root.Exhibit.Exec(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "exhibit: %s\n", err)
		os.Exit(1)
	}
}

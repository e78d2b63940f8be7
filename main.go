// fkorder is a CLI tool for computing foreign-key-safe insert and delete
// orderings of PostgreSQL tables, and for generating scripts that consume
// those orderings.
//
// See README.md for usage documentation.
package main

import (
	"fmt"
	"os"

	"github.com/avinashkm/fkorder/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

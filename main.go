// Command armmm boots an emulated ARM board with its section translation
// table and drives the memory-protection layer: install the table, change
// region attributes at run time, watch faults.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(new(bootCmd), "")
	subcommands.Register(new(protectCmd), "")
	subcommands.Register(new(dumpCmd), "")
	subcommands.Register(new(monitorCmd), "")

	// All subcommands must be registered before flag parsing.
	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}

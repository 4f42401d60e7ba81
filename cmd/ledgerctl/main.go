// Command ledgerctl inspects and administers a stopped ledger through its configured store.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&inspectCmd{}, "")
	commander.Register(&advanceCmd{}, "admin")
	commander.Register(&unfreezeCmd{}, "admin")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

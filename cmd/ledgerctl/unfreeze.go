package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type unfreezeCmd struct{}

func (*unfreezeCmd) Name() string     { return "unfreeze" }
func (*unfreezeCmd) Synopsis() string { return "clear the frozen flag and fraud warning of users" }
func (*unfreezeCmd) Usage() string {
	return `ledgerctl unfreeze <username> [<username>...]
`
}

func (*unfreezeCmd) SetFlags(*flag.FlagSet) {}

func (*unfreezeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}

	service, closeLedger, err := openLedger(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer closeLedger()

	status := subcommands.ExitSuccess
	for _, username := range f.Args() {
		if err := service.Unfreeze(ctx, username); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", username, err)
			status = subcommands.ExitFailure
			continue
		}
		fmt.Printf("%s unfrozen\n", username)
	}
	if err := service.Save(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return status
}

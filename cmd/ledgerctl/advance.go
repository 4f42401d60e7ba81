package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type advanceCmd struct {
	days int
}

func (*advanceCmd) Name() string     { return "advance" }
func (*advanceCmd) Synopsis() string { return "apply whole days of gains to every account" }
func (*advanceCmd) Usage() string {
	return `ledgerctl advance -days <n>

  Applies n days of savings interest and fund growth to every user and
  saves the ledger. Run it while the server is stopped.
`
}

func (c *advanceCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.days, "days", 1, "Number of simulated days to advance (at least 1).")
}

func (c *advanceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.days < 1 {
		fmt.Fprintln(os.Stderr, "days must be at least 1")
		return subcommands.ExitUsageError
	}

	service, closeLedger, err := openLedger(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer closeLedger()

	now, err := service.AdvanceTime(ctx, c.days)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := service.Save(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("advanced %d day(s), simulated time is now %s\n", c.days, now.Format("2006-01-02 15:04:05"))
	return subcommands.ExitSuccess
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"

	"github.com/simaogato/greenday-ledger/internal/usecase/ledger"
)

type inspectCmd struct {
	frozenOnly bool
}

func (*inspectCmd) Name() string     { return "inspect" }
func (*inspectCmd) Synopsis() string { return "list every account with its balances and flags" }
func (*inspectCmd) Usage() string {
	return `ledgerctl inspect [-frozen]

  Loads the ledger from the configured store and prints one line per user:
  identifier, cash, savings, investment total, history length and flags.
`
}

func (c *inspectCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.frozenOnly, "frozen", false, "Only list frozen accounts.")
}

func (c *inspectCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	service, closeLedger, err := openLedger(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer closeLedger()

	writeAccounts(os.Stdout, service.Accounts(ctx), c.frozenOnly)
	return subcommands.ExitSuccess
}

func writeAccounts(out io.Writer, accounts []ledger.AccountSummary, frozenOnly bool) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "USERNAME\tNAME\tIDENTIFIER\tCASH\tSAVINGS\tINVESTMENT\tTXS\tFLAGS")
	for _, a := range accounts {
		if frozenOnly && !a.Frozen {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			a.Profile.Username,
			a.Profile.Name,
			a.Profile.Identifier,
			display(a.Balance.Cash),
			display(a.Balance.Savings),
			display(a.Balance.InvestmentTotal()),
			a.Transactions,
			flags(a),
		)
	}
	w.Flush()
}

func flags(a ledger.AccountSummary) string {
	switch {
	case a.Frozen:
		return "frozen"
	case a.Profile.FraudWarning:
		return "warning"
	default:
		return "-"
	}
}

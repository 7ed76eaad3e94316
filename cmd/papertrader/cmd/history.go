package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/papertrader/ledger"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the account's transaction log, most recent first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the transaction log as CSV",
	Long: `Write the account's transaction history as CSV, most recent first.
With no file argument the CSV goes to stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, _, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	recs, err := store.ListTransactions(cmd.Context(), accountID)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}

	if len(recs) == 0 {
		fmt.Println("No transactions")
		return nil
	}

	fmt.Printf("%6s %-8s %-4s %10s %12s %14s  %s\n",
		"ID", "SYMBOL", "SIDE", "QTY", "PRICE", "TOTAL", "TIME")
	for _, r := range recs {
		fmt.Printf("%6d %-8s %-4s %10d %12s %14s  %s\n",
			r.ID, r.Symbol, r.Side, r.Quantity,
			r.Price.StringFixed(ledger.CurrencyPrecision),
			r.TotalAmount.StringFixed(ledger.CurrencyPrecision),
			r.Timestamp.Format(time.RFC3339))
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	store, _, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	out := os.Stdout
	if len(args) == 1 {
		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("create export file: %w", err)
		}
		defer f.Close()
		out = f
	}

	return ledger.ExportCSV(cmd.Context(), out, store, accountID)
}

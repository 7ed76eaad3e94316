package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/papertrader/ledger"
)

var positionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "List the account's current holdings",
	Args:  cobra.NoArgs,
	RunE:  runPositions,
}

func init() {
	rootCmd.AddCommand(positionsCmd)
}

func runPositions(cmd *cobra.Command, args []string) error {
	store, _, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	positions, err := store.ListPositions(cmd.Context(), accountID)
	if err != nil {
		return fmt.Errorf("list positions: %w", err)
	}

	if len(positions) == 0 {
		fmt.Println("No open positions")
		return nil
	}

	fmt.Printf("%-8s %10s %12s %14s\n", "SYMBOL", "QTY", "AVG COST", "COST BASIS")
	for _, p := range positions {
		fmt.Printf("%-8s %10d %12s %14s\n",
			p.Symbol, p.Quantity,
			p.DisplayCost().StringFixed(ledger.CurrencyPrecision),
			p.CostBasis().StringFixed(ledger.CurrencyPrecision))
	}
	return nil
}

package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/papertrader/ledger"
)

var buyCmd = &cobra.Command{
	Use:   "buy <symbol> <quantity> <price>",
	Short: "Buy shares at the given price",
	Long: `Execute a buy against the active ledger.

Example:
  papertrader buy AAPL 10 184.50`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTrade(cmd, ledger.Buy, args)
	},
}

var sellCmd = &cobra.Command{
	Use:   "sell <symbol> <quantity> <price>",
	Short: "Sell shares at the given price",
	Long: `Execute a sell against the active ledger. Selling an entire
position removes it from the account.

Example:
  papertrader sell AAPL 10 190.00`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTrade(cmd, ledger.Sell, args)
	},
}

func init() {
	rootCmd.AddCommand(buyCmd)
	rootCmd.AddCommand(sellCmd)
}

func runTrade(cmd *cobra.Command, side ledger.Side, args []string) error {
	symbol := args[0]

	quantity, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("parse quantity %q: %w", args[1], err)
	}

	price, err := decimal.NewFromString(args[2])
	if err != nil {
		return fmt.Errorf("parse price %q: %w", args[2], err)
	}

	store, eng, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	res, err := eng.ExecuteTrade(cmd.Context(), accountID, symbol, side, price, quantity)
	if err != nil {
		return fmt.Errorf("trade rejected: %w", err)
	}

	rec := res.Record
	fmt.Printf("%s %d %s @ $%s (total $%s)\n",
		rec.Side, rec.Quantity, rec.Symbol,
		rec.Price.StringFixed(ledger.CurrencyPrecision),
		rec.TotalAmount.StringFixed(ledger.CurrencyPrecision))
	fmt.Printf("Transaction #%d, balance $%s\n",
		rec.ID, res.Balance.StringFixed(ledger.CurrencyPrecision))
	return nil
}

// rejected reports whether err is a business-rule rejection rather than a
// storage failure. The demo command keeps going on rejections.
func rejected(err error) bool {
	var ve *ledger.ValidationError
	return errors.Is(err, ledger.ErrInsufficientFunds) ||
		errors.Is(err, ledger.ErrInsufficientHoldings) ||
		errors.Is(err, ledger.ErrAccountNotFound) ||
		errors.As(err, &ve)
}

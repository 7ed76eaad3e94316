package cmd

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/papertrader/ledger"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Replay the scripted trade sequence from the config file",
	Long: `Run the trades listed in the config file's demo section against the
active ledger, printing each outcome. Rejected trades are reported and the
sequence continues; only storage failures stop the run.

Example config section:

  demo:
    - {symbol: AAPL, side: BUY,  quantity: 10, price: "184.50"}
    - {symbol: AAPL, side: BUY,  quantity: 10, price: "190.00"}
    - {symbol: AAPL, side: SELL, quantity: 5,  price: "195.25"}`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	if len(cfg.Demo) == 0 {
		fmt.Println("No demo trades in config (add a 'demo' section)")
		return nil
	}

	store, eng, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	for i, d := range cfg.Demo {
		// Validate() guarantees the price parses.
		price, err := decimal.NewFromString(d.Price)
		if err != nil {
			return fmt.Errorf("demo[%d] price: %w", i, err)
		}

		res, err := eng.ExecuteTrade(cmd.Context(), accountID, d.Symbol,
			ledger.Side(d.Side), price, d.Quantity)
		if err != nil {
			if rejected(err) {
				fmt.Printf("%2d. %s %d %s @ %s — rejected: %v\n",
					i+1, d.Side, d.Quantity, d.Symbol, d.Price, err)
				continue
			}
			return fmt.Errorf("demo[%d]: %w", i, err)
		}

		fmt.Printf("%2d. %s %d %s @ %s — txn #%d, balance $%s\n",
			i+1, d.Side, d.Quantity, d.Symbol, d.Price,
			res.Record.ID, res.Balance.StringFixed(ledger.CurrencyPrecision))
	}

	return nil
}

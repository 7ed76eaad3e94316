package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/papertrader/ledger"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Show an account's balance and details",
	Args:  cobra.NoArgs,
	RunE:  runAccount,
}

var registerCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Create a new trading account",
	Long: `Create a new account with the configured starting balance.

The credential is stored opaquely; papertrader performs no authentication
itself.`,
	Args: cobra.ExactArgs(1),
	RunE: runRegister,
}

var registerCredential string

func init() {
	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(registerCmd)

	registerCmd.Flags().StringVar(&registerCredential, "credential", "", "opaque password credential for the account")
}

func runAccount(cmd *cobra.Command, args []string) error {
	store, _, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	a, err := store.GetAccount(cmd.Context(), accountID)
	if err != nil {
		return fmt.Errorf("get account: %w", err)
	}

	fmt.Printf("Account:  %d (%s)\n", a.ID, a.Username)
	fmt.Printf("Balance:  $%s\n", a.Balance.StringFixed(ledger.CurrencyPrecision))
	fmt.Printf("Created:  %s\n", a.CreatedAt.Format(time.RFC3339))
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	store, _, err := openLedger(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	seed, err := cfg.Seed.SeedAccount()
	if err != nil {
		return err
	}

	a, err := store.CreateAccount(cmd.Context(), args[0], registerCredential, seed.Balance)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}

	fmt.Printf("Created account %d (%s) with balance $%s\n",
		a.ID, a.Username, a.Balance.StringFixed(ledger.CurrencyPrecision))
	return nil
}

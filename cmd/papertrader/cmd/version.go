package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the papertrader CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("papertrader version %s\n", version)
		fmt.Println("A paper trading ledger for simulated stock accounts")
		fmt.Println("https://github.com/rustyeddy/papertrader")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

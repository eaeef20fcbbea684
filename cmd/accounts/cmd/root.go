package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Account registration and authentication service",
	Long: `accounts registers, activates and authenticates accounts, and lets
administrators manage them over HTTP.

Every command reads its configuration from the environment (PORT,
ACCOUNTS_DATABASE_DRIVER, TOKEN_STORE_DRIVER, JWT_*_KEY and so on).`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

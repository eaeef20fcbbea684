package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/accounts/internal/auth/app"
	"github.com/aussiebroadwan/accounts/internal/auth/domain"
)

var activateCmd = &cobra.Command{
	Use:   "activate <username>",
	Short: "Confirm a registered account so it can sign in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdmin(cmd, func(a *app.Admin) (domain.Account, error) {
			return a.Activate(cmd.Context(), args[0])
		})
	},
}

var setRoleCmd = &cobra.Command{
	Use:   "set-role <username> <role>",
	Short: "Assign a role (admin or user) to an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAdmin(cmd, func(a *app.Admin) (domain.Account, error) {
			return a.SetRole(cmd.Context(), args[0], args[1])
		})
	},
}

func init() {
	rootCmd.AddCommand(activateCmd)
	rootCmd.AddCommand(setRoleCmd)
}

func withAdmin(cmd *cobra.Command, fn func(*app.Admin) (domain.Account, error)) error {
	a, err := app.NewAdmin(cmd.Context(), app.LoadConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	acc, err := fn(a)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", acc.ID, acc.Username, acc.Status, acc.Role)
	return nil
}

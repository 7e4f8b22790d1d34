package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"poolkeeper/internal/bootstrap"
	"poolkeeper/internal/errs"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "User account commands",
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a user and everything the user owns",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		email, _ := cmd.Flags().GetString("email")
		if strings.TrimSpace(email) == "" {
			return errors.New("--email is required")
		}
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return errors.New("refusing to delete without --yes")
		}

		if err := app.Users.Delete(cmd.Context(), email); err != nil {
			return errs.Wrap(err, "delete user")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "user deleted: %s\n", email); err != nil {
			return errs.Wrap(err, "write users delete output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersDeleteCmd)

	usersDeleteCmd.Flags().String("email", "", "Email of the user to delete")
	usersDeleteCmd.Flags().Bool("yes", false, "Confirm deletion of all owned records")
}

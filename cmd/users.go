package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var userColumns = []column{
	{"CODE", "code"},
	{"FIRST NAME", "first_name"},
	{"LAST NAME", "last_name"},
	{"EMAIL", "email"},
	{"POSITION", "position"},
}

var (
	userParams paramFlags
	userYes    bool
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage the users of the account's company",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users (the account itself is not included)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		users, err := client.GetUsers(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get users: %w", err)
		}
		return listRecords(cmd, users, userColumns)
	},
}

var usersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a user",
	Example: `  spctl users add --set first_name=Ada --set last_name=Lovelace \
    --set email=ada@example.com --list buildings=B1,B2`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := userParams.params()
		if err != nil {
			return err
		}
		user, err := client.AddUser(cmd.Context(), params)
		if err != nil {
			return fmt.Errorf("failed to add user: %w", err)
		}
		return printRecord(cmd.OutOrStdout(), user)
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete CODE",
	Short: "Disable a user; the service deletes it later",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm(cmd, userYes, "Delete user %s?", args[0]) {
			logger.Info().Msg("Deletion cancelled")
			return nil
		}
		if err := client.DeleteUser(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "User %s deleted\n", args[0])
		return nil
	},
}

func init() {
	userParams.register(usersAddCmd)
	usersDeleteCmd.Flags().BoolVarP(&userYes, "yes", "y", false, "skip confirmation prompt")

	usersCmd.AddCommand(usersListCmd, usersAddCmd, usersDeleteCmd)
	rootCmd.AddCommand(usersCmd)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var groupColumns = []column{
	{"CODE", "code"},
	{"NAME", "name"},
	{"MATERIALS", "materials"},
	{"COMMENT", "comment"},
}

var (
	groupParams paramFlags
	groupYes    bool
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Manage material groups",
}

var groupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List material groups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		groups, err := client.GetMaterialGroups(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get material groups: %w", err)
		}
		return listRecords(cmd, groups, groupColumns)
	},
}

var groupsAddCmd = &cobra.Command{
	Use:     "add",
	Short:   "Create a material group",
	Example: `  spctl groups add --set name=Hall --list materials=M1,M2`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := groupParams.params()
		if err != nil {
			return err
		}
		group, err := client.AddMaterialGroup(cmd.Context(), params)
		if err != nil {
			return fmt.Errorf("failed to add material group: %w", err)
		}
		return printRecord(cmd.OutOrStdout(), group)
	},
}

var groupsDeleteCmd = &cobra.Command{
	Use:   "delete CODE",
	Short: "Delete a material group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirm(cmd, groupYes, "Delete material group %s?", args[0]) {
			logger.Info().Msg("Deletion cancelled")
			return nil
		}
		if err := client.DeleteMaterialGroup(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete material group: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Material group %s deleted\n", args[0])
		return nil
	},
}

func init() {
	groupParams.register(groupsAddCmd)
	groupsDeleteCmd.Flags().BoolVarP(&groupYes, "yes", "y", false, "skip confirmation prompt")

	groupsCmd.AddCommand(groupsListCmd, groupsAddCmd, groupsDeleteCmd)
	rootCmd.AddCommand(groupsCmd)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var buildingsCmd = &cobra.Command{
	Use:   "buildings",
	Short: "Inspect buildings",
}

var buildingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List buildings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		buildings, err := client.GetBuildings(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get buildings: %w", err)
		}
		return listRecords(cmd, buildings, []column{{"CODE", "code"}, {"NAME", "name"}})
	},
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Inspect webview templates",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the webview templates usable by template medias",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		templates, err := client.GetWebviewTemplates(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get webview templates: %w", err)
		}
		return listRecords(cmd, templates, []column{{"CODE", "code"}, {"NAME", "name"}})
	},
}

func init() {
	buildingsCmd.AddCommand(buildingsListCmd)
	templatesCmd.AddCommand(templatesListCmd)
	rootCmd.AddCommand(buildingsCmd, templatesCmd)
}

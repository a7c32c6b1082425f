package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var materialColumns = []column{
	{"CODE", "code"},
	{"NAME", "name"},
	{"BUILDING", "building"},
	{"WIDTH", "width"},
	{"HEIGHT", "height"},
}

var materialParams paramFlags

var materialsCmd = &cobra.Command{
	Use:     "materials",
	Aliases: []string{"screens"},
	Short:   "Manage materials (screens)",
}

var materialsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List materials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		materials, err := client.GetMaterials(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get materials: %w", err)
		}
		return listRecords(cmd, materials, materialColumns)
	},
}

var materialsAddCmd = &cobra.Command{
	Use:     "add",
	Short:   "Create a material",
	Example: `  spctl materials add --set name="Lobby" --set building=B1 --set width=1920 --set height=1080`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := materialParams.params()
		if err != nil {
			return err
		}
		material, err := client.AddMaterial(cmd.Context(), params)
		if err != nil {
			return fmt.Errorf("failed to add material: %w", err)
		}
		return printRecord(cmd.OutOrStdout(), material)
	},
}

var materialsRebootCmd = &cobra.Command{
	Use:   "reboot CODE...",
	Short: "Ask materials to reboot",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return materialCommand(cmd, args, "reboot", client.RebootMaterial)
	},
}

var materialsRefreshCmd = &cobra.Command{
	Use:   "refresh CODE...",
	Short: "Ask materials to reload their medias",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return materialCommand(cmd, args, "refresh", client.RefreshMaterial)
	},
}

// materialCommand runs action on every code and reports pending requests
func materialCommand(cmd *cobra.Command, codes []string, action string, run func(context.Context, string) (bool, error)) error {
	out := cmd.OutOrStdout()
	for _, code := range codes {
		accepted, err := run(cmd.Context(), code)
		if err != nil {
			return fmt.Errorf("failed to %s material %s: %w", action, code, err)
		}
		if accepted {
			fmt.Fprintf(out, "%s: %s requested\n", code, action)
		} else {
			fmt.Fprintf(out, "%s: %s already pending\n", code, action)
		}
	}
	return nil
}

func init() {
	materialParams.register(materialsAddCmd)

	materialsCmd.AddCommand(materialsListCmd, materialsAddCmd, materialsRebootCmd, materialsRefreshCmd)
	rootCmd.AddCommand(materialsCmd)
}

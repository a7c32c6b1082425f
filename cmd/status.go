package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/smart-prospective/spctl/spapi"
)

// statusConcurrency bounds the inventory calls sent at once
const statusConcurrency = 3

type inventoryItem struct {
	name  string
	fetch func(context.Context) ([]spapi.Record, error)
}

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Test the connection and show the account inventory",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if !jsonOutput {
		fmt.Fprintf(out, "Testing connection to Smart Prospective at %s...\n", cfg.API.URL)
	}
	start := time.Now()
	if _, err := client.Login(ctx); err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	latency := time.Since(start)

	items := []inventoryItem{
		{"users", client.GetUsers},
		{"materials", client.GetMaterials},
		{"material groups", client.GetMaterialGroups},
		{"buildings", client.GetBuildings},
		{"medias", client.GetMedias},
		{"webview templates", client.GetWebviewTemplates},
	}
	counts, err := countInventory(ctx, items)
	if err != nil {
		return err
	}

	if jsonOutput {
		summary := map[string]any{"url": cfg.API.URL, "login_ms": latency.Milliseconds()}
		for i, item := range items {
			summary[item.name] = counts[i]
		}
		return printJSON(out, summary)
	}

	fmt.Fprintf(out, "✓ Connection successful! (login in %s)\n", latency.Round(time.Millisecond))
	fmt.Fprintf(out, "\nInventory:\n")
	for i, item := range items {
		fmt.Fprintf(out, "- %s: %d\n", item.name, counts[i])
	}
	return nil
}

// countInventory fetches every list concurrently. The first failure cancels
// the remaining calls.
func countInventory(ctx context.Context, items []inventoryItem) ([]int, error) {
	counts := make([]int, len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(statusConcurrency)
	for i, item := range items {
		g.Go(func() error {
			records, err := item.fetch(ctx)
			if err != nil {
				return fmt.Errorf("failed to get %s: %w", item.name, err)
			}
			counts[i] = len(records)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return counts, nil
}

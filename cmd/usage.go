package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// usageCmd represents the usage command
var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show quota usage for the configured API key",
	RunE:  runUsage,
}

func init() {
	rootCmd.AddCommand(usageCmd)
}

func runUsage(cmd *cobra.Command, args []string) error {
	snapshot, err := client.Usage(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Plan: %s (max viewport %dx%d)\n\n",
		snapshot.Plan.Name, snapshot.Plan.MaxWidth, snapshot.Plan.MaxHeight)

	fmt.Printf("Daily usage:   %d / %d (%d remaining)\n",
		snapshot.Daily.Used, snapshot.Daily.Limit, snapshot.Daily.Remaining)
	fmt.Printf("Monthly usage: %d / %d (%d remaining)\n",
		snapshot.Monthly.Used, snapshot.Monthly.Limit, snapshot.Monthly.Remaining)

	return nil
}

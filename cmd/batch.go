package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/snapdock/snapdock/filter"
	"github.com/snapdock/snapdock/screenshot"
)

var (
	batchFilter string
	batchOutput string
	batchNoSave bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch URL...",
	Short: "Capture up to 10 URLs in a single server-side batch",
	Long: `Submit all URLs in one batch request. The server renders every page
and reports per-URL outcomes; successful images are written to disk.

Results can be narrowed with a filter expression, for example:

  snapdock batch --filter 'success && duration_ms > 1000' URL...
  snapdock batch --filter 'error_code == "RENDER_FAILED"' URL...`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&batchFilter, "filter", "f", "", "filter expression applied to the results")
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "output directory for captured images")
	batchCmd.Flags().BoolVar(&batchNoSave, "no-save", false, "print the summary without writing images")

	batchCmd.Flags().IntVar(&captureWidth, "width", 0, "viewport width (default 1280)")
	batchCmd.Flags().IntVar(&captureHeight, "height", 0, "viewport height (default 720)")
	batchCmd.Flags().BoolVar(&captureFullPage, "full-page", false, "capture the full scroll height")
	batchCmd.Flags().StringVar(&captureFormat, "format", "", "image format (png/jpeg/webp)")
	batchCmd.Flags().IntVar(&captureQuality, "quality", 0, "image quality 1-100 (lossy formats only)")
	batchCmd.Flags().BoolVar(&captureMobile, "mobile", false, "emulate a mobile device")
	batchCmd.Flags().BoolVar(&captureDarkMode, "dark-mode", false, "prefer dark color scheme")
	batchCmd.Flags().IntVar(&captureDelay, "delay", 0, "wait before capturing, in milliseconds")
	batchCmd.Flags().IntVar(&captureCacheTTL, "cache-ttl", 0, "server-side cache TTL in seconds")
}

func runBatch(cmd *cobra.Command, args []string) error {
	if len(args) > screenshot.MaxBatchURLs {
		logger.Warn().Int("urls", len(args)).
			Msgf("The API accepts at most %d URLs per batch; extra URLs will be rejected server-side", screenshot.MaxBatchURLs)
	}

	ctx := context.Background()
	result, err := client.CaptureBatch(ctx, screenshot.BatchOptions{
		URLs:    args,
		Options: sharedOptions(),
	})
	if err != nil {
		return err
	}

	items := result.Results
	if batchFilter != "" {
		items, err = filter.Apply(items, batchFilter)
		if err != nil {
			return err
		}
	}

	outputDir := batchOutput
	if outputDir == "" {
		outputDir = cfg.Output.Dir
	}

	for _, item := range items {
		if !item.Success {
			code := ""
			message := "unknown error"
			if item.Error != nil {
				code = item.Error.Code
				message = item.Error.Message
			}
			fmt.Printf("✗ %s: %s (%s)\n", item.URL, message, code)
			continue
		}

		if batchNoSave {
			fmt.Printf("✓ %s (%d bytes, %dms)\n", item.URL, item.Size, item.DurationMS)
			continue
		}

		path := filepath.Join(outputDir, outputFilename(item.URL, item.ContentType))
		if err := os.WriteFile(path, item.Data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Printf("✓ %s → %s (%d bytes, %dms)\n", item.URL, path, item.Size, item.DurationMS)
	}

	fmt.Printf("\nBatch summary: %d total, %d succeeded, %d failed (%dms)\n",
		result.Summary.Total, result.Summary.Succeeded, result.Summary.Failed, result.Summary.DurationMS)

	if batchFilter != "" {
		fmt.Printf("Filter matched %d of %d results\n", len(items), len(result.Results))
	}

	return nil
}

package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/snapdock/snapdock/screenshot"
)

var (
	captureWidth    int
	captureHeight   int
	captureFullPage bool
	captureFormat   string
	captureQuality  int
	captureMobile   bool
	captureDarkMode bool
	captureDelay    int
	captureSelector string
	captureCacheTTL int
	captureOutput   string
	concurrency     int
)

// captureCmd represents the capture command
var captureCmd = &cobra.Command{
	Use:   "capture URL...",
	Short: "Capture screenshots of one or more URLs",
	Long: `Capture a screenshot of each URL and write the image to disk.

Each URL is an independent API request. Multiple URLs are captured
concurrently up to the configured concurrency limit.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCapture,
}

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().IntVar(&captureWidth, "width", 0, "viewport width (default 1280)")
	captureCmd.Flags().IntVar(&captureHeight, "height", 0, "viewport height (default 720)")
	captureCmd.Flags().BoolVar(&captureFullPage, "full-page", false, "capture the full scroll height")
	captureCmd.Flags().StringVar(&captureFormat, "format", "", "image format (png/jpeg/webp)")
	captureCmd.Flags().IntVar(&captureQuality, "quality", 0, "image quality 1-100 (lossy formats only)")
	captureCmd.Flags().BoolVar(&captureMobile, "mobile", false, "emulate a mobile device")
	captureCmd.Flags().BoolVar(&captureDarkMode, "dark-mode", false, "prefer dark color scheme")
	captureCmd.Flags().IntVar(&captureDelay, "delay", 0, "wait before capturing, in milliseconds")
	captureCmd.Flags().StringVar(&captureSelector, "selector", "", "capture a single element matching this CSS selector")
	captureCmd.Flags().IntVar(&captureCacheTTL, "cache-ttl", 0, "server-side cache TTL in seconds")
	captureCmd.Flags().StringVarP(&captureOutput, "output", "o", "", "output file (single URL) or directory")
	captureCmd.Flags().IntVar(&concurrency, "concurrency", 0, "parallel captures (default from config)")
}

// sharedOptions builds the rendering options common to capture and batch
func sharedOptions() screenshot.Options {
	return screenshot.Options{
		Width:    captureWidth,
		Height:   captureHeight,
		FullPage: captureFullPage,
		Format:   screenshot.Format(captureFormat),
		Quality:  captureQuality,
		Mobile:   captureMobile,
		DarkMode: captureDarkMode,
		DelayMS:  captureDelay,
		Selector: captureSelector,
		CacheTTL: captureCacheTTL,
	}
}

func runCapture(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	opts := sharedOptions()

	if len(args) == 1 {
		target := args[0]
		result, err := client.Capture(ctx, screenshot.CaptureOptions{URL: target, Options: opts})
		if err != nil {
			return err
		}

		path := captureOutput
		if path == "" {
			path = outputFilename(target, result.ContentType)
		}
		if err := os.WriteFile(path, result.Data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}

		fmt.Printf("✓ %s → %s (%d bytes, %dms", target, path, result.Size, result.DurationMS)
		if result.Cached {
			fmt.Printf(", cached")
		}
		fmt.Println(")")
		return nil
	}

	outputDir := captureOutput
	if outputDir == "" {
		outputDir = cfg.Output.Dir
	}

	limit := concurrency
	if limit <= 0 {
		limit = cfg.Output.Concurrency
	}

	logger.Info().Int("urls", len(args)).Int("concurrency", limit).Msg("Capturing screenshots")

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, target := range args {
		target := target
		g.Go(func() error {
			result, err := client.Capture(ctx, screenshot.CaptureOptions{URL: target, Options: opts})
			if err != nil {
				return fmt.Errorf("%s: %w", target, err)
			}

			path := filepath.Join(outputDir, outputFilename(target, result.ContentType))
			if err := os.WriteFile(path, result.Data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}

			fmt.Printf("✓ %s → %s (%d bytes)\n", target, path, result.Size)
			return nil
		})
	}

	return g.Wait()
}

// outputFilename derives a safe file name from a target URL and the
// response content type
func outputFilename(rawURL, contentType string) string {
	name := rawURL
	if parsed, err := url.Parse(rawURL); err == nil && parsed.Host != "" {
		name = parsed.Host + parsed.Path
	}

	name = strings.Trim(name, "/")
	name = strings.NewReplacer("/", "_", ":", "_", "?", "_", "&", "_", "=", "_").Replace(name)
	if name == "" {
		name = "screenshot"
	}

	ext := "png"
	switch contentType {
	case "image/jpeg":
		ext = "jpg"
	case "image/webp":
		ext = "webp"
	}

	return name + "." + ext
}

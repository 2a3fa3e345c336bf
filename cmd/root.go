package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/snapdock/snapdock/config"
	"github.com/snapdock/snapdock/screenshot"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
	client  *screenshot.Client
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "snapdock",
	Short: "Capture website screenshots through the Snapdock API",
	Long: `snapdock is a CLI for the Snapdock screenshot service. It renders
single pages, submits server-side batches of up to 10 URLs, and reports
quota usage for your API key.`,
	PersistentPreRunE: initializeApp,
}

// SetVersion sets the version information for the root command
func SetVersion(version, buildTime string) {
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, buildTime)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, describeError(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
}

// initializeApp initializes the configuration and the API client
func initializeApp(cmd *cobra.Command, args []string) error {
	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger = setupLogger(cfg.Logging)

	// Create the Snapdock client
	client, err = screenshot.NewClient(cfg.Snapdock.APIKey,
		screenshot.WithBaseURL(cfg.Snapdock.URL),
		screenshot.WithTimeout(time.Duration(cfg.Snapdock.TimeoutSeconds)*time.Second),
		screenshot.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create Snapdock client: %w", err)
	}

	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "trace":
		level = zerolog.TraceLevel
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format; only colorize real terminals
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// describeError adds actionable hints for the typed API errors
func describeError(err error) string {
	var rateLimitErr *screenshot.RateLimitError
	if errors.As(err, &rateLimitErr) && rateLimitErr.RetryAfter != nil {
		return fmt.Sprintf("%v (retry after %ds)", err, *rateLimitErr.RetryAfter)
	}

	var authErr *screenshot.AuthenticationError
	if errors.As(err, &authErr) {
		return fmt.Sprintf("%v (check snapdock.api_key in your config)", err)
	}

	return err.Error()
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/smart-prospective/spctl/config"
	"github.com/smart-prospective/spctl/filter"
	"github.com/smart-prospective/spctl/spapi"
)

// skipClientAnnotation marks commands that run without API credentials
const skipClientAnnotation = "spctl/skip-client"

var (
	cfgFile string
	cfg     *config.Config
	logger  = zerolog.Nop()
	client  spapi.API
	presets *filter.Presets

	compiler = filter.NewCompiler(filter.WithCache(32))

	// Persistent flags
	jsonOutput bool
	filterExpr string
	preset     string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "spctl",
	Short: "Manage Smart Prospective digital signage from the command line",
	Long: `spctl talks to the Smart Prospective API to manage medias, materials (screens),
material groups, buildings, users and webview templates.

Credentials come from the config file (api.public_key, api.secret_key) or from
the SP_PUBLIC_KEY and SP_PRIVATE_KEY environment variables.`,
	SilenceUsage:      true,
	PersistentPreRunE: initializeApp,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	closeSession()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml, ~/.spctl/config.yaml or /etc/spctl/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().StringVarP(&filterExpr, "filter", "f", "", "filter expression applied to listed records")
	rootCmd.PersistentFlags().StringVarP(&preset, "preset", "p", "", "use a filter preset from config")
}

// initializeApp loads the configuration and creates the API client
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging, colorTerminal(os.Stderr))
	if cfg.File != "" {
		logger.Debug().Str("file", cfg.File).Msg("Configuration loaded")
	}

	presets = filter.NewPresets(filter.WithCompiler(compiler))
	if err := presets.RegisterAll(cfg.Filter.Presets); err != nil {
		return fmt.Errorf("invalid filter preset: %w", err)
	}

	if skipsClient(cmd) {
		return nil
	}

	c, err := newClient(cfg)
	if err != nil {
		if errors.Is(err, spapi.ErrMissingCredentials) {
			return fmt.Errorf("%w (set api.public_key and api.secret_key, or SP_PUBLIC_KEY and SP_PRIVATE_KEY)", err)
		}
		return fmt.Errorf("failed to create Smart Prospective client: %w", err)
	}
	client = c
	return nil
}

func newClient(cfg *config.Config) (*spapi.Client, error) {
	userAgent := cfg.API.UserAgent
	if userAgent == "" {
		userAgent = "spctl/" + version
	}

	return spapi.NewClient(cfg.API.PublicKey, cfg.API.SecretKey, logger,
		spapi.WithBaseURL(cfg.API.URL),
		spapi.WithTimeout(cfg.API.Timeout),
		spapi.WithMaxRetries(cfg.API.MaxRetries),
		spapi.WithUserAgent(userAgent),
		spapi.WithDownloadDir(cfg.Download.Dir),
	)
}

func skipsClient(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[skipClientAnnotation]; ok {
			return true
		}
	}
	return false
}

// closeSession logs out when the run opened a session
func closeSession() {
	if client == nil || cfg == nil || !cfg.Session.LogoutOnExit || !client.LoggedIn() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Logout(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to log out")
	}
}

func colorTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// setupLogger configures the zerolog logger. Color is only used on a terminal.
func setupLogger(cfg config.LoggingConfig, terminal bool) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !terminal,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// selectRecords applies --filter or --preset. --filter wins when both are set.
func selectRecords(records []spapi.Record) ([]spapi.Record, error) {
	switch {
	case filterExpr != "":
		f, err := compiler.Compile(filterExpr)
		if err != nil {
			return nil, fmt.Errorf("invalid filter expression: %w", err)
		}
		logger.Debug().Str("filter", f.Expression()).Int("records", len(records)).Msg("Filtering records")
		return filter.Apply(f, records), nil
	case preset != "":
		if presets == nil {
			return nil, fmt.Errorf("preset '%s' not found in config", preset)
		}
		// config keys are case-insensitive
		return presets.Apply(strings.ToLower(preset), records)
	default:
		return records, nil
	}
}

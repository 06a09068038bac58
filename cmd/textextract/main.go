package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hyperifyio/textextract/internal/app"
)

func main() {
	// Logging setup; replaced once configuration is known
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}

// serveFlags collects the raw flag values; only flags the user actually set
// override file and env configuration.
type serveFlags struct {
	configPath string
	envFiles   []string
	host       string
	port       int
	style      string
	maxBody    string
	metrics    bool
	verbose    bool
	logJSON    bool
	logFile    string
}

func newRootCmd() *cobra.Command {
	var f serveFlags
	root := &cobra.Command{
		Use:           "textextract",
		Short:         "Extract emails, URLs, phone numbers, card numbers and times from text",
		Long:          "textextract serves a web form that scans pasted text with a fixed set of regular expressions.\nRunning it without a subcommand starts the server.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd, &f)
		},
	}
	bindServeFlags(root.Flags(), &f)

	var sf serveFlags
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the extraction web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd, &sf)
		},
	}
	bindServeFlags(serveCmd.Flags(), &sf)

	root.AddCommand(serveCmd, newExtractCmd(), newVersionCmd())
	return root
}

func bindServeFlags(fs *pflag.FlagSet, f *serveFlags) {
	def := app.DefaultConfig()
	fs.StringVar(&f.configPath, "config", os.Getenv("TEXTEXTRACT_CONFIG"), "Path to a YAML or JSON config file")
	fs.StringSliceVar(&f.envFiles, "env-file", []string{".env"}, "Dotenv files to load before reading the environment (missing files are skipped)")
	fs.StringVar(&f.host, "host", def.Host, "Listen host")
	fs.IntVar(&f.port, "port", def.Port, "Listen port (0 picks a free port)")
	fs.StringVar(&f.style, "style", def.Style, `Result presentation: "list" or "pre"`)
	fs.StringVar(&f.maxBody, "max-body", humanize.IBytes(uint64(def.MaxBodyBytes)), "Maximum request body size, e.g. 512KiB or 2MB; 0 or off disables the limit")
	fs.BoolVar(&f.metrics, "metrics", false, "Expose Prometheus metrics on GET /metrics")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Verbose logging")
	fs.BoolVar(&f.logJSON, "log-json", false, "Log JSON lines instead of console output")
	fs.StringVar(&f.logFile, "log-file", "", "Also write JSON logs to this file, rotated by size")
}

// buildConfig layers defaults, config file, environment and explicitly set
// flags, in that order of increasing precedence.
func buildConfig(fs *pflag.FlagSet, f *serveFlags) (app.Config, error) {
	if err := app.LoadEnvFiles(f.envFiles...); err != nil {
		return app.Config{}, err
	}
	cfg := app.DefaultConfig()
	if f.configPath != "" {
		fc, err := app.LoadConfigFile(f.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		if err := app.ApplyFileConfig(&cfg, fc); err != nil {
			return cfg, err
		}
	}
	app.ApplyEnvOverrides(&cfg)

	if fs.Changed("host") {
		cfg.Host = f.host
	}
	if fs.Changed("port") {
		cfg.Port = f.port
	}
	if fs.Changed("style") {
		cfg.Style = f.style
	}
	if fs.Changed("max-body") {
		n, err := app.ParseSize(f.maxBody)
		if err != nil {
			return cfg, fmt.Errorf("--max-body: %w", err)
		}
		cfg.MaxBodyBytes = n
	}
	if fs.Changed("metrics") {
		cfg.MetricsEnabled = f.metrics
	}
	if fs.Changed("verbose") {
		cfg.Verbose = f.verbose
	}
	if fs.Changed("log-json") {
		cfg.LogJSON = f.logJSON
	}
	if fs.Changed("log-file") {
		cfg.LogFile = f.logFile
	}
	return cfg, app.ValidateConfig(cfg)
}

func serve(cmd *cobra.Command, f *serveFlags) error {
	cfg, err := buildConfig(cmd.Flags(), f)
	if err != nil {
		return err
	}
	closer := setupLogging(cfg, os.Stderr)
	defer closer.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, cfg)
}

func run(ctx context.Context, cfg app.Config) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	return a.Run(ctx)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), app.BuildInfo())
		},
	}
}

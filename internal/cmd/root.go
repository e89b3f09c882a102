package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/scarepick/internal/config"
	"github.com/felixgeelhaar/scarepick/internal/library"
	"github.com/felixgeelhaar/scarepick/internal/log"
	"github.com/felixgeelhaar/scarepick/internal/telemetry"
	"github.com/felixgeelhaar/scarepick/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "scarepick",
	Short: "Find tonight's horror movie",
	Long: `scarepick asks a few questions about your mood and walks a branching
quiz until it lands on a horror movie recommendation.

Play in the terminal, serve the quiz over HTTP, or convert spreadsheet
exports into the quiz data files.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

var (
	cfgFile   string
	logLevel  string
	logFormat string

	dataQuestions string
	dataMovies    string
	dataRoot      string
)

// settings is the effective configuration, resolved before any command runs.
var settings = config.Default()

// finishTrace ends the command span and flushes pending spans.
var finishTrace = func(error) {}

// ExecuteContext runs the root command with ctx, which commands use for
// cancellation.
func ExecuteContext(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	finishTrace(err)
	return err
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", config.DefaultPath, "config file")
	flags.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&logFormat, "log-format", "", "log format (text, json)")
	flags.StringVar(&dataQuestions, "questions", "", "questions data file (default: built-in)")
	flags.StringVar(&dataMovies, "movies", "", "movies data file (default: built-in)")
	flags.StringVar(&dataRoot, "root", "", "id of the first question")
}

// setup loads the config file and applies flag overrides on top. The
// default config path may be absent; an explicit one must exist.
func setup(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	cfg, err := config.Load(cfgFile, !flags.Changed("config"))
	if err != nil {
		return err
	}

	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	if flags.Changed("questions") {
		cfg.Data.Questions = dataQuestions
	}
	if flags.Changed("movies") {
		cfg.Data.Movies = dataMovies
	}
	if flags.Changed("root") {
		cfg.Data.Root = dataRoot
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	settings = cfg
	log.SetDefaultLogger(newLogger(cfg, "text"))
	startTrace(cmd, cfg)
	return nil
}

// startTrace installs the tracer and opens a span covering the command.
// Tracing problems never stop a command.
func startTrace(cmd *cobra.Command, cfg *config.Config) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	shutdown, err := telemetry.InitProvider(ctx, telemetryConfig(cfg))
	if err != nil {
		log.DefaultLogger().WithError(err).Warn("tracing disabled")
		return
	}

	ctx, span := telemetry.StartCommandSpan(ctx, cmd.CommandPath())
	cmd.SetContext(ctx)
	finishTrace = func(err error) {
		if err != nil {
			telemetry.RecordError(span, err)
		} else {
			telemetry.RecordSuccess(span)
		}
		span.End()

		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			log.DefaultLogger().WithError(err).Debug("flushing spans failed")
		}
	}
}

func telemetryConfig(cfg *config.Config) telemetry.Config {
	tc := telemetry.DefaultConfig()
	tc.ServiceVersion = version.Version
	tc.Enabled = cfg.Telemetry.Enabled
	tc.Endpoint = cfg.Telemetry.Endpoint
	tc.Insecure = cfg.Telemetry.Insecure
	tc.Environment = cfg.Telemetry.Environment
	tc.SampleRate = cfg.Telemetry.SampleRate
	return tc
}

// newLogger builds the logger for cfg, using defaultFormat when the
// config leaves the format open.
func newLogger(cfg *config.Config, defaultFormat string) *log.Logger {
	lc := log.ParseConfig(cfg.Log.Level, cfg.Log.FormatFor(defaultFormat))
	lc.ServiceVersion = version.Version
	return log.New(lc)
}

func dataSource(cfg *config.Config) library.Source {
	return library.Source{
		Questions: cfg.Data.Questions,
		Movies:    cfg.Data.Movies,
		Root:      cfg.Data.Root,
	}
}

// loadLibrary loads the configured data and logs a missing root question.
func loadLibrary(ctx context.Context, cfg *config.Config) (*library.Library, error) {
	lib, err := library.Load(ctx, dataSource(cfg))
	if err != nil {
		return nil, err
	}
	logger := log.DefaultLogger()
	if err := lib.Check(); err != nil {
		logger.WithError(err).Warn("quiz data has no root question")
	}
	logger.Debug("quiz data loaded", "questions", lib.Graph.Len(), "movies", lib.Store.Len(), "fingerprint", lib.Fingerprint)
	return lib, nil
}

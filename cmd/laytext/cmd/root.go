// Package cmd implements the laytext command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/laytext/internal/batch"
	"github.com/MeKo-Tech/laytext/internal/config"
	"github.com/MeKo-Tech/laytext/internal/version"
)

// Exit codes returned by Execute.
const (
	ExitOK          = 0
	ExitAllFailed   = 1
	ExitInvalid     = 2
	ExitInterrupted = 130
)

// viperKeyAnnotation marks a flag with the configuration key it overrides.
const viperKeyAnnotation = "laytext_viper_key"

// Option customizes a command tree built by NewRootCommand.
type Option func(*app)

// WithEngineFactory replaces the OCR engine constructor.
func WithEngineFactory(f EngineFactory) Option {
	return func(a *app) { a.newEngine = f }
}

// WithViper loads configuration through v instead of a fresh instance.
func WithViper(v *viper.Viper) Option {
	return func(a *app) { a.v = v }
}

// app is the state shared by the commands of one tree.
type app struct {
	v         *viper.Viper
	cfgFile   string
	cfg       *config.Config
	logger    *slog.Logger
	newEngine EngineFactory
}

// NewRootCommand builds the laytext command tree.
func NewRootCommand(opts ...Option) *cobra.Command {
	a := &app{v: viper.New(), newEngine: DefaultEngine, logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}

	rootCmd := &cobra.Command{
		Use:   "laytext",
		Short: "Layout-aware OCR for scanned documents",
		Long: `laytext extracts text from scanned PDFs and images. It finds the text
blocks on each page, orders them into reading order (left-to-right or
right-to-left columns) and recognizes every block with Tesseract.

Examples:
  laytext extract scan.pdf
  laytext extract scans/ --recursive --profile arabic -o text/
  laytext layout page.png -o layout/
  laytext config init`,
		Version:           version.String(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.loadConfig,
	}

	d := config.DefaultConfig()
	fs := rootCmd.PersistentFlags()
	fs.StringVar(&a.cfgFile, "config", "", "config file (default is search in ., $XDG_CONFIG_HOME/laytext or $HOME/.config/laytext, /etc/laytext)")
	fs.BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	fs.String("log-level", d.LogLevel, "log level (debug, info, warn, error)")
	fs.String("profile", d.Profile, "configuration profile (default, arabic)")
	bindFlag(fs, "verbose", "verbose")
	bindFlag(fs, "log-level", "log_level")
	bindFlag(fs, "profile", "profile")

	rootCmd.AddCommand(
		newExtractCommand(a),
		newLayoutCommand(a),
		newConfigCommand(a),
		newVersionCommand(),
	)
	return rootCmd
}

// GetRootCommand returns a fresh command tree for tests.
func GetRootCommand(opts ...Option) *cobra.Command {
	return NewRootCommand(opts...)
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, opts ...Option) int {
	rootCmd := NewRootCommand(opts...)
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		_, _ = fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	}
	return ExitCode(err)
}

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.Is(err, batch.ErrAllFailed):
		return ExitAllFailed
	default:
		return ExitInvalid
	}
}

// bindFlag records the configuration key a flag overrides. The binding is
// made when the command runs so sibling commands can share key names.
func bindFlag(fs *pflag.FlagSet, name, key string) {
	_ = fs.SetAnnotation(name, viperKeyAnnotation, []string{key})
}

// loadConfig binds the executing command's flags, loads the configuration
// and installs the logger.
func (a *app) loadConfig(cmd *cobra.Command, _ []string) error {
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if keys := f.Annotations[viperKeyAnnotation]; len(keys) == 1 {
			bindErr = errors.Join(bindErr, a.v.BindPFlag(keys[0], f))
		}
	})
	if bindErr != nil {
		return fmt.Errorf("bind flags: %w", bindErr)
	}

	cfg, err := config.NewLoaderWithViper(a.v).LoadWithFile(a.cfgFile)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	a.cfg = cfg
	a.logger = newLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(a.logger)
	return nil
}

// newLogger writes JSON lines to w at the configured level.
func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	var level slog.Level
	if cfg.Verbose {
		level = slog.LevelDebug
	} else {
		switch cfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// skipConfig is a PersistentPreRunE for commands that work without a
// loaded configuration.
func skipConfig(*cobra.Command, []string) error { return nil }

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "version",
		Short:             "Print version information",
		Args:              cobra.NoArgs,
		PersistentPreRunE: skipConfig,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "laytext", version.String())
		},
	}
}

// Package cli implements nlu-cli, a thin debugging entry point that
// exercises pkg/nlu's façade the same way an embedding application would:
// load a model directory, parse an utterance, inject new gazetteer values.
package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/snipsco/snips-nlu-go/pkg/logging"
)

type rootFlags struct {
	configPath string
	debugMode  bool
	logFile    string

	fileCfg fileConfig
	closer  io.Closer
}

// NewRootCmd builds the nlu-cli command tree.
func NewRootCmd() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:   "nlu-cli",
		Short: "nlu-cli - inspect and exercise a trained NLU model",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags.configPath)
			if err != nil {
				return err
			}
			flags.fileCfg = cfg

			if !cmd.Flags().Changed("debug") && cfg.Debug {
				flags.debugMode = true
			}
			if !cmd.Flags().Changed("log-file") && cfg.LogFile != "" {
				flags.logFile = cfg.LogFile
			}

			return flags.setupLogging(cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if flags.closer != nil {
				return flags.closer.Close()
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "nlu-cli.yaml", "Path to the CLI defaults file")
	cmd.PersistentFlags().BoolVarP(&flags.debugMode, "debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&flags.logFile, "log-file", "", "Path to debug log file (default: stderr; only used with --debug)")

	cmd.AddCommand(newParseCmd(&flags))
	cmd.AddCommand(newInjectCmd(&flags))

	return cmd
}

// setupLogging mirrors the teacher's debug-gated rotating-file logging: with
// --debug and --log-file both set, logs rotate through pkg/logging; with
// --debug alone, logs go to stderr; without --debug, logging is discarded.
func (f *rootFlags) setupLogging(stderr io.Writer) error {
	if !f.debugMode {
		slog.SetDefault(slog.New(slog.DiscardHandler))
		return nil
	}

	if f.logFile == "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		return nil
	}

	rf, err := logging.NewRotatingFile(f.logFile)
	if err != nil {
		return err
	}
	f.closer = rf

	slog.SetDefault(slog.New(slog.NewTextHandler(rf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return nil
}

// Execute runs the command tree against args, writing to out/errOut.
func Execute(ctx context.Context, out, errOut io.Writer, args ...string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	return cmd.ExecuteContext(ctx)
}

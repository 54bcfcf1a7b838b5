// Package cli provides the tryzub command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Evge14n/tryzub/internal/compiler"
	"github.com/Evge14n/tryzub/internal/config"
	"github.com/Evge14n/tryzub/internal/frontend/lexer"
	"github.com/Evge14n/tryzub/internal/pipeline"
)

// Version is set at build time.
var Version = "0.1.0"

type configKey struct{}

type loggerKey struct{}

// ExitError carries a process exit status out of a command. Its
// diagnostics have already been printed.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "tryzub",
		Short: "Тризуб compiler and runtime",
		Long: `tryzub checks, runs and compiles programs written in Тризуб.

Programs run on an in-process JIT, or on the bytecode VM when they use
async functions or parallel loops. build produces a native executable
through the system C compiler.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			log := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
			if cfg.File != "" {
				log.Debug("config", "file", cfg.File)
			}
			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)
			ctx = context.WithValue(ctx, loggerKey{}, log)
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: nearest ./tryzub.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log compilation phases to stderr")
	rootCmd.PersistentFlags().String("color", config.ColorAuto, "colour diagnostics (auto|always|never)")
	rootCmd.PersistentFlags().Int("opt-level", 1, "optimization level, 0 disables folding and dead code elimination")
	rootCmd.PersistentFlags().Bool("case-insensitive-keywords", false, "match keywords after Unicode case folding")

	_ = rootCmd.RegisterFlagCompletionFunc("color", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.ColorAuto, config.ColorAlways, config.ColorNever}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newBuildCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newTokensCmd())
	rootCmd.AddCommand(newIRCmd())
	rootCmd.AddCommand(newBytecodeCmd())
	rootCmd.AddCommand(newReplCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// Execute runs the root command and returns the process exit status.
func Execute(ctx context.Context) int {
	err := NewRootCmd().ExecuteContext(ctx)
	var exit *ExitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &exit):
		return exit.Code
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// getConfig retrieves the config from the command context.
func getConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	return config.Default()
}

// getLogger retrieves the logger from the command context.
func getLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

func compilerOptions(cmd *cobra.Command, file string) compiler.Options {
	cfg := getConfig(cmd.Context())
	return compiler.Options{
		File:                    file,
		Engine:                  compiler.Engine(cfg.Engine),
		MaxCallDepth:            cfg.MaxCallDepth,
		Workers:                 cfg.Workers,
		OptLevel:                cfg.OptLevel,
		CaseInsensitiveKeywords: cfg.CaseInsensitiveKeywords,
		CC:                      cfg.CC,
		KeepC:                   cfg.KeepC,
		Stdout:                  cmd.OutOrStdout(),
		Logger:                  getLogger(cmd.Context()),
	}
}

func newPipeline(cmd *cobra.Command) *pipeline.Pipeline {
	cfg := getConfig(cmd.Context())
	return pipeline.New(pipeline.Options{
		Lexer:    lexer.Options{CaseInsensitiveKeywords: cfg.CaseInsensitiveKeywords},
		OptLevel: cfg.OptLevel,
		Logger:   getLogger(cmd.Context()),
	})
}

// report prints r's diagnostics and turns a failed result into an error.
func report(cmd *cobra.Command, r compiler.Result) error {
	if r.Diagnostics != nil && len(r.Diagnostics.Diagnostics()) > 0 {
		stderr := cmd.ErrOrStderr()
		color := getConfig(cmd.Context()).UseColor(stderr)
		if r.Fault != nil {
			r.Diagnostics.Emit(stderr, color)
		} else {
			r.Diagnostics.EmitAll(stderr, color)
		}
	}
	if r.Err != nil {
		return r.Err
	}
	if !r.Success {
		return &ExitError{Code: r.ExitStatus}
	}
	return nil
}

// emitUnit prints u's diagnostics and fails when any is an error.
func emitUnit(cmd *cobra.Command, u *pipeline.Unit) error {
	if len(u.Diagnostics.Diagnostics()) > 0 {
		stderr := cmd.ErrOrStderr()
		u.Diagnostics.EmitAll(stderr, getConfig(cmd.Context()).UseColor(stderr))
	}
	if u.HasErrors() {
		return &ExitError{Code: 1}
	}
	return nil
}

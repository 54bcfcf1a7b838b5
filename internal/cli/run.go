package cli

import (
	"github.com/spf13/cobra"

	"github.com/Evge14n/tryzub/internal/compiler"
	"github.com/Evge14n/tryzub/internal/config"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Run a program",
		Long: `Run checks a program and executes головна.

The auto engine uses the JIT and falls back to the bytecode VM for programs
with async functions or parallel loops. An integer returned from головна
becomes the exit status.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := compiler.Run(cmd.Context(), compilerOptions(cmd, args[0]))
			if err := report(cmd, r); err != nil {
				return err
			}
			getLogger(cmd.Context()).Debug("exit", "engine", r.Engine, "status", r.ExitStatus)
			if r.ExitStatus != 0 {
				return &ExitError{Code: r.ExitStatus}
			}
			return nil
		},
	}

	cmd.Flags().String("engine", config.EngineAuto, "execution engine (auto|vm|jit)")
	cmd.Flags().Int("max-call-depth", 1024, "recursion limit on the VM")
	cmd.Flags().Int("workers", 0, "worker pool size for parallel loops, 0 for one per CPU")

	_ = cmd.RegisterFlagCompletionFunc("engine", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.EngineAuto, config.EngineVM, config.EngineJIT}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

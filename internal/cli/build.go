package cli

import (
	"github.com/spf13/cobra"

	"github.com/Evge14n/tryzub/colors"
	"github.com/Evge14n/tryzub/internal/compiler"
)

func newBuildCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "build <file>",
		Short: "Compile a program to a native executable",
		Long: `Build lowers the program to C and compiles it with the C compiler named by
--cc, TRYZUB_CC, CC, or the first of cc, gcc and clang on the PATH.

Async functions and parallel loops are not supported by native builds.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := compilerOptions(cmd, args[0])
			opts.Output = output
			r := compiler.Build(cmd.Context(), opts)
			if err := report(cmd, r); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			p := colors.NewPrinter(out, getConfig(cmd.Context()).UseColor(out))
			p.Println(colors.GREEN, "built "+opts.OutputPath())
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "executable path (default: source name without extension)")
	cmd.Flags().String("cc", "", "C compiler")
	cmd.Flags().Bool("keep-c", false, "keep the generated C next to the executable")
	return cmd
}

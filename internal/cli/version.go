package cli

import (
	"fmt"
	goruntime "runtime"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "tryzub v%s\n", Version)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "built with %s %s/%s\n", goruntime.Version(), goruntime.GOOS, goruntime.GOARCH)
		},
	}
}

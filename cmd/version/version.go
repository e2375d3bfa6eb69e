package version

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Build information, set via ldflags at release time.
var (
	CoreVersion   = "unknown"
	GolangVersion = "unknown"
	BuildTime     = "unknown"
)

// NewVersionCmd creates a new cobra.Command for the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "version",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Print the version number of the application",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Core Version: v%s\n", CoreVersion)
			fmt.Printf("Go Version: %s\n", GolangVersion)
			fmt.Printf("Build Time: %s\n", BuildTime)
		},
	}
}

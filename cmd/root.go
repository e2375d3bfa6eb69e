package cmd

import (
	goerrors "errors"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/tagscout/tagscout/cmd/detect"
	"github.com/tagscout/tagscout/cmd/index"
	"github.com/tagscout/tagscout/cmd/version"
	"github.com/tagscout/tagscout/pkg/shared/config"
	"github.com/tagscout/tagscout/pkg/shared/errors"
	"github.com/tagscout/tagscout/pkg/shared/logger"
)

var (
	AppConfig  *config.Config
	rootLogger hclog.Logger
	rootCmd    = &cobra.Command{
		Use:                   "tagscout [command]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Tagscout identifies the released version of a web application.",
		Long: `Tagscout identifies which tagged version of a web application is running on
a live deployment, by comparing content hashes of files served over HTTP
against an index built from the application's tag history.

Use the 'index' command to build the index from a source code repository.
Then use the 'detect' command to run tag detection against a web application.`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(index.IndexCmd)
	rootCmd.AddCommand(detect.DetectCmd)
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		var cmdErr *errors.CommandError
		if goerrors.As(err, &cmdErr) {
			return cmdErr.ExitCode
		}
		return 1
	}
	return 0
}

func initConfig() {
	var err error

	AppConfig, err = config.LoadConfig("config.yml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config file: %v\n", err)
		os.Exit(1)
	}

	rootLogger = logger.NewLogger(AppConfig, "tagscout")

	index.Init(AppConfig, rootLogger)
	detect.Init(AppConfig, rootLogger)
}

package detect

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/tagscout/tagscout/internal/detector"
	"github.com/tagscout/tagscout/internal/fingerprint"
	"github.com/tagscout/tagscout/pkg/shared/config"
	"github.com/tagscout/tagscout/pkg/shared/errors"
	"github.com/tagscout/tagscout/pkg/shared/httpclient"
)

// Global variables for configuration and command arguments
var (
	AppConfig     *config.Config
	logger        hclog.Logger
	detectOptions RunOptionsDetect

	exampleDetectUsage = `  # Detect the deployed version of a web application
  tagscout detect -i index.json https://app.example.com/

  # Probe through stdin with an extra header and a path rewrite config
  cat index.json | tagscout detect -H "Authorization: Bearer TOKEN" -c rewrite.json https://app.example.com/

  # Probe every indexed file for a full tally
  tagscout detect -i index.json --exhaustive https://app.example.com/`
)

// RunOptionsDetect holds the flag values of the detect command.
type RunOptionsDetect struct {
	Headers       []string
	InputPath     string
	ConfigPath    string
	Exhaustive    bool
	SkipAnyDigest bool
	Verbose       bool
}

// DetectCmd represents the command probing a live target against an index.
var DetectCmd = &cobra.Command{
	Use:                   "detect [-i FILE] [-c FILE] [-H HEADER] [--exhaustive] URL",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleDetectUsage,
	Short:                 "Detect the tagged version of a web application",
	Long: `Detect the tagged version of a web application.

Files from the index are requested from the target in index order. Each body
hash narrows the set of tags consistent with the evidence, and in the default
mode detection stops as soon as a single tag remains. The ranked tag tally is
written to stdout as JSON; progress and the best match go to stderr.`,
	RunE: runDetectCommand,
}

// Init initializes the global configuration variables for the detect command.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

func runDetectCommand(cmd *cobra.Command, args []string) error {
	if err := validateDetectArgs(&detectOptions, args); err != nil {
		logger.Error("invalid detect arguments", "error", err)
		return errors.NewCommandError(fmt.Errorf("invalid detect arguments: %w", err), 1)
	}
	if detectOptions.Verbose {
		logger.SetLevel(hclog.Debug)
	}

	idx, err := loadIndex(detectOptions.InputPath)
	if err != nil {
		logger.Error("failed to load index", "error", err)
		return errors.NewCommandError(err, 1)
	}

	rules, err := loadRewriteRules(detectOptions.ConfigPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return errors.NewCommandError(err, 1)
	}

	client := httpclient.InitializeRestyClient(logger, AppConfig)
	fetcher, err := detector.NewFetcher(client, args[0], parseHeaders(detectOptions.Headers), logger)
	if err != nil {
		logger.Error("failed to prepare fetcher", "error", err)
		return errors.NewCommandError(err, 1)
	}

	engine := detector.NewEngine(fetcher, rules, detector.Options{
		Exhaustive:    detectOptions.Exhaustive,
		SkipAnyDigest: detectOptions.SkipAnyDigest,
	}, logger)

	result := engine.Run(idx)

	if result.BestMatch != "" {
		logger.Info("best matched tag", "tag", result.BestMatch)
	}
	logger.Info("matched tags in descending order", "count", len(result.Tags))

	data, err := json.Marshal(result.Tags)
	if err != nil {
		logger.Error("error serializing JSON result", "error", err)
		return errors.NewCommandError(fmt.Errorf("error serializing JSON result: %w", err), 2)
	}
	fmt.Println(string(data))

	return nil
}

// loadIndex reads the ranked index from the given file, or stdin when empty.
func loadIndex(path string) (fingerprint.Index, error) {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open index file: %w", err)
		}
		defer f.Close()
		r = f
	}
	return fingerprint.LoadIndex(r)
}

// loadRewriteRules reads the optional path rewrite config.
func loadRewriteRules(path string) ([]detector.RewriteRule, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()
	return detector.LoadRewriteRules(f)
}

func init() {
	DetectCmd.Flags().StringArrayVarP(&detectOptions.Headers, "header", "H", nil, "Extra header to include in every request, as 'Name: Value'.")
	DetectCmd.Flags().StringVarP(&detectOptions.InputPath, "input", "i", "", "Index file to read from; defaults to stdin.")
	DetectCmd.Flags().StringVarP(&detectOptions.ConfigPath, "config", "c", "", "Config file with path rewrite patterns.")
	DetectCmd.Flags().BoolVar(&detectOptions.Exhaustive, "exhaustive", false, "Probe every indexed file; disables skipping and early stop.")
	DetectCmd.Flags().BoolVar(&detectOptions.SkipAnyDigest, "skip-any-digest", false, "Consult every digest of an entry in the skip heuristic, not only the first.")
	DetectCmd.Flags().BoolVarP(&detectOptions.Verbose, "verbose", "v", false, "Print verbose status information.")
	DetectCmd.Flags().BoolP("help", "h", false, "Show help for the detect command.")
}

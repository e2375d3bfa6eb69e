package index

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/tagscout/tagscout/internal/git"
	"github.com/tagscout/tagscout/internal/indexer"
	"github.com/tagscout/tagscout/pkg/shared/config"
	"github.com/tagscout/tagscout/pkg/shared/errors"
	"github.com/tagscout/tagscout/pkg/shared/files"
)

// Global variables for configuration and command arguments
var (
	AppConfig    *config.Config
	logger       hclog.Logger
	indexOptions RunOptionsIndex

	exampleIndexUsage = `  # Index JS and CSS files of the repository in the current directory
  tagscout index --include "*.{js,css}" -o index.json

  # Index only the static assets directory, excluding source maps
  tagscout index --include-prefix static --exclude "*.map" -o index.json

  # Index a remote repository over SSH
  tagscout index --auth-type ssh-key --ssh-key ~/.ssh/id_rsa -o index.json git@github.com:org/app.git`
)

// RunOptionsIndex holds the flag values of the index command.
type RunOptionsIndex struct {
	Include       []string
	IncludeDir    []string
	IncludePrefix []string
	Exclude       []string
	ExcludeDir    []string
	ExcludePrefix []string
	OutputPath    string
	Verbose       bool
	AuthType      string
	SSHKey        string
}

// IndexCmd represents the command building the per-tag hash index.
var IndexCmd = &cobra.Command{
	Use:                   "index [--include PATTERN] [--exclude PATTERN] [-o FILE] [TARGET]",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleIndexUsage,
	Short:                 "Index the tag history of a source code repository",
	Long: `Index the tag history of a source code repository.

TARGET is a local working tree (default '.') or a remote clone URL. Every tag
is checked out in turn and the included files are hashed, producing a JSON
index ordered so the most version-discriminating files come first.

PATTERN supports glob expressions with {a,b} alternatives. For example,
--include "*.{css,js}" matches any file ending with '.css' or '.js'.`,
	RunE: runIndexCommand,
}

// Init initializes the global configuration variables for the index command.
func Init(cfg *config.Config, l hclog.Logger) {
	AppConfig = cfg
	logger = l
}

func runIndexCommand(cmd *cobra.Command, args []string) error {
	if err := validateIndexArgs(&indexOptions, args); err != nil {
		logger.Error("invalid index arguments", "error", err)
		return errors.NewCommandError(fmt.Errorf("invalid index arguments: %w", err), 1)
	}
	if indexOptions.Verbose {
		logger.SetLevel(hclog.Debug)
	}

	target := "."
	if len(args) == 1 {
		target = args[0]
	}

	repo, cleanup, err := openTarget(target)
	if err != nil {
		logger.Error("failed to open indexing target", "target", target, "error", err)
		return errors.NewCommandError(err, 1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	filter, err := indexer.NewFilter(patternsFromOptions(&indexOptions))
	if err != nil {
		logger.Error("invalid pattern", "error", err)
		return errors.NewCommandError(err, 1)
	}

	builder := indexer.NewBuilder(repo, filter, prefixRoots(&indexOptions), logger)
	idx, err := builder.Build()
	if err != nil {
		logger.Error("indexing failed", "error", err)
		return errors.NewCommandError(fmt.Errorf("indexing failed: %w", err), 2)
	}

	indexer.Rank(idx)

	data, err := idx.Marshal()
	if err != nil {
		logger.Error("error marshaling the index", "error", err)
		return errors.NewCommandError(fmt.Errorf("error marshaling the index: %w", err), 2)
	}

	if indexOptions.OutputPath == "" {
		fmt.Println(string(data))
	} else {
		if err := files.WriteJsonFile(indexOptions.OutputPath, data); err != nil {
			logger.Error("failed to write index", "error", err)
			return errors.NewCommandError(err, 2)
		}
		logger.Info("index saved to file", "path", indexOptions.OutputPath, "files", len(idx))
	}

	logger.Info("index command completed successfully")
	return nil
}

// openTarget opens a local working tree, or clones a remote URL into a
// temporary directory. The returned cleanup removes the clone.
func openTarget(target string) (*git.Repository, func(), error) {
	gitClient := git.New(logger, AppConfig)

	if !isRemoteTarget(target) {
		repo, err := gitClient.OpenRepository(target)
		if err != nil {
			return nil, nil, fmt.Errorf("must be run inside a git repository: %w", err)
		}
		return repo, nil, nil
	}

	tmpDir, err := os.MkdirTemp("", "tagscout-index-")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create clone directory: %w", err)
	}
	cleanup := func() { os.RemoveAll(tmpDir) }

	repo, err := gitClient.CloneRepository(&git.CloneOptions{
		URL:            target,
		AuthType:       indexOptions.AuthType,
		Username:       os.Getenv("TAGSCOUT_GIT_USERNAME"),
		Token:          os.Getenv("TAGSCOUT_GIT_TOKEN"),
		SSHKey:         indexOptions.SSHKey,
		SSHKeyPassword: os.Getenv("TAGSCOUT_SSH_KEY_PASSWORD"),
	}, tmpDir)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return repo, cleanup, nil
}

// patternsFromOptions carries the six flag lists into the filter.
// The .git directory is never indexed unless the user supplies their own
// directory exclusions.
func patternsFromOptions(options *RunOptionsIndex) indexer.Patterns {
	excludeDir := options.ExcludeDir
	if len(excludeDir) == 0 {
		excludeDir = []string{".git"}
	}
	return indexer.Patterns{
		Include:       options.Include,
		IncludeDir:    options.IncludeDir,
		IncludePrefix: options.IncludePrefix,
		Exclude:       options.Exclude,
		ExcludeDir:    excludeDir,
		ExcludePrefix: options.ExcludePrefix,
	}
}

// prefixRoots returns the walk roots: the include prefixes, or the tree root.
func prefixRoots(options *RunOptionsIndex) []string {
	if len(options.IncludePrefix) == 0 {
		return []string{"."}
	}
	roots := make([]string, 0, len(options.IncludePrefix))
	for _, p := range options.IncludePrefix {
		roots = append(roots, indexer.NormalizePrefix(p))
	}
	return roots
}

func init() {
	IndexCmd.Flags().StringArrayVar(&indexOptions.Include, "include", nil, "Include only files whose base name matches PATTERN.")
	IndexCmd.Flags().StringArrayVar(&indexOptions.IncludeDir, "include-dir", nil, "Include only directories whose base name matches PATTERN.")
	IndexCmd.Flags().StringArrayVar(&indexOptions.IncludePrefix, "include-prefix", nil, "Include only directories whose path matches PATTERN as prefix.")
	IndexCmd.Flags().StringArrayVar(&indexOptions.Exclude, "exclude", nil, "Exclude all files whose base name matches PATTERN.")
	IndexCmd.Flags().StringArrayVar(&indexOptions.ExcludeDir, "exclude-dir", nil, "Exclude all directories whose base name matches PATTERN.")
	IndexCmd.Flags().StringArrayVar(&indexOptions.ExcludePrefix, "exclude-prefix", nil, "Exclude all directories whose path matches PATTERN as prefix.")
	IndexCmd.Flags().StringVarP(&indexOptions.OutputPath, "output", "o", "", "File to write the index to; defaults to stdout.")
	IndexCmd.Flags().BoolVarP(&indexOptions.Verbose, "verbose", "v", false, "Print verbose status information.")
	IndexCmd.Flags().StringVar(&indexOptions.AuthType, "auth-type", "", "Authentication type for a remote TARGET (http, ssh-key, ssh-agent).")
	IndexCmd.Flags().StringVar(&indexOptions.SSHKey, "ssh-key", "", "Path to the SSH key for auth-type 'ssh-key'.")
	IndexCmd.Flags().BoolP("help", "h", false, "Show help for the index command.")
}

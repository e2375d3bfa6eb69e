package git

import (
	"fmt"
	"path/filepath"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/hashicorp/go-hclog"

	"github.com/tagscout/tagscout/pkg/shared/config"
)

// Client wraps repository access with configuration and logging.
type Client struct {
	logger       hclog.Logger
	timeout      time.Duration
	globalConfig *config.Config
}

// New initializes a new Git client with the given parameters.
func New(logger hclog.Logger, globalConfig *config.Config) *Client {
	timeout := config.DefaultGitClientTimeout
	if globalConfig != nil {
		timeout = config.SetThen(globalConfig.GitClient.Timeout, timeout)
	}
	return &Client{
		logger:       logger,
		timeout:      timeout,
		globalConfig: globalConfig,
	}
}

// Repository is an opened working tree with tag history.
type Repository struct {
	repo   *gogit.Repository
	logger hclog.Logger

	// Root is the absolute path of the working tree. Checkouts mutate it in
	// place, so it must be read fully between checkouts.
	Root string
}

// OpenRepository opens the repository enclosing sourceFolder, walking up the
// directory tree to find the repository root.
func (c *Client) OpenRepository(sourceFolder string) (*Repository, error) {
	if absSource, err := filepath.Abs(sourceFolder); err == nil {
		sourceFolder = absSource
	}

	root, err := findGitRepositoryPath(sourceFolder)
	if err != nil {
		return nil, err
	}

	repo, err := gogit.PlainOpen(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	return &Repository{repo: repo, logger: c.logger, Root: root}, nil
}

// findGitRepositoryPath finds a git repository path for a given source folder.
func findGitRepositoryPath(sourceFolder string) (string, error) {
	if sourceFolder == "" {
		return "", fmt.Errorf("source folder is not set")
	}

	for {
		_, err := gogit.PlainOpen(sourceFolder)
		if err == nil {
			return sourceFolder, nil
		}

		sourceFolder = filepath.Dir(sourceFolder)

		if sourceFolder == filepath.Dir(sourceFolder) {
			break
		}
	}

	return "", fmt.Errorf("source folder is not a git repository")
}

// Tags returns tag names in reference order.
func (r *Repository) Tags() ([]string, error) {
	iter, err := r.repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	var tags []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		tags = append(tags, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}
	return tags, nil
}

// CheckoutTag force-checks-out the working tree at the given tag.
// Annotated tags are peeled to their target commit by revision resolution.
func (r *Repository) CheckoutTag(tag string) error {
	w, err := r.repo.Worktree()
	if err != nil {
		r.logger.Error("error accessing worktree", "error", err, "root", r.Root)
		return fmt.Errorf("error accessing worktree: %w", err)
	}

	h, err := r.repo.ResolveRevision(plumbing.Revision(plumbing.NewTagReferenceName(tag).String()))
	if err != nil {
		r.logger.Error("error resolving tag", "error", err, "tag", tag)
		return fmt.Errorf("error resolving tag %q: %w", tag, err)
	}

	r.logger.Debug("checking out tag", "tag", tag, "commit", h.String())
	if err := w.Checkout(&gogit.CheckoutOptions{
		Hash:  *h,
		Force: true,
	}); err != nil {
		r.logger.Error("error occurred during checkout", "error", err, "tag", tag)
		return fmt.Errorf("error occurred during checkout: %w", err)
	}
	return nil
}

package git

import (
	"context"
	"fmt"

	"github.com/gitsight/go-vcsurl"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"github.com/hashicorp/go-hclog"

	crssh "golang.org/x/crypto/ssh"

	"github.com/tagscout/tagscout/pkg/shared/config"
	"github.com/tagscout/tagscout/pkg/shared/files"
	log "github.com/tagscout/tagscout/pkg/shared/logger"
)

// Supported authentication types for remote indexing targets.
const (
	AuthTypeHTTP     = "http"
	AuthTypeSSHKey   = "ssh-key"
	AuthTypeSSHAgent = "ssh-agent"
)

// CloneOptions describes a remote repository to index.
type CloneOptions struct {
	URL            string
	AuthType       string
	Username       string
	Token          string
	SSHKey         string
	SSHKeyPassword string
}

// Authenticator defines an interface for different authentication methods.
type Authenticator interface {
	SetupAuth(opts *CloneOptions, logger hclog.Logger) (transport.AuthMethod, error)
}

// SSHKeyAuthenticator provides SSH key-based authentication.
type SSHKeyAuthenticator struct{}

// SSHAgentAuthenticator provides SSH agent-based authentication.
type SSHAgentAuthenticator struct{}

// HTTPAuthenticator provides HTTP basic authentication.
type HTTPAuthenticator struct{}

// SetupAuth configures SSH key authentication.
func (s *SSHKeyAuthenticator) SetupAuth(opts *CloneOptions, logger hclog.Logger) (transport.AuthMethod, error) {
	logger.Debug("setting up SSH key authentication")

	sshKeyPath, err := files.ExpandPath(opts.SSHKey)
	if err != nil {
		logger.Error("failed to expand SSH key path", "path", opts.SSHKey, "error", err)
		return nil, err
	}

	auth, err := ssh.NewPublicKeysFromFile("git", sshKeyPath, opts.SSHKeyPassword)
	if err != nil {
		logger.Error("failed to set up SSH key authentication", "error", err.Error())
		return nil, err
	}

	auth.HostKeyCallbackHelper = ssh.HostKeyCallbackHelper{
		HostKeyCallback: crssh.InsecureIgnoreHostKey(), // TODO: verify host keys
	}

	return auth, nil
}

// SetupAuth configures SSH agent authentication.
func (s *SSHAgentAuthenticator) SetupAuth(opts *CloneOptions, logger hclog.Logger) (transport.AuthMethod, error) {
	logger.Debug("setting up SSH agent authentication")

	auth, err := ssh.NewSSHAgentAuth("git")
	if err != nil {
		logger.Error("failed to set up SSH agent authentication", "error", err)
		return nil, err
	}

	auth.HostKeyCallbackHelper = ssh.HostKeyCallbackHelper{
		HostKeyCallback: crssh.InsecureIgnoreHostKey(), // TODO: verify host keys
	}

	return auth, nil
}

// SetupAuth configures HTTP basic authentication.
func (h *HTTPAuthenticator) SetupAuth(opts *CloneOptions, logger hclog.Logger) (transport.AuthMethod, error) {
	logger.Debug("setting up HTTP authentication")

	return &http.BasicAuth{
		Username: opts.Username,
		Password: opts.Token,
	}, nil
}

// getAuthenticator returns the appropriate Authenticator based on the authentication type.
// An empty auth type means anonymous access.
func getAuthenticator(authType string) (Authenticator, error) {
	switch authType {
	case "":
		return nil, nil
	case AuthTypeSSHKey:
		return &SSHKeyAuthenticator{}, nil
	case AuthTypeSSHAgent:
		return &SSHAgentAuthenticator{}, nil
	case AuthTypeHTTP:
		return &HTTPAuthenticator{}, nil
	default:
		return nil, fmt.Errorf("unknown auth type: %s", authType)
	}
}

// CloneRepository clones the remote repository into targetFolder with full
// history and all tags, and returns it opened. Indexing needs every tagged
// tree, so the clone is never shallow.
func (c *Client) CloneRepository(opts *CloneOptions, targetFolder string) (*Repository, error) {
	info, err := vcsurl.Parse(opts.URL)
	if err != nil {
		c.logger.Error("failed to parse VCS URL", "VCSURL", opts.URL, "error", err)
		return nil, fmt.Errorf("failed to parse VCS URL: %w", err)
	}

	authenticator, err := getAuthenticator(opts.AuthType)
	if err != nil {
		c.logger.Error("unsupported authentication type", "error", err)
		return nil, fmt.Errorf("unsupported authentication type: %w", err)
	}

	var auth transport.AuthMethod
	if authenticator != nil {
		auth, err = authenticator.SetupAuth(opts, c.logger)
		if err != nil {
			c.logger.Error("failed to set up Git authentication", "error", err)
			return nil, fmt.Errorf("failed to set up Git authentication: %w", err)
		}
	}

	insecureTLS := false
	if c.globalConfig != nil {
		insecureTLS = config.GetBoolValue(c.globalConfig.GitClient, "InsecureTLS", false)
	}

	output := log.GetLoggerOutput(c.logger)

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	c.logger.Debug("starting repository clone", "repository", info.Name, "cloneURL", opts.URL, "targetFolder", targetFolder)
	repo, err := gogit.PlainCloneContext(ctx, targetFolder, false, &gogit.CloneOptions{
		Auth:            auth,
		URL:             opts.URL,
		Progress:        output,
		Tags:            gogit.AllTags,
		InsecureSkipTLS: insecureTLS,
	})
	if err != nil {
		c.logger.Error("error occurred during clone", "error", err, "targetFolder", targetFolder)
		return nil, fmt.Errorf("error occurred during clone: %w", err)
	}

	c.logger.Info("repository cloned", "repository", info.Name, "targetFolder", targetFolder)
	return &Repository{repo: repo, logger: c.logger, Root: targetFolder}, nil
}

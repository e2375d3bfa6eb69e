package index

import (
	"fmt"
	"strings"

	"github.com/tagscout/tagscout/internal/git"
	"github.com/tagscout/tagscout/pkg/shared/files"
)

// validateIndexArgs validates the arguments provided to the index command.
func validateIndexArgs(options *RunOptionsIndex, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("invalid argument(s) received, only one positional argument is allowed")
	}

	remote := len(args) == 1 && isRemoteTarget(args[0])

	if !remote && options.AuthType != "" {
		return fmt.Errorf("the 'auth-type' flag only applies to a remote TARGET")
	}

	if options.AuthType != "" {
		authTypesList := []string{git.AuthTypeHTTP, git.AuthTypeSSHKey, git.AuthTypeSSHAgent}
		if !isInList(options.AuthType, authTypesList) {
			return fmt.Errorf("unknown auth-type: %v", options.AuthType)
		}
	}

	if options.AuthType == git.AuthTypeSSHKey && options.SSHKey == "" {
		return fmt.Errorf("you must specify ssh-key with auth-type 'ssh-key'")
	}

	if options.SSHKey != "" {
		expandedPath, err := files.ExpandPath(options.SSHKey)
		if err != nil {
			return fmt.Errorf("failed to expand path %q: %w", options.SSHKey, err)
		}
		if err := files.ValidatePath(expandedPath); err != nil {
			return fmt.Errorf("failed to validate path %q: %w", expandedPath, err)
		}
	}

	return nil
}

// isRemoteTarget reports whether target is a clone URL rather than a local path.
func isRemoteTarget(target string) bool {
	return strings.Contains(target, "://") || strings.HasPrefix(target, "git@")
}

func isInList(value string, list []string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

package detect

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tagscout/tagscout/pkg/shared/files"
)

// validateDetectArgs validates the arguments provided to the detect command.
func validateDetectArgs(options *RunOptionsDetect, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one base URL must be specified")
	}

	u, err := url.ParseRequestURI(args[0])
	if err != nil {
		return fmt.Errorf("provided URL is not valid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("provided URL must use http or https")
	}

	for _, header := range options.Headers {
		if !strings.Contains(header, ":") {
			return fmt.Errorf("invalid header %q, expected 'Name: Value'", header)
		}
	}

	if options.InputPath != "" {
		if err := files.ValidatePath(options.InputPath); err != nil {
			return fmt.Errorf("failed to validate index file: %w", err)
		}
	}
	if options.ConfigPath != "" {
		if err := files.ValidatePath(options.ConfigPath); err != nil {
			return fmt.Errorf("failed to validate config file: %w", err)
		}
	}

	return nil
}

// parseHeaders splits 'Name: Value' strings into a header map.
func parseHeaders(headers []string) map[string]string {
	parsed := make(map[string]string, len(headers))
	for _, header := range headers {
		parts := strings.SplitN(header, ":", 2)
		if len(parts) != 2 {
			continue
		}
		parsed[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return parsed
}

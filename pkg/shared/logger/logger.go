package logger

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/tagscout/tagscout/pkg/shared/config"
)

// NewLogger creates a new hclog.Logger instance based on the YAML configuration and the provided name.
// Diagnostics go to stderr so that stdout stays reserved for machine-readable results.
func NewLogger(cfg *config.Config, name string) hclog.Logger {
	logLevel := determineLogLevel(cfg)
	logger := hclog.New(&hclog.LoggerOptions{
		Name:        name,
		DisableTime: true,
		Output:      os.Stderr,
		Level:       logLevel,
	})
	return logger
}

// determineLogLevel returns a log level determined first by an environment variable,
// and if not set, by the provided configuration. Defaults to INFO.
func determineLogLevel(cfg *config.Config) hclog.Level {
	if logLevelEnv := os.Getenv("TAGSCOUT_LOG_LEVEL"); logLevelEnv != "" {
		return parseLogLevel(strings.ToUpper(logLevelEnv))
	}
	if cfg != nil {
		return parseLogLevel(strings.ToUpper(cfg.Logger.Level))
	}
	return hclog.Info
}

// parseLogLevel converts a string level to hclog.Level.
func parseLogLevel(levelStr string) hclog.Level {
	switch levelStr {
	case "TRACE":
		return hclog.Trace
	case "DEBUG":
		return hclog.Debug
	case "INFO":
		return hclog.Info
	case "WARN":
		return hclog.Warn
	case "ERROR":
		return hclog.Error
	default:
		return hclog.Info
	}
}

// GetLoggerOutput exposes the logger as an io.Writer for collaborators
// that report progress through a writer, like go-git.
func GetLoggerOutput(logger hclog.Logger) io.Writer {
	return logger.StandardWriter(&hclog.StandardLoggerOptions{
		InferLevels: true,
		ForceLevel:  hclog.Debug,
	})
}

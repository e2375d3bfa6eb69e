package config

import (
	"crypto/tls"
	"time"
)

// BaseHTTPConfig holds common HTTP client configuration settings.
type BaseHTTPConfig struct {
	RetryCount       int
	RetryWaitTime    time.Duration
	RetryMaxWaitTime time.Duration
	Timeout          time.Duration
	TLSClientConfig  *tls.Config
	Proxy            string
}

// RestyHTTPClientConfig holds additional configuration settings for the Resty HTTP client.
type RestyHTTPClientConfig struct {
	BaseHTTPConfig
	Debug bool
}

// DefaultHTTPConfig returns the base configuration for HTTP clients.
// A failed probe is a negative detection signal, so nothing is retried.
func DefaultHTTPConfig() BaseHTTPConfig {
	return BaseHTTPConfig{
		RetryCount:       0,
		RetryWaitTime:    1 * time.Second,
		RetryMaxWaitTime: 5 * time.Second,
		Timeout:          30 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		Proxy: "",
	}
}

// DefaultRestyConfig returns a default configuration for the Resty HTTP client,
// extending the base HTTP configuration.
func DefaultRestyConfig() RestyHTTPClientConfig {
	baseConfig := DefaultHTTPConfig()
	return RestyHTTPClientConfig{
		BaseHTTPConfig: baseConfig,
		Debug:          false,
	}
}

// DefaultGitClientTimeout bounds a single clone of a remote indexing target.
const DefaultGitClientTimeout = 10 * time.Minute

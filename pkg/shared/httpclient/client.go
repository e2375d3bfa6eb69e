package httpclient

import (
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/tagscout/tagscout/pkg/shared/config"
)

// HclogAdapter adapts an hclog.Logger to be compatible with the resty log.Logger interface.
type HclogAdapter struct {
	logger hclog.Logger
}

// NewHclogAdapter creates a new adapter that will forward messages to a hclog.Logger.
func NewHclogAdapter(logger hclog.Logger) resty.Logger {
	return &HclogAdapter{logger: logger}
}

// Errorf logs a message at error level.
func (a *HclogAdapter) Errorf(format string, v ...interface{}) {
	a.logger.Error(fmt.Sprintf(format, v...))
}

// Warnf logs a message at warning level.
func (a *HclogAdapter) Warnf(format string, v ...interface{}) {
	a.logger.Warn(fmt.Sprintf(format, v...))
}

// Debugf logs a message at debug level.
func (a *HclogAdapter) Debugf(format string, v ...interface{}) {
	a.logger.Debug(fmt.Sprintf(format, v...))
}

// SetLoggerForResty sets the adapted hclog.Logger as the logger for Resty.
func SetLoggerForResty(client *resty.Client, logger hclog.Logger) {
	client.SetLogger(NewHclogAdapter(logger))
}

// InitializeRestyClient initializes and configures a resty client based on the provided configuration.
// Responses are handed back unparsed so bodies can be streamed into the hasher.
func InitializeRestyClient(logger hclog.Logger, cfg *config.Config) *resty.Client {
	client := resty.New()
	if logger != nil {
		SetLoggerForResty(client, logger)
	}

	restyConfig := applyHTTPClientConfig(&cfg.HttpClient)
	client.
		SetDebug(restyConfig.Debug).
		SetRetryCount(restyConfig.RetryCount).
		SetRetryWaitTime(restyConfig.RetryWaitTime).
		SetRetryMaxWaitTime(restyConfig.RetryMaxWaitTime).
		SetTimeout(restyConfig.Timeout).
		SetTLSClientConfig(restyConfig.TLSClientConfig).
		SetDoNotParseResponse(true)

	if restyConfig.Proxy != "" {
		client.SetProxy(restyConfig.Proxy)
	}

	return client
}

// applyHTTPClientConfig applies the HttpClient configuration or uses default values.
// Certificate verification is off unless the config turns it on: probed targets
// routinely serve self-signed or mismatched certificates.
func applyHTTPClientConfig(httpConfig *config.HttpClient) config.RestyHTTPClientConfig {
	cfg := config.DefaultRestyConfig()

	if httpConfig != nil {
		cfg.Debug = config.GetBoolValue(httpConfig, "Debug", cfg.Debug)
		cfg.RetryCount = config.SetThen(httpConfig.RetryCount, cfg.RetryCount)
		cfg.RetryWaitTime = config.SetThen(httpConfig.RetryWaitTime, cfg.RetryWaitTime)
		cfg.RetryMaxWaitTime = config.SetThen(httpConfig.RetryMaxWaitTime, cfg.RetryMaxWaitTime)
		cfg.Timeout = config.SetThen(httpConfig.Timeout, cfg.Timeout)
		cfg.TLSClientConfig.InsecureSkipVerify = !config.GetBoolValue(httpConfig.TlsClientConfig, "Verify", false)

		if httpConfig.Proxy.Host != "" && httpConfig.Proxy.Port != "" {
			cfg.Proxy = fmt.Sprintf("%s:%s", httpConfig.Proxy.Host, httpConfig.Proxy.Port)
		}
	}

	return cfg
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// Config holds the optional application configuration loaded from a YAML file.
type Config struct {
	Logger     Logger     `yaml:"logger"`
	HttpClient HttpClient `yaml:"http_client"`
	GitClient  GitClient  `yaml:"git_client"`
}

type Logger struct {
	Level string `yaml:"level"`
}

type HttpClient struct {
	Debug            *bool           `yaml:"debug"`
	RetryCount       int             `yaml:"retry_count"`
	RetryWaitTime    time.Duration   `yaml:"retry_wait_time"`
	RetryMaxWaitTime time.Duration   `yaml:"retry_max_wait_time"`
	Timeout          time.Duration   `yaml:"timeout"`
	TlsClientConfig  TlsClientConfig `yaml:"tls_client_config"`
	Proxy            Proxy           `yaml:"proxy"`
}

type TlsClientConfig struct {
	Verify *bool `yaml:"verify"`
}

type Proxy struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type GitClient struct {
	Timeout     time.Duration `yaml:"timeout"`
	InsecureTLS *bool         `yaml:"insecure_tls"`
}

// ValidateConfigPath checks if the given path points to a regular file.
func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

// LoadConfig reads the YAML configuration from configPath. A missing file is
// not an error: the zero configuration falls back to defaults everywhere.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	if err := ValidateConfigPath(configPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return config, nil
		}
		return nil, err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", configPath, err)
	}

	return config, nil
}

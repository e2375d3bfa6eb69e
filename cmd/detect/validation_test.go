package detect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDetectArgs(t *testing.T) {
	indexPath := filepath.Join(t.TempDir(), "index.json")
	require.NoError(t, os.WriteFile(indexPath, []byte("[]"), 0644))

	testCases := []struct {
		name       string
		options    RunOptionsDetect
		args       []string
		expectfail bool
	}{
		{
			name: "valid http URL",
			args: []string{"http://example.com/"},
		},
		{
			name: "valid https URL",
			args: []string{"https://example.com/app/"},
		},
		{
			name:       "no arguments",
			args:       []string{},
			expectfail: true,
		},
		{
			name:       "too many arguments",
			args:       []string{"http://a.example", "http://b.example"},
			expectfail: true,
		},
		{
			name:       "not a URL",
			args:       []string{"example.com"},
			expectfail: true,
		},
		{
			name:       "unsupported scheme",
			args:       []string{"ftp://example.com/"},
			expectfail: true,
		},
		{
			name:    "well-formed header",
			options: RunOptionsDetect{Headers: []string{"Authorization: Bearer x"}},
			args:    []string{"http://example.com/"},
		},
		{
			name:       "header without separator",
			options:    RunOptionsDetect{Headers: []string{"Authorization Bearer x"}},
			args:       []string{"http://example.com/"},
			expectfail: true,
		},
		{
			name:    "existing index file",
			options: RunOptionsDetect{InputPath: indexPath},
			args:    []string{"http://example.com/"},
		},
		{
			name:       "missing index file",
			options:    RunOptionsDetect{InputPath: "/nonexistent/index.json"},
			args:       []string{"http://example.com/"},
			expectfail: true,
		},
		{
			name:       "missing config file",
			options:    RunOptionsDetect{ConfigPath: "/nonexistent/rewrite.json"},
			args:       []string{"http://example.com/"},
			expectfail: true,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			err := validateDetectArgs(&tt.options, tt.args)
			if tt.expectfail {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseHeaders(t *testing.T) {
	headers := parseHeaders([]string{
		"Authorization: Bearer token",
		"X-Custom:value",
		"Host: internal.example.com:8443",
		"malformed",
	})

	assert.Equal(t, map[string]string{
		"Authorization": "Bearer token",
		"X-Custom":      "value",
		"Host":          "internal.example.com:8443",
	}, headers)
}

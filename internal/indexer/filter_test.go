package indexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsFileIncluded(t *testing.T) {
	testCases := []struct {
		name     string
		patterns Patterns
		path     string
		expected bool
	}{
		{
			name:     "no patterns includes everything",
			patterns: Patterns{},
			path:     "./js/app.js",
			expected: true,
		},
		{
			name:     "include glob matches base name",
			patterns: Patterns{Include: []string{"*.js"}},
			path:     "./js/app.js",
			expected: true,
		},
		{
			name:     "include glob rejects other extensions",
			patterns: Patterns{Include: []string{"*.js"}},
			path:     "./img/logo.png",
			expected: false,
		},
		{
			name:     "brace alternatives",
			patterns: Patterns{Include: []string{"*.{css,js}"}},
			path:     "./css/site.css",
			expected: true,
		},
		{
			name:     "exclude wins over include",
			patterns: Patterns{Include: []string{"*.js"}, Exclude: []string{"*.min.js"}},
			path:     "./js/app.min.js",
			expected: false,
		},
		{
			name:     "exclude alone",
			patterns: Patterns{Exclude: []string{"*.map"}},
			path:     "./js/app.js.map",
			expected: false,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := NewFilter(tt.patterns)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, filter.IsFileIncluded(tt.path))
		})
	}
}

func TestIsDirIncluded(t *testing.T) {
	testCases := []struct {
		name     string
		patterns Patterns
		path     string
		expected bool
	}{
		{
			name:     "no patterns descends everywhere",
			patterns: Patterns{},
			path:     "./static",
			expected: true,
		},
		{
			name:     "exclude dir by base name",
			patterns: Patterns{ExcludeDir: []string{".git"}},
			path:     "./.git",
			expected: false,
		},
		{
			name:     "include prefix admits subtree",
			patterns: Patterns{IncludePrefix: []string{"static"}},
			path:     "./static/js",
			expected: true,
		},
		{
			name:     "include prefix rejects siblings",
			patterns: Patterns{IncludePrefix: []string{"static"}},
			path:     "./src",
			expected: false,
		},
		{
			name:     "include prefix takes precedence over include dir",
			patterns: Patterns{IncludePrefix: []string{"static"}, IncludeDir: []string{"src"}},
			path:     "./static/js",
			expected: true,
		},
		{
			name:     "exclude prefix rejects subtree",
			patterns: Patterns{ExcludePrefix: []string{"static/vendor"}},
			path:     "./static/vendor/jquery",
			expected: false,
		},
		{
			name:     "exclude prefix leaves the rest",
			patterns: Patterns{ExcludePrefix: []string{"static/vendor"}},
			path:     "./static/js",
			expected: true,
		},
		{
			name:     "include dir glob on base name",
			patterns: Patterns{IncludeDir: []string{"{js,css}"}},
			path:     "./assets/js",
			expected: true,
		},
		{
			name:     "include dir glob rejects others",
			patterns: Patterns{IncludeDir: []string{"{js,css}"}},
			path:     "./assets/img",
			expected: false,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			filter, err := NewFilter(tt.patterns)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, filter.IsDirIncluded(tt.path))
		})
	}
}

func TestNewFilterInvalidPattern(t *testing.T) {
	_, err := NewFilter(Patterns{Include: []string{"[unclosed"}})
	assert.Error(t, err)
}

func TestNormalizePrefix(t *testing.T) {
	assert.Equal(t, ".", NormalizePrefix("."))
	assert.Equal(t, "./static", NormalizePrefix("static"))
	assert.Equal(t, "./static", NormalizePrefix("./static"))
}

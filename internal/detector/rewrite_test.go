package detector

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRules(t *testing.T, doc string) []RewriteRule {
	t.Helper()
	rules, err := LoadRewriteRules(strings.NewReader(doc))
	require.NoError(t, err)
	return rules
}

func TestLoadRewriteRules(t *testing.T) {
	rules := mustRules(t, `{"patterns": {"^src/": "assets/", "\\.jsx$": ".js"}}`)

	require.Len(t, rules, 2)
	assert.Equal(t, "^src/", rules[0].Pattern.String())
	assert.Equal(t, "assets/", rules[0].Repl)
	assert.Equal(t, `\.jsx$`, rules[1].Pattern.String())
}

func TestLoadRewriteRulesNoPatterns(t *testing.T) {
	rules := mustRules(t, `{"other": {"k": "v"}}`)
	assert.Empty(t, rules)

	rules = mustRules(t, `{}`)
	assert.Empty(t, rules)
}

func TestLoadRewriteRulesMalformed(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{name: "not json", input: "nope"},
		{name: "array instead of object", input: `[]`},
		{name: "patterns not an object", input: `{"patterns": ["a"]}`},
		{name: "replacement not a string", input: `{"patterns": {"a": 1}}`},
		{name: "invalid regexp", input: `{"patterns": {"(": "x"}}`},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRewriteRules(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestApply(t *testing.T) {
	testCases := []struct {
		name     string
		doc      string
		path     string
		expected string
	}{
		{
			name:     "no rules",
			doc:      `{}`,
			path:     "js/app.js",
			expected: "js/app.js",
		},
		{
			name:     "simple substitution",
			doc:      `{"patterns": {"^src/": "assets/"}}`,
			path:     "src/app.js",
			expected: "assets/app.js",
		},
		{
			name:     "rules apply in order",
			doc:      `{"patterns": {"^src/": "assets/", "^assets/": "cdn/"}}`,
			path:     "src/app.js",
			expected: "cdn/app.js",
		},
		{
			name:     "capture groups",
			doc:      `{"patterns": {"^(js|css)/(.*)$": "static/$1/$2"}}`,
			path:     "js/app.js",
			expected: "static/js/app.js",
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			rules := mustRules(t, tt.doc)
			assert.Equal(t, tt.expected, Apply(rules, tt.path))
		})
	}
}

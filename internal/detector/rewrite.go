package detector

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
)

// RewriteRule rewrites an index path before it is requested from the target,
// covering deployments that serve files under different paths than the
// repository keeps them.
type RewriteRule struct {
	Pattern *regexp.Regexp
	Repl    string
}

// Apply runs every rule against p in order and returns the rewritten path.
func Apply(rules []RewriteRule, p string) string {
	for _, rule := range rules {
		p = rule.Pattern.ReplaceAllString(p, rule.Repl)
	}
	return p
}

// LoadRewriteRules reads the detection config JSON, an object whose optional
// "patterns" key maps regular expressions to replacements. Rules apply in
// document order, so the object is scanned token-wise instead of through a
// Go map.
func LoadRewriteRules(r io.Reader) ([]RewriteRule, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("failed to parse config: expected object, got %v", tok)
	}

	var rules []RewriteRule
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("failed to parse config: expected key, got %v", tok)
		}

		if key != "patterns" {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, fmt.Errorf("failed to parse config key %q: %w", key, err)
			}
			continue
		}

		tok, err = dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to parse config patterns: %w", err)
		}
		if d, ok := tok.(json.Delim); !ok || d != '{' {
			return nil, fmt.Errorf("failed to parse config: patterns must be an object")
		}

		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("failed to parse config patterns: %w", err)
			}
			pattern, ok := tok.(string)
			if !ok {
				return nil, fmt.Errorf("failed to parse config: expected pattern key, got %v", tok)
			}

			var repl string
			if err := dec.Decode(&repl); err != nil {
				return nil, fmt.Errorf("failed to parse replacement for pattern %q: %w", pattern, err)
			}

			re, err := regexp.Compile(pattern)
			if err != nil {
				return nil, fmt.Errorf("invalid rewrite pattern %q: %w", pattern, err)
			}
			rules = append(rules, RewriteRule{Pattern: re, Repl: repl})
		}

		// closing brace of the patterns object
		if _, err := dec.Token(); err != nil {
			return nil, fmt.Errorf("failed to parse config patterns: %w", err)
		}
	}

	return rules, nil
}

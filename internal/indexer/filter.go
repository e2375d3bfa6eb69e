package indexer

import (
	"fmt"
	"path"
	"strings"

	"github.com/gobwas/glob"
)

// Patterns enumerates the inclusion and exclusion lists accepted by the index
// command. Name patterns are globs matched against base names and support
// {a,b} alternatives; prefix patterns are literal directory path prefixes.
type Patterns struct {
	Include       []string
	IncludeDir    []string
	IncludePrefix []string
	Exclude       []string
	ExcludeDir    []string
	ExcludePrefix []string
}

// Filter decides which files and directories take part in indexing.
type Filter interface {
	IsFileIncluded(filePath string) bool
	IsDirIncluded(dirPath string) bool
}

type patternFilter struct {
	include       []glob.Glob
	includeDir    []glob.Glob
	exclude       []glob.Glob
	excludeDir    []glob.Glob
	includePrefix []string
	excludePrefix []string
}

// NewFilter compiles the pattern lists into a Filter.
func NewFilter(p Patterns) (Filter, error) {
	f := &patternFilter{
		includePrefix: normalizePrefixes(p.IncludePrefix),
		excludePrefix: normalizePrefixes(p.ExcludePrefix),
	}

	var err error
	if f.include, err = compileGlobs(p.Include); err != nil {
		return nil, err
	}
	if f.includeDir, err = compileGlobs(p.IncludeDir); err != nil {
		return nil, err
	}
	if f.exclude, err = compileGlobs(p.Exclude); err != nil {
		return nil, err
	}
	if f.excludeDir, err = compileGlobs(p.ExcludeDir); err != nil {
		return nil, err
	}
	return f, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	var globs []glob.Glob
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// NormalizePrefix roots a prefix pattern at "./" so it lines up with the
// walker's path form.
func NormalizePrefix(p string) string {
	if p == "." || strings.HasPrefix(p, "./") {
		return p
	}
	return "./" + p
}

func normalizePrefixes(prefixes []string) []string {
	var out []string
	for _, p := range prefixes {
		out = append(out, NormalizePrefix(p))
	}
	return out
}

// IsFileIncluded reports whether a file takes part in indexing, matching the
// include and exclude globs against its base name.
func (f *patternFilter) IsFileIncluded(filePath string) bool {
	basename := path.Base(filePath)
	if len(f.include) > 0 && !matchAny(f.include, basename) {
		return false
	}
	if matchAny(f.exclude, basename) {
		return false
	}
	return true
}

// IsDirIncluded reports whether a directory is descended into. Include
// prefixes, when given, take precedence over the include-dir globs.
func (f *patternFilter) IsDirIncluded(dirPath string) bool {
	basename := path.Base(dirPath)
	full := dirPath + "/"

	if len(f.includePrefix) > 0 {
		if !hasAnyPrefix(full, f.includePrefix) {
			return false
		}
	} else if len(f.includeDir) > 0 && !matchAny(f.includeDir, basename) {
		return false
	}

	if hasAnyPrefix(full, f.excludePrefix) {
		return false
	}
	if matchAny(f.excludeDir, basename) {
		return false
	}
	return true
}

func matchAny(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(full string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(full, p+"/") {
			return true
		}
	}
	return false
}

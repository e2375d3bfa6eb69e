package indexer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/tagscout/tagscout/internal/fingerprint"
	"github.com/tagscout/tagscout/internal/git"
)

// ErrNoTags is returned when the repository carries no tag history at all.
// Without tags there is nothing to fingerprint against.
var ErrNoTags = errors.New("no tags found in repository")

// Builder aggregates per-file content digests across every tag of a repository.
type Builder struct {
	repo   *git.Repository
	filter Filter
	roots  []string
	logger hclog.Logger
}

// NewBuilder returns a Builder walking the given prefix roots under the
// repository working tree. Roots are expected in NormalizePrefix form.
func NewBuilder(repo *git.Repository, filter Filter, roots []string, logger hclog.Logger) *Builder {
	return &Builder{
		repo:   repo,
		filter: filter,
		roots:  roots,
		logger: logger,
	}
}

// Build checks out every tag in enumeration order and records
// (path, digest) -> tag for each included file. Checkouts share one working
// tree, so each tag is fully read before the next checkout starts.
func (b *Builder) Build() (fingerprint.Index, error) {
	tags, err := b.repo.Tags()
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, ErrNoTags
	}

	var index fingerprint.Index
	entryByPath := make(map[string]int)

	for _, tag := range tags {
		if err := b.repo.CheckoutTag(tag); err != nil {
			return nil, fmt.Errorf("failed to check out tag %q: %w", tag, err)
		}

		files := b.collectFiles()
		for _, file := range files {
			digest, err := fingerprint.HashFile(filepath.Join(b.repo.Root, filepath.FromSlash(file)))
			if err != nil {
				return nil, fmt.Errorf("failed to hash %q at tag %q: %w", file, tag, err)
			}

			i, ok := entryByPath[file]
			if !ok {
				index = append(index, fingerprint.FileEntry{Path: file})
				i = len(index) - 1
				entryByPath[file] = i
			}
			index[i].AddTag(digest, tag)
		}

		b.logger.Debug("tag processed", "tag", tag, "files", len(files))
	}

	return index, nil
}

// collectFiles walks the working tree breadth-first from the prefix roots and
// returns the filtered file paths, slash-separated and root-relative.
func (b *Builder) collectFiles() []string {
	queue := append([]string{}, b.roots...)
	var files []string

	for i := 0; i < len(queue); i++ {
		p := queue[i]
		full := filepath.Join(b.repo.Root, filepath.FromSlash(p))

		info, err := os.Stat(full)
		if err != nil {
			b.logger.Debug("skipping unreadable path", "path", p, "error", err)
			continue
		}

		switch {
		case info.IsDir():
			if !b.filter.IsDirIncluded(p) {
				continue
			}
			entries, err := os.ReadDir(full)
			if err != nil {
				b.logger.Debug("skipping unreadable directory", "path", p, "error", err)
				continue
			}
			for _, entry := range entries {
				queue = append(queue, p+"/"+entry.Name())
			}
		case info.Mode().IsRegular():
			if !b.filter.IsFileIncluded(p) {
				continue
			}
			files = append(files, strings.TrimPrefix(p, "./"))
		}
	}

	return files
}

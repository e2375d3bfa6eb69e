package indexer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tagscout/tagscout/internal/fingerprint"
)

func entryWithSingleTagDigests(path string, n int) fingerprint.FileEntry {
	entry := fingerprint.FileEntry{Path: path}
	for i := 0; i < n; i++ {
		entry.AddTag(digestName(i), tagName(i))
	}
	return entry
}

func entryWithSharedDigest(path string, n int) fingerprint.FileEntry {
	entry := fingerprint.FileEntry{Path: path}
	for i := 0; i < n; i++ {
		entry.AddTag("shared", tagName(i))
	}
	return entry
}

func digestName(i int) string { return string(rune('a'+i)) + "-digest" }
func tagName(i int) string    { return "v" + string(rune('0'+i)) }

func TestScore(t *testing.T) {
	testCases := []struct {
		name     string
		entry    fingerprint.FileEntry
		expected float64
	}{
		{
			name:     "file that never changed",
			entry:    entryWithSharedDigest("a.js", 4),
			expected: -1,
		},
		{
			name: "repeated tag lowers uniqueness",
			entry: fingerprint.FileEntry{Path: "dup.js", Digests: []fingerprint.DigestTags{
				{Digest: "h1", Tags: []string{"v1", "v1"}},
				{Digest: "h2", Tags: []string{"v2", "v2"}},
			}},
			expected: -1,
		},
		{
			name:     "file unique per tag",
			entry:    entryWithSingleTagDigests("b.js", 4),
			expected: -4,
		},
		{
			name:     "empty entry",
			entry:    fingerprint.FileEntry{Path: "c.js"},
			expected: 0,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Score(tt.entry), 1e-9)
		})
	}
}

// A file whose digests spread across N single-tag groups must rank strictly
// ahead of a file with one digest shared by the same N tags.
func TestScoreMonotonicity(t *testing.T) {
	spread := entryWithSingleTagDigests("spread.js", 5)
	shared := entryWithSharedDigest("shared.js", 5)

	assert.Less(t, Score(spread), Score(shared))
}

func TestRankOrdersMostDiscriminativeFirst(t *testing.T) {
	index := fingerprint.Index{
		entryWithSharedDigest("static.js", 3),
		entryWithSingleTagDigests("unique.js", 3),
		entryWithSharedDigest("logo.png", 3),
	}

	Rank(index)

	assert.Equal(t, "unique.js", index[0].Path)
	// equal scores keep traversal order
	assert.Equal(t, "static.js", index[1].Path)
	assert.Equal(t, "logo.png", index[2].Path)
}

func TestRankStableForEqualScores(t *testing.T) {
	index := fingerprint.Index{
		entryWithSingleTagDigests("first.js", 2),
		entryWithSingleTagDigests("second.js", 2),
		entryWithSingleTagDigests("third.js", 2),
	}

	Rank(index)

	assert.Equal(t, "first.js", index[0].Path)
	assert.Equal(t, "second.js", index[1].Path)
	assert.Equal(t, "third.js", index[2].Path)
}

package indexer

import (
	"sort"

	"github.com/tagscout/tagscout/internal/fingerprint"
)

// Rank orders the index so the files most likely to disambiguate the
// target's tag are probed first, minimizing round trips before convergence.
// The sort is stable: entries with equal scores keep traversal order.
func Rank(index fingerprint.Index) {
	// Paths are unique within one index, so scores can be cached by path
	// rather than by position, which sorting would invalidate.
	scores := make(map[string]float64, len(index))
	for _, entry := range index {
		scores[entry.Path] = Score(entry)
	}
	sort.SliceStable(index, func(i, j int) bool {
		return scores[index[i].Path] < scores[index[j].Path]
	})
}

// Score computes the discriminative score -H * (U/T) for an entry, where H is
// the number of distinct digests, T the total tag occurrences across digests
// and U the number of distinct tags. More negative is more discriminative: a
// file that never changed (H=1) carries no information, and a digest shared
// by many tags dilutes whatever its siblings distinguish.
func Score(entry fingerprint.FileEntry) float64 {
	total := 0
	distinct := make(map[string]struct{})
	for _, dt := range entry.Digests {
		total += len(dt.Tags)
		for _, tag := range dt.Tags {
			distinct[tag] = struct{}{}
		}
	}
	if total == 0 {
		return 0
	}
	return -float64(len(entry.Digests)) * float64(len(distinct)) / float64(total)
}

package detector

import (
	"sort"

	"github.com/hashicorp/go-hclog"

	"github.com/tagscout/tagscout/internal/fingerprint"
)

// CandidateFetcher retrieves one file's content digest from the live target.
// ok is false when the file contributes nothing (absent, unreadable, non-200).
type CandidateFetcher interface {
	Fetch(filePath string) (digest string, ok bool)
}

// Options control a detection run.
type Options struct {
	// Exhaustive disables both the skip heuristic and the early convergence
	// stop: every indexed file is probed.
	Exhaustive bool

	// SkipAnyDigest widens the skip heuristic to consult every digest of an
	// entry instead of only the first one. The first-digest-only behavior can
	// skip entries whose later digests still intersect the candidates; it is
	// kept as the default for compatibility with existing indexes.
	SkipAnyDigest bool
}

// State carries the narrowing evidence accumulated during one detection run.
// It is owned by a single Engine and never shared.
type State struct {
	// candidates is the intersection of all tag sets matched so far.
	// Empty means unconstrained: nothing has matched yet.
	candidates map[string]struct{}

	// counts tallies how many matched files pointed at each tag. Counts only
	// grow during a run; order remembers first-tally insertion for stable
	// ranking of equal counts.
	counts map[string]int
	order  []string
}

func newState() State {
	return State{
		candidates: make(map[string]struct{}),
		counts:     make(map[string]int),
	}
}

// Candidates returns the current candidate tag set.
func (s *State) Candidates() map[string]struct{} {
	return s.candidates
}

func (s *State) tally(tags []string) {
	for _, tag := range tags {
		if _, ok := s.counts[tag]; !ok {
			s.counts[tag] = 0
			s.order = append(s.order, tag)
		}
		s.counts[tag]++
	}
}

func (s *State) narrow(tags []string) {
	matched := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		matched[tag] = struct{}{}
	}

	if len(s.candidates) == 0 {
		s.candidates = matched
		return
	}
	for tag := range s.candidates {
		if _, ok := matched[tag]; !ok {
			delete(s.candidates, tag)
		}
	}
}

// TagCount is one row of the ranked detection result, serialized as the
// ["tag", count] pair the output contract requires.
type TagCount struct {
	Tag   string
	Count int
}

// Result of one detection run. Tags is always populated, ranked most-matched
// first; BestMatch is set only when the run converged on a single tag.
type Result struct {
	BestMatch string
	Tags      []TagCount
}

// Engine consumes index entries in order and narrows the candidate tag set,
// deciding per entry whether to probe, skip, or stop.
type Engine struct {
	fetcher CandidateFetcher
	rules   []RewriteRule
	opts    Options
	logger  hclog.Logger
	state   State
}

// NewEngine returns an Engine for one detection run. Engines are single-use:
// the detection state is not reset between runs.
func NewEngine(fetcher CandidateFetcher, rules []RewriteRule, opts Options, logger hclog.Logger) *Engine {
	return &Engine{
		fetcher: fetcher,
		rules:   rules,
		opts:    opts,
		logger:  logger,
		state:   newState(),
	}
}

// Run processes the index in order and returns the ranked result.
func (e *Engine) Run(index fingerprint.Index) Result {
	for i := range index {
		if e.step(&index[i]) {
			break
		}
	}
	return e.result()
}

// step handles one entry and reports whether the run has converged.
func (e *Engine) step(entry *fingerprint.FileEntry) (converged bool) {
	if e.shouldSkip(entry) {
		e.logger.Debug("entry skipped, no overlap with candidates", "path", entry.Path)
		return false
	}

	filePath := Apply(e.rules, entry.Path)

	digest, ok := e.fetcher.Fetch(filePath)
	if !ok {
		return false
	}

	tags, ok := entry.Lookup(digest)
	if !ok {
		e.logger.Debug("hash not known for file", "path", filePath, "hash", digest)
		return false
	}

	e.logger.Debug("file found with known hash", "path", filePath, "hash", digest)
	e.state.tally(tags)
	e.state.narrow(tags)

	return !e.opts.Exhaustive && len(e.state.candidates) == 1
}

// shouldSkip applies the request-saving heuristic: once the candidate set is
// constrained, entries whose representative tags cannot intersect it are not
// worth a request. Skipping trades tally completeness for request volume and
// never touches the candidate set itself.
func (e *Engine) shouldSkip(entry *fingerprint.FileEntry) bool {
	if e.opts.Exhaustive || len(e.state.candidates) == 0 || len(entry.Digests) == 0 {
		return false
	}

	if e.opts.SkipAnyDigest {
		for _, dt := range entry.Digests {
			if intersects(dt.Tags, e.state.candidates) {
				return false
			}
		}
		return true
	}

	return !intersects(entry.Digests[0].Tags, e.state.candidates)
}

func intersects(tags []string, set map[string]struct{}) bool {
	for _, tag := range tags {
		if _, ok := set[tag]; ok {
			return true
		}
	}
	return false
}

// result ranks the tally descending by count; equal counts keep first-tally
// insertion order thanks to the stable sort over the order slice.
func (e *Engine) result() Result {
	tags := make([]TagCount, 0, len(e.state.order))
	for _, tag := range e.state.order {
		tags = append(tags, TagCount{Tag: tag, Count: e.state.counts[tag]})
	}
	sort.SliceStable(tags, func(i, j int) bool {
		return tags[i].Count > tags[j].Count
	})

	res := Result{Tags: tags}
	if !e.opts.Exhaustive && len(e.state.candidates) == 1 {
		for tag := range e.state.candidates {
			res.BestMatch = tag
		}
	}
	return res
}

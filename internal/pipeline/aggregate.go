package pipeline

import (
	"sort"
	"sync"

	"github.com/Heetbisht/bagasse-scout/internal/model"
)

// Aggregator collects leads across markets and queries into a single
// deduplicated, ordered result. It is the only accumulation point shared
// across concurrent candidate pipelines, so every mutation takes the mutex.
type Aggregator struct {
	mu         sync.Mutex
	leads      []model.Lead
	seen       map[string]struct{}
	discovered int
	skipped    int
}

// NewAggregator creates an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{seen: make(map[string]struct{})}
}

// Add appends a lead unless its URL was already collected (first-seen wins).
func (a *Aggregator) Add(lead model.Lead) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.seen[lead.URL]; ok {
		return
	}
	a.seen[lead.URL] = struct{}{}
	a.leads = append(a.leads, lead)
}

// Discovered records a unique candidate entering the pipeline.
func (a *Aggregator) Discovered() {
	a.mu.Lock()
	a.discovered++
	a.mu.Unlock()
}

// Skip records a candidate that contributed no lead.
func (a *Aggregator) Skip() {
	a.mu.Lock()
	a.skipped++
	a.mu.Unlock()
}

// Result finalizes the run: leads sorted by market ascending, then score
// descending with unscored leads last, then URL for a stable order.
func (a *Aggregator) Result(runID, term string) *model.RunResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	leads := make([]model.Lead, len(a.leads))
	copy(leads, a.leads)

	sort.SliceStable(leads, func(i, j int) bool {
		if leads[i].Market != leads[j].Market {
			return leads[i].Market < leads[j].Market
		}
		si, sj := leads[i].Score, leads[j].Score
		switch {
		case si == nil && sj == nil:
			return leads[i].URL < leads[j].URL
		case si == nil:
			return false
		case sj == nil:
			return true
		case *si != *sj:
			return *si > *sj
		}
		return leads[i].URL < leads[j].URL
	})

	return &model.RunResult{
		RunID:      runID,
		Term:       term,
		Leads:      leads,
		Discovered: a.discovered,
		Skipped:    a.skipped,
	}
}

// seenSet tracks candidate URLs already accepted into the run. Run-scoped;
// guarded for the bounded fan-out configuration.
type seenSet struct {
	mu   sync.Mutex
	urls map[string]struct{}
}

func newSeenSet() *seenSet {
	return &seenSet{urls: make(map[string]struct{})}
}

// claim marks a URL as seen and reports whether this call was the first.
func (s *seenSet) claim(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.urls[url]; ok {
		return false
	}
	s.urls[url] = struct{}{}
	return true
}

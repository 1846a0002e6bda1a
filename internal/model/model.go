// Package model defines the data types shared across the lead engine.
package model

// Candidate is a discovered URL considered for extraction and classification.
// Candidates are immutable; duplicates within a run are dropped before
// extraction.
type Candidate struct {
	URL     string
	Market  string
	Snippet string
	// Rank is the ordering position from the search provider (0-based).
	Rank int
}

// Document is the normalized text of a candidate page. It is owned by the
// pipeline step that produced it and discarded after classification.
type Document struct {
	URL  string
	Text string
}

// Length returns the text length in bytes.
func (d Document) Length() int {
	return len(d.Text)
}

// Judgement is the structured output of the classification provider.
// Partial fields are expected: everything but IsRelevant may be empty.
type Judgement struct {
	CompanyName  string `json:"company"`
	IsRelevant   bool   `json:"is_relevant"`
	BusinessType string `json:"type"`
	ContactEmail string `json:"email,omitempty"`
	ContactPhone string `json:"phone,omitempty"`
	Location     string `json:"location,omitempty"`
	Reasoning    string `json:"reasoning,omitempty"`
	// Score is the provider's 1-10 lead quality rating, nil when absent.
	Score *int `json:"score,omitempty"`
}

// Lead is a candidate judged relevant, carrying the extracted business
// attributes. Immutable once created; lifetime is the run.
type Lead struct {
	Judgement
	URL    string `json:"website"`
	Market string `json:"market"`
}

// RunConfig is the collaborator-supplied input for a single run.
type RunConfig struct {
	Term    string
	Markets []string
	// Limit is the per-market search result cap.
	Limit int
}

// RunResult is the final ordered, URL-deduplicated lead collection.
type RunResult struct {
	RunID string
	Term  string
	Leads []Lead
	// Discovered counts unique candidates after dedup, Skipped counts
	// candidates that contributed no lead.
	Discovered int
	Skipped    int
}

// Count returns the number of qualified leads.
func (r *RunResult) Count() int {
	return len(r.Leads)
}

// Package scrape wraps the content-extraction provider with typed failure
// classification.
package scrape

import (
	"context"
	"errors"
	"fmt"

	"github.com/Heetbisht/bagasse-scout/internal/model"
	"github.com/Heetbisht/bagasse-scout/pkg/firecrawl"
)

// FailureKind classifies extraction failures.
type FailureKind string

const (
	// RateLimited means the provider throttled the request; the caller may
	// cool down and retry.
	RateLimited FailureKind = "rate_limited"
	// Unauthorized means the credential was rejected. Fatal to the run.
	Unauthorized FailureKind = "unauthorized"
	// NoCredits means the account quota is exhausted. Fatal to the run.
	NoCredits FailureKind = "no_credits"
	// Unreachable means the site or provider could not serve the URL.
	Unreachable FailureKind = "unreachable"
	// Empty means the extracted text was too short to analyze.
	Empty FailureKind = "empty"
)

// ExtractError is a classified extraction failure for a single URL.
type ExtractError struct {
	Kind FailureKind
	URL  string
	Err  error
}

func (e *ExtractError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract %s: %s: %v", e.URL, e.Kind, e.Err)
	}
	return fmt.Sprintf("extract %s: %s", e.URL, e.Kind)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// Fatal reports whether the failure invalidates the whole run rather than
// just this URL.
func (e *ExtractError) Fatal() bool {
	return e.Kind == Unauthorized || e.Kind == NoCredits
}

// Extractor fetches normalized page text for candidate URLs.
type Extractor struct {
	client firecrawl.Client
	// minLength is the minimum usable document length in bytes; shorter
	// extractions are classified Empty.
	minLength int
}

// NewExtractor creates an Extractor over a Firecrawl client.
func NewExtractor(client firecrawl.Client, minLength int) *Extractor {
	if minLength <= 0 {
		minLength = 200
	}
	return &Extractor{client: client, minLength: minLength}
}

// Extract fetches the main content of a URL as markdown. Failures are
// returned as *ExtractError so the orchestrator can distinguish fatal,
// recoverable, and per-URL conditions.
func (x *Extractor) Extract(ctx context.Context, url string) (*model.Document, error) {
	resp, err := x.client.Scrape(ctx, firecrawl.ScrapeRequest{
		URL:             url,
		Formats:         []string{"markdown"},
		OnlyMainContent: true,
	})
	if err != nil {
		return nil, &ExtractError{Kind: classify(err), URL: url, Err: err}
	}
	if !resp.Success {
		return nil, &ExtractError{Kind: Unreachable, URL: url}
	}
	if len(resp.Data.Markdown) < x.minLength {
		return nil, &ExtractError{Kind: Empty, URL: url}
	}

	return &model.Document{URL: url, Text: resp.Data.Markdown}, nil
}

func classify(err error) FailureKind {
	var apiErr *firecrawl.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.IsRateLimited():
			return RateLimited
		case apiErr.IsUnauthorized():
			return Unauthorized
		case apiErr.IsPaymentRequired():
			return NoCredits
		}
	}
	return Unreachable
}

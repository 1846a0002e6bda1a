// Package classify qualifies extracted documents as buyer leads using the
// classification provider.
package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Heetbisht/bagasse-scout/internal/model"
	"github.com/Heetbisht/bagasse-scout/internal/resilience"
	"github.com/Heetbisht/bagasse-scout/pkg/gemini"
)

// promptBudget bounds the document prefix embedded in the prompt. Keeps the
// payload well under provider input limits.
const promptBudget = 7000

const judgementPrompt = `Analyze the website content from %s.
We are looking for BUYERS (importers, wholesalers, catering suppliers) of %s.

RULES:
1. ACCEPT (is_relevant: true) if they sell eco-packaging or catering disposables, or have a wholesale/trade/stockist section.
2. REJECT (is_relevant: false) if they are a factory, OEM, or production-line operator with no local stock.
3. An online shop still qualifies if it carries stock in the target market.

Content: %s

Return JSON ONLY:
{
    "company": "Name",
    "is_relevant": true,
    "type": "Wholesaler / Distributor / Brand Owner",
    "email": "Email if found, else 'Check website'",
    "phone": "Phone number if found",
    "location": "HQ City/Country",
    "reasoning": "1-sentence why they are a good lead",
    "score": 1-10
}`

// MalformedResponseError is returned when the provider output cannot be
// parsed into a Judgement. The raw response is retained for inspection.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("classify: malformed response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// Classifier drives judgement calls against a resolved model.
type Classifier struct {
	client gemini.Client
	term   string
	retry  resilience.RetryConfig
}

// NewClassifier creates a Classifier for the given product term.
func NewClassifier(client gemini.Client, term string, retry resilience.RetryConfig) *Classifier {
	if retry.ShouldRetry == nil {
		retry.ShouldRetry = gemini.IsThrottled
	}
	if retry.OnRetry == nil {
		retry.OnRetry = resilience.RetryLogger("gemini", "classify")
	}
	return &Classifier{client: client, term: term, retry: retry}
}

// Classify judges a document against the buyer profile. Throttling is
// retried with increasing backoff; a response that cannot be parsed yields
// *MalformedResponseError.
func (c *Classifier) Classify(ctx context.Context, doc *model.Document, modelName string) (*model.Judgement, error) {
	prompt := BuildPrompt(doc, c.term)

	text, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) (string, error) {
		return c.client.GenerateText(ctx, modelName, prompt)
	})
	if err != nil {
		return nil, eris.Wrap(err, "classify: generate")
	}

	judgement, err := ParseJudgement(text)
	if err != nil {
		zap.L().Debug("classify: unparseable response",
			zap.String("url", doc.URL),
			zap.Int("response_len", len(text)),
		)
		return nil, err
	}
	return judgement, nil
}

// BuildPrompt assembles the fixed-shape judgement prompt for a document.
// The document text is truncated to a bounded prefix on a rune boundary so
// localized content never embeds a split multi-byte character.
func BuildPrompt(doc *model.Document, term string) string {
	text := truncateUTF8(doc.Text, promptBudget)
	return fmt.Sprintf(judgementPrompt, doc.URL, term, text)
}

func truncateUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

// ParseJudgement parses a provider response that may be wrapped in markdown
// code fences into a Judgement.
func ParseJudgement(text string) (*model.Judgement, error) {
	cleaned := CleanJSON(text)

	var j model.Judgement
	if err := json.Unmarshal([]byte(cleaned), &j); err != nil {
		return nil, &MalformedResponseError{Raw: text, Err: err}
	}
	if j.Score != nil && (*j.Score < 1 || *j.Score > 10) {
		j.Score = nil
	}
	return &j, nil
}

// Package pipeline orchestrates the lead discovery run: discovery,
// extraction, classification, and aggregation across markets.
package pipeline

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/Heetbisht/bagasse-scout/internal/classify"
	"github.com/Heetbisht/bagasse-scout/internal/config"
	"github.com/Heetbisht/bagasse-scout/internal/model"
	"github.com/Heetbisht/bagasse-scout/internal/query"
	"github.com/Heetbisht/bagasse-scout/internal/scrape"
	"github.com/Heetbisht/bagasse-scout/pkg/gemini"
	"github.com/Heetbisht/bagasse-scout/pkg/serper"
)

// Extractor fetches normalized page text for a candidate URL.
type Extractor interface {
	Extract(ctx context.Context, url string) (*model.Document, error)
}

// Classifier judges a document against the buyer profile.
type Classifier interface {
	Classify(ctx context.Context, doc *model.Document, modelName string) (*model.Judgement, error)
}

// ModelResolver determines the classification model usable by the
// credential. Invoked once at the start of every run.
type ModelResolver func(ctx context.Context) (string, error)

// Engine drives the per-market, per-candidate lead pipeline.
type Engine struct {
	cfg        config.PipelineConfig
	search     serper.Client
	extractor  Extractor
	classifier Classifier
	resolve    ModelResolver
	limiter    *rate.Limiter
}

// New creates an Engine with the given collaborators.
func New(cfg config.PipelineConfig, search serper.Client, x Extractor, c Classifier, resolve ModelResolver) *Engine {
	limit := rate.Inf
	if cfg.Pacing() > 0 {
		limit = rate.Every(cfg.Pacing())
	}
	return &Engine{
		cfg:        cfg,
		search:     search,
		extractor:  x,
		classifier: c,
		resolve:    resolve,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// Run executes the full pipeline for a run configuration. Per-candidate
// failures are absorbed; only configuration and fatal provider errors
// escape.
func (e *Engine) Run(ctx context.Context, rc model.RunConfig) (*model.RunResult, error) {
	if err := validateRun(rc); err != nil {
		return nil, err
	}
	if rc.Limit <= 0 {
		rc.Limit = e.cfg.Limit
	}

	runID := uuid.NewString()
	log := zap.L().With(zap.String("run_id", runID), zap.String("term", rc.Term))
	log.Info("pipeline: starting run", zap.Strings("markets", rc.Markets))

	// Model binding drifts over time, so resolve fresh every run.
	modelName, err := e.resolve(ctx)
	if err != nil {
		return nil, &FatalError{Provider: "gemini", Err: err}
	}

	agg := NewAggregator()
	seen := newSeenSet()

	for _, market := range rc.Markets {
		if ctx.Err() != nil {
			log.Warn("pipeline: run cancelled", zap.Error(ctx.Err()))
			break
		}
		if err := e.runMarket(ctx, rc, market, modelName, seen, agg); err != nil {
			return nil, err
		}
	}

	result := agg.Result(runID, rc.Term)
	log.Info("pipeline: run complete",
		zap.Int("leads", result.Count()),
		zap.Int("discovered", result.Discovered),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (e *Engine) runMarket(ctx context.Context, rc model.RunConfig, market, modelName string, seen *seenSet, agg *Aggregator) error {
	code, _ := query.Normalize(market)
	log := zap.L().With(zap.String("market", code))

	var candidates []model.Candidate
	for _, q := range query.Build(rc.Term, market, e.cfg.NegativeTerms) {
		resp, err := e.search.Search(ctx, serper.SearchRequest{
			Query:   q,
			Country: code,
			Num:     rc.Limit,
		})
		if err != nil {
			var apiErr *serper.APIError
			if errors.As(err, &apiErr) &&
				(apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden) {
				return &FatalError{Provider: "serper", Err: err}
			}
			// A failed search yields zero candidates for this query.
			log.Warn("pipeline: search failed", zap.String("query", q), zap.Error(err))
			continue
		}

		for i, r := range resp.Organic {
			if len(candidates) >= rc.Limit {
				break
			}
			if r.Link == "" || !seen.claim(r.Link) {
				continue
			}
			agg.Discovered()
			candidates = append(candidates, model.Candidate{
				URL:     r.Link,
				Market:  code,
				Snippet: r.Snippet,
				Rank:    i,
			})
		}
	}

	log.Info("pipeline: candidates discovered", zap.Int("count", len(candidates)))

	if e.cfg.Concurrency > 1 {
		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(e.cfg.Concurrency)
		for _, cand := range candidates {
			g.Go(func() error {
				return e.processCandidate(gCtx, cand, modelName, agg)
			})
		}
		return g.Wait()
	}

	for _, cand := range candidates {
		if ctx.Err() != nil {
			return nil
		}
		if err := e.processCandidate(ctx, cand, modelName, agg); err != nil {
			return err
		}
	}
	return nil
}

// processCandidate runs extract → classify for one candidate. A nil return
// with no lead added means the candidate was skipped.
func (e *Engine) processCandidate(ctx context.Context, cand model.Candidate, modelName string, agg *Aggregator) error {
	log := zap.L().With(zap.String("url", cand.URL), zap.String("market", cand.Market))

	// Mandatory pacing between consecutive provider calls.
	if err := e.limiter.Wait(ctx); err != nil {
		return nil
	}

	doc, err := e.extractCandidate(ctx, cand.URL)
	if err != nil {
		var xe *scrape.ExtractError
		if errors.As(err, &xe) && xe.Fatal() {
			return &FatalError{Provider: "firecrawl", Err: err}
		}
		log.Info("pipeline: extraction skipped", zap.Error(err))
		agg.Skip()
		return nil
	}

	judgement, err := e.classifier.Classify(ctx, doc, modelName)
	if err != nil {
		if gemini.IsAuthError(err) {
			return &FatalError{Provider: "gemini", Err: err}
		}
		var me *classify.MalformedResponseError
		if errors.As(err, &me) {
			log.Warn("pipeline: unparseable judgement", zap.Error(err))
		} else {
			log.Warn("pipeline: classification failed", zap.Error(err))
		}
		agg.Skip()
		return nil
	}

	if !judgement.IsRelevant && !e.cfg.KeepIrrelevant {
		log.Debug("pipeline: not relevant", zap.String("type", judgement.BusinessType))
		agg.Skip()
		return nil
	}

	agg.Add(model.Lead{
		Judgement: *judgement,
		URL:       cand.URL,
		Market:    strings.ToUpper(cand.Market),
	})
	log.Info("pipeline: lead qualified",
		zap.String("company", judgement.CompanyName),
		zap.String("type", judgement.BusinessType),
	)
	return nil
}

// extractCandidate fetches the page, retrying exactly once after a fixed
// cooldown when the provider rate-limits.
func (e *Engine) extractCandidate(ctx context.Context, url string) (*model.Document, error) {
	doc, err := e.extractor.Extract(ctx, url)
	if err == nil {
		return doc, nil
	}

	var xe *scrape.ExtractError
	if !errors.As(err, &xe) || xe.Kind != scrape.RateLimited {
		return nil, err
	}

	zap.L().Warn("pipeline: extraction rate limited, cooling down",
		zap.String("url", url),
		zap.Duration("cooldown", e.cfg.Cooldown()),
	)
	if sleepErr := sleepCtx(ctx, e.cfg.Cooldown()); sleepErr != nil {
		return nil, err
	}
	return e.extractor.Extract(ctx, url)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func validateRun(rc model.RunConfig) error {
	if strings.TrimSpace(rc.Term) == "" {
		return &ConfigError{Reason: "search term is empty"}
	}
	if len(rc.Markets) == 0 {
		return &ConfigError{Reason: "no market selected"}
	}
	return nil
}

// Package gemini wraps the Google Gemini API for model discovery and
// free-text generation.
package gemini

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/rotisserie/eris"
	"google.golang.org/genai"
)

// Client defines the Gemini operations used by the lead engine.
type Client interface {
	// ListModels returns the models the credential may use.
	ListModels(ctx context.Context) ([]ModelInfo, error)
	// GenerateText sends a prompt to the given model and returns the raw
	// response text.
	GenerateText(ctx context.Context, model, prompt string) (string, error)
}

// ModelInfo describes a model available to the credential.
type ModelInfo struct {
	Name             string
	SupportedActions []string
}

// SupportsGeneration reports whether the model can serve generateContent.
func (m ModelInfo) SupportsGeneration() bool {
	for _, a := range m.SupportedActions {
		if a == "generateContent" {
			return true
		}
	}
	return false
}

// Config holds Gemini client settings.
type Config struct {
	APIKey string
	// BaseURL overrides the Gemini API base URL. Useful for proxies/testing.
	BaseURL string
}

type sdkClient struct {
	client *genai.Client
}

// NewClient creates a Gemini client backed by the genai SDK.
func NewClient(ctx context.Context, cfg Config) (Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, eris.New("gemini: api key is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		cc.HTTPOptions.BaseURL = strings.TrimSpace(cfg.BaseURL)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, eris.Wrap(err, "gemini: create client")
	}
	return &sdkClient{client: client}, nil
}

func (c *sdkClient) ListModels(ctx context.Context) ([]ModelInfo, error) {
	var out []ModelInfo
	for m, err := range c.client.Models.All(ctx) {
		if err != nil {
			return nil, classifyErr(err)
		}
		if m == nil {
			continue
		}
		out = append(out, ModelInfo{
			Name:             m.Name,
			SupportedActions: m.SupportedActions,
		})
	}
	return out, nil
}

func (c *sdkClient) GenerateText(ctx context.Context, model, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(
		ctx,
		model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			CandidateCount: 1,
		},
	)
	if err != nil {
		return "", classifyErr(err)
	}
	return resp.Text(), nil
}

// ThrottleError marks a provider-signaled transient rejection (429/5xx).
type ThrottleError struct {
	Err error
}

func (e *ThrottleError) Error() string {
	return "gemini: throttled: " + e.Err.Error()
}

func (e *ThrottleError) Unwrap() error {
	return e.Err
}

// AuthError marks a rejected credential (401/403).
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return "gemini: auth: " + e.Err.Error()
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// IsThrottled reports whether err is a throttling signal.
func IsThrottled(err error) bool {
	var te *ThrottleError
	return errors.As(err, &te)
}

// IsAuthError reports whether err is a credential rejection.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

func classifyErr(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 429 || apiErr.Code/100 == 5:
			return &ThrottleError{Err: err}
		case apiErr.Code == 401 || apiErr.Code == 403:
			return &AuthError{Err: err}
		}
		return err
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &ThrottleError{Err: err}
	}
	return err
}

package gemini

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), Config{APIKey: "  "})
	require.Error(t, err)
}

func TestClassifyErr(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantThrottle bool
		wantAuth     bool
	}{
		{name: "429", err: genai.APIError{Code: 429, Message: "rate limit"}, wantThrottle: true},
		{name: "503", err: genai.APIError{Code: 503, Message: "overloaded"}, wantThrottle: true},
		{name: "401", err: genai.APIError{Code: 401, Message: "invalid key"}, wantAuth: true},
		{name: "403", err: genai.APIError{Code: 403, Message: "forbidden"}, wantAuth: true},
		{name: "400 passes through", err: genai.APIError{Code: 400, Message: "bad request"}},
		{name: "plain error passes through", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyErr(tt.err)
			assert.Equal(t, tt.wantThrottle, IsThrottled(got))
			assert.Equal(t, tt.wantAuth, IsAuthError(got))
		})
	}
}

func TestErrorsUnwrap(t *testing.T) {
	base := errors.New("underlying")

	te := &ThrottleError{Err: base}
	assert.ErrorIs(t, te, base)
	assert.True(t, IsThrottled(fmt.Errorf("classify: %w", te)))

	ae := &AuthError{Err: base}
	assert.ErrorIs(t, ae, base)
	assert.True(t, IsAuthError(fmt.Errorf("resolve: %w", ae)))
}

func TestModelInfo_SupportsGeneration(t *testing.T) {
	assert.True(t, ModelInfo{SupportedActions: []string{"countTokens", "generateContent"}}.SupportsGeneration())
	assert.False(t, ModelInfo{SupportedActions: []string{"embedContent"}}.SupportsGeneration())
	assert.False(t, ModelInfo{}.SupportsGeneration())
}

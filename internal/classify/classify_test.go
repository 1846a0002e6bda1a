package classify

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Heetbisht/bagasse-scout/internal/model"
	"github.com/Heetbisht/bagasse-scout/internal/resilience"
	"github.com/Heetbisht/bagasse-scout/pkg/gemini"
)

type mockGemini struct {
	mock.Mock
}

func (m *mockGemini) ListModels(ctx context.Context) ([]gemini.ModelInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]gemini.ModelInfo), args.Error(1)
}

func (m *mockGemini) GenerateText(ctx context.Context, modelName, prompt string) (string, error) {
	args := m.Called(ctx, modelName, prompt)
	return args.String(0), args.Error(1)
}

func fastRetry() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}

const validJudgement = `{
	"company": "Eco Wholesale Ltd",
	"is_relevant": true,
	"type": "Wholesaler",
	"email": "sales@eco-wholesale.example",
	"phone": "+44 20 7946 0000",
	"location": "London, UK",
	"reasoning": "Carries bagasse stock with a trade section.",
	"score": 8
}`

func TestClassify_Success(t *testing.T) {
	mg := &mockGemini{}
	mg.On("GenerateText", mock.Anything, "models/gemini-2.5-flash", mock.Anything).Return(validJudgement, nil)

	c := NewClassifier(mg, "Bagasse tableware", fastRetry())
	doc := &model.Document{URL: "https://eco-wholesale.example", Text: strings.Repeat("bagasse plates ", 30)}

	j, err := c.Classify(context.Background(), doc, "models/gemini-2.5-flash")
	require.NoError(t, err)
	assert.Equal(t, "Eco Wholesale Ltd", j.CompanyName)
	assert.True(t, j.IsRelevant)
	require.NotNil(t, j.Score)
	assert.Equal(t, 8, *j.Score)
}

func TestClassify_RetriesOnThrottle(t *testing.T) {
	mg := &mockGemini{}
	mg.On("GenerateText", mock.Anything, mock.Anything, mock.Anything).
		Return("", &gemini.ThrottleError{Err: assert.AnError}).Once()
	mg.On("GenerateText", mock.Anything, mock.Anything, mock.Anything).
		Return(validJudgement, nil).Once()

	c := NewClassifier(mg, "Bagasse tableware", fastRetry())
	doc := &model.Document{URL: "https://example.com", Text: "content"}

	j, err := c.Classify(context.Background(), doc, "m")
	require.NoError(t, err)
	assert.True(t, j.IsRelevant)
	mg.AssertNumberOfCalls(t, "GenerateText", 2)
}

func TestClassify_ThrottleExhaustion(t *testing.T) {
	mg := &mockGemini{}
	mg.On("GenerateText", mock.Anything, mock.Anything, mock.Anything).
		Return("", &gemini.ThrottleError{Err: assert.AnError})

	c := NewClassifier(mg, "Bagasse tableware", fastRetry())
	doc := &model.Document{URL: "https://example.com", Text: "content"}

	_, err := c.Classify(context.Background(), doc, "m")
	require.Error(t, err)
	mg.AssertNumberOfCalls(t, "GenerateText", 3)
}

func TestClassify_AuthErrorNotRetried(t *testing.T) {
	mg := &mockGemini{}
	mg.On("GenerateText", mock.Anything, mock.Anything, mock.Anything).
		Return("", &gemini.AuthError{Err: assert.AnError})

	c := NewClassifier(mg, "Bagasse tableware", fastRetry())
	doc := &model.Document{URL: "https://example.com", Text: "content"}

	_, err := c.Classify(context.Background(), doc, "m")
	require.Error(t, err)
	assert.True(t, gemini.IsAuthError(err))
	mg.AssertNumberOfCalls(t, "GenerateText", 1)
}

func TestClassify_MalformedResponse(t *testing.T) {
	mg := &mockGemini{}
	mg.On("GenerateText", mock.Anything, mock.Anything, mock.Anything).Return("I cannot help with that.", nil)

	c := NewClassifier(mg, "Bagasse tableware", fastRetry())
	doc := &model.Document{URL: "https://example.com", Text: "content"}

	_, err := c.Classify(context.Background(), doc, "m")
	require.Error(t, err)

	var me *MalformedResponseError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "I cannot help with that.", me.Raw)
}

func TestBuildPrompt_TruncatesDocument(t *testing.T) {
	doc := &model.Document{
		URL:  "https://example.com",
		Text: strings.Repeat("a", promptBudget+5000),
	}
	prompt := BuildPrompt(doc, "Bagasse tableware")

	assert.Less(t, len(prompt), promptBudget+2000)
	assert.Contains(t, prompt, "https://example.com")
	assert.Contains(t, prompt, "Bagasse tableware")
	assert.Contains(t, prompt, `"is_relevant"`)
}

func TestBuildPrompt_TruncatesOnRuneBoundary(t *testing.T) {
	// German content with two-byte runes sized so a byte cut would land
	// mid-rune.
	doc := &model.Document{
		URL:  "https://gruene-verpackung.example",
		Text: strings.Repeat("Großhändler für Zuckerrohrgeschirr. ", 400),
	}
	prompt := BuildPrompt(doc, "Bagasse tableware")

	assert.True(t, utf8.ValidString(prompt), "truncation split a multi-byte rune")
	assert.Less(t, len(prompt), len(doc.Text))
}

func TestTruncateUTF8(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{name: "short input unchanged", in: "händler", limit: 100, want: "händler"},
		{name: "ascii cut exact", in: "abcdef", limit: 3, want: "abc"},
		{name: "backs up over split rune", in: "abäcd", limit: 3, want: "ab"},
		{name: "boundary cut kept", in: "abäcd", limit: 4, want: "abä"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateUTF8(tt.in, tt.limit)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestParseJudgement_PartialFields(t *testing.T) {
	j, err := ParseJudgement(`{"company": "Acme", "is_relevant": false}`)
	require.NoError(t, err)
	assert.Equal(t, "Acme", j.CompanyName)
	assert.False(t, j.IsRelevant)
	assert.Empty(t, j.ContactEmail)
	assert.Nil(t, j.Score)
}

func TestParseJudgement_ScoreOutOfRangeDropped(t *testing.T) {
	for _, raw := range []string{
		`{"company": "Acme", "is_relevant": true, "score": 0}`,
		`{"company": "Acme", "is_relevant": true, "score": 11}`,
	} {
		j, err := ParseJudgement(raw)
		require.NoError(t, err)
		assert.Nil(t, j.Score)
	}
}

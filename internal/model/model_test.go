package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentLength(t *testing.T) {
	d := Document{URL: "https://example.com", Text: "hello"}
	assert.Equal(t, 5, d.Length())
}

func TestJudgementJSON_PartialFields(t *testing.T) {
	var j Judgement
	require.NoError(t, json.Unmarshal([]byte(`{"company":"Acme","is_relevant":true}`), &j))
	assert.Equal(t, "Acme", j.CompanyName)
	assert.True(t, j.IsRelevant)
	assert.Nil(t, j.Score)
	assert.Empty(t, j.ContactEmail)
}

func TestLeadJSON_EmbedsJudgement(t *testing.T) {
	score := 7
	l := Lead{
		Judgement: Judgement{CompanyName: "Acme", IsRelevant: true, Score: &score},
		URL:       "https://acme.example",
		Market:    "UK",
	}
	data, err := json.Marshal(l)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "Acme", out["company"])
	assert.Equal(t, "https://acme.example", out["website"])
	assert.Equal(t, "UK", out["market"])
	assert.Equal(t, float64(7), out["score"])
}

func TestRunResultCount(t *testing.T) {
	r := RunResult{Leads: []Lead{{URL: "a"}, {URL: "b"}}}
	assert.Equal(t, 2, r.Count())
}

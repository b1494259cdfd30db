package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"news-analyzer/internal/domain"
)

func testPassages() []domain.RetrievedPassage {
	return []domain.RetrievedPassage{
		{
			ID:    "p-1",
			Score: 0.91,
			Metadata: domain.PassageMetadata{
				NewsID:  "n-1",
				Title:   "Acme announces new product line",
				Content: "Acme unveiled a new product line at its annual event.",
				URL:     "https://example.com/acme-product",
			},
		},
		{
			ID:    "p-2",
			Score: 0.84,
			Metadata: domain.PassageMetadata{
				NewsID:  "n-2",
				Title:   "Acme quarterly results beat expectations",
				Content: "Acme reported revenue up 12% year over year.",
				URL:     "https://example.com/acme-results",
			},
		},
	}
}

func newTestGenerator(llm domain.LLMClient, maxRetries int) (*DigestGenerator, *[]time.Duration) {
	g := NewDigestGenerator(llm, nil, maxRetries, testLogger())
	sleeps := &[]time.Duration{}
	g.sleep = func(d time.Duration) { *sleeps = append(*sleeps, d) }
	return g, sleeps
}

func TestGenerate_NoPassages(t *testing.T) {
	llm := &mockLLMClient{}
	g, _ := newTestGenerator(llm, 3)

	digest := g.Generate(context.Background(), "Acme", nil)

	assert.Equal(t, domain.StatusNoData, digest.Status)
	assert.NotNil(t, digest.Facts)
	assert.NotNil(t, digest.Opinions)
	assert.Empty(t, digest.Facts)
	assert.Contains(t, digest.Message, "Acme")
	llm.AssertNotCalled(t, "Generate")
}

func TestGenerate_SucceedsFirstAttempt(t *testing.T) {
	llm := &mockLLMClient{}
	llm.On("Generate", mock.Anything, mock.Anything).
		Return(&domain.LLMResponse{Text: validDigestJSON, Done: true}, nil).Once()

	g, sleeps := newTestGenerator(llm, 3)
	digest := g.Generate(context.Background(), "Acme", testPassages())

	assert.Equal(t, domain.StatusSuccess, digest.Status)
	require.Len(t, digest.Facts, 1)
	assert.Empty(t, *sleeps, "a clean first attempt must not sleep")
	llm.AssertNumberOfCalls(t, "Generate", 1)
}

func TestGenerate_RepairRecoversMalformedOutput(t *testing.T) {
	llm := &mockLLMClient{}
	llm.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "Analyze the following recent news")
	})).Return(&domain.LLMResponse{Text: "Sure! Here you go: facts and opinions", Done: true}, nil).Once()
	llm.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "Fix the following malformed JSON")
	})).Return(&domain.LLMResponse{Text: validDigestJSON, Done: true}, nil).Once()

	g, _ := newTestGenerator(llm, 3)
	digest := g.Generate(context.Background(), "Acme", testPassages())

	assert.Equal(t, domain.StatusSuccess, digest.Status)
	require.Len(t, digest.Facts, 1)
	llm.AssertNumberOfCalls(t, "Generate", 2)
}

func TestGenerate_BacksOffExponentiallyBetweenAttempts(t *testing.T) {
	llm := &mockLLMClient{}
	llm.On("Generate", mock.Anything, mock.Anything).
		Return(nil, errors.New("provider overloaded"))

	g, sleeps := newTestGenerator(llm, 3)
	digest := g.Generate(context.Background(), "Acme", testPassages())

	assert.Equal(t, domain.StatusPartialSuccess, digest.Status)
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, *sleeps)
	llm.AssertNumberOfCalls(t, "Generate", 3)
}

func TestGenerate_ExhaustionFallsBackToPartialDigest(t *testing.T) {
	llm := &mockLLMClient{}
	llm.On("Generate", mock.Anything, mock.Anything).
		Return(nil, errors.New("provider overloaded"))

	g, _ := newTestGenerator(llm, 2)
	digest := g.Generate(context.Background(), "Acme", testPassages())

	assert.Equal(t, domain.StatusPartialSuccess, digest.Status)
	require.Len(t, digest.Facts, 1)
	assert.Empty(t, digest.Opinions)
	assert.NotEmpty(t, digest.Error)

	fact := digest.Facts[0]
	assert.Contains(t, fact.Topic, "Acme")
	require.Len(t, fact.Summaries, 1)
	require.Len(t, fact.Summaries[0].Citations, 1)
	assert.Equal(t, "n-1", fact.Summaries[0].Citations[0].NewsID, "fallback cites the first passage")
	assert.Contains(t, fact.Summaries[0].Content, "2 recent news passages")
}

func TestGenerate_EmptyResponseCountsAsFailure(t *testing.T) {
	llm := &mockLLMClient{}
	llm.On("Generate", mock.Anything, mock.Anything).
		Return(&domain.LLMResponse{Text: "   ", Done: true}, nil)

	g, _ := newTestGenerator(llm, 1)
	digest := g.Generate(context.Background(), "Acme", testPassages())

	assert.Equal(t, domain.StatusPartialSuccess, digest.Status)
	assert.NotEmpty(t, digest.Error)
}

func TestGenerate_RepairExhaustionPausesBetweenAttempts(t *testing.T) {
	llm := &mockLLMClient{}
	llm.On("Generate", mock.Anything, mock.Anything).
		Return(&domain.LLMResponse{Text: "still not json", Done: true}, nil)

	g, sleeps := newTestGenerator(llm, 1)
	digest := g.Generate(context.Background(), "Acme", testPassages())

	// One analysis call plus three repair calls, with a pause between repairs.
	llm.AssertNumberOfCalls(t, "Generate", 4)
	assert.Equal(t, []time.Duration{repairPause, repairPause}, *sleeps)
	assert.Equal(t, domain.StatusPartialSuccess, digest.Status)
}

package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"news-analyzer/internal/domain"
)

func TestBuildQuery_IncludesCompanyAndFinancialTerms(t *testing.T) {
	synth := NewQuerySynthesizer(&mockEncoder{}, 0, testLogger())

	query := synth.BuildQuery("Acme")

	assert.Contains(t, query, "Acme")
	assert.Contains(t, query, "earnings reports")
	assert.Contains(t, query, "market dynamics")
}

func TestEmbed_Success(t *testing.T) {
	enc := &mockEncoder{}
	enc.On("Encode", mock.Anything, []string{"query"}).Return([][]float32{testVector()}, nil)

	synth := NewQuerySynthesizer(enc, 0, testLogger())
	vector, err := synth.Embed(context.Background(), "query")

	require.NoError(t, err)
	assert.Len(t, vector, EmbeddingDimensions)
}

func TestEmbed_CachesByText(t *testing.T) {
	enc := &mockEncoder{}
	enc.On("Encode", mock.Anything, []string{"query"}).Return([][]float32{testVector()}, nil).Once()

	synth := NewQuerySynthesizer(enc, 0, testLogger())

	_, err := synth.Embed(context.Background(), "query")
	require.NoError(t, err)
	_, err = synth.Embed(context.Background(), "query")
	require.NoError(t, err)

	enc.AssertNumberOfCalls(t, "Encode", 1)
}

func TestEmbed_BackendFailure(t *testing.T) {
	enc := &mockEncoder{}
	enc.On("Encode", mock.Anything, mock.Anything).Return(nil, errors.New("unreachable"))

	synth := NewQuerySynthesizer(enc, 0, testLogger())
	_, err := synth.Embed(context.Background(), "query")

	var embErr *domain.EmbeddingError
	assert.ErrorAs(t, err, &embErr)
}

func TestEmbed_DimensionMismatch(t *testing.T) {
	enc := &mockEncoder{}
	enc.On("Encode", mock.Anything, mock.Anything).Return([][]float32{make([]float32, 512)}, nil)

	synth := NewQuerySynthesizer(enc, 0, testLogger())
	_, err := synth.Embed(context.Background(), "query")

	var embErr *domain.EmbeddingError
	assert.ErrorAs(t, err, &embErr)
}

func TestEmbed_CountMismatch(t *testing.T) {
	enc := &mockEncoder{}
	enc.On("Encode", mock.Anything, mock.Anything).Return([][]float32{}, nil)

	synth := NewQuerySynthesizer(enc, 0, testLogger())
	_, err := synth.Embed(context.Background(), "query")

	var embErr *domain.EmbeddingError
	assert.ErrorAs(t, err, &embErr)
}

func TestEmbed_FailuresAreNotCached(t *testing.T) {
	enc := &mockEncoder{}
	enc.On("Encode", mock.Anything, mock.Anything).Return(nil, errors.New("unreachable")).Once()
	enc.On("Encode", mock.Anything, mock.Anything).Return([][]float32{testVector()}, nil).Once()

	synth := NewQuerySynthesizer(enc, 0, testLogger())

	_, err := synth.Embed(context.Background(), "query")
	require.Error(t, err)

	vector, err := synth.Embed(context.Background(), "query")
	require.NoError(t, err)
	assert.Len(t, vector, EmbeddingDimensions)
}

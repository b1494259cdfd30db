package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"news-analyzer/internal/domain"
)

func fixedNow() time.Time {
	return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
}

func TestResolve_MatchesExactAndSubstring(t *testing.T) {
	repo := &mockNewsRepo{}
	repo.On("ListNewsSince", mock.Anything, mock.Anything).Return([]domain.NewsItem{
		{ID: "n-1", Companies: []string{"Acme"}},
		{ID: "n-2", Companies: []string{"Acme Holdings"}},
		{ID: "n-3", Companies: []string{"Globex"}},
		{ID: "n-4", Companies: nil},
	}, nil)

	resolver := NewNewsIDResolver(repo, testLogger())
	resolver.now = fixedNow

	ids := resolver.Resolve(context.Background(), "Acme", 24)

	assert.Equal(t, []string{"n-1", "n-2"}, ids)
}

func TestResolve_WindowBoundsQuery(t *testing.T) {
	repo := &mockNewsRepo{}
	expectedSince := fixedNow().Add(-48 * time.Hour)
	repo.On("ListNewsSince", mock.Anything, expectedSince).Return([]domain.NewsItem{}, nil)

	resolver := NewNewsIDResolver(repo, testLogger())
	resolver.now = fixedNow

	resolver.Resolve(context.Background(), "Acme", 48)
	repo.AssertExpectations(t)
}

func TestResolve_StoreFailureYieldsEmpty(t *testing.T) {
	repo := &mockNewsRepo{}
	repo.On("ListNewsSince", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

	resolver := NewNewsIDResolver(repo, testLogger())
	resolver.now = fixedNow

	ids := resolver.Resolve(context.Background(), "Acme", 24)
	assert.Empty(t, ids)
}

func TestResolve_NoMatches(t *testing.T) {
	repo := &mockNewsRepo{}
	repo.On("ListNewsSince", mock.Anything, mock.Anything).Return([]domain.NewsItem{
		{ID: "n-1", Companies: []string{"Globex"}},
	}, nil)

	resolver := NewNewsIDResolver(repo, testLogger())
	resolver.now = fixedNow

	ids := resolver.Resolve(context.Background(), "Acme", 24)
	assert.Empty(t, ids)
}

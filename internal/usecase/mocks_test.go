package usecase

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"news-analyzer/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type mockCompanyRepo struct {
	mock.Mock
}

func (m *mockCompanyRepo) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]domain.Company), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCompanyRepo) GetByName(ctx context.Context, name string) (*domain.Company, error) {
	args := m.Called(ctx, name)
	if v := args.Get(0); v != nil {
		return v.(*domain.Company), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCompanyRepo) GetArticleCounts(ctx context.Context, companyID string) (int, int, error) {
	args := m.Called(ctx, companyID)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *mockCompanyRepo) UpdateLastArticleCount(ctx context.Context, companyID string, count int) error {
	args := m.Called(ctx, companyID, count)
	return args.Error(0)
}

func (m *mockCompanyRepo) UpdateSummary(ctx context.Context, companyID string, summary []byte) error {
	args := m.Called(ctx, companyID, summary)
	return args.Error(0)
}

type mockNewsRepo struct {
	mock.Mock
}

func (m *mockNewsRepo) ListNewsSince(ctx context.Context, since time.Time) ([]domain.NewsItem, error) {
	args := m.Called(ctx, since)
	if v := args.Get(0); v != nil {
		return v.([]domain.NewsItem), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockPassageIndex struct {
	mock.Mock
}

func (m *mockPassageIndex) Search(ctx context.Context, queryVector []float32, candidateNewsIDs []string, topK int) ([]domain.RetrievedPassage, error) {
	args := m.Called(ctx, queryVector, candidateNewsIDs, topK)
	if v := args.Get(0); v != nil {
		return v.([]domain.RetrievedPassage), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockLLMClient struct {
	mock.Mock
}

func (m *mockLLMClient) Generate(ctx context.Context, prompt string) (*domain.LLMResponse, error) {
	args := m.Called(ctx, prompt)
	if v := args.Get(0); v != nil {
		return v.(*domain.LLMResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockLLMClient) Version() string {
	return "mock-model"
}

type mockEncoder struct {
	mock.Mock
}

func (m *mockEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if v := args.Get(0); v != nil {
		return v.([][]float32), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockEncoder) Version() string {
	return "mock-embedder"
}

// passthroughTx runs the function directly, with no real transaction.
type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func testVector() []float32 {
	v := make([]float32, EmbeddingDimensions)
	for i := range v {
		v[i] = 0.01
	}
	return v
}

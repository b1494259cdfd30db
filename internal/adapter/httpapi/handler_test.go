package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-analyzer/internal/domain"
	"news-analyzer/internal/usecase"
)

// --- stubs ---

type stubCompanies struct {
	companies map[string]*domain.Company
	updated   map[string]int
}

func newStubCompanies(companies ...*domain.Company) *stubCompanies {
	s := &stubCompanies{
		companies: map[string]*domain.Company{},
		updated:   map[string]int{},
	}
	for _, c := range companies {
		s.companies[c.Name] = c
	}
	return s
}

func (s *stubCompanies) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	var out []domain.Company
	for _, c := range s.companies {
		out = append(out, *c)
	}
	return out, nil
}

func (s *stubCompanies) GetByName(ctx context.Context, name string) (*domain.Company, error) {
	return s.companies[name], nil
}

func (s *stubCompanies) GetArticleCounts(ctx context.Context, companyID string) (int, int, error) {
	for _, c := range s.companies {
		if c.ID == companyID {
			return c.CurrentArticleCount, c.LastArticleCount, nil
		}
	}
	return 0, 0, nil
}

func (s *stubCompanies) UpdateLastArticleCount(ctx context.Context, companyID string, count int) error {
	s.updated[companyID] = count
	return nil
}

func (s *stubCompanies) UpdateSummary(ctx context.Context, companyID string, summary []byte) error {
	return nil
}

type stubNews struct{}

func (stubNews) ListNewsSince(ctx context.Context, since time.Time) ([]domain.NewsItem, error) {
	return nil, nil
}

type stubIndex struct{}

func (stubIndex) Search(ctx context.Context, queryVector []float32, candidateNewsIDs []string, topK int) ([]domain.RetrievedPassage, error) {
	return nil, nil
}

type stubLLM struct{}

func (stubLLM) Generate(ctx context.Context, prompt string) (*domain.LLMResponse, error) {
	return &domain.LLMResponse{Text: `{"facts":[],"opinions":[]}`, Done: true}, nil
}

func (stubLLM) Version() string { return "stub" }

type stubEncoder struct{}

func (stubEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = make([]float32, usecase.EmbeddingDimensions)
	}
	return vectors, nil
}

func (stubEncoder) Version() string { return "stub-embedder" }

func newTestHandler(companies *stubCompanies) *Handler {
	log := slog.New(slog.NewJSONHandler(io.Discard, nil))
	analyzer := usecase.NewAnalyzer(
		companies,
		usecase.NewArticleCountGate(companies, log),
		usecase.NewNewsIDResolver(stubNews{}, log),
		usecase.NewQuerySynthesizer(stubEncoder{}, 0, log),
		usecase.NewSemanticRetriever(stubIndex{}, log),
		usecase.NewDigestGenerator(stubLLM{}, nil, 1, log),
		log,
	)
	return NewHandler(analyzer, companies, 24)
}

// --- tests ---

func TestGetCompanySummary_ReturnsStoredJSON(t *testing.T) {
	companies := newStubCompanies(&domain.Company{
		ID:      "c-1",
		Name:    "Acme",
		Summary: []byte(`{"company":"Acme","status":"success"}`),
	})
	h := newTestHandler(companies)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/companies/:name/summary")
	c.SetParamNames("name")
	c.SetParamValues("Acme")

	require.NoError(t, h.GetCompanySummary(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"company":"Acme","status":"success"}`, rec.Body.String())
}

func TestGetCompanySummary_NotFound(t *testing.T) {
	h := newTestHandler(newStubCompanies())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/companies/:name/summary")
	c.SetParamNames("name")
	c.SetParamValues("Nowhere")

	require.NoError(t, h.GetCompanySummary(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetCompanySummary_NoSummaryYet(t *testing.T) {
	companies := newStubCompanies(&domain.Company{ID: "c-1", Name: "Acme"})
	h := newTestHandler(companies)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/companies/:name/summary")
	c.SetParamNames("name")
	c.SetParamValues("Acme")

	require.NoError(t, h.GetCompanySummary(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRunAnalysis_SingleCompany(t *testing.T) {
	companies := newStubCompanies(&domain.Company{
		ID:                  "c-1",
		Name:                "Acme",
		CurrentArticleCount: 0,
		LastArticleCount:    3,
	})
	h := newTestHandler(companies)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/analysis/run",
		strings.NewReader(`{"company": "Acme"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.RunAnalysis(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var result domain.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, domain.StatusNoNews, result.Status)

	count, committed := companies.updated["c-1"]
	assert.True(t, committed, "checkpoint must be committed")
	assert.Equal(t, 0, count, "checkpoint must advance to the observed count")
}

func TestRunAnalysis_UnknownCompany(t *testing.T) {
	h := newTestHandler(newStubCompanies())

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/analysis/run",
		strings.NewReader(`{"company": "Nowhere"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.RunAnalysis(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

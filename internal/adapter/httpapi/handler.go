package httpapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"news-analyzer/internal/domain"
	"news-analyzer/internal/usecase"
)

// Handler exposes the analysis pipeline over HTTP.
type Handler struct {
	analyzer     *usecase.Analyzer
	companies    domain.CompanyRepository
	defaultHours int
}

func NewHandler(analyzer *usecase.Analyzer, companies domain.CompanyRepository, defaultHours int) *Handler {
	return &Handler{
		analyzer:     analyzer,
		companies:    companies,
		defaultHours: defaultHours,
	}
}

// Register attaches the API routes to the echo instance.
func (h *Handler) Register(e *echo.Echo) {
	e.POST("/v1/analysis/run", h.RunAnalysis)
	e.GET("/v1/companies/:name/summary", h.GetCompanySummary)
}

type runAnalysisRequest struct {
	Company     string `json:"company,omitempty"`
	Hours       int    `json:"hours,omitempty"`
	Parallelism int    `json:"parallelism,omitempty"`
}

// RunAnalysis triggers an analysis cycle. With a company name it analyzes
// that company only; without one it runs the full set.
// (POST /v1/analysis/run)
func (h *Handler) RunAnalysis(ctx echo.Context) error {
	var req runAnalysisRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	hours := req.Hours
	if hours <= 0 {
		hours = h.defaultHours
	}

	if req.Company != "" {
		result, err := h.analyzer.AnalyzeCompanyByName(ctx.Request().Context(), req.Company, hours)
		if err != nil {
			if strings.Contains(err.Error(), "not found") {
				return ctx.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
			}
			return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return ctx.JSON(http.StatusOK, result)
	}

	run, err := h.analyzer.AnalyzeAll(ctx.Request().Context(), hours, req.Parallelism)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return ctx.JSON(http.StatusOK, run)
}

// GetCompanySummary returns the stored summary for a company.
// (GET /v1/companies/:name/summary)
func (h *Handler) GetCompanySummary(ctx echo.Context) error {
	name := ctx.Param("name")
	company, err := h.companies.GetByName(ctx.Request().Context(), name)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if company == nil {
		return ctx.JSON(http.StatusNotFound, map[string]string{"error": "company not found"})
	}
	if len(company.Summary) == 0 {
		return ctx.JSON(http.StatusNotFound, map[string]string{"error": "no summary available"})
	}
	return ctx.JSONBlob(http.StatusOK, company.Summary)
}

package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"news-analyzer/internal/domain"
)

const defaultTopK = 50

// RunStats counts per-run outcomes across companies.
type RunStats struct {
	Analyzed int `json:"analyzed"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// AnalysisRun is the collected output of an all-companies cycle. Skipped
// companies are counted but excluded from Results.
type AnalysisRun struct {
	Results []domain.AnalysisResult `json:"results"`
	Stats   RunStats                `json:"stats"`
}

// Analyzer sequences the per-company pipeline: gate check, news-id
// resolution, query synthesis, semantic retrieval, digest generation and
// source extraction, then commits the article-count checkpoint.
type Analyzer struct {
	companies domain.CompanyRepository
	tx        domain.TransactionManager
	gate      *ArticleCountGate
	resolver  *NewsIDResolver
	synth     *QuerySynthesizer
	retriever *SemanticRetriever
	generator *DigestGenerator
	sources   SourceExtractor

	topK             int
	persistSummaries bool
	now              func() time.Time
	logger           *slog.Logger
}

// AnalyzerOption customizes Analyzer construction.
type AnalyzerOption func(*Analyzer)

// WithTopK overrides the number of passages requested from vector search.
func WithTopK(topK int) AnalyzerOption {
	return func(a *Analyzer) {
		if topK > 0 {
			a.topK = topK
		}
	}
}

// WithSummaryPersistence makes each completed analysis write the serialized
// result into the company's summary column alongside the checkpoint commit.
func WithSummaryPersistence() AnalyzerOption {
	return func(a *Analyzer) { a.persistSummaries = true }
}

// WithTransactionManager wraps checkpoint and summary writes in a single
// transaction so the two advance together.
func WithTransactionManager(tx domain.TransactionManager) AnalyzerOption {
	return func(a *Analyzer) { a.tx = tx }
}

// NewAnalyzer wires the orchestrator from its stage components.
func NewAnalyzer(
	companies domain.CompanyRepository,
	gate *ArticleCountGate,
	resolver *NewsIDResolver,
	synth *QuerySynthesizer,
	retriever *SemanticRetriever,
	generator *DigestGenerator,
	logger *slog.Logger,
	opts ...AnalyzerOption,
) *Analyzer {
	a := &Analyzer{
		companies: companies,
		gate:      gate,
		resolver:  resolver,
		synth:     synth,
		retriever: retriever,
		generator: generator,
		sources:   NewSourceExtractor(),
		topK:      defaultTopK,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzeAll runs the per-company pipeline for every tracked company.
// Companies run sequentially by default; parallelism > 1 fans out across
// distinct companies while each company's stages stay strictly ordered.
func (a *Analyzer) AnalyzeAll(ctx context.Context, hours, parallelism int) (*AnalysisRun, error) {
	companies, err := a.companies.ListCompanies(ctx)
	if err != nil {
		return nil, &domain.RetrievalError{Stage: "list companies", Err: err}
	}

	runLogger := a.logger.With(slog.String("run_id", uuid.NewString()))
	runLogger.Info("analysis_run_started",
		slog.Int("companies", len(companies)),
		slog.Int("hours", hours),
		slog.Int("parallelism", parallelism),
	)

	run := &AnalysisRun{Results: []domain.AnalysisResult{}}
	if parallelism > 1 {
		a.analyzeAllParallel(ctx, companies, hours, parallelism, run)
	} else {
		for _, company := range companies {
			result, err := a.AnalyzeCompany(ctx, company, hours)
			a.collect(run, result, err)
		}
	}

	runLogger.Info("analysis_run_completed",
		slog.Int("analyzed", run.Stats.Analyzed),
		slog.Int("skipped", run.Stats.Skipped),
		slog.Int("failed", run.Stats.Failed),
	)
	return run, nil
}

func (a *Analyzer) analyzeAllParallel(ctx context.Context, companies []domain.Company, hours, parallelism int, run *AnalysisRun) {
	type outcome struct {
		result domain.AnalysisResult
		err    error
	}
	outcomes := make([]outcome, len(companies))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, company := range companies {
		g.Go(func() error {
			result, err := a.AnalyzeCompany(gctx, company, hours)
			outcomes[i] = outcome{result: result, err: err}
			return nil
		})
	}
	// Workers never return errors; company failures land in outcomes.
	_ = g.Wait()

	for _, o := range outcomes {
		a.collect(run, o.result, o.err)
	}
}

func (a *Analyzer) collect(run *AnalysisRun, result domain.AnalysisResult, err error) {
	switch {
	case err != nil:
		run.Stats.Failed++
	case result.Status == domain.StatusSkipped:
		run.Stats.Skipped++
	default:
		run.Results = append(run.Results, result)
		run.Stats.Analyzed++
	}
}

// AnalyzeCompanyByName resolves a company by name and analyzes it. Used by
// single-company targeting from the CLI and HTTP surfaces.
func (a *Analyzer) AnalyzeCompanyByName(ctx context.Context, name string, hours int) (domain.AnalysisResult, error) {
	company, err := a.companies.GetByName(ctx, name)
	if err != nil {
		return domain.AnalysisResult{}, &domain.RetrievalError{Stage: "company lookup", Err: err}
	}
	if company == nil {
		return domain.AnalysisResult{}, fmt.Errorf("company %q not found", name)
	}
	return a.AnalyzeCompany(ctx, *company, hours)
}

// AnalyzeCompany runs the full gated pipeline for one company. The returned
// error is non-nil only for the embedding hard stop, in which case no result
// is produced and the checkpoint is left untouched so the company is retried
// next cycle. Every other failure maps to a result status.
func (a *Analyzer) AnalyzeCompany(ctx context.Context, company domain.Company, hours int) (domain.AnalysisResult, error) {
	needed, current := a.gate.ShouldAnalyze(ctx, company.ID)
	if !needed {
		a.logger.Info("company_skipped_unchanged", slog.String("company", company.Name))
		return domain.AnalysisResult{
			Company:        company.Name,
			Analysis:       nil,
			Sources:        []domain.Source{},
			TimeRangeHours: hours,
			Status:         domain.StatusSkipped,
			Message:        "article count unchanged since last analysis",
		}, nil
	}

	var result domain.AnalysisResult
	if current == 0 {
		// Nothing to analyze, but the checkpoint still advances to zero below.
		a.logger.Info("company_no_articles", slog.String("company", company.Name))
		result = domain.AnalysisResult{
			Company:        company.Name,
			NewsCount:      0,
			Analysis:       nil,
			Sources:        []domain.Source{},
			TimeRangeHours: hours,
			Status:         domain.StatusNoNews,
			Message:        "no articles in the analysis window",
		}
	} else {
		var err error
		result, err = a.analyzeOne(ctx, company.Name, hours)
		if err != nil {
			var embErr *domain.EmbeddingError
			if errors.As(err, &embErr) {
				a.logger.Error("company_analysis_failed",
					slog.String("company", company.Name),
					slog.String("error", err.Error()),
				)
				return domain.AnalysisResult{}, err
			}
			result = domain.AnalysisResult{
				Company:        company.Name,
				Analysis:       nil,
				Sources:        []domain.Source{},
				TimeRangeHours: hours,
				Status:         domain.StatusError,
				Error:          err.Error(),
			}
		}
	}

	// Checkpoint and decision come from the same gate-time snapshot.
	a.finalize(ctx, company, current, result)
	return result, nil
}

// analyzeOne runs resolution, retrieval, generation and source extraction.
func (a *Analyzer) analyzeOne(ctx context.Context, companyName string, hours int) (domain.AnalysisResult, error) {
	ids := a.resolver.Resolve(ctx, companyName, hours)
	if len(ids) == 0 {
		return domain.AnalysisResult{
			Company:        companyName,
			NewsCount:      0,
			Analysis:       nil,
			Sources:        []domain.Source{},
			TimeRangeHours: hours,
			Status:         domain.StatusNoNews,
		}, nil
	}

	query := a.synth.BuildQuery(companyName)
	vector, err := a.synth.Embed(ctx, query)
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	passages := a.retriever.Search(ctx, vector, ids, a.topK)
	if len(passages) == 0 {
		return domain.AnalysisResult{
			Company:        companyName,
			NewsCount:      len(ids),
			Analysis:       nil,
			Sources:        []domain.Source{},
			TimeRangeHours: hours,
			Status:         domain.StatusNoVectorData,
			Message:        fmt.Sprintf("found %d news records but no matching content in the vector index", len(ids)),
		}, nil
	}

	digest := a.generator.Generate(ctx, companyName, passages)
	status := digest.Status
	if status == "" {
		status = domain.StatusSuccess
	}

	return domain.AnalysisResult{
		Company:        companyName,
		NewsCount:      len(ids),
		Analysis:       digest,
		Sources:        a.sources.Extract(passages),
		TimeRangeHours: hours,
		Status:         status,
		Message:        digest.Message,
		Error:          digest.Error,
	}, nil
}

// finalize commits the checkpoint and, when enabled, persists the summary.
// Persistence failures are logged and never fail the analysis result.
func (a *Analyzer) finalize(ctx context.Context, company domain.Company, current int, result domain.AnalysisResult) {
	write := func(ctx context.Context) error {
		if err := a.gate.Commit(ctx, company.ID, current); err != nil {
			return err
		}
		if a.persistSummaries {
			return a.saveSummary(ctx, company.ID, result)
		}
		return nil
	}

	var err error
	if a.tx != nil {
		err = a.tx.RunInTx(ctx, write)
	} else {
		err = write(ctx)
	}
	if err != nil {
		a.logger.Warn("analysis_finalize_failed",
			slog.String("company", company.Name),
			slog.Int("checkpoint", current),
			slog.String("error", err.Error()),
		)
	}
}

// saveSummary writes the serialized result into summary_24hrs, or clears the
// column when the run produced no content at all.
func (a *Analyzer) saveSummary(ctx context.Context, companyID string, result domain.AnalysisResult) error {
	if result.Analysis == nil && result.NewsCount == 0 {
		if err := a.companies.UpdateSummary(ctx, companyID, nil); err != nil {
			return &domain.PersistenceError{Op: "summary clear", Err: err}
		}
		return nil
	}
	if result.Status != domain.StatusSuccess && result.Status != domain.StatusPartialSuccess {
		return nil
	}

	result.UpdatedAt = a.now().Format(time.RFC3339)
	payload, err := json.Marshal(result)
	if err != nil {
		return &domain.PersistenceError{Op: "summary encode", Err: err}
	}
	if err := a.companies.UpdateSummary(ctx, companyID, payload); err != nil {
		return &domain.PersistenceError{Op: "summary write", Err: err}
	}
	return nil
}

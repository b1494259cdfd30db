package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"news-analyzer/internal/adapter/report"
	"news-analyzer/internal/di"
	"news-analyzer/internal/domain"
	"news-analyzer/internal/infra"
	"news-analyzer/internal/infra/config"
	"news-analyzer/internal/infra/logger"
	"news-analyzer/internal/usecase"
)

var (
	flagHours    int
	flagCompany  string
	flagOutput   string
	flagJSON     bool
	flagSaveDB   bool
	flagParallel int
	flagVerbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "analyzer",
	Short: "Company news analysis pipeline",
	Long: `analyzer runs the company news analysis pipeline: it detects which
companies have new articles, retrieves their recent coverage from the vector
index, and produces a structured fact/opinion digest per company.

Example usage:
  analyzer run                       # Analyze all companies, last 24 hours
  analyzer run --company "Acme"      # Analyze one company
  analyzer run --hours 48 --json     # Wider window, JSON output
  analyzer selftest                  # Verify connectivity to DB and providers`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the analysis pipeline",
	RunE:  runAnalysis,
}

var selftestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "Verify connectivity to the database and embedding provider",
	RunE:  runSelftest,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(selftestCmd)

	runCmd.Flags().IntVar(&flagHours, "hours", 0, "analysis window in hours (default from ANALYSIS_HOURS)")
	runCmd.Flags().StringVar(&flagCompany, "company", "", "analyze a single company by name")
	runCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "write the report to a file instead of stdout")
	runCmd.Flags().BoolVar(&flagJSON, "json", false, "output results as JSON")
	runCmd.Flags().BoolVar(&flagSaveDB, "save-db", false, "persist summaries to the database")
	runCmd.Flags().IntVar(&flagParallel, "parallel", 0, "number of companies analyzed concurrently")

	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup(ctx context.Context) (*config.Config, *di.ApplicationComponents, func(), error) {
	cfg := config.Load()
	if flagHours > 0 {
		cfg.Analysis.Hours = flagHours
	}
	if flagParallel > 0 {
		cfg.Analysis.Parallelism = flagParallel
	}
	cfg.Analysis.PersistSummaries = flagSaveDB
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}

	if flagVerbose {
		_ = os.Setenv("LOG_LEVEL", "debug")
	}
	log := logger.New()
	slog.SetDefault(log)

	pool, err := infra.NewPostgresDB(ctx, cfg.DB.DSN(), infra.PoolConfig{
		MaxConns: int(cfg.DB.MaxConns),
		MinConns: int(cfg.DB.MinConns),
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to db: %w", err)
	}

	components, err := di.NewApplicationComponents(cfg, pool, log)
	if err != nil {
		pool.Close()
		return nil, nil, nil, err
	}
	return cfg, components, pool.Close, nil
}

func runAnalysis(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, components, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	var (
		results []domain.AnalysisResult
		stats   usecase.RunStats
	)
	if flagCompany != "" {
		result, err := components.Analyzer.AnalyzeCompanyByName(ctx, flagCompany, cfg.Analysis.Hours)
		if err != nil {
			return err
		}
		if result.Status == domain.StatusSkipped {
			stats.Skipped++
		} else {
			results = append(results, result)
			stats.Analyzed++
		}
	} else {
		run, err := components.Analyzer.AnalyzeAll(ctx, cfg.Analysis.Hours, cfg.Analysis.Parallelism)
		if err != nil {
			return err
		}
		results = run.Results
		stats = run.Stats
	}

	var rendered string
	if flagJSON {
		payload, err := json.MarshalIndent(map[string]any{
			"results": results,
			"stats":   stats,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode results: %w", err)
		}
		rendered = string(payload) + "\n"
	} else {
		formatter := report.NewFormatter()
		rendered = formatter.FormatRun(results, stats.Analyzed, stats.Skipped, stats.Failed)
	}

	if flagOutput != "" {
		if err := os.WriteFile(flagOutput, []byte(rendered), 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	} else {
		fmt.Print(rendered)
	}

	if len(results) == 0 && stats.Skipped == 0 {
		return fmt.Errorf("no companies produced a result")
	}
	return nil
}

func runSelftest(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
	defer cancel()

	_, components, cleanup, err := setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	companies, err := components.CompanyRepo.ListCompanies(ctx)
	if err != nil {
		return fmt.Errorf("company table probe failed: %w", err)
	}
	fmt.Printf("database: ok (%d companies)\n", len(companies))

	vectors, err := components.Encoder.Encode(ctx, []string{"connectivity probe"})
	if err != nil {
		return fmt.Errorf("embedding probe failed: %w", err)
	}
	fmt.Printf("embedding provider: ok (%s, %d dimensions)\n",
		components.Encoder.Version(), len(vectors[0]))

	passages, err := components.PassageIndex.Search(ctx, vectors[0], []string{"selftest"}, 1)
	if err != nil {
		return fmt.Errorf("vector index probe failed: %w", err)
	}
	fmt.Printf("vector index: ok (%d rows for probe id)\n", len(passages))

	fmt.Printf("llm provider: configured (%s)\n", components.Generator.Version())
	return nil
}

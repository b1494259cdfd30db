package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"news-analyzer/internal/domain"
)

const (
	defaultMaxRetries = 3
	maxRepairAttempts = 3
	repairPause       = 1 * time.Second
)

// DigestGenerator orchestrates LLM generation of the fact/opinion digest.
// Each attempt runs Format -> Generate -> Parse -> Validate; a parse or
// validation failure triggers a bounded AI repair pass before the attempt is
// counted as failed. Failed attempts back off exponentially. Exhaustion
// yields a degraded fallback digest that still carries signal: downstream
// reporting must be able to surface coverage even when the model misbehaves.
type DigestGenerator struct {
	llm        domain.LLMClient
	prompts    DigestPromptBuilder
	validator  DigestValidator
	limiter    *rate.Limiter
	maxRetries int
	sleep      func(time.Duration)
	logger     *slog.Logger
}

// NewDigestGenerator wires the generator. A nil limiter disables client-side
// rate limiting; maxRetries <= 0 selects the default of 3.
func NewDigestGenerator(llm domain.LLMClient, limiter *rate.Limiter, maxRetries int, logger *slog.Logger) *DigestGenerator {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &DigestGenerator{
		llm:        llm,
		prompts:    NewDigestPromptBuilder(),
		validator:  NewDigestValidator(),
		limiter:    limiter,
		maxRetries: maxRetries,
		sleep:      time.Sleep,
		logger:     logger,
	}
}

// Generate produces the digest for a company from its retrieved passages.
// It never returns an error: every failure mode maps to a digest status.
func (g *DigestGenerator) Generate(ctx context.Context, companyName string, passages []domain.RetrievedPassage) *domain.Digest {
	if len(passages) == 0 {
		return &domain.Digest{
			Facts:    []domain.Topic{},
			Opinions: []domain.Topic{},
			Status:   domain.StatusNoData,
			Message:  fmt.Sprintf("no recent news content found for %s", companyName),
		}
	}

	newsContent := g.prompts.FormatPassages(passages)
	prompt := g.prompts.BuildAnalysisPrompt(companyName, newsContent)

	g.logger.Info("digest_generation_started",
		slog.String("company", companyName),
		slog.Int("passages", len(passages)),
		slog.String("model", g.llm.Version()),
	)

	var lastErr error
	for attempt := 0; attempt < g.maxRetries; attempt++ {
		digest, err := g.attempt(ctx, prompt)
		if err == nil {
			digest.Status = domain.StatusSuccess
			g.logger.Info("digest_generation_succeeded",
				slog.String("company", companyName),
				slog.Int("attempt", attempt+1),
				slog.Int("facts", len(digest.Facts)),
				slog.Int("opinions", len(digest.Opinions)),
			)
			return digest
		}

		lastErr = &domain.GenerationError{Attempt: attempt + 1, Err: err}
		g.logger.Warn("digest_generation_attempt_failed",
			slog.String("company", companyName),
			slog.Int("attempt", attempt+1),
			slog.String("error", err.Error()),
		)

		if attempt < g.maxRetries-1 {
			g.sleep(time.Duration(1<<attempt) * time.Second)
		}
	}

	return g.fallbackDigest(companyName, passages, lastErr)
}

// attempt runs one generate-parse-validate-repair cycle.
func (g *DigestGenerator) attempt(ctx context.Context, prompt string) (*domain.Digest, error) {
	resp, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	digest, err := g.validator.Validate(resp.Text)
	if err == nil {
		return digest, nil
	}

	g.logger.Warn("digest_output_invalid", slog.String("error", err.Error()))
	return g.repair(ctx, resp.Text)
}

// repair issues a separate reformat request for the same raw text. Bounded to
// maxRepairAttempts; on success the enclosing attempt counts as successful.
func (g *DigestGenerator) repair(ctx context.Context, malformed string) (*domain.Digest, error) {
	prompt := g.prompts.BuildRepairPrompt(malformed)

	var lastErr error
	for attempt := 0; attempt < maxRepairAttempts; attempt++ {
		resp, err := g.generate(ctx, prompt)
		if err == nil {
			digest, verr := g.validator.Validate(resp.Text)
			if verr == nil {
				g.logger.Info("digest_repair_succeeded", slog.Int("attempt", attempt+1))
				return digest, nil
			}
			lastErr = verr
		} else {
			lastErr = err
		}

		if attempt < maxRepairAttempts-1 {
			g.sleep(repairPause)
		}
	}

	return nil, fmt.Errorf("repair exhausted: %w", lastErr)
}

func (g *DigestGenerator) generate(ctx context.Context, prompt string) (*domain.LLMResponse, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	resp, err := g.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return nil, errors.New("empty llm response")
	}
	return resp, nil
}

// fallbackDigest builds the degraded partial result after exhaustion: one
// synthetic fact sampling the first passage, no opinions, and the last
// failure recorded so callers can surface it.
func (g *DigestGenerator) fallbackDigest(companyName string, passages []domain.RetrievedPassage, lastErr error) *domain.Digest {
	first := passages[0]
	newsID := first.Metadata.NewsID
	if newsID == "" {
		newsID = first.ID
	}

	title := first.Metadata.Title
	if len(title) > 100 {
		title = title[:100]
	}

	content := fmt.Sprintf("Found %d recent news passages about %s.", len(passages), companyName)
	if title != "" {
		content += fmt.Sprintf(" Coverage includes: %s.", title)
	}

	errMsg := "unable to produce a valid analysis after repeated attempts"
	if lastErr != nil {
		errMsg = lastErr.Error()
	}

	g.logger.Warn("digest_generation_exhausted",
		slog.String("company", companyName),
		slog.String("error", errMsg),
	)

	return &domain.Digest{
		Facts: []domain.Topic{{
			Topic: fmt.Sprintf("%s related news", companyName),
			Summaries: []domain.Summary{{
				Aspect:  "news overview",
				Content: content,
				Citations: []domain.Citation{{
					NewsID:  newsID,
					Content: title,
				}},
			}},
		}},
		Opinions: []domain.Topic{},
		Status:   domain.StatusPartialSuccess,
		Message:  "only a partial analysis is available due to generation failures",
		Error:    errMsg,
	}
}

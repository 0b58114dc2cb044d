package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/soccercentral/assistant/internal/audit"
	"github.com/soccercentral/assistant/internal/config"
	"github.com/soccercentral/assistant/internal/llm"
	"github.com/soccercentral/assistant/internal/observability"
	"github.com/soccercentral/assistant/internal/relevance"
	"github.com/soccercentral/assistant/internal/schema"
	"github.com/soccercentral/assistant/internal/sqlguard"
	"github.com/soccercentral/assistant/internal/store"
)

// Options wires the assistant's collaborators. LLM and Executor are
// required; the rest fall back to sensible defaults.
type Options struct {
	LLM      llm.Client
	Executor Executor
	Filter   *relevance.Filter
	Schema   *schema.Descriptor
	Recorder audit.Recorder
	Logger   *slog.Logger
	AI       config.AIConfig
	Cache    config.CacheConfig
	MaxRows  int
}

// Assistant answers academy questions by generating, guarding and running
// SQL, then narrating the result.
type Assistant struct {
	llm       llm.Client
	executor  Executor
	filter    *relevance.Filter
	genPrompt string
	recorder  audit.Recorder
	logger    *slog.Logger
	ai        config.AIConfig
	maxRows   int
	cache     *ttlcache.Cache[string, Response]
}

func New(opts Options) *Assistant {
	if opts.Filter == nil {
		opts.Filter = relevance.Default()
	}
	if opts.Schema == nil {
		opts.Schema = schema.Default()
	}
	if opts.Recorder == nil {
		opts.Recorder = audit.NopRecorder{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxRows <= 0 {
		opts.MaxRows = 100
	}

	a := &Assistant{
		llm:       opts.LLM,
		executor:  opts.Executor,
		filter:    opts.Filter,
		genPrompt: generationPrompt(opts.Schema.Text()),
		recorder:  opts.Recorder,
		logger:    opts.Logger,
		ai:        opts.AI,
		maxRows:   opts.MaxRows,
	}
	if opts.Cache.Enabled {
		a.cache = ttlcache.New[string, Response](
			ttlcache.WithTTL[string, Response](opts.Cache.TTL),
		)
		go a.cache.Start()
	}
	return a
}

func (a *Assistant) Close() {
	if a.cache != nil {
		a.cache.Stop()
	}
}

// Ask runs the full pipeline for one question. It never returns an error:
// every failure collapses to a Response with Success=false and a
// user-facing message.
func (a *Assistant) Ask(ctx context.Context, req Request) Response {
	started := time.Now()
	question := strings.TrimSpace(req.Question)
	logger := a.logger.With(
		slog.String("trace_id", observability.TraceIDFromContext(ctx)),
		slog.String("caller", req.Caller),
	)

	if !a.filter.IsRelevant(question) {
		logger.InfoContext(ctx, "question_off_topic", slog.String("question", question))
		resp := Response{Answer: refusalMessage, Data: []map[string]any{}}
		a.finish(ctx, req, question, resp, observability.OutcomeOffTopic, "", started)
		return resp
	}

	cacheKey := strings.ToLower(question)
	if a.cache != nil {
		if item := a.cache.Get(cacheKey); item != nil {
			logger.InfoContext(ctx, "question_cache_hit")
			resp := item.Value()
			a.finish(ctx, req, question, resp, observability.OutcomeCached, "", started)
			return resp
		}
	}

	candidate, ok := a.generate(ctx, logger, question)
	if !ok {
		resp := Response{Answer: guidanceMessage, Data: []map[string]any{}}
		a.finish(ctx, req, question, resp, observability.OutcomeGenerationFailed, "", started)
		return resp
	}

	verdict := sqlguard.Validate(candidate)
	if !verdict.OK {
		logger.WarnContext(ctx, "query_rejected",
			slog.String("category", verdict.Category),
			slog.String("reason", verdict.Reason),
			slog.String("query", candidate),
		)
		observability.ObserveValidationRejection(verdict.Category)
		resp := Response{Answer: guidanceMessage, Data: []map[string]any{}}
		a.finish(ctx, req, question, resp, observability.OutcomeRejected, verdict.Category, started)
		return resp
	}
	query := sqlguard.AddSafetyLimit(sqlguard.Sanitize(candidate), a.maxRows)

	complexity := sqlguard.Analyze(query)
	observability.ObserveQueryComplexity(complexity.Cost)
	logger.InfoContext(ctx, "query_validated",
		slog.String("query", query),
		slog.String("cost", complexity.Cost),
		slog.Int("joins", complexity.Joins),
		slog.Int("subqueries", complexity.Subqueries),
	)

	result := a.execute(ctx, logger, query)
	observability.ObserveResultRows(len(result.Rows))

	answer, ok := a.synthesize(ctx, logger, question, result)
	if !ok {
		resp := Response{Answer: apologyMessage, SQLQuery: query, Data: result.Rows, Columns: result.Columns}
		a.finish(ctx, req, question, resp, observability.OutcomeSynthesisFailed, "", started)
		return resp
	}

	resp := Response{Answer: answer, SQLQuery: query, Data: result.Rows, Columns: result.Columns, Success: true}
	if a.cache != nil {
		a.cache.Set(cacheKey, resp, ttlcache.DefaultTTL)
	}
	a.finish(ctx, req, question, resp, observability.OutcomeAnswered, "", started)
	return resp
}

func (a *Assistant) generate(ctx context.Context, logger *slog.Logger, question string) (string, bool) {
	started := time.Now()
	reply, err := a.llm.Complete(ctx, a.genPrompt, question,
		llm.WithTemperature(a.ai.GenTemperature),
		llm.WithMaxTokens(a.ai.GenMaxTokens),
	)
	observability.ObserveStage("generate", time.Since(started))
	if err != nil {
		logger.ErrorContext(ctx, "sql_generation_failed", slog.String("error", err.Error()))
		return "", false
	}
	candidate := cleanSQL(reply)
	if !looksLikeSQL(candidate) {
		logger.WarnContext(ctx, "sql_generation_not_sql", slog.String("reply", candidate))
		return "", false
	}
	return candidate, true
}

func (a *Assistant) execute(ctx context.Context, logger *slog.Logger, query string) store.Result {
	started := time.Now()
	result, err := a.executor.Query(ctx, query)
	observability.ObserveStage("execute", time.Since(started))
	if err != nil {
		logger.WarnContext(ctx, "query_execution_failed", slog.String("error", err.Error()))
		return store.Result{Rows: []map[string]any{}}
	}
	return result
}

func (a *Assistant) synthesize(ctx context.Context, logger *slog.Logger, question string, result store.Result) (string, bool) {
	started := time.Now()
	answer, err := a.llm.Complete(ctx,
		synthesisSystemPrompt,
		synthesisUserPrompt(question, buildRecordContext(result)),
		llm.WithTemperature(a.ai.SynthTemperature),
		llm.WithMaxTokens(a.ai.SynthMaxTokens),
	)
	observability.ObserveStage("synthesize", time.Since(started))
	if err != nil {
		logger.ErrorContext(ctx, "answer_synthesis_failed", slog.String("error", err.Error()))
		return "", false
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		logger.WarnContext(ctx, "answer_synthesis_empty")
		return "", false
	}
	return answer, true
}

func (a *Assistant) finish(ctx context.Context, req Request, question string, resp Response, outcome, rejectCategory string, started time.Time) {
	observability.ObserveQuestion(outcome)
	a.recorder.Record(ctx, audit.Event{
		AskedAt:        started.UTC(),
		TraceID:        observability.TraceIDFromContext(ctx),
		Caller:         req.Caller,
		Question:       question,
		Outcome:        outcome,
		SQLQuery:       resp.SQLQuery,
		RejectCategory: rejectCategory,
		RowCount:       len(resp.Data),
		Success:        resp.Success,
		DurationMS:     time.Since(started).Milliseconds(),
	})
}

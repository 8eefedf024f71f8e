package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/medfinder/medfinder/internal/models"
	"github.com/medfinder/medfinder/internal/rag"
)

// Pipeline stage names, as recorded in the execution log.
const (
	StageNormalizing        = "normalizing"
	StageRetrieving         = "retrieving"
	StageExtracting         = "extracting"
	StageFallbackGenerating = "fallback_generating"
	StageMatching           = "matching"
	StageFormatting         = "formatting"
)

const invalidQueryAnalysis = "The query does not look like a medical symptom description. Please describe your symptoms, e.g. \"headache and fever\"."

// ChunkRetriever searches the corpus index for chunks relevant to a query.
type ChunkRetriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]models.RetrievedChunk, error)
}

// FormulaMatcher answers catalog matching queries for a formula.
type FormulaMatcher interface {
	Match(formula string, limit int) ([]models.MedicineRecord, error)
}

// Options are the orchestrator's stage-policy tunables.
type Options struct {
	TopK            int
	MinScore        float64
	HighConfidence  float64
	RegexConfidence float64
	FallbackEnabled bool
	MatchLimit      int
}

// Orchestrator wires the pipeline stages into the fixed sequence
// normalize, retrieve, extract, optionally generate, match, format.
// Every stage outcome lands in an append-only execution log returned with
// the result. Only an unusable query terminates the pipeline early; every
// later stage degrades to its fallback output instead of failing the run.
type Orchestrator struct {
	normalizer *Normalizer
	retriever  ChunkRetriever
	extractor  *Extractor
	generator  *Generator
	matcher    FormulaMatcher
	formatter  *Formatter
	opts       Options
	logger     *zap.Logger
}

// NewOrchestrator assembles a pipeline. retriever and generator may be nil;
// the corresponding stages then degrade (no RAG context, no generative
// fallback).
func NewOrchestrator(retriever ChunkRetriever, generator *Generator, matcher FormulaMatcher, opts Options, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		normalizer: NewNormalizer(),
		retriever:  retriever,
		extractor:  NewExtractor(opts.RegexConfidence),
		generator:  generator,
		matcher:    matcher,
		formatter:  NewFormatter(logger),
		opts:       opts,
		logger:     logger,
	}
}

// Search runs the full pipeline for rawQuery. The response envelope is
// always well-formed; degraded stages reduce richness, never the shape.
func (o *Orchestrator) Search(ctx context.Context, rawQuery string, maxResults int) *models.SearchResponse {
	start := time.Now()
	var log []models.StageResult

	normalized := o.runNormalize(rawQuery, &log)
	if !normalized.IsValid {
		return o.respond(start, rawQuery, nil, models.Summary{OriginalQuery: rawQuery, MaxSavingsPotential: "0.0%"}, invalidQueryAnalysis, false, 0, log)
	}

	chunks := o.runRetrieve(ctx, normalized.CleanedQuery, &log)
	ragUsed := len(chunks) > 0

	candidates := o.runExtract(chunks, &log)
	if !rag.Sufficient(chunks, o.opts.HighConfidence) && o.logger != nil {
		o.logger.Debug("retrieval below confidence threshold",
			zap.Int("chunks", len(chunks)),
			zap.Float64("threshold", o.opts.HighConfidence))
	}

	analysis := ""
	if o.needsFallback(candidates) {
		candidates, analysis = o.runGenerate(ctx, normalized, chunks, maxResults, &log)
	}

	matches := o.runMatch(candidates, &log)
	groups, summary := o.runFormat(matches, rawQuery, &log)

	return o.respond(start, rawQuery, groups, summary, analysis, ragUsed, len(chunks), log)
}

func (o *Orchestrator) runNormalize(rawQuery string, log *[]models.StageResult) models.NormalizedQuery {
	begin := time.Now()
	normalized := o.normalizer.Normalize(rawQuery)
	if !normalized.IsValid {
		appendStage(log, StageNormalizing, begin, "query has no recognizable symptom phrases")
		if o.logger != nil {
			o.logger.Info("query rejected by normalizer",
				zap.Float64("confidence", normalized.Confidence),
				zap.Int("symptoms", len(normalized.Symptoms)))
		}
		return normalized
	}
	appendStage(log, StageNormalizing, begin, "")
	return normalized
}

func (o *Orchestrator) runRetrieve(ctx context.Context, query string, log *[]models.StageResult) []models.RetrievedChunk {
	begin := time.Now()
	if o.retriever == nil {
		appendStage(log, StageRetrieving, begin, "retriever unavailable")
		return nil
	}
	chunks, err := o.retriever.Retrieve(ctx, query, o.opts.TopK)
	if err != nil {
		appendStage(log, StageRetrieving, begin, err.Error())
		if o.logger != nil {
			o.logger.Warn("retrieval failed, continuing without context", zap.Error(err))
		}
		return nil
	}
	filtered := rag.FilterByScore(chunks, o.opts.MinScore)
	appendStage(log, StageRetrieving, begin, "")
	return filtered
}

func (o *Orchestrator) runExtract(chunks []models.RetrievedChunk, log *[]models.StageResult) []models.FormulaCandidate {
	begin := time.Now()
	candidates := o.extractor.ExtractFromChunks(chunks)
	appendStage(log, StageExtracting, begin, "")
	return candidates
}

// needsFallback decides the transition into the generative stage: taken only
// when extraction produced no candidate at or above the regex confidence
// floor. Deterministic candidates are never discarded for a weak retrieval
// score; the generative call costs money and regex hits suppress it.
func (o *Orchestrator) needsFallback(candidates []models.FormulaCandidate) bool {
	if !o.opts.FallbackEnabled || o.generator == nil {
		return false
	}
	if len(candidates) == 0 {
		return true
	}
	return TopConfidence(candidates) < o.opts.RegexConfidence
}

func (o *Orchestrator) runGenerate(ctx context.Context, normalized models.NormalizedQuery, chunks []models.RetrievedChunk, maxResults int, log *[]models.StageResult) ([]models.FormulaCandidate, string) {
	begin := time.Now()
	candidates, analysis := o.generator.Generate(ctx, normalized, chunks, maxResults)
	errMsg := ""
	if len(candidates) == 1 && candidates[0].Formula == "" {
		errMsg = candidates[0].Reason
	}
	appendStage(log, StageFallbackGenerating, begin, errMsg)
	return candidates, analysis
}

func (o *Orchestrator) runMatch(candidates []models.FormulaCandidate, log *[]models.StageResult) []CandidateMatches {
	begin := time.Now()
	matches := make([]CandidateMatches, 0, len(candidates))
	errMsg := ""
	for _, c := range candidates {
		if c.Formula == "" {
			continue
		}
		medicines, err := o.matcher.Match(c.Formula, o.opts.MatchLimit)
		if err != nil {
			errMsg = err.Error()
			if o.logger != nil {
				o.logger.Warn("catalog match failed",
					zap.String("formula", c.Formula), zap.Error(err))
			}
			medicines = nil
		}
		matches = append(matches, CandidateMatches{Candidate: c, Medicines: medicines})
	}
	appendStage(log, StageMatching, begin, errMsg)
	return matches
}

func (o *Orchestrator) runFormat(matches []CandidateMatches, rawQuery string, log *[]models.StageResult) ([]models.MatchGroup, models.Summary) {
	begin := time.Now()
	groups, summary := o.formatter.Format(matches, rawQuery)
	appendStage(log, StageFormatting, begin, "")
	return groups, summary
}

func (o *Orchestrator) respond(start time.Time, rawQuery string, groups []models.MatchGroup, summary models.Summary, analysis string, ragUsed bool, ragChunks int, log []models.StageResult) *models.SearchResponse {
	if groups == nil {
		groups = []models.MatchGroup{}
	}
	resp := &models.SearchResponse{
		Recommendations: groups,
		Analysis:        analysis,
		Summary:         summary,
		RAGUsed:         ragUsed,
		RAGChunks:       ragChunks,
		QueryTime:       time.Since(start).Milliseconds(),
		Log:             log,
	}
	if o.logger != nil {
		o.logger.Info("search completed",
			zap.String("query", rawQuery),
			zap.Int("recommendations", len(groups)),
			zap.Bool("rag_used", ragUsed),
			zap.Int64("query_time_ms", resp.QueryTime))
	}
	return resp
}

func appendStage(log *[]models.StageResult, stage string, begin time.Time, errMsg string) {
	status := models.StageSuccess
	if errMsg != "" {
		status = models.StageError
	}
	*log = append(*log, models.StageResult{
		Stage:     stage,
		Status:    status,
		Error:     errMsg,
		StartedAt: begin,
		Duration:  time.Since(begin).String(),
	})
}

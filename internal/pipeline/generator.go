package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/medfinder/medfinder/internal/llm"
	"github.com/medfinder/medfinder/internal/models"
	"github.com/medfinder/medfinder/pkg/utils"
)

// maxRecommendations caps how many recommendations the model is asked for,
// keeping generated output short enough to avoid truncation.
const maxRecommendations = 3

// Defaults for fields the model omitted.
const (
	defaultDosage   = "As directed by physician"
	defaultWarnings = "Consult a doctor before use"
)

// Sentinel analyses for degraded generator outcomes.
const (
	parseErrorAnalysis = "Could not interpret the model response. Please try a shorter or more specific query."
	nonMedicalAnalysis = "This does not appear to be a medical symptom query. Please describe your symptoms."
)

const llmConfidence = 0.9

// Generator builds a constrained prompt from the normalized query and
// retrieved context, invokes the generative model, and tolerantly parses its
// JSON output into formula candidates. Malformed output degrades to a
// sentinel candidate; it never escapes this stage as an error.
type Generator struct {
	provider         llm.Provider
	temperature      float32
	maxTokens        int
	maxContextChunks int
	chunkCharBudget  int
	logger           *zap.Logger
}

// GeneratorConfig configures a Generator.
type GeneratorConfig struct {
	Temperature      float32
	MaxTokens        int
	MaxContextChunks int
	ChunkCharBudget  int
}

// NewGenerator creates a generator over provider.
func NewGenerator(provider llm.Provider, cfg GeneratorConfig, logger *zap.Logger) *Generator {
	if cfg.MaxContextChunks <= 0 {
		cfg.MaxContextChunks = 2
	}
	if cfg.ChunkCharBudget <= 0 {
		cfg.ChunkCharBudget = 250
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1500
	}
	return &Generator{
		provider:         provider,
		temperature:      cfg.Temperature,
		maxTokens:        cfg.MaxTokens,
		maxContextChunks: cfg.MaxContextChunks,
		chunkCharBudget:  cfg.ChunkCharBudget,
		logger:           logger,
	}
}

// llmResponse is the JSON object shape the prompt instructs the model to emit.
type llmResponse struct {
	IsMedicalQuery             bool                `json:"is_medical_query"`
	Analysis                   string              `json:"analysis"`
	Recommendations            []llmRecommendation `json:"recommendations"`
	RequiresImmediateAttention bool                `json:"requires_immediate_attention"`
	Disclaimer                 string              `json:"disclaimer"`
}

type llmRecommendation struct {
	ChemicalFormula string `json:"chemical_formula"`
	Dosage          string `json:"dosage"`
	Reason          string `json:"reason"`
	Warnings        string `json:"warnings"`
	RequiresDoctor  bool   `json:"requires_doctor"`
}

// Generate invokes the model and returns formula candidates plus the model's
// analysis text. The candidate list is never empty: parse failures and
// non-medical queries each yield a single sentinel candidate.
func (g *Generator) Generate(ctx context.Context, normalized models.NormalizedQuery, contextChunks []models.RetrievedChunk, maxResults int) ([]models.FormulaCandidate, string) {
	if maxResults <= 0 || maxResults > maxRecommendations {
		maxResults = maxRecommendations
	}
	prompt := g.buildPrompt(normalized, contextChunks, maxResults)

	raw, err := g.provider.Complete(ctx, prompt, g.temperature, g.maxTokens)
	if err != nil || strings.TrimSpace(raw) == "" {
		if g.logger != nil {
			g.logger.Warn("generative model unavailable", zap.Error(err))
		}
		return []models.FormulaCandidate{parseErrorCandidate()}, parseErrorAnalysis
	}

	resp, ok := parseResponse(raw)
	if !ok {
		if g.logger != nil {
			g.logger.Warn("model output unparseable after repair",
				zap.Int("raw_len", len(raw)))
		}
		return []models.FormulaCandidate{parseErrorCandidate()}, parseErrorAnalysis
	}
	if !resp.IsMedicalQuery {
		return []models.FormulaCandidate{nonMedicalCandidate()}, nonMedicalAnalysis
	}

	candidates := make([]models.FormulaCandidate, 0, len(resp.Recommendations))
	for i, rec := range resp.Recommendations {
		if i >= maxResults {
			break
		}
		if strings.TrimSpace(rec.ChemicalFormula) == "" {
			continue
		}
		candidates = append(candidates, models.FormulaCandidate{
			Formula:        strings.TrimSpace(rec.ChemicalFormula),
			Confidence:     llmConfidence,
			Source:         models.SourceLLM,
			Rank:           len(candidates) + 1,
			Dosage:         defaultString(rec.Dosage, defaultDosage),
			Reason:         rec.Reason,
			Warnings:       defaultString(rec.Warnings, defaultWarnings),
			RequiresDoctor: rec.RequiresDoctor,
		})
	}
	if len(candidates) == 0 {
		return []models.FormulaCandidate{parseErrorCandidate()}, defaultString(resp.Analysis, parseErrorAnalysis)
	}
	return candidates, resp.Analysis
}

// parseResponse runs the repair ladder: extract the JSON block, try a strict
// parse, then append the missing closers implied by bracket imbalance and
// retry once.
func parseResponse(raw string) (llmResponse, bool) {
	block := extractJSONBlock(raw)
	if block == "" {
		return llmResponse{}, false
	}
	var resp llmResponse
	if err := json.Unmarshal([]byte(block), &resp); err == nil {
		return resp, true
	}
	repaired := repairJSON(block)
	if err := json.Unmarshal([]byte(repaired), &resp); err == nil {
		return resp, true
	}
	return llmResponse{}, false
}

func (g *Generator) buildPrompt(normalized models.NormalizedQuery, contextChunks []models.RetrievedChunk, maxResults int) string {
	var b strings.Builder
	b.WriteString("You are a pharmacology reference assistant. A user describes symptoms; ")
	b.WriteString("suggest over-the-counter active ingredients that commonly address them.\n\n")

	fmt.Fprintf(&b, "Symptoms: %s\n", strings.Join(normalized.Symptoms, "; "))

	if len(contextChunks) > 0 {
		b.WriteString("\nReference excerpts from medical texts:\n")
		n := len(contextChunks)
		if n > g.maxContextChunks {
			n = g.maxContextChunks
		}
		for i := 0; i < n; i++ {
			fmt.Fprintf(&b, "[%d] %s\n", i+1, utils.Truncate(contextChunks[i].Chunk.Text, g.chunkCharBudget))
		}
	} else {
		b.WriteString("\nNo reference excerpts are available; use your knowledge.\n")
	}

	fmt.Fprintf(&b, "\nRespond with ONLY a JSON object, no prose, of this exact shape:\n")
	b.WriteString(`{
  "is_medical_query": true,
  "analysis": "one-paragraph assessment of the symptoms",
  "recommendations": [
    {
      "chemical_formula": "Active ingredient name, e.g. Paracetamol (500mg)",
      "dosage": "typical adult dosage",
      "reason": "why this helps",
      "warnings": "key cautions",
      "requires_doctor": false
    }
  ],
  "requires_immediate_attention": false,
  "disclaimer": "short medical disclaimer"
}`)
	fmt.Fprintf(&b, "\nReturn at most %d recommendations. ", maxResults)
	b.WriteString("If the text is not a medical symptom description, set is_medical_query to false and leave recommendations empty.\n")
	return b.String()
}

func parseErrorCandidate() models.FormulaCandidate {
	return models.FormulaCandidate{
		Formula:    "",
		Confidence: 0,
		Source:     models.SourceLLM,
		Reason:     parseErrorAnalysis,
	}
}

func nonMedicalCandidate() models.FormulaCandidate {
	return models.FormulaCandidate{
		Formula:    "",
		Confidence: 0,
		Source:     models.SourceLLM,
		Reason:     nonMedicalAnalysis,
	}
}

func defaultString(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

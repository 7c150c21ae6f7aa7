package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"interview-agent/internal/ai"
	"interview-agent/internal/candidate"
	"interview-agent/internal/utils"
)

//go:embed scorer_prompt.md
var scorerPromptTemplate string

const scorerTemperature = 0.3

// Scorer grades finished interviews. It implements report.Scorer.
type Scorer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

// NewScorer creates a scoring adapter on top of the generator.
func NewScorer(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Scorer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Score asks the model for sub-scores and qualitative feedback on the
// transcript. Parse failures are returned as errors; defaulting of individual
// missing fields is left to the report generator.
func (s *Scorer) Score(ctx context.Context, profile *candidate.Profile, transcript string) (*ai.Evaluation, error) {
	prompt := buildScorerPrompt(profile, transcript)

	s.logger.Debug("gemini scoring request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, s.maxLogLen)),
	)

	raw, err := s.generator.Generate(ctx, Request{
		Contents:    []*genai.Content{UserText(prompt)},
		JSON:        true,
		Temperature: scorerTemperature,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("gemini scoring response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
	)

	return parseEvaluation(raw)
}

func buildScorerPrompt(profile *candidate.Profile, transcript string) string {
	template := scorerPromptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Grade this interview. Profile:\n{{PROFILE_JSON}}\nTranscript:\n{{TRANSCRIPT}}\nReturn JSON with technical_score, confidence_score, strengths, weaknesses, summary."
	}

	prompt := strings.ReplaceAll(template, "{{PROFILE_JSON}}", profile.JSON())
	prompt = strings.ReplaceAll(prompt, "{{TRANSCRIPT}}", transcript)

	return prompt
}

func parseEvaluation(raw string) (*ai.Evaluation, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse scoring response: %w", err)
	}

	return &ai.Evaluation{
		TechnicalScore:  coerceScore(data["technical_score"]),
		ConfidenceScore: coerceScore(data["confidence_score"]),
		Strengths:       coerceStringSlice(data["strengths"]),
		Weaknesses:      coerceStringSlice(data["weaknesses"]),
		Summary:         coerceString(data["summary"]),
		Raw:             raw,
	}, nil
}

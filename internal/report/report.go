package report

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"interview-agent/internal/ai"
	"interview-agent/internal/candidate"
	"interview-agent/internal/interview"
)

// Verdict labels derived from the weighted final score.
const (
	VerdictStrongHire = "Strong Hire"
	VerdictHire       = "Hire"
	VerdictConsider   = "Consider"
	VerdictNoHire     = "No Hire"
)

const defaultSummary = "No summary available."

// Report is the evaluation produced for a finished interview. A non-empty
// Error marks a degraded report whose other fields carry no signal.
type Report struct {
	Score           int      `json:"score"`
	TechnicalScore  int      `json:"technical_score"`
	ConfidenceScore int      `json:"confidence_score"`
	Verdict         string   `json:"verdict"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Summary         string   `json:"summary"`
	Error           string   `json:"error,omitempty"`
}

// Scorer grades a finished interview transcript against the candidate profile.
type Scorer interface {
	Score(ctx context.Context, profile *candidate.Profile, transcript string) (*ai.Evaluation, error)
}

// Generator turns a finished session into a weighted report.
type Generator struct {
	scorer Scorer
	logger *zap.Logger
}

// NewGenerator creates a report generator backed by the provided scorer.
func NewGenerator(scorer Scorer, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{scorer: scorer, logger: logger}
}

// Generate scores the transcript and applies the fixed 70/30 weighting between
// technical accuracy and confidence. It never fails: when the scorer call
// cannot produce a usable assessment the returned report carries an explicit
// error marker instead.
func (g *Generator) Generate(ctx context.Context, profile *candidate.Profile, history []interview.Turn) *Report {
	transcript := RenderTranscript(history)

	eval, err := g.scorer.Score(ctx, profile, transcript)
	if err != nil {
		g.logger.Warn("interview scoring failed", zap.Error(err))
		return &Report{Error: "Could not generate report"}
	}

	score := WeightedScore(eval.TechnicalScore, eval.ConfidenceScore)

	report := &Report{
		Score:           score,
		TechnicalScore:  eval.TechnicalScore,
		ConfidenceScore: eval.ConfidenceScore,
		Verdict:         VerdictFor(score),
		Strengths:       eval.Strengths,
		Weaknesses:      eval.Weaknesses,
		Summary:         eval.Summary,
	}

	if report.Strengths == nil {
		report.Strengths = []string{}
	}
	if report.Weaknesses == nil {
		report.Weaknesses = []string{}
	}
	if strings.TrimSpace(report.Summary) == "" {
		report.Summary = defaultSummary
	}

	g.logger.Info("interview report generated",
		zap.Int("score", report.Score),
		zap.Int("technical_score", report.TechnicalScore),
		zap.Int("confidence_score", report.ConfidenceScore),
		zap.String("verdict", report.Verdict),
	)

	return report
}

// RenderTranscript flattens the transcript into labeled plain text, preserving
// the stored turn order.
func RenderTranscript(history []interview.Turn) string {
	var builder strings.Builder
	for _, turn := range history {
		label := "Candidate"
		if turn.Role == interview.RoleInterviewer {
			label = "Interviewer"
		}
		fmt.Fprintf(&builder, "%s: %s\n\n", label, turn.Content)
	}

	return builder.String()
}

// WeightedScore combines the sub-scores with the fixed 70/30 business rule,
// rounding half away from zero.
func WeightedScore(technical, confidence int) int {
	return int(math.Round(float64(technical)*0.7 + float64(confidence)*0.3))
}

// VerdictFor maps a final score to its hiring verdict. Boundaries are
// inclusive at the top of each band.
func VerdictFor(score int) string {
	switch {
	case score >= 85:
		return VerdictStrongHire
	case score >= 70:
		return VerdictHire
	case score >= 50:
		return VerdictConsider
	default:
		return VerdictNoHire
	}
}

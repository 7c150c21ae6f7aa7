package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"interview-agent/internal/interview"
	"interview-agent/internal/report"
)

func TestScorerParsesEvaluation(t *testing.T) {
	stub := &stubContentGenerator{response: `{
		"technical_score": 82,
		"confidence_score": 64,
		"strengths": ["concurrency", "system design"],
		"weaknesses": ["testing habits"],
		"summary": "Strong on fundamentals."
	}`}
	scorer := NewScorer(stub, zap.NewNop(), 0)

	eval, err := scorer.Score(context.Background(), testProfile(), "Interviewer: Q1\n\nCandidate: A1\n\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if eval.TechnicalScore != 82 || eval.ConfidenceScore != 64 {
		t.Fatalf("unexpected scores: %d/%d", eval.TechnicalScore, eval.ConfidenceScore)
	}
	if len(eval.Strengths) != 2 || eval.Strengths[0] != "concurrency" {
		t.Fatalf("unexpected strengths: %#v", eval.Strengths)
	}
	if eval.Summary != "Strong on fundamentals." {
		t.Fatalf("unexpected summary: %q", eval.Summary)
	}

	if !stub.lastReq.JSON {
		t.Fatal("expected json output to be requested")
	}
	if !strings.Contains(stub.lastReq.Contents[0].Parts[0].Text, "Candidate: A1") {
		t.Fatal("transcript missing from prompt")
	}
	if !strings.Contains(stub.lastReq.Contents[0].Parts[0].Text, "Ada Example") {
		t.Fatal("profile missing from prompt")
	}
}

func TestScorerPropagatesGeneratorError(t *testing.T) {
	genErr := errors.New("quota exceeded")
	scorer := NewScorer(&stubContentGenerator{err: genErr}, zap.NewNop(), 0)

	if _, err := scorer.Score(context.Background(), testProfile(), ""); !errors.Is(err, genErr) {
		t.Fatalf("expected generator error, got %v", err)
	}
}

func TestScorerRejectsUnparseableResponse(t *testing.T) {
	scorer := NewScorer(&stubContentGenerator{response: "I cannot grade this."}, zap.NewNop(), 0)

	if _, err := scorer.Score(context.Background(), testProfile(), ""); err == nil {
		t.Fatal("expected error for unparseable response")
	}
}

func TestParseEvaluationToleratesSloppyOutput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		raw        string
		technical  int
		confidence int
	}{
		{
			name:       "code fences",
			raw:        "```json\n{\"technical_score\": 70, \"confidence_score\": 50}\n```",
			technical:  70,
			confidence: 50,
		},
		{
			name:       "string scores",
			raw:        `{"technical_score": "88", "confidence_score": "41"}`,
			technical:  88,
			confidence: 41,
		},
		{
			name:       "missing fields default to zero",
			raw:        `{"summary": "short"}`,
			technical:  0,
			confidence: 0,
		},
		{
			name:       "out of range scores clamped",
			raw:        `{"technical_score": 180, "confidence_score": -5}`,
			technical:  100,
			confidence: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			eval, err := parseEvaluation(tt.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if eval.TechnicalScore != tt.technical || eval.ConfidenceScore != tt.confidence {
				t.Fatalf("unexpected scores: %d/%d", eval.TechnicalScore, eval.ConfidenceScore)
			}
		})
	}
}

// Compile-time check that the adapter satisfies the report generator contract.
var _ report.Scorer = (*Scorer)(nil)

// Compile-time check that the interviewer satisfies the session contract.
var _ interview.QuestionGenerator = (*Interviewer)(nil)

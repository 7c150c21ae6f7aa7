package interview

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"interview-agent/internal/candidate"
)

type stubGenerator struct {
	questions []string
	err       error
	calls     int

	lastHistory []Turn
	lastIndex   int
	lastMax     int
}

func (s *stubGenerator) NextQuestion(_ context.Context, _ *candidate.Profile, history []Turn, index, max int) (string, error) {
	s.calls++
	s.lastHistory = history
	s.lastIndex = index
	s.lastMax = max

	if s.err != nil {
		return "", s.err
	}
	if len(s.questions) > 0 {
		q := s.questions[0]
		s.questions = s.questions[1:]
		return q, nil
	}
	return fmt.Sprintf("question %d", index), nil
}

func newTestSession(maxQuestions int) *Session {
	profile := &candidate.Profile{FullName: "A", TechnicalSkills: []string{"Python"}}
	return newSession("test-session", profile, maxQuestions)
}

func TestAdvanceCountsQuestionsUpToBudget(t *testing.T) {
	session := newTestSession(3)
	gen := &stubGenerator{}

	for i := 0; i < 5; i++ {
		answer := ""
		if i > 0 {
			answer = fmt.Sprintf("answer %d", i)
		}

		_, done, err := session.Advance(context.Background(), gen, answer)
		if err != nil {
			t.Fatalf("advance %d: unexpected error: %v", i, err)
		}

		expectDone := i >= 3
		if done != expectDone {
			t.Fatalf("advance %d: expected done=%v, got %v", i, expectDone, done)
		}

		expectCount := i + 1
		if expectCount > 3 {
			expectCount = 3
		}
		if got := session.QuestionCount(); got != expectCount {
			t.Fatalf("advance %d: expected question count %d, got %d", i, expectCount, got)
		}
	}

	if gen.calls != 3 {
		t.Fatalf("expected 3 generator calls, got %d", gen.calls)
	}
}

func TestAdvancePairsQuestionWithCounter(t *testing.T) {
	session := newTestSession(5)
	gen := &stubGenerator{questions: []string{"Q1", "Q2"}}

	next, done, err := session.Advance(context.Background(), gen, "")
	if err != nil || done {
		t.Fatalf("unexpected result: next=%q done=%v err=%v", next, done, err)
	}

	if next != "Q1" {
		t.Fatalf("expected Q1, got %q", next)
	}

	history := session.History()
	if len(history) != 1 || history[0].Role != RoleInterviewer || history[0].Content != "Q1" {
		t.Fatalf("unexpected history after first advance: %+v", history)
	}

	if _, _, err := session.Advance(context.Background(), gen, "my answer"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []Turn{
		{Role: RoleInterviewer, Content: "Q1"},
		{Role: RoleCandidate, Content: "my answer"},
		{Role: RoleInterviewer, Content: "Q2"},
	}
	if !reflect.DeepEqual(session.History(), expected) {
		t.Fatalf("unexpected history: %+v", session.History())
	}

	if session.QuestionCount() != 2 {
		t.Fatalf("expected question count 2, got %d", session.QuestionCount())
	}
}

func TestAdvanceAtBudgetDropsTrailingAnswer(t *testing.T) {
	session := newTestSession(2)
	gen := &stubGenerator{questions: []string{"Q1", "Q2"}}

	if _, _, err := session.Advance(context.Background(), gen, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := session.Advance(context.Background(), gen, "answer1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	before := session.History()

	next, done, err := session.Advance(context.Background(), gen, "answer2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !done {
		t.Fatal("expected done at exhausted budget")
	}
	if next != "" {
		t.Fatalf("expected no next question, got %q", next)
	}

	if !reflect.DeepEqual(session.History(), before) {
		t.Fatalf("history changed at exhausted budget: %+v", session.History())
	}

	if session.QuestionCount() != 2 {
		t.Fatalf("question count changed at exhausted budget: %d", session.QuestionCount())
	}

	if gen.calls != 2 {
		t.Fatalf("generator called at exhausted budget: %d calls", gen.calls)
	}
}

func TestAdvanceGeneratorFailureLeavesStateUntouched(t *testing.T) {
	session := newTestSession(5)
	gen := &stubGenerator{questions: []string{"Q1"}}

	if _, _, err := session.Advance(context.Background(), gen, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	before := session.History()

	genErr := errors.New("model unavailable")
	failing := &stubGenerator{err: genErr}

	_, done, err := session.Advance(context.Background(), failing, "answer")
	if err == nil {
		t.Fatal("expected error from failing generator")
	}
	if !errors.Is(err, genErr) {
		t.Fatalf("expected wrapped generator error, got %v", err)
	}
	if done {
		t.Fatal("failed advance must not report done")
	}

	if !reflect.DeepEqual(session.History(), before) {
		t.Fatalf("history mutated on generator failure: %+v", session.History())
	}

	if session.QuestionCount() != 1 {
		t.Fatalf("counter mutated on generator failure: %d", session.QuestionCount())
	}
}

func TestAdvancePassesPendingAnswerToGenerator(t *testing.T) {
	session := newTestSession(5)
	gen := &stubGenerator{}

	if _, _, err := session.Advance(context.Background(), gen, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, _, err := session.Advance(context.Background(), gen, "the answer"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gen.lastIndex != 2 || gen.lastMax != 5 {
		t.Fatalf("unexpected index/max: %d/%d", gen.lastIndex, gen.lastMax)
	}

	last := gen.lastHistory[len(gen.lastHistory)-1]
	if last.Role != RoleCandidate || last.Content != "the answer" {
		t.Fatalf("pending answer not passed to generator: %+v", gen.lastHistory)
	}
}

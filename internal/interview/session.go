package interview

import (
	"context"
	"fmt"
	"sync"

	"interview-agent/internal/candidate"
)

const (
	// RoleInterviewer marks turns produced by the question generator.
	RoleInterviewer = "interviewer"
	// RoleCandidate marks turns produced by the candidate.
	RoleCandidate = "candidate"

	// DefaultMaxQuestions is the question budget applied when none is configured.
	DefaultMaxQuestions = 15
)

// Turn is one exchange unit in the interview transcript.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// QuestionGenerator produces the next interviewer question for a session.
// Implementations must return an error instead of fabricating a question.
type QuestionGenerator interface {
	NextQuestion(ctx context.Context, profile *candidate.Profile, history []Turn, index, max int) (string, error)
}

// Session owns one candidate's conversation and question budget. All mutation
// goes through Advance, which serializes concurrent calls on the same session.
type Session struct {
	id      string
	profile *candidate.Profile

	mu            sync.Mutex
	history       []Turn
	questionCount int
	maxQuestions  int
}

func newSession(id string, profile *candidate.Profile, maxQuestions int) *Session {
	if maxQuestions <= 0 {
		maxQuestions = DefaultMaxQuestions
	}

	return &Session{
		id:           id,
		profile:      profile,
		maxQuestions: maxQuestions,
	}
}

// ID returns the opaque session identifier.
func (s *Session) ID() string { return s.id }

// Profile returns the candidate profile the session was created with.
func (s *Session) Profile() *candidate.Profile { return s.profile }

// MaxQuestions returns the fixed question budget for this session.
func (s *Session) MaxQuestions() int { return s.maxQuestions }

// QuestionCount returns the number of interviewer questions asked so far.
func (s *Session) QuestionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.questionCount
}

// History returns a copy of the transcript in chronological order.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := make([]Turn, len(s.history))
	copy(history, s.history)

	return history
}

// Advance consumes the candidate's answer (empty for the opening call) and
// produces the next interviewer question.
//
// When the question budget is already exhausted it returns done=true without
// touching the transcript or the counter; an answer supplied at that point is
// dropped. When the generator fails the turn is aborted with no state change:
// the answer append, the question append and the counter increment happen
// together or not at all.
func (s *Session) Advance(ctx context.Context, gen QuestionGenerator, answer string) (next string, done bool, err error) {
	if gen == nil {
		return "", false, fmt.Errorf("question generator is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.questionCount >= s.maxQuestions {
		return "", true, nil
	}

	pending := make([]Turn, len(s.history), len(s.history)+1)
	copy(pending, s.history)
	if answer != "" {
		pending = append(pending, Turn{Role: RoleCandidate, Content: answer})
	}

	question, err := gen.NextQuestion(ctx, s.profile, pending, s.questionCount+1, s.maxQuestions)
	if err != nil {
		return "", false, fmt.Errorf("generate question %d: %w", s.questionCount+1, err)
	}

	s.history = append(pending, Turn{Role: RoleInterviewer, Content: question})
	s.questionCount++

	return question, false, nil
}

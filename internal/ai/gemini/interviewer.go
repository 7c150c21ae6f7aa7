package gemini

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"interview-agent/internal/candidate"
	"interview-agent/internal/interview"
	"interview-agent/internal/utils"
)

// contentGenerator is the slice of Generator the adapters depend on.
type contentGenerator interface {
	Generate(ctx context.Context, req Request) (string, error)
	Model() string
}

//go:embed interviewer_prompt.md
var interviewerPromptTemplate string

const (
	defaultMaxLogLength = 200

	interviewerTemperature = 0.6
	openingMessage         = "Please begin the interview with your first question."
)

// Interviewer generates the next interviewer question from the conversation
// so far. It implements interview.QuestionGenerator.
type Interviewer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

// NewInterviewer creates a question-generation adapter on top of the generator.
func NewInterviewer(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Interviewer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Interviewer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// NextQuestion asks the model for question number index of max, feeding it the
// candidate profile and the full ordered history. Any failure is returned to
// the caller; a question is never fabricated.
func (i *Interviewer) NextQuestion(ctx context.Context, profile *candidate.Profile, history []interview.Turn, index, max int) (string, error) {
	system := buildInterviewerPrompt(profile, index, max)

	contents := make([]*genai.Content, 0, len(history)+1)
	contents = append(contents, UserText(openingMessage))
	for _, turn := range history {
		switch turn.Role {
		case interview.RoleInterviewer:
			contents = append(contents, ModelText(turn.Content))
		default:
			contents = append(contents, UserText(turn.Content))
		}
	}

	i.logger.Debug("gemini question request",
		zap.Int("question_index", index),
		zap.Int("max_questions", max),
		zap.Int("history_turns", len(history)),
	)

	raw, err := i.generator.Generate(ctx, Request{
		System:      system,
		Contents:    contents,
		Temperature: interviewerTemperature,
	})
	if err != nil {
		return "", err
	}

	question := strings.TrimSpace(raw)
	if question == "" {
		return "", errors.New("gemini returned an empty question")
	}

	i.logger.Debug("gemini question response",
		zap.Int("question_index", index),
		zap.Int("response_length", utf8.RuneCountInString(question)),
		zap.String("response_preview", utils.TruncateForLog(question, i.maxLogLen)),
	)

	return question, nil
}

func buildInterviewerPrompt(profile *candidate.Profile, index, max int) string {
	template := interviewerPromptTemplate
	if strings.TrimSpace(template) == "" {
		template = fmt.Sprintf("You are a technical interviewer. Candidate profile:\n{{PROFILE_JSON}}\nAsk question %d of %d.", index, max)
	}

	prompt := strings.ReplaceAll(template, "{{PROFILE_JSON}}", profile.JSON())
	prompt = strings.ReplaceAll(prompt, "{{QUESTION_INDEX}}", strconv.Itoa(index))
	prompt = strings.ReplaceAll(prompt, "{{MAX_QUESTIONS}}", strconv.Itoa(max))

	return prompt
}

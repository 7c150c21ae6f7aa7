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

	"interview-agent/internal/candidate"
	"interview-agent/internal/utils"
)

//go:embed profiler_prompt.md
var profilerPromptTemplate string

const (
	// maxResumeChars bounds the resume text sent to the model.
	maxResumeChars = 30000

	profileParseFailure = "Failed to parse resume"
)

// Profiler structures raw resume text into a candidate profile. It never
// returns an error: extraction failures yield a profile carrying an explicit
// error marker so the caller can decide how to proceed.
type Profiler struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

// NewProfiler creates a profile-extraction adapter on top of the generator.
func NewProfiler(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Profiler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Profiler{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// ParseResume extracts a structured profile from the resume text.
func (p *Profiler) ParseResume(ctx context.Context, text string) *candidate.Profile {
	prompt := buildProfilerPrompt(text)

	p.logger.Debug("gemini profile request",
		zap.Int("resume_length", utf8.RuneCountInString(text)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, p.maxLogLen)),
	)

	raw, err := p.generator.Generate(ctx, Request{
		Contents: []*genai.Content{UserText(prompt)},
		JSON:     true,
	})
	if err != nil {
		p.logger.Warn("profile extraction failed", zap.Error(err))
		return candidate.Failed(profileParseFailure)
	}

	profile, err := parseProfile(raw)
	if err != nil {
		p.logger.Warn("profile extraction returned unparseable payload",
			zap.Error(err),
			zap.String("response_preview", utils.TruncateForLog(raw, p.maxLogLen)),
		)
		return candidate.Failed(profileParseFailure)
	}

	p.logger.Info("candidate profile extracted",
		zap.String("primary_domain", profile.PrimaryDomain),
		zap.Int("technical_skills", len(profile.TechnicalSkills)),
	)

	return profile
}

func buildProfilerPrompt(text string) string {
	if utf8.RuneCountInString(text) > maxResumeChars {
		runes := []rune(text)
		text = string(runes[:maxResumeChars])
	}

	template := profilerPromptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Extract a JSON candidate profile from this resume:\n{{RESUME_TEXT}}"
	}

	return strings.ReplaceAll(template, "{{RESUME_TEXT}}", text)
}

func parseProfile(raw string) (*candidate.Profile, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse profile response: %w", err)
	}

	profile := &candidate.Profile{
		FullName:          coerceString(data["full_name"]),
		Email:             coerceString(data["email"]),
		YearsOfExperience: coerceScore(data["years_of_experience"]),
		TechnicalSkills:   coerceStringSlice(data["technical_skills"]),
		SoftSkills:        coerceStringSlice(data["soft_skills"]),
		PrimaryDomain:     coerceString(data["primary_domain"]),
	}

	if projects, ok := data["projects"].([]any); ok {
		for _, item := range projects {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			profile.Projects = append(profile.Projects, candidate.Project{
				Title:       coerceString(entry["title"]),
				Description: coerceString(entry["description"]),
			})
		}
	}

	return profile, nil
}

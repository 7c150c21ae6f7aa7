package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"interview-agent/internal/utils"
)

const (
	defaultModel      = "gemini-2.5-flash"
	defaultMaxRetries = 3
)

// modelCaller matches the genai Models surface used by the Generator. It
// exists so tests can substitute the remote API.
type modelCaller interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator wraps the Google GenAI client with retries on temporary API
// errors. All gemini-backed adapters share one Generator.
type Generator struct {
	models     modelCaller
	model      string
	maxRetries int
	logger     *zap.Logger
}

// Request describes a single generation call.
type Request struct {
	// System is the system instruction; empty means none.
	System string
	// Contents is the ordered conversation payload, oldest first.
	Contents []*genai.Content
	// JSON forces a machine-parseable JSON response.
	JSON bool
	// Temperature controls sampling. Zero keeps the output deterministic.
	Temperature float32
}

// NewGenerator creates a Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model string, maxRetries int, logger *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		models:     client.Models,
		model:      model,
		maxRetries: maxRetries,
		logger:     logger,
	}, nil
}

// Model returns the configured model name.
func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

// Generate performs the request and returns the first textual response,
// retrying temporary API errors with a linear backoff.
func (g *Generator) Generate(ctx context.Context, req Request) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	if len(req.Contents) == 0 {
		return "", errors.New("request contents must not be empty")
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(req.Temperature),
	}

	if system := strings.TrimSpace(req.System); system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	if req.JSON {
		config.ResponseMIMEType = "application/json"
	}

	var lastErr error
	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		resp, err := g.models.GenerateContent(ctx, g.model, req.Contents, config)
		if err != nil {
			lastErr = err
			if !isTemporary(err) {
				return "", fmt.Errorf("generate content: %w", err)
			}

			g.logger.Warn("temporary gemini api error",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", g.maxRetries),
				zap.Error(err),
			)

			if attempt < g.maxRetries {
				if waitErr := utils.WaitFor(ctx, time.Duration(attempt)*time.Second); waitErr != nil {
					return "", waitErr
				}
			}
			continue
		}

		output := collectText(resp)
		if output == "" {
			return "", errors.New("gemini api returned empty response")
		}

		return output, nil
	}

	return "", fmt.Errorf("generate content after %d attempts: %w", g.maxRetries, lastErr)
}

// UserText builds a user-role content with a single text part.
func UserText(text string) *genai.Content {
	return &genai.Content{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: text}},
	}
}

// ModelText builds a model-role content with a single text part.
func ModelText(text string) *genai.Content {
	return &genai.Content{
		Role:  genai.RoleModel,
		Parts: []*genai.Part{{Text: text}},
	}
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}

func isTemporary(err error) bool {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	switch apiErr.Code {
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return true
	default:
		return false
	}
}

package gemini

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"interview-agent/internal/utils"
)

// TranscriptionFailed is returned in place of a transcript when transcription
// fails. Downstream treats the transcript as opaque text, so the failure is
// signaled in-band to keep the historical contract.
const TranscriptionFailed = "Error: Could not transcribe audio."

const (
	defaultAudioMIMEType  = "audio/wav"
	transcribeInstruction = "Transcribe this interview answer verbatim. Return only the spoken words, with no commentary."
)

// Transcriber converts recorded candidate answers into text.
type Transcriber struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

// NewTranscriber creates a speech-to-text adapter on top of the generator.
func NewTranscriber(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Transcriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Transcriber{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Transcribe returns the transcript of the audio payload, or the
// TranscriptionFailed sentinel when the audio cannot be transcribed.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, mimeType string) string {
	if len(audio) == 0 {
		t.logger.Warn("transcription requested with empty audio payload")
		return TranscriptionFailed
	}

	if mimeType = strings.TrimSpace(mimeType); mimeType == "" {
		mimeType = defaultAudioMIMEType
	}

	content := &genai.Content{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: audio}},
			{Text: transcribeInstruction},
		},
	}

	raw, err := t.generator.Generate(ctx, Request{
		Contents: []*genai.Content{content},
	})
	if err != nil {
		t.logger.Warn("transcription failed",
			zap.Int("audio_bytes", len(audio)),
			zap.String("mime_type", mimeType),
			zap.Error(err),
		)
		return TranscriptionFailed
	}

	transcript := strings.TrimSpace(raw)
	if transcript == "" {
		return TranscriptionFailed
	}

	t.logger.Debug("audio transcribed",
		zap.Int("audio_bytes", len(audio)),
		zap.Int("transcript_length", utf8.RuneCountInString(transcript)),
		zap.String("transcript_preview", utils.TruncateForLog(transcript, t.maxLogLen)),
	)

	return transcript
}

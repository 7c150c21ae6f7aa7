package server

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// closingMessage is sent to the candidate when the question budget runs out.
const closingMessage = "Thank you. The interview is now complete. Please click 'End Interview' to see your results."

func (s *Server) handleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Interview Agent API is running!"})
}

// handleStartInterview ingests a resume, derives the candidate profile and
// opens a session with the first question.
func (s *Server) handleStartInterview(c *fiber.Ctx) error {
	ctx := c.UserContext()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return detail(c, fiber.StatusBadRequest, "resume file is required")
	}

	data, err := readUpload(fileHeader)
	if err != nil {
		return detail(c, fiber.StatusBadRequest, "could not read resume file")
	}

	text, err := s.deps.Extractor.ExtractText(ctx, data)
	if err != nil {
		s.logger.Warn("resume text extraction failed", zap.Error(err))
		return detail(c, fiber.StatusBadRequest, "Empty PDF")
	}

	profile := s.deps.Profiles.ParseResume(ctx, text)

	session := s.deps.Store.Create(profile)

	firstQuestion, _, err := session.Advance(ctx, s.deps.Questions, "")
	if err != nil {
		s.logger.Error("first question generation failed",
			zap.String("session_id", session.ID()),
			zap.Error(err),
		)
		return detail(c, fiber.StatusBadGateway, "could not generate the first question")
	}

	s.logger.Info("interview started",
		zap.String("session_id", session.ID()),
		zap.Int("max_questions", session.MaxQuestions()),
		zap.Bool("profile_ok", profile.OK()),
	)

	return c.JSON(fiber.Map{
		"session_id":       session.ID(),
		"profile":          profile,
		"current_question": firstQuestion,
	})
}

// handleSubmitAnswer transcribes the candidate's spoken answer and advances
// the interview by one turn.
func (s *Server) handleSubmitAnswer(c *fiber.Ctx) error {
	ctx := c.UserContext()

	sessionID := c.FormValue("session_id")
	if sessionID == "" {
		return detail(c, fiber.StatusBadRequest, "session_id is required")
	}

	session, ok := s.deps.Store.Get(sessionID)
	if !ok {
		return detail(c, fiber.StatusNotFound, "Session not found")
	}

	audioHeader, err := c.FormFile("audio_file")
	if err != nil {
		return detail(c, fiber.StatusBadRequest, "audio_file is required")
	}

	audio, err := readUpload(audioHeader)
	if err != nil {
		return detail(c, fiber.StatusBadRequest, "could not read audio file")
	}

	userText := s.deps.Transcriber.Transcribe(ctx, audio, audioHeader.Header.Get("Content-Type"))

	next, done, err := session.Advance(ctx, s.deps.Questions, userText)
	if err != nil {
		s.logger.Error("question generation failed",
			zap.String("session_id", session.ID()),
			zap.Int("question_count", session.QuestionCount()),
			zap.Error(err),
		)
		return detail(c, fiber.StatusBadGateway, "could not generate the next question")
	}

	if done {
		s.logger.Info("interview budget exhausted",
			zap.String("session_id", session.ID()),
			zap.Int("question_count", session.QuestionCount()),
		)

		return c.JSON(fiber.Map{
			"user_transcription": userText,
			"ai_response":        closingMessage,
			"is_finished":        true,
		})
	}

	return c.JSON(fiber.Map{
		"user_transcription": userText,
		"ai_response":        next,
		"is_finished":        false,
	})
}

// handleEndInterview produces the weighted evaluation report for a session.
func (s *Server) handleEndInterview(c *fiber.Ctx) error {
	ctx := c.UserContext()

	sessionID := c.FormValue("session_id")
	if sessionID == "" {
		return detail(c, fiber.StatusBadRequest, "session_id is required")
	}

	session, ok := s.deps.Store.Get(sessionID)
	if !ok {
		return detail(c, fiber.StatusNotFound, "Session not found")
	}

	rep := s.deps.Reports.Generate(ctx, session.Profile(), session.History())

	return c.JSON(fiber.Map{
		"message": "Interview Completed",
		"report":  rep,
	})
}

func detail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"detail": message})
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	return data, nil
}

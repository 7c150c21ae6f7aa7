package resume

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoparser "github.com/cloudwego/eino/components/document/parser"
	"go.uber.org/zap"
)

// ErrEmptyDocument is returned when a document yields no extractable text.
var ErrEmptyDocument = errors.New("document contains no extractable text")

const extractTimeout = 30 * time.Second

// Extractor pulls plain text out of uploaded PDF resumes.
type Extractor struct {
	parser *pdf.PDFParser
	logger *zap.Logger
}

// NewExtractor creates a PDF text extractor. The parser is configured to
// return the whole document as one continuous text instead of per-page chunks.
func NewExtractor(ctx context.Context, logger *zap.Logger) (*Extractor, error) {
	parser, err := pdf.NewPDFParser(ctx, &pdf.Config{ToPages: false})
	if err != nil {
		return nil, fmt.Errorf("create pdf parser: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Extractor{parser: parser, logger: logger}, nil
}

// ExtractText returns the plain text of the document. An unreadable or
// text-free document surfaces ErrEmptyDocument so callers can reject the
// upload explicitly.
func (e *Extractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyDocument
	}

	ctx, cancel := context.WithTimeout(ctx, extractTimeout)
	defer cancel()

	start := time.Now()

	docs, err := e.parser.Parse(ctx, bytes.NewReader(data), einoparser.WithURI("resume.pdf"))
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}

	var builder strings.Builder
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		builder.WriteString(doc.Content)
	}

	text := builder.String()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyDocument
	}

	e.logger.Debug("resume text extracted",
		zap.Int("document_bytes", len(data)),
		zap.Int("text_length", len(text)),
		zap.Duration("duration", time.Since(start)),
	)

	return text, nil
}

package extractor

import (
	"context"
	"errors"
	"time"

	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
	"github.com/ksrishi31-git/smart-document-organizer/internal/core/ports"
)

type imageExtractor struct {
	ocr *ocrEngine
}

func (e *imageExtractor) extract(ctx context.Context, file domain.UploadedFile) (string, string, error) {
	text, err := e.ocr.image(ctx, file.Content)
	return text, domain.MethodImageOCR, err
}

type transcriptionExtractor struct {
	transcriber ports.Transcriber
	timeout     time.Duration
}

func (e *transcriptionExtractor) extract(ctx context.Context, file domain.UploadedFile) (string, string, error) {
	if e.transcriber == nil {
		return "", domain.MethodTranscription, domain.WrapError(
			domain.ErrEngineUnavailable, "transcribe", errors.New("speech engine not configured"),
		)
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	text, err := e.transcriber.Transcribe(ctx, file.Filename, file.Content)
	return text, domain.MethodTranscription, err
}

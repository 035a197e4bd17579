package extractor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
	"github.com/ksrishi31-git/smart-document-organizer/internal/core/ports"
)

type ocrEngine struct {
	recognizer ports.TextRecognizer
	rasterizer ports.PageRasterizer
	timeout    time.Duration
}

var errOCRNotConfigured = domain.WrapError(domain.ErrEngineUnavailable, "ocr", errors.New("ocr engine not configured"))

func (o *ocrEngine) canRasterize() bool {
	return o.recognizer != nil && o.rasterizer != nil
}

func (o *ocrEngine) image(ctx context.Context, image []byte) (string, error) {
	if o.recognizer == nil {
		return "", errOCRNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	return o.recognizer.RecognizeText(ctx, image)
}

// pdf recognizes every rasterized page; pages that fail are skipped unless
// all of them do.
func (o *ocrEngine) pdf(ctx context.Context, data []byte) (string, error) {
	if !o.canRasterize() {
		return "", errOCRNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	pages, err := o.rasterizer.RasterizePDF(ctx, data)
	if err != nil {
		return "", fmt.Errorf("rasterize pdf: %w", err)
	}

	texts := make([]string, 0, len(pages))
	var lastErr error
	for i, page := range pages {
		text, err := o.recognizer.RecognizeText(ctx, page)
		if err != nil {
			lastErr = fmt.Errorf("ocr page %d: %w", i+1, err)
			continue
		}
		texts = append(texts, text)
	}
	if len(texts) == 0 && lastErr != nil {
		return "", lastErr
	}
	return strings.Join(texts, "\n"), nil
}

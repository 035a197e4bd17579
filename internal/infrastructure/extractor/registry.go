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

type formatExtractor interface {
	// extract returns raw text and the method that produced it.
	extract(ctx context.Context, file domain.UploadedFile) (string, string, error)
}

type Options struct {
	Recognizer        ports.TextRecognizer
	Rasterizer        ports.PageRasterizer
	Transcriber       ports.Transcriber
	OCRTimeout        time.Duration
	TranscribeTimeout time.Duration
}

// Registry dispatches extraction by lower-cased file extension.
type Registry struct {
	byExt map[string]formatExtractor
}

func NewRegistry(options Options) *Registry {
	if options.OCRTimeout <= 0 {
		options.OCRTimeout = 60 * time.Second
	}
	if options.TranscribeTimeout <= 0 {
		options.TranscribeTimeout = 5 * time.Minute
	}

	ocr := &ocrEngine{
		recognizer: options.Recognizer,
		rasterizer: options.Rasterizer,
		timeout:    options.OCRTimeout,
	}
	speech := &transcriptionExtractor{
		transcriber: options.Transcriber,
		timeout:     options.TranscribeTimeout,
	}

	r := &Registry{byExt: make(map[string]formatExtractor)}
	r.register(&pdfExtractor{ocr: ocr}, "pdf")
	r.register(docxExtractor{}, "doc", "docx")
	r.register(plainTextExtractor{}, "txt", "csv")
	r.register(spreadsheetExtractor{}, "xlsx")
	r.register(emailExtractor{}, "eml")
	r.register(&imageExtractor{ocr: ocr}, "jpg", "jpeg", "png", "bmp", "gif")
	r.register(speech, "mp3", "wav", "mp4", "avi", "m4a")
	return r
}

func (r *Registry) register(fx formatExtractor, exts ...string) {
	for _, ext := range exts {
		r.byExt[ext] = fx
	}
}

// Supports reports whether ext (without the dot) has a dedicated extractor.
func (r *Registry) Supports(ext string) bool {
	_, ok := r.byExt[strings.ToLower(ext)]
	return ok
}

// Extract never fails: every problem is reported on the returned Extraction.
func (r *Registry) Extract(ctx context.Context, file domain.UploadedFile) (out domain.Extraction) {
	fx, ok := r.byExt[file.Extension()]
	if !ok {
		return domain.Extraction{Method: domain.MethodNone, Failure: domain.ExtractionUnsupported}
	}

	defer func() {
		if rec := recover(); rec != nil {
			out = domain.Extraction{
				Method:  domain.MethodNone,
				Failure: domain.ExtractionFailed,
				Err:     fmt.Errorf("extractor panic: %v", rec),
			}
		}
	}()

	text, method, err := fx.extract(ctx, file)
	if err != nil {
		// A partial read is not trusted for classification.
		text = ""
	}
	out = domain.Extraction{Text: strings.TrimSpace(text), Method: method, Err: err}
	switch {
	case out.Text != "":
		out.Failure = domain.ExtractionOK
	case err == nil:
		out.Failure = domain.ExtractionNoText
	case errors.Is(err, domain.ErrEngineUnavailable):
		out.Failure = domain.ExtractionEngineUnavailable
	default:
		out.Failure = domain.ExtractionFailed
	}
	return out
}

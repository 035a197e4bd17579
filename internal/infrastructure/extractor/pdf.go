package extractor

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
)

type pdfExtractor struct {
	ocr *ocrEngine
}

// extract prefers the embedded text layer and falls back to OCR of the
// rasterized pages when the layer is blank.
func (e *pdfExtractor) extract(ctx context.Context, file domain.UploadedFile) (string, string, error) {
	text, parseErr := pdfPlainText(file.Content)
	if strings.TrimSpace(text) != "" {
		return text, domain.MethodPDFText, nil
	}
	if !e.ocr.canRasterize() && parseErr != nil {
		return "", domain.MethodPDFText, parseErr
	}

	ocrText, err := e.ocr.pdf(ctx, file.Content)
	if err != nil {
		return "", domain.MethodPDFOCR, err
	}
	return ocrText, domain.MethodPDFOCR, nil
}

func pdfPlainText(data []byte) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("pdf parser panic: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		b.WriteString(pdfPageText(reader, i))
		b.WriteString("\n")
	}
	return b.String(), nil
}

// pdfPageText skips pages the parser cannot decode.
func pdfPageText(reader *pdf.Reader, num int) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()
	page := reader.Page(num)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}

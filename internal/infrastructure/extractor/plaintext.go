package extractor

import (
	"context"
	"strings"

	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
)

type plainTextExtractor struct{}

// extract decodes best-effort UTF-8, dropping invalid sequences.
func (plainTextExtractor) extract(_ context.Context, file domain.UploadedFile) (string, string, error) {
	text := strings.ToValidUTF8(string(file.Content), "")
	text = strings.TrimPrefix(text, "\ufeff")
	return text, domain.MethodPlainText, nil
}

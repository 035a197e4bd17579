package extractor

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
)

type spreadsheetExtractor struct{}

// extract emits one tab-joined line per non-empty row of every sheet.
func (spreadsheetExtractor) extract(_ context.Context, file domain.UploadedFile) (string, string, error) {
	book, err := excelize.OpenReader(bytes.NewReader(file.Content))
	if err != nil {
		return "", domain.MethodSpreadsheet, fmt.Errorf("open workbook: %w", err)
	}
	defer book.Close()

	var lines []string
	for _, sheet := range book.GetSheetList() {
		rows, err := book.GetRows(sheet)
		if err != nil {
			return "", domain.MethodSpreadsheet, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, "\t"))
			if line != "" {
				lines = append(lines, line)
			}
		}
	}
	return strings.Join(lines, "\n"), domain.MethodSpreadsheet, nil
}

package usecase

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
)

// cleanExcerpt keeps lines longer than minChars (after trimming) and caps the
// excerpt to maxLines of them.
func cleanExcerpt(text string, minChars, maxLines int) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	useful := make([]string, 0, maxLines)
	for _, line := range lines {
		if utf8.RuneCountInString(strings.TrimSpace(line)) <= minChars {
			continue
		}
		useful = append(useful, line)
		if len(useful) == maxLines {
			break
		}
	}
	return strings.Join(useful, "\n")
}

func buildCategoryPrompt(excerpt string) string {
	labels := make([]string, 0, len(domain.GenerativeLabels))
	for _, label := range domain.GenerativeLabels {
		labels = append(labels, string(label))
	}

	return `Classify this document into ONE category only:
` + strings.Join(labels, ", ") + `

Rules:
- College, lab, experiment → Academic
- Award, certified → Certificate
- Resume, CV → Work
- Invoice, tax → Business
- ID, DOB → Personal

Answer with the category name only.

Content:
` + excerpt
}

// matchGenerativeLabel maps a free-form model answer to its canonical label.
func matchGenerativeLabel(raw string) (domain.Category, bool) {
	candidate := strings.TrimFunc(raw, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if label, ok := lookupLabel(candidate); ok {
		return label, true
	}

	// Models sometimes answer "Category: Academic" or add an explanation line.
	firstLine := strings.TrimSpace(strings.SplitN(candidate, "\n", 2)[0])
	if idx := strings.LastIndex(firstLine, ":"); idx >= 0 {
		firstLine = firstLine[idx+1:]
	}
	firstWord := strings.FieldsFunc(firstLine, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	if len(firstWord) > 0 {
		return lookupLabel(firstWord[0])
	}
	return "", false
}

func lookupLabel(s string) (domain.Category, bool) {
	for _, label := range domain.GenerativeLabels {
		if strings.EqualFold(strings.TrimSpace(s), string(label)) {
			return label, true
		}
	}
	return "", false
}

package extractor

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/jhillyerd/enmime"
	"golang.org/x/net/html"

	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
)

type emailExtractor struct{}

// extract returns the subject followed by the plain body, or the
// tag-stripped HTML body when the message has no text part.
func (emailExtractor) extract(_ context.Context, file domain.UploadedFile) (string, string, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(file.Content))
	if err != nil {
		return "", domain.MethodEmail, fmt.Errorf("parse eml: %w", err)
	}

	body := env.Text
	if strings.TrimSpace(body) == "" && env.HTML != "" {
		body = htmlToText(env.HTML)
	}

	parts := make([]string, 0, 2)
	if subject := strings.TrimSpace(env.GetHeader("Subject")); subject != "" {
		parts = append(parts, subject)
	}
	if body = strings.TrimSpace(body); body != "" {
		parts = append(parts, body)
	}
	return strings.Join(parts, "\n"), domain.MethodEmail, nil
}

func htmlToText(doc string) string {
	z := html.NewTokenizer(strings.NewReader(doc))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a malformed tail; either way keep what was read.
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			name, _ := z.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skip++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if tag := string(name); (tag == "script" || tag == "style") && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
				b.WriteString(" ")
			}
		}
	}
}

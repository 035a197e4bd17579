package usecase

import (
	"strings"

	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
)

// scoreKeywords expects lower-cased text and keywords. Scores keep table order.
func scoreKeywords(rules []domain.KeywordRule, text string, weight int, countRepeats bool) []domain.CategoryScore {
	scores := make([]domain.CategoryScore, 0, len(rules))
	for _, rule := range rules {
		score := 0
		if text != "" {
			for _, kw := range rule.Keywords {
				hits := 0
				if countRepeats {
					hits = strings.Count(text, kw)
				} else if strings.Contains(text, kw) {
					hits = 1
				}
				score += hits * weight
			}
		}
		scores = append(scores, domain.CategoryScore{Category: rule.Category, Score: score})
	}
	return scores
}

// bestScore picks the first category reaching the maximum score and accepts
// it only when the score meets the threshold.
func bestScore(scores []domain.CategoryScore, threshold int) (domain.Category, bool) {
	if len(scores) == 0 {
		return "", false
	}
	best := scores[0]
	for _, s := range scores[1:] {
		if s.Score > best.Score {
			best = s
		}
	}
	if best.Score < threshold {
		return "", false
	}
	return best.Category, true
}

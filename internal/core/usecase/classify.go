package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
	"github.com/ksrishi31-git/smart-document-organizer/internal/core/ports"
)

type ClassifierConfig struct {
	KeywordWeight    int
	KeywordThreshold int
	// CountRepeats scores every occurrence of a keyword instead of its presence.
	CountRepeats bool

	ExcerptMinLineChars int
	ExcerptMaxLines     int

	GenerativeTimeout time.Duration
}

func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		KeywordWeight:       2,
		KeywordThreshold:    4,
		ExcerptMinLineChars: 20,
		ExcerptMaxLines:     40,
		GenerativeTimeout:   30 * time.Second,
	}
}

func (c ClassifierConfig) normalize() ClassifierConfig {
	out := c
	def := DefaultClassifierConfig()
	if out.KeywordWeight <= 0 {
		out.KeywordWeight = def.KeywordWeight
	}
	if out.KeywordThreshold <= 0 {
		out.KeywordThreshold = def.KeywordThreshold
	}
	if out.ExcerptMinLineChars < 0 {
		out.ExcerptMinLineChars = def.ExcerptMinLineChars
	}
	if out.ExcerptMaxLines <= 0 {
		out.ExcerptMaxLines = def.ExcerptMaxLines
	}
	if out.GenerativeTimeout <= 0 {
		out.GenerativeTimeout = def.GenerativeTimeout
	}
	return out
}

// Classifier runs the category cascade: filename intent, keyword scoring,
// extension lookup for empty text, then the generative fallback.
type Classifier struct {
	catalog   domain.Catalog
	cfg       ClassifierConfig
	generator ports.CategoryGenerator
}

// NewClassifier builds a classifier over an immutable catalog. generator may
// be nil, in which case the generative stage always degrades to the
// extension category.
func NewClassifier(catalog domain.Catalog, cfg ClassifierConfig, generator ports.CategoryGenerator) *Classifier {
	return &Classifier{
		catalog:   lowerKeywords(catalog),
		cfg:       cfg.normalize(),
		generator: generator,
	}
}

func (c *Classifier) Catalog() domain.Catalog {
	return c.catalog
}

func (c *Classifier) FilenameIntent(filename string) (domain.Category, bool) {
	name := strings.ToLower(filename)
	if strings.Contains(name, "certificate") {
		return domain.CategoryCertificate, true
	}
	if strings.Contains(name, "resume") || strings.Contains(name, "cv") {
		return domain.CategoryWork, true
	}
	return "", false
}

func (c *Classifier) Classify(ctx context.Context, text, filename string) domain.Decision {
	if category, ok := c.FilenameIntent(filename); ok {
		return domain.Decision{Category: category, Stage: domain.StageFilenameIntent}
	}

	scores := scoreKeywords(c.catalog.DocumentTypes, strings.ToLower(text), c.cfg.KeywordWeight, c.cfg.CountRepeats)
	if best, ok := bestScore(scores, c.cfg.KeywordThreshold); ok {
		return domain.Decision{Category: best, Stage: domain.StageKeywordScore, Scores: scores}
	}

	if strings.TrimSpace(text) == "" {
		return domain.Decision{
			Category: c.catalog.CategoryForExtension(filename),
			Stage:    domain.StageExtensionNoText,
			Scores:   scores,
		}
	}

	category, failure := c.askGenerator(ctx, text)
	if failure == domain.GenerativeOK {
		return domain.Decision{Category: category, Stage: domain.StageGenerative, Scores: scores}
	}

	fallback := c.catalog.CategoryForExtension(filename)
	slog.Warn("generative_fallback_failed",
		"filename", filename,
		"reason", string(failure),
		"fallback_category", string(fallback),
	)
	return domain.Decision{
		Category:          fallback,
		Stage:             domain.StageExtensionFallback,
		Scores:            scores,
		GenerativeFailure: failure,
	}
}

func (c *Classifier) askGenerator(ctx context.Context, text string) (domain.Category, domain.GenerativeFailure) {
	if c.generator == nil {
		return "", domain.GenerativeUnavailable
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.GenerativeTimeout)
	defer cancel()

	excerpt := cleanExcerpt(text, c.cfg.ExcerptMinLineChars, c.cfg.ExcerptMaxLines)
	raw, err := c.generator.GenerateCategory(callCtx, buildCategoryPrompt(excerpt))
	if err != nil {
		slog.Debug("generative_call_error", "error", err)
		if errors.Is(err, domain.ErrEngineUnavailable) {
			return "", domain.GenerativeUnavailable
		}
		return "", domain.GenerativeCallFailed
	}

	category, ok := matchGenerativeLabel(raw)
	if !ok {
		slog.Debug("generative_label_unrecognized", "response", raw)
		return "", domain.GenerativeUnrecognized
	}
	return category, domain.GenerativeOK
}

func lowerKeywords(catalog domain.Catalog) domain.Catalog {
	out := catalog
	out.DocumentTypes = make([]domain.KeywordRule, 0, len(catalog.DocumentTypes))
	for _, rule := range catalog.DocumentTypes {
		keywords := make([]string, 0, len(rule.Keywords))
		for _, kw := range rule.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				keywords = append(keywords, kw)
			}
		}
		out.DocumentTypes = append(out.DocumentTypes, domain.KeywordRule{Category: rule.Category, Keywords: keywords})
	}
	return out
}

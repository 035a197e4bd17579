package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
)

// Load returns the built-in catalog when path is empty, otherwise the
// validated catalog read from the YAML file.
func Load(path string) (domain.Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return domain.DefaultCatalog(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("read catalog %s: %w", path, err)
	}
	cat, err := Parse(raw)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("catalog %s: %w", path, err)
	}
	return cat, nil
}

func Parse(raw []byte) (domain.Catalog, error) {
	var cat domain.Catalog
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cat); err != nil {
		return domain.Catalog{}, domain.WrapError(domain.ErrInvalidInput, "decode catalog", err)
	}
	cat = normalize(cat)
	if err := validate(cat); err != nil {
		return domain.Catalog{}, domain.WrapError(domain.ErrInvalidInput, "validate catalog", err)
	}
	return cat, nil
}

func normalize(cat domain.Catalog) domain.Catalog {
	for i, rule := range cat.DocumentTypes {
		keywords := make([]string, 0, len(rule.Keywords))
		for _, kw := range rule.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		cat.DocumentTypes[i].Keywords = keywords
	}
	for i, rule := range cat.Extensions {
		exts := make([]string, 0, len(rule.Extensions))
		for _, ext := range rule.Extensions {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			exts = append(exts, ext)
		}
		cat.Extensions[i].Extensions = exts
	}
	if cat.Fallback == "" {
		cat.Fallback = domain.CategoryOthers
	}
	return cat
}

func validate(cat domain.Catalog) error {
	if len(cat.DocumentTypes) == 0 {
		return errors.New("document_types must not be empty")
	}
	seen := make(map[domain.Category]struct{})
	for _, rule := range cat.DocumentTypes {
		if strings.TrimSpace(string(rule.Category)) == "" {
			return errors.New("document_types entry without category")
		}
		if _, dup := seen[rule.Category]; dup {
			return fmt.Errorf("duplicate document type %q", rule.Category)
		}
		seen[rule.Category] = struct{}{}
		if len(rule.Keywords) == 0 {
			return fmt.Errorf("document type %q has no keywords", rule.Category)
		}
	}
	for _, rule := range cat.Extensions {
		if strings.TrimSpace(string(rule.Category)) == "" {
			return errors.New("extensions entry without category")
		}
		if len(rule.Extensions) == 0 {
			return fmt.Errorf("extension category %q has no extensions", rule.Category)
		}
	}
	return nil
}

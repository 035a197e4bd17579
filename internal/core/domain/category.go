package domain

import (
	"path/filepath"
	"strings"
)

// Category is the label that decides the storage folder of a file.
// The exact spelling is shared with the persistence and display layers.
type Category string

const (
	CategoryCertificate Category = "Certificate"
	CategoryAcademic    Category = "Academic"
	CategoryWork        Category = "Work"
	CategoryBusiness    Category = "Business"
	CategoryPersonal    Category = "Personal"
	CategoryOthers      Category = "Others"
)

func (c Category) String() string { return string(c) }

// GenerativeLabels is the closed vocabulary the generative fallback may answer with.
var GenerativeLabels = []Category{
	CategoryAcademic,
	CategoryWork,
	CategoryBusiness,
	CategoryCertificate,
	CategoryPersonal,
	CategoryOthers,
}

type KeywordRule struct {
	Category Category `json:"category" yaml:"category"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

type ExtensionRule struct {
	Category   Category `json:"category" yaml:"category"`
	Extensions []string `json:"extensions" yaml:"extensions"`
}

// Catalog holds the static keyword and extension tables. Rule order is
// significant: it is the tie-break order of keyword scoring and the match
// order of extension lookup.
type Catalog struct {
	DocumentTypes []KeywordRule   `json:"document_types" yaml:"document_types"`
	Extensions    []ExtensionRule `json:"extensions" yaml:"extensions"`
	Fallback      Category        `json:"fallback" yaml:"fallback"`
}

// CategoryForExtension maps a filename to its extension category, or to the
// fallback category when no rule matches.
func (c Catalog) CategoryForExtension(filename string) Category {
	name := strings.ToLower(filename)
	for _, rule := range c.Extensions {
		for _, ext := range rule.Extensions {
			if strings.HasSuffix(name, ext) {
				return rule.Category
			}
		}
	}
	if c.Fallback == "" {
		return CategoryOthers
	}
	return c.Fallback
}

// Categories lists every label the catalog can produce, keyword categories first.
func (c Catalog) Categories() []Category {
	seen := make(map[Category]struct{})
	out := make([]Category, 0, len(c.DocumentTypes)+len(c.Extensions)+1)
	add := func(cat Category) {
		if _, ok := seen[cat]; ok {
			return
		}
		seen[cat] = struct{}{}
		out = append(out, cat)
	}
	for _, rule := range c.DocumentTypes {
		add(rule.Category)
	}
	for _, rule := range c.Extensions {
		add(rule.Category)
	}
	if c.Fallback != "" {
		add(c.Fallback)
	} else {
		add(CategoryOthers)
	}
	return out
}

// IsKnown reports whether cat is a label the catalog can produce.
func (c Catalog) IsKnown(cat Category) bool {
	for _, known := range c.Categories() {
		if known == cat {
			return true
		}
	}
	return false
}

// DefaultCatalog returns the built-in tables.
func DefaultCatalog() Catalog {
	return Catalog{
		DocumentTypes: []KeywordRule{
			{Category: CategoryCertificate, Keywords: []string{
				"certificate", "certified", "this is to certify",
				"successfully completed", "course completion", "awarded", "diploma",
			}},
			{Category: CategoryAcademic, Keywords: []string{
				"assignment", "experiment", "abstract", "introduction",
				"methodology", "results", "conclusion",
				"university", "college", "lab", "project report",
			}},
			{Category: CategoryWork, Keywords: []string{
				"resume", "curriculum vitae", "experience",
				"skills", "employment", "internship",
			}},
			{Category: CategoryBusiness, Keywords: []string{
				"invoice", "receipt", "gst", "tax",
				"amount", "payment", "bill",
			}},
			{Category: CategoryPersonal, Keywords: []string{
				"aadhaar", "passport", "pan card",
				"date of birth", "address", "identity",
			}},
		},
		Extensions: []ExtensionRule{
			{Category: "Images", Extensions: []string{".jpg", ".jpeg", ".png", ".gif", ".bmp"}},
			{Category: "PDFs", Extensions: []string{".pdf"}},
			{Category: "Word Documents", Extensions: []string{".doc", ".docx"}},
			{Category: "Excel Files", Extensions: []string{".xls", ".xlsx", ".csv"}},
			{Category: "PowerPoint", Extensions: []string{".ppt", ".pptx"}},
			{Category: "Text Files", Extensions: []string{".txt"}},
			{Category: "Audio", Extensions: []string{".mp3", ".wav", ".aac", ".m4a", ".ogg"}},
			{Category: "Video", Extensions: []string{".mp4", ".avi", ".mkv", ".mov", ".wmv"}},
			{Category: "Archives", Extensions: []string{".zip", ".rar", ".7z"}},
			{Category: "Code Files", Extensions: []string{".py", ".java", ".c", ".cpp", ".js", ".html", ".css"}},
			{Category: "Executables", Extensions: []string{".exe", ".msi"}},
			{Category: "Fonts", Extensions: []string{".ttf", ".otf"}},
			{Category: "Database", Extensions: []string{".db", ".sql"}},
			{Category: "Email", Extensions: []string{".eml", ".msg"}},
			{Category: "eBook", Extensions: []string{".epub", ".mobi"}},
			{Category: "Design", Extensions: []string{".psd", ".ai", ".fig", ".xd"}},
			{Category: "Logs", Extensions: []string{".log"}},
			{Category: "Shaders", Extensions: []string{".glsl", ".shader"}},
		},
		Fallback: CategoryOthers,
	}
}

// UploadedFile is a file received from the caller, consumed by the pipeline.
type UploadedFile struct {
	Filename string
	Content  []byte
}

// Extension returns the lower-cased suffix after the last dot, without the dot.
func (f UploadedFile) Extension() string {
	ext := filepath.Ext(f.Filename)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

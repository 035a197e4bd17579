package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
)

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cat, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCatalog(), cat)
}

func TestLoadNormalizesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	body := `
document_types:
  - category: Business
    keywords: [" Invoice ", "GST", ""]
extensions:
  - category: Audio
    extensions: [MP3, .wav]
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cat, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"invoice", "gst"}, cat.DocumentTypes[0].Keywords)
	assert.Equal(t, []string{".mp3", ".wav"}, cat.Extensions[0].Extensions)
	assert.Equal(t, domain.CategoryOthers, cat.Fallback)
	assert.Equal(t, domain.Category("Audio"), cat.CategoryForExtension("voice.MP3"))
}

func TestParseRejectsInvalidCatalogs(t *testing.T) {
	cases := map[string]string{
		"no document types": "extensions: []\n",
		"duplicate":         "document_types:\n  - {category: Work, keywords: [cv]}\n  - {category: Work, keywords: [job]}\n",
		"no keywords":       "document_types:\n  - {category: Work, keywords: []}\n",
		"unknown field":     "document_types:\n  - {category: Work, keywords: [cv]}\nweights: 3\n",
		"empty extensions":  "document_types:\n  - {category: Work, keywords: [cv]}\nextensions:\n  - {category: Audio}\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(body))
			require.Error(t, err)
			assert.True(t, domain.IsKind(err, domain.ErrInvalidInput))
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

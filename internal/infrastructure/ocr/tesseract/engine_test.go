package tesseract

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
)

func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestRecognizeTextMissingBinary(t *testing.T) {
	e := New(Options{TesseractPath: "/nonexistent/tesseract"})
	if e.Available() {
		t.Fatalf("expected engine to be unavailable")
	}
	_, err := e.RecognizeText(context.Background(), []byte("img"))
	if !domain.IsKind(err, domain.ErrEngineUnavailable) {
		t.Fatalf("expected engine unavailable, got %v", err)
	}
}

func TestRecognizeTextPipesImage(t *testing.T) {
	bin := writeScript(t, "tesseract", "cat\n")
	e := New(Options{TesseractPath: bin})

	got, err := e.RecognizeText(context.Background(), []byte("Certificate of Award"))
	if err != nil {
		t.Fatalf("RecognizeText() error = %v", err)
	}
	if got != "Certificate of Award" {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestRecognizeTextReportsStderr(t *testing.T) {
	bin := writeScript(t, "tesseract", "echo 'bad image' >&2\nexit 1\n")
	e := New(Options{TesseractPath: bin})
	if _, err := e.RecognizeText(context.Background(), nil); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRasterizePDFOrdersPages(t *testing.T) {
	// Arguments: -r DPI -png INPUT PREFIX
	bin := writeScript(t, "pdftoppm", `prefix="$5"
for n in 1 2 10; do echo "p$n" > "$prefix-$n.png"; done
`)
	e := New(Options{PdftoppmPath: bin})

	pages, err := e.RasterizePDF(context.Background(), []byte("%PDF"))
	if err != nil {
		t.Fatalf("RasterizePDF() error = %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	if string(pages[2]) != "p10\n" {
		t.Fatalf("expected page 10 last, got %q", pages[2])
	}
}

func TestRasterizePDFMissingBinary(t *testing.T) {
	e := New(Options{PdftoppmPath: "/nonexistent/pdftoppm"})
	if _, err := e.RasterizePDF(context.Background(), nil); !domain.IsKind(err, domain.ErrEngineUnavailable) {
		t.Fatalf("expected engine unavailable, got %v", err)
	}
}

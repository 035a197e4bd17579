package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ksrishi31-git/smart-document-organizer/internal/core/domain"
)

type Options struct {
	TesseractPath string
	PdftoppmPath  string
	Language      string
	DPI           int
}

// Engine shells out to the tesseract and pdftoppm binaries.
type Engine struct {
	tesseract string
	pdftoppm  string
	language  string
	dpi       int
}

func New(options Options) *Engine {
	e := &Engine{
		tesseract: options.TesseractPath,
		pdftoppm:  options.PdftoppmPath,
		language:  options.Language,
		dpi:       options.DPI,
	}
	if e.tesseract == "" {
		e.tesseract = "tesseract"
	}
	if e.pdftoppm == "" {
		e.pdftoppm = "pdftoppm"
	}
	if e.language == "" {
		e.language = "eng"
	}
	if e.dpi <= 0 {
		e.dpi = 200
	}
	return e
}

// Available reports whether the OCR binary can be found.
func (e *Engine) Available() bool {
	_, err := exec.LookPath(e.tesseract)
	return err == nil
}

func (e *Engine) CanRasterize() bool {
	_, err := exec.LookPath(e.pdftoppm)
	return err == nil
}

func (e *Engine) RecognizeText(ctx context.Context, image []byte) (string, error) {
	bin, err := resolve(e.tesseract)
	if err != nil {
		return "", err
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "stdin", "stdout", "-l", e.language)
	cmd.Stdin = bytes.NewReader(image)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("tesseract: %w", ctx.Err())
		}
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// RasterizePDF renders every page to PNG, in page order.
func (e *Engine) RasterizePDF(ctx context.Context, pdf []byte) ([][]byte, error) {
	bin, err := resolve(e.pdftoppm)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "pdfpages-*")
	if err != nil {
		return nil, fmt.Errorf("create raster dir: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(input, pdf, 0o600); err != nil {
		return nil, fmt.Errorf("write raster input: %w", err)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-r", strconv.Itoa(e.dpi), "-png", input, filepath.Join(dir, "page"))
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("pdftoppm: %w", ctx.Err())
		}
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	files, err := filepath.Glob(filepath.Join(dir, "page-*.png"))
	if err != nil {
		return nil, fmt.Errorf("list raster pages: %w", err)
	}
	sort.Slice(files, func(i, j int) bool {
		return pageNumber(files[i]) < pageNumber(files[j])
	})

	pages := make([][]byte, 0, len(files))
	for _, f := range files {
		raw, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read raster page: %w", err)
		}
		pages = append(pages, raw)
	}
	return pages, nil
}

func resolve(name string) (string, error) {
	bin, err := exec.LookPath(name)
	if err != nil {
		return "", domain.WrapError(domain.ErrEngineUnavailable, "lookup "+name, err)
	}
	return bin, nil
}

// pageNumber parses the N of page-N.png; pdftoppm pads N only to the width of
// the last page number.
func pageNumber(path string) int {
	base := strings.TrimSuffix(filepath.Base(path), ".png")
	n, err := strconv.Atoi(strings.TrimPrefix(base, "page-"))
	if err != nil {
		return 0
	}
	return n
}

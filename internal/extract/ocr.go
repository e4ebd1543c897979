package extract

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Tesseract rasterises a PDF with pdftoppm and recognises each page image
// with the tesseract binary.
type Tesseract struct {
	PdftoppmPath  string
	TesseractPath string
	DPI           int
	Language      string
}

func NewTesseract() *Tesseract {
	return &Tesseract{
		PdftoppmPath:  "pdftoppm",
		TesseractPath: "tesseract",
		DPI:           300,
		Language:      "eng",
	}
}

func (t *Tesseract) Recognize(ctx context.Context, data []byte) ([]string, error) {
	dir, err := os.MkdirTemp("", "cv-ocr-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create ocr workdir: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "input.pdf")
	if err := os.WriteFile(input, data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write pdf for ocr: %w", err)
	}

	prefix := filepath.Join(dir, "page")
	raster := exec.CommandContext(ctx, t.PdftoppmPath, "-r", strconv.Itoa(t.DPI), "-png", input, prefix)
	if out, err := raster.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w: %s", err, strings.TrimSpace(string(out)))
	}

	images, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, fmt.Errorf("failed to list page images: %w", err)
	}
	sortPageImages(images)

	pages := make([]string, 0, len(images))
	for _, img := range images {
		cmd := exec.CommandContext(ctx, t.TesseractPath, img, "stdout", "-l", t.Language)
		out, err := cmd.Output()
		if err != nil {
			return pages, fmt.Errorf("tesseract failed on %s: %w", filepath.Base(img), err)
		}
		pages = append(pages, string(out))
	}
	return pages, nil
}

// sortPageImages orders pdftoppm output (page-1.png, page-2.png, ...) by page
// number rather than lexically.
func sortPageImages(images []string) {
	sort.SliceStable(images, func(i, j int) bool {
		return pageNumber(images[i]) < pageNumber(images[j])
	})
}

func pageNumber(path string) int {
	base := strings.TrimSuffix(filepath.Base(path), ".png")
	idx := strings.LastIndex(base, "-")
	if idx < 0 {
		return 0
	}
	n, err := strconv.Atoi(base[idx+1:])
	if err != nil {
		return 0
	}
	return n
}

package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bdahlka1/cec.ai-demo/internal/entity"
)

// OCRConfig enables recognition of scanned PDFs that carry no text layer.
type OCRConfig struct {
	Enabled   bool
	Pdftoppm  string // if empty -> "pdftoppm"
	Tesseract string // if empty -> "tesseract"
	Lang      string // tesseract language; if empty -> "eng"
	DPI       int    // raster resolution; 0 -> 300
}

func (c OCRConfig) withDefaults() OCRConfig {
	if c.Pdftoppm == "" {
		c.Pdftoppm = "pdftoppm"
	}
	if c.Tesseract == "" {
		c.Tesseract = "tesseract"
	}
	if c.Lang == "" {
		c.Lang = "eng"
	}
	if c.DPI <= 0 {
		c.DPI = 300
	}
	return c
}

// blank reports whether no page holds any visible text.
func blank(pages entity.Pages) bool {
	return strings.TrimSpace(pages.Joined()) == ""
}

// pdfToOCR rasterizes every page and recognizes each image on its own, so page numbers
// survive. A page tesseract cannot read stays empty.
func (e *Extractor) pdfToOCR(ctx context.Context, path string) (entity.Pages, error) {
	cfg := e.cfg.OCR
	tmpDir, err := os.MkdirTemp("", "bidscore-ocr-*")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			e.logger.Warn("ocr.cleanup_failed", "dir", tmpDir, "error", err)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png [-l N] <in.pdf> <tmp/page>
	args := []string{"-r", strconv.Itoa(cfg.DPI), "-png"}
	if e.cfg.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(e.cfg.MaxPages))
	}
	args = append(args, path, prefix)
	if _, errb, err := e.runner.Run(ctx, cfg.Pdftoppm, args...); err != nil {
		if msg := strings.TrimSpace(string(errb)); msg != "" {
			return nil, fmt.Errorf("pdftoppm: %s: %w", msg, err)
		}
		return nil, fmt.Errorf("pdftoppm: %w", err)
	}

	// prefix-1.png, prefix-2.png, ... zero-padded to a common width
	images, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(images)
	if len(images) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no images")
	}

	texts := make([]string, len(images))
	read := 0
	for i, img := range images {
		// tesseract <file> stdout -l <lang>
		out, errb, err := e.runner.Run(ctx, cfg.Tesseract, img, "stdout", "-l", cfg.Lang)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			e.logger.Warn("ocr.page_failed", "path", path, "page", i+1, "error", err, "stderr", truncate(string(errb), 512))
			continue
		}
		texts[i] = NormalizeNewlines(string(out))
		read++
	}
	if read == 0 {
		return nil, fmt.Errorf("tesseract could not read any of %d pages", len(images))
	}
	e.logger.Info("ocr.ok", "path", path, "pages", len(images), "read", read)
	return entity.PagesFromSlice(texts), nil
}

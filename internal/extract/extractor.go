package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/bdahlka1/cec.ai-demo/constants"
	"github.com/bdahlka1/cec.ai-demo/internal/common"
	"github.com/bdahlka1/cec.ai-demo/internal/entity"
)

type Config struct {
	Pdftotext string        // binary name or absolute path; if empty -> "pdftotext"
	MaxPages  int           // 0 = no limit
	Timeout   time.Duration // per document; 0 = no deadline
	OCR       OCRConfig
}

// Extractor reads PDF documents through pdftotext and plain-text documents directly.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

type Option func(*Extractor)

// WithRunner replaces the command runner (tests).
func WithRunner(r Runner) Option {
	return func(e *Extractor) {
		if r != nil {
			e.runner = r
		}
	}
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	cfg.OCR = cfg.OCR.withDefaults()
	e := &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
	for _, o := range opts {
		o(e)
	}
	return e
}

// ConfigFrom maps the application extract settings.
func ConfigFrom(c common.ExtractConfig) Config {
	return Config{
		Pdftotext: c.Pdftotext,
		MaxPages:  c.MaxPages,
		Timeout:   c.Timeout,
		OCR: OCRConfig{
			Enabled:   c.OCR,
			Pdftoppm:  c.Pdftoppm,
			Tesseract: c.Tesseract,
			Lang:      c.OCRLang,
			DPI:       c.OCRDPI,
		},
	}
}

// Extract picks a strategy based on file extension.
func (e *Extractor) Extract(ctx context.Context, path string) (entity.Pages, error) {
	start := time.Now()
	logger := common.ContextLogger(ctx, e.logger)
	info, err := os.Stat(path)
	if err != nil {
		return nil, common.ExtractionError(fmt.Sprintf("cannot read %s", path), err)
	}
	if info.IsDir() {
		return nil, common.ExtractionError(fmt.Sprintf("%s is a directory", path), nil)
	}

	ctx, cancel := common.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	ext := constants.NormalizeExt(filepath.Ext(path))
	logger.Debug("extract.start", "path", path, "ext", ext, "size", humanize.Bytes(uint64(info.Size())))

	var text string
	format := constants.MapExtToFormat(ext)
	switch format {
	case constants.PDF:
		text, err = e.pdfToText(ctx, path)
	case constants.TXT:
		var b []byte
		b, err = os.ReadFile(path)
		text = string(b)
	default:
		return nil, common.ExtractionError(fmt.Sprintf("unsupported extension %q", ext), nil)
	}
	if err != nil {
		logger.Error("extract.failed", "path", path, "error", err)
		return nil, common.ExtractionError(fmt.Sprintf("cannot extract %s", path), err)
	}

	pages := SplitPages(text, e.cfg.MaxPages)
	method := "text"
	if format == constants.PDF && e.cfg.OCR.Enabled && blank(pages) {
		logger.Info("extract.no_text_layer", "path", path, "pages", pages.Len())
		pages, err = e.pdfToOCR(ctx, path)
		if err != nil {
			logger.Error("extract.failed", "path", path, "method", "ocr", "error", err)
			return nil, common.ExtractionError(fmt.Sprintf("cannot recognize %s", path), err)
		}
		method = "ocr"
	}
	logger.Info("extract.ok",
		"method", method,
		"path", path,
		"pages", pages.Len(),
		"size", humanize.Bytes(uint64(info.Size())),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return pages, nil
}

func (e *Extractor) pdfToText(ctx context.Context, path string) (string, error) {
	// pdftotext -layout -enc UTF-8 -eol unix [-l N] <path> -
	args := []string{"-layout", "-enc", "UTF-8", "-eol", "unix"}
	if e.cfg.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(e.cfg.MaxPages))
	}
	args = append(args, path, "-")

	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, args...)
	if err != nil {
		if msg := strings.TrimSpace(string(errb)); msg != "" {
			return "", fmt.Errorf("%s: %w", msg, err)
		}
		if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
			return "", fmt.Errorf("pdftotext timed out: %w", ctxErr)
		}
		return "", err
	}
	return string(out), nil
}

// SplitPages cuts extracted text into pages on form feeds. The empty segment after a
// trailing form feed is not a page. maxPages > 0 keeps only the leading pages.
func SplitPages(text string, maxPages int) entity.Pages {
	text = NormalizeNewlines(text)
	parts := strings.Split(text, "\f")
	if n := len(parts); n > 1 && strings.TrimSpace(parts[n-1]) == "" {
		parts = parts[:n-1]
	}
	if maxPages > 0 && len(parts) > maxPages {
		parts = parts[:maxPages]
	}
	return entity.PagesFromSlice(parts)
}

// NormalizeNewlines converts CRLF and lone CR to LF. Nothing else is touched: matching runs
// on the text as extracted.
func NormalizeNewlines(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	return strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(s)
}

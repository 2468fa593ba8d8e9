/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: export.go
Description: Static export of rendered profiles through headless Chrome. Produces a full-page
PNG screenshot and a PDF print of the HTML page.
*/

package reporting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/kleascm/orka/pkg/errs"
	"github.com/sirupsen/logrus"
)

// Format is a static export format.
type Format string

const (
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

// ParseFormats reads a comma-separated list such as "png,pdf". Blank input yields no formats.
func ParseFormats(s string) ([]Format, error) {
	var out []Format
	seen := make(map[Format]bool)
	for _, part := range strings.Split(s, ",") {
		f := Format(strings.ToLower(strings.TrimSpace(part)))
		if f == "" {
			continue
		}
		if f != FormatPNG && f != FormatPDF {
			return nil, fmt.Errorf("%w: unknown export format %q", errs.ErrInvalidArgument, part)
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

// FileName returns the output file name of a format.
func (f Format) FileName() string {
	if f == FormatPDF {
		return PDFFile
	}
	return PNGFile
}

// ChromeExporter renders HTML pages to images and documents.
type ChromeExporter struct {
	Formats []Format
	// Quality of the PNG screenshot, 0-100.
	Quality int
	logger  *logrus.Logger
}

// NewChromeExporter creates an exporter for the given formats.
func NewChromeExporter(formats []Format, logger *logrus.Logger) *ChromeExporter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ChromeExporter{Formats: formats, Quality: 90, logger: logger}
}

// Export loads htmlPath in a headless browser and writes one file per format next to it.
func (e *ChromeExporter) Export(ctx context.Context, htmlPath string) ([]string, error) {
	if len(e.Formats) == 0 {
		return nil, nil
	}
	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrNotFound, abs)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	if err := chromedp.Run(browserCtx,
		chromedp.Navigate("file://"+filepath.ToSlash(abs)),
		chromedp.WaitReady("body"),
	); err != nil {
		return nil, fmt.Errorf("failed to load %s in browser: %w", abs, err)
	}

	dir := filepath.Dir(abs)
	var written []string
	for _, f := range e.Formats {
		var buf []byte
		var action chromedp.Action
		switch f {
		case FormatPDF:
			action = chromedp.ActionFunc(func(ctx context.Context) error {
				data, _, err := page.PrintToPDF().WithPrintBackground(true).WithLandscape(true).Do(ctx)
				buf = data
				return err
			})
		default:
			action = chromedp.FullScreenshot(&buf, e.Quality)
		}
		if err := chromedp.Run(browserCtx, action); err != nil {
			return written, fmt.Errorf("failed to export %s: %w", f, err)
		}

		out := filepath.Join(dir, f.FileName())
		if err := os.WriteFile(out, buf, 0644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", out, err)
		}
		e.logger.WithField("file", out).Info("Energy profile exported")
		written = append(written, out)
	}
	return written, nil
}

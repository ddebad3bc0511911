package printing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/schoolhub/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const (
	defaultChromeTimeout = 30 * time.Second

	a4WidthMM  = 210.0
	a4HeightMM = 297.0
)

// ChromedpRenderer renders HTML to PDF through the Chrome DevTools Protocol,
// either by launching a local headless Chrome or by attaching to a remote one.
type ChromedpRenderer struct {
	timeout     time.Duration
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// NewRenderer returns a chromedp renderer when printing is enabled and the
// unavailable renderer otherwise
func NewRenderer(cfg config.PrintingConfig, logger *zap.Logger) PDFRenderer {
	if !cfg.Enabled {
		logger.Info("PDF printing disabled")
		return UnavailableRenderer{}
	}
	return NewChromedpRenderer(cfg, logger)
}

// NewChromedpRenderer creates the renderer. The browser is started lazily on first render.
func NewChromedpRenderer(cfg config.PrintingConfig, logger *zap.Logger) *ChromedpRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultChromeTimeout
	}

	r := &ChromedpRenderer{timeout: timeout, logger: logger}

	if cfg.RemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
		return r
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if cfg.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	return r
}

// Render prints req.HTML to an A4 PDF
func (r *ChromedpRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if req == nil || strings.TrimSpace(req.HTML) == "" {
		return nil, NewRenderError(ErrCodeInvalidHTML, "HTML content is empty", nil)
	}

	start := time.Now()
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = r.timeout
	}

	browserCtx, browserCancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()

	runCtx, cancel := context.WithTimeout(browserCtx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	margins := req.Margins
	if margins == (Margins{}) {
		margins = DefaultMargins
	}
	document := wrapDocument(req)

	var pdfData []byte
	err := chromedp.Run(runCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, document).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			params := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(mmToInches(a4WidthMM)).
				WithPaperHeight(mmToInches(a4HeightMM)).
				WithMarginTop(mmToInches(margins.Top)).
				WithMarginRight(mmToInches(margins.Right)).
				WithMarginBottom(mmToInches(margins.Bottom)).
				WithMarginLeft(mmToInches(margins.Left)).
				WithLandscape(req.Landscape)
			if req.FooterHTML != "" {
				params = params.
					WithDisplayHeaderFooter(true).
					WithHeaderTemplate("<span></span>").
					WithFooterTemplate(req.FooterHTML)
			}
			data, _, err := params.Do(ctx)
			if err != nil {
				return err
			}
			pdfData = data
			return nil
		}),
	)
	if err != nil {
		return nil, r.classify(runCtx, timeout, err)
	}
	if len(pdfData) == 0 {
		return nil, NewRenderError(ErrCodeRenderFailed, "generated PDF is empty", nil)
	}

	result := &RenderResult{
		PDFData:        pdfData,
		PageCount:      estimatePageCount(pdfData),
		RenderDuration: time.Since(start),
	}
	r.logger.Info("PDF rendered",
		zap.String("title", req.Title),
		zap.Int("bytes", len(pdfData)),
		zap.Int("pages", result.PageCount),
		zap.Duration("duration", result.RenderDuration))
	return result, nil
}

// classify maps chromedp failures. A missing browser binary becomes ErrPDFUnavailable.
func (r *ChromedpRenderer) classify(runCtx context.Context, timeout time.Duration, err error) error {
	if errors.Is(err, exec.ErrNotFound) || strings.Contains(err.Error(), "executable file not found") {
		r.logger.Warn("chrome not found, PDF printing unavailable", zap.Error(err))
		return ErrPDFUnavailable
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return NewRenderError(ErrCodeRenderTimeout, fmt.Sprintf("PDF rendering timed out after %v", timeout), err)
	}
	if errors.Is(runCtx.Err(), context.Canceled) {
		return NewRenderError(ErrCodeRenderTimeout, "PDF rendering was cancelled", err)
	}
	r.logger.Error("chromedp rendering failed", zap.Error(err))
	return NewRenderError(ErrCodeRenderFailed, "chromedp execution failed", err)
}

// Close shuts the browser down
func (r *ChromedpRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

// wrapDocument adds the html skeleton unless the content already has one
func wrapDocument(req *RenderRequest) string {
	lower := strings.ToLower(req.HTML)
	if strings.Contains(lower, "<!doctype") || strings.Contains(lower, "<html") {
		return req.HTML
	}

	var buf bytes.Buffer
	buf.WriteString(`<!DOCTYPE html><html><head><meta charset="UTF-8">`)
	if req.Title != "" {
		buf.WriteString("<title>")
		buf.WriteString(html.EscapeString(req.Title))
		buf.WriteString("</title>")
	}
	buf.WriteString("</head><body>")
	buf.WriteString(req.HTML)
	buf.WriteString("</body></html>")
	return buf.String()
}

func mmToInches(mm float64) float64 {
	return mm / 25.4
}

// estimatePageCount counts page objects; "/Type /Pages" marks the page tree root
func estimatePageCount(pdfData []byte) int {
	count := bytes.Count(pdfData, []byte("/Type /Page")) - bytes.Count(pdfData, []byte("/Type /Pages"))
	return max(count, 1)
}

var _ PDFRenderer = (*ChromedpRenderer)(nil)

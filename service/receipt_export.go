package service

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

// ReceiptExporter prints the receipt page with headless Chrome
type ReceiptExporter struct {
	baseURL    string // Base URL of this server (e.g., "http://localhost:8080")
	chromePath string
	pngWidth   int
	logger     *zap.Logger
}

// Ensure ReceiptExporter implements ReceiptExporterInterface
var _ ReceiptExporterInterface = (*ReceiptExporter)(nil)

// NewReceiptExporter creates a ReceiptExporter. An empty chromePath triggers auto-detection.
func NewReceiptExporter(baseURL, chromePath string, pngWidth int, logger *zap.Logger) *ReceiptExporter {
	if chromePath == "" {
		chromePath = detectChromePath()
	}
	return &ReceiptExporter{
		baseURL:    baseURL,
		chromePath: chromePath,
		pngWidth:   pngWidth,
		logger:     logger,
	}
}

// detectChromePath checks common Chrome/Chromium installation paths
func detectChromePath() string {
	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func (e *ReceiptExporter) receiptURL(orderID string) string {
	return fmt.Sprintf("%s/receipt?orderId=%s", e.baseURL, url.QueryEscape(orderID))
}

// browser starts a headless Chrome bound to ctx. The returned cancel func releases it.
func (e *ReceiptExporter) browser(ctx context.Context) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox, // Required for running in Docker/containers
	)
	if e.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(e.chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	chromedpCtx, chromedpCancel := chromedp.NewContext(allocCtx)
	return chromedpCtx, func() {
		chromedpCancel()
		allocCancel()
	}
}

// GeneratePDF prints the receipt page to an A5-sized PDF
func (e *ReceiptExporter) GeneratePDF(ctx context.Context, orderID string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	chromedpCtx, release := e.browser(ctx)
	defer release()

	var pdfBuf []byte
	err := chromedp.Run(chromedpCtx,
		chromedp.Navigate(e.receiptURL(orderID)),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(5.83).  // 148mm in inches
				WithPaperHeight(8.27). // 210mm in inches
				WithMarginTop(0.4).
				WithMarginBottom(0.4).
				WithMarginLeft(0.4).
				WithMarginRight(0.4).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	e.logger.Info("✓ receipt PDF generated", zap.String("order_id", orderID), zap.Int("bytes", len(pdfBuf)))
	return pdfBuf, nil
}

// GeneratePNG screenshots the receipt page and scales it down to the configured width
func (e *ReceiptExporter) GeneratePNG(ctx context.Context, orderID string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	chromedpCtx, release := e.browser(ctx)
	defer release()

	var buf []byte
	err := chromedp.Run(chromedpCtx,
		chromedp.EmulateViewport(1024, 1400),
		chromedp.Navigate(e.receiptURL(orderID)),
		chromedp.WaitReady("body"),
		chromedp.FullScreenshot(&buf, 100),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to capture receipt screenshot: %w", err)
	}

	out, err := DownscalePNG(buf, e.pngWidth)
	if err != nil {
		return nil, err
	}

	e.logger.Info("✓ receipt PNG generated", zap.String("order_id", orderID), zap.Int("bytes", len(out)))
	return out, nil
}

// DownscalePNG decodes an image and, if wider than maxWidth, resizes it
// keeping the aspect ratio. The result is always PNG encoded.
func DownscalePNG(data []byte, maxWidth int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	if maxWidth > 0 && img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	var out bytes.Buffer
	if err := imaging.Encode(&out, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return out.Bytes(), nil
}

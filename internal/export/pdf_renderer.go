package export

import (
	"context"
	_ "embed"
	"encoding/base64"
	"fmt"
	"html"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/joelkehle/kyc-screener/internal/screening"
)

//go:embed style.css
var styleCSS string

const DefaultPDFTimeout = 45 * time.Second

// PDFRenderer turns a report into a PDF document.
type PDFRenderer interface {
	Render(ctx context.Context, report screening.ComprehensiveReport) ([]byte, error)
}

type ChromiumPDFRenderer struct {
	chromePath string
	timeout    time.Duration
	now        func() time.Time
}

// NewChromiumPDFRenderer prints through a local Chromium. An empty
// chromePath falls back to the well-known install locations.
func NewChromiumPDFRenderer(chromePath string, timeout time.Duration) *ChromiumPDFRenderer {
	if chromePath == "" {
		chromePath = detectChromePath()
	}
	if timeout <= 0 {
		timeout = DefaultPDFTimeout
	}
	return &ChromiumPDFRenderer{chromePath: chromePath, timeout: timeout, now: time.Now}
}

func (r *ChromiumPDFRenderer) Render(ctx context.Context, report screening.ComprehensiveReport) ([]byte, error) {
	date := r.reportDate(report)
	htmlDoc, err := buildHTML(report, date)
	if err != nil {
		return nil, err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
	}
	if r.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(timeoutCtx, append(chromedp.DefaultExecAllocatorOptions[:], opts...)...)
	defer allocCancel()

	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()

	var pdf []byte
	dataURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(htmlDoc))
	if err := chromedp.Run(taskCtx,
		chromedp.Navigate(dataURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			out, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithDisplayHeaderFooter(true).
				WithHeaderTemplate(headerTemplate(report.CompanySummary.Name)).
				WithFooterTemplate(footerTemplate(date)).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithMarginTop(0.6).
				WithMarginBottom(0.75).
				WithMarginLeft(0.6).
				WithMarginRight(0.6).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = out
			return nil
		}),
	); err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	return pdf, nil
}

func (r *ChromiumPDFRenderer) reportDate(report screening.ComprehensiveReport) string {
	ts := report.GeneratedAt
	if ts.IsZero() {
		ts = r.now()
	}
	return ts.Format("January 2, 2006")
}

func buildHTML(report screening.ComprehensiveReport, date string) (string, error) {
	var content strings.Builder
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert([]byte(BuildMarkdown(report)), &content); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}
	company := html.EscapeString(report.CompanySummary.Name)
	return "<!doctype html><html><head><meta charset='utf-8'><title>" + ReportTitle + " | " + company + "</title>" +
		"<style>" + styleCSS + "\n" +
		"html,body,*{-webkit-print-color-adjust:exact !important;print-color-adjust:exact !important;}" +
		"</style></head><body>" +
		"<section class='cover'><h1>KYC Due Diligence Report</h1><p class='for'>Prepared for</p>" +
		"<p class='company'>" + company + "</p><p class='date'>Date: " + html.EscapeString(date) + "</p></section>" +
		"<section class='report'>" + applyPrintLayoutHooks(content.String()) + "</section>" +
		"</body></html>", nil
}

var riskValueRe = regexp.MustCompile(`(<strong>(?:Overall Risk|Risk Level):</strong>\s*)(High|Medium|Low)\b`)

// applyPrintLayoutHooks colours risk ratings in the printed copy.
func applyPrintLayoutHooks(contentHTML string) string {
	return riskValueRe.ReplaceAllString(contentHTML, `$1<span class="risk-$2">$2</span>`)
}

func headerTemplate(company string) string {
	return `<div style="width:100%;font-size:9px;color:#666;padding:0 0.6in;">KYC Business Screener | ` +
		html.EscapeString(company) + `</div>`
}

func footerTemplate(date string) string {
	return `<div style="width:100%;font-size:9px;color:#666;padding:0 0.6in;display:flex;justify-content:space-between;">` +
		`<span>Page <span class="pageNumber"></span> of <span class="totalPages"></span></span>` +
		`<span>` + html.EscapeString(date) + `</span></div>`
}

func detectChromePath() string {
	candidates := []string{
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/usr/bin/google-chrome",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

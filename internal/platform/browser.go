package platform

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// Session wraps one headless browser tab. Acquire with NewSession and always
// call the returned release func; the orchestrator relies on it to tear the
// rendering engine down on every exit path including cancellation.
type Session struct {
	ctx context.Context
}

// NewSession starts a browser context under ctx. Requires Chrome/Chromium on
// the system. The release func is idempotent.
func NewSession(ctx context.Context) (*Session, func(), error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	release := func() {
		browserCancel()
		allocCancel()
	}

	// Start the browser eagerly so acquisition failures surface here, not
	// on the first navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		release()
		return nil, nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return &Session{ctx: browserCtx}, release, nil
}

// Navigate loads a page and waits for the body to be ready.
func (s *Session) Navigate(url string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	return chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		// Give JavaScript-rendered forms a moment to appear.
		chromedp.Sleep(2*time.Second),
	)
}

// HTML returns the rendered document.
func (s *Session) HTML() (string, error) {
	ctx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
	defer cancel()
	var html string
	if err := chromedp.Run(ctx, chromedp.OuterHTML("html", &html)); err != nil {
		return "", fmt.Errorf("failed to read page html: %w", err)
	}
	return html, nil
}

// Click clicks the first visible match of sel.
func (s *Session) Click(sel string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	return chromedp.Run(ctx,
		chromedp.WaitVisible(sel),
		chromedp.Click(sel, chromedp.NodeVisible),
	)
}

// Fill clears and types into the input matched by sel.
func (s *Session) Fill(sel, value string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	return chromedp.Run(ctx,
		chromedp.WaitVisible(sel),
		chromedp.Clear(sel),
		chromedp.SendKeys(sel, value),
	)
}

// Upload attaches a local file to the file input matched by sel.
func (s *Session) Upload(sel, path string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	return chromedp.Run(ctx, chromedp.SetUploadFiles(sel, []string{path}))
}

// Exists reports whether sel matches anything in the current document.
func (s *Session) Exists(sel string) bool {
	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()
	var found bool
	err := chromedp.Run(ctx, chromedp.Evaluate(
		`document.querySelector(`+jsString(sel)+`) !== null`, &found))
	return err == nil && found
}

// Text returns the visible text of the page body.
func (s *Session) Text() (string, error) {
	ctx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
	defer cancel()
	var text string
	if err := chromedp.Run(ctx, chromedp.Text("body", &text, chromedp.NodeVisible)); err != nil {
		return "", fmt.Errorf("failed to read page text: %w", err)
	}
	return text, nil
}

// wallMarkers indicate an anti-automation interstitial or a login
// requirement standing between the session and the application form.
var wallMarkers = []string{
	"captcha",
	"verify you are human",
	"security check",
	"unusual activity",
	"sign in to continue",
	"join now or sign in",
	"please log in",
}

// DetectWall inspects the current page for CAPTCHA or login walls and
// returns ErrAntiAutomation when one is present. Adapters call this before
// and after risky interactions; any state may hit a wall.
func (s *Session) DetectWall() error {
	html, err := s.HTML()
	if err != nil {
		return nil // unreadable page is handled by the caller's own error
	}
	head := strings.ToLower(html)
	if len(head) > 20000 {
		head = head[:20000]
	}
	for _, m := range wallMarkers {
		if strings.Contains(head, m) {
			return fmt.Errorf("%w: page contains %q", ErrAntiAutomation, m)
		}
	}
	if s.Exists(`iframe[src*="recaptcha"], iframe[src*="hcaptcha"], div.g-recaptcha, div.h-captcha`) {
		return fmt.Errorf("%w: captcha widget present", ErrAntiAutomation)
	}
	return nil
}

// jsString quotes a Go string as a JavaScript string literal.
func jsString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`)
	return "'" + r.Replace(s) + "'"
}

package fubon

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// WaitStrategy describes when a rendered page is considered complete.
type WaitStrategy struct {
	NetworkIdle     bool          // wait for the network to quiesce after navigation
	Selector        string        // CSS selector that must exist before reading
	NavTimeout      time.Duration // bounds navigation plus the network-idle wait
	SelectorTimeout time.Duration // bounds the selector wait
	Settle          time.Duration // fixed wait after the selector appears
}

// Renderer loads url in a real rendering engine and returns the page markup
// once wait is satisfied.
type Renderer interface {
	Render(ctx context.Context, url string, wait WaitStrategy) (string, error)
}

// BrowserOptions configures ChromeRenderer.
type BrowserOptions struct {
	Headless  bool
	NoSandbox bool
	UserAgent string
	Language  string
}

// ChromeRenderer renders pages with a headless Chrome driven over CDP.
// Every Render starts its own browser and tears it down before returning.
type ChromeRenderer struct {
	opts BrowserOptions
}

// NewChromeRenderer creates a ChromeRenderer.
func NewChromeRenderer(opts BrowserOptions) *ChromeRenderer {
	return &ChromeRenderer{opts: opts}
}

func (r *ChromeRenderer) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", r.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if r.opts.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(r.opts.UserAgent))
	}
	if r.opts.Language != "" {
		opts = append(opts, chromedp.Flag("lang", r.opts.Language))
	}
	if r.opts.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	return opts
}

// Render implements Renderer.
func (r *ChromeRenderer) Render(ctx context.Context, url string, wait WaitStrategy) (string, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, r.allocatorOptions()...)
	defer allocCancel()
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)
	defer tabCancel()

	// Start the browser on the un-timed context so a timeout below only
	// aborts the wait, not the browser itself.
	if err := chromedp.Run(tabCtx); err != nil {
		return "", fmt.Errorf("start browser: %w", err)
	}

	idle := make(chan struct{})
	if wait.NetworkIdle {
		listenNetworkIdle(tabCtx, idle)
	}

	navCtx, navCancel := withOptionalTimeout(tabCtx, wait.NavTimeout)
	defer navCancel()
	nav := chromedp.Tasks{
		page.SetLifecycleEventsEnabled(true),
		chromedp.Navigate(url),
	}
	if wait.NetworkIdle {
		nav = append(nav, waitClosed(idle))
	}
	if err := chromedp.Run(navCtx, nav); err != nil {
		return "", fmt.Errorf("navigate %s: %w", url, err)
	}

	if wait.Selector != "" {
		selCtx, selCancel := withOptionalTimeout(tabCtx, wait.SelectorTimeout)
		defer selCancel()
		if err := chromedp.Run(selCtx, chromedp.WaitReady(wait.Selector, chromedp.ByQuery)); err != nil {
			return "", fmt.Errorf("wait for %q: %w", wait.Selector, err)
		}
	}

	var markup string
	if err := chromedp.Run(tabCtx,
		chromedp.Sleep(wait.Settle),
		chromedp.OuterHTML("html", &markup, chromedp.ByQuery),
	); err != nil {
		return "", fmt.Errorf("read page: %w", err)
	}
	return markup, nil
}

// listenNetworkIdle closes idle on the first networkIdle lifecycle event of
// the navigation that follows.
func listenNetworkIdle(ctx context.Context, idle chan struct{}) {
	var loader cdp.LoaderID
	closed := false
	chromedp.ListenTarget(ctx, func(ev interface{}) {
		e, ok := ev.(*page.EventLifecycleEvent)
		if !ok || closed {
			return
		}
		switch e.Name {
		case "init":
			loader = e.LoaderID
		case "networkIdle":
			if loader != "" && e.LoaderID == loader {
				closed = true
				close(idle)
			}
		}
	})
}

func waitClosed(ch <-chan struct{}) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		select {
		case <-ch:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

package surface

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"tokgrab/pkg/config"
	errs "tokgrab/pkg/errors"
	"tokgrab/pkg/logger"
	"tokgrab/pkg/retry"
)

// jsCollectLinks gathers every anchor href currently in the DOM,
// dropping pseudo-links that can never be content items
const jsCollectLinks = `
(() => {
	const links = Array.from(document.querySelectorAll('a'));
	return links.map(a => a.href).filter(href =>
		href &&
		!href.startsWith('javascript:') &&
		!href.startsWith('mailto:') &&
		!href.startsWith('tel:') &&
		!href.startsWith('#')
	);
})()
`

// Browser implements Surface against a headless Chrome tab
type Browser struct {
	cfg           config.BrowserConfig
	logger        logger.Logger
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
}

// NewBrowser launches a browser context. Navigation happens in Open;
// callers must Close when done.
func NewBrowser(cfg config.BrowserConfig, log logger.Logger) *Browser {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.Flag("headless", cfg.Headless),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	return &Browser{
		cfg:           cfg,
		logger:        log,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
	}
}

// Close tears down the tab and the browser process
func (b *Browser) Close() {
	b.browserCancel()
	b.allocCancel()
}

// Open navigates to the feed URL, injecting the session cookie first
// when one is configured. Navigation is retried with exponential
// backoff since feed hosts routinely drop the first connection.
func (b *Browser) Open(ctx context.Context, feedURL string) error {
	u, err := url.Parse(feedURL)
	if err != nil || u.Host == "" {
		return errs.Newf(errs.ErrorTypeInvalidArgument, "invalid feed URL %q", feedURL)
	}

	cookieDomain := "." + strings.TrimPrefix(u.Host, "www.")

	navigate := func() error {
		navCtx, cancel := context.WithTimeout(b.browserCtx, b.cfg.NavigationTimeout)
		defer cancel()

		var tasks chromedp.Tasks
		if b.cfg.SessionCookie != "" {
			name, value := splitCookie(b.cfg.SessionCookie)
			tasks = append(tasks, chromedp.ActionFunc(func(ctx context.Context) error {
				return network.SetCookie(name, value).
					WithDomain(cookieDomain).
					WithPath("/").
					WithHTTPOnly(true).
					Do(ctx)
			}))
		}
		tasks = append(tasks,
			chromedp.Navigate(feedURL),
			chromedp.WaitReady("body"),
		)

		if err := chromedp.Run(navCtx, tasks); err != nil {
			return errs.Wrap(errs.ErrorTypeSurface, "navigation failed", err)
		}
		return nil
	}

	retrier := retry.NewRetrier(&retry.Config{
		MaxAttempts: b.cfg.NavigationRetries,
		Backoff:     retry.DefaultExponentialBackoff(),
		RetryIf:     retry.DefaultRetryIf,
		Context:     ctx,
		Logger:      b.logger,
	})

	if err := retrier.Do(navigate); err != nil {
		return err
	}

	b.logger.InfoWithFields("feed page loaded", map[string]interface{}{
		"url":  feedURL,
		"host": u.Host,
	})
	return nil
}

// Extent reads the page's current scrollable height
func (b *Browser) Extent(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var extent int64
	if err := b.run(chromedp.Evaluate(`document.body.scrollHeight`, &extent)); err != nil {
		return 0, errs.Wrap(errs.ErrorTypeSurface, "failed to read content extent", err)
	}
	return extent, nil
}

// ScrollTo moves the viewport to the given extent
func (b *Browser) ScrollTo(ctx context.Context, extent int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	script := fmt.Sprintf(`window.scrollTo(0, %d)`, extent)
	if err := b.run(chromedp.Evaluate(script, nil)); err != nil {
		return errs.Wrap(errs.ErrorTypeSurface, "scroll command failed", err)
	}
	return nil
}

// Links collects the hrefs of all rendered anchors
func (b *Browser) Links(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var links []string
	if err := b.run(chromedp.Evaluate(jsCollectLinks, &links)); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeSurface, "failed to collect links", err)
	}
	return links, nil
}

// run executes actions against the tab, bounded by the navigation timeout
func (b *Browser) run(actions ...chromedp.Action) error {
	callCtx, cancel := context.WithTimeout(b.browserCtx, b.cfg.NavigationTimeout)
	defer cancel()
	return chromedp.Run(callCtx, actions...)
}

// splitCookie accepts either "name=value" or a bare session ID value
func splitCookie(cookie string) (name, value string) {
	if idx := strings.IndexByte(cookie, '='); idx > 0 {
		return cookie[:idx], cookie[idx+1:]
	}
	return "sessionid", cookie
}

package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/go-scripts/fontscrape/internal/types"
)

// Chrome is a Browser backed by chromedp
type Chrome struct {
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
}

// NewChrome starts a Chrome process and connects to it
func NewChrome(ctx context.Context, opts Options) (*Chrome, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
	)
	if opts.NoSandbox {
		allocOpts = append(allocOpts, chromedp.NoSandbox)
	}
	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.Headless)
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// The first Run starts the browser
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start chrome: %w", err)
	}

	return &Chrome{
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
	}, nil
}

// NewPage opens a new tab
func (c *Chrome) NewPage(ctx context.Context) (Page, error) {
	tabCtx, tabCancel := chromedp.NewContext(c.browserCtx)
	stop := context.AfterFunc(ctx, tabCancel)

	if err := chromedp.Run(tabCtx, page.SetLifecycleEventsEnabled(true)); err != nil {
		stop()
		tabCancel()
		return nil, fmt.Errorf("failed to open tab: %w", err)
	}

	return &chromePage{ctx: tabCtx, stop: stop}, nil
}

// Close shuts the browser down and waits for the process to exit
func (c *Chrome) Close() error {
	err := chromedp.Cancel(c.browserCtx)
	c.browserCancel()
	c.allocCancel()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to close chrome: %w", err)
	}
	return nil
}

type chromePage struct {
	ctx  context.Context
	stop func() bool
}

func (p *chromePage) NavigateIdle(url string) error {
	if err := chromedp.Run(p.ctx, navigateIdle(url)); err != nil {
		return fmt.Errorf("failed to load %s: %w", url, err)
	}
	return nil
}

func (p *chromePage) HeadingStyles() ([]types.StyleRow, error) {
	var raw string
	if err := chromedp.Run(p.ctx, chromedp.Evaluate("("+headingStylesJS+")()", &raw)); err != nil {
		return nil, fmt.Errorf("failed to evaluate heading styles: %w", err)
	}
	return decodeStyles(raw)
}

func (p *chromePage) Close() error {
	p.stop()
	if err := chromedp.Cancel(p.ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to close tab: %w", err)
	}
	return nil
}

// navigateIdle navigates to url and waits for Chrome's networkIdle lifecycle
// event for the document that navigation produced. Chrome fires networkIdle
// after 500ms with no open connections.
func navigateIdle(url string) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		var (
			mu   sync.Mutex
			idle = make(map[cdp.LoaderID]bool)
		)
		notify := make(chan struct{}, 1)

		lctx, cancel := context.WithCancel(ctx)
		defer cancel()

		chromedp.ListenTarget(lctx, func(ev interface{}) {
			e, ok := ev.(*page.EventLifecycleEvent)
			if !ok || e.Name != "networkIdle" {
				return
			}
			mu.Lock()
			idle[e.LoaderID] = true
			mu.Unlock()
			select {
			case notify <- struct{}{}:
			default:
			}
		})

		if err := chromedp.Navigate(url).Do(ctx); err != nil {
			return err
		}

		// Loader IDs are unique per document, so events replayed for the
		// initial blank page can't match. The frame tree is read again after
		// every networkIdle so a redirect done by script follows the new
		// document.
		for {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}

			mu.Lock()
			done := idle[tree.Frame.LoaderID]
			mu.Unlock()
			if done {
				return nil
			}

			select {
			case <-notify:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

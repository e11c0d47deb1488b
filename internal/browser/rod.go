package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/go-scripts/fontscrape/internal/types"
)

// idleTime is how long the network must stay quiet before a rod page counts
// as loaded.
const idleTime = 500 * time.Millisecond

// Rod is a Browser backed by go-rod
type Rod struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
}

// NewRod launches a browser through the rod launcher and connects to it
func NewRod(ctx context.Context, opts Options) (*Rod, error) {
	l := launcher.New().
		Context(ctx).
		Headless(opts.Headless).
		NoSandbox(opts.NoSandbox)

	if opts.ExecPath != "" {
		l = l.Bin(opts.ExecPath)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	b := rod.New().Context(ctx).ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	return &Rod{launcher: l, browser: b}, nil
}

// NewPage opens a new tab bound to ctx
func (r *Rod) NewPage(ctx context.Context) (Page, error) {
	p, err := r.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to open tab: %w", err)
	}
	return &rodPage{raw: p, page: p.Context(ctx)}, nil
}

// Close closes the browser and removes its user data dir
func (r *Rod) Close() error {
	err := r.browser.Close()
	r.launcher.Cleanup()
	if err != nil {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}

type rodPage struct {
	// raw is not bound to the caller's context so Close still works after
	// it is cancelled.
	raw  *rod.Page
	page *rod.Page
}

func (p *rodPage) NavigateIdle(url string) error {
	// Must be armed before Navigate so the first requests are counted. The
	// empty excludeTypes makes images, fonts and media count too; rod skips
	// them when it is nil.
	wait := p.page.WaitRequestIdle(idleTime, nil, nil, []proto.NetworkResourceType{})

	if err := p.page.Navigate(url); err != nil {
		return fmt.Errorf("failed to load %s: %w", url, err)
	}
	if err := p.page.WaitLoad(); err != nil {
		return fmt.Errorf("failed to load %s: %w", url, err)
	}
	wait()

	if err := p.page.GetContext().Err(); err != nil {
		return fmt.Errorf("failed to load %s: %w", url, err)
	}
	return nil
}

func (p *rodPage) HeadingStyles() ([]types.StyleRow, error) {
	res, err := p.page.Eval(headingStylesJS)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate heading styles: %w", err)
	}
	return decodeStyles(res.Value.Str())
}

func (p *rodPage) Close() error {
	if err := p.raw.Close(); err != nil {
		return fmt.Errorf("failed to close tab: %w", err)
	}
	return nil
}

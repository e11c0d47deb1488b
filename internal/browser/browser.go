// Package browser drives a headless browser for the heading style query.
//
// Two engines are available: chromedp (the default) and rod. Both open one
// tab per Page and wait for the network to go idle before the query runs.
package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-scripts/fontscrape/internal/types"
)

// Engine names
const (
	EngineChromedp = "chromedp"
	EngineRod      = "rod"
)

// ErrUnknownEngine is returned for an engine name that is not supported
var ErrUnknownEngine = errors.New("unknown browser engine")

// headingStylesJS collects the computed font size and weight of every h1
// in document order.
const headingStylesJS = `() => JSON.stringify(
	Array.from(document.getElementsByTagName('h1')).map((el) => {
		const s = getComputedStyle(el);
		return { fontSize: s.fontSize, fontWeight: s.fontWeight };
	})
)`

// Browser is a running browser instance
type Browser interface {
	// NewPage opens an isolated tab. The page is released when ctx is done
	// or when Close is called.
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Page is a single browser tab
type Page interface {
	// NavigateIdle loads url and blocks until the network has been idle
	NavigateIdle(url string) error
	// HeadingStyles evaluates the h1 style query in the loaded document
	HeadingStyles() ([]types.StyleRow, error)
	Close() error
}

// Launcher starts a browser
type Launcher func(ctx context.Context) (Browser, error)

// Options controls how the browser process is started
type Options struct {
	Headless  bool
	NoSandbox bool
	ExecPath  string
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		Headless:  true,
		NoSandbox: true,
	}
}

// NewLauncher returns a Launcher for the named engine
func NewLauncher(engine string, opts Options) (Launcher, error) {
	switch engine {
	case EngineChromedp, "":
		return func(ctx context.Context) (Browser, error) {
			return NewChrome(ctx, opts)
		}, nil
	case EngineRod:
		return func(ctx context.Context) (Browser, error) {
			return NewRod(ctx, opts)
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}
}

// Open launches a browser with the named engine
func Open(ctx context.Context, engine string, opts Options) (Browser, error) {
	launch, err := NewLauncher(engine, opts)
	if err != nil {
		return nil, err
	}
	return launch(ctx)
}

func decodeStyles(raw string) ([]types.StyleRow, error) {
	var rows []types.StyleRow
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		return nil, fmt.Errorf("failed to decode heading styles: %w", err)
	}
	return rows, nil
}

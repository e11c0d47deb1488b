package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/go-scripts/fontscrape/internal/browser"
	"github.com/go-scripts/fontscrape/internal/progress"
	"github.com/go-scripts/fontscrape/internal/queue"
	"github.com/go-scripts/fontscrape/internal/writer"
)

// ErrorPolicy decides what happens when a page fails to load or evaluate
type ErrorPolicy string

const (
	// Abort stops the run at the first failing page without writing output
	Abort ErrorPolicy = "abort"
	// Skip logs the failure and moves on to the next URL
	Skip ErrorPolicy = "skip"
)

// ErrUnknownPolicy is returned by New for an unsupported ErrorPolicy
var ErrUnknownPolicy = errors.New("unknown error policy")

// Configuration holds the crawler settings
type Configuration struct {
	URLFile    string
	OutputFile string
	Timeout    time.Duration
	OnError    ErrorPolicy
}

// DefaultConfiguration returns the settings used when no flags are given
func DefaultConfiguration() Configuration {
	return Configuration{
		URLFile:    "list-of-urls.json",
		OutputFile: "talk-test.csv",
		Timeout:    60 * time.Second,
		OnError:    Abort,
	}
}

// Summary describes a finished run
type Summary struct {
	Pages  int
	Rows   int
	Failed int
}

// Crawler visits every URL in order and collects h1 styles
type Crawler struct {
	config   Configuration
	launch   browser.Launcher
	fs       afero.Fs
	logger   *log.Logger
	progress *progress.ProgressTracker
	buffer   *writer.Buffer
}

// Option configures a Crawler
type Option func(*Crawler)

// WithFs sets the filesystem used for the URL list and the output file
func WithFs(fs afero.Fs) Option {
	return func(c *Crawler) {
		c.fs = fs
	}
}

// WithLogger sets the logger
func WithLogger(logger *log.Logger) Option {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// WithProgress enables terminal progress output
func WithProgress(p *progress.ProgressTracker) Option {
	return func(c *Crawler) {
		c.progress = p
	}
}

// New creates a new Crawler instance
func New(config Configuration, launch browser.Launcher, opts ...Option) (*Crawler, error) {
	switch config.OnError {
	case Abort, Skip:
	case "":
		config.OnError = Abort
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, config.OnError)
	}
	if launch == nil {
		return nil, errors.New("browser launcher is required")
	}

	c := &Crawler{
		config: config,
		launch: launch,
		fs:     afero.NewOsFs(),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.buffer = writer.New(c.fs)
	return c, nil
}

// Run loads the URL list, scrapes every page with a single browser and
// writes the collected rows to the output file
func (c *Crawler) Run(ctx context.Context) (summary *Summary, err error) {
	q, err := queue.Load(c.fs, c.config.URLFile)
	if err != nil {
		return nil, err
	}

	c.buffer = writer.New(c.fs)
	summary = &Summary{}

	c.logger.Info("launching browser", "urls", q.Len())
	b, err := c.launch(ctx)
	if err != nil {
		return nil, err
	}
	closed := false
	defer func() {
		if !closed {
			if cerr := b.Close(); cerr != nil {
				err = errors.Join(err, cerr)
			}
		}
	}()

	if c.progress != nil {
		c.progress.SetTotalPages(q.Len())
	}

	for {
		url, ok := q.Next()
		if !ok {
			break
		}
		// An interrupted run never overwrites the previous output
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("crawl interrupted before %s: %w", url, err)
		}

		summary.Pages++
		if err := c.ScrapePage(ctx, b, url); err != nil {
			if cerr := ctx.Err(); cerr != nil {
				return summary, fmt.Errorf("crawl interrupted at %s: %w", url, errors.Join(cerr, err))
			}
			if c.config.OnError == Abort {
				return summary, err
			}
			summary.Failed++
			c.logger.Warn("skipping page", "url", url, "err", err)
		}
	}
	summary.Rows = c.buffer.Len()

	if err := c.buffer.WriteFile(c.config.OutputFile); err != nil {
		return summary, err
	}

	closed = true
	if err := b.Close(); err != nil {
		return summary, err
	}

	c.logger.Info("crawl finished",
		"pages", summary.Pages,
		"rows", summary.Rows,
		"failed", summary.Failed,
		"output", c.config.OutputFile)
	return summary, nil
}

// ScrapePage loads url in its own tab, reads the h1 styles and appends them
// to the result buffer. The tab is always closed before returning.
func (c *Crawler) ScrapePage(ctx context.Context, b browser.Browser, url string) (err error) {
	start := time.Now()
	if c.progress != nil {
		c.progress.StartProcessingPage(url)
		defer c.progress.FinishProcessingPage(url)
	}

	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	page, err := b.NewPage(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", url, err)
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("%s: %w", url, cerr))
		}
	}()

	if err := page.NavigateIdle(url); err != nil {
		return err
	}

	rows, err := page.HeadingStyles()
	if err != nil {
		return fmt.Errorf("%s: %w", url, err)
	}

	c.buffer.Append(rows...)
	c.logger.Debug("scraped page", "url", url, "headings", len(rows), "took", time.Since(start).Round(time.Millisecond))
	return nil
}

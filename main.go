package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/go-scripts/fontscrape/internal/browser"
	"github.com/go-scripts/fontscrape/internal/crawler"
	"github.com/go-scripts/fontscrape/internal/progress"
)

// CLIFlags holds the command line flags. The defaults reproduce the fixed
// input and output paths.
type CLIFlags struct {
	URLs       string        `help:"Path to the JSON list of URLs" default:"list-of-urls.json" short:"u"`
	Output     string        `help:"Path to the CSV output file" default:"talk-test.csv" short:"o"`
	Engine     string        `help:"Browser automation engine" enum:"chromedp,rod" default:"chromedp"`
	Timeout    time.Duration `help:"Maximum time spent on a single page" default:"60s"`
	OnError    string        `help:"What to do when a page fails: abort or skip" enum:"abort,skip" default:"abort" name:"on-error"`
	ChromePath string        `help:"Path to the Chrome/Chromium binary" name:"chrome-path"`
	Headful    bool          `help:"Show the browser window"`
	Quiet      bool          `help:"Disable progress output" short:"q"`
	Debug      bool          `help:"Enable debug logging"`
}

// configuration maps the flags onto the crawler settings
func (f CLIFlags) configuration() crawler.Configuration {
	config := crawler.DefaultConfiguration()
	config.URLFile = f.URLs
	config.OutputFile = f.Output
	config.Timeout = f.Timeout
	config.OnError = crawler.ErrorPolicy(f.OnError)
	return config
}

// browserOptions maps the flags onto the browser launch options
func (f CLIFlags) browserOptions() browser.Options {
	opts := browser.DefaultOptions()
	opts.Headless = !f.Headful
	opts.ExecPath = f.ChromePath
	return opts
}

func newLogger(debug bool) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "fontscrape",
	})
	if debug {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func run(ctx context.Context, flags CLIFlags, logger *log.Logger) error {
	launch, err := browser.NewLauncher(flags.Engine, flags.browserOptions())
	if err != nil {
		return err
	}

	opts := []crawler.Option{crawler.WithLogger(logger)}
	if !flags.Quiet {
		opts = append(opts, crawler.WithProgress(progress.New(os.Stdout)))
	}

	c, err := crawler.New(flags.configuration(), launch, opts...)
	if err != nil {
		return err
	}

	_, err = c.Run(ctx)
	return err
}

func main() {
	var flags CLIFlags
	kong.Parse(&flags,
		kong.Name("fontscrape"),
		kong.Description("Collect the computed font size and weight of every h1 on a list of pages."),
	)

	logger := newLogger(flags.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, flags, logger); err != nil {
		logger.Error("crawl failed", "err", err)
		stop()
		os.Exit(1)
	}
}

package progress

import (
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/bubbles/progress"
)

// maxURLLen is the widest URL shown next to the spinner
const maxURLLen = 40

// ProgressTracker shows a spinner for the page being loaded and an overall
// progress bar after each page
type ProgressTracker struct {
	out             io.Writer
	overallProgress progress.Model
	spinner         *spinner.Spinner
	totalPages      int
	processedPages  int
	mu              sync.Mutex
}

// New creates a new ProgressTracker writing to out
func New(out io.Writer) *ProgressTracker {
	return &ProgressTracker{
		out:             out,
		overallProgress: progress.New(progress.WithDefaultGradient()),
		spinner:         spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(out)),
	}
}

// SetTotalPages sets the total number of pages to process
func (p *ProgressTracker) SetTotalPages(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.totalPages = total
}

// StartProcessingPage indicates that a page is being processed
func (p *ProgressTracker) StartProcessingPage(urlStr string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.spinner.Suffix = " " + formatURL(urlStr)
	p.spinner.Start()
}

// FinishProcessingPage indicates that a page has been processed
func (p *ProgressTracker) FinishProcessingPage(urlStr string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.spinner.Stop()
	p.processedPages++

	if p.totalPages > 0 {
		fmt.Fprintf(p.out, "\rProgress: %s %d/%d pages\n",
			p.overallProgress.ViewAs(p.percent()),
			p.processedPages,
			p.totalPages)
	}
}

// GetProgress returns the current progress as a fraction between 0 and 1
func (p *ProgressTracker) GetProgress() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.percent()
}

func (p *ProgressTracker) percent() float64 {
	if p.totalPages == 0 {
		return 0
	}
	return float64(p.processedPages) / float64(p.totalPages)
}

// formatURL shortens long URLs to host plus the tail of the path. Lengths
// are counted in runes so the result stays valid UTF-8.
func formatURL(urlStr string) string {
	if utf8.RuneCountInString(urlStr) <= maxURLLen {
		return urlStr
	}

	u, err := url.Parse(urlStr)
	if err == nil && u.Host != "" && utf8.RuneCountInString(u.Host) < maxURLLen-3 {
		path := u.Path
		if keep := maxURLLen - utf8.RuneCountInString(u.Host) - 3; utf8.RuneCountInString(path) > keep {
			path = "..." + lastRunes(path, keep)
		}
		return u.Host + path
	}
	return "..." + lastRunes(urlStr, maxURLLen)
}

func lastRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

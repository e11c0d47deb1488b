package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
)

// Queue holds the ordered list of URLs to visit
type Queue struct {
	urls []string
}

// New creates a Queue from the given URLs, keeping their order
func New(urls []string) *Queue {
	q := &Queue{urls: make([]string, len(urls))}
	copy(q.urls, urls)
	return q
}

// ErrNotAList is returned when the URL file holds anything but a single
// JSON array
var ErrNotAList = errors.New("url list must be a JSON array of strings")

// FromJSON reads a JSON array of URL strings
func FromJSON(in io.Reader) (*Queue, error) {
	dec := json.NewDecoder(in)

	var urls []string
	if err := dec.Decode(&urls); err != nil {
		return nil, fmt.Errorf("failed to decode url list: %w", err)
	}
	if urls == nil {
		return nil, ErrNotAList
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after the array", ErrNotAList)
	}
	return New(urls), nil
}

// Load opens the URL list at path and decodes it
func Load(fs afero.Fs, path string) (*Queue, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open url list: %w", err)
	}
	defer f.Close()

	q, err := FromJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return q, nil
}

// Next returns the next URL to process
func (q *Queue) Next() (string, bool) {
	if len(q.urls) == 0 {
		return "", false
	}

	url := q.urls[0]
	q.urls = q.urls[1:]
	return url, true
}

// Len returns the number of URLs left
func (q *Queue) Len() int {
	return len(q.urls)
}

// URLs returns a copy of the URLs left
func (q *Queue) URLs() []string {
	out := make([]string, len(q.urls))
	copy(out, q.urls)
	return out
}

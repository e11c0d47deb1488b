package writer

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/go-scripts/fontscrape/internal/types"
)

// Header is the first line of every output file
const Header = "font size, font weight"

// Buffer accumulates CSV lines in memory until they are written out
type Buffer struct {
	fs    afero.Fs
	lines []string
}

// New creates an empty Buffer that writes through fs
func New(fs afero.Fs) *Buffer {
	return &Buffer{fs: fs}
}

// Append adds one line per row, in the given order
func (b *Buffer) Append(rows ...types.StyleRow) {
	for _, row := range rows {
		b.lines = append(b.lines, row.Line())
	}
}

// Len returns the number of rows, not counting the header
func (b *Buffer) Len() int {
	return len(b.lines)
}

// Bytes renders the header followed by every row
func (b *Buffer) Bytes() []byte {
	var buf bytes.Buffer
	buf.WriteString(Header)
	buf.WriteByte('\n')
	for _, line := range b.lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// WriteFile replaces the file at path with the buffer contents
func (b *Buffer) WriteFile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := b.fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := afero.WriteFile(b.fs, path, b.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

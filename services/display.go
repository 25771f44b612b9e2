package services

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

var ErrDisplayUnavailable = errors.New("display unavailable")

// 128x32 panel at 6x8 pixel glyphs.
const (
	displayCols = 21
	displayRows = 4
)

// TextDisplay renders one status line to a character device, or stdout when
// no device is configured.
type TextDisplay struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	last   string
}

// OpenDisplay opens device for writing. An empty device selects stdout.
func OpenDisplay(device string) (*TextDisplay, error) {
	if device == "" {
		return NewTextDisplay(os.Stdout), nil
	}
	f, err := os.OpenFile(device, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDisplayUnavailable, device, err)
	}
	d := NewTextDisplay(f)
	d.closer = f
	return d, nil
}

func NewTextDisplay(w io.Writer) *TextDisplay {
	return &TextDisplay{w: w}
}

// Show replaces the screen contents with line, truncated to what fits.
func (d *TextDisplay) Show(line string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	line = strings.ReplaceAll(line, "\n", " ")
	if r := []rune(line); len(r) > displayCols*displayRows {
		line = string(r[:displayCols*displayRows])
	}
	d.last = line
	if _, err := fmt.Fprintf(d.w, "\r\033[2K[badge] %s\n", line); err != nil {
		return fmt.Errorf("%w: %v", ErrDisplayUnavailable, err)
	}
	return nil
}

func (d *TextDisplay) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}

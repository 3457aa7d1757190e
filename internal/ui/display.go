package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Spinner frames using braille characters
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Flusher is an optional interface for writers that support flushing.
type Flusher interface {
	Sync() error
}

// Display handles terminal output with a spinner and formatted status lines.
type Display struct {
	out      io.Writer
	mu       sync.Mutex
	spinMu   sync.Mutex // Separate mutex for spinner to avoid deadlock
	spinning bool
	spinStop chan struct{}
	spinDone chan struct{}
	spinMsg  string
	spinFrom time.Time
}

// NewDisplay creates a new display writer.
func NewDisplay(out io.Writer) *Display {
	return &Display{out: out}
}

func (d *Display) flush() {
	if f, ok := d.out.(Flusher); ok {
		f.Sync()
	}
}

// StartSpinner begins the loading spinner with a message.
func (d *Display) StartSpinner(msg string) {
	d.spinMu.Lock()
	if d.spinning {
		d.spinMu.Unlock()
		return
	}
	d.spinning = true
	d.spinMsg = msg
	d.spinFrom = time.Now()
	d.spinStop = make(chan struct{})
	d.spinDone = make(chan struct{})
	d.spinMu.Unlock()

	go func() {
		defer close(d.spinDone)
		frame := 0
		first := true
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-d.spinStop:
				fmt.Fprintf(d.out, "\033[1A\r\033[K")
				d.flush()
				return
			case <-ticker.C:
				elapsed := formatElapsed(time.Since(d.spinFrom))
				if first {
					fmt.Fprintf(d.out, "   %s %s (%s)\n", spinnerFrames[frame], d.spinMsg, elapsed)
					first = false
				} else {
					fmt.Fprintf(d.out, "\033[1A\r\033[K   %s %s (%s)\n", spinnerFrames[frame], d.spinMsg, elapsed)
				}
				d.flush()
				frame = (frame + 1) % len(spinnerFrames)
			}
		}
	}()
}

// StopSpinner stops the loading spinner.
func (d *Display) StopSpinner() {
	d.spinMu.Lock()
	if !d.spinning {
		d.spinMu.Unlock()
		return
	}
	d.spinning = false
	close(d.spinStop)
	d.spinMu.Unlock()
	<-d.spinDone
}

// Infof writes a formatted informational line.
func (d *Display) Infof(format string, args ...any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprint(d.out, StyleInfo.Render(fmt.Sprintf(format, args...)))
	d.flush()
}

// Successf writes a formatted success line.
func (d *Display) Successf(format string, args ...any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprint(d.out, StyleSuccess.Render(fmt.Sprintf(format, args...)))
	d.flush()
}

// Errorf writes a formatted error line.
func (d *Display) Errorf(format string, args ...any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprint(d.out, StyleError.Render(fmt.Sprintf(format, args...)))
	d.flush()
}

// Warnf writes a formatted warning line.
func (d *Display) Warnf(format string, args ...any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprint(d.out, StyleWarning.Render(fmt.Sprintf(format, args...)))
	d.flush()
}

// Header renders a boxed command header with a title and detail line.
func (d *Display) Header(title, detail string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	content := StyleTitle.Render(title)
	if detail != "" {
		content += "\n" + StyleMuted.Render(detail)
	}
	fmt.Fprintln(d.out, HeaderBox().Render(content))
	d.flush()
}

// Summary renders a boxed closing summary; ok selects the border color.
func (d *Display) Summary(ok bool, lines ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	box := SuccessBox()
	if !ok {
		box = ErrorBox()
	}
	fmt.Fprintln(d.out, box.Render(strings.Join(lines, "\n")))
	d.flush()
}

// formatElapsed renders a duration as 3s / 1m12s.
func formatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) - m*60
	return fmt.Sprintf("%dm%ds", m, s)
}

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressReporter follows a batch of replies through analysis.
type ProgressReporter interface {
	Start(total int64)
	Add(n int64)
	Finish()
	Error(err error)
}

const (
	barWidth = 30

	// redrawEvery caps how often Add repaints the line.
	redrawEvery = 100 * time.Millisecond
)

// LineProgress redraws one status line on a terminal stream:
//
//	Analyzing: [=========>          ] 32/96 33% 410 replies/s eta 0s
//
// Safe for concurrent use.
type LineProgress struct {
	w   io.Writer
	now func() time.Time

	mu       sync.Mutex
	total    int64
	done     int64
	started  time.Time
	lastDraw time.Time
}

// NewProgressReporter writes to w, or to stderr when w is nil so the
// results on stdout can still be piped.
func NewProgressReporter(w io.Writer) ProgressReporter {
	if w == nil {
		w = os.Stderr
	}
	return &LineProgress{w: w, now: time.Now}
}

func (p *LineProgress) Start(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total, p.done = total, 0
	p.started = p.now()
	p.draw(true)
}

// Add counts n more analyzed replies. The count never passes the total.
func (p *LineProgress) Add(n int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done = min(p.done+n, p.total)
	p.draw(p.done == p.total)
}

func (p *LineProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.total == 0 {
		return
	}
	p.done = p.total
	p.draw(true)
	fmt.Fprintln(p.w)
}

func (p *LineProgress) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "\n✗ Error: %v\n", err)
}

// draw repaints the line; unless forced it skips repaints closer together
// than redrawEvery. Callers hold mu.
func (p *LineProgress) draw(force bool) {
	if p.total <= 0 {
		return
	}
	now := p.now()
	if !force && now.Sub(p.lastDraw) < redrawEvery {
		return
	}
	p.lastDraw = now

	filled := int(p.done * barWidth / p.total)
	bar := strings.Repeat("=", filled)
	if filled < barWidth {
		bar += ">" + strings.Repeat(" ", barWidth-filled-1)
	}

	line := fmt.Sprintf("\rAnalyzing: [%s] %d/%d %d%%", bar, p.done, p.total, p.done*100/p.total)
	if elapsed := now.Sub(p.started).Seconds(); elapsed > 0 && p.done > 0 {
		rate := float64(p.done) / elapsed
		eta := time.Duration(float64(p.total-p.done) / rate * float64(time.Second))
		line += fmt.Sprintf(" %.0f replies/s eta %s", rate, eta.Round(time.Second))
	}
	fmt.Fprint(p.w, line)
}

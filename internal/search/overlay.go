package search

import (
	"context"
	"sync"
	"time"
)

const FocusDelay = 100 * time.Millisecond

type OverlayState int

const (
	Closed OverlayState = iota
	Open
)

func (s OverlayState) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

// Overlay is the search panel: Closed until opened, then Open until closed by
// the close button, a click outside, Escape or picking a result.
type Overlay struct {
	mu      sync.Mutex
	index   *Index
	state   OverlayState
	input   string
	results Results

	focus func()
	timer *time.Timer
}

// NewOverlay wires the panel to an index. focus, when set, runs once shortly
// after every open.
func NewOverlay(ix *Index, focus func()) *Overlay {
	return &Overlay{index: ix, focus: focus}
}

func (o *Overlay) State() OverlayState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Overlay) Input() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.input
}

func (o *Overlay) Results() Results {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.results
}

// Open clears the input, schedules focus and renders the empty query.
func (o *Overlay) Open(ctx context.Context) Results {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.state = Open
	o.input = ""
	if o.focus != nil {
		o.stopTimerLocked()
		o.timer = time.AfterFunc(FocusDelay, o.focus)
	}
	return o.renderLocked(ctx)
}

// Type replaces the input text and re-renders. Ignored while closed.
func (o *Overlay) Type(ctx context.Context, text string) Results {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != Open {
		return o.results
	}
	o.input = text
	return o.renderLocked(ctx)
}

// Submit re-renders the current input (Enter key or the search button).
func (o *Overlay) Submit(ctx context.Context) Results {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != Open {
		return o.results
	}
	return o.renderLocked(ctx)
}

func (o *Overlay) Close() { o.closeIfOpen() }

func (o *Overlay) Escape() { o.closeIfOpen() }

// ClickOutside closes the panel when the click landed on the backdrop.
func (o *Overlay) ClickOutside() { o.closeIfOpen() }

// Select closes the panel and returns the link to navigate to.
func (o *Overlay) Select(e Entry) string {
	o.closeIfOpen()
	return e.Link
}

func (o *Overlay) closeIfOpen() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != Open {
		return
	}
	o.state = Closed
	o.stopTimerLocked()
}

func (o *Overlay) renderLocked(ctx context.Context) Results {
	o.results = RenderResults(o.input, o.index.Query(ctx, o.input))
	return o.results
}

func (o *Overlay) stopTimerLocked() {
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
}

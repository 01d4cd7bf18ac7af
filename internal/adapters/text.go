package adapters

import (
	"context"
	"time"

	"github.com/studyflow/feed-service/internal/models"
)

// scrollSampleInterval bounds how often routine scroll readings reach the
// store. A reading at the very end bypasses the throttle.
const scrollSampleInterval = 200 * time.Millisecond

// endReachedPct is the reading at which the end-reached callback fires.
// Slightly below 100 to absorb sub-pixel rounding in scroll geometry.
const endReachedPct = 99.5

// EndReached is fired at most once per activation, when the reader has
// genuinely scrolled to the end of the text
type EndReached func(unit models.Unit)

// TextAdapter normalizes scroll position inside the unit's own scroll
// container into progress percentages.
//
// The end-reached callback is edge-triggered: it fires only while the
// reader is actively scrolling downward after genuine interaction, never
// on a layout-triggered event at mount, and only once until the unit is
// activated again.
type TextAdapter struct {
	unit  models.Unit
	sink  ProgressSink
	clock Clock

	lastSample time.Time
	lastTop    float64
	hasLastTop bool
	interacted bool
	endFired   bool
	onEndReach EndReached
}

// NewTextAdapter creates a new text adapter
func NewTextAdapter(unit models.Unit, sink ProgressSink, clock Clock, onEndReach EndReached) *TextAdapter {
	return &TextAdapter{unit: unit, sink: sink, clock: clock, onEndReach: onEndReach}
}

// Activate re-arms the edge-triggered end-reached callback
func (a *TextAdapter) Activate(ctx context.Context) {
	a.endFired = false
	a.interacted = false
	a.hasLastTop = false
}

// Deactivate implements Adapter
func (a *TextAdapter) Deactivate(ctx context.Context) {}

// HandleEvent implements Adapter
func (a *TextAdapter) HandleEvent(ctx context.Context, event models.PlaybackEvent) {
	switch event.Type {
	case models.EventScroll:
		a.OnScroll(ctx, event.ScrollTop, event.ScrollHeight, event.ClientHeight)
	case models.EventActivate:
		a.Activate(ctx)
	case models.EventDeactivate:
		a.Deactivate(ctx)
	}
}

// OnScroll handles one scroll reading from the unit's container
func (a *TextAdapter) OnScroll(ctx context.Context, top, scrollHeight, clientHeight float64) {
	denom := scrollHeight - clientHeight
	var pct float64
	if denom <= 0 {
		pct = 100
	} else {
		pct = top / denom * 100
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
	}

	scrollingDown := false
	if a.hasLastTop {
		if top != a.lastTop {
			// The position actually moved, so this is reader interaction
			// rather than a layout-triggered event at mount.
			a.interacted = true
		}
		scrollingDown = top > a.lastTop
	}
	a.lastTop = top
	a.hasLastTop = true

	now := a.clock.Now()
	atEnd := pct >= endReachedPct
	if !atEnd && !a.lastSample.IsZero() && now.Sub(a.lastSample) < scrollSampleInterval {
		return
	}
	a.lastSample = now

	a.sink.Record(ctx, a.unit, pct)

	if atEnd && scrollingDown && a.interacted && !a.endFired {
		a.endFired = true
		if a.onEndReach != nil {
			a.onEndReach(a.unit)
		}
	}
}

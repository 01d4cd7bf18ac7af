package adapters

import (
	"context"
	"time"

	"github.com/studyflow/feed-service/internal/completion"
	"github.com/studyflow/feed-service/internal/models"
)

// slideDebounce is how long a slide must stay current before it counts as
// the settled slide. Rapid swipes across intermediate slides do not count.
const slideDebounce = 300 * time.Millisecond

// ImageAdapter normalizes image consumption into progress percentages.
//
// For a carousel of N>1 images the percentage is the settled slide's
// position, (index+1)/N. For a single image a synthetic timer ramps 0-100
// over a fixed minimum dwell duration while the unit is active, so a static
// image cannot be instantly marked seen.
type ImageAdapter struct {
	unit  models.Unit
	sink  ProgressSink
	clock Clock

	// carousel state
	pendingIndex int
	pendingAt    time.Time
	hasPending   bool

	// single-image dwell state
	active      bool
	activatedAt time.Time
	dwelled     time.Duration
}

// NewImageAdapter creates a new image adapter
func NewImageAdapter(unit models.Unit, sink ProgressSink, clock Clock) *ImageAdapter {
	return &ImageAdapter{unit: unit, sink: sink, clock: clock}
}

// Activate starts the dwell ramp for a single image and reports the
// initial reading
func (a *ImageAdapter) Activate(ctx context.Context) {
	if a.unit.SlideCount > 1 {
		return
	}
	if !a.active {
		a.active = true
		a.activatedAt = a.clock.Now()
	}
	a.sink.Record(ctx, a.unit, a.dwellPct())
}

// Deactivate pauses the dwell ramp and flushes any settled slide
func (a *ImageAdapter) Deactivate(ctx context.Context) {
	if a.unit.SlideCount > 1 {
		a.flushSettled(ctx)
		return
	}
	if a.active {
		a.dwelled += a.clock.Now().Sub(a.activatedAt)
		a.active = false
	}
	a.sink.Record(ctx, a.unit, a.dwellPct())
}

// HandleEvent implements Adapter
func (a *ImageAdapter) HandleEvent(ctx context.Context, event models.PlaybackEvent) {
	switch event.Type {
	case models.EventSlide:
		a.OnSlideChange(ctx, event.SlideIndex)
	case models.EventActivate:
		a.Activate(ctx)
	case models.EventDeactivate:
		a.Deactivate(ctx)
	case models.EventTimeUpdate:
		// periodic poll while active; drives the single-image ramp
		a.Poll(ctx)
	}
}

// OnSlideChange handles a carousel slide change from swipe, arrow or dot
// navigation. The reading is debounced so only the settled slide counts.
func (a *ImageAdapter) OnSlideChange(ctx context.Context, index int) {
	if a.unit.SlideCount <= 1 {
		return
	}
	a.flushSettled(ctx)
	a.pendingIndex = index
	a.pendingAt = a.clock.Now()
	a.hasPending = true
}

// Poll reports the current reading: the settled slide for a carousel, the
// dwell ramp for a single image
func (a *ImageAdapter) Poll(ctx context.Context) {
	if a.unit.SlideCount > 1 {
		a.flushSettled(ctx)
		return
	}
	if a.active {
		a.sink.Record(ctx, a.unit, a.dwellPct())
	}
}

func (a *ImageAdapter) flushSettled(ctx context.Context) {
	if !a.hasPending {
		return
	}
	if a.clock.Now().Sub(a.pendingAt) < slideDebounce {
		return
	}
	a.hasPending = false
	pct := float64(a.pendingIndex+1) / float64(a.unit.SlideCount) * 100
	a.sink.Record(ctx, a.unit, pct)
}

func (a *ImageAdapter) dwellPct() float64 {
	total := a.dwelled
	if a.active {
		total += a.clock.Now().Sub(a.activatedAt)
	}
	pct := float64(total) / float64(completion.SingleImageDwell) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

package adapters

import (
	"context"
	"time"

	"github.com/studyflow/feed-service/internal/completion"
	"github.com/studyflow/feed-service/internal/models"
)

// videoSampleInterval bounds how often routine time updates reach the
// store. Pause and seek-release readings bypass the throttle so scrubbing
// never loses a final reading.
const videoSampleInterval = 500 * time.Millisecond

// AssignmentPrompt is fired once, the first time a video with an
// assignment crosses the prompt watermark. It is a side notification and
// takes no part in completion.
type AssignmentPrompt func(unit models.Unit)

// VideoAdapter normalizes video playback time into progress percentages
type VideoAdapter struct {
	unit  models.Unit
	sink  ProgressSink
	clock Clock

	lastSample   time.Time
	promptFired  bool
	onAssignment AssignmentPrompt
}

// NewVideoAdapter creates a new video adapter
func NewVideoAdapter(unit models.Unit, sink ProgressSink, clock Clock, onAssignment AssignmentPrompt) *VideoAdapter {
	return &VideoAdapter{
		unit:         unit,
		sink:         sink,
		clock:        clock,
		onAssignment: onAssignment,
	}
}

// Activate implements Adapter
func (a *VideoAdapter) Activate(ctx context.Context) {}

// Deactivate implements Adapter
func (a *VideoAdapter) Deactivate(ctx context.Context) {}

// HandleEvent implements Adapter
func (a *VideoAdapter) HandleEvent(ctx context.Context, event models.PlaybackEvent) {
	switch event.Type {
	case models.EventTimeUpdate:
		a.OnTimeUpdate(ctx, event.CurrentTime, event.Duration)
	case models.EventPause:
		a.OnPause(ctx, event.CurrentTime, event.Duration)
	case models.EventSeekRelease:
		a.OnSeekRelease(ctx, event.CurrentTime, event.Duration)
	case models.EventEnded:
		a.OnEnded(ctx)
	}
}

// OnTimeUpdate handles a routine playback time update, sampled at a
// bounded rate
func (a *VideoAdapter) OnTimeUpdate(ctx context.Context, current, duration float64) {
	now := a.clock.Now()
	if !a.lastSample.IsZero() && now.Sub(a.lastSample) < videoSampleInterval {
		return
	}
	a.lastSample = now
	a.emit(ctx, timeRatioPct(current, duration))
}

// OnPause forwards the reading unconditionally so pausing mid-watch never
// loses progress
func (a *VideoAdapter) OnPause(ctx context.Context, current, duration float64) {
	a.emit(ctx, timeRatioPct(current, duration))
}

// OnSeekRelease forwards the reading at the end of a scrub gesture
func (a *VideoAdapter) OnSeekRelease(ctx context.Context, current, duration float64) {
	a.emit(ctx, timeRatioPct(current, duration))
}

// OnEnded forces the full reading
func (a *VideoAdapter) OnEnded(ctx context.Context) {
	a.emit(ctx, 100)
}

func (a *VideoAdapter) emit(ctx context.Context, pct float64) {
	if pct >= completion.AssignmentPromptPct && !a.promptFired && a.unit.HasAssignment {
		a.promptFired = true
		if a.onAssignment != nil {
			a.onAssignment(a.unit)
		}
	}
	a.sink.Record(ctx, a.unit, pct)
}

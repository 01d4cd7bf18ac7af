package adapters

import (
	"context"
	"time"

	"github.com/studyflow/feed-service/internal/models"
)

// AudioAdapter normalizes audio playback time into progress percentages.
// It follows the same time-ratio model as video; the explicit ended event
// forces 100 because audio players commonly stop reporting a final tick.
type AudioAdapter struct {
	unit  models.Unit
	sink  ProgressSink
	clock Clock

	lastSample time.Time
}

// NewAudioAdapter creates a new audio adapter
func NewAudioAdapter(unit models.Unit, sink ProgressSink, clock Clock) *AudioAdapter {
	return &AudioAdapter{unit: unit, sink: sink, clock: clock}
}

// Activate implements Adapter
func (a *AudioAdapter) Activate(ctx context.Context) {}

// Deactivate implements Adapter
func (a *AudioAdapter) Deactivate(ctx context.Context) {}

// HandleEvent implements Adapter
func (a *AudioAdapter) HandleEvent(ctx context.Context, event models.PlaybackEvent) {
	switch event.Type {
	case models.EventTimeUpdate:
		a.OnTimeUpdate(ctx, event.CurrentTime, event.Duration)
	case models.EventPause, models.EventSeekRelease:
		a.sink.Record(ctx, a.unit, timeRatioPct(event.CurrentTime, event.Duration))
	case models.EventEnded:
		a.OnEnded(ctx)
	}
}

// OnTimeUpdate handles a routine playback time update, sampled at a
// bounded rate
func (a *AudioAdapter) OnTimeUpdate(ctx context.Context, current, duration float64) {
	now := a.clock.Now()
	if !a.lastSample.IsZero() && now.Sub(a.lastSample) < videoSampleInterval {
		return
	}
	a.lastSample = now
	a.sink.Record(ctx, a.unit, timeRatioPct(current, duration))
}

// OnEnded forces the full reading
func (a *AudioAdapter) OnEnded(ctx context.Context) {
	a.sink.Record(ctx, a.unit, 100)
}

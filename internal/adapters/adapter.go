// Package adapters turns content-type-specific raw consumption signals
// (playback time, scroll offset, slide index, answered-question ratio) into
// normalized progress percentages. Every adapter forwards only the maximum
// reading, so rewinds and back-scrolling never lower the stored watermark,
// and rate-limits its emissions so the store is not thrashed on every raw
// tick.
package adapters

import (
	"context"
	"time"

	"github.com/studyflow/feed-service/internal/models"
)

// ProgressSink receives normalized progress percentages for a unit
type ProgressSink interface {
	// Record applies one progress reading for the unit
	Record(ctx context.Context, unit models.Unit, pct float64)
}

// Clock abstracts time for the adapters so throttling, debouncing and the
// single-image dwell ramp are testable without real timers
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now
func SystemClock() Clock { return realClock{} }

// Adapter is the common surface the feed session drives with raw playback
// events
type Adapter interface {
	// Activate marks the unit as the active one in the feed
	Activate(ctx context.Context)
	// Deactivate marks the unit as no longer active
	Deactivate(ctx context.Context)
	// HandleEvent dispatches one raw playback event to the adapter
	HandleEvent(ctx context.Context, event models.PlaybackEvent)
}

// New creates the adapter matching the unit's content type
func New(unit models.Unit, sink ProgressSink, clock Clock) Adapter {
	switch unit.Type {
	case models.ContentTypeVideo:
		return NewVideoAdapter(unit, sink, clock, nil)
	case models.ContentTypeAudio:
		return NewAudioAdapter(unit, sink, clock)
	case models.ContentTypeImage:
		return NewImageAdapter(unit, sink, clock)
	case models.ContentTypeText:
		return NewTextAdapter(unit, sink, clock, nil)
	case models.ContentTypeQuiz:
		return NewQuizAdapter(unit, sink)
	}
	return nil
}

// timeRatioPct converts a playback position into a percentage
func timeRatioPct(current, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	pct := current / duration * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

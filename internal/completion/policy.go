// Package completion holds the completion policy: the single authority for
// deciding when a unit counts as complete. Every other component (progress
// store, gating controller, handlers) must go through IsComplete rather
// than re-deriving the rule.
package completion

import (
	"time"

	"github.com/studyflow/feed-service/internal/models"
)

const (
	// DefaultThreshold is the completion bar for video, audio, text and
	// quiz units. It is below 100 to tolerate players stopping slightly
	// short of the true end.
	DefaultThreshold = 80.0

	// ImageThreshold requires every slide to be viewed
	ImageThreshold = 100.0

	// SingleImageDwell is the minimum dwell time for a single static
	// image, mapped onto a synthetic 0-100 ramp so the image cannot be
	// instantly marked seen
	SingleImageDwell = 10 * time.Second

	// AssignmentPromptPct is the video watermark that triggers the
	// assignment prompt. The prompt is a side notification, not part of
	// completion.
	AssignmentPromptPct = 95.0
)

// RequiredThreshold returns the progress percentage a unit of the given
// content type must reach to count as complete
func RequiredThreshold(t models.ContentType) float64 {
	if t == models.ContentTypeImage {
		return ImageThreshold
	}
	return DefaultThreshold
}

// EffectivePct returns the percentage used for threshold checks. A sticky
// seen flag counts as 100 even when percentage data is unavailable.
func EffectivePct(rec models.ProgressRecord) float64 {
	if rec.Seen {
		return 100
	}
	return rec.ProgressPct
}

// IsComplete reports whether the unit counts as complete for a learner:
// the percentage bar must be met and, when the unit requires a forum
// contribution, that requirement must be satisfied as well.
func IsComplete(rec models.ProgressRecord, unit models.Unit, forumSatisfied bool) bool {
	if EffectivePct(rec) < RequiredThreshold(unit.Type) {
		return false
	}
	if unit.RequiresForum && !forumSatisfied {
		return false
	}
	return true
}

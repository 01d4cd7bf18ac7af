package models

// PlaybackEventType identifies the raw consumption signal carried by a
// playback event
type PlaybackEventType string

const (
	EventTimeUpdate  PlaybackEventType = "timeupdate"
	EventPause       PlaybackEventType = "pause"
	EventSeekRelease PlaybackEventType = "seek"
	EventEnded       PlaybackEventType = "ended"
	EventSlide       PlaybackEventType = "slide"
	EventScroll      PlaybackEventType = "scroll"
	EventAnswered    PlaybackEventType = "answered"
	EventActivate    PlaybackEventType = "activate"
	EventDeactivate  PlaybackEventType = "deactivate"
)

// PlaybackEvent is the raw signal envelope posted by the player for one unit.
// Only the fields relevant to the unit's content type are set.
type PlaybackEvent struct {
	Type PlaybackEventType `json:"type"`

	// video / audio
	CurrentTime float64 `json:"currentTime,omitempty"`
	Duration    float64 `json:"duration,omitempty"`

	// image carousel
	SlideIndex int `json:"slideIndex,omitempty"`

	// text scroll
	ScrollTop    float64 `json:"scrollTop,omitempty"`
	ScrollHeight float64 `json:"scrollHeight,omitempty"`
	ClientHeight float64 `json:"clientHeight,omitempty"`

	// quiz
	AnsweredCount int `json:"answeredCount,omitempty"`
}

// FeedItem represents one unit of the feed with its reconciled progress
type FeedItem struct {
	Unit     Unit           `json:"unit"`
	FeedID   string         `json:"feedId"`
	Progress ProgressRecord `json:"progress"`
	Complete bool           `json:"complete"`
}

// FeedResponse is the session-start payload: the flattened unit sequence
// with reconciled progress and the learner's starting position
type FeedResponse struct {
	Items      []FeedItem `json:"items"`
	StartIndex int        `json:"startIndex"`
}

// EventResponse is returned for each playback event: the merged progress
// record plus any side notifications raised by the adapters (assignment
// prompt, end of text reached)
type EventResponse struct {
	Progress ProgressRecord `json:"progress"`
	Complete bool           `json:"complete"`
	Notices  []string       `json:"notices,omitempty"`
}

// BlockReason explains why a navigation request was refused
type BlockReason string

const (
	BlockReasonNone       BlockReason = ""
	BlockReasonProgress   BlockReason = "progress_incomplete"
	BlockReasonForum      BlockReason = "forum_required"
	BlockReasonOutOfRange BlockReason = "out_of_range"
)

// GateDecision is the outcome of a navigation request
type GateDecision struct {
	Allowed     bool        `json:"allowed"`
	ActiveIndex int         `json:"activeIndex"`
	Reason      BlockReason `json:"reason,omitempty"`
	// BlockedBy is the feed id of the incomplete predecessor, when refused
	BlockedBy string `json:"blockedBy,omitempty"`
	// ProgressPct is the predecessor's current percentage, for the
	// progress-incomplete advisory
	ProgressPct float64 `json:"progressPct,omitempty"`
}

// JumpRequest represents a navigation request. Exactly one input kind is
// used per request: a direct target index (table of contents, next/prev
// controls) or an accumulated wheel delta.
type JumpRequest struct {
	TargetIndex *int     `json:"targetIndex,omitempty"`
	WheelDelta  *float64 `json:"wheelDelta,omitempty"`
}

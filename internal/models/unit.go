package models

import "fmt"

// ContentType represents the type of content a unit carries
type ContentType string

const (
	ContentTypeVideo ContentType = "video"
	ContentTypeAudio ContentType = "audio"
	ContentTypeImage ContentType = "image"
	ContentTypeText  ContentType = "text"
	ContentTypeQuiz  ContentType = "quiz"
)

// Valid reports whether the content type is one of the known types
func (t ContentType) Valid() bool {
	switch t {
	case ContentTypeVideo, ContentTypeAudio, ContentTypeImage, ContentTypeText, ContentTypeQuiz:
		return true
	}
	return false
}

// ForumFormat represents the format required for a forum contribution
type ForumFormat string

const (
	ForumFormatText  ForumFormat = "text"
	ForumFormatAudio ForumFormat = "audio"
	ForumFormatVideo ForumFormat = "video"
)

// Valid reports whether the forum format is one of the known formats
func (f ForumFormat) Valid() bool {
	switch f {
	case ForumFormatText, ForumFormatAudio, ForumFormatVideo:
		return true
	}
	return false
}

// Unit represents one consumable item in the learner feed.
// Units are authored elsewhere and are read-only to this service.
type Unit struct {
	CourseID      int         `json:"courseId"`
	LessonID      int         `json:"lessonId"`
	ContentID     int         `json:"contentId"`
	Type          ContentType `json:"type"`
	Title         string      `json:"title"`
	LessonOrder   int         `json:"lessonOrder"`
	FeedOrder     int         `json:"feedOrder"`
	RequiresForum bool        `json:"requiresForum"`
	ForumFormat   ForumFormat `json:"forumFormat,omitempty"`
	HasAssignment bool        `json:"hasAssignment"`

	// Content metadata used by the playback adapters
	SlideCount    int `json:"slideCount,omitempty"`
	QuestionCount int `json:"questionCount,omitempty"`
	DurationSec   int `json:"durationSec,omitempty"`
}

// FeedID derives the synthetic feed identifier for the unit.
// Course and content ids together are unique across all enrolled courses,
// so the feed id is stable even when the same content appears in several
// lessons of different courses.
func (u Unit) FeedID() string {
	return fmt.Sprintf("%d-%d", u.CourseID, u.ContentID)
}

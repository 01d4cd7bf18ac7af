package models

import "time"

// LikeState represents the like view for one learner on one unit
type LikeState struct {
	Liked bool `json:"liked"`
	Count int  `json:"count"`
}

// Comment represents one comment on a unit. Comments are append-only and
// form a forest via ParentID; a nil ParentID marks a root comment.
type Comment struct {
	ID         string    `json:"id"`
	AuthorID   int       `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
	ParentID   *string   `json:"parentId,omitempty"`

	// Pending marks an optimistic entry that has not been confirmed by a
	// durable write yet
	Pending bool `json:"pending,omitempty"`
}

// CommentNode is a comment with its replies resolved into a tree
type CommentNode struct {
	Comment
	Replies []CommentNode `json:"replies,omitempty"`
}

// CreateCommentRequest represents a request to append a comment
type CreateCommentRequest struct {
	Text     string  `json:"text"`
	ParentID *string `json:"parentId,omitempty"`
}

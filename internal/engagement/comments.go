package engagement

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/studyflow/feed-service/internal/models"
	"go.uber.org/zap"
)

// CommentRepository defines methods for comment data access
type CommentRepository interface {
	// Insert appends one comment and returns its canonical id
	Insert(ctx context.Context, feedID string, comment models.Comment) (string, error)
	// ListByUnit retrieves all comments for the unit
	ListByUnit(ctx context.Context, feedID string) ([]models.Comment, error)
}

// CommentService appends comments optimistically: the entry is visible
// under a locally generated temporary id immediately, then confirmed and
// re-fetched for canonical ids and ordering after the durable write. On
// write failure the optimistic entry is removed again.
type CommentService struct {
	repo   CommentRepository
	logger *zap.Logger
	now    func() time.Time

	mu   sync.Mutex
	view map[string][]models.Comment // per feed id
}

// NewCommentService creates a new comment service
func NewCommentService(repo CommentRepository, logger *zap.Logger) *CommentService {
	return &CommentService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
		view:   make(map[string][]models.Comment),
	}
}

// List returns the unit's comments as a tree, loading them from the
// repository on first access
func (s *CommentService) List(ctx context.Context, feedID string) ([]models.CommentNode, error) {
	s.mu.Lock()
	cached, ok := s.view[feedID]
	s.mu.Unlock()
	if ok {
		return BuildTree(cached), nil
	}

	comments, err := s.repo.ListByUnit(ctx, feedID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}

	s.mu.Lock()
	s.view[feedID] = comments
	s.mu.Unlock()
	return BuildTree(comments), nil
}

// Add appends a comment for the learner and returns the canonical tree
// after the durable write
func (s *CommentService) Add(ctx context.Context, learnerID int, authorName, feedID string, req models.CreateCommentRequest) ([]models.CommentNode, error) {
	optimistic := models.Comment{
		ID:         uuid.New().String(),
		AuthorID:   learnerID,
		AuthorName: authorName,
		Text:       req.Text,
		CreatedAt:  s.now(),
		ParentID:   req.ParentID,
		Pending:    true,
	}

	// Immediately visible.
	s.mu.Lock()
	s.view[feedID] = append(s.view[feedID], optimistic)
	s.mu.Unlock()

	if _, err := s.repo.Insert(ctx, feedID, optimistic); err != nil {
		// Remove the optimistic entry again.
		s.mu.Lock()
		entries := s.view[feedID]
		for i, c := range entries {
			if c.ID == optimistic.ID {
				s.view[feedID] = append(entries[:i], entries[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to insert comment: %w", err)
	}

	// Confirmed: re-fetch for canonical ids and ordering.
	comments, err := s.repo.ListByUnit(ctx, feedID)
	if err != nil {
		// The write committed; the stale view still holds the optimistic
		// entry, which is correct enough until the next successful fetch.
		s.logger.Warn("failed to refresh comments after insert",
			zap.String("feed_id", feedID), zap.Error(err))
		s.mu.Lock()
		cached := s.view[feedID]
		s.mu.Unlock()
		return BuildTree(cached), nil
	}

	s.mu.Lock()
	s.view[feedID] = comments
	s.mu.Unlock()
	return BuildTree(comments), nil
}

// BuildTree resolves the flat comment list into a forest: roots in
// reverse-chronological order, replies in chronological order within each
// thread
func BuildTree(comments []models.Comment) []models.CommentNode {
	children := make(map[string][]models.Comment)
	var roots []models.Comment
	for _, c := range comments {
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c)
	}

	sort.SliceStable(roots, func(i, j int) bool {
		return roots[i].CreatedAt.After(roots[j].CreatedAt)
	})

	var build func(c models.Comment) models.CommentNode
	build = func(c models.Comment) models.CommentNode {
		node := models.CommentNode{Comment: c}
		replies := children[c.ID]
		sort.SliceStable(replies, func(i, j int) bool {
			return replies[i].CreatedAt.Before(replies[j].CreatedAt)
		})
		for _, r := range replies {
			node.Replies = append(node.Replies, build(r))
		}
		return node
	}

	nodes := make([]models.CommentNode, 0, len(roots))
	for _, r := range roots {
		nodes = append(nodes, build(r))
	}
	return nodes
}

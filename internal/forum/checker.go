// Package forum answers the per-unit side condition "has the learner
// posted a contribution in the required format". Satisfaction participates
// in completion alongside the progress percentage.
package forum

import (
	"context"
	"fmt"
	"sync"

	"github.com/studyflow/feed-service/internal/models"
)

// Repository defines methods for forum contribution data access
type Repository interface {
	// HasContribution reports whether the learner has at least one post in
	// the required format for the unit
	HasContribution(ctx context.Context, learnerID int, unit models.Unit, format models.ForumFormat) (bool, error)
	// CreatePost records a contribution post for the unit
	CreatePost(ctx context.Context, learnerID int, unit models.Unit, format models.ForumFormat, body string) error
}

// Checker caches forum satisfaction per (learner, unit). Only a positive
// answer is cached: a post can appear out of band (another tab, another
// session), so "not satisfied" must always be re-checked.
type Checker struct {
	repo Repository

	mu        sync.Mutex
	satisfied map[string]bool // key: learnerID-feedID
}

// NewChecker creates a new forum requirement checker
func NewChecker(repo Repository) *Checker {
	return &Checker{
		repo:      repo,
		satisfied: make(map[string]bool),
	}
}

func key(learnerID int, unit models.Unit) string {
	return fmt.Sprintf("%d-%s", learnerID, unit.FeedID())
}

// Satisfied reports whether the unit's forum requirement is met for the
// learner. Units without a forum requirement are trivially satisfied.
func (c *Checker) Satisfied(ctx context.Context, learnerID int, unit models.Unit) (bool, error) {
	if !unit.RequiresForum {
		return true, nil
	}

	k := key(learnerID, unit)
	c.mu.Lock()
	done := c.satisfied[k]
	c.mu.Unlock()
	if done {
		return true, nil
	}

	has, err := c.repo.HasContribution(ctx, learnerID, unit, unit.ForumFormat)
	if err != nil {
		return false, fmt.Errorf("failed to check forum contribution: %w", err)
	}
	if has {
		c.mu.Lock()
		c.satisfied[k] = true
		c.mu.Unlock()
	}
	return has, nil
}

// Submit records a contribution for the unit and marks the requirement
// satisfied
func (c *Checker) Submit(ctx context.Context, learnerID int, unit models.Unit, format models.ForumFormat, body string) error {
	if err := c.repo.CreatePost(ctx, learnerID, unit, format, body); err != nil {
		return fmt.Errorf("failed to create forum post: %w", err)
	}
	if unit.RequiresForum && format == unit.ForumFormat {
		c.mu.Lock()
		c.satisfied[key(learnerID, unit)] = true
		c.mu.Unlock()
	}
	return nil
}

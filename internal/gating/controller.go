// Package gating decides where a learner may move inside the flattened
// feed: a unit is reachable only when its nearest preceding unit in the
// same course is complete. Units of different courses never gate each
// other; each course's sequence is enforced independently.
package gating

import (
	"context"
	"fmt"

	"github.com/studyflow/feed-service/internal/completion"
	"github.com/studyflow/feed-service/internal/models"
)

// UnitStatus is the per-unit state the controller needs for a gating
// decision
type UnitStatus struct {
	Record         models.ProgressRecord
	ForumSatisfied bool
}

// StatusReader provides the current status of a unit for one learner.
// It is queried fresh on every navigation attempt; no stale cached gating
// decision is trusted.
type StatusReader interface {
	UnitStatus(ctx context.Context, unit models.Unit) (UnitStatus, error)
}

// Controller holds the ordered flattened unit sequence and the active
// index cursor for one learner session
type Controller struct {
	units  []models.Unit
	active int
	status StatusReader
	wheel  *WheelAccumulator
}

// NewController creates a controller over the flattened unit sequence
func NewController(units []models.Unit, status StatusReader, wheel *WheelAccumulator) *Controller {
	return &Controller{
		units:  units,
		status: status,
		wheel:  wheel,
	}
}

// Units returns the flattened unit sequence
func (c *Controller) Units() []models.Unit {
	return c.units
}

// ActiveIndex returns the current cursor position
func (c *Controller) ActiveIndex() int {
	return c.active
}

func (c *Controller) isComplete(ctx context.Context, unit models.Unit) (bool, UnitStatus, error) {
	status, err := c.status.UnitStatus(ctx, unit)
	if err != nil {
		return false, UnitStatus{}, fmt.Errorf("failed to read unit status: %w", err)
	}
	return completion.IsComplete(status.Record, unit, status.ForumSatisfied), status, nil
}

// FirstPendingIndex scans forward from the start and returns the index of
// the first incomplete unit. When every unit is complete it parks at the
// last index rather than looping back.
func (c *Controller) FirstPendingIndex(ctx context.Context) (int, error) {
	if len(c.units) == 0 {
		return 0, nil
	}
	for i, unit := range c.units {
		complete, _, err := c.isComplete(ctx, unit)
		if err != nil {
			return 0, err
		}
		if !complete {
			return i, nil
		}
	}
	return len(c.units) - 1, nil
}

// PositionAtFirstPending moves the cursor to the learner's actual point of
// progress. It is meant to run once, at session start; re-running it
// mid-session would cause surprising jumps.
func (c *Controller) PositionAtFirstPending(ctx context.Context) (int, error) {
	idx, err := c.FirstPendingIndex(ctx)
	if err != nil {
		return 0, err
	}
	c.active = idx
	return idx, nil
}

// CanAdvanceTo checks whether a jump to the target index is allowed. The
// cursor is not touched; use RequestJump to move.
func (c *Controller) CanAdvanceTo(ctx context.Context, target int) (models.GateDecision, error) {
	if target < 0 || target >= len(c.units) {
		return models.GateDecision{
			Allowed:     false,
			ActiveIndex: c.active,
			Reason:      models.BlockReasonOutOfRange,
		}, nil
	}

	targetUnit := c.units[target]

	// Find the nearest preceding unit in the same course as the target.
	for i := target - 1; i >= 0; i-- {
		if c.units[i].CourseID != targetUnit.CourseID {
			continue
		}
		complete, status, err := c.isComplete(ctx, c.units[i])
		if err != nil {
			return models.GateDecision{}, err
		}
		if complete {
			break
		}

		reason := models.BlockReasonProgress
		if completion.EffectivePct(status.Record) >= completion.RequiredThreshold(c.units[i].Type) {
			// The percentage bar is met, so the missing piece is the
			// forum contribution.
			reason = models.BlockReasonForum
		}
		return models.GateDecision{
			Allowed:     false,
			ActiveIndex: c.active,
			Reason:      reason,
			BlockedBy:   c.units[i].FeedID(),
			ProgressPct: status.Record.ProgressPct,
		}, nil
	}

	return models.GateDecision{Allowed: true, ActiveIndex: c.active}, nil
}

// RequestJump performs a gated jump to the target index. A refused jump
// never mutates the cursor; it only carries the user-facing reason.
func (c *Controller) RequestJump(ctx context.Context, target int) (models.GateDecision, error) {
	decision, err := c.CanAdvanceTo(ctx, target)
	if err != nil {
		return models.GateDecision{}, err
	}
	if decision.Allowed {
		c.active = target
		decision.ActiveIndex = target
	}
	return decision, nil
}

// HandleWheel feeds an accumulated wheel/trackpad delta into the gesture
// accumulator and performs at most one gated unit transition
func (c *Controller) HandleWheel(ctx context.Context, delta float64) (models.GateDecision, error) {
	direction := c.wheel.Add(delta)
	if direction == 0 {
		// Not a qualifying gesture yet; nothing moves, nothing is refused.
		return models.GateDecision{Allowed: true, ActiveIndex: c.active}, nil
	}

	target := c.active + direction
	if target < 0 || target >= len(c.units) {
		return models.GateDecision{Allowed: true, ActiveIndex: c.active}, nil
	}
	return c.RequestJump(ctx, target)
}

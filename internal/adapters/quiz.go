package adapters

import (
	"context"

	"github.com/studyflow/feed-service/internal/completion"
	"github.com/studyflow/feed-service/internal/models"
)

// QuizAdapter normalizes the answered-question ratio into progress
// percentages. Until the submission write commits, the reading is capped
// just below the completion threshold: answering every question must not
// satisfy gating while a grading round-trip is still pending. Unlock is
// called by the submission service after the durable write succeeds.
type QuizAdapter struct {
	unit     models.Unit
	sink     ProgressSink
	unlocked bool
}

// NewQuizAdapter creates a new quiz adapter
func NewQuizAdapter(unit models.Unit, sink ProgressSink) *QuizAdapter {
	return &QuizAdapter{unit: unit, sink: sink}
}

// Activate implements Adapter
func (a *QuizAdapter) Activate(ctx context.Context) {}

// Deactivate implements Adapter
func (a *QuizAdapter) Deactivate(ctx context.Context) {}

// HandleEvent implements Adapter
func (a *QuizAdapter) HandleEvent(ctx context.Context, event models.PlaybackEvent) {
	if event.Type == models.EventAnswered {
		a.OnAnswered(ctx, event.AnsweredCount)
	}
}

// OnAnswered handles a change in the number of answered questions
func (a *QuizAdapter) OnAnswered(ctx context.Context, answeredCount int) {
	total := a.unit.QuestionCount
	if total <= 0 {
		return
	}
	if answeredCount < 0 {
		answeredCount = 0
	}
	if answeredCount > total {
		answeredCount = total
	}

	pct := float64(answeredCount) / float64(total) * 100
	if !a.unlocked {
		limit := completion.RequiredThreshold(models.ContentTypeQuiz) - 1
		if pct > limit {
			pct = limit
		}
	}
	a.sink.Record(ctx, a.unit, pct)
}

// Unlock removes the pre-submission cap and forces the full reading. Only
// the submission service calls this, after the submission record commits.
func (a *QuizAdapter) Unlock(ctx context.Context) {
	a.unlocked = true
	a.sink.Record(ctx, a.unit, 100)
}

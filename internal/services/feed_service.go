package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/studyflow/feed-service/internal/adapters"
	"github.com/studyflow/feed-service/internal/completion"
	"github.com/studyflow/feed-service/internal/gating"
	"github.com/studyflow/feed-service/internal/models"
	"go.uber.org/zap"
)

// EnrollmentResolver defines access to the learner's enrolled content
type EnrollmentResolver interface {
	// GetFeed retrieves the ordered, flattened unit sequence across all
	// enrolled, non-archived courses
	GetFeed(ctx context.Context, learnerID int) ([]models.Unit, error)
}

// ProgressStore defines the progress operations the feed session uses
type ProgressStore interface {
	// Record applies one progress reading with watermark semantics
	Record(ctx context.Context, learnerID int, unit models.Unit, pct float64, forumSatisfied bool) models.ProgressRecord
	// Get returns the current in-memory record for the unit
	Get(learnerID int, feedID string) models.ProgressRecord
	// Flush writes every dirty record to the remote ledger
	Flush(ctx context.Context, learnerID int)
	// Reconcile merges the remote ledger, local cache and seen ledger
	Reconcile(ctx context.Context, learnerID int, units []models.Unit) (models.CacheSnapshot, error)
}

// ForumChecker defines the forum requirement lookup
type ForumChecker interface {
	// Satisfied reports whether the unit's forum requirement is met
	Satisfied(ctx context.Context, learnerID int, unit models.Unit) (bool, error)
}

// session holds the per-learner feed state: the gating controller, one
// adapter per unit, and any pending side notices
type session struct {
	learnerID  int
	units      []models.Unit
	indexByID  map[string]int
	controller *gating.Controller
	adapters   map[string]adapters.Adapter

	// adapterMu serializes adapter state transitions; overlapping event
	// posts for one learner reach the same adapter. Adapter callbacks
	// append notices under mu, so the two locks stay separate.
	adapterMu sync.Mutex

	mu      sync.Mutex
	notices []string

	store ProgressStore
	forum ForumChecker
	log   *zap.Logger
}

// Record implements adapters.ProgressSink
func (s *session) Record(ctx context.Context, unit models.Unit, pct float64) {
	satisfied := true
	if unit.RequiresForum {
		var err error
		satisfied, err = s.forum.Satisfied(ctx, s.learnerID, unit)
		if err != nil {
			// An unreachable forum store never corrupts progress; the
			// requirement just stays unmet for this reading.
			s.log.Warn("failed to check forum requirement",
				zap.Int("learner_id", s.learnerID),
				zap.String("feed_id", unit.FeedID()),
				zap.Error(err),
			)
			satisfied = false
		}
	}
	s.store.Record(ctx, s.learnerID, unit, pct, satisfied)
}

// UnitStatus implements gating.StatusReader
func (s *session) UnitStatus(ctx context.Context, unit models.Unit) (gating.UnitStatus, error) {
	record := s.store.Get(s.learnerID, unit.FeedID())

	satisfied := true
	if unit.RequiresForum {
		var err error
		satisfied, err = s.forum.Satisfied(ctx, s.learnerID, unit)
		if err != nil {
			return gating.UnitStatus{}, fmt.Errorf("failed to check forum requirement: %w", err)
		}
	}
	return gating.UnitStatus{Record: record, ForumSatisfied: satisfied}, nil
}

func (s *session) addNotice(notice string) {
	s.mu.Lock()
	s.notices = append(s.notices, notice)
	s.mu.Unlock()
}

func (s *session) drainNotices() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	notices := s.notices
	s.notices = nil
	return notices
}

// FeedService owns the per-learner feed sessions and dispatches playback
// events, navigation requests and flush triggers to them
type FeedService struct {
	enrollment EnrollmentResolver
	store      ProgressStore
	forum      ForumChecker
	clock      adapters.Clock
	logger     *zap.Logger

	mu       sync.Mutex
	sessions map[int]*session
}

// NewFeedService creates a new feed service
func NewFeedService(enrollment EnrollmentResolver, store ProgressStore, forum ForumChecker, clock adapters.Clock, logger *zap.Logger) *FeedService {
	return &FeedService{
		enrollment: enrollment,
		store:      store,
		forum:      forum,
		clock:      clock,
		logger:     logger,
		sessions:   make(map[int]*session),
	}
}

// getSession returns the learner's session, building and reconciling it on
// first access. Reconciliation runs once per session, before any gating
// decision is trusted.
func (f *FeedService) getSession(ctx context.Context, learnerID int) (*session, error) {
	f.mu.Lock()
	if s, ok := f.sessions[learnerID]; ok {
		f.mu.Unlock()
		return s, nil
	}
	f.mu.Unlock()

	units, err := f.enrollment.GetFeed(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve enrollment: %w", err)
	}

	if _, err := f.store.Reconcile(ctx, learnerID, units); err != nil {
		return nil, fmt.Errorf("failed to reconcile progress: %w", err)
	}

	s := &session{
		learnerID: learnerID,
		units:     units,
		indexByID: make(map[string]int, len(units)),
		adapters:  make(map[string]adapters.Adapter, len(units)),
		store:     f.store,
		forum:     f.forum,
		log:       f.logger,
	}
	s.controller = gating.NewController(units, s, gating.NewWheelAccumulator(f.clock))

	for i, unit := range units {
		feedID := unit.FeedID()
		s.indexByID[feedID] = i
		s.adapters[feedID] = f.buildAdapter(unit, s)
	}

	start, err := s.controller.PositionAtFirstPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to position feed: %w", err)
	}
	if len(units) > 0 {
		s.adapters[units[start].FeedID()].Activate(ctx)
	}

	f.mu.Lock()
	// Another request may have built the session concurrently; first one
	// in wins so adapter state is not split across two instances.
	if existing, ok := f.sessions[learnerID]; ok {
		f.mu.Unlock()
		return existing, nil
	}
	f.sessions[learnerID] = s
	f.mu.Unlock()
	return s, nil
}

func (f *FeedService) buildAdapter(unit models.Unit, s *session) adapters.Adapter {
	switch unit.Type {
	case models.ContentTypeVideo:
		return adapters.NewVideoAdapter(unit, s, f.clock, func(u models.Unit) {
			s.addNotice(fmt.Sprintf("assignment available for %s", u.FeedID()))
		})
	case models.ContentTypeText:
		return adapters.NewTextAdapter(unit, s, f.clock, func(u models.Unit) {
			s.addNotice(fmt.Sprintf("end of %s reached", u.FeedID()))
		})
	default:
		return adapters.New(unit, s, f.clock)
	}
}

// Feed returns the learner's flattened feed with reconciled progress and
// the starting position
func (f *FeedService) Feed(ctx context.Context, learnerID int) (*models.FeedResponse, error) {
	s, err := f.getSession(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	items := make([]models.FeedItem, 0, len(s.units))
	for _, unit := range s.units {
		status, err := s.UnitStatus(ctx, unit)
		if err != nil {
			return nil, err
		}
		items = append(items, models.FeedItem{
			Unit:     unit,
			FeedID:   unit.FeedID(),
			Progress: status.Record,
			Complete: completion.IsComplete(status.Record, unit, status.ForumSatisfied),
		})
	}

	return &models.FeedResponse{
		Items:      items,
		StartIndex: s.controller.ActiveIndex(),
	}, nil
}

// HandleEvent dispatches one raw playback event to the unit's adapter and
// returns the merged progress
func (f *FeedService) HandleEvent(ctx context.Context, learnerID int, feedID string, event models.PlaybackEvent) (*models.EventResponse, error) {
	s, err := f.getSession(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	idx, ok := s.indexByID[feedID]
	if !ok {
		return nil, fmt.Errorf("unit %s: %w", feedID, models.ErrNotFound)
	}
	unit := s.units[idx]

	s.adapterMu.Lock()
	s.adapters[feedID].HandleEvent(ctx, event)
	s.adapterMu.Unlock()

	status, err := s.UnitStatus(ctx, unit)
	if err != nil {
		return nil, err
	}
	return &models.EventResponse{
		Progress: status.Record,
		Complete: completion.IsComplete(status.Record, unit, status.ForumSatisfied),
		Notices:  s.drainNotices(),
	}, nil
}

// Jump performs a gated navigation request
func (f *FeedService) Jump(ctx context.Context, learnerID int, req models.JumpRequest) (*models.GateDecision, error) {
	s, err := f.getSession(ctx, learnerID)
	if err != nil {
		return nil, err
	}

	before := s.controller.ActiveIndex()

	var decision models.GateDecision
	switch {
	case req.TargetIndex != nil:
		decision, err = s.controller.RequestJump(ctx, *req.TargetIndex)
	case req.WheelDelta != nil:
		decision, err = s.controller.HandleWheel(ctx, *req.WheelDelta)
	default:
		return nil, fmt.Errorf("jump request carries neither a target index nor a wheel delta")
	}
	if err != nil {
		return nil, err
	}

	if decision.Allowed && decision.ActiveIndex != before {
		s.adapterMu.Lock()
		s.adapters[s.units[before].FeedID()].Deactivate(ctx)
		s.adapters[s.units[decision.ActiveIndex].FeedID()].Activate(ctx)
		s.adapterMu.Unlock()
	}
	return &decision, nil
}

// Flush pushes the learner's dirty progress to the remote ledger. This is
// the page-hidden / teardown / pre-unload trigger.
func (f *FeedService) Flush(ctx context.Context, learnerID int) {
	f.mu.Lock()
	_, ok := f.sessions[learnerID]
	f.mu.Unlock()
	if !ok {
		return
	}
	f.store.Flush(ctx, learnerID)
}

// UnlockQuiz implements QuizUnlocker: after a committed submission the
// quiz adapter's cap is removed and progress reaches 100
func (f *FeedService) UnlockQuiz(ctx context.Context, learnerID int, unit models.Unit) {
	f.mu.Lock()
	s, ok := f.sessions[learnerID]
	f.mu.Unlock()
	if !ok {
		// No live session (e.g. submission from a stale tab); record the
		// full reading directly. The forum requirement still applies.
		satisfied := true
		if unit.RequiresForum {
			var err error
			satisfied, err = f.forum.Satisfied(ctx, learnerID, unit)
			if err != nil {
				f.logger.Warn("failed to check forum requirement",
					zap.Int("learner_id", learnerID),
					zap.String("feed_id", unit.FeedID()),
					zap.Error(err),
				)
				satisfied = false
			}
		}
		f.store.Record(ctx, learnerID, unit, 100, satisfied)
		return
	}

	s.adapterMu.Lock()
	defer s.adapterMu.Unlock()

	if quiz, ok := s.adapters[unit.FeedID()].(*adapters.QuizAdapter); ok {
		quiz.Unlock(ctx)
		return
	}
	s.Record(ctx, unit, 100)
}

// Unit resolves a feed id to the unit inside the learner's session
func (f *FeedService) Unit(ctx context.Context, learnerID int, feedID string) (models.Unit, error) {
	s, err := f.getSession(ctx, learnerID)
	if err != nil {
		return models.Unit{}, err
	}
	idx, ok := s.indexByID[feedID]
	if !ok {
		return models.Unit{}, fmt.Errorf("unit %s: %w", feedID, models.ErrNotFound)
	}
	return s.units[idx], nil
}

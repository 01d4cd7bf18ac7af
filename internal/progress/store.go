// Package progress implements the two-tier progress store: an in-memory
// watermark cache read synchronously on every request, a synchronous Redis
// cache document per learner, and a throttled flush to the authoritative
// MySQL ledger.
package progress

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/studyflow/feed-service/internal/completion"
	"github.com/studyflow/feed-service/internal/models"
	"go.uber.org/zap"
)

// flushStep is the coarse watermark step (in integer percentage points)
// that triggers a remote flush. Writes are throttled to step crossings so
// a 1%-per-second video does not produce one ledger write per second.
const flushStep = 2.0

// RemoteLedger defines methods for the authoritative per-enrollment
// progress store
type RemoteLedger interface {
	// GetByLearner retrieves all progress records for a learner, keyed by
	// feed id
	GetByLearner(ctx context.Context, learnerID int) (map[string]models.ProgressRecord, error)
	// Upsert writes one record with merge-on-write semantics: the stored
	// percentage never decreases and set flags are never cleared
	Upsert(ctx context.Context, learnerID int, feedID string, record models.ProgressRecord) error
}

// LocalCache defines methods for the synchronous cache tier
type LocalCache interface {
	// Read loads the learner's cache document; a missing document is an
	// empty snapshot, not an error
	Read(ctx context.Context, learnerID int) (models.CacheSnapshot, error)
	// Write stores the learner's cache document
	Write(ctx context.Context, learnerID int, snapshot models.CacheSnapshot) error
}

// SeenLedger defines methods for the cross-enrollment seen ledger
type SeenLedger interface {
	// GetByLearner retrieves the learner's seen entries, keyed by feed id
	GetByLearner(ctx context.Context, learnerID int) (map[string]models.SeenEntry, error)
}

// SeenEnqueuer defines the asynchronous side effect run on the first
// false-to-true completion transition of a unit
type SeenEnqueuer interface {
	// EnqueueSeenUpsert schedules an upsert of the learner's seen ledger
	// entry for the unit
	EnqueueSeenUpsert(ctx context.Context, learnerID int, feedID string, entry models.SeenEntry) error
}

type learnerState struct {
	records     map[string]models.ProgressRecord
	lastFlushed map[string]float64
}

// Store merges and persists per-unit progress across the cache tiers
type Store struct {
	mu       sync.Mutex
	learners map[int]*learnerState

	remote RemoteLedger
	local  LocalCache
	seen   SeenLedger
	tasks  SeenEnqueuer
	logger *zap.Logger

	now func() time.Time
}

// NewStore creates a new progress store
func NewStore(remote RemoteLedger, local LocalCache, seen SeenLedger, tasks SeenEnqueuer, logger *zap.Logger) *Store {
	return &Store{
		learners: make(map[int]*learnerState),
		remote:   remote,
		local:    local,
		seen:     seen,
		tasks:    tasks,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Store) state(learnerID int) *learnerState {
	st, ok := s.learners[learnerID]
	if !ok {
		st = &learnerState{
			records:     make(map[string]models.ProgressRecord),
			lastFlushed: make(map[string]float64),
		}
		s.learners[learnerID] = st
	}
	return st
}

// Get returns the in-memory record for the unit. Records are created
// lazily, so a unit without progress yields a zero record.
func (s *Store) Get(learnerID int, feedID string) models.ProgressRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state(learnerID).records[feedID]
}

// Snapshot returns a copy of all in-memory records for the learner
func (s *Store) Snapshot(learnerID int) models.CacheSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(learnerID)
	snap := make(models.CacheSnapshot, len(st.records))
	for id, rec := range st.records {
		snap[id] = rec
	}
	return snap
}

// Record applies one progress reading for a unit. The merge is a watermark:
// the stored percentage only ever increases, so duplicate or out-of-order
// readings cannot lower it. The in-memory state and the local cache are
// updated synchronously; the remote ledger is written only when the
// watermark crosses a coarse step or the completion threshold.
//
// Returns the merged record.
func (s *Store) Record(ctx context.Context, learnerID int, unit models.Unit, pct float64, forumSatisfied bool) models.ProgressRecord {
	feedID := unit.FeedID()

	s.mu.Lock()
	st := s.state(learnerID)
	rec := st.records[feedID]

	merged := math.Max(rec.ProgressPct, math.Min(math.Max(pct, 0), 100))
	changed := merged != rec.ProgressPct
	rec.ProgressPct = merged

	wasComplete := rec.Completed
	if !wasComplete && completion.IsComplete(rec, unit, forumSatisfied) {
		now := s.now()
		rec.Completed = true
		rec.CompletedAt = &now
		rec.Normalize()
		changed = true
	}

	if !changed {
		s.mu.Unlock()
		return rec
	}

	st.records[feedID] = rec

	threshold := completion.RequiredThreshold(unit.Type)
	lastFlushed := st.lastFlushed[feedID]
	needsFlush := math.Floor(rec.ProgressPct/flushStep) > math.Floor(lastFlushed/flushStep) ||
		(rec.ProgressPct >= threshold && lastFlushed < threshold)
	if needsFlush {
		st.lastFlushed[feedID] = rec.ProgressPct
	}
	snapshot := s.snapshotLocked(st)
	s.mu.Unlock()

	// Local tier is written synchronously and unconditionally on every
	// merge; it must survive a tab switch that never reaches the remote.
	if err := s.local.Write(ctx, learnerID, snapshot); err != nil {
		s.logger.Warn("failed to write local progress cache",
			zap.Int("learner_id", learnerID),
			zap.String("feed_id", feedID),
			zap.Error(err),
		)
	}

	if needsFlush {
		if err := s.remote.Upsert(ctx, learnerID, feedID, rec); err != nil {
			// Transient remote failures are recovered locally: the cache
			// stays authoritative until the next successful sync.
			s.logger.Warn("failed to flush progress to remote ledger",
				zap.Int("learner_id", learnerID),
				zap.String("feed_id", feedID),
				zap.Error(err),
			)
			s.mu.Lock()
			st.lastFlushed[feedID] = lastFlushed
			s.mu.Unlock()
		}
	}

	if rec.Completed && !wasComplete {
		entry := models.SeenEntry{Seen: true, ProgressPct: rec.ProgressPct}
		if err := s.tasks.EnqueueSeenUpsert(ctx, learnerID, feedID, entry); err != nil {
			s.logger.Warn("failed to enqueue seen ledger upsert",
				zap.Int("learner_id", learnerID),
				zap.String("feed_id", feedID),
				zap.Error(err),
			)
		}
	}

	return rec
}

func (s *Store) snapshotLocked(st *learnerState) models.CacheSnapshot {
	snap := make(models.CacheSnapshot, len(st.records))
	for id, rec := range st.records {
		snap[id] = rec
	}
	return snap
}

// Flush writes every record that is ahead of the remote ledger. This is
// the page-hidden / teardown / pre-unload trigger and is best-effort: a
// failed write leaves the local cache as the interim source of truth.
func (s *Store) Flush(ctx context.Context, learnerID int) {
	s.mu.Lock()
	st := s.state(learnerID)
	pending := make(map[string]models.ProgressRecord)
	for feedID, rec := range st.records {
		if rec.ProgressPct > st.lastFlushed[feedID] || (rec.Completed && st.lastFlushed[feedID] < 100) {
			pending[feedID] = rec
		}
	}
	s.mu.Unlock()

	for feedID, rec := range pending {
		if err := s.remote.Upsert(ctx, learnerID, feedID, rec); err != nil {
			s.logger.Warn("failed to flush progress to remote ledger",
				zap.Int("learner_id", learnerID),
				zap.String("feed_id", feedID),
				zap.Error(err),
			)
			continue
		}
		s.mu.Lock()
		st.lastFlushed[feedID] = rec.ProgressPct
		s.mu.Unlock()
	}
}

// Reconcile merges the remote ledger, the local cache and the
// cross-enrollment seen ledger into one consistent view. It runs once per
// learner session, before gating decisions are trusted, and is
// deterministic: each field takes the maximum / most permissive value, so
// running it twice with no writes in between yields the same state.
func (s *Store) Reconcile(ctx context.Context, learnerID int, units []models.Unit) (models.CacheSnapshot, error) {
	remote, err := s.remote.GetByLearner(ctx, learnerID)
	if err != nil {
		s.logger.Warn("failed to load remote progress ledger, reconciling without it",
			zap.Int("learner_id", learnerID), zap.Error(err))
		remote = map[string]models.ProgressRecord{}
	}

	local, err := s.local.Read(ctx, learnerID)
	if err != nil {
		s.logger.Warn("failed to read local progress cache, reconciling without it",
			zap.Int("learner_id", learnerID), zap.Error(err))
		local = models.CacheSnapshot{}
	}

	seen, err := s.seen.GetByLearner(ctx, learnerID)
	if err != nil {
		s.logger.Warn("failed to load seen ledger, reconciling without it",
			zap.Int("learner_id", learnerID), zap.Error(err))
		seen = map[string]models.SeenEntry{}
	}

	s.mu.Lock()
	st := s.state(learnerID)
	for _, unit := range units {
		feedID := unit.FeedID()
		remoteRec := remote[feedID]
		localRec := local[feedID]
		seenEntry := seen[feedID]

		pct := math.Max(remoteRec.ProgressPct, localRec.ProgressPct)
		if seenEntry.Seen {
			pct = math.Max(pct, 100)
		}

		completed := remoteRec.Completed || localRec.Completed || seenEntry.Seen ||
			pct >= completion.RequiredThreshold(unit.Type)

		rec := models.ProgressRecord{
			ProgressPct: pct,
			Completed:   completed,
			Seen:        completed,
			CompletedAt: firstCompletedAt(remoteRec, localRec),
		}
		rec.Normalize()

		st.records[feedID] = rec
		st.lastFlushed[feedID] = remoteRec.ProgressPct
	}
	snapshot := s.snapshotLocked(st)
	s.mu.Unlock()

	// Write back immediately so subsequent reads are consistent even
	// before the next remote round-trip completes.
	if err := s.local.Write(ctx, learnerID, snapshot); err != nil {
		s.logger.Warn("failed to write reconciled local cache",
			zap.Int("learner_id", learnerID), zap.Error(err))
	}

	return snapshot, nil
}

func firstCompletedAt(records ...models.ProgressRecord) *time.Time {
	var earliest *time.Time
	for _, rec := range records {
		if rec.CompletedAt == nil {
			continue
		}
		if earliest == nil || rec.CompletedAt.Before(*earliest) {
			earliest = rec.CompletedAt
		}
	}
	return earliest
}

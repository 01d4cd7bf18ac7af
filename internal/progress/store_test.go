package progress

import (
	"context"
	"errors"
	"testing"

	"github.com/studyflow/feed-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockRemoteLedger is a mock implementation of RemoteLedger
type mockRemoteLedger struct {
	records map[string]models.ProgressRecord
	upserts []string
	getErr  error
	setErr  error
}

func (m *mockRemoteLedger) GetByLearner(ctx context.Context, learnerID int) (map[string]models.ProgressRecord, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.records, nil
}

func (m *mockRemoteLedger) Upsert(ctx context.Context, learnerID int, feedID string, record models.ProgressRecord) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.records == nil {
		m.records = make(map[string]models.ProgressRecord)
	}
	m.records[feedID] = record
	m.upserts = append(m.upserts, feedID)
	return nil
}

// mockLocalCache is a mock implementation of LocalCache
type mockLocalCache struct {
	snapshot models.CacheSnapshot
	writes   int
	readErr  error
	writeErr error
}

func (m *mockLocalCache) Read(ctx context.Context, learnerID int) (models.CacheSnapshot, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	if m.snapshot == nil {
		return models.CacheSnapshot{}, nil
	}
	return m.snapshot, nil
}

func (m *mockLocalCache) Write(ctx context.Context, learnerID int, snapshot models.CacheSnapshot) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.snapshot = snapshot
	m.writes++
	return nil
}

// mockSeenLedger is a mock implementation of SeenLedger
type mockSeenLedger struct {
	entries map[string]models.SeenEntry
	err     error
}

func (m *mockSeenLedger) GetByLearner(ctx context.Context, learnerID int) (map[string]models.SeenEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.entries == nil {
		return map[string]models.SeenEntry{}, nil
	}
	return m.entries, nil
}

// mockSeenEnqueuer is a mock implementation of SeenEnqueuer
type mockSeenEnqueuer struct {
	enqueued []string
	err      error
}

func (m *mockSeenEnqueuer) EnqueueSeenUpsert(ctx context.Context, learnerID int, feedID string, entry models.SeenEntry) error {
	if m.err != nil {
		return m.err
	}
	m.enqueued = append(m.enqueued, feedID)
	return nil
}

func setupTestStore(t *testing.T) (*Store, *mockRemoteLedger, *mockLocalCache, *mockSeenLedger, *mockSeenEnqueuer) {
	t.Helper()
	remote := &mockRemoteLedger{}
	local := &mockLocalCache{}
	seen := &mockSeenLedger{}
	tasks := &mockSeenEnqueuer{}
	store := NewStore(remote, local, seen, tasks, zap.NewNop())
	return store, remote, local, seen, tasks
}

func videoUnit() models.Unit {
	return models.Unit{CourseID: 1, LessonID: 1, ContentID: 10, Type: models.ContentTypeVideo}
}

func TestStore_Record_WatermarkMonotonicity(t *testing.T) {
	store, _, _, _, _ := setupTestStore(t)
	unit := videoUnit()
	ctx := context.Background()

	// Readings arrive out of order and with duplicates; only the maximum
	// ever submitted must be retained.
	readings := []float64{10, 40, 25, 40, 5, 33.5, 12}
	for _, pct := range readings {
		store.Record(ctx, 1, unit, pct, false)
	}

	rec := store.Get(1, unit.FeedID())
	assert.Equal(t, 40.0, rec.ProgressPct)
	assert.False(t, rec.Completed)
}

func TestStore_Record_ClampsOutOfRangeReadings(t *testing.T) {
	store, _, _, _, _ := setupTestStore(t)
	unit := videoUnit()
	ctx := context.Background()

	store.Record(ctx, 1, unit, -5, false)
	assert.Equal(t, 0.0, store.Get(1, unit.FeedID()).ProgressPct)

	rec := store.Record(ctx, 1, unit, 150, false)
	assert.Equal(t, 100.0, rec.ProgressPct)
}

func TestStore_Record_LocalCacheWrittenOnEveryMerge(t *testing.T) {
	store, _, local, _, _ := setupTestStore(t)
	unit := videoUnit()
	ctx := context.Background()

	store.Record(ctx, 1, unit, 10, false)
	store.Record(ctx, 1, unit, 20, false)
	store.Record(ctx, 1, unit, 15, false) // no merge change, no write

	assert.Equal(t, 2, local.writes)
	assert.Equal(t, 20.0, local.snapshot[unit.FeedID()].ProgressPct)
}

func TestStore_Record_RemoteFlushThrottledToSteps(t *testing.T) {
	store, remote, _, _, _ := setupTestStore(t)
	unit := videoUnit()
	ctx := context.Background()

	store.Record(ctx, 1, unit, 0.5, false)
	assert.Empty(t, remote.upserts, "sub-step watermark must not flush")

	store.Record(ctx, 1, unit, 1.9, false)
	assert.Empty(t, remote.upserts)

	store.Record(ctx, 1, unit, 2.1, false)
	assert.Len(t, remote.upserts, 1, "crossing a 2-point step must flush")

	store.Record(ctx, 1, unit, 3.9, false)
	assert.Len(t, remote.upserts, 1, "same step, no second flush")

	store.Record(ctx, 1, unit, 4.0, false)
	assert.Len(t, remote.upserts, 2)
}

func TestStore_Record_CompletionTransition(t *testing.T) {
	store, remote, _, _, tasks := setupTestStore(t)
	unit := videoUnit()
	ctx := context.Background()

	rec := store.Record(ctx, 1, unit, 81, false)

	assert.True(t, rec.Completed)
	assert.True(t, rec.Seen)
	assert.Equal(t, 100.0, rec.ProgressPct, "completed record is clamped to 100")
	require.NotNil(t, rec.CompletedAt)

	// The seen ledger upsert is enqueued exactly once, on the first
	// false-to-true transition.
	assert.Equal(t, []string{unit.FeedID()}, tasks.enqueued)
	assert.NotEmpty(t, remote.upserts, "crossing the threshold forces a flush")

	completedAt := rec.CompletedAt
	rec = store.Record(ctx, 1, unit, 90, false)
	assert.Equal(t, completedAt, rec.CompletedAt, "completedAt is set once")
	assert.Len(t, tasks.enqueued, 1)
}

func TestStore_Record_ForumRequirementBlocksCompletion(t *testing.T) {
	store, _, _, _, tasks := setupTestStore(t)
	unit := videoUnit()
	unit.RequiresForum = true
	unit.ForumFormat = models.ForumFormatText
	ctx := context.Background()

	rec := store.Record(ctx, 1, unit, 95, false)
	assert.False(t, rec.Completed)
	assert.Empty(t, tasks.enqueued)

	// Same percentage, forum requirement now satisfied.
	rec = store.Record(ctx, 1, unit, 95, true)
	assert.True(t, rec.Completed)
	assert.Len(t, tasks.enqueued, 1)
}

func TestStore_Record_RemoteFailureKeepsLocalAuthoritative(t *testing.T) {
	store, remote, local, _, _ := setupTestStore(t)
	remote.setErr = errors.New("ledger unavailable")
	unit := videoUnit()
	ctx := context.Background()

	rec := store.Record(ctx, 1, unit, 50, false)

	assert.Equal(t, 50.0, rec.ProgressPct)
	assert.Equal(t, 50.0, local.snapshot[unit.FeedID()].ProgressPct)

	// Once the remote recovers, Flush pushes the backlog.
	remote.setErr = nil
	store.Flush(ctx, 1)
	assert.Equal(t, 50.0, remote.records[unit.FeedID()].ProgressPct)
}

func TestStore_Flush_OnlyWritesDirtyRecords(t *testing.T) {
	store, remote, _, _, _ := setupTestStore(t)
	unit := videoUnit()
	other := models.Unit{CourseID: 1, LessonID: 1, ContentID: 11, Type: models.ContentTypeText}
	ctx := context.Background()

	store.Record(ctx, 1, unit, 2.5, false) // flushed via step crossing
	store.Record(ctx, 1, other, 1.0, false)
	remote.upserts = nil

	store.Flush(ctx, 1)

	assert.Equal(t, []string{other.FeedID()}, remote.upserts)
}

func TestStore_Reconcile(t *testing.T) {
	units := []models.Unit{
		{CourseID: 1, LessonID: 1, ContentID: 10, Type: models.ContentTypeVideo},
		{CourseID: 1, LessonID: 1, ContentID: 11, Type: models.ContentTypeText},
		{CourseID: 1, LessonID: 2, ContentID: 12, Type: models.ContentTypeImage},
	}

	tests := []struct {
		name     string
		remote   map[string]models.ProgressRecord
		local    models.CacheSnapshot
		seen     map[string]models.SeenEntry
		feedID   string
		wantPct  float64
		wantDone bool
	}{
		{
			name:    "maximum of remote and local wins",
			remote:  map[string]models.ProgressRecord{"1-10": {ProgressPct: 30}},
			local:   models.CacheSnapshot{"1-10": {ProgressPct: 55}},
			feedID:  "1-10",
			wantPct: 55,
		},
		{
			name:     "seen ledger forces 100 and completion",
			remote:   map[string]models.ProgressRecord{"1-10": {ProgressPct: 30}},
			seen:     map[string]models.SeenEntry{"1-10": {Seen: true, ProgressPct: 100}},
			feedID:   "1-10",
			wantPct:  100,
			wantDone: true,
		},
		{
			name:     "threshold crossing completes during reconciliation",
			local:    models.CacheSnapshot{"1-11": {ProgressPct: 85}},
			feedID:   "1-11",
			wantPct:  100, // completed record is clamped
			wantDone: true,
		},
		{
			name:     "image below 100 stays incomplete",
			remote:   map[string]models.ProgressRecord{"1-12": {ProgressPct: 90}},
			feedID:   "1-12",
			wantPct:  90,
			wantDone: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, remote, local, seen, _ := setupTestStore(t)
			remote.records = tt.remote
			local.snapshot = tt.local
			seen.entries = tt.seen

			snap, err := store.Reconcile(context.Background(), 1, units)
			require.NoError(t, err)

			rec := snap[tt.feedID]
			assert.Equal(t, tt.wantPct, rec.ProgressPct)
			assert.Equal(t, tt.wantDone, rec.Completed)
			assert.Equal(t, tt.wantDone, rec.Seen)

			// Reconciled state is written back to the local cache.
			assert.Equal(t, rec, local.snapshot[tt.feedID])
		})
	}
}

func TestStore_Reconcile_Idempotent(t *testing.T) {
	units := []models.Unit{
		{CourseID: 1, LessonID: 1, ContentID: 10, Type: models.ContentTypeVideo},
		{CourseID: 2, LessonID: 4, ContentID: 20, Type: models.ContentTypeQuiz},
	}
	store, remote, local, seen, _ := setupTestStore(t)
	remote.records = map[string]models.ProgressRecord{"1-10": {ProgressPct: 42}}
	local.snapshot = models.CacheSnapshot{"2-20": {ProgressPct: 90, Completed: true}}
	seen.entries = map[string]models.SeenEntry{}

	ctx := context.Background()
	first, err := store.Reconcile(ctx, 1, units)
	require.NoError(t, err)

	second, err := store.Reconcile(ctx, 1, units)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestStore_Reconcile_SeenLedgerSurvivesWipedTiers(t *testing.T) {
	// Property: wiped local cache + empty per-enrollment remote record, but
	// a populated seen ledger, still reports the unit complete.
	units := []models.Unit{{CourseID: 1, LessonID: 1, ContentID: 10, Type: models.ContentTypeVideo}}
	store, remote, local, seen, _ := setupTestStore(t)
	remote.records = map[string]models.ProgressRecord{}
	local.snapshot = models.CacheSnapshot{}
	seen.entries = map[string]models.SeenEntry{"1-10": {Seen: true, ProgressPct: 100}}

	snap, err := store.Reconcile(context.Background(), 1, units)
	require.NoError(t, err)

	rec := snap["1-10"]
	assert.True(t, rec.Completed)
	assert.True(t, rec.Seen)
	assert.Equal(t, 100.0, rec.ProgressPct)
}

func TestStore_Reconcile_ToleratesRemoteFailure(t *testing.T) {
	units := []models.Unit{{CourseID: 1, LessonID: 1, ContentID: 10, Type: models.ContentTypeVideo}}
	store, remote, local, seen, _ := setupTestStore(t)
	remote.getErr = errors.New("ledger unavailable")
	seen.err = errors.New("ledger unavailable")
	local.snapshot = models.CacheSnapshot{"1-10": {ProgressPct: 33}}

	snap, err := store.Reconcile(context.Background(), 1, units)
	require.NoError(t, err)
	assert.Equal(t, 33.0, snap["1-10"].ProgressPct)
}

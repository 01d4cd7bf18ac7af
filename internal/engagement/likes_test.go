package engagement

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/studyflow/feed-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockLikeRepository is a mock implementation of LikeRepository backed by
// real per-learner markers, so toggles behave like the SQL transaction
type mockLikeRepository struct {
	mu      sync.Mutex
	markers map[int]bool
	count   int
	err     error
}

func newMockLikeRepository() *mockLikeRepository {
	return &mockLikeRepository{markers: make(map[int]bool)}
}

func (m *mockLikeRepository) Toggle(ctx context.Context, learnerID int, feedID string) (models.LikeState, error) {
	if m.err != nil {
		return models.LikeState{}, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markers[learnerID] {
		delete(m.markers, learnerID)
		m.count--
	} else {
		m.markers[learnerID] = true
		m.count++
	}
	return models.LikeState{Liked: m.markers[learnerID], Count: m.count}, nil
}

func (m *mockLikeRepository) State(ctx context.Context, learnerID int, feedID string) (models.LikeState, error) {
	if m.err != nil {
		return models.LikeState{}, m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return models.LikeState{Liked: m.markers[learnerID], Count: m.count}, nil
}

func TestLikeService_ToggleIdempotentPerLearner(t *testing.T) {
	repo := newMockLikeRepository()
	svc := NewLikeService(repo, zap.NewNop())
	ctx := context.Background()

	state, err := svc.Toggle(ctx, 1, "1-10")
	require.NoError(t, err)
	assert.True(t, state.Liked)
	assert.Equal(t, 1, state.Count)

	// Like then unlike leaves the counter at its pre-toggle value.
	state, err = svc.Toggle(ctx, 1, "1-10")
	require.NoError(t, err)
	assert.False(t, state.Liked)
	assert.Equal(t, 0, state.Count)
}

func TestLikeService_CounterNeverNegative(t *testing.T) {
	repo := newMockLikeRepository()
	svc := NewLikeService(repo, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Toggle(ctx, 1, "1-10")
	require.NoError(t, err)
	state, err := svc.Toggle(ctx, 1, "1-10")
	require.NoError(t, err)

	assert.Equal(t, 0, state.Count)
	assert.GreaterOrEqual(t, state.Count, 0)
}

func TestLikeService_ConcurrentLearners(t *testing.T) {
	// 50 learners liking simultaneously must land on exactly 50.
	repo := newMockLikeRepository()
	svc := NewLikeService(repo, zap.NewNop())
	ctx := context.Background()

	var wg sync.WaitGroup
	for learner := 1; learner <= 50; learner++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			_, err := svc.Toggle(ctx, id, "1-10")
			assert.NoError(t, err)
		}(learner)
	}
	wg.Wait()

	state, err := repo.State(ctx, 0, "1-10")
	require.NoError(t, err)
	assert.Equal(t, 50, state.Count)
}

func TestLikeService_RollbackOnTransactionFailure(t *testing.T) {
	repo := newMockLikeRepository()
	svc := NewLikeService(repo, zap.NewNop())
	ctx := context.Background()

	// Seed the view, then make the transaction fail.
	before, err := svc.State(ctx, 1, "1-10")
	require.NoError(t, err)
	repo.err = errors.New("deadlock, retries exhausted")

	state, err := svc.Toggle(ctx, 1, "1-10")
	assert.Error(t, err)
	assert.Equal(t, before, state, "view rolled back exactly to the pre-toggle value")

	got, err2 := svc.State(ctx, 1, "1-10")
	require.NoError(t, err2)
	assert.Equal(t, before, got)
}

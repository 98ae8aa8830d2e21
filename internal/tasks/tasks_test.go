package tasks_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"carmarket-backend/internal/models"
	"carmarket-backend/internal/repository"
	"carmarket-backend/internal/services"
	"carmarket-backend/internal/tasks"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Mocks ---

type MockListingLoader struct {
	mock.Mock
}

func (m *MockListingLoader) FindByID(ctx context.Context, id string) (*models.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

type MockMatcher struct {
	mock.Mock
}

func (m *MockMatcher) CheckAndNotify(ctx context.Context, listing *models.Listing) services.MatchReport {
	args := m.Called(ctx, listing)
	return args.Get(0).(services.MatchReport)
}

type MockEnqueuer struct {
	mock.Mock
}

func (m *MockEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*asynq.TaskInfo), args.Error(1)
}

// --- Tests ---

func matchTask(t *testing.T, id string) *asynq.Task {
	t.Helper()
	task, err := tasks.NewAlertMatchTask(id)
	require.NoError(t, err)
	return task
}

func TestHandleAlertMatchTask_Active(t *testing.T) {
	listing := &models.Listing{ID: primitive.NewObjectID(), Status: models.ListingStatusActive}
	loader := new(MockListingLoader)
	matcher := new(MockMatcher)

	loader.On("FindByID", mock.Anything, listing.ID.Hex()).Return(listing, nil)
	matcher.On("CheckAndNotify", mock.Anything, listing).Return(services.MatchReport{Evaluated: 1})

	p := tasks.NewProcessor(loader, matcher, zerolog.Nop())
	err := p.HandleAlertMatchTask(context.Background(), matchTask(t, listing.ID.Hex()))

	assert.NoError(t, err)
	matcher.AssertExpectations(t)
}

func TestHandleAlertMatchTask_NoLongerActive(t *testing.T) {
	listing := &models.Listing{ID: primitive.NewObjectID(), Status: models.ListingStatusSold}
	loader := new(MockListingLoader)
	matcher := new(MockMatcher)

	loader.On("FindByID", mock.Anything, listing.ID.Hex()).Return(listing, nil)

	p := tasks.NewProcessor(loader, matcher, zerolog.Nop())
	err := p.HandleAlertMatchTask(context.Background(), matchTask(t, listing.ID.Hex()))

	assert.NoError(t, err)
	matcher.AssertNotCalled(t, "CheckAndNotify", mock.Anything, mock.Anything)
}

func TestHandleAlertMatchTask_MissingListingSkipsRetry(t *testing.T) {
	loader := new(MockListingLoader)
	loader.On("FindByID", mock.Anything, "gone").Return(nil, repository.ErrNotFound)

	p := tasks.NewProcessor(loader, new(MockMatcher), zerolog.Nop())
	err := p.HandleAlertMatchTask(context.Background(), matchTask(t, "gone"))

	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleAlertMatchTask_StoreErrorRetries(t *testing.T) {
	loader := new(MockListingLoader)
	loader.On("FindByID", mock.Anything, "abc").Return(nil, errors.New("connection reset"))

	p := tasks.NewProcessor(loader, new(MockMatcher), zerolog.Nop())
	err := p.HandleAlertMatchTask(context.Background(), matchTask(t, "abc"))

	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleAlertMatchTask_BadPayload(t *testing.T) {
	p := tasks.NewProcessor(new(MockListingLoader), new(MockMatcher), zerolog.Nop())
	err := p.HandleAlertMatchTask(context.Background(), asynq.NewTask(tasks.TypeAlertMatch, []byte("{")))

	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestDispatcherEnqueues(t *testing.T) {
	listing := &models.Listing{ID: primitive.NewObjectID()}
	enq := new(MockEnqueuer)
	enq.On("EnqueueContext", mock.Anything, mock.MatchedBy(func(task *asynq.Task) bool {
		var payload tasks.AlertMatchPayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return false
		}
		return task.Type() == tasks.TypeAlertMatch && payload.ListingID == listing.ID.Hex()
	})).Return(&asynq.TaskInfo{ID: "t1"}, nil).Once()

	tasks.NewDispatcher(enq, zerolog.Nop()).Dispatch(context.Background(), listing)

	enq.AssertExpectations(t)
}

func TestDispatcherSwallowsEnqueueError(t *testing.T) {
	enq := new(MockEnqueuer)
	enq.On("EnqueueContext", mock.Anything, mock.Anything).Return(nil, errors.New("redis down"))

	assert.NotPanics(t, func() {
		tasks.NewDispatcher(enq, zerolog.Nop()).Dispatch(context.Background(), &models.Listing{ID: primitive.NewObjectID()})
	})
}

func TestDispatcherDetachesFromRequest(t *testing.T) {
	enq := new(MockEnqueuer)
	enq.On("EnqueueContext", mock.MatchedBy(func(ctx context.Context) bool {
		return ctx.Err() == nil
	}), mock.Anything).Return(&asynq.TaskInfo{ID: "t2"}, nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tasks.NewDispatcher(enq, zerolog.Nop()).Dispatch(ctx, &models.Listing{ID: primitive.NewObjectID()})

	enq.AssertExpectations(t)
}

func TestRedisConnOpt(t *testing.T) {
	opt := tasks.RedisConnOpt(&redis.Options{
		Addr:        "cache:6379",
		Password:    "pw",
		DB:          2,
		PoolSize:    4,
		DialTimeout: time.Second,
	})

	assert.Equal(t, "cache:6379", opt.Addr)
	assert.Equal(t, "pw", opt.Password)
	assert.Equal(t, 2, opt.DB)
	assert.Equal(t, 4, opt.PoolSize)
	assert.Equal(t, time.Second, opt.DialTimeout)
}

package service_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/task-tracker/internal/domain"
	"github.com/phrazzld/task-tracker/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockTaskStore mocks the store.TaskStore interface
type MockTaskStore struct {
	mock.Mock
}

var _ store.TaskStore = (*MockTaskStore)(nil)

func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskStore) List(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Task), args.Error(1)
}

func (m *MockTaskStore) Search(ctx context.Context, query store.SearchQuery) ([]*domain.Task, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Task), args.Error(1)
}

func (m *MockTaskStore) ExistsPendingInstance(ctx context.Context, parentID uuid.UUID, dueDate time.Time) (bool, error) {
	args := m.Called(ctx, parentID, dueDate)
	return args.Bool(0), args.Error(1)
}

func (m *MockTaskStore) ListDueTemplates(ctx context.Context, now time.Time) ([]*domain.Task, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Task), args.Error(1)
}

func (m *MockTaskStore) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*domain.Task, error) {
	args := m.Called(ctx, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Task), args.Error(1)
}

func (m *MockTaskStore) DeleteChildren(ctx context.Context, parentID uuid.UUID) (int64, error) {
	args := m.Called(ctx, parentID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskStore) Reparent(ctx context.Context, oldParentID, newParentID uuid.UUID, now time.Time) (int64, error) {
	args := m.Called(ctx, oldParentID, newParentID, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskStore) Stats(ctx context.Context, now time.Time) (*store.TaskStats, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.TaskStats), args.Error(1)
}

// WithinTx runs fn against the mock itself.
func (m *MockTaskStore) WithinTx(ctx context.Context, fn func(ctx context.Context, txStore store.TaskStore) error) error {
	return fn(ctx, m)
}

// fakeWeather is a WeatherProvider with canned answers per location.
type fakeWeather struct {
	enabled bool
	results map[string]*domain.Weather
	err     error
	calls   map[string]int
}

func newFakeWeather(enabled bool) *fakeWeather {
	return &fakeWeather{
		enabled: enabled,
		results: make(map[string]*domain.Weather),
		calls:   make(map[string]int),
	}
}

func (f *fakeWeather) Enabled() bool { return f.enabled }

func (f *fakeWeather) Fetch(ctx context.Context, location string) (*domain.Weather, error) {
	f.calls[location]++
	if f.err != nil {
		return nil, f.err
	}
	if !f.enabled {
		return nil, nil
	}
	return f.results[location], nil
}

func (f *fakeWeather) FetchSafe(ctx context.Context, location string) *domain.Weather {
	w, err := f.Fetch(ctx, location)
	if err != nil {
		return nil
	}
	return w
}

package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/task-tracker/internal/domain"
	"github.com/phrazzld/task-tracker/internal/platform/sqlite"
	"github.com/phrazzld/task-tracker/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func newStore(t *testing.T) *sqlite.TaskStore {
	t.Helper()
	db, err := sqlite.NewDB(sqlite.MemoryDSN, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return sqlite.NewTaskStore(db, nil)
}

func mustTask(t *testing.T, params domain.TaskParams, created time.Time) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(params, created)
	require.NoError(t, err)
	return task
}

func mustCreate(t *testing.T, s *sqlite.TaskStore, params domain.TaskParams, created time.Time) *domain.Task {
	t.Helper()
	task := mustTask(t, params, created)
	require.NoError(t, s.Create(context.Background(), task))
	return task
}

func titles(tasks []*domain.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.Title)
	}
	return out
}

func TestDSNFromURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{name: "relative", url: "sqlite:///tasks.db", want: "tasks.db"},
		{name: "absolute", url: "sqlite:////var/lib/tasks/tasks.db", want: "/var/lib/tasks/tasks.db"},
		{name: "memory", url: "sqlite:///:memory:", want: ":memory:"},
		{name: "query kept", url: "sqlite:///tasks.db?_busy_timeout=5000", want: "tasks.db?_busy_timeout=5000"},
		{name: "plain path", url: "data/tasks.db", want: "data/tasks.db"},
		{name: "no path", url: "sqlite://", wantErr: true},
		{name: "empty", url: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sqlite.DSNFromURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsSQLiteURL(t *testing.T) {
	assert.True(t, sqlite.IsSQLiteURL("sqlite:///tasks.db"))
	assert.False(t, sqlite.IsSQLiteURL("postgres://localhost/tasks"))
}

func TestNewDBCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "tasks.db")

	db, err := sqlite.NewDB(path, nil)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	assert.FileExists(t, path)
}

func TestTaskStore_CRUD(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	due := baseTime.Add(24 * time.Hour)
	task := mustCreate(t, s, domain.TaskParams{
		Title:       "Buy milk",
		Description: strPtr("Two litres"),
		DueDate:     &due,
		Priority:    domain.PriorityHigh,
		Category:    strPtr("shopping"),
		Location:    strPtr("Tokyo"),
	}, baseTime)

	fetched, err := s.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task, fetched)

	task.Title = "Buy oat milk"
	task.Description = nil
	task.Status = domain.TaskStatusCompleted
	task.Touch(baseTime.Add(time.Hour))
	require.NoError(t, s.Update(ctx, task))

	fetched, err = s.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy oat milk", fetched.Title)
	assert.Nil(t, fetched.Description, "nil fields should be written as NULL")
	assert.Equal(t, domain.TaskStatusCompleted, fetched.Status)
	assert.Equal(t, baseTime, fetched.CreatedAt)
	assert.Equal(t, baseTime.Add(time.Hour), fetched.UpdatedAt)

	require.NoError(t, s.Delete(ctx, task.ID))
	_, err = s.GetByID(ctx, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	assert.ErrorIs(t, s.Delete(ctx, task.ID), store.ErrTaskNotFound)
	assert.ErrorIs(t, s.Update(ctx, task), store.ErrTaskNotFound)
}

func TestTaskStore_CreateValidates(t *testing.T) {
	s := newStore(t)

	task := mustTask(t, domain.TaskParams{Title: "ok"}, baseTime)
	task.Priority = "urgent"

	err := s.Create(context.Background(), task)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTaskStore_List(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	early := baseTime.Add(time.Hour)
	late := baseTime.Add(48 * time.Hour)

	mustCreate(t, s, domain.TaskParams{Title: "low undated", Priority: domain.PriorityLow}, baseTime)
	mustCreate(t, s, domain.TaskParams{
		Title: "high late", Priority: domain.PriorityHigh, DueDate: &late, Category: strPtr("work"),
	}, baseTime.Add(time.Minute))
	done := mustCreate(t, s, domain.TaskParams{
		Title: "medium early", Priority: domain.PriorityMedium, DueDate: &early, Category: strPtr("work"),
		Description: strPtr("Write the REPORT"),
	}, baseTime.Add(2*time.Minute))
	done.Status = domain.TaskStatusCompleted
	require.NoError(t, s.Update(ctx, done))

	tests := []struct {
		name   string
		filter store.TaskFilter
		want   []string
	}{
		{
			name: "default newest first",
			want: []string{"medium early", "high late", "low undated"},
		},
		{
			name:   "priority",
			filter: store.TaskFilter{Sort: store.SortPriority},
			want:   []string{"high late", "medium early", "low undated"},
		},
		{
			name:   "due date nulls last",
			filter: store.TaskFilter{Sort: store.SortDueDate},
			want:   []string{"medium early", "high late", "low undated"},
		},
		{
			name:   "status",
			filter: store.TaskFilter{Status: domain.TaskStatusPending},
			want:   []string{"high late", "low undated"},
		},
		{
			name:   "category",
			filter: store.TaskFilter{Category: "work", Sort: store.SortDueDate},
			want:   []string{"medium early", "high late"},
		},
		{
			name:   "query matches description case-insensitively",
			filter: store.TaskFilter{Query: "report"},
			want:   []string{"medium early"},
		},
		{
			name:   "no match",
			filter: store.TaskFilter{Category: "home"},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := s.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(tasks))
		})
	}
}

func TestTaskStore_Search(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	mustCreate(t, s, domain.TaskParams{Title: "Call Alice", Category: strPtr("personal")}, baseTime)
	mustCreate(t, s, domain.TaskParams{Title: "Email", Description: strPtr("ask alice about lunch")}, baseTime.Add(time.Minute))
	mustCreate(t, s, domain.TaskParams{Title: "Call Bob"}, baseTime.Add(2*time.Minute))

	results, err := s.Search(ctx, store.SearchQuery{Query: "ALICE"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Email", "Call Alice"}, titles(results))

	results, err = s.Search(ctx, store.SearchQuery{Query: "alice", Category: "personal"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Call Alice"}, titles(results))

	results, err = s.Search(ctx, store.SearchQuery{Query: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, results)

	_, err = s.Search(ctx, store.SearchQuery{Query: "   "})
	var validationErr *domain.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "q", validationErr.Field)
}

func TestTaskStore_Recurrence(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	pastDue := baseTime.Add(-48 * time.Hour)
	futureDue := baseTime.Add(48 * time.Hour)

	template := mustCreate(t, s, domain.TaskParams{
		Title: "Water plants", RepeatType: domain.RepeatDaily, DueDate: &pastDue,
	}, baseTime.Add(-72*time.Hour))
	mustCreate(t, s, domain.TaskParams{
		Title: "Future weekly", RepeatType: domain.RepeatWeekly, DueDate: &futureDue,
	}, baseTime)
	mustCreate(t, s, domain.TaskParams{Title: "Plain", DueDate: &pastDue}, baseTime)

	templates, err := s.ListDueTemplates(ctx, baseTime)
	require.NoError(t, err)
	assert.Equal(t, []string{"Water plants"}, titles(templates))

	nextDue := pastDue.Add(24 * time.Hour)
	exists, err := s.ExistsPendingInstance(ctx, template.ID, nextDue)
	require.NoError(t, err)
	assert.False(t, exists)

	instance := mustTask(t, domain.TaskParams{
		Title: "Water plants", RepeatType: domain.RepeatDaily, DueDate: &nextDue, ParentTaskID: &template.ID,
	}, baseTime)
	require.NoError(t, s.Create(ctx, instance))

	exists, err = s.ExistsPendingInstance(ctx, template.ID, nextDue)
	require.NoError(t, err)
	assert.True(t, exists)

	duplicate := mustTask(t, domain.TaskParams{
		Title: "Water plants", RepeatType: domain.RepeatDaily, DueDate: &nextDue, ParentTaskID: &template.ID,
	}, baseTime)
	err = s.Create(ctx, duplicate)
	assert.ErrorIs(t, err, store.ErrDuplicateInstance)

	instance.Status = domain.TaskStatusCompleted
	require.NoError(t, s.Update(ctx, instance))
	exists, err = s.ExistsPendingInstance(ctx, template.ID, nextDue)
	require.NoError(t, err)
	assert.False(t, exists, "completed instances do not count as pending")
	require.NoError(t, s.Create(ctx, duplicate), "a completed instance frees the slot")

	children, err := s.ListChildren(ctx, template.ID)
	require.NoError(t, err)
	assert.Len(t, children, 2)

	filtered, err := s.List(ctx, store.TaskFilter{ParentID: &template.ID})
	require.NoError(t, err)
	assert.Len(t, filtered, 2)
}

func TestTaskStore_ChildMaintenance(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*sqlite.TaskStore, *domain.Task, []*domain.Task) {
		s := newStore(t)
		due := baseTime
		template := mustCreate(t, s, domain.TaskParams{
			Title: "Standup", RepeatType: domain.RepeatDaily, DueDate: &due,
		}, baseTime)

		var children []*domain.Task
		for i := 1; i <= 3; i++ {
			childDue := baseTime.Add(time.Duration(i) * 24 * time.Hour)
			children = append(children, mustCreate(t, s, domain.TaskParams{
				Title: "Standup", RepeatType: domain.RepeatDaily, DueDate: &childDue, ParentTaskID: &template.ID,
			}, baseTime))
		}
		return s, template, children
	}

	t.Run("delete children", func(t *testing.T) {
		s, template, _ := setup(t)
		n, err := s.DeleteChildren(ctx, template.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		children, err := s.ListChildren(ctx, template.ID)
		require.NoError(t, err)
		assert.Empty(t, children)
	})

	t.Run("deleted template leaves instances out of the template set", func(t *testing.T) {
		s, template, children := setup(t)
		require.NoError(t, s.Delete(ctx, template.ID))

		fetched, err := s.GetByID(ctx, children[0].ID)
		require.NoError(t, err)
		require.NotNil(t, fetched.ParentTaskID)
		assert.Equal(t, template.ID, *fetched.ParentTaskID)

		due, err := s.ListDueTemplates(ctx, baseTime.Add(30*24*time.Hour))
		require.NoError(t, err)
		assert.Empty(t, due)
	})

	t.Run("reparent", func(t *testing.T) {
		s, template, children := setup(t)
		newRoot := children[0]
		stamp := baseTime.Add(time.Hour)

		n, err := s.Reparent(ctx, template.ID, newRoot.ID, stamp)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		moved, err := s.ListChildren(ctx, newRoot.ID)
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{children[1].ID, children[2].ID},
			[]uuid.UUID{moved[0].ID, moved[1].ID})
		for _, task := range moved {
			assert.True(t, stamp.Equal(task.UpdatedAt), "updated_at %s", task.UpdatedAt)
		}

		untouched, err := s.GetByID(ctx, newRoot.ID)
		require.NoError(t, err)
		assert.True(t, baseTime.Equal(untouched.UpdatedAt))
	})
}

func TestTaskStore_WithinTx(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	committed := mustTask(t, domain.TaskParams{Title: "committed"}, baseTime)
	err := s.WithinTx(ctx, func(ctx context.Context, txStore store.TaskStore) error {
		return txStore.Create(ctx, committed)
	})
	require.NoError(t, err)

	_, err = s.GetByID(ctx, committed.ID)
	assert.NoError(t, err)

	rolledBack := mustTask(t, domain.TaskParams{Title: "rolled back"}, baseTime)
	boom := errors.New("boom")
	err = s.WithinTx(ctx, func(ctx context.Context, txStore store.TaskStore) error {
		require.NoError(t, txStore.Create(ctx, rolledBack))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.GetByID(ctx, rolledBack.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func TestTaskStore_Stats(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	stats, err := s.Stats(ctx, baseTime)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0.0, stats.CompletionRate)

	yesterday := baseTime.Add(-24 * time.Hour)
	laterToday := baseTime.Add(2 * time.Hour)
	nextWeek := baseTime.Add(7 * 24 * time.Hour)

	mustCreate(t, s, domain.TaskParams{
		Title: "overdue", DueDate: &yesterday, Priority: domain.PriorityHigh, Category: strPtr("work"),
	}, baseTime)
	mustCreate(t, s, domain.TaskParams{
		Title: "today", DueDate: &laterToday, Priority: domain.PriorityLow, RepeatType: domain.RepeatWeekly,
	}, baseTime)
	done := mustCreate(t, s, domain.TaskParams{Title: "done", DueDate: &nextWeek, Category: strPtr("work")}, baseTime)
	done.Status = domain.TaskStatusCompleted
	require.NoError(t, s.Update(ctx, done))
	mustCreate(t, s, domain.TaskParams{Title: "someday"}, baseTime)

	stats, err = s.Stats(ctx, baseTime)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 3, stats.Pending)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 1, stats.Overdue)
	assert.Equal(t, 1, stats.DueToday)
	assert.Equal(t, 1, stats.RecurringTemplates)
	assert.InDelta(t, 0.25, stats.CompletionRate, 1e-9)
	assert.Equal(t, map[domain.Priority]int{
		domain.PriorityHigh:   1,
		domain.PriorityMedium: 1,
		domain.PriorityLow:    1,
	}, stats.PendingByPriority)
	assert.Equal(t, map[string]int{"work": 2, store.UncategorizedLabel: 2}, stats.ByCategory)
}

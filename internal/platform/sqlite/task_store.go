package sqlite

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/task-tracker/internal/domain"
	"github.com/phrazzld/task-tracker/internal/platform/logger"
	"github.com/phrazzld/task-tracker/internal/store"
	"gorm.io/gorm"
)

// containsCondition matches a case-insensitive substring of title or description.
const containsCondition = `(instr(lower(title), lower(?)) > 0 OR instr(lower(COALESCE(description, '')), lower(?)) > 0)`

// TaskStore implements store.TaskStore on a gorm SQLite database.
type TaskStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewTaskStore creates a SQLite task store.
// If logger is nil, a default logger will be used.
func NewTaskStore(db *gorm.DB, logger *slog.Logger) *TaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &TaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

var _ store.TaskStore = (*TaskStore)(nil)

// WithinTx implements store.TaskStore.WithinTx.
// Nested calls run in a savepoint of the enclosing transaction.
func (s *TaskStore) WithinTx(
	ctx context.Context,
	fn func(ctx context.Context, txStore store.TaskStore) error,
) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &TaskStore{db: tx, logger: s.logger})
	})
}

// Create implements store.TaskStore.Create
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	if err := s.db.WithContext(ctx).Create(toRecord(task)).Error; err != nil {
		mapped := mapError(err, task)
		if store.IsDuplicateError(mapped) {
			log.Debug("pending instance already exists",
				slog.String("task_id", task.ID.String()))
			return mapped
		}
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return store.NewStoreError("task", "create", "failed to insert task", mapped)
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("repeat_type", string(task.RepeatType)))
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *TaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var rec taskRecord
	err := s.db.WithContext(ctx).Where("id = ?", id.String()).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrTaskNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, store.NewStoreError("task", "get", "failed to query task", err)
	}

	task, err := rec.toDomain()
	if err != nil {
		return nil, store.NewStoreError("task", "get", "failed to decode task", err)
	}
	return task, nil
}

// Update implements store.TaskStore.Update
func (s *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	result := s.db.WithContext(ctx).
		Model(&taskRecord{}).
		Where("id = ?", task.ID.String()).
		Select("*").
		Omit("id", "created_at").
		Updates(toRecord(task))
	if result.Error != nil {
		mapped := mapError(result.Error, task)
		if store.IsDuplicateError(mapped) {
			return mapped
		}
		log.Error("failed to update task",
			slog.String("error", result.Error.Error()),
			slog.String("task_id", task.ID.String()))
		return store.NewStoreError("task", "update", "failed to update task", mapped)
	}
	if result.RowsAffected == 0 {
		return store.ErrTaskNotFound
	}

	log.Debug("task updated", slog.String("task_id", task.ID.String()))
	return nil
}

// Delete implements store.TaskStore.Delete
func (s *TaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result := s.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&taskRecord{})
	if result.Error != nil {
		log.Error("failed to delete task",
			slog.String("error", result.Error.Error()),
			slog.String("task_id", id.String()))
		return store.NewStoreError("task", "delete", "failed to delete task", result.Error)
	}
	if result.RowsAffected == 0 {
		return store.ErrTaskNotFound
	}

	log.Info("task deleted", slog.String("task_id", id.String()))
	return nil
}

// List implements store.TaskStore.List
func (s *TaskStore) List(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	q := s.db.WithContext(ctx).Model(&taskRecord{})

	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.ParentID != nil {
		q = q.Where("parent_task_id = ?", filter.ParentID.String())
	}
	if text := strings.TrimSpace(filter.Query); text != "" {
		q = q.Where(containsCondition, text, text)
	}

	return s.findTasks(ctx, "list", q.Order(orderClause(filter.Sort)))
}

func orderClause(sort store.TaskSort) string {
	switch sort {
	case store.SortPriority:
		return `CASE priority WHEN 'high' THEN 1 WHEN 'medium' THEN 2 WHEN 'low' THEN 3 ELSE 4 END, created_at DESC`
	case store.SortDueDate:
		return `due_date IS NULL, due_date ASC, created_at DESC`
	default:
		return `created_at DESC`
	}
}

// Search implements store.TaskStore.Search
func (s *TaskStore) Search(ctx context.Context, query store.SearchQuery) ([]*domain.Task, error) {
	text := strings.TrimSpace(query.Query)
	if text == "" {
		return nil, domain.NewValidationError("q", `Query parameter "q" is required`, nil)
	}

	q := s.db.WithContext(ctx).Model(&taskRecord{}).Where(containsCondition, text, text)
	if query.Category != "" {
		q = q.Where("category = ?", query.Category)
	}

	return s.findTasks(ctx, "search", q.Order("created_at DESC"))
}

// ExistsPendingInstance implements store.TaskStore.ExistsPendingInstance
func (s *TaskStore) ExistsPendingInstance(ctx context.Context, parentID uuid.UUID, dueDate time.Time) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&taskRecord{}).
		Where("parent_task_id = ? AND due_date = ? AND status = ?",
			parentID.String(), dueDate.UTC(), string(domain.TaskStatusPending)).
		Count(&count).Error
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to check pending instance",
			slog.String("error", err.Error()),
			slog.String("parent_task_id", parentID.String()))
		return false, store.NewStoreError("task", "exists", "failed to check pending instance", err)
	}
	return count > 0, nil
}

// ListDueTemplates implements store.TaskStore.ListDueTemplates
func (s *TaskStore) ListDueTemplates(ctx context.Context, now time.Time) ([]*domain.Task, error) {
	q := s.db.WithContext(ctx).
		Model(&taskRecord{}).
		Where("status = ?", string(domain.TaskStatusPending)).
		Where("parent_task_id IS NULL").
		Where("repeat_type <> ?", string(domain.RepeatNone)).
		Where("due_date IS NOT NULL AND due_date < ?", now.UTC()).
		Order("due_date ASC")

	return s.findTasks(ctx, "list_due_templates", q)
}

// ListChildren implements store.TaskStore.ListChildren
func (s *TaskStore) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*domain.Task, error) {
	q := s.db.WithContext(ctx).
		Model(&taskRecord{}).
		Where("parent_task_id = ?", parentID.String()).
		Order("due_date IS NULL, due_date ASC, created_at ASC")

	return s.findTasks(ctx, "list_children", q)
}

// DeleteChildren implements store.TaskStore.DeleteChildren
func (s *TaskStore) DeleteChildren(ctx context.Context, parentID uuid.UUID) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("parent_task_id = ?", parentID.String()).
		Delete(&taskRecord{})
	return s.affected(ctx, "delete_children", result)
}

// Reparent implements store.TaskStore.Reparent
func (s *TaskStore) Reparent(ctx context.Context, oldParentID, newParentID uuid.UUID, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&taskRecord{}).
		Where("parent_task_id = ? AND id <> ?", oldParentID.String(), newParentID.String()).
		Updates(map[string]any{
			"parent_task_id": newParentID.String(),
			"updated_at":     domain.NormalizeTime(now),
		})
	return s.affected(ctx, "reparent", result)
}

type statsRow struct {
	Total              int
	Pending            int
	Completed          int
	Overdue            int
	DueToday           int
	PendingHigh        int
	PendingMedium      int
	PendingLow         int
	RecurringTemplates int
}

type categoryRow struct {
	Category string
	Count    int
}

// Stats implements store.TaskStore.Stats
func (s *TaskStore) Stats(ctx context.Context, now time.Time) (*store.TaskStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	dayStart, dayEnd := store.DayBounds(now)

	var row statsRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0) AS pending,
			COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0) AS completed,
			COALESCE(SUM(CASE WHEN status = 'pending' AND due_date < ? THEN 1 ELSE 0 END), 0) AS overdue,
			COALESCE(SUM(CASE WHEN status = 'pending' AND due_date >= ? AND due_date < ? THEN 1 ELSE 0 END), 0) AS due_today,
			COALESCE(SUM(CASE WHEN status = 'pending' AND priority = 'high' THEN 1 ELSE 0 END), 0) AS pending_high,
			COALESCE(SUM(CASE WHEN status = 'pending' AND priority = 'medium' THEN 1 ELSE 0 END), 0) AS pending_medium,
			COALESCE(SUM(CASE WHEN status = 'pending' AND priority = 'low' THEN 1 ELSE 0 END), 0) AS pending_low,
			COALESCE(SUM(CASE WHEN repeat_type <> 'none' AND parent_task_id IS NULL AND due_date IS NOT NULL THEN 1 ELSE 0 END), 0) AS recurring_templates
		FROM tasks`,
		now.UTC(), dayStart, dayEnd,
	).Scan(&row).Error
	if err != nil {
		log.Error("failed to compute task stats", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "stats", "failed to compute stats", err)
	}

	var categories []categoryRow
	err = s.db.WithContext(ctx).Raw(
		`SELECT COALESCE(category, ?) AS category, COUNT(*) AS count FROM tasks GROUP BY 1`,
		store.UncategorizedLabel,
	).Scan(&categories).Error
	if err != nil {
		log.Error("failed to count tasks by category", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "stats", "failed to count categories", err)
	}

	stats := store.NewTaskStats()
	stats.Total = row.Total
	stats.Pending = row.Pending
	stats.Completed = row.Completed
	stats.Overdue = row.Overdue
	stats.DueToday = row.DueToday
	stats.RecurringTemplates = row.RecurringTemplates
	stats.PendingByPriority[domain.PriorityHigh] = row.PendingHigh
	stats.PendingByPriority[domain.PriorityMedium] = row.PendingMedium
	stats.PendingByPriority[domain.PriorityLow] = row.PendingLow
	for _, c := range categories {
		stats.ByCategory[c.Category] += c.Count
	}

	stats.Finalize()
	return stats, nil
}

func (s *TaskStore) findTasks(ctx context.Context, operation string, q *gorm.DB) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var records []taskRecord
	if err := q.Find(&records).Error; err != nil {
		log.Error("failed to query tasks",
			slog.String("operation", operation),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", operation, "failed to query tasks", err)
	}

	tasks := make([]*domain.Task, 0, len(records))
	for i := range records {
		task, err := records[i].toDomain()
		if err != nil {
			return nil, store.NewStoreError("task", operation, "failed to decode task", err)
		}
		tasks = append(tasks, task)
	}

	log.Debug("tasks queried",
		slog.String("operation", operation),
		slog.Int("count", len(tasks)))
	return tasks, nil
}

func (s *TaskStore) affected(ctx context.Context, operation string, result *gorm.DB) (int64, error) {
	if result.Error != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to modify tasks",
			slog.String("operation", operation),
			slog.String("error", result.Error.Error()))
		return 0, store.NewStoreError("task", operation, "failed to modify tasks", result.Error)
	}
	return result.RowsAffected, nil
}

// mapError translates gorm errors into store errors.
// A unique violation while writing an instance is attributed to the
// pending-instance index.
func mapError(err error, task *domain.Task) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrTaskNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed"):
		if task != nil && task.ParentTaskID != nil {
			return store.ErrDuplicateInstance
		}
		return store.ErrDuplicate
	case errors.Is(err, gorm.ErrForeignKeyViolated) || errors.Is(err, gorm.ErrCheckConstraintViolated):
		return store.ErrInvalidEntity
	default:
		return err
	}
}

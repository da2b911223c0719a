package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/task-tracker/internal/domain"
	"github.com/phrazzld/task-tracker/internal/platform/logger"
	"github.com/phrazzld/task-tracker/internal/store"
)

const taskColumns = `id, title, description, due_date, priority, status, category, location,
	repeat_type, parent_task_id, created_at, updated_at`

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	sqlDB  *sql.DB
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db *sql.DB, logger *slog.Logger) *PostgresTaskStore {
	// Validate inputs
	if db == nil {
		panic("db cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		sqlDB:  db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx returns a new PostgresTaskStore that executes every query on tx.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) *PostgresTaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

// WithinTx implements store.TaskStore.WithinTx.
// A store already bound to a transaction runs fn on that transaction.
func (s *PostgresTaskStore) WithinTx(
	ctx context.Context,
	fn func(ctx context.Context, txStore store.TaskStore) error,
) error {
	if s.sqlDB == nil {
		return fn(ctx, s)
	}

	return store.RunInTransaction(ctx, s.sqlDB, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, s.WithTx(tx))
	})
}

// Create implements store.TaskStore.Create
// Returns validation errors from the domain Task if data is invalid.
// Returns store.ErrDuplicateInstance if a pending instance already exists for the same occurrence.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.DueDate,
		string(task.Priority),
		string(task.Status),
		task.Category,
		task.Location,
		string(task.RepeatType),
		task.ParentTaskID,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		mapped := MapError(err)
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
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, store.NewStoreError("task", "get", "failed to query task", MapError(err))
	}

	return task, nil
}

// Update implements store.TaskStore.Update
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		UPDATE tasks
		SET title = $2, description = $3, due_date = $4, priority = $5, status = $6,
			category = $7, location = $8, repeat_type = $9, parent_task_id = $10, updated_at = $11
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.DueDate,
		string(task.Priority),
		string(task.Status),
		task.Category,
		task.Location,
		string(task.RepeatType),
		task.ParentTaskID,
		task.UpdatedAt,
	)
	if err != nil {
		mapped := MapError(err)
		if store.IsDuplicateError(mapped) {
			return mapped
		}
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return store.NewStoreError("task", "update", "failed to update task", mapped)
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}

	log.Debug("task updated", slog.String("task_id", task.ID.String()))
	return nil
}

// Delete implements store.TaskStore.Delete
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return store.NewStoreError("task", "delete", "failed to delete task", MapError(err))
	}

	if err := CheckRowsAffected(result, store.ErrTaskNotFound); err != nil {
		return err
	}

	log.Info("task deleted", slog.String("task_id", id.String()))
	return nil
}

// List implements store.TaskStore.List
func (s *PostgresTaskStore) List(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	query, args := buildListQuery(filter)
	return s.queryTasks(ctx, "list", query, args...)
}

// buildListQuery renders the filtered, ordered listing for filter.
func buildListQuery(filter store.TaskFilter) (string, []any) {
	var (
		conditions []string
		args       []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != "" {
		conditions = append(conditions, "status = "+arg(string(filter.Status)))
	}
	if filter.Category != "" {
		conditions = append(conditions, "category = "+arg(filter.Category))
	}
	if filter.ParentID != nil {
		conditions = append(conditions, "parent_task_id = "+arg(*filter.ParentID))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		conditions = append(conditions, containsCondition(arg(q)))
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(taskColumns)
	b.WriteString(" FROM tasks")
	if len(conditions) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conditions, " AND "))
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(orderClause(filter.Sort))

	return b.String(), args
}

// containsCondition matches a case-insensitive substring of title or description.
func containsCondition(placeholder string) string {
	return fmt.Sprintf(
		"(strpos(lower(title), lower(%[1]s)) > 0 OR strpos(lower(COALESCE(description, '')), lower(%[1]s)) > 0)",
		placeholder,
	)
}

func orderClause(sort store.TaskSort) string {
	switch sort {
	case store.SortPriority:
		return `CASE priority WHEN 'high' THEN 1 WHEN 'medium' THEN 2 WHEN 'low' THEN 3 ELSE 4 END, created_at DESC`
	case store.SortDueDate:
		return `due_date ASC NULLS LAST, created_at DESC`
	default:
		return `created_at DESC`
	}
}

// Search implements store.TaskStore.Search
func (s *PostgresTaskStore) Search(ctx context.Context, query store.SearchQuery) ([]*domain.Task, error) {
	q := strings.TrimSpace(query.Query)
	if q == "" {
		return nil, domain.NewValidationError("q", `Query parameter "q" is required`, nil)
	}

	args := []any{q}
	sqlQuery := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + containsCondition("$1")
	if query.Category != "" {
		args = append(args, query.Category)
		sqlQuery += ` AND category = $2`
	}
	sqlQuery += ` ORDER BY created_at DESC`

	return s.queryTasks(ctx, "search", sqlQuery, args...)
}

// ExistsPendingInstance implements store.TaskStore.ExistsPendingInstance
func (s *PostgresTaskStore) ExistsPendingInstance(
	ctx context.Context,
	parentID uuid.UUID,
	dueDate time.Time,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM tasks
			WHERE parent_task_id = $1 AND due_date = $2 AND status = 'pending'
		)
	`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, parentID, dueDate.UTC()).Scan(&exists); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to check pending instance",
			slog.String("error", err.Error()),
			slog.String("parent_task_id", parentID.String()))
		return false, store.NewStoreError("task", "exists", "failed to check pending instance", MapError(err))
	}

	return exists, nil
}

// ListDueTemplates implements store.TaskStore.ListDueTemplates
func (s *PostgresTaskStore) ListDueTemplates(ctx context.Context, now time.Time) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE status = 'pending'
			AND parent_task_id IS NULL
			AND repeat_type <> 'none'
			AND due_date IS NOT NULL
			AND due_date < $1
		ORDER BY due_date ASC`

	return s.queryTasks(ctx, "list_due_templates", query, now.UTC())
}

// ListChildren implements store.TaskStore.ListChildren
func (s *PostgresTaskStore) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks
		WHERE parent_task_id = $1
		ORDER BY due_date ASC NULLS LAST, created_at ASC`

	return s.queryTasks(ctx, "list_children", query, parentID)
}

// DeleteChildren implements store.TaskStore.DeleteChildren
func (s *PostgresTaskStore) DeleteChildren(ctx context.Context, parentID uuid.UUID) (int64, error) {
	return s.execCount(ctx, "delete_children",
		`DELETE FROM tasks WHERE parent_task_id = $1`, parentID)
}

// Reparent implements store.TaskStore.Reparent
func (s *PostgresTaskStore) Reparent(ctx context.Context, oldParentID, newParentID uuid.UUID, now time.Time) (int64, error) {
	return s.execCount(ctx, "reparent",
		`UPDATE tasks SET parent_task_id = $2, updated_at = $3
		WHERE parent_task_id = $1 AND id <> $2`, oldParentID, newParentID, domain.NormalizeTime(now))
}

// Stats implements store.TaskStore.Stats
func (s *PostgresTaskStore) Stats(ctx context.Context, now time.Time) (*store.TaskStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	dayStart, dayEnd := store.DayBounds(now)

	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'pending' AND due_date < $1),
			COUNT(*) FILTER (WHERE status = 'pending' AND due_date >= $2 AND due_date < $3),
			COUNT(*) FILTER (WHERE status = 'pending' AND priority = 'high'),
			COUNT(*) FILTER (WHERE status = 'pending' AND priority = 'medium'),
			COUNT(*) FILTER (WHERE status = 'pending' AND priority = 'low'),
			COUNT(*) FILTER (WHERE repeat_type <> 'none' AND parent_task_id IS NULL AND due_date IS NOT NULL)
		FROM tasks
	`

	stats := store.NewTaskStats()
	var high, medium, low int
	err := s.db.QueryRowContext(ctx, query, now.UTC(), dayStart, dayEnd).Scan(
		&stats.Total,
		&stats.Pending,
		&stats.Completed,
		&stats.Overdue,
		&stats.DueToday,
		&high,
		&medium,
		&low,
		&stats.RecurringTemplates,
	)
	if err != nil {
		log.Error("failed to compute task stats", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "stats", "failed to compute stats", MapError(err))
	}
	stats.PendingByPriority[domain.PriorityHigh] = high
	stats.PendingByPriority[domain.PriorityMedium] = medium
	stats.PendingByPriority[domain.PriorityLow] = low

	rows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(category, $1), COUNT(*) FROM tasks GROUP BY 1`, store.UncategorizedLabel)
	if err != nil {
		log.Error("failed to count tasks by category", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "stats", "failed to count categories", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			category string
			count    int
		)
		if err := rows.Scan(&category, &count); err != nil {
			return nil, store.NewStoreError("task", "stats", "failed to scan category count", err)
		}
		stats.ByCategory[category] += count
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("task", "stats", "failed to iterate category counts", err)
	}

	stats.Finalize()
	return stats, nil
}

func (s *PostgresTaskStore) queryTasks(
	ctx context.Context,
	operation string,
	query string,
	args ...any,
) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks",
			slog.String("operation", operation),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", operation, "failed to query tasks", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, store.NewStoreError("task", operation, "failed to scan task", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("task", operation, "failed to iterate tasks", err)
	}

	log.Debug("tasks queried",
		slog.String("operation", operation),
		slog.Int("count", len(tasks)))
	return tasks, nil
}

func (s *PostgresTaskStore) execCount(ctx context.Context, operation, query string, args ...any) (int64, error) {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to modify tasks",
			slog.String("operation", operation),
			slog.String("error", err.Error()))
		return 0, store.NewStoreError("task", operation, "failed to modify tasks", MapError(err))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, store.NewStoreError("task", operation, "failed to get rows affected", err)
	}
	return affected, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task        domain.Task
		description sql.NullString
		dueDate     sql.NullTime
		priority    string
		status      string
		category    sql.NullString
		location    sql.NullString
		repeatType  string
		parentID    uuid.NullUUID
	)

	err := row.Scan(
		&task.ID,
		&task.Title,
		&description,
		&dueDate,
		&priority,
		&status,
		&category,
		&location,
		&repeatType,
		&parentID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Description = nullString(description)
	task.Category = nullString(category)
	task.Location = nullString(location)
	task.Priority = domain.Priority(priority)
	task.Status = domain.TaskStatus(status)
	task.RepeatType = domain.RepeatType(repeatType)
	if dueDate.Valid {
		due := dueDate.Time.UTC()
		task.DueDate = &due
	}
	if parentID.Valid {
		id := parentID.UUID
		task.ParentTaskID = &id
	}
	task.CreatedAt = task.CreatedAt.UTC()
	task.UpdatedAt = task.UpdatedAt.UTC()

	return &task, nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

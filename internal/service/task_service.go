package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/task-tracker/internal/config"
	"github.com/phrazzld/task-tracker/internal/domain"
	"github.com/phrazzld/task-tracker/internal/events"
	"github.com/phrazzld/task-tracker/internal/platform/logger"
	"github.com/phrazzld/task-tracker/internal/store"
)

// CreateTaskInput holds the caller-supplied fields of a new task.
// Zero values for the enumerations select their defaults.
type CreateTaskInput struct {
	Title       string
	Description *string
	DueDate     *time.Time
	Priority    domain.Priority
	Status      domain.TaskStatus
	Category    *string
	Location    *string
	RepeatType  domain.RepeatType
}

// TaskServiceConfig holds the behavioural settings of the task service.
type TaskServiceConfig struct {
	// DeletePolicy is one of the config.DeletePolicy* values
	DeletePolicy string

	// GenerateOnList runs batch recurrence generation before every listing
	GenerateOnList bool
}

// TaskService provides task-related operations
type TaskService interface {
	// CreateTask validates and saves a new task
	CreateTask(ctx context.Context, input CreateTaskInput) (*domain.Task, error)

	// GetTask retrieves a task by its ID
	GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// ListTasks returns the tasks matching filter
	ListTasks(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error)

	// SearchTasks returns tasks whose title or description contains the query
	SearchTasks(ctx context.Context, query store.SearchQuery) ([]*domain.Task, error)

	// UpdateTask applies a partial update to a task
	UpdateTask(ctx context.Context, id uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)

	// ToggleTask flips a task between pending and completed
	ToggleTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// DeleteTask removes a task, applying the delete policy to its instances
	DeleteTask(ctx context.Context, id uuid.UUID) error

	// Stats computes the dashboard statistics
	Stats(ctx context.Context) (*store.TaskStats, error)

	// GenerateRecurring runs batch recurrence generation
	GenerateRecurring(ctx context.Context) (*GenerationReport, error)

	// EnrichWithWeather attaches the weather at each task's location.
	// Lookups never fail the call.
	EnrichWithWeather(ctx context.Context, tasks []*domain.Task) []*TaskWithWeather

	// GetWeather looks up the weather for a location, returning classified errors
	GetWeather(ctx context.Context, location string) (*domain.Weather, error)
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	taskStore  store.TaskStore
	recurrence RecurrenceService
	weather    WeatherProvider
	emitter    events.EventEmitter
	cfg        TaskServiceConfig
	now        func() time.Time
	logger     *slog.Logger
}

var _ TaskService = (*taskServiceImpl)(nil)

// NewTaskService creates a new TaskService.
// weather and emitter are optional; without them tasks are not enriched and
// completions are not announced.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	taskStore store.TaskStore,
	recurrenceService RecurrenceService,
	weather WeatherProvider,
	emitter events.EventEmitter,
	cfg TaskServiceConfig,
	logger *slog.Logger,
	opts ...Option,
) (TaskService, error) {
	if taskStore == nil {
		return nil, domain.NewValidationError("taskStore", "cannot be nil", domain.ErrValidation)
	}
	if recurrenceService == nil {
		return nil, domain.NewValidationError("recurrenceService", "cannot be nil", domain.ErrValidation)
	}

	switch cfg.DeletePolicy {
	case "":
		cfg.DeletePolicy = config.DeletePolicyOrphan
	case config.DeletePolicyOrphan, config.DeletePolicyCascade, config.DeletePolicyReparent:
	default:
		return nil, domain.NewValidationError("DeletePolicy", "must be orphan, cascade, or reparent", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	o := applyOptions(opts)

	return &taskServiceImpl{
		taskStore:  taskStore,
		recurrence: recurrenceService,
		weather:    weather,
		emitter:    emitter,
		cfg:        cfg,
		now:        o.now,
		logger:     logger.With(slog.String("component", "task_service")),
	}, nil
}

// CreateTask implements TaskService.CreateTask
func (s *taskServiceImpl) CreateTask(ctx context.Context, input CreateTaskInput) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(domain.TaskParams{
		Title:       input.Title,
		Description: input.Description,
		DueDate:     input.DueDate,
		Priority:    input.Priority,
		Status:      input.Status,
		Category:    input.Category,
		Location:    input.Location,
		RepeatType:  input.RepeatType,
	}, s.now())
	if err != nil {
		log.Debug("invalid task input", slog.String("error", err.Error()))
		return nil, err
	}

	if err := s.taskStore.Create(ctx, task); err != nil {
		return nil, s.wrap("create_task", "failed to save task", err)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("priority", string(task.Priority)))
	return task, nil
}

// GetTask implements TaskService.GetTask
func (s *taskServiceImpl) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrap("get_task", "failed to retrieve task", err)
	}
	return task, nil
}

// ListTasks implements TaskService.ListTasks
// When generation on list is enabled, due recurring instances are created
// first; a generation failure is logged and does not fail the listing.
func (s *taskServiceImpl) ListTasks(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	if s.cfg.GenerateOnList {
		if _, err := s.recurrence.GenerateDue(ctx, s.now()); err != nil {
			logger.FromContextOrDefault(ctx, s.logger).Warn("recurring generation before listing failed",
				slog.String("error", err.Error()))
		}
	}

	tasks, err := s.taskStore.List(ctx, filter)
	if err != nil {
		return nil, s.wrap("list_tasks", "failed to list tasks", err)
	}
	return tasks, nil
}

// SearchTasks implements TaskService.SearchTasks
func (s *taskServiceImpl) SearchTasks(ctx context.Context, query store.SearchQuery) ([]*domain.Task, error) {
	tasks, err := s.taskStore.Search(ctx, query)
	if err != nil {
		return nil, s.wrap("search_tasks", "failed to search tasks", err)
	}
	return tasks, nil
}

// UpdateTask implements TaskService.UpdateTask
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	id uuid.UUID,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrap("update_task", "failed to retrieve task", err)
	}

	wasPending := task.IsPending()
	if err := patch.Apply(task, s.now()); err != nil {
		return nil, err
	}

	if err := s.taskStore.Update(ctx, task); err != nil {
		return nil, s.wrap("update_task", "failed to save task", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("task updated", slog.String("task_id", id.String()))

	if wasPending && !task.IsPending() {
		s.emitCompleted(ctx, task)
	}
	return task, nil
}

// ToggleTask implements TaskService.ToggleTask
func (s *taskServiceImpl) ToggleTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrap("toggle_task", "failed to retrieve task", err)
	}

	status := task.Toggle(s.now())
	if err := s.taskStore.Update(ctx, task); err != nil {
		return nil, s.wrap("toggle_task", "failed to save task", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("task toggled",
		slog.String("task_id", id.String()),
		slog.String("status", string(status)))

	if status == domain.TaskStatusCompleted {
		s.emitCompleted(ctx, task)
	}
	return task, nil
}

// emitCompleted announces a completed repeating task. Failures are logged.
func (s *taskServiceImpl) emitCompleted(ctx context.Context, task *domain.Task) {
	if s.emitter == nil || !task.IsRecurring() {
		return
	}

	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewTaskEvent(events.EventTaskCompleted, task.ID, task, s.now())
	if err != nil {
		log.Error("failed to build task completed event",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return
	}

	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Error("task completed handlers failed",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
	}
}

// DeleteTask implements TaskService.DeleteTask
// The task and any change to its generated instances happen in one transaction.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.taskStore.WithinTx(ctx, func(ctx context.Context, txStore store.TaskStore) error {
		if _, err := txStore.GetByID(ctx, id); err != nil {
			return err
		}

		affected, err := s.applyDeletePolicy(ctx, txStore, id)
		if err != nil {
			return err
		}
		if affected > 0 {
			log.Info("applied delete policy to generated instances",
				slog.String("task_id", id.String()),
				slog.String("policy", s.cfg.DeletePolicy),
				slog.Int64("instances", affected))
		}

		return txStore.Delete(ctx, id)
	})
	if err != nil {
		return s.wrap("delete_task", "failed to delete task", err)
	}

	log.Info("task deleted", slog.String("task_id", id.String()))
	return nil
}

func (s *taskServiceImpl) applyDeletePolicy(ctx context.Context, txStore store.TaskStore, id uuid.UUID) (int64, error) {
	switch s.cfg.DeletePolicy {
	case config.DeletePolicyCascade:
		return txStore.DeleteChildren(ctx, id)
	case config.DeletePolicyReparent:
		return s.reparentChildren(ctx, txStore, id)
	default:
		// Orphans keep their parent reference so they never qualify as templates.
		return 0, nil
	}
}

// reparentChildren promotes the earliest pending instance to be the new
// template and points its siblings at it. Without a pending instance the
// children are left as orphans.
func (s *taskServiceImpl) reparentChildren(ctx context.Context, txStore store.TaskStore, id uuid.UUID) (int64, error) {
	children, err := txStore.ListChildren(ctx, id)
	if err != nil {
		return 0, err
	}

	var newRoot *domain.Task
	for _, child := range children {
		if child.IsPending() {
			newRoot = child
			break
		}
	}
	if newRoot == nil {
		return 0, nil
	}

	now := s.now()
	newRoot.ParentTaskID = nil
	newRoot.Touch(now)
	if err := txStore.Update(ctx, newRoot); err != nil {
		return 0, err
	}

	moved, err := txStore.Reparent(ctx, id, newRoot.ID, now)
	if err != nil {
		return 0, err
	}
	return moved + 1, nil
}

// Stats implements TaskService.Stats
func (s *taskServiceImpl) Stats(ctx context.Context) (*store.TaskStats, error) {
	stats, err := s.taskStore.Stats(ctx, s.now())
	if err != nil {
		return nil, s.wrap("stats", "failed to compute statistics", err)
	}
	return stats, nil
}

// GenerateRecurring implements TaskService.GenerateRecurring
func (s *taskServiceImpl) GenerateRecurring(ctx context.Context) (*GenerationReport, error) {
	return s.recurrence.GenerateDue(ctx, s.now())
}

// EnrichWithWeather implements TaskService.EnrichWithWeather
// Each distinct location is looked up once per call.
func (s *taskServiceImpl) EnrichWithWeather(ctx context.Context, tasks []*domain.Task) []*TaskWithWeather {
	result := make([]*TaskWithWeather, 0, len(tasks))
	enabled := s.weather != nil && s.weather.Enabled()
	seen := make(map[string]*domain.Weather)

	for _, task := range tasks {
		item := &TaskWithWeather{Task: task}
		result = append(result, item)

		if !enabled || !task.HasLocation() {
			continue
		}

		location := strings.TrimSpace(*task.Location)
		weather, ok := seen[location]
		if !ok {
			weather = s.weather.FetchSafe(ctx, location)
			seen[location] = weather
		}
		item.Weather = weather
	}

	return result
}

// GetWeather implements TaskService.GetWeather
func (s *taskServiceImpl) GetWeather(ctx context.Context, location string) (*domain.Weather, error) {
	if s.weather == nil {
		return nil, ErrWeatherUnavailable
	}

	weather, err := s.weather.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	if weather == nil {
		return nil, ErrWeatherUnavailable
	}
	return weather, nil
}

// wrap returns expected errors unchanged and wraps everything else.
func (s *taskServiceImpl) wrap(operation, message string, err error) error {
	if passThrough(err) {
		return err
	}
	return NewTaskServiceError(operation, message, err)
}

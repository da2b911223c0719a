package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/task-tracker/internal/domain"
	"github.com/phrazzld/task-tracker/internal/domain/recurrence"
	"github.com/phrazzld/task-tracker/internal/events"
	"github.com/phrazzld/task-tracker/internal/platform/logger"
	"github.com/phrazzld/task-tracker/internal/store"
)

// GenerationReport summarizes one batch generation run.
type GenerationReport struct {
	// Examined is the number of due templates looked at
	Examined int `json:"examined"`

	// Generated holds the IDs of the instances created
	Generated []uuid.UUID `json:"generated"`

	// Skipped holds the IDs of templates whose next instance already existed
	Skipped []uuid.UUID `json:"skipped"`

	// Failed holds the IDs of templates that could not be processed
	Failed []uuid.UUID `json:"failed"`
}

func newGenerationReport() *GenerationReport {
	return &GenerationReport{
		Generated: make([]uuid.UUID, 0),
		Skipped:   make([]uuid.UUID, 0),
		Failed:    make([]uuid.UUID, 0),
	}
}

// RecurrenceService generates instances of repeating tasks.
type RecurrenceService interface {
	// GenerateNext returns the unsaved instance following task, or nil when
	// task does not repeat, has no due date, or its next pending instance
	// already exists.
	GenerateNext(ctx context.Context, task *domain.Task) (*domain.Task, error)

	// GenerateDue creates at most one instance for every pending template
	// whose due date lies before now.
	GenerateDue(ctx context.Context, now time.Time) (*GenerationReport, error)

	// HandleEvent creates the successor of a task announced by a
	// task.completed event. Other event types are ignored.
	HandleEvent(ctx context.Context, event *events.TaskEvent) error
}

// recurrenceServiceImpl implements the RecurrenceService interface
type recurrenceServiceImpl struct {
	taskStore store.TaskStore
	params    *recurrence.Params
	now       func() time.Time
	logger    *slog.Logger
}

var (
	_ RecurrenceService   = (*recurrenceServiceImpl)(nil)
	_ events.EventHandler = (*recurrenceServiceImpl)(nil)
)

// NewRecurrenceService creates a new RecurrenceService.
// If params is nil, the default offsets are used.
// It returns an error if taskStore is nil.
func NewRecurrenceService(
	taskStore store.TaskStore,
	params *recurrence.Params,
	logger *slog.Logger,
	opts ...Option,
) (RecurrenceService, error) {
	if taskStore == nil {
		return nil, domain.NewValidationError("taskStore", "cannot be nil", domain.ErrValidation)
	}
	if params == nil {
		params = recurrence.NewDefaultParams()
	}
	if logger == nil {
		logger = slog.Default()
	}

	o := applyOptions(opts)

	return &recurrenceServiceImpl{
		taskStore: taskStore,
		params:    params,
		now:       o.now,
		logger:    logger.With(slog.String("component", "recurrence_service")),
	}, nil
}

// GenerateNext implements RecurrenceService.GenerateNext
func (s *recurrenceServiceImpl) GenerateNext(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	return s.generateNext(ctx, s.taskStore, task)
}

func (s *recurrenceServiceImpl) generateNext(
	ctx context.Context,
	taskStore store.TaskStore,
	task *domain.Task,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	nextDue, ok := s.params.NextDueDate(task)
	if !ok {
		return nil, nil
	}

	rootID := recurrence.RootID(task)
	exists, err := taskStore.ExistsPendingInstance(ctx, rootID, nextDue)
	if err != nil {
		return nil, NewRecurrenceServiceError("generate_next", "failed to check existing instance", err)
	}
	if exists {
		log.Debug("next instance already exists",
			slog.String("parent_task_id", rootID.String()),
			slog.Time("due_date", nextDue))
		return nil, nil
	}

	next, err := s.params.Successor(task, s.now())
	if err != nil {
		return nil, NewRecurrenceServiceError("generate_next", "failed to build next instance", err)
	}

	return next, nil
}

// GenerateDue implements RecurrenceService.GenerateDue
func (s *recurrenceServiceImpl) GenerateDue(ctx context.Context, now time.Time) (*GenerationReport, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	templates, err := s.taskStore.ListDueTemplates(ctx, now)
	if err != nil {
		log.Error("failed to list due templates", slog.String("error", err.Error()))
		return nil, NewRecurrenceServiceError("generate_due", "failed to list due templates", err)
	}

	report := newGenerationReport()
	for _, template := range templates {
		report.Examined++

		instance, err := s.createNext(ctx, template)
		switch {
		case err != nil:
			log.Error("failed to generate recurring instance",
				slog.String("error", err.Error()),
				slog.String("task_id", template.ID.String()))
			report.Failed = append(report.Failed, template.ID)
		case instance == nil:
			report.Skipped = append(report.Skipped, template.ID)
		default:
			report.Generated = append(report.Generated, instance.ID)
		}
	}

	if report.Examined > 0 {
		log.Info("recurring instances generated",
			slog.Int("examined", report.Examined),
			slog.Int("generated", len(report.Generated)),
			slog.Int("skipped", len(report.Skipped)),
			slog.Int("failed", len(report.Failed)))
	}

	return report, nil
}

// HandleEvent implements events.EventHandler
func (s *recurrenceServiceImpl) HandleEvent(ctx context.Context, event *events.TaskEvent) error {
	if event.Type != events.EventTaskCompleted {
		return nil
	}

	var task domain.Task
	if err := event.UnmarshalPayload(&task); err != nil {
		return NewRecurrenceServiceError("handle_event", "failed to decode completed task", err)
	}
	if !task.IsRecurring() {
		return nil
	}

	instance, err := s.createNext(ctx, &task)
	if err != nil {
		return err
	}
	if instance != nil {
		logger.FromContextOrDefault(ctx, s.logger).Info("created next recurring instance",
			slog.String("task_id", task.ID.String()),
			slog.String("instance_id", instance.ID.String()))
	}
	return nil
}

// createNext generates and persists the successor of task. It returns nil
// without an error when the successor already exists, including when a
// concurrent writer inserted it between the check and the insert.
func (s *recurrenceServiceImpl) createNext(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	var created *domain.Task

	err := s.taskStore.WithinTx(ctx, func(ctx context.Context, txStore store.TaskStore) error {
		next, err := s.generateNext(ctx, txStore, task)
		if err != nil || next == nil {
			return err
		}

		if err := txStore.Create(ctx, next); err != nil {
			return err
		}
		created = next
		return nil
	})
	if err != nil {
		if store.IsDuplicateError(err) {
			return nil, nil
		}
		var serviceErr *RecurrenceServiceError
		if errors.As(err, &serviceErr) {
			return nil, err
		}
		return nil, NewRecurrenceServiceError("create_next", "failed to save next instance", err)
	}

	return created, nil
}

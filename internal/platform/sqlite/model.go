package sqlite

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/task-tracker/internal/domain"
)

// taskRecord is the gorm model of the tasks table.
type taskRecord struct {
	ID           string     `gorm:"primaryKey;type:varchar(36)"`
	Title        string     `gorm:"type:varchar(200);not null"`
	Description  *string    `gorm:"type:text"`
	DueDate      *time.Time `gorm:"index:idx_tasks_status_due_date,priority:2"`
	Priority     string     `gorm:"type:varchar(10);not null;default:medium"`
	Status       string     `gorm:"type:varchar(20);not null;default:pending;index:idx_tasks_status_due_date,priority:1"`
	Category     *string    `gorm:"type:varchar(50);index"`
	Location     *string    `gorm:"type:varchar(100)"`
	RepeatType   string     `gorm:"type:varchar(20);not null;default:none"`
	ParentTaskID *string    `gorm:"type:varchar(36);index"`
	CreatedAt    time.Time  `gorm:"not null;autoCreateTime:false;index"`
	UpdatedAt    time.Time  `gorm:"not null;autoUpdateTime:false"`
}

// TableName overrides gorm's pluralized default.
func (taskRecord) TableName() string {
	return "tasks"
}

func toRecord(task *domain.Task) *taskRecord {
	rec := &taskRecord{
		ID:          task.ID.String(),
		Title:       task.Title,
		Description: task.Description,
		Priority:    string(task.Priority),
		Status:      string(task.Status),
		Category:    task.Category,
		Location:    task.Location,
		RepeatType:  string(task.RepeatType),
		CreatedAt:   task.CreatedAt.UTC(),
		UpdatedAt:   task.UpdatedAt.UTC(),
	}
	if task.DueDate != nil {
		due := task.DueDate.UTC()
		rec.DueDate = &due
	}
	if task.ParentTaskID != nil {
		parent := task.ParentTaskID.String()
		rec.ParentTaskID = &parent
	}
	return rec
}

func (r *taskRecord) toDomain() (*domain.Task, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, err
	}

	task := &domain.Task{
		ID:          id,
		Title:       r.Title,
		Description: r.Description,
		Priority:    domain.Priority(r.Priority),
		Status:      domain.TaskStatus(r.Status),
		Category:    r.Category,
		Location:    r.Location,
		RepeatType:  domain.RepeatType(r.RepeatType),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
	if r.DueDate != nil {
		due := r.DueDate.UTC()
		task.DueDate = &due
	}
	if r.ParentTaskID != nil {
		parent, err := uuid.Parse(*r.ParentTaskID)
		if err != nil {
			return nil, err
		}
		task.ParentTaskID = &parent
	}
	return task, nil
}

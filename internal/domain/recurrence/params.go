package recurrence

import (
	"time"

	"github.com/phrazzld/task-tracker/internal/domain"
)

// Fixed offsets between consecutive occurrences.
const (
	DailyOffset  = 24 * time.Hour
	WeeklyOffset = 7 * DailyOffset
	// MonthlyOffset is a fixed 30-day step, not a calendar month.
	MonthlyOffset = 30 * DailyOffset
)

// Params defines the offset applied for each repeat type.
type Params struct {
	Offsets map[domain.RepeatType]time.Duration
}

// NewDefaultParams creates a new Params instance with the default offsets
func NewDefaultParams() *Params {
	return &Params{
		Offsets: map[domain.RepeatType]time.Duration{
			domain.RepeatDaily:   DailyOffset,
			domain.RepeatWeekly:  WeeklyOffset,
			domain.RepeatMonthly: MonthlyOffset,
		},
	}
}

// Offset returns the step for repeat and whether one is defined.
func (p *Params) Offset(repeat domain.RepeatType) (time.Duration, bool) {
	offset, ok := p.Offsets[repeat]
	return offset, ok && offset > 0
}

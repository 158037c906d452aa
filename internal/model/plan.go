package model

import (
	"time"

	"github.com/google/uuid"
)

// PlanUsage tracks a student's subscription quota. Remaining is always
// Total-Used and never negative; only admin/plan-renewal flows increment it.
type PlanUsage struct {
	ID             uuid.UUID `json:"id"`
	StudentID      uuid.UUID `json:"student_id"`
	PlanName       string    `json:"plan_name"`
	TotalClasses   int       `json:"total_classes"`
	UsedClasses    int       `json:"used_classes"`
	ClassesPerWeek int       `json:"classes_per_week"`
	ExpiresAt      time.Time `json:"expires_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (p *PlanUsage) Remaining() int {
	r := p.TotalClasses - p.UsedClasses
	if r < 0 {
		return 0
	}
	return r
}

func (p *PlanUsage) Expired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && now.After(p.ExpiresAt)
}

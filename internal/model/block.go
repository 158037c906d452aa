package model

import (
	"time"

	"github.com/google/uuid"
)

type BlockType string

const (
	BlockGlobal       BlockType = "global"
	BlockProfessional BlockType = "professional"
	BlockLocation     BlockType = "location"
	BlockRoom         BlockType = "room"
)

type Frequency string

const (
	FreqDaily   Frequency = "daily"
	FreqWeekly  Frequency = "weekly"
	FreqMonthly Frequency = "monthly"
)

// Recurrence describes a repeating block pattern. Weekdays use the grid
// convention Monday=0 .. Sunday=6.
type Recurrence struct {
	Frequency  Frequency  `json:"frequency"`
	Interval   int        `json:"interval"`               // every N days/weeks/months, >= 1
	DaysOfWeek []int      `json:"days_of_week,omitempty"` // weekly only
	DayOfMonth int        `json:"day_of_month,omitempty"` // monthly only
	EndDate    *time.Time `json:"end_date,omitempty"`     // pattern stops after this date
}

// Block is a rule that forbids scheduling. Exactly one of Date,
// StartDate+EndDate, or Recurrence describes when it applies; the scoping
// field matching Type describes where.
type Block struct {
	ID             uuid.UUID   `json:"id"`
	Type           BlockType   `json:"type"`
	Date           *time.Time  `json:"date,omitempty"`
	StartDate      *time.Time  `json:"start_date,omitempty"`
	EndDate        *time.Time  `json:"end_date,omitempty"`
	Recurrence     *Recurrence `json:"recurrence,omitempty"`
	AllDay         bool        `json:"all_day"`
	StartTime      string      `json:"start_time,omitempty"` // "HH:MM" when not all-day
	EndTime        string      `json:"end_time,omitempty"`
	ProfessionalID *uuid.UUID  `json:"professional_id,omitempty"`
	Location       string      `json:"location,omitempty"`
	Room           string      `json:"room,omitempty"`
	Reason         string      `json:"reason,omitempty"`
	Active         bool        `json:"active"`
	CreatedAt      time.Time   `json:"created_at"`
}

// ValidScope checks the scoping discriminant invariant: the field matching
// Type is set and the others are empty. Room blocks are the one exception:
// they may additionally carry a location qualifier so that same-named rooms
// at different locations stay distinct.
func (b *Block) ValidScope() bool {
	switch b.Type {
	case BlockGlobal:
		return b.ProfessionalID == nil && b.Location == "" && b.Room == ""
	case BlockProfessional:
		return b.ProfessionalID != nil && b.Location == "" && b.Room == ""
	case BlockLocation:
		return b.ProfessionalID == nil && b.Location != "" && b.Room == ""
	case BlockRoom:
		return b.ProfessionalID == nil && b.Room != ""
	}
	return false
}

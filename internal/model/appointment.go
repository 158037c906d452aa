package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusNoShow    AppointmentStatus = "no-show"
)

// CanTransitionTo enforces the monotonic status lifecycle: scheduled may move
// to any terminal status, terminal statuses never move again.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	if s != StatusScheduled {
		return false
	}
	switch next {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

func (s AppointmentStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

type SessionType string

const (
	SessionYoga       SessionType = "yoga"
	SessionPilates    SessionType = "pilates"
	SessionMassage    SessionType = "massage"
	SessionNutrition  SessionType = "nutrition"
	SessionEvaluation SessionType = "evaluation"
	SessionOther      SessionType = "other"
)

type Appointment struct {
	ID               uuid.UUID         `json:"id"`
	Date             time.Time         `json:"date"`       // calendar date, midnight UTC
	StartTime        string            `json:"start_time"` // "HH:MM", 24h
	EndTime          string            `json:"end_time"`   // "HH:MM", may be empty when Duration is set
	Duration         int               `json:"duration"`   // minutes
	StudentID        uuid.UUID         `json:"student_id"`
	StudentName      string            `json:"student_name"`
	ProfessionalID   uuid.UUID         `json:"professional_id"`
	ProfessionalName string            `json:"professional_name"`
	Type             SessionType       `json:"type"`
	Title            string            `json:"title"`
	Status           AppointmentStatus `json:"status"`
	Location         string            `json:"location,omitempty"`
	Room             string            `json:"room,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// SameDate compares calendar dates ignoring the time-of-day component.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

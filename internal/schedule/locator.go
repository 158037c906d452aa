package schedule

import (
	"time"

	"github.com/centrovital/agenda-api/internal/model"
)

// FindAppointment returns the appointment occupying the (date, time) cell, or
// nil. Matching keys on the exact calendar date — never on weekday alone, so
// appointments from adjacent weeks can't collide into the same column — and
// then on the duration span, so a 90-minute session claims all three of its
// 30-minute cells. First match wins; double occupation is prevented upstream
// by the permission deriver refusing to schedule into a taken cell.
func FindAppointment(appointments []*model.Appointment, date time.Time, hhmm string) *model.Appointment {
	for _, apt := range appointments {
		if apt == nil || apt.Status == model.StatusCancelled {
			continue
		}
		if !model.SameDate(apt.Date, date) {
			continue
		}
		within, err := CellWithinAppointment(hhmm, apt)
		if err != nil {
			// malformed times on a record make it unlocatable, not fatal
			continue
		}
		if within {
			return apt
		}
	}
	return nil
}

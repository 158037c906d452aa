package schedule

import (
	"fmt"

	"github.com/centrovital/agenda-api/internal/model"
)

// DefaultDuration is assumed when an appointment carries neither an end time
// nor an explicit duration.
const DefaultDuration = 60

// ParseError reports a malformed "HH:MM" string. Callers at the boundary
// catch it and render the affected cell as unavailable instead of failing
// the whole grid.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid time %q, expected HH:MM", e.Input)
}

// ToMinutes parses "HH:MM" into minutes since midnight.
func ToMinutes(hhmm string) (int, error) {
	if len(hhmm) != 5 || hhmm[2] != ':' {
		return 0, &ParseError{Input: hhmm}
	}
	h, ok1 := atoi2(hhmm[0], hhmm[1])
	m, ok2 := atoi2(hhmm[3], hhmm[4])
	if !ok1 || !ok2 || h > 23 || m > 59 {
		return 0, &ParseError{Input: hhmm}
	}
	return h*60 + m, nil
}

func atoi2(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}

// FromMinutes formats minutes since midnight as "HH:MM". Values beyond the
// end of the day clamp to "24:00"; negative values clamp to "00:00".
func FromMinutes(mins int) string {
	if mins < 0 {
		mins = 0
	}
	if mins > 24*60 {
		mins = 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}

// AddMinutes computes an end time from a start time and a duration in
// minutes. Results past midnight clamp to "24:00" rather than wrapping, so
// an appointment can never leak into the next day's cells.
func AddMinutes(hhmm string, duration int) (string, error) {
	start, err := ToMinutes(hhmm)
	if err != nil {
		return "", err
	}
	return FromMinutes(start + duration), nil
}

// RangesOverlap reports whether the half-open intervals [startA, endA) and
// [startB, endB) intersect. Times are minutes since midnight.
func RangesOverlap(startA, endA, startB, endB int) bool {
	return startA < endB && startB < endA
}

// appointmentSpan returns the [start, end) minute range an appointment
// occupies. EndTime wins when present; otherwise start+duration, with
// duration defaulting to DefaultDuration.
func appointmentSpan(apt *model.Appointment) (int, int, error) {
	start, err := ToMinutes(apt.StartTime)
	if err != nil {
		return 0, 0, err
	}
	if apt.EndTime != "" {
		end, err := ToMinutes(apt.EndTime)
		if err == nil {
			return start, end, nil
		}
		// fall through to the duration path on a malformed end time
	}
	dur := apt.Duration
	if dur <= 0 {
		dur = DefaultDuration
	}
	end := start + dur
	if end > 24*60 {
		end = 24 * 60
	}
	return start, end, nil
}

// CellWithinAppointment reports whether a grid cell at cellTime falls inside
// the appointment's span. The end is exclusive: a 90-minute appointment at
// 09:00 covers the 09:00 and 09:30 cells but not 10:00.
func CellWithinAppointment(cellTime string, apt *model.Appointment) (bool, error) {
	cell, err := ToMinutes(cellTime)
	if err != nil {
		return false, err
	}
	start, end, err := appointmentSpan(apt)
	if err != nil {
		return false, err
	}
	return cell >= start && cell < end, nil
}

package schedule

import (
	"time"

	"github.com/google/uuid"

	"github.com/centrovital/agenda-api/internal/model"
)

// Scope identifies the cell being evaluated: which professional's column it
// belongs to and, when known, the physical location/room of the session.
type Scope struct {
	ProfessionalID uuid.UUID
	Location       string
	Room           string
}

// BlockStatus is the resolver output for one cell.
type BlockStatus struct {
	Blocked bool `json:"blocked"`
	Global  bool `json:"global"`
}

// BlockPredicate is one blocking rule's matching behavior. The four variants
// (global, professional, location, room) share date/time matching and differ
// only in scope.
type BlockPredicate interface {
	AppliesToDate(date time.Time) bool
	AppliesToTime(hhmm string) bool
	AppliesToScope(scope Scope) bool
	Global() bool
}

// PredicateFor wraps a block rule in its type's predicate. Unknown block
// types never match.
func PredicateFor(b *model.Block) BlockPredicate {
	base := blockRule{block: b}
	switch b.Type {
	case model.BlockGlobal:
		return globalBlock{base}
	case model.BlockProfessional:
		return professionalBlock{base}
	case model.BlockLocation:
		return locationBlock{base}
	case model.BlockRoom:
		return roomBlock{base}
	}
	return neverBlock{}
}

// ResolveBlock evaluates every active rule against one (date, time, scope)
// cell. Matching is a plain OR: any applicable rule blocks the cell, and the
// global flag ORs independently so a scoped and a global rule can both
// surface.
func ResolveBlock(blocks []*model.Block, date time.Time, hhmm string, scope Scope) BlockStatus {
	var status BlockStatus
	for _, b := range blocks {
		if b == nil || !b.Active {
			continue
		}
		p := PredicateFor(b)
		if !p.AppliesToDate(date) || !p.AppliesToTime(hhmm) || !p.AppliesToScope(scope) {
			continue
		}
		status.Blocked = true
		if p.Global() {
			status.Global = true
		}
	}
	return status
}

type blockRule struct {
	block *model.Block
}

func (r blockRule) Global() bool { return false }

// AppliesToDate matches a single date, a [start, end] date range, or a
// recurrence pattern, in that order of precedence.
func (r blockRule) AppliesToDate(date time.Time) bool {
	b := r.block
	if b.Date != nil {
		return model.SameDate(*b.Date, date)
	}
	if b.StartDate != nil && b.EndDate != nil {
		d := dateOnly(date)
		return !d.Before(dateOnly(*b.StartDate)) && !d.After(dateOnly(*b.EndDate))
	}
	if b.Recurrence != nil {
		return matchesRecurrence(b, date)
	}
	return false
}

func (r blockRule) AppliesToTime(hhmm string) bool {
	b := r.block
	if b.AllDay {
		return true
	}
	cell, err := ToMinutes(hhmm)
	if err != nil {
		return false
	}
	start, err := ToMinutes(b.StartTime)
	if err != nil {
		return false
	}
	end, err := ToMinutes(b.EndTime)
	if err != nil {
		return false
	}
	// window is [start, end)
	return cell >= start && cell < end
}

type globalBlock struct{ blockRule }

func (globalBlock) AppliesToScope(Scope) bool { return true }
func (globalBlock) Global() bool              { return true }

type professionalBlock struct{ blockRule }

func (p professionalBlock) AppliesToScope(scope Scope) bool {
	return p.block.ProfessionalID != nil &&
		scope.ProfessionalID != uuid.Nil &&
		*p.block.ProfessionalID == scope.ProfessionalID
}

type locationBlock struct{ blockRule }

func (l locationBlock) AppliesToScope(scope Scope) bool {
	return l.block.Location != "" && l.block.Location == scope.Location
}

type roomBlock struct{ blockRule }

func (r roomBlock) AppliesToScope(scope Scope) bool {
	if r.block.Room == "" || r.block.Room != scope.Room {
		return false
	}
	// an optional location qualifier keeps same-named rooms at different
	// locations distinct
	return r.block.Location == "" || r.block.Location == scope.Location
}

type neverBlock struct{}

func (neverBlock) AppliesToDate(time.Time) bool { return false }
func (neverBlock) AppliesToTime(string) bool    { return false }
func (neverBlock) AppliesToScope(Scope) bool    { return false }
func (neverBlock) Global() bool                 { return false }

// matchesRecurrence checks a recurring pattern against a concrete date.
// The pattern's phase is anchored on the rule's StartDate (or Date); without
// an anchor the interval degenerates to 1.
func matchesRecurrence(b *model.Block, date time.Time) bool {
	rec := b.Recurrence
	interval := rec.Interval
	if interval < 1 {
		interval = 1
	}

	d := dateOnly(date)
	var anchor *time.Time
	if b.StartDate != nil {
		anchor = b.StartDate
	} else if b.Date != nil {
		anchor = b.Date
	}
	if anchor != nil {
		a := dateOnly(*anchor)
		if d.Before(a) {
			return false
		}
	}
	if rec.EndDate != nil && d.After(dateOnly(*rec.EndDate)) {
		return false
	}

	switch rec.Frequency {
	case model.FreqDaily:
		if anchor == nil || interval == 1 {
			return true
		}
		return daysBetween(dateOnly(*anchor), d)%interval == 0

	case model.FreqWeekly:
		if len(rec.DaysOfWeek) > 0 && !containsInt(rec.DaysOfWeek, mondayIndex(d.Weekday())) {
			return false
		}
		if anchor == nil || interval == 1 {
			return true
		}
		weeks := daysBetween(weekStart(dateOnly(*anchor)), weekStart(d)) / 7
		return weeks%interval == 0

	case model.FreqMonthly:
		if rec.DayOfMonth > 0 && d.Day() != rec.DayOfMonth {
			return false
		}
		if anchor == nil || interval == 1 {
			return true
		}
		a := dateOnly(*anchor)
		months := (d.Year()-a.Year())*12 + int(d.Month()) - int(a.Month())
		return months >= 0 && months%interval == 0
	}
	return false
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// mondayIndex converts time.Weekday (Sunday=0) to the grid convention
// Monday=0 .. Sunday=6.
func mondayIndex(w time.Weekday) int {
	if w == time.Sunday {
		return 6
	}
	return int(w) - 1
}

// weekStart returns the Monday of the date's week.
func weekStart(d time.Time) time.Time {
	return d.AddDate(0, 0, -mondayIndex(d.Weekday()))
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

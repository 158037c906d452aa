package schedule

import (
	"errors"
	"testing"

	"github.com/centrovital/agenda-api/internal/model"
)

func TestToMinutes(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"00:00", 0},
		{"08:00", 480},
		{"20:30", 1230},
		{"23:59", 1439},
	}
	for _, c := range cases {
		got, err := ToMinutes(c.in)
		if err != nil {
			t.Fatalf("ToMinutes(%q): unexpected error %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("ToMinutes(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestToMinutes_Malformed(t *testing.T) {
	for _, in := range []string{"", "8:00", "24:00", "12:60", "ab:cd", "12-30", "12:3"} {
		_, err := ToMinutes(in)
		if err == nil {
			t.Fatalf("ToMinutes(%q): expected error, got nil", in)
		}
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("ToMinutes(%q): expected *ParseError, got %T", in, err)
		}
	}
}

func TestAddMinutes(t *testing.T) {
	got, err := AddMinutes("09:00", 90)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "10:30" {
		t.Fatalf("AddMinutes(09:00, 90) = %q, want 10:30", got)
	}
}

func TestAddMinutes_ClampsAtMidnight(t *testing.T) {
	got, err := AddMinutes("23:30", 90)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "24:00" {
		t.Fatalf("AddMinutes(23:30, 90) = %q, want clamp to 24:00", got)
	}
}

func TestRangesOverlap(t *testing.T) {
	cases := []struct {
		name                           string
		startA, endA, startB, endB int
		want                           bool
	}{
		{"disjoint", 480, 540, 540, 600, false}, // touching ends don't overlap
		{"contained", 480, 600, 510, 540, true},
		{"partial", 480, 540, 510, 600, true},
		{"identical", 480, 540, 480, 540, true},
		{"disjoint far", 480, 510, 600, 630, false},
	}
	for _, c := range cases {
		if got := RangesOverlap(c.startA, c.endA, c.startB, c.endB); got != c.want {
			t.Fatalf("%s: RangesOverlap = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestCellWithinAppointment_NinetyMinutes(t *testing.T) {
	apt := &model.Appointment{StartTime: "09:00", Duration: 90}

	for _, c := range []struct {
		cell string
		want bool
	}{
		{"08:30", false},
		{"09:00", true},
		{"09:30", true},
		{"10:00", false}, // end is exclusive
	} {
		got, err := CellWithinAppointment(c.cell, apt)
		if err != nil {
			t.Fatalf("cell %s: unexpected error %v", c.cell, err)
		}
		if got != c.want {
			t.Fatalf("cell %s: got %v, want %v", c.cell, got, c.want)
		}
	}
}

func TestCellWithinAppointment_EndTimeWins(t *testing.T) {
	apt := &model.Appointment{StartTime: "10:00", EndTime: "11:00", Duration: 30}

	got, err := CellWithinAppointment("10:30", apt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got {
		t.Fatalf("expected 10:30 inside 10:00-11:00 even with duration=30")
	}
}

func TestCellWithinAppointment_DefaultDuration(t *testing.T) {
	apt := &model.Appointment{StartTime: "10:00"} // no end, no duration -> 60 min

	in, err := CellWithinAppointment("10:30", apt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !in {
		t.Fatalf("expected 10:30 inside default 60-minute span")
	}
	out, err := CellWithinAppointment("11:00", apt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out {
		t.Fatalf("expected 11:00 outside default 60-minute span")
	}
}

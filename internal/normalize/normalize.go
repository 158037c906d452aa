// Package normalize converts upstream API payloads into the internal model.
// The legacy surface speaks Spanish (fecha/hora/estado), the newer one English
// (date/startTime/status); both funnel into one shape here so nothing past
// this boundary cares which endpoint a record came from.
package normalize

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/centrovital/agenda-api/internal/model"
)

const dateLayout = "2006-01-02"

type Decoder struct {
	logger *zap.Logger
}

func NewDecoder(logger *zap.Logger) *Decoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Decoder{logger: logger}
}

// rawRef is a student/professional reference: either an object with id and
// name (English or Spanish keys) or a bare id string.
type rawRef struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Nombre string `json:"nombre"`
}

func (r *rawRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		r.ID = id
		return nil
	}
	type alias rawRef
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*r = rawRef(a)
	return nil
}

func (r rawRef) name() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Nombre
}

type rawAppointment struct {
	ID string `json:"id"`

	Date  string `json:"date"`
	Fecha string `json:"fecha"`

	StartTime string `json:"startTime"`
	Hora      string `json:"hora"`
	EndTime   string `json:"endTime"`
	HoraFin   string `json:"horaFin"`

	Duration int `json:"duration"`
	Duracion int `json:"duracion"`

	Student     rawRef `json:"student"`
	Estudiante  rawRef `json:"estudiante"`
	Profesional rawRef `json:"profesional"`
	Pro         rawRef `json:"professional"`

	Type   string `json:"type"`
	Tipo   string `json:"tipo"`
	Title  string `json:"title"`
	Titulo string `json:"titulo"`

	Status string `json:"status"`
	Estado string `json:"estado"`

	Location string `json:"location"`
	Sede     string `json:"sede"`
	Room     string `json:"room"`
	Sala     string `json:"sala"`
}

var statusAliases = map[string]model.AppointmentStatus{
	"scheduled":  model.StatusScheduled,
	"programada": model.StatusScheduled,
	"completed":  model.StatusCompleted,
	"completada": model.StatusCompleted,
	"cancelled":  model.StatusCancelled,
	"cancelada":  model.StatusCancelled,
	"no-show":    model.StatusNoShow,
	"no-asistio": model.StatusNoShow,
}

// DecodeAppointments parses an upstream appointment collection. A non-array
// payload degrades to an empty slice with a warning instead of an error, and
// individually malformed records are skipped, so one bad record never takes
// the calendar down.
func (d *Decoder) DecodeAppointments(data []byte) []*model.Appointment {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		d.logger.Warn("appointment payload is not an array, coercing to empty",
			zap.Error(err))
		return []*model.Appointment{}
	}

	out := make([]*model.Appointment, 0, len(raws))
	for i, raw := range raws {
		apt, err := d.decodeAppointment(raw)
		if err != nil {
			d.logger.Warn("skipping malformed appointment record",
				zap.Int("index", i), zap.Error(err))
			continue
		}
		out = append(out, apt)
	}
	return out
}

func (d *Decoder) decodeAppointment(raw json.RawMessage) (*model.Appointment, error) {
	var r rawAppointment
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}

	date, err := parseDate(coalesce(r.Date, r.Fecha))
	if err != nil {
		return nil, err
	}

	apt := &model.Appointment{
		Date:      date,
		StartTime: coalesce(r.StartTime, r.Hora),
		EndTime:   coalesce(r.EndTime, r.HoraFin),
		Duration:  coalesceInt(r.Duration, r.Duracion),
		Type:      model.SessionType(coalesce(r.Type, r.Tipo)),
		Title:     coalesce(r.Title, r.Titulo),
		Location:  coalesce(r.Location, r.Sede),
		Room:      coalesce(r.Room, r.Sala),
	}
	apt.ID = parseID(r.ID)

	student := pickRef(r.Student, r.Estudiante)
	apt.StudentID = parseID(student.ID)
	apt.StudentName = student.name()

	pro := pickRef(r.Pro, r.Profesional)
	apt.ProfessionalID = parseID(pro.ID)
	apt.ProfessionalName = pro.name()

	status, ok := statusAliases[coalesce(r.Status, r.Estado)]
	if !ok {
		status = model.StatusScheduled
	}
	apt.Status = status

	return apt, nil
}

type rawRecurrence struct {
	Frequency  string `json:"frequency"`
	Frecuencia string `json:"frecuencia"`
	Interval   int    `json:"interval"`
	Intervalo  int    `json:"intervalo"`
	DaysOfWeek []int  `json:"daysOfWeek"`
	DiasSemana []int  `json:"diasSemana"`
	DayOfMonth int    `json:"dayOfMonth"`
	DiaMes     int    `json:"diaMes"`
	EndDate    string `json:"endDate"`
	FechaFin   string `json:"fechaFin"`
}

type rawBlock struct {
	ID string `json:"id"`

	Type string `json:"type"`
	Tipo string `json:"tipo"`

	Date  string `json:"date"`
	Fecha string `json:"fecha"`

	StartDate   string `json:"startDate"`
	FechaInicio string `json:"fechaInicio"`
	EndDate     string `json:"endDate"`
	FechaFin    string `json:"fechaFin"`

	Recurrence  *rawRecurrence `json:"recurrence"`
	Recurrencia *rawRecurrence `json:"recurrencia"`

	AllDay    *bool `json:"allDay"`
	TodoElDia *bool `json:"todoElDia"`

	StartTime  string `json:"startTime"`
	HoraInicio string `json:"horaInicio"`
	EndTime    string `json:"endTime"`
	HoraFin    string `json:"horaFin"`

	ProfessionalID string `json:"professionalId"`
	ProfesionalID  string `json:"profesionalId"`

	Location string `json:"location"`
	Sede     string `json:"sede"`
	Room     string `json:"room"`
	Sala     string `json:"sala"`

	Reason string `json:"reason"`
	Motivo string `json:"motivo"`

	Active *bool `json:"active"`
	Activo *bool `json:"activo"`
}

var typeAliases = map[string]model.BlockType{
	"global":       model.BlockGlobal,
	"professional": model.BlockProfessional,
	"profesional":  model.BlockProfessional,
	"location":     model.BlockLocation,
	"sede":         model.BlockLocation,
	"room":         model.BlockRoom,
	"sala":         model.BlockRoom,
}

var frequencyAliases = map[string]model.Frequency{
	"daily":    model.FreqDaily,
	"diaria":   model.FreqDaily,
	"weekly":   model.FreqWeekly,
	"semanal":  model.FreqWeekly,
	"monthly":  model.FreqMonthly,
	"mensual":  model.FreqMonthly,
}

// DecodeBlocks parses an upstream blocking-rule collection with the same
// degradation rules as DecodeAppointments.
func (d *Decoder) DecodeBlocks(data []byte) []*model.Block {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		d.logger.Warn("block payload is not an array, coercing to empty",
			zap.Error(err))
		return []*model.Block{}
	}

	out := make([]*model.Block, 0, len(raws))
	for i, raw := range raws {
		blk, err := d.decodeBlock(raw)
		if err != nil {
			d.logger.Warn("skipping malformed block record",
				zap.Int("index", i), zap.Error(err))
			continue
		}
		out = append(out, blk)
	}
	return out
}

func (d *Decoder) decodeBlock(raw json.RawMessage) (*model.Block, error) {
	var r rawBlock
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}

	blk := &model.Block{
		Type:      typeAliases[coalesce(r.Type, r.Tipo)],
		StartTime: coalesce(r.StartTime, r.HoraInicio),
		EndTime:   coalesce(r.EndTime, r.HoraFin),
		Location:  coalesce(r.Location, r.Sede),
		Room:      coalesce(r.Room, r.Sala),
		Reason:    coalesce(r.Reason, r.Motivo),
	}
	blk.ID = parseID(r.ID)

	if blk.Type == "" {
		blk.Type = model.BlockType(coalesce(r.Type, r.Tipo))
	}

	if s := coalesce(r.Date, r.Fecha); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return nil, err
		}
		blk.Date = &t
	}
	if s := coalesce(r.StartDate, r.FechaInicio); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return nil, err
		}
		blk.StartDate = &t
	}
	if s := coalesce(r.EndDate, r.FechaFin); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return nil, err
		}
		blk.EndDate = &t
	}

	if rec := pickRecurrence(r.Recurrence, r.Recurrencia); rec != nil {
		m := &model.Recurrence{
			Frequency:  frequencyAliases[coalesce(rec.Frequency, rec.Frecuencia)],
			Interval:   coalesceInt(rec.Interval, rec.Intervalo),
			DayOfMonth: coalesceInt(rec.DayOfMonth, rec.DiaMes),
		}
		if len(rec.DaysOfWeek) > 0 {
			m.DaysOfWeek = rec.DaysOfWeek
		} else {
			m.DaysOfWeek = rec.DiasSemana
		}
		if s := coalesce(rec.EndDate, rec.FechaFin); s != "" {
			t, err := parseDate(s)
			if err != nil {
				return nil, err
			}
			m.EndDate = &t
		}
		blk.Recurrence = m
	}

	if id := coalesce(r.ProfessionalID, r.ProfesionalID); id != "" {
		pid := parseID(id)
		blk.ProfessionalID = &pid
	}

	blk.AllDay = boolOr(r.AllDay, r.TodoElDia, false)
	// absent active flag means the rule is live
	blk.Active = boolOr(r.Active, r.Activo, true)

	return blk, nil
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// parseID tolerates non-UUID ids from legacy surfaces by mapping them to the
// nil UUID; display still works, ownership checks simply never match.
func parseID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func coalesce(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func coalesceInt(a, b int) int {
	if a != 0 {
		return a
	}
	return b
}

func pickRef(a, b rawRef) rawRef {
	if a.ID != "" || a.name() != "" {
		return a
	}
	return b
}

func pickRecurrence(a, b *rawRecurrence) *rawRecurrence {
	if a != nil {
		return a
	}
	return b
}

func boolOr(a, b *bool, def bool) bool {
	if a != nil {
		return *a
	}
	if b != nil {
		return *b
	}
	return def
}

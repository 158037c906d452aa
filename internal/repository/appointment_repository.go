package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/centrovital/agenda-api/internal/model"
)

const appointmentColumns = `
	a.id, a.date, a.start_time, a.end_time, a.duration,
	a.student_id, s.name, a.professional_id, p.name,
	a.type, a.title, a.status, a.location, a.room,
	a.created_at, a.updated_at
`

type AppointmentRepository struct {
	pool *pgxpool.Pool
}

func NewAppointmentRepository(pool *pgxpool.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

func (r *AppointmentRepository) Create(ctx context.Context, apt *model.Appointment) error {
	query := `
		INSERT INTO appointments
			(id, date, start_time, end_time, duration, student_id, professional_id,
			 type, title, status, location, room)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`

	if apt.ID == uuid.Nil {
		apt.ID = uuid.New()
	}

	err := r.pool.QueryRow(
		ctx, query,
		apt.ID,
		apt.Date,
		apt.StartTime,
		apt.EndTime,
		apt.Duration,
		apt.StudentID,
		apt.ProfessionalID,
		apt.Type,
		apt.Title,
		apt.Status,
		apt.Location,
		apt.Room,
	).Scan(&apt.CreatedAt, &apt.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}

	return nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments a
		JOIN users s ON s.id = a.student_id
		JOIN users p ON p.id = a.professional_id
		WHERE a.id = $1
	`

	apt, err := r.scanOne(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get appointment by id: %w", err)
	}
	return apt, nil
}

// ListByDateRange returns appointments with date in [from, to], all statuses,
// ordered by date and start time.
func (r *AppointmentRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments a
		JOIN users s ON s.id = a.student_id
		JOIN users p ON p.id = a.professional_id
		WHERE a.date >= $1 AND a.date <= $2
		ORDER BY a.date, a.start_time
	`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	return r.scanAll(rows)
}

// FindOverlapping returns the professional's non-terminal appointments on a
// date whose [start, end) minute span intersects the given one. Used as the
// authoritative server-side double-booking check.
func (r *AppointmentRepository) FindOverlapping(ctx context.Context, professionalID uuid.UUID, date time.Time, startMin, endMin int) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments a
		JOIN users s ON s.id = a.student_id
		JOIN users p ON p.id = a.professional_id
		WHERE a.professional_id = $1
		  AND a.date = $2
		  AND a.status = 'scheduled'
		  AND a.start_min < $4
		  AND a.end_min > $3
	`

	rows, err := r.pool.Query(ctx, query, professionalID, date, startMin, endMin)
	if err != nil {
		return nil, fmt.Errorf("find overlapping appointments: %w", err)
	}
	defer rows.Close()

	return r.scanAll(rows)
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	query := `
		UPDATE appointments
		SET status = $2, updated_at = now()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update appointment status: not found")
	}

	return nil
}

// UpdateSchedule moves an appointment to a new date/time window.
func (r *AppointmentRepository) UpdateSchedule(ctx context.Context, id uuid.UUID, date time.Time, startTime, endTime string, duration int) error {
	query := `
		UPDATE appointments
		SET date = $2, start_time = $3, end_time = $4, duration = $5, updated_at = now()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, date, startTime, endTime, duration)
	if err != nil {
		return fmt.Errorf("reschedule appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("reschedule appointment: not found")
	}

	return nil
}

// Delete hard-removes a record. Cancellation is a status change; this exists
// only for the admin-managed destructive path.
func (r *AppointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete appointment: not found")
	}

	return nil
}

func (r *AppointmentRepository) scanOne(row pgx.Row) (*model.Appointment, error) {
	var apt model.Appointment
	err := row.Scan(
		&apt.ID,
		&apt.Date,
		&apt.StartTime,
		&apt.EndTime,
		&apt.Duration,
		&apt.StudentID,
		&apt.StudentName,
		&apt.ProfessionalID,
		&apt.ProfessionalName,
		&apt.Type,
		&apt.Title,
		&apt.Status,
		&apt.Location,
		&apt.Room,
		&apt.CreatedAt,
		&apt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &apt, nil
}

func (r *AppointmentRepository) scanAll(rows pgx.Rows) ([]*model.Appointment, error) {
	var appts []*model.Appointment
	for rows.Next() {
		apt, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appts = append(appts, apt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate appointments: %w", err)
	}
	return appts, nil
}

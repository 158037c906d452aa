package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/centrovital/agenda-api/internal/model"
)

type PlanRepository struct {
	pool *pgxpool.Pool
}

func NewPlanRepository(pool *pgxpool.Pool) *PlanRepository {
	return &PlanRepository{pool: pool}
}

func (r *PlanRepository) Create(ctx context.Context, plan *model.PlanUsage) error {
	query := `
		INSERT INTO plans (id, student_id, plan_name, total_classes, used_classes,
		                   classes_per_week, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING updated_at
	`

	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}

	err := r.pool.QueryRow(
		ctx, query,
		plan.ID,
		plan.StudentID,
		plan.PlanName,
		plan.TotalClasses,
		plan.UsedClasses,
		plan.ClassesPerWeek,
		plan.ExpiresAt,
	).Scan(&plan.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create plan: %w", err)
	}

	return nil
}

func (r *PlanRepository) GetByStudent(ctx context.Context, studentID uuid.UUID) (*model.PlanUsage, error) {
	query := `
		SELECT id, student_id, plan_name, total_classes, used_classes,
		       classes_per_week, expires_at, updated_at
		FROM plans
		WHERE student_id = $1
		ORDER BY expires_at DESC
		LIMIT 1
	`

	var plan model.PlanUsage
	err := r.pool.QueryRow(ctx, query, studentID).Scan(
		&plan.ID,
		&plan.StudentID,
		&plan.PlanName,
		&plan.TotalClasses,
		&plan.UsedClasses,
		&plan.ClassesPerWeek,
		&plan.ExpiresAt,
		&plan.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get plan by student: %w", err)
	}

	return &plan, nil
}

// ConsumeClass decrements the student's remaining quota by incrementing
// used_classes, guarded in SQL so the counter can never pass total_classes
// even under concurrent bookings.
func (r *PlanRepository) ConsumeClass(ctx context.Context, studentID uuid.UUID) error {
	query := `
		UPDATE plans
		SET used_classes = used_classes + 1, updated_at = now()
		WHERE student_id = $1
		  AND used_classes < total_classes
		  AND expires_at > now()
	`

	tag, err := r.pool.Exec(ctx, query, studentID)
	if err != nil {
		return fmt.Errorf("consume class: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("consume class: no remaining quota")
	}

	return nil
}

// RefundClass gives a consumed class back, compensating a booking that
// failed after the quota was already decremented. Guarded so the counter
// never drops below zero.
func (r *PlanRepository) RefundClass(ctx context.Context, studentID uuid.UUID) error {
	query := `
		UPDATE plans
		SET used_classes = used_classes - 1, updated_at = now()
		WHERE id = (
			SELECT id FROM plans
			WHERE student_id = $1 AND used_classes > 0
			ORDER BY expires_at DESC
			LIMIT 1
		)
	`

	tag, err := r.pool.Exec(ctx, query, studentID)
	if err != nil {
		return fmt.Errorf("refund class: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("refund class: nothing to refund")
	}

	return nil
}

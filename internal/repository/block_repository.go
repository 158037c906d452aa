package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/centrovital/agenda-api/internal/model"
)

type BlockRepository struct {
	pool *pgxpool.Pool
}

func NewBlockRepository(pool *pgxpool.Pool) *BlockRepository {
	return &BlockRepository{pool: pool}
}

func (r *BlockRepository) Create(ctx context.Context, block *model.Block) error {
	query := `
		INSERT INTO blocked_times
			(id, type, date, start_date, end_date, recurrence, all_day,
			 start_time, end_time, professional_id, location, room, reason, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at
	`

	if block.ID == uuid.Nil {
		block.ID = uuid.New()
	}

	recurrence, err := marshalRecurrence(block.Recurrence)
	if err != nil {
		return err
	}

	err = r.pool.QueryRow(
		ctx, query,
		block.ID,
		block.Type,
		block.Date,
		block.StartDate,
		block.EndDate,
		recurrence,
		block.AllDay,
		block.StartTime,
		block.EndTime,
		block.ProfessionalID,
		block.Location,
		block.Room,
		block.Reason,
		block.Active,
	).Scan(&block.CreatedAt)

	if err != nil {
		return fmt.Errorf("create block: %w", err)
	}

	return nil
}

func (r *BlockRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Block, error) {
	query := `
		SELECT id, type, date, start_date, end_date, recurrence, all_day,
		       start_time, end_time, professional_id, location, room, reason,
		       active, created_at
		FROM blocked_times
		WHERE id = $1
	`

	block, err := scanBlock(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get block by id: %w", err)
	}
	return block, nil
}

// ListActive returns every active blocking rule. The resolver decides date
// applicability, so recurring rules are always fetched; the volume is small
// (an admin-curated rule set, not per-slot data).
func (r *BlockRepository) ListActive(ctx context.Context) ([]*model.Block, error) {
	return r.list(ctx, `
		SELECT id, type, date, start_date, end_date, recurrence, all_day,
		       start_time, end_time, professional_id, location, room, reason,
		       active, created_at
		FROM blocked_times
		WHERE active = true
		ORDER BY created_at
	`)
}

// ListAll returns every rule including inactive ones, for the admin screen.
func (r *BlockRepository) ListAll(ctx context.Context) ([]*model.Block, error) {
	return r.list(ctx, `
		SELECT id, type, date, start_date, end_date, recurrence, all_day,
		       start_time, end_time, professional_id, location, room, reason,
		       active, created_at
		FROM blocked_times
		ORDER BY created_at
	`)
}

func (r *BlockRepository) list(ctx context.Context, query string) ([]*model.Block, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	defer rows.Close()

	var blocks []*model.Block
	for rows.Next() {
		block, err := scanBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		blocks = append(blocks, block)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}

	return blocks, nil
}

// SetActive toggles the soft on/off switch without deleting the rule.
func (r *BlockRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE blocked_times SET active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set block active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set block active: not found")
	}

	return nil
}

func (r *BlockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM blocked_times WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete block: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete block: not found")
	}

	return nil
}

func marshalRecurrence(rec *model.Recurrence) ([]byte, error) {
	if rec == nil {
		return nil, nil
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal recurrence: %w", err)
	}
	return data, nil
}

func scanBlock(row pgx.Row) (*model.Block, error) {
	var block model.Block
	var recurrence []byte

	err := row.Scan(
		&block.ID,
		&block.Type,
		&block.Date,
		&block.StartDate,
		&block.EndDate,
		&recurrence,
		&block.AllDay,
		&block.StartTime,
		&block.EndTime,
		&block.ProfessionalID,
		&block.Location,
		&block.Room,
		&block.Reason,
		&block.Active,
		&block.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(recurrence) > 0 {
		var rec model.Recurrence
		if err := json.Unmarshal(recurrence, &rec); err != nil {
			return nil, fmt.Errorf("unmarshal recurrence: %w", err)
		}
		block.Recurrence = &rec
	}

	return &block, nil
}

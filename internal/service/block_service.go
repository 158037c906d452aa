package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/centrovital/agenda-api/internal/model"
	"github.com/centrovital/agenda-api/internal/schedule"
)

var (
	ErrBlockNotFound  = errors.New("block not found")
	ErrInvalidScoping = errors.New("scoping field does not match block type")
	ErrInvalidWindow  = errors.New("block needs all_day or a valid time window")
	ErrInvalidDates   = errors.New("block needs a date, a date range, or a recurrence")
)

type BlockStore interface {
	Create(ctx context.Context, block *model.Block) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Block, error)
	ListActive(ctx context.Context) ([]*model.Block, error)
	ListAll(ctx context.Context) ([]*model.Block, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// BlockService manages blocking rules. Every mutation is admin-only; the
// controller enforces the role before calling in, and the service re-checks.
type BlockService struct {
	blocks BlockStore
	logger *zap.Logger
}

func NewBlockService(blocks BlockStore, logger *zap.Logger) *BlockService {
	return &BlockService{blocks: blocks, logger: logger}
}

func (s *BlockService) Create(ctx context.Context, block *model.Block, viewer Viewer) (*model.Block, error) {
	if viewer.Role != model.RoleAdmin {
		return nil, ErrForbidden
	}
	if !block.ValidScope() {
		return nil, ErrInvalidScoping
	}
	if err := validateWindow(block); err != nil {
		return nil, err
	}
	// exactly one form: single date, date range, or recurrence; the resolver
	// checks them in that order, so a mixed rule would silently ignore the
	// weaker form
	single := block.Date != nil
	ranged := block.StartDate != nil && block.EndDate != nil
	recurring := block.Recurrence != nil
	switch {
	case single && (ranged || recurring):
		return nil, ErrInvalidDates
	case ranged && recurring:
		return nil, ErrInvalidDates
	case !single && !ranged && !recurring:
		return nil, ErrInvalidDates
	}
	// a recurrence needs an anchor date for its interval phase
	if recurring && block.StartDate == nil {
		return nil, ErrInvalidDates
	}

	if err := s.blocks.Create(ctx, block); err != nil {
		return nil, err
	}

	s.logger.Info("block created",
		zap.String("block_id", block.ID.String()),
		zap.String("type", string(block.Type)),
		zap.Bool("all_day", block.AllDay))

	return block, nil
}

func validateWindow(block *model.Block) error {
	if block.AllDay {
		return nil
	}
	start, err := schedule.ToMinutes(block.StartTime)
	if err != nil {
		return err
	}
	end, err := schedule.ToMinutes(block.EndTime)
	if err != nil {
		return err
	}
	if end <= start {
		return ErrInvalidWindow
	}
	return nil
}

// List returns all rules for admins and only the active set for everyone
// else; non-admins see blocks through the grid anyway.
func (s *BlockService) List(ctx context.Context, viewer Viewer) ([]*model.Block, error) {
	if viewer.Role == model.RoleAdmin {
		return s.blocks.ListAll(ctx)
	}
	return s.blocks.ListActive(ctx)
}

// SetActive toggles a rule without deleting it.
func (s *BlockService) SetActive(ctx context.Context, id uuid.UUID, active bool, viewer Viewer) error {
	if viewer.Role != model.RoleAdmin {
		return ErrForbidden
	}
	blk, err := s.blocks.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if blk == nil {
		return ErrBlockNotFound
	}
	return s.blocks.SetActive(ctx, id, active)
}

func (s *BlockService) Delete(ctx context.Context, id uuid.UUID, viewer Viewer) error {
	if viewer.Role != model.RoleAdmin {
		return ErrForbidden
	}
	blk, err := s.blocks.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if blk == nil {
		return ErrBlockNotFound
	}

	if err := s.blocks.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("block deleted", zap.String("block_id", id.String()))
	return nil
}

package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/centrovital/agenda-api/internal/model"
	"github.com/centrovital/agenda-api/internal/normalize"
	"github.com/centrovital/agenda-api/internal/schedule"
)

// ImportReport summarizes one bulk import: how many records the payload
// decoded to, how many were stored, and how many were dropped on the way.
type ImportReport struct {
	Decoded  int `json:"decoded"`
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ImportService loads legacy exports (Spanish or English field names) into
// the database. Admin-only; the decoder already drops malformed records, so
// this layer only re-checks domain invariants before insert.
type ImportService struct {
	appointments AppointmentStore
	blocks       BlockStore
	decoder      *normalize.Decoder
	logger       *zap.Logger
}

func NewImportService(
	appointments AppointmentStore,
	blocks BlockStore,
	decoder *normalize.Decoder,
	logger *zap.Logger,
) *ImportService {
	return &ImportService{
		appointments: appointments,
		blocks:       blocks,
		decoder:      decoder,
		logger:       logger,
	}
}

// ImportAppointments decodes and stores an appointment collection. Records
// with an unparseable start time are skipped, the rest import as they came.
func (s *ImportService) ImportAppointments(ctx context.Context, payload []byte, viewer Viewer) (*ImportReport, error) {
	if viewer.Role != model.RoleAdmin {
		return nil, ErrForbidden
	}

	decoded := s.decoder.DecodeAppointments(payload)
	report := &ImportReport{Decoded: len(decoded)}

	for _, apt := range decoded {
		if _, err := schedule.ToMinutes(apt.StartTime); err != nil {
			s.logger.Warn("skipping appointment with bad start time",
				zap.String("start_time", apt.StartTime))
			report.Skipped++
			continue
		}
		// legacy ids that failed to parse come through as the nil UUID and
		// cannot reference a user row
		if apt.StudentID == uuid.Nil || apt.ProfessionalID == uuid.Nil {
			s.logger.Warn("skipping appointment with unresolvable participant ids",
				zap.String("date", apt.Date.Format("2006-01-02")),
				zap.String("start_time", apt.StartTime))
			report.Skipped++
			continue
		}
		if err := s.appointments.Create(ctx, apt); err != nil {
			return report, err
		}
		report.Imported++
	}

	s.logger.Info("appointments imported",
		zap.Int("decoded", report.Decoded),
		zap.Int("imported", report.Imported),
		zap.Int("skipped", report.Skipped))

	return report, nil
}

// ImportBlocks decodes and stores a blocking-rule collection. Rules whose
// scoping discriminant does not match their type are skipped.
func (s *ImportService) ImportBlocks(ctx context.Context, payload []byte, viewer Viewer) (*ImportReport, error) {
	if viewer.Role != model.RoleAdmin {
		return nil, ErrForbidden
	}

	decoded := s.decoder.DecodeBlocks(payload)
	report := &ImportReport{Decoded: len(decoded)}

	for _, blk := range decoded {
		if !blk.ValidScope() {
			s.logger.Warn("skipping block with inconsistent scoping",
				zap.String("type", string(blk.Type)))
			report.Skipped++
			continue
		}
		if err := s.blocks.Create(ctx, blk); err != nil {
			return report, err
		}
		report.Imported++
	}

	s.logger.Info("blocks imported",
		zap.Int("decoded", report.Decoded),
		zap.Int("imported", report.Imported),
		zap.Int("skipped", report.Skipped))

	return report, nil
}

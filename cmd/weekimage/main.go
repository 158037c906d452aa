package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/centrovital/agenda-api/internal/model"
	"github.com/centrovital/agenda-api/internal/render"
	"github.com/centrovital/agenda-api/internal/schedule"
)

// Renders a sample week to week.png for eyeballing layout changes.
func main() {
	now := time.Now()
	monday := schedule.WeekMonday(now)
	tuesday := monday.AddDate(0, 0, 1)
	friday := monday.AddDate(0, 0, 4)

	proID := uuid.New()

	appointments := []*model.Appointment{
		{
			ID:             uuid.New(),
			Date:           monday,
			StartTime:      "09:00",
			EndTime:        "10:30",
			Duration:       90,
			StudentName:    "Ana Torres",
			ProfessionalID: proID,
			Type:           model.SessionYoga,
			Title:          "Yoga matutino",
			Status:         model.StatusScheduled,
		},
		{
			ID:             uuid.New(),
			Date:           tuesday,
			StartTime:      "14:00",
			EndTime:        "15:00",
			Duration:       60,
			StudentName:    "Luis Prado",
			ProfessionalID: proID,
			Type:           model.SessionMassage,
			Status:         model.StatusScheduled,
		},
		{
			ID:             uuid.New(),
			Date:           friday,
			StartTime:      "11:00",
			EndTime:        "12:00",
			Duration:       60,
			StudentName:    "Marta Gil",
			ProfessionalID: proID,
			Type:           model.SessionPilates,
			Title:          "Pilates",
			Status:         model.StatusScheduled,
		},
	}

	wednesday := monday.AddDate(0, 0, 2)
	blocks := []*model.Block{
		{
			ID:     uuid.New(),
			Type:   model.BlockGlobal,
			Date:   &wednesday,
			AllDay: true,
			Reason: "Mantenimiento",
			Active: true,
		},
		{
			ID:             uuid.New(),
			Type:           model.BlockProfessional,
			Date:           &friday,
			StartTime:      "15:00",
			EndTime:        "17:00",
			ProfessionalID: &proID,
			Active:         true,
		},
	}

	builder := schedule.NewBuilder(zap.NewNop())
	slots := builder.BuildWeek(appointments, blocks, now,
		schedule.Viewer{Role: model.RoleAdmin},
		schedule.Scope{ProfessionalID: proID})

	imageData, err := render.WeekImage(slots, monday, now)
	if err != nil {
		fmt.Printf("render image: %v\n", err)
		os.Exit(1)
	}

	filename := "week.png"
	if err := os.WriteFile(filename, imageData, 0644); err != nil {
		fmt.Printf("write file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("saved %s (%d slots, week of %s)\n", filename, len(slots), monday.Format("02.01.2006"))
}

package render

import (
	"bytes"
	"image/color"
	"strconv"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/centrovital/agenda-api/internal/schedule"
)

const (
	imageWidth      = 1400
	imageHeight     = 900
	headerHeight    = 100
	leftLabelsWidth = 80
	legendWidth     = 140
	dayPaddingX     = 6
	cellBorderRad   = 4.0
	totalDays       = 7
)

var (
	bgColor        = color.RGBA{245, 246, 248, 255}
	textColor      = color.RGBA{80, 85, 90, 220}
	hourLabelColor = color.RGBA{110, 115, 120, 200}
	hourLineColor  = color.NRGBA{150, 150, 150, 255}
	todayBgColor   = color.NRGBA{255, 99, 71, 60}
	evenDayColor   = color.NRGBA{240, 240, 240, 255}
	oddDayColor    = color.NRGBA{225, 225, 225, 255}

	cellOccupiedColor = color.RGBA{255, 182, 193, 255}
	cellBlockedColor  = color.RGBA{158, 158, 158, 200}
	cellGlobalColor   = color.RGBA{96, 96, 96, 220}
	cellTextColor     = color.RGBA{20, 24, 28, 230}
	occupiedTextColor = color.RGBA{120, 40, 50, 255}

	legendItemColor = color.RGBA{70, 74, 78, 220}
)

type minuteRange struct {
	start int
	end   int
	total int
}

// WeekImage renders a week of slots into a PNG. The grid is drawn as it
// came from the builder: occupied cells pink, scoped blocks grey, center
// closures dark grey, free cells stay on the day background.
func WeekImage(slots []schedule.Slot, weekStart time.Time, now time.Time) ([]byte, error) {
	window := slotWindow(slots)
	byDay := groupByDay(slots)

	dc := createCanvas()
	dayWidth := (imageWidth - leftLabelsWidth - legendWidth) / totalDays
	dayHeight := imageHeight - headerHeight
	cellHeight := float64(dayHeight) / float64(window.total/schedule.SlotMinutes)

	drawHeader(dc, weekStart)
	drawHourLabels(dc, window, cellHeight)
	drawDays(dc, weekStart, now, byDay, window, dayWidth, dayHeight, cellHeight)
	drawLegend(dc, dayWidth)

	return encodeImage(dc)
}

// slotWindow finds the minute range the builder used, so custom windows
// render without empty bands.
func slotWindow(slots []schedule.Slot) minuteRange {
	start, end := 24*60, 0
	for _, s := range slots {
		min, err := schedule.ToMinutes(s.Time)
		if err != nil {
			continue
		}
		if min < start {
			start = min
		}
		if min+schedule.SlotMinutes > end {
			end = min + schedule.SlotMinutes
		}
	}
	if start >= end {
		start, end = schedule.DefaultDayStart, schedule.DefaultDayEnd+schedule.SlotMinutes
	}
	return minuteRange{start: start, end: end, total: end - start}
}

func groupByDay(slots []schedule.Slot) map[int][]schedule.Slot {
	byDay := make(map[int][]schedule.Slot, totalDays)
	for _, s := range slots {
		byDay[s.DayIndex] = append(byDay[s.DayIndex], s)
	}
	return byDay
}

func createCanvas() *gg.Context {
	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(bgColor)
	dc.Clear()
	return dc
}

func drawHeader(dc *gg.Context, weekStart time.Time) {
	title := "Semana del " + weekStart.Format("02.01.2006")
	dc.SetColor(textColor)
	w, h := dc.MeasureString(title)
	dc.DrawStringAnchored(title, float64(imageWidth)/2-w/2, float64(headerHeight)/4+h/2, 0, 0)
}

func drawHourLabels(dc *gg.Context, window minuteRange, cellHeight float64) {
	dc.SetColor(hourLabelColor)
	for min := window.start; min < window.end; min += 60 {
		idx := (min - window.start) / schedule.SlotMinutes
		y := float64(headerHeight) + float64(idx)*cellHeight
		dc.DrawStringAnchored(schedule.FromMinutes(min), float64(leftLabelsWidth)-10, y+6, 1, 0.5)
	}
}

func drawDays(dc *gg.Context, weekStart, now time.Time, byDay map[int][]schedule.Slot,
	window minuteRange, dayWidth, dayHeight int, cellHeight float64) {

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for dayIdx := 0; dayIdx < totalDays; dayIdx++ {
		date := weekStart.AddDate(0, 0, dayIdx)
		x := float64(leftLabelsWidth + dayIdx*dayWidth)
		y := float64(headerHeight)

		drawDayBackground(dc, x, y, dayWidth, dayHeight, dayIdx, sameDay(date, today))
		drawDayHeader(dc, date, dayIdx, x, dayWidth)
		drawHourLines(dc, x, y, dayWidth, window, cellHeight)

		for _, slot := range byDay[dayIdx] {
			drawCell(dc, slot, x, window, dayWidth, cellHeight)
		}
	}
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func drawDayBackground(dc *gg.Context, x, y float64, dayWidth, dayHeight, dayIdx int, isToday bool) {
	if dayIdx%2 == 0 {
		dc.SetColor(evenDayColor)
	} else {
		dc.SetColor(oddDayColor)
	}
	dc.DrawRectangle(x, y, float64(dayWidth), float64(dayHeight))
	dc.Fill()

	if isToday {
		dc.SetColor(todayBgColor)
		dc.DrawRectangle(x, y, float64(dayWidth), float64(dayHeight))
		dc.Fill()
	}
}

func drawDayHeader(dc *gg.Context, date time.Time, dayIdx int, x float64, dayWidth int) {
	dc.SetColor(textColor)
	cx := x + float64(dayWidth)/2
	dc.DrawStringAnchored(date.Format("02.01"), cx, float64(headerHeight)-36, 0.5, 0)
	dc.DrawStringAnchored(dayNameShort(dayIdx), cx, float64(headerHeight)-18, 0.5, 0)
}

func drawHourLines(dc *gg.Context, x, y float64, dayWidth int, window minuteRange, cellHeight float64) {
	dc.SetLineWidth(0.3)
	dc.SetColor(hourLineColor)
	for min := window.start; min <= window.end; min += 60 {
		idx := (min - window.start) / schedule.SlotMinutes
		hy := y + float64(idx)*cellHeight
		dc.DrawLine(x, hy, x+float64(dayWidth), hy)
		dc.Stroke()
	}
}

func drawCell(dc *gg.Context, slot schedule.Slot, x float64, window minuteRange, dayWidth int, cellHeight float64) {
	min, err := schedule.ToMinutes(slot.Time)
	if err != nil {
		return
	}

	var fill color.RGBA
	switch {
	case slot.HasClass:
		fill = cellOccupiedColor
	case slot.IsGlobalBlock:
		fill = cellGlobalColor
	case slot.IsBlocked:
		fill = cellBlockedColor
	default:
		return
	}

	idx := (min - window.start) / schedule.SlotMinutes
	cellY := float64(headerHeight) + float64(idx)*cellHeight
	cellW := float64(dayWidth) - float64(dayPaddingX*2)

	dc.SetColor(fill)
	dc.DrawRoundedRectangle(x+float64(dayPaddingX), cellY+1, cellW, cellHeight-2, cellBorderRad)
	dc.Fill()

	label := cellLabel(slot)
	if label == "" {
		return
	}
	txtColor := cellTextColor
	if slot.HasClass {
		txtColor = occupiedTextColor
	}
	dc.SetColor(txtColor)
	dc.DrawStringAnchored(truncate(label, 22), x+float64(dayPaddingX)+6, cellY+cellHeight/2, 0, 0.35)
}

// cellLabel annotates only the first cell of an appointment so a long
// session reads as one band, not a stack of repeated names.
func cellLabel(slot schedule.Slot) string {
	if slot.HasClass && slot.Appointment != nil {
		if slot.Appointment.StartTime != slot.Time {
			return ""
		}
		if slot.Appointment.Title != "" {
			return slot.Time + " " + slot.Appointment.Title
		}
		return slot.Time + " " + slot.Appointment.StudentName
	}
	if slot.IsGlobalBlock {
		return "Cerrado"
	}
	return ""
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func drawLegend(dc *gg.Context, dayWidth int) {
	legendX := float64(leftLabelsWidth + totalDays*dayWidth + 10)
	liY := float64(imageHeight) - 110.0

	items := []struct {
		label string
		clr   color.Color
	}{
		{"Ocupado", cellOccupiedColor},
		{"Bloqueado", cellBlockedColor},
		{"Cerrado", cellGlobalColor},
	}

	boxW, boxH := 20.0, 14.0
	for _, item := range items {
		dc.SetColor(item.clr)
		dc.DrawRoundedRectangle(legendX, liY, boxW, boxH, 3)
		dc.Fill()

		dc.SetColor(legendItemColor)
		dc.DrawStringAnchored(item.label, legendX+boxW+8, liY+boxH/2+1, 0, 0.2)
		liY += boxH + 14
	}
}

func encodeImage(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func dayNameShort(dayIdx int) string {
	names := []string{"Lun", "Mar", "Mie", "Jue", "Vie", "Sab", "Dom"}
	if dayIdx < 0 || dayIdx >= len(names) {
		return strconv.Itoa(dayIdx)
	}
	return names[dayIdx]
}

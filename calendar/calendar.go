package calendar

import (
	"fmt"
	"strings"
	"time"

	"booking-calendar/types"
)

// TimeSlots is the fixed daily set of bookable times, in display order
var TimeSlots = []string{"08:00", "09:00", "10:00", "16:00", "17:00"}

var monthNames = []string{
	"Január", "Február", "Marec", "Apríl", "Máj", "Jún",
	"Júl", "August", "September", "Október", "November", "December",
}

// WeekdayNames is the Monday-first header row
var WeekdayNames = []string{"Po", "Ut", "St", "Št", "Pi", "So", "Ne"}

// Grid is a rendered month
type Grid struct {
	Year          int             `json:"year"`
	Month         time.Month      `json:"month"`
	Title         string          `json:"title"`
	LeadingBlanks int             `json:"leading_blanks"`
	Days          []types.DayCell `json:"days"`
}

type Builder struct {
	now   func() time.Time
	slots []string
}

type Option func(*Builder)

// WithNow sets the clock used to mark today's cell
func WithNow(now func() time.Time) Option {
	return func(b *Builder) {
		b.now = now
	}
}

// WithSlots replaces the daily slot table
func WithSlots(slots []string) Option {
	return func(b *Builder) {
		b.slots = append([]string(nil), slots...)
	}
}

func New(opts ...Option) *Builder {
	b := &Builder{
		now:   time.Now,
		slots: TimeSlots,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Slots returns the builder's daily slot table
func (b *Builder) Slots() []string {
	return b.slots
}

// Today returns the builder clock's current year and month
func (b *Builder) Today() (int, time.Month) {
	now := b.now()
	return now.Year(), now.Month()
}

// Render builds the grid for one month. The result depends only on the arguments
// and on the clock for the today flag.
func (b *Builder) Render(year int, month time.Month, bookings []types.Booking) Grid {
	now := b.now()
	days := DaysIn(year, month)

	// Group once so every cell keeps the input booking order
	byDate := make(map[string][]types.Booking)
	for _, booking := range bookings {
		byDate[booking.Date] = append(byDate[booking.Date], booking)
	}

	grid := Grid{
		Year:          year,
		Month:         month,
		Title:         MonthTitle(year, month),
		LeadingBlanks: LeadingBlanks(year, month),
		Days:          make([]types.DayCell, 0, days),
	}

	for day := 1; day <= days; day++ {
		date := types.CalendarDate{Year: year, Month: month, Day: day}
		cell := b.buildCell(date, byDate[date.Key()])
		cell.Today = day == now.Day() && month == now.Month() && year == now.Year()
		grid.Days = append(grid.Days, cell)
	}

	return grid
}

func (b *Builder) buildCell(date types.CalendarDate, bookings []types.Booking) types.DayCell {
	booked := make(map[string]bool, len(bookings))
	for _, booking := range bookings {
		booked[booking.Time] = true
	}

	cell := types.DayCell{
		Date:      date,
		Key:       date.Key(),
		Bookings:  bookings,
		Slots:     make([]types.SlotState, 0, len(b.slots)),
		Available: make([]string, 0, len(b.slots)),
	}
	if cell.Bookings == nil {
		cell.Bookings = []types.Booking{}
	}

	taken := 0
	for _, slot := range b.slots {
		cell.Slots = append(cell.Slots, types.SlotState{Time: slot, Booked: booked[slot]})
		if booked[slot] {
			taken++
		} else {
			cell.Available = append(cell.Available, slot)
		}
	}

	// any booking on the date marks the day, even at a time outside the table
	switch {
	case len(bookings) == 0:
		cell.State = types.Free
	case taken == len(b.slots):
		cell.State = types.Full
	default:
		cell.State = types.Partial
	}

	return cell
}

// Cell returns the cell of the given day of month
func (g Grid) Cell(day int) (types.DayCell, bool) {
	if day < 1 || day > len(g.Days) {
		return types.DayCell{}, false
	}
	return g.Days[day-1], true
}

// Select calls fn with the day's date key unless the day is fully booked.
// It reports whether fn was called.
func (g Grid) Select(day int, fn func(key string)) bool {
	cell, ok := g.Cell(day)
	if !ok || cell.State == types.Full {
		return false
	}
	fn(cell.Key)
	return true
}

// Weeks splits the grid into Monday-first rows of seven; padding cells are nil
func (g Grid) Weeks() [][]*types.DayCell {
	total := g.LeadingBlanks + len(g.Days)
	if rem := total % 7; rem != 0 {
		total += 7 - rem
	}

	weeks := make([][]*types.DayCell, 0, total/7)
	for start := 0; start < total; start += 7 {
		week := make([]*types.DayCell, 7)
		for i := range week {
			idx := start + i - g.LeadingBlanks
			if idx >= 0 && idx < len(g.Days) {
				week[i] = &g.Days[idx]
			}
		}
		weeks = append(weeks, week)
	}
	return weeks
}

// Tooltip lists every slot of the day under a header; booked slots go through strike
func Tooltip(cell types.DayCell, strike func(string) string) string {
	var sb strings.Builder
	sb.WriteString("Voľné časy:")
	for _, slot := range cell.Slots {
		sb.WriteString("\n")
		if slot.Booked {
			sb.WriteString(strike(slot.Time))
		} else {
			sb.WriteString(slot.Time)
		}
	}
	return sb.String()
}

// DaysIn returns the number of days in the month (Gregorian, leap years included)
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// LeadingBlanks returns how many cells precede day 1 in a Monday-first week
func LeadingBlanks(year int, month time.Month) int {
	weekday := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday()
	if weekday == time.Sunday {
		return 6
	}
	return int(weekday) - 1
}

// MonthTitle formats "Február 2024"
func MonthTitle(year int, month time.Month) string {
	if month < time.January || month > time.December {
		return fmt.Sprintf("%d/%d", int(month), year)
	}
	return fmt.Sprintf("%s %d", monthNames[month-1], year)
}

// Shift moves delta months from (year, month), rolling the year over
func Shift(year int, month time.Month, delta int) (int, time.Month) {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, delta, 0)
	return t.Year(), t.Month()
}

// MonthKey formats "2024-02"
func MonthKey(year int, month time.Month) string {
	return fmt.Sprintf("%04d-%02d", year, int(month))
}

// ParseMonth parses a "2024-02" month key
func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return t.Year(), t.Month(), nil
}

// ParseDate parses a "2024-02-29" date key
func ParseDate(s string) (types.CalendarDate, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return types.CalendarDate{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return types.CalendarDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// DateKey formats "2024-02-29"
func DateKey(year int, month time.Month, day int) string {
	return types.CalendarDate{Year: year, Month: month, Day: day}.Key()
}

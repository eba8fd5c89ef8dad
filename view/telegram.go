package view

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"booking-calendar/calendar"
	"booking-calendar/types"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data prefixes. Telegram limits callback_data to 64 bytes.
const (
	PrefixNav     = "nav:"
	PrefixDay     = "day:"
	PrefixFull    = "full:"
	PrefixSlot    = "slot:"
	DataNoop      = "noop"
	DataConfirm   = "confirm"
	DataCancel    = "cancel"
	DataBackToCal = "back"
)

var stateMarks = map[types.Occupancy]string{
	types.Free:    "🟢",
	types.Partial: "🟡",
	types.Full:    "🔴",
}

// CalendarText is the message above the keyboard
func CalendarText(g calendar.Grid) string {
	return fmt.Sprintf("📅 %s\n\n🟢 voľný  🟡 čiastočne obsadený  🔴 plný\nVyber si deň:", g.Title)
}

// CalendarKeyboard renders the month as an inline keyboard
func CalendarKeyboard(g calendar.Grid) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	header := make([]tgbotapi.InlineKeyboardButton, 0, 7)
	for _, name := range calendar.WeekdayNames {
		header = append(header, tgbotapi.NewInlineKeyboardButtonData(name, DataNoop))
	}
	rows = append(rows, header)

	for _, week := range g.Weeks() {
		row := make([]tgbotapi.InlineKeyboardButton, 0, 7)
		for _, cell := range week {
			row = append(row, dayButton(cell))
		}
		rows = append(rows, row)
	}

	prevYear, prevMonth := calendar.Shift(g.Year, g.Month, -1)
	nextYear, nextMonth := calendar.Shift(g.Year, g.Month, 1)
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️", PrefixNav+calendar.MonthKey(prevYear, prevMonth)),
		tgbotapi.NewInlineKeyboardButtonData(g.Title, DataNoop),
		tgbotapi.NewInlineKeyboardButtonData("▶️", PrefixNav+calendar.MonthKey(nextYear, nextMonth)),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func dayButton(cell *types.DayCell) tgbotapi.InlineKeyboardButton {
	if cell == nil {
		return tgbotapi.NewInlineKeyboardButtonData(" ", DataNoop)
	}

	label := strconv.Itoa(cell.Date.Day)
	if cell.Today {
		label = "[" + label + "]"
	}
	label = stateMarks[cell.State] + label

	// Full days stay visible but do not open the form
	if cell.State == types.Full {
		return tgbotapi.NewInlineKeyboardButtonData(label, PrefixFull+cell.Key)
	}
	return tgbotapi.NewInlineKeyboardButtonData(label, PrefixDay+cell.Key)
}

// DayText is the tooltip of a day as Telegram HTML
func DayText(cell types.DayCell) string {
	tooltip := calendar.Tooltip(cell, func(s string) string {
		return "<s>" + html.EscapeString(s) + "</s>"
	})
	return fmt.Sprintf("🗓 <b>%s</b>\n\n%s\n\nVyber si čas:", cell.Key, tooltip)
}

// SlotsKeyboard offers the free slots of a day, two per row
func SlotsKeyboard(cell types.DayCell) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 0; i < len(cell.Available); i += 2 {
		row := []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(cell.Available[i], PrefixSlot+cell.Available[i]),
		}
		if i+1 < len(cell.Available) {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(cell.Available[i+1], PrefixSlot+cell.Available[i+1]))
		}
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ Späť na kalendár", DataBackToCal),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// SummaryText is shown before the booking is sent
func SummaryText(name, date, slot string) string {
	return fmt.Sprintf("📝 Objednávka\n\nMeno: %s\nDátum: %s\nČas: %s\n\nOdoslať?", name, date, slot)
}

func ConfirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ Potvrdiť", DataConfirm),
		tgbotapi.NewInlineKeyboardButtonData("❌ Zrušiť", DataCancel),
	))
}

// AdminListText formats the full order list for admins
func AdminListText(bookings []types.AdminBooking) string {
	if len(bookings) == 0 {
		return "Žiadne objednávky."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 Objednávky (%d):\n", len(bookings)))
	for _, b := range bookings {
		sb.WriteString(fmt.Sprintf("\n#%d  %s %s", b.ID, b.Date, b.Time))
		if b.ProcedureName != "" {
			sb.WriteString(fmt.Sprintf("\n   %s (%.2f €)", b.ProcedureName, float64(b.ProcedurePrice)))
		}
		if b.ParentName != "" || b.ChildName != "" {
			sb.WriteString(fmt.Sprintf("\n   %s / %s", b.ParentName, b.ChildName))
		}
		if b.Phone != "" || b.Email != "" {
			sb.WriteString(fmt.Sprintf("\n   %s %s", b.Phone, b.Email))
		}
		if b.PaymentStatus != "" {
			sb.WriteString("\n   " + b.PaymentStatus)
		}
	}
	return sb.String()
}

package handlers

import (
	"time"

	"booking-calendar/calendar"
	"booking-calendar/client"
	"booking-calendar/storage"
	"booking-calendar/types"
	"booking-calendar/view"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const msgFullDay = "Deň je plne obsadený"

func (h *Handler) sendCalendar(chatID int64, year int, month time.Month, bookings []types.Booking) {
	grid := h.Builder.Render(year, month, bookings)

	msg := tgbotapi.NewMessage(chatID, view.CalendarText(grid))
	msg.ReplyMarkup = view.CalendarKeyboard(grid)
	sent, err := h.Bot.Send(msg)
	if err != nil {
		h.Log.Error("cannot send calendar", zap.Int64("chat_id", chatID), zap.Error(err))
		return
	}

	h.saveView(chatID, year, month, sent.MessageID)
}

func (h *Handler) editCalendar(chatID int64, messageID int, year int, month time.Month, bookings []types.Booking) {
	grid := h.Builder.Render(year, month, bookings)

	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, view.CalendarText(grid), view.CalendarKeyboard(grid))
	if _, err := h.Bot.Send(edit); err != nil {
		h.Log.Error("cannot edit calendar", zap.Int64("chat_id", chatID), zap.Error(err))
		return
	}

	h.saveView(chatID, year, month, messageID)
}

func (h *Handler) saveView(chatID int64, year int, month time.Month, messageID int) {
	err := h.Store.SaveView(&storage.View{ChatID: chatID, Year: year, Month: month, MessageID: messageID})
	if err != nil {
		h.Log.Error("cannot store view", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// HandleNav moves the calendar to another month. The stored list is reused, nothing is fetched.
func (h *Handler) HandleNav(cq *tgbotapi.CallbackQuery, monthKey string) {
	chatID := cq.Message.Chat.ID

	year, month, err := calendar.ParseMonth(monthKey)
	if err != nil {
		h.Bot.Request(tgbotapi.NewCallback(cq.ID, "Neplatný mesiac"))
		return
	}

	bookings, err := h.storedBookings(chatID)
	if err != nil {
		h.Bot.Request(tgbotapi.NewCallback(cq.ID, client.UserMessage(err)))
		return
	}

	h.editCalendar(chatID, cq.Message.MessageID, year, month, bookings)
	h.Bot.Request(tgbotapi.NewCallback(cq.ID, ""))
}

// HandleDay opens the booking form for a day that still has a free slot
func (h *Handler) HandleDay(cq *tgbotapi.CallbackQuery, dateKey string) {
	chatID := cq.Message.Chat.ID

	date, err := calendar.ParseDate(dateKey)
	if err != nil {
		h.Bot.Request(tgbotapi.NewCallback(cq.ID, "Neplatný dátum"))
		return
	}

	bookings, err := h.storedBookings(chatID)
	if err != nil {
		h.Bot.Request(tgbotapi.NewCallback(cq.ID, client.UserMessage(err)))
		return
	}

	grid := h.Builder.Render(date.Year, date.Month, bookings)

	var picked types.DayCell
	selected := grid.Select(date.Day, func(key string) {
		picked, _ = grid.Cell(date.Day)
	})
	if !selected {
		// the stored list may be newer than the keyboard the user tapped
		h.Bot.Request(tgbotapi.NewCallback(cq.ID, msgFullDay))
		return
	}

	if err := h.Store.SaveDraft(&storage.Draft{ChatID: chatID, Date: picked.Key, Step: storage.StepTime}); err != nil {
		h.Log.Error("cannot store draft", zap.Int64("chat_id", chatID), zap.Error(err))
		h.Bot.Request(tgbotapi.NewCallback(cq.ID, "⚠️ Chyba"))
		return
	}

	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, cq.Message.MessageID, view.DayText(picked), view.SlotsKeyboard(picked))
	edit.ParseMode = tgbotapi.ModeHTML
	h.Bot.Send(edit)
	h.Bot.Request(tgbotapi.NewCallback(cq.ID, picked.Key))
}

func (h *Handler) HandleFull(cq *tgbotapi.CallbackQuery) {
	h.Bot.Request(tgbotapi.NewCallback(cq.ID, msgFullDay))
}

// HandleBack returns from the slot list to the month the chat was looking at
func (h *Handler) HandleBack(cq *tgbotapi.CallbackQuery) {
	chatID := cq.Message.Chat.ID

	year, month := h.Builder.Today()
	if v, err := h.Store.GetView(chatID); err == nil && v != nil {
		year, month = v.Year, v.Month
	}

	bookings, err := h.storedBookings(chatID)
	if err != nil {
		h.Bot.Request(tgbotapi.NewCallback(cq.ID, client.UserMessage(err)))
		return
	}

	if err := h.Store.DeleteDraft(chatID); err != nil {
		h.Log.Error("cannot delete draft", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	h.editCalendar(chatID, cq.Message.MessageID, year, month, bookings)
	h.Bot.Request(tgbotapi.NewCallback(cq.ID, ""))
}

package handlers

import (
	"slices"
	"strings"

	"booking-calendar/calendar"
	"booking-calendar/client"
	"booking-calendar/storage"
	"booking-calendar/types"
	"booking-calendar/view"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	msgFormExpired = "Formulár vypršal, vyberte si deň znova."
	msgSlotTaken   = "Tento čas je už obsadený."
	msgAskName     = "Zadajte svoje meno:"
	msgSending     = "Odosielam..."
)

// HandleSlot stores the picked time and asks for the name
func (h *Handler) HandleSlot(cq *tgbotapi.CallbackQuery, slot string) {
	chatID := cq.Message.Chat.ID

	// the slot keyboard stays visible, so a second tap while the name is pending changes the time
	draft, err := h.Store.GetDraft(chatID)
	if err != nil || draft == nil || (draft.Step != storage.StepTime && draft.Step != storage.StepName) {
		h.Bot.Request(tgbotapi.NewCallback(cq.ID, msgFormExpired))
		return
	}

	bookings, err := h.storedBookings(chatID)
	if err != nil {
		h.Bot.Request(tgbotapi.NewCallback(cq.ID, client.UserMessage(err)))
		return
	}

	date, err := calendar.ParseDate(draft.Date)
	if err != nil {
		h.Bot.Request(tgbotapi.NewCallback(cq.ID, msgFormExpired))
		return
	}
	cell, _ := h.Builder.Render(date.Year, date.Month, bookings).Cell(date.Day)
	if !slices.Contains(cell.Available, slot) {
		h.Bot.Request(tgbotapi.NewCallback(cq.ID, msgSlotTaken))
		return
	}

	draft.Time = slot
	draft.Step = storage.StepName
	if err := h.Store.SaveDraft(draft); err != nil {
		h.Log.Error("cannot store draft", zap.Int64("chat_id", chatID), zap.Error(err))
		h.Bot.Request(tgbotapi.NewCallback(cq.ID, "⚠️ Chyba"))
		return
	}

	h.Bot.Request(tgbotapi.NewCallback(cq.ID, slot))
	h.Bot.Send(tgbotapi.NewMessage(chatID, msgAskName))
}

// HandleText takes the name for a form waiting for one.
// It reports false when the chat has no such form.
func (h *Handler) HandleText(msg *tgbotapi.Message) bool {
	chatID := msg.Chat.ID

	draft, err := h.Store.GetDraft(chatID)
	if err != nil || draft == nil || draft.Step != storage.StepName {
		return false
	}

	name := strings.TrimSpace(msg.Text)
	if name == "" {
		h.Bot.Send(tgbotapi.NewMessage(chatID, msgAskName))
		return true
	}

	draft.Name = name
	draft.Step = storage.StepConfirm
	if err := h.Store.SaveDraft(draft); err != nil {
		h.Log.Error("cannot store draft", zap.Int64("chat_id", chatID), zap.Error(err))
		h.Bot.Send(tgbotapi.NewMessage(chatID, "⚠️ Chyba pri ukladaní formulára."))
		return true
	}

	summary := tgbotapi.NewMessage(chatID, view.SummaryText(draft.Name, draft.Date, draft.Time))
	summary.ReplyMarkup = view.ConfirmKeyboard()
	h.Bot.Send(summary)
	return true
}

// HandleConfirm submits the form. The draft survives a failed submission so the user can retry.
func (h *Handler) HandleConfirm(cq *tgbotapi.CallbackQuery) {
	chatID := cq.Message.Chat.ID

	draft, err := h.Store.GetDraft(chatID)
	if err != nil || draft == nil || draft.Step != storage.StepConfirm {
		h.Bot.Request(tgbotapi.NewCallback(cq.ID, msgFormExpired))
		return
	}
	h.Bot.Request(tgbotapi.NewCallback(cq.ID, ""))

	status, err := h.Bot.Send(tgbotapi.NewMessage(chatID, msgSending))
	if err != nil {
		h.Log.Error("cannot send status", zap.Int64("chat_id", chatID), zap.Error(err))
		return
	}

	ctx, cancel := h.context()
	defer cancel()

	_, err = h.API.CreateBooking(ctx, types.BookingRequest{
		Name: draft.Name,
		Date: draft.Date,
		Time: draft.Time,
	})
	if err != nil {
		h.Log.Info("booking not created",
			zap.Int64("chat_id", chatID),
			zap.String("date", draft.Date),
			zap.String("time", draft.Time),
			zap.Error(err),
		)
		h.Bot.Send(tgbotapi.NewEditMessageText(chatID, status.MessageID, client.UserMessage(err)))
		return
	}

	h.Log.Info("booking created", zap.Int64("chat_id", chatID), zap.String("date", draft.Date), zap.String("time", draft.Time))
	h.Bot.Send(tgbotapi.NewEditMessageText(chatID, status.MessageID, client.MsgSuccess))

	if err := h.Store.DeleteDraft(chatID); err != nil {
		h.Log.Error("cannot delete draft", zap.Int64("chat_id", chatID), zap.Error(err))
	}

	bookings, err := h.refreshBookings(chatID)
	if err != nil {
		h.Bot.Send(tgbotapi.NewMessage(chatID, client.UserMessage(err)))
		return
	}

	date, err := calendar.ParseDate(draft.Date)
	if err != nil {
		return
	}
	h.sendCalendar(chatID, date.Year, date.Month, bookings)
}

func (h *Handler) HandleCancel(cq *tgbotapi.CallbackQuery) {
	chatID := cq.Message.Chat.ID

	if err := h.Store.DeleteDraft(chatID); err != nil {
		h.Log.Error("cannot delete draft", zap.Int64("chat_id", chatID), zap.Error(err))
	}

	h.Bot.Send(tgbotapi.NewEditMessageText(chatID, cq.Message.MessageID, "❌ Objednávka zrušená."))
	h.Bot.Request(tgbotapi.NewCallback(cq.ID, ""))
}

package handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	"booking-calendar/calendar"
	"booking-calendar/client"
	"booking-calendar/storage"
	"booking-calendar/types"
	"booking-calendar/view"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Store is the per-chat state the bot keeps between updates
type Store interface {
	SaveView(v *storage.View) error
	GetView(chatID int64) (*storage.View, error)
	SaveBookings(chatID int64, bookings []types.Booking) error
	GetBookings(chatID int64) ([]types.Booking, error)
	SaveDraft(d *storage.Draft) error
	GetDraft(chatID int64) (*storage.Draft, error)
	DeleteDraft(chatID int64) error
}

// BookingAPI is the remote booking service
type BookingAPI interface {
	ListBookings(ctx context.Context) ([]types.Booking, error)
	ListAllBookings(ctx context.Context) ([]types.AdminBooking, error)
	CreateBooking(ctx context.Context, req types.BookingRequest) (*types.Confirmation, error)
	DeleteBooking(ctx context.Context, id int) (*types.Confirmation, error)
}

type Handler struct {
	Bot     *tgbotapi.BotAPI
	Store   Store
	API     BookingAPI
	Builder *calendar.Builder
	Log     *zap.Logger
	Timeout time.Duration
	admins  map[int64]bool
}

func New(bot *tgbotapi.BotAPI, store Store, api BookingAPI, builder *calendar.Builder, log *zap.Logger, timeout time.Duration, admins []int64) *Handler {
	h := &Handler{
		Bot:     bot,
		Store:   store,
		API:     api,
		Builder: builder,
		Log:     log,
		Timeout: timeout,
		admins:  make(map[int64]bool, len(admins)),
	}
	for _, id := range admins {
		h.admins[id] = true
	}
	return h
}

func (h *Handler) HandleStart(msg *tgbotapi.Message) {
	text := "👋 Dobrý deň! Cez tohto bota si môžete objednať termín.\n\n" +
		"Dostupné príkazy:\n" +
		"/kalendar — zobraziť kalendár voľných termínov"
	if h.admins[msg.Chat.ID] {
		text += "\n/admin_list — všetky objednávky\n" +
			"/admin_delete <id> — zmazať objednávku"
	}
	h.Bot.Send(tgbotapi.NewMessage(msg.Chat.ID, text))
}

// HandleCalendar fetches the booking list and shows the current month
func (h *Handler) HandleCalendar(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	bookings, err := h.refreshBookings(chatID)
	if err != nil {
		h.Bot.Send(tgbotapi.NewMessage(chatID, client.UserMessage(err)))
		return
	}

	year, month := h.Builder.Today()
	h.sendCalendar(chatID, year, month, bookings)
}

func (h *Handler) HandleAdminList(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if !h.admins[chatID] {
		h.Bot.Send(tgbotapi.NewMessage(chatID, "⛔ Na tento príkaz nemáte oprávnenie."))
		return
	}

	ctx, cancel := h.context()
	defer cancel()

	all, err := h.API.ListAllBookings(ctx)
	if err != nil {
		h.Log.Error("admin list failed", zap.Int64("chat_id", chatID), zap.Error(err))
		h.Bot.Send(tgbotapi.NewMessage(chatID, client.UserMessage(err)))
		return
	}

	h.Bot.Send(tgbotapi.NewMessage(chatID, view.AdminListText(all)))
}

func (h *Handler) HandleAdminDelete(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if !h.admins[chatID] {
		h.Bot.Send(tgbotapi.NewMessage(chatID, "⛔ Na tento príkaz nemáte oprávnenie."))
		return
	}

	id, err := strconv.Atoi(strings.TrimSpace(msg.CommandArguments()))
	if err != nil || id <= 0 {
		h.Bot.Send(tgbotapi.NewMessage(chatID, "Použitie: /admin_delete <id>"))
		return
	}

	ctx, cancel := h.context()
	defer cancel()

	conf, err := h.API.DeleteBooking(ctx, id)
	if err != nil {
		h.Log.Warn("admin delete failed", zap.Int("id", id), zap.Error(err))
		h.Bot.Send(tgbotapi.NewMessage(chatID, client.UserMessage(err)))
		return
	}

	text := "✅ Objednávka zmazaná."
	if conf.Message != "" {
		text = "✅ " + conf.Message
	}
	h.Bot.Send(tgbotapi.NewMessage(chatID, text))
}

// refreshBookings replaces the chat's stored booking list with a fresh one
func (h *Handler) refreshBookings(chatID int64) ([]types.Booking, error) {
	ctx, cancel := h.context()
	defer cancel()

	bookings, err := h.API.ListBookings(ctx)
	if err != nil {
		h.Log.Warn("cannot load bookings", zap.Int64("chat_id", chatID), zap.Error(err))
		return nil, err
	}

	if err := h.Store.SaveBookings(chatID, bookings); err != nil {
		h.Log.Error("cannot store bookings", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	return bookings, nil
}

// storedBookings falls back to the network only when nothing is cached for the chat
func (h *Handler) storedBookings(chatID int64) ([]types.Booking, error) {
	bookings, err := h.Store.GetBookings(chatID)
	if err != nil {
		h.Log.Error("cannot read bookings", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	if bookings != nil {
		return bookings, nil
	}
	return h.refreshBookings(chatID)
}

func (h *Handler) context() (context.Context, context.CancelFunc) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}

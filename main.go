package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"booking-calendar/calendar"
	"booking-calendar/client"
	"booking-calendar/config"
	"booking-calendar/handlers"
	"booking-calendar/logger"
	"booking-calendar/storage"
	"booking-calendar/view"
	"booking-calendar/web"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.App.LogLevel, cfg.App.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		log.Warn("failed to load timezone, using UTC", zap.String("timezone", cfg.App.Timezone), zap.Error(err))
	} else {
		time.Local = loc
		log.Info("timezone set", zap.String("timezone", cfg.App.Timezone), zap.String("now", time.Now().Format("2006-01-02 15:04:05 MST")))
	}

	api := client.New(cfg.Booking.BaseURL,
		client.WithLogger(log.Named("client")),
		client.WithHTTPClient(&http.Client{Timeout: cfg.Booking.RequestTimeout}),
		client.WithRateLimit(cfg.Booking.RateLimit),
	)
	builder := calendar.New()

	server := &http.Server{
		Addr:    cfg.App.HTTPAddr,
		Handler: web.New(api, builder, log.Named("web"), cfg.Booking.RequestTimeout).Routes(cfg.App.WebRateLimit),
	}
	go func() {
		log.Info("web view listening", zap.String("addr", cfg.App.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("web server failed", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Telegram.Token == "" {
		log.Warn("TELEGRAM_BOT_TOKEN not set, running the web view only")
	} else {
		go runBot(ctx, cfg, log, api, builder)
	}

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownAfter)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
}

func runBot(ctx context.Context, cfg *config.Config, log *zap.Logger, api *client.Client, builder *calendar.Builder) {
	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		log.Fatal("telegram login failed", zap.Error(err))
	}
	log.Info("authorized", zap.String("account", bot.Self.UserName))

	store := storage.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := store.Ping(); err != nil {
		log.Fatal("redis connection failed", zap.Error(err))
	}
	defer store.Close()

	handler := handlers.New(bot, store, api, builder, log.Named("bot"), cfg.Booking.RequestTimeout, cfg.Telegram.Admins)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	log.Info("bot is running")

	for {
		select {
		case <-ctx.Done():
			bot.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				handleMessage(bot, handler, update.Message)
			} else if update.CallbackQuery != nil {
				handleCallback(handler, update.CallbackQuery)
			}
		}
	}
}

func handleMessage(bot *tgbotapi.BotAPI, h *handlers.Handler, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		h.HandleStart(msg)

	case "kalendar":
		h.HandleCalendar(msg)

	case "admin_list":
		h.HandleAdminList(msg)

	case "admin_delete":
		h.HandleAdminDelete(msg)

	case "":
		// plain text belongs to an open booking form
		if !h.HandleText(msg) {
			bot.Send(tgbotapi.NewMessage(msg.Chat.ID, "Neznámy príkaz. Skúste /kalendar"))
		}

	default:
		bot.Send(tgbotapi.NewMessage(msg.Chat.ID, "Neznámy príkaz. Skúste /start"))
	}
}

func handleCallback(h *handlers.Handler, cq *tgbotapi.CallbackQuery) {
	if cq == nil || cq.Message == nil {
		return
	}

	data := cq.Data

	switch {
	case strings.HasPrefix(data, view.PrefixNav):
		h.HandleNav(cq, strings.TrimPrefix(data, view.PrefixNav))

	case strings.HasPrefix(data, view.PrefixDay):
		h.HandleDay(cq, strings.TrimPrefix(data, view.PrefixDay))

	case strings.HasPrefix(data, view.PrefixFull):
		h.HandleFull(cq)

	case strings.HasPrefix(data, view.PrefixSlot):
		h.HandleSlot(cq, strings.TrimPrefix(data, view.PrefixSlot))

	case data == view.DataConfirm:
		h.HandleConfirm(cq)

	case data == view.DataCancel:
		h.HandleCancel(cq)

	case data == view.DataBackToCal:
		h.HandleBack(cq)

	case data == view.DataNoop:
		h.Bot.Request(tgbotapi.NewCallback(cq.ID, ""))

	default:
		h.Bot.Request(tgbotapi.NewCallback(cq.ID, "Neznámy príkaz"))
	}
}

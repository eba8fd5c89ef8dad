package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "LOG_LEVEL", "HTTP_ADDR", "APP_TIMEZONE", "WEB_RATE_LIMIT",
		"REDIS_ADDR", "REDIS_DB", "TELEGRAM_BOT_TOKEN", "ADMIN_CHAT_IDS", "BOOKING_API_URL", "REQUEST_TIMEOUT", "BOOKING_RATE_LIMIT"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, ":8080", cfg.App.HTTPAddr)
	assert.Equal(t, "Europe/Bratislava", cfg.App.Timezone)
	assert.Equal(t, 10, cfg.App.WebRateLimit)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Empty(t, cfg.Telegram.Token)
	assert.Empty(t, cfg.Telegram.Admins)
	assert.Equal(t, DefaultBookingAPI, cfg.Booking.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Booking.RequestTimeout)
	assert.Zero(t, cfg.Booking.RateLimit)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("REQUEST_TIMEOUT", "2s")
	t.Setenv("ADMIN_CHAT_IDS", " 12, abc,-34 ,")
	t.Setenv("BOOKING_API_URL", "http://localhost:5000")
	t.Setenv("BOOKING_RATE_LIMIT", "250ms")

	cfg := Load()

	assert.Equal(t, ":9090", cfg.App.HTTPAddr)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 2*time.Second, cfg.Booking.RequestTimeout)
	assert.Equal(t, []int64{12, -34}, cfg.Telegram.Admins)
	assert.Equal(t, "http://localhost:5000", cfg.Booking.BaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.Booking.RateLimit)
}

func TestLoadBadNumbersFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "one")
	t.Setenv("REQUEST_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, 10*time.Second, cfg.Booking.RequestTimeout)
}

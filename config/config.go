package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

func init() {
	godotenv.Load()
}

const DefaultBookingAPI = "https://objednavkovy-system-1.onrender.com"

type Config struct {
	App      App
	Redis    Redis
	Telegram Telegram
	Booking  Booking
}

type App struct {
	Env           string
	LogLevel      string
	HTTPAddr      string
	Timezone      string
	WebRateLimit  int
	ShutdownAfter time.Duration
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type Telegram struct {
	Token  string // empty disables the bot
	Admins []int64
}

type Booking struct {
	BaseURL        string
	RequestTimeout time.Duration
	RateLimit      time.Duration // minimum spacing between calls, zero means unpaced
}

func Load() *Config {
	return &Config{
		App: App{
			Env:           getEnvString("APP_ENV", "development"),
			LogLevel:      getEnvString("LOG_LEVEL", "info"),
			HTTPAddr:      getEnvString("HTTP_ADDR", ":8080"),
			Timezone:      getEnvString("APP_TIMEZONE", "Europe/Bratislava"),
			WebRateLimit:  getEnvInt("WEB_RATE_LIMIT", 10),
			ShutdownAfter: getEnvDuration("APP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Redis: Redis{
			Addr:     getEnvString("REDIS_ADDR", "localhost:6379"),
			Password: getEnvString("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Telegram: Telegram{
			Token:  getEnvString("TELEGRAM_BOT_TOKEN", ""),
			Admins: getEnvInt64List("ADMIN_CHAT_IDS"),
		},
		Booking: Booking{
			BaseURL:        getEnvString("BOOKING_API_URL", DefaultBookingAPI),
			RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
			RateLimit:      getEnvDuration("BOOKING_RATE_LIMIT", 0),
		},
	}
}

func getEnvString(key, defaultValue string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error parsing %s: %v, will use default value", key, err)
		return defaultValue
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Error parsing %s: %v, will use default value", key, err)
		return defaultValue
	}
	return v
}

// getEnvInt64List reads a comma separated list, skipping entries that are not numbers
func getEnvInt64List(key string) []int64 {
	var out []int64
	for _, part := range strings.Split(os.Getenv(key), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			log.Printf("Error parsing %s entry %q: %v", key, part, err)
			continue
		}
		out = append(out, v)
	}
	return out
}

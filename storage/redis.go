package storage

import (
	"context"
	"fmt"
	"time"

	"booking-calendar/types"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

var ctx = context.Background()

const (
	viewTTL     = 30 * 24 * time.Hour
	bookingsTTL = 24 * time.Hour
	// unfinished forms expire on their own
	draftTTL = 15 * time.Minute
)

type Storage struct {
	client *redis.Client
}

func New(addr, password string, db int) *Storage {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Storage{client: rdb}
}

// View is the month currently displayed in a chat
type View struct {
	ChatID    int64
	Year      int
	Month     time.Month
	MessageID int // message holding the calendar keyboard
}

// Draft is a booking form in progress
type Draft struct {
	ChatID int64
	Date   string // YYYY-MM-DD
	Time   string // HH:MM
	Name   string
	Step   string
}

const (
	StepTime    = "time"
	StepName    = "name"
	StepConfirm = "confirm"
)

func (s *Storage) Ping() error {
	return s.client.Ping(ctx).Err()
}

func (s *Storage) Close() error {
	return s.client.Close()
}

// ===== Displayed month =====

func (s *Storage) SaveView(v *View) error {
	return s.setJSON(fmt.Sprintf("view:%d", v.ChatID), v, viewTTL)
}

func (s *Storage) GetView(chatID int64) (*View, error) {
	var v View
	ok, err := s.getJSON(fmt.Sprintf("view:%d", chatID), &v)
	if err != nil || !ok {
		return nil, err
	}
	return &v, nil
}

// ===== Last fetched booking list =====

// SaveBookings replaces the chat's booking list as a whole
func (s *Storage) SaveBookings(chatID int64, bookings []types.Booking) error {
	if bookings == nil {
		bookings = []types.Booking{}
	}
	return s.setJSON(fmt.Sprintf("bookings:%d", chatID), bookings, bookingsTTL)
}

// GetBookings returns nil when nothing has been fetched for the chat yet
func (s *Storage) GetBookings(chatID int64) ([]types.Booking, error) {
	var bookings []types.Booking
	ok, err := s.getJSON(fmt.Sprintf("bookings:%d", chatID), &bookings)
	if err != nil || !ok {
		return nil, err
	}
	return bookings, nil
}

// ===== Booking form =====

func (s *Storage) SaveDraft(d *Draft) error {
	return s.setJSON(fmt.Sprintf("draft:%d", d.ChatID), d, draftTTL)
}

func (s *Storage) GetDraft(chatID int64) (*Draft, error) {
	var d Draft
	ok, err := s.getJSON(fmt.Sprintf("draft:%d", chatID), &d)
	if err != nil || !ok {
		return nil, err
	}
	return &d, nil
}

func (s *Storage) DeleteDraft(chatID int64) error {
	key := fmt.Sprintf("draft:%d", chatID)
	return s.client.Del(ctx, key).Err()
}

func (s *Storage) setJSON(key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *Storage) getJSON(key string, out any) (bool, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, out); err != nil {
		return false, err
	}
	return true, nil
}

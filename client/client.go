package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"booking-calendar/types"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	pathBookings      = "/api/terminy"
	pathCreate        = "/api/objednat"
	pathAdminBookings = "/api/admin/vsetky-objednavky"
	pathAdminDelete   = "/api/admin/zmazat/%d"

	statusSuccess = "success"
	userAgent     = "Mozilla/5.0 (compatible; BookingCalendar/1.0)"
)

var validate = validator.New()

// Client talks to the remote booking API. The API is the only authority on
// bookings; the client keeps no state between calls.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithRateLimit sets the minimum spacing between outgoing requests; zero disables limiting.
// Without it the client does not pace requests.
func WithRateLimit(every time.Duration) Option {
	return func(c *Client) {
		if every <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(every), 1)
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(rate.Inf, 1),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListBookings returns the current booking list exactly as the server sends it
func (c *Client) ListBookings(ctx context.Context) ([]types.Booking, error) {
	const op = "list bookings"

	var bookings []types.Booking
	if err := c.getJSON(ctx, op, pathBookings, &bookings); err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []types.Booking{}
	}

	c.log.Debug("bookings fetched", zap.Int("count", len(bookings)))
	return bookings, nil
}

// ListAllBookings returns every order with its full details (admin endpoint)
func (c *Client) ListAllBookings(ctx context.Context) ([]types.AdminBooking, error) {
	const op = "list all bookings"

	var bookings []types.AdminBooking
	if err := c.getJSON(ctx, op, pathAdminBookings, &bookings); err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []types.AdminBooking{}
	}
	return bookings, nil
}

// CreateBooking submits a new booking. Success needs both a 2xx status and
// status "success" in the payload. The caller is expected to re-fetch the list afterwards.
func (c *Client) CreateBooking(ctx context.Context, req types.BookingRequest) (*types.Confirmation, error) {
	const op = "create booking"

	req.Name = strings.TrimSpace(req.Name)
	req.Date = strings.TrimSpace(req.Date)
	req.Time = strings.TrimSpace(req.Time)
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, errInvalid(op, err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, errInvalid(op, err)
	}

	conf, err := c.postJSON(ctx, op, pathCreate, body)
	if err != nil {
		return nil, err
	}

	c.log.Info("booking created", zap.String("date", req.Date), zap.String("time", req.Time))
	return conf, nil
}

// DeleteBooking removes an order by id (admin endpoint)
func (c *Client) DeleteBooking(ctx context.Context, id int) (*types.Confirmation, error) {
	const op = "delete booking"

	if id <= 0 {
		return nil, errInvalid(op, fmt.Errorf("invalid id %d", id))
	}

	conf, err := c.postJSON(ctx, op, fmt.Sprintf(pathAdminDelete, id), nil)
	if err != nil {
		return nil, err
	}

	c.log.Info("booking deleted", zap.Int("id", id))
	return conf, nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errFetch(op, err)
	}

	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return errFetch(op, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed", zap.String("op", op), zap.Error(err))
		return errFetch(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("unexpected status", zap.String("op", op), zap.Int("status", resp.StatusCode))
		return errFetchStatus(op, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.log.Warn("cannot decode response", zap.String("op", op), zap.Error(err))
		return errFetch(op, err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, op, path string, body []byte) (*types.Confirmation, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errTransport(op, err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, errTransport(op, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed", zap.String("op", op), zap.Error(err))
		return nil, errTransport(op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errTransport(op, err)
	}

	var conf types.Confirmation
	if err := json.Unmarshal(raw, &conf); err != nil {
		c.log.Warn("cannot decode response", zap.String("op", op), zap.Int("status", resp.StatusCode), zap.Error(err))
		return nil, errTransport(op, err)
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode <= 299
	if !ok || conf.Status != statusSuccess {
		c.log.Info("request rejected",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
			zap.String("message", conf.Message),
		)
		return nil, errRejected(op, resp.StatusCode, conf.Message)
	}

	return &conf, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

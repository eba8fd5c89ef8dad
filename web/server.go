package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"booking-calendar/calendar"
	"booking-calendar/client"
	"booking-calendar/types"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// BookingAPI is the part of the booking service the web view needs
type BookingAPI interface {
	ListBookings(ctx context.Context) ([]types.Booking, error)
	CreateBooking(ctx context.Context, req types.BookingRequest) (*types.Confirmation, error)
}

type Server struct {
	api     BookingAPI
	builder *calendar.Builder
	log     *zap.Logger
	timeout time.Duration
	tmpl    *template.Template
}

func New(api BookingAPI, builder *calendar.Builder, log *zap.Logger, timeout time.Duration) *Server {
	tmpl := template.Must(template.New("").Funcs(template.FuncMap{
		"cellClass": cellClass,
		"tooltip":   tooltipHTML,
	}).ParseFS(templateFS, "templates/*.html"))

	return &Server{
		api:     api,
		builder: builder,
		log:     log,
		timeout: timeout,
		tmpl:    tmpl,
	}
}

// Routes builds the router. rateLimit is requests per second per IP; zero disables limiting.
func (s *Server) Routes(rateLimit int) http.Handler {
	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	if rateLimit > 0 {
		router.Use(httprate.LimitByIP(rateLimit, time.Second))
	}

	router.Get("/", s.redirectToCurrentMonth)
	router.Get("/kalendar/{year}/{month}", s.handlePage)
	router.Get("/api/kalendar/{year}/{month}", s.handleGridJSON)
	router.Post("/objednat", s.handleCreate)

	return router
}

type formValues struct {
	Name string
	Date string
	Time string
}

type pageData struct {
	Grid        calendar.Grid
	Weekdays    []string
	Weeks       [][]*types.DayCell
	Slots       []string
	Prev        string
	Next        string
	FetchError  string
	Status      string
	StatusError bool
	Form        formValues
}

func (s *Server) redirectToCurrentMonth(w http.ResponseWriter, r *http.Request) {
	year, month := s.builder.Today()
	http.Redirect(w, r, monthPath(year, month), http.StatusFound)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	year, month, err := monthParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	data := s.loadPage(r.Context(), year, month)

	// prefill the form from a day link, full days cannot be picked
	if key := r.URL.Query().Get("datum"); key != "" && data.FetchError == "" {
		if date, err := calendar.ParseDate(key); err == nil && date.Year == year && date.Month == month {
			data.Grid.Select(date.Day, func(key string) {
				data.Form.Date = key
			})
		}
	}

	s.render(w, http.StatusOK, data)
}

func (s *Server) handleGridJSON(w http.ResponseWriter, r *http.Request) {
	year, month, err := monthParams(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, types.Confirmation{Status: "error", Message: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	bookings, err := s.api.ListBookings(ctx)
	if err != nil {
		s.log.Warn("cannot load bookings", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, types.Confirmation{Status: "error", Message: client.UserMessage(err)})
		return
	}

	writeJSON(w, http.StatusOK, s.builder.Render(year, month, bookings))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	req := types.BookingRequest{
		Name:          r.PostForm.Get("meno"),
		Date:          r.PostForm.Get("datum"),
		Time:          r.PostForm.Get("cas"),
		ProcedureName: r.PostForm.Get("procedura_nazov"),
		ChildName:     r.PostForm.Get("meno_dietata"),
		Diagnosis:     r.PostForm.Get("diagnoza"),
		ParentName:    r.PostForm.Get("meno_rodica"),
		Phone:         r.PostForm.Get("telefon"),
		Email:         r.PostForm.Get("email"),
		Source:        r.PostForm.Get("zdroj_info"),
	}
	if price := r.PostForm.Get("procedura_cena"); price != "" {
		if v, err := strconv.ParseFloat(strings.Replace(price, ",", ".", 1), 64); err == nil {
			req.ProcedurePrice = v
		}
	}

	// the page re-renders on the month of the submitted date
	year, month := s.builder.Today()
	if date, err := calendar.ParseDate(req.Date); err == nil {
		year, month = date.Year, date.Month
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	_, err := s.api.CreateBooking(ctx, req)
	if err != nil {
		s.log.Info("booking not created", zap.String("date", req.Date), zap.String("time", req.Time), zap.Error(err))

		data := s.loadPage(r.Context(), year, month)
		data.Status = client.UserMessage(err)
		data.StatusError = true
		data.Form = formValues{Name: r.PostForm.Get("meno"), Date: req.Date, Time: req.Time}
		s.render(w, submitStatus(err), data)
		return
	}

	s.log.Info("booking created", zap.String("date", req.Date), zap.String("time", req.Time))

	data := s.loadPage(r.Context(), year, month)
	data.Status = client.MsgSuccess
	s.render(w, http.StatusOK, data)
}

// loadPage fetches the booking list and renders the month. A failed fetch leaves FetchError set.
func (s *Server) loadPage(ctx context.Context, year int, month time.Month) pageData {
	prevYear, prevMonth := calendar.Shift(year, month, -1)
	nextYear, nextMonth := calendar.Shift(year, month, 1)

	data := pageData{
		Weekdays: calendar.WeekdayNames,
		Slots:    s.builder.Slots(),
		Prev:     monthPath(prevYear, prevMonth),
		Next:     monthPath(nextYear, nextMonth),
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	bookings, err := s.api.ListBookings(ctx)
	if err != nil {
		s.log.Warn("cannot load bookings", zap.Error(err))
		data.Grid = calendar.Grid{Year: year, Month: month, Title: calendar.MonthTitle(year, month)}
		data.FetchError = client.UserMessage(err)
		return data
	}

	data.Grid = s.builder.Render(year, month, bookings)
	data.Weeks = data.Grid.Weeks()
	return data
}

func (s *Server) render(w http.ResponseWriter, code int, data pageData) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "kalendar.html", data); err != nil {
		s.log.Error("cannot render page", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	w.Write(buf.Bytes())
}

func submitStatus(err error) int {
	var se *client.SubmitError
	if !errors.As(err, &se) {
		return http.StatusBadGateway
	}
	switch se.Kind {
	case client.Invalid:
		return http.StatusBadRequest
	case client.Rejected:
		if se.StatusCode >= 400 && se.StatusCode < 500 {
			return se.StatusCode
		}
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadGateway
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func monthParams(r *http.Request) (int, time.Month, error) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1 || year > 9999 {
		return 0, 0, fmt.Errorf("invalid year %q", chi.URLParam(r, "year"))
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid month %q", chi.URLParam(r, "month"))
	}
	return year, time.Month(month), nil
}

func monthPath(year int, month time.Month) string {
	return fmt.Sprintf("/kalendar/%d/%d", year, int(month))
}

func cellClass(cell *types.DayCell) string {
	class := "kalendar-den"
	switch cell.State {
	case types.Free:
		class += " volny"
	case types.Partial:
		class += " ciastocne"
	case types.Full:
		class += " plny"
	}
	if cell.Today {
		class += " dnes"
	}
	return class
}

func tooltipHTML(cell *types.DayCell) template.HTML {
	text := calendar.Tooltip(*cell, func(s string) string {
		return "<s>" + template.HTMLEscapeString(s) + "</s>"
	})
	// slot times are escaped above or come from the fixed table
	return template.HTML(strings.ReplaceAll(text, "\n", "<br>"))
}

package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Booking represents an existing reservation returned by the booking API
type Booking struct {
	Date string `json:"datum"`          // YYYY-MM-DD
	Time string `json:"cas"`            // HH:MM
	Name string `json:"meno,omitempty"` // not returned by the public listing
}

// CalendarDate is a (year, month, day) triple
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// Key returns the canonical YYYY-MM-DD form used for lookups
func (d CalendarDate) Key() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Occupancy classifies a day by how many of its slots are taken
type Occupancy int

const (
	Free Occupancy = iota
	Partial
	Full
)

func (o Occupancy) String() string {
	switch o {
	case Free:
		return "free"
	case Partial:
		return "partial"
	case Full:
		return "full"
	}
	return "unknown"
}

func (o Occupancy) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// SlotState is one daily time slot with its booked flag
type SlotState struct {
	Time   string `json:"time"`
	Booked bool   `json:"booked"`
}

// DayCell is one rendered day of the month grid
type DayCell struct {
	Date      CalendarDate `json:"-"`
	Key       string       `json:"date"`
	Bookings  []Booking    `json:"bookings"`
	State     Occupancy    `json:"state"`
	Slots     []SlotState  `json:"slots"`
	Available []string     `json:"available"`
	Today     bool         `json:"today"`
}

// BookingRequest is the body of a create-booking call.
// Only Name, Date and Time are required; the rest belongs to the extended order form.
type BookingRequest struct {
	Name           string  `json:"meno" validate:"required"`
	Date           string  `json:"datum" validate:"required,datetime=2006-01-02"`
	Time           string  `json:"cas" validate:"required,datetime=15:04"`
	ProcedureName  string  `json:"procedura_nazov,omitempty"`
	ProcedurePrice float64 `json:"procedura_cena,omitempty" validate:"gte=0"`
	ChildName      string  `json:"meno_dietata,omitempty"`
	Diagnosis      string  `json:"diagnoza,omitempty"`
	ParentName     string  `json:"meno_rodica,omitempty"`
	Phone          string  `json:"telefon,omitempty"`
	Email          string  `json:"email,omitempty" validate:"omitempty,email"`
	Source         string  `json:"zdroj_info,omitempty"`
}

// Confirmation is the response payload of write calls
type Confirmation struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// AdminBooking is a full order row from the admin listing
type AdminBooking struct {
	ID             int    `json:"id"`
	Date           string `json:"datum"`
	Time           string `json:"cas"`
	ProcedureName  string `json:"procedura_nazov"`
	ProcedurePrice Price  `json:"procedura_cena"`
	ChildName      string `json:"meno_dietata"`
	Diagnosis      string `json:"diagnoza"`
	ParentName     string `json:"meno_rodica"`
	Phone          string `json:"telefon"`
	Email          string `json:"email"`
	Source         string `json:"zdroj_info"`
	PaymentStatus  string `json:"stav_platby"`
}

// Price accepts both JSON numbers and numeric strings (NUMERIC columns are serialized as strings)
type Price float64

func (p *Price) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*p = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid price %q: %w", s, err)
	}
	*p = Price(v)
	return nil
}

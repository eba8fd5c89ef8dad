package client

import (
	"errors"
	"fmt"
)

const (
	MsgFetchFailed   = "Nepodarilo sa načítať dáta zo servera."
	MsgTransport     = "Nastala chyba pri komunikácii so serverom."
	MsgUnknown       = "Neznáma chyba"
	MsgInvalidFields = "Chýbajú povinné polia"
	MsgSuccess       = "Ďakujeme! Vaša objednávka bola prijatá."
)

// FetchError is returned when the booking list cannot be read
type FetchError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: unexpected status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// UserMessage is shown in place of the calendar
func (e *FetchError) UserMessage() string { return MsgFetchFailed }

type SubmitKind int

const (
	// Invalid means the request never left the client
	Invalid SubmitKind = iota
	// Transport covers network failures and unreadable responses
	Transport
	// Rejected means the server answered but did not report success
	Rejected
)

func (k SubmitKind) String() string {
	switch k {
	case Invalid:
		return "invalid"
	case Transport:
		return "transport"
	case Rejected:
		return "rejected"
	}
	return "unknown"
}

// SubmitError is returned by write calls
type SubmitError struct {
	Op         string
	Kind       SubmitKind
	StatusCode int
	Message    string // server-provided or fallback text
	Err        error
}

func (e *SubmitError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SubmitError) Unwrap() error { return e.Err }

// UserMessage returns the text shown next to the form
func (e *SubmitError) UserMessage() string {
	if e.Kind == Transport {
		return MsgTransport
	}
	return "Chyba: " + e.Message
}

var (
	errFetch = func(op string, err error) *FetchError {
		return &FetchError{Op: op, Err: err}
	}
	errFetchStatus = func(op string, status int) *FetchError {
		return &FetchError{Op: op, StatusCode: status, Err: errors.New("non-success response")}
	}
	errInvalid = func(op string, err error) *SubmitError {
		return &SubmitError{Op: op, Kind: Invalid, Message: MsgInvalidFields, Err: err}
	}
	errTransport = func(op string, err error) *SubmitError {
		return &SubmitError{Op: op, Kind: Transport, Message: MsgTransport, Err: err}
	}
	errRejected = func(op string, status int, message string) *SubmitError {
		if message == "" {
			message = MsgUnknown
		}
		return &SubmitError{Op: op, Kind: Rejected, StatusCode: status, Message: message}
	}
)

// UserMessage extracts the visible text for any error returned by the client
func UserMessage(err error) string {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.UserMessage()
	}
	var se *SubmitError
	if errors.As(err, &se) {
		return se.UserMessage()
	}
	return MsgTransport
}

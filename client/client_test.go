package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"booking-calendar/types"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, WithRateLimit(0))
}

func validRequest() types.BookingRequest {
	return types.BookingRequest{Name: "Jana", Date: "2024-03-05", Time: "08:00"}
}

func TestListBookings(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/terminy", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		w.Write([]byte(`[{"datum":"2024-03-05","cas":"08:00"},{"datum":"2024-03-01","cas":"17:00","meno":"Eva"}]`))
	})

	bookings, err := c.ListBookings(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []types.Booking{
		{Date: "2024-03-05", Time: "08:00"},
		{Date: "2024-03-01", Time: "17:00", Name: "Eva"},
	}, bookings)
}

func TestListBookings_Empty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	bookings, err := c.ListBookings(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, bookings)
	assert.Empty(t, bookings)
}

func TestListBookings_Failures(t *testing.T) {
	t.Run("Malformed Body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>oops</html>`))
		})

		_, err := c.ListBookings(context.Background())

		var fe *FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, MsgFetchFailed, fe.UserMessage())
	})

	t.Run("Server Error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := c.ListBookings(context.Background())

		var fe *FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, http.StatusInternalServerError, fe.StatusCode)
	})

	t.Run("Unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := New(url, WithRateLimit(0)).ListBookings(context.Background())

		var fe *FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, MsgFetchFailed, UserMessage(err))
	})
}

func TestCreateBooking_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/objednat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, "Jana", body["meno"])
		assert.Equal(t, "2024-03-05", body["datum"])
		assert.Equal(t, "08:00", body["cas"])
		assert.NotContains(t, body, "email")

		w.Write([]byte(`{"status":"success","message":"Objednávka úspešne vytvorená"}`))
	})

	conf, err := c.CreateBooking(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, "success", conf.Status)
	assert.Equal(t, "Objednávka úspešne vytvorená", conf.Message)
}

func TestCreateBooking_RejectedWithMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"error","message":"slot taken"}`))
	})

	_, err := c.CreateBooking(context.Background(), validRequest())

	var se *SubmitError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, Rejected, se.Kind)
	assert.Equal(t, http.StatusOK, se.StatusCode)
	assert.Equal(t, "slot taken", se.Message)
	assert.Equal(t, "Chyba: slot taken", se.UserMessage())
}

func TestCreateBooking_ConflictStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"status":"error","message":"Tento termín je už obsadený."}`))
	})

	_, err := c.CreateBooking(context.Background(), validRequest())

	var se *SubmitError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, Rejected, se.Kind)
	assert.Equal(t, http.StatusConflict, se.StatusCode)
	assert.Equal(t, "Chyba: Tento termín je už obsadený.", UserMessage(err))
}

func TestCreateBooking_SuccessFlagNeedsOKStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":"success"}`))
	})

	_, err := c.CreateBooking(context.Background(), validRequest())

	var se *SubmitError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, Rejected, se.Kind)
	assert.Equal(t, "Chyba: "+MsgUnknown, se.UserMessage())
}

func TestCreateBooking_TransportFailures(t *testing.T) {
	t.Run("Non JSON Response", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`Bad Gateway`))
		})

		_, err := c.CreateBooking(context.Background(), validRequest())

		var se *SubmitError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, Transport, se.Kind)
		assert.Equal(t, MsgTransport, se.UserMessage())
	})

	t.Run("Timeout", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		})
		c.http.Timeout = 20 * time.Millisecond

		_, err := c.CreateBooking(context.Background(), validRequest())

		var se *SubmitError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, Transport, se.Kind)
	})
}

func TestCreateBooking_Validation(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	cases := map[string]types.BookingRequest{
		"missing name": {Date: "2024-03-05", Time: "08:00"},
		"blank name":   {Name: "   ", Date: "2024-03-05", Time: "08:00"},
		"bad date":     {Name: "Jana", Date: "05.03.2024", Time: "08:00"},
		"bad time":     {Name: "Jana", Date: "2024-03-05", Time: "8h"},
		"bad email":    {Name: "Jana", Date: "2024-03-05", Time: "08:00", Email: "nope"},
	}

	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := c.CreateBooking(context.Background(), req)

			var se *SubmitError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, Invalid, se.Kind)
			assert.Equal(t, "Chyba: "+MsgInvalidFields, se.UserMessage())
		})
	}
	assert.Zero(t, atomic.LoadInt32(&calls), "invalid requests must not reach the server")
}

func TestCreateBooking_ExtendedFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Masáž", body["procedura_nazov"])
		assert.Equal(t, 35.5, body["procedura_cena"])
		assert.Equal(t, "rodic@example.sk", body["email"])
		w.Write([]byte(`{"status":"success"}`))
	})

	req := validRequest()
	req.ProcedureName = "Masáž"
	req.ProcedurePrice = 35.5
	req.Email = " rodic@example.sk "

	_, err := c.CreateBooking(context.Background(), req)
	require.NoError(t, err)
}

func TestAdminEndpoints(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/admin/vsetky-objednavky", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":7,"datum":"2024-03-05","cas":"08:00","procedura_cena":"35.00","meno_rodica":"Eva","stav_platby":"čaká na platbu"}]`))
	})
	mux.HandleFunc("/api/admin/zmazat/7", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(`{"status":"success","message":"Objednávka zmazaná"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	c := New(srv.URL, WithRateLimit(0))

	all, err := c.ListAllBookings(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 7, all[0].ID)
	assert.Equal(t, types.Price(35), all[0].ProcedurePrice)
	assert.Equal(t, "čaká na platbu", all[0].PaymentStatus)

	conf, err := c.DeleteBooking(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Objednávka zmazaná", conf.Message)

	_, err = c.DeleteBooking(context.Background(), 0)
	var se *SubmitError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, Invalid, se.Kind)

	_, err = c.DeleteBooking(context.Background(), 8)
	require.ErrorAs(t, err, &se)
	assert.Equal(t, Transport, se.Kind, "404 page is not a JSON payload")
}

func TestListBookings_ConcurrentCallsAreNotPaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"datum":"2024-03-05","cas":"08:00"}]`))
	}))
	defer srv.Close()
	c := New(srv.URL)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_, err := c.ListBookings(ctx)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestRateLimitHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()
	c := New(srv.URL, WithRateLimit(time.Hour))

	_, err := c.ListBookings(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = c.ListBookings(ctx)

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
}

func TestUserMessage_UnknownError(t *testing.T) {
	assert.Equal(t, MsgTransport, UserMessage(errors.New("boom")))
}

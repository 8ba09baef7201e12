package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticketing/internal/repository"
	"github.com/iliyamo/event-ticketing/internal/service"
)

type fakeBookingService struct {
	ReserveFn     func(ctx context.Context, userID, eventID uint64, seatIDs []uint64) (*repository.BookingDetail, error)
	ListForUserFn func(ctx context.Context, userID uint64) ([]repository.BookingDetail, error)
	GetFn         func(ctx context.Context, bookingID, userID uint64) (*repository.BookingDetail, error)
	CancelFn      func(ctx context.Context, bookingID, userID uint64) error
}

func (f *fakeBookingService) Reserve(ctx context.Context, userID, eventID uint64, seatIDs []uint64) (*repository.BookingDetail, error) {
	return f.ReserveFn(ctx, userID, eventID, seatIDs)
}

func (f *fakeBookingService) ListForUser(ctx context.Context, userID uint64) ([]repository.BookingDetail, error) {
	return f.ListForUserFn(ctx, userID)
}

func (f *fakeBookingService) Get(ctx context.Context, bookingID, userID uint64) (*repository.BookingDetail, error) {
	return f.GetFn(ctx, bookingID, userID)
}

func (f *fakeBookingService) Cancel(ctx context.Context, bookingID, userID uint64) error {
	return f.CancelFn(ctx, bookingID, userID)
}

// newContext builds an echo context carrying an authenticated user, the
// way the JWT middleware would leave it.
func newContext(method, target, body string, userID interface{}) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != nil {
		c.Set("user_id", userID)
	}
	return c, rec
}

func TestCreateBooking(t *testing.T) {
	svc := &fakeBookingService{
		ReserveFn: func(_ context.Context, userID, eventID uint64, seatIDs []uint64) (*repository.BookingDetail, error) {
			assert.Equal(t, uint64(42), userID)
			assert.Equal(t, uint64(7), eventID)
			assert.Equal(t, []uint64{1, 2}, seatIDs)
			return &repository.BookingDetail{ID: 5, UserID: userID, EventID: eventID, Quantity: 2}, nil
		},
	}
	h := NewBookingHandler(svc)

	c, rec := newContext(http.MethodPost, "/v1/bookings", `{"event_id":7,"seat_ids":[1,2]}`, float64(42))
	require.NoError(t, h.CreateBooking(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Item repository.BookingDetail `json:"item"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(5), resp.Item.ID)
}

func TestCreateBookingStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"invalid", service.ErrInvalidRequest, http.StatusBadRequest},
		{"event missing", service.ErrEventNotFound, http.StatusNotFound},
		{"seats taken", service.ErrSeatsUnavailable, http.StatusConflict},
		{"contention", service.ErrBusy, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeBookingService{
				ReserveFn: func(context.Context, uint64, uint64, []uint64) (*repository.BookingDetail, error) {
					return nil, tc.err
				},
			}
			c, rec := newContext(http.MethodPost, "/v1/bookings", `{"event_id":7,"seat_ids":[1]}`, float64(42))
			require.NoError(t, NewBookingHandler(svc).CreateBooking(c))
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestCreateBookingRejectsBadBody(t *testing.T) {
	h := NewBookingHandler(&fakeBookingService{})

	c, rec := newContext(http.MethodPost, "/v1/bookings", `{"seat_ids":[1]}`, float64(42))
	require.NoError(t, h.CreateBooking(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newContext(http.MethodPost, "/v1/bookings", `{"event_id":7,"seat_ids":[]}`, float64(42))
	require.NoError(t, h.CreateBooking(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// no authenticated user in context
	c, rec = newContext(http.MethodPost, "/v1/bookings", `{"event_id":7,"seat_ids":[1]}`, nil)
	require.NoError(t, h.CreateBooking(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBusyResponseCarriesRetryAfter(t *testing.T) {
	svc := &fakeBookingService{
		ReserveFn: func(context.Context, uint64, uint64, []uint64) (*repository.BookingDetail, error) {
			return nil, service.ErrBusy
		},
	}
	c, rec := newContext(http.MethodPost, "/v1/bookings", `{"event_id":7,"seat_ids":[1]}`, float64(42))
	require.NoError(t, NewBookingHandler(svc).CreateBooking(c))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestGetBooking(t *testing.T) {
	svc := &fakeBookingService{
		GetFn: func(_ context.Context, bookingID, userID uint64) (*repository.BookingDetail, error) {
			if bookingID != 5 {
				return nil, service.ErrBookingNotFound
			}
			if userID != 42 {
				return nil, service.ErrForbidden
			}
			return &repository.BookingDetail{ID: 5, UserID: 42}, nil
		},
	}
	h := NewBookingHandler(svc)

	c, rec := newContext(http.MethodGet, "/", "", float64(42))
	c.SetPath("/v1/bookings/:id")
	c.SetParamNames("id")
	c.SetParamValues("5")
	require.NoError(t, h.GetBooking(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = newContext(http.MethodGet, "/", "", float64(99))
	c.SetPath("/v1/bookings/:id")
	c.SetParamNames("id")
	c.SetParamValues("5")
	require.NoError(t, h.GetBooking(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	c, rec = newContext(http.MethodGet, "/", "", float64(42))
	c.SetPath("/v1/bookings/:id")
	c.SetParamNames("id")
	c.SetParamValues("77")
	require.NoError(t, h.GetBooking(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c, rec = newContext(http.MethodGet, "/", "", float64(42))
	c.SetPath("/v1/bookings/:id")
	c.SetParamNames("id")
	c.SetParamValues("abc")
	require.NoError(t, h.GetBooking(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelBooking(t *testing.T) {
	svc := &fakeBookingService{
		CancelFn: func(_ context.Context, bookingID, _ uint64) error {
			if bookingID == 5 {
				return nil
			}
			return service.ErrConflict
		},
	}
	h := NewBookingHandler(svc)

	c, rec := newContext(http.MethodDelete, "/", "", float64(42))
	c.SetPath("/v1/bookings/:id")
	c.SetParamNames("id")
	c.SetParamValues("5")
	require.NoError(t, h.CancelBooking(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	c, rec = newContext(http.MethodDelete, "/", "", float64(42))
	c.SetPath("/v1/bookings/:id")
	c.SetParamNames("id")
	c.SetParamValues("6")
	require.NoError(t, h.CancelBooking(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestListBookings(t *testing.T) {
	svc := &fakeBookingService{
		ListForUserFn: func(_ context.Context, userID uint64) ([]repository.BookingDetail, error) {
			assert.Equal(t, uint64(42), userID)
			return []repository.BookingDetail{}, nil
		},
	}
	c, rec := newContext(http.MethodGet, "/v1/bookings", "", float64(42))
	require.NoError(t, NewBookingHandler(svc).ListBookings(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())
}

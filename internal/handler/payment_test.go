package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/service"
)

type fakePaymentService struct {
	InitiateFn     func(ctx context.Context, bookingID, userID uint64) (*service.PaymentIntent, error)
	UpdateStatusFn func(ctx context.Context, transactionID, status string) (*model.Payment, error)
	ListForUserFn  func(ctx context.Context, userID uint64) ([]model.Payment, error)
}

func (f *fakePaymentService) Initiate(ctx context.Context, bookingID, userID uint64) (*service.PaymentIntent, error) {
	return f.InitiateFn(ctx, bookingID, userID)
}

func (f *fakePaymentService) UpdateStatus(ctx context.Context, transactionID, status string) (*model.Payment, error) {
	return f.UpdateStatusFn(ctx, transactionID, status)
}

func (f *fakePaymentService) ListForUser(ctx context.Context, userID uint64) ([]model.Payment, error) {
	return f.ListForUserFn(ctx, userID)
}

func TestInitiatePayment(t *testing.T) {
	svc := &fakePaymentService{
		InitiateFn: func(_ context.Context, bookingID, userID uint64) (*service.PaymentIntent, error) {
			assert.Equal(t, uint64(5), bookingID)
			assert.Equal(t, uint64(42), userID)
			return &service.PaymentIntent{
				Payment:    model.Payment{ID: 1, BookingID: 5, Status: model.PaymentStatusInitiated, TransactionID: "pidx-1"},
				PaymentURL: "https://pay.example/p1",
			}, nil
		},
	}
	h := NewPaymentHandler(svc)

	c, rec := newContext(http.MethodPost, "/", "", float64(42))
	c.SetPath("/v1/bookings/:id/payment")
	c.SetParamNames("id")
	c.SetParamValues("5")
	require.NoError(t, h.InitiatePayment(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "payment_url")
}

func TestInitiatePaymentGatewayDown(t *testing.T) {
	svc := &fakePaymentService{
		InitiateFn: func(context.Context, uint64, uint64) (*service.PaymentIntent, error) {
			return nil, service.ErrGatewayUnavailable
		},
	}
	c, rec := newContext(http.MethodPost, "/", "", float64(42))
	c.SetPath("/v1/bookings/:id/payment")
	c.SetParamNames("id")
	c.SetParamValues("5")
	require.NoError(t, NewPaymentHandler(svc).InitiatePayment(c))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestPaymentCallback(t *testing.T) {
	svc := &fakePaymentService{
		UpdateStatusFn: func(_ context.Context, transactionID, status string) (*model.Payment, error) {
			if transactionID != "pidx-1" {
				return nil, service.ErrPaymentNotFound
			}
			if !model.ValidPaymentStatus(status) {
				return nil, service.ErrInvalidRequest
			}
			return &model.Payment{ID: 1, TransactionID: transactionID, Status: status}, nil
		},
	}
	h := NewPaymentHandler(svc)

	// Khalti-style body with pidx
	c, rec := newContext(http.MethodPost, "/v1/payments/callback", `{"pidx":"pidx-1","status":"completed"}`, nil)
	require.NoError(t, h.PaymentCallback(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = newContext(http.MethodPost, "/v1/payments/callback", `{"transaction_id":"pidx-1","status":"bogus"}`, nil)
	require.NoError(t, h.PaymentCallback(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newContext(http.MethodPost, "/v1/payments/callback", `{"transaction_id":"missing","status":"completed"}`, nil)
	require.NoError(t, h.PaymentCallback(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListPayments(t *testing.T) {
	svc := &fakePaymentService{
		ListForUserFn: func(_ context.Context, userID uint64) ([]model.Payment, error) {
			assert.Equal(t, uint64(42), userID)
			return []model.Payment{{ID: 1, BookingID: 5}}, nil
		},
	}
	c, rec := newContext(http.MethodGet, "/v1/payments", "", float64(42))
	require.NoError(t, NewPaymentHandler(svc).ListPayments(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"items"`)
}

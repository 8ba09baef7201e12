package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/service"
)

// PaymentService is the slice of the payment tracker the HTTP layer
// calls.
type PaymentService interface {
	Initiate(ctx context.Context, bookingID, userID uint64) (*service.PaymentIntent, error)
	UpdateStatus(ctx context.Context, transactionID, status string) (*model.Payment, error)
	ListForUser(ctx context.Context, userID uint64) ([]model.Payment, error)
}

// paymentView is the public projection of a payment row.
type paymentView struct {
	ID            uint64    `json:"id"`
	BookingID     uint64    `json:"booking_id"`
	Provider      string    `json:"provider"`
	AmountCents   uint32    `json:"amount_cents"`
	Status        string    `json:"status"`
	TransactionID string    `json:"transaction_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toPaymentView(p model.Payment) paymentView {
	return paymentView{
		ID:            p.ID,
		BookingID:     p.BookingID,
		Provider:      p.Provider,
		AmountCents:   p.AmountCents,
		Status:        p.Status,
		TransactionID: p.TransactionID,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// PaymentHandler serves payment initiation, the gateway callback and
// the payment listing.
type PaymentHandler struct {
	payments PaymentService
}

// NewPaymentHandler returns a PaymentHandler over the given service.
func NewPaymentHandler(payments PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// InitiatePayment handles POST /v1/bookings/:id/payment.  Repeating the
// call for a booking that already has a payment returns the existing
// payment instead of creating a second one.
func (h *PaymentHandler) InitiatePayment(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	intent, err := h.payments.Initiate(c.Request().Context(), id, userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	resp := echo.Map{"payment": toPaymentView(intent.Payment)}
	if intent.PaymentURL != "" {
		resp["payment_url"] = intent.PaymentURL
	}
	return c.JSON(http.StatusOK, resp)
}

type paymentCallbackRequest struct {
	TransactionID string `json:"transaction_id"`
	Pidx          string `json:"pidx"` // Khalti names the reference pidx
	Status        string `json:"status"`
}

// PaymentCallback handles POST /v1/payments/callback, the gateway's
// status report.  The endpoint is unauthenticated; the transaction
// reference is the shared secret linking the callback to a payment.
func (h *PaymentHandler) PaymentCallback(c echo.Context) error {
	var body paymentCallbackRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ref := body.TransactionID
	if ref == "" {
		ref = body.Pidx
	}
	p, err := h.payments.UpdateStatus(c.Request().Context(), ref, body.Status)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toPaymentView(*p)})
}

// ListPayments handles GET /v1/payments.
func (h *PaymentHandler) ListPayments(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.payments.ListForUser(c.Request().Context(), userID)
	if err != nil {
		return writeServiceError(c, err)
	}
	views := make([]paymentView, 0, len(items))
	for _, p := range items {
		views = append(views, toPaymentView(p))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": views})
}

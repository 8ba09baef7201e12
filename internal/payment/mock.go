package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// MockGateway fabricates transaction references locally.  It backs
// development and test deployments that have no Khalti credentials;
// every initiation succeeds with a uuid reference and a fake checkout
// URL.
type MockGateway struct{}

// NewMockGateway returns a MockGateway.
func NewMockGateway() *MockGateway { return &MockGateway{} }

// Initiate returns a synthetic transaction for the order.
func (g *MockGateway) Initiate(_ context.Context, req *InitiateRequest) (*InitiateResponse, error) {
	ref := uuid.NewString()
	return &InitiateResponse{
		TransactionID: ref,
		PaymentURL:    fmt.Sprintf("https://pay.example.test/checkout/%s?order=%s", ref, req.OrderID),
	}, nil
}

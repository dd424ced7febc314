package payment

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// SimulatedOrderPrefix marks order ids that never reached a processor
const SimulatedOrderPrefix = "order_mock_"

// SimulatedProcessor issues synthetic orders when no processor credentials are configured
type SimulatedProcessor struct{}

func NewSimulatedProcessor() *SimulatedProcessor {
	return &SimulatedProcessor{}
}

func (p *SimulatedProcessor) CreateOrder(_ context.Context, req OrderRequest) (*Order, error) {
	return &Order{
		ID:          SimulatedOrderPrefix + ulid.Make().String(),
		AmountMinor: req.AmountMinor,
		Currency:    req.Currency,
		Status:      "created",
		Simulated:   true,
	}, nil
}

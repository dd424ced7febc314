package payment

import (
	"context"
	"fmt"

	"cardioalert/internal/config"

	"github.com/go-resty/resty/v2"
)

// RazorpayProcessor creates orders through the Razorpay REST API
type RazorpayProcessor struct {
	client *resty.Client
}

type razorpayOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type razorpayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

type razorpayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func NewRazorpayProcessor(cfg config.PaymentConfig) *RazorpayProcessor {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetBasicAuth(cfg.KeyID, cfg.KeySecret).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	return &RazorpayProcessor{client: client}
}

func (p *RazorpayProcessor) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	var out razorpayOrder
	var apiErr razorpayError
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(razorpayOrderRequest{
			Amount:   req.AmountMinor,
			Currency: req.Currency,
			Receipt:  req.Receipt,
			Notes:    req.Notes,
		}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/orders")
	if err != nil {
		return nil, fmt.Errorf("razorpay request failed: %w", err)
	}
	if resp.IsError() {
		if apiErr.Error.Description != "" {
			return nil, fmt.Errorf("razorpay returned %d: %s", resp.StatusCode(), apiErr.Error.Description)
		}
		return nil, fmt.Errorf("razorpay returned %d", resp.StatusCode())
	}
	if out.ID == "" {
		return nil, fmt.Errorf("razorpay returned an order without id")
	}

	return &Order{
		ID:          out.ID,
		AmountMinor: out.Amount,
		Currency:    out.Currency,
		Status:      out.Status,
	}, nil
}

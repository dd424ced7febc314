package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"cardioalert/internal/apperror"
	"cardioalert/internal/config"
	"cardioalert/pkg/logger"

	"go.uber.org/zap"
)

// OrderRequest is what the gateway asks a processor to create
type OrderRequest struct {
	AmountMinor int64
	Currency    string
	Receipt     string
	Notes       map[string]string
}

// Order is the processor's handle for a created order
type Order struct {
	ID          string `json:"id"`
	AmountMinor int64  `json:"amount"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
	Simulated   bool   `json:"simulated"`
}

// Processor is the external payment processor
type Processor interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
}

// Verification is the outcome of checking a payment signature
type Verification int

const (
	Rejected Verification = iota
	VerifiedLive
	VerifiedSimulated
)

func (v Verification) OK() bool {
	return v == VerifiedLive || v == VerifiedSimulated
}

func (v Verification) String() string {
	switch v {
	case VerifiedLive:
		return "verified"
	case VerifiedSimulated:
		return "simulated"
	}
	return "rejected"
}

// Gateway creates payment orders and verifies payment signatures
type Gateway struct {
	processor Processor
	secret    string
	currency  string
	keyID     string
}

// NewGateway picks the Razorpay processor when both credentials are configured and the
// simulated one otherwise. Order creation and verification always share the same mode.
func NewGateway(cfg config.PaymentConfig) *Gateway {
	if cfg.KeyID != "" && cfg.KeySecret != "" {
		return NewGatewayWith(NewRazorpayProcessor(cfg), cfg.KeySecret, cfg.Currency, cfg.KeyID)
	}

	if cfg.KeyID != "" || cfg.KeySecret != "" {
		logger.Warn("Incomplete Razorpay credentials ignored, both key id and secret are required",
			zap.Bool("key_id_set", cfg.KeyID != ""),
			zap.Bool("key_secret_set", cfg.KeySecret != ""),
		)
	}
	logger.Warn("Payment processor not configured, orders will be simulated", zap.Bool("simulated", true))
	return NewGatewayWith(NewSimulatedProcessor(), "", cfg.Currency, cfg.KeyID)
}

func NewGatewayWith(processor Processor, secret, currency, keyID string) *Gateway {
	if currency == "" {
		currency = "INR"
	}
	return &Gateway{processor: processor, secret: secret, currency: currency, keyID: keyID}
}

// KeyID is the public processor key handed to checkout clients
func (g *Gateway) KeyID() string {
	return g.keyID
}

func (g *Gateway) Currency() string {
	return g.currency
}

// CreateOrder asks the processor for an order of amountMinor for the given alert
func (g *Gateway) CreateOrder(ctx context.Context, amountMinor int64, alertID string, metadata map[string]string) (*Order, error) {
	if amountMinor <= 0 {
		return nil, apperror.Validation("order amount must be positive")
	}

	notes := map[string]string{"alertId": alertID}
	for k, v := range metadata {
		notes[k] = v
	}

	order, err := g.processor.CreateOrder(ctx, OrderRequest{
		AmountMinor: amountMinor,
		Currency:    g.currency,
		Receipt:     alertID,
		Notes:       notes,
	})
	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperror.Unavailable("payment processor", err)
	}

	if order.Simulated {
		logger.Warn("Simulated payment order created",
			zap.Bool("simulated", true),
			zap.String("order_id", order.ID),
			zap.String("alert_id", alertID),
			zap.Int64("amount", amountMinor),
		)
	} else {
		logger.Info("Payment order created",
			zap.String("order_id", order.ID),
			zap.String("alert_id", alertID),
			zap.Int64("amount", amountMinor),
		)
	}
	return order, nil
}

// Verify checks signature against HMAC-SHA256(secret, orderID|paymentID).
// Without a secret every payment is accepted as simulated.
func (g *Gateway) Verify(orderID, paymentID, signature string) Verification {
	if g.secret == "" {
		logger.Warn("Payment verification skipped, no processor secret configured",
			zap.Bool("simulated", true),
			zap.String("order_id", orderID),
			zap.String("payment_id", paymentID),
		)
		return VerifiedSimulated
	}

	expected := Sign(g.secret, orderID, paymentID)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		logger.Warn("Payment signature mismatch",
			zap.String("order_id", orderID),
			zap.String("payment_id", paymentID),
		)
		return Rejected
	}
	return VerifiedLive
}

// Sign returns the hex HMAC-SHA256 signature the processor issues for a payment
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

package notification

import (
	"context"
	"sync"

	"cardioalert/pkg/logger"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// SimulatedNotifier accepts every message without contacting FCM
type SimulatedNotifier struct {
	mu   sync.Mutex
	sent []Message
}

func NewSimulatedNotifier() *SimulatedNotifier {
	return &SimulatedNotifier{}
}

func (n *SimulatedNotifier) Send(_ context.Context, msg Message) (*Receipt, error) {
	n.mu.Lock()
	n.sent = append(n.sent, msg)
	n.mu.Unlock()

	logger.Warn("Simulated notification",
		zap.Bool("simulated", true),
		zap.String("channel", msg.Channel),
		zap.String("title", msg.Title),
	)
	return &Receipt{MessageID: "mock_" + ulid.Make().String(), Simulated: true}, nil
}

// Sent returns a copy of the messages accepted so far
func (n *SimulatedNotifier) Sent() []Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Message, len(n.sent))
	copy(out, n.sent)
	return out
}

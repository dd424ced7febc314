package notification

import (
	"context"
	"fmt"
	"strconv"

	"cardioalert/internal/config"

	"github.com/go-resty/resty/v2"
)

// ClickAction tells the mobile client which activity opens the notification
const ClickAction = "FLUTTER_NOTIFICATION_CLICK"

// FCMNotifier sends topic messages through the FCM HTTP endpoint
type FCMNotifier struct {
	client   *resty.Client
	endpoint string
}

type fcmRequest struct {
	To           string            `json:"to"`
	Priority     string            `json:"priority"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmResponse struct {
	MessageID int64  `json:"message_id"`
	Error     string `json:"error"`
}

func NewFCMNotifier(cfg config.NotificationConfig) *FCMNotifier {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Authorization", "key="+cfg.FCMServerKey).
		SetHeader("Content-Type", "application/json")
	return &FCMNotifier{client: client, endpoint: cfg.FCMEndpoint}
}

func (n *FCMNotifier) Send(ctx context.Context, msg Message) (*Receipt, error) {
	data := make(map[string]string, len(msg.Data)+1)
	for k, v := range msg.Data {
		data[k] = v
	}
	data["click_action"] = ClickAction

	var out fcmResponse
	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(fcmRequest{
			To:           "/topics/" + msg.Channel,
			Priority:     "high",
			Notification: fcmNotification{Title: msg.Title, Body: msg.Body},
			Data:         data,
		}).
		SetResult(&out).
		Post(n.endpoint)
	if err != nil {
		return nil, fmt.Errorf("fcm request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fcm returned %d", resp.StatusCode())
	}
	if out.Error != "" {
		return nil, fmt.Errorf("fcm rejected message: %s", out.Error)
	}

	return &Receipt{MessageID: strconv.FormatInt(out.MessageID, 10)}, nil
}

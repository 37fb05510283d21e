package notification

import (
	"context"

	"firebase.google.com/go/v4/messaging"
)

// PushSender is satisfied by *messaging.Client.
type PushSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

func assignmentPush(token, orderID, orderNumber, title string) *messaging.Message {
	return &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: "New service order assigned",
			Body:  orderNumber + ": " + title,
		},
		Data: map[string]string{
			"type":    "service_order_assigned",
			"orderId": orderID,
			"role":    "technician",
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{"apns-priority": "10"},
			Payload: &messaging.APNSPayload{Aps: &messaging.Aps{Sound: "default"}},
		},
	}
}

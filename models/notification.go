package models

// NotificationKind names the lifecycle event a notification reports.
type NotificationKind string

const (
	NotifyAssigned         NotificationKind = "assigned"
	NotifyCompleted        NotificationKind = "completed"
	NotifyCancelled        NotificationKind = "cancelled"
	NotifyFeedbackReminder NotificationKind = "feedback_reminder"
)

// WhatsAppPayload is the queued body of an outbound WhatsApp message.
type WhatsAppPayload struct {
	OrderID     string           `json:"orderId"`
	OrderNumber string           `json:"orderNumber"`
	Kind        NotificationKind `json:"kind"`
	Phone       string           `json:"phone"`
	Body        string           `json:"body"`
}

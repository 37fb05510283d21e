package notification

import (
	"fmt"

	"servicedesk/models"
)

// requesterMessage renders the WhatsApp text sent to the requester. An empty
// string means the kind has no requester message.
func requesterMessage(o models.ServiceOrder, kind models.NotificationKind) string {
	switch kind {
	case models.NotifyAssigned:
		return fmt.Sprintf("Your service order %s (%s) was assigned to %s.", o.OrderNumber, o.Title, o.TechnicianName)
	case models.NotifyCompleted:
		return fmt.Sprintf("Your service order %s (%s) was completed. Please confirm it and rate the service.", o.OrderNumber, o.Title)
	case models.NotifyCancelled:
		reason := ""
		if o.CancellationReason != nil && o.CancellationReason.Reason != "" {
			reason = " Reason: " + o.CancellationReason.Reason
		}
		return fmt.Sprintf("Your service order %s (%s) was cancelled.%s", o.OrderNumber, o.Title, reason)
	case models.NotifyFeedbackReminder:
		return fmt.Sprintf("Reminder: service order %s (%s) is waiting for your confirmation and feedback.", o.OrderNumber, o.Title)
	}
	return ""
}

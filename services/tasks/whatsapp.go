package tasks

import (
	"encoding/json"
	"time"

	"servicedesk/models"

	"github.com/hibiken/asynq"
)

const TypeWhatsAppSend = "notification:whatsapp"

// NewWhatsAppTask builds a one-shot delivery task. Notifications are best
// effort, so a failed delivery is not retried.
func NewWhatsAppTask(payload models.WhatsAppPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeWhatsAppSend, b)
	opts := []asynq.Option{
		asynq.MaxRetry(0),
		asynq.Timeout(30 * time.Second),
	}
	return task, opts, nil
}

// ParseWhatsAppTask decodes the payload of a TypeWhatsAppSend task.
func ParseWhatsAppTask(task *asynq.Task) (models.WhatsAppPayload, error) {
	var p models.WhatsAppPayload
	err := json.Unmarshal(task.Payload(), &p)
	return p, err
}

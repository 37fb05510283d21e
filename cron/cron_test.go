package cron

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"servicedesk/models"
	"servicedesk/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweep struct {
	calls     atomic.Int32
	olderThan time.Duration
	mu        sync.Mutex
}

func (f *fakeSweep) SendFeedbackReminders(ctx context.Context, olderThan time.Duration) (int, error) {
	f.mu.Lock()
	f.olderThan = olderThan
	f.mu.Unlock()
	f.calls.Add(1)
	return 1, nil
}

func TestFeedbackReminderCron_TicksUntilCancelled(t *testing.T) {
	sweep := &fakeSweep{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		StartFeedbackReminderCron(ctx, sweep, 72*time.Hour, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return sweep.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cron did not stop after cancel")
	}
	sweep.mu.Lock()
	assert.Equal(t, 72*time.Hour, sweep.olderThan)
	sweep.mu.Unlock()
}

type fakeDeliverer struct {
	got []models.WhatsAppPayload
	err error
}

func (f *fakeDeliverer) Deliver(ctx context.Context, p models.WhatsAppPayload) error {
	f.got = append(f.got, p)
	return f.err
}

func TestHandleWhatsAppTask(t *testing.T) {
	d := &fakeDeliverer{}
	task, _, err := tasks.NewWhatsAppTask(models.WhatsAppPayload{OrderID: "SO1", Phone: "+1", Body: "hi"})
	require.NoError(t, err)

	require.NoError(t, handleWhatsAppTask(d)(context.Background(), task))
	require.Len(t, d.got, 1)
	assert.Equal(t, "SO1", d.got[0].OrderID)

	d.err = errors.New("boom")
	err = handleWhatsAppTask(d)(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)

	bad := asynq.NewTask(tasks.TypeWhatsAppSend, []byte("{"))
	err = handleWhatsAppTask(d)(context.Background(), bad)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestFeedbackReminderCron_DisabledWithoutInterval(t *testing.T) {
	sweep := &fakeSweep{}
	StartFeedbackReminderCron(context.Background(), sweep, time.Hour, 0)
	assert.Zero(t, sweep.calls.Load())
}

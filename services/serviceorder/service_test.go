package serviceorder

import (
	"context"
	"sync"
	"testing"
	"time"

	"servicedesk/apperrors"
	establishmentRepo "servicedesk/database/repository/establishment"
	historyRepo "servicedesk/database/repository/history"
	orderRepo "servicedesk/database/repository/serviceorder"
	titleRepo "servicedesk/database/repository/title"
	userRepo "servicedesk/database/repository/user"
	"servicedesk/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentNotification struct {
	OrderID string
	Kind    models.NotificationKind
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *recordingNotifier) Notify(ctx context.Context, order models.ServiceOrder, kind models.NotificationKind) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{OrderID: order.ID, Kind: kind})
}

func (n *recordingNotifier) kinds() []models.NotificationKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]models.NotificationKind, 0, len(n.sent))
	for _, s := range n.sent {
		out = append(out, s.Kind)
	}
	return out
}

type fixture struct {
	svc      *DefaultServiceOrderService
	orders   *orderRepo.MemoryServiceOrderRepo
	history  *historyRepo.MemoryHistoryRepo
	notifier *recordingNotifier
	clock    *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	users := userRepo.NewMemoryUserRepo()
	for _, u := range []models.User{admin, tech, otherTech, requester, stranger} {
		u := u
		require.NoError(t, users.Create(ctx, &u))
	}
	inactive := models.User{UID: "T9", Name: "Idle Tech", UserType: models.UserTypeTechnician}
	require.NoError(t, users.Create(ctx, &inactive))

	ests := establishmentRepo.NewMemoryEstablishmentRepo()
	require.NoError(t, ests.Create(ctx, &models.Establishment{ID: "E1", Name: "Main Office", IsActive: true}))
	require.NoError(t, ests.Create(ctx, &models.Establishment{ID: "E2", Name: "Old Annex", IsActive: false}))
	require.NoError(t, ests.CreateSector(ctx, &models.Sector{ID: "S1", EstablishmentID: "E1", Name: "Kitchen"}))

	titles := titleRepo.NewMemoryTitleRepo()
	require.NoError(t, titles.Create(ctx, &models.Title{ID: "TT1", Name: "Air conditioning", IsActive: true}))

	clock := planNow
	f := &fixture{
		orders:   orderRepo.NewMemoryServiceOrderRepo(),
		history:  historyRepo.NewMemoryHistoryRepo(),
		notifier: &recordingNotifier{},
		clock:    &clock,
	}
	f.svc = &DefaultServiceOrderService{
		Orders:         f.orders,
		Users:          users,
		Establishments: ests,
		Titles:         titles,
		HistoryRepo:    f.history,
		Notifier:       f.notifier,
		Now:            func() time.Time { return *f.clock },
	}
	return f
}

func (f *fixture) advance(d time.Duration) {
	*f.clock = f.clock.Add(d)
}

func (f *fixture) open(t *testing.T) *models.ServiceOrder {
	t.Helper()
	o, err := f.svc.Create(context.Background(), requester, models.CreateServiceOrderRequest{
		Title:       "Broken AC",
		Description: "Unit in room 4 is leaking",
		Priority:    models.PriorityHigh,
		SectorID:    "S1",
	})
	require.NoError(t, err)
	return o
}

// inProgress drives a fresh order to in_progress with T1 assigned.
func (f *fixture) inProgress(t *testing.T) *models.ServiceOrder {
	t.Helper()
	ctx := context.Background()
	o := f.open(t)
	_, err := f.svc.Assign(ctx, admin, o.ID, tech.UID)
	require.NoError(t, err)
	o, err = f.svc.Start(ctx, tech, o.ID)
	require.NoError(t, err)
	return o
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	o := f.open(t)

	assert.NotEmpty(t, o.ID)
	assert.Regexp(t, `^OS-20260310-[0-9A-F]{6}$`, o.OrderNumber)
	assert.Equal(t, models.StatusOpen, o.Status)
	assert.Equal(t, int64(1), o.Version)
	assert.Equal(t, "E1", o.EstablishmentID)
	assert.Equal(t, "Main Office", o.EstablishmentName)
	assert.Equal(t, "Kitchen", o.SectorName)
	assert.Equal(t, requester.UID, o.UserID)
	assert.Empty(t, o.TechnicianID)

	entries, err := f.svc.History(context.Background(), requester, o.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "create", entries[0].Event)
}

func TestCreate_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := models.CreateServiceOrderRequest{Title: "Leak", Description: "Water on the floor", Priority: models.PriorityLow}

	_, err := f.svc.Create(ctx, tech, base)
	assert.Equal(t, 403, apperrors.HTTPStatus(err), "technicians do not open orders")

	req := base
	req.EstablishmentID = "E2"
	_, err = f.svc.Create(ctx, requester, req)
	assert.Equal(t, 403, apperrors.HTTPStatus(err), "end-users are bound to their establishment")

	_, err = f.svc.Create(ctx, admin, req)
	assert.Equal(t, 400, apperrors.HTTPStatus(err), "inactive establishment")

	req.EstablishmentID = "nope"
	_, err = f.svc.Create(ctx, admin, req)
	assert.Equal(t, 400, apperrors.HTTPStatus(err))

	req = base
	req.SectorID = "S404"
	_, err = f.svc.Create(ctx, requester, req)
	assert.Equal(t, 400, apperrors.HTTPStatus(err))

	req = base
	req.Priority = "critical"
	_, err = f.svc.Create(ctx, requester, req)
	assert.Equal(t, 400, apperrors.HTTPStatus(err))
}

func TestCreate_TitleFromCatalogue(t *testing.T) {
	f := newFixture(t)
	o, err := f.svc.Create(context.Background(), requester, models.CreateServiceOrderRequest{
		TitleID:     "TT1",
		Description: "Too warm in the lobby",
		Priority:    models.PriorityMedium,
	})
	require.NoError(t, err)
	assert.Equal(t, "TT1", o.TitleID)
	assert.Equal(t, "Air conditioning", o.Title)
}

func TestAssignSetsTechnicianAndNotifies(t *testing.T) {
	f := newFixture(t)
	o := f.open(t)

	got, err := f.svc.Assign(context.Background(), admin, o.ID, tech.UID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAssigned, got.Status)
	assert.Equal(t, "T1", got.TechnicianID)
	assert.Equal(t, "Tom Tech", got.TechnicianName)
	assert.Equal(t, int64(2), got.Version)
	assert.Equal(t, []models.NotificationKind{models.NotifyAssigned}, f.notifier.kinds())
}

func TestAssign_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.open(t)

	_, err := f.svc.Assign(ctx, admin, o.ID, "ghost")
	assert.Equal(t, 400, apperrors.HTTPStatus(err))

	_, err = f.svc.Assign(ctx, admin, o.ID, requester.UID)
	assert.Equal(t, 400, apperrors.HTTPStatus(err))

	_, err = f.svc.Assign(ctx, admin, o.ID, "T9")
	assert.Equal(t, 400, apperrors.HTTPStatus(err), "inactive technician")

	_, err = f.svc.Assign(ctx, admin, "missing", tech.UID)
	assert.Equal(t, 404, apperrors.HTTPStatus(err))

	got, err := f.svc.Get(ctx, admin, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOpen, got.Status)
	assert.Equal(t, int64(1), got.Version)
	assert.Empty(t, f.notifier.kinds())
}

func TestPauseKeepsUnrelatedFields(t *testing.T) {
	f := newFixture(t)
	o := f.inProgress(t)
	f.advance(time.Hour)

	got, err := f.svc.Pause(context.Background(), tech, o.ID, "waiting for parts")
	require.NoError(t, err)

	assert.Equal(t, models.StatusPaused, got.Status)
	require.NotNil(t, got.PauseReason)
	assert.Equal(t, "waiting for parts", got.PauseReason.Reason)
	assert.Equal(t, planNow.Add(time.Hour), got.PauseReason.CreatedAt)
	assert.Equal(t, "T1", got.PausedBy.UID)

	assert.Equal(t, o.Title, got.Title)
	assert.Equal(t, o.Description, got.Description)
	assert.Equal(t, o.Priority, got.Priority)
	assert.Equal(t, o.TechnicianID, got.TechnicianID)
	assert.Equal(t, o.StartTime, got.StartTime)
	assert.Equal(t, o.CreatedAt, got.CreatedAt)
	assert.Equal(t, o.Version+1, got.Version)
	assert.Equal(t, planNow.Add(time.Hour), got.UpdatedAt)
}

func TestResumeClearsPause(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.inProgress(t)

	_, err := f.svc.Pause(ctx, tech, o.ID, "lunch")
	require.NoError(t, err)
	got, err := f.svc.Resume(ctx, tech, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.Status)
	assert.Nil(t, got.PauseReason)
	assert.Nil(t, got.PausedBy)
}

func TestInvalidTransitionLeavesOrderUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.open(t)

	_, err := f.svc.Complete(ctx, admin, o.ID, "done")
	ce, ok := apperrors.IsConflictError(err)
	require.True(t, ok)
	assert.Equal(t, "open", ce.Current)
	assert.Equal(t, "complete", ce.Attempted)

	got, err := f.svc.Get(ctx, admin, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOpen, got.Status)
	assert.Nil(t, got.CompletedAt)
	assert.Equal(t, o.Version, got.Version)

	entries, err := f.svc.History(ctx, admin, o.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFullLifecycleHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.inProgress(t)
	rating := 5

	_, err := f.svc.Complete(ctx, tech, o.ID, "replaced the seal")
	require.NoError(t, err)
	_, err = f.svc.Reopen(ctx, requester, o.ID, "still dripping")
	require.NoError(t, err)
	_, err = f.svc.Complete(ctx, tech, o.ID, "replaced the pipe")
	require.NoError(t, err)
	got, err := f.svc.Confirm(ctx, requester, o.ID, &rating, "thanks")
	require.NoError(t, err)

	assert.Equal(t, models.StatusConfirmed, got.Status)
	assert.Equal(t, 1, got.ReopenCount)
	assert.Equal(t, "replaced the pipe", got.TechnicianNotes)
	require.NotNil(t, got.UserRating)
	assert.Equal(t, 5, *got.UserRating)
	assert.NotNil(t, got.ConfirmedAt)

	entries, err := f.svc.History(ctx, requester, o.ID)
	require.NoError(t, err)
	var events []string
	for _, e := range entries {
		events = append(events, e.Event)
	}
	assert.Equal(t, []string{"create", "assign", "start", "complete", "reopen", "complete", "confirm"}, events)
	assert.Equal(t, models.StatusReopened, entries[4].Via)
	assert.Equal(t, "still dripping", entries[4].Note)

	assert.Equal(t, []models.NotificationKind{
		models.NotifyAssigned, models.NotifyCompleted, models.NotifyCompleted,
	}, f.notifier.kinds())

	_, err = f.svc.Cancel(ctx, admin, o.ID, "too late")
	assert.Equal(t, 409, apperrors.HTTPStatus(err))
}

func TestReopenClearsCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.inProgress(t)

	_, err := f.svc.Complete(ctx, tech, o.ID, "")
	require.NoError(t, err)
	got, err := f.svc.Reopen(ctx, requester, o.ID, "not fixed")
	require.NoError(t, err)

	assert.Equal(t, models.StatusInProgress, got.Status)
	assert.Nil(t, got.CompletedAt)
	assert.Nil(t, got.EndTime)
	require.NotNil(t, got.ReopenReason)
	assert.Equal(t, "not fixed", got.ReopenReason.Reason)
}

func TestCancelFromOpen(t *testing.T) {
	f := newFixture(t)
	o := f.open(t)

	got, err := f.svc.Cancel(context.Background(), requester, o.ID, "duplicate")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)
	assert.Equal(t, "duplicate", got.CancellationReason.Reason)
	assert.Equal(t, requester.UID, got.CancelledBy.UID)
	assert.Equal(t, []models.NotificationKind{models.NotifyCancelled}, f.notifier.kinds())
}

func TestConcurrentPauseAndCancel(t *testing.T) {
	for i := 0; i < 20; i++ {
		f := newFixture(t)
		ctx := context.Background()
		o := f.inProgress(t)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, errs[0] = f.svc.Pause(ctx, tech, o.ID, "parts")
		}()
		go func() {
			defer wg.Done()
			_, errs[1] = f.svc.Cancel(ctx, requester, o.ID, "no longer needed")
		}()
		wg.Wait()

		got, err := f.svc.Get(ctx, admin, o.ID)
		require.NoError(t, err)
		assert.Contains(t, []models.OrderStatus{models.StatusPaused, models.StatusCancelled}, got.Status)

		// Cancel is legal from paused, so it lands in either order. Pause
		// loses with a conflict when cancel commits first.
		assert.NoError(t, errs[1])
		assert.Equal(t, models.StatusCancelled, got.Status)
		if errs[0] != nil {
			_, ok := apperrors.IsConflictError(errs[0])
			assert.True(t, ok)
			assert.Nil(t, got.PauseReason)
		}

		entries, err := f.svc.History(ctx, admin, o.ID)
		require.NoError(t, err)
		last := entries[len(entries)-1]
		assert.Equal(t, "cancel", last.Event)
		assert.Equal(t, got.Version, last.Version)
	}
}

func TestChangeStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.inProgress(t)

	got, err := f.svc.ChangeStatus(ctx, tech, o.ID, models.StatusChangeRequest{Status: models.StatusPaused, Notes: "break"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaused, got.Status)
	assert.Equal(t, "break", got.PauseReason.Reason)

	_, err = f.svc.ChangeStatus(ctx, tech, o.ID, models.StatusChangeRequest{Status: models.StatusCompleted})
	assert.Equal(t, 409, apperrors.HTTPStatus(err))

	got, err = f.svc.ChangeStatus(ctx, tech, o.ID, models.StatusChangeRequest{Status: models.StatusInProgress})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.Status)

	_, err = f.svc.ChangeStatus(ctx, admin, o.ID, models.StatusChangeRequest{Status: models.StatusAssigned})
	assert.Equal(t, 400, apperrors.HTTPStatus(err))
}

func TestSubmitFeedback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.inProgress(t)

	_, err := f.svc.SubmitFeedback(ctx, requester, o.ID, 4, "ok")
	assert.Equal(t, 409, apperrors.HTTPStatus(err))

	_, err = f.svc.Complete(ctx, tech, o.ID, "")
	require.NoError(t, err)

	_, err = f.svc.SubmitFeedback(ctx, requester, o.ID, 0, "")
	assert.Equal(t, 400, apperrors.HTTPStatus(err))

	got, err := f.svc.SubmitFeedback(ctx, requester, o.ID, 4, "quick work")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.Equal(t, 4, *got.UserRating)
	assert.Equal(t, "quick work", got.UserFeedback)
}

func TestVisibilityAndListScoping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mine := f.inProgress(t)
	_ = f.open(t)

	_, err := f.svc.Get(ctx, stranger, mine.ID)
	assert.Equal(t, 403, apperrors.HTTPStatus(err))
	_, err = f.svc.Get(ctx, otherTech, mine.ID)
	assert.Equal(t, 403, apperrors.HTTPStatus(err))

	list, err := f.svc.List(ctx, tech, models.ServiceOrderFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	list, err = f.svc.List(ctx, requester, models.ServiceOrderFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = f.svc.List(ctx, stranger, models.ServiceOrderFilter{})
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	_, err = f.svc.List(ctx, admin, models.ServiceOrderFilter{Status: "finished"})
	assert.Equal(t, 400, apperrors.HTTPStatus(err))
}

func TestLegacyPendingReadsAsOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.orders.Create(ctx, &models.ServiceOrder{
		ID: "LEGACY", OrderNumber: "OS-20200101-ABCDEF", Title: "Old ticket",
		Priority: models.PriorityLow, EstablishmentID: "E1", UserID: requester.UID,
		Status: "pending", Version: 1, CreatedAt: planNow,
	}))
	_ = f.inProgress(t)

	list, err := f.svc.List(ctx, admin, models.ServiceOrderFilter{Status: models.StatusOpen})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "LEGACY", list[0].ID)
	assert.Equal(t, models.StatusOpen, list[0].Status)

	got, err := f.svc.Get(ctx, requester, "LEGACY")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOpen, got.Status)

	assigned, err := f.svc.Assign(ctx, admin, "LEGACY", tech.UID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAssigned, assigned.Status)
}

func TestUpdateDetails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.open(t)

	title := "Broken AC in room 4"
	urgent := models.PriorityUrgent
	got, err := f.svc.UpdateDetails(ctx, requester, o.ID, models.UpdateServiceOrderRequest{Title: &title, Priority: &urgent})
	require.NoError(t, err)
	assert.Equal(t, title, got.Title)
	assert.Equal(t, models.PriorityUrgent, got.Priority)
	assert.Equal(t, o.Description, got.Description)
	assert.Equal(t, models.StatusOpen, got.Status)

	_, err = f.svc.UpdateDetails(ctx, stranger, o.ID, models.UpdateServiceOrderRequest{Title: &title})
	assert.Equal(t, 403, apperrors.HTTPStatus(err))

	_, err = f.svc.Assign(ctx, admin, o.ID, tech.UID)
	require.NoError(t, err)
	_, err = f.svc.Start(ctx, tech, o.ID)
	require.NoError(t, err)
	_, err = f.svc.UpdateDetails(ctx, requester, o.ID, models.UpdateServiceOrderRequest{Title: &title})
	assert.Equal(t, 409, apperrors.HTTPStatus(err))
}

func TestDeleteIsAdminOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.open(t)

	assert.Equal(t, 403, apperrors.HTTPStatus(f.svc.Delete(ctx, requester, o.ID)))
	require.NoError(t, f.svc.Delete(ctx, admin, o.ID))
	_, err := f.svc.Get(ctx, admin, o.ID)
	assert.Equal(t, 404, apperrors.HTTPStatus(err))
}

func TestSendFeedbackReminders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stale := f.inProgress(t)
	_, err := f.svc.Complete(ctx, tech, stale.ID, "")
	require.NoError(t, err)

	f.advance(72 * time.Hour)
	fresh := f.inProgress(t)
	_, err = f.svc.Complete(ctx, tech, fresh.ID, "")
	require.NoError(t, err)

	f.advance(time.Hour)
	before := len(f.notifier.kinds())

	n, err := f.svc.SendFeedbackReminders(ctx, 48*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	kinds := f.notifier.kinds()
	require.Len(t, kinds, before+1)
	assert.Equal(t, models.NotifyFeedbackReminder, kinds[len(kinds)-1])

	got, err := f.svc.Get(ctx, admin, stale.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.FeedbackReminderSentAt)

	n, err = f.svc.SendFeedbackReminders(ctx, 48*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n, "each order is reminded once")
}

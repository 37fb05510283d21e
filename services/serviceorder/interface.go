package serviceorder

import (
	"context"
	"time"

	establishmentRepo "servicedesk/database/repository/establishment"
	historyRepo "servicedesk/database/repository/history"
	orderRepo "servicedesk/database/repository/serviceorder"
	titleRepo "servicedesk/database/repository/title"
	userRepo "servicedesk/database/repository/user"
	"servicedesk/models"

	"go.uber.org/zap"
)

// Notifier receives lifecycle events worth telling the requester about.
// Implementations must not block the caller and must swallow their own
// failures: a notification never fails a transition.
type Notifier interface {
	Notify(ctx context.Context, order models.ServiceOrder, kind models.NotificationKind)
}

type ServiceOrderService interface {
	// CRUD
	Create(ctx context.Context, actor models.User, req models.CreateServiceOrderRequest) (*models.ServiceOrder, error)
	Get(ctx context.Context, actor models.User, id string) (*models.ServiceOrder, error)
	List(ctx context.Context, actor models.User, filter models.ServiceOrderFilter) ([]models.ServiceOrder, error)
	UpdateDetails(ctx context.Context, actor models.User, id string, req models.UpdateServiceOrderRequest) (*models.ServiceOrder, error)
	Delete(ctx context.Context, actor models.User, id string) error
	History(ctx context.Context, actor models.User, id string) ([]models.StatusChange, error)

	// Lifecycle
	Assign(ctx context.Context, actor models.User, id, technicianID string) (*models.ServiceOrder, error)
	Start(ctx context.Context, actor models.User, id string) (*models.ServiceOrder, error)
	Pause(ctx context.Context, actor models.User, id, reason string) (*models.ServiceOrder, error)
	Resume(ctx context.Context, actor models.User, id string) (*models.ServiceOrder, error)
	Complete(ctx context.Context, actor models.User, id, notes string) (*models.ServiceOrder, error)
	Confirm(ctx context.Context, actor models.User, id string, rating *int, feedback string) (*models.ServiceOrder, error)
	Reopen(ctx context.Context, actor models.User, id, reason string) (*models.ServiceOrder, error)
	Cancel(ctx context.Context, actor models.User, id, reason string) (*models.ServiceOrder, error)
	ChangeStatus(ctx context.Context, actor models.User, id string, req models.StatusChangeRequest) (*models.ServiceOrder, error)
	SubmitFeedback(ctx context.Context, actor models.User, id string, rating int, feedback string) (*models.ServiceOrder, error)

	// Background
	SendFeedbackReminders(ctx context.Context, olderThan time.Duration) (int, error)
}

// DefaultServiceOrderService is the production implementation.
type DefaultServiceOrderService struct {
	Orders         orderRepo.ServiceOrderRepository
	Users          userRepo.UserRepository
	Establishments establishmentRepo.EstablishmentRepository
	Titles         titleRepo.TitleRepository
	HistoryRepo    historyRepo.HistoryRepository
	Notifier       Notifier
	Logger         *zap.Logger

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func (s *DefaultServiceOrderService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *DefaultServiceOrderService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}

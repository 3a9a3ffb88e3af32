package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"irisai/internal/models"
	"irisai/internal/notify"
	"irisai/internal/repositories"
	"irisai/internal/xerrors"
)

const dispatchTimeout = 10 * time.Second

type NotificationService struct {
	store     repositories.Store
	notifiers []notify.Notifier
	logger    *zap.Logger
	inflight  sync.WaitGroup
}

func NewNotificationService(store repositories.Store, logger *zap.Logger, notifiers ...notify.Notifier) *NotificationService {
	return &NotificationService{store: store, notifiers: notifiers, logger: logger}
}

func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, page, size int) ([]*models.Notification, error) {
	_, _, limit, offset := normalizePage(page, size)
	items, err := s.store.Notifications().ListByUser(ctx, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, storeErr(err, "failed to list notifications")
	}
	return items, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	if !validID(id) {
		return xerrors.NotFound("notification", id)
	}
	ok, err := s.store.Notifications().MarkRead(ctx, id, userID, utcNow())
	if err != nil {
		return storeErr(err, "failed to mark notification read")
	}
	if !ok {
		return xerrors.NotFound("notification", id)
	}
	return nil
}

// Dispatch pushes stored notifications to every configured channel in the
// background and returns immediately. Delivery is best-effort: failures are
// logged and never returned.
func (s *NotificationService) Dispatch(ctx context.Context, user models.User, notes []*models.Notification) {
	if len(s.notifiers) == 0 || len(notes) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.deliver(ctx, user, notes)
	}()
}

// Wait blocks until every delivery started by Dispatch has finished.
func (s *NotificationService) Wait() {
	s.inflight.Wait()
}

func (s *NotificationService) deliver(ctx context.Context, user models.User, notes []*models.Notification) {
	ctx, cancel := context.WithTimeout(ctx, dispatchTimeout)
	defer cancel()

	var wg sync.WaitGroup
	for _, n := range s.notifiers {
		wg.Add(1)
		go func(n notify.Notifier) {
			defer wg.Done()
			for _, note := range notes {
				if err := n.Notify(ctx, user, *note); err != nil {
					s.logger.Warn("notification delivery failed",
						zap.String("channel", n.Name()),
						zap.String("user_id", user.ID),
						zap.String("notification_id", note.ID),
						zap.Error(err),
					)
				}
			}
		}(n)
	}
	wg.Wait()
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"bizcore/internal/apperr"
	"bizcore/internal/events"
	"bizcore/internal/models"
	"bizcore/internal/repository"
)

// NotificationService turns domain events into notification records and
// serves the per-user notification feed. Listeners are registered once at
// construction.
type NotificationService struct {
	repo  *repository.NotificationRepository
	users *repository.UserRepository
	lg    *zap.SugaredLogger
}

func NewNotificationService(repo *repository.NotificationRepository, users *repository.UserRepository, bus *events.Bus, lg *zap.SugaredLogger) *NotificationService {
	s := &NotificationService{repo: repo, users: users, lg: lg}
	bus.On(events.ContactRequestCreated, s.onContactRequestCreated)
	bus.On(events.ContactRequestAssigned, s.onContactRequestAssigned)
	bus.On(events.AppointmentCreated, s.onAppointmentCreated)
	bus.On(events.AppointmentCancelled, s.onAppointmentCancelled)
	return s
}

func (s *NotificationService) List(ctx context.Context, userID uint, opts *repository.QueryOptions) (*repository.PageResult[models.Notification], error) {
	if opts == nil {
		opts = &repository.QueryOptions{}
	}
	if opts.SortBy == "" {
		opts.SortBy, opts.SortDir = "created_at", "desc"
	}
	return s.repo.Paginate(ctx, repository.Criteria{"user_id": userID}, opts)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.repo.UnreadCount(ctx, userID)
}

// MarkRead flags a single notification; it must belong to the caller.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uint) (*models.Notification, error) {
	n, err := s.repo.FindByID(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	if n == nil || n.UserID != userID {
		return nil, apperr.NotFound("notification not found")
	}
	now := time.Now()
	return s.repo.Update(ctx, id, map[string]any{"read": true, "read_at": now})
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

// notifyStaff creates one notification per admin/manager user.
func (s *NotificationService) notifyStaff(ctx context.Context, typ, title, message string, data map[string]any) error {
	staff, err := s.users.FindByCriteria(ctx, repository.Criteria{
		"role":   repository.Op{In: []any{models.RoleAdmin, models.RoleManager}},
		"status": models.StatusActive,
	}, nil)
	if err != nil {
		return err
	}
	var raw models.JSONB
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			raw = models.JSONB(b)
		}
	}
	for _, u := range staff {
		n := models.Notification{UserID: u.ID, Type: typ, Title: title, Message: message, Data: raw}
		if err := s.repo.Create(ctx, &n); err != nil {
			s.lg.Warnw("notification create failed", "user_id", u.ID, "type", typ, "error", err)
		}
	}
	return nil
}

func (s *NotificationService) notifyUser(ctx context.Context, userID uint, typ, title, message string, data map[string]any) error {
	var raw models.JSONB
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			raw = models.JSONB(b)
		}
	}
	n := models.Notification{UserID: userID, Type: typ, Title: title, Message: message, Data: raw}
	return s.repo.Create(ctx, &n)
}

func (s *NotificationService) onContactRequestCreated(ctx context.Context, ev events.Event) error {
	p, ok := ev.Payload.(ContactRequestEventPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", ev.Type)
	}
	return s.notifyStaff(ctx, "contact_request",
		"New contact request",
		fmt.Sprintf("%s sent a request: %s", p.Name, p.Subject),
		map[string]any{"contact_request_id": p.ID, "event_id": ev.ID})
}

func (s *NotificationService) onContactRequestAssigned(ctx context.Context, ev events.Event) error {
	p, ok := ev.Payload.(ContactRequestEventPayload)
	if !ok || p.AssignedTo == nil {
		return fmt.Errorf("unexpected payload for %s", ev.Type)
	}
	return s.notifyUser(ctx, *p.AssignedTo, "contact_request_assigned",
		"Contact request assigned to you",
		fmt.Sprintf("Request %q is now yours", p.Subject),
		map[string]any{"contact_request_id": p.ID, "event_id": ev.ID})
}

func (s *NotificationService) onAppointmentCreated(ctx context.Context, ev events.Event) error {
	p, ok := ev.Payload.(AppointmentEventPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", ev.Type)
	}
	return s.notifyStaff(ctx, "appointment",
		"Appointment scheduled",
		fmt.Sprintf("%s at %s", p.Title, p.StartsAt.Format(time.RFC3339)),
		map[string]any{"appointment_id": p.ID, "event_id": ev.ID})
}

func (s *NotificationService) onAppointmentCancelled(ctx context.Context, ev events.Event) error {
	p, ok := ev.Payload.(AppointmentEventPayload)
	if !ok {
		return fmt.Errorf("unexpected payload for %s", ev.Type)
	}
	return s.notifyStaff(ctx, "appointment_cancelled",
		"Appointment cancelled",
		fmt.Sprintf("%s at %s was cancelled", p.Title, p.StartsAt.Format(time.RFC3339)),
		map[string]any{"appointment_id": p.ID, "event_id": ev.ID})
}

package service

import (
	"context"
	"testing"

	"bizcore/internal/apperr"
	"bizcore/internal/models"
	"bizcore/internal/repository"
)

func (e *testEnv) notificationService(t *testing.T) *NotificationService {
	t.Helper()
	return NewNotificationService(repository.NewNotificationRepository(e.db, e.lg), e.users, e.bus, e.lg)
}

func (e *testEnv) requestService(t *testing.T) *ContactRequestService {
	t.Helper()
	activity := NewActivityLogger(e.db, e.lg)
	appointments := NewAppointmentService(e.db, e.bus, activity, e.lg)
	return NewContactRequestService(e.db, e.users, appointments, e.bus, activity, e.lg)
}

func TestContactRequestFansOutToStaff(t *testing.T) {
	env := newTestEnv(t)
	notif := env.notificationService(t)
	requests := env.requestService(t)
	ctx := context.Background()

	admin := env.seedUser(t, "admin@example.com", "password123", models.RoleAdmin, models.StatusActive)
	manager := env.seedUser(t, "mgr@example.com", "password123", models.RoleManager, models.StatusActive)
	emp := env.seedUser(t, "emp@example.com", "password123", models.RoleEmployee, models.StatusActive)
	env.seedUser(t, "gone@example.com", "password123", models.RoleAdmin, models.StatusSuspended)

	_, err := requests.Create(ctx, CreateContactRequestInput{
		Name: "Visitor", Email: "visitor@example.com", Subject: "Quote please",
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	env.bus.Wait()

	for _, staff := range []uint{admin.ID, manager.ID} {
		n, err := notif.UnreadCount(ctx, staff)
		if err != nil {
			t.Fatalf("unread: %v", err)
		}
		if n != 1 {
			t.Fatalf("staff %d should have 1 notification, got %d", staff, n)
		}
	}
	// Employees and suspended accounts get nothing.
	res, err := notif.List(ctx, emp.ID, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.Pagination.Total != 0 {
		t.Fatalf("employee should have no notifications, got %d", res.Pagination.Total)
	}
}

func TestAssignmentNotifiesAssignee(t *testing.T) {
	env := newTestEnv(t)
	notif := env.notificationService(t)
	requests := env.requestService(t)
	ctx := context.Background()

	emp := env.seedUser(t, "emp@example.com", "password123", models.RoleEmployee, models.StatusActive)
	req, err := requests.Create(ctx, CreateContactRequestInput{Name: "Visitor", Email: "v@example.com", Subject: "Help"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	env.bus.Wait()

	if _, err := requests.Update(ctx, req.ID, UpdateContactRequestInput{AssignedTo: &emp.ID}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	env.bus.Wait()

	n, err := notif.UnreadCount(ctx, emp.ID)
	if err != nil {
		t.Fatalf("unread: %v", err)
	}
	if n != 1 {
		t.Fatalf("assignee should get exactly one notification, got %d", n)
	}
}

func TestAssignmentRejectsInactiveUser(t *testing.T) {
	env := newTestEnv(t)
	env.notificationService(t)
	requests := env.requestService(t)
	ctx := context.Background()

	gone := env.seedUser(t, "gone@example.com", "password123", models.RoleEmployee, models.StatusSuspended)
	req, err := requests.Create(ctx, CreateContactRequestInput{Name: "Visitor", Email: "v@example.com", Subject: "Help"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	env.bus.Wait()

	_, err = requests.Update(ctx, req.ID, UpdateContactRequestInput{AssignedTo: &gone.ID})
	if !apperr.IsKind(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request for suspended assignee, got %v", err)
	}
}

func TestMarkReadEnforcesOwnership(t *testing.T) {
	env := newTestEnv(t)
	notif := env.notificationService(t)
	repo := repository.NewNotificationRepository(env.db, env.lg)
	ctx := context.Background()

	n := models.Notification{UserID: 1, Type: "t", Title: "hello"}
	if err := repo.Create(ctx, &n); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := notif.MarkRead(ctx, 2, n.ID); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("foreign notification should read as not found, got %v", err)
	}

	got, err := notif.MarkRead(ctx, 1, n.ID)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if !got.Read || got.ReadAt == nil {
		t.Fatalf("read flags not set: %+v", got)
	}

	count, err := notif.UnreadCount(ctx, 1)
	if err != nil {
		t.Fatalf("unread: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 unread, got %d", count)
	}
}

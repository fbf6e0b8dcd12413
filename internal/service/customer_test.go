package service

import (
	"context"
	"testing"

	"bizcore/internal/apperr"
	"bizcore/internal/auth"
	"bizcore/internal/models"
	"bizcore/internal/repository"
)

func (e *testEnv) customerService(t *testing.T) *CustomerService {
	t.Helper()
	return NewCustomerService(e.db, e.bus, NewActivityLogger(e.db, e.lg), e.lg)
}

func actorCtx(userID uint, role string) context.Context {
	return auth.WithClaims(context.Background(), auth.Claims{UserID: userID, Role: role})
}

func TestCustomerCreateNormalizesAndStamps(t *testing.T) {
	env := newTestEnv(t)
	svc := env.customerService(t)
	ctx := actorCtx(7, models.RoleManager)

	c, err := svc.Create(ctx, CreateCustomerInput{Name: "  Acme  ", Email: " ACME@Example.com "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Name != "Acme" || c.Email != "acme@example.com" {
		t.Fatalf("input not normalized: %+v", c)
	}
	if c.Status != models.StatusActive {
		t.Fatalf("new customers default to active")
	}
	if c.CreatedBy == nil || *c.CreatedBy != 7 {
		t.Fatalf("creator should be stamped from context: %+v", c.CreatedBy)
	}
}

func TestCustomerCreateValidationAggregates(t *testing.T) {
	env := newTestEnv(t)
	svc := env.customerService(t)
	_, err := svc.Create(context.Background(), CreateCustomerInput{})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(apperr.From(err).Fields) != 2 {
		t.Fatalf("name and email should both be reported: %v", apperr.From(err).Fields)
	}
}

func TestCustomerDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	svc := env.customerService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateCustomerInput{Name: "Acme", Email: "acme@example.com"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.Create(ctx, CreateCustomerInput{Name: "Clone", Email: "acme@example.com"})
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCustomerUpdateEmailConflictExcludesSelf(t *testing.T) {
	env := newTestEnv(t)
	svc := env.customerService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, CreateCustomerInput{Name: "Acme", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("create a: %v", err)
	}
	if _, err := svc.Create(ctx, CreateCustomerInput{Name: "Beta", Email: "b@example.com"}); err != nil {
		t.Fatalf("create b: %v", err)
	}

	taken := "b@example.com"
	if _, err := svc.Update(ctx, a.ID, UpdateCustomerInput{Email: &taken}); !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("expected conflict on taken email, got %v", err)
	}

	// Re-submitting your own email is not a conflict.
	same := "a@example.com"
	if _, err := svc.Update(ctx, a.ID, UpdateCustomerInput{Email: &same}); err != nil {
		t.Fatalf("own email should pass: %v", err)
	}
}

func TestCustomerUpdateMissing(t *testing.T) {
	env := newTestEnv(t)
	svc := env.customerService(t)
	name := "New"
	_, err := svc.Update(context.Background(), 9999, UpdateCustomerInput{Name: &name})
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCustomerListFilters(t *testing.T) {
	env := newTestEnv(t)
	svc := env.customerService(t)
	ctx := context.Background()

	for _, c := range []CreateCustomerInput{
		{Name: "Alpha Works", Email: "a@example.com"},
		{Name: "Beta Labs", Email: "b@example.com"},
		{Name: "Alpha Labs", Email: "c@example.com"},
	} {
		if _, err := svc.Create(ctx, c); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	res, err := svc.List(ctx, CustomerListFilter{Search: "Alpha"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.Pagination.Total != 2 {
		t.Fatalf("expected 2 matches, got %d", res.Pagination.Total)
	}
}

func TestCustomerCreateWritesActivityLog(t *testing.T) {
	env := newTestEnv(t)
	svc := env.customerService(t)
	ctx := actorCtx(3, models.RoleAdmin)

	if _, err := svc.Create(ctx, CreateCustomerInput{Name: "Acme", Email: "acme@example.com"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	logs := repository.New[models.ActivityLog](env.db, env.lg, "activity log")
	entries, err := logs.FindByCriteria(ctx, repository.Criteria{"entity_type": "customer", "action": "create"}, nil)
	if err != nil {
		t.Fatalf("find logs: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one activity entry, got %d", len(entries))
	}
	if entries[0].UserID == nil || *entries[0].UserID != 3 {
		t.Fatalf("activity should carry the actor: %+v", entries[0])
	}
}

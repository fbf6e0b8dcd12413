// Package service holds the business layer: a generic CRUD skeleton plus the
// entity services built on it. The skeleton is composed, not inherited —
// hooks are plain function fields an entity service sets at construction.
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"bizcore/internal/apperr"
	"bizcore/internal/auth"
	"bizcore/internal/models"
	"bizcore/internal/repository"
	"bizcore/internal/validation"
)

// auditable is satisfied by models embedding models.Audit.
type auditable interface {
	StampCreate(actor *uint, now time.Time)
	StampUpdate(actor *uint, now time.Time)
}

// Crud is the entity-agnostic operation skeleton wrapping a repository.
// Input DTOs are validated before any hook runs; audit fields are injected
// from the request context; hook failures propagate as-is.
type Crud[T any] struct {
	Repo     *repository.Repository[T]
	Lg       *zap.SugaredLogger
	Activity *ActivityLogger
	Entity   string

	// IDOf renders an entity's id for activity logging.
	IDOf func(e *T) string

	BeforeCreate func(ctx context.Context, e *T) error
	AfterCreate  func(ctx context.Context, e *T)
	AfterUpdate  func(ctx context.Context, e *T)
}

// stampChanges adds the audit columns a map-based update would otherwise
// miss. The actor column only exists on models embedding Audit.
func (c *Crud[T]) stampChanges(ctx context.Context, changes map[string]any) {
	changes["updated_at"] = time.Now()
	var zero T
	if _, ok := any(&zero).(auditable); !ok {
		return
	}
	if actor := actorFrom(ctx); actor != nil {
		changes["updated_by"] = *actor
	}
}

func actorFrom(ctx context.Context) *uint {
	if id := auth.Subject(ctx); id != 0 {
		return &id
	}
	return nil
}

// Create validates the input DTO, runs the before hook, stamps audit fields
// and persists. The after hook runs once the row exists.
func (c *Crud[T]) Create(ctx context.Context, input any, e *T) (*T, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if c.BeforeCreate != nil {
		if err := c.BeforeCreate(ctx, e); err != nil {
			return nil, err
		}
	}
	if a, ok := any(e).(auditable); ok {
		a.StampCreate(actorFrom(ctx), time.Now())
	}
	if err := c.Repo.Create(ctx, e); err != nil {
		return nil, err
	}
	if c.Activity != nil {
		id := ""
		if c.IDOf != nil {
			id = c.IDOf(e)
		}
		c.Activity.Record(ctx, c.Entity, id, "create", nil)
	}
	if c.AfterCreate != nil {
		c.AfterCreate(ctx, e)
	}
	return e, nil
}

// GetByID is the detail-fetch path: absence is a NotFound error here, unlike
// the repository's nil return.
func (c *Crud[T]) GetByID(ctx context.Context, id any, opts *repository.QueryOptions) (*T, error) {
	e, err := c.Repo.FindByID(ctx, id, opts)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, apperr.NotFound(c.Entity + " not found")
	}
	return e, nil
}

// Update validates the partial DTO, checks existence, merges the change set
// (plus audit stamps) and runs the after hook on the refreshed entity.
func (c *Crud[T]) Update(ctx context.Context, id any, input any, changes map[string]any) (*T, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if _, err := c.GetByID(ctx, id, nil); err != nil {
		return nil, err
	}
	c.stampChanges(ctx, changes)
	e, err := c.Repo.Update(ctx, id, changes)
	if err != nil {
		return nil, err
	}
	if c.Activity != nil {
		c.Activity.Record(ctx, c.Entity, fmt.Sprint(id), "update", nil)
	}
	if c.AfterUpdate != nil {
		c.AfterUpdate(ctx, e)
	}
	return e, nil
}

// Delete removes the row after an existence check, so a missing id is a
// NotFound rather than a silent no-op.
func (c *Crud[T]) Delete(ctx context.Context, id any) error {
	if _, err := c.GetByID(ctx, id, nil); err != nil {
		return err
	}
	if _, err := c.Repo.Delete(ctx, id); err != nil {
		return err
	}
	if c.Activity != nil {
		c.Activity.Record(ctx, c.Entity, fmt.Sprint(id), "delete", nil)
	}
	return nil
}

// SoftDelete marks the status column instead of removing the row.
func (c *Crud[T]) SoftDelete(ctx context.Context, id any) (*T, error) {
	return c.Update(ctx, id, struct{}{}, map[string]any{"status": models.StatusDeleted})
}

// BulkUpdate applies one validated change set to many ids with a single
// repository statement and one aggregated activity entry.
func (c *Crud[T]) BulkUpdate(ctx context.Context, ids []uint, input any, changes map[string]any) (int64, error) {
	if len(ids) == 0 {
		return 0, apperr.Validation("validation failed", "ids must not be empty")
	}
	if err := validation.Struct(input); err != nil {
		return 0, err
	}
	c.stampChanges(ctx, changes)
	n, err := c.Repo.BulkUpdate(ctx, ids, changes)
	if err != nil {
		return 0, err
	}
	if c.Activity != nil {
		c.Activity.Record(ctx, c.Entity, "", "bulk_update", map[string]any{"ids": ids, "count": n})
	}
	return n, nil
}

// Paginate forwards to the repository, applying a default sort when the
// caller did not choose one.
func (c *Crud[T]) Paginate(ctx context.Context, criteria repository.Criteria, opts *repository.QueryOptions) (*repository.PageResult[T], error) {
	if opts == nil {
		opts = &repository.QueryOptions{}
	}
	if opts.SortBy == "" {
		opts.SortBy, opts.SortDir = "created_at", "desc"
	}
	return c.Repo.Paginate(ctx, criteria, opts)
}

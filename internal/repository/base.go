// Package repository provides the uniform CRUD/find/paginate/transaction
// contract every entity repository is built on. Backend errors never escape:
// they are classified into apperr values before leaving this package.
package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"bizcore/internal/apperr"
)

// Repository is the generic GORM-backed repository. T is the entity model.
// Entity-specific repositories embed one and add their own finders.
type Repository[T any] struct {
	db   *gorm.DB
	lg   *zap.SugaredLogger
	name string
	pk   string
}

// New builds a repository for T. name is used for log/error context, pk is
// the primary-key column ("id" for every entity except refresh tokens).
func New[T any](db *gorm.DB, lg *zap.SugaredLogger, name string) *Repository[T] {
	return &Repository[T]{db: db, lg: lg, name: name, pk: "id"}
}

// NewWithPK is New for entities whose primary key is not "id".
func NewWithPK[T any](db *gorm.DB, lg *zap.SugaredLogger, name, pk string) *Repository[T] {
	return &Repository[T]{db: db, lg: lg, name: name, pk: pk}
}

// DB exposes the underlying handle for entity-specific queries.
func (r *Repository[T]) DB() *gorm.DB { return r.db }

func (r *Repository[T]) applyOptions(q *gorm.DB, opts *QueryOptions) *gorm.DB {
	if opts == nil {
		return q
	}
	if len(opts.Select) > 0 {
		q = q.Select(opts.Select)
	}
	for _, p := range opts.Preload {
		q = q.Preload(p)
	}
	if opts.SortBy != "" {
		dir := "asc"
		if strings.EqualFold(opts.SortDir, "desc") {
			dir = "desc"
		}
		q = q.Order(opts.SortBy + " " + dir)
	}
	if opts.Page > 0 || opts.Limit > 0 {
		page, limit := normalizePage(opts)
		q = q.Offset((page - 1) * limit).Limit(limit)
	}
	return q
}

func (r *Repository[T]) applyCriteria(q *gorm.DB, criteria Criteria) *gorm.DB {
	for col, v := range criteria {
		op, ok := v.(Op)
		if !ok {
			q = q.Where(col+" = ?", v)
			continue
		}
		if op.Gt != nil {
			q = q.Where(col+" > ?", op.Gt)
		}
		if op.Gte != nil {
			q = q.Where(col+" >= ?", op.Gte)
		}
		if op.Lt != nil {
			q = q.Where(col+" < ?", op.Lt)
		}
		if op.Lte != nil {
			q = q.Where(col+" <= ?", op.Lte)
		}
		if op.In != nil {
			q = q.Where(col+" IN ?", op.In)
		}
		if op.NotIn != nil {
			q = q.Where(col+" NOT IN ?", op.NotIn)
		}
		if op.Contains != "" {
			q = q.Where(col+" LIKE ?", "%"+op.Contains+"%")
		}
		if op.StartsWith != "" {
			q = q.Where(col+" LIKE ?", op.StartsWith+"%")
		}
		if op.EndsWith != "" {
			q = q.Where(col+" LIKE ?", "%"+op.EndsWith)
		}
	}
	return q
}

// FindAll returns every record honoring the options. No match returns an
// empty slice, never nil.
func (r *Repository[T]) FindAll(ctx context.Context, opts *QueryOptions) ([]T, error) {
	out := make([]T, 0)
	q := r.applyOptions(r.db.WithContext(ctx), opts)
	if err := q.Find(&out).Error; err != nil {
		return nil, r.classify("findAll", err)
	}
	return out, nil
}

// FindByID returns (nil, nil) when the id does not exist; absence is not an
// error at this layer.
func (r *Repository[T]) FindByID(ctx context.Context, id any, opts *QueryOptions) (*T, error) {
	var e T
	q := r.applyOptions(r.db.WithContext(ctx), opts)
	err := q.First(&e, r.pk+" = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, r.classify("findById", err)
	}
	return &e, nil
}

func (r *Repository[T]) FindByCriteria(ctx context.Context, criteria Criteria, opts *QueryOptions) ([]T, error) {
	out := make([]T, 0)
	q := r.applyCriteria(r.db.WithContext(ctx), criteria)
	q = r.applyOptions(q, opts)
	if err := q.Find(&out).Error; err != nil {
		return nil, r.classify("findByCriteria", err)
	}
	return out, nil
}

func (r *Repository[T]) FindOneByCriteria(ctx context.Context, criteria Criteria, opts *QueryOptions) (*T, error) {
	var e T
	q := r.applyCriteria(r.db.WithContext(ctx), criteria)
	q = r.applyOptions(q, opts)
	err := q.First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, r.classify("findOneByCriteria", err)
	}
	return &e, nil
}

// Create persists the entity in place (GORM fills generated fields).
func (r *Repository[T]) Create(ctx context.Context, e *T) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return r.classify("create", err)
	}
	return nil
}

// Update applies a partial change set and returns the refreshed entity.
// changes may be a map[string]any or a partial struct.
func (r *Repository[T]) Update(ctx context.Context, id any, changes any) (*T, error) {
	var model T
	res := r.db.WithContext(ctx).Model(&model).Where(r.pk+" = ?", id).Updates(changes)
	if res.Error != nil {
		return nil, r.classify("update", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.NotFound(r.name + " not found")
	}
	return r.FindByID(ctx, id, nil)
}

// BulkUpdate applies one change set to many ids in a single statement and
// returns the number of affected rows.
func (r *Repository[T]) BulkUpdate(ctx context.Context, ids []uint, changes any) (int64, error) {
	var model T
	res := r.db.WithContext(ctx).Model(&model).Where(r.pk+" IN ?", ids).Updates(changes)
	if res.Error != nil {
		return 0, r.classify("bulkUpdate", res.Error)
	}
	return res.RowsAffected, nil
}

// Delete removes the row. A foreign-key violation surfaces as Conflict, not
// a raw backend failure. Returns false when the id did not exist.
func (r *Repository[T]) Delete(ctx context.Context, id any) (bool, error) {
	var model T
	res := r.db.WithContext(ctx).Where(r.pk+" = ?", id).Delete(&model)
	if res.Error != nil {
		return false, r.classify("delete", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository[T]) Count(ctx context.Context, criteria Criteria) (int64, error) {
	var model T
	var n int64
	q := r.applyCriteria(r.db.WithContext(ctx).Model(&model), criteria)
	if err := q.Count(&n).Error; err != nil {
		return 0, r.classify("count", err)
	}
	return n, nil
}

// Paginate counts, then fetches one page. totalPages is never below 1 so an
// empty result still renders as page 1 of 1.
func (r *Repository[T]) Paginate(ctx context.Context, criteria Criteria, opts *QueryOptions) (*PageResult[T], error) {
	total, err := r.Count(ctx, criteria)
	if err != nil {
		return nil, err
	}
	page, limit := normalizePage(opts)
	paged := QueryOptions{Page: page, Limit: limit}
	if opts != nil {
		paged.SortBy, paged.SortDir = opts.SortBy, opts.SortDir
		paged.Select, paged.Preload = opts.Select, opts.Preload
	}
	data, err := r.FindByCriteria(ctx, criteria, &paged)
	if err != nil {
		return nil, err
	}
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	if totalPages < 1 {
		totalPages = 1
	}
	return &PageResult[T]{
		Data:       data,
		Pagination: Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages},
	}, nil
}

// WithTransaction runs op inside a single transaction. op receives a
// repository bound to the transaction handle; any error rolls everything
// back and is returned classified.
func (r *Repository[T]) WithTransaction(ctx context.Context, op func(tx *Repository[T]) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return op(&Repository[T]{db: tx, lg: r.lg, name: r.name, pk: r.pk})
	})
	if err != nil {
		return r.classify("transaction", err)
	}
	return nil
}

// classify maps a backend error to the application taxonomy and logs it with
// operation context. Already-typed errors pass through untouched.
func (r *Repository[T]) classify(op string, err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	switch {
	case isUniqueViolation(err):
		r.lg.Warnw("duplicate key", "entity", r.name, "op", op, "error", err)
		return apperr.Conflict(r.name + " already exists")
	case isForeignKeyViolation(err):
		r.lg.Warnw("foreign key violation", "entity", r.name, "op", op, "error", err)
		if op == "delete" {
			return apperr.Conflict(r.name + " is referenced by other records")
		}
		return apperr.BadRequest(fmt.Sprintf("%s references a missing record", r.name))
	default:
		r.lg.Errorw("database error", "entity", r.name, "op", op, "error", err)
		return apperr.Internal("database error", err)
	}
}

// Constraint detection works both with GORM's translated errors (Postgres)
// and with the raw SQLite messages the tests produce.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "23505")
}

func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "FOREIGN KEY constraint failed") ||
		strings.Contains(msg, "foreign key constraint") ||
		strings.Contains(msg, "23503")
}

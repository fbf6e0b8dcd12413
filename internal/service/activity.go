package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"bizcore/internal/auth"
	"bizcore/internal/models"
	"bizcore/internal/repository"
)

// ActivityLogger writes the activity trail. Recording failures are logged
// and swallowed: audit bookkeeping must never fail a business operation.
type ActivityLogger struct {
	repo *repository.Repository[models.ActivityLog]
	lg   *zap.SugaredLogger
}

func NewActivityLogger(db *gorm.DB, lg *zap.SugaredLogger) *ActivityLogger {
	return &ActivityLogger{repo: repository.New[models.ActivityLog](db, lg, "activity log"), lg: lg}
}

// Record writes one activity row attributed to the acting user from ctx.
// Bulk operations call this once with aggregated metadata, not per id.
func (a *ActivityLogger) Record(ctx context.Context, entityType, entityID, action string, meta map[string]any) {
	var actor *uint
	if id := auth.Subject(ctx); id != 0 {
		actor = &id
	}
	var raw models.JSONB
	if meta != nil {
		if b, err := json.Marshal(meta); err == nil {
			raw = models.JSONB(b)
		}
	}
	entry := models.ActivityLog{
		UserID:     actor,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Metadata:   raw,
	}
	if err := a.repo.Create(ctx, &entry); err != nil {
		a.lg.Warnw("activity log write failed", "entity", entityType, "action", action, "error", err)
	}
}

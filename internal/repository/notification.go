package repository

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"bizcore/internal/models"
)

type NotificationRepository struct {
	*Repository[models.Notification]
}

func NewNotificationRepository(db *gorm.DB, lg *zap.SugaredLogger) *NotificationRepository {
	return &NotificationRepository{New[models.Notification](db, lg, "notification")}
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return r.Count(ctx, Criteria{"user_id": userID, "read": false})
}

// MarkAllRead flags every unread notification for the user in one statement.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	now := time.Now()
	res := r.DB().WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Updates(map[string]any{"read": true, "read_at": now})
	if res.Error != nil {
		return 0, r.classify("markAllRead", res.Error)
	}
	return res.RowsAffected, nil
}

package models

import (
	"context"
	"errors"
	"time"

	"github.com/wafirapp/wafir-backend/config"
	"github.com/wafirapp/wafir-backend/utils"
)

type Notification struct {
	ID        int              `gorm:"primary_key" json:"id"`
	UserId    int              `gorm:"index;not null" json:"user_id"`
	Type      NotificationType `gorm:"size:50;not null" json:"type"`
	Body      string           `gorm:"size:500;not null" json:"body"`
	ReadAt    *time.Time       `json:"read_at"`
	CreatedAt time.Time        `gorm:"autoCreateTime" json:"created_at"`
}

// CreateNotification records a notification for userId. Failures are the
// caller's choice to ignore: notifications never block the primary action.
func CreateNotification(ctx context.Context, userId int, notifType NotificationType, body string) error {
	db := config.GetDB()
	notification := Notification{
		UserId: userId,
		Type:   notifType,
		Body:   body,
	}
	return db.WithContext(ctx).Create(&notification).Error
}

// HasUnreadNotification reports whether userId already has an unread
// notification of the given type.
func HasUnreadNotification(ctx context.Context, userId int, notifType NotificationType) (bool, error) {
	count, err := utils.ResourceCountWhere[Notification](ctx, userId, "type = ? AND read_at IS NULL", notifType)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func GetNotifications(ctx context.Context, unreadOnly bool) ([]Notification, error) {
	db := config.GetDB()
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	var notifications []Notification
	query := db.WithContext(ctx).Where("user_id = ?", userId).Order("created_at DESC").Limit(50)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}
	if err := query.Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func MarkNotificationRead(ctx context.Context, id int) (*Notification, error) {
	db := config.GetDB()
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	notification, err := utils.FetchModelForChange[Notification](ctx, userId, id)
	if err != nil {
		return nil, err
	}
	if notification.ReadAt == nil {
		now := time.Now()
		if err := db.WithContext(ctx).Model(notification).Update("ReadAt", now).Error; err != nil {
			return nil, err
		}
	}
	return notification, nil
}

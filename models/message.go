package models

import (
	"context"
	"errors"
	"time"

	"github.com/wafirapp/wafir-backend/config"
	"github.com/wafirapp/wafir-backend/utils"
)

type Message struct {
	ID         int        `gorm:"primary_key" json:"id"`
	SenderId   int        `gorm:"index;not null" json:"sender_id"`
	ReceiverId int        `gorm:"index;not null" json:"receiver_id"`
	Body       string     `gorm:"size:2000;not null" json:"body" binding:"required"`
	ReadAt     *time.Time `json:"read_at"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

type NewMessage struct {
	ReceiverId int    `json:"receiver_id" binding:"required"`
	Body       string `json:"body" binding:"required"`
}

// SendMessage delivers a message between an advisor and a client. Only
// pairs linked by an accepted advisory request may exchange messages.
func SendMessage(ctx context.Context, input *NewMessage) (*Message, error) {
	db := config.GetDB()
	senderId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || senderId <= 0 {
		return nil, errors.New("user id is required")
	}
	if input.ReceiverId == senderId {
		return nil, errors.New("cannot message yourself")
	}

	linked, err := linkedPair(ctx, senderId, input.ReceiverId)
	if err != nil {
		return nil, err
	}
	if !linked {
		return nil, errors.New("no accepted advisory link with this user")
	}

	message := Message{
		SenderId:   senderId,
		ReceiverId: input.ReceiverId,
		Body:       input.Body,
	}
	if err := db.WithContext(ctx).Create(&message).Error; err != nil {
		return nil, err
	}

	_ = CreateNotification(ctx, message.ReceiverId, NotificationTypeMessage, "New message received")

	return &message, nil
}

// GetConversation pages the two-way message history with another user,
// newest first, and marks delivered messages as read.
func GetConversation(ctx context.Context, otherId int, limit int) ([]Message, error) {
	db := config.GetDB()
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}
	if limit <= 0 || limit > 100 {
		limit = config.SearchLimit
	}
	// userId 0 skips the owner scope: users are not user-owned rows.
	if err := utils.ValidateResourceId[User](ctx, 0, otherId); err != nil {
		return nil, err
	}

	var messages []Message
	err := db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userId, otherId, otherId, userId).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = db.WithContext(ctx).Model(&Message{}).
		Where("sender_id = ? AND receiver_id = ? AND read_at IS NULL", otherId, userId).
		Update("ReadAt", now).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wafirapp/wafir-backend/config"
	"github.com/wafirapp/wafir-backend/utils"
	"gorm.io/gorm"
)

type AdvisorRequest struct {
	ID        int                  `gorm:"primary_key" json:"id"`
	UserId    int                  `gorm:"index;not null" json:"user_id"`
	AdvisorId int                  `gorm:"index;not null" json:"advisor_id"`
	Message   string               `gorm:"size:500" json:"message"`
	Status    AdvisorRequestStatus `gorm:"type:enum('pending','accepted','rejected');default:'pending'" json:"status"`
	CreatedAt time.Time            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time            `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewAdvisorRequest struct {
	AdvisorId int    `json:"advisor_id" binding:"required"`
	Message   string `json:"message"`
}

func CreateAdvisorRequest(ctx context.Context, input *NewAdvisorRequest) (*AdvisorRequest, error) {
	db := config.GetDB()
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	var advisor User
	err := db.WithContext(ctx).Where("id = ? AND role = ?", input.AdvisorId, UserRoleAdvisor).First(&advisor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("advisor not found")
		}
		return nil, err
	}

	var count int64
	err = db.WithContext(ctx).Model(&AdvisorRequest{}).
		Where("user_id = ? AND advisor_id = ? AND status = ?", userId, input.AdvisorId, AdvisorRequestPending).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("a pending request to this advisor already exists")
	}

	request := AdvisorRequest{
		UserId:    userId,
		AdvisorId: input.AdvisorId,
		Message:   input.Message,
		Status:    AdvisorRequestPending,
	}
	if err := db.WithContext(ctx).Create(&request).Error; err != nil {
		return nil, err
	}

	_ = CreateNotification(ctx, request.AdvisorId, NotificationTypeAdvisorRequest,
		fmt.Sprintf("New advisory request #%d", request.ID))

	return &request, nil
}

// RespondAdvisorRequest lets the addressed advisor accept or reject a
// pending request. Decided requests are immutable.
func RespondAdvisorRequest(ctx context.Context, id int, accept bool) (*AdvisorRequest, error) {
	db := config.GetDB()
	advisorId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || advisorId <= 0 {
		return nil, errors.New("user id is required")
	}

	var request AdvisorRequest
	err := db.WithContext(ctx).Where("id = ? AND advisor_id = ?", id, advisorId).First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	if request.Status != AdvisorRequestPending {
		return nil, errors.New("request already decided")
	}

	status := AdvisorRequestRejected
	if accept {
		status = AdvisorRequestAccepted
	}
	if err := db.WithContext(ctx).Model(&request).Update("Status", status).Error; err != nil {
		return nil, err
	}

	_ = CreateNotification(ctx, request.UserId, NotificationTypeAdvisorReply,
		fmt.Sprintf("Your advisory request #%d was %s", request.ID, status))

	return &request, nil
}

// GetAdvisorRequests lists requests visible to the caller: sent ones for
// clients, received ones for advisors.
func GetAdvisorRequests(ctx context.Context) ([]AdvisorRequest, error) {
	db := config.GetDB()
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}
	role, _ := utils.GetRoleFromContext(ctx)

	var requests []AdvisorRequest
	query := db.WithContext(ctx).Order("created_at DESC")
	if role == string(UserRoleAdvisor) {
		query = query.Where("advisor_id = ?", userId)
	} else {
		query = query.Where("user_id = ?", userId)
	}
	if err := query.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// linkedPair reports whether an accepted request connects the two users in
// either direction.
func linkedPair(ctx context.Context, a, b int) (bool, error) {
	db := config.GetDB()
	var count int64
	err := db.WithContext(ctx).Model(&AdvisorRequest{}).
		Where("status = ?", AdvisorRequestAccepted).
		Where("(user_id = ? AND advisor_id = ?) OR (user_id = ? AND advisor_id = ?)", a, b, b, a).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

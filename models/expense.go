package models

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wafirapp/wafir-backend/config"
	"github.com/wafirapp/wafir-backend/utils"
)

type Expense struct {
	ID          int             `gorm:"primary_key" json:"id"`
	UserId      int             `gorm:"index;not null" json:"user_id"`
	Description string          `gorm:"size:255;not null" json:"description" binding:"required"`
	Category    string          `gorm:"size:100" json:"category"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	SpentAt     time.Time       `gorm:"index;not null" json:"spent_at"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewExpense struct {
	Description string          `json:"description" binding:"required"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	SpentAt     *time.Time      `json:"spent_at"`
}

func (input *NewExpense) validate() error {
	if !input.Amount.IsPositive() {
		return errors.New("amount must be positive")
	}
	return nil
}

func CreateExpense(ctx context.Context, input *NewExpense) (*Expense, error) {
	db := config.GetDB()
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	if err := input.validate(); err != nil {
		return nil, err
	}

	spentAt := time.Now()
	if input.SpentAt != nil {
		spentAt = *input.SpentAt
	}

	expense := Expense{
		UserId:      userId,
		Description: input.Description,
		Category:    input.Category,
		Amount:      input.Amount,
		SpentAt:     spentAt,
	}
	if err := db.WithContext(ctx).Create(&expense).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

func UpdateExpense(ctx context.Context, id int, input *NewExpense) (*Expense, error) {
	db := config.GetDB()
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	if err := input.validate(); err != nil {
		return nil, err
	}

	expense, err := utils.FetchModelForChange[Expense](ctx, userId, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"Description": input.Description,
		"Category":    input.Category,
		"Amount":      input.Amount,
	}
	if input.SpentAt != nil {
		updates["SpentAt"] = *input.SpentAt
	}
	if err := db.WithContext(ctx).Model(expense).Updates(updates).Error; err != nil {
		return nil, err
	}
	return expense, nil
}

func DeleteExpense(ctx context.Context, id int) (*Expense, error) {
	db := config.GetDB()
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	expense, err := utils.FetchModelForChange[Expense](ctx, userId, id)
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Delete(expense).Error; err != nil {
		return nil, err
	}
	return expense, nil
}

func GetExpenses(ctx context.Context) ([]Expense, error) {
	db := config.GetDB()
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	var expenses []Expense
	err := db.WithContext(ctx).
		Where("user_id = ?", userId).
		Order("spent_at DESC").
		Find(&expenses).Error
	if err != nil {
		return nil, err
	}
	return expenses, nil
}

// SumExpensesBetween totals a user's spending inside a budget window,
// optionally restricted to one category.
func SumExpensesBetween(ctx context.Context, userId int, category string, from, to time.Time) (decimal.Decimal, error) {
	db := config.GetDB()

	query := db.WithContext(ctx).Model(&Expense{}).
		Where("user_id = ? AND spent_at >= ? AND spent_at < ?", userId, from, to)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var total decimal.NullDecimal
	if err := query.Select("SUM(amount)").Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

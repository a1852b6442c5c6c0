package models

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wafirapp/wafir-backend/config"
	"github.com/wafirapp/wafir-backend/utils"
)

type Budget struct {
	ID        int             `gorm:"primary_key" json:"id"`
	UserId    int             `gorm:"index;not null" json:"user_id"`
	Name      string          `gorm:"size:100;not null" json:"name" binding:"required"`
	Category  string          `gorm:"size:100" json:"category"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"`
	Cycle     BudgetCycle     `gorm:"type:enum('weekly','monthly','yearly');default:'monthly'" json:"cycle"`
	StartDate time.Time       `gorm:"not null" json:"start_date"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewBudget struct {
	Name      string          `json:"name" binding:"required"`
	Category  string          `json:"category"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Cycle     BudgetCycle     `json:"cycle" binding:"required"`
	StartDate *time.Time      `json:"start_date"`
}

// BudgetStats is the per-window tracking snapshot served alongside a budget.
type BudgetStats struct {
	WindowStart   time.Time       `json:"window_start"`
	WindowEnd     time.Time       `json:"window_end"`
	Spent         decimal.Decimal `json:"spent"`
	Remaining     decimal.Decimal `json:"remaining"`
	DailyBurnRate decimal.Decimal `json:"daily_burn_rate"`
	Projected     decimal.Decimal `json:"projected"`
	DaysRemaining int             `json:"days_remaining"`
	UsedPercent   decimal.Decimal `json:"used_percent"`
}

type BudgetWithStats struct {
	Budget
	Stats BudgetStats `json:"stats"`
}

func (c BudgetCycle) advance(t time.Time) time.Time {
	switch c {
	case BudgetCycleWeekly:
		return t.AddDate(0, 0, 7)
	case BudgetCycleYearly:
		return t.AddDate(1, 0, 0)
	default:
		return t.AddDate(0, 1, 0)
	}
}

// CurrentWindow rolls the budget's cycle forward from its start date and
// returns the half-open window [start, end) containing now. A start date in
// the future returns the first window unrolled.
func (b Budget) CurrentWindow(now time.Time) (time.Time, time.Time) {
	start := b.StartDate
	end := b.Cycle.advance(start)
	for !end.After(now) {
		start = end
		end = b.Cycle.advance(start)
	}
	return start, end
}

func (input *NewBudget) validate() error {
	if !input.Amount.IsPositive() {
		return errors.New("amount must be positive")
	}
	if err := input.Cycle.Validate(); err != nil {
		return err
	}
	return nil
}

func CreateBudget(ctx context.Context, input *NewBudget) (*Budget, error) {
	db := config.GetDB()
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	if err := input.validate(); err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[Budget](ctx, userId, "name", input.Name, 0); err != nil {
		return nil, err
	}

	startDate := time.Now().Truncate(24 * time.Hour)
	if input.StartDate != nil {
		startDate = *input.StartDate
	}

	budget := Budget{
		UserId:    userId,
		Name:      input.Name,
		Category:  input.Category,
		Amount:    input.Amount,
		Cycle:     input.Cycle,
		StartDate: startDate,
	}
	if err := db.WithContext(ctx).Create(&budget).Error; err != nil {
		return nil, err
	}
	return &budget, nil
}

func UpdateBudget(ctx context.Context, id int, input *NewBudget) (*Budget, error) {
	db := config.GetDB()
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	if err := input.validate(); err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[Budget](ctx, userId, "name", input.Name, id); err != nil {
		return nil, err
	}

	budget, err := utils.FetchModelForChange[Budget](ctx, userId, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"Name":     input.Name,
		"Category": input.Category,
		"Amount":   input.Amount,
		"Cycle":    input.Cycle,
	}
	if input.StartDate != nil {
		updates["StartDate"] = *input.StartDate
	}
	if err := db.WithContext(ctx).Model(budget).Updates(updates).Error; err != nil {
		return nil, err
	}
	return budget, nil
}

func DeleteBudget(ctx context.Context, id int) (*Budget, error) {
	db := config.GetDB()
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	budget, err := utils.FetchModelForChange[Budget](ctx, userId, id)
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Delete(budget).Error; err != nil {
		return nil, err
	}
	return budget, nil
}

// GetBudgetsWithStats serves every budget with its active-window tracking
// snapshot.
func GetBudgetsWithStats(ctx context.Context, now time.Time) ([]BudgetWithStats, error) {
	db := config.GetDB()
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	var budgets []Budget
	err := db.WithContext(ctx).Where("user_id = ?", userId).Order("id").Find(&budgets).Error
	if err != nil {
		return nil, err
	}

	result := make([]BudgetWithStats, 0, len(budgets))
	for _, b := range budgets {
		stats, err := b.statsAt(ctx, now)
		if err != nil {
			return nil, err
		}
		result = append(result, BudgetWithStats{Budget: b, Stats: *stats})
	}
	return result, nil
}

func (b Budget) statsAt(ctx context.Context, now time.Time) (*BudgetStats, error) {
	start, end := b.CurrentWindow(now)

	spent, err := SumExpensesBetween(ctx, b.UserId, b.Category, start, end)
	if err != nil {
		return nil, err
	}

	stats := &BudgetStats{
		WindowStart: start,
		WindowEnd:   end,
		Spent:       spent,
		Remaining:   b.Amount.Sub(spent),
	}

	daysElapsed := int(now.Sub(start).Hours()/24) + 1
	totalDays := int(end.Sub(start).Hours() / 24)
	stats.DaysRemaining = totalDays - daysElapsed
	if stats.DaysRemaining < 0 {
		stats.DaysRemaining = 0
	}
	if daysElapsed > 0 {
		stats.DailyBurnRate = spent.DivRound(decimal.NewFromInt(int64(daysElapsed)), 2)
		stats.Projected = stats.DailyBurnRate.Mul(decimal.NewFromInt(int64(totalDays)))
	}
	if b.Amount.IsPositive() {
		stats.UsedPercent = spent.Mul(decimal.NewFromInt(100)).DivRound(b.Amount, 2)
	}
	return stats, nil
}

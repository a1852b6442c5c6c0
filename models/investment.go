package models

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wafirapp/wafir-backend/config"
	"github.com/wafirapp/wafir-backend/utils"
	"github.com/wafirapp/wafir-backend/zakat"
)

type Investment struct {
	ID           int                `gorm:"primary_key" json:"id"`
	UserId       int                `gorm:"index;not null" json:"user_id"`
	Name         string             `gorm:"size:100;not null" json:"name" binding:"required"`
	Category     InvestmentCategory `gorm:"type:enum('RealEstate','Stock','Crypto','Gold','Other');not null" json:"category" binding:"required"`
	AmountOwned  decimal.Decimal    `gorm:"type:decimal(20,6);default:0" json:"amount_owned"`
	BuyPrice     decimal.Decimal    `gorm:"type:decimal(20,2);default:0" json:"buy_price"`
	CurrentPrice decimal.Decimal    `gorm:"type:decimal(20,2);default:0" json:"current_price"`
	PurchaseDate *time.Time         `json:"purchase_date"`
	CreatedAt    time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewInvestment struct {
	Name         string             `json:"name" binding:"required"`
	Category     InvestmentCategory `json:"category" binding:"required"`
	AmountOwned  decimal.Decimal    `json:"amount_owned"`
	BuyPrice     decimal.Decimal    `json:"buy_price"`
	CurrentPrice decimal.Decimal    `json:"current_price"`
	PurchaseDate *time.Time         `json:"purchase_date"`
}

// CurrentValue is derived, never stored.
func (inv Investment) CurrentValue() decimal.Decimal {
	return inv.CurrentPrice.Mul(inv.AmountOwned)
}

// ToZakatInvestment maps a stored record into the calculator's input shape.
func (inv Investment) ToZakatInvestment() zakat.Investment {
	return zakat.Investment{
		Name:         inv.Name,
		Category:     zakat.Category(inv.Category),
		AmountOwned:  inv.AmountOwned,
		BuyPrice:     inv.BuyPrice,
		CurrentPrice: inv.CurrentPrice,
		PurchaseDate: inv.PurchaseDate,
	}
}

func (input *NewInvestment) validate() error {
	if err := input.Category.Validate(); err != nil {
		return err
	}
	if input.AmountOwned.IsNegative() {
		return errors.New("amount owned must not be negative")
	}
	if input.BuyPrice.IsNegative() {
		return errors.New("buy price must not be negative")
	}
	if input.CurrentPrice.IsNegative() {
		return errors.New("current price must not be negative")
	}
	return nil
}

func CreateInvestment(ctx context.Context, input *NewInvestment) (*Investment, error) {
	db := config.GetDB()
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	if err := input.validate(); err != nil {
		return nil, err
	}

	investment := Investment{
		UserId:       userId,
		Name:         input.Name,
		Category:     input.Category,
		AmountOwned:  input.AmountOwned,
		BuyPrice:     input.BuyPrice,
		CurrentPrice: input.CurrentPrice,
		PurchaseDate: input.PurchaseDate,
	}
	if err := db.WithContext(ctx).Create(&investment).Error; err != nil {
		return nil, err
	}
	return &investment, nil
}

func UpdateInvestment(ctx context.Context, id int, input *NewInvestment) (*Investment, error) {
	db := config.GetDB()
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	if err := input.validate(); err != nil {
		return nil, err
	}

	investment, err := utils.FetchModelForChange[Investment](ctx, userId, id)
	if err != nil {
		return nil, err
	}

	err = db.WithContext(ctx).Model(investment).Updates(map[string]interface{}{
		"Name":         input.Name,
		"Category":     input.Category,
		"AmountOwned":  input.AmountOwned,
		"BuyPrice":     input.BuyPrice,
		"CurrentPrice": input.CurrentPrice,
		"PurchaseDate": input.PurchaseDate,
	}).Error
	if err != nil {
		return nil, err
	}
	return investment, nil
}

func DeleteInvestment(ctx context.Context, id int) (*Investment, error) {
	db := config.GetDB()
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	investment, err := utils.FetchModelForChange[Investment](ctx, userId, id)
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Delete(investment).Error; err != nil {
		return nil, err
	}
	return investment, nil
}

func GetInvestments(ctx context.Context) ([]Investment, error) {
	db := config.GetDB()
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	var investments []Investment
	err := db.WithContext(ctx).
		Where("user_id = ?", userId).
		Order("id").
		Find(&investments).Error
	if err != nil {
		return nil, err
	}
	return investments, nil
}

// GetZakatPortfolio loads the caller's investments in insertion order,
// mapped to the calculator's input shape.
func GetZakatPortfolio(ctx context.Context) ([]zakat.Investment, error) {
	investments, err := GetInvestments(ctx)
	if err != nil {
		return nil, err
	}
	portfolio := make([]zakat.Investment, 0, len(investments))
	for _, inv := range investments {
		portfolio = append(portfolio, inv.ToZakatInvestment())
	}
	return portfolio, nil
}

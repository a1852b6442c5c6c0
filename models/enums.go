package models

import "errors"

type UserRole string

const (
	UserRoleAdmin   UserRole = "admin"
	UserRoleAdvisor UserRole = "advisor"
	UserRoleUser    UserRole = "user"
)

func (r UserRole) Validate() error {
	switch r {
	case UserRoleAdmin, UserRoleAdvisor, UserRoleUser:
		return nil
	}
	return errors.New("invalid user role")
}

type InvestmentCategory string

const (
	InvestmentCategoryRealEstate InvestmentCategory = "RealEstate"
	InvestmentCategoryStock      InvestmentCategory = "Stock"
	InvestmentCategoryCrypto     InvestmentCategory = "Crypto"
	InvestmentCategoryGold       InvestmentCategory = "Gold"
	InvestmentCategoryOther      InvestmentCategory = "Other"
)

func (c InvestmentCategory) Validate() error {
	switch c {
	case InvestmentCategoryRealEstate, InvestmentCategoryStock, InvestmentCategoryCrypto,
		InvestmentCategoryGold, InvestmentCategoryOther:
		return nil
	}
	return errors.New("invalid investment category")
}

type BudgetCycle string

const (
	BudgetCycleWeekly  BudgetCycle = "weekly"
	BudgetCycleMonthly BudgetCycle = "monthly"
	BudgetCycleYearly  BudgetCycle = "yearly"
)

func (c BudgetCycle) Validate() error {
	switch c {
	case BudgetCycleWeekly, BudgetCycleMonthly, BudgetCycleYearly:
		return nil
	}
	return errors.New("invalid budget cycle")
}

type AdvisorRequestStatus string

const (
	AdvisorRequestPending  AdvisorRequestStatus = "pending"
	AdvisorRequestAccepted AdvisorRequestStatus = "accepted"
	AdvisorRequestRejected AdvisorRequestStatus = "rejected"
)

type NotificationType string

const (
	NotificationTypeAdvisorRequest NotificationType = "advisor_request"
	NotificationTypeAdvisorReply   NotificationType = "advisor_reply"
	NotificationTypeMessage        NotificationType = "message"
	NotificationTypeZakatDue       NotificationType = "zakat_due"
	NotificationTypeBudgetExceeded NotificationType = "budget_exceeded"
)

package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/billbook_backend/config"
	"bitbucket.org/mmdatafocus/billbook_backend/utils"
	"github.com/shopspring/decimal"
)

type Payment struct {
	ID              int             `gorm:"primary_key" json:"id"`
	UserId          int             `gorm:"index;not null" json:"user_id"`
	CustomerId      int             `gorm:"index;not null" json:"customer_id"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	PaymentMode     PaymentMode     `gorm:"type:enum('Cash','Cheque','Online','Card','UPI');not null;default:'Cash'" json:"payment_mode"`
	PaymentDate     time.Time       `gorm:"index;not null" json:"payment_date"`
	ReferenceNumber string          `gorm:"size:50" json:"reference_number"`
	Notes           string          `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewPayment struct {
	CustomerId      int             `json:"customer_id" binding:"required"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	PaymentMode     PaymentMode     `json:"payment_mode"`
	PaymentDate     *time.Time      `json:"payment_date"`
	ReferenceNumber string          `json:"reference_number"`
	Notes           string          `json:"notes"`
}

type PaymentsPage struct {
	Payments []*Payment `json:"payments"`
	PageInfo *PageInfo  `json:"pageInfo"`
}

type PaymentFilter struct {
	CustomerId int
	StartDate  *time.Time
	EndDate    *time.Time
}

func (input *NewPayment) validate(ctx context.Context, userId int) error {
	if input.CustomerId <= 0 || input.Amount.IsZero() {
		return utils.InvalidInputError("customer and amount are required")
	}
	if !input.Amount.IsPositive() {
		return utils.InvalidInputError("amount must be greater than 0")
	}
	if input.PaymentMode != "" && !input.PaymentMode.IsValid() {
		return utils.InvalidInputError("invalid payment mode")
	}
	if err := utils.ValidateResourceId[Customer](ctx, userId, input.CustomerId); err != nil {
		return utils.NotFoundError("customer not found")
	}
	return nil
}

// CreatePayment records a receipt and settles it against the customer's
// aggregates in one transaction. Overpayment is allowed; the balance
// simply goes negative (advance held for the customer).
func CreatePayment(ctx context.Context, input *NewPayment) (*Payment, error) {
	db := config.GetDB()

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	if err := input.validate(ctx, userId); err != nil {
		return nil, err
	}

	release, err := utils.TenantLock(ctx, userId, input.CustomerId, "models", "CreatePayment")
	if err != nil {
		return nil, err
	}
	defer release()

	customer, err := utils.FetchModel[Customer](ctx, userId, input.CustomerId)
	if err != nil {
		return nil, utils.NotFoundError("customer not found")
	}

	paymentMode := input.PaymentMode
	if paymentMode == "" {
		paymentMode = PaymentModeCash
	}
	paymentDate := time.Now()
	if input.PaymentDate != nil {
		paymentDate = *input.PaymentDate
	}

	payment := Payment{
		UserId:          userId,
		CustomerId:      customer.ID,
		Amount:          input.Amount,
		PaymentMode:     paymentMode,
		PaymentDate:     paymentDate,
		ReferenceNumber: input.ReferenceNumber,
		Notes:           input.Notes,
	}

	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&payment).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	customer.TotalPaid = customer.TotalPaid.Add(input.Amount)
	customer.Balance = customer.Balance.Sub(input.Amount)
	if err := tx.WithContext(ctx).Save(customer).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// DeletePayment removes the payment and reverses its effect on the
// customer. A missing customer is tolerated; the payment is still removed.
func DeletePayment(ctx context.Context, id int) (*Payment, error) {
	db := config.GetDB()

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	payment, err := utils.FetchModel[Payment](ctx, userId, id)
	if err != nil {
		return nil, utils.NotFoundError("payment not found")
	}

	release, err := utils.TenantLock(ctx, userId, payment.CustomerId, "models", "DeletePayment")
	if err != nil {
		return nil, err
	}
	defer release()

	tx := db.Begin()

	customer, err := utils.FetchModel[Customer](ctx, userId, payment.CustomerId)
	if err == nil {
		customer.TotalPaid = customer.TotalPaid.Sub(payment.Amount)
		customer.Balance = customer.Balance.Add(payment.Amount)
		if err := tx.WithContext(ctx).Save(customer).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.WithContext(ctx).Delete(payment).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return payment, nil
}

func GetPayment(ctx context.Context, id int) (*Payment, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	payment, err := utils.FetchModel[Payment](ctx, userId, id)
	if err != nil {
		return nil, utils.NotFoundError("payment not found")
	}
	return payment, nil
}

func GetPayments(ctx context.Context, page int, limit int, filter *PaymentFilter) (*PaymentsPage, error) {
	db := config.GetDB()

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	page, limit, offset := normalizePaging(page, limit, 20)

	dbCtx := db.WithContext(ctx).Model(&Payment{}).Where("user_id = ?", userId)
	if filter != nil {
		if filter.CustomerId > 0 {
			dbCtx = dbCtx.Where("customer_id = ?", filter.CustomerId)
		}
		if filter.StartDate != nil {
			dbCtx = dbCtx.Where("payment_date >= ?", *filter.StartDate)
		}
		if filter.EndDate != nil {
			dbCtx = dbCtx.Where("payment_date <= ?", *filter.EndDate)
		}
	}

	var total int64
	if err := dbCtx.Count(&total).Error; err != nil {
		return nil, err
	}

	var payments []*Payment
	if err := dbCtx.Order("payment_date DESC").Limit(limit).Offset(offset).Find(&payments).Error; err != nil {
		return nil, err
	}

	return &PaymentsPage{
		Payments: payments,
		PageInfo: makePageInfo(page, limit, total),
	}, nil
}

// GetCustomerPayments lists all payments of one customer, newest first.
func GetCustomerPayments(ctx context.Context, customerId int) ([]*Payment, error) {
	db := config.GetDB()

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	var payments []*Payment
	err := db.WithContext(ctx).Model(&Payment{}).
		Where("user_id = ? AND customer_id = ?", userId, customerId).
		Order("payment_date DESC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/billbook_backend/config"
	"bitbucket.org/mmdatafocus/billbook_backend/utils"
	"github.com/shopspring/decimal"
)

// Customer carries incrementally maintained ledger aggregates.
// Invariant: Balance == TotalAmount - TotalPaid == sum of active bill
// totals minus sum of active payments. Only bill.go and payment.go
// mutate the aggregate fields, always inside one transaction.
type Customer struct {
	ID          int             `gorm:"primary_key" json:"id"`
	UserId      int             `gorm:"index;not null" json:"user_id"`
	Name        string          `gorm:"size:100;not null" json:"name" binding:"required"`
	Mobile      string          `gorm:"size:20;not null" json:"mobile" binding:"required"`
	CountryCode string          `gorm:"size:8;not null;default:'+91'" json:"country_code"`
	Address     string          `gorm:"type:text" json:"address"`
	GstNumber   string          `gorm:"size:20" json:"gst_number"`
	TotalBills  int             `gorm:"not null;default:0" json:"total_bills"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"total_amount"`
	TotalPaid   decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"total_paid"`
	Balance     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"balance"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCustomer struct {
	Name        string `json:"name" binding:"required"`
	Mobile      string `json:"mobile" binding:"required"`
	CountryCode string `json:"country_code"`
	Address     string `json:"address"`
	GstNumber   string `json:"gst_number"`
}

type UpdateCustomerInput struct {
	Name        *string `json:"name"`
	Mobile      *string `json:"mobile"`
	CountryCode *string `json:"country_code"`
	Address     *string `json:"address"`
	GstNumber   *string `json:"gst_number"`
}

type CustomersPage struct {
	Customers []*Customer `json:"customers"`
	PageInfo  *PageInfo   `json:"pageInfo"`
}

type CustomerStats struct {
	Total int64 `json:"total"`
}

func (input *NewCustomer) validate(ctx context.Context, userId int, id int) error {
	if input.Name == "" || input.Mobile == "" {
		return utils.InvalidInputError("name and mobile are required")
	}
	if id > 0 {
		if err := utils.ValidateResourceId[Customer](ctx, userId, id); err != nil {
			return err
		}
	}
	// duplicate mobile within the tenant (app-level check, not a unique index)
	count, err := utils.ResourceCountWhere[Customer](ctx, userId, "mobile = ? AND NOT id = ?", input.Mobile, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return utils.InvalidInputError("customer with this mobile number already exists")
	}
	countryCode := input.CountryCode
	if countryCode == "" {
		countryCode = "+91"
	}
	if err := utils.ValidatePhoneNumber(countryCode+input.Mobile, ""); err != nil {
		return utils.InvalidInputError("mobile number is not valid")
	}
	return nil
}

func CreateCustomer(ctx context.Context, input *NewCustomer) (*Customer, error) {
	db := config.GetDB()

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	if err := input.validate(ctx, userId, 0); err != nil {
		return nil, err
	}

	countryCode := input.CountryCode
	if countryCode == "" {
		countryCode = "+91"
	}

	customer := Customer{
		UserId:      userId,
		Name:        input.Name,
		Mobile:      input.Mobile,
		CountryCode: countryCode,
		Address:     input.Address,
		GstNumber:   input.GstNumber,
		TotalAmount: decimal.Zero,
		TotalPaid:   decimal.Zero,
		Balance:     decimal.Zero,
	}

	if err := db.WithContext(ctx).Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func UpdateCustomer(ctx context.Context, id int, input *UpdateCustomerInput) (*Customer, error) {
	db := config.GetDB()

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	customer, err := utils.FetchModel[Customer](ctx, userId, id)
	if err != nil {
		return nil, utils.NotFoundError("customer not found")
	}

	if input.Mobile != nil && *input.Mobile != customer.Mobile {
		check := &NewCustomer{
			Name:        customer.Name,
			Mobile:      *input.Mobile,
			CountryCode: customer.CountryCode,
		}
		if input.CountryCode != nil {
			check.CountryCode = *input.CountryCode
		}
		if err := check.validate(ctx, userId, id); err != nil {
			return nil, err
		}
		customer.Mobile = *input.Mobile
	}
	if input.Name != nil && *input.Name != "" {
		customer.Name = *input.Name
	}
	if input.CountryCode != nil {
		customer.CountryCode = *input.CountryCode
	}
	if input.Address != nil {
		customer.Address = *input.Address
	}
	if input.GstNumber != nil {
		customer.GstNumber = *input.GstNumber
	}

	if err := db.WithContext(ctx).Save(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

// DeleteCustomer refuses while any bill still references the customer.
func DeleteCustomer(ctx context.Context, id int) (*Customer, error) {
	db := config.GetDB()

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	customer, err := utils.FetchModel[Customer](ctx, userId, id)
	if err != nil {
		return nil, utils.NotFoundError("customer not found")
	}

	billCount, err := utils.ResourceCountWhere[Bill](ctx, userId, "customer_id = ?", id)
	if err != nil {
		return nil, err
	}
	if billCount > 0 {
		return nil, utils.InvalidInputError(fmt.Sprintf("cannot delete customer with %d existing bills", billCount))
	}

	if err := db.WithContext(ctx).Delete(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

func GetCustomer(ctx context.Context, id int) (*Customer, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	customer, err := utils.FetchModel[Customer](ctx, userId, id)
	if err != nil {
		return nil, utils.NotFoundError("customer not found")
	}
	return customer, nil
}

func GetCustomers(ctx context.Context, page int, limit int, search string) (*CustomersPage, error) {
	db := config.GetDB()

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	page, limit, offset := normalizePaging(page, limit, 50)

	dbCtx := db.WithContext(ctx).Model(&Customer{}).Where("user_id = ?", userId)
	if search != "" {
		dbCtx = dbCtx.Where("name LIKE ? OR mobile LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	if err := dbCtx.Count(&total).Error; err != nil {
		return nil, err
	}

	var customers []*Customer
	if err := dbCtx.Order("created_at DESC").Limit(limit).Offset(offset).Find(&customers).Error; err != nil {
		return nil, err
	}

	return &CustomersPage{
		Customers: customers,
		PageInfo:  makePageInfo(page, limit, total),
	}, nil
}

// SearchCustomers powers autocomplete; queries shorter than 2 chars return nothing.
func SearchCustomers(ctx context.Context, query string) ([]*Customer, error) {
	db := config.GetDB()

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	if len(query) < 2 {
		return []*Customer{}, nil
	}

	var customers []*Customer
	err := db.WithContext(ctx).Model(&Customer{}).
		Where("user_id = ?", userId).
		Where("name LIKE ? OR mobile LIKE ?", "%"+query+"%", "%"+query+"%").
		Select("id", "name", "mobile", "country_code", "balance").
		Limit(config.SearchLimit).
		Find(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}

func GetCustomerStats(ctx context.Context) (*CustomerStats, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	total, err := utils.ResourceCountWhere[Customer](ctx, userId, "1 = 1")
	if err != nil {
		return nil, err
	}
	return &CustomerStats{Total: total}, nil
}

package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/billbook_backend/config"
	"bitbucket.org/mmdatafocus/billbook_backend/utils"
	"github.com/shopspring/decimal"
)

type Bill struct {
	ID              int             `gorm:"primary_key" json:"id"`
	UserId          int             `gorm:"not null;uniqueIndex:uix_bills_user_bill_number" json:"user_id"`
	BillNumber      string          `gorm:"size:20;not null;uniqueIndex:uix_bills_user_bill_number" json:"bill_number"`
	SequenceNo      int64           `gorm:"not null;default:0" json:"sequence_no"`
	BillType        BillType        `gorm:"type:enum('CHALLAN','INVOICE','QUOTATION');not null;default:'CHALLAN'" json:"bill_type"`
	CustomerId      int             `gorm:"index;not null" json:"customer_id"`
	CustomerName    string          `gorm:"size:100;not null" json:"customer_name"`
	CustomerMobile  string          `gorm:"size:30" json:"customer_mobile"`
	Items           []*BillItem     `gorm:"foreignKey:BillId" json:"items"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"subtotal"`
	GstTotal        decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"gst_total"`
	Total           decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"total"`
	AmountInWords   string          `gorm:"size:255" json:"amount_in_words"`
	PreviousBalance decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"previous_balance"`
	ClosingBalance  decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"closing_balance"`
	PaymentStatus   PaymentStatus   `gorm:"type:enum('Unpaid','Partially Paid','Paid');not null;default:'Unpaid'" json:"payment_status"`
	Notes           string          `gorm:"type:text" json:"notes"`
	Date            time.Time       `gorm:"index;not null" json:"date"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// BillItem is a denormalized line: product name/rate/unit are copied at
// creation time so later catalog edits never change issued bills.
type BillItem struct {
	ID          int             `gorm:"primary_key" json:"id"`
	BillId      int             `gorm:"index;not null" json:"bill_id"`
	UserId      int             `gorm:"index;not null" json:"user_id"`
	SrNo        int             `gorm:"not null" json:"sr_no"`
	ProductId   int             `gorm:"default:0" json:"product_id"`
	ProductName string          `gorm:"size:100;not null" json:"product_name"`
	Quantity    decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"quantity"`
	Unit        ProductUnit     `gorm:"type:enum('Pcs','Mtr','Kg','Box','Set','Ltr');not null;default:'Pcs'" json:"unit"`
	TotalMtr    decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"total_mtr"`
	Rate        decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"rate"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"amount"`
	GstRate     decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"gst_rate"`
	GstAmount   decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"gst_amount"`
}

type NewBillItem struct {
	ProductId   int             `json:"product_id"`
	ProductName string          `json:"product_name" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        ProductUnit     `json:"unit"`
	TotalMtr    decimal.Decimal `json:"total_mtr"`
	Rate        decimal.Decimal `json:"rate"`
	GstRate     decimal.Decimal `json:"gst_rate"`
}

type NewBill struct {
	CustomerId int            `json:"customer_id" binding:"required"`
	BillType   BillType       `json:"bill_type"`
	Items      []*NewBillItem `json:"items" binding:"required"`
	Notes      string         `json:"notes"`
	Date       *time.Time     `json:"date"`
}

type UpdateBillInput struct {
	Items    []*NewBillItem `json:"items"`
	Notes    *string        `json:"notes"`
	BillType *BillType      `json:"bill_type"`
}

type BillsPage struct {
	Bills    []*Bill   `json:"bills"`
	PageInfo *PageInfo `json:"pageInfo"`
}

type BillStats struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalBills   int64           `json:"total_bills"`
}

type BillFilter struct {
	CustomerId int
	BillType   BillType
	StartDate  *time.Time
	EndDate    *time.Time
}

// computeBillItems derives line amounts and bill sums:
// amount = quantity*rate, gstAmount = amount*gstRate/100,
// subtotal = sum(amount), gstTotal = sum(gstAmount), total = subtotal+gstTotal.
func computeBillItems(userId int, items []*NewBillItem) ([]*BillItem, decimal.Decimal, decimal.Decimal, decimal.Decimal, error) {
	if len(items) == 0 {
		return nil, decimal.Zero, decimal.Zero, decimal.Zero, utils.InvalidInputError("customer and items are required")
	}

	hundred := decimal.NewFromInt(100)
	subtotal := decimal.Zero
	gstTotal := decimal.Zero

	processed := make([]*BillItem, 0, len(items))
	for i, item := range items {
		if item.ProductName == "" {
			return nil, decimal.Zero, decimal.Zero, decimal.Zero, utils.InvalidInputError("item product name is required")
		}
		if item.Quantity.IsNegative() || item.Rate.IsNegative() {
			return nil, decimal.Zero, decimal.Zero, decimal.Zero, utils.InvalidInputError("item quantity and rate must not be negative")
		}
		if item.GstRate.IsNegative() || item.GstRate.GreaterThan(hundred) {
			return nil, decimal.Zero, decimal.Zero, decimal.Zero, utils.InvalidInputError("item gst rate must be between 0 and 100")
		}
		unit := item.Unit
		if unit == "" {
			unit = ProductUnitPcs
		} else if !unit.IsValid() {
			return nil, decimal.Zero, decimal.Zero, decimal.Zero, utils.InvalidInputError("invalid item unit")
		}

		amount := item.Quantity.Mul(item.Rate)
		gstAmount := amount.Mul(item.GstRate).Div(hundred)

		subtotal = subtotal.Add(amount)
		gstTotal = gstTotal.Add(gstAmount)

		processed = append(processed, &BillItem{
			UserId:      userId,
			SrNo:        i + 1,
			ProductId:   item.ProductId,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Unit:        unit,
			TotalMtr:    item.TotalMtr,
			Rate:        item.Rate,
			Amount:      amount,
			GstRate:     item.GstRate,
			GstAmount:   gstAmount,
		})
	}

	total := subtotal.Add(gstTotal)
	return processed, subtotal, gstTotal, total, nil
}

func (input *NewBill) validate(ctx context.Context, userId int) error {
	if input.CustomerId <= 0 || len(input.Items) == 0 {
		return utils.InvalidInputError("customer and items are required")
	}
	if input.BillType != "" && !input.BillType.IsValid() {
		return utils.InvalidInputError("invalid bill type")
	}
	if err := utils.ValidateResourceId[Customer](ctx, userId, input.CustomerId); err != nil {
		return utils.NotFoundError("customer not found")
	}
	for _, item := range input.Items {
		if item.ProductId > 0 {
			if err := utils.ValidateResourceId[Product](ctx, userId, item.ProductId); err != nil {
				return utils.NotFoundError("product not found")
			}
		}
	}
	return nil
}

// CreateBill issues a bill and rolls its total into the customer's
// aggregates in one transaction, serialized per customer so concurrent
// creations cannot lose an update.
func CreateBill(ctx context.Context, input *NewBill) (*Bill, error) {
	db := config.GetDB()

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	if err := input.validate(ctx, userId); err != nil {
		return nil, err
	}

	release, err := utils.TenantLock(ctx, userId, input.CustomerId, "models", "CreateBill")
	if err != nil {
		return nil, err
	}
	defer release()

	customer, err := utils.FetchModel[Customer](ctx, userId, input.CustomerId)
	if err != nil {
		return nil, utils.NotFoundError("customer not found")
	}

	items, subtotal, gstTotal, total, err := computeBillItems(userId, input.Items)
	if err != nil {
		return nil, err
	}

	billNumber, sequenceNo, err := NextBillNumber(ctx, userId)
	if err != nil {
		return nil, err
	}

	billType := input.BillType
	if billType == "" {
		billType = BillTypeChallan
	}
	date := time.Now()
	if input.Date != nil {
		date = *input.Date
	}

	previousBalance := customer.Balance
	closingBalance := previousBalance.Add(total)

	bill := Bill{
		UserId:          userId,
		BillNumber:      billNumber,
		SequenceNo:      sequenceNo,
		BillType:        billType,
		CustomerId:      customer.ID,
		CustomerName:    customer.Name,
		CustomerMobile:  customer.CountryCode + customer.Mobile,
		Items:           items,
		Subtotal:        subtotal,
		GstTotal:        gstTotal,
		Total:           total,
		AmountInWords:   utils.AmountToWords(total),
		PreviousBalance: previousBalance,
		ClosingBalance:  closingBalance,
		PaymentStatus:   PaymentStatusUnpaid,
		Notes:           input.Notes,
		Date:            date,
	}

	tx := db.Begin()
	if err := tx.WithContext(ctx).Create(&bill).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	customer.TotalBills += 1
	customer.TotalAmount = customer.TotalAmount.Add(total)
	customer.Balance = closingBalance
	if err := tx.WithContext(ctx).Save(customer).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &bill, nil
}

// UpdateBill replaces the item list and re-derives all amounts. The new
// closing balance is based on the bill's original previousBalance
// snapshot; snapshots on later bills are deliberately left untouched.
func UpdateBill(ctx context.Context, id int, input *UpdateBillInput) (*Bill, error) {
	db := config.GetDB()

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	if input.BillType != nil && !input.BillType.IsValid() {
		return nil, utils.InvalidInputError("invalid bill type")
	}

	bill, err := utils.FetchModel[Bill](ctx, userId, id, "Items")
	if err != nil {
		return nil, utils.NotFoundError("bill not found")
	}

	release, err := utils.TenantLock(ctx, userId, bill.CustomerId, "models", "UpdateBill")
	if err != nil {
		return nil, err
	}
	defer release()

	customer, err := utils.FetchModel[Customer](ctx, userId, bill.CustomerId)
	if err != nil {
		return nil, utils.NotFoundError("customer not found")
	}

	tx := db.Begin()

	if len(input.Items) > 0 {
		items, subtotal, gstTotal, total, err := computeBillItems(userId, input.Items)
		if err != nil {
			tx.Rollback()
			return nil, err
		}

		// reverse the old contribution, apply the new one
		customer.TotalAmount = customer.TotalAmount.Sub(bill.Total).Add(total)
		customer.Balance = customer.Balance.Sub(bill.Total).Add(total)

		if err := tx.WithContext(ctx).Where("bill_id = ?", bill.ID).Delete(&BillItem{}).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		for _, item := range items {
			item.BillId = bill.ID
		}
		if err := tx.WithContext(ctx).Create(&items).Error; err != nil {
			tx.Rollback()
			return nil, err
		}

		bill.Items = items
		bill.Subtotal = subtotal
		bill.GstTotal = gstTotal
		bill.Total = total
		bill.ClosingBalance = bill.PreviousBalance.Add(total)
		bill.AmountInWords = utils.AmountToWords(total)
	}

	if input.Notes != nil {
		bill.Notes = *input.Notes
	}
	if input.BillType != nil {
		bill.BillType = *input.BillType
	}

	if err := tx.WithContext(ctx).Omit("Items").Save(bill).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Save(customer).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return bill, nil
}

// DeleteBill removes the bill and reverses its effect on the customer's
// aggregates. A missing customer is tolerated; the bill is still removed.
func DeleteBill(ctx context.Context, id int) (*Bill, error) {
	db := config.GetDB()

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	bill, err := utils.FetchModel[Bill](ctx, userId, id)
	if err != nil {
		return nil, utils.NotFoundError("bill not found")
	}

	release, err := utils.TenantLock(ctx, userId, bill.CustomerId, "models", "DeleteBill")
	if err != nil {
		return nil, err
	}
	defer release()

	tx := db.Begin()

	customer, err := utils.FetchModel[Customer](ctx, userId, bill.CustomerId)
	if err == nil {
		customer.TotalBills -= 1
		customer.TotalAmount = customer.TotalAmount.Sub(bill.Total)
		customer.Balance = customer.Balance.Sub(bill.Total)
		if err := tx.WithContext(ctx).Save(customer).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.WithContext(ctx).Where("bill_id = ?", bill.ID).Delete(&BillItem{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.WithContext(ctx).Delete(bill).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return bill, nil
}

func GetBill(ctx context.Context, id int) (*Bill, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	bill, err := utils.FetchModel[Bill](ctx, userId, id, "Items")
	if err != nil {
		return nil, utils.NotFoundError("bill not found")
	}
	return bill, nil
}

func GetBills(ctx context.Context, page int, limit int, filter *BillFilter) (*BillsPage, error) {
	db := config.GetDB()

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	page, limit, offset := normalizePaging(page, limit, 20)

	dbCtx := db.WithContext(ctx).Model(&Bill{}).Where("user_id = ?", userId)
	if filter != nil {
		if filter.CustomerId > 0 {
			dbCtx = dbCtx.Where("customer_id = ?", filter.CustomerId)
		}
		if filter.BillType != "" {
			dbCtx = dbCtx.Where("bill_type = ?", filter.BillType)
		}
		if filter.StartDate != nil {
			dbCtx = dbCtx.Where("date >= ?", *filter.StartDate)
		}
		if filter.EndDate != nil {
			dbCtx = dbCtx.Where("date <= ?", *filter.EndDate)
		}
	}

	var total int64
	if err := dbCtx.Count(&total).Error; err != nil {
		return nil, err
	}

	var bills []*Bill
	if err := dbCtx.Order("date DESC, sequence_no DESC").Limit(limit).Offset(offset).Find(&bills).Error; err != nil {
		return nil, err
	}

	return &BillsPage{
		Bills:    bills,
		PageInfo: makePageInfo(page, limit, total),
	}, nil
}

func GetBillStats(ctx context.Context) (*BillStats, error) {
	db := config.GetDB()

	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId <= 0 {
		return nil, errors.New("user id is required")
	}

	stats := BillStats{TotalRevenue: decimal.Zero}
	err := db.WithContext(ctx).Model(&Bill{}).
		Where("user_id = ?", userId).
		Select("COALESCE(SUM(total), 0) AS total_revenue, COUNT(*) AS total_bills").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

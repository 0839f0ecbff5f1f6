package models

import (
	"context"
	"fmt"
	"sort"
	"time"

	"bitbucket.org/mmdatafocus/billbook_backend/config"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// LedgerEntry is one row of the merged customer statement. Bill rows
// debit the account and carry the closing-balance snapshot; payment
// rows credit it and carry no balance (snapshots are bill-side only).
type LedgerEntry struct {
	Type            string           `json:"type"` // "bill" or "payment"
	Id              int              `json:"id"`
	Date            time.Time        `json:"date"`
	BillNumber      string           `json:"bill_number,omitempty"`
	PaymentMode     PaymentMode      `json:"payment_mode,omitempty"`
	ReferenceNumber string           `json:"reference_number,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	Debit           decimal.Decimal  `json:"debit"`
	Credit          decimal.Decimal  `json:"credit"`
	Balance         *decimal.Decimal `json:"balance,omitempty"`
}

// LedgerSummary mirrors the customer's aggregate fields verbatim; it is
// not recomputed from the rows, so it stays correct independent of row
// order or pagination.
type LedgerSummary struct {
	TotalBills  int             `json:"total_bills"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	TotalPaid   decimal.Decimal `json:"total_paid"`
	Balance     decimal.Decimal `json:"balance"`
}

type CustomerLedger struct {
	Customer *Customer      `json:"customer"`
	Ledger   []*LedgerEntry `json:"ledger"`
	Summary  LedgerSummary  `json:"summary"`
}

// mergeLedgerEntries combines bill and payment rows sorted by date
// descending. The sort is stable so same-date rows keep their relative
// order (bills before payments).
func mergeLedgerEntries(bills []*Bill, payments []*Payment) []*LedgerEntry {
	entries := make([]*LedgerEntry, 0, len(bills)+len(payments))

	for _, bill := range bills {
		balance := bill.ClosingBalance
		entries = append(entries, &LedgerEntry{
			Type:       "bill",
			Id:         bill.ID,
			Date:       bill.Date,
			BillNumber: bill.BillNumber,
			Debit:      bill.Total,
			Credit:     decimal.Zero,
			Balance:    &balance,
		})
	}
	for _, payment := range payments {
		entries = append(entries, &LedgerEntry{
			Type:            "payment",
			Id:              payment.ID,
			Date:            payment.PaymentDate,
			PaymentMode:     payment.PaymentMode,
			ReferenceNumber: payment.ReferenceNumber,
			Notes:           payment.Notes,
			Debit:           decimal.Zero,
			Credit:          payment.Amount,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})
	return entries
}

// GetCustomerLedger returns the merged bill/payment history of one
// customer with the stored aggregate summary.
func GetCustomerLedger(ctx context.Context, customerId int) (*CustomerLedger, error) {
	db := config.GetDB()

	customer, err := GetCustomer(ctx, customerId)
	if err != nil {
		return nil, err
	}

	var bills []*Bill
	err = db.WithContext(ctx).Model(&Bill{}).
		Where("user_id = ? AND customer_id = ?", customer.UserId, customerId).
		Select("id", "bill_number", "date", "total", "previous_balance", "closing_balance").
		Order("date DESC").
		Find(&bills).Error
	if err != nil {
		return nil, err
	}

	var payments []*Payment
	err = db.WithContext(ctx).Model(&Payment{}).
		Where("user_id = ? AND customer_id = ?", customer.UserId, customerId).
		Select("id", "amount", "payment_date", "payment_mode", "reference_number", "notes").
		Order("payment_date DESC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}

	return &CustomerLedger{
		Customer: customer,
		Ledger:   mergeLedgerEntries(bills, payments),
		Summary: LedgerSummary{
			TotalBills:  customer.TotalBills,
			TotalAmount: customer.TotalAmount,
			TotalPaid:   customer.TotalPaid,
			Balance:     customer.Balance,
		},
	}, nil
}

// ExportCustomerLedgerExcel renders the ledger as an xlsx workbook.
func ExportCustomerLedgerExcel(ctx context.Context, customerId int) (*excelize.File, error) {
	ledger, err := GetCustomerLedger(ctx, customerId)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheetName := "Ledger"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	// Add headers
	f.SetCellValue(sheetName, "A1", "Date")
	f.SetCellValue(sheetName, "B1", "Type")
	f.SetCellValue(sheetName, "C1", "Bill No / Reference")
	f.SetCellValue(sheetName, "D1", "Debit")
	f.SetCellValue(sheetName, "E1", "Credit")
	f.SetCellValue(sheetName, "F1", "Balance")

	// Add data
	for i, entry := range ledger.Ledger {
		row := fmt.Sprint(i + 2)
		f.SetCellValue(sheetName, "A"+row, entry.Date.Format("2006-01-02"))
		f.SetCellValue(sheetName, "B"+row, entry.Type)
		if entry.Type == "bill" {
			f.SetCellValue(sheetName, "C"+row, entry.BillNumber)
		} else {
			f.SetCellValue(sheetName, "C"+row, entry.ReferenceNumber)
		}
		f.SetCellValue(sheetName, "D"+row, entry.Debit.InexactFloat64())
		f.SetCellValue(sheetName, "E"+row, entry.Credit.InexactFloat64())
		if entry.Balance != nil {
			f.SetCellValue(sheetName, "F"+row, entry.Balance.InexactFloat64())
		}
	}

	// Summary block below the rows
	base := len(ledger.Ledger) + 3
	f.SetCellValue(sheetName, "A"+fmt.Sprint(base), "Total Bills")
	f.SetCellValue(sheetName, "B"+fmt.Sprint(base), ledger.Summary.TotalBills)
	f.SetCellValue(sheetName, "A"+fmt.Sprint(base+1), "Total Amount")
	f.SetCellValue(sheetName, "B"+fmt.Sprint(base+1), ledger.Summary.TotalAmount.InexactFloat64())
	f.SetCellValue(sheetName, "A"+fmt.Sprint(base+2), "Total Paid")
	f.SetCellValue(sheetName, "B"+fmt.Sprint(base+2), ledger.Summary.TotalPaid.InexactFloat64())
	f.SetCellValue(sheetName, "A"+fmt.Sprint(base+3), "Balance")
	f.SetCellValue(sheetName, "B"+fmt.Sprint(base+3), ledger.Summary.Balance.InexactFloat64())

	return f, nil
}

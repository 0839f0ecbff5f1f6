package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestMergeLedgerEntries(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
	}

	bills := []*Bill{
		{ID: 1, BillNumber: "1", Date: day(10), Total: dec("236"), ClosingBalance: dec("236")},
		{ID: 2, BillNumber: "2", Date: day(20), Total: dec("100"), ClosingBalance: dec("236")},
	}
	payments := []*Payment{
		{ID: 5, PaymentDate: day(15), Amount: dec("100"), PaymentMode: PaymentModeCash},
		{ID: 6, PaymentDate: day(20), Amount: dec("50"), PaymentMode: PaymentModeUPI, ReferenceNumber: "TXN-42"},
	}

	entries := mergeLedgerEntries(bills, payments)
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}

	// Newest first; for the shared date the bill keeps its place before the payment.
	wantOrder := []struct {
		typ string
		id  int
	}{
		{"bill", 2},
		{"payment", 6},
		{"payment", 5},
		{"bill", 1},
	}
	for i, want := range wantOrder {
		if entries[i].Type != want.typ || entries[i].Id != want.id {
			t.Errorf("entry %d = %s/%d; want %s/%d", i, entries[i].Type, entries[i].Id, want.typ, want.id)
		}
	}

	// Bill rows debit and snapshot the closing balance.
	billRow := entries[3]
	if !billRow.Debit.Equal(dec("236")) || !billRow.Credit.IsZero() {
		t.Errorf("bill row debit/credit = %s/%s; want 236/0", billRow.Debit, billRow.Credit)
	}
	if billRow.Balance == nil || !billRow.Balance.Equal(dec("236")) {
		t.Errorf("bill row balance = %v; want 236", billRow.Balance)
	}
	if billRow.BillNumber != "1" {
		t.Errorf("bill row number = %q; want %q", billRow.BillNumber, "1")
	}

	// Payment rows credit and carry no balance snapshot.
	paymentRow := entries[1]
	if !paymentRow.Credit.Equal(dec("50")) || !paymentRow.Debit.IsZero() {
		t.Errorf("payment row credit/debit = %s/%s; want 50/0", paymentRow.Credit, paymentRow.Debit)
	}
	if paymentRow.Balance != nil {
		t.Errorf("payment row balance = %v; want nil", paymentRow.Balance)
	}
	if paymentRow.ReferenceNumber != "TXN-42" || paymentRow.PaymentMode != PaymentModeUPI {
		t.Errorf("payment row reference/mode = %q/%q", paymentRow.ReferenceNumber, paymentRow.PaymentMode)
	}
}

func TestMergeLedgerEntriesEmpty(t *testing.T) {
	entries := mergeLedgerEntries(nil, nil)
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}

func TestMergeLedgerEntriesBalanceSnapshotIsCopied(t *testing.T) {
	bill := &Bill{ID: 1, Date: time.Now(), Total: dec("10"), ClosingBalance: dec("10")}
	entries := mergeLedgerEntries([]*Bill{bill}, nil)

	// Mutating the source bill afterwards must not move the snapshot.
	bill.ClosingBalance = decimal.Zero
	if !entries[0].Balance.Equal(dec("10")) {
		t.Errorf("balance snapshot = %s; want 10", entries[0].Balance)
	}
}

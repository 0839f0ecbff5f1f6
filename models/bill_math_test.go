package models

import (
	"testing"

	"bitbucket.org/mmdatafocus/billbook_backend/utils"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeBillItems(t *testing.T) {
	items := []*NewBillItem{
		{ProductName: "Cotton Fabric", Quantity: dec("2"), Rate: dec("100"), GstRate: dec("18"), Unit: ProductUnitMtr},
		{ProductName: "Buttons", Quantity: dec("10"), Rate: dec("5")},
	}

	processed, subtotal, gstTotal, total, err := computeBillItems(7, items)
	if err != nil {
		t.Fatalf("computeBillItems: %v", err)
	}
	if len(processed) != 2 {
		t.Fatalf("expected 2 items, got %d", len(processed))
	}

	first := processed[0]
	if !first.Amount.Equal(dec("200")) {
		t.Errorf("first item amount = %s; want 200", first.Amount)
	}
	if !first.GstAmount.Equal(dec("36")) {
		t.Errorf("first item gst amount = %s; want 36", first.GstAmount)
	}
	if first.SrNo != 1 || processed[1].SrNo != 2 {
		t.Errorf("serial numbers = %d,%d; want 1,2", first.SrNo, processed[1].SrNo)
	}
	if first.UserId != 7 {
		t.Errorf("first item user id = %d; want 7", first.UserId)
	}

	// The second item has no unit or gst rate: unit defaults to Pcs, gst stays zero.
	second := processed[1]
	if second.Unit != ProductUnitPcs {
		t.Errorf("second item unit = %s; want %s", second.Unit, ProductUnitPcs)
	}
	if !second.Amount.Equal(dec("50")) || !second.GstAmount.IsZero() {
		t.Errorf("second item amount/gst = %s/%s; want 50/0", second.Amount, second.GstAmount)
	}

	if !subtotal.Equal(dec("250")) {
		t.Errorf("subtotal = %s; want 250", subtotal)
	}
	if !gstTotal.Equal(dec("36")) {
		t.Errorf("gst total = %s; want 36", gstTotal)
	}
	if !total.Equal(dec("286")) {
		t.Errorf("total = %s; want 286", total)
	}
}

func TestComputeBillItemsFractionalQuantity(t *testing.T) {
	items := []*NewBillItem{
		{ProductName: "Silk", Quantity: dec("1.5"), Rate: dec("99.99"), GstRate: dec("5")},
	}

	_, subtotal, gstTotal, total, err := computeBillItems(1, items)
	if err != nil {
		t.Fatalf("computeBillItems: %v", err)
	}
	if !subtotal.Equal(dec("149.985")) {
		t.Errorf("subtotal = %s; want 149.985", subtotal)
	}
	if !gstTotal.Equal(dec("7.49925")) {
		t.Errorf("gst total = %s; want 7.49925", gstTotal)
	}
	if !total.Equal(dec("157.48425")) {
		t.Errorf("total = %s; want 157.48425", total)
	}
}

func TestComputeBillItemsValidation(t *testing.T) {
	cases := []struct {
		name  string
		items []*NewBillItem
	}{
		{"empty items", nil},
		{"missing product name", []*NewBillItem{{Quantity: dec("1"), Rate: dec("10")}}},
		{"negative quantity", []*NewBillItem{{ProductName: "x", Quantity: dec("-1"), Rate: dec("10")}}},
		{"negative rate", []*NewBillItem{{ProductName: "x", Quantity: dec("1"), Rate: dec("-10")}}},
		{"gst rate above 100", []*NewBillItem{{ProductName: "x", Quantity: dec("1"), Rate: dec("10"), GstRate: dec("101")}}},
		{"negative gst rate", []*NewBillItem{{ProductName: "x", Quantity: dec("1"), Rate: dec("10"), GstRate: dec("-1")}}},
		{"unknown unit", []*NewBillItem{{ProductName: "x", Quantity: dec("1"), Rate: dec("10"), Unit: "Dozen"}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, _, _, err := computeBillItems(1, tc.items)
			if !utils.IsInvalidInput(err) {
				t.Errorf("expected invalid input error, got %v", err)
			}
		})
	}
}

package models

type BillType string

const (
	BillTypeChallan   BillType = "CHALLAN"
	BillTypeInvoice   BillType = "INVOICE"
	BillTypeQuotation BillType = "QUOTATION"
)

func (e BillType) IsValid() bool {
	switch e {
	case BillTypeChallan, BillTypeInvoice, BillTypeQuotation:
		return true
	}
	return false
}

type PaymentMode string

const (
	PaymentModeCash   PaymentMode = "Cash"
	PaymentModeCheque PaymentMode = "Cheque"
	PaymentModeOnline PaymentMode = "Online"
	PaymentModeCard   PaymentMode = "Card"
	PaymentModeUPI    PaymentMode = "UPI"
)

func (e PaymentMode) IsValid() bool {
	switch e {
	case PaymentModeCash, PaymentModeCheque, PaymentModeOnline, PaymentModeCard, PaymentModeUPI:
		return true
	}
	return false
}

type ProductUnit string

const (
	ProductUnitPcs ProductUnit = "Pcs"
	ProductUnitMtr ProductUnit = "Mtr"
	ProductUnitKg  ProductUnit = "Kg"
	ProductUnitBox ProductUnit = "Box"
	ProductUnitSet ProductUnit = "Set"
	ProductUnitLtr ProductUnit = "Ltr"
)

func (e ProductUnit) IsValid() bool {
	switch e {
	case ProductUnitPcs, ProductUnitMtr, ProductUnitKg, ProductUnitBox, ProductUnitSet, ProductUnitLtr:
		return true
	}
	return false
}

// PaymentStatus is stored on bills but no operation transitions it yet.
// Kept for forward compatibility with per-bill settlement tracking.
type PaymentStatus string

const (
	PaymentStatusUnpaid        PaymentStatus = "Unpaid"
	PaymentStatusPartiallyPaid PaymentStatus = "Partially Paid"
	PaymentStatusPaid          PaymentStatus = "Paid"
)

func (e PaymentStatus) IsValid() bool {
	switch e {
	case PaymentStatusUnpaid, PaymentStatusPartiallyPaid, PaymentStatusPaid:
		return true
	}
	return false
}

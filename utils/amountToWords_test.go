package utils_test

import (
	"testing"

	"bitbucket.org/mmdatafocus/billbook_backend/utils"
	"github.com/shopspring/decimal"
)

func TestAmountToWords(t *testing.T) {
	cases := []struct {
		amount string
		want   string
	}{
		{"0", "Zero Rupees Only"},
		{"1", "One Rupees Only"},
		{"21", "Twenty One Rupees Only"},
		{"100", "One Hundred Rupees Only"},
		{"236", "Two Hundred Thirty Six Rupees Only"},
		{"1234", "One Thousand, Two Hundred Thirty Four Rupees Only"},
		{"1000000", "One Million Rupees Only"},
		{"105.5", "One Hundred Five Rupees and Fifty Paise Only"},
		{"105.50", "One Hundred Five Rupees and Fifty Paise Only"},
		{"0.25", "Zero Rupees and Twenty Five Paise Only"},
		{"99.99", "Ninety Nine Rupees and Ninety Nine Paise Only"},
	}

	for _, tc := range cases {
		amount, err := decimal.NewFromString(tc.amount)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.amount, err)
		}
		got := utils.AmountToWords(amount)
		if got != tc.want {
			t.Errorf("AmountToWords(%s) = %q; want %q", tc.amount, got, tc.want)
		}
	}
}

// Paise are rounded half-up, so .995 resolves upward deterministically.
func TestAmountToWordsPaiseRounding(t *testing.T) {
	up, _ := decimal.NewFromString("10.995")
	if got := utils.AmountToWords(up); got != "Ten Rupees and One Hundred Paise Only" {
		t.Errorf("AmountToWords(10.995) = %q", got)
	}

	down, _ := decimal.NewFromString("10.994")
	if got := utils.AmountToWords(down); got != "Ten Rupees and Ninety Nine Paise Only" {
		t.Errorf("AmountToWords(10.994) = %q", got)
	}

	half, _ := decimal.NewFromString("10.505")
	if got := utils.AmountToWords(half); got != "Ten Rupees and Fifty One Paise Only" {
		t.Errorf("AmountToWords(10.505) = %q", got)
	}
}

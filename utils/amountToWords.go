package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

var lessThanTwenty = []string{
	"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
	"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen",
	"seventeen", "eighteen", "nineteen",
}

var tensLessThanHundred = []string{
	"zero", "ten", "twenty", "thirty", "forty", "fifty", "sixty", "seventy",
	"eighty", "ninety",
}

// numberToWords spells out a non-negative integer, e.g.
// 1234 -> "one thousand, two hundred thirty-four".
func numberToWords(n int64) string {
	var words []string
	words = generateWords(n, words)
	return strings.TrimSuffix(strings.Join(words, " "), ",")
}

func generateWords(n int64, words []string) []string {
	if n == 0 {
		if len(words) == 0 {
			return []string{"zero"}
		}
		return words
	}
	if n < 0 {
		words = append(words, "minus")
		n = -n
	}

	var remainder int64
	var word string
	switch {
	case n < 20:
		remainder = 0
		word = lessThanTwenty[n]
	case n < 100:
		remainder = n % 10
		word = tensLessThanHundred[n/10]
		if remainder > 0 {
			word += "-" + lessThanTwenty[remainder]
			remainder = 0
		}
	case n < 1_000:
		remainder = n % 100
		word = numberToWords(n/100) + " hundred"
	case n < 1_000_000:
		remainder = n % 1_000
		word = numberToWords(n/1_000) + " thousand,"
	case n < 1_000_000_000:
		remainder = n % 1_000_000
		word = numberToWords(n/1_000_000) + " million,"
	case n < 1_000_000_000_000:
		remainder = n % 1_000_000_000
		word = numberToWords(n/1_000_000_000) + " billion,"
	case n < 1_000_000_000_000_000:
		remainder = n % 1_000_000_000_000
		word = numberToWords(n/1_000_000_000_000) + " trillion,"
	default:
		remainder = n % 1_000_000_000_000_000
		word = numberToWords(n/1_000_000_000_000_000) + " quadrillion,"
	}
	words = append(words, word)
	return generateWords(remainder, words)
}

func titleCaseWords(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	parts := strings.Split(s, " ")
	for i, w := range parts {
		if w == "" {
			continue
		}
		parts[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(parts, " ")
}

// AmountToWords formats an invoice total for printing, e.g.
// 236 -> "Two Hundred Thirty Six Rupees Only"
// 105.50 -> "One Hundred Five Rupees and Fifty Paise Only".
// Paise are rounded half-up so .995 boundaries resolve deterministically.
func AmountToWords(amount decimal.Decimal) string {
	if amount.IsZero() {
		return "Zero Rupees Only"
	}

	rupees := amount.Floor()
	paise := amount.Sub(rupees).Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	words := titleCaseWords(numberToWords(rupees.IntPart())) + " Rupees"

	if paise > 0 {
		words += " and " + titleCaseWords(numberToWords(paise)) + " Paise"
	}

	return words + " Only"
}

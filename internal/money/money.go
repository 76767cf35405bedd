package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when a request does not name one.
const DefaultCurrency = "USD"

var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"BRL": "R$",
	"JPY": "¥",
}

// zero-decimal currencies
var noMinorUnit = map[string]bool{
	"JPY": true,
	"KRW": true,
}

// Places returns the number of minor-unit digits for a currency.
func Places(currency string) int32 {
	if noMinorUnit[normalize(currency)] {
		return 0
	}
	return 2
}

// ToMinor converts a major-unit decimal (as stored in NUMERIC columns) to minor units.
func ToMinor(d decimal.Decimal, currency string) int64 {
	return d.Shift(Places(currency)).Round(0).IntPart()
}

// ToMajor converts minor units back to a major-unit decimal.
func ToMajor(minor int64, currency string) decimal.Decimal {
	return decimal.New(minor, -Places(currency))
}

// Format renders minor units as a display string such as "-$1,234.56".
func Format(minor int64, currency string) string {
	code := normalize(currency)
	places := Places(code)

	sign := ""
	if minor < 0 {
		sign = "-"
	}

	s := ToMajor(minor, code).Abs().StringFixed(places)
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	b.WriteString(sign)
	if sym, ok := symbols[code]; ok {
		b.WriteString(sym)
	} else {
		b.WriteString(code)
		b.WriteByte(' ')
	}
	b.WriteString(group(whole))
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

func group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func normalize(currency string) string {
	c := strings.ToUpper(strings.TrimSpace(currency))
	if c == "" {
		return DefaultCurrency
	}
	return c
}

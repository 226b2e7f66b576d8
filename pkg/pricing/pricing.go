// Package pricing is the single place display prices become amounts.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Places is the precision every total is rounded to.
const Places = 2

// Line is anything that contributes price × quantity to a total.
type Line interface {
	DisplayPrice() string
	Units() int
}

// ParsePrice converts a display price such as "₹1,200.00" into an amount.
// Every character other than a digit or '.' is dropped, and only the first
// '.'-delimited fraction is kept, so "12.50.99" is 12.50. Anything that still
// does not parse is zero.
func ParsePrice(display string) decimal.Decimal {
	var b strings.Builder
	for _, r := range display {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}

	parts := strings.SplitN(b.String(), ".", 3)
	whole := parts[0]
	frac := ""
	if len(parts) > 1 {
		frac = parts[1]
	}
	if whole == "" && frac == "" {
		return decimal.Zero
	}
	if whole == "" {
		whole = "0"
	}

	text := whole
	if frac != "" {
		text += "." + frac
	}
	amount, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero
	}
	return amount
}

// LineTotal is the parsed price multiplied by quantity. Non-positive
// quantities contribute nothing.
func LineTotal(display string, quantity int) decimal.Decimal {
	if quantity <= 0 {
		return decimal.Zero
	}
	return ParsePrice(display).Mul(decimal.NewFromInt(int64(quantity)))
}

// Total sums every line and rounds to two places.
func Total[L Line](lines []L) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(LineTotal(line.DisplayPrice(), line.Units()))
	}
	return sum.Round(Places)
}

// Format renders an amount with exactly two decimals.
func Format(amount decimal.Decimal) string {
	return amount.StringFixed(Places)
}

// Package money handles fixed-point monetary amounts. Amounts are carried
// as int64 paise (minor units) everywhere inside the engine; strings with
// up to two decimals exist only at the API edge.
package money

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse converts a decimal string with up to 2 fractional digits into paise.
// The amount must be strictly positive.
func Parse(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("amount required")
	}
	neg := false
	if s[0] == '+' {
		s = s[1:]
	}
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, fmt.Errorf("invalid amount")
	}
	intPart := parts[0]
	frac := "00"
	if len(parts) == 2 {
		if len(parts[1]) > 2 {
			return 0, fmt.Errorf("amount supports up to 2 decimals")
		}
		frac = parts[1] + strings.Repeat("0", 2-len(parts[1]))
	}
	ip, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount integer")
	}
	fp, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount fractional")
	}
	total := ip*100 + fp
	if neg {
		total = -total
	}
	if total <= 0 {
		return 0, fmt.Errorf("amount must be > 0")
	}
	return total, nil
}

// Format renders paise as a decimal string with exactly 2 fractional digits.
func Format(paise int64) string {
	sign := ""
	if paise < 0 {
		sign = "-"
		paise = -paise
	}
	return fmt.Sprintf("%s%d.%02d", sign, paise/100, paise%100)
}

// Winnings applies a payout multiplier expressed in integer percent
// (193 means 1.93x) to a bet amount, truncating sub-paise remainders.
func Winnings(amount, multiplierPct int64) int64 {
	return amount * multiplierPct / 100
}

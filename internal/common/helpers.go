package common

import (
	"fmt"
	"math"
	"math/bits"
	"strconv"
	"strings"
)

const (
	WARTDecimals = 8 // WART has 8 decimals (E8 units)
	USDDecimals  = 2
)

// E8ToWART converts E8 units to a WART string without float precision loss
func E8ToWART(e8 uint64) string {
	return formatWithDecimals(e8, WARTDecimals)
}

// WARTToE8 converts a WART string to E8 units without float precision loss
func WARTToE8(wart string) (uint64, error) {
	return parseWithDecimals(wart, WARTDecimals)
}

// FormatUSD renders a price or value with cents precision.
func FormatUSD(v float64) string {
	return strconv.FormatFloat(v, 'f', USDDecimals, 64)
}

// formatWithDecimals converts integer to decimal string by inserting decimal point
// Example: formatWithDecimals(24981836, 8) = "0.24981836"
func formatWithDecimals(value uint64, decimals int) string {
	s := strconv.FormatUint(value, 10)

	// Pad with leading zeros if needed
	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}

	// Insert decimal point
	pos := len(s) - decimals
	return s[:pos] + "." + s[pos:]
}

// parseWithDecimals converts decimal string to integer by removing decimal point
// Example: parseWithDecimals("0.24981836", 8) = 24981836
func parseWithDecimals(s string, decimals int) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty string")
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, fmt.Errorf("invalid decimal format")
	}

	whole := parts[0]
	frac := ""
	if len(parts) == 2 {
		frac = parts[1]
	}
	if whole == "" && frac == "" {
		return 0, fmt.Errorf("invalid decimal format")
	}
	if whole == "" {
		whole = "0"
	}

	// Sub-unit precision is not representable
	if len(frac) > decimals {
		if strings.Trim(frac[decimals:], "0") != "" {
			return 0, fmt.Errorf("too many decimal places (max %d)", decimals)
		}
		frac = frac[:decimals]
	}
	frac += strings.Repeat("0", decimals-len(frac))

	w, err := parseDigits(whole)
	if err != nil {
		return 0, err
	}
	f, err := parseDigits(frac)
	if err != nil {
		return 0, err
	}

	// w * 10^decimals + f, checked for overflow
	hi, lo := bits.Mul64(w, pow10(decimals))
	if hi != 0 {
		return 0, fmt.Errorf("amount too large")
	}
	sum, carry := bits.Add64(lo, f, 0)
	if carry != 0 {
		return 0, fmt.Errorf("amount too large")
	}

	return sum, nil
}

// parseDigits accepts plain decimal digits only (no sign, no exponent)
func parseDigits(s string) (uint64, error) {
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("invalid digit %q", c)
		}
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %w", err)
	}
	return n, nil
}

func pow10(n int) uint64 {
	p := uint64(1)
	for range n {
		p *= 10
	}
	return p
}

// E8ToFloat is for display only (e.g. fiat value); never use it for amounts that get signed.
func E8ToFloat(e8 uint64) float64 {
	return float64(e8) / math.Pow10(WARTDecimals)
}

// CompareWARTAmounts compares two WART amounts without float precision loss.
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
func CompareWARTAmounts(a, b string) (int, error) {
	aVal, err := parseWithDecimals(a, WARTDecimals)
	if err != nil {
		return 0, fmt.Errorf("failed to parse amount '%s': %w", a, err)
	}

	bVal, err := parseWithDecimals(b, WARTDecimals)
	if err != nil {
		return 0, fmt.Errorf("failed to parse amount '%s': %w", b, err)
	}

	if aVal < bVal {
		return -1, nil
	}
	if aVal > bVal {
		return 1, nil
	}
	return 0, nil
}

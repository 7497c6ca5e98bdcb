// Package ledger holds the pure rules of the sales ledger: parsing of raw form
// values, installment scheduling and receivable/payable status derivation.
// Nothing in here touches the database.
package ledger

import (
	"strconv"
	"strings"
	"time"

	"salesledger/pkg/apperror"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

// AmountPlaces is the number of decimal places a stored amount keeps
const AmountPlaces = 2

// MaxAmount is the largest magnitude a decimal(12,2) column holds
var MaxAmount = decimal.RequireFromString("9999999999.99")

// CheckAmountRange reports a ValidationError when amount does not fit a stored
// money column
func CheckAmountRange(field string, amount decimal.Decimal) error {
	if amount.Abs().GreaterThan(MaxAmount) {
		return apperror.Validation(field, "is too large")
	}
	return nil
}

// ParseAmount parses a monetary string typed by a user. "1234.56", "1234,56",
// "1.234,56" and "1,234.56" are all accepted; when both separators appear the
// rightmost one is the decimal mark and the other is dropped. More than two
// decimal places is rejected rather than rounded.
func ParseAmount(field, raw string) (decimal.Decimal, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	if s == "" {
		return decimal.Zero, apperror.Validation(field, "is required")
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, apperror.Validation(field, "must be a valid number")
	}
	if amount.Exponent() < -AmountPlaces && !amount.Equal(amount.Round(AmountPlaces)) {
		return decimal.Zero, apperror.Validation(field, "must have at most 2 decimal places")
	}
	if err := CheckAmountRange(field, amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// ParsePositiveAmount parses an amount that must be strictly greater than zero
func ParsePositiveAmount(field, raw string) (decimal.Decimal, error) {
	amount, err := ParseAmount(field, raw)
	if err != nil {
		return decimal.Zero, err
	}
	if !amount.IsPositive() {
		return decimal.Zero, apperror.Validation(field, "must be greater than zero")
	}
	return amount, nil
}

// ParseNonNegativeAmount parses an amount that may be zero but not negative
func ParseNonNegativeAmount(field, raw string) (decimal.Decimal, error) {
	amount, err := ParseAmount(field, raw)
	if err != nil {
		return decimal.Zero, err
	}
	if amount.IsNegative() {
		return decimal.Zero, apperror.Validation(field, "cannot be negative")
	}
	return amount, nil
}

// ParseQuantity parses a strictly positive integer quantity
func ParseQuantity(field, raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, apperror.Validation(field, "is required")
	}
	qty, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperror.Validation(field, "must be a whole number")
	}
	if qty <= 0 {
		return 0, apperror.Validation(field, "must be greater than zero")
	}
	return qty, nil
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight date
func ParseDate(field, raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, apperror.Validation(field, "is required")
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, apperror.Validation(field, "must be a date in YYYY-MM-DD format")
	}
	return t, nil
}

// ParseOptionalDate is ParseDate for filters: empty input yields nil
func ParseOptionalDate(field, raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := ParseDate(field, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// DateOf drops the clock part of t, keeping its calendar day in t's location
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a stored date (UTC midnight) in DateLayout
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

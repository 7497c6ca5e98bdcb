package ledger

import (
	"fmt"
	"time"

	"salesledger/pkg/apperror"

	"github.com/shopspring/decimal"
)

// InstallmentDates returns count due dates, one per calendar month starting at
// anchor. Each date keeps the anchor's day of month; when the target month is
// shorter it falls on that month's last day instead.
func InstallmentDates(anchor time.Time, count int) ([]time.Time, error) {
	if count < 1 {
		return nil, apperror.Validation("installments", "must be at least 1")
	}

	anchor = DateOf(anchor)
	dates := make([]time.Time, 0, count)
	for i := 0; i < count; i++ {
		dates = append(dates, addMonthsClamped(anchor, i))
	}
	return dates, nil
}

func addMonthsClamped(anchor time.Time, months int) time.Time {
	offset := int(anchor.Month()) - 1 + months
	year := anchor.Year() + offset/12
	month := time.Month(offset%12 + 1)

	day := anchor.Day()
	if last := daysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// daysIn uses day 0 of the following month, which time.Date normalizes to the
// last day of month.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// InstallmentAmount splits total evenly over count installments, rounded to
// cents. The remainder is not redistributed, so the installments may sum to a
// cent or two more or less than total.
func InstallmentAmount(total decimal.Decimal, count int) decimal.Decimal {
	if count < 1 {
		count = 1
	}
	return total.DivRound(decimal.NewFromInt(int64(count)), 2)
}

// InstallmentNote labels installment i (0-indexed) of count. Single payments
// carry no label.
func InstallmentNote(i, count int) string {
	if count <= 1 {
		return ""
	}
	return fmt.Sprintf("Installment %d of %d", i+1, count)
}

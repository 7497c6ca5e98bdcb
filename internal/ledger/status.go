package ledger

import (
	"time"

	"salesledger/internal/model"
)

// Account is the part of a receivable or payable the status rules operate on
type Account interface {
	GetStatus() model.AccountStatus
	GetDueDate() time.Time
	SetStatus(status model.AccountStatus)
	SetPaidAt(paidAt *time.Time)
}

// DeriveStatus classifies an account relative to today. PAID is sticky; an
// open account is OVERDUE only once its due date is strictly before today.
func DeriveStatus(current model.AccountStatus, due, today time.Time) model.AccountStatus {
	if current == model.StatusPaid {
		return model.StatusPaid
	}
	if DateOf(due).Before(DateOf(today)) {
		return model.StatusOverdue
	}
	return model.StatusPending
}

// Refresh applies DeriveStatus to acc and reports whether the status changed
func Refresh(acc Account, today time.Time) bool {
	next := DeriveStatus(acc.GetStatus(), acc.GetDueDate(), today)
	if next == acc.GetStatus() {
		return false
	}
	acc.SetStatus(next)
	return true
}

// MarkPaid records an explicit payment
func MarkPaid(acc Account, paidDate time.Time) {
	paid := DateOf(paidDate)
	acc.SetStatus(model.StatusPaid)
	acc.SetPaidAt(&paid)
}

// MarkUnpaid clears a payment and puts the account back to PENDING, even when
// its due date has already passed. The next Refresh moves it to OVERDUE.
func MarkUnpaid(acc Account) {
	acc.SetPaidAt(nil)
	acc.SetStatus(model.StatusPending)
}

package ledger

import (
	"testing"
	"time"

	"salesledger/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveStatus(t *testing.T) {
	today := date(2024, time.June, 10)

	tests := []struct {
		name    string
		current model.AccountStatus
		due     time.Time
		want    model.AccountStatus
	}{
		{"due today stays pending", model.StatusPending, today, model.StatusPending},
		{"due yesterday is overdue", model.StatusPending, today.AddDate(0, 0, -1), model.StatusOverdue},
		{"due tomorrow is pending", model.StatusPending, today.AddDate(0, 0, 1), model.StatusPending},
		{"overdue moved into the future becomes pending", model.StatusOverdue, today.AddDate(0, 1, 0), model.StatusPending},
		{"paid in the past stays paid", model.StatusPaid, today.AddDate(-1, 0, 0), model.StatusPaid},
		{"paid in the future stays paid", model.StatusPaid, today.AddDate(1, 0, 0), model.StatusPaid},
		{"clock time does not matter", model.StatusPending, time.Date(2024, time.June, 10, 23, 59, 0, 0, time.UTC), model.StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.current, tt.due, today))
		})
	}
}

func TestDeriveStatus_Idempotent(t *testing.T) {
	today := date(2024, time.June, 10)
	for _, due := range []time.Time{today.AddDate(0, 0, -3), today, today.AddDate(0, 0, 3)} {
		for _, s := range []model.AccountStatus{model.StatusPending, model.StatusOverdue, model.StatusPaid} {
			once := DeriveStatus(s, due, today)
			assert.Equal(t, once, DeriveStatus(once, due, today))
		}
	}
}

func TestRefresh(t *testing.T) {
	today := date(2024, time.June, 10)
	acc := &model.ReceivableAccount{Status: model.StatusPending, DueDate: today.AddDate(0, 0, -1)}

	assert.True(t, Refresh(acc, today))
	assert.Equal(t, model.StatusOverdue, acc.Status)
	assert.False(t, Refresh(acc, today))
}

func TestMarkPaidAndUnpaid(t *testing.T) {
	today := date(2024, time.June, 10)
	acc := &model.PayableAccount{Status: model.StatusOverdue, DueDate: today.AddDate(0, 0, -5)}

	MarkPaid(acc, time.Date(2024, time.June, 9, 14, 0, 0, 0, time.UTC))
	assert.Equal(t, model.StatusPaid, acc.Status)
	require.NotNil(t, acc.PaidAt)
	assert.Equal(t, date(2024, time.June, 9), *acc.PaidAt)
	assert.False(t, Refresh(acc, today))

	MarkUnpaid(acc)
	assert.Equal(t, model.StatusPending, acc.Status)
	assert.Nil(t, acc.PaidAt)

	assert.True(t, Refresh(acc, today))
	assert.Equal(t, model.StatusOverdue, acc.Status)
}

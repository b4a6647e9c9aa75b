package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvoiceStatusGuards(t *testing.T) {
	cases := []struct {
		status      string
		terminal    bool
		canSend     bool
		canPay      bool
		canCancel   bool
		canUpdate   bool
		canDelete   bool
	}{
		{InvoiceStatusDraft, false, true, false, true, true, true},
		{InvoiceStatusSent, false, false, true, true, true, false},
		{InvoiceStatusOverdue, false, false, true, true, false, false},
		{InvoiceStatusPaid, true, false, false, false, false, false},
		{InvoiceStatusCancelled, true, false, false, false, false, true},
	}

	for _, tc := range cases {
		t.Run(tc.status, func(t *testing.T) {
			inv := Invoice{Status: tc.status}
			assert.Equal(t, tc.terminal, inv.IsTerminal())
			assert.Equal(t, tc.canSend, inv.CanMarkSent())
			assert.Equal(t, tc.canPay, inv.CanMarkPaid())
			assert.Equal(t, tc.canCancel, inv.CanCancel())
			assert.Equal(t, tc.canUpdate, inv.CanUpdateItems())
			assert.Equal(t, tc.canDelete, inv.CanDelete())
		})
	}
}

func TestPaymentTerminal(t *testing.T) {
	assert.False(t, (&Payment{Status: PaymentStatusPending}).IsTerminal())
	assert.True(t, (&Payment{Status: PaymentStatusSucceeded}).IsTerminal())
	assert.True(t, (&Payment{Status: PaymentStatusFailed}).IsTerminal())
}

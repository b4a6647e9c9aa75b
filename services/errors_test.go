package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvalidStateErrorMessage(t *testing.T) {
	plain := &InvalidStateError{Current: "paid", Attempted: "cancel"}
	assert.Equal(t, `cannot cancel an invoice in status "paid"`, plain.Error())

	withReason := &InvalidStateError{
		Current:   "sent",
		Attempted: "update items on",
		Reason:    "a payment attempt already exists for this invoice",
	}
	assert.Equal(t,
		`cannot update items on an invoice in status "sent": a payment attempt already exists for this invoice`,
		withReason.Error())
}

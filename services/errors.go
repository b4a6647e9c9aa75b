package services

import (
	"fmt"
	"tradestack-backend/money"

	"github.com/google/uuid"
)

// ValidationError reports malformed input. Recoverable by the caller.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InvalidStateError reports an operation attempted from a status that
// forbids it. Reason, when set, names a blocker beyond the status
// itself, e.g. an existing payment attempt.
type InvalidStateError struct {
	Current   string
	Attempted string
	Reason    string
}

func (e *InvalidStateError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot %s an invoice in status %q: %s", e.Attempted, e.Current, e.Reason)
	}
	return fmt.Sprintf("cannot %s an invoice in status %q", e.Attempted, e.Current)
}

// InvalidOperationError reports an operation that is forbidden for a
// reason other than the invoice's status, e.g. deleting a record of a
// completed transaction.
type InvalidOperationError struct {
	Reason string
}

func (e *InvalidOperationError) Error() string {
	return e.Reason
}

// AmountMismatchError reports a confirmed payment whose amount does
// not equal the invoice total. The payment record is preserved.
type AmountMismatchError struct {
	InvoiceID uuid.UUID
	Expected  money.Cents
	Got       money.Cents
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("payment amount %d does not match invoice %s total %d",
		e.Got, e.InvoiceID, e.Expected)
}

// PaymentAccountNotReadyError reports that the merchant cannot yet
// receive payments through the processor.
type PaymentAccountNotReadyError struct {
	Reason string
}

func (e *PaymentAccountNotReadyError) Error() string {
	return "payment account not ready: " + e.Reason
}

// ProcessorError wraps a transport or API failure from the payment
// processor, carrying its message for the user. Retriable by the
// caller; never retried here.
type ProcessorError struct {
	Op      string
	Message string
	Err     error
}

func (e *ProcessorError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("payment processor error during %s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("payment processor error during %s", e.Op)
}

func (e *ProcessorError) Unwrap() error { return e.Err }

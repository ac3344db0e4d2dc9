package domain

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// BookingState is the single source of truth for a booking's lifecycle.
// The stored status/payment_status pair is a projection of this enum;
// combinations with no state (confirmed+pending, confirmed+failed) are
// unrepresentable and rejected at load time.
type BookingState int

const (
	// StatePendingUnpaid is the state of a freshly created booking: a soft
	// claim exists, no inventory has been committed.
	StatePendingUnpaid BookingState = iota
	// StatePaymentFailed marks a declined or raced-away payment. The user
	// may retry; inventory remains uncommitted.
	StatePaymentFailed
	// StatePendingPaid is a pending booking whose payment completed without
	// the status advancing. No transition here produces it, but legacy rows
	// can hold it and cancelling one must still release inventory.
	StatePendingPaid
	// StateConfirmed is a paid booking with exactly one inventory decrement
	// outstanding. Terminal from the user's perspective.
	StateConfirmed
	// StateCancelled is terminal. Any committed inventory was released
	// before entering it.
	StateCancelled
)

// StateOf maps a stored status pair onto a BookingState, rejecting
// meaningless combinations with ErrCorruptState.
func StateOf(status Status, payment PaymentStatus) (BookingState, error) {
	switch status {
	case StatusCancelled:
		return StateCancelled, nil
	case StatusConfirmed:
		if payment != PaymentCompleted {
			return 0, ErrCorruptState
		}
		return StateConfirmed, nil
	case StatusPending:
		switch payment {
		case PaymentPending:
			return StatePendingUnpaid, nil
		case PaymentFailed:
			return StatePaymentFailed, nil
		case PaymentCompleted:
			return StatePendingPaid, nil
		}
	}
	return 0, ErrCorruptState
}

// Status projects the booking-status axis of the state.
func (s BookingState) Status() Status {
	switch s {
	case StateConfirmed:
		return StatusConfirmed
	case StateCancelled:
		return StatusCancelled
	default:
		return StatusPending
	}
}

// PaymentStatus projects the payment axis of the state. Cancellation is
// terminal, so the pre-cancel payment axis is not preserved.
func (s BookingState) PaymentStatus() PaymentStatus {
	switch s {
	case StateConfirmed, StatePendingPaid:
		return PaymentCompleted
	case StatePaymentFailed:
		return PaymentFailed
	default:
		return PaymentPending
	}
}

// Committed reports whether the booking holds a live inventory decrement
// that a cancel or expire must release.
func (s BookingState) Committed() bool {
	return s == StateConfirmed || s == StatePendingPaid
}

// Active reports whether the booking still blocks the user from creating
// another one.
func (s BookingState) Active() bool {
	return s.Status() != StatusCancelled
}

// CanPay reports whether a payment attempt is allowed. Declined payments
// may be resubmitted.
func (s BookingState) CanPay() bool {
	return s == StatePendingUnpaid || s == StatePaymentFailed
}

// CanCancel reports whether the user may cancel the booking. Confirmed
// bookings are deliberately not self-cancellable.
func (s BookingState) CanCancel() bool {
	return s.Status() == StatusPending
}

// CanTransition is the exhaustive transition table for the state machine.
func (s BookingState) CanTransition(to BookingState) bool {
	switch s {
	case StatePendingUnpaid:
		return to == StateConfirmed || to == StatePaymentFailed || to == StateCancelled
	case StatePaymentFailed:
		return to == StateConfirmed || to == StatePaymentFailed || to == StateCancelled
	case StatePendingPaid:
		return to == StateCancelled
	case StateConfirmed, StateCancelled:
		return false
	}
	return false
}

func (s BookingState) String() string {
	return string(s.Status()) + "/" + string(s.PaymentStatus())
}

package enums

// CheckoutState is the lifecycle of a single checkout submission.
type CheckoutState string

const (
	CheckoutStateIdle       CheckoutState = "idle"
	CheckoutStateSubmitting CheckoutState = "submitting"
	CheckoutStateSuccess    CheckoutState = "success"
	CheckoutStateFailed     CheckoutState = "failed"
)

func (s CheckoutState) String() string {
	return string(s)
}

// IsTerminal reports whether the state ends a submission attempt.
func (s CheckoutState) IsTerminal() bool {
	return s == CheckoutStateSuccess || s == CheckoutStateFailed
}

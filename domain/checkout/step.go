package checkout

// Step is one stage of the checkout flow, ordered 1-4. The flow advances
// forward only through validated transitions, may move back exactly one step,
// and is terminal at StepConfirmation.
type Step int

const (
	StepShipping Step = iota + 1
	StepPayment
	StepReview
	StepConfirmation
)

// String returns the lower-case step name used in API payloads and logs.
func (s Step) String() string {
	switch s {
	case StepShipping:
		return "shipping"
	case StepPayment:
		return "payment"
	case StepReview:
		return "review"
	case StepConfirmation:
		return "confirmation"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further transitions exist from this step.
func (s Step) IsTerminal() bool {
	return s == StepConfirmation
}

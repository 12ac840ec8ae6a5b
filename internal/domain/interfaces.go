package domain

// OrderFormService is the command/query boundary consumed by a presentation layer.
type OrderFormService interface {
	// Apply runs one command to completion and returns the resulting state.
	Apply(cmd Command) (CommandResult, error)
	Snapshot() OrderFormSnapshot
}

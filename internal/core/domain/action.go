package domain

// Action is a processor's claim on an input.
type Action int

const (
	// ActionSkip passes the input to the next processor.
	ActionSkip Action = iota

	// ActionProcessing claims the input and turns it into entries.
	ActionProcessing

	// ActionPartialProcessing rewrites the input into new inputs that
	// re-enter the chain from the top.
	ActionPartialProcessing
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionSkip:
		return "skip"
	case ActionProcessing:
		return "processing"
	case ActionPartialProcessing:
		return "partial_processing"
	default:
		return "unknown"
	}
}

// StatusLevel is the severity of an operator-facing status message.
type StatusLevel int

const (
	StatusInfo StatusLevel = iota
	StatusWarning
	StatusError
	StatusCritical
)

// String returns the level name.
func (l StatusLevel) String() string {
	switch l {
	case StatusInfo:
		return "info"
	case StatusWarning:
		return "warning"
	case StatusError:
		return "error"
	case StatusCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// StatusFunc receives status messages from processors and resolvers.
type StatusFunc func(level StatusLevel, msg string)

// NopStatus discards all status messages.
func NopStatus(StatusLevel, string) {}

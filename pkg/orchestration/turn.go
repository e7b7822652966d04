package orchestration

// TurnState represents where one user request is in its lifecycle.
type TurnState string

const (
	StateSubmitted            TurnState = "submitted"
	StateTranslating          TurnState = "translating"
	StateAwaitingConfirmation TurnState = "awaiting_confirmation"
	StateExecuting            TurnState = "executing"
	StateCompleted            TurnState = "completed"
	StateCancelled            TurnState = "cancelled"
	StateFailed               TurnState = "failed"
)

// IsTerminal reports whether no further transitions are permitted.
func (s TurnState) IsTerminal() bool {
	switch s {
	case StateCompleted, StateCancelled, StateFailed:
		return true
	}
	return false
}

// Turn is the logical unit of one request-response exchange. Messages are
// owned by the conversation log; the turn holds non-owning references.
type Turn struct {
	ID              string
	UserMessageID   string
	SystemMessageID string
	State           TurnState

	// Prompt is the natural language text the user submitted; Locale is the
	// language selector value passed through to the translator.
	Prompt string
	Locale string

	// Populated once the turn reaches AwaitingConfirmation.
	IntroText      string
	GeneratedQuery string
	ReportTitle    string
}

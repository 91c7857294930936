package session

// State describes how the in-memory session of the current request came to
// exist. It is never persisted.
type State uint8

const (
	// StateNew marks a session started during this request.
	StateNew State = iota + 1
	// StateResume marks a session loaded from the store by its token.
	StateResume
	// StateInvalid marks a token that was rejected by the validator.
	StateInvalid
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateResume:
		return "resume"
	case StateInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

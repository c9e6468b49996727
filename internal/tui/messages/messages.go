package messages

// RedrawMsg is delivered once per coalesced redraw request.
type RedrawMsg struct{}

// SessionEndedMsg reports that the viewer stopped. Err is nil after a
// normal quit.
type SessionEndedMsg struct {
	Err error
}

type ErrorMsg struct {
	Err error
}

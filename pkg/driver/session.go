package driver

// Session is the state of one frame loop. It is the single source of truth
// for the live token: every cancel reads Token from here, never a copy.
type Session struct {
	running bool
	token   Token
	pending bool
}

// Running reports whether the loop is active.
func (s *Session) Running() bool {
	return s.running
}

// Token returns the token of the scheduled next iteration, if any.
func (s *Session) Token() (Token, bool) {
	return s.token, s.pending
}

// record stores the token of a freshly scheduled iteration.
func (s *Session) record(t Token) {
	s.token = t
	s.pending = true
}

// take clears and returns the pending token.
func (s *Session) take() (Token, bool) {
	t, ok := s.token, s.pending
	s.token = 0
	s.pending = false
	return t, ok
}

package session

import "agentforce/pkg/auth"

// Phase is the connector's position in the session lifecycle.
type Phase string

const (
	PhaseClosed        Phase = "closed"
	PhaseAuthenticated Phase = "authenticated"
	PhaseOpen          Phase = "open"
)

// Session is one remote conversation bound to an agent.
type Session struct {
	ID          string
	AgentID     string
	ExternalKey string
	// NextSequence is the sequence number the next turn will carry. It starts
	// at 1 and only grows.
	NextSequence int64
}

// State is an immutable snapshot of the lifecycle. Transitions return a new
// State instead of mutating the old one.
type State struct {
	phase   Phase
	token   auth.Token
	session Session
}

// Closed is the terminal and initial state. It holds neither token nor session.
func Closed() State {
	return State{phase: PhaseClosed}
}

// Authenticated holds a token but no session.
func Authenticated(token auth.Token) State {
	return State{phase: PhaseAuthenticated, token: token}
}

func open(token auth.Token, session Session) State {
	return State{phase: PhaseOpen, token: token, session: session}
}

func (s State) Phase() Phase {
	if s.phase == "" {
		return PhaseClosed
	}
	return s.phase
}

// Token returns the bearer token held in the Authenticated and Open phases.
func (s State) Token() (auth.Token, bool) {
	if s.Phase() == PhaseClosed {
		return auth.Token{}, false
	}
	return s.token, true
}

// Session returns the active session, present only in the Open phase.
func (s State) Session() (Session, bool) {
	if s.Phase() != PhaseOpen {
		return Session{}, false
	}
	return s.session, true
}

func (s State) advance() State {
	s.session.NextSequence++
	return s
}

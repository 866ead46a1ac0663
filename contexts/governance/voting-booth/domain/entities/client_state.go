package entities

type Phase string

const (
	PhaseUninitialized Phase = "uninitialized"
	PhaseWaiting       Phase = "waiting"
	PhaseVoting        Phase = "voting"
	PhaseSubmitted     Phase = "submitted"
)

// ClientState is the whole view-model of one booth. Transitions build a new
// value instead of editing fields in place, so a reader never observes a
// session from one poll paired with a ballot from another.
type ClientState struct {
	Phase    Phase
	Voter    Voter
	Session  *ElectionSession
	HasVoted bool
	Ballot   *Ballot
}

func UninitializedState() ClientState {
	return ClientState{Phase: PhaseUninitialized}
}

// EnteredState picks the first phase after the voter and session are resolved.
func EnteredState(voter Voter, session *ElectionSession, hasVoted bool) ClientState {
	if session == nil || hasVoted {
		return ClientState{Phase: PhaseWaiting, Voter: voter, Session: session, HasVoted: hasVoted}
	}
	return votingState(voter, *session)
}

// WithSubmitted records a successful submission. The ballot is dropped.
func (s ClientState) WithSubmitted() ClientState {
	return ClientState{Phase: PhaseSubmitted, Voter: s.Voter, Session: s.Session, HasVoted: true}
}

// WithSessionChange applies a confirmed change of active session identity.
// HasVoted resets and any ballot is discarded. A new ongoing session opens a
// fresh ballot; no ongoing session parks the client in Waiting.
func (s ClientState) WithSessionChange(session *ElectionSession) ClientState {
	if session == nil {
		return ClientState{Phase: PhaseWaiting, Voter: s.Voter}
	}
	return votingState(s.Voter, *session)
}

// WithParticipation applies a has-voted answer for the held session. A voter
// who already voted waits with no ballot, as on entry.
func (s ClientState) WithParticipation(hasVoted bool) ClientState {
	if !hasVoted {
		return s
	}
	return ClientState{Phase: PhaseWaiting, Voter: s.Voter, Session: s.Session, HasVoted: true}
}

// SessionChanged reports whether the observed session differs in identity
// from the one currently held.
func (s ClientState) SessionChanged(observed *ElectionSession) bool {
	switch {
	case s.Session == nil && observed == nil:
		return false
	case s.Session == nil || observed == nil:
		return true
	default:
		return !s.Session.SameIdentity(*observed)
	}
}

// Snapshot returns a copy whose ballot can be read without racing writers.
func (s ClientState) Snapshot() ClientState {
	out := s
	if s.Session != nil {
		session := *s.Session
		out.Session = &session
	}
	out.Ballot = s.Ballot.Clone()
	return out
}

func votingState(voter Voter, session ElectionSession) ClientState {
	return ClientState{
		Phase:   PhaseVoting,
		Voter:   voter,
		Session: &session,
		Ballot:  NewBallot(session),
	}
}

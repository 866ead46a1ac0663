package booth

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	application "agora/contexts/governance/voting-booth/application"
	"agora/contexts/governance/voting-booth/application/commands"
	"agora/contexts/governance/voting-booth/domain/entities"
	domainerrors "agora/contexts/governance/voting-booth/domain/errors"
	"agora/contexts/governance/voting-booth/ports"
)

type Config struct {
	ElectionID  string
	Identity    string
	Gateway     ports.VotingGateway
	Coordinator commands.SubmissionCoordinator
	Notifier    ports.Notifier
	Clock       ports.Clock
	Metrics     ports.Metrics
	Logger      *slog.Logger
}

// Booth is one voter's client for one election. All state lives in a single
// ClientState value that is swapped under mu. Session changes observed while
// a submission is in flight are parked and applied once it settles.
type Booth struct {
	electionID  string
	identity    string
	gateway     ports.VotingGateway
	coordinator commands.SubmissionCoordinator
	notifier    ports.Notifier
	clock       ports.Clock
	metrics     ports.Metrics
	logger      *slog.Logger

	mu         sync.Mutex
	state      entities.ClientState
	submitting bool
	pending    *observation
}

type observation struct {
	session *entities.ElectionSession
}

func New(cfg Config) *Booth {
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	coordinator := cfg.Coordinator
	if coordinator.Gateway == nil {
		coordinator.Gateway = cfg.Gateway
	}
	return &Booth{
		electionID:  strings.TrimSpace(cfg.ElectionID),
		identity:    strings.TrimSpace(cfg.Identity),
		gateway:     cfg.Gateway,
		coordinator: coordinator,
		notifier:    cfg.Notifier,
		clock:       cfg.Clock,
		metrics:     metrics,
		logger:      application.ResolveLogger(cfg.Logger),
		state:       entities.UninitializedState(),
	}
}

func (b *Booth) ElectionID() string {
	return b.electionID
}

// State returns a snapshot that is safe to read while the booth keeps running.
func (b *Booth) State() entities.ClientState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.Snapshot()
}

func (b *Booth) Phase() entities.Phase {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.Phase
}

// Enter resolves voter, active session and prior participation, then moves
// to Voting or Waiting. On failure the booth stays Uninitialized.
func (b *Booth) Enter(ctx context.Context) error {
	voter, err := b.gateway.ResolveVoter(ctx, b.electionID, b.identity)
	if err != nil {
		b.logFailure("booth entry voter resolution failed", "booth_enter_voter_failed", err)
		return err
	}
	session, found, err := b.gateway.FindActiveSession(ctx, b.electionID)
	if err != nil {
		b.logFailure("booth entry session lookup failed", "booth_enter_session_failed", err)
		return err
	}

	var held *entities.ElectionSession
	hasVoted := false
	if found {
		held = &session
		hasVoted, err = b.gateway.HasVoted(ctx, b.electionID, b.identity)
		if err != nil {
			b.logFailure("booth entry has-voted lookup failed", "booth_enter_has_voted_failed", err)
			return err
		}
	}

	b.mu.Lock()
	b.state = entities.EnteredState(voter, held, hasVoted)
	snapshot := b.state.Snapshot()
	b.mu.Unlock()

	b.logger.Info("booth entered",
		"event", "booth_entered",
		"module", application.LogModule,
		"layer", "application",
		"election_id", b.electionID,
		"voter_id", voter.VoterID,
		"phase", string(snapshot.Phase),
		"has_voted", hasVoted,
	)
	b.notify(ctx, ports.NotificationEntered, snapshot, nil)
	return nil
}

func (b *Booth) SelectSingle(itemID string, optionID string) error {
	return b.mutateBallot(func(ballot *entities.Ballot) error {
		return ballot.SelectSingle(strings.TrimSpace(itemID), strings.TrimSpace(optionID))
	})
}

func (b *Booth) ToggleMulti(itemID string, optionID string) error {
	return b.mutateBallot(func(ballot *entities.Ballot) error {
		return ballot.ToggleMulti(strings.TrimSpace(itemID), strings.TrimSpace(optionID))
	})
}

func (b *Booth) mutateBallot(apply func(*entities.Ballot) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state.Phase != entities.PhaseVoting || b.state.Ballot == nil {
		return domainerrors.ErrNotVoting
	}
	if b.submitting {
		return domainerrors.ErrSubmissionInFlight
	}
	return apply(b.state.Ballot)
}

// Submit sends the held ballot through the coordinator. Once started the
// submission runs to completion or failure: neither ctx cancellation nor a
// session change interrupts it. Session changes wait until it has settled.
func (b *Booth) Submit(ctx context.Context) (commands.SubmitResult, error) {
	b.mu.Lock()
	if b.state.Phase != entities.PhaseVoting || b.state.Ballot == nil || b.state.Session == nil {
		b.mu.Unlock()
		return commands.SubmitResult{}, domainerrors.ErrNotVoting
	}
	if b.submitting {
		b.mu.Unlock()
		return commands.SubmitResult{}, domainerrors.ErrSubmissionInFlight
	}
	b.submitting = true
	cmd := commands.SubmitBallotCommand{
		ElectionID: b.electionID,
		Identity:   b.identity,
		Session:    *b.state.Session,
		Ballot:     b.state.Ballot.Clone(),
	}
	b.mu.Unlock()

	result, err := b.coordinator.Submit(context.WithoutCancel(ctx), cmd)

	b.mu.Lock()
	b.submitting = false
	if err == nil {
		b.state = b.state.WithSubmitted()
	}
	submitted := b.state.Snapshot()
	changed, applied := b.applyPendingLocked()
	b.mu.Unlock()

	if err != nil {
		b.notify(ctx, ports.NotificationSubmissionFailed, submitted, err)
	} else {
		b.notify(ctx, ports.NotificationSubmitted, submitted, nil)
	}
	if applied {
		changed = b.refreshParticipation(ctx, changed)
		b.notify(ctx, ports.NotificationSessionChanged, changed, nil)
	}
	return result, err
}

// Observe applies the outcome of a successful active-session lookup.
// observed is nil when no session is ongoing.
func (b *Booth) Observe(ctx context.Context, observed *entities.ElectionSession) {
	b.mu.Lock()
	if b.state.Phase == entities.PhaseUninitialized {
		b.mu.Unlock()
		return
	}
	if !b.state.SessionChanged(observed) {
		b.mu.Unlock()
		b.metrics.SessionPolled("unchanged")
		return
	}
	if b.submitting {
		b.pending = &observation{session: copySession(observed)}
		snapshot := b.state.Snapshot()
		b.mu.Unlock()
		b.metrics.SessionPolled("deferred")
		b.logger.Info("session change deferred until submission settles",
			"event", "booth_session_change_deferred",
			"module", application.LogModule,
			"layer", "application",
			"election_id", b.electionID,
			"observed_session_id", sessionID(observed),
		)
		b.notify(ctx, ports.NotificationSessionDeferred, snapshot, nil)
		return
	}
	snapshot := b.switchSessionLocked(observed)
	b.mu.Unlock()

	b.metrics.SessionPolled("changed")
	snapshot = b.refreshParticipation(ctx, snapshot)
	b.notify(ctx, ports.NotificationSessionChanged, snapshot, nil)
}

// ObserveFailure surfaces a failed lookup without touching state.
func (b *Booth) ObserveFailure(ctx context.Context, err error) {
	b.metrics.SessionPolled("failed")
	b.notify(ctx, ports.NotificationLookupFailed, b.State(), err)
}

func (b *Booth) applyPendingLocked() (entities.ClientState, bool) {
	if b.pending == nil {
		return entities.ClientState{}, false
	}
	observed := b.pending.session
	b.pending = nil
	if !b.state.SessionChanged(observed) {
		return entities.ClientState{}, false
	}
	return b.switchSessionLocked(observed), true
}

func (b *Booth) switchSessionLocked(observed *entities.ElectionSession) entities.ClientState {
	previous := sessionID(b.state.Session)
	b.state = b.state.WithSessionChange(copySession(observed))
	b.metrics.SessionChanged()
	b.logger.Info("active session changed",
		"event", "booth_session_changed",
		"module", application.LogModule,
		"layer", "application",
		"election_id", b.electionID,
		"previous_session_id", previous,
		"session_id", sessionID(observed),
		"phase", string(b.state.Phase),
	)
	return b.state.Snapshot()
}

// refreshParticipation asks the registry whether the voter already voted in
// the session just switched to, for example from another client. A voter who
// has moves to Waiting. The answer is applied only if the booth still holds
// that session with no submission in flight and the registry still reports
// it as the active one.
func (b *Booth) refreshParticipation(ctx context.Context, switched entities.ClientState) entities.ClientState {
	if switched.Phase != entities.PhaseVoting || switched.Session == nil {
		return switched
	}
	target := switched.Session.SessionID
	active, found, err := b.gateway.FindActiveSession(ctx, b.electionID)
	if err == nil && (!found || active.SessionID != target) {
		return switched
	}
	var hasVoted bool
	if err == nil {
		hasVoted, err = b.gateway.HasVoted(ctx, b.electionID, b.identity)
	}
	if err != nil {
		b.logFailure("has-voted refresh after session change failed", "booth_has_voted_refresh_failed", err)
		return switched
	}
	if !hasVoted {
		return switched
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.submitting || b.state.Phase != entities.PhaseVoting || sessionID(b.state.Session) != target {
		return b.state.Snapshot()
	}
	b.state = b.state.WithParticipation(true)
	b.logger.Info("voter already voted in new session",
		"event", "booth_session_already_voted",
		"module", application.LogModule,
		"layer", "application",
		"election_id", b.electionID,
		"session_id", target,
	)
	return b.state.Snapshot()
}

func (b *Booth) notify(ctx context.Context, kind ports.NotificationKind, state entities.ClientState, err error) {
	if b.notifier == nil {
		return
	}
	at := time.Now().UTC()
	if b.clock != nil {
		at = b.clock.Now().UTC()
	}
	b.notifier.Notify(ctx, ports.Notification{Kind: kind, State: state, Err: err, At: at})
}

func (b *Booth) logFailure(message string, event string, err error) {
	b.logger.Warn(message,
		"event", event,
		"module", application.LogModule,
		"layer", "application",
		"election_id", b.electionID,
		"error", err.Error(),
	)
}

func copySession(session *entities.ElectionSession) *entities.ElectionSession {
	if session == nil {
		return nil
	}
	out := *session
	return &out
}

func sessionID(session *entities.ElectionSession) string {
	if session == nil {
		return ""
	}
	return session.SessionID
}

package metrics

import (
	"agora/contexts/governance/voting-booth/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Booth implements the voting booth metrics port on a prometheus registry.
type Booth struct {
	voteRecordsCast  *prometheus.CounterVec
	voteCastRejected *prometheus.CounterVec
	submissions      *prometheus.CounterVec
	sessionPolls     *prometheus.CounterVec
	sessionChanges   prometheus.Counter
	multipleOngoing  *prometheus.CounterVec
}

func NewBooth(registry prometheus.Registerer) *Booth {
	factory := promauto.With(registry)
	return &Booth{
		voteRecordsCast: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "agora_vote_records_cast_total",
			Help: "Vote records persisted, by election",
		}, []string{"election_id"}),
		voteCastRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "agora_vote_cast_rejected_total",
			Help: "castVote calls rejected before or during persistence, by reason",
		}, []string{"reason"}),
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "agora_ballot_submissions_total",
			Help: "Ballot submissions by outcome",
		}, []string{"outcome"}),
		sessionPolls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "agora_session_polls_total",
			Help: "Active session polls by result",
		}, []string{"result"}),
		sessionChanges: factory.NewCounter(prometheus.CounterOpts{
			Name: "agora_session_changes_total",
			Help: "Confirmed changes of active session identity applied to a booth",
		}),
		multipleOngoing: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "agora_multiple_ongoing_sessions_total",
			Help: "Lookups where the registry reported more than one ongoing session",
		}, []string{"election_id"}),
	}
}

func (m *Booth) VoteRecordCast(electionID string) {
	m.voteRecordsCast.WithLabelValues(electionID).Inc()
}

func (m *Booth) VoteCastRejected(reason string) {
	m.voteCastRejected.WithLabelValues(reason).Inc()
}

func (m *Booth) SubmissionFinished(outcome string) {
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *Booth) SessionPolled(result string) {
	m.sessionPolls.WithLabelValues(result).Inc()
}

func (m *Booth) SessionChanged() {
	m.sessionChanges.Inc()
}

func (m *Booth) MultipleOngoingSessions(electionID string) {
	m.multipleOngoing.WithLabelValues(electionID).Inc()
}

var _ ports.Metrics = (*Booth)(nil)

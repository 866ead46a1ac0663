package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestBoothCountersRegisterAndCount(t *testing.T) {
	registry := prometheus.NewRegistry()
	booth := NewBooth(registry)

	booth.VoteRecordCast("election-1")
	booth.VoteRecordCast("election-1")
	booth.VoteCastRejected("duplicate_vote")
	booth.SubmissionFinished("partial_failure")
	booth.SessionPolled("changed")
	booth.SessionChanged()
	booth.MultipleOngoingSessions("election-1")

	if got := testutil.ToFloat64(booth.voteRecordsCast.WithLabelValues("election-1")); got != 2 {
		t.Fatalf("expected 2 vote records, got %v", got)
	}
	if got := testutil.ToFloat64(booth.sessionChanges); got != 1 {
		t.Fatalf("expected 1 session change, got %v", got)
	}
	if got := testutil.ToFloat64(booth.submissions.WithLabelValues("partial_failure")); got != 1 {
		t.Fatalf("expected 1 partial failure, got %v", got)
	}

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) != 6 {
		t.Fatalf("expected six metric families, got %d", len(families))
	}
}

package votingbooth

import (
	"context"
	"log/slog"
	"time"

	httpadapter "agora/contexts/governance/voting-booth/adapters/http"
	"agora/contexts/governance/voting-booth/adapters/memory"
	"agora/contexts/governance/voting-booth/application/booth"
	"agora/contexts/governance/voting-booth/application/commands"
	"agora/contexts/governance/voting-booth/application/queries"
	"agora/contexts/governance/voting-booth/application/workers"
	"agora/contexts/governance/voting-booth/domain/entities"
	"agora/contexts/governance/voting-booth/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Gateway LocalGateway
	Store   *memory.Store
	Metrics ports.Metrics
	Logger  *slog.Logger
}

type Dependencies struct {
	Registry          ports.SessionRegistry
	Outbox            ports.OutboxWriter
	Clock             ports.Clock
	IDGen             ports.IDGenerator
	Metrics           ports.Metrics
	RemoteCallTimeout time.Duration
	Logger            *slog.Logger
}

func NewModule(deps Dependencies) Module {
	metrics := deps.Metrics
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	sessions := queries.SessionLookup{
		Registry: deps.Registry,
		Timeout:  deps.RemoteCallTimeout,
		Metrics:  metrics,
		Logger:   deps.Logger,
	}
	voters := queries.VoterEligibility{
		Registry: deps.Registry,
		Timeout:  deps.RemoteCallTimeout,
		Logger:   deps.Logger,
	}
	handler := httpadapter.Handler{
		Elections: queries.GetElectionUseCase{
			Registry: deps.Registry,
			Timeout:  deps.RemoteCallTimeout,
		},
		Sessions: sessions,
		Voters:   voters,
		HasVoted: queries.HasVotedUseCase{
			Registry: deps.Registry,
			Voters:   voters,
			Sessions: sessions,
			Timeout:  deps.RemoteCallTimeout,
			Logger:   deps.Logger,
		},
		MyVotes: queries.ListMyVotesUseCase{
			Registry: deps.Registry,
			Voters:   voters,
			Timeout:  deps.RemoteCallTimeout,
		},
		CastVote: commands.CastVoteUseCase{
			Registry: deps.Registry,
			Voters:   voters,
			Outbox:   deps.Outbox,
			Clock:    deps.Clock,
			IDGen:    deps.IDGen,
			Timeout:  deps.RemoteCallTimeout,
			Metrics:  metrics,
			Logger:   deps.Logger,
		},
		Logger: deps.Logger,
	}
	return Module{
		Handler: handler,
		Gateway: LocalGateway{handler: handler},
		Metrics: metrics,
		Logger:  deps.Logger,
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Registry: store,
		Outbox:   store,
		Clock:    store,
		IDGen:    store,
		Logger:   logger,
	})
	module.Store = store
	return module
}

// NewClientModule is the booth-side module for processes that reach the
// registry over the network and never serve it.
func NewClientModule(metrics ports.Metrics, logger *slog.Logger) Module {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return Module{Metrics: metrics, Logger: logger}
}

// NewBooth builds a booth client for one voter. The gateway may be the
// module's LocalGateway or a remote client.
func (m Module) NewBooth(electionID string, identity string, gateway ports.VotingGateway, notifier ports.Notifier) *booth.Booth {
	return booth.New(booth.Config{
		ElectionID: electionID,
		Identity:   identity,
		Gateway:    gateway,
		Coordinator: commands.SubmissionCoordinator{
			Gateway: gateway,
			Metrics: m.Metrics,
			Logger:  m.Logger,
		},
		Notifier: notifier,
		Metrics:  m.Metrics,
		Logger:   m.Logger,
	})
}

// NewWatchLoop polls through the booth's gateway on the given interval.
func (m Module) NewWatchLoop(b *booth.Booth, sessions ports.ActiveSessionFinder, interval time.Duration) workers.SessionWatchLoop {
	return workers.SessionWatchLoop{
		Sessions: sessions,
		Observer: b,
		Interval: interval,
		Logger:   m.Logger,
	}
}

// LocalGateway serves the booth client from in-process use cases.
type LocalGateway struct {
	handler httpadapter.Handler
}

func (g LocalGateway) GetElection(ctx context.Context, electionID string) (entities.Election, error) {
	return g.handler.Elections.GetElection(ctx, electionID)
}

func (g LocalGateway) FindActiveSession(ctx context.Context, electionID string) (entities.ElectionSession, bool, error) {
	return g.handler.Sessions.FindActiveSession(ctx, electionID)
}

func (g LocalGateway) ResolveVoter(ctx context.Context, electionID string, identity string) (entities.Voter, error) {
	return g.handler.Voters.ResolveVoter(ctx, electionID, identity)
}

func (g LocalGateway) HasVoted(ctx context.Context, electionID string, identity string) (bool, error) {
	return g.handler.HasVoted.HasVoted(ctx, electionID, identity)
}

func (g LocalGateway) CastVote(ctx context.Context, request ports.CastVoteRequest) (entities.VoteRecord, error) {
	return g.handler.CastVote.CastVote(ctx, commands.CastVoteCommand{
		ElectionID: request.ElectionID,
		SessionID:  request.SessionID,
		ItemID:     request.ItemID,
		OptionID:   request.OptionID,
		Identity:   request.Identity,
	})
}

var _ ports.VotingGateway = LocalGateway{}

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	votingbooth "agora/contexts/governance/voting-booth"
	boothhttp "agora/contexts/governance/voting-booth/transport/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "agora/internal/platform/httpserver/docs"
)

const userHeader = "X-User-Id"

type Server struct {
	mux      *http.ServeMux
	server   *http.Server
	logger   *slog.Logger
	addr     string
	booth    votingbooth.Module
	gatherer prometheus.Gatherer
}

// New builds the API server. gatherer may be nil, in which case /metrics is
// not mounted.
func New(booth votingbooth.Module, gatherer prometheus.Gatherer, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		booth:    booth,
		gatherer: gatherer,
	}
	s.registerRoutes()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	if s.gatherer != nil {
		s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("GET /v1/elections/{election_id}", s.handleGetElection)
	s.mux.HandleFunc("GET /v1/elections/{election_id}/sessions/active", s.handleActiveSession)
	s.mux.HandleFunc("GET /v1/elections/{election_id}/voter", s.handleVoter)
	s.mux.HandleFunc("GET /v1/elections/{election_id}/has-voted", s.handleHasVoted)
	s.mux.HandleFunc("POST /v1/elections/{election_id}/votes", s.handleCastVote)
	s.mux.HandleFunc("GET /v1/elections/{election_id}/my-votes", s.handleMyVotes)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGetElection(w http.ResponseWriter, r *http.Request) {
	resp, err := s.booth.Handler.GetElectionHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		s.writeBoothDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleActiveSession(w http.ResponseWriter, r *http.Request) {
	resp, err := s.booth.Handler.ActiveSessionHandler(r.Context(), r.PathValue("election_id"))
	if err != nil {
		s.writeBoothDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVoter(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	resp, err := s.booth.Handler.VoterHandler(r.Context(), r.PathValue("election_id"), userID)
	if err != nil {
		s.writeBoothDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHasVoted(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	resp, err := s.booth.Handler.HasVotedHandler(r.Context(), r.PathValue("election_id"), userID)
	if err != nil {
		s.writeBoothDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req boothhttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBoothError(w, http.StatusBadRequest, boothhttp.CodeInvalidInput, "request body must be valid JSON")
		return
	}
	resp, err := s.booth.Handler.CastVoteHandler(r.Context(), r.PathValue("election_id"), userID, req)
	if err != nil {
		s.writeBoothDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleMyVotes(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	resp, err := s.booth.Handler.MyVotesHandler(r.Context(), r.PathValue("election_id"), userID)
	if err != nil {
		s.writeBoothDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get(userHeader))
	if userID == "" {
		writeBoothError(w, http.StatusUnauthorized, boothhttp.CodeUnauthorized, "X-User-Id header is required")
		return "", false
	}
	return userID, true
}

func (s *Server) writeBoothDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := boothhttp.StatusForError(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("voting booth request failed",
			"event", "http_booth_request_failed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"error", err.Error(),
		)
	}
	writeBoothError(w, status, code, err.Error())
}

func writeBoothError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, boothhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

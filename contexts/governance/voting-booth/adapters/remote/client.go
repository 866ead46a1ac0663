package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"agora/contexts/governance/voting-booth/domain/entities"
	domainerrors "agora/contexts/governance/voting-booth/domain/errors"
	"agora/contexts/governance/voting-booth/ports"
	httptransport "agora/contexts/governance/voting-booth/transport/http"
)

const userHeader = "X-User-Id"

// Client is the booth-side VotingGateway over the voting booth HTTP API.
// Every call is bounded by Timeout. Failed calls are never retried here; the
// next poll or user action is the retry.
type Client struct {
	baseURL    string
	identity   string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
}

type Options struct {
	BaseURL    string
	Identity   string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		identity:   strings.TrimSpace(opts.Identity),
		httpClient: httpClient,
		timeout:    timeout,
		logger:     logger,
	}
}

func (c *Client) GetElection(ctx context.Context, electionID string) (entities.Election, error) {
	var resp httptransport.ElectionResponse
	if err := c.do(ctx, http.MethodGet, electionPath(electionID, ""), "", nil, &resp); err != nil {
		return entities.Election{}, err
	}
	return resp.ToEntity(), nil
}

func (c *Client) FindActiveSession(ctx context.Context, electionID string) (entities.ElectionSession, bool, error) {
	var resp httptransport.ActiveSessionResponse
	if err := c.do(ctx, http.MethodGet, electionPath(electionID, "/sessions/active"), "", nil, &resp); err != nil {
		return entities.ElectionSession{}, false, err
	}
	if resp.Session == nil {
		return entities.ElectionSession{}, false, nil
	}
	return resp.Session.ToEntity(), true, nil
}

func (c *Client) ResolveVoter(ctx context.Context, electionID string, identity string) (entities.Voter, error) {
	var resp httptransport.VoterResponse
	if err := c.do(ctx, http.MethodGet, electionPath(electionID, "/voter"), c.identityFor(identity), nil, &resp); err != nil {
		return entities.Voter{}, err
	}
	return entities.Voter{
		VoterID:    resp.VoterID,
		ElectionID: resp.ElectionID,
		Identity:   c.identityFor(identity),
		Weight:     resp.Weight,
	}, nil
}

func (c *Client) HasVoted(ctx context.Context, electionID string, identity string) (bool, error) {
	var resp httptransport.HasVotedResponse
	if err := c.do(ctx, http.MethodGet, electionPath(electionID, "/has-voted"), c.identityFor(identity), nil, &resp); err != nil {
		return false, err
	}
	return resp.HasVoted, nil
}

func (c *Client) CastVote(ctx context.Context, request ports.CastVoteRequest) (entities.VoteRecord, error) {
	body := httptransport.CastVoteRequest{
		SessionID: request.SessionID,
		ItemID:    request.ItemID,
		OptionID:  request.OptionID,
	}
	var resp httptransport.VoteRecordResponse
	if err := c.do(ctx, http.MethodPost, electionPath(request.ElectionID, "/votes"), c.identityFor(request.Identity), body, &resp); err != nil {
		return entities.VoteRecord{}, err
	}
	return resp.ToEntity(), nil
}

func (c *Client) ListMyVotes(ctx context.Context, electionID string) ([]entities.VoteRecord, error) {
	var resp httptransport.VoteRecordListResponse
	if err := c.do(ctx, http.MethodGet, electionPath(electionID, "/my-votes"), c.identity, nil, &resp); err != nil {
		return nil, err
	}
	records := make([]entities.VoteRecord, 0, len(resp.Items))
	for _, item := range resp.Items {
		records = append(records, item.ToEntity())
	}
	return records, nil
}

func (c *Client) do(ctx context.Context, method string, path string, identity string, body any, out any) error {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(callCtx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: build request: %w", domainerrors.ErrTransportFailure, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if identity != "" {
		req.Header.Set(userHeader, identity)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("voting api call failed",
			"event", "booth_remote_call_failed",
			"module", "governance/voting-booth",
			"layer", "adapter",
			"method", method,
			"path", path,
			"error", err.Error(),
		)
		return fmt.Errorf("%w: %s %s: %w", domainerrors.ErrTransportFailure, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr httptransport.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		mapped := httptransport.ErrorForCode(apiErr.Code)
		c.logger.Warn("voting api returned error",
			"event", "booth_remote_call_rejected",
			"module", "governance/voting-booth",
			"layer", "adapter",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"code", apiErr.Code,
		)
		return fmt.Errorf("%w: %s", mapped, apiErr.Message)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %w", domainerrors.ErrTransportFailure, path, err)
	}
	return nil
}

func (c *Client) identityFor(identity string) string {
	if value := strings.TrimSpace(identity); value != "" {
		return value
	}
	return c.identity
}

func electionPath(electionID string, suffix string) string {
	return "/v1/elections/" + url.PathEscape(strings.TrimSpace(electionID)) + suffix
}

var _ ports.VotingGateway = (*Client)(nil)

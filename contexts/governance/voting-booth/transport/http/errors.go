package http

import (
	"errors"
	"net/http"

	domainerrors "agora/contexts/governance/voting-booth/domain/errors"
)

const (
	CodeInvalidInput        = "invalid_input"
	CodeNotRegisteredVoter  = "not_registered_voter"
	CodeElectionNotFound    = "election_not_found"
	CodeSessionNotFound     = "session_not_found"
	CodeSessionNotOngoing   = "session_not_ongoing"
	CodeItemNotFound        = "item_not_found"
	CodeOptionNotFound      = "option_not_found"
	CodeDuplicateVote       = "duplicate_vote"
	CodeUnauthorized        = "unauthorized"
	CodeRegistryUnavailable = "registry_unavailable"
	CodeInternal            = "internal_error"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{domainerrors.ErrInvalidInput, http.StatusBadRequest, CodeInvalidInput},
	{domainerrors.ErrNotRegisteredVoter, http.StatusForbidden, CodeNotRegisteredVoter},
	{domainerrors.ErrElectionNotFound, http.StatusNotFound, CodeElectionNotFound},
	{domainerrors.ErrSessionNotFound, http.StatusNotFound, CodeSessionNotFound},
	{domainerrors.ErrSessionNotOngoing, http.StatusConflict, CodeSessionNotOngoing},
	{domainerrors.ErrItemNotFound, http.StatusNotFound, CodeItemNotFound},
	{domainerrors.ErrOptionNotFound, http.StatusNotFound, CodeOptionNotFound},
	{domainerrors.ErrDuplicateVote, http.StatusConflict, CodeDuplicateVote},
	{domainerrors.ErrTransportFailure, http.StatusServiceUnavailable, CodeRegistryUnavailable},
}

// StatusForError maps a domain error to its HTTP status and wire code.
func StatusForError(err error) (int, string) {
	for _, mapping := range errorMappings {
		if errors.Is(err, mapping.err) {
			return mapping.status, mapping.code
		}
	}
	return http.StatusInternalServerError, CodeInternal
}

// ErrorForCode is the client-side inverse of StatusForError. Unknown codes
// and server faults are reported as transport failures.
func ErrorForCode(code string) error {
	for _, mapping := range errorMappings {
		if mapping.code == code {
			return mapping.err
		}
	}
	if code == CodeUnauthorized {
		return domainerrors.ErrInvalidInput
	}
	return domainerrors.ErrTransportFailure
}

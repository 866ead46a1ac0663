package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainerrors "agora/contexts/governance/voting-booth/domain/errors"
)

const DefaultRemoteCallTimeout = 10 * time.Second

var passthroughErrors = []error{
	domainerrors.ErrInvalidInput,
	domainerrors.ErrNotRegisteredVoter,
	domainerrors.ErrTransportFailure,
	domainerrors.ErrElectionNotFound,
	domainerrors.ErrSessionNotFound,
	domainerrors.ErrSessionNotOngoing,
	domainerrors.ErrItemNotFound,
	domainerrors.ErrOptionNotFound,
	domainerrors.ErrDuplicateVote,
}

// ClassifyRegistryError keeps domain outcomes intact and marks everything
// else (timeouts, connection faults, driver errors) as ErrTransportFailure so
// callers never read a fault as "nothing found".
func ClassifyRegistryError(operation string, err error) error {
	if err == nil {
		return nil
	}
	for _, known := range passthroughErrors {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %s: %w", domainerrors.ErrTransportFailure, operation, err)
}

// WithCallTimeout bounds one remote call.
func WithCallTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultRemoteCallTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

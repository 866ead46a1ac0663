package postgresadapter

import (
	"context"

	"github.com/google/uuid"
)

// UUIDGenerator issues vote record and outbox ids.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

package ports

import (
	"context"

	"github.com/signet-labs/signet/core"
)

// EventPublisher notifies other instances about session lifecycle changes.
type EventPublisher interface {
	PublishLogin(ctx context.Context, userID, address string, chain core.ChainType) error
	PublishLogout(ctx context.Context, userID, refreshID string) error
}

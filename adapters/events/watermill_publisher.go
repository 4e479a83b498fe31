package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/signet-labs/signet/core"
	"github.com/signet-labs/signet/ports"
)

const (
	LoginTopic  = "signet.login"
	LogoutTopic = "signet.logout"
)

// LoginEvent is published after a successful wallet login.
type LoginEvent struct {
	UserID  string `json:"user_id"`
	Address string `json:"address"`
	Chain   string `json:"chain"`
}

// LogoutEvent is published when a refresh token is invalidated, so other
// instances can drop any cached session state.
type LogoutEvent struct {
	UserID    string `json:"user_id"`
	RefreshID string `json:"refresh_id"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill.
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill publisher.
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishLogin publishes a login event.
func (p *WatermillPublisher) PublishLogin(ctx context.Context, userID, address string, chain core.ChainType) error {
	return p.publish(LoginTopic, uuid.New().String(), LoginEvent{
		UserID:  userID,
		Address: address,
		Chain:   chain.String(),
	})
}

// PublishLogout publishes a logout event keyed by the revoked refresh ID.
func (p *WatermillPublisher) PublishLogout(ctx context.Context, userID, refreshID string) error {
	return p.publish(LogoutTopic, refreshID, LogoutEvent{
		UserID:    userID,
		RefreshID: refreshID,
	})
}

func (p *WatermillPublisher) publish(topic, id string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.publisher.Publish(topic, message.NewMessage(id, payload)); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

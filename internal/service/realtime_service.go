package service

import (
	"context"

	"cardionote-be/internal/pkg/logger"
	"cardionote-be/internal/websocket"
	"cardionote-be/pkg/events"
	pktNats "cardionote-be/pkg/nats"

	"github.com/google/uuid"
)

type IRealtimeService interface {
	Start() error
}

// realtimeService bridges the event bus to the websocket hub: every
// row-change event published on NATS reaches the owner's connected
// browser tabs, which react by reloading their collections.
type realtimeService struct {
	subscriber *pktNats.Subscriber
	hub        *websocket.Hub
	logger     logger.ILogger
}

func NewRealtimeService(subscriber *pktNats.Subscriber, hub *websocket.Hub, log logger.ILogger) IRealtimeService {
	return &realtimeService{
		subscriber: subscriber,
		hub:        hub,
		logger:     log,
	}
}

func (s *realtimeService) Start() error {
	return s.subscriber.Subscribe("events.>", "realtime-push", s.handle)
}

func (s *realtimeService) handle(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	userIDStr, ok := payload["user_id"].(string)
	if !ok {
		// Events without an owner have no websocket audience; ack and
		// move on.
		return nil
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		s.logger.Warn("RealtimeService", "Event carries malformed user_id", map[string]interface{}{
			"event":   event.EventType(),
			"user_id": userIDStr,
		})
		return nil
	}

	s.hub.Send(userID, websocket.RealtimeEvent{
		Type: event.EventType(),
		Data: payload,
		At:   event.Timestamp(),
	})
	return nil
}

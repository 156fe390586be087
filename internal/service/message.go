package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/joliday/backend/internal/domain"
	"github.com/joliday/backend/internal/membership"
	"github.com/joliday/backend/internal/repo"
)

// MessageEvent is the realtime event name used for new chat messages.
const MessageEvent = "message"

// Publisher pushes an event to the subscribers of a channel.
type Publisher interface {
	Publish(ctx context.Context, channel, event string, payload any) error
}

// MessageService implements trip chat.
type MessageService struct {
	trips     repo.TripRepo
	messages  repo.MessageRepo
	publisher Publisher
	logger    *slog.Logger
}

// NewMessageService constructs a MessageService.
func NewMessageService(trips repo.TripRepo, messages repo.MessageRepo, publisher Publisher, logger *slog.Logger) *MessageService {
	return &MessageService{trips: trips, messages: messages, publisher: publisher, logger: logger}
}

// Send stores a message from caller and then fans it out on the trip's
// channel. The message is durable once stored; a failed publish is only logged.
func (s *MessageService) Send(ctx context.Context, caller domain.User, tripID uuid.UUID, content string) (domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Message{}, fmt.Errorf("%w: content is required", domain.ErrValidation)
	}
	if utf8.RuneCountInString(content) > maxMessageLen {
		return domain.Message{}, fmt.Errorf("%w: content must be at most %d characters", domain.ErrValidation, maxMessageLen)
	}

	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Message{}, fmt.Errorf("service.MessageService.Send: %w", err)
	}
	if !membership.IsAuthorized(caller, trip) {
		return domain.Message{}, fmt.Errorf("service.MessageService.Send: %w", domain.ErrForbidden)
	}

	msg, err := s.messages.Create(ctx, domain.Message{TripID: trip.ID, Owner: caller, Content: content})
	if err != nil {
		return domain.Message{}, fmt.Errorf("service.MessageService.Send: %w", err)
	}

	if err := s.publisher.Publish(ctx, trip.ID.String(), MessageEvent, msg); err != nil {
		s.logger.WarnContext(ctx, "realtime publish failed",
			slog.String("trip_id", trip.ID.String()),
			slog.String("event", MessageEvent),
			slog.String("error", err.Error()),
		)
	}
	return msg, nil
}

// List returns the most recent messages of a trip, oldest first.
func (s *MessageService) List(ctx context.Context, caller domain.User, tripID uuid.UUID) ([]domain.Message, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.MessageService.List: %w", err)
	}
	if !membership.IsAuthorized(caller, trip) {
		return nil, fmt.Errorf("service.MessageService.List: %w", domain.ErrForbidden)
	}

	msgs, err := s.messages.ListRecent(ctx, trip.ID, domain.MessageWindow)
	if err != nil {
		return nil, fmt.Errorf("service.MessageService.List: %w", err)
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return msgs, nil
}

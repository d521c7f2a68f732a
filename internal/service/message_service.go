package service

import (
	"context"
	"errors"

	"github.com/gullrabia/Chat-app/internal/domain"
	"github.com/gullrabia/Chat-app/internal/kafka"
	"github.com/gullrabia/Chat-app/internal/repository"
	"github.com/gullrabia/Chat-app/pkg/log"
	"github.com/gullrabia/Chat-app/pkg/storage"
)

var ErrEmptyMessage = errors.New("text or image is required")

type messageServiceImpl struct {
	messages repository.MessageRepository
	users    repository.UserRepository
	store    storage.Storage
	producer kafka.MessageProducer
}

// NewMessageService creates a message service.
func NewMessageService(
	messages repository.MessageRepository,
	users repository.UserRepository,
	store storage.Storage,
	producer kafka.MessageProducer,
) MessageService {
	return &messageServiceImpl{
		messages: messages,
		users:    users,
		store:    store,
		producer: producer,
	}
}

// SidebarUsers returns every other user plus the caller's unseen message
// counts keyed by sender.
func (s *messageServiceImpl) SidebarUsers(ctx context.Context, userID string) ([]*domain.User, map[string]int64, error) {
	users, err := s.users.ListOthers(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	counts, err := s.messages.CountUnseenBySender(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	return users, counts, nil
}

// Conversation returns the message history with the other user and marks
// everything they sent as seen.
func (s *messageServiceImpl) Conversation(ctx context.Context, userID, otherID string) ([]*domain.Message, error) {
	msgs, err := s.messages.Conversation(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}

	if err := s.messages.MarkConversationSeen(ctx, otherID, userID); err != nil {
		lg := log.Ctx(ctx)
		lg.Warn().Err(err).Str(log.FieldUserID, userID).Msg("failed to mark conversation seen")
	}

	return msgs, nil
}

// SendMessage durably stores a message, uploading an inline image first.
// The stored record is what the client relays over the socket; the relay
// itself never persists anything.
func (s *messageServiceImpl) SendMessage(ctx context.Context, senderID, receiverID string, req *domain.SendMessageRequest) (*domain.Message, error) {
	l := log.Ctx(ctx)

	if req.Text == "" && req.Image == "" {
		return nil, ErrEmptyMessage
	}

	if _, err := s.users.GetByID(ctx, receiverID); err != nil {
		return nil, err
	}

	imageURL := ""
	if req.Image != "" {
		url, err := uploadDataURL(ctx, s.store, "chat-images", req.Image)
		if err != nil {
			l.Error().Err(err).Str(log.FieldUserID, senderID).Msg("message image upload failed")
			return nil, err
		}
		imageURL = url
	}

	msg := &domain.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       req.Text,
		Image:      imageURL,
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		l.Error().Err(err).Str(log.FieldUserID, senderID).Msg("failed to persist message")
		return nil, err
	}

	// Stream fan-out is best-effort; history is already durable.
	if err := s.producer.ProduceMessage(ctx, msg); err != nil {
		l.Warn().Err(err).Str(log.FieldMessageID, msg.ID).Msg("failed to produce message event")
	}

	return msg, nil
}

// MarkSeen marks a single message as seen.
func (s *messageServiceImpl) MarkSeen(ctx context.Context, id string) error {
	return s.messages.MarkSeen(ctx, id)
}

package repository

import (
	"context"
	"errors"

	"github.com/gullrabia/Chat-app/internal/domain"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailExists     = errors.New("email already exists")
	ErrMessageNotFound = errors.New("message not found")
)

// UserRepository provides access to user storage.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	ListOthers(ctx context.Context, excludeID string) ([]*domain.User, error)
}

// MessageRepository provides access to message history storage.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	Conversation(ctx context.Context, userID, otherID string) ([]*domain.Message, error)
	MarkSeen(ctx context.Context, id string) error
	MarkConversationSeen(ctx context.Context, senderID, receiverID string) error
	CountUnseenBySender(ctx context.Context, receiverID string) (map[string]int64, error)
}

package service

import (
	"context"

	"github.com/gullrabia/Chat-app/internal/domain"
)

// UserService covers credential issuance and profile CRUD.
type UserService interface {
	Signup(ctx context.Context, req *domain.SignupRequest) (*domain.User, string, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.User, string, error)
	Logout(ctx context.Context, userID string) error
	UpdateProfile(ctx context.Context, userID string, req *domain.UpdateProfileRequest) (*domain.User, error)
}

// MessageService covers message history and durable sending. The relay
// itself never goes through this service; the client persists via
// SendMessage first and then emits the saved message on the socket.
type MessageService interface {
	SidebarUsers(ctx context.Context, userID string) ([]*domain.User, map[string]int64, error)
	Conversation(ctx context.Context, userID, otherID string) ([]*domain.Message, error)
	SendMessage(ctx context.Context, senderID, receiverID string, req *domain.SendMessageRequest) (*domain.Message, error)
	MarkSeen(ctx context.Context, id string) error
}

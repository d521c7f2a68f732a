package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gullrabia/Chat-app/internal/domain"
)

// GormMessageRepository implements MessageRepository using GORM.
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new GORM-based message repository.
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

// Create persists a new message.
func (r *GormMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}

	model := domain.MessageToModel(msg)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}

	msg.CreatedAt = model.CreatedAt
	return nil
}

// Conversation returns all messages between two users in either direction,
// oldest first.
func (r *GormMessageRepository) Conversation(ctx context.Context, userID, otherID string) ([]*domain.Message, error) {
	var models []domain.MessageModel
	result := r.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, otherID, otherID, userID).
		Order("created_at ASC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	msgs := make([]*domain.Message, 0, len(models))
	for i := range models {
		msgs = append(msgs, models[i].ToDomain())
	}
	return msgs, nil
}

// MarkSeen marks a single message as seen.
func (r *GormMessageRepository) MarkSeen(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Model(&domain.MessageModel{}).
		Where("id = ?", id).
		Update("seen", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var model domain.MessageModel
		if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMessageNotFound
			}
			return err
		}
	}
	return nil
}

// MarkConversationSeen marks everything sent by senderID to receiverID as
// seen. Called when the receiver opens the conversation.
func (r *GormMessageRepository) MarkConversationSeen(ctx context.Context, senderID, receiverID string) error {
	return r.db.WithContext(ctx).Model(&domain.MessageModel{}).
		Where("sender_id = ? AND receiver_id = ? AND seen = ?", senderID, receiverID, false).
		Update("seen", true).Error
}

// CountUnseenBySender returns, per sender, how many unseen messages the
// receiver has. One grouped query rather than a query per user.
func (r *GormMessageRepository) CountUnseenBySender(ctx context.Context, receiverID string) (map[string]int64, error) {
	type row struct {
		SenderID string
		N        int64
	}
	var rows []row

	result := r.db.WithContext(ctx).Model(&domain.MessageModel{}).
		Select("sender_id, COUNT(*) AS n").
		Where("receiver_id = ? AND seen = ?", receiverID, false).
		Group("sender_id").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.SenderID] = r.N
	}
	return counts, nil
}

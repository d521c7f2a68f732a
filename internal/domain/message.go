package domain

import (
	"time"
)

// Message is a direct message between two users. The same shape travels
// over the websocket relay (transient hop) and the history API.
type Message struct {
	ID         string    `json:"_id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Text       string    `json:"text,omitempty"`
	Image      string    `json:"image,omitempty"`
	Seen       bool      `json:"seen"`
	CreatedAt  time.Time `json:"createdAt"`
}

// MessageModel is the GORM persistence model for Message.
type MessageModel struct {
	ID         string `gorm:"primaryKey;size:36"`
	SenderID   string `gorm:"index:idx_messages_pair;size:36;not null"`
	ReceiverID string `gorm:"index:idx_messages_pair;size:36;not null"`
	Text       string `gorm:"size:4096"`
	Image      string `gorm:"size:2048"`
	Seen       bool   `gorm:"not null;default:false"`
	CreatedAt  time.Time
}

// TableName sets the messages table name.
func (MessageModel) TableName() string { return "messages" }

// ToDomain converts the persistence model to a domain Message.
func (m *MessageModel) ToDomain() *Message {
	return &Message{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Text:       m.Text,
		Image:      m.Image,
		Seen:       m.Seen,
		CreatedAt:  m.CreatedAt,
	}
}

// MessageToModel converts a domain Message to its persistence model.
func MessageToModel(msg *Message) *MessageModel {
	return &MessageModel{
		ID:         msg.ID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Text:       msg.Text,
		Image:      msg.Image,
		Seen:       msg.Seen,
		CreatedAt:  msg.CreatedAt,
	}
}

// SendMessageRequest is the body of POST /api/messages/send/:id.
type SendMessageRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"` // data URL, optional
}

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gullrabia/Chat-app/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.UserModel{}, &domain.MessageModel{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func mustCreateMessage(t *testing.T, repo *GormMessageRepository, sender, receiver, text string) *domain.Message {
	t.Helper()
	msg := &domain.Message{SenderID: sender, ReceiverID: receiver, Text: text}
	if err := repo.Create(context.Background(), msg); err != nil {
		t.Fatalf("failed to create message: %v", err)
	}
	return msg
}

func TestMessageCreateAssignsID(t *testing.T) {
	repo := NewGormMessageRepository(newTestDB(t))

	msg := mustCreateMessage(t, repo, "alice", "bob", "hi")
	if msg.ID == "" {
		t.Fatal("expected generated ID")
	}
	if msg.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be populated")
	}
}

func TestConversationBothDirectionsOldestFirst(t *testing.T) {
	repo := NewGormMessageRepository(newTestDB(t))
	ctx := context.Background()

	mustCreateMessage(t, repo, "alice", "bob", "one")
	time.Sleep(2 * time.Millisecond)
	mustCreateMessage(t, repo, "bob", "alice", "two")
	time.Sleep(2 * time.Millisecond)
	mustCreateMessage(t, repo, "alice", "bob", "three")
	mustCreateMessage(t, repo, "alice", "carol", "unrelated")

	msgs, err := repo.Conversation(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("conversation failed: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	for i, want := range []string{"one", "two", "three"} {
		if msgs[i].Text != want {
			t.Fatalf("msgs[%d].Text = %q, want %q", i, msgs[i].Text, want)
		}
	}
}

func TestMarkSeen(t *testing.T) {
	repo := NewGormMessageRepository(newTestDB(t))
	ctx := context.Background()

	msg := mustCreateMessage(t, repo, "alice", "bob", "hi")
	if err := repo.MarkSeen(ctx, msg.ID); err != nil {
		t.Fatalf("mark seen failed: %v", err)
	}

	msgs, err := repo.Conversation(ctx, "alice", "bob")
	if err != nil {
		t.Fatal(err)
	}
	if !msgs[0].Seen {
		t.Fatal("message must be seen after MarkSeen")
	}
}

func TestMarkSeenUnknownMessage(t *testing.T) {
	repo := NewGormMessageRepository(newTestDB(t))

	err := repo.MarkSeen(context.Background(), "no-such-id")
	if !errors.Is(err, ErrMessageNotFound) {
		t.Fatalf("err = %v, want ErrMessageNotFound", err)
	}
}

func TestMarkConversationSeen(t *testing.T) {
	repo := NewGormMessageRepository(newTestDB(t))
	ctx := context.Background()

	mustCreateMessage(t, repo, "alice", "bob", "one")
	mustCreateMessage(t, repo, "alice", "bob", "two")
	mine := mustCreateMessage(t, repo, "bob", "alice", "mine")

	if err := repo.MarkConversationSeen(ctx, "alice", "bob"); err != nil {
		t.Fatalf("mark conversation seen failed: %v", err)
	}

	msgs, err := repo.Conversation(ctx, "alice", "bob")
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range msgs {
		if m.ID == mine.ID {
			if m.Seen {
				t.Fatal("bob's own message must not be marked")
			}
			continue
		}
		if !m.Seen {
			t.Fatalf("message %q must be seen", m.Text)
		}
	}
}

func TestCountUnseenBySender(t *testing.T) {
	repo := NewGormMessageRepository(newTestDB(t))
	ctx := context.Background()

	mustCreateMessage(t, repo, "alice", "bob", "a1")
	mustCreateMessage(t, repo, "alice", "bob", "a2")
	mustCreateMessage(t, repo, "carol", "bob", "c1")
	seen := mustCreateMessage(t, repo, "carol", "bob", "c2")
	mustCreateMessage(t, repo, "bob", "alice", "outbound")

	if err := repo.MarkSeen(ctx, seen.ID); err != nil {
		t.Fatal(err)
	}

	counts, err := repo.CountUnseenBySender(ctx, "bob")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if counts["alice"] != 2 {
		t.Fatalf("counts[alice] = %d, want 2", counts["alice"])
	}
	if counts["carol"] != 1 {
		t.Fatalf("counts[carol] = %d, want 1", counts["carol"])
	}
	if _, ok := counts["bob"]; ok {
		t.Fatal("outbound messages must not count against the receiver")
	}
}

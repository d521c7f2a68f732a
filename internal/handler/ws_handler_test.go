package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/gullrabia/Chat-app/internal/auth"
	"github.com/gullrabia/Chat-app/internal/config"
	"github.com/gullrabia/Chat-app/internal/domain"
	"github.com/gullrabia/Chat-app/internal/hub"
	"github.com/gullrabia/Chat-app/internal/presence"
	"github.com/gullrabia/Chat-app/pkg/jwt"
)

type memUserGetter struct {
	users map[string]*domain.User
}

func (m *memUserGetter) GetByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

type wsFixture struct {
	server *httptest.Server
	tokens *jwt.Manager
	hub    *hub.Hub
}

func newWSFixture(t *testing.T, users ...*domain.User) *wsFixture {
	t.Helper()

	gin.SetMode(gin.TestMode)

	tokens, err := jwt.NewManager("test-secret", time.Hour, "chat-app")
	if err != nil {
		t.Fatal(err)
	}

	getter := &memUserGetter{users: make(map[string]*domain.User)}
	for _, u := range users {
		getter.users[u.ID] = u
	}

	relay := hub.NewHub(presence.NewTable())
	wsCfg := config.WebSocketConfig{
		PingInterval:   30 * time.Second,
		PongWait:       60 * time.Second,
		WriteWait:      10 * time.Second,
		MaxMessageSize: 65536,
	}

	router := gin.New()
	NewWSHandler(relay, auth.NewValidator(tokens, getter), wsCfg).RegisterRoutes(router)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &wsFixture{server: srv, tokens: tokens, hub: relay}
}

func (f *wsFixture) wsURL(userID, token string) string {
	u := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"
	q := url.Values{}
	if userID != "" {
		q.Set("userId", userID)
	}
	if token != "" {
		q.Set("token", token)
	}
	return u + "?" + q.Encode()
}

// connect dials the relay as the given user and returns the open socket.
func (f *wsFixture) connect(t *testing.T, userID string) *websocket.Conn {
	t.Helper()
	token, err := f.tokens.Generate(userID)
	if err != nil {
		t.Fatal(err)
	}
	conn, _, err := websocket.DefaultDialer.Dial(f.wsURL(userID, token), nil)
	if err != nil {
		t.Fatalf("dial failed for %s: %v", userID, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) *domain.Event {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var ev domain.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("malformed event: %v", err)
	}
	return &ev
}

// waitOnlineUsers reads frames until an online-users event arrives and
// returns its payload.
func waitOnlineUsers(t *testing.T, conn *websocket.Conn) []string {
	t.Helper()
	for i := 0; i < 10; i++ {
		ev := readEvent(t, conn)
		if ev.Event != domain.EventOnlineUsers {
			continue
		}
		var ids []string
		if err := json.Unmarshal(ev.Data, &ids); err != nil {
			t.Fatalf("malformed online-users payload: %v", err)
		}
		return ids
	}
	t.Fatal("no online-users event received")
	return nil
}

func waitNewMessage(t *testing.T, conn *websocket.Conn) *domain.Message {
	t.Helper()
	for i := 0; i < 10; i++ {
		ev := readEvent(t, conn)
		if ev.Event != domain.EventNewMessage {
			continue
		}
		var msg domain.Message
		if err := json.Unmarshal(ev.Data, &msg); err != nil {
			t.Fatalf("malformed message payload: %v", err)
		}
		return &msg
	}
	t.Fatal("no newMessage event received")
	return nil
}

func sendMessage(t *testing.T, conn *websocket.Conn, msg *domain.Message) {
	t.Helper()
	ev, err := domain.NewEvent(domain.EventSendMessage, msg)
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteJSON(ev); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func TestHandshakeRejectsMissingToken(t *testing.T) {
	f := newWSFixture(t)

	resp, err := http.Get(f.server.URL + "/ws?userId=u1")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestHandshakeRejectsMissingClaim(t *testing.T) {
	alice := &domain.User{ID: "u1"}
	f := newWSFixture(t, alice)

	token, err := f.tokens.Generate("u1")
	if err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get(f.server.URL + "/ws?token=" + token)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestHandshakeRejectsBadToken(t *testing.T) {
	f := newWSFixture(t)

	resp, err := http.Get(f.server.URL + "/ws?userId=u1&token=garbage")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestHandshakeRejectsIdentityMismatch(t *testing.T) {
	alice := &domain.User{ID: "u1", FullName: "Alice"}
	f := newWSFixture(t, alice)

	token, err := f.tokens.Generate("u1")
	if err != nil {
		t.Fatal(err)
	}

	// Valid token, but claiming to be someone else.
	resp, err := http.Get(f.server.URL + "/ws?userId=u2&token=" + token)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestConnectReceivesOnlineUsers(t *testing.T) {
	alice := &domain.User{ID: "u1", FullName: "Alice"}
	f := newWSFixture(t, alice)

	conn := f.connect(t, "u1")

	ids := waitOnlineUsers(t, conn)
	if len(ids) != 1 || ids[0] != "u1" {
		t.Fatalf("online set = %v, want [u1]", ids)
	}
}

func TestPresenceBroadcastOnJoinAndLeave(t *testing.T) {
	alice := &domain.User{ID: "u1"}
	bob := &domain.User{ID: "u2"}
	f := newWSFixture(t, alice, bob)

	aliceConn := f.connect(t, "u1")
	waitOnlineUsers(t, aliceConn)

	bobConn := f.connect(t, "u2")

	// Both see the grown set.
	ids := waitOnlineUsers(t, aliceConn)
	if len(ids) != 2 {
		t.Fatalf("alice sees %v after bob joins, want two users", ids)
	}
	ids = waitOnlineUsers(t, bobConn)
	if len(ids) != 2 {
		t.Fatalf("bob sees %v on join, want two users", ids)
	}

	bobConn.Close()

	ids = waitOnlineUsers(t, aliceConn)
	if len(ids) != 1 || ids[0] != "u1" {
		t.Fatalf("alice sees %v after bob leaves, want [u1]", ids)
	}
}

func TestMessageRelayedToOnlineReceiver(t *testing.T) {
	alice := &domain.User{ID: "u1"}
	bob := &domain.User{ID: "u2"}
	f := newWSFixture(t, alice, bob)

	aliceConn := f.connect(t, "u1")
	bobConn := f.connect(t, "u2")
	waitOnlineUsers(t, aliceConn)
	waitOnlineUsers(t, bobConn)

	sendMessage(t, aliceConn, &domain.Message{
		ID:         "m1",
		SenderID:   "u1",
		ReceiverID: "u2",
		Text:       "hello bob",
	})

	got := waitNewMessage(t, bobConn)
	if got.ID != "m1" || got.Text != "hello bob" || got.SenderID != "u1" {
		t.Fatalf("relayed message mangled: %+v", got)
	}
}

func TestSenderIdentitySpoofingOverridden(t *testing.T) {
	alice := &domain.User{ID: "u1"}
	bob := &domain.User{ID: "u2"}
	mallory := &domain.User{ID: "u3"}
	f := newWSFixture(t, alice, bob, mallory)

	malloryConn := f.connect(t, "u3")
	bobConn := f.connect(t, "u2")
	waitOnlineUsers(t, malloryConn)
	waitOnlineUsers(t, bobConn)

	// Mallory claims to be alice in the frame.
	sendMessage(t, malloryConn, &domain.Message{
		ID:         "m1",
		SenderID:   "u1",
		ReceiverID: "u2",
		Text:       "hi, it's alice",
	})

	got := waitNewMessage(t, bobConn)
	if got.SenderID != "u3" {
		t.Fatalf("sender = %q, want the socket owner u3", got.SenderID)
	}
}

func TestMessageToOfflineReceiverDropped(t *testing.T) {
	alice := &domain.User{ID: "u1"}
	f := newWSFixture(t, alice)

	aliceConn := f.connect(t, "u1")
	waitOnlineUsers(t, aliceConn)

	sendMessage(t, aliceConn, &domain.Message{
		ID:         "m1",
		SenderID:   "u1",
		ReceiverID: "ghost",
		Text:       "anyone there?",
	})

	// The relay is silent toward the sender either way; the connection
	// must simply stay healthy.
	aliceConn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	if _, _, err := aliceConn.ReadMessage(); err == nil {
		t.Fatal("expected no frame for the sender after an offline route")
	}

	if !f.hub.Online("u1") {
		t.Fatal("sender must remain online")
	}
}

func TestReconnectSupersedesOldConnection(t *testing.T) {
	alice := &domain.User{ID: "u1"}
	f := newWSFixture(t, alice)

	first := f.connect(t, "u1")
	waitOnlineUsers(t, first)

	second := f.connect(t, "u1")
	ids := waitOnlineUsers(t, second)
	if len(ids) != 1 || ids[0] != "u1" {
		t.Fatalf("online set = %v, want [u1]", ids)
	}

	// The first socket gets closed by the server.
	first.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := first.ReadMessage(); err != nil {
			break
		}
	}

	// The user must still be online through the second connection.
	if !f.hub.Online("u1") {
		t.Fatal("user must stay online across a reconnect")
	}

	// And the second connection still relays.
	sendMessage(t, second, &domain.Message{ID: "m1", SenderID: "u1", ReceiverID: "u1", Text: "note to self"})
	got := waitNewMessage(t, second)
	if got.ID != "m1" {
		t.Fatalf("relay through fresh connection failed: %+v", got)
	}
}

func TestMalformedFramesIgnored(t *testing.T) {
	alice := &domain.User{ID: "u1"}
	f := newWSFixture(t, alice)

	conn := f.connect(t, "u1")
	waitOnlineUsers(t, conn)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"unknown","data":{}}`)); err != nil {
		t.Fatal(err)
	}

	// Connection survives both.
	time.Sleep(100 * time.Millisecond)
	if !f.hub.Online("u1") {
		t.Fatal("connection must survive malformed frames")
	}
}

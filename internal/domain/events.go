package domain

import "encoding/json"

// Websocket event names. These are the application-level wire contract
// shared with the web client.
const (
	EventOnlineUsers = "getOnlineUsers" // server -> client: []userID
	EventNewMessage  = "newMessage"     // server -> client: Message
	EventSendMessage = "sendMessage"    // client -> server: Message
)

// Event is the envelope for every websocket frame in either direction.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEvent marshals payload into an Event envelope.
func NewEvent(name string, payload interface{}) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{Event: name, Data: data}, nil
}

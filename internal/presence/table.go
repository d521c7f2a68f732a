package presence

import (
	"sort"
	"sync"
)

// Conn is a live connection handle held by the table. The table never
// manages the connection's lifecycle; it only stores the reference for
// lookup and forwarding. Implementations are pointer types, so reference
// equality identifies a particular connection.
type Conn interface {
	UserID() string
}

// Table maps user IDs to their single active connection. It is the only
// shared mutable state between connection lifecycles; every operation is
// serialized under one mutex. The lock is never held across a network
// write.
type Table struct {
	mu    sync.RWMutex
	conns map[string]Conn
}

// NewTable creates an empty presence table.
func NewTable() *Table {
	return &Table{conns: make(map[string]Conn)}
}

// Register inserts or replaces the entry for the connection's user and
// returns the prior connection if one was displaced. The caller owns
// tearing the prior connection down so it cannot linger as a stale
// forwarding target.
func (t *Table) Register(c Conn) (prev Conn) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev = t.conns[c.UserID()]
	t.conns[c.UserID()] = c
	if prev == c {
		return nil
	}
	return prev
}

// Deregister removes the entry for the connection's user only if the
// stored reference is still this connection. A stale disconnect racing a
// newer registration is a no-op. Reports whether the table changed.
func (t *Table) Deregister(c Conn) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, ok := t.conns[c.UserID()]
	if !ok || cur != c {
		return false
	}
	delete(t.conns, c.UserID())
	return true
}

// Lookup returns the active connection for a user, if any.
func (t *Table) Lookup(userID string) (Conn, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	c, ok := t.conns[userID]
	return c, ok
}

// Snapshot returns the sorted set of online user IDs.
func (t *Table) Snapshot() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]string, 0, len(t.conns))
	for id := range t.conns {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SnapshotConns returns the online user IDs together with the connection
// list, taken atomically. The broadcaster uses it so the announced set and
// the recipients come from the same instant.
func (t *Table) SnapshotConns() ([]string, []Conn) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]string, 0, len(t.conns))
	conns := make([]Conn, 0, len(t.conns))
	for id, c := range t.conns {
		ids = append(ids, id)
		conns = append(conns, c)
	}
	sort.Strings(ids)
	return ids, conns
}

// Len returns the number of online users.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.conns)
}

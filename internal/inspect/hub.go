// Package inspect streams the animation lifecycle of FLIP sessions to
// websocket watchers and serves their current state over HTTP.
package inspect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/inamate/flip/internal/cache"
	"github.com/inamate/flip/internal/flip"
	"github.com/inamate/flip/internal/geometry"
)

var ErrUnknownSession = errors.New("unknown session")

// Control applies a watcher command to a session. It runs on the
// watcher's read loop; implementations hand the command to whoever owns
// the session.
type Control func(sessionID, command string) error

type Room struct {
	session    *flip.Session
	clients    map[string]*Client     // clientID -> client
	animations map[string]*flip.Event // flipID -> latest event
}

func NewRoom(s *flip.Session) *Room {
	return &Room{
		session:    s,
		clients:    make(map[string]*Client),
		animations: make(map[string]*flip.Event),
	}
}

type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // sessionID -> room
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	control    Control
	seq        atomic.Int64
}

func NewHub(control Control) *Hub {
	return &Hub{
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		control:    control,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return
		}
	}
}

// Register hands client to the hub. A stopped hub closes it instead.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.close()
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Track makes s visible to watchers. Pass Publish to the session as an
// observer so its events reach them.
func (h *Hub) Track(s *flip.Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[s.ID()]; !ok {
		h.rooms[s.ID()] = NewRoom(s)
	}
}

// Untrack drops s and disconnects its watchers.
func (h *Hub) Untrack(sessionID string) {
	h.mu.Lock()
	room, ok := h.rooms[sessionID]
	delete(h.rooms, sessionID)
	h.mu.Unlock()
	if !ok {
		return
	}
	for _, c := range room.clients {
		c.close()
	}
}

// Publish records ev and broadcasts it to the watchers of its session.
// It never blocks and is safe to use as a flip.Observer.
func (h *Hub) Publish(ev flip.Event) {
	h.mu.Lock()
	room, ok := h.rooms[ev.Session]
	if ok {
		switch ev.Kind {
		case flip.EventCompleted, flip.EventForgotten:
			delete(room.animations, ev.FlipID)
		default:
			e := ev
			room.animations[ev.FlipID] = &e
		}
	}
	h.mu.Unlock()
	if !ok {
		return
	}

	h.broadcastToRoom(ev.Session, newMessage(string(ev.Kind), ev.Session, ev), "")
}

func (h *Hub) Sessions() []SessionSummary {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]SessionSummary, 0, len(h.rooms))
	for id, room := range h.rooms {
		out = append(out, SessionSummary{
			ID:         id,
			RootID:     room.session.RootID(),
			Animations: len(room.animations),
			Watchers:   len(room.clients),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (h *Hub) State(sessionID string) (*SessionState, error) {
	h.mu.RLock()
	room, ok := h.rooms[sessionID]
	if !ok {
		h.mu.RUnlock()
		return nil, fmt.Errorf("%w: %q", ErrUnknownSession, sessionID)
	}
	state := &SessionState{
		ID:         sessionID,
		RootID:     room.session.RootID(),
		Animations: make(map[string]*flip.Event, len(room.animations)),
		Positions:  make(map[string]geometry.Rect),
	}
	for id, ev := range room.animations {
		e := *ev
		state.Animations[id] = &e
	}
	positions := room.session.Positions()
	h.mu.RUnlock()

	positions.Range(func(id string, e cache.Entry) bool {
		state.Positions[id] = e.Rect
		return true
	})
	return state, nil
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.SessionID]
	if !ok {
		h.mu.Unlock()
		client.Send(newMessage(TypeError, client.SessionID, ErrorPayload{Message: "unknown session"}))
		client.close()
		return
	}
	room.clients[client.ClientID] = client
	h.mu.Unlock()

	welcome := newMessage(TypeWelcome, client.SessionID, nil)
	welcome.ClientID = client.ClientID
	client.Send(welcome)

	// Send current state to the new watcher
	if state, err := h.State(client.SessionID); err == nil {
		client.Send(newMessage(TypeSessionState, client.SessionID, state))
	}

	slog.Info("watcher joined", "client", client.ClientID, "session", client.SessionID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.SessionID]
	if ok {
		if _, member := room.clients[client.ClientID]; member {
			delete(room.clients, client.ClientID)
		} else {
			ok = false
		}
	}
	h.mu.Unlock()

	if ok {
		client.close()
		slog.Info("watcher left", "client", client.ClientID, "session", client.SessionID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	var clients []*Client
	for _, room := range h.rooms {
		for _, c := range room.clients {
			clients = append(clients, c)
		}
		room.clients = make(map[string]*Client)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypeControlPause, TypeControlResume:
		h.handleControl(sender, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "client", sender.ClientID)
	}
}

func (h *Hub) handleControl(sender *Client, msg *Message) {
	if h.control == nil {
		sender.Send(newMessage(TypeError, sender.SessionID, ErrorPayload{Message: "controls are disabled"}))
		return
	}
	if err := h.control(sender.SessionID, msg.Type); err != nil {
		slog.Warn("control failed", "command", msg.Type, "session", sender.SessionID, "error", err)
		sender.Send(newMessage(TypeError, sender.SessionID, ErrorPayload{Message: err.Error()}))
		return
	}
	ack := newMessage(TypeControlAck, sender.SessionID, nil)
	ack.Seq = msg.Seq
	sender.Send(ack)
}

func (h *Hub) broadcastToRoom(sessionID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[sessionID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	msg.Seq = h.seq.Add(1)
	for _, c := range clients {
		c.Send(msg)
	}
}

package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/bisu2000/CodeTwine-Real-time-code-editor/internal/exec"
	"github.com/bisu2000/CodeTwine-Real-time-code-editor/pkg/metrics"
)

// Runner is the remote code execution service as the hub sees it: an
// opaque call that either returns a result payload or fails.
type Runner interface {
	Run(ctx context.Context, req exec.Request) (json.RawMessage, error)
}

// compileFailed is broadcast whenever the execution service errors in
// any way. Clients render it like a normal run result.
var compileFailed = json.RawMessage(`{"run":{"output":"Compilation failed."}}`)

// Hub holds every live connection and runs the session protocol. Each
// event handler runs to completion under mu before the next one starts,
// so the store and the memberships are always mutated and broadcast as
// one step. The single exception is the remote execution call, which
// runs outside the lock (see compileCode).
type Hub struct {
	log   *slog.Logger
	store *Store
	exec  Runner

	mu      sync.Mutex
	clients map[*client]struct{}
}

func NewHub(log *slog.Logger, store *Store, runner Runner) *Hub {
	return &Hub{log: log, store: store, exec: runner, clients: map[*client]struct{}{}}
}

// ServeWS handles one /ws connection for its whole lifetime. Any exit
// from the read loop counts as a disconnect and implies leaving the
// current room, if any.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := Accept(w, r)
	if err != nil {
		h.log.Error("ws.accept", "err", err)
		return
	}

	ctx := r.Context()
	c := newClient(conn)

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	metrics.ConnectionsActive.Inc()
	h.log.Debug("ws.connected")

	go c.writeLoop(ctx)

	for {
		frame, ok := c.read(ctx)
		if !ok {
			break
		}
		h.dispatch(c, frame)
	}

	h.mu.Lock()
	h.leaveLocked(c)
	delete(h.clients, c)
	h.mu.Unlock()
	metrics.ConnectionsActive.Dec()
	h.log.Debug("ws.disconnected")
	_ = c.close()
}

// dispatch decodes one inbound frame and runs its handler. Malformed
// frames and unknown events are dropped; one client's garbage must
// never disturb anyone else's session.
func (h *Hub) dispatch(c *client, frame []byte) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		h.log.Debug("ws.bad_frame", "err", err)
		metrics.EventsTotal.WithLabelValues("unknown").Inc()
		return
	}

	// Only the known event names become metric labels; anything a
	// client invents is folded into one "unknown" series, so label
	// cardinality stays bounded no matter what arrives.
	switch env.Event {
	case EvJoin, EvCodeChange, EvLeaveRoom, EvTyping, EvLanguageChange, EvCompileCode:
		metrics.EventsTotal.WithLabelValues(env.Event).Inc()
	default:
		metrics.EventsTotal.WithLabelValues("unknown").Inc()
	}

	switch env.Event {
	case EvJoin:
		var p joinPayload
		if json.Unmarshal(env.Data, &p) == nil {
			h.join(c, p)
		}
	case EvCodeChange:
		var p codeChangePayload
		if json.Unmarshal(env.Data, &p) == nil {
			h.codeChange(c, p)
		}
	case EvLeaveRoom:
		h.leaveRoom(c)
	case EvTyping:
		var p typingPayload
		if json.Unmarshal(env.Data, &p) == nil {
			h.typing(c, p)
		}
	case EvLanguageChange:
		var p languageChangePayload
		if json.Unmarshal(env.Data, &p) == nil {
			h.languageChange(c, p)
		}
	case EvCompileCode:
		var p compileCodePayload
		if json.Unmarshal(env.Data, &p) == nil {
			h.compileCode(p)
		}
	default:
		h.log.Debug("ws.unknown_event", "event", env.Event)
	}
}

// join binds the connection to a room, creating it on first use. A
// connection already in a room leaves it first, so everyone else in the
// old room sees an up-to-date member list and the one-room-per-connection
// rule holds throughout.
func (h *Hub) join(c *client, p joinPayload) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.leaveLocked(c)

	h.store.GetOrCreate(p.RoomID)
	h.store.AddMember(p.RoomID, p.UserName)
	c.sess = &membership{room: p.RoomID, name: p.UserName}

	// The joiner gets the current document, the whole room (joiner
	// included) gets the new member list.
	c.deliver(marshalEvent(EvCodeUpdate, h.store.Document(p.RoomID)))
	h.broadcastLocked(p.RoomID, nil, marshalEvent(EvUserJoined, h.store.Members(p.RoomID)))
	h.log.Info("room.join", "room", p.RoomID, "user", p.UserName)
}

// codeChange replaces the room's document and relays it to everyone but
// the author. A change for a room that was never joined is dropped:
// only join may materialize a room.
func (h *Hub) codeChange(c *client, p codeChangePayload) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.store.Has(p.RoomID) {
		return
	}
	h.store.SetDocument(p.RoomID, p.Code)
	h.broadcastLocked(p.RoomID, c, marshalEvent(EvCodeUpdate, p.Code))
}

// typing is a stateless relay; nothing is checked or stored.
func (h *Hub) typing(c *client, p typingPayload) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcastLocked(p.RoomID, c, marshalEvent(EvUserTyping, p.UserName))
}

// languageChange notifies the whole room, sender included. The language
// is not room state; it lives only in the clients.
func (h *Hub) languageChange(_ *client, p languageChangePayload) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcastLocked(p.RoomID, nil, marshalEvent(EvLanguageUpdate, p.Language))
}

// compileCode snapshots the request and hands it to the execution
// service without holding the hub lock, so edits and joins keep flowing
// while the run is pending. The snapshot may be stale by the time the
// result lands; last write wins and the result is broadcast regardless.
// The call's lifetime is detached from the issuing connection: its
// disconnect does not cancel the run, and the room still gets the
// result.
func (h *Hub) compileCode(p compileCodePayload) {
	h.mu.Lock()
	known := h.store.Has(p.RoomID)
	h.mu.Unlock()
	if !known {
		return
	}

	go func() {
		result, err := h.exec.Run(context.Background(), exec.Request{
			Language: p.Language,
			Version:  p.Version,
			Code:     p.Code,
			Stdin:    p.Input,
		})
		if err != nil {
			h.log.Warn("exec.failed", "room", p.RoomID, "lang", p.Language, "err", err)
			result = compileFailed
		}

		h.mu.Lock()
		h.broadcastLocked(p.RoomID, nil, marshalRawEvent(EvCodeResponse, result))
		h.mu.Unlock()
	}()
}

// leaveRoom handles an explicit leave. Unlike a disconnect or a room
// switch, the leaver is still connected and watching, so they get the
// shrunken member list too, not just the people staying behind.
func (h *Hub) leaveRoom(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.sess == nil {
		return
	}
	room := c.sess.room
	h.leaveLocked(c)
	c.deliver(marshalEvent(EvUserJoined, h.store.Members(room)))
}

// leaveLocked removes the connection from its current room, if any, and
// tells the room. Callers hold mu. Membership and registry binding are
// cleared together.
func (h *Hub) leaveLocked(c *client) {
	if c.sess == nil {
		return
	}
	room, name := c.sess.room, c.sess.name
	c.sess = nil

	h.store.RemoveMember(room, name)
	h.broadcastLocked(room, nil, marshalEvent(EvUserJoined, h.store.Members(room)))
	h.log.Info("room.leave", "room", room, "user", name)
}

// broadcastLocked delivers a frame to every connection bound to roomID
// at this moment, minus except when set. Fire and forget: slow clients
// are skipped, dead ones are cleaned up by their own read loops.
func (h *Hub) broadcastLocked(roomID string, except *client, frame []byte) {
	for cl := range h.clients {
		if cl == except || cl.sess == nil || cl.sess.room != roomID {
			continue
		}
		cl.deliver(frame)
		metrics.BroadcastsTotal.Inc()
	}
}

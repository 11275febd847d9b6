package ws

import (
	"context"
	"net/http"
	"time"

	"nhooyr.io/websocket"
)

// client is one live connection plus its outbound queue. sess is owned
// by the Hub and guarded by the Hub's mutex.
type client struct {
	ws   *websocket.Conn
	out  chan []byte
	sess *membership
}

// membership binds a connection to exactly one room under one display
// name. The two travel together: a client either has a membership or it
// has none, never half of one.
type membership struct {
	room string
	name string
}

// Accept upgrades HTTP to websocket (allow all origins, same as the
// CORS policy on the rest of the surface)
func Accept(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  []string{"*"},
		CompressionMode: websocket.CompressionDisabled,
	})
}

func newClient(ws *websocket.Conn) *client {
	return &client{ws: ws, out: make(chan []byte, 256)}
}

// read blocks until a text/binary frame arrives.
// Returns false once the connection is closed.
func (c *client) read(ctx context.Context) ([]byte, bool) {
	for {
		typ, data, err := c.ws.Read(ctx)
		if err != nil {
			return nil, false
		}
		if typ == websocket.MessageText || typ == websocket.MessageBinary {
			return data, true
		}
	}
}

// writeLoop drains the outbound queue and keeps the connection alive
// with periodic pings. Exits when ctx is cancelled.
func (c *client) writeLoop(ctx context.Context) {
	t := time.NewTicker(20 * time.Second)
	defer t.Stop()

	for {
		select {
		case b := <-c.out:
			_ = c.ws.Write(ctx, websocket.MessageText, b)
		case <-t.C:
			_ = c.ws.Ping(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// deliver queues a frame without blocking; a client that cannot keep up
// loses frames rather than stalling the sender.
func (c *client) deliver(b []byte) {
	select {
	case c.out <- b:
	default:
	}
}

// close closes the WS connection normally
func (c *client) close() error { return c.ws.Close(websocket.StatusNormalClosure, "bye") }

package transport

import (
	"bytes"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/creditmesh/corenet/mcwire"
)

// wsConn adapts a gorilla/websocket connection to Conn. Each websocket
// binary frame carries exactly one framed mcwire.Message; unlike the raw
// stream Conn, there's no need to worry about message boundaries since
// the websocket layer already delimits frames for us.
type wsConn struct {
	ws *websocket.Conn
}

func newWSConn(ws *websocket.Conn) *wsConn {
	return &wsConn{ws: ws}
}

func (c *wsConn) ReadMessage() (mcwire.Message, error) {
	_, payload, err := c.ws.ReadMessage()
	if err != nil {
		return nil, err
	}
	return mcwire.ReadMessage(bytes.NewReader(payload))
}

func (c *wsConn) WriteMessage(msg mcwire.Message) error {
	var buf bytes.Buffer
	if _, err := mcwire.WriteMessage(&buf, msg); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.BinaryMessage, buf.Bytes())
}

func (c *wsConn) Close() error { return c.ws.Close() }

func (c *wsConn) RemoteAddr() string { return c.ws.RemoteAddr().String() }

// DialWebsocket opens a client-side websocket connection to the given
// ws:// or wss:// URL and wraps it as a Conn — the minimum relay tunnel
// §1 allows: just enough to frame the handshake and onward MoveToken
// traffic, not a general multiplexed transport.
func DialWebsocket(url string) (Conn, error) {
	dialer := websocket.DefaultDialer
	ws, _, err := dialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return newWSConn(ws), nil
}

// WebsocketUpgrader upgrades an inbound HTTP request to a websocket Conn,
// for a relay-facing listener that accepts friend connections over HTTP(S).
type WebsocketUpgrader struct {
	upgrader websocket.Upgrader
}

// NewWebsocketUpgrader returns an upgrader with permissive defaults; the
// caller is expected to authenticate the friend during the handshake
// exchange that follows, not at the HTTP layer.
func NewWebsocketUpgrader() *WebsocketUpgrader {
	return &WebsocketUpgrader{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Upgrade promotes the HTTP request to a websocket Conn.
func (u *WebsocketUpgrader) Upgrade(w http.ResponseWriter, r *http.Request) (Conn, error) {
	ws, err := u.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return newWSConn(ws), nil
}

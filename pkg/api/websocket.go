package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/hemanth5544/Order-Execution-Engine/pkg/broadcast"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins (CORS handled by main server)
		return true
	},
}

var errSendBufferFull = errors.New("subscriber send buffer full")

// wsClient is one WebSocket connection observing a single order. It
// implements broadcast.Subscriber: Send never blocks, and a full buffer
// counts as a dead client so the hub prunes it.
type wsClient struct {
	conn    *websocket.Conn
	send    chan []byte
	orderID string
}

func (c *wsClient) Send(u broadcast.StatusUpdate) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	select {
	case c.send <- data:
		return nil
	default:
		return errSendBufferFull
	}
}

// readPump discards inbound frames and detects disconnects.
func (c *wsClient) readPump(onClose func()) {
	defer func() {
		onClose()
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump pumps status updates to the connection and keeps it alive with
// pings.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleOrderSocket upgrades the connection and attaches it as a status
// subscriber for the order in the path.
func (s *Server) handleOrderSocket(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	order, err := s.store.GetOrder(orderID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load order", "")
		return
	}
	if order == nil {
		respondError(w, http.StatusNotFound, "order not found", "")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorw("ws_upgrade_failed", "order_id", orderID, "err", err)
		return
	}

	client := &wsClient{
		conn:    conn,
		send:    make(chan []byte, 64),
		orderID: orderID,
	}

	s.hub.Subscribe(orderID, client)
	s.logger.Infow("ws_client_connected", "order_id", orderID, "remote", conn.RemoteAddr().String())

	go client.writePump()
	go client.readPump(func() {
		s.hub.Unsubscribe(orderID, client)
		close(client.send)
		s.logger.Infow("ws_client_disconnected", "order_id", orderID)
	})
}

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// MessageType identifies a WebSocket message.
type MessageType string

const (
	MsgTypeEvaluate MessageType = "evaluate"
	MsgTypeMove     MessageType = "move"
	MsgTypeReset    MessageType = "reset"
	MsgTypeState    MessageType = "state"
	MsgTypeError    MessageType = "error"
	MsgTypePing     MessageType = "ping"
	MsgTypePong     MessageType = "pong"
)

// Message is the envelope for all WebSocket messages.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// EvaluatePayload carries a formula change.
type EvaluatePayload struct {
	Formula string `json:"formula"`
}

// MovePayload carries a region drag.
type MovePayload struct {
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func (c *client) writePump() {
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 16)}
	s.clientMu.Lock()
	s.clients[c] = true
	s.clientMu.Unlock()

	s.log.Debug().Str("remote", r.RemoteAddr).Msg("websocket client connected")

	go c.writePump()

	// New clients immediately see the current state.
	s.sendState(c)
	s.readLoop(c)
}

func (s *Server) readLoop(c *client) {
	defer func() {
		s.removeClient(c)
		c.conn.Close()
		close(c.send)
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.sendError(c, "could not parse message")
			continue
		}
		s.handleMessage(c, &msg)
	}
}

func (s *Server) handleMessage(c *client, msg *Message) {
	switch msg.Type {
	case MsgTypeEvaluate:
		var p EvaluatePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			s.sendError(c, "invalid evaluate payload")
			return
		}
		s.mu.Lock()
		s.formula = p.Formula
		result, err := s.evaluate()
		s.mu.Unlock()
		if err != nil {
			s.log.Warn().Str("formula", p.Formula).Err(err).Msg("formula rejected")
		} else {
			s.record(context.Background(), p.Formula, result)
		}
		s.broadcast()

	case MsgTypeMove:
		var p MovePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			s.sendError(c, "invalid move payload")
			return
		}
		s.mu.Lock()
		err := s.board.MoveRegion(p.Name, p.X, p.Y)
		s.mu.Unlock()
		if err != nil {
			s.sendError(c, err.Error())
			return
		}
		s.broadcast()

	case MsgTypeReset:
		s.mu.Lock()
		s.board.Reset()
		s.formula = DefaultFormula
		s.mu.Unlock()
		s.broadcast()

	case MsgTypePing:
		s.sendMessage(c, MsgTypePong, nil)

	default:
		s.sendError(c, "unknown message type")
	}
}

func (s *Server) removeClient(c *client) {
	s.clientMu.Lock()
	delete(s.clients, c)
	s.clientMu.Unlock()
}

func (s *Server) sendMessage(c *client, msgType MessageType, payload any) {
	data, err := marshalMessage(msgType, payload)
	if err != nil {
		s.log.Error().Err(err).Msg("marshal message failed")
		return
	}
	select {
	case c.send <- data:
	default:
		// Slow client; drop the message rather than block the board.
	}
}

func (s *Server) sendState(c *client) {
	s.sendMessage(c, MsgTypeState, s.state())
}

func (s *Server) sendError(c *client, detail string) {
	s.sendMessage(c, MsgTypeError, map[string]string{"error": detail})
}

// broadcast pushes the current state to every connected client.
func (s *Server) broadcast() {
	s.clientMu.Lock()
	defer s.clientMu.Unlock()
	if len(s.clients) == 0 {
		return
	}

	data, err := marshalMessage(MsgTypeState, s.state())
	if err != nil {
		s.log.Error().Err(err).Msg("marshal state failed")
		return
	}
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

func marshalMessage(msgType MessageType, payload any) ([]byte, error) {
	msg := Message{Type: msgType}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		msg.Payload = data
	}
	return json.Marshal(msg)
}

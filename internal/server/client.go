package server

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/pokebattle/battle-server-go/internal/game"
)

// ClientMessage is one decoded action from the browser.
type ClientMessage struct {
	Type     string `json:"type"`
	CardID   string `json:"card_id,omitempty"`
	TargetID string `json:"target_id,omitempty"`
	Zone     string `json:"zone,omitempty"`
	Index    int    `json:"index"`
}

// ServerMessage is one frame pushed to the browser.
type ServerMessage struct {
	Type   string `json:"type"`
	Reason string `json:"reason,omitempty"`
	Detail string `json:"detail,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// Client is one websocket connection playing the human seat of one match.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	logger *zap.Logger

	engine *game.Engine
}

const sendBuffer = 256

func newClient(hub *Hub, conn *websocket.Conn, logger *zap.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		logger: logger,
	}
}

// pushView sends the client's current human-side view.
func (c *Client) pushView() {
	if c.engine == nil {
		return
	}
	c.reply(ServerMessage{Type: "view", Data: c.engine.View(game.SeatHuman)})
}

func (c *Client) reply(msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("marshal reply", zap.Error(err))
		return
	}
	select {
	case c.send <- data:
	default:
		// Slow consumer; the next state push carries the full view anyway.
		c.logger.Warn("dropping frame for slow client")
	}
}

// handleMessage dispatches one decoded client action against the match.
func (c *Client) handleMessage(ctx context.Context, msg ClientMessage) {
	if msg.Type == "new_game" {
		c.startMatch(ctx)
		return
	}
	if c.engine == nil {
		c.reply(ServerMessage{Type: "error", Reason: "no_game", Detail: "send new_game first"})
		return
	}

	var err error
	switch msg.Type {
	case "place_pokemon":
		err = c.engine.PlacePokemon(ctx, msg.CardID, game.Zone(msg.Zone), msg.Index)
	case "confirm_setup":
		err = c.engine.ConfirmSetup(ctx)
	case "restart_setup":
		err = c.engine.RestartSetup(ctx)
	case "draw":
		err = c.engine.Draw(ctx)
	case "attach_energy":
		err = c.engine.StartAttachEnergy(ctx, msg.CardID)
	case "attach_target":
		err = c.engine.CompleteAttachEnergy(ctx, msg.TargetID)
	case "cancel":
		err = c.engine.CancelPending(ctx)
	case "evolve":
		err = c.engine.Evolve(ctx, msg.CardID, game.Zone(msg.Zone), msg.Index)
	case "retreat":
		err = c.engine.StartRetreat(ctx)
	case "retreat_to":
		err = c.engine.CompleteRetreat(ctx, msg.Index)
	case "attack":
		err = c.engine.Attack(ctx, msg.Index)
	case "end_turn":
		err = c.engine.EndTurn(ctx)
	case "take_prize":
		err = c.engine.TakePrize(ctx, msg.Index)
	case "promote":
		err = c.engine.PromoteActive(ctx, msg.Index)
	default:
		c.reply(ServerMessage{Type: "error", Reason: "unknown_type", Detail: msg.Type})
		return
	}

	if err != nil {
		if rej, ok := game.IsRejected(err); ok {
			c.reply(ServerMessage{Type: "rejected", Reason: string(rej.Reason), Detail: rej.Message})
			return
		}
		c.logger.Error("action failed",
			zap.String("type", msg.Type),
			zap.Error(err),
		)
		c.reply(ServerMessage{Type: "error", Reason: "internal", Detail: err.Error()})
		return
	}
	c.pushView()
}

func (c *Client) startMatch(ctx context.Context) {
	if c.engine != nil {
		c.hub.manager.Remove(c.engine.GameID())
	}
	e, err := c.hub.manager.Create(ctx)
	if err != nil {
		c.logger.Error("create match", zap.Error(err))
		c.reply(ServerMessage{Type: "error", Reason: "create_failed", Detail: err.Error()})
		return
	}
	c.engine = e

	// Every committed mutation on the opponent's clock reaches the browser
	// through this push; human actions also push from handleMessage.
	e.Subscribe(func(n game.Notification) {
		c.reply(ServerMessage{Type: "notification", Data: n})
		c.pushView()
	})
	c.pushView()
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("bad client frame", zap.Error(err))
			c.reply(ServerMessage{Type: "error", Reason: "bad_frame", Detail: err.Error()})
			continue
		}
		c.handleMessage(ctx, msg)
	}
}

const writeTimeout = 10 * time.Second

func (c *Client) writePump() {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

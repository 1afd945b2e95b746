package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/frontline-tcg/frontline-server/internal/game"
	"github.com/frontline-tcg/frontline-server/internal/game/rules"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is the wire envelope in both directions.
type Message struct {
	Type     string          `json:"type"`
	MatchID  string          `json:"match_id,omitempty"`
	PlayerID string          `json:"player_id,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type eventPayload struct {
	Type      string            `json:"type"`
	MatchID   string            `json:"match_id"`
	PlayerID  string            `json:"player_id,omitempty"`
	CardID    string            `json:"card_id,omitempty"`
	SourceID  string            `json:"source_id,omitempty"`
	TargetIDs []string          `json:"target_ids,omitempty"`
	Amount    int               `json:"amount,omitempty"`
	Slot      int               `json:"slot"`
	Turn      int               `json:"turn"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type startMatchPayload struct {
	First  game.PlayerSetup `json:"first"`
	Second game.PlayerSetup `json:"second"`
	Seed   int64            `json:"seed"`
}

type commandPayload struct {
	CardID     string `json:"card_id"`
	AbilityID  string `json:"ability_id"`
	TargetID   string `json:"target_id"`
	AttackerID string `json:"attacker_id"`
	DefenderID string `json:"defender_id"`
	Slot       int    `json:"slot"`
}

type client struct {
	conn     *websocket.Conn
	send     chan []byte
	matchID  string
	playerID string
}

// Gateway bridges websocket clients to the match engine. Players join a
// match seat to issue commands; clients that join without a seat become
// spectators and receive the masked view plus the event stream.
type Gateway struct {
	engine     *game.Engine
	logger     *zap.Logger
	maxMatches int

	mu      sync.RWMutex
	clients map[*client]bool
}

func NewGateway(engine *game.Engine, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Gateway{
		engine:  engine,
		logger:  logger,
		clients: make(map[*client]bool),
	}
	engine.SetEventHandler(g.onEvent)
	return g
}

// SetMaxMatches caps how many matches the gateway will start. Zero means
// unlimited.
func (g *Gateway) SetMaxMatches(n int) {
	g.maxMatches = n
}

// Handler returns the HTTP handler for the websocket endpoint.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", g.serveWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func (g *Gateway) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, 256),
	}

	g.mu.Lock()
	g.clients[c] = true
	g.mu.Unlock()

	go c.writePump()
	go g.readPump(c)
}

func (g *Gateway) readPump(c *client) {
	defer func() {
		g.mu.Lock()
		if g.clients[c] {
			delete(g.clients, c)
			close(c.send)
		}
		g.mu.Unlock()
		c.conn.Close()
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			g.sendError(c, "BAD_MESSAGE", "malformed message")
			continue
		}
		g.handleMessage(c, msg)
	}
}

func (c *client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

func (g *Gateway) handleMessage(c *client, msg Message) {
	switch msg.Type {
	case "start_match":
		var payload startMatchPayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			g.sendError(c, "BAD_MESSAGE", "malformed start_match payload")
			return
		}
		if g.maxMatches > 0 && g.engine.MatchCount() >= g.maxMatches {
			g.sendError(c, "SERVER_FULL", "match capacity reached")
			return
		}
		if err := g.engine.StartMatch(msg.MatchID, payload.First, payload.Second, payload.Seed); err != nil {
			g.sendGameError(c, err)
			return
		}
		c.matchID = msg.MatchID
		c.playerID = msg.PlayerID
		g.pushView(c)

	case "join":
		c.matchID = msg.MatchID
		c.playerID = msg.PlayerID
		g.pushView(c)

	case "view":
		g.pushView(c)

	default:
		g.handleCommand(c, msg)
	}
}

func (g *Gateway) handleCommand(c *client, msg Message) {
	matchID, playerID := c.matchID, c.playerID
	if msg.MatchID != "" {
		matchID = msg.MatchID
	}
	if msg.PlayerID != "" {
		playerID = msg.PlayerID
	}

	var payload commandPayload
	if len(msg.Data) > 0 {
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			g.sendError(c, "BAD_MESSAGE", "malformed command payload")
			return
		}
	}

	var err error
	switch msg.Type {
	case "deploy":
		err = g.engine.DeployCard(matchID, playerID, payload.CardID, payload.Slot)
	case "play_order":
		err = g.engine.PlayOrder(matchID, playerID, payload.CardID, payload.TargetID)
	case "attack":
		_, err = g.engine.Attack(matchID, playerID, payload.AttackerID, payload.DefenderID)
	case "activate":
		err = g.engine.ActivateAbility(matchID, playerID, payload.CardID, payload.AbilityID, payload.TargetID)
	case "draw":
		_, err = g.engine.DrawCard(matchID, playerID)
	case "discard":
		err = g.engine.DiscardCard(matchID, playerID, payload.CardID)
	case "advance_phase":
		_, err = g.engine.AdvancePhase(matchID, playerID)
	case "end_turn":
		err = g.engine.EndTurn(matchID, playerID)
	case "concede":
		err = g.engine.Concede(matchID, playerID)
	default:
		g.sendError(c, "UNKNOWN_COMMAND", msg.Type)
		return
	}

	if err != nil {
		g.sendGameError(c, err)
		return
	}
	g.broadcastViews(matchID)
}

// onEvent forwards every engine event to the clients watching its match.
func (g *Gateway) onEvent(event rules.Event) {
	payload := eventPayload{
		Type:      string(event.Type),
		MatchID:   event.MatchID,
		PlayerID:  event.PlayerID,
		CardID:    event.CardID,
		SourceID:  event.SourceID,
		TargetIDs: event.TargetIDs,
		Amount:    event.Amount,
		Slot:      event.Slot,
		Turn:      event.Turn,
		Metadata:  event.Metadata,
	}
	raw, err := json.Marshal(Message{Type: "event", MatchID: event.MatchID, Data: mustMarshal(payload)})
	if err != nil {
		return
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	for c := range g.clients {
		if c.matchID != event.MatchID {
			continue
		}
		select {
		case c.send <- raw:
		default:
			// slow client, drop the event rather than block the match
		}
	}
}

// broadcastViews pushes a fresh, per-seat masked view to every client of
// the match after a successful command.
func (g *Gateway) broadcastViews(matchID string) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for c := range g.clients {
		if c.matchID == matchID {
			g.pushViewLocked(c)
		}
	}
}

func (g *Gateway) pushView(c *client) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	g.pushViewLocked(c)
}

func (g *Gateway) pushViewLocked(c *client) {
	view, err := g.engine.MatchView(c.matchID, c.playerID)
	if err != nil {
		g.trySend(c, mustMarshal(Message{
			Type:    "error",
			MatchID: c.matchID,
			Data:    mustMarshal(errorPayload{Code: string(game.ErrCode(err)), Message: err.Error()}),
		}))
		return
	}
	g.trySend(c, mustMarshal(Message{
		Type:    "match_state",
		MatchID: c.matchID,
		Data:    mustMarshal(view),
	}))
}

func (g *Gateway) sendGameError(c *client, err error) {
	code := game.ErrCode(err)
	if code == "" {
		code = "INTERNAL"
	}
	g.sendError(c, string(code), err.Error())
}

func (g *Gateway) sendError(c *client, code, message string) {
	g.trySend(c, mustMarshal(Message{
		Type: "error",
		Data: mustMarshal(errorPayload{Code: code, Message: message}),
	}))
}

func (g *Gateway) trySend(c *client, raw []byte) {
	select {
	case c.send <- raw:
	default:
	}
}

func mustMarshal(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return raw
}

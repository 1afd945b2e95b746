package game

import (
	"math/rand"
	"sync"

	"go.uber.org/zap"

	"github.com/frontline-tcg/frontline-server/internal/catalog"
	"github.com/frontline-tcg/frontline-server/internal/game/modifiers"
	"github.com/frontline-tcg/frontline-server/internal/game/rules"
)

// Rules holds the tunable match parameters. The battlefield size, credit cap
// and hand limit are fixed; these are the knobs balance iterates on.
type Rules struct {
	StartingCredits  int
	CreditIncome     int
	StartingHandSize int
}

// DefaultRules returns the shipped balance values.
func DefaultRules() Rules {
	return Rules{
		StartingCredits:  0,
		CreditIncome:     3,
		StartingHandSize: 4,
	}
}

// Engine hosts concurrent matches over a shared catalog. Commands against a
// single match run to completion, including every cascaded trigger, before
// the next command is accepted for that match; distinct matches do not block
// each other.
type Engine struct {
	catalog  *catalog.Catalog
	specials map[string]SpecialHandler
	rules    Rules
	logger   *zap.Logger

	mu      sync.RWMutex
	matches map[string]*matchState
	handler func(rules.Event)
}

// NewEngine creates an engine over a loaded catalog. The registry must be
// the same one whose IDs validated the catalog.
func NewEngine(cat *catalog.Catalog, registry *SpecialRegistry, gameRules Rules, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	specials := make(map[string]SpecialHandler)
	if registry != nil {
		for id, handler := range registry.handlers {
			specials[id] = handler
		}
	}
	return &Engine{
		catalog:  cat,
		specials: specials,
		rules:    gameRules,
		logger:   logger,
		matches:  make(map[string]*matchState),
	}
}

// SetEventHandler installs a callback that receives every event from every
// match. Events are delivered synchronously from within command processing,
// so the handler must not call back into the engine.
func (e *Engine) SetEventHandler(handler func(rules.Event)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handler = handler
}

func (e *Engine) notify(event rules.Event) {
	e.mu.RLock()
	handler := e.handler
	e.mu.RUnlock()
	if handler != nil {
		handler(event)
	}
}

// PlayerSetup names one participant and the deck they bring.
type PlayerSetup struct {
	PlayerID string
	DeckID   string
}

// StartMatch creates a match, builds and shuffles both decks, deals opening
// hands and runs the first player's turn start. The seed fully determines
// shuffles and random targeting, so replays with the same seed and commands
// reproduce the same match.
func (e *Engine) StartMatch(matchID string, first, second PlayerSetup, seed int64) error {
	e.mu.Lock()
	if _, exists := e.matches[matchID]; exists {
		e.mu.Unlock()
		return validationErr(CodeMatchExists, "match %s already exists", matchID)
	}
	e.mu.Unlock()

	m := &matchState{
		id:         matchID,
		seed:       seed,
		rng:        rand.New(rand.NewSource(seed)),
		players:    make(map[string]*Player),
		order:      [2]string{first.PlayerID, second.PlayerID},
		turns:      rules.NewTurnManager(first.PlayerID),
		bus:        rules.NewEventBus(),
		globalMods: modifiers.NewSet(),
		cards:      make(map[string]*Card),
	}
	m.bus.Subscribe(e.notify)

	for _, setup := range []PlayerSetup{first, second} {
		deck, ok := e.catalog.Deck(setup.DeckID)
		if !ok {
			return validationErr(CodeCardNotFound, "unknown deck %s", setup.DeckID)
		}
		cards, hq := buildDeck(e.catalog, deck, setup.PlayerID)
		m.rng.Shuffle(len(cards), func(i, j int) {
			cards[i], cards[j] = cards[j], cards[i]
		})

		p := &Player{
			ID:           setup.PlayerID,
			Faction:      deck.Faction,
			Credits:      e.rules.StartingCredits,
			Deck:         cards,
			Headquarters: hq,
		}
		for _, card := range cards {
			m.registerCard(card)
		}
		m.registerCard(hq)
		m.players[setup.PlayerID] = p
	}

	e.mu.Lock()
	if _, exists := e.matches[matchID]; exists {
		e.mu.Unlock()
		return validationErr(CodeMatchExists, "match %s already exists", matchID)
	}
	e.matches[matchID] = m
	e.mu.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, seat := range m.order {
		p := m.players[seat]
		for i := 0; i < e.rules.StartingHandSize; i++ {
			if _, err := p.DrawCard(false); err != nil {
				break
			}
		}
	}

	m.emit(rules.NewEvent(rules.EventMatchStarted, matchID, first.PlayerID, ""))
	e.logger.Info("match started",
		zap.String("match_id", matchID),
		zap.String("first_player", first.PlayerID),
		zap.String("second_player", second.PlayerID),
		zap.Int64("seed", seed),
	)

	e.startTurn(m)
	return nil
}

// MatchCount reports the number of matches currently held by the engine,
// finished or not.
func (e *Engine) MatchCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.matches)
}

func (e *Engine) match(matchID string) (*matchState, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	m, ok := e.matches[matchID]
	if !ok {
		return nil, validationErr(CodeMatchNotFound, "match %s not found", matchID)
	}
	return m, nil
}

// Result returns the match outcome, or nil while the match is running.
func (e *Engine) Result(matchID string) (*MatchResult, error) {
	m, err := e.match(matchID)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.result == nil {
		return nil, nil
	}
	result := *m.result
	return &result, nil
}

// CloseMatch drops a finished match from the engine. Running matches are
// refused.
func (e *Engine) CloseMatch(matchID string) error {
	m, err := e.match(matchID)
	if err != nil {
		return err
	}
	m.mu.RLock()
	running := m.result == nil
	m.mu.RUnlock()
	if running {
		return validationErr(CodeMatchOver, "match %s is still running", matchID)
	}
	e.mu.Lock()
	delete(e.matches, matchID)
	e.mu.Unlock()
	return nil
}

// Subscribe attaches a listener to one match's event stream. Returns the
// handle needed to unsubscribe.
func (e *Engine) Subscribe(matchID string, listener rules.Listener) (int, error) {
	m, err := e.match(matchID)
	if err != nil {
		return -1, err
	}
	return m.bus.Subscribe(listener), nil
}

// Unsubscribe detaches a listener previously attached with Subscribe.
func (e *Engine) Unsubscribe(matchID string, handle int) {
	if m, err := e.match(matchID); err == nil {
		m.bus.Unsubscribe(handle)
	}
}

// checkTurn enforces that the command issuer is the current player.
func (m *matchState) checkTurn(playerID string) error {
	if m.result != nil {
		return validationErr(CodeMatchOver, "match %s is over", m.id)
	}
	if _, ok := m.players[playerID]; !ok {
		return validationErr(CodeMatchNotFound, "player %s is not in match %s", playerID, m.id)
	}
	if m.turns.CurrentPlayer() != playerID {
		return validationErr(CodeNotPlayersTurn, "it is %s's turn", m.turns.CurrentPlayer())
	}
	return nil
}

func (m *matchState) checkPhase(allowed ...rules.Phase) error {
	current := m.turns.CurrentPhase()
	for _, phase := range allowed {
		if current == phase {
			return nil
		}
	}
	return validationErr(CodeWrongPhase, "not allowed during %s", current)
}

// AdvancePhase moves the match to the next phase. Advancing out of the end
// phase runs the full end-of-turn sequence and starts the opponent's turn.
func (e *Engine) AdvancePhase(matchID, playerID string) (rules.Phase, error) {
	m, err := e.match(matchID)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkTurn(playerID); err != nil {
		return 0, err
	}

	if m.turns.CurrentPhase() == rules.PhaseEnd {
		e.finishTurn(m)
		return m.turns.CurrentPhase(), nil
	}

	next := m.turns.AdvancePhase(m.opponentOf(playerID).ID)
	event := rules.NewEvent(rules.EventPhaseChanged, m.id, m.turns.CurrentPlayer(), "")
	event.Metadata["phase"] = next.String()
	m.emit(event)
	return next, nil
}

// EndTurn ends the current player's turn from any phase.
func (e *Engine) EndTurn(matchID, playerID string) error {
	m, err := e.match(matchID)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkTurn(playerID); err != nil {
		return err
	}
	e.finishTurn(m)
	return nil
}

// Concede ends the match immediately in the opponent's favor. Either player
// may concede at any time.
func (e *Engine) Concede(matchID, playerID string) error {
	m, err := e.match(matchID)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.result != nil {
		return validationErr(CodeMatchOver, "match %s is over", m.id)
	}
	if _, ok := m.players[playerID]; !ok {
		return validationErr(CodeMatchNotFound, "player %s is not in match %s", playerID, m.id)
	}
	e.endMatch(m, m.opponentOf(playerID).ID)
	return nil
}

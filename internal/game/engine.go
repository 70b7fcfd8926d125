package game

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nepalkings/kings-server/internal/game/cards"
	"github.com/nepalkings/kings-server/internal/game/figures"
	"github.com/nepalkings/kings-server/internal/game/spells"
	"go.uber.org/zap"
)

// RulesConfig carries the tunable rule constants.
type RulesConfig struct {
	MinMainCards  int
	MinSideCards  int
	MaxMainSlots  int
	MaxSideSlots  int
	DealMainCards int
	DealSideCards int
	TurnsPerRound int
}

// DefaultRules returns the standard rule constants.
func DefaultRules() RulesConfig {
	return RulesConfig{
		MinMainCards:  4,
		MinSideCards:  3,
		MaxMainSlots:  10,
		MaxSideSlots:  8,
		DealMainCards: 5,
		DealSideCards: 4,
		TurnsPerRound: 6,
	}
}

// Store is the persistence collaborator the engine writes through at
// commit points. The engine itself is authoritative in memory.
type Store interface {
	AppendLog(ctx context.Context, gameID string, entry LogEntry) error
	AppendChat(ctx context.Context, msg ChatMessage) error
	SaveGameState(ctx context.Context, gameID string, state GameState, round int, turnPlayerID string) error
}

// NopStore discards all writes. Used by tests and by deployments
// without a database.
type NopStore struct{}

func (NopStore) AppendLog(context.Context, string, LogEntry) error { return nil }
func (NopStore) AppendChat(context.Context, ChatMessage) error     { return nil }
func (NopStore) SaveGameState(context.Context, string, GameState, int, string) error {
	return nil
}

// gameInstance is the internal state of a single game. All access is
// serialized through mu; every mutating operation re-validates against
// current state under the lock before committing.
type gameInstance struct {
	id                        string
	state                     GameState
	currentRound              int
	turnPlayerID              string
	invaderPlayerID           string
	pendingSpellID            string
	waitingForCounterPlayerID string
	battleModifier            string
	players                   map[string]*Player
	playerOrder               []string
	store                     *cards.Store
	figures                   map[string]*Figure
	activeSpells              map[string]*ActiveSpell
	log                       []LogEntry
	seenStart                 map[string]bool
	// lastSummarized remembers, per player, how far into the log the
	// turn summary has already reported.
	lastSummarized map[string]int
	startedAt      time.Time
	mu             sync.RWMutex
}

// opponentOf returns the other player's ID.
func (g *gameInstance) opponentOf(playerID string) string {
	for _, id := range g.playerOrder {
		if id != playerID {
			return id
		}
	}
	return ""
}

// infiniteHammerFor returns the active Infinite Hammer spell for a
// player, if any.
func (g *gameInstance) infiniteHammerFor(playerID string) *ActiveSpell {
	for _, spell := range g.activeSpells {
		if spell.Active && spell.Name == spells.InfiniteHammer && spell.CasterID == playerID {
			return spell
		}
	}
	return nil
}

// visionActiveFor reports whether an All Seeing Eye effect currently
// grants the player sight of the opponent's hidden board.
func (g *gameInstance) visionActiveFor(playerID string) bool {
	for _, spell := range g.activeSpells {
		if !spell.Active || spell.Name != spells.AllSeeingEye || spell.CasterID != playerID {
			continue
		}
		if vision, ok := spell.Effect.(VisionEffect); ok && vision.UntilRound >= g.currentRound {
			return true
		}
	}
	return false
}

// playerFigures returns the player's board figures in stable ID order.
func (g *gameInstance) playerFigures(playerID string) []*Figure {
	var result []*Figure
	for _, fig := range g.figures {
		if fig.PlayerID == playerID {
			result = append(result, fig)
		}
	}
	sortFiguresByID(result)
	return result
}

func sortFiguresByID(figs []*Figure) {
	for i := 1; i < len(figs); i++ {
		for j := i; j > 0 && figs[j-1].ID > figs[j].ID; j-- {
			figs[j-1], figs[j] = figs[j], figs[j-1]
		}
	}
}

// KingsEngine is the rules engine. It owns every in-progress game,
// serializes the two players' requests against the shared game state,
// and publishes notifications on committed changes.
type KingsEngine struct {
	logger   *zap.Logger
	figCat   *figures.Catalog
	spellCat *spells.Catalog
	store    Store
	rules    RulesConfig
	rng      *rand.Rand

	mu                  sync.RWMutex
	games               map[string]*gameInstance
	notificationHandler NotificationHandler
}

// NewKingsEngine creates the engine with catalogs built once and
// shared by every game.
func NewKingsEngine(logger *zap.Logger, store Store, rules RulesConfig) *KingsEngine {
	if store == nil {
		store = NopStore{}
	}
	return &KingsEngine{
		logger:   logger,
		figCat:   figures.NewCatalog(),
		spellCat: spells.NewCatalog(),
		store:    store,
		rules:    rules,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		games:    make(map[string]*gameInstance),
	}
}

// FigureCatalog exposes the immutable figure catalog.
func (e *KingsEngine) FigureCatalog() *figures.Catalog {
	return e.figCat
}

// SpellCatalog exposes the immutable spell catalog.
func (e *KingsEngine) SpellCatalog() *spells.Catalog {
	return e.spellCat
}

// SetNotificationHandler registers the handler for game notifications.
func (e *KingsEngine) SetNotificationHandler(handler NotificationHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notificationHandler = handler
}

// emitNotification sends a notification to the registered handler in a
// goroutine so game logic never blocks on slow consumers.
func (e *KingsEngine) emitNotification(notification GameNotification) {
	e.mu.RLock()
	handler := e.notificationHandler
	e.mu.RUnlock()

	if handler != nil {
		go handler(notification)
	}
}

func (e *KingsEngine) notify(notificationType, gameID, playerID string, data map[string]interface{}) {
	e.emitNotification(GameNotification{
		Type:      notificationType,
		GameID:    gameID,
		PlayerID:  playerID,
		Timestamp: time.Now(),
		Data:      data,
	})
}

// getGame looks up a game instance.
func (e *KingsEngine) getGame(gameID string) (*gameInstance, error) {
	e.mu.RLock()
	g, ok := e.games[gameID]
	e.mu.RUnlock()
	if !ok {
		return nil, notFound("game", gameID)
	}
	return g, nil
}

// CreateGame starts a new game between two users: builds and shuffles
// both sub-decks, deals the opening hands, and hands the first turn to
// the invader.
func (e *KingsEngine) CreateGame(invaderUserID, defenderUserID string) (string, error) {
	if invaderUserID == "" || defenderUserID == "" {
		return "", validationf("two players are required to start a game")
	}
	if invaderUserID == defenderUserID {
		return "", validationf("a player cannot play against themselves")
	}

	gameID := uuid.New().String()
	store := cards.NewStore(gameID, rand.New(rand.NewSource(e.rng.Int63())))
	store.ShuffleAll()

	invader := &Player{ID: uuid.New().String(), UserID: invaderUserID, GameID: gameID, TurnsLeft: e.rules.TurnsPerRound}
	defender := &Player{ID: uuid.New().String(), UserID: defenderUserID, GameID: gameID, TurnsLeft: e.rules.TurnsPerRound}

	if err := store.Deal([]string{invader.ID, defender.ID}, e.rules.DealMainCards, e.rules.DealSideCards); err != nil {
		return "", fmt.Errorf("dealing opening hands: %w", err)
	}

	g := &gameInstance{
		id:              gameID,
		state:           GameStateInProgress,
		currentRound:    1,
		turnPlayerID:    invader.ID,
		invaderPlayerID: invader.ID,
		players: map[string]*Player{
			invader.ID:  invader,
			defender.ID: defender,
		},
		playerOrder:    []string{invader.ID, defender.ID},
		store:          store,
		figures:        make(map[string]*Figure),
		activeSpells:   make(map[string]*ActiveSpell),
		seenStart:      make(map[string]bool),
		lastSummarized: make(map[string]int),
		startedAt:      time.Now(),
	}

	e.mu.Lock()
	e.games[gameID] = g
	e.mu.Unlock()

	g.mu.Lock()
	e.addLog(g, LogEntry{Message: "The kingdoms take the field", AuthorID: "", Type: LogTypeSystem})
	g.mu.Unlock()

	e.notify("GAME_CREATED", gameID, "", map[string]interface{}{
		"invader_player_id":  invader.ID,
		"defender_player_id": defender.ID,
	})

	if e.logger != nil {
		e.logger.Info("game created",
			zap.String("game_id", gameID),
			zap.String("invader", invaderUserID),
			zap.String("defender", defenderUserID),
		)
	}

	return gameID, nil
}

// PlayerByUser resolves a user's player in a game.
func (e *KingsEngine) PlayerByUser(gameID, userID string) (*Player, error) {
	g, err := e.getGame(gameID)
	if err != nil {
		return nil, err
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, p := range g.players {
		if p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, notFound("player for user", userID)
}

// addLog appends a log entry, persists it best-effort, and keeps the
// entry's round/turn bookkeeping. Callers hold g.mu.
func (e *KingsEngine) addLog(g *gameInstance, entry LogEntry) {
	entry.Round = g.currentRound
	entry.Turn = len(g.log) + 1
	entry.CreatedAt = time.Now()
	g.log = append(g.log, entry)

	if err := e.store.AppendLog(context.Background(), g.id, entry); err != nil && e.logger != nil {
		e.logger.Warn("failed to persist log entry",
			zap.String("game_id", g.id),
			zap.Error(err),
		)
	}
}

// requireActingPlayer validates the shared preconditions of every
// turn-consuming action: the game is running, the player belongs to
// it, no counterable spell is pending, and the player holds the turn
// at commit time. Callers hold g.mu.
func (e *KingsEngine) requireActingPlayer(g *gameInstance, playerID string) (*Player, error) {
	if g.state != GameStateInProgress {
		return nil, validationf("the game has ended")
	}
	player, ok := g.players[playerID]
	if !ok {
		return nil, notFound("player", playerID)
	}
	if g.pendingSpellID != "" {
		return nil, validationf("a spell is awaiting your opponent's response")
	}
	if g.turnPlayerID != playerID {
		return nil, validationf("it is not your turn")
	}
	return player, nil
}

// finishTurnAction settles the turn after a committed build-type or
// spell action. Under an active Infinite Hammer the action is recorded
// and the turn retained; otherwise the turn is spent and flipped.
// Callers hold g.mu.
func (e *KingsEngine) finishTurnAction(g *gameInstance, playerID, action string) {
	if hammer := g.infiniteHammerFor(playerID); hammer != nil {
		if effect, ok := hammer.Effect.(*UnlimitedTurnEffect); ok {
			effect.Actions = append(effect.Actions, action)
		}
		return
	}
	e.spendTurn(g, playerID)
}

// spendTurn decrements the player's turns and flips the turn to the
// opponent, advancing the round when both players are spent. Callers
// hold g.mu.
func (e *KingsEngine) spendTurn(g *gameInstance, playerID string) {
	if player, ok := g.players[playerID]; ok {
		player.TurnsLeft--
	}
	g.turnPlayerID = g.opponentOf(playerID)
	e.advanceRoundIfDue(g)

	if err := e.store.SaveGameState(context.Background(), g.id, g.state, g.currentRound, g.turnPlayerID); err != nil && e.logger != nil {
		e.logger.Warn("failed to persist game state",
			zap.String("game_id", g.id),
			zap.Error(err),
		)
	}

	e.notify("TURN_CHANGE", g.id, "", map[string]interface{}{
		"turn_player_id": g.turnPlayerID,
		"round":          g.currentRound,
	})
}

// advanceRoundIfDue bumps the round once both players have spent their
// turns, resetting turn counters and expiring round-scoped effects.
// Callers hold g.mu.
func (e *KingsEngine) advanceRoundIfDue(g *gameInstance) {
	for _, p := range g.players {
		if p.TurnsLeft > 0 {
			return
		}
	}

	g.currentRound++
	for _, p := range g.players {
		p.TurnsLeft = e.rules.TurnsPerRound
	}

	for _, spell := range g.activeSpells {
		if !spell.Active {
			continue
		}
		if vision, ok := spell.Effect.(VisionEffect); ok && vision.UntilRound < g.currentRound {
			spell.Active = false
		}
	}

	e.addLog(g, LogEntry{
		Message: fmt.Sprintf("Round %d begins", g.currentRound),
		Type:    LogTypeSystem,
	})
}

// PostChat appends a chat message.
func (e *KingsEngine) PostChat(gameID, playerID, message string) error {
	g, err := e.getGame(gameID)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.players[playerID]; !ok {
		return notFound("player", playerID)
	}
	if message == "" {
		return validationf("chat message must not be empty")
	}

	msg := ChatMessage{GameID: gameID, AuthorID: playerID, Message: message, CreatedAt: time.Now()}
	if err := e.store.AppendChat(context.Background(), msg); err != nil && e.logger != nil {
		e.logger.Warn("failed to persist chat message",
			zap.String("game_id", gameID),
			zap.Error(err),
		)
	}

	e.notify("CHAT", gameID, "", map[string]interface{}{
		"author_id": playerID,
		"message":   message,
	})
	return nil
}

package game

import (
	"time"

	"github.com/nepalkings/kings-server/internal/game/cards"
	"github.com/nepalkings/kings-server/internal/game/figures"
	"github.com/nepalkings/kings-server/internal/game/spells"
)

// GameState represents the lifecycle state of a game.
type GameState int

const (
	GameStateInProgress GameState = iota
	GameStateFinished
)

func (s GameState) String() string {
	if s == GameStateFinished {
		return "FINISHED"
	}
	return "IN_PROGRESS"
}

// Player is a participant in one game.
type Player struct {
	ID        string
	UserID    string
	GameID    string
	TurnsLeft int
	Points    int
}

// FigureCard records one card committed to a figure together with its
// role in the figure's required set.
type FigureCard struct {
	CardID string
	Role   figures.Role
}

// Figure is a live built unit on a player's board.
type Figure struct {
	ID          string
	PlayerID    string
	GameID      string
	FamilyName  string
	Field       figures.Field
	Suit        cards.Suit
	NumberValue int
	Name        string
	Cards       []FigureCard
	Produces    map[string]int
	Requires    map[string]int
	Skills      figures.Skills
}

// ProducedResources implements resources.Producer.
func (f *Figure) ProducedResources() map[string]int { return f.Produces }

// RequiredResources implements resources.Producer.
func (f *Figure) RequiredResources() map[string]int { return f.Requires }

// Effect is the tagged union of spell effect payloads. Each variant
// has a checked shape instead of a free-form blob.
type Effect interface {
	effectKind() string
}

// DrawEffect records cards drawn by a greed spell. Drawn holds the
// card labels actually drawn; Requested preserves the nominal count so
// a shortfall is visible in the result.
type DrawEffect struct {
	Deck      cards.DeckType
	Requested int
	Drawn     []string
}

func (DrawEffect) effectKind() string { return "draw" }

// DumpEffect records the Dump Cards exchange for both players.
type DumpEffect struct {
	ReturnedByCaster   int
	ReturnedByOpponent int
	RedrawnMain        int
	RedrawnSide        int
}

func (DumpEffect) effectKind() string { return "dump" }

// SwapEffect records a Forced Deal. NotificationPending stays set
// until the non-casting player has been shown the swap.
type SwapEffect struct {
	GivenByCaster       []string
	GivenByOpponent     []string
	NotificationPending bool
}

func (SwapEffect) effectKind() string { return "swap" }

// EnchantEffect stores a signed power modifier against a figure for a
// future battle resolution.
type EnchantEffect struct {
	TargetFigureID string
	PowerModifier  int
}

func (EnchantEffect) effectKind() string { return "enchant" }

// UnlimitedTurnEffect accumulates the actions taken during an Infinite
// Hammer extended turn.
type UnlimitedTurnEffect struct {
	Actions []string
}

func (*UnlimitedTurnEffect) effectKind() string { return "unlimited_turn" }

// DestroyEffect records a destroyed figure.
type DestroyEffect struct {
	FigureName string
	CardCount  int
}

func (DestroyEffect) effectKind() string { return "destroy" }

// VisionEffect grants the caster sight of the opponent's hidden board
// until the end of the cast round.
type VisionEffect struct {
	UntilRound int
}

func (VisionEffect) effectKind() string { return "vision" }

// TacticsEffect records a battle modifier for the battle resolver.
type TacticsEffect struct {
	Modifier string
}

func (TacticsEffect) effectKind() string { return "tactics" }

// ActiveSpell is a live spell owned by a game.
type ActiveSpell struct {
	ID             string
	GameID         string
	CasterID       string
	Name           string
	Type           spells.SpellType
	TargetFigureID string
	CastRound      int
	Counterable    bool
	// Pending marks a counterable cast awaiting the opponent's
	// counter-or-allow decision.
	Pending bool
	// Active marks a persistent effect (enchantment, vision,
	// unlimited turn) that has executed and has not yet expired.
	Active bool
	Effect Effect
}

// Log entry types. The turn summary treats build, upgrade, pickup,
// spell and card_change entries as actionable.
const (
	LogTypeSystem     = "system"
	LogTypeBuild      = "build"
	LogTypeUpgrade    = "upgrade"
	LogTypePickup     = "pickup"
	LogTypeSpell      = "spell"
	LogTypeCardChange = "card_change"
	LogTypeTurn       = "turn"
	LogTypeChat       = "chat"
)

// LogEntry is one append-only game log record.
type LogEntry struct {
	Round     int
	Turn      int
	Message   string
	AuthorID  string
	Type      string
	CreatedAt time.Time
}

// ChatMessage is one append-only chat record.
type ChatMessage struct {
	GameID    string
	AuthorID  string
	Message   string
	CreatedAt time.Time
}

// GameNotification is pushed to UI/websocket clients when game state
// changes. An empty PlayerID broadcasts to all players of the game.
type GameNotification struct {
	Type      string
	GameID    string
	PlayerID  string
	Timestamp time.Time
	Data      map[string]interface{}
}

// NotificationHandler receives game notifications.
type NotificationHandler func(notification GameNotification)

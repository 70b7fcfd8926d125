package game

import (
	"github.com/nepalkings/kings-server/internal/game/cards"
)

// CardView is the wire shape of one card.
type CardView struct {
	ID    string `json:"id"`
	Suit  string `json:"suit"`
	Rank  string `json:"rank"`
	Deck  string `json:"deck"`
	Value int    `json:"value"`
	Label string `json:"label"`
}

// FigureView is the wire shape of one built figure.
type FigureView struct {
	ID          string         `json:"id"`
	PlayerID    string         `json:"player_id"`
	Name        string         `json:"name"`
	Family      string         `json:"family"`
	Field       string         `json:"field"`
	Suit        string         `json:"suit"`
	NumberValue int            `json:"number_value,omitempty"`
	Cards       []CardView     `json:"cards"`
	Produces    map[string]int `json:"produces,omitempty"`
	Requires    map[string]int `json:"requires,omitempty"`
}

// ActiveSpellView is the wire shape of a pending or persistent spell.
type ActiveSpellView struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	CasterID       string `json:"caster_id"`
	TargetFigureID string `json:"target_figure_id,omitempty"`
	Pending        bool   `json:"pending"`
	Active         bool   `json:"active"`
}

// PlayerView is the viewer's own side: full hand, split by sub-deck.
type PlayerView struct {
	PlayerID  string     `json:"player_id"`
	TurnsLeft int        `json:"turns_left"`
	Points    int        `json:"points"`
	HandMain  []CardView `json:"hand_main"`
	HandSide  []CardView `json:"hand_side"`
}

// OpponentView is the other side as the viewer may see it. The hand is
// hidden by default; an active All Seeing Eye reveals it for the rest
// of the round.
type OpponentView struct {
	PlayerID      string     `json:"player_id"`
	TurnsLeft     int        `json:"turns_left"`
	Points        int        `json:"points"`
	HandMainCount int        `json:"hand_main_count"`
	HandSideCount int        `json:"hand_side_count"`
	HandRevealed  bool       `json:"hand_revealed"`
	HandMain      []CardView `json:"hand_main,omitempty"`
	HandSide      []CardView `json:"hand_side,omitempty"`
}

// GameView is one player's complete view of a game.
type GameView struct {
	GameID          string            `json:"game_id"`
	State           string            `json:"state"`
	Round           int               `json:"round"`
	TurnPlayerID    string            `json:"turn_player_id"`
	InvaderPlayerID string            `json:"invader_player_id"`
	BattleModifier  string            `json:"battle_modifier,omitempty"`
	You             PlayerView        `json:"you"`
	Opponent        OpponentView      `json:"opponent"`
	YourFigures     []FigureView      `json:"your_figures"`
	OpponentFigures []FigureView      `json:"opponent_figures"`
	ActiveSpells    []ActiveSpellView `json:"active_spells"`
	PendingSpellID  string            `json:"pending_spell_id,omitempty"`
	MainDeckCount   int               `json:"main_deck_count"`
	SideDeckCount   int               `json:"side_deck_count"`
	Log             []LogEntry        `json:"log"`
}

// View builds one player's view of the game. The opponent's hand is
// reduced to counts unless the viewer's All Seeing Eye is active.
func (e *KingsEngine) View(gameID, playerID string) (*GameView, error) {
	g, err := e.getGame(gameID)
	if err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	viewer, ok := g.players[playerID]
	if !ok {
		return nil, notFound("player", playerID)
	}
	opponentID := g.opponentOf(playerID)
	opponent := g.players[opponentID]

	view := &GameView{
		GameID:          g.id,
		State:           g.state.String(),
		Round:           g.currentRound,
		TurnPlayerID:    g.turnPlayerID,
		InvaderPlayerID: g.invaderPlayerID,
		BattleModifier:  g.battleModifier,
		PendingSpellID:  g.pendingSpellID,
		MainDeckCount:   g.store.InDeckCount(cards.MainDeck),
		SideDeckCount:   g.store.InDeckCount(cards.SideDeck),
		Log:             append([]LogEntry(nil), g.log...),
	}

	ownMain, ownSide := g.store.Hand(playerID)
	view.You = PlayerView{
		PlayerID:  viewer.ID,
		TurnsLeft: viewer.TurnsLeft,
		Points:    viewer.Points,
		HandMain:  cardViews(ownMain),
		HandSide:  cardViews(ownSide),
	}

	oppMain, oppSide := g.store.Hand(opponentID)
	view.Opponent = OpponentView{
		PlayerID:      opponent.ID,
		TurnsLeft:     opponent.TurnsLeft,
		Points:        opponent.Points,
		HandMainCount: len(oppMain),
		HandSideCount: len(oppSide),
	}
	if g.visionActiveFor(playerID) {
		view.Opponent.HandRevealed = true
		view.Opponent.HandMain = cardViews(oppMain)
		view.Opponent.HandSide = cardViews(oppSide)
	}

	for _, fig := range g.playerFigures(playerID) {
		view.YourFigures = append(view.YourFigures, e.figureView(g, fig))
	}
	for _, fig := range g.playerFigures(opponentID) {
		view.OpponentFigures = append(view.OpponentFigures, e.figureView(g, fig))
	}

	for _, spell := range g.activeSpells {
		if !spell.Pending && !spell.Active {
			continue
		}
		view.ActiveSpells = append(view.ActiveSpells, ActiveSpellView{
			ID:             spell.ID,
			Name:           spell.Name,
			Type:           spell.Type.String(),
			CasterID:       spell.CasterID,
			TargetFigureID: spell.TargetFigureID,
			Pending:        spell.Pending,
			Active:         spell.Active,
		})
	}

	return view, nil
}

func (e *KingsEngine) figureView(g *gameInstance, fig *Figure) FigureView {
	fv := FigureView{
		ID:          fig.ID,
		PlayerID:    fig.PlayerID,
		Name:        fig.Name,
		Family:      fig.FamilyName,
		Field:       fig.Field.String(),
		Suit:        fig.Suit.String(),
		NumberValue: fig.NumberValue,
		Produces:    fig.Produces,
		Requires:    fig.Requires,
	}
	for _, fc := range fig.Cards {
		if card, ok := g.store.Card(fc.CardID); ok {
			fv.Cards = append(fv.Cards, cardView(card))
		}
	}
	return fv
}

func cardView(card *cards.Card) CardView {
	return CardView{
		ID:    card.ID,
		Suit:  card.Suit.String(),
		Rank:  card.Rank.String(),
		Deck:  card.Deck.String(),
		Value: card.Value(),
		Label: card.Label(),
	}
}

func cardViews(cardList []*cards.Card) []CardView {
	views := make([]CardView, len(cardList))
	for i, card := range cardList {
		views[i] = cardView(card)
	}
	return views
}

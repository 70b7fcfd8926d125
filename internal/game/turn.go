package game

import (
	"fmt"
	"strings"

	"github.com/nepalkings/kings-server/internal/game/cards"
	"github.com/nepalkings/kings-server/internal/game/spells"
)

// TurnReport is what a player sees when they come back to the game:
// the opening notice on first view, hand refills, a summary of what the
// opponent did since the player last looked, and any spell awaiting
// the player's response.
type TurnReport struct {
	Round        int
	TurnPlayerID string
	YourTurn     bool
	// GameStart is set the first time each player views the game; the
	// report then carries the opening notice instead of a summary.
	GameStart       bool
	Notices         []string
	DrawnMain       []string
	DrawnSide       []string
	OpponentActions []string
	// AwaitingSpell names the pending spell this player must counter
	// or allow before play continues.
	AwaitingSpell string
}

// StartTurn prepares a player's view of the current turn. Viewing is
// idempotent apart from the bookkeeping it exists for: marking the
// opening notice seen, advancing the summary cursor, refilling the
// hand to its minima, and disclosing a completed Forced Deal.
func (e *KingsEngine) StartTurn(gameID, playerID string) (*TurnReport, error) {
	g, err := e.getGame(gameID)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.players[playerID]; !ok {
		return nil, notFound("player", playerID)
	}

	report := &TurnReport{
		Round:        g.currentRound,
		TurnPlayerID: g.turnPlayerID,
		YourTurn:     g.turnPlayerID == playerID && g.pendingSpellID == "",
	}

	if !g.seenStart[playerID] {
		g.seenStart[playerID] = true
		g.lastSummarized[playerID] = len(g.log)
		report.GameStart = true
		role := "defender"
		if g.invaderPlayerID == playerID {
			role = "invader"
		}
		report.Notices = append(report.Notices,
			fmt.Sprintf("The game has begun. You are the %s.", role))
	} else {
		report.OpponentActions = e.summarizeOpponent(g, playerID)
	}

	e.discloseForcedDeals(g, playerID, report)

	if g.pendingSpellID != "" && g.waitingForCounterPlayerID == playerID {
		if spell, ok := g.activeSpells[g.pendingSpellID]; ok {
			report.AwaitingSpell = spell.Name
			report.Notices = append(report.Notices,
				fmt.Sprintf("Your opponent cast %s. Counter it or let it resolve.", spell.Name))
		}
	}

	if report.YourTurn {
		e.refillHand(g, playerID, report)
	}

	return report, nil
}

// summarizeOpponent collects the opponent's actionable log entries
// since this player's last view and advances the summary cursor.
// Callers hold g.mu.
func (e *KingsEngine) summarizeOpponent(g *gameInstance, playerID string) []string {
	opponent := g.opponentOf(playerID)
	from := g.lastSummarized[playerID]
	if from > len(g.log) {
		from = len(g.log)
	}

	var actions []string
	for _, entry := range g.log[from:] {
		if entry.AuthorID != opponent {
			continue
		}
		switch entry.Type {
		case LogTypeBuild, LogTypeUpgrade, LogTypePickup, LogTypeSpell, LogTypeCardChange:
			actions = append(actions, entry.Message)
		}
	}
	g.lastSummarized[playerID] = len(g.log)
	return actions
}

// discloseForcedDeals reports any Forced Deal the opponent resolved
// against this player and clears the pending-notification flag so the
// swap is disclosed exactly once. Callers hold g.mu.
func (e *KingsEngine) discloseForcedDeals(g *gameInstance, playerID string, report *TurnReport) {
	for _, spell := range g.activeSpells {
		if spell.Name != spells.ForcedDeal || spell.CasterID == playerID {
			continue
		}
		swap, ok := spell.Effect.(SwapEffect)
		if !ok || !swap.NotificationPending {
			continue
		}
		report.Notices = append(report.Notices, fmt.Sprintf(
			"Forced Deal: you received %s and gave up %s.",
			strings.Join(swap.GivenByCaster, ", "),
			strings.Join(swap.GivenByOpponent, ", "),
		))
		swap.NotificationPending = false
		spell.Effect = swap
	}
}

// refillHand draws a player's hand up to its per-deck minima at the
// start of their turn. Shortfalls against an exhausted deck are
// reported, not fatal. Callers hold g.mu.
func (e *KingsEngine) refillHand(g *gameInstance, playerID string, report *TurnReport) {
	main, side := g.store.Hand(playerID)

	if need := e.rules.MinMainCards - len(main); need > 0 {
		drawn := g.store.Draw(playerID, need, cards.MainDeck)
		report.DrawnMain = labels(drawn)
		if len(drawn) < need {
			report.Notices = append(report.Notices, "The main deck is running out.")
		}
	}
	if need := e.rules.MinSideCards - len(side); need > 0 {
		drawn := g.store.Draw(playerID, need, cards.SideDeck)
		report.DrawnSide = labels(drawn)
		if len(drawn) < need {
			report.Notices = append(report.Notices, "The side deck is running out.")
		}
	}

	if len(report.DrawnMain) > 0 || len(report.DrawnSide) > 0 {
		e.addLog(g, LogEntry{
			Message:  fmt.Sprintf("Drew %d cards", len(report.DrawnMain)+len(report.DrawnSide)),
			AuthorID: playerID,
			Type:     LogTypeTurn,
		})
	}
}

// EndTurn passes without taking an action. Under an active Infinite
// Hammer the pass is recorded and the extended turn continues; ending
// it for real goes through EndInfiniteHammer.
func (e *KingsEngine) EndTurn(gameID, playerID string) error {
	g, err := e.getGame(gameID)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, err := e.requireActingPlayer(g, playerID); err != nil {
		return err
	}

	e.addLog(g, LogEntry{
		Message:  "Ended the turn",
		AuthorID: playerID,
		Type:     LogTypeTurn,
	})
	e.finishTurnAction(g, playerID, "passed")
	return nil
}

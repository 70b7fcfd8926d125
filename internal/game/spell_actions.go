package game

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/nepalkings/kings-server/internal/game/cards"
	"github.com/nepalkings/kings-server/internal/game/spells"
	"go.uber.org/zap"
)

// CastSpell validates and commits a spell cast. Non-counterable spells
// execute immediately; counterable casts suspend the turn into the
// waiting-for-counter state until the opponent responds.
func (e *KingsEngine) CastSpell(gameID, playerID, spellName string, primarySuit cards.Suit, targetFigureID string) (*ActiveSpell, error) {
	g, err := e.getGame(gameID)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, err := e.requireActingPlayer(g, playerID); err != nil {
		return nil, err
	}

	fam, ok := e.spellCat.Family(spellName)
	if !ok {
		return nil, notFound("spell", spellName)
	}
	if fam.CounterOnly {
		return nil, validationf("%s can only be played in response to a spell", fam.Name)
	}
	if g.battleModifier == spells.Ceasefire && !fam.PossibleDuringCeasefire {
		return nil, validationf("%s cannot be cast during a ceasefire", fam.Name)
	}

	if fam.NeedsTargetFigure {
		target, ok := g.figures[targetFigureID]
		if !ok {
			return nil, notFound("figure", targetFigureID)
		}
		if fam.Name == spells.Explosion && target.Skills.Indestructible {
			return nil, validationf("%s cannot be destroyed", target.Name)
		}
	} else {
		targetFigureID = ""
	}

	variant := e.findCastableVariant(g, playerID, fam.Name, primarySuit)
	if variant == nil {
		return nil, validationf("your hand cannot pay for %s", fam.Name)
	}

	hand := g.store.HandAll(playerID)
	allocated, ok := spells.Allocate(hand, variant.Cards)
	if !ok {
		return nil, validationf("your hand no longer holds the cards for %s", fam.Name)
	}
	g.store.ReturnToDeck(allocated)

	spell := &ActiveSpell{
		ID:             uuid.New().String(),
		GameID:         gameID,
		CasterID:       playerID,
		Name:           fam.Name,
		Type:           fam.Type,
		TargetFigureID: targetFigureID,
		CastRound:      g.currentRound,
		Counterable:    fam.Counterable,
	}
	g.activeSpells[spell.ID] = spell

	if fam.Counterable {
		spell.Pending = true
		g.pendingSpellID = spell.ID
		g.waitingForCounterPlayerID = g.opponentOf(playerID)

		e.addLog(g, LogEntry{
			Message:  fmt.Sprintf("Cast %s, awaiting response", fam.Name),
			AuthorID: playerID,
			Type:     LogTypeSpell,
		})
		e.notify("SPELL_PENDING", gameID, g.waitingForCounterPlayerID, map[string]interface{}{
			"spell_id":   spell.ID,
			"spell_name": spell.Name,
			"caster_id":  playerID,
		})
		return spell, nil
	}

	message, err := e.executeSpellEffect(g, spell)
	if err != nil {
		// Non-counterable executions are validated above; an error
		// here means the effect fizzled against current state.
		spell.Active = false
		e.addLog(g, LogEntry{
			Message:  fmt.Sprintf("Cast %s, but it fizzled: %v", fam.Name, err),
			AuthorID: playerID,
			Type:     LogTypeSpell,
		})
	} else {
		e.addLog(g, LogEntry{Message: message, AuthorID: playerID, Type: LogTypeSpell})
	}

	e.finishTurnAction(g, playerID, fmt.Sprintf("cast %s", fam.Name))
	e.notify("SPELL_CAST", gameID, "", map[string]interface{}{
		"spell_id":   spell.ID,
		"spell_name": spell.Name,
		"caster_id":  playerID,
	})

	if e.logger != nil {
		e.logger.Info("spell cast",
			zap.String("game_id", gameID),
			zap.String("player_id", playerID),
			zap.String("spell", spell.Name),
			zap.Bool("pending", spell.Pending),
		)
	}

	return spell, nil
}

// findCastableVariant picks the variant of a family the hand can pay
// for, preferring the requested primary suit.
func (e *KingsEngine) findCastableVariant(g *gameInstance, playerID, familyName string, primarySuit cards.Suit) *spells.Variant {
	hand := g.store.HandAll(playerID)
	castable := spells.CastableVariants(hand, e.spellCat, familyName)
	for _, v := range castable {
		if v.PrimarySuit == primarySuit {
			return v
		}
	}
	if len(castable) > 0 {
		return castable[0]
	}
	return nil
}

// CounterSpell cancels the pending spell by paying a Countermagic
// variant. A counter only cancels: neither the original spell's effect
// nor any counter side effect is applied.
func (e *KingsEngine) CounterSpell(gameID, playerID string, primarySuit cards.Suit) error {
	g, err := e.getGame(gameID)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	spell, err := e.requireResponder(g, playerID)
	if err != nil {
		return err
	}

	variant := e.findCastableVariant(g, playerID, spells.Countermagic, primarySuit)
	if variant == nil {
		return validationf("your hand cannot pay for %s", spells.Countermagic)
	}
	hand := g.store.HandAll(playerID)
	allocated, ok := spells.Allocate(hand, variant.Cards)
	if !ok {
		return validationf("your hand no longer holds the cards for %s", spells.Countermagic)
	}
	g.store.ReturnToDeck(allocated)

	spell.Pending = false
	spell.Active = false
	g.pendingSpellID = ""
	g.waitingForCounterPlayerID = ""

	e.addLog(g, LogEntry{
		Message:  fmt.Sprintf("Countered %s", spell.Name),
		AuthorID: playerID,
		Type:     LogTypeSpell,
	})
	e.finishTurnAction(g, spell.CasterID, fmt.Sprintf("cast %s (countered)", spell.Name))

	e.notify("SPELL_COUNTERED", gameID, "", map[string]interface{}{
		"spell_id":   spell.ID,
		"spell_name": spell.Name,
		"counter_by": playerID,
	})

	return nil
}

// AllowSpell declines to counter: the pending spell's effect executes
// now and the suspended turn concludes.
func (e *KingsEngine) AllowSpell(gameID, playerID string) error {
	g, err := e.getGame(gameID)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	spell, err := e.requireResponder(g, playerID)
	if err != nil {
		return err
	}

	spell.Pending = false
	g.pendingSpellID = ""
	g.waitingForCounterPlayerID = ""

	message, execErr := e.executeSpellEffect(g, spell)
	if execErr != nil {
		spell.Active = false
		e.addLog(g, LogEntry{
			Message:  fmt.Sprintf("Cast %s, but it fizzled: %v", spell.Name, execErr),
			AuthorID: spell.CasterID,
			Type:     LogTypeSpell,
		})
	} else {
		e.addLog(g, LogEntry{Message: message, AuthorID: spell.CasterID, Type: LogTypeSpell})
	}

	e.finishTurnAction(g, spell.CasterID, fmt.Sprintf("cast %s", spell.Name))

	e.notify("SPELL_RESOLVED", gameID, "", map[string]interface{}{
		"spell_id":   spell.ID,
		"spell_name": spell.Name,
		"allowed_by": playerID,
	})

	return nil
}

// requireResponder validates that the player is the designated
// responder to the pending spell. Callers hold g.mu.
func (e *KingsEngine) requireResponder(g *gameInstance, playerID string) (*ActiveSpell, error) {
	if g.state != GameStateInProgress {
		return nil, validationf("the game has ended")
	}
	if _, ok := g.players[playerID]; !ok {
		return nil, notFound("player", playerID)
	}
	if g.pendingSpellID == "" {
		return nil, validationf("no spell is awaiting a response")
	}
	if g.waitingForCounterPlayerID != playerID {
		return nil, validationf("you are not the responder to the pending spell")
	}
	spell, ok := g.activeSpells[g.pendingSpellID]
	if !ok {
		return nil, notFound("spell", g.pendingSpellID)
	}
	return spell, nil
}

// executeSpellEffect applies the spell's effect against current state,
// records the Effect payload on the spell, and returns the log
// message. Persistent effects mark the spell active. Callers hold g.mu.
func (e *KingsEngine) executeSpellEffect(g *gameInstance, spell *ActiveSpell) (string, error) {
	caster := spell.CasterID
	opponent := g.opponentOf(caster)

	switch spell.Name {
	case spells.CardFlood:
		drawn := g.store.Draw(caster, 3, cards.MainDeck)
		spell.Effect = DrawEffect{Deck: cards.MainDeck, Requested: 3, Drawn: labels(drawn)}
		return fmt.Sprintf("Cast %s and drew %d main cards", spell.Name, len(drawn)), nil

	case spells.SideHustle:
		drawn := g.store.Draw(caster, 2, cards.SideDeck)
		spell.Effect = DrawEffect{Deck: cards.SideDeck, Requested: 2, Drawn: labels(drawn)}
		return fmt.Sprintf("Cast %s and drew %d side cards", spell.Name, len(drawn)), nil

	case spells.RoyalDecree:
		main, _ := g.store.Hand(caster)
		need := 10 - len(main)
		if need < 0 {
			need = 0
		}
		drawn := g.store.Draw(caster, need, cards.MainDeck)
		spell.Effect = DrawEffect{Deck: cards.MainDeck, Requested: need, Drawn: labels(drawn)}
		return fmt.Sprintf("Cast %s and filled the hand with %d main cards", spell.Name, len(drawn)), nil

	case spells.DumpCards:
		casterHand := g.store.HandAll(caster)
		opponentHand := g.store.HandAll(opponent)
		g.store.ReturnToDeck(casterHand)
		g.store.ReturnToDeck(opponentHand)
		for _, playerID := range g.playerOrder {
			g.store.Draw(playerID, e.rules.DealMainCards, cards.MainDeck)
			g.store.Draw(playerID, e.rules.DealSideCards, cards.SideDeck)
		}
		spell.Effect = DumpEffect{
			ReturnedByCaster:   len(casterHand),
			ReturnedByOpponent: len(opponentHand),
			RedrawnMain:        e.rules.DealMainCards,
			RedrawnSide:        e.rules.DealSideCards,
		}
		return fmt.Sprintf("Cast %s: both hands were dumped and redrawn", spell.Name), nil

	case spells.ForcedDeal:
		casterMain, _ := g.store.Hand(caster)
		opponentMain, _ := g.store.Hand(opponent)
		fromCaster := e.pickRandom(casterMain, 2)
		fromOpponent := e.pickRandom(opponentMain, 2)
		for _, card := range fromCaster {
			card.OwnerID = opponent
		}
		for _, card := range fromOpponent {
			card.OwnerID = caster
		}
		spell.Effect = SwapEffect{
			GivenByCaster:       labels(fromCaster),
			GivenByOpponent:     labels(fromOpponent),
			NotificationPending: true,
		}
		return fmt.Sprintf("Cast %s and swapped %d cards each way", spell.Name, len(fromCaster)), nil

	case spells.Poison, spells.HealthBoost:
		target, ok := g.figures[spell.TargetFigureID]
		if !ok {
			return "", fmt.Errorf("the targeted figure is gone")
		}
		modifier := 2
		if spell.Name == spells.Poison {
			modifier = -2
		}
		spell.Effect = EnchantEffect{TargetFigureID: target.ID, PowerModifier: modifier}
		spell.Active = true
		return fmt.Sprintf("Cast %s on %s", spell.Name, target.Name), nil

	case spells.Explosion:
		target, ok := g.figures[spell.TargetFigureID]
		if !ok {
			return "", fmt.Errorf("the targeted figure is gone")
		}
		if target.Skills.Indestructible {
			return "", fmt.Errorf("%s cannot be destroyed", target.Name)
		}
		destroyed := e.destroyFigure(g, target)
		spell.Effect = DestroyEffect{FigureName: target.Name, CardCount: destroyed}
		return fmt.Sprintf("Cast %s and destroyed %s", spell.Name, target.Name), nil

	case spells.AllSeeingEye:
		spell.Effect = VisionEffect{UntilRound: g.currentRound}
		spell.Active = true
		return fmt.Sprintf("Cast %s: the hidden board is revealed this round", spell.Name), nil

	case spells.InfiniteHammer:
		spell.Effect = &UnlimitedTurnEffect{}
		spell.Active = true
		return fmt.Sprintf("Cast %s: the forge burns without rest", spell.Name), nil

	case spells.Ceasefire, spells.CivilWar, spells.PeasantWar, spells.Blitzkrieg, spells.InvaderSwap:
		g.battleModifier = spell.Name
		spell.Effect = TacticsEffect{Modifier: spell.Name}
		return fmt.Sprintf("Cast %s: the battle terms have changed", spell.Name), nil

	default:
		return "", fmt.Errorf("spell %s has no effect implementation", spell.Name)
	}
}

// destroyFigure removes a figure from the board and sends its cards
// back to the decks for a reshuffle. This is the destructive path:
// unlike a pickup, the cards do not return to any hand.
func (e *KingsEngine) destroyFigure(g *gameInstance, fig *Figure) int {
	var returned []*cards.Card
	for _, fc := range fig.Cards {
		if card, ok := g.store.Card(fc.CardID); ok {
			returned = append(returned, card)
		}
	}
	g.store.ReturnForReshuffle(returned)
	delete(g.figures, fig.ID)

	// Enchantments on the destroyed figure expire with it.
	for _, spell := range g.activeSpells {
		if enchant, ok := spell.Effect.(EnchantEffect); ok && enchant.TargetFigureID == fig.ID {
			spell.Active = false
		}
	}

	return len(returned)
}

// EndInfiniteHammer closes the extended turn: the accumulated actions
// are summarized into the log and the turn finally flips.
func (e *KingsEngine) EndInfiniteHammer(gameID, playerID string) error {
	g, err := e.getGame(gameID)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != GameStateInProgress {
		return validationf("the game has ended")
	}
	if _, ok := g.players[playerID]; !ok {
		return notFound("player", playerID)
	}
	if g.pendingSpellID != "" {
		return validationf("a spell is awaiting your opponent's response")
	}
	hammer := g.infiniteHammerFor(playerID)
	if hammer == nil {
		return validationf("no Infinite Hammer is active for you")
	}
	if g.turnPlayerID != playerID {
		return validationf("it is not your turn")
	}

	hammer.Active = false

	summary := "no actions taken"
	if effect, ok := hammer.Effect.(*UnlimitedTurnEffect); ok && len(effect.Actions) > 0 {
		summary = strings.Join(effect.Actions, "; ")
	}
	e.addLog(g, LogEntry{
		Message:  fmt.Sprintf("Infinite Hammer ended: %s", summary),
		AuthorID: playerID,
		Type:     LogTypeSpell,
	})

	e.spendTurn(g, playerID)
	return nil
}

// pickRandom selects up to n distinct cards from the slice.
func (e *KingsEngine) pickRandom(pool []*cards.Card, n int) []*cards.Card {
	if n > len(pool) {
		n = len(pool)
	}
	perm := e.rng.Perm(len(pool))
	picked := make([]*cards.Card, 0, n)
	for _, idx := range perm[:n] {
		picked = append(picked, pool[idx])
	}
	return picked
}

func labels(cardList []*cards.Card) []string {
	result := make([]string, len(cardList))
	for i, card := range cardList {
		result[i] = card.Label()
	}
	return result
}

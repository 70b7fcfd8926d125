package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nepalkings/kings-server/internal/game/cards"
	"github.com/nepalkings/kings-server/internal/game/spells"
)

func TestCardFloodDrawsImmediately(t *testing.T) {
	e, g, invader, defender := setupGame(t)
	clearHands(g)
	putInHand(t, g, invader, cards.Spades, cards.Two)
	putInHand(t, g, invader, cards.Spades, cards.Three)

	spell, err := e.CastSpell(g.id, invader, spells.CardFlood, cards.Spades, "")
	require.NoError(t, err)

	assert.False(t, spell.Pending, "a non-counterable spell resolves at cast")
	draw, ok := spell.Effect.(DrawEffect)
	require.True(t, ok)
	assert.Len(t, draw.Drawn, 3)

	main, side := g.store.Hand(invader)
	assert.Len(t, main, 3)
	assert.Empty(t, side, "the spell cards were paid back to the deck")
	assert.Equal(t, defender, g.turnPlayerID)
	assertCardConservation(t, g)
}

func TestRoyalDecreeFillsMainHandToTen(t *testing.T) {
	e, g, invader, _ := setupGame(t)
	clearHands(g)
	putInHand(t, g, invader, cards.Hearts, cards.Four)
	putInHand(t, g, invader, cards.Hearts, cards.Five)
	putInHand(t, g, invader, cards.Hearts, cards.Seven)

	_, err := e.CastSpell(g.id, invader, spells.RoyalDecree, cards.Hearts, "")
	require.NoError(t, err)

	main, _ := g.store.Hand(invader)
	assert.Len(t, main, 10)
}

func TestCastRejectsUnpayableHand(t *testing.T) {
	e, g, invader, _ := setupGame(t)
	clearHands(g)

	_, err := e.CastSpell(g.id, invader, spells.CardFlood, cards.Spades, "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, invader, g.turnPlayerID, "a rejected cast must not spend the turn")
}

func TestCounterableCastSuspendsTheTurn(t *testing.T) {
	e, g, invader, defender := setupGame(t)
	clearHands(g)
	target := placeFigure(t, e, g, defender, "Warrior:hearts")
	putInHand(t, g, invader, cards.Spades, cards.Six)
	putInHand(t, g, invader, cards.Spades, cards.Six)

	spell, err := e.CastSpell(g.id, invader, spells.Explosion, cards.Spades, target.ID)
	require.NoError(t, err)

	assert.True(t, spell.Pending)
	assert.Equal(t, spell.ID, g.pendingSpellID)
	assert.Equal(t, defender, g.waitingForCounterPlayerID)
	assert.Contains(t, g.figures, target.ID, "nothing resolves until the response")

	// The caster is frozen while the spell hangs.
	_, err = e.CastSpell(g.id, invader, spells.CardFlood, cards.Spades, "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestCounterCancelsWithoutSideEffect(t *testing.T) {
	e, g, invader, defender := setupGame(t)
	clearHands(g)
	target := placeFigure(t, e, g, defender, "Warrior:hearts")
	putInHand(t, g, invader, cards.Spades, cards.Six)
	putInHand(t, g, invader, cards.Spades, cards.Six)
	putInHand(t, g, defender, cards.Clubs, cards.Three)
	putInHand(t, g, defender, cards.Clubs, cards.Four)

	spell, err := e.CastSpell(g.id, invader, spells.Explosion, cards.Spades, target.ID)
	require.NoError(t, err)
	require.NoError(t, e.CounterSpell(g.id, defender, cards.Clubs))

	assert.False(t, spell.Pending)
	assert.False(t, spell.Active)
	assert.Empty(t, g.pendingSpellID)
	assert.Contains(t, g.figures, target.ID, "a countered spell leaves no trace on the board")
	assert.Empty(t, g.store.HandAll(defender), "the counter cards are consumed")
	assert.Equal(t, DefaultRules().TurnsPerRound-1, g.players[invader].TurnsLeft,
		"the suspended turn concludes against the caster")
	assert.Equal(t, defender, g.turnPlayerID)
	assertCardConservation(t, g)
}

func TestCounterRequiresTheDesignatedResponder(t *testing.T) {
	e, g, invader, defender := setupGame(t)
	clearHands(g)
	target := placeFigure(t, e, g, defender, "Warrior:hearts")
	putInHand(t, g, invader, cards.Spades, cards.Six)
	putInHand(t, g, invader, cards.Spades, cards.Six)
	putInHand(t, g, invader, cards.Clubs, cards.Three)
	putInHand(t, g, invader, cards.Clubs, cards.Four)

	_, err := e.CastSpell(g.id, invader, spells.Explosion, cards.Spades, target.ID)
	require.NoError(t, err)

	err = e.CounterSpell(g.id, invader, cards.Clubs)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "responder")
}

func TestAllowedExplosionDestroysFigure(t *testing.T) {
	e, g, invader, defender := setupGame(t)
	clearHands(g)
	target := placeFigure(t, e, g, defender, "Warrior:hearts")
	var committed []string
	for _, fc := range target.Cards {
		committed = append(committed, fc.CardID)
	}
	putInHand(t, g, invader, cards.Spades, cards.Six)
	putInHand(t, g, invader, cards.Spades, cards.Six)

	spell, err := e.CastSpell(g.id, invader, spells.Explosion, cards.Spades, target.ID)
	require.NoError(t, err)
	require.NoError(t, e.AllowSpell(g.id, defender))

	assert.NotContains(t, g.figures, target.ID)
	destroy, ok := spell.Effect.(DestroyEffect)
	require.True(t, ok)
	assert.Equal(t, len(committed), destroy.CardCount)

	// Destruction sends the cards deckward, not back to a hand.
	for _, id := range committed {
		card, ok := g.store.Card(id)
		require.True(t, ok)
		assert.Equal(t, cards.InDeck, card.Location)
		assert.Empty(t, card.OwnerID)
		assert.Zero(t, card.Position, "destroyed cards await a reshuffle")
	}
	assertCardConservation(t, g)
}

func TestExplosionRejectsIndestructibleTarget(t *testing.T) {
	e, g, invader, defender := setupGame(t)
	clearHands(g)
	maharaja := placeFigure(t, e, g, defender, "Maharaja:hearts")
	six1 := putInHand(t, g, invader, cards.Spades, cards.Six)
	six2 := putInHand(t, g, invader, cards.Spades, cards.Six)

	_, err := e.CastSpell(g.id, invader, spells.Explosion, cards.Spades, maharaja.ID)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "Maharaja")

	assert.Contains(t, g.figures, maharaja.ID)
	assert.Equal(t, cards.InHand, six1.Location, "a rejected cast keeps the cards in hand")
	assert.Equal(t, cards.InHand, six2.Location)
}

func TestPoisonPersistsAPowerModifier(t *testing.T) {
	e, g, invader, defender := setupGame(t)
	clearHands(g)
	target := placeFigure(t, e, g, defender, "Warrior:hearts")
	putInHand(t, g, invader, cards.Diamonds, cards.Three)
	putInHand(t, g, invader, cards.Diamonds, cards.Three)

	spell, err := e.CastSpell(g.id, invader, spells.Poison, cards.Diamonds, target.ID)
	require.NoError(t, err)
	require.NoError(t, e.AllowSpell(g.id, defender))

	assert.True(t, spell.Active, "an enchantment persists until a battle consumes it")
	enchant, ok := spell.Effect.(EnchantEffect)
	require.True(t, ok)
	assert.Equal(t, target.ID, enchant.TargetFigureID)
	assert.Equal(t, -2, enchant.PowerModifier)
}

func TestInfiniteHammerRetainsTheTurn(t *testing.T) {
	e, g, invader, defender := setupGame(t)
	clearHands(g)
	putInHand(t, g, invader, cards.Spades, cards.Two)
	putInHand(t, g, invader, cards.Spades, cards.Four)
	putInHand(t, g, invader, cards.Spades, cards.Six)

	spell, err := e.CastSpell(g.id, invader, spells.InfiniteHammer, cards.Spades, "")
	require.NoError(t, err)
	require.NoError(t, e.AllowSpell(g.id, defender))

	assert.True(t, spell.Active)
	assert.Equal(t, invader, g.turnPlayerID, "the hammer holds the turn open")
	turnsBefore := g.players[invader].TurnsLeft

	// Multiple actions, no turn flip.
	putInHand(t, g, invader, cards.Clubs, cards.King)
	putInHand(t, g, invader, cards.Clubs, cards.Queen)
	_, err = e.BuildFigure(g.id, invader, "Maharaja:clubs")
	require.NoError(t, err)
	putInHand(t, g, invader, cards.Diamonds, cards.Queen)
	putInHand(t, g, invader, cards.Diamonds, cards.Seven)
	_, err = e.BuildFigure(g.id, invader, "Miller:diamonds")
	require.NoError(t, err)
	assert.Equal(t, invader, g.turnPlayerID)
	assert.Equal(t, turnsBefore, g.players[invader].TurnsLeft)

	require.NoError(t, e.EndInfiniteHammer(g.id, invader))

	assert.False(t, spell.Active)
	assert.Equal(t, defender, g.turnPlayerID)
	assert.Equal(t, turnsBefore-1, g.players[invader].TurnsLeft,
		"the whole extended turn costs a single turn")
	// The cast itself plus the two builds.
	effect, ok := spell.Effect.(*UnlimitedTurnEffect)
	require.True(t, ok)
	assert.Len(t, effect.Actions, 3)
}

func TestEndInfiniteHammerBlockedWhileSpellPending(t *testing.T) {
	e, g, invader, defender := setupGame(t)
	clearHands(g)
	putInHand(t, g, invader, cards.Spades, cards.Two)
	putInHand(t, g, invader, cards.Spades, cards.Four)
	putInHand(t, g, invader, cards.Spades, cards.Six)

	_, err := e.CastSpell(g.id, invader, spells.InfiniteHammer, cards.Spades, "")
	require.NoError(t, err)
	require.NoError(t, e.AllowSpell(g.id, defender))
	turnsBefore := g.players[invader].TurnsLeft

	// A counterable cast under the hammer suspends the turn again.
	putInHand(t, g, invader, cards.Hearts, cards.Two)
	putInHand(t, g, invader, cards.Hearts, cards.Six)
	_, err = e.CastSpell(g.id, invader, spells.Ceasefire, cards.Hearts, "")
	require.NoError(t, err)

	err = e.EndInfiniteHammer(g.id, invader)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr, "the hammer cannot close while a response is outstanding")

	require.NoError(t, e.AllowSpell(g.id, defender))
	assert.Equal(t, turnsBefore, g.players[invader].TurnsLeft,
		"resolution under the hammer spends nothing")
	assert.Equal(t, invader, g.turnPlayerID)

	require.NoError(t, e.EndInfiniteHammer(g.id, invader))
	assert.Equal(t, turnsBefore-1, g.players[invader].TurnsLeft,
		"the whole extended turn still costs a single turn")
	assert.Equal(t, defender, g.turnPlayerID)
}

func TestEndInfiniteHammerWithoutOneIsRejected(t *testing.T) {
	e, g, invader, _ := setupGame(t)

	err := e.EndInfiniteHammer(g.id, invader)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestForcedDealSwapsAndDisclosesOnce(t *testing.T) {
	e, g, invader, defender := setupGame(t)
	clearHands(g)
	putInHand(t, g, invader, cards.Spades, cards.Three)
	putInHand(t, g, invader, cards.Spades, cards.Five)
	invaderMain := []*cards.Card{
		putInHand(t, g, invader, cards.Hearts, cards.Seven),
		putInHand(t, g, invader, cards.Hearts, cards.Eight),
	}
	defenderMain := []*cards.Card{
		putInHand(t, g, defender, cards.Clubs, cards.Nine),
		putInHand(t, g, defender, cards.Clubs, cards.Ten),
	}

	spell, err := e.CastSpell(g.id, invader, spells.ForcedDeal, cards.Spades, "")
	require.NoError(t, err)
	require.NoError(t, e.AllowSpell(g.id, defender))

	for _, card := range invaderMain {
		assert.Equal(t, defender, card.OwnerID)
	}
	for _, card := range defenderMain {
		assert.Equal(t, invader, card.OwnerID)
	}

	swap, ok := spell.Effect.(SwapEffect)
	require.True(t, ok)
	assert.True(t, swap.NotificationPending)

	// First poll discloses the swap, second stays quiet.
	report, err := e.StartTurn(g.id, defender)
	require.NoError(t, err)
	found := false
	for _, notice := range report.Notices {
		if strings.HasPrefix(notice, "Forced Deal") {
			found = true
		}
	}
	assert.True(t, found, "the swap must be disclosed to the other player")

	report, err = e.StartTurn(g.id, defender)
	require.NoError(t, err)
	for _, notice := range report.Notices {
		assert.NotContains(t, notice, "Forced Deal")
	}
	assertCardConservation(t, g)
}

func TestAllSeeingEyeExpiresWithTheRound(t *testing.T) {
	e, g, invader, _ := setupGame(t)
	clearHands(g)
	putInHand(t, g, invader, cards.Clubs, cards.Two)
	putInHand(t, g, invader, cards.Clubs, cards.Five)

	_, err := e.CastSpell(g.id, invader, spells.AllSeeingEye, cards.Clubs, "")
	require.NoError(t, err)

	view, err := e.View(g.id, invader)
	require.NoError(t, err)
	assert.True(t, view.Opponent.HandRevealed)

	// Close the round.
	g.mu.Lock()
	for _, p := range g.players {
		p.TurnsLeft = 0
	}
	e.advanceRoundIfDue(g)
	g.mu.Unlock()

	view, err = e.View(g.id, invader)
	require.NoError(t, err)
	assert.False(t, view.Opponent.HandRevealed, "vision ends with the round it was cast in")
}

func TestOpponentHandHiddenByDefault(t *testing.T) {
	e, g, invader, defender := setupGame(t)

	view, err := e.View(g.id, invader)
	require.NoError(t, err)
	assert.False(t, view.Opponent.HandRevealed)
	assert.Empty(t, view.Opponent.HandMain)
	main, side := g.store.Hand(defender)
	assert.Equal(t, len(main), view.Opponent.HandMainCount)
	assert.Equal(t, len(side), view.Opponent.HandSideCount)
}

func TestCeasefireGatesSpells(t *testing.T) {
	e, g, invader, defender := setupGame(t)
	clearHands(g)
	target := placeFigure(t, e, g, defender, "Warrior:hearts")
	g.battleModifier = spells.Ceasefire

	putInHand(t, g, invader, cards.Spades, cards.Six)
	putInHand(t, g, invader, cards.Spades, cards.Six)
	_, err := e.CastSpell(g.id, invader, spells.Explosion, cards.Spades, target.ID)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	putInHand(t, g, invader, cards.Spades, cards.Two)
	putInHand(t, g, invader, cards.Spades, cards.Three)
	_, err = e.CastSpell(g.id, invader, spells.CardFlood, cards.Spades, "")
	require.NoError(t, err, "ceasefire-safe spells still resolve")
}

func TestTacticsSpellRecordsBattleModifier(t *testing.T) {
	e, g, invader, defender := setupGame(t)
	clearHands(g)
	putInHand(t, g, invader, cards.Hearts, cards.Five)
	putInHand(t, g, invader, cards.Hearts, cards.Six)

	spell, err := e.CastSpell(g.id, invader, spells.Blitzkrieg, cards.Hearts, "")
	require.NoError(t, err)
	require.NoError(t, e.AllowSpell(g.id, defender))

	assert.Equal(t, spells.Blitzkrieg, g.battleModifier)
	tactics, ok := spell.Effect.(TacticsEffect)
	require.True(t, ok)
	assert.Equal(t, spells.Blitzkrieg, tactics.Modifier)
}

func TestCounterOnlySpellCannotBeCastDirectly(t *testing.T) {
	e, g, invader, _ := setupGame(t)
	clearHands(g)
	putInHand(t, g, invader, cards.Spades, cards.Three)
	putInHand(t, g, invader, cards.Spades, cards.Four)

	_, err := e.CastSpell(g.id, invader, spells.Countermagic, cards.Spades, "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

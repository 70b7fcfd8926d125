package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nepalkings/kings-server/internal/game/cards"
	"github.com/nepalkings/kings-server/internal/game/spells"
)

func TestStartTurnFirstViewShowsOpening(t *testing.T) {
	e, g, invader, _ := setupGame(t)

	report, err := e.StartTurn(g.id, invader)
	require.NoError(t, err)
	assert.True(t, report.GameStart)
	require.NotEmpty(t, report.Notices)
	assert.Contains(t, report.Notices[0], "invader")

	report, err = e.StartTurn(g.id, invader)
	require.NoError(t, err)
	assert.False(t, report.GameStart, "the opening notice shows exactly once")
}

func TestStartTurnRefillsHandToMinima(t *testing.T) {
	e, g, invader, _ := setupGame(t)
	clearHands(g)

	report, err := e.StartTurn(g.id, invader)
	require.NoError(t, err)

	rules := DefaultRules()
	assert.Len(t, report.DrawnMain, rules.MinMainCards)
	assert.Len(t, report.DrawnSide, rules.MinSideCards)
	main, side := g.store.Hand(invader)
	assert.Len(t, main, rules.MinMainCards)
	assert.Len(t, side, rules.MinSideCards)
	assertCardConservation(t, g)
}

func TestStartTurnDoesNotRefillOutOfTurn(t *testing.T) {
	e, g, _, defender := setupGame(t)
	clearHands(g)

	report, err := e.StartTurn(g.id, defender)
	require.NoError(t, err)

	assert.False(t, report.YourTurn)
	assert.Empty(t, report.DrawnMain)
	assert.Empty(t, g.store.HandAll(defender))
}

func TestStartTurnSummarizesOpponentActions(t *testing.T) {
	e, g, invader, defender := setupGame(t)

	_, err := e.StartTurn(g.id, defender)
	require.NoError(t, err)

	clearHands(g)
	putInHand(t, g, invader, cards.Spades, cards.King)
	putInHand(t, g, invader, cards.Spades, cards.Queen)
	fig, err := e.BuildFigure(g.id, invader, "Maharaja:spades")
	require.NoError(t, err)

	report, err := e.StartTurn(g.id, defender)
	require.NoError(t, err)
	require.Len(t, report.OpponentActions, 1)
	assert.Contains(t, report.OpponentActions[0], fig.Name)

	report, err = e.StartTurn(g.id, defender)
	require.NoError(t, err)
	assert.Empty(t, report.OpponentActions, "the summary cursor advances on every view")
}

func TestStartTurnReportsPendingSpellToResponder(t *testing.T) {
	e, g, invader, defender := setupGame(t)
	clearHands(g)
	target := placeFigure(t, e, g, defender, "Warrior:hearts")
	putInHand(t, g, invader, cards.Spades, cards.Six)
	putInHand(t, g, invader, cards.Spades, cards.Six)

	_, err := e.CastSpell(g.id, invader, spells.Explosion, cards.Spades, target.ID)
	require.NoError(t, err)

	report, err := e.StartTurn(g.id, defender)
	require.NoError(t, err)
	assert.Equal(t, spells.Explosion, report.AwaitingSpell)
	assert.False(t, report.YourTurn, "the suspended turn still belongs to the caster")
}

func TestEndTurnFlipsAndDecrements(t *testing.T) {
	e, g, invader, defender := setupGame(t)

	require.NoError(t, e.EndTurn(g.id, invader))

	assert.Equal(t, defender, g.turnPlayerID)
	assert.Equal(t, DefaultRules().TurnsPerRound-1, g.players[invader].TurnsLeft)
	assert.Equal(t, 1, g.currentRound)
}

func TestEndTurnRejectsOutOfTurn(t *testing.T) {
	e, g, _, defender := setupGame(t)

	err := e.EndTurn(g.id, defender)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestRoundAdvancesWhenBothTurnsSpent(t *testing.T) {
	e, g, invader, defender := setupGame(t)
	g.players[invader].TurnsLeft = 1
	g.players[defender].TurnsLeft = 1

	require.NoError(t, e.EndTurn(g.id, invader))
	assert.Equal(t, 1, g.currentRound, "the round holds until both players are spent")

	require.NoError(t, e.EndTurn(g.id, defender))
	assert.Equal(t, 2, g.currentRound)
	assert.Equal(t, DefaultRules().TurnsPerRound, g.players[invader].TurnsLeft)
	assert.Equal(t, DefaultRules().TurnsPerRound, g.players[defender].TurnsLeft)
	assert.Equal(t, invader, g.turnPlayerID)
}

func TestPostChatRequiresMessage(t *testing.T) {
	e, g, invader, _ := setupGame(t)

	err := e.PostChat(g.id, invader, "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	require.NoError(t, e.PostChat(g.id, invader, "good luck"))
}

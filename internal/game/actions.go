package game

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/nepalkings/kings-server/internal/game/cards"
	"github.com/nepalkings/kings-server/internal/game/figures"
	"github.com/nepalkings/kings-server/internal/game/resources"
	"go.uber.org/zap"
)

// FindBuildableFigures matches a player's hand against the catalog.
// With a family name it checks that family only; with an empty name it
// returns every buildable variant keyed by family.
func (e *KingsEngine) FindBuildableFigures(gameID, playerID, familyName string) (map[string][]*figures.Variant, error) {
	g, err := e.getGame(gameID)
	if err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, ok := g.players[playerID]; !ok {
		return nil, notFound("player", playerID)
	}

	hand := g.store.HandAll(playerID)
	if familyName == "" {
		return figures.AllBuildable(hand, e.figCat), nil
	}
	if _, ok := e.figCat.Family(familyName); !ok {
		return nil, notFound("figure family", familyName)
	}
	result := make(map[string][]*figures.Variant)
	if variants := figures.BuildableVariants(hand, e.figCat, familyName); len(variants) > 0 {
		result[familyName] = variants
	}
	return result, nil
}

// BuildFigure commits a build: the variant's required cards move from
// the player's hand into a new figure, the action is logged, and the
// turn is spent unless an Infinite Hammer is active.
func (e *KingsEngine) BuildFigure(gameID, playerID, variantKey string) (*Figure, error) {
	g, err := e.getGame(gameID)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, err := e.requireActingPlayer(g, playerID); err != nil {
		return nil, err
	}

	variant, ok := e.figCat.VariantByKey(variantKey)
	if !ok {
		return nil, notFound("figure variant", variantKey)
	}
	if variant.UpgradeOnly {
		return nil, validationf("%s can only be reached through an upgrade", variant.FamilyName)
	}

	// Re-validate the hand under the lock: find_buildable results may
	// be stale by the time the build request arrives.
	hand := g.store.HandAll(playerID)
	allocated, ok := figures.Allocate(hand, variant.Required)
	if !ok {
		return nil, validationf("your hand no longer holds the cards for %s", variant.Name)
	}

	fig := &Figure{
		ID:          uuid.New().String(),
		PlayerID:    playerID,
		GameID:      gameID,
		FamilyName:  variant.FamilyName,
		Field:       variant.Field,
		Suit:        variant.Suit,
		NumberValue: variant.NumberValue,
		Name:        variant.Name,
		Produces:    copyAmounts(variant.Produces),
		Requires:    copyAmounts(variant.Requires),
		Skills:      variant.Skills,
	}
	for i, card := range allocated {
		card.Location = cards.PartOfFigure
		card.FigureID = fig.ID
		fig.Cards = append(fig.Cards, FigureCard{CardID: card.ID, Role: variant.Required[i].Role})
	}
	g.figures[fig.ID] = fig

	e.addLog(g, LogEntry{
		Message:  fmt.Sprintf("Built %s", variant.Name),
		AuthorID: playerID,
		Type:     LogTypeBuild,
	})
	e.finishTurnAction(g, playerID, fmt.Sprintf("built %s", variant.Name))

	e.notify("FIGURE_BUILT", gameID, "", map[string]interface{}{
		"player_id":   playerID,
		"figure_id":   fig.ID,
		"figure_name": fig.Name,
	})

	if e.logger != nil {
		e.logger.Info("figure built",
			zap.String("game_id", gameID),
			zap.String("player_id", playerID),
			zap.String("variant", variantKey),
		)
	}

	return fig, nil
}

// UpgradeFigure consumes the family's upgrade card (or extension card,
// when useExtension is set) from the player's hand and replaces the
// figure with one of the target family, carrying every old card
// forward.
func (e *KingsEngine) UpgradeFigure(gameID, playerID, figureID string, useExtension bool) (*Figure, error) {
	g, err := e.getGame(gameID)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, err := e.requireActingPlayer(g, playerID); err != nil {
		return nil, err
	}

	old, ok := g.figures[figureID]
	if !ok {
		return nil, notFound("figure", figureID)
	}
	if old.PlayerID != playerID {
		return nil, validationf("%s does not belong to you", old.Name)
	}

	fam, ok := e.figCat.Family(old.FamilyName)
	if !ok {
		return nil, notFound("figure family", old.FamilyName)
	}

	var requirement figures.RequiredCard
	var targetName string
	if useExtension {
		req, ok := figures.ExtensionRequirement(fam, old.Suit)
		if !ok {
			return nil, validationf("%s has no extension", old.Name)
		}
		requirement, targetName = req, fam.ExtensionTarget
	} else {
		req, ok := figures.UpgradeRequirement(fam, old.Suit)
		if !ok {
			return nil, validationf("%s cannot be upgraded", old.Name)
		}
		requirement, targetName = req, fam.UpgradeTarget
	}

	hand := g.store.HandAll(playerID)
	allocated, ok := figures.Allocate(hand, []figures.RequiredCard{requirement})
	if !ok {
		return nil, validationf("you need %s in hand to upgrade %s", requirement.Label(), old.Name)
	}
	upgradeCard := allocated[0]

	target := e.findTargetVariant(targetName, old.Suit, old.NumberValue)
	if target == nil {
		return nil, notFound("figure variant", fmt.Sprintf("%s %s", targetName, old.Suit))
	}

	upgraded := &Figure{
		ID:          uuid.New().String(),
		PlayerID:    playerID,
		GameID:      gameID,
		FamilyName:  target.FamilyName,
		Field:       target.Field,
		Suit:        target.Suit,
		NumberValue: target.NumberValue,
		Name:        target.Name,
		Produces:    copyAmounts(target.Produces),
		Requires:    copyAmounts(target.Requires),
		Skills:      target.Skills,
	}

	// Carry forward every old card under the new figure ID, then add
	// the consumed upgrade card.
	for _, fc := range old.Cards {
		if card, ok := g.store.Card(fc.CardID); ok {
			card.FigureID = upgraded.ID
		}
		upgraded.Cards = append(upgraded.Cards, fc)
	}
	upgradeCard.Location = cards.PartOfFigure
	upgradeCard.FigureID = upgraded.ID
	upgraded.Cards = append(upgraded.Cards, FigureCard{CardID: upgradeCard.ID, Role: requirement.Role})

	delete(g.figures, old.ID)
	g.figures[upgraded.ID] = upgraded

	e.addLog(g, LogEntry{
		Message:  fmt.Sprintf("Upgraded %s to %s", old.Name, upgraded.Name),
		AuthorID: playerID,
		Type:     LogTypeUpgrade,
	})
	e.finishTurnAction(g, playerID, fmt.Sprintf("upgraded %s to %s", old.Name, upgraded.Name))

	e.notify("FIGURE_UPGRADED", gameID, "", map[string]interface{}{
		"player_id":   playerID,
		"figure_id":   upgraded.ID,
		"figure_name": upgraded.Name,
	})

	return upgraded, nil
}

// findTargetVariant resolves the upgrade-target variant matching the
// old figure's suit and number value.
func (e *KingsEngine) findTargetVariant(familyName string, suit cards.Suit, numberValue int) *figures.Variant {
	for _, v := range e.figCat.Variants(familyName) {
		if v.Suit == suit && v.NumberValue == numberValue {
			return v
		}
	}
	return nil
}

// PickupFigure dissolves a figure back into its owner's hand. Unlike
// destruction, the cards return to the hand, not to the decks.
func (e *KingsEngine) PickupFigure(gameID, playerID, figureID string) error {
	g, err := e.getGame(gameID)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, err := e.requireActingPlayer(g, playerID); err != nil {
		return err
	}

	fig, ok := g.figures[figureID]
	if !ok {
		return notFound("figure", figureID)
	}
	if fig.PlayerID != playerID {
		return validationf("%s does not belong to you", fig.Name)
	}

	for _, fc := range fig.Cards {
		if card, ok := g.store.Card(fc.CardID); ok {
			card.Location = cards.InHand
			card.OwnerID = playerID
			card.FigureID = ""
		}
	}
	delete(g.figures, fig.ID)

	e.addLog(g, LogEntry{
		Message:  fmt.Sprintf("Picked up %s", fig.Name),
		AuthorID: playerID,
		Type:     LogTypePickup,
	})
	e.finishTurnAction(g, playerID, fmt.Sprintf("picked up %s", fig.Name))

	e.notify("FIGURE_PICKED_UP", gameID, "", map[string]interface{}{
		"player_id":   playerID,
		"figure_name": fig.Name,
	})

	return nil
}

// CalculateResources aggregates what the player's board produces and
// requires. Deficits are informational and never block an action.
func (e *KingsEngine) CalculateResources(gameID, playerID string) (resources.Summary, error) {
	g, err := e.getGame(gameID)
	if err != nil {
		return resources.Summary{}, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, ok := g.players[playerID]; !ok {
		return resources.Summary{}, notFound("player", playerID)
	}

	figs := g.playerFigures(playerID)
	producers := make([]resources.Producer, len(figs))
	for i, fig := range figs {
		producers[i] = fig
	}
	return resources.Calculate(producers), nil
}

// Discard returns chosen excess cards to the decks. It is only
// permitted while the hand exceeds its slot maxima, and the discard
// must exactly match the excess in each sub-deck.
func (e *KingsEngine) Discard(gameID, playerID string, cardIDs []string) error {
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

	main, side := g.store.Hand(playerID)
	excessMain := len(main) - e.rules.MaxMainSlots
	if excessMain < 0 {
		excessMain = 0
	}
	excessSide := len(side) - e.rules.MaxSideSlots
	if excessSide < 0 {
		excessSide = 0
	}
	if excessMain == 0 && excessSide == 0 {
		return validationf("your hand is not over its limit")
	}

	var discardMain, discardSide []*cards.Card
	seen := make(map[string]bool, len(cardIDs))
	for _, id := range cardIDs {
		if seen[id] {
			return validationf("card %s listed more than once", id)
		}
		seen[id] = true
		card, ok := g.store.Card(id)
		if !ok {
			return notFound("card", id)
		}
		if card.Location != cards.InHand || card.OwnerID != playerID {
			return validationf("card %s is not in your hand", card.Label())
		}
		if card.Deck == cards.MainDeck {
			discardMain = append(discardMain, card)
		} else {
			discardSide = append(discardSide, card)
		}
	}

	if len(discardMain) != excessMain || len(discardSide) != excessSide {
		return validationf("discard exactly %d main and %d side cards", excessMain, excessSide)
	}

	g.store.ReturnToDeck(append(discardMain, discardSide...))

	e.addLog(g, LogEntry{
		Message:  fmt.Sprintf("Discarded %d cards", len(cardIDs)),
		AuthorID: playerID,
		Type:     LogTypeCardChange,
	})

	return nil
}

func copyAmounts(src map[string]int) map[string]int {
	dst := make(map[string]int, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

package euchre

import "fmt"

// CheckInvariants verifies card conservation, trump lifetime and the
// going-alone fields.
func CheckInvariants(g *GameState) error {
	seen := make(map[string]int, 24)
	count := func(cards []Card) {
		for _, c := range cards {
			seen[c.ID]++
		}
	}
	count(g.Deck)
	count(g.Kitty)
	count(g.DiscardPile)
	for _, r := range g.PlayerOrder {
		count(g.Players[r].Hand)
	}
	full := CreateDeck()
	if len(seen) != len(full) {
		return fmt.Errorf("card conservation: %d distinct cards in play, want %d", len(seen), len(full))
	}
	for _, c := range full {
		if seen[c.ID] != 1 {
			return fmt.Errorf("card conservation: %s seen %d times", c.ID, seen[c.ID])
		}
	}

	switch g.Phase {
	case PhaseLobby, PhaseDealing, PhaseOrderUpRound1, PhaseOrderUpRound2:
		if g.Trump != nil {
			return fmt.Errorf("trump %s set during %s", *g.Trump, g.Phase)
		}
	}

	if g.GoingAlone {
		if g.PlayerGoingAlone == "" || g.PartnerSittingOut != Partner(g.PlayerGoingAlone) {
			return fmt.Errorf("going alone with caller %q and sitting out %q", g.PlayerGoingAlone, g.PartnerSittingOut)
		}
	} else if g.PlayerGoingAlone != "" || g.PartnerSittingOut != "" {
		return fmt.Errorf("not going alone but caller %q / sitting out %q set", g.PlayerGoingAlone, g.PartnerSittingOut)
	}
	return nil
}

package euchre

// IsValidPlay reports whether role may play card now. The card must be in
// hand; if the player can follow the led (effective) suit they must.
func IsValidPlay(g *GameState, role Role, card Card) bool {
	p := g.Players[role]
	if p == nil || indexOfCard(p.Hand, card.ID) < 0 {
		return false
	}
	led, ok := g.LedSuit()
	if !ok {
		return true
	}
	trump := g.TrumpSuit()
	if EffectiveSuit(card, trump) == led {
		return true
	}
	return !holdsSuit(p.Hand, led, trump)
}

// LegalPlays returns every card in role's hand that IsValidPlay accepts.
func LegalPlays(g *GameState, role Role) []Card {
	p := g.Players[role]
	if p == nil {
		return nil
	}
	out := make([]Card, 0, len(p.Hand))
	for _, c := range p.Hand {
		if IsValidPlay(g, role, c) {
			out = append(out, c)
		}
	}
	return out
}

func holdsSuit(hand []Card, suit, trump Suit) bool {
	for _, c := range hand {
		if EffectiveSuit(c, trump) == suit {
			return true
		}
	}
	return false
}

// TrickWinner returns the seat that played the strongest card. plays[0] is
// the lead.
func TrickWinner(plays []Play, trump Suit) Role {
	if len(plays) == 0 {
		return ""
	}
	led := EffectiveSuit(plays[0].Card, trump)
	best := 0
	bestRank := EffectiveRank(plays[0].Card, trump, led)
	for i := 1; i < len(plays); i++ {
		if r := EffectiveRank(plays[i].Card, trump, led); r > bestRank {
			best, bestRank = i, r
		}
	}
	return plays[best].Player
}

func (s *Session) playCardLocked(actor Role, a Action) error {
	act := a.(PlayCard)
	g := s.state
	p := g.Players[actor]

	idx := indexOfCard(p.Hand, act.Card.ID)
	if idx < 0 {
		return ruleErr(KindInvalidCard, ActionPlayCard, "%s is not in your hand", act.Card.ID)
	}
	if !IsValidPlay(g, actor, act.Card) {
		led, _ := g.LedSuit()
		return ruleErr(KindInvalidCard, ActionPlayCard, "must follow %s", led)
	}

	card := p.Hand[idx]
	p.Hand = removeCard(p.Hand, idx)
	g.DiscardPile = append(g.DiscardPile, card)
	g.CurrentTrickPlays = append(g.CurrentTrickPlays, Play{Player: actor, Card: card})
	s.logf("%s played %s", actor.Title(), card.ID)

	if len(g.CurrentTrickPlays) < g.ActivePlayers() {
		g.CurrentPlayer = NextSeat(actor, g.PartnerSittingOut)
		return nil
	}
	s.resolveTrickLocked()
	return nil
}

func (s *Session) resolveTrickLocked() {
	g := s.state
	winner := TrickWinner(g.CurrentTrickPlays, g.TrumpSuit())

	g.Players[winner].TricksTakenThisHand++
	g.Tricks = append(g.Tricks, Trick{Plays: g.CurrentTrickPlays, Winner: winner})
	g.CurrentTrickPlays = []Play{}
	g.TrickLeader = winner
	g.CurrentPlayer = winner
	s.logf("%s takes the trick", winner.Title())

	if len(g.Tricks) == TricksPerHand {
		g.Phase = PhaseHandComplete
		s.scoreHandLocked()
	}
}

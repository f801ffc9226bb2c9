package euchre

// orderUpLocked handles round 1. The dealer is the fourth seat to speak, so
// a pass from the dealer means everyone passed.
func (s *Session) orderUpLocked(actor Role, a Action) error {
	act := a.(OrderUp)
	g := s.state

	if !act.Decision {
		s.logf("%s passed", actor.Title())
		if actor == g.Dealer {
			g.UpCardTurnedDown = true
			g.OrderUpRound = 2
			g.Phase = PhaseOrderUpRound2
			g.CurrentPlayer = NextSeat(g.Dealer, "")
			s.logf("Everyone passed. %s is turned down", g.UpCard.ID)
			return nil
		}
		g.CurrentPlayer = NextSeat(actor, "")
		return nil
	}

	up := *g.UpCard
	trump := up.Suit
	maker := TeamOf(actor)
	g.Trump = &trump
	g.Maker = &maker
	g.PlayerWhoCalledTrump = actor

	if idx := indexOfCard(g.Kitty, up.ID); idx >= 0 {
		g.Kitty = removeCard(g.Kitty, idx)
	}
	dealer := g.Players[g.Dealer]
	dealer.Hand = append(dealer.Hand, up)

	g.Phase = PhaseAwaitingDealerDiscard
	g.CurrentPlayer = g.Dealer
	if actor == g.Dealer {
		s.logf("%s picks up %s", actor.Title(), up.ID)
	} else {
		s.logf("%s orders up %s", actor.Title(), up.ID)
	}
	s.logf("Trump is %s", trump)
	return nil
}

func (s *Session) dealerDiscardLocked(actor Role, a Action) error {
	act := a.(DealerDiscard)
	g := s.state
	dealer := g.Players[actor]

	idx := indexOfCard(dealer.Hand, act.Card.ID)
	if idx < 0 {
		return ruleErr(KindInvalidCard, ActionDealerDiscard, "%s is not in the dealer's hand", act.Card.ID)
	}
	dealer.Hand = removeCard(dealer.Hand, idx)
	g.DiscardPile = append(g.DiscardPile, act.Card)
	g.DealerHasDiscarded = true

	g.Phase = PhaseAwaitingGoAlone
	g.CurrentPlayer = g.PlayerWhoCalledTrump
	s.logf("%s discarded a card", actor.Title())
	return nil
}

// callTrumpLocked handles round 2. A nil suit is a pass; four passes redeal.
func (s *Session) callTrumpLocked(actor Role, a Action) error {
	act := a.(CallTrump)
	g := s.state

	if act.Suit == nil {
		s.logf("%s passed", actor.Title())
		if actor == g.Dealer {
			s.logf("Everyone passed again. Redealing...")
			s.emit(EventRedeal)
			s.startNewHandLocked()
			return nil
		}
		g.CurrentPlayer = NextSeat(actor, "")
		return nil
	}

	suit := *act.Suit
	if g.UpCard != nil && suit == g.UpCard.Suit {
		return ruleErr(KindInvalidSuit, ActionCallTrump, "cannot call %s: it is the turned-down suit", suit)
	}

	maker := TeamOf(actor)
	g.Trump = &suit
	g.Maker = &maker
	g.PlayerWhoCalledTrump = actor
	g.Phase = PhaseAwaitingGoAlone
	g.CurrentPlayer = actor
	s.logf("%s calls %s", actor.Title(), suit)
	s.logf("Trump is %s", suit)
	return nil
}

func (s *Session) goAloneLocked(actor Role, a Action) error {
	act := a.(GoAlone)
	g := s.state

	if act.Decision {
		g.GoingAlone = true
		g.PlayerGoingAlone = actor
		g.PartnerSittingOut = Partner(actor)
		s.logf("%s goes alone", actor.Title())
	} else {
		g.GoingAlone = false
		g.PlayerGoingAlone = ""
		g.PartnerSittingOut = ""
		s.logf("%s plays with a partner", actor.Title())
	}

	g.TrickLeader = NextSeat(g.Dealer, g.PartnerSittingOut)
	g.Phase = PhasePlayingTricks
	g.CurrentPlayer = g.TrickLeader
	s.logf("%s leads", g.TrickLeader.Title())
	return nil
}

package euchre

// newDeckLocked builds the deck for the next hand.
func (s *Session) newDeckLocked() []Card {
	if s.deckSource != nil {
		return append([]Card(nil), s.deckSource()...)
	}
	deck := CreateDeck()
	ShuffleDeck(deck, s.rng)
	return deck
}

// startNewHandLocked rotates the dealer (except on the first hand of a
// game), deals 5 cards each starting left of the dealer and opens round 1.
func (s *Session) startNewHandLocked() {
	g := s.state
	if g.InitialDealerForSession == "" {
		g.InitialDealerForSession = g.Dealer
	} else {
		g.Dealer = NextSeat(g.Dealer, "")
	}

	g.Phase = PhaseDealing
	g.Deck = s.newDeckLocked()
	g.Kitty = nil
	g.DiscardPile = []Card{}
	for _, r := range g.PlayerOrder {
		p := g.Players[r]
		p.Hand = make([]Card, 0, HandSize+1)
		p.TricksTakenThisHand = 0
	}

	seat := NextSeat(g.Dealer, "")
	for i := 0; i < HandSize*len(g.PlayerOrder); i++ {
		p := g.Players[seat]
		p.Hand = append(p.Hand, g.Deck[0])
		g.Deck = g.Deck[1:]
		seat = NextSeat(seat, "")
	}
	g.Kitty = append([]Card(nil), g.Deck[:KittySize]...)
	g.Deck = g.Deck[KittySize:]
	up := g.Kitty[0]
	g.UpCard = &up
	g.UpCardTurnedDown = false

	g.Trump = nil
	g.Maker = nil
	g.PlayerWhoCalledTrump = ""
	g.GoingAlone = false
	g.PlayerGoingAlone = ""
	g.PartnerSittingOut = ""
	g.OrderUpRound = 1
	g.DealerHasDiscarded = false
	g.Tricks = []Trick{}
	g.CurrentTrickPlays = []Play{}
	g.HandNumber++

	g.Phase = PhaseOrderUpRound1
	g.CurrentPlayer = NextSeat(g.Dealer, "")
	g.TrickLeader = g.CurrentPlayer

	s.logf("Hand %d: %s deals. The up-card is %s", g.HandNumber, g.Dealer.Title(), up.ID)
	s.emit(EventHandStarted)
}

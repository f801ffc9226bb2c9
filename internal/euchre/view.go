package euchre

// PlayerView is one seat as seen by a given viewer. Hand is only filled for
// the viewer's own seat.
type PlayerView struct {
	Role        Role     `json:"role"`
	PlayerID    PlayerID `json:"playerId,omitempty"`
	Name        string   `json:"name"`
	Team        Team     `json:"team"`
	Connected   bool     `json:"connected"`
	HandCount   int      `json:"handCount"`
	Hand        []Card   `json:"hand,omitempty"`
	TricksTaken int      `json:"tricksTaken"`
	SittingOut  bool     `json:"sittingOut"`
}

// View is the redacted state broadcast to one seat.
type View struct {
	GameID           string       `json:"gameId"`
	Phase            Phase        `json:"phase"`
	Seat             Role         `json:"seat,omitempty"`
	PlayerOrder      []Role       `json:"playerOrder"`
	Players          []PlayerView `json:"players"`
	UpCard           *Card        `json:"upCard,omitempty"`
	UpCardTurnedDown bool         `json:"upCardTurnedDown"`
	KittyCount       int          `json:"kittyCount"`

	Dealer                  Role `json:"dealer"`
	InitialDealerForSession Role `json:"initialDealerForSession,omitempty"`
	CurrentPlayer           Role `json:"currentPlayer,omitempty"`

	Trump                *Suit `json:"trump,omitempty"`
	Maker                *Team `json:"maker,omitempty"`
	PlayerWhoCalledTrump Role  `json:"playerWhoCalledTrump,omitempty"`
	OrderUpRound         int   `json:"orderUpRound"`
	DealerHasDiscarded   bool  `json:"dealerHasDiscarded"`

	GoingAlone        bool `json:"goingAlone"`
	PlayerGoingAlone  Role `json:"playerGoingAlone,omitempty"`
	PartnerSittingOut Role `json:"partnerSittingOut,omitempty"`

	CurrentTrickPlays []Play  `json:"currentTrickPlays"`
	Tricks            []Trick `json:"tricks"`
	TrickLeader       Role    `json:"trickLeader,omitempty"`

	Team1Score   int         `json:"team1Score"`
	Team2Score   int         `json:"team2Score"`
	WinningScore int         `json:"winningScore"`
	HandNumber   int         `json:"handNumber"`
	LastHand     *HandResult `json:"lastHand,omitempty"`
	Winner       *Team       `json:"winner,omitempty"`

	Messages       []LogEntry   `json:"messages"`
	AllowedActions []ActionKind `json:"allowedActions"`
	LegalPlays     []Card       `json:"legalPlays,omitempty"`
}

func buildView(src *GameState, dir *Directory, viewer Role) View {
	g := src.Clone()
	v := View{
		GameID:                  g.GameID,
		Phase:                   g.Phase,
		Seat:                    viewer,
		PlayerOrder:             g.PlayerOrder,
		UpCard:                  g.UpCard,
		UpCardTurnedDown:        g.UpCardTurnedDown,
		KittyCount:              len(g.Kitty),
		Dealer:                  g.Dealer,
		InitialDealerForSession: g.InitialDealerForSession,
		CurrentPlayer:           g.CurrentPlayer,
		Trump:                   g.Trump,
		Maker:                   g.Maker,
		PlayerWhoCalledTrump:    g.PlayerWhoCalledTrump,
		OrderUpRound:            g.OrderUpRound,
		DealerHasDiscarded:      g.DealerHasDiscarded,
		GoingAlone:              g.GoingAlone,
		PlayerGoingAlone:        g.PlayerGoingAlone,
		PartnerSittingOut:       g.PartnerSittingOut,
		CurrentTrickPlays:       g.CurrentTrickPlays,
		Tricks:                  g.Tricks,
		TrickLeader:             g.TrickLeader,
		Team1Score:              g.Team1Score,
		Team2Score:              g.Team2Score,
		WinningScore:            g.WinningScore,
		HandNumber:              g.HandNumber,
		LastHand:                g.LastHand,
		Winner:                  g.Winner,
		Messages:                g.Messages,
	}
	for _, r := range g.PlayerOrder {
		p := g.Players[r]
		pv := PlayerView{
			Role:        r,
			PlayerID:    p.PlayerID,
			Name:        p.Name,
			Team:        p.Team,
			HandCount:   len(p.Hand),
			TricksTaken: p.TricksTakenThisHand,
			SittingOut:  g.GoingAlone && r == g.PartnerSittingOut,
		}
		if seat, ok := dir.Get(r); ok {
			pv.Connected = seat.Connected
		}
		if r == viewer {
			pv.Hand = p.Hand
			SortHand(pv.Hand, g.TrumpSuit())
		}
		v.Players = append(v.Players, pv)
	}
	if viewer.Valid() {
		v.AllowedActions = AllowedActions(g, viewer)
		if g.Phase == PhasePlayingTricks && g.CurrentPlayer == viewer {
			v.LegalPlays = LegalPlays(g, viewer)
		}
	}
	return v
}

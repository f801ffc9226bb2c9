package euchre

// Phase is a state of the hand/game state machine.
type Phase string

const (
	PhaseLobby                 Phase = "LOBBY"
	PhaseDealing               Phase = "DEALING"
	PhaseOrderUpRound1         Phase = "ORDER_UP_ROUND1"
	PhaseAwaitingDealerDiscard Phase = "AWAITING_DEALER_DISCARD"
	PhaseOrderUpRound2         Phase = "ORDER_UP_ROUND2"
	PhaseAwaitingGoAlone       Phase = "AWAITING_GO_ALONE"
	PhasePlayingTricks         Phase = "PLAYING_TRICKS"
	PhaseHandComplete          Phase = "HAND_COMPLETE"
	PhaseGameOver              Phase = "GAME_OVER"
)

const (
	HandSize        = 5
	KittySize       = 4
	TricksPerHand   = 5
	DefaultWinScore = 10
)

type PlayerState struct {
	PlayerID            PlayerID `json:"playerId"`
	ConnectionRef       string   `json:"-"`
	Name                string   `json:"name"`
	Hand                []Card   `json:"hand"`
	Team                Team     `json:"team"`
	TricksTakenThisHand int      `json:"tricksTakenThisHand"`
}

type Play struct {
	Player Role `json:"player"`
	Card   Card `json:"card"`
}

type Trick struct {
	Plays  []Play `json:"plays"`
	Winner Role   `json:"winner"`
}

type LogEntry struct {
	Seq       int    `json:"seq"`
	Timestamp int64  `json:"timestamp"`
	Content   string `json:"content"`
}

// HandResult summarises a scored hand.
type HandResult struct {
	HandNumber  int     `json:"handNumber"`
	Dealer      Role    `json:"dealer"`
	Trump       Suit    `json:"trump"`
	Maker       Team    `json:"maker"`
	Caller      Role    `json:"caller"`
	GoingAlone  bool    `json:"goingAlone"`
	MakerTricks int     `json:"makerTricks"`
	ScoringTeam Team    `json:"scoringTeam"`
	Points      int     `json:"points"`
	Euchred     bool    `json:"euchred"`
	Team1Score  int     `json:"team1Score"`
	Team2Score  int     `json:"team2Score"`
	Tricks      []Trick `json:"tricks"`
}

// GameState is the single mutable aggregate of one session.
type GameState struct {
	GameID      string                `json:"gameId"`
	Phase       Phase                 `json:"phase"`
	PlayerOrder []Role                `json:"playerOrder"`
	Players     map[Role]*PlayerState `json:"players"`

	Deck        []Card `json:"-"`
	Kitty       []Card `json:"-"`
	UpCard      *Card  `json:"upCard"`
	DiscardPile []Card `json:"-"`

	// UpCardTurnedDown is set once all four seats pass in round 1.
	UpCardTurnedDown bool `json:"upCardTurnedDown"`

	Dealer                  Role `json:"dealer"`
	InitialDealerForSession Role `json:"initialDealerForSession"`
	CurrentPlayer           Role `json:"currentPlayer"`

	Trump                *Suit `json:"trump"`
	Maker                *Team `json:"maker"`
	PlayerWhoCalledTrump Role  `json:"playerWhoCalledTrump"`

	OrderUpRound       int  `json:"orderUpRound"`
	DealerHasDiscarded bool `json:"dealerHasDiscarded"`

	GoingAlone        bool `json:"goingAlone"`
	PlayerGoingAlone  Role `json:"playerGoingAlone"`
	PartnerSittingOut Role `json:"partnerSittingOut"`

	CurrentTrickPlays []Play  `json:"currentTrickPlays"`
	Tricks            []Trick `json:"tricks"`
	TrickLeader       Role    `json:"trickLeader"`

	Team1Score   int         `json:"team1Score"`
	Team2Score   int         `json:"team2Score"`
	WinningScore int         `json:"winningScore"`
	HandNumber   int         `json:"handNumber"`
	LastHand     *HandResult `json:"lastHand,omitempty"`
	Winner       *Team       `json:"winner,omitempty"`

	Messages []LogEntry `json:"messages"`
}

func newGameState(gameID string, winningScore int) *GameState {
	gs := &GameState{
		GameID:       gameID,
		Phase:        PhaseLobby,
		PlayerOrder:  append([]Role(nil), PlayerOrder...),
		Players:      make(map[Role]*PlayerState, len(PlayerOrder)),
		Deck:         CreateDeck(),
		WinningScore: winningScore,
		OrderUpRound: 1,
	}
	for _, r := range PlayerOrder {
		gs.Players[r] = &PlayerState{Team: TeamOf(r), Hand: []Card{}}
	}
	return gs
}

// TrumpSuit returns the trump suit or "" before a call.
func (g *GameState) TrumpSuit() Suit {
	if g.Trump == nil {
		return ""
	}
	return *g.Trump
}

// ActivePlayers is 3 when someone goes alone, else 4.
func (g *GameState) ActivePlayers() int {
	if g.GoingAlone {
		return len(g.PlayerOrder) - 1
	}
	return len(g.PlayerOrder)
}

// TeamTricks counts tricks taken by both members of team this hand.
func (g *GameState) TeamTricks(t Team) int {
	n := 0
	for _, r := range t.Members() {
		if p := g.Players[r]; p != nil {
			n += p.TricksTakenThisHand
		}
	}
	return n
}

func (g *GameState) Score(t Team) int {
	if t == TeamUs {
		return g.Team1Score
	}
	return g.Team2Score
}

func (g *GameState) addScore(t Team, pts int) {
	if t == TeamUs {
		g.Team1Score += pts
	} else {
		g.Team2Score += pts
	}
}

// LedSuit is the effective suit of the first card of the current trick.
func (g *GameState) LedSuit() (Suit, bool) {
	if len(g.CurrentTrickPlays) == 0 {
		return "", false
	}
	return EffectiveSuit(g.CurrentTrickPlays[0].Card, g.TrumpSuit()), true
}

// Clone returns a deep copy safe to hand to other goroutines.
func (g *GameState) Clone() *GameState {
	cp := *g
	cp.PlayerOrder = append([]Role(nil), g.PlayerOrder...)
	cp.Players = make(map[Role]*PlayerState, len(g.Players))
	for r, p := range g.Players {
		pc := *p
		pc.Hand = append([]Card(nil), p.Hand...)
		cp.Players[r] = &pc
	}
	cp.Deck = append([]Card(nil), g.Deck...)
	cp.Kitty = append([]Card(nil), g.Kitty...)
	cp.DiscardPile = append([]Card(nil), g.DiscardPile...)
	if g.UpCard != nil {
		c := *g.UpCard
		cp.UpCard = &c
	}
	if g.Trump != nil {
		s := *g.Trump
		cp.Trump = &s
	}
	if g.Maker != nil {
		t := *g.Maker
		cp.Maker = &t
	}
	if g.Winner != nil {
		t := *g.Winner
		cp.Winner = &t
	}
	cp.CurrentTrickPlays = append([]Play(nil), g.CurrentTrickPlays...)
	cp.Tricks = cloneTricks(g.Tricks)
	if g.LastHand != nil {
		lh := *g.LastHand
		lh.Tricks = cloneTricks(g.LastHand.Tricks)
		cp.LastHand = &lh
	}
	cp.Messages = append([]LogEntry(nil), g.Messages...)
	return &cp
}

func cloneTricks(ts []Trick) []Trick {
	out := make([]Trick, len(ts))
	for i, t := range ts {
		out[i] = Trick{Plays: append([]Play(nil), t.Plays...), Winner: t.Winner}
	}
	return out
}

package euchre

// transition is one legal (phase, action) pair. actor returns the seat that
// must issue the action; ok=false means any seated player may.
type transition struct {
	actor func(g *GameState) (Role, bool)
	apply func(s *Session, actor Role, a Action) error
}

type transitionKey struct {
	phase Phase
	kind  ActionKind
}

func anySeat(*GameState) (Role, bool) { return "", false }

func currentPlayer(g *GameState) (Role, bool) { return g.CurrentPlayer, true }

func dealerSeat(g *GameState) (Role, bool) { return g.Dealer, true }

func trumpCaller(g *GameState) (Role, bool) { return g.PlayerWhoCalledTrump, true }

// transitions is the whole phase machine. Anything not listed here is an
// InvalidPhaseError. DEALING and HAND_COMPLETE accept nothing: both are
// passed through inside a single action.
var transitions = map[transitionKey]transition{
	{PhaseLobby, ActionStartGame}:                     {actor: anySeat, apply: (*Session).startGameLocked},
	{PhaseOrderUpRound1, ActionOrderUp}:               {actor: currentPlayer, apply: (*Session).orderUpLocked},
	{PhaseAwaitingDealerDiscard, ActionDealerDiscard}: {actor: dealerSeat, apply: (*Session).dealerDiscardLocked},
	{PhaseOrderUpRound2, ActionCallTrump}:             {actor: currentPlayer, apply: (*Session).callTrumpLocked},
	{PhaseAwaitingGoAlone, ActionGoAlone}:             {actor: trumpCaller, apply: (*Session).goAloneLocked},
	{PhasePlayingTricks, ActionPlayCard}:              {actor: currentPlayer, apply: (*Session).playCardLocked},
	{PhaseGameOver, ActionNewGame}:                    {actor: anySeat, apply: (*Session).newGameLocked},
}

var allKinds = []ActionKind{
	ActionStartGame,
	ActionOrderUp,
	ActionDealerDiscard,
	ActionCallTrump,
	ActionGoAlone,
	ActionPlayCard,
	ActionNewGame,
}

func lookupTransition(phase Phase, kind ActionKind) (transition, bool) {
	tr, ok := transitions[transitionKey{phase: phase, kind: kind}]
	return tr, ok
}

// AllowedActions lists what role may do right now.
func AllowedActions(g *GameState, role Role) []ActionKind {
	var out []ActionKind
	for _, k := range allKinds {
		tr, ok := lookupTransition(g.Phase, k)
		if !ok {
			continue
		}
		if expected, strict := tr.actor(g); strict && expected != role {
			continue
		}
		out = append(out, k)
	}
	return out
}

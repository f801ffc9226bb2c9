package euchre

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventKind names a domain event produced by a successful action.
type EventKind string

const (
	EventGameStarted EventKind = "game_started"
	EventHandStarted EventKind = "hand_started"
	EventRedeal      EventKind = "redeal"
	EventHandScored  EventKind = "hand_scored"
	EventGameOver    EventKind = "game_over"
	EventGameReset   EventKind = "game_reset"
)

type Event struct {
	Kind       EventKind   `json:"kind"`
	GameID     string      `json:"gameId"`
	HandNumber int         `json:"handNumber"`
	Hand       *HandResult `json:"hand,omitempty"`
	Winner     Team        `json:"winner,omitempty"`
	Team1Score int         `json:"team1Score"`
	Team2Score int         `json:"team2Score"`
}

// Outcome is what a successful action produced besides the new state.
type Outcome struct {
	Events []Event
}

type Option func(*Session)

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

func WithRand(r *rand.Rand) Option {
	return func(s *Session) { s.rng = r }
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func WithWinningScore(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.winningScore = n
		}
	}
}

// WithInitialDealer fixes the first dealer instead of drawing one.
func WithInitialDealer(r Role) Option {
	return func(s *Session) { s.initialDealer = r }
}

// WithDeckSource replaces create-and-shuffle for every hand.
func WithDeckSource(fn func() []Card) Option {
	return func(s *Session) { s.deckSource = fn }
}

// Session owns one GameState. Every exported method takes the session lock,
// so actions are applied strictly one at a time.
type Session struct {
	mu sync.Mutex

	state *GameState
	dir   *Directory

	rng           *rand.Rand
	log           *zap.Logger
	now           func() time.Time
	winningScore  int
	initialDealer Role
	deckSource    func() []Card

	pending []Event
}

func NewSession(opts ...Option) *Session {
	s := &Session{
		dir:          NewDirectory(),
		log:          zap.NewNop(),
		now:          time.Now,
		winningScore: DefaultWinScore,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s.resetLocked()
	return s
}

// Join seats a player. Outside the lobby only already seated players are
// accepted (and simply get their seat back).
func (s *Session) Join(id PlayerID, name string, preferred Role) (Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if role, ok := s.dir.RoleOf(id); ok {
		return role, nil
	}
	if s.state.Phase != PhaseLobby {
		return "", ruleErr(KindInvalidPhase, "", "game already started")
	}
	role, err := s.dir.Seat(id, name, preferred)
	if err != nil {
		return "", ruleErr(KindInvalidAction, "", "%v", err)
	}
	p := s.state.Players[role]
	p.PlayerID = id
	p.Name = name
	s.logf("%s joined as %s", displayName(name, role), role.Title())
	return role, nil
}

// Leave frees a seat while still in the lobby.
func (s *Session) Leave(id PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Phase != PhaseLobby {
		return ruleErr(KindInvalidPhase, "", "cannot leave a game in progress")
	}
	role, ok := s.dir.Unseat(id)
	if !ok {
		return ruleErr(KindInvalidTurn, "", "player is not seated")
	}
	name := s.state.Players[role].Name
	s.state.Players[role] = &PlayerState{Team: TeamOf(role), Hand: []Card{}}
	s.logf("%s left", displayName(name, role))
	return nil
}

// Reconnect binds a fresh connection to the seat held by id. Game state is
// not touched beyond the connection reference.
func (s *Session) Reconnect(id PlayerID, connRef string) (Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	role, ok := s.dir.Bind(id, connRef)
	if !ok {
		return "", ruleErr(KindInvalidTurn, "", "player is not seated")
	}
	s.state.Players[role].ConnectionRef = connRef
	return role, nil
}

// Disconnect releases a connection; the seat stays reserved.
func (s *Session) Disconnect(connRef string) (Role, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	role, ok := s.dir.Release(connRef)
	if ok {
		s.state.Players[role].ConnectionRef = ""
	}
	return role, ok
}

func (s *Session) RoleOf(id PlayerID) (Role, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir.RoleOf(id)
}

// Handle applies an action on behalf of a seated player.
func (s *Session) Handle(id PlayerID, a Action) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	role, ok := s.dir.RoleOf(id)
	if !ok {
		kind := ActionKind("")
		if a != nil {
			kind = a.Kind()
		}
		return Outcome{}, s.reject("", kind, ruleErr(KindInvalidTurn, kind, "player is not seated"))
	}
	return s.handleLocked(role, a)
}

// HandleAs applies an action for a role directly.
func (s *Session) HandleAs(role Role, a Action) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handleLocked(role, a)
}

func (s *Session) handleLocked(role Role, a Action) (Outcome, error) {
	if a == nil {
		return Outcome{}, s.reject(role, "", ruleErr(KindInvalidAction, "", "missing action"))
	}
	kind := a.Kind()
	tr, ok := lookupTransition(s.state.Phase, kind)
	if !ok {
		return Outcome{}, s.reject(role, kind, ruleErr(KindInvalidPhase, kind, "not allowed during %s", s.state.Phase))
	}
	if expected, strict := tr.actor(s.state); strict && expected != role {
		return Outcome{}, s.reject(role, kind, ruleErr(KindInvalidTurn, kind, "waiting for %s", expected))
	}

	s.pending = nil
	if err := tr.apply(s, role, a); err != nil {
		s.pending = nil
		return Outcome{}, s.reject(role, kind, err)
	}
	out := Outcome{Events: s.pending}
	s.pending = nil
	return out, nil
}

func (s *Session) reject(role Role, kind ActionKind, err error) error {
	var re *RuleError
	if !errors.As(err, &re) {
		re = ruleErr(KindInvalidAction, kind, "%v", err)
	}
	s.log.Warn(fmt.Sprintf("Invalid %s attempt", kind),
		zap.String("gameID", s.state.GameID),
		zap.String("role", string(role)),
		zap.String("phase", string(s.state.Phase)),
		zap.String("kind", string(re.Kind)),
		zap.Error(re),
	)
	return re
}

// Snapshot returns a deep copy of the current state.
func (s *Session) Snapshot() *GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// View returns the state as seen from one seat.
func (s *Session) View(role Role) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return buildView(s.state, s.dir, role)
}

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Phase
}

func (s *Session) startGameLocked(_ Role, _ Action) error {
	if !s.dir.Full() {
		return ruleErr(KindInvalidAction, ActionStartGame, "four seated players required, have %d", s.dir.Len())
	}
	s.logf("Game started")
	s.emit(EventGameStarted)
	s.startNewHandLocked()
	return nil
}

func (s *Session) newGameLocked(_ Role, _ Action) error {
	s.resetLocked()
	s.emit(EventGameReset)
	return nil
}

// resetLocked is the full reset: new game id, fresh deck, lobby, zero
// scores. Seated players keep their seats.
func (s *Session) resetLocked() {
	s.state = newGameState(uuid.NewString(), s.winningScore)
	for _, r := range PlayerOrder {
		if seat, ok := s.dir.Get(r); ok {
			p := s.state.Players[r]
			p.PlayerID = seat.PlayerID
			p.Name = seat.Name
			p.ConnectionRef = seat.ConnectionRef
		}
	}
	dealer := s.initialDealer
	if !dealer.Valid() {
		dealer = PlayerOrder[s.rng.Intn(len(PlayerOrder))]
	}
	s.state.Dealer = dealer
	s.logf("New game %s", s.state.GameID)
}

func (s *Session) emit(kind EventKind) {
	g := s.state
	ev := Event{
		Kind:       kind,
		GameID:     g.GameID,
		HandNumber: g.HandNumber,
		Team1Score: g.Team1Score,
		Team2Score: g.Team2Score,
	}
	if kind == EventHandScored && g.LastHand != nil {
		h := *g.LastHand
		h.Tricks = cloneTricks(g.LastHand.Tricks)
		ev.Hand = &h
	}
	if kind == EventGameOver && g.Winner != nil {
		ev.Winner = *g.Winner
	}
	s.pending = append(s.pending, ev)
}

func (s *Session) logf(format string, args ...any) {
	g := s.state
	g.Messages = append(g.Messages, LogEntry{
		Seq:       len(g.Messages) + 1,
		Timestamp: s.now().UnixMilli(),
		Content:   fmt.Sprintf(format, args...),
	})
}

func displayName(name string, role Role) string {
	if name == "" {
		return role.Title()
	}
	return name
}

package game

import (
	"encoding/json"
	"errors"
	"sync"

	"euchre-service/internal/euchre"
	"euchre-service/internal/service/table"
	"euchre-service/pkg/logger"

	"go.uber.org/zap"
)

const (
	subscriberBuffer = 8
	recordBuffer     = 64
)

type OutgoingMessage struct {
	Type string      `json:"type"`
	Seq  int64       `json:"seq"`
	Data interface{} `json:"data"`
}

type ErrorPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// recordJob is one engine event plus the seats at the time it happened.
type recordJob struct {
	TableID int64
	Event   euchre.Event
	Seats   table.Seats
}

type subscriber struct {
	playerID euchre.PlayerID
	ch       chan OutgoingMessage
}

// TableRuntime serialises everything that happens at one table: engine
// actions, connection changes and the state broadcasts that follow them.
type TableRuntime struct {
	tableID int64
	session *euchre.Session

	subscribers map[string]*subscriber // by connection ref
	seq         int64
	closed      bool

	mu sync.Mutex

	records chan recordJob
	wg      sync.WaitGroup
}

func newTableRuntime(tableID int64, session *euchre.Session, sink func(recordJob)) *TableRuntime {
	rt := &TableRuntime{
		tableID:     tableID,
		session:     session,
		subscribers: make(map[string]*subscriber),
		records:     make(chan recordJob, recordBuffer),
	}
	rt.wg.Add(1)
	go func() {
		defer rt.wg.Done()
		for job := range rt.records {
			sink(job)
		}
	}()
	return rt
}

func (rt *TableRuntime) TableID() int64 { return rt.tableID }

// Connect binds a new connection to the player's seat and subscribes it.
// Any older connection of the same player is closed.
func (rt *TableRuntime) Connect(playerID euchre.PlayerID, connRef string) (<-chan OutgoingMessage, euchre.Role, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	role, err := rt.session.Reconnect(playerID, connRef)
	if err != nil {
		return nil, "", err
	}
	for ref, sub := range rt.subscribers {
		if sub.playerID == playerID {
			delete(rt.subscribers, ref)
			close(sub.ch)
		}
	}
	ch := make(chan OutgoingMessage, subscriberBuffer)
	rt.subscribers[connRef] = &subscriber{playerID: playerID, ch: ch}
	rt.broadcastStateLocked()
	return ch, role, nil
}

// Disconnect drops a connection. The seat stays reserved.
func (rt *TableRuntime) Disconnect(connRef string) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	sub, ok := rt.subscribers[connRef]
	if !ok {
		return
	}
	delete(rt.subscribers, connRef)
	close(sub.ch)
	if _, released := rt.session.Disconnect(connRef); released {
		rt.broadcastStateLocked()
	}
}

// HandleAction decodes and applies one client message. Rule errors are
// returned to the caller and never broadcast.
func (rt *TableRuntime) HandleAction(playerID euchre.PlayerID, connRef, action string, data json.RawMessage) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	switch action {
	case "ping":
		rt.pushMessageLocked(connRef, OutgoingMessage{Type: "pong", Seq: rt.nextSeqLocked(), Data: map[string]string{"message": "pong"}})
		return nil
	case "rejoin", "sync":
		rt.pushStateLocked(connRef)
		return nil
	}

	a, err := euchre.DecodeAction(action, data)
	if err != nil {
		return err
	}
	out, err := rt.session.Handle(playerID, a)
	if err != nil {
		return err
	}
	rt.broadcastStateLocked()
	rt.enqueueLocked(out.Events)
	return nil
}

// Join seats a player in the engine while the table is in the lobby.
func (rt *TableRuntime) Join(playerID euchre.PlayerID, name string, role euchre.Role) (euchre.Role, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	got, err := rt.session.Join(playerID, name, role)
	if err != nil {
		return "", err
	}
	rt.broadcastStateLocked()
	return got, nil
}

func (rt *TableRuntime) Leave(playerID euchre.PlayerID) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if err := rt.session.Leave(playerID); err != nil {
		return err
	}
	rt.broadcastStateLocked()
	return nil
}

// SendError delivers an error to a single connection.
func (rt *TableRuntime) SendError(connRef string, err error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.pushMessageLocked(connRef, OutgoingMessage{Type: "error", Data: errorPayload(err)})
}

func (rt *TableRuntime) View(role euchre.Role) euchre.View {
	return rt.session.View(role)
}

func (rt *TableRuntime) Phase() euchre.Phase {
	return rt.session.Phase()
}

func (rt *TableRuntime) pushStateLocked(connRef string) {
	sub, ok := rt.subscribers[connRef]
	if !ok {
		return
	}
	rt.pushMessageLocked(connRef, OutgoingMessage{
		Type: "state",
		Seq:  rt.nextSeqLocked(),
		Data: rt.viewForLocked(sub.playerID),
	})
}

func (rt *TableRuntime) broadcastStateLocked() {
	stateSeq := rt.nextSeqLocked()
	for ref, sub := range rt.subscribers {
		msg := OutgoingMessage{
			Type: "state",
			Seq:  stateSeq,
			Data: rt.viewForLocked(sub.playerID),
		}
		select {
		case sub.ch <- msg:
		default:
			logger.Log.Warn("ws subscriber channel full",
				zap.String("playerID", string(sub.playerID)),
				zap.String("conn", ref),
				zap.Int64("tableID", rt.tableID),
			)
		}
	}
}

func (rt *TableRuntime) pushMessageLocked(connRef string, msg OutgoingMessage) {
	sub, ok := rt.subscribers[connRef]
	if !ok {
		return
	}
	select {
	case sub.ch <- msg:
	default:
		logger.Log.Warn("ws subscriber channel full",
			zap.String("playerID", string(sub.playerID)),
			zap.Int64("tableID", rt.tableID),
		)
	}
}

func (rt *TableRuntime) viewForLocked(playerID euchre.PlayerID) euchre.View {
	role, _ := rt.session.RoleOf(playerID)
	return rt.session.View(role)
}

func (rt *TableRuntime) nextSeqLocked() int64 {
	rt.seq++
	return rt.seq
}

func (rt *TableRuntime) enqueueLocked(events []euchre.Event) {
	if len(events) == 0 || rt.closed {
		return
	}
	seats := rt.seatsLocked()
	for _, ev := range events {
		rt.records <- recordJob{TableID: rt.tableID, Event: ev, Seats: seats}
	}
}

func (rt *TableRuntime) seatsLocked() table.Seats {
	g := rt.session.Snapshot()
	seats := make(table.Seats, len(g.Players))
	for r, p := range g.Players {
		if p.PlayerID != "" {
			seats[r] = table.Seat{PlayerID: string(p.PlayerID), Name: p.Name}
		}
	}
	return seats
}

// close stops the record worker after draining it and drops all
// subscribers.
func (rt *TableRuntime) close() {
	rt.mu.Lock()
	if rt.closed {
		rt.mu.Unlock()
		return
	}
	rt.closed = true
	for ref, sub := range rt.subscribers {
		delete(rt.subscribers, ref)
		close(sub.ch)
	}
	close(rt.records)
	rt.mu.Unlock()
	rt.wg.Wait()
}

func errorPayload(err error) ErrorPayload {
	var re *euchre.RuleError
	if errors.As(err, &re) {
		return ErrorPayload{Kind: string(re.Kind), Message: re.Error()}
	}
	return ErrorPayload{Kind: string(euchre.KindInvalidAction), Message: err.Error()}
}

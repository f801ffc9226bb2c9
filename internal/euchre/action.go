package euchre

import (
	"bytes"
	"encoding/json"
)

// ActionKind names an inbound action.
type ActionKind string

const (
	ActionStartGame     ActionKind = "request_start_game"
	ActionOrderUp       ActionKind = "action_order_up"
	ActionDealerDiscard ActionKind = "action_dealer_discard"
	ActionCallTrump     ActionKind = "action_call_trump"
	ActionGoAlone       ActionKind = "action_go_alone"
	ActionPlayCard      ActionKind = "action_play_card"
	ActionNewGame       ActionKind = "request_new_game"
)

// Action is the closed set of inbound actions. Only the types in this file
// implement it.
type Action interface {
	Kind() ActionKind
	isAction()
}

type StartGame struct{}

type OrderUp struct {
	Decision bool
}

type DealerDiscard struct {
	Card Card
}

// CallTrump with a nil Suit is a pass.
type CallTrump struct {
	Suit *Suit
}

type GoAlone struct {
	Decision bool
}

type PlayCard struct {
	Card Card
}

type NewGame struct{}

func (StartGame) Kind() ActionKind     { return ActionStartGame }
func (OrderUp) Kind() ActionKind       { return ActionOrderUp }
func (DealerDiscard) Kind() ActionKind { return ActionDealerDiscard }
func (CallTrump) Kind() ActionKind     { return ActionCallTrump }
func (GoAlone) Kind() ActionKind       { return ActionGoAlone }
func (PlayCard) Kind() ActionKind      { return ActionPlayCard }
func (NewGame) Kind() ActionKind       { return ActionNewGame }

func (StartGame) isAction()     {}
func (OrderUp) isAction()       {}
func (DealerDiscard) isAction() {}
func (CallTrump) isAction()     {}
func (GoAlone) isAction()       {}
func (PlayCard) isAction()      {}
func (NewGame) isAction()       {}

// CardRef is how clients name a card: either {"id": "J-spades"} or
// {"rank": "J", "suit": "spades"}.
type CardRef struct {
	ID   string `json:"id"`
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

func (r CardRef) resolve() (Card, error) {
	if r.ID != "" {
		return ParseCardID(r.ID)
	}
	return ParseCardID(r.Rank + "-" + r.Suit)
}

// DecodeAction validates a raw payload into an Action. Every failure is an
// InvalidActionError so malformed input never reaches the phase machine.
func DecodeAction(kind string, raw json.RawMessage) (Action, error) {
	ak := ActionKind(kind)
	switch ak {
	case ActionStartGame:
		return StartGame{}, nil
	case ActionNewGame:
		return NewGame{}, nil
	case ActionOrderUp, ActionGoAlone:
		var p struct {
			Decision *bool `json:"decision"`
		}
		if err := decodePayload(raw, &p); err != nil || p.Decision == nil {
			return nil, ruleErr(KindInvalidAction, ak, "decision must be true or false")
		}
		if ak == ActionOrderUp {
			return OrderUp{Decision: *p.Decision}, nil
		}
		return GoAlone{Decision: *p.Decision}, nil
	case ActionDealerDiscard:
		var p struct {
			CardToDiscard *CardRef `json:"cardToDiscard"`
		}
		if err := decodePayload(raw, &p); err != nil || p.CardToDiscard == nil {
			return nil, ruleErr(KindInvalidAction, ak, "cardToDiscard is required")
		}
		c, err := p.CardToDiscard.resolve()
		if err != nil {
			return nil, ruleErr(KindInvalidAction, ak, "%v", err)
		}
		return DealerDiscard{Card: c}, nil
	case ActionCallTrump:
		var p struct {
			Suit *string `json:"suit"`
		}
		if err := decodePayload(raw, &p); err != nil {
			return nil, ruleErr(KindInvalidAction, ak, "malformed payload")
		}
		if p.Suit == nil {
			return CallTrump{}, nil
		}
		s, err := ParseSuit(*p.Suit)
		if err != nil {
			return nil, ruleErr(KindInvalidAction, ak, "%v", err)
		}
		return CallTrump{Suit: &s}, nil
	case ActionPlayCard:
		var p struct {
			Card *CardRef `json:"card"`
		}
		if err := decodePayload(raw, &p); err != nil || p.Card == nil {
			return nil, ruleErr(KindInvalidAction, ak, "card is required")
		}
		c, err := p.Card.resolve()
		if err != nil {
			return nil, ruleErr(KindInvalidAction, ak, "%v", err)
		}
		return PlayCard{Card: c}, nil
	}
	return nil, ruleErr(KindInvalidAction, ak, "unsupported action")
}

func decodePayload(raw json.RawMessage, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = json.RawMessage("{}")
	}
	return json.Unmarshal(raw, v)
}

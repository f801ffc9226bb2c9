package euchre

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAction(t *testing.T) {
	tests := []struct {
		kind string
		raw  string
		want Action
	}{
		{"request_start_game", ``, StartGame{}},
		{"request_new_game", `{}`, NewGame{}},
		{"action_order_up", `{"decision":true}`, OrderUp{Decision: true}},
		{"action_order_up", `{"decision":false}`, OrderUp{Decision: false}},
		{"action_go_alone", `{"decision":true}`, GoAlone{Decision: true}},
		{"action_dealer_discard", `{"cardToDiscard":{"id":"9-hearts"}}`, DealerDiscard{Card: card("9-hearts")}},
		{"action_dealer_discard", `{"cardToDiscard":{"rank":"A","suit":"clubs"}}`, DealerDiscard{Card: card("A-clubs")}},
		{"action_call_trump", `{"suit":null}`, CallTrump{}},
		{"action_call_trump", `{}`, CallTrump{}},
		{"action_call_trump", `{"suit":"spades"}`, CallTrump{Suit: suitPtr(Spades)}},
		{"action_play_card", `{"card":{"id":"J-diamonds"}}`, PlayCard{Card: card("J-diamonds")}},
	}
	for _, tt := range tests {
		t.Run(tt.kind+tt.raw, func(t *testing.T) {
			got, err := DecodeAction(tt.kind, json.RawMessage(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeActionRejects(t *testing.T) {
	tests := []struct {
		kind string
		raw  string
	}{
		{"action_order_up", `{}`},
		{"action_order_up", `{"decision":"yes"}`},
		{"action_go_alone", `not json`},
		{"action_dealer_discard", `{}`},
		{"action_dealer_discard", `{"cardToDiscard":{"id":"2-hearts"}}`},
		{"action_call_trump", `{"suit":"stars"}`},
		{"action_play_card", `{"card":null}`},
		{"action_play_card", `{"card":{"rank":"J"}}`},
		{"action_shuffle", `{}`},
		{"", ``},
	}
	for _, tt := range tests {
		t.Run(tt.kind+tt.raw, func(t *testing.T) {
			_, err := DecodeAction(tt.kind, json.RawMessage(tt.raw))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidAction)
		})
	}
}

func TestRuleErrorIs(t *testing.T) {
	err := ruleErr(KindInvalidCard, ActionPlayCard, "must follow %s", Hearts)
	assert.ErrorIs(t, err, ErrInvalidCard)
	assert.NotErrorIs(t, err, ErrInvalidSuit)
	assert.Equal(t, "action_play_card: must follow hearts", err.Error())
}

func TestAllowedActionsFollowPhase(t *testing.T) {
	g := newGameState("g", DefaultWinScore)
	assert.Equal(t, []ActionKind{ActionStartGame}, AllowedActions(g, East))

	g.Phase = PhaseDealing
	assert.Empty(t, AllowedActions(g, East))

	g.Phase = PhaseAwaitingDealerDiscard
	g.Dealer = West
	assert.Equal(t, []ActionKind{ActionDealerDiscard}, AllowedActions(g, West))
	assert.Empty(t, AllowedActions(g, North))
}

package euchre

import "fmt"

// ErrorKind classifies a rejected action.
type ErrorKind string

const (
	KindInvalidPhase  ErrorKind = "InvalidPhaseError"
	KindInvalidTurn   ErrorKind = "InvalidTurnError"
	KindInvalidCard   ErrorKind = "InvalidCardError"
	KindInvalidSuit   ErrorKind = "InvalidSuitError"
	KindInvalidAction ErrorKind = "InvalidActionError"
)

// RuleError is returned for every rejected action. A RuleError never
// coincides with a state change.
type RuleError struct {
	Kind   ErrorKind
	Action ActionKind
	Msg    string
}

func (e *RuleError) Error() string {
	if e.Action == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Action, e.Msg)
}

// Is matches on Kind so errors.Is(err, ErrInvalidTurn) works.
func (e *RuleError) Is(target error) bool {
	t, ok := target.(*RuleError)
	if !ok {
		return false
	}
	return t.Msg == "" && t.Action == "" && t.Kind == e.Kind
}

var (
	ErrInvalidPhase  = &RuleError{Kind: KindInvalidPhase}
	ErrInvalidTurn   = &RuleError{Kind: KindInvalidTurn}
	ErrInvalidCard   = &RuleError{Kind: KindInvalidCard}
	ErrInvalidSuit   = &RuleError{Kind: KindInvalidSuit}
	ErrInvalidAction = &RuleError{Kind: KindInvalidAction}
)

func ruleErr(kind ErrorKind, action ActionKind, format string, args ...any) *RuleError {
	return &RuleError{Kind: kind, Action: action, Msg: fmt.Sprintf(format, args...)}
}

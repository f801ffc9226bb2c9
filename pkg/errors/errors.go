package errors

import "errors"

var (
	ErrUnauthorized = errors.New("unauthorized")

	ErrPlayerNotFound = errors.New("player not found")
	ErrInvalidName    = errors.New("name must be 1-32 characters")
	ErrPlayerBanned   = errors.New("player is banned")

	ErrTableNotFound     = errors.New("table not found")
	ErrTableAccessDenied = errors.New("table access denied")
	ErrTableFull         = errors.New("table is full")
	ErrTableBusy         = errors.New("table is busy, try again")
	ErrSeatTaken         = errors.New("seat is taken")
	ErrInvalidSeat       = errors.New("invalid seat")
	ErrInvalidPasscode   = errors.New("invalid passcode")
	ErrAlreadySeated     = errors.New("already seated at this table")
	ErrNotSeated         = errors.New("not seated at this table")
	ErrGameInProgress    = errors.New("game in progress")
)

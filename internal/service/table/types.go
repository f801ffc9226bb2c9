package table

import (
	"time"

	"euchre-service/internal/euchre"
)

// Seat is one claimed seat as stored in tables.seats_json.
type Seat struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
}

// Seats is keyed by role name.
type Seats map[euchre.Role]Seat

type CreateParams struct {
	OwnerID      string
	Name         string
	Passcode     string
	WinningScore int
}

type JoinRequest struct {
	TableID  int64
	PlayerID string
	Name     string
	Seat     euchre.Role // empty picks the first free seat
	Passcode string
}

type SeatInfo struct {
	Role     euchre.Role `json:"role"`
	PlayerID string      `json:"playerId,omitempty"`
	Name     string      `json:"name,omitempty"`
	Online   bool        `json:"online"`
}

type TableInfo struct {
	ID           int64      `json:"id"`
	Code         string     `json:"code"`
	Name         string     `json:"name"`
	OwnerID      string     `json:"ownerId"`
	Status       string     `json:"status"`
	HasPasscode  bool       `json:"hasPasscode"`
	WinningScore int        `json:"winningScore"`
	Seats        []SeatInfo `json:"seats"`
	CreatedAt    time.Time  `json:"createdAt"`
}

type ListResult struct {
	Items []TableInfo
	Total int64
}

package euchre

import "strings"

// Role is a fixed seat at the table.
type Role string

const (
	North Role = "north"
	East  Role = "east"
	South Role = "south"
	West  Role = "west"
)

// PlayerOrder is the clockwise turn order.
var PlayerOrder = []Role{North, East, South, West}

// Team is one of the two fixed partnerships.
type Team string

const (
	TeamUs   Team = "us"   // north/south
	TeamThem Team = "them" // east/west
)

func (r Role) Valid() bool {
	switch r {
	case North, East, South, West:
		return true
	}
	return false
}

// Title is the capitalised seat name used in the event log.
func (r Role) Title() string {
	if r == "" {
		return ""
	}
	return strings.ToUpper(string(r[:1])) + string(r[1:])
}

func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

// NextSeat returns the clockwise successor of role. When skip is set that
// seat is passed over.
func NextSeat(role, skip Role) Role {
	idx := 0
	for i, r := range PlayerOrder {
		if r == role {
			idx = i
			break
		}
	}
	next := PlayerOrder[(idx+1)%len(PlayerOrder)]
	if skip != "" && next == skip {
		next = PlayerOrder[(idx+2)%len(PlayerOrder)]
	}
	return next
}

func Partner(role Role) Role {
	switch role {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	}
	return ""
}

func TeamOf(role Role) Team {
	if role == North || role == South {
		return TeamUs
	}
	return TeamThem
}

// Opponent returns the other team.
func (t Team) Opponent() Team {
	if t == TeamUs {
		return TeamThem
	}
	return TeamUs
}

// DisplayName is the event-log label for a team.
func (t Team) DisplayName() string {
	if t == TeamUs {
		return "Team 1 (North/South)"
	}
	return "Team 2 (East/West)"
}

// Members lists both seats of a team in turn order.
func (t Team) Members() []Role {
	if t == TeamUs {
		return []Role{North, South}
	}
	return []Role{East, West}
}

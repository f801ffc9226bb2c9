package euchre

import "fmt"

// PlayerID is the stable identity of a player, independent of any connection.
type PlayerID string

// Seat binds a role to a player. ConnectionRef is a non-owning handle that
// changes on every reconnect.
type Seat struct {
	PlayerID      PlayerID `json:"playerId"`
	Name          string   `json:"name"`
	ConnectionRef string   `json:"-"`
	Connected     bool     `json:"connected"`
}

// Directory maps the four roles to players.
type Directory struct {
	seats map[Role]*Seat
}

func NewDirectory() *Directory {
	return &Directory{seats: make(map[Role]*Seat, len(PlayerOrder))}
}

// Seat places a player. An empty preferred role picks the first free seat
// in turn order. Seating an already seated player returns their role.
func (d *Directory) Seat(id PlayerID, name string, preferred Role) (Role, error) {
	if id == "" {
		return "", fmt.Errorf("player id required")
	}
	if role, ok := d.RoleOf(id); ok {
		if name != "" {
			d.seats[role].Name = name
		}
		return role, nil
	}
	if preferred != "" {
		if !preferred.Valid() {
			return "", fmt.Errorf("unknown seat %q", preferred)
		}
		if _, taken := d.seats[preferred]; taken {
			return "", fmt.Errorf("seat %s is taken", preferred)
		}
		d.seats[preferred] = &Seat{PlayerID: id, Name: name}
		return preferred, nil
	}
	for _, r := range PlayerOrder {
		if _, taken := d.seats[r]; !taken {
			d.seats[r] = &Seat{PlayerID: id, Name: name}
			return r, nil
		}
	}
	return "", fmt.Errorf("table is full")
}

func (d *Directory) Unseat(id PlayerID) (Role, bool) {
	role, ok := d.RoleOf(id)
	if ok {
		delete(d.seats, role)
	}
	return role, ok
}

func (d *Directory) RoleOf(id PlayerID) (Role, bool) {
	for _, r := range PlayerOrder {
		if s, ok := d.seats[r]; ok && s.PlayerID == id {
			return r, true
		}
	}
	return "", false
}

func (d *Directory) RoleByConnection(ref string) (Role, bool) {
	if ref == "" {
		return "", false
	}
	for _, r := range PlayerOrder {
		if s, ok := d.seats[r]; ok && s.ConnectionRef == ref {
			return r, true
		}
	}
	return "", false
}

// Bind re-associates a connection with the seat already held by id.
func (d *Directory) Bind(id PlayerID, ref string) (Role, bool) {
	role, ok := d.RoleOf(id)
	if !ok {
		return "", false
	}
	s := d.seats[role]
	s.ConnectionRef = ref
	s.Connected = true
	return role, true
}

// Release marks the seat holding ref as disconnected. The seat is kept.
func (d *Directory) Release(ref string) (Role, bool) {
	role, ok := d.RoleByConnection(ref)
	if !ok {
		return "", false
	}
	s := d.seats[role]
	s.ConnectionRef = ""
	s.Connected = false
	return role, true
}

func (d *Directory) Get(role Role) (Seat, bool) {
	s, ok := d.seats[role]
	if !ok {
		return Seat{}, false
	}
	return *s, true
}

func (d *Directory) Full() bool {
	return len(d.seats) == len(PlayerOrder)
}

func (d *Directory) Len() int { return len(d.seats) }

package relay

import (
	"errors"

	"github.com/remotix/remotix/internal/protocol"
)

var ErrHostTaken = errors.New("room already has a host")

// Room is a named rendezvous point for one host and its clients.
type Room struct {
	ID      string
	Members map[string]*Client // endpoint id -> client
	HostID  string             // empty until a host joins
}

// RoomInfo is the read-only snapshot shape served by /status.
type RoomInfo struct {
	ID      string `json:"id"`
	Members int    `json:"members"`
	HasHost bool   `json:"has_host"`
}

// Registry tracks the active rooms. It is owned exclusively by the hub
// goroutine: no method takes a lock, and nothing outside the hub may touch
// it. Absent rooms are a valid state, never an error.
type Registry struct {
	rooms map[string]*Room
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

// Register idempotently marks a room active.
func (r *Registry) Register(roomID string) *Room {
	if room, ok := r.rooms[roomID]; ok {
		return room
	}
	room := &Room{ID: roomID, Members: make(map[string]*Client)}
	r.rooms[roomID] = room
	return room
}

// Exists reports whether the room is currently active.
func (r *Registry) Exists(roomID string) bool {
	_, ok := r.rooms[roomID]
	return ok
}

// Join adds the client to the room and returns a snapshot of the members
// present before the join, so the caller can notify them of the new peer.
// A second host joining the same room is refused: one host per room is a
// registry invariant. So is at most one room per client: joining a new room
// removes the client from its old one, and re-joining the room it is
// already in is idempotent with an empty snapshot (nobody is re-notified,
// least of all the joiner about itself).
func (r *Registry) Join(c *Client, roomID string, role protocol.Role) ([]*Client, error) {
	room := r.Register(roomID)

	if role == protocol.RoleHost && room.HostID != "" && room.HostID != c.ID {
		return nil, ErrHostTaken
	}

	if _, member := room.Members[c.ID]; member {
		if role == protocol.RoleHost {
			room.HostID = c.ID
		}
		c.Role = role
		return nil, nil
	}

	if c.RoomID != "" && c.RoomID != roomID {
		r.Leave(c)
	}

	prior := make([]*Client, 0, len(room.Members))
	for _, member := range room.Members {
		prior = append(prior, member)
	}

	room.Members[c.ID] = c
	if role == protocol.RoleHost {
		room.HostID = c.ID
	}
	c.RoomID = roomID
	c.Role = role
	return prior, nil
}

// Leave removes the client from whatever room it is in and returns the
// remaining members, or nil if the client was not in a room. Empty rooms
// are pruned.
func (r *Registry) Leave(c *Client) []*Client {
	if c.RoomID == "" {
		return nil
	}
	room, ok := r.rooms[c.RoomID]
	c.RoomID = ""
	if !ok {
		return nil
	}

	delete(room.Members, c.ID)
	if room.HostID == c.ID {
		room.HostID = ""
	}

	if len(room.Members) == 0 {
		delete(r.rooms, room.ID)
		return nil
	}

	remaining := make([]*Client, 0, len(room.Members))
	for _, member := range room.Members {
		remaining = append(remaining, member)
	}
	return remaining
}

// Peers returns the other members of the client's room.
func (r *Registry) Peers(c *Client) []*Client {
	if c.RoomID == "" {
		return nil
	}
	room, ok := r.rooms[c.RoomID]
	if !ok {
		return nil
	}
	peers := make([]*Client, 0, len(room.Members))
	for id, member := range room.Members {
		if id != c.ID {
			peers = append(peers, member)
		}
	}
	return peers
}

// Snapshot returns the per-room view served by /status.
func (r *Registry) Snapshot() []RoomInfo {
	infos := make([]RoomInfo, 0, len(r.rooms))
	for _, room := range r.rooms {
		infos = append(infos, RoomInfo{
			ID:      room.ID,
			Members: len(room.Members),
			HasHost: room.HostID != "",
		})
	}
	return infos
}

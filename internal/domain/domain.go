// Package domain holds the types shared between the room actors, the HTTP
// layer, and the persistence adapters: users, card scales, protocol messages,
// and the collaborator interfaces for round persistence and history reads.
package domain

import "time"

// User is a participant as seen by a room actor. Vote is nil until the user
// has voted in the current round; it is cleared on every reset.
type User struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Vote        *string   `json:"vote"`
	Connected   bool      `json:"connected"`
	IsSpectator bool      `json:"isSpectator"`
	JoinedAt    time.Time `json:"joinedAt"`
}

// Stats are the aggregate statistics of a revealed round.
type Stats struct {
	Average float64 `json:"average"`
	Median  float64 `json:"median"`
	Total   int     `json:"total"`
}

package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// VoteRecord is the (user, card) snapshot captured at reveal time.
type VoteRecord struct {
	UserName string
	Vote     string
}

// RoundRecorder persists estimation sessions and finished rounds. Both calls
// are best-effort: the room actor logs failures and proceeds, it never blocks
// a protocol transition on persistence and never retries.
type RoundRecorder interface {
	CreateSession(ctx context.Context, sessionID uuid.UUID, roomID string, createdAt time.Time) error
	SaveRound(ctx context.Context, sessionID uuid.UUID, roundNumber int, revealedAt time.Time, stats Stats, votes []VoteRecord) error
}

// HistoryReader is the read path over persisted sessions.
type HistoryReader interface {
	// RoomHistory returns the sessions of a room ordered by creation
	// descending, each with its rounds ordered by round number ascending.
	RoomHistory(ctx context.Context, roomID string) ([]SessionHistory, error)
}

// SessionHistory is one persisted estimation session with its rounds.
// CompletedAt is set by an external process, never by this service.
type SessionHistory struct {
	ID          uuid.UUID      `json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	CompletedAt *time.Time     `json:"completed_at"`
	Rounds      []RoundHistory `json:"rounds"`
}

// RoundHistory is one persisted round with its vote snapshot.
type RoundHistory struct {
	RoundNumber int           `json:"round_number"`
	RevealedAt  time.Time     `json:"revealed_at"`
	Average     float64       `json:"average"`
	Median      float64       `json:"median"`
	Votes       []HistoryVote `json:"votes"`
}

// HistoryVote is one persisted vote row.
type HistoryVote struct {
	UserName string `json:"user_name"`
	Vote     string `json:"vote"`
}

package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sony/gobreaker"

	"github.com/Zanex/poker-planning/internal/domain"
)

// RoundRepo implements domain.RoundRecorder and domain.HistoryReader backed
// by PostgreSQL. Writes go through a circuit breaker: the recorder is
// best-effort by contract, so when the database is down we fail fast and let
// the room actors log and move on instead of stacking up timed-out writes.
type RoundRepo struct {
	pool    *pgxpool.Pool
	breaker *gobreaker.CircuitBreaker
}

// NewRoundRepo creates a RoundRepo on the shared connection pool.
func NewRoundRepo(pool *pgxpool.Pool) *RoundRepo {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "round-recorder",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Recorder circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	})
	return &RoundRepo{pool: pool, breaker: breaker}
}

// CreateSession records the start of a new estimation session.
func (r *RoundRepo) CreateSession(ctx context.Context, sessionID uuid.UUID, roomID string, createdAt time.Time) error {
	_, err := r.breaker.Execute(func() (any, error) {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO sessions (id, room_id, created_at)
			VALUES ($1, $2, $3)
		`, sessionID, roomID, createdAt)
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// SaveRound persists a revealed round and its vote snapshot in one
// transaction.
func (r *RoundRepo) SaveRound(ctx context.Context, sessionID uuid.UUID, roundNumber int, revealedAt time.Time, stats domain.Stats, votes []domain.VoteRecord) error {
	_, err := r.breaker.Execute(func() (any, error) {
		return nil, r.saveRound(ctx, sessionID, roundNumber, revealedAt, stats, votes)
	})
	if err != nil {
		return fmt.Errorf("failed to save round: %w", err)
	}
	return nil
}

func (r *RoundRepo) saveRound(ctx context.Context, sessionID uuid.UUID, roundNumber int, revealedAt time.Time, stats domain.Stats, votes []domain.VoteRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	roundID := uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO rounds (id, session_id, round_number, revealed_at, average, median)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, roundID, sessionID, roundNumber, revealedAt, stats.Average, stats.Median)
	if err != nil {
		return fmt.Errorf("failed to insert round: %w", err)
	}

	for _, vote := range votes {
		_, err = tx.Exec(ctx, `
			INSERT INTO votes (id, round_id, user_name, vote, voted_at)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.New(), roundID, vote.UserName, vote.Vote, revealedAt)
		if err != nil {
			return fmt.Errorf("failed to insert vote: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// RoomHistory returns the room's sessions (created desc), each with its
// rounds (round number asc) and each round's votes.
func (r *RoundRepo) RoomHistory(ctx context.Context, roomID string) ([]domain.SessionHistory, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.created_at, s.completed_at,
		       r.id, r.round_number, r.revealed_at, r.average, r.median
		FROM sessions s
		LEFT JOIN rounds r ON s.id = r.session_id
		WHERE s.room_id = $1
		ORDER BY s.created_at DESC, r.round_number ASC
	`, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	history := make([]domain.SessionHistory, 0)
	roundIDs := make([]uuid.UUID, 0)
	roundIndex := make(map[uuid.UUID][2]int)

	for rows.Next() {
		var (
			sessionID   uuid.UUID
			createdAt   time.Time
			completedAt *time.Time
			roundID     *uuid.UUID
			roundNumber *int
			revealedAt  *time.Time
			average     *float64
			median      *float64
		)
		if err := rows.Scan(&sessionID, &createdAt, &completedAt, &roundID, &roundNumber, &revealedAt, &average, &median); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}

		if len(history) == 0 || history[len(history)-1].ID != sessionID {
			history = append(history, domain.SessionHistory{
				ID:          sessionID,
				CreatedAt:   createdAt,
				CompletedAt: completedAt,
				Rounds:      []domain.RoundHistory{},
			})
		}

		if roundID != nil {
			session := &history[len(history)-1]
			session.Rounds = append(session.Rounds, domain.RoundHistory{
				RoundNumber: *roundNumber,
				RevealedAt:  *revealedAt,
				Average:     *average,
				Median:      *median,
				Votes:       []domain.HistoryVote{},
			})
			roundIDs = append(roundIDs, *roundID)
			roundIndex[*roundID] = [2]int{len(history) - 1, len(session.Rounds) - 1}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history rows: %w", err)
	}

	if len(roundIDs) == 0 {
		return history, nil
	}

	voteRows, err := r.pool.Query(ctx, `
		SELECT round_id, user_name, vote
		FROM votes
		WHERE round_id = ANY($1)
		ORDER BY voted_at, user_name
	`, roundIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer voteRows.Close()

	for voteRows.Next() {
		var (
			roundID  uuid.UUID
			userName string
			vote     string
		)
		if err := voteRows.Scan(&roundID, &userName, &vote); err != nil {
			return nil, fmt.Errorf("failed to scan vote row: %w", err)
		}
		if idx, exists := roundIndex[roundID]; exists {
			round := &history[idx[0]].Rounds[idx[1]]
			round.Votes = append(round.Votes, domain.HistoryVote{UserName: userName, Vote: vote})
		}
	}
	if err := voteRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vote rows: %w", err)
	}

	return history, nil
}

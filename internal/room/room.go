// Package room implements the per-room estimation protocol: one actor
// goroutine per room id owns the roster, the hidden/revealed state machine,
// reveal statistics, and the fan-out to attached websocket sessions.
package room

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/Zanex/poker-planning/internal/domain"
	"github.com/Zanex/poker-planning/internal/metrics"
)

const persistTimeout = 5 * time.Second

// roomCmd is the command interface for the room actor.
type roomCmd interface{ isRoomCmd() }

type baseRoomCmd struct{}

func (baseRoomCmd) isRoomCmd() {}

type attachCmd struct {
	baseRoomCmd
	sender       Sender
	errorChannel chan error
}

type detachCmd struct {
	baseRoomCmd
	sender Sender
}

type joinCmd struct {
	baseRoomCmd
	sender    Sender
	userID    string
	name      string
	cardType  string
	spectator bool
}

type voteCmd struct {
	baseRoomCmd
	sender Sender
	card   string
}

type revealCmd struct{ baseRoomCmd }

type resetCmd struct{ baseRoomCmd }

type sendErrorCmd struct {
	baseRoomCmd
	sender  Sender
	message string
}

type snapshotCmd struct {
	baseRoomCmd
	replyChannel chan Snapshot
}

type stopCmd struct{ baseRoomCmd }

// Snapshot is a point-in-time copy of a room's state, taken on the actor
// goroutine. Votes are the stored values, not the masked projection.
type Snapshot struct {
	Revealed    bool
	RoundNumber int
	CardType    domain.CardType
	SessionID   uuid.UUID
	Clients     int
	Users       []domain.User
}

// Room is the single serialized owner of one room's state. All events go
// through the command channel and are handled one at a time, so the state
// needs no locks. Round number, card type, and session id survive the room
// becoming empty; only process restart forgets them.
type Room struct {
	id         string
	cmdCh      chan roomCmd
	clock      clockwork.Clock
	recorder   domain.RoundRecorder
	maxClients int

	conns       map[Sender]struct{}
	reg         *registry
	revealed    bool
	roundNumber int
	cardType    domain.CardType
	sessionID   uuid.UUID

	done chan struct{}
}

// New creates a room actor and starts its goroutine.
func New(id string, recorder domain.RoundRecorder, clock clockwork.Clock, maxClients int) *Room {
	r := &Room{
		id:         id,
		cmdCh:      make(chan roomCmd, 256),
		clock:      clock,
		recorder:   recorder,
		maxClients: maxClients,
		conns:      make(map[Sender]struct{}),
		reg:        newRegistry(),
		cardType:   domain.DefaultCardType,
		done:       make(chan struct{}),
	}
	go r.run()
	return r
}

// Attach wraps the connection in a writer and registers it with the actor.
// Returns domain.ErrRoomFull if the per-room client cap is reached.
func (r *Room) Attach(conn *websocket.Conn) (Sender, error) {
	sender := newClientWriter(conn, r.clock)
	errCh := make(chan error, 1)
	r.post(attachCmd{sender: sender, errorChannel: errCh})

	select {
	case err := <-errCh:
		if err != nil {
			sender.StopWithReason(err.Error())
			return nil, err
		}
		return sender, nil
	case <-r.done:
		sender.Stop()
		return nil, domain.ErrRoomFull
	}
}

// Detach removes the session and its user, if any. Safe to call more than
// once; a session that never joined detaches without effect on the roster.
func (r *Room) Detach(sender Sender) {
	r.post(detachCmd{sender: sender})
}

// Join registers a user for the session.
func (r *Room) Join(sender Sender, userID, name, cardType string, spectator bool) {
	r.post(joinCmd{sender: sender, userID: userID, name: name, cardType: cardType, spectator: spectator})
}

// Vote records the sender's card for the current round.
func (r *Room) Vote(sender Sender, card string) {
	r.post(voteCmd{sender: sender, card: card})
}

// Reveal exposes all votes and closes the round. A no-op if already revealed.
func (r *Room) Reveal() {
	r.post(revealCmd{})
}

// Reset clears all votes and opens the next round.
func (r *Room) Reset() {
	r.post(resetCmd{})
}

// SendError delivers an error message to a single session.
func (r *Room) SendError(sender Sender, message string) {
	r.post(sendErrorCmd{sender: sender, message: message})
}

// Snapshot returns a copy of the room state. Because commands are processed
// in order, the snapshot reflects every event posted before the call.
func (r *Room) Snapshot() Snapshot {
	replyCh := make(chan Snapshot, 1)
	r.post(snapshotCmd{replyChannel: replyCh})
	select {
	case snap := <-replyCh:
		return snap
	case <-r.done:
		return Snapshot{}
	}
}

// ClientCount returns the number of attached sessions.
func (r *Room) ClientCount() int {
	return r.Snapshot().Clients
}

// Stop disconnects all sessions and shuts the actor down.
func (r *Room) Stop() {
	r.post(stopCmd{})
	<-r.done
}

// post delivers a command unless the actor has already stopped.
func (r *Room) post(cmd roomCmd) {
	select {
	case r.cmdCh <- cmd:
	case <-r.done:
	}
}

func (r *Room) run() {
	defer close(r.done)
	defer func() {
		if p := recover(); p != nil {
			slog.Error("Room actor panic recovered", "room_id", r.id, "panic", p)
			metrics.RoomPanicsTotal.Inc()
			r.closeAllClients("internal error")
		}
	}()

	for cmd := range r.cmdCh {
		switch c := cmd.(type) {
		case attachCmd:
			r.handleAttach(c)
		case detachCmd:
			r.handleDetach(c.sender)
		case joinCmd:
			r.handleJoin(c)
		case voteCmd:
			r.handleVote(c)
		case revealCmd:
			r.handleReveal()
		case resetCmd:
			r.handleReset()
		case sendErrorCmd:
			r.sendError(c.sender, c.message)
		case snapshotCmd:
			c.replyChannel <- r.snapshot()
		case stopCmd:
			r.closeAllClients("Server shutting down")
			return
		}
	}
}

func (r *Room) handleAttach(c attachCmd) {
	if len(r.conns) >= r.maxClients {
		slog.Warn("Rejecting client: room full", "room_id", r.id, "max_clients", r.maxClients)
		c.errorChannel <- domain.ErrRoomFull
		return
	}
	r.conns[c.sender] = struct{}{}
	metrics.ConnectedClients.Inc()
	slog.Debug("Client attached", "room_id", r.id, "total_clients", len(r.conns))
	c.errorChannel <- nil
}

func (r *Room) handleDetach(sender Sender) {
	r.reg.remove(sender)
	if _, attached := r.conns[sender]; attached {
		delete(r.conns, sender)
		metrics.ConnectedClients.Dec()
		go sender.Stop()
	}
	if len(r.conns) == 0 {
		slog.Info("Last client disconnected", "room_id", r.id, "round_number", r.roundNumber)
	}
	r.broadcastUsers()
}

func (r *Room) handleJoin(c joinCmd) {
	if c.userID == "" || c.name == "" {
		r.sendError(c.sender, "Missing user id or name")
		return
	}
	if _, attached := r.conns[c.sender]; !attached {
		return
	}

	if ct, ok := domain.ParseCardType(c.cardType); ok {
		r.cardType = ct
	}

	user := &domain.User{
		ID:          c.userID,
		Name:        c.name,
		Connected:   true,
		IsSpectator: c.spectator,
		JoinedAt:    r.clock.Now(),
	}
	r.reg.put(c.sender, user)

	// First user ever seen by this actor instance opens a new persisted
	// session. The id is stable for the actor's lifetime.
	if r.sessionID == uuid.Nil && r.reg.len() == 1 {
		r.sessionID = uuid.New()
		go r.persistSession(r.sessionID, r.clock.Now())
	}

	slog.Info("User joined", "room_id", r.id, "user_id", user.ID, "spectator", user.IsSpectator)
	r.broadcastUsers()
}

func (r *Room) handleVote(c voteCmd) {
	user := r.reg.get(c.sender)
	if user == nil {
		// No registered user, no effect.
		return
	}
	if r.revealed {
		r.sendError(c.sender, domain.ErrVotingClosed.Error())
		return
	}
	if c.card == "" {
		r.sendError(c.sender, "Missing vote card")
		return
	}

	card := c.card
	user.Vote = &card
	r.broadcastUsers()
}

func (r *Room) handleReveal() {
	// Duplicate reveal is a no-op; it must not persist a second round.
	if r.revealed {
		return
	}

	r.revealed = true
	r.roundNumber++

	users := r.reg.list()
	stats := computeStats(users, r.cardType)

	if r.sessionID != uuid.Nil {
		votes := make([]domain.VoteRecord, 0, len(users))
		for _, u := range users {
			if u.Vote != nil {
				votes = append(votes, domain.VoteRecord{UserName: u.Name, Vote: *u.Vote})
			}
		}
		go r.persistRound(r.sessionID, r.roundNumber, r.clock.Now(), stats, votes)
	}

	metrics.RoundsRevealedTotal.Inc()
	slog.Info("Round revealed", "room_id", r.id, "round_number", r.roundNumber, "votes", stats.Total)

	revealed := true
	r.broadcast(domain.ServerMessage{
		Type:     domain.MessageRevealed,
		Users:    r.maskedUsers(),
		Revealed: &revealed,
		CardType: r.cardType,
		Stats:    &stats,
	})
}

func (r *Room) handleReset() {
	r.revealed = false
	for _, u := range r.reg.list() {
		u.Vote = nil
	}

	revealed := false
	r.broadcast(domain.ServerMessage{
		Type:     domain.MessageReset,
		Users:    r.maskedUsers(),
		Revealed: &revealed,
	})
}

// maskedUsers projects the roster for transmission. While the round is
// hidden, non-null votes are replaced by the hidden-card sentinel. The
// projection is recomputed on every broadcast, never cached.
func (r *Room) maskedUsers() []domain.User {
	users := r.reg.list()
	out := make([]domain.User, 0, len(users))
	for _, u := range users {
		copied := *u
		if !r.revealed && u.Vote != nil {
			hidden := domain.HiddenCard
			copied.Vote = &hidden
		}
		out = append(out, copied)
	}
	return out
}

func (r *Room) broadcastUsers() {
	r.broadcast(domain.ServerMessage{Type: domain.MessageUsers, Users: r.maskedUsers()})
}

// broadcast sends the message to every attached session. A full send buffer
// drops the message for that session only; the session is left for detachment
// on its own close event.
func (r *Room) broadcast(msg domain.ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("Failed to marshal broadcast message", "room_id", r.id, "error", err)
		return
	}
	for sender := range r.conns {
		if !sender.Send(data) {
			metrics.DroppedBroadcastsTotal.Inc()
			slog.Warn("Dropped broadcast for slow client", "room_id", r.id)
		}
	}
}

func (r *Room) sendError(sender Sender, message string) {
	data, err := json.Marshal(domain.ServerMessage{Type: domain.MessageError, Error: message})
	if err != nil {
		return
	}
	sender.Send(data)
}

func (r *Room) snapshot() Snapshot {
	users := r.reg.list()
	copies := make([]domain.User, 0, len(users))
	for _, u := range users {
		copies = append(copies, *u)
	}
	return Snapshot{
		Revealed:    r.revealed,
		RoundNumber: r.roundNumber,
		CardType:    r.cardType,
		SessionID:   r.sessionID,
		Clients:     len(r.conns),
		Users:       copies,
	}
}

func (r *Room) closeAllClients(reason string) {
	for sender := range r.conns {
		delete(r.conns, sender)
		metrics.ConnectedClients.Dec()
		go sender.StopWithReason(reason)
	}
}

// persistSession and persistRound run detached from the actor goroutine:
// persistence is best-effort and never gates a protocol transition.

func (r *Room) persistSession(sessionID uuid.UUID, createdAt time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := r.recorder.CreateSession(ctx, sessionID, r.id, createdAt); err != nil {
		metrics.PersistenceFailuresTotal.Inc()
		slog.Error("Failed to create session record", "room_id", r.id, "session_id", sessionID.String(), "error", err)
	}
}

func (r *Room) persistRound(sessionID uuid.UUID, roundNumber int, revealedAt time.Time, stats domain.Stats, votes []domain.VoteRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	if err := r.recorder.SaveRound(ctx, sessionID, roundNumber, revealedAt, stats, votes); err != nil {
		metrics.PersistenceFailuresTotal.Inc()
		slog.Error("Failed to save round", "room_id", r.id, "round_number", roundNumber, "error", err)
	}
}

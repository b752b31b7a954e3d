package domain

import "errors"

var (
	// ErrVotingClosed marks a vote received after the round was revealed.
	ErrVotingClosed = errors.New("voting closed - round already revealed")

	// ErrRoomFull marks a connection rejected by the per-room client cap.
	ErrRoomFull = errors.New("room is full")
)

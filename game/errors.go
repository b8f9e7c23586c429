package game

import "errors"

var (
	ErrLobbyFull          = errors.New("lobby is full")
	ErrInvalidUsername    = errors.New("invalid username")
	ErrUsernameTaken      = errors.New("username is taken")
	ErrAlreadyJoined      = errors.New("connection already joined")
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrUnknownConnection  = errors.New("unknown connection")
	ErrInvalidTuning      = errors.New("invalid tuning")
)

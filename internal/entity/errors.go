package entity

import "errors"

var (
	ErrInvalidSessionID = errors.New("invalid session ID")
	ErrInvalidChatRole  = errors.New("invalid chat role")
)

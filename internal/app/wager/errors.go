package wager

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrSelfTransfer   = errors.New("self_transfer")
)

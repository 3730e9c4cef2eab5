package models

import "errors"

// Custom errors
var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicateKey        = errors.New("duplicate key violation")
	ErrUnknownStatType     = errors.New("unknown stat type")
	ErrDuplicateUngradedBet = errors.New("ungraded bet already exists for player/stat/model")
	ErrBetLocked           = errors.New("bet is locked; economic fields are immutable")
	ErrUnknownModel        = errors.New("unknown model identifier")
)

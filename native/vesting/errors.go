package vesting

import "errors"

var (
	ErrNilState            = errors.New("vesting: state not configured")
	ErrInvalidAmount       = errors.New("vesting: amount must be positive")
	ErrInsufficientBalance = errors.New("vesting: insufficient balance")
	ErrPositionNotFound    = errors.New("vesting: position index out of range")
	ErrPositionInactive    = errors.New("vesting: position already inactive")
	ErrLockNotExpired      = errors.New("vesting: lock period not yet expired")
	ErrExceedsAvailable    = errors.New("vesting: amount exceeds vested availability")
	ErrTGEClaimed          = errors.New("vesting: early claim already consumed")
	ErrTGENotClaimed       = errors.New("vesting: early claim not yet consumed")
	ErrTGETooSmall         = errors.New("vesting: early claim amount rounds to zero")
	ErrSelfTransfer        = errors.New("vesting: transfer target equals source")
	ErrExceedsTotal        = errors.New("vesting: amount exceeds position total")
	ErrExceedsRemaining    = errors.New("vesting: amount exceeds unwithdrawn remainder")
	ErrUnauthorized        = errors.New("vesting: caller lacks required role")
	ErrEpochNotSequential  = errors.New("vesting: epoch must advance by one")
)

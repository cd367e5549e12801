package stake

import "errors"

var (
	ErrNilState            = errors.New("stake: state not configured")
	ErrInvalidAmount       = errors.New("stake: amount must be positive")
	ErrInvalidTier         = errors.New("stake: unknown lock tier")
	ErrInsufficientBalance = errors.New("stake: insufficient balance")
	ErrPositionNotFound    = errors.New("stake: position index out of range")
	ErrPositionInactive    = errors.New("stake: position already inactive")
	ErrLockNotExpired      = errors.New("stake: lock period not yet expired")
	ErrExceedsRemaining    = errors.New("stake: insufficient available balance for this withdrawal")
	ErrUnauthorized        = errors.New("stake: caller lacks required role")
	ErrEpochNotSequential  = errors.New("stake: epoch must advance by one")
	ErrTotalUnderflow      = errors.New("stake: aggregate locked total underflow")
)

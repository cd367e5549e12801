package rewards

import "errors"

var (
	ErrNilState            = errors.New("rewards: state not configured")
	ErrNilLedger           = errors.New("rewards: stake ledgers not configured")
	ErrUnauthorized        = errors.New("rewards: caller lacks required role")
	ErrEpochFunded         = errors.New("rewards: earnings already deposited for this epoch")
	ErrNothingDeposited    = errors.New("rewards: no deposited earnings for this epoch")
	ErrEpochOpen           = errors.New("rewards: cannot harvest the current epoch")
	ErrAlreadyHarvested    = errors.New("rewards: already harvested for this epoch")
	ErrPositionInactive    = errors.New("rewards: position already inactive")
	ErrNoLockedStake       = errors.New("rewards: no locked stake recorded for this epoch")
	ErrInsufficientBalance = errors.New("rewards: insufficient balance")
)

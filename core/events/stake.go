package events

import (
	"math/big"
	"strconv"

	"yieldvault/core/types"
)

const (
	// TypeStakeCreated captures a new immediate-stake position.
	TypeStakeCreated = "stake.created"
	// TypeStakeWithdrawn captures a (partial) withdrawal from an unlocked position.
	TypeStakeWithdrawn = "stake.withdrawn"
)

// StakeCreated is emitted when an account locks capital into a new position.
type StakeCreated struct {
	Account   [20]byte
	Index     uint64
	Amount    *big.Int
	Tier      uint8
	StartLock uint64
	EndLock   uint64
}

// EventType satisfies the Event interface.
func (StakeCreated) EventType() string { return TypeStakeCreated }

// Event converts the structured payload into a broadcastable event.
func (e StakeCreated) Event() *types.Event {
	attrs := map[string]string{
		"addr":      formatAddr(e.Account),
		"index":     strconv.FormatUint(e.Index, 10),
		"amount":    formatAmount(e.Amount),
		"tier":      strconv.FormatUint(uint64(e.Tier), 10),
		"startLock": strconv.FormatUint(e.StartLock, 10),
		"endLock":   strconv.FormatUint(e.EndLock, 10),
	}
	return &types.Event{Type: TypeStakeCreated, Attributes: attrs}
}

// StakeWithdrawn captures the amount released from a position together with
// the incentive multiplier in force at withdrawal time.
type StakeWithdrawn struct {
	Account    [20]byte
	Index      uint64
	Amount     *big.Int
	Multiplier uint64
	Epoch      uint64
	Inactive   bool
}

// EventType satisfies the Event interface.
func (StakeWithdrawn) EventType() string { return TypeStakeWithdrawn }

// Event converts the structured payload into a broadcastable event.
func (e StakeWithdrawn) Event() *types.Event {
	attrs := map[string]string{
		"addr":       formatAddr(e.Account),
		"index":      strconv.FormatUint(e.Index, 10),
		"amount":     formatAmount(e.Amount),
		"multiplier": strconv.FormatUint(e.Multiplier, 10),
		"epoch":      strconv.FormatUint(e.Epoch, 10),
	}
	if e.Inactive {
		attrs["inactive"] = "true"
	}
	return &types.Event{Type: TypeStakeWithdrawn, Attributes: attrs}
}

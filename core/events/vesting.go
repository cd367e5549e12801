package events

import (
	"math/big"
	"strconv"

	"yieldvault/core/types"
)

const (
	// TypeVestingCreated captures a creator-issued vested position.
	TypeVestingCreated = "vesting.created"
	// TypeVestingWithdrawn captures a vested withdrawal.
	TypeVestingWithdrawn = "vesting.withdrawn"
	// TypeVestingTGEClaimed captures the one-time early release.
	TypeVestingTGEClaimed = "vesting.tgeClaimed"
	// TypeVestingTransferred captures a capital-preserving position split.
	TypeVestingTransferred = "vesting.transferred"
)

// VestingCreated is emitted when the creator issues a new vested position.
type VestingCreated struct {
	Creator    [20]byte
	Account    [20]byte
	Index      uint64
	Amount     *big.Int
	EndLock    uint64
	EndVesting uint64
}

// EventType satisfies the Event interface.
func (VestingCreated) EventType() string { return TypeVestingCreated }

// Event converts the structured payload into a broadcastable event.
func (e VestingCreated) Event() *types.Event {
	attrs := map[string]string{
		"addr":       formatAddr(e.Account),
		"index":      strconv.FormatUint(e.Index, 10),
		"amount":     formatAmount(e.Amount),
		"endLock":    strconv.FormatUint(e.EndLock, 10),
		"endVesting": strconv.FormatUint(e.EndVesting, 10),
	}
	if !zeroAddress(e.Creator) {
		attrs["creator"] = formatAddr(e.Creator)
	}
	return &types.Event{Type: TypeVestingCreated, Attributes: attrs}
}

// VestingWithdrawn captures the amount released under the vesting schedule.
type VestingWithdrawn struct {
	Account  [20]byte
	Index    uint64
	Amount   *big.Int
	Epoch    uint64
	Inactive bool
}

// EventType satisfies the Event interface.
func (VestingWithdrawn) EventType() string { return TypeVestingWithdrawn }

// Event converts the structured payload into a broadcastable event.
func (e VestingWithdrawn) Event() *types.Event {
	attrs := map[string]string{
		"addr":   formatAddr(e.Account),
		"index":  strconv.FormatUint(e.Index, 10),
		"amount": formatAmount(e.Amount),
		"epoch":  strconv.FormatUint(e.Epoch, 10),
	}
	if e.Inactive {
		attrs["inactive"] = "true"
	}
	return &types.Event{Type: TypeVestingWithdrawn, Attributes: attrs}
}

// VestingTGEClaimed captures the single early-release disbursement.
type VestingTGEClaimed struct {
	Account [20]byte
	Index   uint64
	Amount  *big.Int
}

// EventType satisfies the Event interface.
func (VestingTGEClaimed) EventType() string { return TypeVestingTGEClaimed }

// Event converts the structured payload into a broadcastable event.
func (e VestingTGEClaimed) Event() *types.Event {
	attrs := map[string]string{
		"addr":   formatAddr(e.Account),
		"index":  strconv.FormatUint(e.Index, 10),
		"amount": formatAmount(e.Amount),
	}
	return &types.Event{Type: TypeVestingTGEClaimed, Attributes: attrs}
}

// VestingTransferred captures a split of a vested position into a child
// position owned by the recipient.
type VestingTransferred struct {
	From     [20]byte
	To       [20]byte
	Index    uint64
	NewIndex uint64
	Amount   *big.Int
}

// EventType satisfies the Event interface.
func (VestingTransferred) EventType() string { return TypeVestingTransferred }

// Event converts the structured payload into a broadcastable event.
func (e VestingTransferred) Event() *types.Event {
	attrs := map[string]string{
		"from":     formatAddr(e.From),
		"to":       formatAddr(e.To),
		"index":    strconv.FormatUint(e.Index, 10),
		"newIndex": strconv.FormatUint(e.NewIndex, 10),
		"amount":   formatAmount(e.Amount),
	}
	return &types.Event{Type: TypeVestingTransferred, Attributes: attrs}
}

package events

import (
	"math/big"
	"strconv"

	"yieldvault/core/types"
)

const (
	// TypeRewardsDeposited captures a per-epoch earnings deposit.
	TypeRewardsDeposited = "rewards.deposited"
	// TypeEpochAdvanced signals the shared epoch counter moved forward.
	TypeEpochAdvanced = "rewards.epochAdvanced"
	// TypeRewardsHarvested captures a proportional payout claim.
	TypeRewardsHarvested = "rewards.harvested"
)

// RewardsDeposited is emitted when the depositor funds an epoch's pool.
type RewardsDeposited struct {
	From   [20]byte
	Epoch  uint64
	USDT   *big.Int
	VLT    *big.Int
	Native *big.Int
}

// EventType satisfies the Event interface.
func (RewardsDeposited) EventType() string { return TypeRewardsDeposited }

// Event converts the structured payload into a broadcastable event.
func (e RewardsDeposited) Event() *types.Event {
	attrs := map[string]string{
		"from":   formatAddr(e.From),
		"epoch":  strconv.FormatUint(e.Epoch, 10),
		"usdt":   formatAmount(e.USDT),
		"vlt":    formatAmount(e.VLT),
		"native": formatAmount(e.Native),
	}
	return &types.Event{Type: TypeRewardsDeposited, Attributes: attrs}
}

// EpochAdvanced records the transition between two accounting periods.
type EpochAdvanced struct {
	LastEpoch uint64
	NewEpoch  uint64
}

// EventType satisfies the Event interface.
func (EpochAdvanced) EventType() string { return TypeEpochAdvanced }

// Event converts the structured payload into a broadcastable event.
func (e EpochAdvanced) Event() *types.Event {
	attrs := map[string]string{
		"lastEpoch": strconv.FormatUint(e.LastEpoch, 10),
		"newEpoch":  strconv.FormatUint(e.NewEpoch, 10),
	}
	return &types.Event{Type: TypeEpochAdvanced, Attributes: attrs}
}

// RewardsHarvested captures a claimed share of a closed epoch's earnings.
type RewardsHarvested struct {
	Account    [20]byte
	Index      uint64
	Epoch      uint64
	Vested     bool
	USDT       *big.Int
	VLT        *big.Int
	Native     *big.Int
	Multiplier uint64
}

// EventType satisfies the Event interface.
func (RewardsHarvested) EventType() string { return TypeRewardsHarvested }

// Event converts the structured payload into a broadcastable event.
func (e RewardsHarvested) Event() *types.Event {
	attrs := map[string]string{
		"addr":       formatAddr(e.Account),
		"index":      strconv.FormatUint(e.Index, 10),
		"epoch":      strconv.FormatUint(e.Epoch, 10),
		"vested":     strconv.FormatBool(e.Vested),
		"usdt":       formatAmount(e.USDT),
		"vlt":        formatAmount(e.VLT),
		"native":     formatAmount(e.Native),
		"multiplier": strconv.FormatUint(e.Multiplier, 10),
	}
	return &types.Event{Type: TypeRewardsHarvested, Attributes: attrs}
}

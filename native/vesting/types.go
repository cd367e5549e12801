package vesting

import "math/big"

// MultiplierPercent is the fixed incentive multiplier for vested positions.
// Unlike immediate stakes, vested positions never decay.
const MultiplierPercent uint64 = 100

// TGE early release: a one-time disbursement of 5% of the position's total
// amount, paid outside the vesting bookkeeping.
const (
	tgeNumerator   = 5
	tgeDenominator = 100
)

// Position is one creator-issued vested lock. On top of the lock window it
// carries a linear-vesting release window and the one-time early-release
// flag. Positions live in an append-only per-account sequence; the slice
// index is the stable identifier.
type Position struct {
	TotalAmount        *big.Int
	TotalWithdrawn     *big.Int
	StartLockMonth     uint64
	EndLockMonth       uint64
	StartVestingMonth  uint64
	EndVestingMonth    uint64
	LastWithdrawnMonth uint64
	ClaimedTGE         bool
	Inactive           bool
}

// Remaining returns the unwithdrawn portion of the position.
func (p *Position) Remaining() *big.Int {
	if p == nil || p.TotalAmount == nil {
		return big.NewInt(0)
	}
	withdrawn := p.TotalWithdrawn
	if withdrawn == nil {
		withdrawn = big.NewInt(0)
	}
	return new(big.Int).Sub(p.TotalAmount, withdrawn)
}

// Available computes the amount withdrawable at the given epoch under the
// linear vesting schedule. Before the vesting window opens nothing is
// available; once it has fully elapsed the whole remainder is; in between the
// vested amount is floor(totalAmount/vestingMonths) x elapsedMonths, net of
// prior withdrawals. A zero-length window degenerates to all-at-once.
func (p *Position) Available(currentEpoch uint64) *big.Int {
	if p == nil || p.TotalAmount == nil {
		return big.NewInt(0)
	}
	if currentEpoch < p.StartVestingMonth {
		return big.NewInt(0)
	}
	months := currentEpoch - p.StartVestingMonth
	vestingMonths := uint64(0)
	if p.EndVestingMonth > p.StartVestingMonth {
		vestingMonths = p.EndVestingMonth - p.StartVestingMonth
	}
	if vestingMonths == 0 || months >= vestingMonths {
		return p.Remaining()
	}
	perMonth := new(big.Int).Quo(p.TotalAmount, new(big.Int).SetUint64(vestingMonths))
	vested := perMonth.Mul(perMonth, new(big.Int).SetUint64(months))
	withdrawn := p.TotalWithdrawn
	if withdrawn == nil {
		withdrawn = big.NewInt(0)
	}
	available := vested.Sub(vested, withdrawn)
	if available.Sign() < 0 {
		return big.NewInt(0)
	}
	return available
}

// TGEAmount returns the one-time early-release disbursement for the position.
func (p *Position) TGEAmount() *big.Int {
	if p == nil || p.TotalAmount == nil {
		return big.NewInt(0)
	}
	amount := new(big.Int).Mul(p.TotalAmount, big.NewInt(tgeNumerator))
	return amount.Quo(amount, big.NewInt(tgeDenominator))
}

// Clone returns a deep copy of the position.
func (p *Position) Clone() *Position {
	if p == nil {
		return nil
	}
	clone := *p
	if p.TotalAmount != nil {
		clone.TotalAmount = new(big.Int).Set(p.TotalAmount)
	}
	if p.TotalWithdrawn != nil {
		clone.TotalWithdrawn = new(big.Int).Set(p.TotalWithdrawn)
	}
	return &clone
}

// WithdrawalRecord is the per-epoch history entry for a vested withdrawal.
type WithdrawalRecord struct {
	Account    [20]byte
	Index      uint64
	Amount     *big.Int
	Multiplier uint64
}

// Clone returns a deep copy of the record.
func (r WithdrawalRecord) Clone() WithdrawalRecord {
	clone := r
	if r.Amount != nil {
		clone.Amount = new(big.Int).Set(r.Amount)
	}
	return clone
}

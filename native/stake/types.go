package stake

import "math/big"

// Lock tiers selectable at stake time. The tier fixes the lock duration in
// epochs; it has no influence on the withdrawal multiplier.
const (
	TierShort  uint8 = 1
	TierMedium uint8 = 2
	TierLong   uint8 = 3
)

// TierInfo pairs a selectable tier with its lock duration.
type TierInfo struct {
	Tier       uint8  `json:"tier"`
	LockMonths uint64 `json:"lockMonths"`
}

// Tiers returns the fixed tier table.
func Tiers() []TierInfo {
	return []TierInfo{
		{Tier: TierShort, LockMonths: 3},
		{Tier: TierMedium, LockMonths: 6},
		{Tier: TierLong, LockMonths: 9},
	}
}

// TierDuration resolves the lock duration for a tier. The boolean reports
// whether the tier is valid.
func TierDuration(tier uint8) (uint64, bool) {
	switch tier {
	case TierShort:
		return 3, true
	case TierMedium:
		return 6, true
	case TierLong:
		return 9, true
	}
	return 0, false
}

// Position is one immediate-stake lock. Positions live in an append-only
// per-account sequence; the slice index is the stable position identifier and
// is never reused. Exhausted positions are flagged Inactive, never deleted.
type Position struct {
	TotalAmount        *big.Int
	TotalWithdrawn     *big.Int
	StartLockMonth     uint64
	EndLockMonth       uint64
	LastWithdrawnMonth uint64
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

// WithdrawalRecord is the per-epoch history entry for a completed withdrawal.
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

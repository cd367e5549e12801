package rewards

import "math/big"

// shareScale is the fixed-point unit of the proportional-share math: a share
// equal to shareScale represents 100% of an epoch's pool.
var shareScale = big.NewInt(1_000_000_000_000)

// ShareUnit returns the fixed-point scale used for share percentages.
func ShareUnit() *big.Int {
	return new(big.Int).Set(shareScale)
}

// Earnings is the deposit pool recorded for one epoch. Deposited flips to
// true exactly once, when the depositor funds the epoch, and is never
// reversed.
type Earnings struct {
	USDT      *big.Int
	VLT       *big.Int
	Native    *big.Int
	Deposited bool
}

// Clone returns a deep copy of the earnings record.
func (e *Earnings) Clone() *Earnings {
	if e == nil {
		return nil
	}
	clone := &Earnings{Deposited: e.Deposited}
	clone.USDT = cloneBig(e.USDT)
	clone.VLT = cloneBig(e.VLT)
	clone.Native = cloneBig(e.Native)
	return clone
}

// Payout is the per-asset result of a harvest.
type Payout struct {
	USDT   *big.Int
	VLT    *big.Int
	Native *big.Int
}

func cloneBig(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

package stake

// Incentive multiplier percentages. The multiplier decays with withdrawal
// recency: the more recently an account tapped a position, the smaller its
// share of the next harvest.
const (
	MultiplierFull    uint64 = 100
	MultiplierCooling uint64 = 75
	MultiplierRecent  uint64 = 50
)

// MultiplierBand maps a months-since-last-withdrawal bucket to its percent.
type MultiplierBand struct {
	MonthsSinceWithdrawal uint64 `json:"monthsSinceWithdrawal"`
	Percent               uint64 `json:"percent"`
}

// MultiplierTable returns the fixed decay schedule. Two or more months of
// inactivity restore the full multiplier.
func MultiplierTable() []MultiplierBand {
	return []MultiplierBand{
		{MonthsSinceWithdrawal: 0, Percent: MultiplierRecent},
		{MonthsSinceWithdrawal: 1, Percent: MultiplierCooling},
		{MonthsSinceWithdrawal: 2, Percent: MultiplierFull},
	}
}

// WithdrawMultiplier computes the incentive multiplier for a position at the
// given epoch. A position that has never been withdrawn from always earns the
// full multiplier.
func WithdrawMultiplier(p *Position, currentEpoch uint64) uint64 {
	if p == nil {
		return MultiplierFull
	}
	if p.TotalWithdrawn == nil || p.TotalWithdrawn.Sign() == 0 {
		return MultiplierFull
	}
	if currentEpoch < p.LastWithdrawnMonth {
		return MultiplierRecent
	}
	switch currentEpoch - p.LastWithdrawnMonth {
	case 0:
		return MultiplierRecent
	case 1:
		return MultiplierCooling
	default:
		return MultiplierFull
	}
}

package rewards

import (
	"math/big"

	"yieldvault/core/events"
	"yieldvault/core/types"
	"yieldvault/native/common"
)

type engineState interface {
	RewardsEarnings(epoch uint64) (*Earnings, bool, error)
	RewardsEarningsPut(epoch uint64, earnings *Earnings) error
	RewardsEpoch() (uint64, error)
	RewardsEpochPut(epoch uint64) error
	RewardsHarvested(addr [20]byte, epoch, index uint64, vested bool) (bool, error)
	RewardsHarvestedPut(addr [20]byte, epoch, index uint64, vested bool) error
	GetAccount(addr []byte) (*types.Account, error)
	PutAccount(addr []byte, account *types.Account) error
	HasRole(role string, addr []byte) bool
}

// Ledger is the surface the distributor needs from each stake ledger: the
// historical per-epoch denominator, the call-time position numerator, and the
// privileged epoch-propagation hook.
type Ledger interface {
	LockedTotalAt(epoch uint64) (*big.Int, error)
	HarvestPosition(addr [20]byte, index uint64) (*big.Int, uint64, bool, error)
	AdvanceEpoch(caller [20]byte, newEpoch uint64) error
}

// Engine owns the per-epoch deposit pool, the harvest bookkeeping, and the
// authoritative epoch counter. It is the only component allowed to advance
// the counter, and it does so solely as a side effect of a deposit.
type Engine struct {
	state   engineState
	emitter events.Emitter
	vault   [20]byte
	stake   Ledger
	vesting Ledger
}

// NewEngine constructs a rewards engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		vault:   common.ModuleAddress("rewards"),
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetLedgers wires the two stake ledgers consulted for totals and positions.
func (e *Engine) SetLedgers(stake, vesting Ledger) {
	e.stake = stake
	e.vesting = vesting
}

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// Vault returns the module address holding undistributed earnings. The same
// address carries the rewarder role for epoch propagation.
func (e *Engine) Vault() [20]byte { return e.vault }

// CurrentEpoch returns the authoritative epoch counter.
func (e *Engine) CurrentEpoch() (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	return e.state.RewardsEpoch()
}

// Deposit funds the current epoch's pool with the three earning assets and
// then closes the epoch: the counter increments and the carry-forward is
// pushed into both ledgers within the same transaction. Epoch numbers are
// therefore tied one-to-one to deposits.
func (e *Engine) Deposit(from [20]byte, usdt, vlt, native *big.Int) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	if e.stake == nil || e.vesting == nil {
		return 0, ErrNilLedger
	}
	if !e.state.HasRole(common.RoleDepositor, from[:]) {
		return 0, ErrUnauthorized
	}
	epoch, err := e.state.RewardsEpoch()
	if err != nil {
		return 0, err
	}
	if existing, ok, err := e.state.RewardsEarnings(epoch); err != nil {
		return 0, err
	} else if ok && existing.Deposited {
		return 0, ErrEpochFunded
	}
	usdt = cloneBig(usdt)
	vlt = cloneBig(vlt)
	native = cloneBig(native)
	depositor, err := e.state.GetAccount(from[:])
	if err != nil {
		return 0, err
	}
	depositor = depositor.Normalize()
	if depositor.BalanceUSDT.Cmp(usdt) < 0 || depositor.BalanceVLT.Cmp(vlt) < 0 || depositor.BalanceNative.Cmp(native) < 0 {
		return 0, ErrInsufficientBalance
	}
	depositor.BalanceUSDT = new(big.Int).Sub(depositor.BalanceUSDT, usdt)
	depositor.BalanceVLT = new(big.Int).Sub(depositor.BalanceVLT, vlt)
	depositor.BalanceNative = new(big.Int).Sub(depositor.BalanceNative, native)
	if err := e.state.PutAccount(from[:], depositor); err != nil {
		return 0, err
	}
	vaultAcc, err := e.state.GetAccount(e.vault[:])
	if err != nil {
		return 0, err
	}
	vaultAcc = vaultAcc.Normalize()
	vaultAcc.BalanceUSDT = new(big.Int).Add(vaultAcc.BalanceUSDT, usdt)
	vaultAcc.BalanceVLT = new(big.Int).Add(vaultAcc.BalanceVLT, vlt)
	vaultAcc.BalanceNative = new(big.Int).Add(vaultAcc.BalanceNative, native)
	if err := e.state.PutAccount(e.vault[:], vaultAcc); err != nil {
		return 0, err
	}
	earnings := &Earnings{USDT: usdt, VLT: vlt, Native: native, Deposited: true}
	if err := e.state.RewardsEarningsPut(epoch, earnings); err != nil {
		return 0, err
	}
	e.emit(events.RewardsDeposited{From: from, Epoch: epoch, USDT: usdt, VLT: vlt, Native: native})
	if err := e.advanceEpoch(epoch); err != nil {
		return 0, err
	}
	return epoch, nil
}

// advanceEpoch increments the shared counter and propagates it into both
// ledgers. All three updates land in the same transaction; a failure in any
// of them aborts the whole deposit.
func (e *Engine) advanceEpoch(epoch uint64) error {
	newEpoch := epoch + 1
	if err := e.stake.AdvanceEpoch(e.vault, newEpoch); err != nil {
		return err
	}
	if err := e.vesting.AdvanceEpoch(e.vault, newEpoch); err != nil {
		return err
	}
	if err := e.state.RewardsEpochPut(newEpoch); err != nil {
		return err
	}
	e.emit(events.EpochAdvanced{LastEpoch: epoch, NewEpoch: newEpoch})
	return nil
}

// Harvest pays the caller's proportional share of a closed epoch's pool for
// one position, at most once per (account, epoch, index, ledger-kind).
func (e *Engine) Harvest(from [20]byte, index, epoch uint64, vested bool) (*Payout, uint64, error) {
	if e == nil || e.state == nil {
		return nil, 0, ErrNilState
	}
	if e.stake == nil || e.vesting == nil {
		return nil, 0, ErrNilLedger
	}
	earnings, ok, err := e.state.RewardsEarnings(epoch)
	if err != nil {
		return nil, 0, err
	}
	if !ok || !earnings.Deposited {
		return nil, 0, ErrNothingDeposited
	}
	current, err := e.state.RewardsEpoch()
	if err != nil {
		return nil, 0, err
	}
	if epoch >= current {
		return nil, 0, ErrEpochOpen
	}
	done, err := e.state.RewardsHarvested(from, epoch, index, vested)
	if err != nil {
		return nil, 0, err
	}
	if done {
		return nil, 0, ErrAlreadyHarvested
	}
	remaining, multiplier, active, err := e.ledger(vested).HarvestPosition(from, index)
	if err != nil {
		return nil, 0, err
	}
	if !active {
		return nil, 0, ErrPositionInactive
	}
	share, err := e.finalShare(remaining, multiplier, epoch)
	if err != nil {
		return nil, 0, err
	}
	if err := e.state.RewardsHarvestedPut(from, epoch, index, vested); err != nil {
		return nil, 0, err
	}
	payout := &Payout{
		USDT:   applyShare(earnings.USDT, share),
		VLT:    applyShare(earnings.VLT, share),
		Native: applyShare(earnings.Native, share),
	}
	if err := e.payOut(from, payout); err != nil {
		return nil, 0, err
	}
	e.emit(events.RewardsHarvested{
		Account:    from,
		Index:      index,
		Epoch:      epoch,
		Vested:     vested,
		USDT:       new(big.Int).Set(payout.USDT),
		VLT:        new(big.Int).Set(payout.VLT),
		Native:     new(big.Int).Set(payout.Native),
		Multiplier: multiplier,
	})
	return payout, multiplier, nil
}

// AvailableHarvest projects the payout Harvest would produce right now,
// applying the same preconditions except the at-most-once bookkeeping.
func (e *Engine) AvailableHarvest(from [20]byte, index, epoch uint64, vested bool) (*Payout, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if e.stake == nil || e.vesting == nil {
		return nil, ErrNilLedger
	}
	earnings, ok, err := e.state.RewardsEarnings(epoch)
	if err != nil {
		return nil, err
	}
	if !ok || !earnings.Deposited {
		return nil, ErrNothingDeposited
	}
	current, err := e.state.RewardsEpoch()
	if err != nil {
		return nil, err
	}
	if epoch >= current {
		return nil, ErrEpochOpen
	}
	remaining, multiplier, active, err := e.ledger(vested).HarvestPosition(from, index)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, ErrPositionInactive
	}
	share, err := e.finalShare(remaining, multiplier, epoch)
	if err != nil {
		return nil, err
	}
	return &Payout{
		USDT:   applyShare(earnings.USDT, share),
		VLT:    applyShare(earnings.VLT, share),
		Native: applyShare(earnings.Native, share),
	}, nil
}

// EarningsPercentage returns the scaled final share (multiplier applied) the
// position would earn for the epoch. ShareUnit() represents 100%.
func (e *Engine) EarningsPercentage(from [20]byte, index, epoch uint64, vested bool) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if e.stake == nil || e.vesting == nil {
		return nil, ErrNilLedger
	}
	remaining, multiplier, _, err := e.ledger(vested).HarvestPosition(from, index)
	if err != nil {
		return nil, err
	}
	return e.finalShare(remaining, multiplier, epoch)
}

// EarningsForEpoch returns the recorded pool for an epoch, if any.
func (e *Engine) EarningsForEpoch(epoch uint64) (*Earnings, bool, error) {
	if e == nil || e.state == nil {
		return nil, false, ErrNilState
	}
	earnings, ok, err := e.state.RewardsEarnings(epoch)
	if err != nil || !ok {
		return nil, ok, err
	}
	return earnings.Clone(), true, nil
}

// Harvested reports whether the position already claimed the epoch.
func (e *Engine) Harvested(from [20]byte, epoch, index uint64, vested bool) (bool, error) {
	if e == nil || e.state == nil {
		return false, ErrNilState
	}
	return e.state.RewardsHarvested(from, epoch, index, vested)
}

// finalShare computes the proportional share for a position. The denominator
// is the historical aggregate total recorded for the harvested epoch; the
// numerator and multiplier reflect the position as it stands now. A later
// withdrawal or decay therefore changes the payout for a still-unharvested
// past epoch. Observed behaviour, kept as is.
func (e *Engine) finalShare(remaining *big.Int, multiplier uint64, epoch uint64) (*big.Int, error) {
	stakeTotal, err := e.stake.LockedTotalAt(epoch)
	if err != nil {
		return nil, err
	}
	vestingTotal, err := e.vesting.LockedTotalAt(epoch)
	if err != nil {
		return nil, err
	}
	total := new(big.Int).Add(cloneBig(stakeTotal), cloneBig(vestingTotal))
	if total.Sign() == 0 {
		return nil, ErrNoLockedStake
	}
	share := new(big.Int).Mul(cloneBig(remaining), shareScale)
	share.Quo(share, total)
	share.Mul(share, new(big.Int).SetUint64(multiplier))
	share.Quo(share, big.NewInt(100))
	return share, nil
}

func applyShare(amount, share *big.Int) *big.Int {
	if amount == nil || amount.Sign() == 0 {
		return big.NewInt(0)
	}
	out := new(big.Int).Mul(amount, share)
	return out.Quo(out, shareScale)
}

// payOut credits the nonzero payout components from the vault to the
// harvester.
func (e *Engine) payOut(to [20]byte, payout *Payout) error {
	if payout.USDT.Sign() == 0 && payout.VLT.Sign() == 0 && payout.Native.Sign() == 0 {
		return nil
	}
	vaultAcc, err := e.state.GetAccount(e.vault[:])
	if err != nil {
		return err
	}
	vaultAcc = vaultAcc.Normalize()
	if vaultAcc.BalanceUSDT.Cmp(payout.USDT) < 0 || vaultAcc.BalanceVLT.Cmp(payout.VLT) < 0 || vaultAcc.BalanceNative.Cmp(payout.Native) < 0 {
		return ErrInsufficientBalance
	}
	vaultAcc.BalanceUSDT = new(big.Int).Sub(vaultAcc.BalanceUSDT, payout.USDT)
	vaultAcc.BalanceVLT = new(big.Int).Sub(vaultAcc.BalanceVLT, payout.VLT)
	vaultAcc.BalanceNative = new(big.Int).Sub(vaultAcc.BalanceNative, payout.Native)
	if err := e.state.PutAccount(e.vault[:], vaultAcc); err != nil {
		return err
	}
	receiver, err := e.state.GetAccount(to[:])
	if err != nil {
		return err
	}
	receiver = receiver.Normalize()
	receiver.BalanceUSDT = new(big.Int).Add(receiver.BalanceUSDT, payout.USDT)
	receiver.BalanceVLT = new(big.Int).Add(receiver.BalanceVLT, payout.VLT)
	receiver.BalanceNative = new(big.Int).Add(receiver.BalanceNative, payout.Native)
	return e.state.PutAccount(to[:], receiver)
}

func (e *Engine) ledger(vested bool) Ledger {
	if vested {
		return e.vesting
	}
	return e.stake
}

func (e *Engine) emit(evt events.Event) {
	if e == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(evt)
}

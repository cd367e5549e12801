package stake

import (
	"math/big"

	"yieldvault/core/events"
	"yieldvault/core/types"
	"yieldvault/native/common"
)

type engineState interface {
	StakePositions(addr [20]byte) ([]*Position, error)
	StakePositionsPut(addr [20]byte, list []*Position) error
	StakeLockedTotal(epoch uint64) (*big.Int, error)
	StakeLockedTotalPut(epoch uint64, total *big.Int) error
	StakeEpoch() (uint64, error)
	StakeEpochPut(epoch uint64) error
	StakeWithdrawals(epoch uint64) ([]WithdrawalRecord, error)
	StakeWithdrawalsPut(epoch uint64, list []WithdrawalRecord) error
	GetAccount(addr []byte) (*types.Account, error)
	PutAccount(addr []byte, account *types.Account) error
	HasRole(role string, addr []byte) bool
}

// Engine owns the immediate-stake ledger: self-service lock positions with a
// fixed tier duration and the usage-decay withdrawal multiplier.
type Engine struct {
	state   engineState
	emitter events.Emitter
	vault   [20]byte
}

// NewEngine constructs a stake engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		vault:   common.ModuleAddress("stake"),
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// Vault returns the module address holding locked capital.
func (e *Engine) Vault() [20]byte { return e.vault }

// CurrentEpoch returns the ledger's view of the accounting period.
func (e *Engine) CurrentEpoch() (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	return e.state.StakeEpoch()
}

// Stake locks amount for the duration fixed by tier and appends a new
// position to the caller's sequence.
func (e *Engine) Stake(from [20]byte, amount *big.Int, tier uint8) (uint64, *Position, error) {
	if e == nil || e.state == nil {
		return 0, nil, ErrNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return 0, nil, ErrInvalidAmount
	}
	duration, ok := TierDuration(tier)
	if !ok {
		return 0, nil, ErrInvalidTier
	}
	epoch, err := e.state.StakeEpoch()
	if err != nil {
		return 0, nil, err
	}
	if err := e.moveVLT(from, e.vault, amount); err != nil {
		return 0, nil, err
	}
	positions, err := e.state.StakePositions(from)
	if err != nil {
		return 0, nil, err
	}
	position := &Position{
		TotalAmount:        new(big.Int).Set(amount),
		TotalWithdrawn:     big.NewInt(0),
		StartLockMonth:     epoch,
		EndLockMonth:       epoch + duration,
		LastWithdrawnMonth: epoch,
	}
	positions = append(positions, position)
	if err := e.state.StakePositionsPut(from, positions); err != nil {
		return 0, nil, err
	}
	if err := e.adjustLockedTotal(epoch, amount, true); err != nil {
		return 0, nil, err
	}
	index := uint64(len(positions) - 1)
	e.emit(events.StakeCreated{
		Account:   from,
		Index:     index,
		Amount:    new(big.Int).Set(amount),
		Tier:      tier,
		StartLock: position.StartLockMonth,
		EndLock:   position.EndLockMonth,
	})
	return index, position.Clone(), nil
}

// Withdraw releases amount from an unlocked position back to the owner. The
// current epoch's aggregate locked total decreases by the same amount, and
// the withdrawal record carries the multiplier in force before this call
// refreshed the recency clock.
func (e *Engine) Withdraw(from [20]byte, index uint64, amount *big.Int) (*Position, uint64, error) {
	if e == nil || e.state == nil {
		return nil, 0, ErrNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, 0, ErrInvalidAmount
	}
	positions, err := e.state.StakePositions(from)
	if err != nil {
		return nil, 0, err
	}
	if index >= uint64(len(positions)) {
		return nil, 0, ErrPositionNotFound
	}
	position := positions[index]
	if position.Inactive {
		return nil, 0, ErrPositionInactive
	}
	epoch, err := e.state.StakeEpoch()
	if err != nil {
		return nil, 0, err
	}
	if epoch < position.EndLockMonth {
		return nil, 0, ErrLockNotExpired
	}
	if amount.Cmp(position.Remaining()) > 0 {
		return nil, 0, ErrExceedsRemaining
	}
	multiplier := WithdrawMultiplier(position, epoch)
	position.TotalWithdrawn = new(big.Int).Add(position.TotalWithdrawn, amount)
	position.LastWithdrawnMonth = epoch
	if position.TotalWithdrawn.Cmp(position.TotalAmount) == 0 {
		position.Inactive = true
	}
	if err := e.state.StakePositionsPut(from, positions); err != nil {
		return nil, 0, err
	}
	if err := e.adjustLockedTotal(epoch, amount, false); err != nil {
		return nil, 0, err
	}
	if err := e.moveVLT(e.vault, from, amount); err != nil {
		return nil, 0, err
	}
	history, err := e.state.StakeWithdrawals(epoch)
	if err != nil {
		return nil, 0, err
	}
	history = append(history, WithdrawalRecord{
		Account:    from,
		Index:      index,
		Amount:     new(big.Int).Set(amount),
		Multiplier: multiplier,
	})
	if err := e.state.StakeWithdrawalsPut(epoch, history); err != nil {
		return nil, 0, err
	}
	e.emit(events.StakeWithdrawn{
		Account:    from,
		Index:      index,
		Amount:     new(big.Int).Set(amount),
		Multiplier: multiplier,
		Epoch:      epoch,
		Inactive:   position.Inactive,
	})
	return position.Clone(), multiplier, nil
}

// AdvanceEpoch carries the aggregate locked total forward from the current
// epoch into newEpoch and then adopts newEpoch as current. Only the rewards
// module address holds the role required to call it.
func (e *Engine) AdvanceEpoch(caller [20]byte, newEpoch uint64) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if !e.state.HasRole(common.RoleRewarder, caller[:]) {
		return ErrUnauthorized
	}
	epoch, err := e.state.StakeEpoch()
	if err != nil {
		return err
	}
	if newEpoch != epoch+1 {
		return ErrEpochNotSequential
	}
	total, err := e.state.StakeLockedTotal(epoch)
	if err != nil {
		return err
	}
	if err := e.state.StakeLockedTotalPut(newEpoch, total); err != nil {
		return err
	}
	return e.state.StakeEpochPut(newEpoch)
}

// LockedTotalAt returns the aggregate locked total recorded for an epoch.
func (e *Engine) LockedTotalAt(epoch uint64) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	return e.state.StakeLockedTotal(epoch)
}

// HarvestPosition exposes the call-time remaining amount, multiplier and
// activity flag the rewards distributor needs to price a harvest.
func (e *Engine) HarvestPosition(addr [20]byte, index uint64) (*big.Int, uint64, bool, error) {
	if e == nil || e.state == nil {
		return nil, 0, false, ErrNilState
	}
	positions, err := e.state.StakePositions(addr)
	if err != nil {
		return nil, 0, false, err
	}
	if index >= uint64(len(positions)) {
		return nil, 0, false, ErrPositionNotFound
	}
	position := positions[index]
	epoch, err := e.state.StakeEpoch()
	if err != nil {
		return nil, 0, false, err
	}
	return position.Remaining(), WithdrawMultiplier(position, epoch), !position.Inactive, nil
}

// Position returns a copy of the addressed position.
func (e *Engine) Position(addr [20]byte, index uint64) (*Position, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	positions, err := e.state.StakePositions(addr)
	if err != nil {
		return nil, err
	}
	if index >= uint64(len(positions)) {
		return nil, ErrPositionNotFound
	}
	return positions[index].Clone(), nil
}

// Positions returns copies of every position owned by addr.
func (e *Engine) Positions(addr [20]byte) ([]*Position, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	positions, err := e.state.StakePositions(addr)
	if err != nil {
		return nil, err
	}
	out := make([]*Position, len(positions))
	for i := range positions {
		out[i] = positions[i].Clone()
	}
	return out, nil
}

// PositionCount returns the length of the account's position sequence.
func (e *Engine) PositionCount(addr [20]byte) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	positions, err := e.state.StakePositions(addr)
	if err != nil {
		return 0, err
	}
	return uint64(len(positions)), nil
}

// UnlockCountdown returns the epochs remaining until the position unlocks, or
// zero when it is already withdrawable.
func (e *Engine) UnlockCountdown(addr [20]byte, index uint64) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	position, err := e.Position(addr, index)
	if err != nil {
		return 0, err
	}
	epoch, err := e.state.StakeEpoch()
	if err != nil {
		return 0, err
	}
	if epoch >= position.EndLockMonth {
		return 0, nil
	}
	return position.EndLockMonth - epoch, nil
}

// WithdrawalsAt returns the withdrawal history recorded for an epoch.
func (e *Engine) WithdrawalsAt(epoch uint64) ([]WithdrawalRecord, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	history, err := e.state.StakeWithdrawals(epoch)
	if err != nil {
		return nil, err
	}
	out := make([]WithdrawalRecord, len(history))
	for i := range history {
		out[i] = history[i].Clone()
	}
	return out, nil
}

func (e *Engine) adjustLockedTotal(epoch uint64, amount *big.Int, add bool) error {
	total, err := e.state.StakeLockedTotal(epoch)
	if err != nil {
		return err
	}
	if total == nil {
		total = big.NewInt(0)
	}
	if add {
		total = new(big.Int).Add(total, amount)
	} else {
		total = new(big.Int).Sub(total, amount)
		if total.Sign() < 0 {
			return ErrTotalUnderflow
		}
	}
	return e.state.StakeLockedTotalPut(epoch, total)
}

func (e *Engine) moveVLT(from, to [20]byte, amount *big.Int) error {
	sender, err := e.state.GetAccount(from[:])
	if err != nil {
		return err
	}
	sender = sender.Normalize()
	if sender.BalanceVLT.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	sender.BalanceVLT = new(big.Int).Sub(sender.BalanceVLT, amount)
	if err := e.state.PutAccount(from[:], sender); err != nil {
		return err
	}
	receiver, err := e.state.GetAccount(to[:])
	if err != nil {
		return err
	}
	receiver = receiver.Normalize()
	receiver.BalanceVLT = new(big.Int).Add(receiver.BalanceVLT, amount)
	return e.state.PutAccount(to[:], receiver)
}

func (e *Engine) emit(evt events.Event) {
	if e == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(evt)
}

package vesting

import (
	"math/big"

	"yieldvault/core/events"
	"yieldvault/core/types"
	"yieldvault/native/common"
)

type engineState interface {
	VestingPositions(addr [20]byte) ([]*Position, error)
	VestingPositionsPut(addr [20]byte, list []*Position) error
	VestingLockedTotal(epoch uint64) (*big.Int, error)
	VestingLockedTotalPut(epoch uint64, total *big.Int) error
	VestingEpoch() (uint64, error)
	VestingEpochPut(epoch uint64) error
	VestingWithdrawals(epoch uint64) ([]WithdrawalRecord, error)
	VestingWithdrawalsPut(epoch uint64, list []WithdrawalRecord) error
	GetAccount(addr []byte) (*types.Account, error)
	PutAccount(addr []byte, account *types.Account) error
	HasRole(role string, addr []byte) bool
}

// Engine owns the vested-stake ledger: creator-issued positions combining a
// lock window with a linear-vesting release window and a one-time early
// claim.
type Engine struct {
	state   engineState
	emitter events.Emitter
	vault   [20]byte
}

// NewEngine constructs a vesting engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		vault:   common.ModuleAddress("vesting"),
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

// Vault returns the module address holding vested capital.
func (e *Engine) Vault() [20]byte { return e.vault }

// CurrentEpoch returns the ledger's view of the accounting period.
func (e *Engine) CurrentEpoch() (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	return e.state.VestingEpoch()
}

// Create issues a new vested position for account, funded from the creator's
// balance. The vesting window opens when the lock expires.
func (e *Engine) Create(creator, account [20]byte, amount *big.Int, lockMonths, vestingMonths uint64) (uint64, *Position, error) {
	if e == nil || e.state == nil {
		return 0, nil, ErrNilState
	}
	if !e.state.HasRole(common.RoleCreator, creator[:]) {
		return 0, nil, ErrUnauthorized
	}
	if amount == nil || amount.Sign() <= 0 {
		return 0, nil, ErrInvalidAmount
	}
	epoch, err := e.state.VestingEpoch()
	if err != nil {
		return 0, nil, err
	}
	if err := e.moveVLT(creator, e.vault, amount); err != nil {
		return 0, nil, err
	}
	endLock := epoch + lockMonths
	position := &Position{
		TotalAmount:        new(big.Int).Set(amount),
		TotalWithdrawn:     big.NewInt(0),
		StartLockMonth:     epoch,
		EndLockMonth:       endLock,
		StartVestingMonth:  endLock,
		EndVestingMonth:    endLock + vestingMonths,
		LastWithdrawnMonth: epoch,
	}
	positions, err := e.state.VestingPositions(account)
	if err != nil {
		return 0, nil, err
	}
	positions = append(positions, position)
	if err := e.state.VestingPositionsPut(account, positions); err != nil {
		return 0, nil, err
	}
	if err := e.addLockedTotal(epoch, amount); err != nil {
		return 0, nil, err
	}
	index := uint64(len(positions) - 1)
	e.emit(events.VestingCreated{
		Creator:    creator,
		Account:    account,
		Index:      index,
		Amount:     new(big.Int).Set(amount),
		EndLock:    position.EndLockMonth,
		EndVesting: position.EndVestingMonth,
	})
	return index, position.Clone(), nil
}

// ClaimTGE pays the one-time 5% early release. The disbursement is a bonus
// outside the vesting accounting: it is not recorded against TotalWithdrawn
// and does not reduce what the schedule later releases.
func (e *Engine) ClaimTGE(from [20]byte, index uint64) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	positions, err := e.state.VestingPositions(from)
	if err != nil {
		return nil, err
	}
	if index >= uint64(len(positions)) {
		return nil, ErrPositionNotFound
	}
	position := positions[index]
	if position.ClaimedTGE {
		return nil, ErrTGEClaimed
	}
	amount := position.TGEAmount()
	if amount.Sign() == 0 {
		return nil, ErrTGETooSmall
	}
	position.ClaimedTGE = true
	if err := e.state.VestingPositionsPut(from, positions); err != nil {
		return nil, err
	}
	if err := e.moveVLT(e.vault, from, amount); err != nil {
		return nil, err
	}
	e.emit(events.VestingTGEClaimed{Account: from, Index: index, Amount: new(big.Int).Set(amount)})
	return amount, nil
}

// Withdraw releases amount under the vesting schedule. The current epoch's
// aggregate locked total is increased by the withdrawn amount; the immediate
// ledger decreases it instead, and both behaviours are kept as observed.
func (e *Engine) Withdraw(from [20]byte, index uint64, amount *big.Int) (*Position, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	positions, err := e.state.VestingPositions(from)
	if err != nil {
		return nil, err
	}
	if index >= uint64(len(positions)) {
		return nil, ErrPositionNotFound
	}
	position := positions[index]
	if position.Inactive {
		return nil, ErrPositionInactive
	}
	epoch, err := e.state.VestingEpoch()
	if err != nil {
		return nil, err
	}
	if epoch < position.EndLockMonth {
		return nil, ErrLockNotExpired
	}
	if amount.Cmp(position.Available(epoch)) > 0 {
		return nil, ErrExceedsAvailable
	}
	position.TotalWithdrawn = new(big.Int).Add(position.TotalWithdrawn, amount)
	position.LastWithdrawnMonth = epoch
	if position.TotalWithdrawn.Cmp(position.TotalAmount) == 0 {
		position.Inactive = true
	}
	if err := e.state.VestingPositionsPut(from, positions); err != nil {
		return nil, err
	}
	if err := e.addLockedTotal(epoch, amount); err != nil {
		return nil, err
	}
	if err := e.moveVLT(e.vault, from, amount); err != nil {
		return nil, err
	}
	history, err := e.state.VestingWithdrawals(epoch)
	if err != nil {
		return nil, err
	}
	history = append(history, WithdrawalRecord{
		Account:    from,
		Index:      index,
		Amount:     new(big.Int).Set(amount),
		Multiplier: MultiplierPercent,
	})
	if err := e.state.VestingWithdrawalsPut(epoch, history); err != nil {
		return nil, err
	}
	e.emit(events.VestingWithdrawn{
		Account:  from,
		Index:    index,
		Amount:   new(big.Int).Set(amount),
		Epoch:    epoch,
		Inactive: position.Inactive,
	})
	return position.Clone(), nil
}

// Transfer splits amount out of the source position into a new child position
// owned by the recipient. Capital is conserved: the source total shrinks by
// exactly the child's total. The child inherits the source's lock and vesting
// windows and is considered pre-claimed for the early release.
func (e *Engine) Transfer(creator, from, to [20]byte, index uint64, amount *big.Int) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, ErrNilState
	}
	if !e.state.HasRole(common.RoleCreator, creator[:]) {
		return 0, ErrUnauthorized
	}
	if amount == nil || amount.Sign() <= 0 {
		return 0, ErrInvalidAmount
	}
	if from == to {
		return 0, ErrSelfTransfer
	}
	sources, err := e.state.VestingPositions(from)
	if err != nil {
		return 0, err
	}
	if index >= uint64(len(sources)) {
		return 0, ErrPositionNotFound
	}
	source := sources[index]
	if source.Inactive {
		return 0, ErrPositionInactive
	}
	if amount.Cmp(source.TotalAmount) > 0 {
		return 0, ErrExceedsTotal
	}
	// Withdrawn capital is gone; only the unwithdrawn remainder can move.
	if amount.Cmp(source.Remaining()) > 0 {
		return 0, ErrExceedsRemaining
	}
	if !source.ClaimedTGE {
		return 0, ErrTGENotClaimed
	}
	source.TotalAmount = new(big.Int).Sub(source.TotalAmount, amount)
	if source.Remaining().Sign() == 0 {
		source.Inactive = true
	}
	if err := e.state.VestingPositionsPut(from, sources); err != nil {
		return 0, err
	}
	child := &Position{
		TotalAmount:        new(big.Int).Set(amount),
		TotalWithdrawn:     big.NewInt(0),
		StartLockMonth:     source.StartLockMonth,
		EndLockMonth:       source.EndLockMonth,
		StartVestingMonth:  source.StartVestingMonth,
		EndVestingMonth:    source.EndVestingMonth,
		LastWithdrawnMonth: source.LastWithdrawnMonth,
		ClaimedTGE:         true,
	}
	targets, err := e.state.VestingPositions(to)
	if err != nil {
		return 0, err
	}
	targets = append(targets, child)
	if err := e.state.VestingPositionsPut(to, targets); err != nil {
		return 0, err
	}
	newIndex := uint64(len(targets) - 1)
	e.emit(events.VestingTransferred{
		From:     from,
		To:       to,
		Index:    index,
		NewIndex: newIndex,
		Amount:   new(big.Int).Set(amount),
	})
	return newIndex, nil
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
	epoch, err := e.state.VestingEpoch()
	if err != nil {
		return err
	}
	if newEpoch != epoch+1 {
		return ErrEpochNotSequential
	}
	total, err := e.state.VestingLockedTotal(epoch)
	if err != nil {
		return err
	}
	if err := e.state.VestingLockedTotalPut(newEpoch, total); err != nil {
		return err
	}
	return e.state.VestingEpochPut(newEpoch)
}

// LockedTotalAt returns the aggregate locked total recorded for an epoch.
func (e *Engine) LockedTotalAt(epoch uint64) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	return e.state.VestingLockedTotal(epoch)
}

// HarvestPosition exposes the call-time remaining amount, fixed multiplier
// and activity flag used by the rewards distributor.
func (e *Engine) HarvestPosition(addr [20]byte, index uint64) (*big.Int, uint64, bool, error) {
	if e == nil || e.state == nil {
		return nil, 0, false, ErrNilState
	}
	positions, err := e.state.VestingPositions(addr)
	if err != nil {
		return nil, 0, false, err
	}
	if index >= uint64(len(positions)) {
		return nil, 0, false, ErrPositionNotFound
	}
	position := positions[index]
	return position.Remaining(), MultiplierPercent, !position.Inactive, nil
}

// Position returns a copy of the addressed position.
func (e *Engine) Position(addr [20]byte, index uint64) (*Position, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	positions, err := e.state.VestingPositions(addr)
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
	positions, err := e.state.VestingPositions(addr)
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
	positions, err := e.state.VestingPositions(addr)
	if err != nil {
		return 0, err
	}
	return uint64(len(positions)), nil
}

// Available returns the amount withdrawable from the position right now.
func (e *Engine) Available(addr [20]byte, index uint64) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	position, err := e.Position(addr, index)
	if err != nil {
		return nil, err
	}
	epoch, err := e.state.VestingEpoch()
	if err != nil {
		return nil, err
	}
	if epoch < position.EndLockMonth {
		return big.NewInt(0), nil
	}
	return position.Available(epoch), nil
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
	epoch, err := e.state.VestingEpoch()
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
	history, err := e.state.VestingWithdrawals(epoch)
	if err != nil {
		return nil, err
	}
	out := make([]WithdrawalRecord, len(history))
	for i := range history {
		out[i] = history[i].Clone()
	}
	return out, nil
}

func (e *Engine) addLockedTotal(epoch uint64, amount *big.Int) error {
	total, err := e.state.VestingLockedTotal(epoch)
	if err != nil {
		return err
	}
	if total == nil {
		total = big.NewInt(0)
	}
	total = new(big.Int).Add(total, amount)
	return e.state.VestingLockedTotalPut(epoch, total)
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

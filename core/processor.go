package core

import (
	"math/big"
	"sync"

	"yieldvault/core/events"
	"yieldvault/core/state"
	"yieldvault/native/common"
	"yieldvault/native/rewards"
	"yieldvault/native/stake"
	"yieldvault/native/vesting"
	"yieldvault/observability/metrics"
)

// Processor is the host execution boundary: it serialises every mutating
// operation, holds the reentrancy guard across it, and turns the state
// manager's overlay into an all-or-nothing commit. Emitted events are
// buffered alongside the state writes and reach the sink only when the
// operation commits.
type Processor struct {
	mu      sync.Mutex
	guard   *common.CallGuard
	state   *state.Manager
	buffer  *bufferedEmitter
	stake   *stake.Engine
	vesting *vesting.Engine
	rewards *rewards.Engine
}

// NewProcessor wires the three engines over a shared state manager and event
// sink.
func NewProcessor(manager *state.Manager, sink events.Emitter) *Processor {
	buffer := newBufferedEmitter(sink)

	stakeEngine := stake.NewEngine()
	stakeEngine.SetState(manager)
	stakeEngine.SetEmitter(buffer)

	vestingEngine := vesting.NewEngine()
	vestingEngine.SetState(manager)
	vestingEngine.SetEmitter(buffer)

	rewardsEngine := rewards.NewEngine()
	rewardsEngine.SetState(manager)
	rewardsEngine.SetEmitter(buffer)
	rewardsEngine.SetLedgers(stakeEngine, vestingEngine)

	return &Processor{
		guard:   common.NewCallGuard(),
		state:   manager,
		buffer:  buffer,
		stake:   stakeEngine,
		vesting: vestingEngine,
		rewards: rewardsEngine,
	}
}

// StakeEngine exposes the immediate-stake ledger for read-only queries.
func (p *Processor) StakeEngine() *stake.Engine { return p.stake }

// VestingEngine exposes the vested-stake ledger for read-only queries.
func (p *Processor) VestingEngine() *vesting.Engine { return p.vesting }

// RewardsEngine exposes the distributor for read-only queries.
func (p *Processor) RewardsEngine() *rewards.Engine { return p.rewards }

// State exposes the underlying state manager.
func (p *Processor) State() *state.Manager { return p.state }

// apply runs op under the guard and commits or rolls back every effect,
// including buffered events.
func (p *Processor) apply(name string, op func() error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	release, err := p.guard.Enter()
	if err != nil {
		return err
	}
	defer release()
	if err := op(); err != nil {
		p.state.Discard()
		p.buffer.Discard()
		metrics.Vault().ObserveAbort(name)
		return err
	}
	if err := p.state.Commit(); err != nil {
		p.state.Discard()
		p.buffer.Discard()
		metrics.Vault().ObserveAbort(name)
		return err
	}
	p.buffer.Flush()
	p.refreshGauges()
	return nil
}

// Stake locks amount under the chosen tier for the caller.
func (p *Processor) Stake(from [20]byte, amount *big.Int, tier uint8) (uint64, error) {
	var index uint64
	err := p.apply("stake", func() error {
		var err error
		index, _, err = p.stake.Stake(from, amount, tier)
		return err
	})
	if err == nil {
		metrics.Vault().ObservePositionCreated("stake")
	}
	return index, err
}

// StakeWithdraw releases amount from an unlocked immediate-stake position.
func (p *Processor) StakeWithdraw(from [20]byte, index uint64, amount *big.Int) (uint64, error) {
	var multiplier uint64
	err := p.apply("stakeWithdraw", func() error {
		var err error
		_, multiplier, err = p.stake.Withdraw(from, index, amount)
		return err
	})
	if err == nil {
		metrics.Vault().ObserveWithdrawal("stake")
	}
	return multiplier, err
}

// VestingCreate issues a vested position for account, funded by the creator.
func (p *Processor) VestingCreate(creator, account [20]byte, amount *big.Int, lockMonths, vestingMonths uint64) (uint64, error) {
	var index uint64
	err := p.apply("vestingCreate", func() error {
		var err error
		index, _, err = p.vesting.Create(creator, account, amount, lockMonths, vestingMonths)
		return err
	})
	if err == nil {
		metrics.Vault().ObservePositionCreated("vesting")
	}
	return index, err
}

// ClaimTGE pays the one-time early release for a vested position.
func (p *Processor) ClaimTGE(from [20]byte, index uint64) (*big.Int, error) {
	var amount *big.Int
	err := p.apply("claimTGE", func() error {
		var err error
		amount, err = p.vesting.ClaimTGE(from, index)
		return err
	})
	return amount, err
}

// VestingWithdraw releases amount under the vesting schedule.
func (p *Processor) VestingWithdraw(from [20]byte, index uint64, amount *big.Int) error {
	err := p.apply("vestingWithdraw", func() error {
		_, err := p.vesting.Withdraw(from, index, amount)
		return err
	})
	if err == nil {
		metrics.Vault().ObserveWithdrawal("vesting")
	}
	return err
}

// VestingTransfer splits part of a vested position to a new owner.
func (p *Processor) VestingTransfer(creator, from, to [20]byte, index uint64, amount *big.Int) (uint64, error) {
	var newIndex uint64
	err := p.apply("vestingTransfer", func() error {
		var err error
		newIndex, err = p.vesting.Transfer(creator, from, to, index, amount)
		return err
	})
	return newIndex, err
}

// Deposit funds the current epoch's pool and closes the epoch.
func (p *Processor) Deposit(from [20]byte, usdt, vlt, native *big.Int) (uint64, error) {
	var epoch uint64
	err := p.apply("deposit", func() error {
		var err error
		epoch, err = p.rewards.Deposit(from, usdt, vlt, native)
		return err
	})
	if err == nil {
		m := metrics.Vault()
		m.ObserveDeposit("usdt", bigFloat(usdt))
		m.ObserveDeposit("vlt", bigFloat(vlt))
		m.ObserveDeposit("native", bigFloat(native))
	}
	return epoch, err
}

// Harvest claims the proportional share of a closed epoch for one position.
func (p *Processor) Harvest(from [20]byte, index, epoch uint64, vested bool) (*rewards.Payout, error) {
	var payout *rewards.Payout
	err := p.apply("harvest", func() error {
		var err error
		payout, _, err = p.rewards.Harvest(from, index, epoch, vested)
		return err
	})
	if err == nil {
		metrics.Vault().ObserveHarvest()
	}
	return payout, err
}

// GrantRole adds an address to a role. Only the administrator may call it.
func (p *Processor) GrantRole(admin [20]byte, role string, addr [20]byte) error {
	return p.apply("grantRole", func() error {
		if !p.state.HasRole(common.RoleAdmin, admin[:]) {
			return common.ErrUnauthorizedAdmin
		}
		return p.state.GrantRole(role, addr[:])
	})
}

// RevokeRole removes an address from a role. Only the administrator may call
// it.
func (p *Processor) RevokeRole(admin [20]byte, role string, addr [20]byte) error {
	return p.apply("revokeRole", func() error {
		if !p.state.HasRole(common.RoleAdmin, admin[:]) {
			return common.ErrUnauthorizedAdmin
		}
		return p.state.RevokeRole(role, addr[:])
	})
}

func (p *Processor) refreshGauges() {
	m := metrics.Vault()
	epoch, err := p.rewards.CurrentEpoch()
	if err != nil {
		return
	}
	m.SetCurrentEpoch(epoch)
	if total, err := p.stake.LockedTotalAt(epoch); err == nil {
		m.SetLockedTotal("stake", bigFloat(total))
	}
	if total, err := p.vesting.LockedTotalAt(epoch); err == nil {
		m.SetLockedTotal("vesting", bigFloat(total))
	}
}

func bigFloat(v *big.Int) float64 {
	if v == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}

// bufferedEmitter queues events raised inside an operation and forwards them
// to the sink only after the operation commits.
type bufferedEmitter struct {
	sink    events.Emitter
	pending []events.Event
}

func newBufferedEmitter(sink events.Emitter) *bufferedEmitter {
	if sink == nil {
		sink = events.NoopEmitter{}
	}
	return &bufferedEmitter{sink: sink}
}

// Emit implements events.Emitter.
func (b *bufferedEmitter) Emit(evt events.Event) {
	if evt == nil {
		return
	}
	b.pending = append(b.pending, evt)
}

// Flush forwards the queued events to the sink.
func (b *bufferedEmitter) Flush() {
	for _, evt := range b.pending {
		b.sink.Emit(evt)
	}
	b.pending = nil
}

// Discard drops the queued events.
func (b *bufferedEmitter) Discard() {
	b.pending = nil
}

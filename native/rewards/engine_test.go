package rewards

import (
	"errors"
	"fmt"
	"math/big"
	"testing"

	"yieldvault/core/types"
	"yieldvault/native/common"
)

type mockState struct {
	earnings  map[uint64]*Earnings
	harvested map[string]bool
	accounts  map[string]*types.Account
	roles     map[string]map[string]bool
	epoch     uint64
}

func newMockState() *mockState {
	return &mockState{
		earnings:  make(map[uint64]*Earnings),
		harvested: make(map[string]bool),
		accounts:  make(map[string]*types.Account),
		roles:     make(map[string]map[string]bool),
	}
}

func harvestKey(addr [20]byte, epoch, index uint64, vested bool) string {
	return fmt.Sprintf("%x:%d:%d:%t", addr, epoch, index, vested)
}

func (m *mockState) RewardsEarnings(epoch uint64) (*Earnings, bool, error) {
	earnings, ok := m.earnings[epoch]
	if !ok {
		return nil, false, nil
	}
	return earnings.Clone(), true, nil
}

func (m *mockState) RewardsEarningsPut(epoch uint64, earnings *Earnings) error {
	m.earnings[epoch] = earnings.Clone()
	return nil
}

func (m *mockState) RewardsEpoch() (uint64, error) { return m.epoch, nil }

func (m *mockState) RewardsEpochPut(epoch uint64) error {
	m.epoch = epoch
	return nil
}

func (m *mockState) RewardsHarvested(addr [20]byte, epoch, index uint64, vested bool) (bool, error) {
	return m.harvested[harvestKey(addr, epoch, index, vested)], nil
}

func (m *mockState) RewardsHarvestedPut(addr [20]byte, epoch, index uint64, vested bool) error {
	m.harvested[harvestKey(addr, epoch, index, vested)] = true
	return nil
}

func (m *mockState) GetAccount(addr []byte) (*types.Account, error) {
	account, ok := m.accounts[string(addr)]
	if !ok {
		return types.NewAccount(), nil
	}
	return account.Clone(), nil
}

func (m *mockState) PutAccount(addr []byte, account *types.Account) error {
	m.accounts[string(addr)] = account.Clone()
	return nil
}

func (m *mockState) HasRole(role string, addr []byte) bool {
	return m.roles[role][string(addr)]
}

func (m *mockState) grantRole(role string, addr [20]byte) {
	if m.roles[role] == nil {
		m.roles[role] = make(map[string]bool)
	}
	m.roles[role][string(addr[:])] = true
}

type ledgerPosition struct {
	remaining  *big.Int
	multiplier uint64
	active     bool
}

type mockLedger struct {
	totals    map[uint64]*big.Int
	positions map[string]ledgerPosition
	epoch     uint64
	advanced  []uint64
	caller    [20]byte
}

func newMockLedger() *mockLedger {
	return &mockLedger{
		totals:    make(map[uint64]*big.Int),
		positions: make(map[string]ledgerPosition),
	}
}

func positionKey(addr [20]byte, index uint64) string {
	return fmt.Sprintf("%x:%d", addr, index)
}

func (m *mockLedger) setTotal(epoch uint64, total int64) {
	m.totals[epoch] = big.NewInt(total)
}

func (m *mockLedger) setPosition(addr [20]byte, index uint64, remaining int64, multiplier uint64, active bool) {
	m.positions[positionKey(addr, index)] = ledgerPosition{
		remaining:  big.NewInt(remaining),
		multiplier: multiplier,
		active:     active,
	}
}

func (m *mockLedger) LockedTotalAt(epoch uint64) (*big.Int, error) {
	total, ok := m.totals[epoch]
	if !ok {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(total), nil
}

func (m *mockLedger) HarvestPosition(addr [20]byte, index uint64) (*big.Int, uint64, bool, error) {
	position, ok := m.positions[positionKey(addr, index)]
	if !ok {
		return nil, 0, false, errors.New("rewards_test: position not found")
	}
	return new(big.Int).Set(position.remaining), position.multiplier, position.active, nil
}

func (m *mockLedger) AdvanceEpoch(caller [20]byte, newEpoch uint64) error {
	m.caller = caller
	m.advanced = append(m.advanced, newEpoch)
	m.epoch = newEpoch
	return nil
}

var (
	depositor = [20]byte{0xdd}
	alice     = [20]byte{0x01}
)

func newTestEngine() (*Engine, *mockState, *mockLedger, *mockLedger) {
	state := newMockState()
	state.grantRole(common.RoleDepositor, depositor)
	stakeLedger := newMockLedger()
	vestingLedger := newMockLedger()
	engine := NewEngine()
	engine.SetState(state)
	engine.SetLedgers(stakeLedger, vestingLedger)
	return engine, state, stakeLedger, vestingLedger
}

func fundDepositor(state *mockState, usdt, vlt, native int64) {
	account := types.NewAccount()
	account.BalanceUSDT = big.NewInt(usdt)
	account.BalanceVLT = big.NewInt(vlt)
	account.BalanceNative = big.NewInt(native)
	state.accounts[string(depositor[:])] = account
}

func TestDepositRequiresRole(t *testing.T) {
	engine, _, _, _ := newTestEngine()
	if _, err := engine.Deposit(alice, big.NewInt(1), big.NewInt(0), big.NewInt(0)); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestDepositMovesFundsAndAdvancesEpoch(t *testing.T) {
	engine, state, stakeLedger, vestingLedger := newTestEngine()
	fundDepositor(state, 1_000, 500, 200)

	epoch, err := engine.Deposit(depositor, big.NewInt(1_000), big.NewInt(500), big.NewInt(200))
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if epoch != 0 {
		t.Fatalf("funded epoch = %d, want 0", epoch)
	}

	current, err := engine.CurrentEpoch()
	if err != nil {
		t.Fatalf("current epoch: %v", err)
	}
	if current != 1 {
		t.Fatalf("epoch after deposit = %d, want 1", current)
	}
	if len(stakeLedger.advanced) != 1 || stakeLedger.advanced[0] != 1 {
		t.Fatalf("stake ledger advances = %v, want [1]", stakeLedger.advanced)
	}
	if len(vestingLedger.advanced) != 1 || vestingLedger.advanced[0] != 1 {
		t.Fatalf("vesting ledger advances = %v, want [1]", vestingLedger.advanced)
	}
	if stakeLedger.caller != engine.Vault() || vestingLedger.caller != engine.Vault() {
		t.Fatal("epoch propagation must originate from the rewards vault address")
	}

	earnings, ok, err := engine.EarningsForEpoch(0)
	if err != nil || !ok {
		t.Fatalf("earnings: ok=%v err=%v", ok, err)
	}
	if earnings.USDT.Cmp(big.NewInt(1_000)) != 0 || earnings.VLT.Cmp(big.NewInt(500)) != 0 || earnings.Native.Cmp(big.NewInt(200)) != 0 {
		t.Fatalf("unexpected earnings %s/%s/%s", earnings.USDT, earnings.VLT, earnings.Native)
	}

	vaultAddr := engine.Vault()
	vaultAcc, _ := state.GetAccount(vaultAddr[:])
	vaultAcc = vaultAcc.Normalize()
	if vaultAcc.BalanceUSDT.Cmp(big.NewInt(1_000)) != 0 {
		t.Fatalf("vault USDT = %s, want 1000", vaultAcc.BalanceUSDT)
	}
	depositorAcc, _ := state.GetAccount(depositor[:])
	depositorAcc = depositorAcc.Normalize()
	if depositorAcc.BalanceUSDT.Sign() != 0 || depositorAcc.BalanceVLT.Sign() != 0 || depositorAcc.BalanceNative.Sign() != 0 {
		t.Fatal("depositor balances should be drained")
	}
}

func TestDepositInsufficientBalance(t *testing.T) {
	engine, state, _, _ := newTestEngine()
	fundDepositor(state, 100, 0, 0)
	if _, err := engine.Deposit(depositor, big.NewInt(1_000), big.NewInt(0), big.NewInt(0)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
}

func TestDepositOncePerEpoch(t *testing.T) {
	engine, state, _, _ := newTestEngine()
	state.earnings[0] = &Earnings{USDT: big.NewInt(1), VLT: big.NewInt(0), Native: big.NewInt(0), Deposited: true}
	fundDepositor(state, 1_000, 0, 0)
	if _, err := engine.Deposit(depositor, big.NewInt(10), big.NewInt(0), big.NewInt(0)); !errors.Is(err, ErrEpochFunded) {
		t.Fatalf("expected funded error, got %v", err)
	}
}

func fundEpoch(t *testing.T, engine *Engine, state *mockState, usdt, vlt, native int64) uint64 {
	t.Helper()
	fundDepositor(state, usdt, vlt, native)
	epoch, err := engine.Deposit(depositor, big.NewInt(usdt), big.NewInt(vlt), big.NewInt(native))
	if err != nil {
		t.Fatalf("fund epoch: %v", err)
	}
	return epoch
}

func TestHarvestPreconditions(t *testing.T) {
	engine, state, stakeLedger, _ := newTestEngine()
	stakeLedger.setTotal(0, 1_000)
	stakeLedger.setPosition(alice, 0, 500, 100, true)

	if _, _, err := engine.Harvest(alice, 0, 0, false); !errors.Is(err, ErrNothingDeposited) {
		t.Fatalf("unfunded epoch: %v", err)
	}

	fundEpoch(t, engine, state, 1_000, 0, 0)
	if _, _, err := engine.Harvest(alice, 0, 1, false); !errors.Is(err, ErrNothingDeposited) {
		t.Fatalf("open epoch without pool: %v", err)
	}

	// Epochs at or above the counter are still open even when state carries
	// earnings for them.
	state.earnings[1] = &Earnings{USDT: big.NewInt(1), VLT: big.NewInt(0), Native: big.NewInt(0), Deposited: true}
	if _, _, err := engine.Harvest(alice, 0, 1, false); !errors.Is(err, ErrEpochOpen) {
		t.Fatalf("open epoch: %v", err)
	}
}

func TestHarvestProportionalPayout(t *testing.T) {
	engine, state, stakeLedger, vestingLedger := newTestEngine()
	stakeLedger.setTotal(0, 600)
	vestingLedger.setTotal(0, 400)
	stakeLedger.setPosition(alice, 0, 500, 100, true)

	fundEpoch(t, engine, state, 1_000, 0, 200)

	payout, multiplier, err := engine.Harvest(alice, 0, 0, false)
	if err != nil {
		t.Fatalf("harvest: %v", err)
	}
	if multiplier != 100 {
		t.Fatalf("multiplier = %d, want 100", multiplier)
	}
	// 500 of 1000 locked at full multiplier: half the pool.
	if payout.USDT.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("USDT payout = %s, want 500", payout.USDT)
	}
	if payout.VLT.Sign() != 0 {
		t.Fatalf("VLT payout = %s, want 0", payout.VLT)
	}
	if payout.Native.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("native payout = %s, want 100", payout.Native)
	}

	account, _ := state.GetAccount(alice[:])
	account = account.Normalize()
	if account.BalanceUSDT.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("harvester USDT = %s, want 500", account.BalanceUSDT)
	}

	if _, _, err := engine.Harvest(alice, 0, 0, false); !errors.Is(err, ErrAlreadyHarvested) {
		t.Fatalf("second harvest: %v", err)
	}
	done, err := engine.Harvested(alice, 0, 0, false)
	if err != nil || !done {
		t.Fatalf("harvested flag: done=%v err=%v", done, err)
	}
}

func TestHarvestDenominatorIsHistorical(t *testing.T) {
	engine, state, stakeLedger, _ := newTestEngine()
	stakeLedger.setTotal(0, 1_000)
	stakeLedger.setPosition(alice, 0, 500, 100, true)
	fundEpoch(t, engine, state, 1_000, 0, 0)

	// The position shrank and decayed after the epoch closed. The payout
	// prices the position as it stands now against the epoch-0 aggregate.
	stakeLedger.setTotal(1, 2_000)
	stakeLedger.setPosition(alice, 0, 250, 50, true)

	payout, multiplier, err := engine.Harvest(alice, 0, 0, false)
	if err != nil {
		t.Fatalf("harvest: %v", err)
	}
	if multiplier != 50 {
		t.Fatalf("multiplier = %d, want 50", multiplier)
	}
	// 250/1000 at 50%: one eighth of the pool.
	if payout.USDT.Cmp(big.NewInt(125)) != 0 {
		t.Fatalf("USDT payout = %s, want 125", payout.USDT)
	}
}

func TestHarvestInactivePosition(t *testing.T) {
	engine, state, stakeLedger, _ := newTestEngine()
	stakeLedger.setTotal(0, 1_000)
	stakeLedger.setPosition(alice, 0, 0, 100, false)
	fundEpoch(t, engine, state, 1_000, 0, 0)

	if _, _, err := engine.Harvest(alice, 0, 0, false); !errors.Is(err, ErrPositionInactive) {
		t.Fatalf("expected inactive error, got %v", err)
	}
}

func TestHarvestNoLockedStake(t *testing.T) {
	engine, state, stakeLedger, _ := newTestEngine()
	stakeLedger.setPosition(alice, 0, 500, 100, true)
	fundEpoch(t, engine, state, 1_000, 0, 0)

	if _, _, err := engine.Harvest(alice, 0, 0, false); !errors.Is(err, ErrNoLockedStake) {
		t.Fatalf("expected no-locked-stake error, got %v", err)
	}
}

func TestHarvestVestedLedger(t *testing.T) {
	engine, state, stakeLedger, vestingLedger := newTestEngine()
	stakeLedger.setTotal(0, 500)
	vestingLedger.setTotal(0, 500)
	vestingLedger.setPosition(alice, 0, 250, 100, true)
	fundEpoch(t, engine, state, 1_000, 0, 0)

	payout, _, err := engine.Harvest(alice, 0, 0, true)
	if err != nil {
		t.Fatalf("harvest vested: %v", err)
	}
	if payout.USDT.Cmp(big.NewInt(250)) != 0 {
		t.Fatalf("USDT payout = %s, want 250", payout.USDT)
	}
	// A stake-side harvest for the same index is tracked separately and has
	// no matching stake position here.
	if _, _, err := engine.Harvest(alice, 0, 0, false); err == nil {
		t.Fatal("expected stake-side harvest to fail")
	}
}

func TestAvailableHarvestDoesNotMark(t *testing.T) {
	engine, state, stakeLedger, _ := newTestEngine()
	stakeLedger.setTotal(0, 1_000)
	stakeLedger.setPosition(alice, 0, 500, 100, true)
	fundEpoch(t, engine, state, 1_000, 0, 0)

	preview, err := engine.AvailableHarvest(alice, 0, 0, false)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if preview.USDT.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("preview USDT = %s, want 500", preview.USDT)
	}
	done, err := engine.Harvested(alice, 0, 0, false)
	if err != nil || done {
		t.Fatalf("preview must not mark the harvest: done=%v err=%v", done, err)
	}
	if _, _, err := engine.Harvest(alice, 0, 0, false); err != nil {
		t.Fatalf("harvest after preview: %v", err)
	}
}

func TestEarningsPercentage(t *testing.T) {
	engine, state, stakeLedger, _ := newTestEngine()
	stakeLedger.setTotal(0, 1_000)
	stakeLedger.setPosition(alice, 0, 250, 50, true)
	fundEpoch(t, engine, state, 1_000, 0, 0)

	share, err := engine.EarningsPercentage(alice, 0, 0, false)
	if err != nil {
		t.Fatalf("share: %v", err)
	}
	// 25% raw share halved by the multiplier.
	want := new(big.Int).Quo(ShareUnit(), big.NewInt(8))
	if share.Cmp(want) != 0 {
		t.Fatalf("share = %s, want %s", share, want)
	}
}

package state

import (
	"math/big"
	"testing"

	"yieldvault/core/types"
	"yieldvault/native/rewards"
	"yieldvault/native/stake"
	"yieldvault/native/vesting"
	"yieldvault/storage"
)

var testAddr = [20]byte{0x11, 0x22}

func TestOverlayCommitAndDiscard(t *testing.T) {
	db := storage.NewMemDB()
	manager := NewManager(db)

	account := types.NewAccount()
	account.BalanceVLT = big.NewInt(500)
	if err := manager.PutAccount(testAddr[:], account); err != nil {
		t.Fatalf("put account: %v", err)
	}
	if !manager.Dirty() {
		t.Fatal("manager should be dirty before commit")
	}

	// Buffered writes read back through the same manager.
	loaded, err := manager.GetAccount(testAddr[:])
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if loaded.BalanceVLT.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("buffered balance = %s, want 500", loaded.BalanceVLT)
	}

	// But not through a fresh manager until committed.
	fresh := NewManager(db)
	loaded, err = fresh.GetAccount(testAddr[:])
	if err != nil {
		t.Fatalf("fresh get: %v", err)
	}
	if loaded != nil {
		t.Fatal("uncommitted write visible through the database")
	}

	if err := manager.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if manager.Dirty() {
		t.Fatal("manager should be clean after commit")
	}
	loaded, err = fresh.GetAccount(testAddr[:])
	if err != nil {
		t.Fatalf("fresh get after commit: %v", err)
	}
	if loaded == nil || loaded.BalanceVLT.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("committed balance = %v, want 500", loaded)
	}
}

func TestDiscardDropsWrites(t *testing.T) {
	manager := NewManager(storage.NewMemDB())
	if err := manager.StakeEpochPut(7); err != nil {
		t.Fatalf("put epoch: %v", err)
	}
	manager.Discard()
	if manager.Dirty() {
		t.Fatal("manager should be clean after discard")
	}
	epoch, err := manager.StakeEpoch()
	if err != nil {
		t.Fatalf("epoch: %v", err)
	}
	if epoch != 0 {
		t.Fatalf("epoch = %d, want 0", epoch)
	}
}

func TestRoleMembership(t *testing.T) {
	manager := NewManager(storage.NewMemDB())
	addr := testAddr[:]

	if manager.HasRole("ROLE_ADMIN", addr) {
		t.Fatal("unexpected membership")
	}
	if err := manager.GrantRole("ROLE_ADMIN", addr); err != nil {
		t.Fatalf("grant: %v", err)
	}
	// Granting twice is a no-op, not an error.
	if err := manager.GrantRole("ROLE_ADMIN", addr); err != nil {
		t.Fatalf("regrant: %v", err)
	}
	if !manager.HasRole("ROLE_ADMIN", addr) {
		t.Fatal("membership missing after grant")
	}
	if err := manager.RevokeRole("ROLE_ADMIN", addr); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if manager.HasRole("ROLE_ADMIN", addr) {
		t.Fatal("membership present after revoke")
	}

	if err := manager.GrantRole("", addr); err == nil {
		t.Fatal("empty role should be rejected")
	}
	if err := manager.GrantRole("ROLE_ADMIN", nil); err == nil {
		t.Fatal("empty member should be rejected")
	}
}

func TestStakeLedgerRoundTrip(t *testing.T) {
	manager := NewManager(storage.NewMemDB())

	positions := []*stake.Position{
		{
			TotalAmount:        big.NewInt(1_000),
			TotalWithdrawn:     big.NewInt(250),
			StartLockMonth:     2,
			EndLockMonth:       5,
			LastWithdrawnMonth: 6,
			Inactive:           false,
		},
		{
			TotalAmount:        big.NewInt(40),
			TotalWithdrawn:     big.NewInt(40),
			StartLockMonth:     1,
			EndLockMonth:       4,
			LastWithdrawnMonth: 4,
			Inactive:           true,
		},
	}
	if err := manager.StakePositionsPut(testAddr, positions); err != nil {
		t.Fatalf("put positions: %v", err)
	}
	loaded, err := manager.StakePositions(testAddr)
	if err != nil {
		t.Fatalf("get positions: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("positions = %d, want 2", len(loaded))
	}
	if loaded[0].TotalAmount.Cmp(big.NewInt(1_000)) != 0 || loaded[0].EndLockMonth != 5 {
		t.Fatalf("unexpected first position %+v", loaded[0])
	}
	if !loaded[1].Inactive {
		t.Fatal("inactive flag lost in round trip")
	}

	if err := manager.StakeLockedTotalPut(3, big.NewInt(1_040)); err != nil {
		t.Fatalf("put total: %v", err)
	}
	total, err := manager.StakeLockedTotal(3)
	if err != nil {
		t.Fatalf("get total: %v", err)
	}
	if total.Cmp(big.NewInt(1_040)) != 0 {
		t.Fatalf("total = %s, want 1040", total)
	}
	missing, err := manager.StakeLockedTotal(9)
	if err != nil {
		t.Fatalf("missing total: %v", err)
	}
	if missing.Sign() != 0 {
		t.Fatalf("missing total = %s, want 0", missing)
	}

	history := []stake.WithdrawalRecord{
		{Account: testAddr, Index: 0, Amount: big.NewInt(250), Multiplier: 75},
	}
	if err := manager.StakeWithdrawalsPut(6, history); err != nil {
		t.Fatalf("put history: %v", err)
	}
	records, err := manager.StakeWithdrawals(6)
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if len(records) != 1 || records[0].Multiplier != 75 {
		t.Fatalf("unexpected history %+v", records)
	}
}

func TestVestingLedgerRoundTrip(t *testing.T) {
	manager := NewManager(storage.NewMemDB())

	positions := []*vesting.Position{
		{
			TotalAmount:        big.NewInt(2_000),
			TotalWithdrawn:     big.NewInt(0),
			StartLockMonth:     0,
			EndLockMonth:       3,
			StartVestingMonth:  3,
			EndVestingMonth:    13,
			LastWithdrawnMonth: 0,
			ClaimedTGE:         true,
		},
	}
	if err := manager.VestingPositionsPut(testAddr, positions); err != nil {
		t.Fatalf("put positions: %v", err)
	}
	loaded, err := manager.VestingPositions(testAddr)
	if err != nil {
		t.Fatalf("get positions: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("positions = %d, want 1", len(loaded))
	}
	if !loaded[0].ClaimedTGE || loaded[0].EndVestingMonth != 13 {
		t.Fatalf("unexpected position %+v", loaded[0])
	}

	if err := manager.VestingEpochPut(4); err != nil {
		t.Fatalf("put epoch: %v", err)
	}
	epoch, err := manager.VestingEpoch()
	if err != nil {
		t.Fatalf("get epoch: %v", err)
	}
	if epoch != 4 {
		t.Fatalf("epoch = %d, want 4", epoch)
	}
}

func TestRewardsLedgerRoundTrip(t *testing.T) {
	manager := NewManager(storage.NewMemDB())

	if _, ok, err := manager.RewardsEarnings(0); err != nil || ok {
		t.Fatalf("missing earnings: ok=%v err=%v", ok, err)
	}
	earnings := &rewards.Earnings{
		USDT:      big.NewInt(5_000),
		VLT:       big.NewInt(0),
		Native:    big.NewInt(123),
		Deposited: true,
	}
	if err := manager.RewardsEarningsPut(0, earnings); err != nil {
		t.Fatalf("put earnings: %v", err)
	}
	loaded, ok, err := manager.RewardsEarnings(0)
	if err != nil || !ok {
		t.Fatalf("get earnings: ok=%v err=%v", ok, err)
	}
	if loaded.USDT.Cmp(big.NewInt(5_000)) != 0 || !loaded.Deposited {
		t.Fatalf("unexpected earnings %+v", loaded)
	}

	done, err := manager.RewardsHarvested(testAddr, 0, 1, false)
	if err != nil || done {
		t.Fatalf("harvest mark before put: done=%v err=%v", done, err)
	}
	if err := manager.RewardsHarvestedPut(testAddr, 0, 1, false); err != nil {
		t.Fatalf("put harvest mark: %v", err)
	}
	done, err = manager.RewardsHarvested(testAddr, 0, 1, false)
	if err != nil || !done {
		t.Fatalf("harvest mark after put: done=%v err=%v", done, err)
	}
	// The stake-side and vesting-side marks are independent.
	done, err = manager.RewardsHarvested(testAddr, 0, 1, true)
	if err != nil || done {
		t.Fatalf("vested mark leaked: done=%v err=%v", done, err)
	}
}

func TestGenesisFlag(t *testing.T) {
	manager := NewManager(storage.NewMemDB())
	applied, err := manager.GenesisApplied()
	if err != nil {
		t.Fatalf("applied: %v", err)
	}
	if applied {
		t.Fatal("genesis flag set on fresh state")
	}
	manager.SetGenesisApplied()
	applied, err = manager.GenesisApplied()
	if err != nil {
		t.Fatalf("applied: %v", err)
	}
	if !applied {
		t.Fatal("genesis flag missing after set")
	}
}

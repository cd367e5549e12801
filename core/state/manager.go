package state

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/rlp"

	"yieldvault/core/types"
	"yieldvault/native/rewards"
	"yieldvault/native/stake"
	"yieldvault/native/vesting"
)

// Manager is the host state backend shared by every engine. Writes are
// buffered in an overlay until Commit flushes them to the database in one
// batch; Discard drops the overlay. The processor commits after a successful
// operation and discards after a failed one, which gives each operation the
// all-or-nothing semantics the engines rely on.
type Manager struct {
	db      database
	overlay map[string][]byte
}

type database interface {
	Get(key []byte) ([]byte, error)
	WriteBatch(entries map[string][]byte) error
}

// NewManager creates a state manager over the provided database.
func NewManager(db database) *Manager {
	return &Manager{db: db, overlay: make(map[string][]byte)}
}

const (
	acctPrefix = "acct:"
	rolePrefix = "role:"

	stakePosPrefix   = "stake:pos:"
	stakeTotalPrefix = "stake:total:"
	stakeHistPrefix  = "stake:hist:"
	stakeEpochKey    = "stake:epoch"

	vestPosPrefix   = "vest:pos:"
	vestTotalPrefix = "vest:total:"
	vestHistPrefix  = "vest:hist:"
	vestEpochKey    = "vest:epoch"

	rewardsEarnPrefix    = "rewards:earnings:"
	rewardsHarvestPrefix = "rewards:harvest:"
	rewardsEpochKey      = "rewards:epoch"

	genesisKey = "genesis:done"
)

// GenesisApplied reports whether the one-time bootstrap already ran.
func (m *Manager) GenesisApplied() (bool, error) {
	data, err := m.get(genesisKey)
	if err != nil {
		return false, err
	}
	return len(data) != 0, nil
}

// SetGenesisApplied marks the bootstrap as completed.
func (m *Manager) SetGenesisApplied() {
	m.put(genesisKey, []byte{1})
}

// Commit flushes the overlay to the database atomically.
func (m *Manager) Commit() error {
	if len(m.overlay) == 0 {
		return nil
	}
	if err := m.db.WriteBatch(m.overlay); err != nil {
		return err
	}
	m.overlay = make(map[string][]byte)
	return nil
}

// Discard drops every buffered write.
func (m *Manager) Discard() {
	if len(m.overlay) != 0 {
		m.overlay = make(map[string][]byte)
	}
}

// Dirty reports whether uncommitted writes are buffered.
func (m *Manager) Dirty() bool { return len(m.overlay) > 0 }

func (m *Manager) get(key string) ([]byte, error) {
	if value, ok := m.overlay[key]; ok {
		return value, nil
	}
	return m.db.Get([]byte(key))
}

func (m *Manager) put(key string, value []byte) {
	m.overlay[key] = value
}

func addrKey(prefix string, addr []byte) string {
	return prefix + hex.EncodeToString(addr)
}

func epochKey(prefix string, epoch uint64) string {
	return fmt.Sprintf("%s%d", prefix, epoch)
}

// --- accounts ---

// GetAccount loads an account; a missing account reads as nil.
func (m *Manager) GetAccount(addr []byte) (*types.Account, error) {
	data, err := m.get(addrKey(acctPrefix, addr))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	account := new(types.Account)
	if err := rlp.DecodeBytes(data, account); err != nil {
		return nil, err
	}
	return account.Normalize(), nil
}

// PutAccount stores an account.
func (m *Manager) PutAccount(addr []byte, account *types.Account) error {
	encoded, err := rlp.EncodeToBytes(account.Normalize())
	if err != nil {
		return err
	}
	m.put(addrKey(acctPrefix, addr), encoded)
	return nil
}

// --- roles ---

// HasRole reports whether the address is a member of the role. Read errors
// resolve to false, matching the best-effort semantics callers expect.
func (m *Manager) HasRole(role string, addr []byte) bool {
	if len(addr) == 0 {
		return false
	}
	members, err := m.roleMembers(role)
	if err != nil {
		return false
	}
	for _, member := range members {
		if bytes.Equal(member, addr) {
			return true
		}
	}
	return false
}

// GrantRole adds the address to a role. Granting an existing membership is a
// no-op.
func (m *Manager) GrantRole(role string, addr []byte) error {
	role = strings.TrimSpace(role)
	if role == "" {
		return fmt.Errorf("role must not be empty")
	}
	if len(addr) == 0 {
		return fmt.Errorf("role member address must not be empty")
	}
	members, err := m.roleMembers(role)
	if err != nil {
		return err
	}
	for _, member := range members {
		if bytes.Equal(member, addr) {
			return nil
		}
	}
	members = append(members, append([]byte(nil), addr...))
	return m.writeRoleMembers(role, members)
}

// RevokeRole removes the address from a role if present.
func (m *Manager) RevokeRole(role string, addr []byte) error {
	members, err := m.roleMembers(role)
	if err != nil {
		return err
	}
	filtered := members[:0]
	for _, member := range members {
		if !bytes.Equal(member, addr) {
			filtered = append(filtered, member)
		}
	}
	return m.writeRoleMembers(role, filtered)
}

func (m *Manager) roleMembers(role string) ([][]byte, error) {
	data, err := m.get(rolePrefix + strings.TrimSpace(role))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	var members [][]byte
	if err := rlp.DecodeBytes(data, &members); err != nil {
		return nil, err
	}
	return members, nil
}

func (m *Manager) writeRoleMembers(role string, members [][]byte) error {
	encoded, err := rlp.EncodeToBytes(members)
	if err != nil {
		return err
	}
	m.put(rolePrefix+strings.TrimSpace(role), encoded)
	return nil
}

// --- immediate-stake ledger ---

// StakePositions loads the append-only position sequence for an account.
func (m *Manager) StakePositions(addr [20]byte) ([]*stake.Position, error) {
	data, err := m.get(addrKey(stakePosPrefix, addr[:]))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	var list []*stake.Position
	if err := rlp.DecodeBytes(data, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// StakePositionsPut stores the position sequence for an account.
func (m *Manager) StakePositionsPut(addr [20]byte, list []*stake.Position) error {
	encoded, err := rlp.EncodeToBytes(list)
	if err != nil {
		return err
	}
	m.put(addrKey(stakePosPrefix, addr[:]), encoded)
	return nil
}

// StakeLockedTotal loads the aggregate locked total for an epoch.
func (m *Manager) StakeLockedTotal(epoch uint64) (*big.Int, error) {
	return m.loadBig(epochKey(stakeTotalPrefix, epoch))
}

// StakeLockedTotalPut stores the aggregate locked total for an epoch.
func (m *Manager) StakeLockedTotalPut(epoch uint64, total *big.Int) error {
	return m.writeBig(epochKey(stakeTotalPrefix, epoch), total)
}

// StakeEpoch loads the stake ledger's epoch counter.
func (m *Manager) StakeEpoch() (uint64, error) {
	return m.loadUint(stakeEpochKey)
}

// StakeEpochPut stores the stake ledger's epoch counter.
func (m *Manager) StakeEpochPut(epoch uint64) error {
	return m.writeUint(stakeEpochKey, epoch)
}

// StakeWithdrawals loads the withdrawal history for an epoch.
func (m *Manager) StakeWithdrawals(epoch uint64) ([]stake.WithdrawalRecord, error) {
	data, err := m.get(epochKey(stakeHistPrefix, epoch))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	var list []stake.WithdrawalRecord
	if err := rlp.DecodeBytes(data, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// StakeWithdrawalsPut stores the withdrawal history for an epoch.
func (m *Manager) StakeWithdrawalsPut(epoch uint64, list []stake.WithdrawalRecord) error {
	encoded, err := rlp.EncodeToBytes(list)
	if err != nil {
		return err
	}
	m.put(epochKey(stakeHistPrefix, epoch), encoded)
	return nil
}

// --- vested-stake ledger ---

// VestingPositions loads the append-only position sequence for an account.
func (m *Manager) VestingPositions(addr [20]byte) ([]*vesting.Position, error) {
	data, err := m.get(addrKey(vestPosPrefix, addr[:]))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	var list []*vesting.Position
	if err := rlp.DecodeBytes(data, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// VestingPositionsPut stores the position sequence for an account.
func (m *Manager) VestingPositionsPut(addr [20]byte, list []*vesting.Position) error {
	encoded, err := rlp.EncodeToBytes(list)
	if err != nil {
		return err
	}
	m.put(addrKey(vestPosPrefix, addr[:]), encoded)
	return nil
}

// VestingLockedTotal loads the aggregate locked total for an epoch.
func (m *Manager) VestingLockedTotal(epoch uint64) (*big.Int, error) {
	return m.loadBig(epochKey(vestTotalPrefix, epoch))
}

// VestingLockedTotalPut stores the aggregate locked total for an epoch.
func (m *Manager) VestingLockedTotalPut(epoch uint64, total *big.Int) error {
	return m.writeBig(epochKey(vestTotalPrefix, epoch), total)
}

// VestingEpoch loads the vesting ledger's epoch counter.
func (m *Manager) VestingEpoch() (uint64, error) {
	return m.loadUint(vestEpochKey)
}

// VestingEpochPut stores the vesting ledger's epoch counter.
func (m *Manager) VestingEpochPut(epoch uint64) error {
	return m.writeUint(vestEpochKey, epoch)
}

// VestingWithdrawals loads the withdrawal history for an epoch.
func (m *Manager) VestingWithdrawals(epoch uint64) ([]vesting.WithdrawalRecord, error) {
	data, err := m.get(epochKey(vestHistPrefix, epoch))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	var list []vesting.WithdrawalRecord
	if err := rlp.DecodeBytes(data, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// VestingWithdrawalsPut stores the withdrawal history for an epoch.
func (m *Manager) VestingWithdrawalsPut(epoch uint64, list []vesting.WithdrawalRecord) error {
	encoded, err := rlp.EncodeToBytes(list)
	if err != nil {
		return err
	}
	m.put(epochKey(vestHistPrefix, epoch), encoded)
	return nil
}

// --- rewards ledger ---

// RewardsEarnings loads the earnings record for an epoch.
func (m *Manager) RewardsEarnings(epoch uint64) (*rewards.Earnings, bool, error) {
	data, err := m.get(epochKey(rewardsEarnPrefix, epoch))
	if err != nil {
		return nil, false, err
	}
	if len(data) == 0 {
		return nil, false, nil
	}
	earnings := new(rewards.Earnings)
	if err := rlp.DecodeBytes(data, earnings); err != nil {
		return nil, false, err
	}
	return earnings, true, nil
}

// RewardsEarningsPut stores the earnings record for an epoch.
func (m *Manager) RewardsEarningsPut(epoch uint64, earnings *rewards.Earnings) error {
	encoded, err := rlp.EncodeToBytes(earnings)
	if err != nil {
		return err
	}
	m.put(epochKey(rewardsEarnPrefix, epoch), encoded)
	return nil
}

// RewardsEpoch loads the authoritative epoch counter.
func (m *Manager) RewardsEpoch() (uint64, error) {
	return m.loadUint(rewardsEpochKey)
}

// RewardsEpochPut stores the authoritative epoch counter.
func (m *Manager) RewardsEpochPut(epoch uint64) error {
	return m.writeUint(rewardsEpochKey, epoch)
}

// RewardsHarvested reports whether the position claimed the epoch already.
func (m *Manager) RewardsHarvested(addr [20]byte, epoch, index uint64, vested bool) (bool, error) {
	data, err := m.get(harvestKey(addr, epoch, index, vested))
	if err != nil {
		return false, err
	}
	return len(data) != 0, nil
}

// RewardsHarvestedPut marks the position as having claimed the epoch. The
// mark is never cleared.
func (m *Manager) RewardsHarvestedPut(addr [20]byte, epoch, index uint64, vested bool) error {
	m.put(harvestKey(addr, epoch, index, vested), []byte{1})
	return nil
}

func harvestKey(addr [20]byte, epoch, index uint64, vested bool) string {
	kind := "stake"
	if vested {
		kind = "vesting"
	}
	return fmt.Sprintf("%s%s:%d:%d:%s", rewardsHarvestPrefix, hex.EncodeToString(addr[:]), epoch, index, kind)
}

// --- scalar helpers ---

func (m *Manager) loadBig(key string) (*big.Int, error) {
	data, err := m.get(key)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return big.NewInt(0), nil
	}
	value := new(big.Int)
	if err := rlp.DecodeBytes(data, value); err != nil {
		return nil, err
	}
	return value, nil
}

func (m *Manager) writeBig(key string, value *big.Int) error {
	if value == nil {
		value = big.NewInt(0)
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	m.put(key, encoded)
	return nil
}

func (m *Manager) loadUint(key string) (uint64, error) {
	data, err := m.get(key)
	if err != nil {
		return 0, err
	}
	if len(data) == 0 {
		return 0, nil
	}
	var value uint64
	if err := rlp.DecodeBytes(data, &value); err != nil {
		return 0, err
	}
	return value, nil
}

func (m *Manager) writeUint(key string, value uint64) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	m.put(key, encoded)
	return nil
}

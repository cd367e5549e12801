package rpc

import (
	"encoding/json"
	"math/big"
	"strings"

	gethcommon "github.com/ethereum/go-ethereum/common"

	"yieldvault/native/rewards"
	"yieldvault/native/stake"
	"yieldvault/native/vesting"
)

type rpcHandler func(json.RawMessage) (interface{}, *rpcError)

func (s *Server) handlers() map[string]rpcHandler {
	return map[string]rpcHandler{
		"vault_stake":           s.handleStake,
		"vault_stakeWithdraw":   s.handleStakeWithdraw,
		"vault_vestingCreate":   s.handleVestingCreate,
		"vault_vestingClaimTGE": s.handleVestingClaimTGE,
		"vault_vestingWithdraw": s.handleVestingWithdraw,
		"vault_vestingTransfer": s.handleVestingTransfer,
		"vault_deposit":         s.handleDeposit,
		"vault_harvest":         s.handleHarvest,
		"vault_grantRole":       s.handleGrantRole,
		"vault_revokeRole":      s.handleRevokeRole,

		"vault_epoch":                  s.handleEpoch,
		"vault_balance":                s.handleBalance,
		"vault_events":                 s.handleEvents,
		"vault_stakePositions":         s.handleStakePositions,
		"vault_stakePosition":          s.handleStakePosition,
		"vault_stakeCount":             s.handleStakeCount,
		"vault_stakeUnlockCountdown":   s.handleStakeUnlockCountdown,
		"vault_stakeLockedTotal":       s.handleStakeLockedTotal,
		"vault_stakeWithdrawals":       s.handleStakeWithdrawals,
		"vault_stakeTiers":             s.handleStakeTiers,
		"vault_multiplierTable":        s.handleMultiplierTable,
		"vault_vestingPositions":       s.handleVestingPositions,
		"vault_vestingPosition":        s.handleVestingPosition,
		"vault_vestingCount":           s.handleVestingCount,
		"vault_vestingAvailable":       s.handleVestingAvailable,
		"vault_vestingTGEAmount":       s.handleVestingTGEAmount,
		"vault_vestingUnlockCountdown": s.handleVestingUnlockCountdown,
		"vault_vestingLockedTotal":     s.handleVestingLockedTotal,
		"vault_vestingWithdrawals":     s.handleVestingWithdrawals,
		"vault_earnings":               s.handleEarnings,
		"vault_availableHarvest":       s.handleAvailableHarvest,
		"vault_earningsPercentage":     s.handleEarningsPercentage,
		"vault_harvested":              s.handleHarvested,
	}
}

// --- param helpers ---

func decodeParams(raw json.RawMessage, out interface{}) *rpcError {
	if len(raw) == 0 {
		return errInvalidParams("params object required")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errInvalidParams("malformed params: " + err.Error())
	}
	return nil
}

func parseAddress(value string) ([20]byte, *rpcError) {
	var out [20]byte
	trimmed := strings.TrimSpace(value)
	if !gethcommon.IsHexAddress(trimmed) {
		return out, errInvalidParams("invalid address " + value)
	}
	return gethcommon.HexToAddress(trimmed), nil
}

func parseAmount(value string) (*big.Int, *rpcError) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return big.NewInt(0), nil
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok || amount.Sign() < 0 {
		return nil, errInvalidParams("invalid amount " + value)
	}
	return amount, nil
}

// --- wire DTOs ---

type balanceResult struct {
	VLT    string `json:"vlt"`
	USDT   string `json:"usdt"`
	Native string `json:"native"`
}

type stakePositionResult struct {
	Index              uint64 `json:"index"`
	TotalAmount        string `json:"totalAmount"`
	TotalWithdrawn     string `json:"totalWithdrawn"`
	StartLockMonth     uint64 `json:"startLockMonth"`
	EndLockMonth       uint64 `json:"endLockMonth"`
	LastWithdrawnMonth uint64 `json:"lastWithdrawnMonth"`
	Inactive           bool   `json:"inactive"`
}

type vestingPositionResult struct {
	Index              uint64 `json:"index"`
	TotalAmount        string `json:"totalAmount"`
	TotalWithdrawn     string `json:"totalWithdrawn"`
	StartLockMonth     uint64 `json:"startLockMonth"`
	EndLockMonth       uint64 `json:"endLockMonth"`
	StartVestingMonth  uint64 `json:"startVestingMonth"`
	EndVestingMonth    uint64 `json:"endVestingMonth"`
	LastWithdrawnMonth uint64 `json:"lastWithdrawnMonth"`
	ClaimedTGE         bool   `json:"claimedTGE"`
	Inactive           bool   `json:"inactive"`
}

type withdrawalResult struct {
	Account    string `json:"account"`
	Index      uint64 `json:"index"`
	Amount     string `json:"amount"`
	Multiplier uint64 `json:"multiplier"`
}

type earningsResult struct {
	USDT      string `json:"usdt"`
	VLT       string `json:"vlt"`
	Native    string `json:"native"`
	Deposited bool   `json:"deposited"`
}

type payoutResult struct {
	USDT   string `json:"usdt"`
	VLT    string `json:"vlt"`
	Native string `json:"native"`
}

func stakePositionDTO(index uint64, p *stake.Position) stakePositionResult {
	return stakePositionResult{
		Index:              index,
		TotalAmount:        p.TotalAmount.String(),
		TotalWithdrawn:     p.TotalWithdrawn.String(),
		StartLockMonth:     p.StartLockMonth,
		EndLockMonth:       p.EndLockMonth,
		LastWithdrawnMonth: p.LastWithdrawnMonth,
		Inactive:           p.Inactive,
	}
}

func vestingPositionDTO(index uint64, p *vesting.Position) vestingPositionResult {
	return vestingPositionResult{
		Index:              index,
		TotalAmount:        p.TotalAmount.String(),
		TotalWithdrawn:     p.TotalWithdrawn.String(),
		StartLockMonth:     p.StartLockMonth,
		EndLockMonth:       p.EndLockMonth,
		StartVestingMonth:  p.StartVestingMonth,
		EndVestingMonth:    p.EndVestingMonth,
		LastWithdrawnMonth: p.LastWithdrawnMonth,
		ClaimedTGE:         p.ClaimedTGE,
		Inactive:           p.Inactive,
	}
}

func payoutDTO(p *rewards.Payout) payoutResult {
	return payoutResult{USDT: p.USDT.String(), VLT: p.VLT.String(), Native: p.Native.String()}
}

// --- mutating handlers ---

func (s *Server) handleStake(raw json.RawMessage) (interface{}, *rpcError) {
	var params struct {
		From   string `json:"from"`
		Amount string `json:"amount"`
		Tier   uint8  `json:"tier"`
	}
	if rpcErr := decodeParams(raw, &params); rpcErr != nil {
		return nil, rpcErr
	}
	from, rpcErr := parseAddress(params.From)
	if rpcErr != nil {
		return nil, rpcErr
	}
	amount, rpcErr := parseAmount(params.Amount)
	if rpcErr != nil {
		return nil, rpcErr
	}
	index, err := s.processor.Stake(from, amount, params.Tier)
	if err != nil {
		return nil, engineError(err)
	}
	return map[string]uint64{"index": index}, nil
}

func (s *Server) handleStakeWithdraw(raw json.RawMessage) (interface{}, *rpcError) {
	var params struct {
		From   string `json:"from"`
		Index  uint64 `json:"index"`
		Amount string `json:"amount"`
	}
	if rpcErr := decodeParams(raw, &params); rpcErr != nil {
		return nil, rpcErr
	}
	from, rpcErr := parseAddress(params.From)
	if rpcErr != nil {
		return nil, rpcErr
	}
	amount, rpcErr := parseAmount(params.Amount)
	if rpcErr != nil {
		return nil, rpcErr
	}
	multiplier, err := s.processor.StakeWithdraw(from, params.Index, amount)
	if err != nil {
		return nil, engineError(err)
	}
	return map[string]uint64{"multiplier": multiplier}, nil
}

func (s *Server) handleVestingCreate(raw json.RawMessage) (interface{}, *rpcError) {
	var params struct {
		Creator       string `json:"creator"`
		Account       string `json:"account"`
		Amount        string `json:"amount"`
		LockMonths    uint64 `json:"lockMonths"`
		VestingMonths uint64 `json:"vestingMonths"`
	}
	if rpcErr := decodeParams(raw, &params); rpcErr != nil {
		return nil, rpcErr
	}
	creator, rpcErr := parseAddress(params.Creator)
	if rpcErr != nil {
		return nil, rpcErr
	}
	account, rpcErr := parseAddress(params.Account)
	if rpcErr != nil {
		return nil, rpcErr
	}
	amount, rpcErr := parseAmount(params.Amount)
	if rpcErr != nil {
		return nil, rpcErr
	}
	index, err := s.processor.VestingCreate(creator, account, amount, params.LockMonths, params.VestingMonths)
	if err != nil {
		return nil, engineError(err)
	}
	return map[string]uint64{"index": index}, nil
}

func (s *Server) handleVestingClaimTGE(raw json.RawMessage) (interface{}, *rpcError) {
	var params struct {
		From  string `json:"from"`
		Index uint64 `json:"index"`
	}
	if rpcErr := decodeParams(raw, &params); rpcErr != nil {
		return nil, rpcErr
	}
	from, rpcErr := parseAddress(params.From)
	if rpcErr != nil {
		return nil, rpcErr
	}
	amount, err := s.processor.ClaimTGE(from, params.Index)
	if err != nil {
		return nil, engineError(err)
	}
	return map[string]string{"amount": amount.String()}, nil
}

func (s *Server) handleVestingWithdraw(raw json.RawMessage) (interface{}, *rpcError) {
	var params struct {
		From   string `json:"from"`
		Index  uint64 `json:"index"`
		Amount string `json:"amount"`
	}
	if rpcErr := decodeParams(raw, &params); rpcErr != nil {
		return nil, rpcErr
	}
	from, rpcErr := parseAddress(params.From)
	if rpcErr != nil {
		return nil, rpcErr
	}
	amount, rpcErr := parseAmount(params.Amount)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if err := s.processor.VestingWithdraw(from, params.Index, amount); err != nil {
		return nil, engineError(err)
	}
	return map[string]bool{"ok": true}, nil
}

func (s *Server) handleVestingTransfer(raw json.RawMessage) (interface{}, *rpcError) {
	var params struct {
		Creator string `json:"creator"`
		From    string `json:"from"`
		To      string `json:"to"`
		Index   uint64 `json:"index"`
		Amount  string `json:"amount"`
	}
	if rpcErr := decodeParams(raw, &params); rpcErr != nil {
		return nil, rpcErr
	}
	creator, rpcErr := parseAddress(params.Creator)
	if rpcErr != nil {
		return nil, rpcErr
	}
	from, rpcErr := parseAddress(params.From)
	if rpcErr != nil {
		return nil, rpcErr
	}
	to, rpcErr := parseAddress(params.To)
	if rpcErr != nil {
		return nil, rpcErr
	}
	amount, rpcErr := parseAmount(params.Amount)
	if rpcErr != nil {
		return nil, rpcErr
	}
	newIndex, err := s.processor.VestingTransfer(creator, from, to, params.Index, amount)
	if err != nil {
		return nil, engineError(err)
	}
	return map[string]uint64{"newIndex": newIndex}, nil
}

func (s *Server) handleDeposit(raw json.RawMessage) (interface{}, *rpcError) {
	var params struct {
		From   string `json:"from"`
		USDT   string `json:"usdt"`
		VLT    string `json:"vlt"`
		Native string `json:"native"`
	}
	if rpcErr := decodeParams(raw, &params); rpcErr != nil {
		return nil, rpcErr
	}
	from, rpcErr := parseAddress(params.From)
	if rpcErr != nil {
		return nil, rpcErr
	}
	usdt, rpcErr := parseAmount(params.USDT)
	if rpcErr != nil {
		return nil, rpcErr
	}
	vlt, rpcErr := parseAmount(params.VLT)
	if rpcErr != nil {
		return nil, rpcErr
	}
	native, rpcErr := parseAmount(params.Native)
	if rpcErr != nil {
		return nil, rpcErr
	}
	epoch, err := s.processor.Deposit(from, usdt, vlt, native)
	if err != nil {
		return nil, engineError(err)
	}
	return map[string]uint64{"epoch": epoch}, nil
}

func (s *Server) handleHarvest(raw json.RawMessage) (interface{}, *rpcError) {
	var params struct {
		From   string `json:"from"`
		Index  uint64 `json:"index"`
		Epoch  uint64 `json:"epoch"`
		Vested bool   `json:"vested"`
	}
	if rpcErr := decodeParams(raw, &params); rpcErr != nil {
		return nil, rpcErr
	}
	from, rpcErr := parseAddress(params.From)
	if rpcErr != nil {
		return nil, rpcErr
	}
	payout, err := s.processor.Harvest(from, params.Index, params.Epoch, params.Vested)
	if err != nil {
		return nil, engineError(err)
	}
	return payoutDTO(payout), nil
}

func (s *Server) handleGrantRole(raw json.RawMessage) (interface{}, *rpcError) {
	return s.handleRoleChange(raw, true)
}

func (s *Server) handleRevokeRole(raw json.RawMessage) (interface{}, *rpcError) {
	return s.handleRoleChange(raw, false)
}

func (s *Server) handleRoleChange(raw json.RawMessage, grant bool) (interface{}, *rpcError) {
	var params struct {
		Admin   string `json:"admin"`
		Role    string `json:"role"`
		Address string `json:"address"`
	}
	if rpcErr := decodeParams(raw, &params); rpcErr != nil {
		return nil, rpcErr
	}
	admin, rpcErr := parseAddress(params.Admin)
	if rpcErr != nil {
		return nil, rpcErr
	}
	addr, rpcErr := parseAddress(params.Address)
	if rpcErr != nil {
		return nil, rpcErr
	}
	var err error
	if grant {
		err = s.processor.GrantRole(admin, params.Role, addr)
	} else {
		err = s.processor.RevokeRole(admin, params.Role, addr)
	}
	if err != nil {
		return nil, engineError(err)
	}
	return map[string]bool{"ok": true}, nil
}

// --- read-only handlers ---

func (s *Server) handleEpoch(json.RawMessage) (interface{}, *rpcError) {
	epoch, err := s.processor.RewardsEngine().CurrentEpoch()
	if err != nil {
		return nil, engineError(err)
	}
	return map[string]uint64{"epoch": epoch}, nil
}

func (s *Server) handleBalance(raw json.RawMessage) (interface{}, *rpcError) {
	var params struct {
		Address string `json:"address"`
	}
	if rpcErr := decodeParams(raw, &params); rpcErr != nil {
		return nil, rpcErr
	}
	addr, rpcErr := parseAddress(params.Address)
	if rpcErr != nil {
		return nil, rpcErr
	}
	account, err := s.processor.State().GetAccount(addr[:])
	if err != nil {
		return nil, engineError(err)
	}
	account = account.Normalize()
	return balanceResult{
		VLT:    account.BalanceVLT.String(),
		USDT:   account.BalanceUSDT.String(),
		Native: account.BalanceNative.String(),
	}, nil
}

func (s *Server) handleEvents(json.RawMessage) (interface{}, *rpcError) {
	if s.recorder == nil {
		return []struct{}{}, nil
	}
	return s.recorder.Events(), nil
}

func (s *Server) handleStakePositions(raw json.RawMessage) (interface{}, *rpcError) {
	var params struct {
		Address string `json:"address"`
	}
	if rpcErr := decodeParams(raw, &params); rpcErr != nil {
		return nil, rpcErr
	}
	addr, rpcErr := parseAddress(params.Address)
	if rpcErr != nil {
		return nil, rpcErr
	}
	positions, err := s.processor.StakeEngine().Positions(addr)
	if err != nil {
		return nil, engineError(err)
	}
	out := make([]stakePositionResult, len(positions))
	for i, p := range positions {
		out[i] = stakePositionDTO(uint64(i), p)
	}
	return out, nil
}

func (s *Server) handleStakePosition(raw json.RawMessage) (interface{}, *rpcError) {
	addr, index, rpcErr := decodePositionRef(raw)
	if rpcErr != nil {
		return nil, rpcErr
	}
	position, err := s.processor.StakeEngine().Position(addr, index)
	if err != nil {
		return nil, engineError(err)
	}
	return stakePositionDTO(index, position), nil
}

func (s *Server) handleStakeCount(raw json.RawMessage) (interface{}, *rpcError) {
	var params struct {
		Address string `json:"address"`
	}
	if rpcErr := decodeParams(raw, &params); rpcErr != nil {
		return nil, rpcErr
	}
	addr, rpcErr := parseAddress(params.Address)
	if rpcErr != nil {
		return nil, rpcErr
	}
	count, err := s.processor.StakeEngine().PositionCount(addr)
	if err != nil {
		return nil, engineError(err)
	}
	return map[string]uint64{"count": count}, nil
}

func (s *Server) handleStakeUnlockCountdown(raw json.RawMessage) (interface{}, *rpcError) {
	addr, index, rpcErr := decodePositionRef(raw)
	if rpcErr != nil {
		return nil, rpcErr
	}
	countdown, err := s.processor.StakeEngine().UnlockCountdown(addr, index)
	if err != nil {
		return nil, engineError(err)
	}
	return map[string]uint64{"epochs": countdown}, nil
}

func (s *Server) handleStakeLockedTotal(raw json.RawMessage) (interface{}, *rpcError) {
	epoch, rpcErr := decodeEpochRef(raw)
	if rpcErr != nil {
		return nil, rpcErr
	}
	total, err := s.processor.StakeEngine().LockedTotalAt(epoch)
	if err != nil {
		return nil, engineError(err)
	}
	return map[string]string{"total": total.String()}, nil
}

func (s *Server) handleStakeWithdrawals(raw json.RawMessage) (interface{}, *rpcError) {
	epoch, rpcErr := decodeEpochRef(raw)
	if rpcErr != nil {
		return nil, rpcErr
	}
	history, err := s.processor.StakeEngine().WithdrawalsAt(epoch)
	if err != nil {
		return nil, engineError(err)
	}
	out := make([]withdrawalResult, len(history))
	for i, record := range history {
		out[i] = withdrawalResult{
			Account:    "0x" + gethcommon.Bytes2Hex(record.Account[:]),
			Index:      record.Index,
			Amount:     record.Amount.String(),
			Multiplier: record.Multiplier,
		}
	}
	return out, nil
}

func (s *Server) handleStakeTiers(json.RawMessage) (interface{}, *rpcError) {
	return stake.Tiers(), nil
}

func (s *Server) handleMultiplierTable(json.RawMessage) (interface{}, *rpcError) {
	return stake.MultiplierTable(), nil
}

func (s *Server) handleVestingPositions(raw json.RawMessage) (interface{}, *rpcError) {
	var params struct {
		Address string `json:"address"`
	}
	if rpcErr := decodeParams(raw, &params); rpcErr != nil {
		return nil, rpcErr
	}
	addr, rpcErr := parseAddress(params.Address)
	if rpcErr != nil {
		return nil, rpcErr
	}
	positions, err := s.processor.VestingEngine().Positions(addr)
	if err != nil {
		return nil, engineError(err)
	}
	out := make([]vestingPositionResult, len(positions))
	for i, p := range positions {
		out[i] = vestingPositionDTO(uint64(i), p)
	}
	return out, nil
}

func (s *Server) handleVestingPosition(raw json.RawMessage) (interface{}, *rpcError) {
	addr, index, rpcErr := decodePositionRef(raw)
	if rpcErr != nil {
		return nil, rpcErr
	}
	position, err := s.processor.VestingEngine().Position(addr, index)
	if err != nil {
		return nil, engineError(err)
	}
	return vestingPositionDTO(index, position), nil
}

func (s *Server) handleVestingCount(raw json.RawMessage) (interface{}, *rpcError) {
	var params struct {
		Address string `json:"address"`
	}
	if rpcErr := decodeParams(raw, &params); rpcErr != nil {
		return nil, rpcErr
	}
	addr, rpcErr := parseAddress(params.Address)
	if rpcErr != nil {
		return nil, rpcErr
	}
	count, err := s.processor.VestingEngine().PositionCount(addr)
	if err != nil {
		return nil, engineError(err)
	}
	return map[string]uint64{"count": count}, nil
}

func (s *Server) handleVestingAvailable(raw json.RawMessage) (interface{}, *rpcError) {
	addr, index, rpcErr := decodePositionRef(raw)
	if rpcErr != nil {
		return nil, rpcErr
	}
	available, err := s.processor.VestingEngine().Available(addr, index)
	if err != nil {
		return nil, engineError(err)
	}
	return map[string]string{"available": available.String()}, nil
}

func (s *Server) handleVestingTGEAmount(raw json.RawMessage) (interface{}, *rpcError) {
	addr, index, rpcErr := decodePositionRef(raw)
	if rpcErr != nil {
		return nil, rpcErr
	}
	position, err := s.processor.VestingEngine().Position(addr, index)
	if err != nil {
		return nil, engineError(err)
	}
	return map[string]interface{}{
		"amount":  position.TGEAmount().String(),
		"claimed": position.ClaimedTGE,
	}, nil
}

func (s *Server) handleVestingUnlockCountdown(raw json.RawMessage) (interface{}, *rpcError) {
	addr, index, rpcErr := decodePositionRef(raw)
	if rpcErr != nil {
		return nil, rpcErr
	}
	countdown, err := s.processor.VestingEngine().UnlockCountdown(addr, index)
	if err != nil {
		return nil, engineError(err)
	}
	return map[string]uint64{"epochs": countdown}, nil
}

func (s *Server) handleVestingLockedTotal(raw json.RawMessage) (interface{}, *rpcError) {
	epoch, rpcErr := decodeEpochRef(raw)
	if rpcErr != nil {
		return nil, rpcErr
	}
	total, err := s.processor.VestingEngine().LockedTotalAt(epoch)
	if err != nil {
		return nil, engineError(err)
	}
	return map[string]string{"total": total.String()}, nil
}

func (s *Server) handleVestingWithdrawals(raw json.RawMessage) (interface{}, *rpcError) {
	epoch, rpcErr := decodeEpochRef(raw)
	if rpcErr != nil {
		return nil, rpcErr
	}
	history, err := s.processor.VestingEngine().WithdrawalsAt(epoch)
	if err != nil {
		return nil, engineError(err)
	}
	out := make([]withdrawalResult, len(history))
	for i, record := range history {
		out[i] = withdrawalResult{
			Account:    "0x" + gethcommon.Bytes2Hex(record.Account[:]),
			Index:      record.Index,
			Amount:     record.Amount.String(),
			Multiplier: record.Multiplier,
		}
	}
	return out, nil
}

func (s *Server) handleEarnings(raw json.RawMessage) (interface{}, *rpcError) {
	epoch, rpcErr := decodeEpochRef(raw)
	if rpcErr != nil {
		return nil, rpcErr
	}
	earnings, ok, err := s.processor.RewardsEngine().EarningsForEpoch(epoch)
	if err != nil {
		return nil, engineError(err)
	}
	if !ok {
		return earningsResult{USDT: "0", VLT: "0", Native: "0"}, nil
	}
	return earningsResult{
		USDT:      earnings.USDT.String(),
		VLT:       earnings.VLT.String(),
		Native:    earnings.Native.String(),
		Deposited: earnings.Deposited,
	}, nil
}

func (s *Server) handleAvailableHarvest(raw json.RawMessage) (interface{}, *rpcError) {
	addr, index, epoch, vested, rpcErr := decodeHarvestRef(raw)
	if rpcErr != nil {
		return nil, rpcErr
	}
	payout, err := s.processor.RewardsEngine().AvailableHarvest(addr, index, epoch, vested)
	if err != nil {
		return nil, engineError(err)
	}
	return payoutDTO(payout), nil
}

func (s *Server) handleEarningsPercentage(raw json.RawMessage) (interface{}, *rpcError) {
	addr, index, epoch, vested, rpcErr := decodeHarvestRef(raw)
	if rpcErr != nil {
		return nil, rpcErr
	}
	share, err := s.processor.RewardsEngine().EarningsPercentage(addr, index, epoch, vested)
	if err != nil {
		return nil, engineError(err)
	}
	return map[string]string{
		"share": share.String(),
		"unit":  rewards.ShareUnit().String(),
	}, nil
}

func (s *Server) handleHarvested(raw json.RawMessage) (interface{}, *rpcError) {
	addr, index, epoch, vested, rpcErr := decodeHarvestRef(raw)
	if rpcErr != nil {
		return nil, rpcErr
	}
	done, err := s.processor.RewardsEngine().Harvested(addr, epoch, index, vested)
	if err != nil {
		return nil, engineError(err)
	}
	return map[string]bool{"harvested": done}, nil
}

func decodePositionRef(raw json.RawMessage) ([20]byte, uint64, *rpcError) {
	var params struct {
		Address string `json:"address"`
		Index   uint64 `json:"index"`
	}
	if rpcErr := decodeParams(raw, &params); rpcErr != nil {
		return [20]byte{}, 0, rpcErr
	}
	addr, rpcErr := parseAddress(params.Address)
	if rpcErr != nil {
		return [20]byte{}, 0, rpcErr
	}
	return addr, params.Index, nil
}

func decodeEpochRef(raw json.RawMessage) (uint64, *rpcError) {
	var params struct {
		Epoch uint64 `json:"epoch"`
	}
	if rpcErr := decodeParams(raw, &params); rpcErr != nil {
		return 0, rpcErr
	}
	return params.Epoch, nil
}

func decodeHarvestRef(raw json.RawMessage) ([20]byte, uint64, uint64, bool, *rpcError) {
	var params struct {
		Address string `json:"address"`
		Index   uint64 `json:"index"`
		Epoch   uint64 `json:"epoch"`
		Vested  bool   `json:"vested"`
	}
	if rpcErr := decodeParams(raw, &params); rpcErr != nil {
		return [20]byte{}, 0, 0, false, rpcErr
	}
	addr, rpcErr := parseAddress(params.Address)
	if rpcErr != nil {
		return [20]byte{}, 0, 0, false, rpcErr
	}
	return addr, params.Index, params.Epoch, params.Vested, nil
}

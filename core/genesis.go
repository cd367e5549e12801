package core

import (
	"math/big"

	"yieldvault/native/common"
)

// GenesisAccount seeds an account balance at first start.
type GenesisAccount struct {
	Address [20]byte
	VLT     *big.Int
	USDT    *big.Int
	Native  *big.Int
}

// Genesis describes the initial role grants and balances the daemon applies
// exactly once against a fresh database.
type Genesis struct {
	Admin      [20]byte
	Depositors [][20]byte
	Creators   [][20]byte
	Accounts   []GenesisAccount
}

// ApplyGenesis bootstraps roles and balances. It is idempotent: a database
// that already ran the bootstrap is left untouched. The rewards module
// address always receives the rewarder role so epoch propagation can be
// pushed into the ledgers.
func (p *Processor) ApplyGenesis(genesis Genesis) error {
	return p.apply("genesis", func() error {
		applied, err := p.state.GenesisApplied()
		if err != nil {
			return err
		}
		if applied {
			return nil
		}
		if err := p.state.GrantRole(common.RoleAdmin, genesis.Admin[:]); err != nil {
			return err
		}
		for _, depositor := range genesis.Depositors {
			if err := p.state.GrantRole(common.RoleDepositor, depositor[:]); err != nil {
				return err
			}
		}
		for _, creator := range genesis.Creators {
			if err := p.state.GrantRole(common.RoleCreator, creator[:]); err != nil {
				return err
			}
		}
		rewardsVault := p.rewards.Vault()
		if err := p.state.GrantRole(common.RoleRewarder, rewardsVault[:]); err != nil {
			return err
		}
		for _, seed := range genesis.Accounts {
			account, err := p.state.GetAccount(seed.Address[:])
			if err != nil {
				return err
			}
			account = account.Normalize()
			account.BalanceVLT = addBig(account.BalanceVLT, seed.VLT)
			account.BalanceUSDT = addBig(account.BalanceUSDT, seed.USDT)
			account.BalanceNative = addBig(account.BalanceNative, seed.Native)
			if err := p.state.PutAccount(seed.Address[:], account); err != nil {
				return err
			}
		}
		p.state.SetGenesisApplied()
		return nil
	})
}

func addBig(base, delta *big.Int) *big.Int {
	if delta == nil {
		return base
	}
	return new(big.Int).Add(base, delta)
}

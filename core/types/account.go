package types

import "math/big"

// Account represents the balance state tracked for every participant. The
// vault engine settles three assets: the primary token (VLT), the secondary
// stable token (USDT) and the host chain's native currency.
type Account struct {
	Nonce         uint64   `json:"nonce"`
	BalanceVLT    *big.Int `json:"balanceVLT"`
	BalanceUSDT   *big.Int `json:"balanceUSDT"`
	BalanceNative *big.Int `json:"balanceNative"`
}

// NewAccount returns an account with all balances initialised to zero.
func NewAccount() *Account {
	return &Account{
		BalanceVLT:    big.NewInt(0),
		BalanceUSDT:   big.NewInt(0),
		BalanceNative: big.NewInt(0),
	}
}

// Normalize replaces nil balance pointers with zero values so callers can
// operate on the account without nil checks.
func (a *Account) Normalize() *Account {
	if a == nil {
		return NewAccount()
	}
	if a.BalanceVLT == nil {
		a.BalanceVLT = big.NewInt(0)
	}
	if a.BalanceUSDT == nil {
		a.BalanceUSDT = big.NewInt(0)
	}
	if a.BalanceNative == nil {
		a.BalanceNative = big.NewInt(0)
	}
	return a
}

// Clone returns a deep copy of the account.
func (a *Account) Clone() *Account {
	if a == nil {
		return NewAccount()
	}
	return &Account{
		Nonce:         a.Nonce,
		BalanceVLT:    cloneBig(a.BalanceVLT),
		BalanceUSDT:   cloneBig(a.BalanceUSDT),
		BalanceNative: cloneBig(a.BalanceNative),
	}
}

func cloneBig(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

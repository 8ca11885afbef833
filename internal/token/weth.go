package token

import (
	sdkmath "cosmossdk.io/math"

	"github.com/HotpotFunds/HotpotFunds/internal/types"
)

// WETH is the wrapped native asset: a Token ledger whose supply is backed
// one-to-one by a native-balance ledger held at the wrapper's own address.
type WETH struct {
	*Token
	ether *Token // native balances; the wrapper escrows wrapped value here
}

func NewWETH(log *types.EventLog, addr types.Address, ether *Token) *WETH {
	return &WETH{
		Token: New(log, addr, "Wrapped Ether", "WETH", 18),
		ether: ether,
	}
}

// Deposit wraps value native units from account into WETH.
func (w *WETH) Deposit(account types.Address, value sdkmath.Int) error {
	if err := w.ether.Transfer(account, w.addr, value); err != nil {
		return err
	}
	w.Mint(account, value)
	w.log.Emit(w.addr, types.EventDeposit, account, value)
	return nil
}

// Withdraw unwraps amount of WETH held by account back into native units.
func (w *WETH) Withdraw(account types.Address, amount sdkmath.Int) error {
	if err := w.Burn(account, amount); err != nil {
		return err
	}
	w.log.Emit(w.addr, types.EventWithdrawal, account, amount)
	return w.ether.Transfer(w.addr, account, amount)
}

// WithdrawTo unwraps amount held by from and sends the native units to dst.
// Used by the native-asset fund to pay withdrawals out in the base asset.
func (w *WETH) WithdrawTo(from, to types.Address, amount sdkmath.Int) error {
	if err := w.Burn(from, amount); err != nil {
		return err
	}
	w.log.Emit(w.addr, types.EventWithdrawal, from, amount)
	return w.ether.Transfer(w.addr, to, amount)
}

/*

ERC20-style fungible ledger. Every amount is an sdkmath.Int; balances and the
total supply satisfy sum(balances) == totalSupply across all operations.

*/

package token

import (
	"strings"
	"sync"

	sdkmath "cosmossdk.io/math"

	"github.com/HotpotFunds/HotpotFunds/internal/types"
	"github.com/HotpotFunds/HotpotFunds/internal/utils"
)

// Token is one fungible ledger instance.
type Token struct {
	mu sync.Mutex

	addr     types.Address
	name     string
	symbol   string
	decimals uint8

	totalSupply sdkmath.Int
	balances    map[types.Address]sdkmath.Int
	allowances  map[types.Address]map[types.Address]sdkmath.Int

	log *types.EventLog
}

func New(log *types.EventLog, addr types.Address, name, symbol string, decimals uint8) *Token {
	return &Token{
		addr:        addr,
		name:        name,
		symbol:      symbol,
		decimals:    decimals,
		totalSupply: sdkmath.ZeroInt(),
		balances:    make(map[types.Address]sdkmath.Int),
		allowances:  make(map[types.Address]map[types.Address]sdkmath.Int),
		log:         log,
	}
}

func (t *Token) Address() types.Address { return t.addr }
func (t *Token) Name() string           { return t.name }
func (t *Token) Symbol() string         { return t.symbol }
func (t *Token) Decimals() uint8        { return t.decimals }

// Denom is the lowercase coin denomination used for sdk.Coin legs.
func (t *Token) Denom() string { return strings.ToLower(t.symbol) }

func (t *Token) TotalSupply() sdkmath.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totalSupply
}

func (t *Token) BalanceOf(account types.Address) sdkmath.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.balanceOf(account)
}

func (t *Token) balanceOf(account types.Address) sdkmath.Int {
	if b, ok := t.balances[account]; ok {
		return b
	}
	return sdkmath.ZeroInt()
}

func (t *Token) Allowance(owner, spender types.Address) sdkmath.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.allowance(owner, spender)
}

func (t *Token) allowance(owner, spender types.Address) sdkmath.Int {
	if m, ok := t.allowances[owner]; ok {
		if a, ok := m[spender]; ok {
			return a
		}
	}
	return sdkmath.ZeroInt()
}

// Approve sets spender's allowance over owner's balance and emits Approval.
func (t *Token) Approve(owner, spender types.Address, amount sdkmath.Int) error {
	if amount.IsNil() || amount.IsNegative() {
		return types.ErrNotEnoughBalance
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.allowances[owner]; !ok {
		t.allowances[owner] = make(map[types.Address]sdkmath.Int)
	}
	t.allowances[owner][spender] = amount
	t.log.Emit(t.addr, types.EventApproval, owner, spender, amount)
	return nil
}

// Transfer moves amount from the caller to dst. Fails whole if the caller's
// balance is insufficient, including a self-transfer exceeding the balance.
func (t *Token) Transfer(from, to types.Address, amount sdkmath.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.transfer(from, to, amount)
}

func (t *Token) transfer(from, to types.Address, amount sdkmath.Int) error {
	if amount.IsNil() || amount.IsNegative() {
		return types.ErrNotEnoughBalance
	}
	fromBalance := t.balanceOf(from)
	if fromBalance.LT(amount) {
		return types.ErrNotEnoughBalance
	}
	t.balances[from] = fromBalance.Sub(amount)
	t.balances[to] = t.balanceOf(to).Add(amount)
	t.log.Emit(t.addr, types.EventTransfer, from, to, amount)
	return nil
}

// TransferFrom spends spender's allowance over from's balance. The maximal
// allowance sentinel is never decremented (infinite-approval convention).
func (t *Token) TransferFrom(spender, from, to types.Address, amount sdkmath.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	allowed := t.allowance(from, spender)
	if !allowed.Equal(utils.MaxUint256) {
		if allowed.LT(amount) {
			return types.ErrNotEnoughBalance
		}
		if err := t.transfer(from, to, amount); err != nil {
			return err
		}
		t.allowances[from][spender] = allowed.Sub(amount)
		return nil
	}
	return t.transfer(from, to, amount)
}

// Mint credits amount to account and grows the supply. Emits a Transfer from
// the zero address.
func (t *Token) Mint(to types.Address, amount sdkmath.Int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.totalSupply = t.totalSupply.Add(amount)
	t.balances[to] = t.balanceOf(to).Add(amount)
	t.log.Emit(t.addr, types.EventTransfer, types.ZeroAddress, to, amount)
}

// Burn debits amount from account and shrinks the supply. Emits a Transfer to
// the zero address.
func (t *Token) Burn(from types.Address, amount sdkmath.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	fromBalance := t.balanceOf(from)
	if fromBalance.LT(amount) {
		return types.ErrNotEnoughBalance
	}
	t.balances[from] = fromBalance.Sub(amount)
	t.totalSupply = t.totalSupply.Sub(amount)
	t.log.Emit(t.addr, types.EventTransfer, from, types.ZeroAddress, amount)
	return nil
}

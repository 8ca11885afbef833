package fund

import (
	sdkmath "cosmossdk.io/math"

	"github.com/HotpotFunds/HotpotFunds/internal/token"
	"github.com/HotpotFunds/HotpotFunds/internal/types"
)

// BaseAsset is how a fund receives and pays out its base asset. The fund's
// bookkeeping runs once against this capability; the variants differ only in
// whether the asset is a plain token or native value wrapped on receipt.
type BaseAsset interface {
	// Token is the ledger the fund's holdings and pool legs are denominated in.
	Token() *token.Token
	// Pull moves amount from the depositor into the fund.
	Pull(from types.Address, amount sdkmath.Int) error
	// Push pays amount out of the fund.
	Push(to types.Address, amount sdkmath.Int) error
}

// ERC20Base pays in and out of a plain token ledger.
type ERC20Base struct {
	tok  *token.Token
	fund types.Address
}

func NewERC20Base(tok *token.Token, fund types.Address) *ERC20Base {
	return &ERC20Base{tok: tok, fund: fund}
}

func (b *ERC20Base) Token() *token.Token { return b.tok }

func (b *ERC20Base) Pull(from types.Address, amount sdkmath.Int) error {
	return b.tok.TransferFrom(b.fund, from, b.fund, amount)
}

func (b *ERC20Base) Push(to types.Address, amount sdkmath.Int) error {
	return b.tok.Transfer(b.fund, to, amount)
}

// NativeBase wraps received native value into the wrapped ledger and unwraps
// on payout, so the fund's internals only ever see the wrapped token.
type NativeBase struct {
	weth  *token.WETH
	ether *token.Token
	fund  types.Address
}

func NewNativeBase(weth *token.WETH, ether *token.Token, fund types.Address) *NativeBase {
	return &NativeBase{weth: weth, ether: ether, fund: fund}
}

func (b *NativeBase) Token() *token.Token { return b.weth.Token }

func (b *NativeBase) Pull(from types.Address, amount sdkmath.Int) error {
	if err := b.ether.Transfer(from, b.fund, amount); err != nil {
		return err
	}
	return b.weth.Deposit(b.fund, amount)
}

func (b *NativeBase) Push(to types.Address, amount sdkmath.Int) error {
	return b.weth.WithdrawTo(b.fund, to, amount)
}

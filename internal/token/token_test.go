package token

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/HotpotFunds/HotpotFunds/internal/types"
	"github.com/HotpotFunds/HotpotFunds/internal/utils"
)

const (
	wallet = types.Address("0xwallet")
	other  = types.Address("0xother")
)

var (
	totalSupply = utils.ExpandTo18Decimals(100 * 1e4)
	testAmount  = utils.ExpandTo18Decimals(10)
)

func newTestToken(t *testing.T) (*Token, *types.EventLog) {
	t.Helper()
	log := types.NewEventLog()
	tok := New(log, "0xhpt", "Hotpot V1", "HPT-V1", 18)
	tok.Mint(wallet, totalSupply)
	return tok, log
}

func TestMetadata(t *testing.T) {
	tok, _ := newTestToken(t)
	require.Equal(t, "Hotpot V1", tok.Name())
	require.Equal(t, "HPT-V1", tok.Symbol())
	require.Equal(t, uint8(18), tok.Decimals())
	require.True(t, tok.TotalSupply().Equal(totalSupply))
	require.True(t, tok.BalanceOf(wallet).Equal(totalSupply))
}

func TestApprove(t *testing.T) {
	tok, log := newTestToken(t)
	cursor := log.Len()

	require.NoError(t, tok.Approve(wallet, other, testAmount))
	require.True(t, tok.Allowance(wallet, other).Equal(testAmount))

	events := log.Since(cursor)
	require.Len(t, events, 1)
	require.Equal(t, types.EventApproval, events[0].Name)
	require.Equal(t, []any{wallet, other, testAmount}, events[0].Args)
}

func TestTransfer(t *testing.T) {
	tok, log := newTestToken(t)
	cursor := log.Len()

	require.NoError(t, tok.Transfer(wallet, other, testAmount))
	require.True(t, tok.BalanceOf(wallet).Equal(totalSupply.Sub(testAmount)))
	require.True(t, tok.BalanceOf(other).Equal(testAmount))

	events := log.Since(cursor)
	require.Len(t, events, 1)
	require.Equal(t, types.EventTransfer, events[0].Name)
	require.Equal(t, []any{wallet, other, testAmount}, events[0].Args)
}

func TestTransferFail(t *testing.T) {
	tok, _ := newTestToken(t)

	// transfer amount > balance
	require.Error(t, tok.Transfer(wallet, other, totalSupply.Add(sdkmath.OneInt())))
	require.Error(t, tok.Transfer(other, wallet, sdkmath.OneInt()))
	// self transfer amount > balance
	require.Error(t, tok.Transfer(other, other, sdkmath.OneInt()))

	// failures leave no partial mutation
	require.True(t, tok.BalanceOf(wallet).Equal(totalSupply))
	require.True(t, tok.BalanceOf(other).IsZero())
}

func TestTransferFrom(t *testing.T) {
	tok, _ := newTestToken(t)

	require.NoError(t, tok.Approve(wallet, other, testAmount))
	require.NoError(t, tok.TransferFrom(other, wallet, other, testAmount))

	require.True(t, tok.Allowance(wallet, other).IsZero())
	require.True(t, tok.BalanceOf(wallet).Equal(totalSupply.Sub(testAmount)))
	require.True(t, tok.BalanceOf(other).Equal(testAmount))

	// allowance spent, next transferFrom fails
	require.Error(t, tok.TransferFrom(other, wallet, other, testAmount))
}

func TestTransferFromMax(t *testing.T) {
	tok, _ := newTestToken(t)

	require.NoError(t, tok.Approve(wallet, other, utils.MaxUint256))
	require.NoError(t, tok.TransferFrom(other, wallet, other, testAmount))

	// maximal allowance is not decremented
	require.True(t, tok.Allowance(wallet, other).Equal(utils.MaxUint256))
	require.True(t, tok.BalanceOf(wallet).Equal(totalSupply.Sub(testAmount)))
	require.True(t, tok.BalanceOf(other).Equal(testAmount))
}

func TestSupplyConservation(t *testing.T) {
	tok, _ := newTestToken(t)

	require.NoError(t, tok.Transfer(wallet, other, testAmount))
	require.NoError(t, tok.Transfer(other, wallet, sdkmath.OneInt()))
	require.NoError(t, tok.Burn(wallet, testAmount))
	tok.Mint(other, testAmount)

	sum := tok.BalanceOf(wallet).Add(tok.BalanceOf(other))
	require.True(t, sum.Equal(tok.TotalSupply()))
}

func TestWETHWrapUnwrap(t *testing.T) {
	log := types.NewEventLog()
	ether := New(log, "0xether", "Ether", "ETH", 18)
	ether.Mint(wallet, utils.ExpandTo18Decimals(100))
	weth := NewWETH(log, "0xweth", ether)

	value := utils.ExpandTo18Decimals(3)
	require.NoError(t, weth.Deposit(wallet, value))
	require.True(t, weth.BalanceOf(wallet).Equal(value))
	require.True(t, ether.BalanceOf("0xweth").Equal(value))

	require.NoError(t, weth.Withdraw(wallet, value))
	require.True(t, weth.BalanceOf(wallet).IsZero())
	require.True(t, weth.TotalSupply().IsZero())
	require.True(t, ether.BalanceOf(wallet).Equal(utils.ExpandTo18Decimals(100)))

	withdrawals := log.Filter("0xweth", types.EventWithdrawal)
	require.Len(t, withdrawals, 1)
	require.Equal(t, []any{wallet, value}, withdrawals[0].Args)
}

package amm

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/HotpotFunds/HotpotFunds/internal/token"
	"github.com/HotpotFunds/HotpotFunds/internal/types"
	"github.com/HotpotFunds/HotpotFunds/internal/utils"
)

const lp = types.Address("0xlp")

func newTestPair(t *testing.T) (*Factory, *Router, *token.Token, *token.Token) {
	t.Helper()
	log := types.NewEventLog()
	dai := token.New(log, "0xdai", "DAI", "DAI", 18)
	weth := token.New(log, "0xweth", "WETH", "WETH", 18)
	factory := NewFactory(log)
	router := NewRouter(factory)

	_, err := factory.CreatePair(dai, weth)
	require.NoError(t, err)

	dai.Mint(lp, utils.ExpandTo18Decimals(1_000_000))
	weth.Mint(lp, utils.ExpandTo18Decimals(1_000_000))
	require.NoError(t, dai.Approve(lp, router.Address(), utils.MaxUint256))
	require.NoError(t, weth.Approve(lp, router.Address(), utils.MaxUint256))
	return factory, router, dai, weth
}

func TestGetAmountOutFormula(t *testing.T) {
	router := NewRouter(NewFactory(types.NewEventLog()))

	amountIn := utils.ExpandTo18Decimals(100)
	reserveIn := utils.ExpandTo18Decimals(10_000)
	reserveOut := utils.ExpandTo18Decimals(10)

	out, err := router.GetAmountOut(amountIn, reserveIn, reserveOut)
	require.NoError(t, err)

	withFee := amountIn.Mul(sdkmath.NewInt(997))
	expected := withFee.Mul(reserveOut).Quo(reserveIn.Mul(sdkmath.NewInt(1000)).Add(withFee))
	require.True(t, out.Equal(expected))

	_, err = router.GetAmountOut(sdkmath.ZeroInt(), reserveIn, reserveOut)
	require.Error(t, err)
	_, err = router.GetAmountOut(amountIn, sdkmath.ZeroInt(), reserveOut)
	require.ErrorIs(t, err, types.ErrNotEnoughLiquidity)
}

func TestAddRemoveLiquidity(t *testing.T) {
	factory, router, dai, weth := newTestPair(t)

	amountDAI := utils.ExpandTo18Decimals(10_000)
	amountWETH := utils.ExpandTo18Decimals(10)
	liquidity, err := router.AddLiquidity(lp, dai, weth, amountDAI, amountWETH)
	require.NoError(t, err)
	require.True(t, liquidity.IsPositive())

	pair := factory.GetPair(dai.Address(), weth.Address())
	// first mint locks the minimum liquidity at the zero address
	require.True(t, pair.TotalSupply().Equal(liquidity.Add(sdkmath.NewInt(1000))))

	require.NoError(t, pair.Token.Approve(lp, router.Address(), utils.MaxUint256))
	gotDAI, gotWETH, err := router.RemoveLiquidity(lp, dai, weth, liquidity)
	require.NoError(t, err)

	// proportional redemption, shy of the locked minimum
	require.True(t, gotDAI.LTE(amountDAI))
	require.True(t, gotWETH.LTE(amountWETH))
	require.True(t, gotDAI.GT(amountDAI.Sub(utils.ExpandTo18Decimals(1))))
}

func TestSwapMatchesQuote(t *testing.T) {
	factory, router, dai, weth := newTestPair(t)
	_, err := router.AddLiquidity(lp, dai, weth, utils.ExpandTo18Decimals(10_000), utils.ExpandTo18Decimals(10))
	require.NoError(t, err)

	pair := factory.GetPair(dai.Address(), weth.Address())
	reserveIn, reserveOut := reservesFor(pair, dai.Address())
	quoted, err := router.GetAmountOut(utils.ExpandTo18Decimals(100), reserveIn, reserveOut)
	require.NoError(t, err)

	before := weth.BalanceOf(lp)
	out, err := router.SwapExactTokensFor(lp, dai, weth, utils.ExpandTo18Decimals(100))
	require.NoError(t, err)
	require.True(t, out.Amount.Equal(quoted))
	require.Equal(t, "weth", out.Denom)
	require.True(t, weth.BalanceOf(lp).Sub(before).Equal(quoted))

	// price moved against the input side
	newReserveIn, newReserveOut := reservesFor(pair, dai.Address())
	require.True(t, newReserveIn.GT(reserveIn))
	require.True(t, newReserveOut.LT(reserveOut))
}

func TestPairExists(t *testing.T) {
	factory, _, dai, weth := newTestPair(t)
	require.True(t, factory.PairExists(dai.Address(), weth.Address()))
	require.True(t, factory.PairExists(weth.Address(), dai.Address()))
	require.False(t, factory.PairExists(dai.Address(), "0xusdc"))

	_, err := factory.CreatePair(dai, weth)
	require.Error(t, err)
}

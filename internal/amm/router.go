package amm

import (
	sdkmath "cosmossdk.io/math"
	sdktypes "github.com/cosmos/cosmos-sdk/types"

	"github.com/HotpotFunds/HotpotFunds/internal/token"
	"github.com/HotpotFunds/HotpotFunds/internal/types"
)

// Router is the quote/execute surface the fund trades through. Callers grant
// the router allowances and the router moves assets into the pairs.
type Router struct {
	addr    types.Address
	factory *Factory
}

func NewRouter(factory *Factory) *Router {
	return &Router{addr: "0xrouter", factory: factory}
}

func (r *Router) Address() types.Address { return r.addr }

// GetAmountOut quotes a swap against the given reserves with the 0.3% fee:
// amountIn*997*reserveOut / (reserveIn*1000 + amountIn*997), floored.
func (r *Router) GetAmountOut(amountIn, reserveIn, reserveOut sdkmath.Int) (sdkmath.Int, error) {
	if !amountIn.IsPositive() {
		return sdkmath.ZeroInt(), ErrInsufficientOutputAmount
	}
	if !reserveIn.IsPositive() || !reserveOut.IsPositive() {
		return sdkmath.ZeroInt(), types.ErrNotEnoughLiquidity
	}
	amountInWithFee := amountIn.Mul(sdkmath.NewInt(997))
	numerator := amountInWithFee.Mul(reserveOut)
	denominator := reserveIn.Mul(sdkmath.NewInt(1000)).Add(amountInWithFee)
	return numerator.Quo(denominator), nil
}

// reservesFor returns the pair's reserves ordered (tokenA side, tokenB side).
func reservesFor(pair *Pair, tokenA types.Address) (sdkmath.Int, sdkmath.Int) {
	r0, r1 := pair.GetReserves()
	if pair.Token0() == tokenA {
		return r0, r1
	}
	return r1, r0
}

// AddLiquidity pulls balanced amounts of both tokens from caller and mints LP
// shares. The actually-used amounts follow the current reserve ratio; any
// excess of the desired amounts stays with the caller.
func (r *Router) AddLiquidity(caller types.Address, tokenA, tokenB *token.Token, amountADesired, amountBDesired sdkmath.Int) (sdkmath.Int, error) {
	pair := r.factory.GetPair(tokenA.Address(), tokenB.Address())
	if pair == nil {
		return sdkmath.ZeroInt(), types.ErrPairNotExist
	}

	amountA, amountB := amountADesired, amountBDesired
	reserveA, reserveB := reservesFor(pair, tokenA.Address())
	if reserveA.IsPositive() && reserveB.IsPositive() {
		amountBOptimal := amountADesired.Mul(reserveB).Quo(reserveA)
		if amountBOptimal.LTE(amountBDesired) {
			amountB = amountBOptimal
		} else {
			amountA = amountBDesired.Mul(reserveA).Quo(reserveB)
		}
	}

	if err := tokenA.TransferFrom(r.addr, caller, pair.Address(), amountA); err != nil {
		return sdkmath.ZeroInt(), err
	}
	if err := tokenB.TransferFrom(r.addr, caller, pair.Address(), amountB); err != nil {
		return sdkmath.ZeroInt(), err
	}
	return pair.Mint(caller)
}

// RemoveLiquidity redeems liquidity LP shares held by caller for both assets,
// returned in (tokenA, tokenB) order.
func (r *Router) RemoveLiquidity(caller types.Address, tokenA, tokenB *token.Token, liquidity sdkmath.Int) (sdkmath.Int, sdkmath.Int, error) {
	pair := r.factory.GetPair(tokenA.Address(), tokenB.Address())
	if pair == nil {
		return sdkmath.ZeroInt(), sdkmath.ZeroInt(), types.ErrPairNotExist
	}
	if err := pair.Token.TransferFrom(r.addr, caller, pair.Address(), liquidity); err != nil {
		return sdkmath.ZeroInt(), sdkmath.ZeroInt(), err
	}
	amount0, amount1, err := pair.Burn(caller)
	if err != nil {
		return sdkmath.ZeroInt(), sdkmath.ZeroInt(), err
	}
	if pair.Token0() == tokenA.Address() {
		return amount0, amount1, nil
	}
	return amount1, amount0, nil
}

// SwapExactTokensFor swaps amountIn of tokenIn into tokenOut through their
// pair and returns the output leg as a coin.
func (r *Router) SwapExactTokensFor(caller types.Address, tokenIn, tokenOut *token.Token, amountIn sdkmath.Int) (sdktypes.Coin, error) {
	pair := r.factory.GetPair(tokenIn.Address(), tokenOut.Address())
	if pair == nil {
		return sdktypes.Coin{}, types.ErrPairNotExist
	}

	reserveIn, reserveOut := reservesFor(pair, tokenIn.Address())
	amountOut, err := r.GetAmountOut(amountIn, reserveIn, reserveOut)
	if err != nil {
		return sdktypes.Coin{}, err
	}
	if err := tokenIn.TransferFrom(r.addr, caller, pair.Address(), amountIn); err != nil {
		return sdktypes.Coin{}, err
	}

	amount0Out, amount1Out := sdkmath.ZeroInt(), amountOut
	if pair.Token0() == tokenOut.Address() {
		amount0Out, amount1Out = amountOut, sdkmath.ZeroInt()
	}
	if err := pair.Swap(amount0Out, amount1Out, caller); err != nil {
		return sdktypes.Coin{}, err
	}
	return sdktypes.Coin{Denom: tokenOut.Denom(), Amount: amountOut}, nil
}

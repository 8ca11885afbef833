/*

Constant-product liquidity pair. The pair's LP share ledger is itself a Token;
the pair escrows its two assets at its own address and tracks cached reserves.

The fund consumes pairs only through reserves, token ordering, and the router's
quote/execute surface.

*/

package amm

import (
	"errors"
	"sync"

	sdkmath "cosmossdk.io/math"

	"github.com/HotpotFunds/HotpotFunds/internal/token"
	"github.com/HotpotFunds/HotpotFunds/internal/types"
	"github.com/HotpotFunds/HotpotFunds/internal/utils"
)

var (
	ErrInsufficientLiquidityMinted = errors.New("insufficient liquidity minted")
	ErrInsufficientLiquidityBurned = errors.New("insufficient liquidity burned")
	ErrInsufficientOutputAmount    = errors.New("insufficient output amount")
	ErrConstantProduct             = errors.New("constant product invariant violated")
)

// minimumLiquidity is locked forever on first mint, as in the reference AMM.
var minimumLiquidity = sdkmath.NewInt(1000)

type Pair struct {
	*token.Token // LP share ledger

	mu       sync.Mutex
	token0   *token.Token
	token1   *token.Token
	reserve0 sdkmath.Int
	reserve1 sdkmath.Int
}

func newPair(log *types.EventLog, addr types.Address, token0, token1 *token.Token) *Pair {
	return &Pair{
		Token:    token.New(log, addr, "HotSwap LP", "HSLP", 18),
		token0:   token0,
		token1:   token1,
		reserve0: sdkmath.ZeroInt(),
		reserve1: sdkmath.ZeroInt(),
	}
}

func (p *Pair) Token0() types.Address { return p.token0.Address() }
func (p *Pair) Token1() types.Address { return p.token1.Address() }

// GetReserves returns the cached reserves in token0/token1 order.
func (p *Pair) GetReserves() (sdkmath.Int, sdkmath.Int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reserve0, p.reserve1
}

// Mint converts whatever balances were sent to the pair above its reserves
// into LP shares for to. First mint locks minimumLiquidity at the zero address.
func (p *Pair) Mint(to types.Address) (sdkmath.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	balance0 := p.token0.BalanceOf(p.Address())
	balance1 := p.token1.BalanceOf(p.Address())
	amount0 := balance0.Sub(p.reserve0)
	amount1 := balance1.Sub(p.reserve1)

	var liquidity sdkmath.Int
	totalLP := p.TotalSupply()
	if totalLP.IsZero() {
		liquidity = utils.Sqrt(amount0.Mul(amount1)).Sub(minimumLiquidity)
		if !liquidity.IsPositive() {
			return sdkmath.ZeroInt(), ErrInsufficientLiquidityMinted
		}
		p.Token.Mint(types.ZeroAddress, minimumLiquidity)
	} else {
		liquidity = utils.MinInt(
			amount0.Mul(totalLP).Quo(p.reserve0),
			amount1.Mul(totalLP).Quo(p.reserve1),
		)
		if !liquidity.IsPositive() {
			return sdkmath.ZeroInt(), ErrInsufficientLiquidityMinted
		}
	}
	p.Token.Mint(to, liquidity)
	p.reserve0, p.reserve1 = balance0, balance1
	return liquidity, nil
}

// Burn redeems the LP shares held at the pair's own address for the
// proportional amounts of both assets, sent to to.
func (p *Pair) Burn(to types.Address) (sdkmath.Int, sdkmath.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	liquidity := p.BalanceOf(p.Address())
	totalLP := p.TotalSupply()
	balance0 := p.token0.BalanceOf(p.Address())
	balance1 := p.token1.BalanceOf(p.Address())

	amount0 := liquidity.Mul(balance0).Quo(totalLP)
	amount1 := liquidity.Mul(balance1).Quo(totalLP)
	if !amount0.IsPositive() || !amount1.IsPositive() {
		return sdkmath.ZeroInt(), sdkmath.ZeroInt(), ErrInsufficientLiquidityBurned
	}

	if err := p.Token.Burn(p.Address(), liquidity); err != nil {
		return sdkmath.ZeroInt(), sdkmath.ZeroInt(), err
	}
	if err := p.token0.Transfer(p.Address(), to, amount0); err != nil {
		return sdkmath.ZeroInt(), sdkmath.ZeroInt(), err
	}
	if err := p.token1.Transfer(p.Address(), to, amount1); err != nil {
		return sdkmath.ZeroInt(), sdkmath.ZeroInt(), err
	}

	p.reserve0 = p.token0.BalanceOf(p.Address())
	p.reserve1 = p.token1.BalanceOf(p.Address())
	return amount0, amount1, nil
}

// Swap sends the requested output amounts to to, then checks the fee-adjusted
// constant-product invariant against the input that must already have been
// transferred in.
func (p *Pair) Swap(amount0Out, amount1Out sdkmath.Int, to types.Address) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !amount0Out.IsPositive() && !amount1Out.IsPositive() {
		return ErrInsufficientOutputAmount
	}
	if amount0Out.GTE(p.reserve0) || amount1Out.GTE(p.reserve1) {
		return types.ErrNotEnoughLiquidity
	}

	if amount0Out.IsPositive() {
		if err := p.token0.Transfer(p.Address(), to, amount0Out); err != nil {
			return err
		}
	}
	if amount1Out.IsPositive() {
		if err := p.token1.Transfer(p.Address(), to, amount1Out); err != nil {
			return err
		}
	}

	balance0 := p.token0.BalanceOf(p.Address())
	balance1 := p.token1.BalanceOf(p.Address())

	amount0In := sdkmath.ZeroInt()
	if balance0.GT(p.reserve0.Sub(amount0Out)) {
		amount0In = balance0.Sub(p.reserve0.Sub(amount0Out))
	}
	amount1In := sdkmath.ZeroInt()
	if balance1.GT(p.reserve1.Sub(amount1Out)) {
		amount1In = balance1.Sub(p.reserve1.Sub(amount1Out))
	}

	thousand := sdkmath.NewInt(1000)
	three := sdkmath.NewInt(3)
	adjusted0 := balance0.Mul(thousand).Sub(amount0In.Mul(three))
	adjusted1 := balance1.Mul(thousand).Sub(amount1In.Mul(three))
	if adjusted0.Mul(adjusted1).LT(p.reserve0.Mul(p.reserve1).Mul(thousand).Mul(thousand)) {
		return ErrConstantProduct
	}

	p.reserve0, p.reserve1 = balance0, balance1
	return nil
}

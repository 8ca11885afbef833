/*

Stable-swap venue. Registered stable tokens are addressed by internal token ID
and exchanged at flat price, adjusted only for decimal precision. Selected per
token pair via the fund's swap-path table as the alternative to the AMM router.

*/

package curve

import (
	"errors"
	"sync"

	sdkmath "cosmossdk.io/math"

	"github.com/HotpotFunds/HotpotFunds/internal/token"
	"github.com/HotpotFunds/HotpotFunds/internal/types"
	"github.com/HotpotFunds/HotpotFunds/internal/utils"
)

var (
	ErrUnknownTokenID = errors.New("unknown curve token id")
	ErrSameToken      = errors.New("cannot exchange a token for itself")
)

type Pool struct {
	mu     sync.Mutex
	addr   types.Address
	tokens []*token.Token
	ids    map[types.Address]int
}

func NewPool(addr types.Address, tokens []*token.Token) *Pool {
	ids := make(map[types.Address]int, len(tokens))
	for i, tok := range tokens {
		ids[tok.Address()] = i
	}
	return &Pool{addr: addr, tokens: tokens, ids: ids}
}

func (p *Pool) Address() types.Address { return p.addr }

// TokenID resolves a registered token to its internal index.
func (p *Pool) TokenID(addr types.Address) (int, bool) {
	id, ok := p.ids[addr]
	return id, ok
}

// Registered reports whether both tokens are in the pool, so the pair can be
// routed through the stable venue.
func (p *Pool) Registered(a, b types.Address) bool {
	_, okA := p.ids[a]
	_, okB := p.ids[b]
	return okA && okB
}

// Exchange swaps dx of token i for token j at flat price, scaling for decimal
// precision. The pool must hold enough of token j.
func (p *Pool) Exchange(caller types.Address, i, j int, dx sdkmath.Int) (sdkmath.Int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if i < 0 || i >= len(p.tokens) || j < 0 || j >= len(p.tokens) {
		return sdkmath.ZeroInt(), ErrUnknownTokenID
	}
	if i == j {
		return sdkmath.ZeroInt(), ErrSameToken
	}

	tokenIn, tokenOut := p.tokens[i], p.tokens[j]
	dy := dx.Mul(utils.PowTen(tokenOut.Decimals())).Quo(utils.PowTen(tokenIn.Decimals()))
	if tokenOut.BalanceOf(p.addr).LT(dy) {
		return sdkmath.ZeroInt(), types.ErrNotEnoughLiquidity
	}

	if err := tokenIn.TransferFrom(p.addr, caller, p.addr, dx); err != nil {
		return sdkmath.ZeroInt(), err
	}
	if err := tokenOut.Transfer(p.addr, caller, dy); err != nil {
		return sdkmath.ZeroInt(), err
	}
	return dy, nil
}

/*

HotPotFund: a pooled fund over one base asset. Depositors receive fund shares,
the manager (through the controller) allocates the pooled capital across AMM
pairs by proportion, and withdrawals unwind pro rata across every active
position with a performance fee charged on realized gain over cost basis.

The fund's share ledger is itself a Token; the fund address is the share token
address. All management primitives are gated on the controller identity, so end
users only ever touch deposit and withdraw.

*/

package fund

import (
	"sync"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/HotpotFunds/HotpotFunds/internal/amm"
	"github.com/HotpotFunds/HotpotFunds/internal/curve"
	"github.com/HotpotFunds/HotpotFunds/internal/logger"
	"github.com/HotpotFunds/HotpotFunds/internal/staking"
	"github.com/HotpotFunds/HotpotFunds/internal/token"
	"github.com/HotpotFunds/HotpotFunds/internal/types"
	"github.com/HotpotFunds/HotpotFunds/internal/utils"
)

// Performance fee charged on withdrawal gain over cost basis.
var (
	feeRate    = sdkmath.NewInt(20)
	feeDivisor = sdkmath.NewInt(100)
)

// SwapPath selects the venue for one token pair.
type SwapPath uint8

const (
	PathUniswap SwapPath = iota
	PathCurve
)

// PoolEntry is one allocation slot: a paired token and the integer percentage
// of invested capital targeted at its pair.
type PoolEntry struct {
	Token      *token.Token
	Proportion int64
}

type pathKey struct {
	in  types.Address
	out types.Address
}

type Fund struct {
	*token.Token // share ledger

	mu sync.Mutex

	addr       types.Address
	controller types.Address

	base    BaseAsset
	factory *amm.Factory
	router  *amm.Router
	stable  *curve.Pool // nil for the native fund
	uni     *token.Token

	pools []PoolEntry
	paths map[pathKey]SwapPath

	investments     map[types.Address]sdkmath.Int
	totalInvestment sdkmath.Int

	totalDebts sdkmath.Int
	debts      map[types.Address]sdkmath.Int
	uniPools   map[types.Address]*staking.StakingRewards // by pair address

	log    *types.EventLog
	logger zerolog.Logger
}

func New(log *types.EventLog, addr types.Address, base BaseAsset, controller types.Address,
	factory *amm.Factory, router *amm.Router, stable *curve.Pool, uni *token.Token) *Fund {
	f := &Fund{
		Token:           token.New(log, addr, "Hotpot V1", "HPT-V1", 18),
		addr:            addr,
		controller:      controller,
		base:            base,
		factory:         factory,
		router:          router,
		stable:          stable,
		uni:             uni,
		paths:           make(map[pathKey]SwapPath),
		investments:     make(map[types.Address]sdkmath.Int),
		totalInvestment: sdkmath.ZeroInt(),
		totalDebts:      sdkmath.ZeroInt(),
		debts:           make(map[types.Address]sdkmath.Int),
		uniPools:        make(map[types.Address]*staking.StakingRewards),
		log:             log,
		logger:          logger.GetForComponent("fund").With().Str("fund", string(addr)).Logger(),
	}

	// standing allowances for the venues the fund trades through
	baseTok := base.Token()
	_ = baseTok.Approve(addr, router.Address(), utils.MaxUint256)
	if stable != nil {
		if _, ok := stable.TokenID(baseTok.Address()); ok {
			_ = baseTok.Approve(addr, stable.Address(), utils.MaxUint256)
		}
	}
	return f
}

func (f *Fund) onlyController(caller types.Address) error {
	if caller != f.controller {
		return types.ErrOnlyController
	}
	return nil
}

func (f *Fund) investmentOf(account types.Address) sdkmath.Int {
	if v, ok := f.investments[account]; ok {
		return v
	}
	return sdkmath.ZeroInt()
}

func (f *Fund) debtOf(account types.Address) sdkmath.Int {
	if v, ok := f.debts[account]; ok {
		return v
	}
	return sdkmath.ZeroInt()
}

// BaseToken is the fund's base asset ledger address.
func (f *Fund) BaseToken() types.Address { return f.base.Token().Address() }

func (f *Fund) Controller() types.Address { return f.controller }

func (f *Fund) InvestmentOf(account types.Address) sdkmath.Int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.investmentOf(account)
}

func (f *Fund) TotalInvestment() sdkmath.Int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.totalInvestment
}

func (f *Fund) PairsLength() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pools)
}

// PairAt returns the paired token of the allocation slot at index. Indices are
// not stable across removals; resolve by token identity when in doubt.
func (f *Fund) PairAt(index int) (types.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if index < 0 || index >= len(f.pools) {
		return types.ZeroAddress, types.ErrPairsIndex
	}
	return f.pools[index].Token.Address(), nil
}

func (f *Fund) PoolAt(index int) (types.Address, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if index < 0 || index >= len(f.pools) {
		return types.ZeroAddress, 0, types.ErrPairsIndex
	}
	return f.pools[index].Token.Address(), f.pools[index].Proportion, nil
}

func (f *Fund) PathFor(tokenIn, tokenOut types.Address) SwapPath {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paths[pathKey{in: tokenIn, out: tokenOut}]
}

// CurveTokenID resolves a token to its internal stable-venue index.
func (f *Fund) CurveTokenID(addr types.Address) (int, bool) {
	if f.stable == nil {
		return 0, false
	}
	return f.stable.TokenID(addr)
}

// TotalAssets values the fund in base-asset terms: idle balance plus, for each
// active pair, the base-side reserve doubled and scaled by the fund's LP share
// (held plus staked in a mining program).
func (f *Fund) TotalAssets() sdkmath.Int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.totalAssets()
}

func (f *Fund) totalAssets() sdkmath.Int {
	baseTok := f.base.Token()
	sum := baseTok.BalanceOf(f.addr)
	for i := range f.pools {
		pair := f.factory.GetPair(baseTok.Address(), f.pools[i].Token.Address())
		liquidity := pair.BalanceOf(f.addr).Add(f.stakingLP(pair.Address()))
		if !liquidity.IsPositive() {
			continue
		}
		totalLP := pair.TotalSupply()
		r0, r1 := pair.GetReserves()
		baseReserve := r1
		if pair.Token0() == baseTok.Address() {
			baseReserve = r0
		}
		sum = sum.Add(baseReserve.MulRaw(2).Mul(liquidity).Quo(totalLP))
	}
	return sum
}

// Deposit pulls amount of the base asset from caller and mints shares against
// the fund's pre-deposit value. The first depositor gets shares one-to-one.
func (f *Fund) Deposit(caller types.Address, amount sdkmath.Int) (sdkmath.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !amount.IsPositive() {
		return sdkmath.ZeroInt(), types.ErrNotEnoughBalance
	}

	totalAssets := f.totalAssets()
	totalSupply := f.Token.TotalSupply()
	share := amount
	if totalSupply.IsPositive() && totalAssets.IsPositive() {
		share = amount.Mul(totalSupply).Quo(totalAssets)
	}
	if err := f.base.Pull(caller, amount); err != nil {
		return sdkmath.ZeroInt(), err
	}

	// New shares must not claim mining rewards accrued before them: carry the
	// pro-rata accrual as debt, netted out again when the shares burn.
	if totalSupply.IsPositive() {
		accrued := f.totalDebts.Add(f.uni.BalanceOf(f.addr))
		if accrued.IsPositive() {
			debt := accrued.Mul(share).Quo(totalSupply)
			f.debts[caller] = f.debtOf(caller).Add(debt)
			f.totalDebts = f.totalDebts.Add(debt)
		}
	}

	f.Token.Mint(caller, share)
	f.investments[caller] = f.investmentOf(caller).Add(amount)
	f.totalInvestment = f.totalInvestment.Add(amount)
	f.log.Emit(f.addr, types.EventDeposit, caller, amount, share)
	f.logger.Debug().Str("account", string(caller)).Str("amount", amount.String()).Str("share", share.String()).Msg("deposit")
	return share, nil
}

// Withdraw burns share of the caller's fund shares and pays out the pro-rata
// claim across the idle balance and every live position, charging the
// performance fee on any gain over the caller's proportional cost basis.
func (f *Fund) Withdraw(caller types.Address, share sdkmath.Int) (sdkmath.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	totalSupply := f.Token.TotalSupply()
	userShares := f.Token.BalanceOf(caller)
	if !share.IsPositive() || share.GT(userShares) {
		return sdkmath.ZeroInt(), types.ErrNotEnoughBalance
	}

	if err := f.settleMiningReward(caller, share, userShares, totalSupply); err != nil {
		return sdkmath.ZeroInt(), err
	}

	baseTok := f.base.Token()
	sumRemove := baseTok.BalanceOf(f.addr).Mul(share).Quo(totalSupply)
	for i := range f.pools {
		pair := f.factory.GetPair(baseTok.Address(), f.pools[i].Token.Address())
		held := pair.BalanceOf(f.addr).Mul(share).Quo(totalSupply)
		staked := f.stakingLP(pair.Address()).Mul(share).Quo(totalSupply)
		if staked.IsPositive() {
			if err := f.uniPools[pair.Address()].Withdraw(f.addr, staked); err != nil {
				return sdkmath.ZeroInt(), err
			}
		}
		liquidity := held.Add(staked)
		if !liquidity.IsPositive() {
			continue
		}
		amountBase, amountPaired, err := f.router.RemoveLiquidity(f.addr, baseTok, f.pools[i].Token, liquidity)
		if err != nil {
			return sdkmath.ZeroInt(), err
		}
		out, err := f.router.SwapExactTokensFor(f.addr, f.pools[i].Token, baseTok, amountPaired)
		if err != nil {
			return sdkmath.ZeroInt(), err
		}
		sumRemove = sumRemove.Add(amountBase).Add(out.Amount)
	}

	removeInvestment := f.investmentOf(caller).Mul(share).Quo(totalSupply)
	toUser := sumRemove
	fee := sdkmath.ZeroInt()
	if sumRemove.GT(removeInvestment) {
		fee = sumRemove.Sub(removeInvestment).Mul(feeRate).Quo(feeDivisor)
		toUser = sumRemove.Sub(fee)
	} else {
		// loss or breakeven: the cost basis released can only be what actually
		// came back, never more
		removeInvestment = sumRemove
	}

	if err := f.Token.Burn(caller, share); err != nil {
		return sdkmath.ZeroInt(), err
	}
	f.investments[caller] = f.investmentOf(caller).Sub(removeInvestment)
	f.totalInvestment = f.totalInvestment.Sub(removeInvestment)

	if fee.IsPositive() {
		if err := baseTok.Transfer(f.addr, f.controller, fee); err != nil {
			return sdkmath.ZeroInt(), err
		}
	}
	if err := f.base.Push(caller, toUser); err != nil {
		return sdkmath.ZeroInt(), err
	}
	f.log.Emit(f.addr, types.EventWithdraw, caller, toUser, share)
	f.logger.Debug().Str("account", string(caller)).Str("share", share.String()).
		Str("amount", toUser.String()).Str("fee", fee.String()).Msg("withdraw")
	return toUser, nil
}

// settleMiningReward pays the burning shares their net claim on the mining
// reward held by the fund, subtracting the account's carried debt.
func (f *Fund) settleMiningReward(caller types.Address, share, userShares, totalSupply sdkmath.Int) error {
	uniBal := f.uni.BalanceOf(f.addr)
	totalAmount := f.totalDebts.Add(uniBal).Mul(share).Quo(totalSupply)
	if !totalAmount.IsPositive() {
		return nil
	}
	debt := f.debtOf(caller).Mul(share).Quo(userShares)
	reward := totalAmount.Sub(debt)
	if reward.GT(uniBal) {
		reward = uniBal
	}
	if reward.IsPositive() {
		if err := f.uni.Transfer(f.addr, caller, reward); err != nil {
			return err
		}
	}
	f.totalDebts = f.totalDebts.Sub(debt)
	f.debts[caller] = f.debtOf(caller).Sub(debt)
	return nil
}

// swap trades through the configured venue for the pair: the stable venue when
// the path selects it and both tokens are registered there, the AMM otherwise.
func (f *Fund) swap(tokenIn, tokenOut *token.Token, amountIn sdkmath.Int) (sdkmath.Int, error) {
	if f.paths[pathKey{in: tokenIn.Address(), out: tokenOut.Address()}] == PathCurve && f.stable != nil {
		i, okIn := f.stable.TokenID(tokenIn.Address())
		j, okOut := f.stable.TokenID(tokenOut.Address())
		if okIn && okOut {
			return f.stable.Exchange(f.addr, i, j, amountIn)
		}
	}
	out, err := f.router.SwapExactTokensFor(f.addr, tokenIn, tokenOut, amountIn)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	return out.Amount, nil
}

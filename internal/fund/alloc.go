package fund

import (
	sdkmath "cosmossdk.io/math"

	"github.com/HotpotFunds/HotpotFunds/internal/token"
	"github.com/HotpotFunds/HotpotFunds/internal/types"
	"github.com/HotpotFunds/HotpotFunds/internal/utils"
)

// AddPool registers a new allocation slot carrying proportion percent. The
// first slot must claim the full 100; later adds scale the existing slots down
// by (100-p)/100 so the table keeps summing to at most 100.
func (f *Fund) AddPool(caller types.Address, tok *token.Token, proportion int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.onlyController(caller); err != nil {
		return err
	}
	return f.addPool(tok, proportion)
}

// AddPair registers a slot without an explicit proportion: the first pair takes
// the whole allocation, later pairs start at zero until adjusted.
func (f *Fund) AddPair(caller types.Address, tok *token.Token) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.onlyController(caller); err != nil {
		return err
	}
	proportion := int64(0)
	if len(f.pools) == 0 {
		proportion = 100
	}
	return f.addPool(tok, proportion)
}

func (f *Fund) addPool(tok *token.Token, proportion int64) error {
	baseTok := f.base.Token()
	if !f.factory.PairExists(baseTok.Address(), tok.Address()) {
		return types.ErrPairNotExist
	}
	for i := range f.pools {
		if f.pools[i].Token.Address() == tok.Address() {
			return types.ErrAddPairRepeatedly
		}
	}

	if len(f.pools) == 0 {
		if proportion != 100 {
			return types.ErrErrorProportion
		}
	} else {
		if proportion < 0 || proportion > 100 {
			return types.ErrErrorProportion
		}
		for i := range f.pools {
			f.pools[i].Proportion = f.pools[i].Proportion * (100 - proportion) / 100
		}
	}

	pair := f.factory.GetPair(baseTok.Address(), tok.Address())
	if err := tok.Approve(f.addr, f.router.Address(), utils.MaxUint256); err != nil {
		return err
	}
	if f.stable != nil && f.stable.Registered(baseTok.Address(), tok.Address()) {
		if err := tok.Approve(f.addr, f.stable.Address(), utils.MaxUint256); err != nil {
			return err
		}
	}
	if err := pair.Approve(f.addr, f.router.Address(), utils.MaxUint256); err != nil {
		return err
	}

	f.pools = append(f.pools, PoolEntry{Token: tok, Proportion: proportion})
	f.logger.Info().Str("token", string(tok.Address())).Int64("proportion", proportion).Msg("pool added")
	return nil
}

// AdjustPool moves amount percentage points from the slot at downIndex to the
// slot at upIndex. A slot driven to zero stays in the table until removed.
func (f *Fund) AdjustPool(caller types.Address, upIndex, downIndex int, amount int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.onlyController(caller); err != nil {
		return err
	}
	if upIndex < 0 || upIndex >= len(f.pools) || downIndex < 0 || downIndex >= len(f.pools) {
		return types.ErrPairsIndex
	}
	if amount < 0 || f.pools[downIndex].Proportion < amount {
		return types.ErrNotEnoughProportion
	}
	f.pools[downIndex].Proportion -= amount
	f.pools[upIndex].Proportion += amount
	return nil
}

// RemovePair liquidates the slot at index back into the base asset, revokes
// the venue allowances granted for its token, and compacts the table by
// swapping the last slot into the hole. Indices are not stable across removal.
func (f *Fund) RemovePair(caller types.Address, index int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.onlyController(caller); err != nil {
		return err
	}
	if index < 0 || index >= len(f.pools) {
		return types.ErrPairsIndex
	}

	entry := f.pools[index]
	baseTok := f.base.Token()
	pair := f.factory.GetPair(baseTok.Address(), entry.Token.Address())

	if pool := f.uniPools[pair.Address()]; pool != nil {
		if _, err := pool.GetReward(f.addr); err != nil {
			return err
		}
		staked := pool.BalanceOf(f.addr)
		if staked.IsPositive() {
			if err := pool.Withdraw(f.addr, staked); err != nil {
				return err
			}
		}
	}

	liquidity := pair.BalanceOf(f.addr)
	if liquidity.IsPositive() {
		_, amountPaired, err := f.router.RemoveLiquidity(f.addr, baseTok, entry.Token, liquidity)
		if err != nil {
			return err
		}
		if _, err := f.swap(entry.Token, baseTok, amountPaired); err != nil {
			return err
		}
	}

	if err := entry.Token.Approve(f.addr, f.router.Address(), sdkmath.ZeroInt()); err != nil {
		return err
	}
	if f.stable != nil && f.stable.Registered(baseTok.Address(), entry.Token.Address()) {
		if err := entry.Token.Approve(f.addr, f.stable.Address(), sdkmath.ZeroInt()); err != nil {
			return err
		}
	}

	last := len(f.pools) - 1
	f.pools[index] = f.pools[last]
	f.pools = f.pools[:last]
	f.logger.Info().Str("token", string(entry.Token.Address())).Msg("pair removed")
	return nil
}

// Invest pushes amount of the idle base balance into the active pairs. A nil
// proportions slice uses the stored table; an explicit slice must cover every
// slot and sum to at most 100. Each pair's cut is half-swapped into its paired
// token and supplied as liquidity.
func (f *Fund) Invest(caller types.Address, amount sdkmath.Int, proportions []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.onlyController(caller); err != nil {
		return err
	}
	if len(f.pools) == 0 {
		return types.ErrPairsEmpty
	}
	baseTok := f.base.Token()
	if amount.GT(baseTok.BalanceOf(f.addr)) {
		return types.ErrNotEnoughBalance
	}
	if proportions == nil {
		proportions = make([]int64, len(f.pools))
		for i := range f.pools {
			proportions[i] = f.pools[i].Proportion
		}
	} else {
		if len(proportions) != len(f.pools) {
			return types.ErrProportionIndex
		}
		sum := int64(0)
		for _, p := range proportions {
			if p < 0 {
				return types.ErrErrorProportion
			}
			sum += p
		}
		if sum > 100 {
			return types.ErrErrorProportion
		}
	}

	for i := range f.pools {
		if proportions[i] <= 0 {
			continue
		}
		cut := amount.MulRaw(proportions[i]).QuoRaw(100)
		half := cut.QuoRaw(2)
		if !half.IsPositive() {
			continue
		}
		out, err := f.swap(baseTok, f.pools[i].Token, half)
		if err != nil {
			return err
		}
		if _, err := f.router.AddLiquidity(f.addr, baseTok, f.pools[i].Token, cut.Sub(half), out); err != nil {
			return err
		}
	}
	f.logger.Info().Str("amount", amount.String()).Msg("invested")
	return nil
}

// ReBalance moves removeLiquidity worth of the removeIndex position into the
// addIndex position, unstaking from the mining program when the held LP alone
// does not cover it. Share accounting is untouched.
func (f *Fund) ReBalance(caller types.Address, addIndex, removeIndex int, removeLiquidity sdkmath.Int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.onlyController(caller); err != nil {
		return err
	}
	if addIndex < 0 || addIndex >= len(f.pools) || removeIndex < 0 || removeIndex >= len(f.pools) {
		return types.ErrPairsIndex
	}

	baseTok := f.base.Token()
	removeTok := f.pools[removeIndex].Token
	addTok := f.pools[addIndex].Token
	pair := f.factory.GetPair(baseTok.Address(), removeTok.Address())

	held := pair.BalanceOf(f.addr)
	staked := f.stakingLP(pair.Address())
	if !removeLiquidity.IsPositive() || removeLiquidity.GT(held.Add(staked)) {
		return types.ErrNotEnoughLiquidity
	}
	if held.LT(removeLiquidity) {
		if err := f.uniPools[pair.Address()].Withdraw(f.addr, removeLiquidity.Sub(held)); err != nil {
			return err
		}
	}

	amountBase, amountPaired, err := f.router.RemoveLiquidity(f.addr, baseTok, removeTok, removeLiquidity)
	if err != nil {
		return err
	}
	out, err := f.swap(removeTok, baseTok, amountPaired)
	if err != nil {
		return err
	}

	proceeds := amountBase.Add(out)
	half := proceeds.QuoRaw(2)
	if !half.IsPositive() {
		return nil
	}
	swapped, err := f.swap(baseTok, addTok, half)
	if err != nil {
		return err
	}
	_, err = f.router.AddLiquidity(f.addr, baseTok, addTok, proceeds.Sub(half), swapped)
	if err != nil {
		return err
	}
	f.logger.Info().Int("addIndex", addIndex).Int("removeIndex", removeIndex).
		Str("liquidity", removeLiquidity.String()).Msg("rebalanced")
	return nil
}

// SetSwapPath routes future swaps between tokenIn and tokenOut through the
// given venue. The route is directional.
func (f *Fund) SetSwapPath(caller types.Address, tokenIn, tokenOut types.Address, path SwapPath) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.onlyController(caller); err != nil {
		return err
	}
	f.paths[pathKey{in: tokenIn, out: tokenOut}] = path
	return nil
}

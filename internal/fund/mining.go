/*

External liquidity-mining. The fund stakes its pair LP into per-pair reward
programs and harvests the reward token into its own balance. Because the
reward accrues to the fund as a whole, a per-account debt ledger keeps shares
minted after an accrual from claiming it: debt is assigned at mint and netted
back out when the shares burn.

*/

package fund

import (
	sdkmath "cosmossdk.io/math"

	"github.com/HotpotFunds/HotpotFunds/internal/amm"
	"github.com/HotpotFunds/HotpotFunds/internal/staking"
	"github.com/HotpotFunds/HotpotFunds/internal/types"
	"github.com/HotpotFunds/HotpotFunds/internal/utils"
)

// SetUNIPool wires the mining program for one pair and grants it a standing
// allowance over the pair's LP.
func (f *Fund) SetUNIPool(caller types.Address, pairAddr types.Address, pool *staking.StakingRewards) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.onlyController(caller); err != nil {
		return err
	}
	pair := f.pairByAddress(pairAddr)
	if pair == nil {
		return types.ErrPairNotExist
	}
	if err := pair.Approve(f.addr, pool.Address(), utils.MaxUint256); err != nil {
		return err
	}
	f.uniPools[pairAddr] = pool
	return nil
}

// MineUNI harvests the pair's accrued mining reward and stakes any LP the fund
// holds for it. A pair with no program configured is a no-op.
func (f *Fund) MineUNI(caller types.Address, pairAddr types.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.onlyController(caller); err != nil {
		return err
	}
	return f.mine(pairAddr)
}

// MineUNIAll runs MineUNI over every active pair.
func (f *Fund) MineUNIAll(caller types.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.onlyController(caller); err != nil {
		return err
	}
	baseAddr := f.base.Token().Address()
	for i := range f.pools {
		pair := f.factory.GetPair(baseAddr, f.pools[i].Token.Address())
		if err := f.mine(pair.Address()); err != nil {
			return err
		}
	}
	return nil
}

func (f *Fund) mine(pairAddr types.Address) error {
	pool := f.uniPools[pairAddr]
	if pool == nil {
		return nil
	}
	if _, err := pool.GetReward(f.addr); err != nil {
		return err
	}
	pair := f.pairByAddress(pairAddr)
	held := pair.BalanceOf(f.addr)
	if held.IsPositive() {
		return pool.Stake(f.addr, held)
	}
	return nil
}

func (f *Fund) pairByAddress(addr types.Address) *amm.Pair {
	for _, pair := range f.factory.AllPairs() {
		if pair.Address() == addr {
			return pair
		}
	}
	return nil
}

// StakingLPOf is the LP the fund has staked in the pair's mining program.
func (f *Fund) StakingLPOf(pairAddr types.Address) sdkmath.Int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stakingLP(pairAddr)
}

func (f *Fund) stakingLP(pairAddr types.Address) sdkmath.Int {
	if pool := f.uniPools[pairAddr]; pool != nil {
		return pool.BalanceOf(f.addr)
	}
	return sdkmath.ZeroInt()
}

func (f *Fund) DebtOf(account types.Address) sdkmath.Int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.debtOf(account)
}

func (f *Fund) TotalDebts() sdkmath.Int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.totalDebts
}

// TotalUNIRewards is the mining reward already harvested plus what the mining
// programs would currently pay out.
func (f *Fund) TotalUNIRewards() sdkmath.Int {
	f.mu.Lock()
	defer f.mu.Unlock()
	sum := f.uni.BalanceOf(f.addr)
	for _, pool := range f.uniPools {
		sum = sum.Add(pool.Earned(f.addr))
	}
	return sum
}

// UNIRewardsOf is the account's net claim on the harvested mining reward: its
// pro-rata slice of the harvested-plus-debt total, minus its carried debt.
func (f *Fund) UNIRewardsOf(account types.Address) sdkmath.Int {
	f.mu.Lock()
	defer f.mu.Unlock()
	totalSupply := f.Token.TotalSupply()
	if !totalSupply.IsPositive() {
		return sdkmath.ZeroInt()
	}
	claim := f.totalDebts.Add(f.uni.BalanceOf(f.addr)).
		Mul(f.Token.BalanceOf(account)).Quo(totalSupply).
		Sub(f.debtOf(account))
	if claim.IsNegative() {
		return sdkmath.ZeroInt()
	}
	return claim
}

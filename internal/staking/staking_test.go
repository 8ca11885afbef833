package staking

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/HotpotFunds/HotpotFunds/internal/token"
	"github.com/HotpotFunds/HotpotFunds/internal/types"
	"github.com/HotpotFunds/HotpotFunds/internal/utils"
)

const (
	deployer  = types.Address("0xdeployer")
	depositor = types.Address("0xdepositor")
	trader    = types.Address("0xtrader")
	poolAddr  = types.Address("0xstakingrewards")
)

const rewardsDuration = int64(30)

var initRewardsAmount = utils.ExpandTo18Decimals(15 * 1e4)

type world struct {
	log     *types.EventLog
	clock   *types.ManualClock
	rewards *token.Token
	shares  *token.Token
	pool    *StakingRewards
}

func newWorld(t *testing.T, duration int64) *world {
	t.Helper()
	log := types.NewEventLog()
	clock := types.NewManualClock(1_000_000)
	rewards := token.New(log, "0xhotpot", "HotPot", "HOT", 18)
	shares := token.New(log, "0xhpt", "Hotpot V1", "HPT-V1", 18)
	pool := New(log, clock, poolAddr, deployer, rewards, shares, duration)

	rewards.Mint(deployer, initRewardsAmount.Mul(sdkmath.NewInt(10)))
	shares.Mint(depositor, utils.ExpandTo18Decimals(2000))
	shares.Mint(trader, utils.ExpandTo18Decimals(2000))
	require.NoError(t, shares.Approve(depositor, poolAddr, utils.MaxUint256))
	require.NoError(t, shares.Approve(trader, poolAddr, utils.MaxUint256))
	return &world{log: log, clock: clock, rewards: rewards, shares: shares, pool: pool}
}

func (w *world) fund(t *testing.T, amount sdkmath.Int) {
	t.Helper()
	require.NoError(t, w.rewards.Transfer(deployer, poolAddr, amount))
	require.NoError(t, w.pool.NotifyRewardAmount(deployer, amount))
}

func TestInitStatus(t *testing.T) {
	w := newWorld(t, rewardsDuration)
	p := w.pool

	require.Equal(t, types.Address("0xhotpot"), p.RewardsToken())
	require.Equal(t, types.Address("0xhpt"), p.StakingToken())
	require.EqualValues(t, 0, p.PeriodFinish())
	require.True(t, p.RewardRate().IsZero())
	require.Equal(t, rewardsDuration, p.RewardsDuration())
	require.EqualValues(t, 0, p.LastUpdateTime())
	require.True(t, p.RewardPerTokenStored().IsZero())
	require.True(t, p.UserRewardPerTokenPaid(depositor).IsZero())
	require.True(t, p.Rewards(depositor).IsZero())
	require.True(t, p.TotalSupply().IsZero())
	require.True(t, p.BalanceOf(depositor).IsZero())
	require.EqualValues(t, 0, p.LastTimeRewardApplicable())
	require.True(t, p.RewardPerToken().IsZero())
	require.True(t, p.Earned(depositor).IsZero())
	require.True(t, p.GetRewardForDuration().IsZero())
}

func TestNotifyRewardAmount(t *testing.T) {
	w := newWorld(t, rewardsDuration)
	require.NoError(t, w.rewards.Transfer(deployer, poolAddr, initRewardsAmount))

	// Non-RewardsDistribution operation
	err := w.pool.NotifyRewardAmount(depositor, initRewardsAmount)
	require.EqualError(t, err, "Caller is not RewardsDistribution contract")

	cursor := w.log.Len()
	now := w.clock.Now()
	require.NoError(t, w.pool.NotifyRewardAmount(deployer, initRewardsAmount))

	expectedRate := initRewardsAmount.Quo(sdkmath.NewInt(rewardsDuration))
	require.True(t, w.pool.RewardRate().Equal(expectedRate))
	require.Equal(t, now+rewardsDuration, w.pool.PeriodFinish())
	require.Equal(t, now, w.pool.LastUpdateTime())
	require.True(t, w.pool.GetRewardForDuration().Equal(expectedRate.Mul(sdkmath.NewInt(rewardsDuration))))

	events := w.log.Since(cursor)
	require.Len(t, events, 1)
	require.Equal(t, types.EventRewardAdded, events[0].Name)
	require.Equal(t, []any{initRewardsAmount}, events[0].Args)
}

func TestNotifyRollsLeftoverForward(t *testing.T) {
	w := newWorld(t, rewardsDuration)
	w.fund(t, initRewardsAmount)
	rate := w.pool.RewardRate()

	// midway through the live period the leftover rolls into the new rate
	w.clock.Advance(rewardsDuration / 2)
	now := w.clock.Now()
	remaining := w.pool.PeriodFinish() - now
	leftover := sdkmath.NewInt(remaining).Mul(rate)

	w.fund(t, initRewardsAmount)
	expectedRate := initRewardsAmount.Add(leftover).Quo(sdkmath.NewInt(rewardsDuration))
	require.True(t, w.pool.RewardRate().Equal(expectedRate))
	require.Equal(t, now+rewardsDuration, w.pool.PeriodFinish())
}

func TestStakeZeroAndWithdrawZero(t *testing.T) {
	w := newWorld(t, rewardsDuration)
	err := w.pool.Stake(depositor, sdkmath.ZeroInt())
	require.EqualError(t, err, "Cannot stake 0")
	err = w.pool.Withdraw(depositor, sdkmath.ZeroInt())
	require.EqualError(t, err, "Cannot withdraw 0")
}

func TestStakeWithdrawEvents(t *testing.T) {
	w := newWorld(t, rewardsDuration)
	stakeAmount := utils.ExpandTo18Decimals(100)

	cursor := w.log.Len()
	require.NoError(t, w.pool.Stake(depositor, stakeAmount))
	require.True(t, w.pool.TotalSupply().Equal(stakeAmount))
	require.True(t, w.pool.BalanceOf(depositor).Equal(stakeAmount))
	require.True(t, w.shares.BalanceOf(poolAddr).Equal(stakeAmount))

	staked := w.log.Since(cursor)
	require.Equal(t, types.EventTransfer, staked[0].Name)
	require.Equal(t, []any{depositor, poolAddr, stakeAmount}, staked[0].Args)
	require.Equal(t, types.EventStaked, staked[1].Name)
	require.Equal(t, []any{depositor, stakeAmount}, staked[1].Args)

	// withdraw over balance fails atomically
	require.Error(t, w.pool.Withdraw(depositor, stakeAmount.Add(sdkmath.OneInt())))
	require.True(t, w.pool.BalanceOf(depositor).Equal(stakeAmount))

	cursor = w.log.Len()
	half := stakeAmount.Quo(sdkmath.NewInt(2))
	require.NoError(t, w.pool.Withdraw(depositor, half))
	events := w.log.Since(cursor)
	require.Equal(t, types.EventTransfer, events[0].Name)
	require.Equal(t, []any{poolAddr, depositor, half}, events[0].Args)
	require.Equal(t, types.EventWithdrawn, events[1].Name)
	require.Equal(t, []any{depositor, half}, events[1].Args)
}

func TestSingleStakerFullPeriodConservation(t *testing.T) {
	w := newWorld(t, rewardsDuration)
	stakeAmount := utils.ExpandTo18Decimals(100)
	require.NoError(t, w.pool.Stake(depositor, stakeAmount))
	w.fund(t, initRewardsAmount)

	w.clock.Advance(rewardsDuration + 5)

	cursor := w.log.Len()
	paid, err := w.pool.GetReward(depositor)
	require.NoError(t, err)

	// payout is the full funding up to integer-truncation loss,
	// strictly less than one unit per second of the period
	loss := initRewardsAmount.Sub(paid)
	require.False(t, loss.IsNegative())
	require.True(t, loss.LT(sdkmath.NewInt(rewardsDuration)))

	events := w.log.Since(cursor)
	require.Equal(t, types.EventTransfer, events[0].Name)
	require.Equal(t, []any{poolAddr, depositor, paid}, events[0].Args)
	require.Equal(t, types.EventRewardPaid, events[1].Name)
	require.Equal(t, []any{depositor, paid}, events[1].Args)

	// settled to zero: a second claim pays nothing and emits nothing
	cursor = w.log.Len()
	paid, err = w.pool.GetReward(depositor)
	require.NoError(t, err)
	require.True(t, paid.IsZero())
	require.Empty(t, w.log.Since(cursor))
}

func TestTwoStakerMidpointSplit(t *testing.T) {
	duration := int64(100)
	w := newWorld(t, duration)
	rewardsAmount := utils.ExpandTo18Decimals(1000) // rate = 10e18/s exactly
	stakeAmount := utils.ExpandTo18Decimals(100)

	require.NoError(t, w.pool.Stake(depositor, stakeAmount))
	w.fund(t, rewardsAmount)
	rate := w.pool.RewardRate()

	w.clock.Advance(duration / 2)
	require.NoError(t, w.pool.Stake(trader, stakeAmount))
	w.clock.Advance(duration / 2)

	one := utils.ExpandTo18Decimals(1)
	// accumulator arithmetic, integer floor at every step
	rptMid := sdkmath.NewInt(duration / 2).Mul(rate).Mul(one).Quo(stakeAmount)
	rptEnd := rptMid.Add(sdkmath.NewInt(duration / 2).Mul(rate).Mul(one).Quo(stakeAmount.MulRaw(2)))
	require.True(t, w.pool.RewardPerToken().Equal(rptEnd))

	earnedA := stakeAmount.Mul(rptEnd).Quo(one)
	earnedB := stakeAmount.Mul(rptEnd.Sub(rptMid)).Quo(one)
	require.True(t, w.pool.Earned(depositor).Equal(earnedA))
	require.True(t, w.pool.Earned(trader).Equal(earnedB))

	// the remaining window's emission splits exactly in half
	halfWindow := sdkmath.NewInt(duration / 2).Mul(rate)
	require.True(t, earnedB.Equal(halfWindow.Quo(sdkmath.NewInt(2))))
	require.True(t, earnedA.Equal(halfWindow.Add(halfWindow.Quo(sdkmath.NewInt(2)))))
}

func TestRewardPerTokenMonotonic(t *testing.T) {
	w := newWorld(t, rewardsDuration)
	last := w.pool.RewardPerTokenStored()

	step := func() {
		current := w.pool.RewardPerTokenStored()
		require.False(t, current.LT(last))
		last = current
	}

	require.NoError(t, w.pool.Stake(depositor, utils.ExpandTo18Decimals(10)))
	step()
	w.fund(t, initRewardsAmount)
	step()
	w.clock.Advance(3)
	require.NoError(t, w.pool.Stake(trader, utils.ExpandTo18Decimals(7)))
	step()
	w.clock.Advance(5)
	require.NoError(t, w.pool.Withdraw(depositor, utils.ExpandTo18Decimals(4)))
	step()
	w.clock.Advance(11)
	w.fund(t, initRewardsAmount)
	step()
	w.clock.Advance(60)
	_, err := w.pool.GetReward(trader)
	require.NoError(t, err)
	step()
}

func TestExit(t *testing.T) {
	w := newWorld(t, rewardsDuration)
	stakeAmount := utils.ExpandTo18Decimals(50)
	require.NoError(t, w.pool.Stake(depositor, stakeAmount))
	w.fund(t, initRewardsAmount)
	w.clock.Advance(rewardsDuration)

	cursor := w.log.Len()
	require.NoError(t, w.pool.Exit(depositor))
	require.True(t, w.pool.BalanceOf(depositor).IsZero())
	require.True(t, w.pool.TotalSupply().IsZero())
	require.True(t, w.shares.BalanceOf(depositor).Equal(utils.ExpandTo18Decimals(2000)))

	var names []string
	for _, ev := range w.log.Since(cursor) {
		names = append(names, ev.Name)
	}
	require.Equal(t, []string{
		types.EventTransfer, types.EventWithdrawn,
		types.EventTransfer, types.EventRewardPaid,
	}, names)

	// exiting with no stake fails
	err := w.pool.Exit(depositor)
	require.EqualError(t, err, "Cannot withdraw 0")
}

func TestNotifyZeroRateRejected(t *testing.T) {
	// a nonzero amount that truncates to a zero rate must not silently no-op
	w := newWorld(t, 1000)
	require.NoError(t, w.rewards.Transfer(deployer, poolAddr, sdkmath.NewInt(5)))
	err := w.pool.NotifyRewardAmount(deployer, sdkmath.NewInt(5))
	require.ErrorIs(t, err, types.ErrRewardTooLow)
	require.True(t, w.pool.RewardRate().IsZero())
	require.EqualValues(t, 0, w.pool.PeriodFinish())
}

/*

Reward accrual math. StreamState carries one reward stream; the functions here
are pure over it and the staked totals handed in. All divisions truncate; the
floor loss stays in the pool and is never distributed.

*/

package staking

import (
	sdkmath "cosmossdk.io/math"

	"github.com/HotpotFunds/HotpotFunds/internal/types"
	"github.com/HotpotFunds/HotpotFunds/internal/utils"
)

// precision scales the reward-per-token accumulator.
var precision = utils.ExpandTo18Decimals(1)

// StreamState is one reward stream: rate, accumulator, and per-account
// settlement markers.
type StreamState struct {
	RewardRate           sdkmath.Int
	RewardPerTokenStored sdkmath.Int
	LastUpdateTime       int64
	PeriodFinish         int64
	RewardsDuration      int64

	UserRewardPerTokenPaid map[types.Address]sdkmath.Int
	Rewards                map[types.Address]sdkmath.Int
}

func NewStreamState(rewardsDuration int64) *StreamState {
	return &StreamState{
		RewardRate:             sdkmath.ZeroInt(),
		RewardPerTokenStored:   sdkmath.ZeroInt(),
		RewardsDuration:        rewardsDuration,
		UserRewardPerTokenPaid: make(map[types.Address]sdkmath.Int),
		Rewards:                make(map[types.Address]sdkmath.Int),
	}
}

func (s *StreamState) paid(account types.Address) sdkmath.Int {
	if v, ok := s.UserRewardPerTokenPaid[account]; ok {
		return v
	}
	return sdkmath.ZeroInt()
}

func (s *StreamState) reward(account types.Address) sdkmath.Int {
	if v, ok := s.Rewards[account]; ok {
		return v
	}
	return sdkmath.ZeroInt()
}

// LastTimeRewardApplicable clamps now to the end of the funding period.
func LastTimeRewardApplicable(s *StreamState, now int64) int64 {
	if s.PeriodFinish < now {
		return s.PeriodFinish
	}
	return now
}

// RewardPerToken extends the stored accumulator to now. With nothing staked
// the accumulator stands still.
func RewardPerToken(s *StreamState, totalStaked sdkmath.Int, now int64) sdkmath.Int {
	if totalStaked.IsZero() {
		return s.RewardPerTokenStored
	}
	elapsed := LastTimeRewardApplicable(s, now) - s.LastUpdateTime
	accrued := sdkmath.NewInt(elapsed).Mul(s.RewardRate).Mul(precision).Quo(totalStaked)
	return s.RewardPerTokenStored.Add(accrued)
}

// Earned is the account's settled rewards plus what its balance has accrued
// since its last settlement marker.
func Earned(s *StreamState, account types.Address, balance, totalStaked sdkmath.Int, now int64) sdkmath.Int {
	delta := RewardPerToken(s, totalStaked, now).Sub(s.paid(account))
	return balance.Mul(delta).Quo(precision).Add(s.reward(account))
}

// Settle rolls the accumulator forward and, when account is non-zero, settles
// that account against it. Must run with pre-mutation balances as the first
// step of every state-mutating staking operation.
func Settle(s *StreamState, account types.Address, balance, totalStaked sdkmath.Int, now int64) {
	s.RewardPerTokenStored = RewardPerToken(s, totalStaked, now)
	s.LastUpdateTime = LastTimeRewardApplicable(s, now)
	if account != "" {
		s.Rewards[account] = Earned(s, account, balance, totalStaked, now)
		s.UserRewardPerTokenPaid[account] = s.RewardPerTokenStored
	}
}

// NotifyRewardAmount folds amount into the stream, rolling any undistributed
// remainder of a live period forward, and restarts the period at now. The
// caller must have settled the stream (no account) first. A nonzero amount
// that truncates to a zero rate is a precondition violation.
func NotifyRewardAmount(s *StreamState, amount sdkmath.Int, now int64) error {
	duration := sdkmath.NewInt(s.RewardsDuration)
	var newRate sdkmath.Int
	if now >= s.PeriodFinish {
		newRate = amount.Quo(duration)
	} else {
		remaining := sdkmath.NewInt(s.PeriodFinish - now)
		leftover := remaining.Mul(s.RewardRate)
		newRate = amount.Add(leftover).Quo(duration)
	}
	if newRate.IsZero() && amount.IsPositive() {
		return types.ErrRewardTooLow
	}
	s.RewardRate = newRate
	s.LastUpdateTime = now
	s.PeriodFinish = now + s.RewardsDuration
	return nil
}

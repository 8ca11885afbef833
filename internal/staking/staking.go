/*

StakingRewards pool: stakers deposit the staking token and a reward token
streams to them continuously at the funded rate. Every mutating operation
settles the stream with pre-mutation balances before touching them. The same
type serves both the fund-share staking pools and the external mining programs
the funds farm.

*/

package staking

import (
	"sync"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/HotpotFunds/HotpotFunds/internal/logger"
	"github.com/HotpotFunds/HotpotFunds/internal/token"
	"github.com/HotpotFunds/HotpotFunds/internal/types"
)

type StakingRewards struct {
	mu sync.Mutex

	addr                types.Address
	rewardsDistribution types.Address
	rewardsToken        *token.Token
	stakingToken        *token.Token

	totalSupply sdkmath.Int
	balances    map[types.Address]sdkmath.Int
	state       *StreamState

	clock  types.Clock
	log    *types.EventLog
	logger zerolog.Logger
}

func New(log *types.EventLog, clock types.Clock, addr, rewardsDistribution types.Address,
	rewardsToken, stakingToken *token.Token, rewardsDuration int64) *StakingRewards {
	return &StakingRewards{
		addr:                addr,
		rewardsDistribution: rewardsDistribution,
		rewardsToken:        rewardsToken,
		stakingToken:        stakingToken,
		totalSupply:         sdkmath.ZeroInt(),
		balances:            make(map[types.Address]sdkmath.Int),
		state:               NewStreamState(rewardsDuration),
		clock:               clock,
		log:                 log,
		logger:              logger.GetForComponent("staking_rewards").With().Str("pool", string(addr)).Logger(),
	}
}

func (s *StakingRewards) Address() types.Address      { return s.addr }
func (s *StakingRewards) RewardsToken() types.Address { return s.rewardsToken.Address() }
func (s *StakingRewards) StakingToken() types.Address { return s.stakingToken.Address() }

func (s *StakingRewards) TotalSupply() sdkmath.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalSupply
}

func (s *StakingRewards) BalanceOf(account types.Address) sdkmath.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balanceOf(account)
}

func (s *StakingRewards) balanceOf(account types.Address) sdkmath.Int {
	if b, ok := s.balances[account]; ok {
		return b
	}
	return sdkmath.ZeroInt()
}

func (s *StakingRewards) PeriodFinish() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.PeriodFinish
}

func (s *StakingRewards) RewardRate() sdkmath.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.RewardRate
}

func (s *StakingRewards) RewardsDuration() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.RewardsDuration
}

func (s *StakingRewards) LastUpdateTime() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.LastUpdateTime
}

func (s *StakingRewards) RewardPerTokenStored() sdkmath.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.RewardPerTokenStored
}

func (s *StakingRewards) UserRewardPerTokenPaid(account types.Address) sdkmath.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.paid(account)
}

func (s *StakingRewards) Rewards(account types.Address) sdkmath.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.reward(account)
}

func (s *StakingRewards) LastTimeRewardApplicable() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return LastTimeRewardApplicable(s.state, s.clock.Now())
}

func (s *StakingRewards) RewardPerToken() sdkmath.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return RewardPerToken(s.state, s.totalSupply, s.clock.Now())
}

// Earned is the account's claimable reward at the current clock. It equals
// exactly what the next state-mutating call will settle.
func (s *StakingRewards) Earned(account types.Address) sdkmath.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Earned(s.state, account, s.balanceOf(account), s.totalSupply, s.clock.Now())
}

func (s *StakingRewards) GetRewardForDuration() sdkmath.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.RewardRate.Mul(sdkmath.NewInt(s.state.RewardsDuration))
}

// Stake moves amount of the staking token from caller into the pool.
func (s *StakingRewards) Stake(caller types.Address, amount sdkmath.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !amount.IsPositive() {
		return types.ErrCannotStakeZero
	}
	if err := s.stakingToken.TransferFrom(s.addr, caller, s.addr, amount); err != nil {
		return err
	}
	Settle(s.state, caller, s.balanceOf(caller), s.totalSupply, s.clock.Now())
	s.totalSupply = s.totalSupply.Add(amount)
	s.balances[caller] = s.balanceOf(caller).Add(amount)
	s.log.Emit(s.addr, types.EventStaked, caller, amount)
	s.logger.Debug().Str("account", string(caller)).Str("amount", amount.String()).Msg("staked")
	return nil
}

// Withdraw returns amount of the staking token to caller.
func (s *StakingRewards) Withdraw(caller types.Address, amount sdkmath.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.withdraw(caller, amount)
}

func (s *StakingRewards) withdraw(caller types.Address, amount sdkmath.Int) error {
	if !amount.IsPositive() {
		return types.ErrCannotWithdrawZero
	}
	if s.balanceOf(caller).LT(amount) {
		return types.ErrNotEnoughBalance
	}
	Settle(s.state, caller, s.balanceOf(caller), s.totalSupply, s.clock.Now())
	s.totalSupply = s.totalSupply.Sub(amount)
	s.balances[caller] = s.balanceOf(caller).Sub(amount)
	if err := s.stakingToken.Transfer(s.addr, caller, amount); err != nil {
		return err
	}
	s.log.Emit(s.addr, types.EventWithdrawn, caller, amount)
	return nil
}

// GetReward pays out the caller's settled reward, if any. A zero reward pays
// and emits nothing.
func (s *StakingRewards) GetReward(caller types.Address) (sdkmath.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getReward(caller)
}

func (s *StakingRewards) getReward(caller types.Address) (sdkmath.Int, error) {
	Settle(s.state, caller, s.balanceOf(caller), s.totalSupply, s.clock.Now())
	reward := s.state.reward(caller)
	if !reward.IsPositive() {
		return sdkmath.ZeroInt(), nil
	}
	s.state.Rewards[caller] = sdkmath.ZeroInt()
	if err := s.rewardsToken.Transfer(s.addr, caller, reward); err != nil {
		return sdkmath.ZeroInt(), err
	}
	s.log.Emit(s.addr, types.EventRewardPaid, caller, reward)
	s.logger.Debug().Str("account", string(caller)).Str("reward", reward.String()).Msg("reward paid")
	return reward, nil
}

// Exit withdraws the caller's whole stake and pays the reward in one step
// with a single settlement.
func (s *StakingRewards) Exit(caller types.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.withdraw(caller, s.balanceOf(caller)); err != nil {
		return err
	}
	_, err := s.getReward(caller)
	return err
}

// NotifyRewardAmount funds the stream. Restricted to the designated rewards
// distributor; the reward tokens must already sit in the pool.
func (s *StakingRewards) NotifyRewardAmount(caller types.Address, amount sdkmath.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller != s.rewardsDistribution {
		return types.ErrNotDistributor
	}
	now := s.clock.Now()
	Settle(s.state, "", sdkmath.ZeroInt(), s.totalSupply, now)
	if err := NotifyRewardAmount(s.state, amount, now); err != nil {
		return err
	}
	s.log.Emit(s.addr, types.EventRewardAdded, amount)
	s.logger.Info().Str("amount", amount.String()).Int64("periodFinish", s.state.PeriodFinish).Msg("reward stream funded")
	return nil
}

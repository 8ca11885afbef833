package types

import "errors"

// Error reasons returned by the fund system. The exact text is part of the
// external contract: callers and tests match on it.
var (
	ErrOnlyManager         = errors.New("Only called by Manager.")
	ErrOnlyGovernance      = errors.New("Only called by Governance.")
	ErrOnlyController      = errors.New("Only called by Controller.")
	ErrNotTrusted          = errors.New("The token is not trusted.")
	ErrPairNotExist        = errors.New("Pair not exist.")
	ErrAddPairRepeatedly   = errors.New("Add pair repeatedly.")
	ErrPairsEmpty          = errors.New("Pairs is empty.")
	ErrNotEnoughBalance    = errors.New("Not enough balance.")
	ErrProportionIndex     = errors.New("Proportions index out of range.")
	ErrErrorProportion     = errors.New("Error proportion.")
	ErrPairsIndex          = errors.New("Pairs index out of range.")
	ErrNotEnoughLiquidity  = errors.New("Not enough liquidity.")
	ErrNotEnoughProportion = errors.New("Not enough proportion.")

	ErrCannotStakeZero    = errors.New("Cannot stake 0")
	ErrCannotWithdrawZero = errors.New("Cannot withdraw 0")
	ErrNotDistributor     = errors.New("Caller is not RewardsDistribution contract")
	ErrRewardTooLow       = errors.New("Provided reward too low")
)

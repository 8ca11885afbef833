/*

Simulation world: a fully wired deployment of the whole system in one process.
Tokens, seeded AMM pairs, the stable venue, the controller, one fund per base
asset, share-staking pools, and the external mining programs, all sharing one
event log and one clock. Tests and the daemon both start from here.

*/

package sim

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/HotpotFunds/HotpotFunds/internal/amm"
	"github.com/HotpotFunds/HotpotFunds/internal/controller"
	"github.com/HotpotFunds/HotpotFunds/internal/curve"
	"github.com/HotpotFunds/HotpotFunds/internal/fund"
	"github.com/HotpotFunds/HotpotFunds/internal/staking"
	"github.com/HotpotFunds/HotpotFunds/internal/token"
	"github.com/HotpotFunds/HotpotFunds/internal/types"
	"github.com/HotpotFunds/HotpotFunds/internal/utils"
)

// Deployer holds the initial token supplies, seeds the pairs, and is both
// manager and governance until the roles are handed off.
const Deployer = types.Address("0xdeployer")

// Seeding amounts: every pair starts at 10k USD a side with ETH at 1000 USD.
var (
	initTestTokenAmount18 = utils.ExpandTo18Decimals(1000 * 1e4)
	initTestTokenAmount6  = utils.ExpandTo6Decimals(1000 * 1e4)
	initPairAmount18      = utils.ExpandTo18Decimals(1e4)
	initPairAmount6       = utils.ExpandTo6Decimals(1e4)
	initPairAmountETH     = utils.ExpandTo18Decimals(10)

	// InitStakeRewardsAmount is the standard funding of one mining program.
	InitStakeRewardsAmount = utils.ExpandTo18Decimals(15 * 1e4)
)

type World struct {
	Log   *types.EventLog
	Clock types.Clock

	Ether  *token.Token
	WETH   *token.WETH
	DAI    *token.Token
	USDC   *token.Token
	USDT   *token.Token
	UNI    *token.Token
	HotPot *token.Token

	Curve   *curve.Pool
	Factory *amm.Factory
	Router  *amm.Router

	Controller *controller.Controller

	FundDAI  *fund.Fund
	FundUSDC *fund.Fund
	FundUSDT *fund.Fund
	FundETH  *fund.Fund

	StakingDAI  *staking.StakingRewards
	StakingUSDC *staking.StakingRewards
	StakingUSDT *staking.StakingRewards
	StakingETH  *staking.StakingRewards

	UNIStakingDAI  *staking.StakingRewards
	UNIStakingUSDC *staking.StakingRewards
	UNIStakingUSDT *staking.StakingRewards
}

// NewWorld deploys and seeds everything. rewardsDuration applies to every
// staking pool and mining program.
func NewWorld(clock types.Clock, rewardsDuration int64) (*World, error) {
	log := types.NewEventLog()
	w := &World{Log: log, Clock: clock}

	w.Ether = token.New(log, "0xether", "Ether", "ETH", 18)
	w.WETH = token.NewWETH(log, "0xweth", w.Ether)
	w.DAI = token.New(log, "0xdai", "DAI", "DAI", 18)
	w.USDC = token.New(log, "0xusdc", "USDC", "USDC", 6)
	w.USDT = token.New(log, "0xusdt", "USDT", "USDT", 6)
	w.UNI = token.New(log, "0xuni", "UNI", "UNI", 18)
	w.HotPot = token.New(log, "0xhotpot", "HotPot", "HOT", 18)

	w.DAI.Mint(Deployer, initTestTokenAmount18)
	w.USDC.Mint(Deployer, initTestTokenAmount6)
	w.USDT.Mint(Deployer, initTestTokenAmount6)
	w.UNI.Mint(Deployer, initTestTokenAmount18)
	w.HotPot.Mint(Deployer, initTestTokenAmount18)
	w.Ether.Mint(Deployer, initTestTokenAmount18.MulRaw(2))
	if err := w.WETH.Deposit(Deployer, initTestTokenAmount18); err != nil {
		return nil, err
	}

	w.Factory = amm.NewFactory(log)
	w.Router = amm.NewRouter(w.Factory)

	w.Curve = curve.NewPool("0xcurve", []*token.Token{w.DAI, w.USDC, w.USDT})
	w.DAI.Mint(w.Curve.Address(), initTestTokenAmount18)
	w.USDC.Mint(w.Curve.Address(), initTestTokenAmount6)
	w.USDT.Mint(w.Curve.Address(), initTestTokenAmount6)

	for _, tok := range []*token.Token{w.DAI, w.USDC, w.USDT, w.UNI, w.HotPot, w.WETH.Token} {
		if err := tok.Approve(Deployer, w.Router.Address(), utils.MaxUint256); err != nil {
			return nil, err
		}
	}

	// the ten seeded pairs: every stable and the protocol token against ETH
	// and against each other
	for _, tok := range []*token.Token{w.DAI, w.USDC, w.USDT, w.HotPot} {
		if err := w.seedPair(tok, w.WETH.Token); err != nil {
			return nil, err
		}
	}
	stables := []*token.Token{w.DAI, w.USDC, w.USDT, w.HotPot}
	for i := 0; i < len(stables); i++ {
		for j := i + 1; j < len(stables); j++ {
			if err := w.seedPair(stables[i], stables[j]); err != nil {
				return nil, err
			}
		}
	}

	w.UNIStakingDAI = w.newMiningProgram(w.DAI, rewardsDuration)
	w.UNIStakingUSDC = w.newMiningProgram(w.USDC, rewardsDuration)
	w.UNIStakingUSDT = w.newMiningProgram(w.USDT, rewardsDuration)

	w.Controller = controller.New(log, "0xcontroller", w.HotPot, Deployer, Deployer, w.Factory, w.Router)
	for _, tok := range []*token.Token{w.WETH.Token, w.DAI, w.USDC, w.USDT, w.HotPot} {
		if err := w.Controller.SetTrustedToken(Deployer, tok.Address(), true); err != nil {
			return nil, err
		}
	}

	newFund := func(addr types.Address, base fund.BaseAsset, stable *curve.Pool) *fund.Fund {
		return fund.New(log, addr, base, w.Controller.Address(), w.Factory, w.Router, stable, w.UNI)
	}
	w.FundDAI = newFund("0xfund/dai", fund.NewERC20Base(w.DAI, "0xfund/dai"), w.Curve)
	w.FundUSDC = newFund("0xfund/usdc", fund.NewERC20Base(w.USDC, "0xfund/usdc"), w.Curve)
	w.FundUSDT = newFund("0xfund/usdt", fund.NewERC20Base(w.USDT, "0xfund/usdt"), w.Curve)
	w.FundETH = newFund("0xfund/eth", fund.NewNativeBase(w.WETH, w.Ether, "0xfund/eth"), nil)

	newStaking := func(addr types.Address, f *fund.Fund) *staking.StakingRewards {
		return staking.New(log, clock, addr, Deployer, w.HotPot, f.Token, rewardsDuration)
	}
	w.StakingDAI = newStaking("0xstaking/dai", w.FundDAI)
	w.StakingUSDC = newStaking("0xstaking/usdc", w.FundUSDC)
	w.StakingUSDT = newStaking("0xstaking/usdt", w.FundUSDT)
	w.StakingETH = newStaking("0xstaking/eth", w.FundETH)

	return w, nil
}

// seedPair creates the pair and supplies the standard initial liquidity.
func (w *World) seedPair(a, b *token.Token) error {
	if _, err := w.Factory.CreatePair(a, b); err != nil {
		return err
	}
	amountFor := func(t *token.Token) sdkmath.Int {
		if t == w.WETH.Token {
			return initPairAmountETH
		}
		if t.Decimals() == 18 {
			return initPairAmount18
		}
		return initPairAmount6
	}
	_, err := w.Router.AddLiquidity(Deployer, a, b, amountFor(a), amountFor(b))
	return err
}

func (w *World) newMiningProgram(tok *token.Token, rewardsDuration int64) *staking.StakingRewards {
	pair := w.Factory.GetPair(w.WETH.Address(), tok.Address())
	addr := types.Address(fmt.Sprintf("0xunistaking/%s", tok.Denom()))
	return staking.New(w.Log, w.Clock, addr, Deployer, w.UNI, pair.Token, rewardsDuration)
}

// MiningProgramFor returns the mining program deployed for the pair of tok
// against ETH, or nil.
func (w *World) MiningProgramFor(tok *token.Token) *staking.StakingRewards {
	switch tok {
	case w.DAI:
		return w.UNIStakingDAI
	case w.USDC:
		return w.UNIStakingUSDC
	case w.USDT:
		return w.UNIStakingUSDT
	}
	return nil
}

// FundMiningProgram transfers the standard reward amount into the program and
// starts its stream.
func (w *World) FundMiningProgram(p *staking.StakingRewards) error {
	if err := w.UNI.Transfer(Deployer, p.Address(), InitStakeRewardsAmount); err != nil {
		return err
	}
	return p.NotifyRewardAmount(Deployer, InitStakeRewardsAmount)
}

// Funds returns every deployed fund keyed by base-asset symbol.
func (w *World) Funds() map[string]*fund.Fund {
	return map[string]*fund.Fund{
		"DAI":  w.FundDAI,
		"USDC": w.FundUSDC,
		"USDT": w.FundUSDT,
		"ETH":  w.FundETH,
	}
}

// StakingPools returns every share-staking pool keyed by base-asset symbol.
func (w *World) StakingPools() map[string]*staking.StakingRewards {
	return map[string]*staking.StakingRewards{
		"DAI":  w.StakingDAI,
		"USDC": w.StakingUSDC,
		"USDT": w.StakingUSDT,
		"ETH":  w.StakingETH,
	}
}

// MintTo credits a depositor with test balance of tok; native value for the
// ether ledger, a plain mint otherwise.
func (w *World) MintTo(tok *token.Token, account types.Address, amount sdkmath.Int) {
	tok.Mint(account, amount)
}

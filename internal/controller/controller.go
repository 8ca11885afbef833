/*

HotPotController: the management surface over the funds. Exactly one manager
(operational actions) and one governance (trust list and mining wiring) address
at a time, each transferable only by its current holder. The controller is the
sole caller the funds accept for pool-management primitives; it is also the fee
sink and runs the buyback-and-burn of the protocol token.

*/

package controller

import (
	"sync"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/HotpotFunds/HotpotFunds/internal/amm"
	"github.com/HotpotFunds/HotpotFunds/internal/fund"
	"github.com/HotpotFunds/HotpotFunds/internal/logger"
	"github.com/HotpotFunds/HotpotFunds/internal/staking"
	"github.com/HotpotFunds/HotpotFunds/internal/token"
	"github.com/HotpotFunds/HotpotFunds/internal/types"
)

type Controller struct {
	mu sync.Mutex

	addr       types.Address
	hotpot     *token.Token
	manager    types.Address
	governance types.Address

	factory *amm.Factory
	router  *amm.Router
	trusted map[types.Address]bool

	log    *types.EventLog
	logger zerolog.Logger
}

func New(log *types.EventLog, addr types.Address, hotpot *token.Token,
	manager, governance types.Address, factory *amm.Factory, router *amm.Router) *Controller {
	return &Controller{
		addr:       addr,
		hotpot:     hotpot,
		manager:    manager,
		governance: governance,
		factory:    factory,
		router:     router,
		trusted:    make(map[types.Address]bool),
		log:        log,
		logger:     logger.GetForComponent("controller"),
	}
}

func (c *Controller) onlyManager(caller types.Address) error {
	if caller != c.manager {
		return types.ErrOnlyManager
	}
	return nil
}

func (c *Controller) onlyGovernance(caller types.Address) error {
	if caller != c.governance {
		return types.ErrOnlyGovernance
	}
	return nil
}

func (c *Controller) Address() types.Address { return c.addr }
func (c *Controller) Hotpot() types.Address  { return c.hotpot.Address() }

func (c *Controller) Manager() types.Address {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.manager
}

func (c *Controller) Governance() types.Address {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.governance
}

func (c *Controller) TrustedToken(addr types.Address) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.trusted[addr]
}

// SetManager hands the manager role to a new address.
func (c *Controller) SetManager(caller, manager types.Address) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.onlyManager(caller); err != nil {
		return err
	}
	c.manager = manager
	c.logger.Info().Str("manager", string(manager)).Msg("manager changed")
	return nil
}

// SetGovernance hands the governance role to a new address.
func (c *Controller) SetGovernance(caller, governance types.Address) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.onlyGovernance(caller); err != nil {
		return err
	}
	c.governance = governance
	c.logger.Info().Str("governance", string(governance)).Msg("governance changed")
	return nil
}

// SetTrustedToken marks a token eligible (or not) for fund allocation.
func (c *Controller) SetTrustedToken(caller, tokenAddr types.Address, trusted bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.onlyGovernance(caller); err != nil {
		return err
	}
	c.trusted[tokenAddr] = trusted
	c.log.Emit(c.addr, types.EventChangeTrustedToken, tokenAddr, trusted)
	return nil
}

// Harvest swaps amountIn of a collected fee token into the protocol token and
// burns the proceeds. Anyone may trigger it; the controller's own balance
// funds the swap.
func (c *Controller) Harvest(tok *token.Token, amountIn sdkmath.Int) (sdkmath.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.factory.PairExists(tok.Address(), c.hotpot.Address()) {
		return sdkmath.ZeroInt(), types.ErrPairNotExist
	}
	if err := tok.Approve(c.addr, c.router.Address(), amountIn); err != nil {
		return sdkmath.ZeroInt(), err
	}
	out, err := c.router.SwapExactTokensFor(c.addr, tok, c.hotpot, amountIn)
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	if err := c.hotpot.Transfer(c.addr, types.ZeroAddress, out.Amount); err != nil {
		return sdkmath.ZeroInt(), err
	}
	c.logger.Info().Str("token", string(tok.Address())).Str("burned", out.Amount.String()).Msg("harvested")
	return out.Amount, nil
}

// AddPool registers an allocation slot with an explicit proportion.
func (c *Controller) AddPool(caller types.Address, f *fund.Fund, tok *token.Token, proportion int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.onlyManager(caller); err != nil {
		return err
	}
	if !c.trusted[tok.Address()] {
		return types.ErrNotTrusted
	}
	return f.AddPool(c.addr, tok, proportion)
}

// AddPair registers an allocation slot without a proportion.
func (c *Controller) AddPair(caller types.Address, f *fund.Fund, tok *token.Token) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.onlyManager(caller); err != nil {
		return err
	}
	if !c.trusted[tok.Address()] {
		return types.ErrNotTrusted
	}
	return f.AddPair(c.addr, tok)
}

func (c *Controller) Invest(caller types.Address, f *fund.Fund, amount sdkmath.Int, proportions []int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.onlyManager(caller); err != nil {
		return err
	}
	return f.Invest(c.addr, amount, proportions)
}

func (c *Controller) AdjustPool(caller types.Address, f *fund.Fund, upIndex, downIndex int, amount int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.onlyManager(caller); err != nil {
		return err
	}
	return f.AdjustPool(c.addr, upIndex, downIndex, amount)
}

func (c *Controller) ReBalance(caller types.Address, f *fund.Fund, addIndex, removeIndex int, removeLiquidity sdkmath.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.onlyManager(caller); err != nil {
		return err
	}
	return f.ReBalance(c.addr, addIndex, removeIndex, removeLiquidity)
}

func (c *Controller) RemovePair(caller types.Address, f *fund.Fund, index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.onlyManager(caller); err != nil {
		return err
	}
	return f.RemovePair(c.addr, index)
}

func (c *Controller) SetSwapPath(caller types.Address, f *fund.Fund, tokenIn, tokenOut types.Address, path fund.SwapPath) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.onlyManager(caller); err != nil {
		return err
	}
	return f.SetSwapPath(c.addr, tokenIn, tokenOut, path)
}

// SetMintingUNIPool wires a pair's external mining program into the fund.
func (c *Controller) SetMintingUNIPool(caller types.Address, f *fund.Fund, pairAddr types.Address, pool *staking.StakingRewards) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.onlyGovernance(caller); err != nil {
		return err
	}
	return f.SetUNIPool(c.addr, pairAddr, pool)
}

// StakeMintingUNI harvests and stakes the fund's LP for one pair.
func (c *Controller) StakeMintingUNI(caller types.Address, f *fund.Fund, pairAddr types.Address) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.onlyManager(caller); err != nil {
		return err
	}
	return f.MineUNI(c.addr, pairAddr)
}

// StakeMintingUNIAll harvests and stakes across every active pair.
func (c *Controller) StakeMintingUNIAll(caller types.Address, f *fund.Fund) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.onlyManager(caller); err != nil {
		return err
	}
	return f.MineUNIAll(c.addr)
}

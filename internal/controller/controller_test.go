package controller_test

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/HotpotFunds/HotpotFunds/internal/sim"
	"github.com/HotpotFunds/HotpotFunds/internal/types"
	"github.com/HotpotFunds/HotpotFunds/internal/utils"
)

const (
	newManager    = types.Address("0xnewmanager")
	newGovernance = types.Address("0xnewgovernance")
	outsider      = types.Address("0xoutsider")
)

func newWorld(t *testing.T) *sim.World {
	t.Helper()
	w, err := sim.NewWorld(types.NewManualClock(1_700_000_000), 60)
	require.NoError(t, err)
	return w
}

func TestInitStatus(t *testing.T) {
	w := newWorld(t)
	c := w.Controller
	require.Equal(t, sim.Deployer, c.Manager())
	require.Equal(t, sim.Deployer, c.Governance())
	require.Equal(t, w.HotPot.Address(), c.Hotpot())
	require.True(t, c.TrustedToken(w.DAI.Address()))
	require.True(t, c.TrustedToken(w.WETH.Address()))
	require.False(t, c.TrustedToken(w.UNI.Address()))
}

func TestSetManager(t *testing.T) {
	w := newWorld(t)
	c := w.Controller

	err := c.SetManager(outsider, outsider)
	require.EqualError(t, err, "Only called by Manager.")

	require.NoError(t, c.SetManager(sim.Deployer, newManager))
	require.Equal(t, newManager, c.Manager())

	// the old manager lost the role along with the power to take it back
	err = c.SetManager(sim.Deployer, sim.Deployer)
	require.EqualError(t, err, "Only called by Manager.")
	require.NoError(t, c.SetManager(newManager, sim.Deployer))
	require.Equal(t, sim.Deployer, c.Manager())
}

func TestSetGovernance(t *testing.T) {
	w := newWorld(t)
	c := w.Controller

	err := c.SetGovernance(outsider, outsider)
	require.EqualError(t, err, "Only called by Governance.")

	require.NoError(t, c.SetGovernance(sim.Deployer, newGovernance))
	require.Equal(t, newGovernance, c.Governance())
	err = c.SetGovernance(sim.Deployer, sim.Deployer)
	require.EqualError(t, err, "Only called by Governance.")
	require.NoError(t, c.SetGovernance(newGovernance, sim.Deployer))
}

func TestSetTrustedToken(t *testing.T) {
	w := newWorld(t)
	c := w.Controller

	err := c.SetTrustedToken(outsider, w.UNI.Address(), true)
	require.EqualError(t, err, "Only called by Governance.")

	cursor := w.Log.Len()
	require.NoError(t, c.SetTrustedToken(sim.Deployer, w.UNI.Address(), true))
	require.True(t, c.TrustedToken(w.UNI.Address()))

	events := w.Log.Since(cursor)
	require.Len(t, events, 1)
	require.Equal(t, c.Address(), events[0].Emitter)
	require.Equal(t, types.EventChangeTrustedToken, events[0].Name)
	require.Equal(t, []any{w.UNI.Address(), true}, events[0].Args)

	require.NoError(t, c.SetTrustedToken(sim.Deployer, w.UNI.Address(), false))
	require.False(t, c.TrustedToken(w.UNI.Address()))
}

func TestHarvest(t *testing.T) {
	w := newWorld(t)
	c := w.Controller

	// no pair against the protocol token
	_, err := c.Harvest(w.UNI, utils.ExpandTo18Decimals(1))
	require.EqualError(t, err, "Pair not exist.")

	// fund the controller as if fees had been collected
	amount := utils.ExpandTo18Decimals(100)
	w.DAI.Mint(c.Address(), amount)

	_, err = c.Harvest(w.DAI, sdkmath.ZeroInt())
	require.Error(t, err)

	pair := w.Factory.GetPair(w.DAI.Address(), w.HotPot.Address())
	reserveIn, reserveOut := pair.GetReserves()
	if pair.Token0() != w.DAI.Address() {
		reserveIn, reserveOut = reserveOut, reserveIn
	}
	expectOut, err := w.Router.GetAmountOut(amount, reserveIn, reserveOut)
	require.NoError(t, err)

	cursor := w.Log.Len()
	burned, err := c.Harvest(w.DAI, amount)
	require.NoError(t, err)
	require.True(t, burned.Equal(expectOut))

	// the proceeds are burned, not kept
	found := false
	for _, ev := range w.Log.Since(cursor) {
		if ev.Emitter == w.HotPot.Address() && ev.Name == types.EventTransfer &&
			ev.Args[0] == c.Address() && ev.Args[1] == types.ZeroAddress {
			found = true
		}
	}
	require.True(t, found)
	require.True(t, w.HotPot.BalanceOf(c.Address()).IsZero())
	require.True(t, w.DAI.BalanceOf(c.Address()).IsZero())
}

func TestManagerGates(t *testing.T) {
	w := newWorld(t)
	c := w.Controller
	f := w.FundDAI
	pair := w.Factory.GetPair(w.DAI.Address(), w.WETH.Address())

	require.EqualError(t, c.AddPool(outsider, f, w.USDC, 100), "Only called by Manager.")
	require.EqualError(t, c.AddPair(outsider, f, w.USDC), "Only called by Manager.")
	require.EqualError(t, c.Invest(outsider, f, sdkmath.OneInt(), nil), "Only called by Manager.")
	require.EqualError(t, c.AdjustPool(outsider, f, 0, 1, 10), "Only called by Manager.")
	require.EqualError(t, c.ReBalance(outsider, f, 0, 1, sdkmath.OneInt()), "Only called by Manager.")
	require.EqualError(t, c.RemovePair(outsider, f, 0), "Only called by Manager.")
	require.EqualError(t, c.SetSwapPath(outsider, f, w.DAI.Address(), w.USDC.Address(), 1), "Only called by Manager.")
	require.EqualError(t, c.StakeMintingUNI(outsider, f, pair.Address()), "Only called by Manager.")
	require.EqualError(t, c.StakeMintingUNIAll(outsider, f), "Only called by Manager.")
	require.EqualError(t, c.SetMintingUNIPool(outsider, f, pair.Address(), w.UNIStakingDAI), "Only called by Governance.")
}

func TestAddPairTrustGate(t *testing.T) {
	w := newWorld(t)
	c := w.Controller
	f := w.FundDAI

	err := c.AddPair(sim.Deployer, f, w.UNI)
	require.EqualError(t, err, "The token is not trusted.")
	err = c.AddPool(sim.Deployer, f, w.UNI, 100)
	require.EqualError(t, err, "The token is not trusted.")

	// trusting the token is what unlocks the slot
	require.NoError(t, c.SetTrustedToken(sim.Deployer, w.UNI.Address(), true))
	err = c.AddPair(sim.Deployer, f, w.UNI)
	require.EqualError(t, err, "Pair not exist.")
	require.NoError(t, c.AddPair(sim.Deployer, f, w.USDC))
	require.Equal(t, 1, f.PairsLength())
}

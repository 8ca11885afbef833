package amm

import (
	"sync"

	"github.com/HotpotFunds/HotpotFunds/internal/token"
	"github.com/HotpotFunds/HotpotFunds/internal/types"
)

// Factory creates and indexes pairs. Pair lookup is unordered: GetPair(a, b)
// and GetPair(b, a) return the same instance.
type Factory struct {
	mu    sync.Mutex
	log   *types.EventLog
	pairs map[[2]types.Address]*Pair
	all   []*Pair
}

func NewFactory(log *types.EventLog) *Factory {
	return &Factory{
		log:   log,
		pairs: make(map[[2]types.Address]*Pair),
	}
}

func pairKey(a, b types.Address) [2]types.Address {
	if b < a {
		a, b = b, a
	}
	return [2]types.Address{a, b}
}

// CreatePair deploys the pair for the two tokens. token0/token1 ordering
// follows address order, as observers expect.
func (f *Factory) CreatePair(a, b *token.Token) (*Pair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := pairKey(a.Address(), b.Address())
	if _, ok := f.pairs[key]; ok {
		return nil, types.ErrAddPairRepeatedly
	}

	token0, token1 := a, b
	if token1.Address() < token0.Address() {
		token0, token1 = token1, token0
	}
	addr := types.Address("0xpair/" + token0.Symbol() + "-" + token1.Symbol())
	pair := newPair(f.log, addr, token0, token1)
	f.pairs[key] = pair
	f.all = append(f.all, pair)
	return pair, nil
}

// GetPair returns the pair for the two token addresses, or nil.
func (f *Factory) GetPair(a, b types.Address) *Pair {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pairs[pairKey(a, b)]
}

// PairExists reports whether a pool exists between the two tokens.
func (f *Factory) PairExists(a, b types.Address) bool {
	return f.GetPair(a, b) != nil
}

// AllPairs returns every deployed pair in creation order.
func (f *Factory) AllPairs() []*Pair {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Pair, len(f.all))
	copy(out, f.all)
	return out
}

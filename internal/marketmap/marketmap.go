// Package marketmap indexes the market and oracle accounts supplied for one
// call. Maps are built all-or-nothing: a duplicate key or unreadable account
// fails the whole load.
package marketmap

import (
	"slices"

	"PerpFFI/internal/account"
	"PerpFFI/internal/errcode"
	"PerpFFI/internal/state"
)

// SpotMarketMap holds spot market views keyed by market index.
type SpotMarketMap struct {
	markets map[uint16]*state.SpotMarket
}

func LoadSpotMarketMap(refs []account.Ref) (*SpotMarketMap, error) {
	m := &SpotMarketMap{markets: make(map[uint16]*state.SpotMarket, len(refs))}
	for i, ref := range refs {
		market, err := account.LoadSpotMarket(ref.Data)
		if err != nil {
			return nil, errcode.Wrap(errcode.CouldNotLoadSpotMarketData, "spot market account %d (%s): %v", i, ref.Key, err)
		}
		if _, dup := m.markets[market.MarketIndex]; dup {
			return nil, errcode.Wrap(errcode.DuplicateSpotMarket, "spot market index %d appears twice", market.MarketIndex)
		}
		m.markets[market.MarketIndex] = market
	}
	return m, nil
}

func (m *SpotMarketMap) Get(marketIndex uint16) (*state.SpotMarket, error) {
	market, ok := m.markets[marketIndex]
	if !ok {
		return nil, errcode.Wrap(errcode.SpotMarketNotFound, "spot market %d", marketIndex)
	}
	return market, nil
}

func (m *SpotMarketMap) Len() int { return len(m.markets) }

// Indexes returns the loaded market indexes in ascending order.
func (m *SpotMarketMap) Indexes() []uint16 {
	return sortedKeys(m.markets)
}

// PerpMarketMap holds perp market views keyed by market index.
type PerpMarketMap struct {
	markets map[uint16]*state.PerpMarket
}

func LoadPerpMarketMap(refs []account.Ref) (*PerpMarketMap, error) {
	m := &PerpMarketMap{markets: make(map[uint16]*state.PerpMarket, len(refs))}
	for i, ref := range refs {
		market, err := account.LoadPerpMarket(ref.Data)
		if err != nil {
			return nil, errcode.Wrap(errcode.CouldNotLoadPerpMarketData, "perp market account %d (%s): %v", i, ref.Key, err)
		}
		if _, dup := m.markets[market.MarketIndex]; dup {
			return nil, errcode.Wrap(errcode.DuplicatePerpMarket, "perp market index %d appears twice", market.MarketIndex)
		}
		m.markets[market.MarketIndex] = market
	}
	return m, nil
}

func (m *PerpMarketMap) Get(marketIndex uint16) (*state.PerpMarket, error) {
	market, ok := m.markets[marketIndex]
	if !ok {
		return nil, errcode.Wrap(errcode.PerpMarketNotFound, "perp market %d", marketIndex)
	}
	return market, nil
}

func (m *PerpMarketMap) Len() int { return len(m.markets) }

func (m *PerpMarketMap) Indexes() []uint16 {
	return sortedKeys(m.markets)
}

func sortedKeys[V any](in map[uint16]V) []uint16 {
	keys := make([]uint16, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

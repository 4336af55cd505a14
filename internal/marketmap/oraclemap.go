package marketmap

import (
	"PerpFFI/internal/account"
	"PerpFFI/internal/errcode"
	"PerpFFI/internal/oracle"
	"PerpFFI/internal/state"
)

type priceKey struct {
	key    state.Pubkey
	source state.OracleSource
}

// OracleMap holds oracle accounts keyed by pubkey, together with the slot and
// guard rails that every price read from it is evaluated against.
type OracleMap struct {
	accounts map[state.Pubkey]account.Ref
	slot     uint64
	rails    state.OracleGuardRails
	prices   map[priceKey]oracle.PriceData
}

// LoadOracleMap accepts Pyth price accounts and prelaunch oracles.
func LoadOracleMap(refs []account.Ref, slot uint64, rails state.OracleGuardRails) (*OracleMap, error) {
	m := &OracleMap{
		accounts: make(map[state.Pubkey]account.Ref, len(refs)),
		slot:     slot,
		rails:    rails,
		prices:   make(map[priceKey]oracle.PriceData),
	}
	for i, ref := range refs {
		if !oracle.IsPythPriceAccount(ref.Data) && !oracle.IsPrelaunchOracle(ref.Data) {
			return nil, errcode.Wrap(errcode.UnableToLoadOracle, "oracle account %d (%s) has no recognised layout", i, ref.Key)
		}
		if _, dup := m.accounts[ref.Key]; dup {
			return nil, errcode.Wrap(errcode.DuplicateOracle, "oracle %s appears twice", ref.Key)
		}
		m.accounts[ref.Key] = ref
	}
	return m, nil
}

func (m *OracleMap) Slot() uint64 { return m.slot }
func (m *OracleMap) Len() int     { return len(m.accounts) }

// GetPriceData reads key as source at the map's slot. The quote asset needs
// no account. Readings are cached for the lifetime of the map.
func (m *OracleMap) GetPriceData(key state.Pubkey, source state.OracleSource) (oracle.PriceData, error) {
	if source == state.OracleSourceQuoteAsset {
		return oracle.QuoteAssetPriceData, nil
	}

	pk := priceKey{key: key, source: source}
	if pd, ok := m.prices[pk]; ok {
		return pd, nil
	}

	ref, ok := m.accounts[key]
	if !ok {
		return oracle.PriceData{}, errcode.Wrap(errcode.OracleNotFound, "oracle %s", key)
	}
	pd, err := oracle.GetOraclePrice(source, ref, m.slot)
	if err != nil {
		return oracle.PriceData{}, err
	}
	m.prices[pk] = pd
	return pd, nil
}

// GetPriceDataAndValidity also grades the reading against lastOracleTwap.
func (m *OracleMap) GetPriceDataAndValidity(key state.Pubkey, source state.OracleSource, lastOracleTwap int64) (oracle.PriceData, oracle.Validity, error) {
	pd, err := m.GetPriceData(key, source)
	if err != nil {
		return oracle.PriceData{}, oracle.NonPositive, err
	}
	if source == state.OracleSourceQuoteAsset {
		return pd, oracle.Valid, nil
	}
	validity, err := oracle.OracleValidity(lastOracleTwap, pd, m.rails.Validity)
	if err != nil {
		return oracle.PriceData{}, oracle.NonPositive, err
	}
	return pd, validity, nil
}

package oracle

import (
	"PerpFFI/internal/account"
	"PerpFFI/internal/errcode"
)

const PrelaunchOracleSize = 48

// PrelaunchOracle is an admin-set price for markets with no external feed.
type PrelaunchOracle struct {
	Price             int64
	MaxPrice          int64
	Confidence        uint64
	LastUpdateSlot    uint64
	AmmLastUpdateSlot uint64
	PerpMarketIndex   uint16
	_                 [6]byte
}

func IsPrelaunchOracle(data []byte) bool {
	return account.HasDiscriminator(data, account.PrelaunchOracleDiscriminator)
}

func LoadPrelaunchOracle(data []byte) (*PrelaunchOracle, error) {
	o, err := account.LoadAnchor[PrelaunchOracle](data, account.PrelaunchOracleDiscriminator)
	if err != nil {
		return nil, errcode.Wrap(errcode.UnableToLoadOracle, "%v", err)
	}
	return o, nil
}

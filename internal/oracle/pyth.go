package oracle

import (
	"encoding/binary"

	"PerpFFI/internal/account"
	"PerpFFI/internal/errcode"
	"PerpFFI/internal/state"
)

// Pyth v2 price account header values.
const (
	PythMagic       uint32 = 0xa1b2c3d4
	PythVersion     uint32 = 2
	PythAccountType uint32 = 3

	PythPriceAccountSize = 240
)

// PythPriceStatus is the aggregate status of a Pyth price.
type PythPriceStatus uint32

const (
	PythStatusUnknown PythPriceStatus = iota
	PythStatusTrading
	PythStatusHalted
	PythStatusAuction
)

// PythRational is a running average kept as value plus numerator/denominator.
type PythRational struct {
	Val   int64
	Numer int64
	Denom int64
}

type PythPriceInfo struct {
	Price   int64
	Conf    uint64
	Status  PythPriceStatus
	CorpAct uint32
	PubSlot uint64
}

// PythPriceAccount is the leading part of a Pyth v2 price account; the
// publisher component array that follows is not read.
type PythPriceAccount struct {
	Magic         uint32
	Version       uint32
	AccountType   uint32
	Size          uint32
	PriceType     uint32
	Expo          int32
	Num           uint32
	NumQt         uint32
	LastSlot      uint64
	ValidSlot     uint64
	EmaPrice      PythRational
	EmaConf       PythRational
	Timestamp     int64
	MinPub        uint8
	Drv2          uint8
	Drv3          uint16
	Drv4          uint32
	Product       state.Pubkey
	Next          state.Pubkey
	PrevSlot      uint64
	PrevPrice     int64
	PrevConf      uint64
	PrevTimestamp int64
	Agg           PythPriceInfo
}

// IsPythPriceAccount reports whether data carries the Pyth price header.
func IsPythPriceAccount(data []byte) bool {
	if len(data) < PythPriceAccountSize {
		return false
	}
	return binary.LittleEndian.Uint32(data[0:4]) == PythMagic &&
		binary.LittleEndian.Uint32(data[4:8]) == PythVersion &&
		binary.LittleEndian.Uint32(data[8:12]) == PythAccountType
}

// LoadPythPriceAccount casts the header of a Pyth price account.
func LoadPythPriceAccount(data []byte) (*PythPriceAccount, error) {
	if !IsPythPriceAccount(data) {
		return nil, errcode.Wrap(errcode.UnableToLoadOracle, "not a pyth price account (%d bytes)", len(data))
	}
	return account.Cast[PythPriceAccount](data[:PythPriceAccountSize])
}

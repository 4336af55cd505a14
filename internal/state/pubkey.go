package state

import "encoding/hex"

// Pubkey is an on-chain account address.
type Pubkey [32]byte

func (p Pubkey) IsZero() bool { return p == Pubkey{} }

func (p Pubkey) String() string { return hex.EncodeToString(p[:]) }

// flag reads a stored boolean byte. Any non-zero byte is true.
func flag(b uint8) bool { return b != 0 }

func setFlag(b *uint8, v bool) {
	if v {
		*b = 1
	} else {
		*b = 0
	}
}

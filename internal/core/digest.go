package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"PerpFFI/internal/account"
)

const digestSeed = "PerpFFI:inputs:v1"

// InputDigest fingerprints the buffers a call reads so identical inputs can
// be matched across log lines.
type InputDigest struct {
	h [32]byte
}

func NewInputDigest() *InputDigest {
	return &InputDigest{h: sha256.Sum256([]byte(digestSeed))}
}

// Add chains data into the digest: h = SHA-256(h || len(data) || data).
func (d *InputDigest) Add(data []byte) *InputDigest {
	hasher := sha256.New()
	hasher.Write(d.h[:])

	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(data)))
	hasher.Write(lenBuf[:])
	hasher.Write(data)

	copy(d.h[:], hasher.Sum(nil))
	return d
}

// AddRefs chains each key and buffer in order.
func (d *InputDigest) AddRefs(refs []account.Ref) *InputDigest {
	for i := range refs {
		d.Add(refs[i].Key[:]).Add(refs[i].Data)
	}
	return d
}

func (d *InputDigest) String() string { return hex.EncodeToString(d.h[:8]) }

// Package account reinterprets caller-owned account buffers as typed
// records without copying them. Every cast checks length, discriminator,
// alignment and host byte order first; nothing here validates business
// invariants.
package account

import (
	"bytes"
	"crypto/sha256"
	"unsafe"

	"PerpFFI/internal/errcode"
	"PerpFFI/internal/state"
)

// DiscriminatorSize is the length of the Anchor account prefix.
const DiscriminatorSize = 8

// Ref is a borrowed (key, bytes) pair. The bytes stay owned by the caller
// and must outlive every view cast from them.
type Ref struct {
	Key  state.Pubkey
	Data []byte
}

// Discriminator is the Anchor prefix for an account type:
// sha256("account:<name>")[:8].
func Discriminator(name string) [DiscriminatorSize]byte {
	sum := sha256.Sum256([]byte("account:" + name))
	var d [DiscriminatorSize]byte
	copy(d[:], sum[:DiscriminatorSize])
	return d
}

var (
	UserDiscriminator            = Discriminator("User")
	StateDiscriminator           = Discriminator("State")
	PerpMarketDiscriminator      = Discriminator("PerpMarket")
	SpotMarketDiscriminator      = Discriminator("SpotMarket")
	PrelaunchOracleDiscriminator = Discriminator("PrelaunchOracle")
)

var hostLittleEndian = func() bool {
	x := uint16(1)
	return *(*byte)(unsafe.Pointer(&x)) == 1
}()

// Cast reinterprets data as *T. data must be exactly sizeof(T) bytes and
// aligned for T. T must contain only fixed-size integer and array fields.
func Cast[T any](data []byte) (*T, error) {
	var zero T
	size := unsafe.Sizeof(zero)
	if len(data) == 0 || uintptr(len(data)) != size {
		return nil, errcode.Wrap(errcode.CouldNotLoadAccountData, "buffer is %d bytes, want %d", len(data), size)
	}
	if !hostLittleEndian {
		return nil, errcode.UnsupportedHostEndianness
	}
	p := unsafe.Pointer(unsafe.SliceData(data))
	if uintptr(p)%unsafe.Alignof(zero) != 0 {
		return nil, errcode.Wrap(errcode.MisalignedAccountData, "buffer at %#x not aligned to %d", uintptr(p), unsafe.Alignof(zero))
	}
	return (*T)(p), nil
}

// LoadAnchor checks the discriminator prefix and casts the record that
// follows it. Trailing bytes past the record are ignored.
func LoadAnchor[T any](data []byte, disc [DiscriminatorSize]byte) (*T, error) {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if len(data) < DiscriminatorSize+size {
		return nil, errcode.Wrap(errcode.CouldNotLoadAccountData, "account is %d bytes, want at least %d", len(data), DiscriminatorSize+size)
	}
	if !bytes.Equal(data[:DiscriminatorSize], disc[:]) {
		return nil, errcode.Wrap(errcode.AccountDiscriminatorMismatch, "discriminator %x, want %x", data[:DiscriminatorSize], disc[:])
	}
	return Cast[T](data[DiscriminatorSize : DiscriminatorSize+size])
}

// HasDiscriminator reports whether data starts with disc.
func HasDiscriminator(data []byte, disc [DiscriminatorSize]byte) bool {
	return len(data) >= DiscriminatorSize && bytes.Equal(data[:DiscriminatorSize], disc[:])
}

func LoadUser(data []byte) (*state.User, error) {
	u, err := LoadAnchor[state.User](data, UserDiscriminator)
	if err != nil {
		return nil, errcode.Wrap(errcode.CouldNotLoadUserData, "%v", err)
	}
	return u, nil
}

func LoadState(data []byte) (*state.State, error) {
	s, err := LoadAnchor[state.State](data, StateDiscriminator)
	if err != nil {
		return nil, errcode.Wrap(errcode.CouldNotLoadStateData, "%v", err)
	}
	return s, nil
}

func LoadPerpMarket(data []byte) (*state.PerpMarket, error) {
	return LoadAnchor[state.PerpMarket](data, PerpMarketDiscriminator)
}

func LoadSpotMarket(data []byte) (*state.SpotMarket, error) {
	return LoadAnchor[state.SpotMarket](data, SpotMarketDiscriminator)
}

// AlignedBuffer allocates n bytes aligned to 8.
func AlignedBuffer(n int) []byte {
	if n == 0 {
		return nil
	}
	words := make([]uint64, (n+7)/8)
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(words))), n)
}

// Clone copies data into a fresh aligned buffer.
func Clone(data []byte) []byte {
	out := AlignedBuffer(len(data))
	copy(out, data)
	return out
}

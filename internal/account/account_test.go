package account_test

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PerpFFI/internal/account"
	"PerpFFI/internal/errcode"
	"PerpFFI/internal/state"
)

func anchorBuffer(disc [8]byte, record int, extra int) []byte {
	buf := account.AlignedBuffer(account.DiscriminatorSize + record + extra)
	copy(buf, disc[:])
	return buf
}

func requireCode(t *testing.T, err error, want errcode.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	got, ok := errcode.From(err)
	require.True(t, ok, "error %v carries no code", err)
	assert.Equal(t, want, got, "error: %v", err)
}

func TestDiscriminators(t *testing.T) {
	sum := sha256.Sum256([]byte("account:PerpMarket"))
	assert.Equal(t, sum[:8], account.PerpMarketDiscriminator[:])

	all := [][8]byte{
		account.UserDiscriminator,
		account.StateDiscriminator,
		account.PerpMarketDiscriminator,
		account.SpotMarketDiscriminator,
		account.PrelaunchOracleDiscriminator,
	}
	seen := map[[8]byte]bool{}
	for _, d := range all {
		assert.False(t, seen[d], "duplicate discriminator %x", d)
		seen[d] = true
	}
}

func TestCastIsZeroCopy(t *testing.T) {
	buf := account.AlignedBuffer(state.OrderSize)
	o, err := account.Cast[state.Order](buf)
	require.NoError(t, err)

	o.Price = 0x0102030405060708
	assert.Equal(t, byte(0x08), buf[8], "write through view should land in caller bytes")
	assert.Equal(t, byte(0x01), buf[15])
}

func TestCastRejectsWrongLength(t *testing.T) {
	_, err := account.Cast[state.Order](account.AlignedBuffer(state.OrderSize - 1))
	requireCode(t, err, errcode.CouldNotLoadAccountData)

	_, err = account.Cast[state.Order](nil)
	requireCode(t, err, errcode.CouldNotLoadAccountData)
}

func TestCastRejectsMisaligned(t *testing.T) {
	buf := account.AlignedBuffer(state.OrderSize + 1)
	_, err := account.Cast[state.Order](buf[1:])
	requireCode(t, err, errcode.MisalignedAccountData)
}

func TestLoadAnchor(t *testing.T) {
	t.Run("ok with trailing bytes", func(t *testing.T) {
		buf := anchorBuffer(account.PerpMarketDiscriminator, state.PerpMarketSize, 16)
		buf[account.DiscriminatorSize+352] = 9 // MarketIndex low byte
		m, err := account.LoadPerpMarket(buf)
		require.NoError(t, err)
		assert.Equal(t, uint16(9), m.MarketIndex)
	})

	t.Run("wrong discriminator", func(t *testing.T) {
		buf := anchorBuffer(account.SpotMarketDiscriminator, state.PerpMarketSize, 0)
		_, err := account.LoadPerpMarket(buf)
		requireCode(t, err, errcode.AccountDiscriminatorMismatch)
	})

	t.Run("short", func(t *testing.T) {
		buf := anchorBuffer(account.PerpMarketDiscriminator, state.PerpMarketSize-1, 0)
		_, err := account.LoadPerpMarket(buf)
		requireCode(t, err, errcode.CouldNotLoadAccountData)
	})

	t.Run("user load errors carry user code", func(t *testing.T) {
		buf := anchorBuffer(account.StateDiscriminator, state.UserSize, 0)
		_, err := account.LoadUser(buf)
		requireCode(t, err, errcode.CouldNotLoadUserData)
	})
}

func TestCloneIsIndependent(t *testing.T) {
	src := anchorBuffer(account.UserDiscriminator, state.UserSize, 0)
	dst := account.Clone(src)
	require.Equal(t, src, dst)

	u, err := account.LoadUser(dst)
	require.NoError(t, err)
	u.NextOrderID = 42
	assert.NotEqual(t, src, dst)
}

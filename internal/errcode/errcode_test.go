package errcode_test

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"PerpFFI/internal/errcode"
	"PerpFFI/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryCodeHasDistinctName(t *testing.T) {
	seen := make(map[string]errcode.ErrorCode)
	for _, c := range errcode.All() {
		name := c.Name()
		require.NotEmpty(t, name, "code %d has no name", uint32(c))
		require.NotEmpty(t, c.Error(), "code %s has no message", name)
		if prev, dup := seen[name]; dup {
			t.Fatalf("name %q used by %d and %d", name, prev, c)
		}
		seen[name] = c
	}
	assert.Len(t, seen, errcode.Count)
}

func TestCodesAreContiguousAndOrdered(t *testing.T) {
	all := errcode.All()
	require.Equal(t, errcode.MathError, all[0])
	require.Equal(t, errcode.Internal, all[len(all)-1])
	for i := 1; i < len(all); i++ {
		assert.Equal(t, all[i-1]+1, all[i])
	}
}

func TestFromUnwrapsWrappedCodes(t *testing.T) {
	err := errcode.Wrap(errcode.PerpMarketNotFound, "market %d", 7)
	err = fmt.Errorf("margin calculation: %w", err)

	code, ok := errcode.From(err)
	require.True(t, ok)
	assert.Equal(t, errcode.PerpMarketNotFound, code)
	assert.True(t, errors.Is(err, errcode.PerpMarketNotFound))
	assert.Contains(t, err.Error(), "market 7")
}

func TestFromRejectsForeignErrors(t *testing.T) {
	_, ok := errcode.From(errors.New("boom"))
	assert.False(t, ok)
	_, ok = errcode.From(nil)
	assert.False(t, ok)
}

func TestUnknownCodeFormatting(t *testing.T) {
	c := errcode.ErrorCode(42)
	assert.False(t, c.Valid())
	assert.Equal(t, "ErrorCode(42)", c.Name())
	assert.Equal(t, "unknown error code 42", c.Error())
}

// Boundary codes must never be renumbered.
func TestCodeTableGolden(t *testing.T) {
	var buf bytes.Buffer
	for _, c := range errcode.All() {
		fmt.Fprintf(&buf, "%d %s\n", uint32(c), c.Name())
	}
	testutil.AssertGolden(t, "codes.golden", buf.Bytes())
}

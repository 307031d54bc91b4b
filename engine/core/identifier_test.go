package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifierPoolReusesReleasedIDs(t *testing.T) {
	pool := NewIdentifierPool(2)
	a := pool.Acquire("a")
	b := pool.Acquire("b")
	c := pool.Acquire("c")
	assert.Equal(t, []uint32{0, 1, 2}, []uint32{a, b, c})
	assert.Equal(t, 3, pool.InUse())

	require.NoError(t, pool.Release(b))
	assert.Nil(t, pool.Owner(b))
	assert.Equal(t, b, pool.Acquire("d"))
	assert.Equal(t, "d", pool.Owner(b))

	assert.Error(t, pool.Release(99))
}

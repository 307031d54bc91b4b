package metadata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlotNames(t *testing.T) {
	var tex Texture
	assert.True(t, tex.SetName("bricks"))
	assert.Equal(t, "bricks", tex.Name())

	// Shorter names overwrite longer ones completely.
	assert.True(t, tex.SetName("tile"))
	assert.Equal(t, "tile", tex.Name())

	var mat Material
	long := strings.Repeat("m", MaterialNameMaxLength+10)
	assert.False(t, mat.SetName(long))
	assert.Equal(t, long[:MaterialNameMaxLength-1], mat.Name())
}

func TestSlotHandles(t *testing.T) {
	g := Geometry{ID: InvalidID}
	assert.Equal(t, InvalidID, g.Handle())
	g.SetHandle(3)
	assert.Equal(t, uint32(3), g.ID)
}

package headless

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/hearth/engine/math"
	"github.com/spaghettifunk/hearth/engine/renderer/metadata"
)

func TestBackendTracksTextures(t *testing.T) {
	b := New()
	var tex metadata.Texture
	tex.SetName("wall")
	tex.Width, tex.Height, tex.ChannelCount = 2, 2, 4

	require.NoError(t, b.CreateTexture(make([]uint8, 16), &tex))
	assert.Equal(t, 1, b.LiveTextures())
	assert.Equal(t, "wall", b.TextureName(tex.InternalID))

	b.DestroyTexture(&tex)
	assert.Zero(t, b.LiveTextures())
	assert.Equal(t, metadata.InvalidID, tex.InternalID)
	assert.Equal(t, 1, b.TexturesDestroyed)
}

func TestBackendInjectedFailures(t *testing.T) {
	b := New()
	b.FailTexture = func(name string) bool { return name == "broken" }
	var tex metadata.Texture
	tex.SetName("broken")
	assert.ErrorIs(t, b.CreateTexture(nil, &tex), ErrInjectedFailure)

	var g metadata.Geometry
	assert.Error(t, b.CreateGeometry(&g, nil, nil))
	require.NoError(t, b.CreateGeometry(&g, make([]math.Vertex3D, 3), []uint32{0, 1, 2}))
	assert.Equal(t, 1, b.LiveGeometries())
}

package loaders

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/hearth/engine/math"
	"github.com/spaghettifunk/hearth/engine/renderer/metadata"
)

func TestParseMaterialConfig(t *testing.T) {
	src := `
# A comment
version = 1
name = test_material
diffuse_colour = 1.0 0.5 0.25 1.0
diffuse_name = cobblestone
`
	cfg, err := ParseMaterialConfig(strings.NewReader(src), "test.hmt", "fallback")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), cfg.Version)
	assert.Equal(t, "test_material", cfg.Name)
	assert.Equal(t, "cobblestone", cfg.DiffuseMapName)
	assert.Equal(t, math.NewVec4(1, 0.5, 0.25, 1), cfg.DiffuseColour)
	assert.True(t, cfg.AutoRelease)
}

func TestParseMaterialConfigDefaults(t *testing.T) {
	cfg, err := ParseMaterialConfig(strings.NewReader(""), "empty.hmt", "empty")
	require.NoError(t, err)
	assert.Equal(t, "empty", cfg.Name)
	assert.Equal(t, math.NewVec4One(), cfg.DiffuseColour)
	assert.Empty(t, cfg.DiffuseMapName)
	assert.True(t, cfg.AutoRelease)
}

func TestParseMaterialConfigSkipsBadLines(t *testing.T) {
	src := `
this line has no separator
diffuse_colour = 1.0 abc 0.0 1.0
auto_release = false
unknown_key = 12
version = nope
`
	cfg, err := ParseMaterialConfig(strings.NewReader(src), "bad.hmt", "bad")
	require.NoError(t, err)
	assert.Equal(t, "bad", cfg.Name)
	assert.Equal(t, math.NewVec4One(), cfg.DiffuseColour)
	assert.False(t, cfg.AutoRelease)
	assert.Zero(t, cfg.Version)
}

func TestParseMaterialConfigClampsColour(t *testing.T) {
	cfg, err := ParseMaterialConfig(strings.NewReader("diffuse_color = 2.0 -1.0 0.5 1.0"), "clamp.hmt", "clamp")
	require.NoError(t, err)
	assert.Equal(t, math.NewVec4(1, 0, 0.5, 1), cfg.DiffuseColour)
}

func TestParseMaterialConfigKeysAreCaseInsensitive(t *testing.T) {
	cfg, err := ParseMaterialConfig(strings.NewReader("Name = Upper\nDIFFUSE_NAME = tex"), "case.hmt", "case")
	require.NoError(t, err)
	assert.Equal(t, "Upper", cfg.Name)
	assert.Equal(t, "tex", cfg.DiffuseMapName)
}

func TestMaterialLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wall.hmt"), []byte("diffuse_name = bricks\n"), 0o644))

	loader := &MaterialLoader{}
	res, err := loader.Load(dir, "wall", nil)
	require.NoError(t, err)
	cfg, ok := res.Data.(*metadata.MaterialConfig)
	require.True(t, ok)
	assert.Equal(t, "wall", cfg.Name)
	assert.Equal(t, "bricks", cfg.DiffuseMapName)

	require.NoError(t, loader.Unload(res))
	assert.Nil(t, res.Data)

	_, err = loader.Load(dir, "missing", nil)
	assert.Error(t, err)
}

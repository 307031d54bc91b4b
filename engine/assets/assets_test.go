package assets

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/hearth/engine/assets/loaders"
	"github.com/spaghettifunk/hearth/engine/renderer/metadata"
)

type textLoader struct{}

func (tl *textLoader) TypeName() string { return "text" }
func (tl *textLoader) TypePath() string { return "text" }
func (tl *textLoader) Load(dir string, name string, params interface{}) (*metadata.Resource, error) {
	b, err := os.ReadFile(filepath.Join(dir, name+".txt"))
	if err != nil {
		return nil, err
	}
	return &metadata.Resource{Name: name, Data: string(b), DataSize: uint64(len(b))}, nil
}
func (tl *textLoader) Unload(resource *metadata.Resource) error {
	resource.Data = nil
	return nil
}

func newTestManager(t *testing.T, base string) *AssetManager {
	t.Helper()
	cfg := AssetManagerConfig{BasePath: base, MaxLoaderCount: 8}
	block := make([]byte, AssetManagerRequirement(cfg))
	am, err := NewAssetManager(cfg, block, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = am.Shutdown() })
	return am
}

func TestAssetManagerLoadsMaterial(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "materials"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "materials", "floor.hmt"),
		[]byte("name = floor\ndiffuse_colour = 0.5 0.5 0.5 1.0\n"), 0o644))

	am := newTestManager(t, base)
	res, err := am.Load("floor", metadata.ResourceTypeMaterial, nil)
	require.NoError(t, err)
	assert.Equal(t, loaders.MaterialTypeName, res.LoaderName)
	cfg := res.Data.(*metadata.MaterialConfig)
	assert.Equal(t, "floor", cfg.Name)
	assert.InDelta(t, 0.5, cfg.DiffuseColour.X, 1e-6)
	require.NoError(t, am.Unload(res))
}

func TestAssetManagerCustomLoader(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "text"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "text", "hello.txt"), []byte("hi"), 0o644))

	am := newTestManager(t, base)
	require.NoError(t, am.RegisterLoader(&textLoader{}))
	assert.ErrorIs(t, am.RegisterLoader(&textLoader{}), ErrLoaderExists)

	res, err := am.LoadCustom("hello", "text", nil)
	require.NoError(t, err)
	assert.Equal(t, "hi", res.Data)
	assert.Equal(t, "text", res.LoaderName)

	_, err = am.LoadCustom("hello", "audio", nil)
	assert.ErrorIs(t, err, ErrNoLoader)
	_, err = am.Load("hello", metadata.ResourceTypeCustom, nil)
	assert.ErrorIs(t, err, ErrNoLoader)
}

func TestAssetManagerLoaderCapacity(t *testing.T) {
	cfg := AssetManagerConfig{BasePath: t.TempDir(), MaxLoaderCount: 2}
	am, err := NewAssetManager(cfg, make([]byte, AssetManagerRequirement(cfg)), nil)
	require.NoError(t, err)
	assert.Error(t, am.RegisterLoader(&textLoader{}))
}

func TestAssetManagerWatchReportsChanges(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "materials")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	am := newTestManager(t, base)
	require.NoError(t, am.Watch())
	assert.ErrorIs(t, am.Watch(), ErrWatcherRunning)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "stone.hmt"), []byte("name = stone\n"), 0o644))

	var seen []AssetChange
	assert.Eventually(t, func() bool {
		seen = append(seen, am.PollChanges()...)
		return len(seen) > 0
	}, 2*time.Second, 20*time.Millisecond)
	require.NotEmpty(t, seen)
	assert.Equal(t, loaders.MaterialTypeName, seen[0].TypeName)
	assert.Equal(t, "stone", seen[0].Name)
}

func TestDetermineAssetType(t *testing.T) {
	assert.Equal(t, loaders.MaterialTypeName, determineAssetType("a/b/wall.hmt"))
	assert.Equal(t, loaders.ImageTypeName, determineAssetType("a/b/wall.PNG"))
	assert.Equal(t, "", determineAssetType("a/b/readme.md"))
}

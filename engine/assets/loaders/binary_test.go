package loaders

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinaryLoader(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "level.dat"), []byte{1, 2, 3}, 0o644))

	bl := &BinaryLoader{}
	res, err := bl.Load(dir, "level.dat", nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, res.Data)
	assert.Equal(t, uint64(3), res.DataSize)
	assert.Equal(t, BinaryTypeName, res.LoaderName)

	require.NoError(t, bl.Unload(res))
	assert.Nil(t, res.Data)
	assert.Error(t, bl.Unload(nil))

	_, err = bl.Load(dir, "missing.dat", nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

package systems

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/hearth/engine/core"
	"github.com/spaghettifunk/hearth/engine/renderer/metadata"
)

type fakeResource struct {
	ID      uint32
	Payload uint32
	name    [32]byte
}

func (f *fakeResource) Handle() uint32      { return f.ID }
func (f *fakeResource) SetHandle(id uint32) { f.ID = id }
func (f *fakeResource) Name() string {
	if i := bytes.IndexByte(f.name[:], 0); i >= 0 {
		return string(f.name[:i])
	}
	return string(f.name[:])
}
func (f *fakeResource) SetName(name string) bool {
	clear(f.name[:])
	return copy(f.name[:len(f.name)-1], name) == len(name)
}

var errBrokenResource = errors.New("broken resource")

type fakeBackend struct {
	loads    map[string]int
	destroys map[string]int
	next     uint32
}

func newFakeRegistry(t *testing.T, capacity uint32) (*Registry[fakeResource, *fakeResource], *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{loads: map[string]int{}, destroys: map[string]int{}}
	block := make([]byte, RegistryRequirement[fakeResource](capacity))
	r, err := NewRegistry[fakeResource, *fakeResource]("fake", "default", capacity, block, ResourceHooks[fakeResource]{
		CreateDefault: func(res *fakeResource) error {
			res.Payload = 42
			return nil
		},
		Load: func(name string, res *fakeResource, params interface{}) error {
			if name == "broken" {
				return errBrokenResource
			}
			fb.next++
			fb.loads[name]++
			res.Payload = fb.next
			return nil
		},
		Destroy: func(res *fakeResource) {
			fb.destroys[res.Name()]++
		},
	})
	require.NoError(t, err)
	return r, fb
}

func TestRegistryReferenceCounting(t *testing.T) {
	r, fb := newFakeRegistry(t, 4)

	first, err := r.Acquire("crate", true, nil)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, uint64(1), r.ReferenceCount("crate"))
	assert.Equal(t, "crate", first.Name())
	assert.NotEqual(t, metadata.InvalidID, first.ID)

	second, err := r.Acquire("crate", true, nil)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, uint64(2), r.ReferenceCount("crate"))
	assert.Equal(t, 1, fb.loads["crate"])

	require.NoError(t, r.Release("crate"))
	assert.Equal(t, uint64(1), r.ReferenceCount("crate"))
	assert.NotEqual(t, metadata.InvalidID, first.ID)
	assert.Zero(t, fb.destroys["crate"])

	require.NoError(t, r.Release("crate"))
	assert.Zero(t, r.ReferenceCount("crate"))
	assert.Equal(t, metadata.InvalidID, first.ID)
	assert.Equal(t, 1, fb.destroys["crate"])
	assert.Zero(t, r.Loaded())
}

func TestRegistryKeepsResourcesWithoutAutoRelease(t *testing.T) {
	r, fb := newFakeRegistry(t, 4)

	res, err := r.Acquire("terrain", false, nil)
	require.NoError(t, err)
	handle := res.ID

	require.NoError(t, r.Release("terrain"))
	assert.Zero(t, r.ReferenceCount("terrain"))
	assert.Equal(t, handle, res.ID)
	assert.Same(t, res, r.Lookup(handle))
	assert.Zero(t, fb.destroys["terrain"])

	// Acquiring again reuses the resident slot.
	again, err := r.Acquire("terrain", true, nil)
	require.NoError(t, err)
	assert.Same(t, res, again)
	assert.Equal(t, 1, fb.loads["terrain"])

	r.Shutdown()
	assert.Equal(t, 1, fb.destroys["terrain"])
	assert.Equal(t, 1, fb.destroys["default"])
}

func TestRegistryDefaultBypass(t *testing.T) {
	r, fb := newFakeRegistry(t, 2)

	def := r.Default()
	require.NotNil(t, def)
	assert.Equal(t, uint32(42), def.Payload)
	assert.Equal(t, metadata.InvalidID, def.ID)

	for _, name := range []string{"default", "DEFAULT", "Default"} {
		res, err := r.Acquire(name, true, nil)
		require.NoError(t, err)
		assert.Same(t, def, res)
	}
	assert.NoError(t, r.Release("default"))
	assert.Zero(t, r.ReferenceCount("default"))
	assert.Zero(t, r.Loaded())
	assert.Empty(t, fb.loads)
	assert.Empty(t, fb.destroys)
}

func TestRegistryExhaustion(t *testing.T) {
	r, _ := newFakeRegistry(t, 3)

	names := []string{"a", "b", "c"}
	before := map[string]fakeResource{}
	for _, name := range names {
		res, err := r.Acquire(name, true, nil)
		require.NoError(t, err)
		before[name] = *res
	}

	res, err := r.Acquire("d", true, nil)
	assert.ErrorIs(t, err, ErrRegistryFull)
	assert.Nil(t, res)
	assert.Zero(t, r.ReferenceCount("d"))

	for _, name := range names {
		res, ok := r.Get(name)
		require.True(t, ok)
		assert.Equal(t, before[name], *res)
		assert.Equal(t, uint64(1), r.ReferenceCount(name))
	}

	// A freed slot is handed to the next new name.
	freed := before["b"].ID
	require.NoError(t, r.Release("b"))
	res, err = r.Acquire("d", true, nil)
	require.NoError(t, err)
	assert.Equal(t, freed, res.ID)
}

func TestRegistryLoadFailureLeavesNoTrace(t *testing.T) {
	r, _ := newFakeRegistry(t, 2)

	res, err := r.Acquire("broken", true, nil)
	assert.ErrorIs(t, err, errBrokenResource)
	assert.Nil(t, res)
	assert.Zero(t, r.ReferenceCount("broken"))
	assert.Zero(t, r.Loaded())

	_, ok := r.Get("broken")
	assert.False(t, ok)
}

func TestRegistryRejectsNamesThatDoNotFit(t *testing.T) {
	r, fb := newFakeRegistry(t, 2)

	// The name buffer keeps a terminator, so 31 bytes is the longest name.
	longest := strings.Repeat("a", 31)
	for _, name := range []string{"", strings.Repeat("a", 32), strings.Repeat("b", 300), "nul\x00name"} {
		res, err := r.Acquire(name, true, nil)
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
		assert.Nil(t, res)
		assert.Zero(t, r.ReferenceCount(name))
	}
	assert.Zero(t, r.Loaded())
	assert.Empty(t, fb.loads)

	res, err := r.Acquire(longest, true, nil)
	require.NoError(t, err)
	assert.Equal(t, longest, res.Name())
	require.NoError(t, r.Release(res.Name()))
	assert.Zero(t, r.Loaded())
	assert.Equal(t, 1, fb.destroys[longest])
}

func TestRegistryReleaseWithoutAcquire(t *testing.T) {
	r, fb := newFakeRegistry(t, 2)
	assert.ErrorIs(t, r.Release("ghost"), ErrNotAcquired)
	assert.Empty(t, fb.destroys)
}

func TestRegistryStaleHandle(t *testing.T) {
	r, _ := newFakeRegistry(t, 2)
	res, err := r.Acquire("crate", true, nil)
	require.NoError(t, err)
	handle := res.ID
	require.NoError(t, r.Release("crate"))
	assert.Nil(t, r.Lookup(handle))
	assert.Nil(t, r.Lookup(metadata.InvalidID))
}

func TestRegistryConfiguration(t *testing.T) {
	_, err := NewRegistry[fakeResource, *fakeResource]("fake", "default", 0, make([]byte, 64), ResourceHooks[fakeResource]{})
	assert.ErrorIs(t, err, ErrInvalidCapacity)

	_, err = NewRegistry[fakeResource, *fakeResource]("fake", "default", 4, make([]byte, 8), ResourceHooks[fakeResource]{})
	assert.ErrorIs(t, err, core.ErrInvalidBlock)

	var uninitialized *Registry[fakeResource, *fakeResource]
	assert.Nil(t, uninitialized.Default())
	_, err = uninitialized.Acquire("crate", true, nil)
	assert.ErrorIs(t, err, core.ErrNotInitialized)
}

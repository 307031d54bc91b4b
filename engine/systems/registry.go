package systems

import (
	"errors"
	"strings"

	"github.com/spaghettifunk/hearth/engine/containers"
	"github.com/spaghettifunk/hearth/engine/core"
	"github.com/spaghettifunk/hearth/engine/memory"
	"github.com/spaghettifunk/hearth/engine/renderer/metadata"
)

var (
	ErrRegistryFull    = errors.New("registry cannot hold any more resources")
	ErrNotAcquired     = errors.New("resource has no references")
	ErrInvalidCapacity = errors.New("registry capacity must be > 0")
	ErrInvalidName     = errors.New("resource name does not fit the slot name buffer")
)

// resourceReference is the record kept per resource name.
type resourceReference struct {
	ReferenceCount uint64
	// Slot index, InvalidID while nothing is loaded.
	Index       uint32
	AutoRelease bool
}

var emptyReference = resourceReference{Index: metadata.InvalidID}

// Slot is a resource type the registry can hold. Implementations must not
// contain Go pointers because slots live in the subsystem arena.
type Slot[T any] interface {
	*T
	Handle() uint32
	SetHandle(id uint32)
	Name() string
	SetName(name string) bool
}

// ResourceHooks connect a registry to whatever creates and frees the
// resource data, usually the renderer backend.
type ResourceHooks[T any] struct {
	CreateDefault func(resource *T) error
	// Load fills a zeroed slot for name.
	Load    func(name string, resource *T, params interface{}) error
	Destroy func(resource *T)
}

// Registry is a fixed array of resource slots plus a name keyed table of
// reference records. At most one instance per name is alive.
type Registry[T any, P Slot[T]] struct {
	kind        string
	defaultName string

	slots           []T
	defaultResource *T
	references      *containers.Hashtable
	hooks           ResourceHooks[T]
}

func registrySlotsSize[T any](capacity uint32) uint64 {
	// One extra slot holds the default resource.
	return memory.AlignUp(memory.SizeOf[T]()*uint64(capacity+1), 8)
}

// RegistryRequirement is the arena size a registry of capacity slots needs.
func RegistryRequirement[T any](capacity uint32) uint64 {
	tableSize := containers.HashtableRequirement(memory.SizeOf[resourceReference](), capacity)
	return registrySlotsSize[T](capacity) + memory.AlignUp(tableSize, 8)
}

// NewRegistry places a registry into block and creates its default resource.
// kind only shows up in log messages.
func NewRegistry[T any, P Slot[T]](kind string, defaultName string, capacity uint32, block []byte, hooks ResourceHooks[T]) (*Registry[T, P], error) {
	if capacity == 0 {
		core.LogFatal("%s system - max count must be > 0.", kind)
		return nil, ErrInvalidCapacity
	}
	if uint64(len(block)) < RegistryRequirement[T](capacity) {
		core.LogFatal("%s system - block of %dB is smaller than the %dB required.", kind, len(block), RegistryRequirement[T](capacity))
		return nil, core.ErrInvalidBlock
	}

	slotsSize := registrySlotsSize[T](capacity)
	all, err := memory.PlaceSlice[T](block[:slotsSize], int(capacity+1))
	if err != nil {
		core.LogFatal("%s system - unable to place resource slots: %s", kind, err)
		return nil, err
	}
	table, err := containers.NewHashtable(memory.SizeOf[resourceReference](), capacity, block[slotsSize:], false)
	if err != nil {
		return nil, err
	}
	// Fill the table with the canonical empty record.
	empty := emptyReference
	if err := table.Fill(memory.AsBytes(&empty)); err != nil {
		return nil, err
	}

	r := &Registry[T, P]{
		kind:            kind,
		defaultName:     defaultName,
		slots:           all[:capacity],
		defaultResource: &all[capacity],
		references:      table,
		hooks:           hooks,
	}
	// Invalidate all slots in the array.
	var zero T
	for i := range all {
		all[i] = zero
		P(&all[i]).SetHandle(metadata.InvalidID)
	}

	P(r.defaultResource).SetName(defaultName)
	if hooks.CreateDefault != nil {
		if err := hooks.CreateDefault(r.defaultResource); err != nil {
			core.LogFatal("%s system - failed to create the default %s: %s", kind, kind, err)
			return nil, err
		}
	}
	// The default resource is never part of the slot array.
	P(r.defaultResource).SetHandle(metadata.InvalidID)
	return r, nil
}

func (r *Registry[T, P]) initialized() bool {
	return r != nil && r.references != nil
}

func (r *Registry[T, P]) isDefault(name string) bool {
	return strings.EqualFold(name, r.defaultName)
}

func (r *Registry[T, P]) freeSlot() uint32 {
	for i := range r.slots {
		if P(&r.slots[i]).Handle() == metadata.InvalidID {
			return uint32(i)
		}
	}
	return metadata.InvalidID
}

func (r *Registry[T, P]) clearSlot(index uint32) {
	var zero T
	r.slots[index] = zero
	P(&r.slots[index]).SetHandle(metadata.InvalidID)
}

// Acquire returns the resource called name, loading it into a free slot on
// first use. params go to the load hook untouched.
func (r *Registry[T, P]) Acquire(name string, autoRelease bool, params interface{}) (*T, error) {
	if !r.initialized() {
		core.LogError("registry Acquire called before initialization.")
		return nil, core.ErrNotInitialized
	}
	if r.isDefault(name) {
		core.LogWarn("%s system Acquire called for default %s. Use GetDefault for '%s'.", r.kind, r.kind, r.defaultName)
		return r.defaultResource, nil
	}
	// The record is keyed by name and the slot stores it, so both must agree.
	if !r.fitsSlot(name) {
		core.LogError("%s system Acquire rejected '%s': name is empty, too long or holds a zero byte.", r.kind, name)
		return nil, ErrInvalidName
	}

	var ref resourceReference
	if err := containers.GetValue(r.references, name, &ref); err != nil {
		core.LogError("%s system Acquire failed to look up '%s': %s", r.kind, name, err)
		return nil, err
	}
	// This can only be changed the first time a resource is loaded.
	if ref.ReferenceCount == 0 {
		ref.AutoRelease = autoRelease
	}
	ref.ReferenceCount++

	created := false
	if ref.Index == metadata.InvalidID {
		index := r.freeSlot()
		// An empty slot was not found, bleat about it and boot out.
		if index == metadata.InvalidID {
			core.LogFatal("%s system cannot hold anymore %ss. Adjust configuration to allow more.", r.kind, r.kind)
			return nil, ErrRegistryFull
		}
		slot := P(&r.slots[index])
		r.clearSlot(index)
		slot.SetName(name)
		if err := r.hooks.Load(name, &r.slots[index], params); err != nil {
			core.LogError("%s system failed to load '%s': %s", r.kind, name, err)
			r.clearSlot(index)
			return nil, err
		}
		slot.SetHandle(index)
		ref.Index = index
		created = true
		core.LogDebug("%s '%s' does not yet exist. Created, and ref_count is now %d.", r.kind, name, ref.ReferenceCount)
	} else {
		core.LogDebug("%s '%s' already exists, ref_count increased to %d.", r.kind, name, ref.ReferenceCount)
	}

	if err := containers.SetValue(r.references, name, &ref); err != nil {
		if created {
			r.destroySlot(ref.Index)
		}
		return nil, err
	}
	return &r.slots[ref.Index], nil
}

// Release drops one reference to name. Resources acquired with auto release
// are destroyed when the last reference goes.
func (r *Registry[T, P]) Release(name string) error {
	if !r.initialized() {
		return core.ErrNotInitialized
	}
	// Ignore release requests for the default resource.
	if r.isDefault(name) {
		return nil
	}
	var ref resourceReference
	if err := containers.GetValue(r.references, name, &ref); err != nil {
		return err
	}
	if ref.ReferenceCount == 0 {
		core.LogWarn("Tried to release non-existent %s: '%s'", r.kind, name)
		return ErrNotAcquired
	}
	ref.ReferenceCount--

	if ref.ReferenceCount == 0 && ref.AutoRelease {
		r.destroySlot(ref.Index)
		// Reset the reference.
		ref.Index = metadata.InvalidID
		ref.AutoRelease = false
		core.LogDebug("Released %s '%s'. Unloaded because reference count=0 and auto_release=true.", r.kind, name)
	} else {
		core.LogDebug("Released %s '%s', now has a reference count of %d (auto_release=%t).", r.kind, name, ref.ReferenceCount, ref.AutoRelease)
	}

	if ref == emptyReference {
		r.references.Delete(name)
		return nil
	}
	return containers.SetValue(r.references, name, &ref)
}

func (r *Registry[T, P]) fitsSlot(name string) bool {
	if name == "" || strings.IndexByte(name, 0) >= 0 {
		return false
	}
	var scratch T
	return P(&scratch).SetName(name)
}

func (r *Registry[T, P]) destroySlot(index uint32) {
	if index >= uint32(len(r.slots)) {
		return
	}
	if r.hooks.Destroy != nil {
		r.hooks.Destroy(&r.slots[index])
	}
	r.clearSlot(index)
}

// Default returns the default resource, nil before initialization.
func (r *Registry[T, P]) Default() *T {
	if !r.initialized() {
		core.LogFatal("GetDefault called before the registry was initialized.")
		return nil
	}
	return r.defaultResource
}

// Lookup returns the live resource in slot handle.
func (r *Registry[T, P]) Lookup(handle uint32) *T {
	if !r.initialized() || handle >= uint32(len(r.slots)) {
		return nil
	}
	slot := &r.slots[handle]
	if P(slot).Handle() != handle {
		return nil
	}
	return slot
}

// Get returns the loaded resource called name without taking a reference.
func (r *Registry[T, P]) Get(name string) (*T, bool) {
	if !r.initialized() || name == "" {
		return nil, false
	}
	if r.isDefault(name) {
		return r.defaultResource, true
	}
	var ref resourceReference
	if err := containers.GetValue(r.references, name, &ref); err != nil || ref.Index == metadata.InvalidID {
		return nil, false
	}
	return &r.slots[ref.Index], true
}

func (r *Registry[T, P]) ReferenceCount(name string) uint64 {
	if !r.initialized() || name == "" {
		return 0
	}
	var ref resourceReference
	if err := containers.GetValue(r.references, name, &ref); err != nil {
		return 0
	}
	return ref.ReferenceCount
}

func (r *Registry[T, P]) Capacity() uint32 {
	if r == nil {
		return 0
	}
	return uint32(len(r.slots))
}

// Loaded counts occupied slots.
func (r *Registry[T, P]) Loaded() int {
	if !r.initialized() {
		return 0
	}
	n := 0
	for i := range r.slots {
		if P(&r.slots[i]).Handle() != metadata.InvalidID {
			n++
		}
	}
	return n
}

// Shutdown destroys every loaded resource and then the default one.
func (r *Registry[T, P]) Shutdown() {
	if !r.initialized() {
		return
	}
	for i := range r.slots {
		if P(&r.slots[i]).Handle() != metadata.InvalidID {
			r.destroySlot(uint32(i))
		}
	}
	if r.hooks.Destroy != nil {
		r.hooks.Destroy(r.defaultResource)
	}
	var zero T
	*r.defaultResource = zero
	r.references.Destroy()
	r.references = nil
	r.slots = nil
	r.defaultResource = nil
}

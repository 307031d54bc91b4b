package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/hearth/engine/assets/loaders"
	"github.com/spaghettifunk/hearth/engine/containers"
	"github.com/spaghettifunk/hearth/engine/core"
	"github.com/spaghettifunk/hearth/engine/memory"
	"github.com/spaghettifunk/hearth/engine/renderer/metadata"
)

var (
	ErrLoaderExists   = errors.New("loader already registered")
	ErrNoLoader       = errors.New("no loader registered")
	ErrWatcherRunning = errors.New("asset watcher already running")
)

// Size of one loader reference in the loader table.
const loaderRefSize = uint64(unsafe.Sizeof(uintptr(0)))

// How many file changes may pile up between two polls.
const changeQueueSize = 256

type AssetManagerConfig struct {
	// BasePath is the root of the asset tree.
	BasePath       string
	MaxLoaderCount uint32
}

// AssetChange describes a file under the base path that changed on disk.
type AssetChange struct {
	// TypeName of the loader handling the file, empty when unknown.
	TypeName string
	// Name is the file name without extension.
	Name string
	Path string
	Op   fsnotify.Op
}

// AssetManager resolves resource names to files and hands them to the loader
// registered for their type.
type AssetManager struct {
	basePath string
	loaders  *containers.Hashtable

	fsnotify *fsnotify.Watcher
	changes  chan AssetChange
	done     chan struct{}
}

func AssetManagerRequirement(config AssetManagerConfig) uint64 {
	return memory.AlignUp(containers.HashtableRequirement(loaderRefSize, config.MaxLoaderCount), 8)
}

// NewAssetManager creates the manager over block and registers the image and
// material loaders. mem accounts decoded pixel buffers and may be nil.
func NewAssetManager(config AssetManagerConfig, block []byte, mem *memory.MemorySystem) (*AssetManager, error) {
	if config.MaxLoaderCount == 0 {
		core.LogFatal("asset manager initialize failed because MaxLoaderCount is 0.")
		return nil, containers.ErrInvalidTableConfig
	}
	table, err := containers.NewHashtable(loaderRefSize, config.MaxLoaderCount, block, true)
	if err != nil {
		return nil, err
	}
	am := &AssetManager{
		basePath: config.BasePath,
		loaders:  table,
	}

	// Auto-register known loader types here.
	if err := am.RegisterLoader(&loaders.ImageLoader{Memory: mem}); err != nil {
		return nil, err
	}
	if err := am.RegisterLoader(&loaders.MaterialLoader{}); err != nil {
		return nil, err
	}
	core.LogInfo("Resource system initialized with base path '%s'.", config.BasePath)
	return am, nil
}

func (am *AssetManager) BasePath() string {
	return am.basePath
}

// RegisterLoader adds a loader. Type names are unique.
func (am *AssetManager) RegisterLoader(loader Loader) error {
	name := loader.TypeName()
	if am.loaders.Contains(name) {
		core.LogError("resource system RegisterLoader: loader of type '%s' already exists and will not be registered.", name)
		return ErrLoaderExists
	}
	if err := am.loaders.SetPtr(name, loader); err != nil {
		core.LogError("resource system RegisterLoader: no room for loader '%s': %s", name, err)
		return err
	}
	core.LogInfo("Loader registered for type '%s'.", name)
	return nil
}

func (am *AssetManager) loader(typeName string) (Loader, error) {
	ref, err := am.loaders.GetPtr(typeName)
	if err != nil {
		core.LogError("resource system Load: no loader for type '%s' was found.", typeName)
		return nil, fmt.Errorf("%s: %w", typeName, ErrNoLoader)
	}
	return ref.(Loader), nil
}

// Load loads name with the loader of a built-in resource type.
func (am *AssetManager) Load(name string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	var typeName string
	switch resourceType {
	case metadata.ResourceTypeImage:
		typeName = loaders.ImageTypeName
	case metadata.ResourceTypeMaterial:
		typeName = loaders.MaterialTypeName
	default:
		core.LogError("resource system Load called with resource type %s, use LoadCustom.", resourceType)
		return nil, fmt.Errorf("%s: %w", resourceType, ErrNoLoader)
	}
	return am.LoadCustom(name, typeName, params)
}

// LoadCustom loads name with the loader registered under typeName.
func (am *AssetManager) LoadCustom(name string, typeName string, params interface{}) (*metadata.Resource, error) {
	loader, err := am.loader(typeName)
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(am.basePath, loader.TypePath())
	resource, err := loader.Load(dir, name, params)
	if err != nil {
		return nil, err
	}
	resource.LoaderName = typeName
	return resource, nil
}

func (am *AssetManager) Unload(resource *metadata.Resource) error {
	if resource == nil {
		return nil
	}
	loader, err := am.loader(resource.LoaderName)
	if err != nil {
		return err
	}
	return loader.Unload(resource)
}

// Watch starts reporting changes below the base path. Changes are picked up
// with PollChanges.
func (am *AssetManager) Watch() error {
	if am.fsnotify != nil {
		return ErrWatcherRunning
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	am.fsnotify = fsWatch
	am.changes = make(chan AssetChange, changeQueueSize)
	am.done = make(chan struct{})

	if err := am.watchRecursive(am.basePath); err != nil {
		am.stopWatching()
		return err
	}
	go am.start(am.fsnotify, am.changes, am.done)
	core.LogInfo("watching '%s' for asset changes", am.basePath)
	return nil
}

// PollChanges returns the changes seen since the last call without blocking.
func (am *AssetManager) PollChanges() []AssetChange {
	if am.changes == nil {
		return nil
	}
	var out []AssetChange
	for {
		select {
		case c := <-am.changes:
			out = append(out, c)
		default:
			return out
		}
	}
}

func (am *AssetManager) start(watcher *fsnotify.Watcher, changes chan<- AssetChange, done <-chan struct{}) {
	for {
		select {
		case e, ok := <-watcher.Events:
			if !ok {
				return
			}
			if e.Op&fsnotify.Create != 0 {
				if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
					if err := am.watchRecursive(e.Name); err != nil {
						core.LogWarn("unable to watch new directory '%s': %s", e.Name, err)
					}
					continue
				}
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			change := AssetChange{
				TypeName: determineAssetType(e.Name),
				Name:     strings.TrimSuffix(filepath.Base(e.Name), filepath.Ext(e.Name)),
				Path:     e.Name,
				Op:       e.Op,
			}
			select {
			case changes <- change:
			default:
				core.LogWarn("asset change queue full, dropping change for '%s'", e.Name)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())

		case <-done:
			return
		}
	}
}

// watchRecursive adds all directories under the given one to the watch list.
func (am *AssetManager) watchRecursive(path string) error {
	return filepath.WalkDir(path, func(walkPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return am.fsnotify.Add(walkPath)
		}
		return nil
	})
}

func (am *AssetManager) stopWatching() {
	if am.fsnotify == nil {
		return
	}
	close(am.done)
	if err := am.fsnotify.Close(); err != nil {
		core.LogWarn("closing asset watcher: %s", err)
	}
	am.fsnotify = nil
}

func (am *AssetManager) Shutdown() error {
	if am == nil {
		return nil
	}
	am.stopWatching()
	am.loaders.Destroy()
	return nil
}

func determineAssetType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case loaders.MaterialExtension:
		return loaders.MaterialTypeName
	}
	for _, imageExt := range loaders.ImageExtensions {
		if ext == imageExt {
			return loaders.ImageTypeName
		}
	}
	return ""
}

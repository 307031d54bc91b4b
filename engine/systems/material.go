package systems

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spaghettifunk/hearth/engine/assets"
	"github.com/spaghettifunk/hearth/engine/core"
	"github.com/spaghettifunk/hearth/engine/math"
	"github.com/spaghettifunk/hearth/engine/renderer/metadata"
)

var ErrMissingMaterialConfig = errors.New("material load requires a material config")

type MaterialSystemConfig struct {
	MaxMaterialCount uint32
}

type MaterialSystem struct {
	registry     *Registry[metadata.Material, *metadata.Material]
	assetManager *assets.AssetManager
	textures     *TextureSystem
}

func MaterialSystemRequirement(config MaterialSystemConfig) uint64 {
	return RegistryRequirement[metadata.Material](config.MaxMaterialCount)
}

func NewMaterialSystem(config MaterialSystemConfig, block []byte, am *assets.AssetManager, ts *TextureSystem) (*MaterialSystem, error) {
	ms := &MaterialSystem{
		assetManager: am,
		textures:     ts,
	}
	registry, err := NewRegistry[metadata.Material, *metadata.Material]("material", metadata.DefaultMaterialName, config.MaxMaterialCount, block, ResourceHooks[metadata.Material]{
		CreateDefault: ms.createDefaultMaterial,
		Load:          ms.loadMaterial,
		Destroy:       ms.destroyMaterial,
	})
	if err != nil {
		return nil, err
	}
	ms.registry = registry
	core.LogInfo("Material system initialized.")
	return ms, nil
}

func (ms *MaterialSystem) Shutdown() error {
	if ms == nil || ms.registry == nil {
		return nil
	}
	ms.registry.Shutdown()
	ms.registry = nil
	return nil
}

// Acquire loads materials/<name>.hmt through the asset manager and acquires
// the material it describes.
func (ms *MaterialSystem) Acquire(name string) (*metadata.Material, error) {
	if strings.EqualFold(name, metadata.DefaultMaterialName) {
		// The registry warns about the misuse and hands back the default.
		return ms.registry.Acquire(name, false, nil)
	}
	if _, ok := ms.registry.Get(name); ok && ms.registry.ReferenceCount(name) > 0 {
		// Already resident, only the count changes.
		return ms.registry.Acquire(name, false, nil)
	}

	materialResource, err := ms.assetManager.Load(name, metadata.ResourceTypeMaterial, nil)
	if err != nil {
		core.LogError("Failed to load material resource, returning nil.")
		return nil, err
	}
	defer func() {
		if err := ms.assetManager.Unload(materialResource); err != nil {
			core.LogWarn(err.Error())
		}
	}()

	config, ok := materialResource.Data.(*metadata.MaterialConfig)
	if !ok || config == nil {
		return nil, fmt.Errorf("material resource '%s': %w", name, ErrMissingMaterialConfig)
	}
	// The file name is the identity of the material.
	cfg := *config
	cfg.Name = name
	return ms.AcquireFromConfig(cfg)
}

func (ms *MaterialSystem) AcquireFromConfig(config metadata.MaterialConfig) (*metadata.Material, error) {
	return ms.registry.Acquire(config.Name, config.AutoRelease, &config)
}

func (ms *MaterialSystem) Release(name string) error {
	if strings.EqualFold(name, metadata.DefaultMaterialName) {
		return nil
	}
	return ms.registry.Release(name)
}

func (ms *MaterialSystem) GetDefault() *metadata.Material {
	return ms.registry.Default()
}

// Lookup returns the material in slot handle. InvalidID resolves to the
// default material.
func (ms *MaterialSystem) Lookup(handle uint32) *metadata.Material {
	if handle == metadata.InvalidID {
		return ms.registry.Default()
	}
	return ms.registry.Lookup(handle)
}

func (ms *MaterialSystem) ReferenceCount(name string) uint64 {
	return ms.registry.ReferenceCount(name)
}

func (ms *MaterialSystem) Loaded() int {
	return ms.registry.Loaded()
}

// DiffuseTexture resolves the diffuse map of a material.
func (ms *MaterialSystem) DiffuseTexture(material *metadata.Material) *metadata.Texture {
	if material == nil {
		return ms.textures.GetDefault()
	}
	if texture := ms.textures.Lookup(material.DiffuseMap.Texture); texture != nil {
		return texture
	}
	return ms.textures.GetDefault()
}

func (ms *MaterialSystem) loadMaterial(name string, material *metadata.Material, params interface{}) error {
	config, ok := params.(*metadata.MaterialConfig)
	if !ok || config == nil {
		return fmt.Errorf("material '%s': %w", name, ErrMissingMaterialConfig)
	}

	// Diffuse colour
	material.DiffuseColour = config.DiffuseColour
	material.InternalID = metadata.InvalidID
	material.Generation = 0

	// Diffuse map
	material.DiffuseMap.Use = metadata.TextureUseMapDiffuse
	material.DiffuseMap.Texture = metadata.InvalidID
	if len(config.DiffuseMapName) > 0 {
		texture, err := ms.textures.Acquire(config.DiffuseMapName, true)
		if err != nil {
			core.LogWarn("Unable to load texture '%s' for material '%s', using default.", config.DiffuseMapName, name)
		} else {
			material.DiffuseMap.Texture = texture.ID
		}
	}
	return nil
}

func (ms *MaterialSystem) destroyMaterial(material *metadata.Material) {
	// Release texture references.
	if material.DiffuseMap.Texture != metadata.InvalidID {
		if texture := ms.textures.Lookup(material.DiffuseMap.Texture); texture != nil {
			if err := ms.textures.Release(texture.Name()); err != nil {
				core.LogWarn("material '%s' could not release texture '%s': %s", material.Name(), texture.Name(), err)
			}
		}
	}
	material.DiffuseMap.Texture = metadata.InvalidID
}

func (ms *MaterialSystem) createDefaultMaterial(material *metadata.Material) error {
	material.InternalID = metadata.InvalidID
	material.Generation = metadata.InvalidID
	material.DiffuseColour = math.NewVec4One()
	material.DiffuseMap.Use = metadata.TextureUseMapDiffuse
	material.DiffuseMap.Texture = metadata.InvalidID
	if ms.textures.GetDefault() == nil {
		return core.ErrNotInitialized
	}
	return nil
}

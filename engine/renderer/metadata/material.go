package metadata

import "github.com/spaghettifunk/hearth/engine/math"

/** @brief The name of the default material. */
const DefaultMaterialName string = "default"

/**
 * @brief Material configuration typically loaded from
 * a file or created in code to load a material from.
 */
type MaterialConfig struct {
	/** @brief The name of the material. */
	Name string
	/** @brief The file format version. */
	Version uint32
	/** @brief Indicates if the material should be automatically released when no references to it remain. */
	AutoRelease bool
	/** @brief The diffuse colour of the material. */
	DiffuseColour math.Vec4
	/** @brief The diffuse map name. */
	DiffuseMapName string
}

/** @brief A texture used by a material, referenced by texture handle. */
type TextureMap struct {
	Use TextureUse
	/** @brief Handle of the texture, InvalidID means the default texture. */
	Texture uint32
}

type TextureUse uint8

const (
	TextureUseUnknown TextureUse = iota
	TextureUseMapDiffuse
)

/**
 * @brief A material, which represents various properties
 * of a surface in the world such as texture and colour.
 */
type Material struct {
	/** @brief The slot index of the material, InvalidID when the slot is free. */
	ID uint32
	/** @brief The material generation. Incremented every time the material is changed. */
	Generation uint32
	/** @brief The internal material id. Used by the renderer backend to map to internal resources. */
	InternalID uint32
	/** @brief The diffuse colour. */
	DiffuseColour math.Vec4
	/** @brief The diffuse texture map. */
	DiffuseMap TextureMap
	name       [MaterialNameMaxLength]byte
}

func (m *Material) Name() string { return nameString(m.name[:]) }

func (m *Material) SetName(name string) bool { return setName(m.name[:], name) }

func (m *Material) Handle() uint32 { return m.ID }

func (m *Material) SetHandle(id uint32) { m.ID = id }

package metadata

import (
	"github.com/spaghettifunk/hearth/engine/math"
)

/** @brief The name of the default geometry. */
const DefaultGeometryName string = "default"

/**
 * @brief Represents the configuration for a geometry.
 */
type GeometryConfig struct {
	/** @brief An array of Vertices. */
	Vertices []math.Vertex3D
	/** @brief An array of Indices. */
	Indices []uint32

	Center     math.Vec3
	MinExtents math.Vec3
	MaxExtents math.Vec3

	/** @brief The Name of the geometry. Generated when empty. */
	Name string
	/** @brief The name of the material used by the geometry. */
	MaterialName string
}

/**
 * @brief Represents actual geometry in the world.
 * Typically (but not always, depending on use) paired with a material.
 */
type Geometry struct {
	/** @brief The slot index of the geometry, InvalidID when the slot is free. */
	ID uint32
	/** @brief The internal geometry identifier, used by the renderer backend to map to internal resources. */
	InternalID uint32
	/** @brief The geometry generation. Incremented every time the geometry changes. */
	Generation uint16
	/** @brief The center of the geometry in local coordinates. */
	Center math.Vec3
	/** @brief The extents of the geometry in local coordinates. */
	Extents math.Extents3D
	/** @brief Handle of the material, InvalidID means the default material. */
	Material uint32
	name     [GeometryNameMaxLength]byte
}

func (g *Geometry) Name() string { return nameString(g.name[:]) }

func (g *Geometry) SetName(name string) bool { return setName(g.name[:], name) }

func (g *Geometry) Handle() uint32 { return g.ID }

func (g *Geometry) SetHandle(id uint32) { g.ID = id }

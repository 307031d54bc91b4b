package systems

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/spaghettifunk/hearth/engine/core"
	"github.com/spaghettifunk/hearth/engine/math"
	"github.com/spaghettifunk/hearth/engine/renderer"
	"github.com/spaghettifunk/hearth/engine/renderer/metadata"
)

var (
	ErrMissingGeometryConfig = errors.New("geometry load requires a geometry config")
	ErrInvalidGeometryID     = errors.New("invalid geometry id")
)

type GeometrySystemConfig struct {
	/**
	 * @brief NOTE: Should be significantly greater than the number of static meshes because
	 * the there can and will be more than one of these per mesh.
	 * Take other systems into account as well.
	 */
	MaxGeometryCount uint32
}

type GeometrySystem struct {
	registry  *Registry[metadata.Geometry, *metadata.Geometry]
	renderer  *renderer.Renderer
	materials *MaterialSystem
}

func GeometrySystemRequirement(config GeometrySystemConfig) uint64 {
	return RegistryRequirement[metadata.Geometry](config.MaxGeometryCount)
}

func NewGeometrySystem(config GeometrySystemConfig, block []byte, r *renderer.Renderer, ms *MaterialSystem) (*GeometrySystem, error) {
	gs := &GeometrySystem{
		renderer:  r,
		materials: ms,
	}
	registry, err := NewRegistry[metadata.Geometry, *metadata.Geometry]("geometry", metadata.DefaultGeometryName, config.MaxGeometryCount, block, ResourceHooks[metadata.Geometry]{
		CreateDefault: gs.createDefaultGeometry,
		Load:          gs.createGeometry,
		Destroy:       gs.destroyGeometry,
	})
	if err != nil {
		return nil, err
	}
	gs.registry = registry
	core.LogInfo("Geometry system initialized.")
	return gs, nil
}

func (gs *GeometrySystem) Shutdown() error {
	if gs == nil || gs.registry == nil {
		return nil
	}
	gs.registry.Shutdown()
	gs.registry = nil
	return nil
}

/**
 * @brief Acquires an existing geometry by id.
 *
 * @param id The geometry identifier to acquire by.
 * @return A pointer to the acquired geometry or an error if failed.
 */
func (gs *GeometrySystem) AcquireByID(id uint32) (*metadata.Geometry, error) {
	geometry := gs.registry.Lookup(id)
	if geometry == nil {
		err := fmt.Errorf("geometry system AcquireByID cannot load geometry id %d: %w", id, ErrInvalidGeometryID)
		core.LogError(err.Error())
		return nil, err
	}
	return gs.registry.Acquire(geometry.Name(), false, nil)
}

/**
 * @brief Registers and acquires a new geometry using the given config.
 * An empty name gets a generated one.
 */
func (gs *GeometrySystem) AcquireFromConfig(config metadata.GeometryConfig, autoRelease bool) (*metadata.Geometry, error) {
	if config.Name == "" {
		config.Name = uuid.NewString()
	}
	return gs.registry.Acquire(config.Name, autoRelease, &config)
}

/**
 * @brief Releases a reference to the provided geometry.
 */
func (gs *GeometrySystem) Release(geometry *metadata.Geometry) error {
	// The default geometry is never part of the registry.
	if geometry == nil || geometry.ID == metadata.InvalidID {
		return nil
	}
	return gs.registry.Release(geometry.Name())
}

func (gs *GeometrySystem) GetDefault() *metadata.Geometry {
	return gs.registry.Default()
}

func (gs *GeometrySystem) Lookup(handle uint32) *metadata.Geometry {
	if handle == metadata.InvalidID {
		return gs.registry.Default()
	}
	return gs.registry.Lookup(handle)
}

func (gs *GeometrySystem) ReferenceCount(name string) uint64 {
	return gs.registry.ReferenceCount(name)
}

func (gs *GeometrySystem) Loaded() int {
	return gs.registry.Loaded()
}

// RenderData resolves the material inputs of geometry for one draw.
func (gs *GeometrySystem) RenderData(geometry *metadata.Geometry, model mgl32.Mat4) metadata.GeometryRenderData {
	material := gs.materials.Lookup(geometry.Material)
	if material == nil {
		material = gs.materials.GetDefault()
	}
	return metadata.GeometryRenderData{
		Model:          model,
		Geometry:       geometry,
		DiffuseColour:  material.DiffuseColour,
		DiffuseTexture: gs.materials.DiffuseTexture(material),
	}
}

func (gs *GeometrySystem) createGeometry(name string, geometry *metadata.Geometry, params interface{}) error {
	config, ok := params.(*metadata.GeometryConfig)
	if !ok || config == nil {
		return fmt.Errorf("geometry '%s': %w", name, ErrMissingGeometryConfig)
	}

	// Copy over extents, center, etc.
	geometry.Center = config.Center
	geometry.Extents.Min = config.MinExtents
	geometry.Extents.Max = config.MaxExtents
	if geometry.Extents == (math.Extents3D{}) {
		geometry.Extents, geometry.Center = math.ComputeExtents(config.Vertices)
	}
	geometry.Generation = 0
	geometry.InternalID = metadata.InvalidID
	geometry.Material = metadata.InvalidID

	// Send the geometry off to the renderer to be uploaded to the GPU.
	if err := gs.renderer.CreateGeometry(geometry, config.Vertices, config.Indices); err != nil {
		return err
	}

	// Acquire the material
	if len(config.MaterialName) > 0 {
		material, err := gs.materials.Acquire(config.MaterialName)
		if err != nil {
			core.LogWarn("Unable to acquire material '%s' for geometry '%s', using default.", config.MaterialName, name)
		} else {
			geometry.Material = material.ID
		}
	}
	return nil
}

func (gs *GeometrySystem) destroyGeometry(geometry *metadata.Geometry) {
	gs.renderer.DestroyGeometry(geometry)

	// Release the material.
	if geometry.Material != metadata.InvalidID {
		if material := gs.materials.Lookup(geometry.Material); material != nil {
			if err := gs.materials.Release(material.Name()); err != nil {
				core.LogWarn("geometry '%s' could not release material '%s': %s", geometry.Name(), material.Name(), err)
			}
		}
	}
	geometry.Material = metadata.InvalidID
}

func (gs *GeometrySystem) createDefaultGeometry(geometry *metadata.Geometry) error {
	verts := make([]math.Vertex3D, 4)

	f := float32(10.0)

	verts[0].Position.X = -0.5 * f // 0    3
	verts[0].Position.Y = -0.5 * f //
	verts[0].Texcoord.X = 0.0      //
	verts[0].Texcoord.Y = 0.0      // 2    1

	verts[1].Position.X = 0.5 * f
	verts[1].Position.Y = 0.5 * f
	verts[1].Texcoord.X = 1.0
	verts[1].Texcoord.Y = 1.0

	verts[2].Position.X = -0.5 * f
	verts[2].Position.Y = 0.5 * f
	verts[2].Texcoord.X = 0.0
	verts[2].Texcoord.Y = 1.0

	verts[3].Position.X = 0.5 * f
	verts[3].Position.Y = -0.5 * f
	verts[3].Texcoord.X = 1.0
	verts[3].Texcoord.Y = 0.0

	indices := []uint32{0, 1, 2, 0, 3, 1}

	geometry.Extents, geometry.Center = math.ComputeExtents(verts)
	// The default geometry uses the default material.
	geometry.Material = metadata.InvalidID
	geometry.InternalID = metadata.InvalidID

	// Send the geometry off to the renderer to be uploaded to the GPU.
	if err := gs.renderer.CreateGeometry(geometry, verts, indices); err != nil {
		core.LogFatal("Failed to create default geometry. Application cannot continue.")
		return err
	}
	return nil
}

/**
 * @brief Generates configuration for plane geometries given the provided parameters.
 * NOTE: vertex and index arrays are dynamically allocated and should be freed upon object disposal.
 * Thus, this should not be considered production code.
 *
 * @param width The overall width of the plane. Must be non-zero.
 * @param height The overall height of the plane. Must be non-zero.
 * @param xSegmentCount The number of segments along the x-axis in the plane. Must be non-zero.
 * @param ySegmentCount The number of segments along the y-axis in the plane. Must be non-zero.
 * @param tileX The number of times the texture should tile across the plane on the x-axis. Must be non-zero.
 * @param tileY The number of times the texture should tile across the plane on the y-axis. Must be non-zero.
 * @param name The name of the generated geometry.
 * @param materialName The name of the material to be used.
 * @return A geometry configuration which can then be fed into AcquireFromConfig().
 */
func GeneratePlaneConfig(width, height float32, xSegmentCount, ySegmentCount uint32, tileX, tileY float32, name, materialName string) *metadata.GeometryConfig {
	if width == 0 {
		core.LogWarn("Width must be nonzero. Defaulting to one.")
		width = 1.0
	}
	if height == 0 {
		core.LogWarn("Height must be nonzero. Defaulting to one.")
		height = 1.0
	}
	if xSegmentCount < 1 {
		core.LogWarn("xSegmentCount must be a positive number. Defaulting to one.")
		xSegmentCount = 1
	}
	if ySegmentCount < 1 {
		core.LogWarn("ySegmentCount must be a positive number. Defaulting to one.")
		ySegmentCount = 1
	}
	if tileX == 0 {
		core.LogWarn("tileX must be nonzero. Defaulting to one.")
		tileX = 1.0
	}
	if tileY == 0 {
		core.LogWarn("tileY must be nonzero. Defaulting to one.")
		tileY = 1.0
	}

	config := &metadata.GeometryConfig{
		Vertices:     make([]math.Vertex3D, xSegmentCount*ySegmentCount*4), // 4 verts per segment
		Indices:      make([]uint32, xSegmentCount*ySegmentCount*6),        // 6 indices per segment
		Name:         name,
		MaterialName: materialName,
	}

	// TODO: This generates extra vertices, but we can always deduplicate them later.
	segWidth := width / float32(xSegmentCount)
	segHeight := height / float32(ySegmentCount)
	halfWidth := width * 0.5
	halfHeight := height * 0.5
	for y := uint32(0); y < ySegmentCount; y++ {
		for x := uint32(0); x < xSegmentCount; x++ {
			// Generate vertices
			minX := (float32(x) * segWidth) - halfWidth
			minY := (float32(y) * segHeight) - halfHeight
			maxX := minX + segWidth
			maxY := minY + segHeight
			minUVX := (float32(x) / float32(xSegmentCount)) * tileX
			minUVY := (float32(y) / float32(ySegmentCount)) * tileY
			maxUVX := (float32(x+1) / float32(xSegmentCount)) * tileX
			maxUVY := (float32(y+1) / float32(ySegmentCount)) * tileY

			vOffset := ((y * xSegmentCount) + x) * 4
			v0 := &config.Vertices[vOffset+0]
			v1 := &config.Vertices[vOffset+1]
			v2 := &config.Vertices[vOffset+2]
			v3 := &config.Vertices[vOffset+3]

			v0.Position = math.NewVec3(minX, minY, 0)
			v0.Texcoord = math.NewVec2(minUVX, minUVY)

			v1.Position = math.NewVec3(maxX, maxY, 0)
			v1.Texcoord = math.NewVec2(maxUVX, maxUVY)

			v2.Position = math.NewVec3(minX, maxY, 0)
			v2.Texcoord = math.NewVec2(minUVX, maxUVY)

			v3.Position = math.NewVec3(maxX, minY, 0)
			v3.Texcoord = math.NewVec2(maxUVX, minUVY)

			// Generate indices
			iOffset := ((y * xSegmentCount) + x) * 6
			config.Indices[iOffset+0] = vOffset + 0
			config.Indices[iOffset+1] = vOffset + 1
			config.Indices[iOffset+2] = vOffset + 2
			config.Indices[iOffset+3] = vOffset + 0
			config.Indices[iOffset+4] = vOffset + 3
			config.Indices[iOffset+5] = vOffset + 1
		}
	}

	math.GenerateNormals(config.Vertices, config.Indices)
	math.GenerateTangents(config.Vertices, config.Indices)

	extents, center := math.ComputeExtents(config.Vertices)
	config.MinExtents = extents.Min
	config.MaxExtents = extents.Max
	config.Center = center
	return config
}

// cubeFace describes one side of a cube: its outward normal and the positions
// of its four corners in the order 0 3 / 2 1.
type cubeFace struct {
	normal  math.Vec3
	corners [4]math.Vec3
}

func GenerateCubeConfig(width, height, depth, tileX, tileY float32, name, materialName string) *metadata.GeometryConfig {
	if width == 0 {
		core.LogWarn("Width must be nonzero. Defaulting to one.")
		width = 1.0
	}
	if height == 0 {
		core.LogWarn("Height must be nonzero. Defaulting to one.")
		height = 1.0
	}
	if depth == 0 {
		core.LogWarn("Depth must be nonzero. Defaulting to one.")
		depth = 1
	}
	if tileX == 0 {
		core.LogWarn("tileX must be nonzero. Defaulting to one.")
		tileX = 1.0
	}
	if tileY == 0 {
		core.LogWarn("tileY must be nonzero. Defaulting to one.")
		tileY = 1.0
	}

	minX, minY, minZ := -width*0.5, -height*0.5, -depth*0.5
	maxX, maxY, maxZ := width*0.5, height*0.5, depth*0.5

	faces := [6]cubeFace{
		// Front face
		{math.NewVec3(0, 0, 1), [4]math.Vec3{{X: minX, Y: minY, Z: maxZ}, {X: maxX, Y: maxY, Z: maxZ}, {X: minX, Y: maxY, Z: maxZ}, {X: maxX, Y: minY, Z: maxZ}}},
		// Back face
		{math.NewVec3(0, 0, -1), [4]math.Vec3{{X: maxX, Y: minY, Z: minZ}, {X: minX, Y: maxY, Z: minZ}, {X: maxX, Y: maxY, Z: minZ}, {X: minX, Y: minY, Z: minZ}}},
		// Left
		{math.NewVec3(-1, 0, 0), [4]math.Vec3{{X: minX, Y: minY, Z: minZ}, {X: minX, Y: maxY, Z: maxZ}, {X: minX, Y: maxY, Z: minZ}, {X: minX, Y: minY, Z: maxZ}}},
		// Right face
		{math.NewVec3(1, 0, 0), [4]math.Vec3{{X: maxX, Y: minY, Z: maxZ}, {X: maxX, Y: maxY, Z: minZ}, {X: maxX, Y: maxY, Z: maxZ}, {X: maxX, Y: minY, Z: minZ}}},
		// Bottom face
		{math.NewVec3(0, -1, 0), [4]math.Vec3{{X: maxX, Y: minY, Z: maxZ}, {X: minX, Y: minY, Z: minZ}, {X: maxX, Y: minY, Z: minZ}, {X: minX, Y: minY, Z: maxZ}}},
		// Top face
		{math.NewVec3(0, 1, 0), [4]math.Vec3{{X: minX, Y: maxY, Z: maxZ}, {X: maxX, Y: maxY, Z: minZ}, {X: minX, Y: maxY, Z: minZ}, {X: maxX, Y: maxY, Z: maxZ}}},
	}
	texcoords := [4]math.Vec2{{X: 0, Y: 0}, {X: tileX, Y: tileY}, {X: 0, Y: tileY}, {X: tileX, Y: 0}}

	config := &metadata.GeometryConfig{
		Vertices:     make([]math.Vertex3D, 4*6), // 4 verts per side, 6 sides
		Indices:      make([]uint32, 6*6),        // 6 indices per side, 6 sides
		Name:         name,
		MaterialName: materialName,
		MinExtents:   math.NewVec3(minX, minY, minZ),
		MaxExtents:   math.NewVec3(maxX, maxY, maxZ),
		// Always 0 since min/max of each axis are -/+ half of the size.
		Center: math.NewVec3Zero(),
	}
	for i, face := range faces {
		vOffset := uint32(i * 4)
		for c := 0; c < 4; c++ {
			v := &config.Vertices[int(vOffset)+c]
			v.Position = face.corners[c]
			v.Texcoord = texcoords[c]
			v.Normal = face.normal
		}
		iOffset := i * 6
		config.Indices[iOffset+0] = vOffset + 0
		config.Indices[iOffset+1] = vOffset + 1
		config.Indices[iOffset+2] = vOffset + 2
		config.Indices[iOffset+3] = vOffset + 0
		config.Indices[iOffset+4] = vOffset + 3
		config.Indices[iOffset+5] = vOffset + 1
	}

	math.GenerateTangents(config.Vertices, config.Indices)
	return config
}

package math

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, float32(1), Clamp(float32(1.5), 0, 1))
	assert.Equal(t, float32(0), Clamp(float32(-2), 0, 1))
	assert.Equal(t, 5, Clamp(5, 0, 10))
}

func TestGenerateNormalsForFlatQuad(t *testing.T) {
	vertices := []Vertex3D{
		{Position: NewVec3(0, 0, 0)},
		{Position: NewVec3(1, 0, 0)},
		{Position: NewVec3(0, 1, 0)},
	}
	GenerateNormals(vertices, []uint32{0, 1, 2})
	for _, v := range vertices {
		assert.True(t, v.Normal.Compare(NewVec3(0, 0, 1), K_FLOAT_EPSILON), v.Normal)
	}
}

func TestComputeExtents(t *testing.T) {
	ext, center := ComputeExtents([]Vertex3D{
		{Position: NewVec3(-1, -2, 0)},
		{Position: NewVec3(3, 2, 4)},
	})
	assert.Equal(t, NewVec3(-1, -2, 0), ext.Min)
	assert.Equal(t, NewVec3(3, 2, 4), ext.Max)
	assert.Equal(t, NewVec3(1, 0, 2), center)
}

func TestSaturate(t *testing.T) {
	v := Vec4{X: -1, Y: 0.25, Z: 2, W: 1}.Saturate()
	assert.Equal(t, Vec4{X: 0, Y: 0.25, Z: 1, W: 1}, v)
}

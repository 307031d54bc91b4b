package math

import "golang.org/x/exp/constraints"

// Clamp returns f limited to [low, high].
func Clamp[T constraints.Ordered](f, low, high T) T {
	return max(low, min(f, high))
}

// Saturate clamps every component to [0, 1].
func (v Vec4) Saturate() Vec4 {
	return Vec4{
		X: Clamp(v.X, 0, 1),
		Y: Clamp(v.Y, 0, 1),
		Z: Clamp(v.Z, 0, 1),
		W: Clamp(v.W, 0, 1),
	}
}

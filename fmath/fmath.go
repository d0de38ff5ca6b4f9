package fmath

import (
	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
)

// Clamp clamps the given value to the given range.
func Clamp(num, min, max float32) float32 {
	if num < min {
		return min
	}
	return math32.Min(num, max)
}

// IsFinite reports whether f is neither NaN nor an infinity.
func IsFinite(f float32) bool {
	return !math32.IsNaN(f) && !math32.IsInf(f, 0)
}

// Flatten zeroes the vertical component of a vector.
func Flatten(v mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{v.X(), 0, v.Z()}
}

// HzLenSqr returns the squared horizontal length of a vector.
func HzLenSqr(v mgl32.Vec3) float32 {
	return v.X()*v.X() + v.Z()*v.Z()
}

// HzDistSqr returns the squared horizontal distance between two points.
func HzDistSqr(a, b mgl32.Vec3) float32 {
	return HzLenSqr(a.Sub(b))
}

// NormalizeOrZero normalizes v, returning the zero vector for degenerate input
// instead of NaN.
func NormalizeOrZero(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l <= 1e-8 || !IsFinite(l) {
		return mgl32.Vec3{}
	}
	return v.Mul(1 / l)
}

// ClampLen limits the length of v to max.
func ClampLen(v mgl32.Vec3, max float32) mgl32.Vec3 {
	l := v.Len()
	if l <= max || l == 0 {
		return v
	}
	return v.Mul(max / l)
}

// Forward returns the forward vector corresponding to an orientation.
func Forward(q mgl32.Quat) mgl32.Vec3 {
	return q.Rotate(mgl32.Vec3{0, 0, -1})
}

// Right returns the right vector corresponding to an orientation.
func Right(q mgl32.Quat) mgl32.Vec3 {
	return q.Rotate(mgl32.Vec3{1, 0, 0})
}

// Sign returns -1, 0 or 1 depending on the sign of f.
func Sign(f float32) float32 {
	if f > 0 {
		return 1
	}
	if f < 0 {
		return -1
	}
	return 0
}

// ApproxEq determines whether two floating point numbers are close enough to
// each other by a threshold of 1e-5.
func ApproxEq(a, b float32) bool {
	return math32.Abs(a-b) <= 1e-5
}

// BoxFromDimensions returns a feet-origin bounding box from the given dimensions.
func BoxFromDimensions(width, height float32) cube.BBox {
	h := width / 2
	return cube.Box(
		-h, 0, -h,
		h, height, h,
	)
}

// BoxWithHeight returns b with its vertical extent replaced, keeping the
// footprint and the bottom face.
func BoxWithHeight(b cube.BBox, height float32) cube.BBox {
	min := b.Min()
	max := b.Max()
	return cube.Box(min.X(), min.Y(), min.Z(), max.X(), min.Y()+height, max.Z())
}

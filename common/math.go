package common

import (
	"math"
	"unsafe"
)

// Mat4 is a 4x4 matrix stored in column-major order (WebGPU convention).
// Element (row r, column c) lives at index c*4+r.
type Mat4 = [16]float32

// Vec3 is a three component vector.
type Vec3 = [3]float32

// Identity4 returns the 4x4 identity matrix.
func Identity4() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translation4 returns a matrix that translates by (x, y, z).
func Translation4(x, y, z float32) Mat4 {
	m := Identity4()
	m[12], m[13], m[14] = x, y, z
	return m
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), int(size)*len(data))
}

// Mul4 multiplies two column-major 4x4 matrices.
//
// Parameters:
//   - a: left-hand matrix
//   - b: right-hand matrix
//
// Returns:
//   - Mat4: the product a * b
func Mul4(a, b Mat4) Mat4 {
	var out Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a[k*4+row] * b[col*4+k]
			}
			out[col*4+row] = sum
		}
	}
	return out
}

// MulVec4 multiplies the column vector v by m.
func MulVec4(m Mat4, v [4]float32) [4]float32 {
	var out [4]float32
	for row := 0; row < 4; row++ {
		out[row] = m[row]*v[0] + m[4+row]*v[1] + m[8+row]*v[2] + m[12+row]*v[3]
	}
	return out
}

// Radians converts an angle in degrees to radians.
func Radians(deg float32) float32 {
	return deg * math.Pi / 180
}

// Perspective creates a right-handed perspective projection matrix that maps
// view-space depth onto the WebGPU clip range [0, 1].
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - Mat4: the projection matrix
func Perspective(fovY, aspect, near, far float32) Mat4 {
	f := 1.0 / float32(math.Tan(float64(fovY)/2.0))
	var out Mat4
	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	return out
}

// LookAt creates a right-handed view matrix for a camera at eye looking at
// target. A degenerate basis (eye == target, or up parallel to the view
// direction) yields a matrix with zero rows instead of NaNs.
//
// Parameters:
//   - eye: camera position in world space
//   - target: point the camera looks at
//   - up: up direction, typically (0, 1, 0)
//
// Returns:
//   - Mat4: the view matrix
func LookAt(eye, target, up Vec3) Mat4 {
	z := Normalize3(Sub3(eye, target))
	x := Normalize3(Cross3(up, z))
	y := Cross3(z, x)

	return Mat4{
		x[0], y[0], z[0], 0,
		x[1], y[1], z[1], 0,
		x[2], y[2], z[2], 0,
		-Dot3(x, eye), -Dot3(y, eye), -Dot3(z, eye), 1,
	}
}

// Determinant4 returns the determinant of m.
func Determinant4(m Mat4) float32 {
	s0, s1, s2, s3, s4, s5, c0, c1, c2, c3, c4, c5 := minors(m)
	return s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
}

// Invert4 computes the inverse of m with the cofactor method.
//
// Returns:
//   - Mat4: the inverse, or the zero matrix if m is singular
//   - bool: false if m is singular
func Invert4(m Mat4) (Mat4, bool) {
	s0, s1, s2, s3, s4, s5, c0, c1, c2, c3, c4, c5 := minors(m)
	det := s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
	if det == 0 {
		return Mat4{}, false
	}
	inv := 1.0 / det

	return Mat4{
		(m[5]*c5 - m[6]*c4 + m[7]*c3) * inv,
		(-m[1]*c5 + m[2]*c4 - m[3]*c3) * inv,
		(m[13]*s5 - m[14]*s4 + m[15]*s3) * inv,
		(-m[9]*s5 + m[10]*s4 - m[11]*s3) * inv,

		(-m[4]*c5 + m[6]*c2 - m[7]*c1) * inv,
		(m[0]*c5 - m[2]*c2 + m[3]*c1) * inv,
		(-m[12]*s5 + m[14]*s2 - m[15]*s1) * inv,
		(m[8]*s5 - m[10]*s2 + m[11]*s1) * inv,

		(m[4]*c4 - m[5]*c2 + m[7]*c0) * inv,
		(-m[0]*c4 + m[1]*c2 - m[3]*c0) * inv,
		(m[12]*s4 - m[13]*s2 + m[15]*s0) * inv,
		(-m[8]*s4 + m[9]*s2 - m[11]*s0) * inv,

		(-m[4]*c3 + m[5]*c1 - m[6]*c0) * inv,
		(m[0]*c3 - m[1]*c1 + m[2]*c0) * inv,
		(-m[12]*s3 + m[13]*s1 - m[14]*s0) * inv,
		(m[8]*s3 - m[9]*s1 + m[10]*s0) * inv,
	}, true
}

// minors returns the 2x2 sub-determinants of the upper (s) and lower (c) halves.
func minors(m Mat4) (s0, s1, s2, s3, s4, s5, c0, c1, c2, c3, c4, c5 float32) {
	s0 = m[0]*m[5] - m[4]*m[1]
	s1 = m[0]*m[6] - m[4]*m[2]
	s2 = m[0]*m[7] - m[4]*m[3]
	s3 = m[1]*m[6] - m[5]*m[2]
	s4 = m[1]*m[7] - m[5]*m[3]
	s5 = m[2]*m[7] - m[6]*m[3]

	c5 = m[10]*m[15] - m[14]*m[11]
	c4 = m[9]*m[15] - m[13]*m[11]
	c3 = m[9]*m[14] - m[13]*m[10]
	c2 = m[8]*m[15] - m[12]*m[11]
	c1 = m[8]*m[14] - m[12]*m[10]
	c0 = m[8]*m[13] - m[12]*m[9]
	return
}

// Sub3 returns a - b.
func Sub3(a, b Vec3) Vec3 {
	return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// Add3 returns a + b.
func Add3(a, b Vec3) Vec3 {
	return Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// Scale3 returns v * s.
func Scale3(v Vec3, s float32) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// Dot3 returns the dot product of a and b.
func Dot3(a, b Vec3) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// Cross3 returns the cross product a × b.
//
// Parameters:
//   - a: the left operand
//   - b: the right operand
//
// Returns:
//   - Vec3: a vector perpendicular to both, following the right-hand rule
func Cross3(a, b Vec3) Vec3 {
	return Vec3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Length3 returns the euclidean length of v.
func Length3(v Vec3) float32 {
	return float32(math.Sqrt(float64(Dot3(v, v))))
}

// Normalize3 returns v scaled to unit length, or the zero vector if v is zero.
func Normalize3(v Vec3) Vec3 {
	l := Length3(v)
	if l == 0 {
		return Vec3{}
	}
	return Scale3(v, 1/l)
}

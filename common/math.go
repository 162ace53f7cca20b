package common

import (
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Identity resets a 4x4 matrix (flat slice) to the identity matrix.
// The matrix is stored in column-major order.
//
// Parameters:
//   - m: destination slice (must be at least 16 elements)
func Identity(m []float32) {
	for i := range m {
		m[i] = 0
	}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// IdentityMatrix returns a new column-major identity matrix.
//
// Returns:
//   - [16]float32: the identity matrix
func IdentityMatrix() [16]float32 {
	var m [16]float32
	Identity(m[:])
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
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// Mul4 multiplies two 4x4 matrices and stores the result in out.
// All matrices are stored in column-major order (WebGPU convention).
// Result: out = a * b
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - a: left-hand matrix (16 elements)
//   - b: right-hand matrix (16 elements)
func Mul4(out, a, b []float32) {
	var buf [16]float32
	for i := 0; i < 4; i++ { // column of B
		for j := 0; j < 4; j++ { // row of A
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += a[k*4+j] * b[i*4+k]
			}
			buf[i*4+j] = sum
		}
	}
	copy(out, buf[:])
}

// Perspective creates a symmetric perspective projection matrix looking down -Z,
// mapping depth into the WebGPU clip range [0, 1].
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
func Perspective(out []float32, fovY, aspect, near, far float32) {
	f := 1.0 / math32.Tan(fovY/2.0)
	Identity(out)

	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	out[15] = 0.0
}

// BuildModelMatrix constructs a 4x4 model matrix from position, Euler rotation, and scale.
// The rotation order is Y * X * Z (yaw-pitch-roll). All matrices are column-major.
// With this order the local forward axis (-Z) maps to (-cos(rotX)*sin(rotY), sin(rotX), -cos(rotX)*cos(rotY)).
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - posX, posY, posZ: translation in world space
//   - rotX, rotY, rotZ: rotation angles in radians around each axis
//   - scaleX, scaleY, scaleZ: scale factors along each axis
func BuildModelMatrix(out []float32, posX, posY, posZ, rotX, rotY, rotZ, scaleX, scaleY, scaleZ float32) {
	sx, cx := math32.Sincos(rotX)
	sy, cy := math32.Sincos(rotY)
	sz, cz := math32.Sincos(rotZ)

	// R = Ry * Rx * Rz, column-major
	out[0] = (cy*cz + sy*sx*sz) * scaleX
	out[1] = (cx * sz) * scaleX
	out[2] = (-sy*cz + cy*sx*sz) * scaleX
	out[3] = 0

	out[4] = (cy*-sz + sy*sx*cz) * scaleY
	out[5] = (cx * cz) * scaleY
	out[6] = (sy*sz + cy*sx*cz) * scaleY
	out[7] = 0

	out[8] = (sy * cx) * scaleZ
	out[9] = (-sx) * scaleZ
	out[10] = (cy * cx) * scaleZ
	out[11] = 0

	out[12] = posX
	out[13] = posY
	out[14] = posZ
	out[15] = 1
}

// InverseAffine inverts an affine (rotation, scale, translation) column-major matrix.
// Used to turn an object's world matrix into a camera-like view matrix.
//
// Parameters:
//   - m: the affine matrix to invert
//
// Returns:
//   - [16]float32: the inverse, or the zero matrix if m is singular
func InverseAffine(m [16]float32) [16]float32 {
	return [16]float32(mgl32.Mat4(m).Inv())
}

// Axis extracts one of the three basis columns of a column-major matrix.
//
// Parameters:
//   - m: the source matrix
//   - column: 0 for X, 1 for Y, 2 for Z
//
// Returns:
//   - mgl32.Vec3: the column as a vector (not normalised)
func Axis(m [16]float32, column int) mgl32.Vec3 {
	return mgl32.Vec3{m[column*4], m[column*4+1], m[column*4+2]}
}

// Forward returns the normalised world-space forward direction of a world matrix, which is
// its negated Z axis in the right-handed convention used by the renderer.
//
// Parameters:
//   - m: the world matrix
//
// Returns:
//   - mgl32.Vec3: the unit forward vector, or the zero vector for a degenerate matrix
func Forward(m [16]float32) mgl32.Vec3 {
	z := Axis(m, 2).Mul(-1)
	if z.Len() == 0 {
		return z
	}
	return z.Normalize()
}

// FacingAngles returns the pitch (X) and yaw (Y) Euler angles that point the local forward
// axis of a BuildModelMatrix transform along dir. Roll is left to the caller.
//
// Parameters:
//   - dir: the direction to face (need not be normalised)
//
// Returns:
//   - float32: rotation about X in radians
//   - float32: rotation about Y in radians
//   - bool: false if dir has zero length
func FacingAngles(dir mgl32.Vec3) (float32, float32, bool) {
	if dir.Len() == 0 {
		return 0, 0, false
	}
	d := dir.Normalize()
	pitch := math32.Asin(mgl32.Clamp(d.Y(), -1, 1))
	yaw := math32.Atan2(-d.X(), -d.Z())
	return pitch, yaw, true
}

// AlignUp rounds n up to the next multiple of align. align must be a power of two.
//
// Parameters:
//   - n: the value to round
//   - align: the alignment
//
// Returns:
//   - uint64: the rounded value
func AlignUp(n, align uint64) uint64 {
	return (n + align - 1) &^ (align - 1)
}

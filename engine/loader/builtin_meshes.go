package loader

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// BuiltinPrefix marks a mesh identifier that names a procedural mesh instead of a file.
const BuiltinPrefix = "builtin:"

// Procedural mesh identifiers.
const (
	BuiltinCube   = BuiltinPrefix + "cube"
	BuiltinQuad   = BuiltinPrefix + "quad"
	BuiltinSphere = BuiltinPrefix + "sphere"
	BuiltinPlane  = BuiltinPrefix + "plane"
)

const (
	sphereStacks = 16
	sphereSlices = 32
)

// Builtin returns a procedural mesh. All shapes fit in a unit box centred on the origin and
// wind counter-clockwise seen from outside.
//
// Parameters:
//   - id: one of the Builtin identifiers
//
// Returns:
//   - MeshData: the geometry
//   - error: error if id names no procedural mesh
func Builtin(id string) (MeshData, error) {
	switch strings.ToLower(id) {
	case BuiltinCube:
		return cubeMesh(id), nil
	case BuiltinQuad:
		return faceMesh(id, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}, 0), nil
	case BuiltinPlane:
		return faceMesh(id, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}, 0), nil
	case BuiltinSphere:
		return sphereMesh(id, sphereStacks, sphereSlices), nil
	default:
		return MeshData{}, fmt.Errorf("unknown builtin mesh %q", id)
	}
}

// appendFace adds a square with normal n spanned by u and v (u x v = n), pushed out along n
// by offset.
func appendFace(m *MeshData, n, u, v mgl32.Vec3, offset float32) {
	base := uint32(len(m.Vertices))
	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for _, c := range corners {
		p := n.Mul(offset).Add(u.Mul(c[0] * 0.5)).Add(v.Mul(c[1] * 0.5))
		m.Vertices = append(m.Vertices, Vertex{
			Position: p,
			Normal:   n,
			UV:       [2]float32{(c[0] + 1) / 2, (1 - c[1]) / 2},
		})
	}
	m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
}

func faceMesh(id string, n, u, v mgl32.Vec3, offset float32) MeshData {
	m := MeshData{Name: id}
	appendFace(&m, n, u, v, offset)
	return m
}

func cubeMesh(id string) MeshData {
	m := MeshData{Name: id}
	faces := [6][3]mgl32.Vec3{
		{{1, 0, 0}, {0, 0, -1}, {0, 1, 0}},
		{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
		{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}},
		{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
		{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
		{{0, 0, -1}, {-1, 0, 0}, {0, 1, 0}},
	}
	for _, f := range faces {
		appendFace(&m, f[0], f[1], f[2], 0.5)
	}
	return m
}

// sphereMesh builds a UV sphere of radius 0.5. Pole triangles that collapse to a line are
// left out.
func sphereMesh(id string, stacks, slices int) MeshData {
	m := MeshData{Name: id}
	for i := 0; i <= stacks; i++ {
		phi := math32.Pi * float32(i) / float32(stacks)
		sp, cp := math32.Sincos(phi)
		for j := 0; j <= slices; j++ {
			theta := 2 * math32.Pi * float32(j) / float32(slices)
			st, ct := math32.Sincos(theta)
			n := mgl32.Vec3{sp * ct, cp, sp * st}
			m.Vertices = append(m.Vertices, Vertex{
				Position: n.Mul(0.5),
				Normal:   n,
				UV:       [2]float32{float32(j) / float32(slices), float32(i) / float32(stacks)},
			})
		}
	}

	idx := func(i, j int) uint32 { return uint32(i*(slices+1) + j) }
	for i := 0; i < stacks; i++ {
		for j := 0; j < slices; j++ {
			if i != 0 {
				m.Indices = append(m.Indices, idx(i, j), idx(i, j+1), idx(i+1, j))
			}
			if i != stacks-1 {
				m.Indices = append(m.Indices, idx(i, j+1), idx(i+1, j+1), idx(i+1, j))
			}
		}
	}
	return m
}

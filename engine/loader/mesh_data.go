package loader

import (
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is one interleaved vertex as read by the vertex programs:
// position at offset 0, normal at 12, uv at 24 (32 bytes).
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	UV       [2]float32
}

// MeshData is CPU-side triangle geometry ready for upload.
type MeshData struct {
	// Name is the identifier the mesh was loaded by.
	Name     string
	Vertices []Vertex
	Indices  []uint32
}

// VertexBytes returns the vertex data as raw bytes.
//
// Returns:
//   - []byte: the interleaved vertices
func (m MeshData) VertexBytes() []byte {
	return common.SliceToBytes(m.Vertices)
}

// IndexBytes returns the index data as raw bytes.
//
// Returns:
//   - []byte: the uint32 indices
func (m MeshData) IndexBytes() []byte {
	return common.SliceToBytes(m.Indices)
}

// generateNormals computes smooth vertex normals from the triangle geometry. Face normals are
// accumulated area-weighted onto each vertex of the triangle and normalised at the end.
// Vertices that belong to no triangle get the up vector.
//
// Parameters:
//   - vertices: the vertex slice to write normal data into
//   - indices: the triangle index buffer
func generateNormals(vertices []Vertex, indices []uint32) {
	n := len(vertices)
	accum := make([]mgl32.Vec3, n)

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if int(i0) >= n || int(i1) >= n || int(i2) >= n {
			continue
		}

		p0 := mgl32.Vec3(vertices[i0].Position)
		p1 := mgl32.Vec3(vertices[i1].Position)
		p2 := mgl32.Vec3(vertices[i2].Position)
		face := p1.Sub(p0).Cross(p2.Sub(p0))

		accum[i0] = accum[i0].Add(face)
		accum[i1] = accum[i1].Add(face)
		accum[i2] = accum[i2].Add(face)
	}

	for i := range n {
		if accum[i].Len() < 1e-6 {
			vertices[i].Normal = [3]float32{0, 1, 0}
			continue
		}
		vertices[i].Normal = accum[i].Normalize()
	}
}

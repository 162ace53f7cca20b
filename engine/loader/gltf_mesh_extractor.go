package loader

import (
	"fmt"
)

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	parser gltfParser
}

// gltfMeshExtractor flattens every triangle primitive of a parsed document into one mesh.
type gltfMeshExtractor interface {
	// ExtractAll merges all primitives of all meshes, re-basing each primitive's indices.
	//
	// Parameters:
	//   - name: the identifier given to the merged mesh
	//
	// Returns:
	//   - MeshData: the merged geometry
	//   - error: error if a primitive cannot be read or the document has no triangles
	ExtractAll(name string) (MeshData, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

// newGLTFMeshExtractor creates a new mesh extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfMeshExtractor: the mesh extractor
func newGLTFMeshExtractor(parser gltfParser) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{parser: parser}
}

func (e *gltfMeshExtractorImpl) ExtractAll(name string) (MeshData, error) {
	doc := e.parser.Document()
	if doc == nil {
		return MeshData{}, fmt.Errorf("no document loaded")
	}

	out := MeshData{Name: name}
	for mi := range doc.Meshes {
		for pi := range doc.Meshes[mi].Primitives {
			vertices, indices, err := e.extractPrimitive(&doc.Meshes[mi].Primitives[pi])
			if err != nil {
				return MeshData{}, fmt.Errorf("mesh %d primitive %d: %w", mi, pi, err)
			}

			base := uint32(len(out.Vertices))
			for _, idx := range indices {
				out.Indices = append(out.Indices, idx+base)
			}
			out.Vertices = append(out.Vertices, vertices...)
		}
	}

	if len(out.Indices) == 0 {
		return MeshData{}, fmt.Errorf("document has no triangle geometry")
	}
	return out, nil
}

// extractPrimitive reads positions, normals, texture coordinates and indices of one primitive.
func (e *gltfMeshExtractorImpl) extractPrimitive(prim *gltfPrimitive) ([]Vertex, []uint32, error) {
	if prim.Mode != nil && *prim.Mode != gltfPrimitiveModeTriangles {
		return nil, nil, fmt.Errorf("unsupported primitive mode: %d (only triangles supported)", *prim.Mode)
	}

	posAccessor, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, nil, fmt.Errorf("primitive has no POSITION attribute")
	}
	positions, err := e.parser.ReadVec3Accessor(posAccessor)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read positions: %w", err)
	}

	vertices := make([]Vertex, len(positions))
	for i, pos := range positions {
		vertices[i].Position = pos
	}

	hasNormals := false
	if acc, ok := prim.Attributes["NORMAL"]; ok {
		normals, err := e.parser.ReadVec3Accessor(acc)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read normals: %w", err)
		}
		for i := range min(len(normals), len(vertices)) {
			vertices[i].Normal = normals[i]
		}
		hasNormals = true
	}

	if acc, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, err := e.parser.ReadVec2Accessor(acc)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read texcoords: %w", err)
		}
		for i := range min(len(uvs), len(vertices)) {
			vertices[i].UV = uvs[i]
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = e.parser.ReadIndicesAccessor(*prim.Indices)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read indices: %w", err)
		}
		for _, idx := range indices {
			if int(idx) >= len(vertices) {
				return nil, nil, fmt.Errorf("index %d out of range for %d vertices", idx, len(vertices))
			}
		}
	} else {
		indices = make([]uint32, len(vertices))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	if !hasNormals {
		generateNormals(vertices, indices)
	}
	return vertices, indices, nil
}

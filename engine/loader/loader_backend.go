package loader

import (
	"io"
)

// loaderBackend reads a mesh file format into CPU-side geometry.
type loaderBackend interface {
	// Load reads a mesh file.
	//
	// Parameters:
	//   - path: the file path to load
	//   - name: the identifier given to the mesh
	//
	// Returns:
	//   - MeshData: the geometry
	//   - error: error if loading fails
	Load(path, name string) (MeshData, error)

	// LoadReader reads a mesh from a stream.
	//
	// Parameters:
	//   - r: the reader providing mesh data
	//   - name: the identifier given to the mesh
	//   - binary: true for the binary container of the format
	//
	// Returns:
	//   - MeshData: the geometry
	//   - error: error if loading fails
	LoadReader(r io.Reader, name string, binary bool) (MeshData, error)
}

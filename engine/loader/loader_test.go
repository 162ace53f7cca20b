package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	uploads  []string
	released []common.MeshHandle
	next     common.MeshHandle
	err      error
}

func (f *fakeUploader) UploadMesh(label string, vertexData, indexData []byte, indexCount int) (common.MeshHandle, error) {
	f.uploads = append(f.uploads, label)
	if f.err != nil {
		return 0, f.err
	}
	f.next++
	return f.next, nil
}

func (f *fakeUploader) ReleaseMesh(h common.MeshHandle) {
	f.released = append(f.released, h)
}

// triangleBuffer returns three positions followed by three uint16 indices.
func triangleBuffer() []byte {
	var buf bytes.Buffer
	positions := [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	_ = binary.Write(&buf, binary.LittleEndian, positions)
	_ = binary.Write(&buf, binary.LittleEndian, []uint16{0, 1, 2, 0})
	return buf.Bytes()
}

func triangleJSON(uri string, length int) string {
	return fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "meshes": [{"primitives": [{"attributes": {"POSITION": 0}, "indices": 1}]}],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
    {"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
  ],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 36},
    {"buffer": 0, "byteOffset": 36, "byteLength": 6}
  ],
  "buffers": [{%s"byteLength": %d}]
}`, uri, length)
}

func glb(jsonDoc string, bin []byte) []byte {
	pad := func(b []byte, with byte) []byte {
		for len(b)%4 != 0 {
			b = append(b, with)
		}
		return b
	}
	j := pad([]byte(jsonDoc), ' ')
	bin = pad(append([]byte(nil), bin...), 0)

	var out bytes.Buffer
	_ = binary.Write(&out, binary.LittleEndian, gltfGLBHeader{Magic: gltfGLBMagic, Version: gltfGLBVersion, Length: uint32(12 + 8 + len(j) + 8 + len(bin))})
	_ = binary.Write(&out, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(j)), ChunkType: gltfGLBChunkJSON})
	out.Write(j)
	_ = binary.Write(&out, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(bin)), ChunkType: gltfGLBChunkBIN})
	out.Write(bin)
	return out.Bytes()
}

func assertTriangle(t *testing.T, data MeshData) {
	t.Helper()
	require.Len(t, data.Vertices, 3)
	assert.Equal(t, []uint32{0, 1, 2}, data.Indices)
	for _, v := range data.Vertices {
		assert.InDelta(t, 1.0, v.Normal[2], 1e-6)
	}
}

func TestBuiltinMeshesWindOutward(t *testing.T) {
	for _, id := range []string{BuiltinCube, BuiltinSphere, BuiltinQuad, BuiltinPlane} {
		t.Run(id, func(t *testing.T) {
			data, err := Builtin(id)
			require.NoError(t, err)
			require.NotEmpty(t, data.Indices)
			assert.Zero(t, len(data.Indices)%3)

			for i := 0; i < len(data.Indices); i += 3 {
				p0 := mgl32.Vec3(data.Vertices[data.Indices[i]].Position)
				p1 := mgl32.Vec3(data.Vertices[data.Indices[i+1]].Position)
				p2 := mgl32.Vec3(data.Vertices[data.Indices[i+2]].Position)
				face := p1.Sub(p0).Cross(p2.Sub(p0))
				n := mgl32.Vec3(data.Vertices[data.Indices[i]].Normal)
				assert.Greater(t, face.Dot(n), float32(0), "triangle %d", i/3)
			}
			for _, v := range data.Vertices {
				for _, c := range v.Position {
					assert.LessOrEqual(t, c, float32(0.5)+1e-6)
					assert.GreaterOrEqual(t, c, float32(-0.5)-1e-6)
				}
			}
		})
	}

	_, err := Builtin("builtin:teapot")
	assert.Error(t, err)
}

func TestCubeLayout(t *testing.T) {
	data, err := Builtin(BuiltinCube)
	require.NoError(t, err)
	assert.Len(t, data.Vertices, 24)
	assert.Len(t, data.Indices, 36)
	assert.Len(t, data.VertexBytes(), 24*32)
	assert.Len(t, data.IndexBytes(), 36*4)
}

func TestReadGLTFWithDataURI(t *testing.T) {
	buf := triangleBuffer()
	uri := fmt.Sprintf(`"uri": "data:application/octet-stream;base64,%s", `, base64.StdEncoding.EncodeToString(buf))
	path := filepath.Join(t.TempDir(), "tri.gltf")
	require.NoError(t, os.WriteFile(path, []byte(triangleJSON(uri, len(buf))), 0o644))

	l := NewLoader(BackendTypeGLTF)
	data, err := l.Read(path)
	require.NoError(t, err)
	assertTriangle(t, data)
	assert.Equal(t, path, data.Name)
}

func TestReadGLTFWithExternalBuffer(t *testing.T) {
	dir := t.TempDir()
	buf := triangleBuffer()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tri.bin"), buf, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tri.gltf"), []byte(triangleJSON(`"uri": "tri.bin", `, len(buf))), 0o644))

	l := NewLoader(BackendTypeGLTF, WithAssetRoot(dir))
	data, err := l.Read("tri.gltf")
	require.NoError(t, err)
	assertTriangle(t, data)
}

func TestReadGLB(t *testing.T) {
	buf := triangleBuffer()
	path := filepath.Join(t.TempDir(), "tri.glb")
	require.NoError(t, os.WriteFile(path, glb(triangleJSON("", len(buf)), buf), 0o644))

	l := NewLoader(BackendTypeGLTF)
	data, err := l.Read(path)
	require.NoError(t, err)
	assertTriangle(t, data)
}

func TestLoadReaderCachesByID(t *testing.T) {
	buf := triangleBuffer()
	up := &fakeUploader{}
	l := NewLoader(BackendTypeGLTF, WithUploader(up))

	h1, err := l.LoadReader("tri", bytes.NewReader(glb(triangleJSON("", len(buf)), buf)), true)
	require.NoError(t, err)
	h2, err := l.LoadReader("tri", bytes.NewReader(nil), true)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Equal(t, []string{"tri"}, up.uploads)
}

func TestLoadCachesAndReleases(t *testing.T) {
	up := &fakeUploader{}
	l := NewLoader(BackendTypeGLTF, WithUploader(up))

	cube, err := l.Load(BuiltinCube)
	require.NoError(t, err)
	again, err := l.Load(BuiltinCube)
	require.NoError(t, err)
	quad, err := l.Load(BuiltinQuad)
	require.NoError(t, err)

	assert.Equal(t, cube, again)
	assert.NotEqual(t, cube, quad)
	assert.Equal(t, []string{BuiltinCube, BuiltinQuad}, up.uploads)
	assert.Equal(t, []string{BuiltinCube, BuiltinQuad}, l.Loaded())

	l.Release()
	assert.ElementsMatch(t, []common.MeshHandle{cube, quad}, up.released)
	_, ok := l.Get(BuiltinCube)
	assert.False(t, ok)
}

func TestLoadErrorsNameTheMesh(t *testing.T) {
	tests := []struct {
		name string
		id   string
		up   *fakeUploader
	}{
		{"missing file", "missing.glb", &fakeUploader{}},
		{"unsupported format", "mesh.obj", &fakeUploader{}},
		{"unknown builtin", "builtin:teapot", &fakeUploader{}},
		{"upload failure", BuiltinCube, &fakeUploader{err: errors.New("out of memory")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLoader(BackendTypeGLTF, WithUploader(tt.up), WithAssetRoot(t.TempDir()))
			_, err := l.Load(tt.id)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.id)
			_, ok := l.Get(tt.id)
			assert.False(t, ok)
		})
	}
}

func TestParserRejectsBadInput(t *testing.T) {
	p := newGLTFParser()
	assert.ErrorIs(t, p.ParseReader(bytes.NewReader([]byte(`{"asset":{"version":"1.0"}}`)), false), errInvalidGLTFVersion)

	bad := glb(`{"asset":{"version":"2.0"}}`, nil)
	binary.LittleEndian.PutUint32(bad[0:4], 0xdeadbeef)
	assert.ErrorIs(t, newGLTFParser().ParseReader(bytes.NewReader(bad), true), errInvalidGLBMagic)

	p = newGLTFParser()
	require.NoError(t, p.ParseReader(bytes.NewReader([]byte(`{"asset":{"version":"2.0"}}`)), false))
	_, err := p.ReadVec3Accessor(0)
	assert.Error(t, err)
}

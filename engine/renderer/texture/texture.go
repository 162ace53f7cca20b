package texture

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
)

// Uploader creates and destroys shader-visible textures. The renderer satisfies it.
type Uploader interface {
	UploadTexture(data common.TextureStagingData) (common.TextureHandle, error)
	ReleaseTexture(h common.TextureHandle)
}

// texture is the implementation of the Texture interface.
type texture struct {
	mu      sync.Mutex
	file    string
	source  common.TextureSource
	staging *common.TextureStagingData
	handle  common.TextureHandle
	err     error
}

// Texture is an image declared by file that becomes a shader-visible handle once loaded.
// Loading is split in two steps so decoding can happen off the render thread:
// Decode reads and converts the image, Upload creates the GPU texture.
type Texture interface {
	// File returns the identifier the texture was declared with.
	//
	// Returns:
	//   - string: the file path or builtin name
	File() string

	// Decode reads and decodes the image into RGBA staging data. Calling it again after a
	// successful decode is a no-op.
	//
	// Returns:
	//   - error: error wrapping the decode failure, reading "Error loading texture <file>"
	Decode() error

	// Upload sends decoded staging data to the GPU and drops the CPU copy.
	//
	// Parameters:
	//   - u: the uploader
	//
	// Returns:
	//   - error: error if the texture was not decoded or the upload failed
	Upload(u Uploader) error

	// Load decodes and uploads the texture.
	//
	// Parameters:
	//   - u: the uploader
	//
	// Returns:
	//   - error: error reading "Error loading texture <file>" on failure
	Load(u Uploader) error

	// Loaded reports whether a handle has been issued.
	//
	// Returns:
	//   - bool: true once Upload succeeded
	Loaded() bool

	// Handle returns the shader-visible handle, zero until loaded.
	//
	// Returns:
	//   - common.TextureHandle: the handle
	Handle() common.TextureHandle

	// Release destroys the GPU texture.
	//
	// Parameters:
	//   - u: the uploader that created it
	Release(u Uploader)
}

var _ Texture = &texture{}

// NewTexture declares a texture by file. Names starting with "builtin:" select a generated
// image (see Builtin) instead of a file on disk.
//
// Parameters:
//   - file: the image path or builtin name
//
// Returns:
//   - Texture: the unloaded texture
func NewTexture(file string) Texture {
	return &texture{file: file, source: common.TextureSource{Path: file}}
}

// NewTextureFromSource declares a texture from an in-memory or on-disk source under a name.
//
// Parameters:
//   - name: the identifier used in messages
//   - source: the image source
//
// Returns:
//   - Texture: the unloaded texture
func NewTextureFromSource(name string, source common.TextureSource) Texture {
	return &texture{file: name, source: source}
}

func (t *texture) File() string {
	return t.file
}

func (t *texture) Decode() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.staging != nil || t.handle != 0 {
		return nil
	}

	var data common.TextureStagingData
	var err error
	if img, ok := Builtin(t.file); ok {
		data = img
	} else {
		data, err = t.source.Decode()
	}
	if err != nil {
		t.err = fmt.Errorf("Error loading texture %s: %w", t.file, err)
		return t.err
	}
	data.Label = t.file
	t.staging = &data
	return nil
}

func (t *texture) Upload(u Uploader) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.handle != 0 {
		return nil
	}
	if t.staging == nil {
		if t.err != nil {
			return t.err
		}
		return fmt.Errorf("Error loading texture %s: not decoded", t.file)
	}

	h, err := u.UploadTexture(*t.staging)
	if err != nil {
		return fmt.Errorf("Error loading texture %s: %w", t.file, err)
	}
	t.handle = h
	t.staging = nil
	return nil
}

func (t *texture) Load(u Uploader) error {
	if err := t.Decode(); err != nil {
		return err
	}
	return t.Upload(u)
}

func (t *texture) Loaded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.handle != 0
}

func (t *texture) Handle() common.TextureHandle {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.handle
}

func (t *texture) Release(u Uploader) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.handle != 0 {
		u.ReleaseTexture(t.handle)
		t.handle = 0
	}
	t.staging = nil
}

package common

// MeshHandle identifies geometry uploaded through a renderer. The zero value is never issued.
type MeshHandle uint32

// TextureHandle identifies a shader-visible texture uploaded through a renderer.
// The zero value is never issued.
type TextureHandle uint32

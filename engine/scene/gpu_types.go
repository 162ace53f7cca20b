package scene

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// FrameConstants is the per-frame uniform block read by every program at group 0.
// Matches the WGSL Frame struct layout exactly. Size: 432 bytes.
type FrameConstants struct {
	View             [16]float32 // offset   0
	Projection       [16]float32 // offset  64
	ViewProjection   [16]float32 // offset 128
	Light1View       [16]float32 // offset 192: designated light view, for shadow lookups
	Light1Projection [16]float32 // offset 256
	Ambient          [3]float32  // offset 320
	SpecularPower    float32     // offset 332
	CameraPosition   [3]float32  // offset 336
	Elapsed          float32     // offset 348: seconds since the scene started
	Light1Position   [3]float32  // offset 352
	Light1CosHalf    float32     // offset 364: cos of half the spot cone
	Light1Colour     [3]float32  // offset 368: colour * strength
	_pad0            float32     // offset 380
	Light1Facing     [3]float32  // offset 384
	_pad1            float32     // offset 396
	Light2Position   [3]float32  // offset 400
	_pad2            float32     // offset 412
	Light2Colour     [3]float32  // offset 416: colour * strength
	_pad3            float32     // offset 428
}

// Size returns the size of the FrameConstants struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (432)
func (f *FrameConstants) Size() int {
	return int(unsafe.Sizeof(*f))
}

// Marshal serializes the FrameConstants struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 432-byte buffer ready for GPU upload
func (f *FrameConstants) Marshal() []byte {
	buf := make([]byte, f.Size())
	off := 0
	put := func(values ...float32) {
		for _, v := range values {
			binary.LittleEndian.PutUint32(buf[off:off+4], math.Float32bits(v))
			off += 4
		}
	}
	put(f.View[:]...)
	put(f.Projection[:]...)
	put(f.ViewProjection[:]...)
	put(f.Light1View[:]...)
	put(f.Light1Projection[:]...)
	put(f.Ambient[0], f.Ambient[1], f.Ambient[2], f.SpecularPower)
	put(f.CameraPosition[0], f.CameraPosition[1], f.CameraPosition[2], f.Elapsed)
	put(f.Light1Position[0], f.Light1Position[1], f.Light1Position[2], f.Light1CosHalf)
	put(f.Light1Colour[0], f.Light1Colour[1], f.Light1Colour[2], 0)
	put(f.Light1Facing[0], f.Light1Facing[1], f.Light1Facing[2], 0)
	put(f.Light2Position[0], f.Light2Position[1], f.Light2Position[2], 0)
	put(f.Light2Colour[0], f.Light2Colour[1], f.Light2Colour[2], 0)
	return buf
}

// ObjectConstants is the per-draw uniform block read at group 2.
// Matches the WGSL Object struct layout exactly. Size: 16 bytes.
type ObjectConstants struct {
	Tint [3]float32 // offset  0
	_pad float32    // offset 12
}

// Size returns the size of the ObjectConstants struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (o *ObjectConstants) Size() int {
	return int(unsafe.Sizeof(*o))
}

// Marshal serializes the ObjectConstants struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload
func (o *ObjectConstants) Marshal() []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(o.Tint[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(o.Tint[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(o.Tint[2]))
	return buf
}

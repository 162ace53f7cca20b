package bind_group_provider

import (
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	// DefaultAlignment is the WebGPU minimum uniform buffer offset alignment.
	DefaultAlignment = 256

	// DefaultCapacity is the number of slots a provider starts with.
	DefaultCapacity = 256
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label added for convenience.
	label string

	// blockSize is the byte size of one uniform block, stride is blockSize rounded up to alignment.
	blockSize uint64
	alignment uint64
	stride    uint64

	// capacity is the slot count of the staging area, allocated the slot count of the GPU buffer.
	capacity  int
	allocated int
	// count is the number of slots staged this frame.
	count   int
	staging []byte

	// The following fields are GPU allocated resources and must be released when no longer needed. They are populated by the Renderer, not by user-creation.

	// buffer is the GPU uniform buffer holding allocated slots.
	buffer *wgpu.Buffer
	// bindGroup is the GPU bind group binding buffer with a dynamic offset.
	bindGroup *wgpu.BindGroup
	// retired holds buffers replaced mid-frame. Draws recorded before the replacement still
	// read them, so they receive their share of the flush and are released after submit.
	retired []retiredBuffer
}

// retiredBuffer is a GPU buffer and bind group replaced by a larger pair during a frame.
type retiredBuffer struct {
	buffer    *wgpu.Buffer
	bindGroup *wgpu.BindGroup
	slots     int
}

// BindGroupProvider stages per-draw uniform blocks for one dynamic-offset binding.
//
// Every write to a uniform block gets its own aligned slot, so each draw reads exactly the block
// that was current when it was recorded. The staging area grows whenever it fills; the GPU
// buffer is then stale and must be replaced before the next draw binds it. The staged slots are
// uploaded in one queue write per buffer before the frame is submitted.
//
// Usage pattern:
//  1. Renderer creates the provider and calls SetBuffer/SetBindGroup with GPU resources
//  2. Stage(data) for each write; the returned offset is passed to SetBindGroup on the pass
//  3. Before binding, if Stale, Retire and create a new buffer and bind group at BufferSize
//  4. Flush before submit, ReleaseRetired after submit, then Reset
type BindGroupProvider interface {
	// Release releases any GPU resources held by this provider.
	Release()

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// BlockSize returns the unpadded size of one uniform block.
	//
	// Returns:
	//   - uint64: the block size in bytes
	BlockSize() uint64

	// Stride returns the distance between slots, the block size rounded up to the alignment.
	//
	// Returns:
	//   - uint64: the slot stride in bytes
	Stride() uint64

	// Capacity returns the number of slots in the staging area.
	//
	// Returns:
	//   - int: the slot count
	Capacity() int

	// BufferSize returns the byte size a GPU buffer needs to hold every slot.
	//
	// Returns:
	//   - uint64: the buffer size in bytes
	BufferSize() uint64

	// Stage copies a block into the next free slot and returns its dynamic offset.
	// Data longer than the block size is truncated, shorter data is zero padded.
	// A full staging area doubles; slots already staged keep their offsets.
	//
	// Parameters:
	//   - data: the uniform block bytes
	//
	// Returns:
	//   - uint32: the dynamic offset of the slot
	Stage(data []byte) uint32

	// Count returns the number of slots staged since the last Reset.
	//
	// Returns:
	//   - int: the staged slot count
	Count() int

	// Stale reports whether the GPU buffer holds fewer slots than the staging area.
	//
	// Returns:
	//   - bool: true if the buffer and bind group must be replaced before the next bind
	Stale() bool

	// Retire sets the current buffer and bind group aside until ReleaseRetired. Draws already
	// recorded against them stay valid and Flush still writes their slots.
	Retire()

	// ReleaseRetired releases every retired buffer and bind group. Call after the frame that
	// used them has been submitted or abandoned.
	ReleaseRetired()

	// Flush returns the staged slots as buffer writes: one per retired buffer, covering the
	// slots it holds, then one for the current buffer covering every staged slot.
	//
	// Returns:
	//   - []BufferWrite: the writes, empty if nothing was staged
	Flush() []BufferWrite

	// Reset discards the staged slots.
	Reset()

	// Buffer returns the GPU uniform buffer, or nil before initialization.
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer() *wgpu.Buffer

	// BindGroup returns the GPU bind group, or nil before initialization.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group or nil
	BindGroup() *wgpu.BindGroup

	// SetBuffer sets the uniform buffer after GPU initialization, releasing any previous buffer.
	// The buffer must be BufferSize bytes.
	//
	// Parameters:
	//   - buf: the created buffer
	SetBuffer(buf *wgpu.Buffer)

	// SetBindGroup sets the bind group after GPU initialization, releasing any previous bind group.
	//
	// Parameters:
	//   - bg: the created bind group
	SetBindGroup(bg *wgpu.BindGroup)
}

// Compile-time check that bindGroupProvider implements BindGroupProvider
var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a new BindGroupProvider for blocks of the given size.
//
// Parameters:
//   - label: the debug label
//   - blockSize: the byte size of one uniform block
//   - options: a variadic list of options to configure the provider
//
// Returns:
//   - BindGroupProvider: a new instance of BindGroupProvider configured with the provided options
func NewBindGroupProvider(label string, blockSize uint64, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:     label,
		blockSize: blockSize,
		alignment: DefaultAlignment,
		capacity:  DefaultCapacity,
	}
	for _, opt := range options {
		opt(p)
	}
	p.stride = common.AlignUp(blockSize, p.alignment)
	p.staging = make([]byte, uint64(p.capacity)*p.stride)
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BlockSize() uint64 {
	return p.blockSize
}

func (p *bindGroupProvider) Stride() uint64 {
	return p.stride
}

func (p *bindGroupProvider) Capacity() int {
	return p.capacity
}

func (p *bindGroupProvider) BufferSize() uint64 {
	return uint64(p.capacity) * p.stride
}

func (p *bindGroupProvider) Stage(data []byte) uint32 {
	if p.count == p.capacity {
		p.grow()
	}
	slot := p.count
	p.count++

	start := uint64(slot) * p.stride
	block := p.staging[start : start+p.blockSize]
	n := copy(block, data)
	clear(block[n:])
	return uint32(start)
}

// grow doubles the staging area, keeping the staged slots in place.
func (p *bindGroupProvider) grow() {
	capacity := max(p.capacity*2, 1)
	grown := make([]byte, uint64(capacity)*p.stride)
	copy(grown, p.staging)
	p.staging = grown
	p.capacity = capacity
}

func (p *bindGroupProvider) Count() int {
	return p.count
}

func (p *bindGroupProvider) Stale() bool {
	return p.buffer != nil && p.allocated < p.capacity
}

func (p *bindGroupProvider) Retire() {
	if p.buffer == nil {
		return
	}
	p.retired = append(p.retired, retiredBuffer{buffer: p.buffer, bindGroup: p.bindGroup, slots: p.allocated})
	p.buffer = nil
	p.bindGroup = nil
	p.allocated = 0
}

func (p *bindGroupProvider) ReleaseRetired() {
	for _, r := range p.retired {
		if r.bindGroup != nil {
			r.bindGroup.Release()
		}
		r.buffer.Release()
	}
	p.retired = nil
}

func (p *bindGroupProvider) Flush() []BufferWrite {
	if p.count == 0 {
		return nil
	}
	writes := make([]BufferWrite, 0, len(p.retired)+1)
	for _, r := range p.retired {
		if n := min(p.count, r.slots); n > 0 {
			writes = append(writes, BufferWrite{Buffer: r.buffer, Data: p.staging[:uint64(n)*p.stride]})
		}
	}
	return append(writes, BufferWrite{Buffer: p.buffer, Data: p.staging[:uint64(p.count)*p.stride]})
}

func (p *bindGroupProvider) Reset() {
	p.count = 0
}

func (p *bindGroupProvider) Buffer() *wgpu.Buffer {
	return p.buffer
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) SetBuffer(buf *wgpu.Buffer) {
	if p.buffer != nil && p.buffer != buf {
		p.buffer.Release()
	}
	p.buffer = buf
	p.allocated = p.capacity
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	if p.bindGroup != nil && p.bindGroup != bg {
		p.bindGroup.Release()
	}
	p.bindGroup = bg
}

func (p *bindGroupProvider) Release() {
	p.ReleaseRetired()
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	if p.buffer != nil {
		p.buffer.Release()
		p.buffer = nil
	}
}

package bind_group_provider

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithCapacity sets the initial number of slots.
//
// Parameters:
//   - slots: the slot count, values below 1 are ignored
//
// Returns:
//   - BindGroupProviderOption: a function that sets the capacity for this provider
func WithCapacity(slots int) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		if slots > 0 {
			p.capacity = slots
		}
	}
}

// WithAlignment sets the slot alignment, normally the device's minimum uniform buffer offset alignment.
//
// Parameters:
//   - alignment: the alignment in bytes, values of 0 are ignored
//
// Returns:
//   - BindGroupProviderOption: a function that sets the alignment for this provider
func WithAlignment(alignment uint64) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		if alignment > 0 {
			p.alignment = alignment
		}
	}
}

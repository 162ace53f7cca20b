package texture

import "io"

// ArenaBuilderOption is a functional option applied to an Arena during construction via NewArena.
type ArenaBuilderOption func(*arena)

// WithWorkers sets how many goroutines decode textures in LoadAll.
//
// Parameters:
//   - n: the worker count, values below 1 are ignored
//
// Returns:
//   - ArenaBuilderOption: a function that applies the worker count to an arena
func WithWorkers(n int) ArenaBuilderOption {
	return func(a *arena) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithProgress renders a progress bar to w while LoadAll uploads textures.
//
// Parameters:
//   - w: the progress output, usually os.Stderr
//
// Returns:
//   - ArenaBuilderOption: a function that applies the progress writer to an arena
func WithProgress(w io.Writer) ArenaBuilderOption {
	return func(a *arena) {
		a.progress = w
	}
}

package texture

import (
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/schollz/progressbar/v3"
)

// ID indexes a texture in an Arena.
type ID int

// arena is the implementation of the Arena interface.
type arena struct {
	mu       sync.Mutex
	textures []Texture
	byFile   map[string]ID
	workers  int
	progress io.Writer
}

// Arena owns every texture of a scene. Entities refer to textures by ID; the arena loads
// them all in one step after the scene has been declared and releases them at teardown.
type Arena interface {
	// Add declares a texture by file. Declaring the same file twice returns the same ID.
	//
	// Parameters:
	//   - file: the image path or builtin name
	//
	// Returns:
	//   - ID: the texture's index
	Add(file string) ID

	// AddTexture adds an already constructed texture.
	//
	// Parameters:
	//   - t: the texture
	//
	// Returns:
	//   - ID: the texture's index
	AddTexture(t Texture) ID

	// Texture returns the texture at id, or nil if out of range.
	//
	// Parameters:
	//   - id: the texture's index
	//
	// Returns:
	//   - Texture: the texture
	Texture(id ID) Texture

	// Handle returns the shader-visible handle of the texture at id, zero if not loaded.
	//
	// Parameters:
	//   - id: the texture's index
	//
	// Returns:
	//   - common.TextureHandle: the handle
	Handle(id ID) common.TextureHandle

	// Len returns the number of declared textures.
	//
	// Returns:
	//   - int: the count
	Len() int

	// LoadAll decodes every declared texture in parallel on a worker pool, then uploads them
	// in declaration order on the calling goroutine. It stops at the first failure in
	// declaration order and returns its error.
	//
	// Parameters:
	//   - u: the uploader
	//
	// Returns:
	//   - error: the first load error, reading "Error loading texture <file>"
	LoadAll(u Uploader) error

	// Release destroys every uploaded texture and forgets all declarations.
	//
	// Parameters:
	//   - u: the uploader that created them
	Release(u Uploader)
}

var _ Arena = &arena{}

// NewArena creates an empty texture Arena.
//
// Parameters:
//   - options: a variadic list of ArenaBuilderOption functions
//
// Returns:
//   - Arena: the arena
func NewArena(options ...ArenaBuilderOption) Arena {
	a := &arena{
		byFile:  make(map[string]ID),
		workers: max(runtime.NumCPU()-1, 1),
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}

func (a *arena) Add(file string) ID {
	a.mu.Lock()
	defer a.mu.Unlock()
	if id, ok := a.byFile[file]; ok {
		return id
	}
	id := ID(len(a.textures))
	a.textures = append(a.textures, NewTexture(file))
	a.byFile[file] = id
	return id
}

func (a *arena) AddTexture(t Texture) ID {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := ID(len(a.textures))
	a.textures = append(a.textures, t)
	return id
}

func (a *arena) Texture(id ID) Texture {
	a.mu.Lock()
	defer a.mu.Unlock()
	if id < 0 || int(id) >= len(a.textures) {
		return nil
	}
	return a.textures[id]
}

func (a *arena) Handle(id ID) common.TextureHandle {
	t := a.Texture(id)
	if t == nil {
		return 0
	}
	return t.Handle()
}

func (a *arena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.textures)
}

func (a *arena) LoadAll(u Uploader) error {
	a.mu.Lock()
	textures := append([]Texture(nil), a.textures...)
	a.mu.Unlock()

	if len(textures) == 0 {
		return nil
	}

	var bar *progressbar.ProgressBar
	if a.progress != nil {
		bar = progressbar.NewOptions(len(textures),
			progressbar.OptionSetWriter(a.progress),
			progressbar.OptionSetDescription("loading textures"),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Close()
	}

	pool := worker.NewDynamicWorkerPool(min(a.workers, len(textures)), len(textures), time.Second)
	errs := make([]error, len(textures))
	var wg sync.WaitGroup
	for i, t := range textures {
		wg.Add(1)
		idx, tex := i, t
		pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				errs[idx] = tex.Decode()
				return nil, errs[idx]
			},
		})
	}
	wg.Wait()

	for i, t := range textures {
		if errs[i] != nil {
			common.Logger().Error("texture decode failed", "file", t.File(), "error", errs[i])
			return errs[i]
		}
		if err := t.Upload(u); err != nil {
			common.Logger().Error("texture upload failed", "file", t.File(), "error", err)
			return err
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	common.Logger().Debug("textures loaded", "count", len(textures))
	return nil
}

func (a *arena) Release(u Uploader) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, t := range a.textures {
		t.Release(u)
	}
	a.textures = nil
	clear(a.byFile)
}

package scene

import "fmt"

// InitErrorKind classifies a scene initialisation failure.
type InitErrorKind int

const (
	InitErrorConfig InitErrorKind = iota
	InitErrorMeshLoad
	InitErrorShaderLoad
	InitErrorStateCreate
	InitErrorTextureLoad
)

// String returns the name of the kind.
func (k InitErrorKind) String() string {
	switch k {
	case InitErrorConfig:
		return "Config"
	case InitErrorMeshLoad:
		return "MeshLoad"
	case InitErrorShaderLoad:
		return "ShaderLoad"
	case InitErrorStateCreate:
		return "StateCreate"
	case InitErrorTextureLoad:
		return "TextureLoad"
	default:
		return fmt.Sprintf("InitErrorKind(%d)", int(k))
	}
}

// InitError reports why Init failed. The scene exposes nothing to rendering after a failure.
type InitError struct {
	Kind    InitErrorKind
	Message string
	Err     error
}

func (e *InitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// initErr builds an InitError with a formatted message.
func initErr(kind InitErrorKind, err error, format string, args ...any) *InitError {
	return &InitError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

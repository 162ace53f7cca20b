package loader

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithUploader is an option builder that sets where loaded meshes are uploaded, normally the
// renderer.
//
// Parameters:
//   - u: the mesh uploader
//
// Returns:
//   - LoaderBuilderOption: a function that applies the uploader option to a loader
func WithUploader(u MeshUploader) LoaderBuilderOption {
	return func(l *loader) {
		l.uploader = u
	}
}

// WithAssetRoot is an option builder that sets the directory relative mesh paths resolve against.
//
// Parameters:
//   - dir: the asset directory
//
// Returns:
//   - LoaderBuilderOption: a function that applies the asset root option to a loader
func WithAssetRoot(dir string) LoaderBuilderOption {
	return func(l *loader) {
		l.assetRoot = dir
	}
}

// Package loader reads product meshes from glTF/GLB and STL files into mesh parts.
package loader

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/wrapview/internal/assets"
	"github.com/Faultbox/wrapview/internal/mesh"
)

// ErrUnsupportedFormat is returned for mesh files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported mesh format")

// ErrMalformed is returned when a decoder fails on a corrupt file.
var ErrMalformed = errors.New("malformed mesh file")

// ErrNodeCycle is returned for glTF scenes whose node graph is not a tree.
var ErrNodeCycle = errors.New("node graph is not a tree")

// Loader loads the parts of one mesh asset. Implementations may block and
// are called off the session goroutine.
type Loader interface {
	LoadMesh(ctx context.Context, path string) ([]*mesh.Part, error)
}

// Func adapts a function to the Loader interface.
type Func func(ctx context.Context, path string) ([]*mesh.Part, error)

// LoadMesh implements Loader.
func (f Func) LoadMesh(ctx context.Context, path string) ([]*mesh.Part, error) {
	return f(ctx, path)
}

// Files loads meshes from disk, choosing the decoder by file extension.
type Files struct {
	assets *assets.Manager
	log    *zap.Logger
}

// NewFiles creates a file loader resolving paths through m.
func NewFiles(m *assets.Manager, log *zap.Logger) *Files {
	if log == nil {
		log = zap.NewNop()
	}
	return &Files{assets: m, log: log}
}

// LoadMesh implements Loader. Failures are *assets.LoadError of kind "mesh".
// A file that decodes but contains no triangles returns an empty slice.
func (f *Files) LoadMesh(ctx context.Context, path string) ([]*mesh.Part, error) {
	if err := ctx.Err(); err != nil {
		return nil, meshLoadError(path, err)
	}
	resolved, err := f.assets.Resolve(path)
	if err != nil {
		return nil, meshLoadError(path, err)
	}

	parts, err := decode(resolved)
	if err != nil {
		return nil, meshLoadError(path, err)
	}

	f.log.Debug("mesh loaded",
		zap.String("path", path),
		zap.Int("parts", len(parts)))
	return parts, nil
}

// decode picks the decoder by extension. A decoder panic on a malformed
// file is returned as an error.
func decode(path string) (parts []*mesh.Part, err error) {
	defer func() {
		if r := recover(); r != nil {
			parts, err = nil, fmt.Errorf("%w: %v", ErrMalformed, r)
		}
	}()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb", ".gltf":
		return loadGLTF(path)
	case ".stl":
		return loadSTL(path)
	default:
		return nil, ErrUnsupportedFormat
	}
}

func meshLoadError(path string, err error) error {
	return &assets.LoadError{Kind: "mesh", Path: path, Err: err}
}

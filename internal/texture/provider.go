package texture

import (
	"context"
	"fmt"
	"path"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/wrapview/internal/assets"
)

// Options configures generated texture sizes.
type Options struct {
	PatternSize int
	GridSize    int
	GridCells   int
}

// DefaultOptions returns the sizes used when none are configured.
func DefaultOptions() Options {
	return Options{
		PatternSize: 512,
		GridSize:    1024,
		GridCells:   8,
	}
}

// LoadResult is delivered on the channel returned by LoadImageAsync.
type LoadResult struct {
	Path    string
	Texture *Texture
	Err     error
}

// Provider produces textures from image assets and procedural generators.
// It is safe for concurrent use.
type Provider struct {
	assets *assets.Manager
	opts   Options
	log    *zap.Logger

	gridOnce sync.Once
	grid     *Texture
}

// NewProvider creates a provider reading image bytes through m.
func NewProvider(m *assets.Manager, opts Options, log *zap.Logger) *Provider {
	if log == nil {
		log = zap.NewNop()
	}
	def := DefaultOptions()
	if opts.PatternSize <= 0 {
		opts.PatternSize = def.PatternSize
	}
	if opts.GridSize <= 0 {
		opts.GridSize = def.GridSize
	}
	if opts.GridCells <= 0 {
		opts.GridCells = def.GridCells
	}
	return &Provider{assets: m, opts: opts, log: log}
}

// LoadImage loads and decodes the image at p. Every failure is an *AssetLoadError.
func (pr *Provider) LoadImage(ctx context.Context, p string) (*Texture, error) {
	if err := ctx.Err(); err != nil {
		return nil, imageLoadError(p, err)
	}
	if !IsSupported(p) {
		return nil, imageLoadError(p, ErrUnsupportedFormat)
	}

	data, err := pr.assets.Load(p)
	if err != nil {
		return nil, imageLoadError(p, err)
	}
	img, err := Decode(p, data)
	if err != nil {
		return nil, imageLoadError(p, err)
	}

	tex := New(path.Base(p), p, img)
	pr.log.Debug("image loaded",
		zap.String("path", p),
		zap.Int("width", tex.Width()),
		zap.Int("height", tex.Height()))
	return tex, nil
}

// LoadImageAsync loads p on a new goroutine. The returned channel receives
// exactly one result and is then closed.
func (pr *Provider) LoadImageAsync(ctx context.Context, p string) <-chan LoadResult {
	out := make(chan LoadResult, 1)
	go func() {
		defer close(out)
		tex, err := pr.LoadImage(ctx, p)
		out <- LoadResult{Path: p, Texture: tex, Err: err}
	}()
	return out
}

// GeneratePattern draws a new pattern texture. It only fails for unknown kinds.
func (pr *Provider) GeneratePattern(kind PatternKind) (*Texture, error) {
	img, err := DrawPattern(kind, pr.opts.PatternSize)
	if err != nil {
		return nil, err
	}
	return New(string(kind), fmt.Sprintf("pattern:%s", kind), img), nil
}

// AlignmentGrid returns the labeled checkerboard. It is generated on first
// use and the same instance is returned afterwards.
func (pr *Provider) AlignmentGrid() *Texture {
	pr.gridOnce.Do(func() {
		pr.grid = New("alignment-grid", "grid", DrawAlignmentGrid(pr.opts.GridSize, pr.opts.GridCells))
	})
	return pr.grid
}

// IsAlignmentGrid reports whether tex is this provider's alignment grid,
// generating the grid if needed.
func (pr *Provider) IsAlignmentGrid(tex *Texture) bool {
	return tex != nil && tex == pr.AlignmentGrid()
}

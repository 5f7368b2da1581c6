package config

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/wrapview/internal/logger"
	"github.com/Faultbox/wrapview/internal/texture"
	"github.com/Faultbox/wrapview/pkg/uvproj"
)

// Validate reports every problem in the config at once.
func (c *Config) Validate() error {
	var err error

	if len(c.Products) == 0 {
		err = multierr.Append(err, fmt.Errorf("no products configured"))
	}
	seen := make(map[string]bool, len(c.Products))
	for i, p := range c.Products {
		if p.Key == "" {
			err = multierr.Append(err, fmt.Errorf("products[%d]: empty key", i))
		} else if seen[p.Key] {
			err = multierr.Append(err, fmt.Errorf("products[%d]: duplicate key %q", i, p.Key))
		}
		seen[p.Key] = true

		if p.Asset == "" {
			err = multierr.Append(err, fmt.Errorf("product %q: empty asset path", p.Key))
		}
		if _, perr := p.Projector(); perr != nil {
			err = multierr.Append(err, fmt.Errorf("product %q: %w", p.Key, perr))
		}
	}

	if _, ok := c.Product(c.Viewer.ActiveProduct); c.Viewer.ActiveProduct != "" && !ok {
		err = multierr.Append(err, fmt.Errorf("active product %q is not configured", c.Viewer.ActiveProduct))
	}
	if c.Viewer.InitialPattern != "" {
		if _, perr := texture.ParsePatternKind(c.Viewer.InitialPattern); perr != nil {
			err = multierr.Append(err, fmt.Errorf("initial_pattern: %w", perr))
		}
	}
	if _, perr := texture.ParseCoverPolicy(c.Textures.Cover); perr != nil {
		err = multierr.Append(err, fmt.Errorf("textures.cover: %w", perr))
	}
	if c.Textures.CacheMB < 0 {
		err = multierr.Append(err, fmt.Errorf("textures.cache_mb must not be negative"))
	}
	if _, lerr := logger.ParseLevel(c.Logging.Level); lerr != nil {
		err = multierr.Append(err, fmt.Errorf("logging.level: %w", lerr))
	}
	if c.Projection.UVEpsilon < 0 {
		err = multierr.Append(err, fmt.Errorf("projection.uv_epsilon must not be negative"))
	}
	return err
}

// Projector builds the UV projector configured for the product.
func (p ProductConfig) Projector() (uvproj.Projector, error) {
	mode, err := uvproj.ParseMode(p.Mode)
	if err != nil {
		return nil, err
	}
	return uvproj.New(mode, uvproj.Params{
		PadTop:    p.PadTop,
		PadBottom: p.PadBottom,
		Margin:    p.Margin,
	})
}

// CoverSettings returns the texture cover settings.
func (t TexturesConfig) CoverSettings() texture.Cover {
	policy, _ := texture.ParseCoverPolicy(t.Cover)
	return texture.Cover{Policy: policy, TileDensity: t.TileDensity}
}

// CacheBytes returns the asset cache budget in bytes.
func (t TexturesConfig) CacheBytes() int64 {
	return int64(t.CacheMB) << 20
}

// ProviderOptions returns the texture provider sizes.
func (t TexturesConfig) ProviderOptions() texture.Options {
	return texture.Options{
		PatternSize: t.PatternSize,
		GridSize:    t.GridSize,
		GridCells:   t.GridCells,
	}
}

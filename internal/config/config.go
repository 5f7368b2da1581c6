// Package config handles viewer configuration loading and management.
package config

import "time"

// Config holds all viewer settings.
type Config struct {
	Viewer     ViewerConfig     `yaml:"viewer"`
	Projection ProjectionConfig `yaml:"projection"`
	Textures   TexturesConfig   `yaml:"textures"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Products   []ProductConfig  `yaml:"products"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ViewerConfig holds session startup settings.
type ViewerConfig struct {
	ActiveProduct  string   `yaml:"active_product"`
	InitialTexture string   `yaml:"initial_texture"` // image path applied once the product is ready
	InitialPattern string   `yaml:"initial_pattern"` // used when no initial texture is set
	AssetRoots     []string `yaml:"asset_roots"`     // searched last to first
}

// ProjectionConfig holds UV generation settings shared by all products.
type ProjectionConfig struct {
	UVEpsilon           float32 `yaml:"uv_epsilon"`
	PreserveAuthoredUVs bool    `yaml:"preserve_authored_uvs"`
	CenterXZ            bool    `yaml:"center_xz"`
}

// TexturesConfig holds texture provider settings.
type TexturesConfig struct {
	Cover       string  `yaml:"cover"` // wrap | tile
	TileDensity float32 `yaml:"tile_density"`
	PatternSize int     `yaml:"pattern_size"`
	GridSize    int     `yaml:"grid_size"`
	GridCells   int     `yaml:"grid_cells"`
	CacheMB     int     `yaml:"cache_mb"` // asset byte cache budget, 0 disables the limit
}

// CatalogConfig holds the texture directory listing settings.
type CatalogConfig struct {
	Dir        string        `yaml:"dir"`
	Extensions []string      `yaml:"extensions"`
	Watch      bool          `yaml:"watch"`
	Debounce   time.Duration `yaml:"debounce"`
}

// ProductConfig describes one product variant.
type ProductConfig struct {
	Key       string  `yaml:"key"`
	Asset     string  `yaml:"asset"`
	Mode      string  `yaml:"mode"` // cylindrical | planar-front
	PadTop    float32 `yaml:"pad_top"`
	PadBottom float32 `yaml:"pad_bottom"`
	Margin    float32 `yaml:"margin"`
}

// ServerConfig holds the UI transport settings.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Viewer: ViewerConfig{
			ActiveProduct:  "shirt",
			InitialPattern: "checker",
			AssetRoots:     []string{"."},
		},
		Projection: ProjectionConfig{
			UVEpsilon:           0.001,
			PreserveAuthoredUVs: false,
			CenterXZ:            true,
		},
		Textures: TexturesConfig{
			Cover:       "wrap",
			TileDensity: 2,
			PatternSize: 512,
			GridSize:    1024,
			GridCells:   8,
			CacheMB:     64,
		},
		Catalog: CatalogConfig{
			Dir:        "textures",
			Extensions: []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp", ".tga"},
			Watch:      true,
			Debounce:   200 * time.Millisecond,
		},
		Products: []ProductConfig{
			{Key: "shirt", Asset: "models/shirt.glb", Mode: "cylindrical", PadTop: 0.05, PadBottom: 0.05},
			{Key: "cup", Asset: "models/cup.glb", Mode: "cylindrical", PadTop: 0.12, PadBottom: 0.08},
			{Key: "laptop", Asset: "models/laptop.glb", Mode: "planar-front", Margin: 0.04},
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8080",
			WriteTimeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Product returns the configuration of the product with key.
func (c *Config) Product(key string) (ProductConfig, bool) {
	for _, p := range c.Products {
		if p.Key == key {
			return p, true
		}
	}
	return ProductConfig{}, false
}

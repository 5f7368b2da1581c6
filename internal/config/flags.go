package config

import "github.com/spf13/pflag"

// Flags holds command-line overrides. Zero values leave the config untouched.
type Flags struct {
	Config   string
	Debug    bool
	Addr     string
	Product  string
	Cover    string
	LogFile  string
	AssetDir []string
}

// BindFlags registers the shared flags on fs.
func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.Addr, "addr", "", "Listen address for the UI transport")
	fs.StringVar(&f.Product, "product", "", "Product shown at startup")
	fs.StringVar(&f.Cover, "cover", "", "Texture cover policy (wrap or tile)")
	fs.StringVar(&f.LogFile, "log-file", "", "Write logs to this file as well")
	fs.StringSliceVar(&f.AssetDir, "assets", nil, "Additional asset root directories")
	return f
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Addr != "" {
		cfg.Server.Addr = f.Addr
	}
	if f.Product != "" {
		cfg.Viewer.ActiveProduct = f.Product
	}
	if f.Cover != "" {
		cfg.Textures.Cover = f.Cover
	}
	if f.LogFile != "" {
		cfg.Logging.LogFile = f.LogFile
	}
	cfg.Viewer.AssetRoots = append(cfg.Viewer.AssetRoots, f.AssetDir...)
}

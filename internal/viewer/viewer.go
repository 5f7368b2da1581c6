// Package viewer wires configuration into a running viewer: asset roots,
// loaders, the product registry, the session, the texture catalog, and the
// UI transport.
package viewer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/wrapview/internal/assets"
	"github.com/Faultbox/wrapview/internal/catalog"
	"github.com/Faultbox/wrapview/internal/config"
	"github.com/Faultbox/wrapview/internal/loader"
	"github.com/Faultbox/wrapview/internal/logger"
	"github.com/Faultbox/wrapview/internal/product"
	"github.com/Faultbox/wrapview/internal/server"
	"github.com/Faultbox/wrapview/internal/session"
	"github.com/Faultbox/wrapview/internal/texture"
)

// eventQueueSize bounds UI events waiting for the session goroutine.
const eventQueueSize = 32

// Viewer is one configured viewer instance.
type Viewer struct {
	cfg      *config.Config
	assets   *assets.Manager
	products *product.Registry
	session  *session.Session
	catalog  *catalog.Catalog
	server   *server.Server
	events   chan session.Event
	log      *zap.Logger
}

// New builds a viewer from cfg. Nothing is loaded until Run or Once.
func New(cfg *config.Config) (*Viewer, error) {
	log := logger.Named("viewer")
	log.Info("initializing viewer",
		zap.String("product", cfg.Viewer.ActiveProduct),
		zap.Int("products", len(cfg.Products)),
		zap.String("cover", cfg.Textures.Cover))

	v := &Viewer{
		cfg:    cfg,
		events: make(chan session.Event, eventQueueSize),
		log:    log,
	}

	v.assets = assets.NewManager(cfg.Viewer.AssetRoots...)
	v.assets.SetCacheLimit(cfg.Textures.CacheBytes())
	if cfg.Catalog.Dir != "" {
		// catalog names resolve before other roots
		v.assets.AddRoot(cfg.Catalog.Dir)
		v.catalog = catalog.New(cfg.Catalog.Dir, cfg.Catalog.Extensions, logger.Named("catalog"))
		v.catalog.OnStale(func(name string) {
			v.assets.Invalidate(name)
			log.Debug("texture invalidated", zap.String("name", name))
		})
	}

	var err error
	v.products, err = product.FromConfig(cfg.Products)
	if err != nil {
		return nil, fmt.Errorf("failed to build products: %w", err)
	}

	provider := texture.NewProvider(v.assets, cfg.Textures.ProviderOptions(), logger.Named("texture"))
	meshes := loader.NewFiles(v.assets, logger.Named("loader"))

	v.session = session.New(v.products, provider, meshes, session.Options{
		Load: product.LoadOptions{
			UVEpsilon:           cfg.Projection.UVEpsilon,
			PreserveAuthoredUVs: cfg.Projection.PreserveAuthoredUVs,
			CenterXZ:            cfg.Projection.CenterXZ,
		},
		Cover:          cfg.Textures.CoverSettings(),
		InitialProduct: cfg.Viewer.ActiveProduct,
		InitialTexture: cfg.Viewer.InitialTexture,
		InitialPattern: cfg.Viewer.InitialPattern,
	}, logger.Named("session"))

	v.server = server.New(cfg.Server, v.catalog, v.events, logger.Named("server"))
	v.session.OnChange(v.server.Publish)

	log.Info("viewer initialized")
	return v, nil
}

// Session returns the viewer's session. Only the goroutine running the
// viewer may call its methods.
func (v *Viewer) Session() *session.Session { return v.session }

// Run serves the UI and owns the session until ctx is done.
func (v *Viewer) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if v.catalog != nil {
		if err := v.catalog.Refresh(); err != nil {
			v.log.Warn("catalog scan failed", zap.String("dir", v.catalog.Dir()), zap.Error(err))
		}
		if v.cfg.Catalog.Watch {
			if err := v.catalog.Watch(ctx, v.cfg.Catalog.Debounce); err != nil {
				v.log.Warn("catalog watch disabled", zap.Error(err))
			}
		}
	}

	if err := v.session.Start(ctx); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		err := v.server.ListenAndServe(ctx)
		if err != nil {
			cancel()
		}
		serverErr <- err
	}()

	v.log.Info("starting session loop")
	err := v.session.Run(ctx, v.events)
	if sErr := <-serverErr; sErr != nil {
		return fmt.Errorf("server error: %w", sErr)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Once starts the session, waits for every load to finish, and returns the
// resulting snapshot. It does not serve the UI.
func (v *Viewer) Once(ctx context.Context, events ...session.Event) (session.Snapshot, error) {
	if err := v.session.Start(ctx); err != nil {
		return session.Snapshot{}, fmt.Errorf("failed to start session: %w", err)
	}
	if err := v.session.Settle(ctx); err != nil {
		return session.Snapshot{}, err
	}
	for _, ev := range events {
		if err := v.session.Dispatch(ctx, ev); err != nil {
			v.log.Warn("event rejected", zap.String("event", ev.Type), zap.Error(err))
		}
		if err := v.session.Settle(ctx); err != nil {
			return session.Snapshot{}, err
		}
	}
	return v.session.Snapshot(), nil
}

// Close releases viewer resources.
func (v *Viewer) Close() {
	v.log.Info("closing viewer")
	logger.Sync()
}

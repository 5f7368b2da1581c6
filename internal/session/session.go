// Package session coordinates products, textures, and user events for one
// viewer. A Session is owned by a single goroutine: every method must be
// called from it. Asset loads run in the background and post their results
// back through a completion queue that the owner drains with Process,
// Settle, or Run.
package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/wrapview/internal/loader"
	"github.com/Faultbox/wrapview/internal/logger"
	"github.com/Faultbox/wrapview/internal/mesh"
	"github.com/Faultbox/wrapview/internal/product"
	"github.com/Faultbox/wrapview/internal/texture"
)

// ErrUnknownProduct is returned when a key is not registered.
var ErrUnknownProduct = errors.New("unknown product")

// completionQueueSize bounds how many finished loads can wait for the owner.
const completionQueueSize = 16

// Options configures a Session.
type Options struct {
	Load  product.LoadOptions
	Cover texture.Cover

	// InitialProduct is activated by Start; empty means the first registered product.
	InitialProduct string
	// InitialTexture is loaded by Start. It takes precedence over InitialPattern.
	InitialTexture string
	InitialPattern string
}

// Session is the viewer's explicit context object.
type Session struct {
	products *product.Registry
	textures *texture.Provider
	loader   loader.Loader
	opts     Options
	log      *zap.Logger

	active   string
	lastUser *texture.Texture
	// pending is the most recent selection made while the active product was
	// not ready. It is applied once the product becomes ready.
	pending     *texture.Texture
	showOutline bool
	// selectSeq orders selections so a slow image load cannot override a
	// newer choice.
	selectSeq uint64

	inflight    int
	completions chan func()
	observers   []func(Snapshot)
}

// New creates a session. A nil log disables logging.
func New(products *product.Registry, textures *texture.Provider, ld loader.Loader, opts Options, log *zap.Logger) *Session {
	return &Session{
		products:    products,
		textures:    textures,
		loader:      ld,
		opts:        opts,
		log:         logger.OrNop(log),
		completions: make(chan func(), completionQueueSize),
	}
}

// Active returns the active product, or nil before Start.
func (s *Session) Active() *product.Product {
	p, _ := s.products.Get(s.active)
	return p
}

// LastUserTexture returns the most recent texture the user chose.
func (s *Session) LastUserTexture() *texture.Texture { return s.lastUser }

// Pending returns the queued selection, if any.
func (s *Session) Pending() *texture.Texture { return s.pending }

// InFlight returns the number of background loads not yet processed.
func (s *Session) InFlight() int { return s.inflight }

// OnChange registers fn to receive a snapshot after every processed event
// or completion. fn runs on the owning goroutine.
func (s *Session) OnChange(fn func(Snapshot)) {
	s.observers = append(s.observers, fn)
}

// Start activates the initial product, starts loading it, and queues the
// initial selection.
func (s *Session) Start(ctx context.Context) error {
	key := s.opts.InitialProduct
	if key == "" {
		keys := s.products.Keys()
		if len(keys) == 0 {
			return fmt.Errorf("start: %w", ErrUnknownProduct)
		}
		key = keys[0]
	}
	p, ok := s.products.Get(key)
	if !ok {
		return fmt.Errorf("start %q: %w", key, ErrUnknownProduct)
	}

	s.active = key
	p.Visible = true
	s.log.Info("session started", zap.String("product", key))
	s.Load(ctx, key)

	switch {
	case s.opts.InitialTexture != "":
		s.SelectTexture(ctx, s.opts.InitialTexture)
	case s.opts.InitialPattern != "":
		if err := s.SelectPattern(s.opts.InitialPattern); err != nil {
			return err
		}
	}
	return nil
}

// Load starts loading the product's mesh in the background. Products that
// are already loading, ready, or failed are left alone.
func (s *Session) Load(ctx context.Context, key string) {
	p, ok := s.products.Get(key)
	if !ok {
		s.log.Warn("load of unknown product", zap.String("product", key))
		return
	}
	if !p.BeginLoad() {
		return
	}

	s.log.Debug("loading product", zap.String("product", key), zap.String("path", p.AssetPath))
	s.inflight++
	go func() {
		parts, err := s.loadMesh(ctx, p.AssetPath)
		s.post(ctx, func() { s.finishLoad(p, parts, err) })
	}()
}

// loadMesh runs the loader, turning a panic into a load failure so one bad
// asset cannot take the viewer down.
func (s *Session) loadMesh(ctx context.Context, path string) (parts []*mesh.Part, err error) {
	defer func() {
		if r := recover(); r != nil {
			parts, err = nil, fmt.Errorf("mesh loader panicked on %s: %v", path, r)
		}
	}()
	return s.loader.LoadMesh(ctx, path)
}

// Reload retries a failed product.
func (s *Session) Reload(ctx context.Context, key string) error {
	p, ok := s.products.Get(key)
	if !ok {
		return fmt.Errorf("reload %q: %w", key, ErrUnknownProduct)
	}
	if p.Retry() {
		s.Load(ctx, key)
	}
	return nil
}

func (s *Session) finishLoad(p *product.Product, parts []*mesh.Part, err error) {
	log := s.log.With(zap.String("product", p.Key), zap.String("path", p.AssetPath))
	if err != nil {
		p.FailLoad(err)
		log.Error("product load failed", zap.Error(err))
		return
	}

	reports, err := p.CompleteLoad(parts, s.opts.Load)
	if err != nil {
		log.Error("product load failed", zap.Error(err))
		return
	}
	for _, r := range reports {
		if r.Report.NeedsProjection() {
			log.Debug("uvs regenerated", zap.String("part", r.Part), zap.Stringer("diagnosis", r.Report))
		}
	}
	log.Info("product ready", zap.Int("parts", len(parts)), zap.Stringer("mode", p.Projector.Mode()))

	if p.Key != s.active {
		return
	}
	tex := s.pending
	if tex == nil {
		tex = s.lastUser
	}
	s.pending = nil
	if tex != nil {
		_ = s.ApplyTexture(tex)
	}
}

// post hands fn to the owning goroutine. It gives up when ctx is done so
// background loads never outlive a stopped owner.
func (s *Session) post(ctx context.Context, fn func()) {
	select {
	case s.completions <- fn:
	case <-ctx.Done():
	}
}

func (s *Session) complete(fn func()) {
	s.inflight--
	fn()
	s.notify()
}

// Process runs every completion that is already queued and returns how many ran.
func (s *Session) Process() int {
	n := 0
	for {
		select {
		case fn := <-s.completions:
			s.complete(fn)
			n++
		default:
			return n
		}
	}
}

// Settle blocks until every background load has been processed.
func (s *Session) Settle(ctx context.Context) error {
	for s.inflight > 0 {
		select {
		case fn := <-s.completions:
			s.complete(fn)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Run owns the session until ctx is done, processing completions and
// dispatching events. A closed events channel is ignored.
func (s *Session) Run(ctx context.Context, events <-chan Event) error {
	s.notify()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-s.completions:
			s.complete(fn)
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if err := s.Dispatch(ctx, ev); err != nil {
				s.log.Debug("event rejected", zap.String("event", ev.Type), zap.Error(err))
			}
			s.notify()
		}
	}
}

func (s *Session) notify() {
	if len(s.observers) == 0 {
		return
	}
	snap := s.Snapshot()
	for _, fn := range s.observers {
		fn(snap)
	}
	s.markUploaded()
}

// markUploaded clears the re-upload flags once observers have seen them.
func (s *Session) markUploaded() {
	for _, p := range s.products.All() {
		for _, part := range p.Parts {
			if part.Material != nil {
				part.Material.MarkUploaded()
			}
		}
	}
}

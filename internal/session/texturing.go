package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/wrapview/internal/product"
	"github.com/Faultbox/wrapview/internal/texture"
)

// SelectTexture loads the image at path in the background. When it arrives
// it becomes the last user texture and is applied, or queued if the active
// product is not ready. A failed load is logged and changes nothing.
func (s *Session) SelectTexture(ctx context.Context, path string) {
	s.selectSeq++
	seq := s.selectSeq
	results := s.textures.LoadImageAsync(ctx, path)

	s.inflight++
	go func() {
		res := <-results
		s.post(ctx, func() { s.finishSelect(seq, res) })
	}()
}

func (s *Session) finishSelect(seq uint64, res texture.LoadResult) {
	if res.Err != nil {
		s.log.Error("texture load failed",
			zap.String("path", res.Path),
			zap.String("product", s.active),
			zap.Error(res.Err))
		return
	}
	if seq != s.selectSeq {
		s.log.Debug("stale texture dropped", zap.String("path", res.Path))
		return
	}
	s.choose(res.Texture)
}

// SelectPattern generates a pattern texture and selects it.
func (s *Session) SelectPattern(kind string) error {
	k, err := texture.ParsePatternKind(kind)
	if err != nil {
		s.log.Warn("pattern rejected", zap.String("kind", kind), zap.Error(err))
		return err
	}
	tex, err := s.textures.GeneratePattern(k)
	if err != nil {
		return err
	}
	s.selectSeq++
	s.choose(tex)
	return nil
}

func (s *Session) choose(tex *texture.Texture) {
	s.lastUser = tex
	p := s.Active()
	if p == nil || !p.Ready() {
		s.pending = tex
		s.log.Warn("product not ready, selection queued",
			zap.String("product", s.active),
			zap.String("texture", tex.Name))
		return
	}
	s.pending = nil
	_ = s.ApplyTexture(tex)
}

// ApplyTexture normalizes tex for the active product and puts it on every
// part. It returns product.ErrNotReady, logged as a warning, when the
// product cannot take a texture yet.
func (s *Session) ApplyTexture(tex *texture.Texture) error {
	p := s.Active()
	if p == nil {
		return ErrUnknownProduct
	}
	if !p.Ready() {
		err := notReady(p)
		s.log.Warn("texture not applied", zap.String("product", p.Key), zap.Error(err))
		return err
	}

	texture.Normalize(tex, p.Projector.Mode(), s.opts.Cover, p.Size())
	if err := p.ApplyTexture(tex); err != nil {
		s.log.Error("texture not applied", zap.String("product", p.Key), zap.Error(err))
		return err
	}
	s.log.Debug("texture applied",
		zap.String("product", p.Key),
		zap.String("texture", tex.Name),
		zap.Stringer("wrap_s", tex.WrapS),
		zap.Stringer("wrap_t", tex.WrapT))
	return nil
}

// ToggleAlignmentGrid swaps between the alignment grid and the last user
// texture. The last user texture is never discarded.
func (s *Session) ToggleAlignmentGrid() error {
	p := s.Active()
	if p == nil {
		return ErrUnknownProduct
	}
	if !p.Ready() {
		err := notReady(p)
		s.log.Warn("grid toggle ignored", zap.String("product", p.Key), zap.Error(err))
		return err
	}

	if s.textures.IsAlignmentGrid(p.CurrentMap()) {
		if s.lastUser == nil {
			return nil
		}
		return s.ApplyTexture(s.lastUser)
	}
	return s.ApplyTexture(s.textures.AlignmentGrid())
}

// GridShown reports whether the active product currently shows the grid.
func (s *Session) GridShown() bool {
	p := s.Active()
	return p != nil && s.textures.IsAlignmentGrid(p.CurrentMap())
}

// ToggleDebugOutline flips the bounding box outline in snapshots.
func (s *Session) ToggleDebugOutline() bool {
	s.showOutline = !s.showOutline
	return s.showOutline
}

// SwitchProduct makes key the visible product. The last user texture
// follows the switch: applied at once when the product is ready, queued
// otherwise. Switching to the active or an unknown product does nothing.
func (s *Session) SwitchProduct(ctx context.Context, key string) error {
	if key == s.active {
		return nil
	}
	next, ok := s.products.Get(key)
	if !ok {
		s.log.Warn("switch to unknown product ignored", zap.String("product", key))
		return nil
	}

	if prev := s.Active(); prev != nil {
		prev.Visible = false
	}
	s.active = key
	next.Visible = true
	s.log.Info("product switched", zap.String("product", key), zap.Stringer("state", next.State()))

	if next.State() == product.Unloaded {
		s.Load(ctx, key)
	}
	if s.lastUser == nil {
		return nil
	}
	if next.Ready() {
		s.pending = nil
		if err := s.ApplyTexture(s.lastUser); err != nil && !errors.Is(err, product.ErrNotReady) {
			return err
		}
		return nil
	}
	s.pending = s.lastUser
	return nil
}

func notReady(p *product.Product) error {
	return fmt.Errorf("%s is %s: %w", p.Key, p.State(), product.ErrNotReady)
}

package product

import (
	"fmt"

	"github.com/Faultbox/wrapview/internal/config"
)

// Registry holds the configured products in configuration order.
type Registry struct {
	products map[string]*Product
	order    []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{products: make(map[string]*Product)}
}

// Register adds a product. Keys must be unique.
func (r *Registry) Register(p *Product) error {
	if _, ok := r.products[p.Key]; ok {
		return fmt.Errorf("product %q already registered", p.Key)
	}
	r.products[p.Key] = p
	r.order = append(r.order, p.Key)
	return nil
}

// Get returns the product with key.
func (r *Registry) Get(key string) (*Product, bool) {
	p, ok := r.products[key]
	return p, ok
}

// Keys returns product keys in registration order.
func (r *Registry) Keys() []string {
	return append([]string(nil), r.order...)
}

// All returns the products in registration order.
func (r *Registry) All() []*Product {
	out := make([]*Product, 0, len(r.order))
	for _, k := range r.order {
		out = append(out, r.products[k])
	}
	return out
}

// Len returns the number of products.
func (r *Registry) Len() int { return len(r.order) }

// FromConfig builds a registry from product configuration, choosing each
// product's projector once.
func FromConfig(products []config.ProductConfig) (*Registry, error) {
	r := NewRegistry()
	for _, pc := range products {
		proj, err := pc.Projector()
		if err != nil {
			return nil, fmt.Errorf("product %q: %w", pc.Key, err)
		}
		if err := r.Register(New(pc.Key, pc.Asset, proj)); err != nil {
			return nil, err
		}
	}
	return r, nil
}

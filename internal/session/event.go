package session

import (
	"context"
	"fmt"
)

// Event types accepted by Dispatch.
const (
	EventSelectTexture      = "selectTexture"
	EventSelectPattern      = "selectPattern"
	EventSelectProduct      = "selectProduct"
	EventToggleGrid         = "toggleGrid"
	EventToggleDebugOutline = "toggleDebugOutline"
	EventReloadProduct      = "reloadProduct"
)

// Event is a user interface action.
type Event struct {
	Type    string `json:"type"`
	Path    string `json:"path,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Product string `json:"product,omitempty"`
}

// Dispatch routes an event to the matching operation.
func (s *Session) Dispatch(ctx context.Context, ev Event) error {
	switch ev.Type {
	case EventSelectTexture:
		if ev.Path == "" {
			return fmt.Errorf("%s: missing path", ev.Type)
		}
		s.SelectTexture(ctx, ev.Path)
		return nil
	case EventSelectPattern:
		return s.SelectPattern(ev.Kind)
	case EventSelectProduct:
		return s.SwitchProduct(ctx, ev.Product)
	case EventToggleGrid:
		return s.ToggleAlignmentGrid()
	case EventToggleDebugOutline:
		s.ToggleDebugOutline()
		return nil
	case EventReloadProduct:
		key := ev.Product
		if key == "" {
			key = s.active
		}
		return s.Reload(ctx, key)
	default:
		return fmt.Errorf("unknown event type %q", ev.Type)
	}
}

// Package catalog lists the texture images available in a directory and
// keeps the listing current while files are added or removed.
package catalog

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/wrapview/internal/logger"
)

// ErrNotAllowed is returned when a file name has an extension outside the allowed set.
var ErrNotAllowed = errors.New("file type not allowed")

// Entry is one listed image.
type Entry struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
}

// Catalog holds the current listing of a directory.
type Catalog struct {
	dir  string
	exts map[string]bool
	log  *zap.Logger

	mu       sync.RWMutex
	entries  []Entry
	onChange []func([]Entry)
	onStale  []func(name string)
}

// New creates a catalog for dir accepting the given extensions (with or
// without the leading dot, any case). The listing is empty until Refresh.
func New(dir string, exts []string, log *zap.Logger) *Catalog {
	return &Catalog{
		dir:  dir,
		exts: extensionSet(exts),
		log:  logger.OrNop(log),
	}
}

func extensionSet(exts []string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		set[e] = true
	}
	return set
}

// Dir returns the listed directory.
func (c *Catalog) Dir() string { return c.dir }

// Allowed reports whether name has an accepted extension.
func (c *Catalog) Allowed(name string) bool {
	return c.exts[strings.ToLower(filepath.Ext(name))]
}

// Scan lists the regular files in dir whose extension is in exts, sorted by name.
// Files that vanish or cannot be inspected mid-scan are skipped and reported
// together in the returned error alongside the entries that were read.
func Scan(dir string, exts []string) ([]Entry, error) {
	return scan(dir, extensionSet(exts))
}

func scan(dir string, exts map[string]bool) ([]Entry, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	var (
		entries []Entry
		errs    error
	)
	for _, item := range items {
		if item.IsDir() || !exts[strings.ToLower(filepath.Ext(item.Name()))] {
			continue
		}
		info, err := item.Info()
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", item.Name(), err))
			continue
		}
		entries = append(entries, Entry{Name: item.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, errs
}

// Refresh rescans the directory and notifies listeners when the listing changed.
func (c *Catalog) Refresh() error {
	entries, err := scan(c.dir, c.exts)
	if entries == nil && err != nil {
		return err
	}

	c.mu.Lock()
	changed := !sameEntries(c.entries, entries)
	stale := staleNames(c.entries, entries)
	c.entries = entries
	listeners := append([]func([]Entry){}, c.onChange...)
	staleListeners := append([]func(string){}, c.onStale...)
	c.mu.Unlock()

	for _, name := range stale {
		for _, fn := range staleListeners {
			fn(name)
		}
	}
	if changed {
		c.log.Debug("catalog refreshed", zap.String("dir", c.dir), zap.Int("entries", len(entries)))
		for _, fn := range listeners {
			fn(copyEntries(entries))
		}
	}
	return err
}

func sameEntries(a, b []Entry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || a[i].Size != b[i].Size || !a[i].ModTime.Equal(b[i].ModTime) {
			return false
		}
	}
	return true
}

// staleNames returns the names in prev that were removed or rewritten in next.
func staleNames(prev, next []Entry) []string {
	current := make(map[string]Entry, len(next))
	for _, e := range next {
		current[e.Name] = e
	}
	var stale []string
	for _, e := range prev {
		n, ok := current[e.Name]
		if !ok || n.Size != e.Size || !n.ModTime.Equal(e.ModTime) {
			stale = append(stale, e.Name)
		}
	}
	return stale
}

func copyEntries(e []Entry) []Entry {
	return append([]Entry(nil), e...)
}

// Entries returns a copy of the current listing.
func (c *Catalog) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyEntries(c.entries)
}

// Names returns the listed file names in order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.Name
	}
	return names
}

// OnChange registers fn to run with the new listing after every change.
// fn runs on the refreshing goroutine.
func (c *Catalog) OnChange(fn func([]Entry)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = append(c.onChange, fn)
}

// OnStale registers fn to run with the name of every listed file that was
// removed or rewritten. fn runs on the refreshing goroutine before OnChange
// listeners.
func (c *Catalog) OnStale(fn func(name string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStale = append(c.onStale, fn)
}

// Save stores an uploaded image under a unique name and refreshes the
// listing. At most maxBytes are accepted when maxBytes is positive.
func (c *Catalog) Save(name string, r io.Reader, maxBytes int64) (Entry, error) {
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." || !c.Allowed(base) {
		return Entry{}, fmt.Errorf("%q: %w", name, ErrNotAllowed)
	}
	prefix, err := uniquePrefix()
	if err != nil {
		return Entry{}, err
	}
	final := prefix + "_" + base

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return Entry{}, err
	}
	tmp, err := os.CreateTemp(c.dir, ".upload-*")
	if err != nil {
		return Entry{}, err
	}
	defer os.Remove(tmp.Name())

	src := r
	if maxBytes > 0 {
		src = io.LimitReader(r, maxBytes+1)
	}
	n, err := io.Copy(tmp, src)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return Entry{}, fmt.Errorf("saving %s: %w", base, err)
	}
	if maxBytes > 0 && n > maxBytes {
		return Entry{}, fmt.Errorf("saving %s: larger than %d bytes", base, maxBytes)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(c.dir, final)); err != nil {
		return Entry{}, err
	}

	c.log.Info("texture uploaded", zap.String("name", final), zap.Int64("size", n))
	if err := c.Refresh(); err != nil {
		c.log.Warn("catalog refresh after upload", zap.Error(err))
	}
	for _, e := range c.Entries() {
		if e.Name == final {
			return e, nil
		}
	}
	return Entry{Name: final, Size: n}, nil
}

func uniquePrefix() (string, error) {
	var b [6]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}

// Watch refreshes the listing whenever files in the directory are created,
// written, removed, or renamed, coalescing bursts within debounce. It
// returns once the watch is established and stops when ctx is done.
func (c *Catalog) Watch(ctx context.Context, debounce time.Duration) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	abs, err := filepath.Abs(c.dir)
	if err != nil {
		w.Close()
		return fmt.Errorf("failed to resolve path %s: %w", c.dir, err)
	}
	if err := w.Add(abs); err != nil {
		w.Close()
		return fmt.Errorf("failed to watch %s: %w", abs, err)
	}

	go c.watchLoop(ctx, w, debounce)
	return nil
}

func (c *Catalog) watchLoop(ctx context.Context, w *fsnotify.Watcher, debounce time.Duration) {
	defer w.Close()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	const relevant = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if event.Op&relevant == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if err := c.Refresh(); err != nil {
				c.log.Warn("catalog refresh failed", zap.String("dir", c.dir), zap.Error(err))
			}

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			c.log.Warn("watcher error", zap.Error(err))
		}
	}
}

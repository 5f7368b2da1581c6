package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var imageExts = []string{".png", "JPG", "jpeg"}

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"zebra.png", "Apple.JPG", "notes.txt", "mid.jpeg", "noext"} {
		touch(t, dir, name)
	}
	if err := os.Mkdir(filepath.Join(dir, "folder.png"), 0755); err != nil {
		t.Fatal(err)
	}

	entries, err := Scan(dir, imageExts)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	want := "Apple.JPG,mid.jpeg,zebra.png"
	if got := strings.Join(names, ","); got != want {
		t.Errorf("Scan() = %s, want %s", got, want)
	}
}

func TestScanMissingDir(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "nope"), imageExts); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestRefreshNotifiesOnChange(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, imageExts, nil)

	var calls int
	c.OnChange(func([]Entry) { calls++ })

	touch(t, dir, "a.png")
	if err := c.Refresh(); err != nil {
		t.Fatal(err)
	}
	if err := c.Refresh(); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("listeners called %d times, want 1", calls)
	}
	if names := c.Names(); len(names) != 1 || names[0] != "a.png" {
		t.Errorf("Names() = %v, want [a.png]", names)
	}
}

func TestRefreshReportsStaleFiles(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, imageExts, nil)
	touch(t, dir, "a.png")
	touch(t, dir, "b.png")
	touch(t, dir, "c.png")
	if err := c.Refresh(); err != nil {
		t.Fatal(err)
	}

	var stale []string
	c.OnStale(func(name string) { stale = append(stale, name) })

	if err := os.WriteFile(filepath.Join(dir, "a.png"), []byte("rewritten"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(dir, "b.png")); err != nil {
		t.Fatal(err)
	}
	touch(t, dir, "d.png")
	if err := c.Refresh(); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(stale, ","); got != "a.png,b.png" {
		t.Errorf("stale = %s, want a.png,b.png", got)
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, imageExts, nil)

	e, err := c.Save("../../etc/logo.png", strings.NewReader("pngdata"), 0)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !strings.HasSuffix(e.Name, "_logo.png") || strings.Contains(e.Name, "/") {
		t.Errorf("saved name = %q", e.Name)
	}
	if _, err := os.Stat(filepath.Join(dir, e.Name)); err != nil {
		t.Errorf("saved file missing: %v", err)
	}
	if len(c.Entries()) != 1 {
		t.Errorf("Entries() = %v, want the upload", c.Entries())
	}

	if _, err := c.Save("run.sh", strings.NewReader("x"), 0); !errors.Is(err, ErrNotAllowed) {
		t.Errorf("Save(run.sh) error = %v, want ErrNotAllowed", err)
	}
	if _, err := c.Save("big.png", strings.NewReader("0123456789"), 4); err == nil {
		t.Error("Save() accepted an oversized upload")
	}
	if n := len(c.Entries()); n != 1 {
		t.Errorf("rejected uploads left %d entries", n)
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, imageExts, nil)
	if err := c.Refresh(); err != nil {
		t.Fatal(err)
	}

	changed := make(chan []Entry, 4)
	c.OnChange(func(e []Entry) { changed <- e })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := c.Watch(ctx, 20*time.Millisecond); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	touch(t, dir, "fresh.png")
	touch(t, dir, "ignored.txt")

	select {
	case e := <-changed:
		if len(e) != 1 || e[0].Name != "fresh.png" {
			t.Errorf("listing = %v, want [fresh.png]", e)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no refresh after file creation")
	}
}

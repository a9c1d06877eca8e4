package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/layerview/layerview/pkg/errors"
	"github.com/layerview/layerview/pkg/layers"
	"github.com/layerview/layerview/pkg/raster"
)

func testList(t *testing.T) *layers.List {
	t.Helper()
	l := layers.NewList(nil)

	img, err := raster.NewImage(4, 8, 1, make([]float64, 32))
	if err != nil {
		t.Fatalf("NewImage() error = %v", err)
	}
	bg, err := layers.NewImage(img)
	if err != nil {
		t.Fatalf("NewImage layer error = %v", err)
	}
	if err := l.Add(bg, "bg", nil); err != nil {
		t.Fatalf("Add(bg) error = %v", err)
	}

	lm, err := raster.LabelMapFromInts(4, 8, make([]int64, 32))
	if err != nil {
		t.Fatalf("LabelMapFromInts() error = %v", err)
	}
	fg, err := layers.NewLabel(lm, nil)
	if err != nil {
		t.Fatalf("NewLabel() error = %v", err)
	}
	if err := l.Add(fg, "fg", nil); err != nil {
		t.Fatalf("Add(fg) error = %v", err)
	}
	return l
}

func TestCapture(t *testing.T) {
	l := testList(t)

	snap, err := Capture("scene", l, 0, 0)
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	if snap.ID != "scene" {
		t.Errorf("ID = %q, want scene", snap.ID)
	}
	if snap.MainAlias != "bg" {
		t.Errorf("MainAlias = %q, want bg", snap.MainAlias)
	}
	if snap.CreatedAt.IsZero() {
		t.Error("CreatedAt is zero")
	}
	if len(snap.Domain) != 4 || snap.Domain[0] != 4 || snap.Domain[1] != 8 {
		t.Errorf("Domain = %v, want [4 8 0 0]", snap.Domain)
	}

	if len(snap.Layers) != 2 {
		t.Fatalf("Layers = %d, want 2", len(snap.Layers))
	}
	// Layers are stored in z order: bg was added first and has the lower
	// z_index.
	if snap.Layers[0].Alias != "bg" || snap.Layers[1].Alias != "fg" {
		t.Errorf("layer order = [%s %s], want [bg fg]", snap.Layers[0].Alias, snap.Layers[1].Alias)
	}
	if snap.Layers[0].Kind != layers.KindImage || snap.Layers[1].Kind != layers.KindLabel {
		t.Errorf("kinds = [%s %s]", snap.Layers[0].Kind, snap.Layers[1].Kind)
	}
	for _, st := range snap.Layers {
		if st.Data.Data == nil || st.Data.Data == "" {
			t.Errorf("layer %q has no encoded payload", st.Alias)
		}
		// Options are stored in their wire form.
		if _, ok := st.Options["domain"].([]float64); !ok {
			t.Errorf("layer %q domain = %T, want flattened []float64", st.Alias, st.Options["domain"])
		}
	}
}

func TestCapture_ZOrder(t *testing.T) {
	l := testList(t)
	fg, _ := l.Layer("fg")
	if err := fg.SetOptions(layers.Options{"z_index": 0.5}, true); err != nil {
		t.Fatalf("SetOptions() error = %v", err)
	}

	snap, err := Capture("scene", l, 0, 0)
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	if snap.Layers[0].Alias != "fg" {
		t.Errorf("first layer = %q, want fg (lowest z_index)", snap.Layers[0].Alias)
	}
}

func TestFileStore_SaveLoad(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	ctx := context.Background()

	l := testList(t)
	snap, err := Capture("scene", l, 0, 0)
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	if err := store.Save(ctx, snap); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := store.Load(ctx, "scene")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.ID != snap.ID || got.MainAlias != snap.MainAlias {
		t.Errorf("Load() = %+v, want %+v", got, snap)
	}
	if len(got.Layers) != len(snap.Layers) {
		t.Fatalf("Load() layers = %d, want %d", len(got.Layers), len(snap.Layers))
	}
	if got.Layers[0].Data.Data != snap.Layers[0].Data.Data {
		t.Error("payload did not survive the round trip")
	}
}

func TestFileStore_LoadMissing(t *testing.T) {
	store, _ := NewFileStore(t.TempDir())
	_, err := store.Load(context.Background(), "nope")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Load() error = %v, want NOT_FOUND", err)
	}
}

func TestFileStore_InvalidID(t *testing.T) {
	store, _ := NewFileStore(t.TempDir())
	ctx := context.Background()

	for _, id := range []string{"", "a/b", `a\b`, strings.Repeat("x", 200)} {
		if err := store.Save(ctx, &Snapshot{ID: id}); !errors.Is(err, errors.ErrCodeInvalidAlias) {
			t.Errorf("Save(%q) error = %v, want INVALID_ALIAS", id, err)
		}
	}
}

func TestFileStore_Delete(t *testing.T) {
	store, _ := NewFileStore(t.TempDir())
	ctx := context.Background()

	if err := store.Save(ctx, &Snapshot{ID: "scene", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Delete(ctx, "scene"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Load(ctx, "scene"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Load() after Delete() error = %v, want NOT_FOUND", err)
	}

	// Deleting a missing snapshot is not an error.
	if err := store.Delete(ctx, "never-saved"); err != nil {
		t.Errorf("Delete(missing) error = %v", err)
	}
}

func TestFileStore_ListNewestFirst(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewFileStore(dir)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		snap := &Snapshot{ID: id, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := store.Save(ctx, snap); err != nil {
			t.Fatalf("Save(%s) error = %v", id, err)
		}
	}
	// Unreadable entries are skipped rather than failing the listing.
	if err := os.WriteFile(filepath.Join(dir, "corrupt.json"), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	metas, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(metas) != 3 {
		t.Fatalf("List() = %d entries, want 3", len(metas))
	}
	want := []string{"new", "mid", "old"}
	for i := range want {
		if metas[i].ID != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, metas[i].ID, want[i])
		}
	}
}

func TestFileStore_ListEmpty(t *testing.T) {
	store, _ := NewFileStore(t.TempDir())
	metas, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(metas) != 0 {
		t.Errorf("List() = %v, want empty", metas)
	}
}

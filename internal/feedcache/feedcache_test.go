package feedcache

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"isochrone/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStoreAndLoad_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	cache, err := Open(filepath.Join(dir, "cache.db"), testLogger())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cache.Close()

	feed := &model.Feed{
		Stops: []model.Stop{{ID: "s1", Name: "Main St", Lat: 44.9, Lon: -93.2}},
		Trips: []model.Trip{{ID: "t1", RouteID: "r1", ServiceID: "svc"}},
	}

	if err := cache.Store("abc123", feed); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	got, ok, err := cache.Load("abc123")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !ok {
		t.Fatalf("Load() ok = false, want true")
	}
	if len(got.Stops) != 1 || got.Stops[0].ID != "s1" {
		t.Errorf("Load() = %+v, want round-tripped stop s1", got.Stops)
	}
}

func TestLoad_MissingHashReturnsNotFound(t *testing.T) {
	dir := t.TempDir()
	cache, err := Open(filepath.Join(dir, "cache.db"), testLogger())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cache.Close()

	_, ok, err := cache.Load("missing")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if ok {
		t.Errorf("Load(missing) ok = true, want false")
	}
}

func TestStore_OverwritesExistingHash(t *testing.T) {
	dir := t.TempDir()
	cache, err := Open(filepath.Join(dir, "cache.db"), testLogger())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cache.Close()

	first := &model.Feed{Stops: []model.Stop{{ID: "old"}}}
	second := &model.Feed{Stops: []model.Stop{{ID: "new"}}}

	if err := cache.Store("k", first); err != nil {
		t.Fatalf("Store(first) error = %v", err)
	}
	if err := cache.Store("k", second); err != nil {
		t.Fatalf("Store(second) error = %v", err)
	}

	got, _, err := cache.Load("k")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got.Stops) != 1 || got.Stops[0].ID != "new" {
		t.Errorf("Load() after overwrite = %+v, want single stop \"new\"", got.Stops)
	}
}

func TestHashFile_StableForSameContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feed.zip")
	if err := os.WriteFile(path, []byte("fake gtfs zip contents"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	h1, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile() error = %v", err)
	}
	h2, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile() error = %v", err)
	}
	if h1 != h2 {
		t.Errorf("HashFile() not stable: %q != %q", h1, h2)
	}
}

package gallery

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/dailyart/pkg/errors"
)

func entry(date, palette string) Entry {
	return Entry{
		Date:    date,
		Seed:    "41b62fb4518505d3",
		Palette: palette,
		Style:   "fractured",
		Width:   1080,
		Height:  1080,
		Format:  "png",
		Path:    filepath.Join("art", date+".png"),
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	defer s.Close()

	if list, err := s.List(ctx); err != nil || len(list) != 0 {
		t.Fatalf("List on empty store = %v, %v", list, err)
	}

	for _, d := range []string{"2024-01-03", "2024-01-01", "2024-01-02"} {
		if err := s.Put(ctx, entry(d, "Cosmic Scene")); err != nil {
			t.Fatalf("Put(%s): %v", d, err)
		}
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("List returned %d entries, want 3", len(list))
	}
	for i, want := range []string{"2024-01-01", "2024-01-02", "2024-01-03"} {
		if list[i].Date != want {
			t.Errorf("List[%d].Date = %s, want %s", i, list[i].Date, want)
		}
		if list[i].ID == uuid.Nil {
			t.Errorf("List[%d] has no ID", i)
		}
		if list[i].CreatedAt.IsZero() {
			t.Errorf("List[%d] has no CreatedAt", i)
		}
	}

	got, err := s.Get(ctx, "2024-01-02")
	if err != nil {
		t.Fatal(err)
	}
	if got.Palette != "Cosmic Scene" || got.Width != 1080 {
		t.Errorf("Get = %+v", got)
	}

	if _, err := os.Stat(filepath.Join(dir, FileName)); err != nil {
		t.Errorf("index not written: %v", err)
	}
}

func TestFileStorePutReplacesDate(t *testing.T) {
	ctx := context.Background()
	s, _ := NewFileStore(t.TempDir())

	_ = s.Put(ctx, entry("2024-01-01", "Cosmic Scene"))
	_ = s.Put(ctx, entry("2024-01-01", "Fever Dream"))

	list, _ := s.List(ctx)
	if len(list) != 1 {
		t.Fatalf("List returned %d entries, want 1", len(list))
	}
	if list[0].Palette != "Fever Dream" {
		t.Errorf("Palette = %s, want the replacement", list[0].Palette)
	}
}

func TestFileStoreGetMissing(t *testing.T) {
	s, _ := NewFileStore(t.TempDir())
	_, err := s.Get(context.Background(), "2024-01-01")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestFileStoreRejectsBadDate(t *testing.T) {
	s, _ := NewFileStore(t.TempDir())
	err := s.Put(context.Background(), entry("yesterday", "Cosmic Scene"))
	if !errors.Is(err, errors.ErrCodeInvalidDate) {
		t.Errorf("err = %v, want INVALID_DATE", err)
	}
}

func TestFileStoreCorruptIndex(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte("[{"), 0644); err != nil {
		t.Fatal(err)
	}
	s, _ := NewFileStore(dir)
	if _, err := s.List(context.Background()); !errors.Is(err, errors.ErrCodeStorage) {
		t.Errorf("err = %v, want STORAGE_ERROR", err)
	}
}

func TestPrepareKeepsExistingFields(t *testing.T) {
	id := uuid.New()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	e, err := prepare(Entry{ID: id, Date: "2024-01-01", CreatedAt: created}, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if e.ID != id || !e.CreatedAt.Equal(created) {
		t.Errorf("prepare overwrote fields: %+v", e)
	}
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("DAILYART_MONGO_URI")
	if uri == "" {
		t.Skip("DAILYART_MONGO_URI not set")
	}
	ctx := context.Background()
	coll := "gallery_test_" + uuid.NewString()[:8]
	s, err := NewMongoStore(ctx, MongoOptions{URI: uri, Collection: coll})
	if err != nil {
		t.Fatalf("NewMongoStore: %v", err)
	}
	defer func() {
		_ = s.coll.Drop(ctx)
		s.Close()
	}()

	if err := s.Put(ctx, entry("2024-01-02", "Cosmic Scene")); err != nil {
		t.Fatal(err)
	}
	if err := s.Put(ctx, entry("2024-01-01", "Cosmic Scene")); err != nil {
		t.Fatal(err)
	}
	first, _ := s.Get(ctx, "2024-01-01")
	if err := s.Put(ctx, entry("2024-01-01", "Fever Dream")); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, "2024-01-01")
	if err != nil {
		t.Fatal(err)
	}
	if got.Palette != "Fever Dream" || got.ID != first.ID {
		t.Errorf("Get = %+v, want replaced palette and stable id %s", got, first.ID)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Date != "2024-01-01" {
		t.Errorf("List = %+v", list)
	}

	if _, err := s.Get(ctx, "1999-01-01"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing date err = %v", err)
	}
}

func TestNewMongoStoreRequiresURI(t *testing.T) {
	_, err := NewMongoStore(context.Background(), MongoOptions{})
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
}

package store

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/park285/tig-search-go/internal/config"
	"github.com/park285/tig-search-go/internal/search"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), config.IndexConfig{Driver: "sqlite", DSN: ":memory:"}, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), config.IndexConfig{Driver: "mysql", DSN: "x"}, nil)
	if !errors.Is(err, ErrUnsupportedDriver) {
		t.Fatalf("expected ErrUnsupportedDriver, got %v", err)
	}
}

func TestOpenCreatesSQLiteDir(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "index.db")
	s, err := Open(context.Background(), config.IndexConfig{Driver: "SQLite", DSN: dsn}, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	if s.Driver() != DriverSQLite {
		t.Fatalf("unexpected driver: %s", s.Driver())
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestSaveAndLoadDocuments(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	docs := []search.Document{
		{ID: "01052023", Location: "pdf/haddas_eritra_01052023.pdf", Tokens: []string{"ሰላም", "ዓዲ", "ሰላም"}},
		{ID: "03052023", Location: "pdf/haddas_eritra_03052023.pdf", Tokens: []string{"ሓለዋ"}},
	}
	if err := s.SaveDocuments(ctx, docs); err != nil {
		t.Fatalf("save: %v", err)
	}

	n, err := s.Count(ctx)
	if err != nil || n != 2 {
		t.Fatalf("expected 2 documents, got %d (%v)", n, err)
	}

	loaded, err := s.LoadDocuments(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 || loaded[0].ID != "01052023" || loaded[1].ID != "03052023" {
		t.Fatalf("unexpected documents: %+v", loaded)
	}
	got := slices.Clone(loaded[0].Tokens)
	slices.Sort(got)
	want := []string{"ሰላም", "ሰላም", "ዓዲ"}
	slices.Sort(want)
	if !slices.Equal(got, want) {
		t.Fatalf("token multiset mismatch: %v", loaded[0].Tokens)
	}
	if loaded[0].Location != docs[0].Location {
		t.Fatalf("unexpected location: %s", loaded[0].Location)
	}
}

func TestSaveDocumentsReplacesPostings(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	if err := s.SaveDocuments(ctx, []search.Document{{ID: "01052023", Location: "a.pdf", Tokens: []string{"ሰላም"}}}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := s.SaveDocuments(ctx, []search.Document{{ID: "01052023", Location: "b.pdf", Tokens: []string{"ዓዲ", "ዓዲ"}}}); err != nil {
		t.Fatalf("second save: %v", err)
	}

	loaded, err := s.LoadDocuments(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Location != "b.pdf" {
		t.Fatalf("expected overwritten document, got %+v", loaded)
	}
	if !slices.Equal(loaded[0].Tokens, []string{"ዓዲ", "ዓዲ"}) {
		t.Fatalf("old postings should be replaced: %v", loaded[0].Tokens)
	}
}

func TestLoadedDocumentsRankLikeOriginals(t *testing.T) {
	ctx := context.Background()
	s := openMemory(t)

	docs := []search.Document{
		{ID: "01052023", Location: "a.pdf", Tokens: []string{"ሰላም", "ዓዲ", "ሰላም", "ሓለዋ"}},
		{ID: "02052023", Location: "b.pdf", Tokens: []string{"ዓዲ", "ሕጂ"}},
		{ID: "03052023", Location: "c.pdf", Tokens: []string{"ሓለዋ", "ሕጂ", "ሕጂ"}},
	}
	if err := s.SaveDocuments(ctx, docs); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := s.LoadDocuments(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	query := []string{"ሰላም", "ሕጂ"}
	want := search.Build(docs).Search(query, 10, "")
	got := search.Build(loaded).Search(query, 10, "")
	if len(got) != len(want) {
		t.Fatalf("result count mismatch: %d vs %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID {
			t.Fatalf("rank %d mismatch: %s vs %s", i, got[i].ID, want[i].ID)
		}
	}
}

func TestSaveEmptyIsNoop(t *testing.T) {
	s := openMemory(t)
	if err := s.SaveDocuments(context.Background(), nil); err != nil {
		t.Fatalf("save nil: %v", err)
	}
}

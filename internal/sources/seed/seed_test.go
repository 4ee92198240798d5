package seed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/marksync/marks/internal/domain"
	"github.com/marksync/marks/internal/logger"
)

func TestLoaderLoad(t *testing.T) {
	tmpDir := t.TempDir()
	yamlPath := filepath.Join(tmpDir, "seed.yaml")

	yamlContent := `---
- url: https://go.dev
  title: The Go Programming Language
- url: https://pkg.go.dev
  title: Go Packages
`

	err := os.WriteFile(yamlPath, []byte(yamlContent), 0o644)
	if err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}

	loader := NewLoader(yamlPath)
	entries, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("Load() returned %d entries, want 2", len(entries))
	}
	if entries[0].URL != "https://go.dev" || entries[0].Title != "The Go Programming Language" {
		t.Errorf("unexpected first entry %+v", entries[0])
	}
}

func TestLoaderMissingFile(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "absent.yaml"))
	if _, err := loader.Load(); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoaderMalformedYAML(t *testing.T) {
	tmpDir := t.TempDir()
	yamlPath := filepath.Join(tmpDir, "seed.yaml")
	if err := os.WriteFile(yamlPath, []byte("url: [broken"), 0o644); err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}
	if _, err := NewLoader(yamlPath).Load(); err == nil {
		t.Fatal("expected parse error")
	}
}

type importStore struct {
	existing []*domain.Bookmark
	created  []string
	failOn   string
}

func (s *importStore) Create(_ context.Context, owner, url, title string) (*domain.Bookmark, error) {
	if url == s.failOn {
		return nil, errors.New("store down")
	}
	s.created = append(s.created, url)
	return &domain.Bookmark{ID: "id-" + url, Owner: owner, URL: url, Title: title, CreatedAt: time.Now().UTC()}, nil
}

func (s *importStore) Delete(context.Context, string, string) error { return nil }

func (s *importStore) ListAll(context.Context, string) ([]*domain.Bookmark, error) {
	return s.existing, nil
}

func TestImporterSkipsExistingAndInvalid(t *testing.T) {
	store := &importStore{existing: []*domain.Bookmark{
		{ID: "b1", Owner: "alice", URL: "https://go.dev", Title: "Go"},
	}}
	imp := NewImporter(store, logger.NewNop())

	entries := []Entry{
		{URL: "https://go.dev", Title: "Go"},              // already present
		{URL: "https://pkg.go.dev", Title: "Go Packages"}, // new
		{URL: "not-a-url", Title: "Broken"},               // invalid, skipped
		{URL: "https://blog.go.dev", Title: ""},           // empty title, skipped
	}

	n, err := imp.Import(context.Background(), "alice", entries)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Import() created %d, want 1", n)
	}
	if len(store.created) != 1 || store.created[0] != "https://pkg.go.dev" {
		t.Errorf("created = %v", store.created)
	}
}

func TestImporterStopsOnStoreError(t *testing.T) {
	store := &importStore{failOn: "https://pkg.go.dev"}
	imp := NewImporter(store, logger.NewNop())

	entries := []Entry{
		{URL: "https://go.dev", Title: "Go"},
		{URL: "https://pkg.go.dev", Title: "Go Packages"},
	}
	n, err := imp.Import(context.Background(), "alice", entries)
	if err == nil {
		t.Fatal("expected error")
	}
	if n != 1 {
		t.Errorf("Import() created %d before failing, want 1", n)
	}
}

package service

import (
	"errors"
	"testing"

	"github.com/inkshelf/internal/db"
)

func TestAuthorServiceCreateValidation(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t, "author-create")
	defer cleanup()

	svc := NewAuthorService(gdb)

	_, err := svc.Create("   ")
	errs := fieldErrorsFrom(t, err)
	if len(errs["name"]) == 0 {
		t.Fatalf("expected name error for blank name, got %v", errs)
	}

	_, err = svc.Create("X")
	errs = fieldErrorsFrom(t, err)
	if len(errs["name"]) == 0 {
		t.Fatalf("expected name error for one character name, got %v", errs)
	}

	author, err := svc.Create("  Ada Lovelace  ")
	if err != nil {
		t.Fatalf("create author: %v", err)
	}
	if author.Name != "Ada Lovelace" {
		t.Fatalf("expected trimmed name, got %q", author.Name)
	}
}

func TestAuthorServiceListAlphabetical(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t, "author-list")
	defer cleanup()

	svc := NewAuthorService(gdb)
	for _, name := range []string{"Zadie Smith", "Ann Leckie", "Mary Shelley"} {
		if _, err := svc.Create(name); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	authors, err := svc.List()
	if err != nil {
		t.Fatalf("list authors: %v", err)
	}
	if len(authors) != 3 {
		t.Fatalf("expected 3 authors, got %d", len(authors))
	}
	if authors[0].Name != "Ann Leckie" || authors[2].Name != "Zadie Smith" {
		t.Fatalf("unexpected order: %q, %q, %q", authors[0].Name, authors[1].Name, authors[2].Name)
	}
}

func TestAuthorServiceDeleteCascadesBooks(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t, "author-delete")
	defer cleanup()

	author := seedAuthor(t, gdb, "Doomed Author")
	seedBook(t, gdb, "First Book", 1990, author.ID)
	seedBook(t, gdb, "Second Book", 1995, author.ID)

	svc := NewAuthorService(gdb)
	if err := svc.Delete(author.ID); err != nil {
		t.Fatalf("delete author: %v", err)
	}

	var bookCount int64
	gdb.Unscoped().Model(&db.Book{}).Where("author_id = ?", author.ID).Count(&bookCount)
	if bookCount != 0 {
		t.Fatalf("expected author's books to be deleted, found %d", bookCount)
	}

	if err := svc.Delete(author.ID); !errors.Is(err, ErrAuthorNotFound) {
		t.Fatalf("expected ErrAuthorNotFound on second delete, got %v", err)
	}
}

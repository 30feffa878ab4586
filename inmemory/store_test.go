package inmemory

import (
	"context"
	"strings"
	"testing"

	"github.com/owasp/nestsearch"
)

func TestStoreLoadFixturesFile(t *testing.T) {
	store := NewStore()
	if err := store.LoadFile("testdata/fixtures.json"); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	want := []string{"chapters", "committees", "issues", "projects", "users"}
	got := store.Names()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Expected indexes %v, got %v", want, got)
	}

	var opener nestsearch.Opener = store
	page, err := opener.Open("users").Search(context.Background(), "ahmedtest", nestsearch.Eq("idx_key", "ahmedtest"))
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(page.Hits) != 1 || page.Hits[0].ID != "u-ahmed" {
		t.Errorf("Expected the keyed user, got %+v", page.Hits)
	}
}

func TestStoreLoadAssignsIDs(t *testing.T) {
	fx, err := ReadFixtures(strings.NewReader(`{"chapters": [{"idx_name": "A"}, {"idx_name": "B", "objectID": "b"}]}`))
	if err != nil {
		t.Fatalf("ReadFixtures failed: %v", err)
	}

	store := NewStore()
	store.Load(fx)

	page, err := store.Open("chapters").Search(context.Background(), "")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if page.Hits[0].ID != "chapters-1" || page.Hits[1].ID != "b" {
		t.Errorf("Unexpected ids: %s, %s", page.Hits[0].ID, page.Hits[1].ID)
	}
}

func TestStoreOpenUnknownIndexIsEmpty(t *testing.T) {
	page, err := NewStore().Open("nothing").Search(context.Background(), "")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if !page.Empty() {
		t.Errorf("Expected empty page, got %+v", page)
	}
}

func TestReadFixturesInvalid(t *testing.T) {
	if _, err := ReadFixtures(strings.NewReader("[1,2")); err == nil {
		t.Error("Expected decode error")
	}
	if _, err := ReadFixturesFile("testdata/missing.json"); err == nil {
		t.Error("Expected open error")
	}
}

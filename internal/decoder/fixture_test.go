package decoder

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadFixtureValidDocument(t *testing.T) {
	path := writeFixture(t, `{
		"pages": [
			{
				"width": 612,
				"height": 792,
				"items": [
					{"str": "Hello", "transform": [12, 0, 0, 12, 100, 700], "width": 40, "height": 12}
				]
			}
		]
	}`)

	doc, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(doc.Pages))
	}
	if doc.Pages[0].Items[0].Str != "Hello" {
		t.Errorf("item str = %q, want %q", doc.Pages[0].Items[0].Str, "Hello")
	}
}

func TestLoadFixtureMissingRequiredField(t *testing.T) {
	// "pages" is required at the top level.
	path := writeFixture(t, `{}`)
	if _, err := LoadFixture(path); err == nil {
		t.Error("expected schema validation to reject a document missing \"pages\"")
	}
}

func TestLoadFixtureMissingItemField(t *testing.T) {
	// Each item requires "str" and "transform".
	path := writeFixture(t, `{
		"pages": [
			{"width": 612, "height": 792, "items": [{"str": "no transform"}]}
		]
	}`)
	if _, err := LoadFixture(path); err == nil {
		t.Error("expected schema validation to reject an item missing \"transform\"")
	}
}

func TestLoadFixtureWrongTransformArity(t *testing.T) {
	path := writeFixture(t, `{
		"pages": [
			{"width": 612, "height": 792, "items": [{"str": "x", "transform": [1, 2, 3]}]}
		]
	}`)
	if _, err := LoadFixture(path); err == nil {
		t.Error("expected schema validation to reject a transform with fewer than 6 elements")
	}
}

func TestLoadFixtureMalformedJSON(t *testing.T) {
	path := writeFixture(t, `{not valid json`)
	if _, err := LoadFixture(path); err == nil {
		t.Error("expected an error for malformed JSON")
	}
}

func TestLoadFixtureMissingFile(t *testing.T) {
	if _, err := LoadFixture(filepath.Join(t.TempDir(), "does-not-exist.json")); err == nil {
		t.Error("expected an error for a missing fixture file")
	}
}

func TestFixtureDecoderNumPagesAndGetPage(t *testing.T) {
	doc := &FixtureDocument{Pages: []FixturePage{
		{Width: 600, Height: 800, Items: []FixtureItem{{Str: "a", Transform: [6]float64{10, 0, 0, 10, 0, 0}}}},
		{Width: 600, Height: 800},
	}}
	dec := NewFixtureDecoder(doc)
	if dec.NumPages() != 2 {
		t.Fatalf("NumPages = %d, want 2", dec.NumPages())
	}

	page, err := dec.GetPage(context.Background(), 0)
	if err != nil {
		t.Fatalf("GetPage(0): %v", err)
	}
	w, h, err := page.Viewport(context.Background())
	if err != nil || w != 600 || h != 800 {
		t.Errorf("Viewport = (%v,%v,%v), want (600,800,nil)", w, h, err)
	}
	items, err := page.TextContent(context.Background())
	if err != nil || len(items) != 1 || items[0].Str != "a" {
		t.Errorf("TextContent = (%v,%v), want one item with Str=%q", items, err, "a")
	}
}

func TestFixtureDecoderGetPageOutOfRange(t *testing.T) {
	dec := NewFixtureDecoder(&FixtureDocument{Pages: []FixturePage{{Width: 1, Height: 1}}})
	if _, err := dec.GetPage(context.Background(), 5); err == nil {
		t.Error("expected an error for an out-of-range page index")
	}
	if _, err := dec.GetPage(context.Background(), -1); err == nil {
		t.Error("expected an error for a negative page index")
	}
}

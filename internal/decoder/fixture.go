package decoder

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// fixtureSchema is the JSON Schema every fixture document must satisfy
// before it is loaded. Validating up front turns a malformed hand-written
// fixture into one clear error instead of a confusing panic three stages
// into the pipeline.
const fixtureSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["pages"],
  "properties": {
    "pages": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["width", "height", "items"],
        "properties": {
          "width": {"type": "number"},
          "height": {"type": "number"},
          "items": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["str", "transform"],
              "properties": {
                "str": {"type": "string"},
                "transform": {
                  "type": "array",
                  "minItems": 6,
                  "maxItems": 6,
                  "items": {"type": "number"}
                },
                "width": {"type": "number"},
                "height": {"type": "number"}
              }
            }
          }
        }
      }
    }
  }
}`

// FixtureDocument is the on-disk shape of a fixture file: a flat list of
// pages, each a viewport size and its raw text items, mirroring exactly
// the shape getPage/getViewport/getTextContent would hand back for a real
// PDF (§6). Tests and the CLI's --fixture flag use this to exercise the
// pipeline without depending on an actual PDF file.
type FixtureDocument struct {
	Pages []FixturePage `json:"pages"`
}

// FixturePage is one page of a FixtureDocument.
type FixturePage struct {
	Width  float64        `json:"width"`
	Height float64        `json:"height"`
	Items  []FixtureItem  `json:"items"`
}

// FixtureItem mirrors RawTextItem's JSON shape.
type FixtureItem struct {
	Str       string     `json:"str"`
	Transform [6]float64 `json:"transform"`
	Width     float64    `json:"width"`
	Height    float64    `json:"height"`
}

var compiledFixtureSchema *jsonschema.Schema

func init() {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("fixture.json", strings.NewReader(fixtureSchema)); err != nil {
		panic(fmt.Errorf("decoder: compiling fixture schema: %w", err))
	}
	schema, err := compiler.Compile("fixture.json")
	if err != nil {
		panic(fmt.Errorf("decoder: compiling fixture schema: %w", err))
	}
	compiledFixtureSchema = schema
}

// LoadFixture reads and validates a fixture file from disk.
func LoadFixture(path string) (*FixtureDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if err := compiledFixtureSchema.Validate(v); err != nil {
		return nil, fmt.Errorf("fixture %s failed schema validation: %w", path, err)
	}

	var doc FixtureDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode fixture %s: %w", path, err)
	}
	return &doc, nil
}

// FixtureDecoder adapts a FixtureDocument to the Decoder contract.
type FixtureDecoder struct {
	doc *FixtureDocument
}

// NewFixtureDecoder wraps an already-loaded fixture document.
func NewFixtureDecoder(doc *FixtureDocument) *FixtureDecoder {
	return &FixtureDecoder{doc: doc}
}

// NumPages implements Decoder.
func (d *FixtureDecoder) NumPages() int { return len(d.doc.Pages) }

// GetPage implements Decoder.
func (d *FixtureDecoder) GetPage(ctx context.Context, n int) (Page, error) {
	if n < 0 || n >= len(d.doc.Pages) {
		return nil, fmt.Errorf("fixture page %d out of range", n)
	}
	return &fixturePage{page: d.doc.Pages[n]}, nil
}

type fixturePage struct {
	page FixturePage
}

func (p *fixturePage) Viewport(ctx context.Context) (float64, float64, error) {
	return p.page.Width, p.page.Height, nil
}

func (p *fixturePage) TextContent(ctx context.Context) ([]RawTextItem, error) {
	items := make([]RawTextItem, len(p.page.Items))
	for i, it := range p.page.Items {
		items[i] = RawTextItem{
			Str:       it.Str,
			Transform: it.Transform,
			Width:     it.Width,
			Height:    it.Height,
		}
	}
	return items, nil
}

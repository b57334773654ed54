// Package decoder implements the minimal page/text-content contract the
// layout pipeline consumes (§6), plus two concrete sources: a pdfcpu-
// backed reader of real PDF files, and a JSON fixture reader used by tests
// and the CLI's --fixture flag.
package decoder

import "github.com/jackzampolin/narrative/internal/layout"

// Decoder is the per-document contract: page count plus random access to
// individual pages. It is an alias for layout.PageSource so that every
// concrete decoder in this package automatically satisfies what Analyze
// consumes, with no adapter boilerplate at the call site.
type Decoder = layout.PageSource

// Page is the per-page contract: viewport dimensions and raw text items.
type Page = layout.PageContent

// RawTextItem is one item as returned by a page's TextContent.
type RawTextItem = layout.RawTextItem

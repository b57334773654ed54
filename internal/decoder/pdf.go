package decoder

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFDecoder reads pages from a real PDF file on disk, using pdfcpu for
// page counting, page dimensions, and raw content-stream extraction. It
// parses the PDF text-showing operators itself: pdfcpu exposes the
// document's object model and content streams, not pre-resolved text runs
// with their positioning matrices.
type PDFDecoder struct {
	path      string
	ctx       *model.Context
	numPages  int
}

// OpenPDF loads a PDF's cross-reference table and page count. The content
// streams themselves are extracted lazily, per page, in GetPage: large
// documents would otherwise pay the full extraction cost up front even
// when only a handful of pages are analyzed (e.g. the CLI's --max-pages
// flag).
func OpenPDF(path string) (*PDFDecoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	n, err := api.PageCount(f, nil)
	if err != nil {
		return nil, fmt.Errorf("page count %s: %w", path, err)
	}

	pdfCtx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, fmt.Errorf("read context %s: %w", path, err)
	}

	return &PDFDecoder{path: path, ctx: pdfCtx, numPages: n}, nil
}

// NumPages implements Decoder.
func (d *PDFDecoder) NumPages() int { return d.numPages }

// GetPage implements Decoder. File and xref-table access is wrapped with
// retry-go: the failures worth retrying here are transient I/O (a network
// mount hiccup, a momentarily locked file), never a malformed PDF, which
// always fails the same way on every attempt.
func (d *PDFDecoder) GetPage(ctx context.Context, n int) (Page, error) {
	pageNr := n + 1 // pdfcpu page numbers are 1-indexed

	var dims model.Dim
	var raw []byte

	err := retry.Do(
		func() error {
			pd, err := d.ctx.PageDims()
			if err != nil {
				return fmt.Errorf("page dims: %w", err)
			}
			if pageNr < 1 || pageNr > len(pd) {
				return fmt.Errorf("page %d out of range (%d pages)", pageNr, len(pd))
			}
			dims = pd[pageNr-1]

			content, err := pdfcpu.ExtractPageContent(d.ctx, pageNr)
			if err != nil {
				return fmt.Errorf("extract content: %w", err)
			}
			raw = content
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(50*time.Millisecond),
		retry.RetryIf(isTransient),
	)
	if err != nil {
		return nil, err
	}

	return &pdfPage{width: dims.Width, height: dims.Height, raw: raw, pageIndex: n}, nil
}

// isTransient restricts retries to the I/O layer: a structurally invalid
// content stream fails identically on every one of the three attempts, so
// retrying it would only slow down decode failures without ever fixing
// them.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	return os.IsTimeout(err) || isPathError(err)
}

func isPathError(err error) bool {
	for err != nil {
		if _, ok := err.(*os.PathError); ok {
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}

type pdfPage struct {
	width, height float64
	raw           []byte
	pageIndex     int
}

func (p *pdfPage) Viewport(ctx context.Context) (float64, float64, error) {
	return p.width, p.height, nil
}

func (p *pdfPage) TextContent(ctx context.Context) ([]RawTextItem, error) {
	return parseContentStream(p.raw)
}

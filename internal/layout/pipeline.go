package layout

import (
	"context"
)

// Analyze runs the full deterministic layout pipeline over a decoded
// document and returns its NarrativeIndex (§3, §4). It never returns an
// error for a document with zero pages or for individual page decode
// failures: both are absorbed per §7 so that a single damaged page never
// fails an entire document.
func Analyze(ctx context.Context, ps PageSource, tok Tokenizer, cfg Config) (*NarrativeIndex, error) {
	cfg = cfg.normalized()

	total := ps.NumPages()
	if total <= 0 {
		return &NarrativeIndex{ReferencesHardStopTokenIndex: -1}, nil
	}
	if total > cfg.MaxPages {
		total = cfg.MaxPages
	}

	pages := make([]Page, total)
	pagesLines := make([][]Line, total)

	for i := 0; i < total; i++ {
		page, lines := decodeAndFormPage(ctx, ps, i)
		pages[i] = page
		pagesLines[i] = lines
	}

	repetition := buildRepetitionIndex(pagesLines)

	for i := 0; i < total; i++ {
		buildPageBlocks(&pages[i], pagesLines[i], repetition, cfg)
	}

	order := readingOrder(pages)

	trigger, likelyScholarly, refStartIdx := journalTrigger(pages, order, total)

	var hardStopRef *blockRef
	if trigger {
		firstBodyIdx := applyFrontMatter(order, pages)
		applySmallFontBoilerplate(pages)

		if refStartIdx == nil {
			refStartIdx = detectFinalPageReferenceFallback(pages, order, total)
		}
		if refStartIdx != nil {
			applyBackMatter(order, pages, firstBodyIdx, *refStartIdx)
			applyReferencesHardStop(order, pages, *refStartIdx)
			ref := order[*refStartIdx]
			hardStopRef = &ref
		}
	}

	docBodyFontSize := documentBodyFontSize(pages)
	assignHeadingLevels(pages, docBodyFontSize)

	flat := flatten(pages, order, tok)

	refIdx := -1
	if hardStopRef != nil {
		refIdx = len(flat.tokens)
	}

	idx := &NarrativeIndex{
		Pages:                        pages,
		FullText:                     flat.fullText,
		Tokens:                       flat.tokens,
		TokenMeta:                    flat.tokenMeta,
		Exclusions:                   buildExclusionLog(order, pages),
		IsLikelyScholarly:            likelyScholarly,
		ReferencesHardStopTokenIndex: refIdx,
		ColumnTokenRanges:            flat.columnTokenRanges,
	}
	return idx, nil
}

func decodeAndFormPage(ctx context.Context, ps PageSource, pageIndex int) (Page, []Line) {
	pc, err := ps.GetPage(ctx, pageIndex)
	if err != nil {
		return emptyPage(pageIndex), nil
	}

	items, w, h, bodyFontSize, err := extractPage(ctx, pc, pageIndex)
	if err != nil {
		return emptyPage(pageIndex), nil
	}

	lines := formLines(items)
	page := Page{
		PageIndex:    pageIndex,
		PageWidth:    w,
		PageHeight:   h,
		BodyFontSize: bodyFontSize,
	}
	return page, lines
}

func emptyPage(pageIndex int) Page {
	return Page{PageIndex: pageIndex, PageWidth: 1, PageHeight: 1}
}

// buildPageBlocks runs column detection, line-level exclusion, block
// segmentation, classification, and caption attachment for a single page,
// then assigns each column's per-page-unique BlockIndex.
func buildPageBlocks(page *Page, lines []Line, repetition map[lineSignature]map[int]bool, cfg Config) {
	columns := detectColumns(lines)
	page.Columns = columns

	var blocks []Block
	for _, col := range columns {
		reasons := classifyLineExclusions(col.Lines, repetition, cfg)
		colBlocks := segmentColumn(page.PageIndex, col.ColumnIndex, col.Lines, reasons)

		gapAbove := 0.0
		for i := range colBlocks {
			classifyBlock(&colBlocks[i], page.BodyFontSize, col.X0, col.X1, gapAbove)
			gapAbove = verticalGapOrZero(colBlocks, i)
		}
		attachCaptions(colBlocks)

		for i := range colBlocks {
			colBlocks[i].BlockIndex = i
		}
		blocks = append(blocks, colBlocks...)
	}

	page.Blocks = blocks
}

func verticalGapOrZero(blocks []Block, i int) float64 {
	if i+1 >= len(blocks) {
		return 0
	}
	return verticalGap(blocks[i+1].Box, blocks[i].Box)
}

// readingOrder returns every block reference in document reading order:
// page ascending, then column ascending, then block ascending.
func readingOrder(pages []Page) []blockRef {
	var order []blockRef
	for _, p := range pages {
		byColumn := make(map[int][]Block)
		var colIdxs []int
		for _, b := range p.Blocks {
			if _, ok := byColumn[b.ColumnIndex]; !ok {
				colIdxs = append(colIdxs, b.ColumnIndex)
			}
			byColumn[b.ColumnIndex] = append(byColumn[b.ColumnIndex], b)
		}
		sortInts(colIdxs)
		for _, ci := range colIdxs {
			blks := byColumn[ci]
			sortBlocksByIndex(blks)
			for _, b := range blks {
				order = append(order, blockRef{pageIndex: p.PageIndex, columnIndex: b.ColumnIndex, blockIndex: b.BlockIndex})
			}
		}
	}
	return order
}

func sortInts(v []int) {
	for i := 1; i < len(v); i++ {
		for j := i; j > 0 && v[j-1] > v[j]; j-- {
			v[j-1], v[j] = v[j], v[j-1]
		}
	}
}

func sortBlocksByIndex(v []Block) {
	for i := 1; i < len(v); i++ {
		for j := i; j > 0 && v[j-1].BlockIndex > v[j].BlockIndex; j-- {
			v[j-1], v[j] = v[j], v[j-1]
		}
	}
}

func documentBodyFontSize(pages []Page) float64 {
	var vals []float64
	for _, p := range pages {
		if p.BodyFontSize > 0 {
			vals = append(vals, p.BodyFontSize)
		}
	}
	return median(vals)
}

func buildExclusionLog(order []blockRef, pages []Page) []Exclusion {
	var out []Exclusion
	for _, ref := range order {
		blk := pageBlockMutable(pages, ref)
		if blk == nil || blk.Included || blk.ExcludeReason == "" {
			continue
		}
		out = append(out, Exclusion{
			PageIndex:   ref.pageIndex,
			ColumnIndex: ref.columnIndex,
			BlockIndex:  ref.blockIndex,
			Reason:      blk.ExcludeReason,
			Type:        blk.Type,
		})
	}
	return out
}

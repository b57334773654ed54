package layout

import (
	"math"
	"strings"
	"unicode"
)

// referencesIndexCutoffFrac bounds the references scan to the tail of the
// global reading order: a references section never opens in the first
// 55% of a document's blocks (§4.7).
const referencesIndexCutoffFrac = 0.55

// referencesPageTailFrac further restricts the references scan to pages in
// the last ~40% of the document.
const referencesPageTailFrac = 0.6

// Hanging-indent score thresholds for reference-entry scoring (§4.7).
const (
	hangingIndentLow  = 0.018
	hangingIndentHigh = 0.035
)

// Run-accumulator thresholds and increments for references detection.
const (
	referenceScoreHigh    = 2.0
	referenceScoreLow     = 1.0
	referenceRunIncHigh   = 1.0
	referenceRunIncLow    = 0.6
	referenceMarkerScore  = 1.1
	referenceAbsorbSteps  = 2
	referenceAbsorbVDist  = 0.05
)

// referencesFallback* govern the final-page fallback used when no sustained
// run is found: a final page that is mostly reference-like entries is
// treated as the start of the references section even without a run.
const (
	referencesFallbackScore    = 1.6
	referencesFallbackMinCount = 6
	referencesFallbackFraction = 0.6
)

// Small-font bottom boilerplate thresholds (§4.7).
const (
	boilerplateY0Floor      = 0.83
	boilerplateWidthCeiling = 0.95
	boilerplateFontRatio    = 0.82
)

// bodyParagraphMinLines and bodyParagraphMinWidth define a
// "body-paragraph-like" block: the anchor used by the front- and
// back-matter sweeps (§4.7).
const (
	bodyParagraphMinLines = 2
	bodyParagraphMinWidth = 0.55
)

// blockRef locates a block within the flattened, reading-order sequence
// built by the pipeline for journal-structure analysis.
type blockRef struct {
	pageIndex, columnIndex, blockIndex int
}

// journalTrigger decides whether journal constraints (§4.7) apply at all,
// and reports the document's scholarly-layout classification. Layout
// scholarliness considers only gross column geometry; it never inspects
// text content.
func journalTrigger(pages []Page, order []blockRef, totalPages int) (trigger, likelyScholarly bool, refStart *int) {
	layoutScholarly := layoutIsScholarly(pages, totalPages)
	refStart = detectReferencesRun(order, pages, totalPages)
	likelyScholarly = layoutScholarly || refStart != nil
	trigger = totalPages >= 2 && likelyScholarly
	return trigger, likelyScholarly, refStart
}

// layoutIsScholarly reports whether the document's gross layout matches a
// journal article: at least 4 pages, at least a quarter of them carrying a
// second column (§4.7, §GLOSSARY "Scholarly layout").
func layoutIsScholarly(pages []Page, totalPages int) bool {
	if totalPages < 4 || len(pages) == 0 {
		return false
	}
	multiColumn := 0
	for _, p := range pages {
		if len(p.Columns) >= 2 {
			multiColumn++
		}
	}
	return float64(multiColumn)/float64(len(pages)) >= 0.25
}

// isBodyParagraphLike reports whether blk is the substantial, included
// running-text block that front- and back-matter sweeps anchor on (§4.7).
func isBodyParagraphLike(blk *Block) bool {
	if blk == nil || !blk.Included {
		return false
	}
	if blk.Type != BlockParagraph && blk.Type != BlockListItem {
		return false
	}
	return len(blk.Lines) >= bodyParagraphMinLines && blk.Box.Width() >= bodyParagraphMinWidth
}

// applyFrontMatter excludes every block preceding the first
// body-paragraph-like block in reading order, reason JOURNAL_FRONT_MATTER
// (§4.7). It returns the reading-order index of that first body block (or
// len(order) if the document never has one).
func applyFrontMatter(order []blockRef, pages []Page) int {
	for i, ref := range order {
		blk := pageBlockMutable(pages, ref)
		if isBodyParagraphLike(blk) {
			return i
		}
		if blk == nil || blk.ExcludeReason != "" {
			continue
		}
		blk.Type = BlockMarginDecor
		blk.Included = false
		blk.ExcludeReason = ReasonJournalFrontMatter
		blk.Confidence = 0.95
	}
	return len(order)
}

// applyBackMatter excludes everything between the last body-paragraph-like
// block and refStartIdx, reason JOURNAL_BACK_MATTER (§4.7). A no-op when no
// body-paragraph-like block falls in that range.
func applyBackMatter(order []blockRef, pages []Page, firstBodyIdx, refStartIdx int) {
	if refStartIdx <= firstBodyIdx {
		return
	}
	lastBodyIdx := -1
	for i := firstBodyIdx; i < refStartIdx; i++ {
		if isBodyParagraphLike(pageBlockMutable(pages, order[i])) {
			lastBodyIdx = i
		}
	}
	if lastBodyIdx == -1 {
		return
	}
	for i := lastBodyIdx + 1; i < refStartIdx; i++ {
		blk := pageBlockMutable(pages, order[i])
		if blk == nil || blk.ExcludeReason != "" {
			continue
		}
		blk.Type = BlockMarginDecor
		blk.Included = false
		blk.ExcludeReason = ReasonJournalBackMatter
		blk.Confidence = 0.95
	}
}

// applySmallFontBoilerplate excludes low-slung, narrow, small-font blocks
// that are not captions as MARGIN_DECORATIVE (§4.7): running feet, DOIs,
// and similar bottom-of-page chrome that line-level exclusion missed
// because it never repeats verbatim across pages.
func applySmallFontBoilerplate(pages []Page) {
	for pi := range pages {
		page := &pages[pi]
		if page.BodyFontSize <= 0 {
			continue
		}
		threshold := page.BodyFontSize * boilerplateFontRatio
		for bi := range page.Blocks {
			blk := &page.Blocks[bi]
			if blk.ExcludeReason != "" {
				continue
			}
			if blk.Type == BlockFigureCaption || blk.Type == BlockTableCaption {
				continue
			}
			if blk.Box.Y0 <= boilerplateY0Floor {
				continue
			}
			if blk.Box.Width() >= boilerplateWidthCeiling {
				continue
			}
			if blk.FontSizeMed > threshold {
				continue
			}
			blk.Type = BlockMarginDecor
			blk.Included = false
			blk.ExcludeReason = ReasonMarginDecorative
			blk.Confidence = 0.95
		}
	}
}

// applyReferencesHardStop excludes every block from startIdx onward in
// reading order, reason REFERENCES_HARD_STOP (§4.7).
func applyReferencesHardStop(order []blockRef, pages []Page, startIdx int) {
	for i := startIdx; i < len(order); i++ {
		blk := pageBlockMutable(pages, order[i])
		if blk == nil {
			continue
		}
		blk.Included = false
		blk.ExcludeReason = ReasonReferencesHardStop
	}
}

// hangingIndentScore scores the gap between a block's first and second
// line starts: the layout signature of a reference entry's wrapped lines
// (§4.7).
func hangingIndentScore(blk *Block) float64 {
	if len(blk.Lines) < 2 {
		return 0
	}
	indent := blk.Lines[1].Box.X0 - blk.Lines[0].Box.X0
	switch {
	case indent >= hangingIndentHigh:
		return 2
	case indent >= hangingIndentLow:
		return 1
	default:
		return 0
	}
}

// isMarkerOnly reports whether blk is a single line whose entire text is a
// short bracketed or parenthesized numeric marker — "[12]", "(3)." — the
// layout signature of a lone reference-entry number with no body text on
// the line (§4.7).
func isMarkerOnly(blk *Block) bool {
	if len(blk.Lines) != 1 {
		return false
	}
	runes := []rune(strings.TrimSpace(blk.Lines[0].Text))
	if len(runes) == 0 {
		return false
	}
	i := 0
	opening := rune(0)
	if runes[i] == '[' || runes[i] == '(' {
		opening = runes[i]
		i++
	}
	start := i
	for i < len(runes) && unicode.IsDigit(runes[i]) {
		i++
	}
	if i == start {
		return false
	}
	switch opening {
	case '[':
		if i >= len(runes) || runes[i] != ']' {
			return false
		}
		i++
	case '(':
		if i >= len(runes) || runes[i] != ')' {
			return false
		}
		i++
	}
	for i < len(runes) && (runes[i] == '.' || runes[i] == ':') {
		i++
	}
	return i == len(runes)
}

// referenceScore scores a single block's resemblance to a reference-list
// entry (§4.7). Scoring is purely structural: list-item typing, line
// count, hanging indent, width, and the marker-only special case.
func referenceScore(blk *Block) float64 {
	if blk == nil || !blk.Included {
		return 0
	}
	if isMarkerOnly(blk) {
		return referenceMarkerScore
	}
	if blk.Type != BlockParagraph && blk.Type != BlockListItem {
		return 0
	}
	score := 0.0
	if blk.Type == BlockListItem {
		score += 0.6
	}
	if len(blk.Lines) >= 2 {
		score += 0.4
	}
	score += hangingIndentScore(blk)
	if blk.Box.Width() <= 0.97 {
		score += 0.2
	}
	return score
}

// detectReferencesRun scans the tail of the document's reading order for a
// sustained run of reference-like blocks and returns the reading-order
// index at which the references section starts, or nil if none is found
// (§4.7).
func detectReferencesRun(order []blockRef, pages []Page, totalPages int) *int {
	n := len(order)
	if n == 0 {
		return nil
	}
	indexCutoff := int(float64(n) * referencesIndexCutoffFrac)
	pageCutoff := int(math.Ceil(float64(totalPages) * referencesPageTailFrac))
	if pageCutoff < 0 {
		pageCutoff = 0
	}
	need := 4.0
	if totalPages >= 6 {
		need = 6.0
	}

	run := 0.0
	runStart := -1
	for i := indexCutoff; i < n; i++ {
		ref := order[i]
		if ref.pageIndex < pageCutoff {
			run = 0
			runStart = -1
			continue
		}
		score := referenceScore(pageBlockMutable(pages, ref))
		switch {
		case score >= referenceScoreHigh:
			if runStart == -1 {
				runStart = i
			}
			run += referenceRunIncHigh
		case score >= referenceScoreLow:
			if runStart == -1 {
				runStart = i
			}
			run += referenceRunIncLow
		default:
			run = 0
			runStart = -1
			continue
		}
		if run >= need {
			start := absorbHeadingBackward(order, pages, runStart)
			return &start
		}
	}
	return nil
}

// absorbHeadingBackward extends a detected references run backward by up
// to two steps to include a preceding short, narrow heading on the same
// page within a small vertical distance — the section's own title
// (§4.7).
func absorbHeadingBackward(order []blockRef, pages []Page, runStart int) int {
	cur := runStart
	for step := 0; step < referenceAbsorbSteps && cur > 0; step++ {
		prevRef := order[cur-1]
		prevBlk := pageBlockMutable(pages, prevRef)
		curBlk := pageBlockMutable(pages, order[cur])
		if prevBlk == nil || curBlk == nil {
			break
		}
		if prevRef.pageIndex != curBlk.PageIndex {
			break
		}
		if prevBlk.Type != BlockHeading {
			break
		}
		if prevBlk.Box.Width() >= 0.6 || len(prevBlk.Lines) > 2 {
			break
		}
		dist := curBlk.Box.Y0 - prevBlk.Box.Y1
		if dist < 0 {
			dist = -dist
		}
		if dist > referenceAbsorbVDist {
			break
		}
		cur--
	}
	return cur
}

// detectFinalPageReferenceFallback reports whether the document's last page
// is itself mostly reference-like, for documents whose references section
// never produces a clean sustained run (§4.7).
func detectFinalPageReferenceFallback(pages []Page, order []blockRef, totalPages int) *int {
	if totalPages == 0 || len(pages) == 0 {
		return nil
	}
	lastPage := totalPages - 1
	page := &pages[lastPage]
	if len(page.Blocks) < referencesFallbackMinCount {
		return nil
	}
	likeCount := 0
	for i := range page.Blocks {
		if referenceScore(&page.Blocks[i]) >= referencesFallbackScore {
			likeCount++
		}
	}
	if float64(likeCount)/float64(len(page.Blocks)) < referencesFallbackFraction {
		return nil
	}
	for i, ref := range order {
		if ref.pageIndex == lastPage {
			return &i
		}
	}
	return nil
}

func pageBlockMutable(pages []Page, ref blockRef) *Block {
	if ref.pageIndex < 0 || ref.pageIndex >= len(pages) {
		return nil
	}
	p := &pages[ref.pageIndex]
	for i := range p.Blocks {
		b := &p.Blocks[i]
		if b.ColumnIndex == ref.columnIndex && b.BlockIndex == ref.blockIndex {
			return b
		}
	}
	return nil
}

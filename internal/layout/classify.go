package layout

import "math"

// headingFontRatio is the minimum ratio of a candidate heading line's font
// size to the page's body font size (§4.5).
const headingFontRatio = 1.15

// headingGapFactor is the minimum ratio of the gap above a heading
// candidate to its own line height, distinguishing a heading that starts a
// new section from a merely larger word inside running text.
const headingGapFactor = 1.2

// displayEquationCenterTolFloor and displayEquationCenterTolFactor bound
// how far a line's midpoint may drift from the column's midpoint and still
// count as centered (§4.5 rule 3).
const (
	displayEquationCenterTolFloor  = 0.03
	displayEquationCenterTolFactor = 0.08
)

// displayEquationWidthRatio is the column-width fraction a display
// equation's bounding box may not exceed.
const displayEquationWidthRatio = 0.72

// displayEquationFontRatio is the minimum ratio of a display equation's
// median font size to the body font size.
const displayEquationFontRatio = 0.88

// displayEquationSingleLineWidth is the single-line-only width ceiling
// (§4.5 rule 3). It is a fixed value: the column's median line gap does
// not widen it.
const displayEquationSingleLineWidth = 0.55

// Confidence base scores per included block type (§4.5).
const (
	confidenceBaseParagraph = 0.72
	confidenceBaseListItem  = 0.74
	confidenceBaseHeading   = 0.78
)

// confidenceDemoteFloor is the threshold below which an included block is
// demoted to MarginDecorative/AMBIGUOUS_NON_NARRATIVE.
const confidenceDemoteFloor = 0.60

// classifyBlock assigns a BlockType, Included and Confidence to a block
// that line-level exclusion did not already dispose of. gapAbove is the
// normalized vertical gap between this block and the previous block in the
// same column (0 if this is the column's first block).
func classifyBlock(blk *Block, bodyFontSize, colX0, colX1, gapAbove float64) {
	if blk.ExcludeReason != "" {
		return // already classified by classifyLineExclusions / buildBlock
	}
	columnXMid := (colX0 + colX1) / 2

	switch {
	case isDisplayEquation(*blk, colX0, colX1, bodyFontSize):
		blk.Type = BlockDisplayEquation
		blk.Included = false
		blk.ExcludeReason = ReasonDisplayEquation
		blk.Confidence = 0.8

	case isTableInternal(*blk):
		blk.Type = BlockTableInternal
		blk.Included = false
		blk.ExcludeReason = ReasonTableInternal
		blk.Confidence = 0.95

	case isFigureInternal(*blk):
		blk.Type = BlockFigureInternal
		blk.Included = false
		blk.ExcludeReason = ReasonFigureInternal
		blk.Confidence = 0.95

	case isHeading(*blk, bodyFontSize, gapAbove):
		blk.Type = BlockHeading
		blk.Included = true
		blk.Confidence = scoreConfidence(blk, confidenceBaseHeading, bodyFontSize, colX0, columnXMid)

	case isListItem(*blk):
		blk.Type = BlockListItem
		blk.Included = true
		blk.Confidence = scoreConfidence(blk, confidenceBaseListItem, bodyFontSize, colX0, columnXMid)

	default:
		blk.Type = BlockParagraph
		blk.Included = true
		blk.Confidence = scoreConfidence(blk, confidenceBaseParagraph, bodyFontSize, colX0, columnXMid)
	}

	if blk.Included && blk.Confidence < confidenceDemoteFloor {
		blk.Type = BlockMarginDecor
		blk.Included = false
		blk.ExcludeReason = ReasonAmbiguousNonNarrative
		blk.Confidence = 0.95
	}
}

// scoreConfidence starts from a type-specific base and applies additive
// layout bonuses and penalties (§4.5): multi-line, wide, left-aligned, and
// near-body-font blocks score higher; single-line, narrow, and centered
// (but not left-aligned) blocks score lower. Headings get an additional font-ratio bonus, offset
// by a penalty for a full-width heading with only a weak ratio.
func scoreConfidence(blk *Block, base, bodyFontSize, colX0, columnXMid float64) float64 {
	conf := base
	width := blk.Box.Width()

	if len(blk.Lines) > 1 {
		conf += 0.05
	} else {
		conf -= 0.05
	}
	switch {
	case width >= 0.55:
		conf += 0.05
	case width < 0.35:
		conf -= 0.05
	}
	if blk.Box.X0-colX0 < 0.02 {
		conf += 0.03
	}
	offset := math.Abs(blk.Box.XMid() - columnXMid)
	if offset < 0.05 && blk.Box.X0-colX0 >= 0.02 {
		conf -= 0.05
	}

	if bodyFontSize > 0 {
		ratio := blk.FontSizeMed / bodyFontSize
		if math.Abs(ratio-1) <= 0.1 {
			conf += 0.03
		}
		if blk.Type == BlockHeading {
			switch {
			case ratio >= 1.35:
				conf += 0.10
			case ratio >= 1.22:
				conf += 0.05
			}
			if width >= 0.92 && ratio < 1.22 {
				conf -= 0.10
			}
		}
	}
	return conf
}

// isDisplayEquation reports whether blk is a centered block of symbolic
// display math (§4.5 rule 3): every line centered in the column, the block
// narrower than the column, and its median font at least 0.88 of body size. A
// multi-line block qualifies outright; a single-line block must also pass
// a tighter width ceiling, since a single short centered line is otherwise
// indistinguishable from a pull-quote or a centered heading.
func isDisplayEquation(blk Block, colX0, colX1, bodyFontSize float64) bool {
	if len(blk.Lines) == 0 {
		return false
	}
	colW := colX1 - colX0
	if colW <= 0 {
		return false
	}
	colMid := (colX0 + colX1) / 2
	tol := math.Max(displayEquationCenterTolFloor, colW*displayEquationCenterTolFactor)
	for _, ln := range blk.Lines {
		if math.Abs(ln.Box.XMid()-colMid) > tol {
			return false
		}
	}
	if blk.Box.Width() > colW*displayEquationWidthRatio {
		return false
	}
	if bodyFontSize <= 0 || blk.FontSizeMed < bodyFontSize*displayEquationFontRatio {
		return false
	}
	if len(blk.Lines) > 1 {
		return true
	}
	return blk.Box.Width() <= displayEquationSingleLineWidth
}

// isTableInternal looks for a recurring multi-column cell grid: at least
// two lines, each segmenting into two or more aligned cells, with cell
// start positions stable across lines (§4.5).
func isTableInternal(blk Block) bool {
	if len(blk.Lines) < 2 {
		return false
	}
	gridLines := 0
	for _, ln := range blk.Lines {
		if ln.ApproxCellCount >= 2 {
			gridLines++
		}
	}
	if gridLines < 2 {
		return false
	}
	return alignedAcrossLines(blk.Lines)
}

func alignedAcrossLines(lines []Line) bool {
	var reference []float64
	matches := 0
	for _, ln := range lines {
		if len(ln.CellXs) < 2 {
			continue
		}
		if reference == nil {
			reference = ln.CellXs
			continue
		}
		if cellsAlign(reference, ln.CellXs) {
			matches++
		}
	}
	return matches >= 1
}

func cellsAlign(a, b []float64) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n < 2 {
		return false
	}
	aligned := 0
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		if d < 0 {
			d = -d
		}
		if d < 0.03 {
			aligned++
		}
	}
	return aligned >= 2
}

// isFigureInternal flags scattered, short, irregularly-indented lines: the
// text fragments (axis labels, legends) that sit inside a figure's bounding
// region rather than participating in running prose (§4.5).
func isFigureInternal(blk Block) bool {
	if len(blk.Lines) < 2 {
		return false
	}
	shortCount := 0
	var x0s []float64
	for _, ln := range blk.Lines {
		if len(ln.Items) <= 3 {
			shortCount++
		}
		x0s = append(x0s, ln.Box.X0)
	}
	if float64(shortCount)/float64(len(blk.Lines)) < 0.7 {
		return false
	}
	return !leftAligned(x0s)
}

func leftAligned(x0s []float64) bool {
	if len(x0s) == 0 {
		return true
	}
	min, max := x0s[0], x0s[0]
	for _, x := range x0s {
		if x < min {
			min = x
		}
		if x > max {
			max = x
		}
	}
	return (max - min) < 0.02
}

func isHeading(blk Block, bodyFontSize, gapAbove float64) bool {
	if len(blk.Lines) == 0 || len(blk.Lines) > 2 {
		return false
	}
	ln := blk.Lines[0]
	if bodyFontSize <= 0 || ln.FontSize <= 0 {
		return false
	}
	if ln.FontSize/bodyFontSize < headingFontRatio {
		return false
	}
	height := ln.Box.Height()
	if height <= 0 {
		height = 0.01
	}
	return gapAbove >= height*headingGapFactor || gapAbove == 0
}

// isListItem detects a hanging indent: the first line starts further left
// than the lines that continue it, a layout signature independent of any
// bullet glyph or numbering vocabulary.
func isListItem(blk Block) bool {
	if len(blk.Lines) < 2 {
		return false
	}
	first := blk.Lines[0].Box.X0
	for _, ln := range blk.Lines[1:] {
		if ln.Box.X0-first < 0.015 {
			return false
		}
	}
	return true
}

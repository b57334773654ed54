package layout

import "strings"

// paragraphGapFactor is the multiple of a line's own height that the gap to
// the next line may grow to before the two are still considered part of
// the same block (§4.5).
const paragraphGapFactor = 1.6

// segmentColumn groups a column's lines into Blocks. Lines already carrying
// a line-level ExclusionReason (§4.4) are grouped separately from
// narrative-candidate lines, so that a running head never gets fused into
// the paragraph above or below it just because it's vertically close.
func segmentColumn(pageIndex, columnIndex int, lines []Line, reasons []ExclusionReason) []Block {
	if len(lines) == 0 {
		return nil
	}

	var blocks []Block
	start := 0
	for i := 1; i <= len(lines); i++ {
		boundary := i == len(lines)
		if !boundary {
			sameReason := reasons[i] == reasons[start]
			boundary = !sameReason || !linesContinue(lines[i-1], lines[i])
		}
		if boundary {
			blocks = append(blocks, buildBlock(pageIndex, columnIndex, lines[start:i], reasons[start]))
			start = i
		}
	}
	return blocks
}

// linesContinue reports whether line b should be grouped into the same
// block as the preceding line a: a small vertical gap relative to line
// height, and no large jump in font size.
func linesContinue(a, b Line) bool {
	gap := b.Box.Y0 - a.Box.Y1
	height := a.Box.Height()
	if height <= 0 {
		height = 0.01
	}
	if gap > height*paragraphGapFactor {
		return false
	}
	if a.FontSize > 0 && b.FontSize > 0 {
		ratio := b.FontSize / a.FontSize
		if ratio > 1.3 || ratio < 0.77 {
			return false
		}
	}
	return true
}

func buildBlock(pageIndex, columnIndex int, lines []Line, reason ExclusionReason) Block {
	box := lines[0].Box
	var texts []string
	var fontSizes []float64
	for _, ln := range lines {
		box = box.Union(ln.Box)
		texts = append(texts, ln.Text)
		if ln.FontSize > 0 {
			fontSizes = append(fontSizes, ln.FontSize)
		}
	}

	blk := Block{
		PageIndex:   pageIndex,
		ColumnIndex: columnIndex,
		BlockIndex:  -1,
		Lines:       lines,
		Box:         box,
		Text:        strings.Join(texts, "\n"),
		FontSizeMed: median(fontSizes),
	}

	if reason != "" {
		blk.Type = reason.blockType()
		blk.Included = false
		blk.ExcludeReason = reason
		blk.Confidence = 1
	}

	return blk
}

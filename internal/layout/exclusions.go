package layout

import "fmt"

// headerBandN and footerBandN bound the top/bottom margins searched for
// repeated running heads, folios and footers (§4.4).
const (
	headerBandN = 0.08
	footerBandN = 0.92
)

// repetitionBucketCount quantizes a line's y-midpoint into bands so that
// minor baseline jitter across pages still maps running heads to the same
// bucket.
const repetitionBucketCount = 50

// minRepeatedPages is the minimum number of distinct pages a signature
// must appear on, at the same y-bucket, before its lines are treated as
// repeated page chrome rather than coincidentally similar text.
const minRepeatedPages = 3

// marginMarginDecorativeMaxTokens bounds how many text items a line in
// the extreme page margin may have before it is too
// substantial to be decorative (a rule, a stray glyph, a page number).
const marginMarginDecorativeMaxTokens = 3

type lineSignature struct {
	signature string
	bucket    int
}

// buildRepetitionIndex scans every page's lines and returns the set of
// (signature, y-bucket) pairs that recur, with their page membership, so
// that header/footer detection can require repetition across pages rather
// than flagging a single coincidentally-short line (§4.4).
func buildRepetitionIndex(pagesLines [][]Line) map[lineSignature]map[int]bool {
	index := make(map[lineSignature]map[int]bool)
	for pageIdx, lines := range pagesLines {
		for _, ln := range lines {
			if ln.YMid >= headerBandN && ln.YMid <= footerBandN {
				continue
			}
			sig := normalizedRepetitionSignature(ln.Text)
			if sig == "" {
				continue
			}
			key := lineSignature{signature: sig, bucket: quantize(ln.YMid, repetitionBucketCount)}
			if index[key] == nil {
				index[key] = make(map[int]bool)
			}
			index[key][pageIdx] = true
		}
	}
	return index
}

func isRepeated(index map[lineSignature]map[int]bool, ln Line) bool {
	sig := normalizedRepetitionSignature(ln.Text)
	if sig == "" {
		return false
	}
	key := lineSignature{signature: sig, bucket: quantize(ln.YMid, repetitionBucketCount)}
	pages := index[key]
	return len(pages) >= minRepeatedPages
}

// classifyLineExclusions assigns an ExclusionReason to every line on a
// page that line-level analysis alone can rule non-narrative (§4.4):
// rotated/watermark text, repeated running heads/footers/folios, and
// decorative marks isolated in the extreme margins. Lines with no
// exclusion reason return "".
func classifyLineExclusions(lines []Line, index map[lineSignature]map[int]bool, cfg Config) []ExclusionReason {
	reasons := make([]ExclusionReason, len(lines))
	for i, ln := range lines {
		switch {
		case ln.RotatedFraction >= 0.5 || ln.MaxAbsRotationRad > cfg.RotationCutoffRad:
			reasons[i] = ReasonRotatedOrWatermark
		case (ln.YMid < headerBandN || ln.YMid > footerBandN) && isRepeated(index, ln):
			reasons[i] = ReasonHeaderFooter
		case isMarginDecorative(ln):
			reasons[i] = ReasonMarginDecorative
		}
	}
	return reasons
}

func isMarginDecorative(ln Line) bool {
	inMargin := ln.Box.X1 < 0.08 || ln.Box.X0 > 0.92 || ln.YMid < 0.03 || ln.YMid > 0.97
	if !inMargin {
		return false
	}
	tokenCount := len(ln.Items)
	return tokenCount > 0 && tokenCount <= marginMarginDecorativeMaxTokens && len(ln.Text) <= 24
}

func (r ExclusionReason) blockType() BlockType {
	switch r {
	case ReasonHeaderFooter:
		return BlockHeaderFooter
	case ReasonMarginDecorative:
		return BlockMarginDecor
	case ReasonRotatedOrWatermark:
		return BlockMarginDecor
	case ReasonDisplayEquation:
		return BlockDisplayEquation
	case ReasonTableInternal:
		return BlockTableInternal
	case ReasonFigureInternal:
		return BlockFigureInternal
	default:
		return BlockParagraph
	}
}

func (r ExclusionReason) String() string {
	return fmt.Sprintf("%s", string(r))
}
